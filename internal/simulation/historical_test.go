package simulation

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/shopspring/decimal"
)

func flatReturnsTable(firstYear, lastYear int, rate float64) *HistoricalReturns {
	data := make(map[int]decimal.Decimal)
	for year := firstYear; year <= lastYear; year++ {
		data[year] = decimal.NewFromFloat(rate)
	}
	return NewHistoricalReturns("flat", data)
}

func TestNewHistoricalReturns(t *testing.T) {
	table := NewHistoricalReturns("test", map[int]decimal.Decimal{
		1950: decimal.NewFromFloat(0.1),
		1952: decimal.NewFromFloat(-0.05),
		1951: decimal.NewFromFloat(0.02),
	})

	if table.MinYear != 1950 || table.MaxYear != 1952 {
		t.Errorf("Expected span 1950-1952, got %d-%d", table.MinYear, table.MaxYear)
	}
	if table.Len() != 3 {
		t.Errorf("Expected 3 years, got %d", table.Len())
	}

	r, ok := table.Return(1951)
	if !ok || !r.Equal(decimal.NewFromFloat(0.02)) {
		t.Errorf("Expected 0.02 for 1951, got %s (ok=%v)", r, ok)
	}
	if _, ok := table.Return(1949); ok {
		t.Error("Expected a miss for 1949")
	}
}

func TestHistoricalWindow(t *testing.T) {
	table := flatReturnsTable(1950, 1959, 0.05)

	window, ok := table.Window(1950, 10)
	if !ok || len(window) != 10 {
		t.Fatalf("Expected a complete 10-year window, ok=%v len=%d", ok, len(window))
	}

	if _, ok := table.Window(1955, 10); ok {
		t.Error("A window running past the table should report incomplete")
	}

	// A gap inside the range also breaks the window.
	gapped := NewHistoricalReturns("gapped", map[int]decimal.Decimal{
		2000: decimal.NewFromFloat(0.1),
		2002: decimal.NewFromFloat(0.1),
	})
	if _, ok := gapped.Window(2000, 3); ok {
		t.Error("A gapped window should report incomplete")
	}
}

func TestHistoricalStatisticsSummary(t *testing.T) {
	table := NewHistoricalReturns("pair", map[int]decimal.Decimal{
		2000: decimal.NewFromFloat(0.1),
		2001: decimal.NewFromFloat(-0.1),
	})

	stats := table.Statistics()
	if !stats.Mean.Equal(decimal.Zero) {
		t.Errorf("Expected mean 0, got %s", stats.Mean)
	}
	if !stats.StdDev.Equal(decimal.NewFromFloat(0.1)) {
		t.Errorf("Expected stddev 0.1, got %s", stats.StdDev)
	}
	if !stats.Min.Equal(decimal.NewFromFloat(-0.1)) || !stats.Max.Equal(decimal.NewFromFloat(0.1)) {
		t.Errorf("Expected min/max -0.1/0.1, got %s/%s", stats.Min, stats.Max)
	}
	if stats.Count != 2 {
		t.Errorf("Expected count 2, got %d", stats.Count)
	}
}

func TestLoadHistoricalReturnsCSV(t *testing.T) {
	csvData := "year,return\n" +
		"1950,0.2168\n" +
		"1951,0.1646\n" +
		"not-a-year,0.10\n" + // skipped
		"1952,not-a-number\n" + // skipped
		"1953\n" + // skipped, too few columns
		"1954,-0.0121\n"

	path := filepath.Join(t.TempDir(), "returns.csv")
	if err := os.WriteFile(path, []byte(csvData), 0644); err != nil {
		t.Fatalf("Failed to write test CSV: %v", err)
	}

	table, err := LoadHistoricalReturnsCSV(path, "test")
	if err != nil {
		t.Fatalf("Failed to load CSV: %v", err)
	}
	if table.Len() != 3 {
		t.Errorf("Expected 3 valid rows, got %d", table.Len())
	}
	if table.MinYear != 1950 || table.MaxYear != 1954 {
		t.Errorf("Expected span 1950-1954, got %d-%d", table.MinYear, table.MaxYear)
	}
	r, ok := table.Return(1954)
	if !ok || !r.Equal(decimal.NewFromFloat(-0.0121)) {
		t.Errorf("Expected -0.0121 for 1954, got %s", r)
	}
}

func TestLoadHistoricalReturnsCSV_Errors(t *testing.T) {
	if _, err := LoadHistoricalReturnsCSV("does-not-exist.csv", "x"); err == nil {
		t.Error("Expected an error for a missing file")
	}

	onlyHeader := filepath.Join(t.TempDir(), "empty.csv")
	if err := os.WriteFile(onlyHeader, []byte("year,return\n"), 0644); err != nil {
		t.Fatalf("Failed to write test CSV: %v", err)
	}
	if _, err := LoadHistoricalReturnsCSV(onlyHeader, "x"); err == nil {
		t.Error("Expected an error for a table with no data rows")
	}
}

func TestDefaultStockReturns(t *testing.T) {
	table := DefaultStockReturns()
	if table.MinYear != 1928 || table.MaxYear != 2023 {
		t.Errorf("Expected the built-in table to span 1928-2023, got %d-%d", table.MinYear, table.MaxYear)
	}
	if table.Len() != 96 {
		t.Errorf("Expected 96 years of data, got %d", table.Len())
	}
	if _, ok := table.Window(1928, 96); !ok {
		t.Error("The built-in table should have no gaps")
	}
}

func TestBacktesterRun(t *testing.T) {
	table := flatReturnsTable(1950, 1959, 0.05)
	backtester := NewHistoricalBacktester(table)

	result, err := backtester.Run(BacktestConfig{
		WindowYears:      5,
		InitialPortfolio: decimal.NewFromInt(1000000),
		Strategy:         fixedStrategyConfig(40000),
	})
	if err != nil {
		t.Fatalf("Failed to run backtest: %v", err)
	}

	// 10 years of data and 5-year windows give starts 1950 through 1955.
	if result.NumWindows != 6 {
		t.Errorf("Expected 6 rolling windows, got %d", result.NumWindows)
	}
	if len(result.StartYears) != 6 || result.StartYears[0] != 1950 || result.StartYears[5] != 1955 {
		t.Errorf("Unexpected start years: %v", result.StartYears)
	}
	if !result.SuccessRate.Equal(decimal.NewFromInt(1)) {
		t.Errorf("A 4%% withdrawal at flat 5%% growth should always survive, got %s", result.SuccessRate)
	}
	if result.WindowYears != 5 || result.Strategy != StrategyFixed {
		t.Error("Result should echo the window length and strategy")
	}

	// Every window sees identical returns, so every outcome matches.
	first := result.Runs[0].FinalPortfolio
	for i, run := range result.Runs {
		if !run.FinalPortfolio.Equal(first) {
			t.Fatalf("Window %d diverged on a flat table: %s vs %s", i, run.FinalPortfolio, first)
		}
	}
}

func TestBacktesterRun_SkipsGappedWindows(t *testing.T) {
	data := make(map[int]decimal.Decimal)
	for year := 1950; year <= 1959; year++ {
		if year == 1955 {
			continue
		}
		data[year] = decimal.NewFromFloat(0.05)
	}
	backtester := NewHistoricalBacktester(NewHistoricalReturns("gapped", data))

	result, err := backtester.Run(BacktestConfig{
		WindowYears:      3,
		InitialPortfolio: decimal.NewFromInt(1000000),
		Strategy:         fixedStrategyConfig(40000),
	})
	if err != nil {
		t.Fatalf("Failed to run backtest: %v", err)
	}

	// Starts 1950-1957 minus the three windows crossing the missing 1955.
	if result.NumWindows != 5 {
		t.Errorf("Expected 5 complete windows, got %d", result.NumWindows)
	}
	for _, start := range result.StartYears {
		if start >= 1953 && start <= 1955 {
			t.Errorf("Window starting %d crosses the gap and should be skipped", start)
		}
	}
}

func TestBacktesterRun_Errors(t *testing.T) {
	table := flatReturnsTable(1950, 1959, 0.05)

	cases := []struct {
		name       string
		backtester *HistoricalBacktester
		config     BacktestConfig
	}{
		{"nil table", NewHistoricalBacktester(nil), BacktestConfig{WindowYears: 5, Strategy: fixedStrategyConfig(1000)}},
		{"bad strategy", NewHistoricalBacktester(table), BacktestConfig{WindowYears: 5, Strategy: StrategyConfig{Strategy: "nope"}}},
		{"zero window", NewHistoricalBacktester(table), BacktestConfig{Strategy: fixedStrategyConfig(1000)}},
		{"window longer than table", NewHistoricalBacktester(table), BacktestConfig{WindowYears: 50, Strategy: fixedStrategyConfig(1000)}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := tc.backtester.Run(tc.config); err == nil {
				t.Error("Expected an error")
			}
		})
	}
}

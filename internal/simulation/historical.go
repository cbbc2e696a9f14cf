package simulation

import (
	"encoding/csv"
	"fmt"
	"io"
	"math"
	"os"
	"strconv"

	"github.com/firecalc/fire-planner/internal/domain"
	"github.com/shopspring/decimal"
)

// HistoricalReturns is a year-indexed table of annual returns. The table is
// an injected dependency of the backtester, never an owned resource; it is
// immutable after construction.
type HistoricalReturns struct {
	Name    string
	returns map[int]decimal.Decimal
	MinYear int
	MaxYear int
}

// HistoricalStatistics summarizes a returns table.
type HistoricalStatistics struct {
	Mean   decimal.Decimal `json:"mean"`
	StdDev decimal.Decimal `json:"std_dev"`
	Min    decimal.Decimal `json:"min"`
	Max    decimal.Decimal `json:"max"`
	Count  int             `json:"count"`
}

// NewHistoricalReturns builds a table from a year -> return map.
func NewHistoricalReturns(name string, data map[int]decimal.Decimal) *HistoricalReturns {
	h := &HistoricalReturns{Name: name, returns: make(map[int]decimal.Decimal, len(data))}
	first := true
	for year, value := range data {
		h.returns[year] = value
		if first || year < h.MinYear {
			h.MinYear = year
		}
		if first || year > h.MaxYear {
			h.MaxYear = year
		}
		first = false
	}
	return h
}

// LoadHistoricalReturnsCSV loads a two-column (year, return) CSV file with
// a header row. Malformed rows are skipped.
func LoadHistoricalReturnsCSV(path, name string) (*HistoricalReturns, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open file %s: %w", path, err)
	}
	defer file.Close()

	reader := csv.NewReader(file)
	reader.FieldsPerRecord = -1
	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("failed to read header: %w", err)
	}
	if len(header) < 2 {
		return nil, fmt.Errorf("invalid CSV format: expected at least 2 columns")
	}

	data := make(map[int]decimal.Decimal)
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read data row: %w", err)
		}
		if len(record) < 2 {
			continue
		}
		year, err := strconv.Atoi(record[0])
		if err != nil {
			continue
		}
		value, err := decimal.NewFromString(record[1])
		if err != nil {
			continue
		}
		data[year] = value
	}
	if len(data) == 0 {
		return nil, fmt.Errorf("no valid data points found in %s", path)
	}
	return NewHistoricalReturns(name, data), nil
}

// Return looks up the return for a single year.
func (h *HistoricalReturns) Return(year int) (decimal.Decimal, bool) {
	r, ok := h.returns[year]
	return r, ok
}

// Len returns the number of years in the table.
func (h *HistoricalReturns) Len() int { return len(h.returns) }

// Window returns the consecutive return sequence starting at startYear.
// The second result is false when any year in the window is missing.
func (h *HistoricalReturns) Window(startYear, years int) ([]decimal.Decimal, bool) {
	window := make([]decimal.Decimal, 0, years)
	for year := startYear; year < startYear+years; year++ {
		r, ok := h.returns[year]
		if !ok {
			return nil, false
		}
		window = append(window, r)
	}
	return window, true
}

// Statistics computes the summary statistics of the table.
func (h *HistoricalReturns) Statistics() HistoricalStatistics {
	if len(h.returns) == 0 {
		return HistoricalStatistics{}
	}

	var sum decimal.Decimal
	first := true
	var min, max decimal.Decimal
	for _, v := range h.returns {
		sum = sum.Add(v)
		if first || v.LessThan(min) {
			min = v
		}
		if first || v.GreaterThan(max) {
			max = v
		}
		first = false
	}
	n := decimal.NewFromInt(int64(len(h.returns)))
	mean := sum.Div(n)

	var varianceSum decimal.Decimal
	for _, v := range h.returns {
		diff := v.Sub(mean)
		varianceSum = varianceSum.Add(diff.Mul(diff))
	}
	varianceFloat, _ := varianceSum.Div(n).Float64()
	stdDev := decimal.NewFromFloat(math.Sqrt(varianceFloat))

	return HistoricalStatistics{
		Mean:   mean,
		StdDev: stdDev,
		Min:    min,
		Max:    max,
		Count:  len(h.returns),
	}
}

// BacktestConfig configures a rolling-window historical backtest.
type BacktestConfig struct {
	WindowYears      int             `yaml:"window_years" json:"window_years"`
	InitialPortfolio decimal.Decimal `yaml:"initial_portfolio" json:"initial_portfolio"`
	Strategy         StrategyConfig  `yaml:"withdrawal" json:"withdrawal"`
}

// HistoricalBacktester replays retirements over every rolling window of the
// injected returns table, aggregating results exactly like the Monte Carlo
// engine so consumers can treat the two interchangeably.
type HistoricalBacktester struct {
	Data   *HistoricalReturns
	Logger Logger
}

// NewHistoricalBacktester creates a backtester over the given table.
func NewHistoricalBacktester(data *HistoricalReturns) *HistoricalBacktester {
	return &HistoricalBacktester{Data: data, Logger: NopLogger{}}
}

// Run replays one retirement per rolling window. The strategy config is
// validated before any replay starts.
func (hb *HistoricalBacktester) Run(config BacktestConfig) (*domain.HistoricalSimulationResult, error) {
	strategy, err := NewWithdrawalStrategy(config.Strategy)
	if err != nil {
		return nil, err
	}
	if hb.Data == nil || hb.Data.Len() == 0 {
		return nil, newConfigError("historical_returns", "no returns table supplied")
	}
	if config.WindowYears <= 0 {
		return nil, newConfigError("window_years", "must be positive")
	}
	if hb.Data.MaxYear-hb.Data.MinYear+1 < config.WindowYears {
		return nil, newConfigError("window_years", fmt.Sprintf(
			"table spans %d-%d, too short for a %d-year window", hb.Data.MinYear, hb.Data.MaxYear, config.WindowYears))
	}

	var runs []domain.SimulationRun
	var startYears []int
	for start := hb.Data.MinYear; start+config.WindowYears-1 <= hb.Data.MaxYear; start++ {
		window, ok := hb.Data.Window(start, config.WindowYears)
		if !ok {
			hb.Logger.Warnf("skipping window starting %d: missing years in %s", start, hb.Data.Name)
			continue
		}
		run := strategy.Run(config.InitialPortfolio, window)
		run.RunIndex = len(runs)
		runs = append(runs, run)
		startYears = append(startYears, start)
	}
	if len(runs) == 0 {
		return nil, newConfigError("historical_returns", "no complete rolling windows in table")
	}

	hb.Logger.Debugf("backtest: %d rolling %d-year windows over %s", len(runs), config.WindowYears, hb.Data.Name)

	successRate, median, p10, p90 := aggregateRuns(runs)

	return &domain.HistoricalSimulationResult{
		Runs:                       runs,
		SuccessRate:                successRate,
		MedianFinalPortfolio:       median,
		Percentile10FinalPortfolio: p10,
		Percentile90FinalPortfolio: p90,
		NumWindows:                 len(runs),
		WindowYears:                config.WindowYears,
		Strategy:                   strategy.Name(),
		InitialPortfolio:           config.InitialPortfolio,
		StartYears:                 startYears,
	}, nil
}

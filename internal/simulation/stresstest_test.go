package simulation

import (
	"math"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/firecalc/fire-planner/internal/domain"
)

func stressAssumptions() domain.ScenarioAssumptions {
	return domain.ScenarioAssumptions{
		CurrentAge:      30,
		CurrentNetWorth: decimal.NewFromInt(500000),
		AnnualSavings:   decimal.NewFromInt(50000),
		AnnualExpenses:  decimal.NewFromInt(40000),
		ExpectedReturn:  decimal.NewFromFloat(0.07),
		BondReturn:      decimal.NewFromFloat(0.03),
		WithdrawalRate:  decimal.NewFromFloat(0.04),
	}
}

func testCrash() domain.MarketCrashScenario {
	return domain.MarketCrashScenario{
		Name:            "test-crash",
		CrashPercentage: decimal.NewFromInt(50),
		StartYear:       2,
		CrashDuration:   1,
		RecoveryPattern: domain.RecoveryVShape,
		RecoveryYears:   4,
	}
}

func TestStressTestRun_CrashDelaysFI(t *testing.T) {
	engine := NewStressTestEngine()
	result, err := engine.Run(stressAssumptions(), testCrash())
	if err != nil {
		t.Fatalf("Failed to run stress test: %v", err)
	}

	if !result.Baseline.ReachedFI || !result.Stressed.ReachedFI {
		t.Fatal("Both projections should still reach FI")
	}
	if result.Stressed.YearsToFI <= result.Baseline.YearsToFI {
		t.Errorf("A 50%% crash should delay FI: baseline %.1f, stressed %.1f",
			result.Baseline.YearsToFI, result.Stressed.YearsToFI)
	}
	if result.Impact.DelayYears <= 0 {
		t.Errorf("Expected a positive delay, got %f", result.Impact.DelayYears)
	}
	if result.Impact.DelayPercent <= 0 {
		t.Errorf("Expected a positive delay percentage, got %f", result.Impact.DelayPercent)
	}
	if result.Scenario.Name != "test-crash" {
		t.Errorf("Result should echo the scenario, got %q", result.Scenario.Name)
	}
}

func TestStressTestRun_ImmediateCrash(t *testing.T) {
	engine := NewStressTestEngine()
	crash := domain.MarketCrashScenario{
		Name:            "day-one",
		CrashPercentage: decimal.NewFromInt(50),
		StartYear:       0,
		CrashDuration:   1,
		RecoveryPattern: domain.RecoveryVShape,
		RecoveryYears:   4,
	}

	result, err := engine.Run(stressAssumptions(), crash)
	if err != nil {
		t.Fatalf("Failed to run stress test: %v", err)
	}
	if result.Stressed.YearsToFI <= result.Baseline.YearsToFI {
		t.Errorf("An immediate crash should delay FI: baseline %.1f, stressed %.1f",
			result.Baseline.YearsToFI, result.Stressed.YearsToFI)
	}
	if !result.Impact.NetWorthAfterCrash.LessThan(result.Impact.NetWorthAtCrash) {
		t.Errorf("Net worth after the crash (%s) should be below the pre-crash level (%s)",
			result.Impact.NetWorthAfterCrash, result.Impact.NetWorthAtCrash)
	}
}

func TestStressTestRun_NetWorthDropsThroughCrash(t *testing.T) {
	engine := NewStressTestEngine()
	result, err := engine.Run(stressAssumptions(), testCrash())
	if err != nil {
		t.Fatalf("Failed to run stress test: %v", err)
	}

	if result.Impact.NetWorthAfterCrash.GreaterThanOrEqual(result.Impact.NetWorthAtCrash) {
		t.Errorf("Net worth after a 50%% crash (%s) should be below the pre-crash baseline (%s)",
			result.Impact.NetWorthAfterCrash, result.Impact.NetWorthAtCrash)
	}
}

func TestStressTestRun_RecoveryShapeOrdering(t *testing.T) {
	engine := NewStressTestEngine()
	a := stressAssumptions()

	crash := testCrash()
	crash.RecoveryYears = 6

	yearsFor := func(pattern domain.RecoveryPattern) float64 {
		crash.RecoveryPattern = pattern
		result, err := engine.Run(a, crash)
		if err != nil {
			t.Fatalf("Failed to run %s stress test: %v", pattern, err)
		}
		return result.Stressed.YearsToFI
	}

	vShape := yearsFor(domain.RecoveryVShape)
	uShape := yearsFor(domain.RecoveryUShape)
	lShape := yearsFor(domain.RecoveryLShape)

	// V rebounds at an accelerated flat rate, U ramps from half strength,
	// L crawls back from a fifth. Slower shapes can never reach FI sooner.
	if vShape > uShape {
		t.Errorf("V-shape recovery (%.1f years) should not be slower than U-shape (%.1f)", vShape, uShape)
	}
	if uShape > lShape {
		t.Errorf("U-shape recovery (%.1f years) should not be slower than L-shape (%.1f)", uShape, lShape)
	}
}

func TestStressTestRun_Errors(t *testing.T) {
	engine := NewStressTestEngine()
	a := stressAssumptions()

	crash := testCrash()
	crash.RecoveryPattern = "w_shape"
	if _, err := engine.Run(a, crash); err == nil {
		t.Error("Expected an error for an unknown recovery pattern")
	}

	crash = testCrash()
	crash.StartYear = -1
	if _, err := engine.Run(a, crash); err == nil {
		t.Error("Expected an error for a negative start year")
	}
}

func TestCrashRatesForYear_Windows(t *testing.T) {
	a := stressAssumptions()
	scenario := domain.MarketCrashScenario{
		Name:            "windows",
		CrashPercentage: decimal.NewFromInt(50),
		StartYear:       2,
		CrashDuration:   1.5,
		RecoveryPattern: domain.RecoveryUShape,
		RecoveryYears:   2,
	}

	cases := []struct {
		year      int
		wantStock decimal.Decimal
		wantBond  decimal.Decimal
	}{
		{0, a.ExpectedReturn, a.BondReturn}, // before the crash
		{1, a.ExpectedReturn, a.BondReturn},
		{2, decimal.NewFromFloat(-0.5), decimal.NewFromFloat(0.015)},  // crash year, bonds halved
		{3, decimal.NewFromFloat(-0.05), decimal.NewFromFloat(0.01)}, // still at the bottom (3 < 3.5)
		// Recovery year 4: progress (4 - 3.5) / 2 = 0.25, U-shape rate
		// 0.07 * (0.5 + 0.5*0.25).
		{4, a.ExpectedReturn.Mul(decimal.NewFromFloat(0.625)), a.BondReturn},
		{6, a.ExpectedReturn, a.BondReturn}, // fully recovered (6 >= 5.5)
	}

	for _, tc := range cases {
		stock, bond := crashRatesForYear(a, scenario, tc.year)
		if !stock.Equal(tc.wantStock) {
			t.Errorf("Year %d: expected stock rate %s, got %s", tc.year, tc.wantStock, stock)
		}
		if !bond.Equal(tc.wantBond) {
			t.Errorf("Year %d: expected bond rate %s, got %s", tc.year, tc.wantBond, bond)
		}
	}
}

func TestCrashImpact_InfiniteDelayPropagation(t *testing.T) {
	// With no savings and zero returns the baseline never reaches FI, so
	// the delay figures must stay infinite rather than produce NaN math.
	a := stressAssumptions()
	a.AnnualSavings = decimal.Zero
	a.ExpectedReturn = decimal.Zero
	a.BondReturn = decimal.Zero

	engine := NewStressTestEngine()
	result, err := engine.Run(a, testCrash())
	if err != nil {
		t.Fatalf("Failed to run stress test: %v", err)
	}
	if !math.IsInf(result.Impact.DelayYears, 1) {
		t.Errorf("Expected infinite delay, got %f", result.Impact.DelayYears)
	}
	if !math.IsInf(result.Impact.DelayPercent, 1) {
		t.Errorf("Expected infinite delay percent, got %f", result.Impact.DelayPercent)
	}
}

func TestStressTestRun_EventualRecovery(t *testing.T) {
	engine := NewStressTestEngine()
	a := stressAssumptions()

	// A mild, early correction with a fast rebound: the stressed path
	// should climb back past the pre-crash baseline well before FI.
	crash := domain.MarketCrashScenario{
		Name:            "mild",
		CrashPercentage: decimal.NewFromInt(20),
		StartYear:       1,
		CrashDuration:   0.5,
		RecoveryPattern: domain.RecoveryVShape,
		RecoveryYears:   2,
	}
	result, err := engine.Run(a, crash)
	if err != nil {
		t.Fatalf("Failed to run stress test: %v", err)
	}
	if !result.Impact.Recovered {
		t.Error("Expected the portfolio to recover past its pre-crash level")
	}
	if result.Impact.RecoveryYear <= crash.StartYear {
		t.Errorf("Recovery year %d should come after the crash", result.Impact.RecoveryYear)
	}
}

func TestPresetCrashScenarios(t *testing.T) {
	presets := PresetCrashScenarios()
	if len(presets) != 3 {
		t.Fatalf("Expected 3 presets, got %d", len(presets))
	}

	names := map[string]bool{}
	for _, p := range presets {
		names[p.Name] = true
		if p.CrashPercentage.LessThanOrEqual(decimal.Zero) {
			t.Errorf("Preset %s has a non-positive crash percentage", p.Name)
		}
	}
	for _, name := range []string{"financial-crisis", "dot-com-bust", "sharp-correction"} {
		if !names[name] {
			t.Errorf("Missing preset %q", name)
		}
	}
}

func TestFindCrashScenario(t *testing.T) {
	scenario, ok := FindCrashScenario("Financial-Crisis")
	if !ok {
		t.Fatal("Lookup should be case-insensitive")
	}
	if !scenario.CrashPercentage.Equal(decimal.NewFromInt(50)) {
		t.Errorf("Expected a 50%% crash, got %s", scenario.CrashPercentage)
	}

	if _, ok := FindCrashScenario("black-swan"); ok {
		t.Error("Expected a miss for an unknown scenario")
	}
}

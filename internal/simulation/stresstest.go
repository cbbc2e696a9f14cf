package simulation

import (
	"math"
	"strings"

	"github.com/firecalc/fire-planner/internal/domain"
	"github.com/firecalc/fire-planner/pkg/dateutil"
	"github.com/shopspring/decimal"
)

// StressTestEngine re-runs the glide-path projection with year-localized
// crash returns and diffs it against the unstressed baseline.
type StressTestEngine struct {
	Logger Logger
}

// NewStressTestEngine creates an engine with a no-op logger.
func NewStressTestEngine() *StressTestEngine {
	return &StressTestEngine{Logger: NopLogger{}}
}

// Run produces the baseline projection, the stressed projection, and the
// derived impact metrics for one crash scenario.
func (e *StressTestEngine) Run(a domain.ScenarioAssumptions, scenario domain.MarketCrashScenario) (*domain.StressTestResult, error) {
	switch scenario.RecoveryPattern {
	case domain.RecoveryVShape, domain.RecoveryUShape, domain.RecoveryLShape:
	default:
		return nil, newConfigError("recovery_pattern", "unknown pattern "+string(scenario.RecoveryPattern))
	}
	if scenario.StartYear < 0 {
		return nil, newConfigError("start_year", "cannot be negative")
	}

	baseline := ProjectGlidePath(a)
	stressed := projectStressed(a, scenario)

	e.Logger.Debugf("stress %q: baseline FI in %.1f years, stressed in %.1f",
		scenario.Name, baseline.YearsToFI, stressed.YearsToFI)

	return &domain.StressTestResult{
		Scenario: scenario,
		Baseline: baseline,
		Stressed: stressed,
		Impact:   crashImpact(baseline, stressed, scenario),
	}, nil
}

// projectStressed runs the glide-path loop with the crash scenario's rates.
// Each year is recorded with its start-of-year net worth, and the FI check
// carries an explicit year > 0 guard evaluated before the state advances
// (the baseline projection checks after the full year update instead; the
// two orderings are deliberately not unified).
func projectStressed(a domain.ScenarioAssumptions, scenario domain.MarketCrashScenario) domain.FIProjection {
	one := decimal.NewFromInt(1)

	netWorth := a.CurrentNetWorth
	expenses := a.AnnualExpenses
	savings := a.AnnualSavings

	years := make([]domain.FIProjectionYear, 0, 32)
	yearsToFI := math.Inf(1)
	reached := false

	for year := 0; year <= MaxProjectionYears; year++ {
		age := a.CurrentAge + year
		stockRate, bondRate := crashRatesForYear(a, scenario, year)
		blended := a.BlendedReturnAt(age, stockRate, bondRate)

		years = append(years, domain.FIProjectionYear{
			Year:            year,
			Age:             age,
			NetWorth:        netWorth,
			Expenses:        expenses,
			Savings:         savings,
			StockAllocation: a.StockAllocationAt(age),
			BlendedReturn:   blended,
		})

		if year > 0 && netWorth.GreaterThanOrEqual(expenses.Div(a.WithdrawalRate)) {
			yearsToFI = float64(year)
			reached = true
			break
		}

		netWorth = netWorth.Mul(one.Add(blended)).Add(savings)
		expenses = expenses.Mul(one.Add(a.InflationRate))
		savings = savings.Mul(one.Add(a.IncomeGrowthRate))
	}

	return domain.FIProjection{
		Years:      years,
		YearsToFI:  yearsToFI,
		FINumber:   a.FINumber(),
		TargetDate: dateutil.DateAfterYears(nowFunc(), yearsToFI),
		ReachedFI:  reached,
	}
}

// crashRatesForYear returns the stock and bond rates in effect during a
// given projection year of the stressed run: normal before the crash, the
// full drop in the crash year, depressed flat rates at the bottom, a
// shape-dependent recovery, then normal rates again.
func crashRatesForYear(a domain.ScenarioAssumptions, scenario domain.MarketCrashScenario, year int) (stockRate, bondRate decimal.Decimal) {
	fy := float64(year)
	crashStart := float64(scenario.StartYear)
	crashEnd := crashStart + scenario.CrashDuration
	recoveryEnd := crashEnd + float64(scenario.RecoveryYears)

	switch {
	case year == scenario.StartYear:
		stockRate = scenario.CrashPercentage.Div(decimal.NewFromInt(100)).Neg()
		bondRate = a.BondReturn.Mul(decimal.NewFromFloat(0.5))
	case fy > crashStart && fy < crashEnd:
		stockRate = decimal.NewFromFloat(-0.05)
		bondRate = decimal.NewFromFloat(0.01)
	case fy >= crashEnd && fy < recoveryEnd && scenario.RecoveryYears > 0:
		progress := (fy - crashEnd) / float64(scenario.RecoveryYears)
		switch scenario.RecoveryPattern {
		case domain.RecoveryVShape:
			// Flat accelerated rebound, independent of progress.
			stockRate = a.ExpectedReturn.Mul(decimal.NewFromFloat(1.5))
		case domain.RecoveryUShape:
			stockRate = a.ExpectedReturn.Mul(decimal.NewFromFloat(0.5 + 0.5*progress))
		case domain.RecoveryLShape:
			stockRate = a.ExpectedReturn.Mul(decimal.NewFromFloat(0.2 + 0.8*progress))
		}
		bondRate = a.BondReturn
	default:
		stockRate = a.ExpectedReturn
		bondRate = a.BondReturn
	}
	return stockRate, bondRate
}

// crashImpact derives the delay and net-worth metrics from the two
// projections. Infinite years-to-FI on either side propagates into the
// delay figures.
func crashImpact(baseline, stressed domain.FIProjection, scenario domain.MarketCrashScenario) domain.CrashImpact {
	delay := math.Inf(1)
	delayPercent := math.Inf(1)
	if !math.IsInf(baseline.YearsToFI, 1) && !math.IsInf(stressed.YearsToFI, 1) {
		delay = stressed.YearsToFI - baseline.YearsToFI
		if baseline.YearsToFI > 0 {
			delayPercent = delay / baseline.YearsToFI * 100
		} else if delay > 0 {
			delayPercent = math.Inf(1)
		} else {
			delayPercent = 0
		}
	}

	atIdx := scenario.StartYear
	if last := len(baseline.Years) - 1; atIdx > last {
		atIdx = last
	}
	netWorthAtCrash := baseline.Years[atIdx].NetWorth

	afterIdx := scenario.StartYear + int(math.Ceil(scenario.CrashDuration))
	if last := len(stressed.Years) - 1; afterIdx > last {
		afterIdx = last
	}
	netWorthAfterCrash := stressed.Years[afterIdx].NetWorth

	impact := domain.CrashImpact{
		DelayYears:         delay,
		DelayPercent:       delayPercent,
		NetWorthAtCrash:    netWorthAtCrash,
		NetWorthAfterCrash: netWorthAfterCrash,
	}
	for i := afterIdx + 1; i < len(stressed.Years); i++ {
		if stressed.Years[i].NetWorth.GreaterThanOrEqual(netWorthAtCrash) {
			impact.Recovered = true
			impact.RecoveryYear = stressed.Years[i].Year
			break
		}
	}
	return impact
}

// PresetCrashScenarios returns the built-in named crash definitions the CLI
// offers out of the box.
func PresetCrashScenarios() []domain.MarketCrashScenario {
	return []domain.MarketCrashScenario{
		{
			Name:            "financial-crisis",
			CrashPercentage: decimal.NewFromInt(50),
			StartYear:       2,
			CrashDuration:   1.5,
			RecoveryPattern: domain.RecoveryUShape,
			RecoveryYears:   4,
		},
		{
			Name:            "dot-com-bust",
			CrashPercentage: decimal.NewFromInt(45),
			StartYear:       1,
			CrashDuration:   2,
			RecoveryPattern: domain.RecoveryLShape,
			RecoveryYears:   6,
		},
		{
			Name:            "sharp-correction",
			CrashPercentage: decimal.NewFromInt(20),
			StartYear:       1,
			CrashDuration:   0.5,
			RecoveryPattern: domain.RecoveryVShape,
			RecoveryYears:   2,
		},
	}
}

// FindCrashScenario resolves a preset crash scenario by name.
func FindCrashScenario(name string) (domain.MarketCrashScenario, bool) {
	for _, sc := range PresetCrashScenarios() {
		if strings.EqualFold(sc.Name, name) {
			return sc, true
		}
	}
	return domain.MarketCrashScenario{}, false
}

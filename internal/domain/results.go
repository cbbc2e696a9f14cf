package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// SimulationRun is one full simulated retirement trial. Immutable once
// produced by a withdrawal strategy.
type SimulationRun struct {
	RunIndex       int             `json:"run_index"`
	Success        bool            `json:"success"`
	FinalPortfolio decimal.Decimal `json:"final_portfolio"`
	YearsLasted    int             `json:"years_lasted"`
	TotalWithdrawn decimal.Decimal `json:"total_withdrawn"`

	// Returns holds the prefix of the return sequence actually consumed
	// before the run ended (the full sequence on success).
	Returns []decimal.Decimal `json:"returns,omitempty"`
}

// MonteCarloResult aggregates a batch of simulated retirements drawn from
// the statistical sampler. Percentiles use nearest-rank indexing on the
// sorted final portfolio values.
type MonteCarloResult struct {
	Runs                       []SimulationRun `json:"runs"`
	SuccessRate                decimal.Decimal `json:"success_rate"`
	MedianFinalPortfolio       decimal.Decimal `json:"median_final_portfolio"`
	Percentile10FinalPortfolio decimal.Decimal `json:"percentile_10_final_portfolio"`
	Percentile90FinalPortfolio decimal.Decimal `json:"percentile_90_final_portfolio"`

	NumSimulations   int             `json:"num_simulations"`
	RetirementYears  int             `json:"retirement_years"`
	Strategy         string          `json:"strategy"`
	InitialPortfolio decimal.Decimal `json:"initial_portfolio"`
	Seed             int64           `json:"seed"`
}

// HistoricalSimulationResult aggregates retirements replayed over rolling
// windows of real historical returns. Same statistics as MonteCarloResult
// so consumers can use either interchangeably.
type HistoricalSimulationResult struct {
	Runs                       []SimulationRun `json:"runs"`
	SuccessRate                decimal.Decimal `json:"success_rate"`
	MedianFinalPortfolio       decimal.Decimal `json:"median_final_portfolio"`
	Percentile10FinalPortfolio decimal.Decimal `json:"percentile_10_final_portfolio"`
	Percentile90FinalPortfolio decimal.Decimal `json:"percentile_90_final_portfolio"`

	NumWindows       int             `json:"num_windows"`
	WindowYears      int             `json:"window_years"`
	Strategy         string          `json:"strategy"`
	InitialPortfolio decimal.Decimal `json:"initial_portfolio"`

	// StartYears holds the first calendar year of each rolling window, in
	// run order.
	StartYears []int `json:"start_years"`
}

// FIProjectionYear is a single-year snapshot in a deterministic trajectory.
type FIProjectionYear struct {
	Year            int             `json:"year"`
	Age             int             `json:"age"`
	NetWorth        decimal.Decimal `json:"net_worth"`
	Expenses        decimal.Decimal `json:"expenses"`
	Savings         decimal.Decimal `json:"savings"`
	StockAllocation decimal.Decimal `json:"stock_allocation"`
	BlendedReturn   decimal.Decimal `json:"blended_return"`
}

// FIProjection is a year-by-year deterministic net worth trajectory.
// YearsToFI is +Inf when FI is never reached within the projection cap;
// TargetDate is then the far-future sentinel.
type FIProjection struct {
	Years      []FIProjectionYear `json:"years"`
	YearsToFI  float64            `json:"years_to_fi"`
	FINumber   decimal.Decimal    `json:"fi_number"`
	TargetDate time.Time          `json:"target_date"`
	ReachedFI  bool               `json:"reached_fi"`
}

// FIResult is the closed-form years-to-FI answer. Progress is a percentage
// in [0, 100] of the FI number already accumulated.
type FIResult struct {
	FINumber   decimal.Decimal `json:"fi_number"`
	YearsToFI  float64         `json:"years_to_fi"`
	TargetDate time.Time       `json:"target_date"`
	Progress   decimal.Decimal `json:"progress"`
}

// ProbabilityCurvePoint is one sampled retirement age on the success
// probability curve.
type ProbabilityCurvePoint struct {
	RetirementAge        int             `json:"retirement_age"`
	CalendarYear         int             `json:"calendar_year"`
	SuccessRate          decimal.Decimal `json:"success_rate"`
	YearsToRetirement    int             `json:"years_to_retirement"`
	MedianFinalPortfolio decimal.Decimal `json:"median_final_portfolio"`
}

// ProbabilityCurve is the full age sweep plus the threshold ages derived
// from it. Each threshold falls back to the max swept age when no point
// crosses it.
type ProbabilityCurve struct {
	Points []ProbabilityCurvePoint `json:"points"`

	EarliestViableAge    int `json:"earliest_viable_age"`    // first age with success >= 50%
	OptimalRetirementAge int `json:"optimal_retirement_age"` // first age with success >= 90%
	SafeRetirementAge    int `json:"safe_retirement_age"`    // first age with success >= 95%
}

// CrashImpact holds the derived metrics comparing a stressed projection to
// its unstressed baseline. Delay values are +Inf when either side never
// reaches FI.
type CrashImpact struct {
	DelayYears         float64         `json:"delay_years"`
	DelayPercent       float64         `json:"delay_percent"`
	NetWorthAtCrash    decimal.Decimal `json:"net_worth_at_crash"`
	NetWorthAfterCrash decimal.Decimal `json:"net_worth_after_crash"`
	Recovered          bool            `json:"recovered"`
	RecoveryYear       int             `json:"recovery_year,omitempty"`
}

// StressTestResult pairs baseline and stressed projections with the crash
// scenario that produced them.
type StressTestResult struct {
	Scenario MarketCrashScenario `json:"scenario"`
	Baseline FIProjection        `json:"baseline"`
	Stressed FIProjection        `json:"stressed"`
	Impact   CrashImpact         `json:"impact"`
}

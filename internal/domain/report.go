package domain

import "time"

// PlanReport bundles every analysis produced for one scenario so a single
// formatter pass can render whatever the caller asked for. Sections left
// nil were not requested.
type PlanReport struct {
	GeneratedAt time.Time           `json:"generated_at"`
	Assumptions ScenarioAssumptions `json:"assumptions"`

	FIResult   *FIResult                   `json:"fi_result,omitempty"`
	Projection *FIProjection               `json:"projection,omitempty"`
	MonteCarlo *MonteCarloResult           `json:"monte_carlo,omitempty"`
	Backtest   *HistoricalSimulationResult `json:"backtest,omitempty"`
	Curve      *ProbabilityCurve           `json:"probability_curve,omitempty"`

	StressTests []StressTestResult `json:"stress_tests,omitempty"`
}

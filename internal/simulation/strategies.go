package simulation

import (
	"github.com/firecalc/fire-planner/internal/domain"
	"github.com/shopspring/decimal"
)

// Withdrawal strategy names accepted by NewWithdrawalStrategy.
const (
	StrategyFixed      = "fixed"
	StrategyPercentage = "percentage"
	StrategyGuardrails = "guardrails"
)

// WithdrawalStrategy turns an initial portfolio and a sequence of annual
// returns into one SimulationRun. Each year the strategy withdraws first,
// then applies that year's return; a portfolio at or below zero ends the
// run as a failure. Implementations keep no per-run state and are safe for
// concurrent use.
type WithdrawalStrategy interface {
	Name() string
	Run(initialPortfolio decimal.Decimal, returns []decimal.Decimal) domain.SimulationRun
}

// StrategyConfig selects and parameterizes a withdrawal strategy.
// AnnualWithdrawal is required for "fixed", WithdrawalRate for
// "percentage"; "guardrails" takes its own block.
type StrategyConfig struct {
	Strategy         string               `yaml:"strategy" json:"strategy"`
	AnnualWithdrawal *decimal.Decimal     `yaml:"annual_withdrawal,omitempty" json:"annual_withdrawal,omitempty"`
	WithdrawalRate   *decimal.Decimal     `yaml:"withdrawal_rate,omitempty" json:"withdrawal_rate,omitempty"`
	InflationRate    decimal.Decimal      `yaml:"inflation_rate,omitempty" json:"inflation_rate,omitempty"`
	Guardrails       *GuardrailsConfig    `yaml:"guardrails,omitempty" json:"guardrails,omitempty"`
}

// GuardrailsConfig holds the spending bands for the adaptive strategy.
// Guardrails and adjustment default to the usual +/-20% bands around the
// initial withdrawal rate with 10% spending adjustments when left zero.
type GuardrailsConfig struct {
	InitialWithdrawalRate decimal.Decimal `yaml:"initial_withdrawal_rate" json:"initial_withdrawal_rate"`
	UpperGuardrail        decimal.Decimal `yaml:"upper_guardrail,omitempty" json:"upper_guardrail,omitempty"`
	LowerGuardrail        decimal.Decimal `yaml:"lower_guardrail,omitempty" json:"lower_guardrail,omitempty"`
	SpendingAdjustment    decimal.Decimal `yaml:"spending_adjustment,omitempty" json:"spending_adjustment,omitempty"`
	SpendingFloor         decimal.Decimal `yaml:"spending_floor,omitempty" json:"spending_floor,omitempty"`
}

// NewWithdrawalStrategy validates the config and builds the named strategy.
// It fails fast with a ConfigError on a missing required parameter or an
// unknown strategy name; it never silently defaults.
func NewWithdrawalStrategy(cfg StrategyConfig) (WithdrawalStrategy, error) {
	switch cfg.Strategy {
	case StrategyFixed:
		if cfg.AnnualWithdrawal == nil {
			return nil, newConfigError("annual_withdrawal", "required for the fixed strategy")
		}
		return &FixedWithdrawal{
			AnnualWithdrawal: *cfg.AnnualWithdrawal,
			InflationRate:    cfg.InflationRate,
		}, nil
	case StrategyPercentage:
		if cfg.WithdrawalRate == nil {
			return nil, newConfigError("withdrawal_rate", "required for the percentage strategy")
		}
		return &PercentageWithdrawal{Rate: *cfg.WithdrawalRate}, nil
	case StrategyGuardrails:
		if cfg.Guardrails == nil || cfg.Guardrails.InitialWithdrawalRate.LessThanOrEqual(decimal.Zero) {
			return nil, newConfigError("guardrails.initial_withdrawal_rate", "required for the guardrails strategy")
		}
		return newGuardrailsWithdrawal(*cfg.Guardrails, cfg.InflationRate), nil
	case "":
		return nil, newConfigError("strategy", "no withdrawal strategy named")
	default:
		return nil, newConfigError("strategy", "unknown withdrawal strategy "+cfg.Strategy)
	}
}

// FixedWithdrawal withdraws a fixed dollar amount, inflated every year
// after the first.
type FixedWithdrawal struct {
	AnnualWithdrawal decimal.Decimal
	InflationRate    decimal.Decimal
}

func (s *FixedWithdrawal) Name() string { return StrategyFixed }

func (s *FixedWithdrawal) Run(initialPortfolio decimal.Decimal, returns []decimal.Decimal) domain.SimulationRun {
	one := decimal.NewFromInt(1)
	portfolio := initialPortfolio
	withdrawal := s.AnnualWithdrawal
	totalWithdrawn := decimal.Zero

	for i, r := range returns {
		if i > 0 {
			withdrawal = withdrawal.Mul(one.Add(s.InflationRate))
		}
		portfolio = portfolio.Sub(withdrawal)
		totalWithdrawn = totalWithdrawn.Add(withdrawal)
		if portfolio.LessThanOrEqual(decimal.Zero) {
			return depletedRun(i, totalWithdrawn, returns)
		}
		portfolio = portfolio.Mul(one.Add(r))
	}
	return survivedRun(portfolio, totalWithdrawn, returns)
}

// PercentageWithdrawal withdraws a fixed fraction of whatever the portfolio
// is worth at the start of each year.
type PercentageWithdrawal struct {
	Rate decimal.Decimal
}

func (s *PercentageWithdrawal) Name() string { return StrategyPercentage }

func (s *PercentageWithdrawal) Run(initialPortfolio decimal.Decimal, returns []decimal.Decimal) domain.SimulationRun {
	one := decimal.NewFromInt(1)
	portfolio := initialPortfolio
	totalWithdrawn := decimal.Zero

	for i, r := range returns {
		withdrawal := portfolio.Mul(s.Rate)
		portfolio = portfolio.Sub(withdrawal)
		totalWithdrawn = totalWithdrawn.Add(withdrawal)
		if portfolio.LessThanOrEqual(decimal.Zero) {
			return depletedRun(i, totalWithdrawn, returns)
		}
		portfolio = portfolio.Mul(one.Add(r))
	}
	return survivedRun(portfolio, totalWithdrawn, returns)
}

// GuardrailsWithdrawal starts from an initial withdrawal rate and inflates
// spending each year, but cuts spending when the current withdrawal rate
// breaches the upper guardrail and raises it when the rate drops below the
// lower one. Spending never falls below the floor fraction of the
// inflation-adjusted base amount.
type GuardrailsWithdrawal struct {
	InitialRate    decimal.Decimal
	UpperGuardrail decimal.Decimal
	LowerGuardrail decimal.Decimal
	Adjustment     decimal.Decimal
	Floor          decimal.Decimal
	InflationRate  decimal.Decimal
}

func newGuardrailsWithdrawal(cfg GuardrailsConfig, inflation decimal.Decimal) *GuardrailsWithdrawal {
	upper := cfg.UpperGuardrail
	if upper.IsZero() {
		upper = cfg.InitialWithdrawalRate.Mul(decimal.NewFromFloat(1.2))
	}
	lower := cfg.LowerGuardrail
	if lower.IsZero() {
		lower = cfg.InitialWithdrawalRate.Mul(decimal.NewFromFloat(0.8))
	}
	adjustment := cfg.SpendingAdjustment
	if adjustment.IsZero() {
		adjustment = decimal.NewFromFloat(0.1)
	}
	floor := cfg.SpendingFloor
	if floor.IsZero() {
		floor = decimal.NewFromFloat(0.8)
	}
	return &GuardrailsWithdrawal{
		InitialRate:    cfg.InitialWithdrawalRate,
		UpperGuardrail: upper,
		LowerGuardrail: lower,
		Adjustment:     adjustment,
		Floor:          floor,
		InflationRate:  inflation,
	}
}

func (s *GuardrailsWithdrawal) Name() string { return StrategyGuardrails }

func (s *GuardrailsWithdrawal) Run(initialPortfolio decimal.Decimal, returns []decimal.Decimal) domain.SimulationRun {
	one := decimal.NewFromInt(1)
	portfolio := initialPortfolio
	baseWithdrawal := initialPortfolio.Mul(s.InitialRate)
	withdrawal := baseWithdrawal
	totalWithdrawn := decimal.Zero

	for i, r := range returns {
		if i > 0 {
			baseWithdrawal = baseWithdrawal.Mul(one.Add(s.InflationRate))
			withdrawal = withdrawal.Mul(one.Add(s.InflationRate))
		}

		if !portfolio.IsPositive() {
			return depletedRun(i, totalWithdrawn, returns)
		}
		currentRate := withdrawal.Div(portfolio)
		if currentRate.GreaterThan(s.UpperGuardrail) {
			withdrawal = withdrawal.Mul(one.Sub(s.Adjustment))
		} else if currentRate.LessThan(s.LowerGuardrail) {
			withdrawal = withdrawal.Mul(one.Add(s.Adjustment))
		}
		if floor := baseWithdrawal.Mul(s.Floor); withdrawal.LessThan(floor) {
			withdrawal = floor
		}

		portfolio = portfolio.Sub(withdrawal)
		totalWithdrawn = totalWithdrawn.Add(withdrawal)
		if portfolio.LessThanOrEqual(decimal.Zero) {
			return depletedRun(i, totalWithdrawn, returns)
		}
		portfolio = portfolio.Mul(one.Add(r))
	}
	return survivedRun(portfolio, totalWithdrawn, returns)
}

// depletedRun records a failure in year index i. YearsLasted counts the
// complete years survived before the portfolio ran out.
func depletedRun(i int, totalWithdrawn decimal.Decimal, returns []decimal.Decimal) domain.SimulationRun {
	return domain.SimulationRun{
		Success:        false,
		FinalPortfolio: decimal.Zero,
		YearsLasted:    i,
		TotalWithdrawn: totalWithdrawn,
		Returns:        returns[:i+1],
	}
}

func survivedRun(finalPortfolio, totalWithdrawn decimal.Decimal, returns []decimal.Decimal) domain.SimulationRun {
	return domain.SimulationRun{
		Success:        true,
		FinalPortfolio: finalPortfolio,
		YearsLasted:    len(returns),
		TotalWithdrawn: totalWithdrawn,
		Returns:        returns,
	}
}

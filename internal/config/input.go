package config

import (
	"fmt"
	"os"

	"github.com/firecalc/fire-planner/internal/domain"
	"github.com/firecalc/fire-planner/internal/simulation"
	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"
)

// PlanConfig is the top-level YAML scenario file. Only the assumptions
// block is mandatory; the other sections configure the optional analyses.
type PlanConfig struct {
	Assumptions domain.ScenarioAssumptions `yaml:"assumptions" json:"assumptions"`

	MonteCarlo       *simulation.MonteCarloConfig       `yaml:"monte_carlo,omitempty" json:"monte_carlo,omitempty"`
	Backtest         *simulation.BacktestConfig         `yaml:"backtest,omitempty" json:"backtest,omitempty"`
	ProbabilityCurve *simulation.ProbabilityCurveConfig `yaml:"probability_curve,omitempty" json:"probability_curve,omitempty"`

	CrashScenarios []domain.MarketCrashScenario `yaml:"crash_scenarios,omitempty" json:"crash_scenarios,omitempty"`

	// HistoricalReturnsCSV points at an external year,return table for the
	// backtester; empty means the built-in dataset.
	HistoricalReturnsCSV string `yaml:"historical_returns_csv,omitempty" json:"historical_returns_csv,omitempty"`
}

// InputParser handles parsing of plan configuration files
type InputParser struct{}

// NewInputParser creates a new input parser
func NewInputParser() *InputParser {
	return &InputParser{}
}

// LoadFromFile loads configuration from a YAML file
func (ip *InputParser) LoadFromFile(filename string) (*PlanConfig, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to read file %s: %w", filename, err)
	}

	var config PlanConfig
	if err := yaml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	if err := ip.ValidateConfiguration(&config); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return &config, nil
}

// ValidateConfiguration range-checks the loaded configuration before it
// reaches the simulation core (the core does not re-validate).
func (ip *InputParser) ValidateConfiguration(config *PlanConfig) error {
	if err := ip.validateAssumptions(&config.Assumptions); err != nil {
		return fmt.Errorf("assumptions validation failed: %w", err)
	}

	if mc := config.MonteCarlo; mc != nil {
		if mc.NumSimulations <= 0 || mc.NumSimulations > 1000000 {
			return fmt.Errorf("monte_carlo.num_simulations must be between 1 and 1000000")
		}
		if mc.RetirementYears <= 0 || mc.RetirementYears > 100 {
			return fmt.Errorf("monte_carlo.retirement_years must be between 1 and 100")
		}
		if mc.InitialPortfolio.LessThan(decimal.Zero) {
			return fmt.Errorf("monte_carlo.initial_portfolio cannot be negative")
		}
	}

	if bt := config.Backtest; bt != nil {
		if bt.WindowYears <= 0 || bt.WindowYears > 100 {
			return fmt.Errorf("backtest.window_years must be between 1 and 100")
		}
		if bt.InitialPortfolio.LessThan(decimal.Zero) {
			return fmt.Errorf("backtest.initial_portfolio cannot be negative")
		}
	}

	if pc := config.ProbabilityCurve; pc != nil {
		if pc.MinRetirementAge <= 0 || pc.MaxRetirementAge < pc.MinRetirementAge {
			return fmt.Errorf("probability_curve retirement age range is invalid")
		}
		if pc.LifeExpectancy != 0 && pc.LifeExpectancy < pc.MinRetirementAge {
			return fmt.Errorf("probability_curve.life_expectancy cannot be below the minimum retirement age")
		}
	}

	for i, crash := range config.CrashScenarios {
		if err := ip.validateCrashScenario(&crash); err != nil {
			return fmt.Errorf("crash scenario %d validation failed: %w", i, err)
		}
	}

	return nil
}

// validateAssumptions validates the core scenario assumptions
func (ip *InputParser) validateAssumptions(a *domain.ScenarioAssumptions) error {
	if a.CurrentAge <= 0 || a.CurrentAge >= 120 {
		return fmt.Errorf("current age must be between 1 and 119")
	}
	if a.AnnualExpenses.LessThanOrEqual(decimal.Zero) {
		return fmt.Errorf("annual expenses must be positive")
	}
	if a.WithdrawalRate.LessThanOrEqual(decimal.Zero) || a.WithdrawalRate.GreaterThan(decimal.NewFromFloat(0.2)) {
		return fmt.Errorf("withdrawal rate must be between 0 and 20%%")
	}
	if a.ExpectedReturn.LessThanOrEqual(decimal.NewFromInt(-1)) {
		return fmt.Errorf("expected return cannot be -100%% or lower")
	}
	if a.ReturnStdDev.LessThan(decimal.Zero) {
		return fmt.Errorf("return standard deviation cannot be negative")
	}
	if a.InflationRate.LessThan(decimal.NewFromFloat(-0.10)) {
		return fmt.Errorf("inflation rate cannot be less than -10%% (extreme deflation)")
	}
	if a.SafetyMargin.LessThan(decimal.Zero) {
		return fmt.Errorf("safety margin cannot be negative")
	}

	if gp := a.GlidePath; gp != nil {
		if gp.StartAge > gp.EndAge {
			return fmt.Errorf("glide path start age cannot exceed end age")
		}
		one := decimal.NewFromInt(1)
		for _, alloc := range []decimal.Decimal{gp.StartStockAllocation, gp.EndStockAllocation} {
			if alloc.LessThan(decimal.Zero) || alloc.GreaterThan(one) {
				return fmt.Errorf("glide path allocations must be between 0 and 1")
			}
		}
	}

	return nil
}

// validateCrashScenario validates a single market crash definition
func (ip *InputParser) validateCrashScenario(crash *domain.MarketCrashScenario) error {
	if crash.Name == "" {
		return fmt.Errorf("crash scenario name is required")
	}
	if crash.CrashPercentage.LessThanOrEqual(decimal.Zero) || crash.CrashPercentage.GreaterThan(decimal.NewFromInt(100)) {
		return fmt.Errorf("crash percentage must be between 0 and 100")
	}
	if crash.StartYear < 0 {
		return fmt.Errorf("crash start year cannot be negative")
	}
	if crash.CrashDuration < 0 {
		return fmt.Errorf("crash duration cannot be negative")
	}
	if crash.RecoveryYears < 0 {
		return fmt.Errorf("recovery years cannot be negative")
	}
	switch crash.RecoveryPattern {
	case domain.RecoveryVShape, domain.RecoveryUShape, domain.RecoveryLShape:
	default:
		return fmt.Errorf("recovery pattern must be 'v_shape', 'u_shape', or 'l_shape'")
	}
	return nil
}

// CreateExampleConfiguration creates an example plan configuration
func (ip *InputParser) CreateExampleConfiguration() *PlanConfig {
	annualWithdrawal := decimal.NewFromInt(40000)

	return &PlanConfig{
		Assumptions: domain.ScenarioAssumptions{
			CurrentAge:       35,
			CurrentNetWorth:  decimal.NewFromInt(250000),
			AnnualSavings:    decimal.NewFromInt(40000),
			AnnualExpenses:   decimal.NewFromInt(50000),
			ExpectedReturn:   decimal.NewFromFloat(0.07),
			ReturnStdDev:     decimal.NewFromFloat(0.15),
			BondReturn:       decimal.NewFromFloat(0.035),
			InflationRate:    decimal.NewFromFloat(0.025),
			IncomeGrowthRate: decimal.NewFromFloat(0.02),
			WithdrawalRate:   decimal.NewFromFloat(0.04),
			GlidePath: &domain.GlidePath{
				StartAge:             35,
				EndAge:               65,
				StartStockAllocation: decimal.NewFromFloat(0.9),
				EndStockAllocation:   decimal.NewFromFloat(0.6),
			},
		},
		MonteCarlo: &simulation.MonteCarloConfig{
			NumSimulations:   1000,
			RetirementYears:  30,
			ExpectedReturn:   decimal.NewFromFloat(0.07),
			ReturnStdDev:     decimal.NewFromFloat(0.15),
			InitialPortfolio: decimal.NewFromInt(1000000),
			Strategy: simulation.StrategyConfig{
				Strategy:         simulation.StrategyFixed,
				AnnualWithdrawal: &annualWithdrawal,
				InflationRate:    decimal.NewFromFloat(0.025),
			},
		},
		Backtest: &simulation.BacktestConfig{
			WindowYears:      30,
			InitialPortfolio: decimal.NewFromInt(1000000),
			Strategy: simulation.StrategyConfig{
				Strategy:         simulation.StrategyFixed,
				AnnualWithdrawal: &annualWithdrawal,
				InflationRate:    decimal.NewFromFloat(0.025),
			},
		},
		ProbabilityCurve: &simulation.ProbabilityCurveConfig{
			CurrentAge:       35,
			CurrentNetWorth:  decimal.NewFromInt(250000),
			AnnualSavings:    decimal.NewFromInt(40000),
			AnnualExpenses:   decimal.NewFromInt(50000),
			ExpectedReturn:   decimal.NewFromFloat(0.07),
			ReturnStdDev:     decimal.NewFromFloat(0.15),
			MinRetirementAge: 45,
			MaxRetirementAge: 65,
		},
		CrashScenarios: []domain.MarketCrashScenario{
			{
				Name:            "financial-crisis",
				CrashPercentage: decimal.NewFromInt(50),
				StartYear:       2,
				CrashDuration:   1.5,
				RecoveryPattern: domain.RecoveryUShape,
				RecoveryYears:   4,
			},
		},
	}
}

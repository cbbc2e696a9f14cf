package simulation

import (
	"github.com/firecalc/fire-planner/internal/domain"
	"github.com/shopspring/decimal"
)

// DefaultLifeExpectancy is the planning horizon end when the config leaves
// life expectancy unset.
const DefaultLifeExpectancy = 95

// defaultCurveSimulations is the per-age Monte Carlo batch size when unset.
const defaultCurveSimulations = 1000

// ProbabilityCurveConfig configures a retirement-age sweep.
type ProbabilityCurveConfig struct {
	CurrentAge      int             `yaml:"current_age" json:"current_age"`
	CurrentNetWorth decimal.Decimal `yaml:"current_net_worth" json:"current_net_worth"`
	AnnualSavings   decimal.Decimal `yaml:"annual_savings" json:"annual_savings"`
	AnnualExpenses  decimal.Decimal `yaml:"annual_expenses" json:"annual_expenses"`
	ExpectedReturn  decimal.Decimal `yaml:"expected_return" json:"expected_return"`
	ReturnStdDev    decimal.Decimal `yaml:"return_std_dev" json:"return_std_dev"`
	InflationRate   decimal.Decimal `yaml:"inflation_rate,omitempty" json:"inflation_rate,omitempty"`

	MinRetirementAge int `yaml:"min_retirement_age" json:"min_retirement_age"`
	MaxRetirementAge int `yaml:"max_retirement_age" json:"max_retirement_age"`
	LifeExpectancy   int `yaml:"life_expectancy,omitempty" json:"life_expectancy,omitempty"`

	NumSimulations int   `yaml:"num_simulations,omitempty" json:"num_simulations,omitempty"`
	Seed           int64 `yaml:"seed,omitempty" json:"seed,omitempty"`
}

// ProbabilityCurveGenerator sweeps candidate retirement ages, projecting
// net worth to each age and running a Monte Carlo batch there.
type ProbabilityCurveGenerator struct {
	Simulator *MonteCarloSimulator
	Logger    Logger
}

// NewProbabilityCurveGenerator creates a generator with its own simulator.
func NewProbabilityCurveGenerator() *ProbabilityCurveGenerator {
	return &ProbabilityCurveGenerator{
		Simulator: NewMonteCarloSimulator(),
		Logger:    NopLogger{},
	}
}

// Generate runs the age sweep and extracts the threshold ages. Every age
// uses the fixed-withdrawal strategy with the annual expenses as the
// withdrawal amount, over max(1, lifeExpectancy - age) retirement years.
func (g *ProbabilityCurveGenerator) Generate(config ProbabilityCurveConfig) (*domain.ProbabilityCurve, error) {
	if config.MinRetirementAge <= 0 || config.MaxRetirementAge < config.MinRetirementAge {
		return nil, newConfigError("retirement_age_range", "min must be positive and not exceed max")
	}
	if config.LifeExpectancy == 0 {
		config.LifeExpectancy = DefaultLifeExpectancy
	}
	if config.NumSimulations == 0 {
		config.NumSimulations = defaultCurveSimulations
	}
	baseSeed := config.Seed
	if baseSeed == 0 {
		baseSeed = seedFunc()
	}

	one := decimal.NewFromInt(1)
	currentYear := nowFunc().Year()

	points := make([]domain.ProbabilityCurvePoint, 0, config.MaxRetirementAge-config.MinRetirementAge+1)
	for age := config.MinRetirementAge; age <= config.MaxRetirementAge; age++ {
		yearsToRetirement := age - config.CurrentAge
		if yearsToRetirement < 0 {
			yearsToRetirement = 0
		}

		// Accumulation phase: savings land before growth each year, in
		// exactly that order.
		projected := config.CurrentNetWorth
		for y := 0; y < yearsToRetirement; y++ {
			projected = projected.Add(config.AnnualSavings).Mul(one.Add(config.ExpectedReturn))
		}

		duration := config.LifeExpectancy - age
		if duration < 1 {
			duration = 1
		}

		withdrawal := config.AnnualExpenses
		result, err := g.Simulator.Run(MonteCarloConfig{
			NumSimulations:   config.NumSimulations,
			RetirementYears:  duration,
			ExpectedReturn:   config.ExpectedReturn,
			ReturnStdDev:     config.ReturnStdDev,
			InitialPortfolio: projected,
			Seed:             baseSeed + int64(age-config.MinRetirementAge+1)*int64(config.NumSimulations+1),
			Strategy: StrategyConfig{
				Strategy:         StrategyFixed,
				AnnualWithdrawal: &withdrawal,
				InflationRate:    config.InflationRate,
			},
		})
		if err != nil {
			return nil, err
		}

		points = append(points, domain.ProbabilityCurvePoint{
			RetirementAge:        age,
			CalendarYear:         currentYear + yearsToRetirement,
			SuccessRate:          result.SuccessRate,
			YearsToRetirement:    yearsToRetirement,
			MedianFinalPortfolio: result.MedianFinalPortfolio,
		})

		g.Logger.Debugf("curve: age %d success=%s median=%s",
			age, result.SuccessRate.StringFixed(4), result.MedianFinalPortfolio.StringFixed(0))
	}

	return &domain.ProbabilityCurve{
		Points:               points,
		EarliestViableAge:    firstAgeAtOrAbove(points, decimal.NewFromFloat(0.50), config.MaxRetirementAge),
		OptimalRetirementAge: firstAgeAtOrAbove(points, decimal.NewFromFloat(0.90), config.MaxRetirementAge),
		SafeRetirementAge:    firstAgeAtOrAbove(points, decimal.NewFromFloat(0.95), config.MaxRetirementAge),
	}, nil
}

// FindAgeForTargetRate sweeps the same curve and returns the first point
// meeting the caller's success-rate threshold, or the last computed point
// when the threshold is never reached.
func (g *ProbabilityCurveGenerator) FindAgeForTargetRate(config ProbabilityCurveConfig, targetRate decimal.Decimal) (domain.ProbabilityCurvePoint, error) {
	curve, err := g.Generate(config)
	if err != nil {
		return domain.ProbabilityCurvePoint{}, err
	}
	for _, point := range curve.Points {
		if point.SuccessRate.GreaterThanOrEqual(targetRate) {
			return point, nil
		}
	}
	return curve.Points[len(curve.Points)-1], nil
}

func firstAgeAtOrAbove(points []domain.ProbabilityCurvePoint, threshold decimal.Decimal, fallbackAge int) int {
	for _, point := range points {
		if point.SuccessRate.GreaterThanOrEqual(threshold) {
			return point.RetirementAge
		}
	}
	return fallbackAge
}

package simulation

import (
	"sort"
	"sync"

	"github.com/firecalc/fire-planner/internal/domain"
	"github.com/shopspring/decimal"
)

// maxConcurrentSimulations bounds the Monte Carlo worker pool.
const maxConcurrentSimulations = 10

// MonteCarloConfig holds the configuration for one Monte Carlo batch.
// Seed zero means a fresh seed from the package seed provider; any other
// value makes the whole batch reproducible.
type MonteCarloConfig struct {
	NumSimulations   int             `yaml:"num_simulations" json:"num_simulations"`
	RetirementYears  int             `yaml:"retirement_years" json:"retirement_years"`
	ExpectedReturn   decimal.Decimal `yaml:"expected_return" json:"expected_return"`
	ReturnStdDev     decimal.Decimal `yaml:"return_std_dev" json:"return_std_dev"`
	InitialPortfolio decimal.Decimal `yaml:"initial_portfolio" json:"initial_portfolio"`
	Seed             int64           `yaml:"seed,omitempty" json:"seed,omitempty"`
	Strategy         StrategyConfig  `yaml:"withdrawal" json:"withdrawal"`
}

// MonteCarloSimulator runs batches of independent simulated retirements,
// each drawing a fresh return sequence and applying the configured
// withdrawal strategy.
type MonteCarloSimulator struct {
	Logger Logger
}

// NewMonteCarloSimulator creates a simulator with a no-op logger.
func NewMonteCarloSimulator() *MonteCarloSimulator {
	return &MonteCarloSimulator{Logger: NopLogger{}}
}

// Run executes the batch. The strategy config is validated before any
// simulation work starts; a bad config returns a ConfigError and no result.
func (mcs *MonteCarloSimulator) Run(config MonteCarloConfig) (*domain.MonteCarloResult, error) {
	strategy, err := NewWithdrawalStrategy(config.Strategy)
	if err != nil {
		return nil, err
	}
	if config.NumSimulations <= 0 {
		return nil, newConfigError("num_simulations", "must be positive")
	}
	if config.RetirementYears <= 0 {
		return nil, newConfigError("retirement_years", "must be positive")
	}
	if config.Seed == 0 {
		config.Seed = seedFunc()
	}

	mcs.Logger.Debugf("monte carlo: %d simulations x %d years, strategy=%s, seed=%d",
		config.NumSimulations, config.RetirementYears, strategy.Name(), config.Seed)

	runs := make([]domain.SimulationRun, config.NumSimulations)
	var wg sync.WaitGroup
	semaphore := make(chan struct{}, maxConcurrentSimulations)

	for i := 0; i < config.NumSimulations; i++ {
		wg.Add(1)
		go func(runIndex int) {
			defer wg.Done()
			semaphore <- struct{}{}
			defer func() { <-semaphore }()

			// One sampler stream per run keeps draws independent across
			// workers and the batch reproducible for a fixed seed.
			sampler := NewReturnSampler(config.Seed + int64(runIndex))
			returns := sampler.GenerateReturns(config.RetirementYears, config.ExpectedReturn, config.ReturnStdDev)

			run := strategy.Run(config.InitialPortfolio, returns)
			run.RunIndex = runIndex
			runs[runIndex] = run
		}(i)
	}
	wg.Wait()

	successRate, median, p10, p90 := aggregateRuns(runs)

	return &domain.MonteCarloResult{
		Runs:                       runs,
		SuccessRate:                successRate,
		MedianFinalPortfolio:       median,
		Percentile10FinalPortfolio: p10,
		Percentile90FinalPortfolio: p90,
		NumSimulations:             config.NumSimulations,
		RetirementYears:            config.RetirementYears,
		Strategy:                   strategy.Name(),
		InitialPortfolio:           config.InitialPortfolio,
		Seed:                       config.Seed,
	}, nil
}

// aggregateRuns computes the success rate and the nearest-rank percentiles
// (floor(n*p) on the ascending finals — not interpolated).
func aggregateRuns(runs []domain.SimulationRun) (successRate, median, p10, p90 decimal.Decimal) {
	successCount := 0
	finals := make([]decimal.Decimal, len(runs))
	for i, run := range runs {
		if run.Success {
			successCount++
		}
		finals[i] = run.FinalPortfolio
	}
	sort.Slice(finals, func(i, j int) bool { return finals[i].LessThan(finals[j]) })

	n := len(finals)
	successRate = decimal.NewFromInt(int64(successCount)).Div(decimal.NewFromInt(int64(n)))
	median = finals[n/2]
	p10 = finals[n/10]
	p90 = finals[9*n/10]
	return successRate, median, p10, p90
}

package main

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/firecalc/fire-planner/internal/config"
	"github.com/firecalc/fire-planner/internal/domain"
	"github.com/firecalc/fire-planner/internal/output"
	"github.com/firecalc/fire-planner/internal/simulation"
)

var (
	configPath string
	formatName string
	verbose    bool
	seed       int64

	log = logrus.New()
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "fire-planner",
		Short: "FIRE retirement projection and simulation engine",
		Long: `fire-planner projects net worth to financial independence, runs Monte
Carlo and historical retirement simulations, sweeps retirement ages for
success probabilities, and stress-tests plans against market crashes.`,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			log.SetOutput(os.Stderr)
			if verbose {
				log.SetLevel(logrus.DebugLevel)
			} else {
				log.SetLevel(logrus.WarnLevel)
			}
		},
		SilenceUsage: true,
	}

	root.PersistentFlags().StringVarP(&configPath, "config", "c", "scenario.yaml", "path to the scenario YAML file")
	root.PersistentFlags().StringVarP(&formatName, "format", "f", "console", "output format (console, json)")
	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
	root.PersistentFlags().Int64Var(&seed, "seed", 0, "random seed (0 = non-deterministic)")

	root.AddCommand(newProjectCmd())
	root.AddCommand(newMonteCarloCmd())
	root.AddCommand(newBacktestCmd())
	root.AddCommand(newCurveCmd())
	root.AddCommand(newStressCmd())
	root.AddCommand(newExampleCmd())
	return root
}

func loadPlan() (*config.PlanConfig, error) {
	parser := config.NewInputParser()
	plan, err := parser.LoadFromFile(configPath)
	if err != nil {
		return nil, err
	}
	return plan, nil
}

func renderReport(report *domain.PlanReport) error {
	formatter := output.GetFormatterByName(formatName)
	if formatter == nil {
		return fmt.Errorf("unknown output format %q", formatName)
	}
	data, err := formatter.Format(report)
	if err != nil {
		return err
	}
	_, err = os.Stdout.Write(data)
	return err
}

func newReport(plan *config.PlanConfig) *domain.PlanReport {
	return &domain.PlanReport{
		GeneratedAt: time.Now(),
		Assumptions: plan.Assumptions,
	}
}

func newProjectCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "project",
		Short: "Deterministic years-to-FI and glide-path projection",
		RunE: func(cmd *cobra.Command, args []string) error {
			plan, err := loadPlan()
			if err != nil {
				return err
			}
			fi := simulation.CalculateYearsToFI(plan.Assumptions)
			projection := simulation.ProjectGlidePath(plan.Assumptions)

			report := newReport(plan)
			report.FIResult = &fi
			report.Projection = &projection
			return renderReport(report)
		},
	}
}

func newMonteCarloCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "montecarlo",
		Short: "Monte Carlo retirement simulation",
		RunE: func(cmd *cobra.Command, args []string) error {
			plan, err := loadPlan()
			if err != nil {
				return err
			}
			if plan.MonteCarlo == nil {
				return fmt.Errorf("scenario file has no monte_carlo section")
			}
			mcConfig := *plan.MonteCarlo
			if seed != 0 {
				mcConfig.Seed = seed
			}

			simulator := simulation.NewMonteCarloSimulator()
			simulator.Logger = log
			result, err := simulator.Run(mcConfig)
			if err != nil {
				return err
			}

			report := newReport(plan)
			report.MonteCarlo = result
			return renderReport(report)
		},
	}
}

func newBacktestCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "backtest",
		Short: "Historical rolling-window backtest",
		RunE: func(cmd *cobra.Command, args []string) error {
			plan, err := loadPlan()
			if err != nil {
				return err
			}
			if plan.Backtest == nil {
				return fmt.Errorf("scenario file has no backtest section")
			}

			returns := simulation.DefaultStockReturns()
			if plan.HistoricalReturnsCSV != "" {
				returns, err = simulation.LoadHistoricalReturnsCSV(plan.HistoricalReturnsCSV, "custom")
				if err != nil {
					return err
				}
			}
			log.Debugf("historical table %s: %d years (%d-%d)", returns.Name, returns.Len(), returns.MinYear, returns.MaxYear)

			backtester := simulation.NewHistoricalBacktester(returns)
			backtester.Logger = log
			result, err := backtester.Run(*plan.Backtest)
			if err != nil {
				return err
			}

			report := newReport(plan)
			report.Backtest = result
			return renderReport(report)
		},
	}
}

func newCurveCmd() *cobra.Command {
	var chart bool
	cmd := &cobra.Command{
		Use:   "curve",
		Short: "Retirement-age success probability curve",
		RunE: func(cmd *cobra.Command, args []string) error {
			plan, err := loadPlan()
			if err != nil {
				return err
			}
			if plan.ProbabilityCurve == nil {
				return fmt.Errorf("scenario file has no probability_curve section")
			}
			curveConfig := *plan.ProbabilityCurve
			if seed != 0 {
				curveConfig.Seed = seed
			}

			generator := simulation.NewProbabilityCurveGenerator()
			generator.Logger = log
			generator.Simulator.Logger = log
			curve, err := generator.Generate(curveConfig)
			if err != nil {
				return err
			}

			if chart {
				points := output.ProbabilityChartPoints(curve.Points)
				data, err := json.MarshalIndent(points, "", "  ")
				if err != nil {
					return err
				}
				data = append(data, '\n')
				_, err = os.Stdout.Write(data)
				return err
			}

			report := newReport(plan)
			report.Curve = curve
			return renderReport(report)
		},
	}
	cmd.Flags().BoolVar(&chart, "chart", false, "emit chart-ready points instead of the full report")
	return cmd
}

func newStressCmd() *cobra.Command {
	var presetName string
	cmd := &cobra.Command{
		Use:   "stress",
		Short: "Market-crash stress test against the glide-path projection",
		RunE: func(cmd *cobra.Command, args []string) error {
			plan, err := loadPlan()
			if err != nil {
				return err
			}

			scenarios := plan.CrashScenarios
			if presetName != "" {
				preset, ok := simulation.FindCrashScenario(presetName)
				if !ok {
					return fmt.Errorf("unknown preset crash scenario %q", presetName)
				}
				scenarios = []domain.MarketCrashScenario{preset}
			}
			if len(scenarios) == 0 {
				scenarios = simulation.PresetCrashScenarios()
			}

			engine := simulation.NewStressTestEngine()
			engine.Logger = log

			report := newReport(plan)
			for _, scenario := range scenarios {
				result, err := engine.Run(plan.Assumptions, scenario)
				if err != nil {
					return err
				}
				report.StressTests = append(report.StressTests, *result)
			}
			return renderReport(report)
		},
	}
	cmd.Flags().StringVar(&presetName, "scenario", "", "run a single preset crash scenario by name")
	return cmd
}

func newExampleCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "example",
		Short: "Print an example scenario YAML file",
		RunE: func(cmd *cobra.Command, args []string) error {
			example := config.NewInputParser().CreateExampleConfiguration()
			data, err := yaml.Marshal(example)
			if err != nil {
				return err
			}
			_, err = os.Stdout.Write(data)
			return err
		},
	}
}

var _ simulation.Logger = (*logrus.Logger)(nil)

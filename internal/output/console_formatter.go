package output

import (
	"fmt"
	"strings"

	"github.com/firecalc/fire-planner/internal/domain"
)

// ConsoleFormatter renders the plan report as human-readable text, one
// section per populated analysis.
type ConsoleFormatter struct{}

func (c ConsoleFormatter) Name() string { return "console" }

func (c ConsoleFormatter) Format(report *domain.PlanReport) ([]byte, error) {
	var b strings.Builder

	fmt.Fprintf(&b, "FIRE PLAN REPORT — generated %s\n", report.GeneratedAt.Format("2006-01-02"))
	fmt.Fprintf(&b, "%s\n\n", strings.Repeat("=", 60))

	a := report.Assumptions
	fmt.Fprintf(&b, "Assumptions\n")
	fmt.Fprintf(&b, "  Current age:       %d\n", a.CurrentAge)
	fmt.Fprintf(&b, "  Net worth:         %s\n", FormatCurrency(a.CurrentNetWorth))
	fmt.Fprintf(&b, "  Annual savings:    %s\n", FormatCurrency(a.AnnualSavings))
	fmt.Fprintf(&b, "  Annual expenses:   %s\n", FormatCurrency(a.AnnualExpenses))
	fmt.Fprintf(&b, "  Expected return:   %s (stdev %s)\n", FormatPercentage(a.ExpectedReturn), FormatPercentage(a.ReturnStdDev))
	fmt.Fprintf(&b, "  Withdrawal rate:   %s\n\n", FormatPercentage(a.WithdrawalRate))

	if fi := report.FIResult; fi != nil {
		fmt.Fprintf(&b, "Financial Independence\n")
		fmt.Fprintf(&b, "  FI number:         %s\n", FormatCurrency(fi.FINumber))
		fmt.Fprintf(&b, "  Years to FI:       %s\n", FormatYears(fi.YearsToFI))
		fmt.Fprintf(&b, "  Target date:       %s\n", fi.TargetDate.Format("2006-01-02"))
		fmt.Fprintf(&b, "  Progress:          %s%%\n\n", fi.Progress.StringFixed(1))
	}

	if p := report.Projection; p != nil {
		fmt.Fprintf(&b, "Glide-Path Projection\n")
		fmt.Fprintf(&b, "  Years to FI:       %s\n", FormatYears(p.YearsToFI))
		if len(p.Years) > 0 {
			last := p.Years[len(p.Years)-1]
			fmt.Fprintf(&b, "  Final net worth:   %s (age %d)\n", FormatCurrency(last.NetWorth), last.Age)
		}
		fmt.Fprintf(&b, "\n")
	}

	if mc := report.MonteCarlo; mc != nil {
		fmt.Fprintf(&b, "Monte Carlo (%d runs x %d years, %s strategy)\n", mc.NumSimulations, mc.RetirementYears, mc.Strategy)
		fmt.Fprintf(&b, "  Success rate:      %s\n", FormatPercentage(mc.SuccessRate))
		fmt.Fprintf(&b, "  Median final:      %s\n", FormatCurrency(mc.MedianFinalPortfolio))
		fmt.Fprintf(&b, "  10th / 90th pct:   %s / %s\n\n",
			FormatCurrency(mc.Percentile10FinalPortfolio), FormatCurrency(mc.Percentile90FinalPortfolio))
	}

	if bt := report.Backtest; bt != nil {
		fmt.Fprintf(&b, "Historical Backtest (%d rolling %d-year windows)\n", bt.NumWindows, bt.WindowYears)
		fmt.Fprintf(&b, "  Success rate:      %s\n", FormatPercentage(bt.SuccessRate))
		fmt.Fprintf(&b, "  Median final:      %s\n", FormatCurrency(bt.MedianFinalPortfolio))
		fmt.Fprintf(&b, "  10th / 90th pct:   %s / %s\n\n",
			FormatCurrency(bt.Percentile10FinalPortfolio), FormatCurrency(bt.Percentile90FinalPortfolio))
	}

	if curve := report.Curve; curve != nil {
		fmt.Fprintf(&b, "Retirement Probability Curve\n")
		fmt.Fprintf(&b, "  Earliest viable:   age %d (>=50%%)\n", curve.EarliestViableAge)
		fmt.Fprintf(&b, "  Optimal:           age %d (>=90%%)\n", curve.OptimalRetirementAge)
		fmt.Fprintf(&b, "  Safe:              age %d (>=95%%)\n", curve.SafeRetirementAge)
		for _, pt := range curve.Points {
			fmt.Fprintf(&b, "    age %d (%d): %s success, median %s\n",
				pt.RetirementAge, pt.CalendarYear, FormatPercentage(pt.SuccessRate), FormatCurrency(pt.MedianFinalPortfolio))
		}
		fmt.Fprintf(&b, "\n")
	}

	for _, st := range report.StressTests {
		fmt.Fprintf(&b, "Stress Test: %s (-%s%% at year %d, %s recovery)\n",
			st.Scenario.Name, st.Scenario.CrashPercentage.StringFixed(0), st.Scenario.StartYear, st.Scenario.RecoveryPattern)
		fmt.Fprintf(&b, "  Baseline FI:       %s\n", FormatYears(st.Baseline.YearsToFI))
		fmt.Fprintf(&b, "  Stressed FI:       %s\n", FormatYears(st.Stressed.YearsToFI))
		fmt.Fprintf(&b, "  Delay:             %s\n", FormatYears(st.Impact.DelayYears))
		fmt.Fprintf(&b, "  Net worth at / after crash: %s / %s\n",
			FormatCurrency(st.Impact.NetWorthAtCrash), FormatCurrency(st.Impact.NetWorthAfterCrash))
		if st.Impact.Recovered {
			fmt.Fprintf(&b, "  Recovered by year %d\n", st.Impact.RecoveryYear)
		} else {
			fmt.Fprintf(&b, "  No recovery within projection\n")
		}
		fmt.Fprintf(&b, "\n")
	}

	return []byte(b.String()), nil
}

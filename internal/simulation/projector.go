package simulation

import (
	"math"

	"github.com/firecalc/fire-planner/internal/domain"
	"github.com/firecalc/fire-planner/pkg/dateutil"
	"github.com/shopspring/decimal"
)

// MaxProjectionYears caps every year-by-year projection. Trajectories that
// have not reached FI by then report +Inf years and the far-future date.
const MaxProjectionYears = 100

// rateConvergenceEpsilon is the threshold below which the expected return
// and the withdrawal rate are treated as equal, where the closed-form log
// formula degenerates and a linear accumulation model takes over.
const rateConvergenceEpsilon = 1e-4

// CalculateYearsToFI computes the closed-form years to financial
// independence (the Networthify formula). Degenerate inputs never error;
// they resolve to 0, +Inf, or a linear fallback per case.
func CalculateYearsToFI(a domain.ScenarioAssumptions) domain.FIResult {
	fiNumber := a.FINumber()
	now := nowFunc()

	if a.CurrentNetWorth.GreaterThanOrEqual(fiNumber) {
		return domain.FIResult{
			FINumber:   fiNumber,
			YearsToFI:  0,
			TargetDate: now,
			Progress:   decimal.NewFromInt(100),
		}
	}

	remaining := fiNumber.Sub(a.CurrentNetWorth)
	progress := progressPercent(a.CurrentNetWorth, fiNumber)

	if a.AnnualSavings.LessThanOrEqual(decimal.Zero) {
		return domain.FIResult{
			FINumber:   fiNumber,
			YearsToFI:  math.Inf(1),
			TargetDate: dateutil.FarFuture,
			Progress:   progress,
		}
	}

	r, _ := a.ExpectedReturn.Float64()
	wr, _ := a.WithdrawalRate.Float64()
	rem, _ := remaining.Float64()
	savings, _ := a.AnnualSavings.Float64()

	var years float64
	if math.Abs(r-wr) < rateConvergenceEpsilon {
		// Growth and withdrawal cancel out; accumulation is linear.
		years = rem / savings
	} else {
		numerator := 1 + rem*(r-wr)/savings
		if numerator <= 0 {
			return domain.FIResult{
				FINumber:   fiNumber,
				YearsToFI:  math.Inf(1),
				TargetDate: dateutil.FarFuture,
				Progress:   progress,
			}
		}
		years = math.Log(numerator) / math.Log(1+r)
	}
	if years < 0 {
		years = 0
	}

	return domain.FIResult{
		FINumber:   fiNumber,
		YearsToFI:  years,
		TargetDate: dateutil.DateAfterYears(now, years),
		Progress:   progress,
	}
}

// ProjectGlidePath runs the year-by-year deterministic projection with the
// scenario's glide-path allocation. Year 0 is the pre-growth snapshot; each
// following year applies growth, adds savings, inflates expenses, grows
// savings, then tests the FI condition against that year's expenses.
func ProjectGlidePath(a domain.ScenarioAssumptions) domain.FIProjection {
	one := decimal.NewFromInt(1)

	netWorth := a.CurrentNetWorth
	expenses := a.AnnualExpenses
	savings := a.AnnualSavings

	years := make([]domain.FIProjectionYear, 0, 32)
	years = append(years, domain.FIProjectionYear{
		Year:            0,
		Age:             a.CurrentAge,
		NetWorth:        netWorth,
		Expenses:        expenses,
		Savings:         savings,
		StockAllocation: a.StockAllocationAt(a.CurrentAge),
		BlendedReturn:   a.BlendedReturnAt(a.CurrentAge, a.ExpectedReturn, a.BondReturn),
	})

	yearsToFI := math.Inf(1)
	reached := false

	for year := 1; year <= MaxProjectionYears; year++ {
		age := a.CurrentAge + year
		blended := a.BlendedReturnAt(age, a.ExpectedReturn, a.BondReturn)

		netWorth = netWorth.Mul(one.Add(blended)).Add(savings)
		expenses = expenses.Mul(one.Add(a.InflationRate))
		savings = savings.Mul(one.Add(a.IncomeGrowthRate))

		years = append(years, domain.FIProjectionYear{
			Year:            year,
			Age:             age,
			NetWorth:        netWorth,
			Expenses:        expenses,
			Savings:         savings,
			StockAllocation: a.StockAllocationAt(age),
			BlendedReturn:   blended,
		})

		if netWorth.GreaterThanOrEqual(expenses.Div(a.WithdrawalRate)) {
			yearsToFI = float64(year)
			reached = true
			break
		}
	}

	return domain.FIProjection{
		Years:      years,
		YearsToFI:  yearsToFI,
		FINumber:   a.FINumber(),
		TargetDate: dateutil.DateAfterYears(nowFunc(), yearsToFI),
		ReachedFI:  reached,
	}
}

func progressPercent(netWorth, fiNumber decimal.Decimal) decimal.Decimal {
	if fiNumber.LessThanOrEqual(decimal.Zero) {
		return decimal.NewFromInt(100)
	}
	p := netWorth.Div(fiNumber).Mul(decimal.NewFromInt(100))
	if p.IsNegative() {
		return decimal.Zero
	}
	if p.GreaterThan(decimal.NewFromInt(100)) {
		return decimal.NewFromInt(100)
	}
	return p
}

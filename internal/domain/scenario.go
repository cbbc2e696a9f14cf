package domain

import (
	"github.com/shopspring/decimal"
)

// GlidePath describes a linear shift of the stock allocation with age.
// Outside the [StartAge, EndAge] range the allocation is clamped to the
// nearest endpoint.
type GlidePath struct {
	StartAge             int             `yaml:"start_age" json:"start_age"`
	EndAge               int             `yaml:"end_age" json:"end_age"`
	StartStockAllocation decimal.Decimal `yaml:"start_stock_allocation" json:"start_stock_allocation"`
	EndStockAllocation   decimal.Decimal `yaml:"end_stock_allocation" json:"end_stock_allocation"`
}

// ScenarioAssumptions holds the user-entered inputs for a FIRE projection.
// All rates are decimal fractions (0.07 = 7%), never percentages.
// Allocations are in [0, 1]. Callers validate ranges before the simulation
// core sees these values.
type ScenarioAssumptions struct {
	CurrentAge      int             `yaml:"current_age" json:"current_age"`
	CurrentNetWorth decimal.Decimal `yaml:"current_net_worth" json:"current_net_worth"`
	AnnualSavings   decimal.Decimal `yaml:"annual_savings" json:"annual_savings"`
	AnnualExpenses  decimal.Decimal `yaml:"annual_expenses" json:"annual_expenses"`

	// Market assumptions
	ExpectedReturn decimal.Decimal `yaml:"expected_return" json:"expected_return"` // mean annual stock return
	ReturnStdDev   decimal.Decimal `yaml:"return_std_dev" json:"return_std_dev"`
	BondReturn     decimal.Decimal `yaml:"bond_return" json:"bond_return"`

	InflationRate    decimal.Decimal `yaml:"inflation_rate" json:"inflation_rate"`
	IncomeGrowthRate decimal.Decimal `yaml:"income_growth_rate,omitempty" json:"income_growth_rate,omitempty"`
	WithdrawalRate   decimal.Decimal `yaml:"withdrawal_rate" json:"withdrawal_rate"`

	// SafetyMargin multiplies the FI number; zero means 1.0 (no margin).
	SafetyMargin decimal.Decimal `yaml:"safety_margin,omitempty" json:"safety_margin,omitempty"`

	GlidePath *GlidePath `yaml:"glide_path,omitempty" json:"glide_path,omitempty"`
}

// FINumber returns the target portfolio (annual expenses / withdrawal rate,
// scaled by the safety margin) considered sufficient to sustain retirement.
func (a ScenarioAssumptions) FINumber() decimal.Decimal {
	fi := a.AnnualExpenses.Div(a.WithdrawalRate)
	if !a.SafetyMargin.IsZero() {
		fi = fi.Mul(a.SafetyMargin)
	}
	return fi
}

// StockAllocationAt returns the stock allocation at a given age, linearly
// interpolated along the glide path and clamped outside its age range.
// Without a glide path the portfolio is treated as all stock.
func (a ScenarioAssumptions) StockAllocationAt(age int) decimal.Decimal {
	gp := a.GlidePath
	if gp == nil {
		return decimal.NewFromInt(1)
	}
	switch {
	case age <= gp.StartAge:
		return gp.StartStockAllocation
	case age >= gp.EndAge:
		return gp.EndStockAllocation
	}
	span := decimal.NewFromInt(int64(gp.EndAge - gp.StartAge))
	progress := decimal.NewFromInt(int64(age - gp.StartAge)).Div(span)
	return gp.StartStockAllocation.Add(gp.EndStockAllocation.Sub(gp.StartStockAllocation).Mul(progress))
}

// BlendedReturnAt returns the allocation-weighted annual return at a given
// age using the supplied stock and bond rates.
func (a ScenarioAssumptions) BlendedReturnAt(age int, stockRate, bondRate decimal.Decimal) decimal.Decimal {
	alloc := a.StockAllocationAt(age)
	bondAlloc := decimal.NewFromInt(1).Sub(alloc)
	return alloc.Mul(stockRate).Add(bondAlloc.Mul(bondRate))
}

// RecoveryPattern names the shape of the post-crash recovery window.
type RecoveryPattern string

const (
	RecoveryVShape RecoveryPattern = "v_shape"
	RecoveryUShape RecoveryPattern = "u_shape"
	RecoveryLShape RecoveryPattern = "l_shape"
)

// MarketCrashScenario defines a named market crash to stress a projection
// against. CrashPercentage is expressed in percent (50 = a 50% drop).
// CrashDuration is the number of years spent at the bottom and may be
// fractional.
type MarketCrashScenario struct {
	Name            string          `yaml:"name" json:"name"`
	CrashPercentage decimal.Decimal `yaml:"crash_percentage" json:"crash_percentage"`
	StartYear       int             `yaml:"start_year" json:"start_year"`
	CrashDuration   float64         `yaml:"crash_duration" json:"crash_duration"`
	RecoveryPattern RecoveryPattern `yaml:"recovery_pattern" json:"recovery_pattern"`
	RecoveryYears   int             `yaml:"recovery_years" json:"recovery_years"`
}

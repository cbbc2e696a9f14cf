package output

import (
	"testing"

	"github.com/shopspring/decimal"

	"github.com/firecalc/fire-planner/internal/domain"
)

func TestProbabilityChartPoints(t *testing.T) {
	points := []domain.ProbabilityCurvePoint{
		{RetirementAge: 55, CalendarYear: 2040, SuccessRate: decimal.NewFromFloat(0.0)},
		{RetirementAge: 56, CalendarYear: 2041, SuccessRate: decimal.NewFromFloat(0.856)},
		{RetirementAge: 57, CalendarYear: 2042, SuccessRate: decimal.NewFromFloat(0.5549)},
		{RetirementAge: 58, CalendarYear: 2043, SuccessRate: decimal.NewFromFloat(1.0)},
	}

	chart := ProbabilityChartPoints(points)
	if len(chart) != len(points) {
		t.Fatalf("Expected %d chart points, got %d", len(points), len(chart))
	}

	wantProbabilities := []int{0, 86, 55, 100}
	for i, cp := range chart {
		if cp.Age != points[i].RetirementAge {
			t.Errorf("Point %d: expected age %d, got %d", i, points[i].RetirementAge, cp.Age)
		}
		if cp.Year != points[i].CalendarYear {
			t.Errorf("Point %d: expected year %d, got %d", i, points[i].CalendarYear, cp.Year)
		}
		if cp.Probability != wantProbabilities[i] {
			t.Errorf("Point %d: expected probability %d, got %d", i, wantProbabilities[i], cp.Probability)
		}
		if cp.Probability < 0 || cp.Probability > 100 {
			t.Errorf("Point %d: probability %d outside 0-100", i, cp.Probability)
		}
	}

	if chart[0].Label != "Age 55" {
		t.Errorf("Expected label \"Age 55\", got %q", chart[0].Label)
	}
}

func TestProbabilityChartPoints_Empty(t *testing.T) {
	chart := ProbabilityChartPoints(nil)
	if len(chart) != 0 {
		t.Errorf("Expected no chart points, got %d", len(chart))
	}
}

package output

import (
	"fmt"

	"github.com/firecalc/fire-planner/internal/domain"
	"github.com/shopspring/decimal"
)

// ChartPoint is the plain-data shape chart renderers consume for the
// probability curve. Probability is the success rate scaled to a 0-100
// integer (rounded to nearest).
type ChartPoint struct {
	Age         int    `json:"age"`
	Year        int    `json:"year"`
	Probability int    `json:"probability"`
	Label       string `json:"label"`
}

// ProbabilityChartPoints converts curve points into chart tuples. Pure and
// deterministic: ages and years pass through untouched.
func ProbabilityChartPoints(points []domain.ProbabilityCurvePoint) []ChartPoint {
	chart := make([]ChartPoint, len(points))
	for i, p := range points {
		probability := p.SuccessRate.Mul(decimal.NewFromInt(100)).Round(0).IntPart()
		chart[i] = ChartPoint{
			Age:         p.RetirementAge,
			Year:        p.CalendarYear,
			Probability: int(probability),
			Label:       fmt.Sprintf("Age %d", p.RetirementAge),
		}
	}
	return chart
}

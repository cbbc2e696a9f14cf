package simulation

import (
	"math"
	"math/rand"

	"github.com/shopspring/decimal"
)

// ReturnSampler produces normally distributed annual returns from an
// explicit random stream. Each sampler owns its *rand.Rand, so concurrent
// workers get independent draws by holding one sampler each.
type ReturnSampler struct {
	rng *rand.Rand
}

// NewReturnSampler creates a sampler seeded with the given seed. A zero
// seed draws a fresh seed from the package seed provider.
func NewReturnSampler(seed int64) *ReturnSampler {
	if seed == 0 {
		seed = seedFunc()
	}
	return &ReturnSampler{rng: rand.New(rand.NewSource(seed))}
}

// SampleNormal returns one draw from N(mean, stdev^2) using the Box-Muller
// transform. A zero stdev collapses the distribution to the mean exactly.
func (s *ReturnSampler) SampleNormal(mean, stdev decimal.Decimal) decimal.Decimal {
	z := s.boxMuller()
	return mean.Add(decimal.NewFromFloat(z).Mul(stdev))
}

// GenerateReturns returns `years` independent draws from N(mean, stdev^2).
func (s *ReturnSampler) GenerateReturns(years int, mean, stdev decimal.Decimal) []decimal.Decimal {
	returns := make([]decimal.Decimal, years)
	for i := range returns {
		returns[i] = s.SampleNormal(mean, stdev)
	}
	return returns
}

// boxMuller converts two uniform draws into one standard normal draw.
// u1 must never be exactly zero, otherwise ln(0) blows up.
func (s *ReturnSampler) boxMuller() float64 {
	u1 := s.rng.Float64()
	for u1 == 0 {
		u1 = s.rng.Float64()
	}
	u2 := s.rng.Float64()
	return math.Sqrt(-2*math.Log(u1)) * math.Cos(2*math.Pi*u2)
}

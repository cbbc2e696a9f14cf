package domain

import (
	"encoding/json"
	"math"
)

// jsonYears serializes a year count, mapping the +Inf / NaN sentinels to
// null (encoding/json rejects non-finite floats outright).
type jsonYears float64

func (y jsonYears) MarshalJSON() ([]byte, error) {
	f := float64(y)
	if math.IsInf(f, 0) || math.IsNaN(f) {
		return []byte("null"), nil
	}
	return json.Marshal(f)
}

func (r FIResult) MarshalJSON() ([]byte, error) {
	type alias FIResult
	return json.Marshal(struct {
		alias
		YearsToFI jsonYears `json:"years_to_fi"`
	}{alias(r), jsonYears(r.YearsToFI)})
}

func (p FIProjection) MarshalJSON() ([]byte, error) {
	type alias FIProjection
	return json.Marshal(struct {
		alias
		YearsToFI jsonYears `json:"years_to_fi"`
	}{alias(p), jsonYears(p.YearsToFI)})
}

func (c CrashImpact) MarshalJSON() ([]byte, error) {
	type alias CrashImpact
	return json.Marshal(struct {
		alias
		DelayYears   jsonYears `json:"delay_years"`
		DelayPercent jsonYears `json:"delay_percent"`
	}{alias(c), jsonYears(c.DelayYears), jsonYears(c.DelayPercent)})
}

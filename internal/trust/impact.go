package trust

import "github.com/ICGNU3/rhiz-prototype-sub002/internal/store"

// Contribution types.
const (
	TypeIntroduction = "introduction"
	TypeAdvice       = "advice"
	TypeResource     = "resource"
	TypeOpportunity  = "opportunity"
	TypeSupport      = "support"
)

// Value levels.
const (
	ValueLow      = "low"
	ValueMedium   = "medium"
	ValueHigh     = "high"
	ValueCritical = "critical"
)

// Outcomes.
const (
	OutcomePending              = "pending"
	OutcomeSuccessful           = "successful"
	OutcomeFailed               = "failed"
	OutcomeExceededExpectations = "exceeded_expectations"
)

// impactTable is the fixed impact score per (type, value level). It is a
// design constant, not configurable per call. Unknown keys score 0.0
// rather than being rejected.
var impactTable = map[string]map[string]float64{
	TypeIntroduction: {ValueLow: 0.2, ValueMedium: 0.4, ValueHigh: 0.6, ValueCritical: 0.8},
	TypeAdvice:       {ValueLow: 0.1, ValueMedium: 0.2, ValueHigh: 0.4, ValueCritical: 0.6},
	TypeResource:     {ValueLow: 0.15, ValueMedium: 0.3, ValueHigh: 0.5, ValueCritical: 0.7},
	TypeOpportunity:  {ValueLow: 0.25, ValueMedium: 0.5, ValueHigh: 0.75, ValueCritical: 1.0},
	TypeSupport:      {ValueLow: 0.1, ValueMedium: 0.25, ValueHigh: 0.4, ValueCritical: 0.55},
}

// ImpactScore looks up the fixed impact score for a contribution.
func ImpactScore(contributionType, valueLevel string) float64 {
	return impactTable[contributionType][valueLevel]
}

// valueMultipliers scale record-time trust adjustments by value level.
var valueMultipliers = map[string]float64{
	ValueLow:      0.5,
	ValueMedium:   1.0,
	ValueHigh:     1.5,
	ValueCritical: 2.0,
}

// recordOutcomeMultipliers scale the adjustment applied when an event is
// first recorded. Unknown outcomes multiply to zero.
var recordOutcomeMultipliers = map[string]float64{
	OutcomeSuccessful: 1.0,
	OutcomePending:    0.5,
	OutcomeFailed:     -0.2,
}

// updateOutcomeMultipliers scale the second, additive adjustment applied
// when an event's outcome changes.
var updateOutcomeMultipliers = map[string]float64{
	OutcomeSuccessful:           1.2,
	OutcomePending:              1.0,
	OutcomeFailed:               0.3,
	OutcomeExceededExpectations: 1.5,
}

// typeComponentDeltas are the base per-component adjustments each
// contribution type drives, before value/outcome scaling.
var typeComponentDeltas = map[string]map[string]float64{
	TypeIntroduction: {store.ComponentValueDelivered: 0.04, store.ComponentReliability: 0.02},
	TypeAdvice:       {store.ComponentValueDelivered: 0.03, store.ComponentConsistency: 0.02},
	TypeResource:     {store.ComponentValueDelivered: 0.03, store.ComponentReliability: 0.02},
	TypeOpportunity:  {store.ComponentValueDelivered: 0.06, store.ComponentReliability: 0.03},
	TypeSupport:      {store.ComponentConsistency: 0.03, store.ComponentReliability: 0.02},
}

// outcomeAdjustScale converts an impact score into a component delta for
// outcome updates, keeping them in range with record-time deltas.
const outcomeAdjustScale = 0.1

// Level buckets a trust score into a human label.
func Level(score float64) string {
	switch {
	case score >= 0.8:
		return "strong"
	case score >= 0.65:
		return "solid"
	case score >= 0.45:
		return "developing"
	default:
		return "weak"
	}
}

package trust

import (
	"errors"
	"fmt"

	"github.com/ICGNU3/rhiz-prototype-sub002/internal/store"
)

// casAttempts bounds the read-modify-write retry loop before a conflict
// is surfaced to the caller.
const casAttempts = 3

// ErrConflict is returned when a trust row keeps changing underneath an
// adjustment after the bounded retries.
var ErrConflict = errors.New("trust metric conflict: concurrent update")

// Engine applies weighted updates to trust state and records every change
// in the audit history.
type Engine struct {
	DB *store.DB
}

// NewEngine creates a scoring engine over the given store.
func NewEngine(db *store.DB) *Engine {
	return &Engine{DB: db}
}

// Adjust applies delta to one component of a contact's trust metric.
// The stored component is clamped into [0,1] and the trust score is
// recomputed from the post-clamp components; the history row logs the
// requested (pre-clamp) delta. A missing metric is created with neutral
// priors first — the adjustment is never dropped.
func (e *Engine) Adjust(contactID int64, component string, delta float64, reason string) error {
	return e.adjust(contactID, "manual_adjustment", component, delta, reason)
}

func (e *Engine) adjust(contactID int64, eventType, component string, delta float64, reason string) error {
	for attempt := 0; attempt < casAttempts; attempt++ {
		m, err := e.DB.EnsureTrustMetric(contactID)
		if err != nil {
			return err
		}
		prev := m.LastUpdated

		if !m.ApplyDelta(component, delta) {
			return fmt.Errorf("unknown trust component %q", component)
		}

		ok, err := e.DB.SaveTrustMetricCAS(m, prev)
		if err != nil {
			return err
		}
		if !ok {
			continue
		}
		return e.DB.AppendTrustHistory(contactID, eventType, delta, reason)
	}
	return fmt.Errorf("adjust contact %d %s: %w", contactID, component, ErrConflict)
}

// synchronousTypes are interaction types that earn the larger consistency
// boost.
var synchronousTypes = map[string]bool{
	"meeting": true,
	"call":    true,
	"email":   true,
}

// RecordInteractionImpact translates a raw interaction signal into trust
// adjustments, independent of the contribution ledger. Responsiveness
// moves with response time; consistency gets a small boost for showing
// up at all.
func (e *Engine) RecordInteractionImpact(contactID int64, interactionType string, responseTimeHours float64) error {
	var respDelta float64
	switch {
	case responseTimeHours <= 2:
		respDelta = 0.02
	case responseTimeHours <= 24:
		respDelta = 0.01
	case responseTimeHours <= 72:
		respDelta = 0.0
	default:
		respDelta = -0.01
	}

	if respDelta != 0 {
		reason := fmt.Sprintf("%s response in %.1fh", interactionType, responseTimeHours)
		if err := e.adjust(contactID, "interaction", store.ComponentResponsiveness, respDelta, reason); err != nil {
			return err
		}
	}

	consDelta := 0.002
	if synchronousTypes[interactionType] {
		consDelta = 0.005
	}
	reason := fmt.Sprintf("%s interaction", interactionType)
	return e.adjust(contactID, "interaction", store.ComponentConsistency, consDelta, reason)
}

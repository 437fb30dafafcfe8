package trust

import (
	"fmt"

	"github.com/google/uuid"

	"github.com/ICGNU3/rhiz-prototype-sub002/internal/store"
)

// Ledger is the append-only record of contribution events. Recording an
// event also drives a trust adjustment through the scoring engine.
type Ledger struct {
	DB     *store.DB
	Engine *Engine
}

// NewLedger creates a ledger backed by the given store and engine.
func NewLedger(db *store.DB, engine *Engine) *Ledger {
	return &Ledger{DB: db, Engine: engine}
}

// Record appends a contribution event and applies the type-specific trust
// adjustment, scaled by value level and the record-time outcome
// multiplier. The impact score is computed once here and never changes.
// An empty outcome defaults to pending.
func (l *Ledger) Record(contactID int64, contributionType, valueLevel, description, outcome string) (string, error) {
	if outcome == "" {
		outcome = OutcomePending
	}

	ev := &store.ContributionEvent{
		ID:               uuid.NewString(),
		ContactID:        contactID,
		ContributionType: contributionType,
		ValueLevel:       valueLevel,
		Description:      description,
		Outcome:          outcome,
		ImpactScore:      ImpactScore(contributionType, valueLevel),
	}
	if err := l.DB.InsertContribution(ev); err != nil {
		return "", err
	}

	scale := valueMultipliers[valueLevel] * recordOutcomeMultipliers[outcome]
	reason := fmt.Sprintf("%s contribution (%s, %s)", contributionType, valueLevel, outcome)
	for component, base := range typeComponentDeltas[contributionType] {
		if delta := base * scale; delta != 0 {
			if err := l.Engine.adjust(contactID, "contribution", component, delta, reason); err != nil {
				return ev.ID, fmt.Errorf("contribution trust update: %w", err)
			}
		}
	}

	return ev.ID, nil
}

// UpdateOutcome changes an event's outcome and applies a second, additive
// trust adjustment derived from the event's original impact score. It is
// not a correction of the record-time adjustment; calling it twice
// produces two independent history entries. Returns false if the event
// does not exist.
func (l *Ledger) UpdateOutcome(eventID, outcome string) (bool, error) {
	ev, err := l.DB.GetContribution(eventID)
	if err != nil {
		return false, err
	}
	if ev == nil {
		return false, nil
	}

	ok, err := l.DB.SetContributionOutcome(eventID, outcome)
	if err != nil || !ok {
		return ok, err
	}

	delta := ev.ImpactScore * updateOutcomeMultipliers[outcome] * outcomeAdjustScale
	if delta != 0 {
		reason := fmt.Sprintf("outcome %s for %s contribution", outcome, ev.ContributionType)
		if err := l.Engine.adjust(ev.ContactID, "outcome_update", store.ComponentValueDelivered, delta, reason); err != nil {
			return true, fmt.Errorf("outcome trust update: %w", err)
		}
	}
	return true, nil
}

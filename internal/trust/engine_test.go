package trust

import (
	"math"
	"testing"

	"github.com/ICGNU3/rhiz-prototype-sub002/internal/store"
)

func testEngine(t *testing.T) (*store.DB, *Engine) {
	t.Helper()
	db, err := store.OpenMemory()
	if err != nil {
		t.Fatalf("open memory db: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db, NewEngine(db)
}

func newContact(t *testing.T, db *store.DB, name string) int64 {
	t.Helper()
	c := &store.Contact{UserID: "u1", Name: name}
	if err := db.CreateContact(c); err != nil {
		t.Fatalf("CreateContact: %v", err)
	}
	return c.ID
}

func TestAdjustCreatesMetricOnDemand(t *testing.T) {
	db, engine := testEngine(t)
	id := newContact(t, db, "Ada")

	if err := engine.Adjust(id, store.ComponentReliability, 0.1, "kept a promise"); err != nil {
		t.Fatalf("Adjust: %v", err)
	}

	m, err := db.GetTrustMetric(id)
	if err != nil {
		t.Fatalf("GetTrustMetric: %v", err)
	}
	if m == nil {
		t.Fatal("metric not created")
	}
	if math.Abs(m.Reliability-0.6) > 1e-9 {
		t.Errorf("reliability = %f, want 0.6", m.Reliability)
	}
}

func TestAdjustClampsButLogsRequestedDelta(t *testing.T) {
	db, engine := testEngine(t)
	id := newContact(t, db, "Ada")

	if err := engine.Adjust(id, store.ComponentReliability, 0.4, "warm up"); err != nil {
		t.Fatalf("Adjust: %v", err)
	}
	if err := engine.Adjust(id, store.ComponentReliability, 5.0, "huge spike"); err != nil {
		t.Fatalf("Adjust: %v", err)
	}

	m, err := db.GetTrustMetric(id)
	if err != nil {
		t.Fatalf("GetTrustMetric: %v", err)
	}
	if m.Reliability != 1.0 {
		t.Errorf("reliability = %f, want clamp to 1.0", m.Reliability)
	}
	// Score recomputes from the clamped component.
	want := 0.3*1.0 + 0.2*0.5 + 0.4*0.5 + 0.1*0.5
	if math.Abs(m.TrustScore-want) > 1e-9 {
		t.Errorf("trust_score = %f, want %f", m.TrustScore, want)
	}

	history, err := db.TrustHistoryForContact(id, 10)
	if err != nil {
		t.Fatalf("TrustHistoryForContact: %v", err)
	}
	if len(history) != 2 {
		t.Fatalf("history entries = %d, want 2", len(history))
	}
	// The audit row carries the requested delta, not the clamped one.
	if history[0].ScoreChange != 5.0 {
		t.Errorf("logged delta = %f, want 5.0", history[0].ScoreChange)
	}
	if history[0].EventType != "manual_adjustment" {
		t.Errorf("event type = %s", history[0].EventType)
	}
}

func TestAdjustUnknownComponent(t *testing.T) {
	db, engine := testEngine(t)
	id := newContact(t, db, "Ada")

	if err := engine.Adjust(id, "charisma", 0.1, ""); err == nil {
		t.Fatal("expected error for unknown component")
	}
}

func TestRecordInteractionImpactFastResponse(t *testing.T) {
	db, engine := testEngine(t)
	id := newContact(t, db, "Ada")

	if err := engine.RecordInteractionImpact(id, "meeting", 1.5); err != nil {
		t.Fatalf("RecordInteractionImpact: %v", err)
	}

	m, err := db.GetTrustMetric(id)
	if err != nil {
		t.Fatalf("GetTrustMetric: %v", err)
	}
	if math.Abs(m.Responsiveness-0.52) > 1e-9 {
		t.Errorf("responsiveness = %f, want 0.52", m.Responsiveness)
	}
	// Meetings are synchronous, so consistency gets the larger boost.
	if math.Abs(m.Consistency-0.505) > 1e-9 {
		t.Errorf("consistency = %f, want 0.505", m.Consistency)
	}
}

func TestRecordInteractionImpactSlowResponse(t *testing.T) {
	db, engine := testEngine(t)
	id := newContact(t, db, "Ada")

	if err := engine.RecordInteractionImpact(id, "text", 100); err != nil {
		t.Fatalf("RecordInteractionImpact: %v", err)
	}

	m, err := db.GetTrustMetric(id)
	if err != nil {
		t.Fatalf("GetTrustMetric: %v", err)
	}
	if math.Abs(m.Responsiveness-0.49) > 1e-9 {
		t.Errorf("responsiveness = %f, want 0.49", m.Responsiveness)
	}
	if math.Abs(m.Consistency-0.502) > 1e-9 {
		t.Errorf("consistency = %f, want 0.502", m.Consistency)
	}
}

func TestRecordInteractionImpactNeutralWindow(t *testing.T) {
	db, engine := testEngine(t)
	id := newContact(t, db, "Ada")

	// 48h sits in the zero-delta responsiveness window; only the
	// consistency adjustment should be written.
	if err := engine.RecordInteractionImpact(id, "email", 48); err != nil {
		t.Fatalf("RecordInteractionImpact: %v", err)
	}

	m, err := db.GetTrustMetric(id)
	if err != nil {
		t.Fatalf("GetTrustMetric: %v", err)
	}
	if m.Responsiveness != 0.5 {
		t.Errorf("responsiveness = %f, want untouched 0.5", m.Responsiveness)
	}

	history, err := db.TrustHistoryForContact(id, 10)
	if err != nil {
		t.Fatalf("TrustHistoryForContact: %v", err)
	}
	if len(history) != 1 {
		t.Fatalf("history entries = %d, want only the consistency row", len(history))
	}
	if history[0].EventType != "interaction" {
		t.Errorf("event type = %s", history[0].EventType)
	}
}

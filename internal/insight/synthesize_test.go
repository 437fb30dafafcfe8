package insight

import (
	"context"
	"errors"
	"reflect"
	"strings"
	"testing"
	"time"

	"github.com/ICGNU3/rhiz-prototype-sub002/internal/llm"
	"github.com/ICGNU3/rhiz-prototype-sub002/internal/store"
)

func sampleContext() *NetworkContext {
	now := time.Now().UnixMilli()
	lastAt := now - 3*86400000
	return &NetworkContext{
		Goals: []store.Goal{
			{ID: 1, UserID: "u1", Title: "Raise seed round", Description: "target Q4", CreatedAt: now - 10*86400000},
		},
		Contacts: []store.ContactActivity{
			{
				Contact:             store.Contact{ID: 1, Name: "Ada", Title: "Engineer", Company: "Analytical Engines", Tags: "math"},
				InteractionCount:    3,
				LastInteractionAt:   &lastAt,
				LastInteractionType: "meeting",
			},
			{
				Contact: store.Contact{ID: 2, Name: "Bob", Company: "Widgets Inc"},
			},
		},
		Interactions: []InteractionGroup{
			{ContactID: 1, ContactName: "Ada", Count: 3, LatestType: "meeting", LatestNotes: "demo went well"},
		},
	}
}

const validResponse = `{
	"primary_goal": "Raise seed round",
	"suggested_contacts": [
		{"contact_id": 1, "name": "Ada", "reason": "warm intro", "suggested_message": "hi", "tone": "warm", "urgency": "high"}
	],
	"connection_path": {"contacts": ["Ada", "Bob"], "rationale": "shared interests"},
	"dormant_contact": {"contact_id": 2, "name": "Bob", "last_contact": "2 months ago", "reactivation_reason": "quiet", "suggested_message": "hello"},
	"network_insights": ["Your network skews technical"]
}`

func TestSynthesizeSuccess(t *testing.T) {
	mock := &llm.MockClient{Response: &llm.Response{Content: validResponse}}
	s := NewSynthesizer(mock, time.Second)

	ins := s.Synthesize(context.Background(), sampleContext())
	if ins.Degraded {
		t.Fatal("valid response should not be degraded")
	}
	if ins.PrimaryGoal != "Raise seed round" {
		t.Errorf("primary goal = %q", ins.PrimaryGoal)
	}
	if len(ins.SuggestedContacts) != 1 || ins.SuggestedContacts[0].ContactID != 1 {
		t.Errorf("suggested contacts = %+v", ins.SuggestedContacts)
	}
	if len(mock.Calls) != 1 {
		t.Errorf("completion calls = %d, want exactly one", len(mock.Calls))
	}
}

func TestSynthesizeStripsCodeFences(t *testing.T) {
	mock := &llm.MockClient{Response: &llm.Response{Content: "```json\n" + validResponse + "\n```"}}
	s := NewSynthesizer(mock, time.Second)

	ins := s.Synthesize(context.Background(), sampleContext())
	if ins.Degraded {
		t.Fatal("fenced response should still parse")
	}
	if ins.PrimaryGoal != "Raise seed round" {
		t.Errorf("primary goal = %q", ins.PrimaryGoal)
	}
}

func TestSynthesizeFallbackOnError(t *testing.T) {
	mock := &llm.MockClient{Err: errors.New("service unavailable")}
	s := NewSynthesizer(mock, time.Second)

	first := s.Synthesize(context.Background(), sampleContext())
	second := s.Synthesize(context.Background(), sampleContext())

	if !first.Degraded {
		t.Fatal("fallback must carry the degraded flag")
	}
	// Deterministic: identical content on every call.
	if !reflect.DeepEqual(first, second) {
		t.Error("fallback content differs between calls")
	}
	if !reflect.DeepEqual(first, Fallback()) {
		t.Error("error path must return the fixed fallback")
	}
	// One attempt per generation, no retries.
	if len(mock.Calls) != 2 {
		t.Errorf("completion calls = %d, want one per Synthesize", len(mock.Calls))
	}
}

func TestSynthesizeFallbackOnGarbage(t *testing.T) {
	for _, content := range []string{
		"I'm sorry, I can't help with that.",
		"{not json at all",
		`{"primary_goal": "x"}`, // missing required keys
	} {
		mock := &llm.MockClient{Response: &llm.Response{Content: content}}
		s := NewSynthesizer(mock, time.Second)
		ins := s.Synthesize(context.Background(), sampleContext())
		if !ins.Degraded {
			t.Errorf("content %q should resolve to fallback", content)
		}
	}
}

func TestSynthesizeNilClient(t *testing.T) {
	s := NewSynthesizer(nil, time.Second)
	ins := s.Synthesize(context.Background(), sampleContext())
	if !ins.Degraded {
		t.Error("nil client should resolve to fallback")
	}
}

func TestParseInsightResponseWrapperText(t *testing.T) {
	content := "Here is the analysis you asked for:\n" + validResponse + "\nLet me know if you need more."
	ins, err := parseInsightResponse(content)
	if err != nil {
		t.Fatalf("parseInsightResponse: %v", err)
	}
	if ins.PrimaryGoal != "Raise seed round" {
		t.Errorf("primary goal = %q", ins.PrimaryGoal)
	}
}

func TestRepairInsightCapsAndBackfills(t *testing.T) {
	nc := sampleContext()
	ins := &RhizomaticInsight{
		SuggestedContacts: []SuggestedContact{
			{Name: "A"}, {Name: ""}, {Name: "B"}, {Name: "C"}, {Name: "D"},
		},
		ConnectionPath: ConnectionPath{Contacts: []string{"only one"}},
		DormantContact: &DormantContact{Name: "  "},
	}

	if !repairInsight(ins, nc) {
		t.Fatal("repair should succeed with two contacts in context")
	}
	if len(ins.SuggestedContacts) != 3 {
		t.Errorf("suggestions = %d, want cap of 3", len(ins.SuggestedContacts))
	}
	for _, sc := range ins.SuggestedContacts {
		if strings.TrimSpace(sc.Name) == "" {
			t.Error("nameless suggestion survived repair")
		}
	}
	if !reflect.DeepEqual(ins.ConnectionPath.Contacts, []string{"Ada", "Bob"}) {
		t.Errorf("path = %v, want backfill from context", ins.ConnectionPath.Contacts)
	}
	if ins.DormantContact != nil {
		t.Error("blank dormant contact should be dropped")
	}
	if ins.NetworkInsights == nil {
		t.Error("network insights must be non-nil")
	}
	if ins.PrimaryGoal != "Raise seed round" {
		t.Errorf("primary goal = %q, want backfill from first goal", ins.PrimaryGoal)
	}
}

func TestRepairInsightUnrecoverablePath(t *testing.T) {
	nc := &NetworkContext{
		Contacts: []store.ContactActivity{
			{Contact: store.Contact{ID: 1, Name: "Only"}},
		},
	}
	ins := &RhizomaticInsight{}
	if repairInsight(ins, nc) {
		t.Error("a one-contact context cannot backfill a two-name path")
	}
}

func TestBuildContextBlock(t *testing.T) {
	block := BuildContextBlock(sampleContext())

	for _, want := range []string{
		"Raise seed round",
		"[id 1] Ada",
		"Engineer at Analytical Engines",
		"tags: math",
		"3 days ago",
		"Never contacted",
		"demo went well",
	} {
		if !strings.Contains(block, want) {
			t.Errorf("context block missing %q:\n%s", want, block)
		}
	}
}

func TestRecencyBucket(t *testing.T) {
	now := time.Now()
	if got := recencyBucket(nil, now); got != "Never contacted" {
		t.Errorf("nil = %q", got)
	}
	future := now.Add(time.Hour).UnixMilli()
	if got := recencyBucket(&future, now); got != "Recently" {
		t.Errorf("future = %q", got)
	}
	past := now.Add(-5 * 24 * time.Hour).UnixMilli()
	if got := recencyBucket(&past, now); got != "5 days ago" {
		t.Errorf("past = %q", got)
	}
}

package insight

import (
	"context"
	"encoding/json"
	"log"
	"math/rand"
	"time"

	"github.com/google/uuid"

	"github.com/ICGNU3/rhiz-prototype-sub002/internal/llm"
	"github.com/ICGNU3/rhiz-prototype-sub002/internal/ratelimit"
	"github.com/ICGNU3/rhiz-prototype-sub002/internal/store"
)

// Result statuses.
const (
	StatusSuccess = "success"
	StatusEmpty   = "empty"
	StatusError   = "error"
)

// Result is the insight generation envelope. It is well-formed under
// every failure mode; callers never handle a panic or error from
// GenerateInsights.
type Result struct {
	Status    string             `json:"status"`
	Timestamp string             `json:"timestamp"`
	Insights  *RhizomaticInsight `json:"rhizomatic_insights,omitempty"`
	Error     string             `json:"error,omitempty"`
	Message   string             `json:"message,omitempty"`
	Graph     *NetworkGraph      `json:"network_graph"`
}

// Service wires the aggregator, synthesizer and graph builder behind the
// operations the route layer consumes.
type Service struct {
	DB         *store.DB
	Aggregator *Aggregator
	Synth      *Synthesizer
	Graph      *GraphBuilder
	Limiter    *ratelimit.Limiter
}

// NewService builds the insight pipeline. The random source seeds the
// graph builder's weak-tie noise; pass a fixed seed for reproducibility.
func NewService(db *store.DB, client llm.Client, timeout time.Duration, limiter *ratelimit.Limiter, rng *rand.Rand) *Service {
	return &Service{
		DB:         db,
		Aggregator: &Aggregator{DB: db},
		Synth:      NewSynthesizer(client, timeout),
		Graph:      NewGraphBuilder(rng),
		Limiter:    limiter,
	}
}

// GenerateInsights runs the full pipeline for a user: aggregate context,
// synthesize an insight, build the graph, and log the result for history.
func (s *Service) GenerateInsights(ctx context.Context, userID string) *Result {
	now := time.Now().UTC().Format(time.RFC3339)

	if s.Limiter != nil && !s.Limiter.Allow(userID, "generate_insights") {
		return &Result{
			Status:    StatusError,
			Timestamp: now,
			Error:     "insight generation rate limit exceeded; try again shortly",
			Graph:     EmptyGraph(),
		}
	}

	nc, err := s.Aggregator.Gather(ctx, userID)
	if err != nil {
		log.Printf("insights: aggregate for %s: %v", userID, err)
		return &Result{
			Status:    StatusError,
			Timestamp: now,
			Error:     "failed to load network context",
			Graph:     EmptyGraph(),
		}
	}

	// Nothing to reason about: skip the service call entirely. This is a
	// fast-path, not an error.
	if len(nc.Contacts) == 0 {
		result := &Result{
			Status:    StatusEmpty,
			Timestamp: now,
			Message:   "Add contacts to start generating network insights",
			Graph:     EmptyGraph(),
		}
		s.logResult(userID, result)
		return result
	}

	ins := s.Synth.Synthesize(ctx, nc)
	result := &Result{
		Status:    StatusSuccess,
		Timestamp: now,
		Insights:  ins,
		Graph:     s.Graph.Build(nc.Contacts, ins),
	}
	s.logResult(userID, result)
	return result
}

// logResult persists the insight for history. Failures here are
// non-critical: logged and swallowed, never failing the generation.
func (s *Service) logResult(userID string, result *Result) {
	payload, err := json.Marshal(result)
	if err != nil {
		log.Printf("insights: marshal history for %s: %v", userID, err)
		return
	}
	entry := &store.InsightLogEntry{
		ID:      uuid.NewString(),
		UserID:  userID,
		Payload: string(payload),
		Status:  result.Status,
	}
	if err := s.DB.LogInsight(entry); err != nil {
		log.Printf("insights: log history for %s: %v", userID, err)
	}
}

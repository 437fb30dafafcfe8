package insight

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/ICGNU3/rhiz-prototype-sub002/internal/llm"
)

// maxSuggestedContacts caps the suggestions kept from a response.
const maxSuggestedContacts = 3

// insightKeys are the top-level keys a response must carry to be accepted.
var insightKeys = []string{
	"primary_goal", "suggested_contacts", "connection_path",
	"dormant_contact", "network_insights",
}

// Synthesizer turns an aggregated network context into a RhizomaticInsight
// via one call to the reasoning service. All failure modes resolve to the
// fixed fallback; Synthesize never returns an error.
type Synthesizer struct {
	LLM     llm.Client
	Timeout time.Duration
}

// NewSynthesizer creates a synthesizer with the given completion timeout.
func NewSynthesizer(client llm.Client, timeout time.Duration) *Synthesizer {
	return &Synthesizer{LLM: client, Timeout: timeout}
}

// Synthesize issues one bounded completion call and validates the result.
// One attempt, then fallback — retries would stack latency on a path that
// already has a safe default.
func (s *Synthesizer) Synthesize(ctx context.Context, nc *NetworkContext) *RhizomaticInsight {
	if s.LLM == nil {
		return Fallback()
	}

	prompt := llm.InsightPrompt(BuildContextBlock(nc))

	cctx, cancel := context.WithTimeout(ctx, s.Timeout)
	defer cancel()

	resp, err := s.LLM.Complete(cctx, prompt)
	if err != nil {
		log.Printf("synthesize: completion failed: %v", err)
		return Fallback()
	}

	ins, err := parseInsightResponse(resp.Content)
	if err != nil {
		log.Printf("synthesize: %v", err)
		return Fallback()
	}

	if !repairInsight(ins, nc) {
		log.Printf("synthesize: response unrecoverable after repair")
		return Fallback()
	}
	return ins
}

// BuildContextBlock renders the aggregated context as the prompt's
// natural-language network description.
func BuildContextBlock(nc *NetworkContext) string {
	var b strings.Builder
	now := time.Now()

	b.WriteString("GOALS:\n")
	if len(nc.Goals) == 0 {
		b.WriteString("- (no goals set)\n")
	}
	for _, g := range nc.Goals {
		age := int(now.Sub(time.UnixMilli(g.CreatedAt)).Hours() / 24)
		fmt.Fprintf(&b, "- %s (set %d days ago)", g.Title, age)
		if g.Description != "" {
			fmt.Fprintf(&b, ": %s", g.Description)
		}
		b.WriteString("\n")
	}

	b.WriteString("\nCONTACTS:\n")
	for _, c := range nc.Contacts {
		fmt.Fprintf(&b, "- [id %d] %s", c.ID, c.Name)
		if c.Title != "" || c.Company != "" {
			fmt.Fprintf(&b, " (%s at %s)", c.Title, c.Company)
		}
		if c.Tags != "" {
			fmt.Fprintf(&b, "; tags: %s", c.Tags)
		}
		fmt.Fprintf(&b, "; last contact: %s; interactions: %d", recencyBucket(c.LastInteractionAt, now), c.InteractionCount)
		if c.LastInteractionType != "" {
			fmt.Fprintf(&b, "; latest: %s", c.LastInteractionType)
			if c.LastInteractionNotes != "" {
				fmt.Fprintf(&b, " (%s)", c.LastInteractionNotes)
			}
		}
		b.WriteString("\n")
	}

	b.WriteString("\nRECENT INTERACTIONS (30 days):\n")
	if len(nc.Interactions) == 0 {
		b.WriteString("- (none)\n")
	}
	for _, g := range nc.Interactions {
		fmt.Fprintf(&b, "- %s: %d interactions, latest %s", g.ContactName, g.Count, g.LatestType)
		if g.LatestNotes != "" {
			fmt.Fprintf(&b, " (%s)", g.LatestNotes)
		}
		b.WriteString("\n")
	}

	return b.String()
}

// recencyBucket renders a last-interaction timestamp as prompt text.
// A timestamp that doesn't resolve to a past day becomes "Recently".
func recencyBucket(lastAt *int64, now time.Time) string {
	if lastAt == nil {
		return "Never contacted"
	}
	days := int(now.Sub(time.UnixMilli(*lastAt)).Hours() / 24)
	if days < 0 {
		return "Recently"
	}
	return fmt.Sprintf("%d days ago", days)
}

// parseInsightResponse extracts the JSON object from the response. The
// content may carry markdown code fences or wrapper text.
func parseInsightResponse(content string) (*RhizomaticInsight, error) {
	content = strings.TrimSpace(content)

	// Strip markdown code fences if present
	if strings.HasPrefix(content, "```") {
		lines := strings.Split(content, "\n")
		if len(lines) > 2 {
			content = strings.Join(lines[1:len(lines)-1], "\n")
		}
	}

	content = strings.TrimSpace(content)

	start := strings.Index(content, "{")
	end := strings.LastIndex(content, "}")
	if start < 0 || end < 0 || end <= start {
		return nil, fmt.Errorf("no JSON object found in response")
	}
	jsonStr := content[start : end+1]

	// Probe for the required top-level keys before binding to the struct.
	var probe map[string]json.RawMessage
	if err := json.Unmarshal([]byte(jsonStr), &probe); err != nil {
		return nil, fmt.Errorf("unmarshal insight: %w", err)
	}
	for _, key := range insightKeys {
		if _, ok := probe[key]; !ok {
			return nil, fmt.Errorf("insight response missing %q", key)
		}
	}

	var ins RhizomaticInsight
	if err := json.Unmarshal([]byte(jsonStr), &ins); err != nil {
		return nil, fmt.Errorf("unmarshal insight: %w", err)
	}
	return &ins, nil
}

// repairInsight normalizes a parsed response in place: drops nameless
// suggestions, caps them at three, backfills a too-short connection path
// from the context, and ensures non-nil lists. Returns false when the
// response cannot be made usable.
func repairInsight(ins *RhizomaticInsight, nc *NetworkContext) bool {
	kept := ins.SuggestedContacts[:0]
	for _, sc := range ins.SuggestedContacts {
		if strings.TrimSpace(sc.Name) == "" {
			continue
		}
		kept = append(kept, sc)
		if len(kept) == maxSuggestedContacts {
			break
		}
	}
	ins.SuggestedContacts = kept

	if len(ins.ConnectionPath.Contacts) < 2 {
		ins.ConnectionPath.Contacts = pathFromContext(nc)
		if len(ins.ConnectionPath.Contacts) < 2 {
			return false
		}
		if ins.ConnectionPath.Rationale == "" {
			ins.ConnectionPath.Rationale = "Most recently active contacts"
		}
	}

	if ins.DormantContact != nil && strings.TrimSpace(ins.DormantContact.Name) == "" {
		ins.DormantContact = nil
	}

	if ins.NetworkInsights == nil {
		ins.NetworkInsights = []string{}
	}
	if strings.TrimSpace(ins.PrimaryGoal) == "" {
		if len(nc.Goals) > 0 {
			ins.PrimaryGoal = nc.Goals[0].Title
		} else {
			ins.PrimaryGoal = "Strengthen your existing relationships"
		}
	}
	return true
}

func pathFromContext(nc *NetworkContext) []string {
	var names []string
	for _, c := range nc.Contacts {
		names = append(names, c.Name)
		if len(names) == 2 {
			break
		}
	}
	return names
}

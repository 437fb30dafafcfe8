package llm

import "fmt"

// InsightPrompt builds the prompt for network insight synthesis. The
// context block carries goals, contacts and recent interactions; the
// response must be a single JSON object so it can be parsed without
// free-text cleanup.
func InsightPrompt(contextBlock string) string {
	return fmt.Sprintf(`You are a relationship strategist analyzing a professional network.
Think rhizomatically: connections matter more than hierarchy.

NETWORK CONTEXT:
%s

Analyze the network against the user's goals and respond with a single JSON object:
{
  "primary_goal": "the goal this analysis advances",
  "suggested_contacts": [
    {
      "contact_id": 0,
      "name": "contact name exactly as given",
      "reason": "why reaching out now helps the goal",
      "suggested_message": "a short, natural opening message",
      "tone": "warm|direct|casual",
      "urgency": "high|medium|low"
    }
  ],
  "connection_path": {
    "contacts": ["name A", "name B"],
    "rationale": "why this chain of introductions works"
  },
  "dormant_contact": {
    "contact_id": 0,
    "name": "contact name exactly as given",
    "last_contact": "how long it has been",
    "reactivation_reason": "why this relationship is worth reviving",
    "suggested_message": "a short re-opener"
  },
  "network_insights": ["one observation about the network's shape or gaps"]
}

Rules:
- Suggest at most 3 contacts, all drawn from the context
- contact_id must be the numeric id given in the context, or 0 if unsure
- connection_path must chain at least 2 contact names
- dormant_contact may be null if nobody has gone quiet
- Return ONLY the JSON object, no other text`, contextBlock)
}

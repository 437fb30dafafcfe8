package insight

// Fallback returns the fixed insight served when the reasoning service
// fails. It is a design constant: identical content on every call, with
// the degraded flag set so callers don't have to infer the mode from
// content.
func Fallback() *RhizomaticInsight {
	return &RhizomaticInsight{
		Degraded:    true,
		PrimaryGoal: "Strengthen your existing relationships",
		SuggestedContacts: []SuggestedContact{
			{
				Name:             "Your most recent contact",
				Reason:           "Reconnecting while momentum is fresh keeps the relationship warm",
				SuggestedMessage: "Hey — it's been a little while. How has your quarter been going?",
				Tone:             "warm",
				Urgency:          "medium",
			},
		},
		ConnectionPath: ConnectionPath{
			Contacts:  []string{"Your strongest contact", "Their network"},
			Rationale: "Warm introductions through trusted contacts outperform cold outreach",
		},
		DormantContact: &DormantContact{
			Name:               "Your longest-quiet contact",
			LastContact:        "More than a month ago",
			ReactivationReason: "Quiet relationships fade; a light touch revives them",
			SuggestedMessage:   "Thought of you today — would love to catch up soon.",
		},
		NetworkInsights: []string{
			"Insight generation is temporarily degraded; showing general guidance.",
		},
	}
}

package trust

import (
	"time"

	"github.com/ICGNU3/rhiz-prototype-sub002/internal/store"
)

// Overview summarizes the trust state of a user's network.
type Overview struct {
	TrackedContacts int            `json:"tracked_contacts"`
	AverageTrust    float64        `json:"average_trust"`
	Levels          map[string]int `json:"levels"`
}

// RecentContribution is a 30-day ledger entry for the insights view.
type RecentContribution struct {
	EventID          string  `json:"event_id"`
	ContactID        int64   `json:"contact_id"`
	ContactName      string  `json:"contact_name"`
	ContributionType string  `json:"contribution_type"`
	ValueLevel       string  `json:"value_level"`
	Outcome          string  `json:"outcome"`
	ImpactScore      float64 `json:"impact_score"`
	DateCreated      int64   `json:"date_created"`
}

// Insights is the full trust insights payload: overview, recent
// contributions (30d) and daily score-change trends (90d).
type Insights struct {
	Overview            Overview               `json:"trust_overview"`
	RecentContributions []RecentContribution   `json:"recent_contributions"`
	Trends              []store.TrustTrendPoint `json:"trust_trends"`
}

// Insights assembles the trust insights view for a user.
func (e *Engine) Insights(userID string) (*Insights, error) {
	metrics, err := e.DB.UserTrustMetrics(userID)
	if err != nil {
		return nil, err
	}

	overview := Overview{
		TrackedContacts: len(metrics),
		Levels:          map[string]int{},
	}
	for _, m := range metrics {
		overview.AverageTrust += m.TrustScore
		overview.Levels[Level(m.TrustScore)]++
	}
	if len(metrics) > 0 {
		overview.AverageTrust /= float64(len(metrics))
	}

	now := time.Now()
	events, err := e.DB.ContributionsSince(userID, now.Add(-30*24*time.Hour).UnixMilli())
	if err != nil {
		return nil, err
	}
	recent := make([]RecentContribution, 0, len(events))
	for _, ev := range events {
		recent = append(recent, RecentContribution{
			EventID:          ev.ID,
			ContactID:        ev.ContactID,
			ContactName:      ev.ContactName,
			ContributionType: ev.ContributionType,
			ValueLevel:       ev.ValueLevel,
			Outcome:          ev.Outcome,
			ImpactScore:      ev.ImpactScore,
			DateCreated:      ev.DateCreated,
		})
	}

	trends, err := e.DB.TrustTrends(userID, now.Add(-90*24*time.Hour).UnixMilli())
	if err != nil {
		return nil, err
	}

	return &Insights{
		Overview:            overview,
		RecentContributions: recent,
		Trends:              trends,
	}, nil
}

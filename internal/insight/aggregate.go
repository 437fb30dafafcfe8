package insight

import (
	"context"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/ICGNU3/rhiz-prototype-sub002/internal/store"
)

// Caps on the context surfaced to the synthesizer. They bound downstream
// prompt size; callers needing more must paginate separately.
const (
	maxGoals             = 5
	maxContacts          = 20
	maxInteractionGroups = 10
	interactionWindow    = 30 * 24 * time.Hour
)

// Aggregator gathers a user's goals, contacts and recent interactions
// into a bounded summary. Pure read/shape logic.
type Aggregator struct {
	DB *store.DB
}

// Gather builds the network context for a user. The three reads are
// independent and run concurrently.
func (a *Aggregator) Gather(ctx context.Context, userID string) (*NetworkContext, error) {
	var (
		goals        []store.Goal
		contacts     []store.ContactActivity
		interactions []store.Interaction
	)

	g, _ := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		goals, err = a.DB.RecentGoals(userID, maxGoals)
		return err
	})
	g.Go(func() error {
		var err error
		contacts, err = a.DB.ListContactsByActivity(userID, maxContacts)
		return err
	})
	g.Go(func() error {
		since := time.Now().Add(-interactionWindow).UnixMilli()
		var err error
		interactions, err = a.DB.InteractionsSince(userID, since)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	return &NetworkContext{
		Goals:        goals,
		Contacts:     contacts,
		Interactions: groupInteractions(interactions, maxInteractionGroups),
	}, nil
}

// groupInteractions collapses interactions per contact, keeping the most
// recently active groups. Input is newest-first, so the first row per
// contact is its latest interaction.
func groupInteractions(interactions []store.Interaction, limit int) []InteractionGroup {
	byContact := make(map[int64]*InteractionGroup)
	var order []int64

	for _, in := range interactions {
		g, ok := byContact[in.ContactID]
		if !ok {
			g = &InteractionGroup{
				ContactID:   in.ContactID,
				ContactName: in.ContactName,
				LatestType:  in.InteractionType,
				LatestNotes: in.Notes,
				LatestAt:    in.OccurredAt,
			}
			byContact[in.ContactID] = g
			order = append(order, in.ContactID)
		}
		g.Count++
	}

	groups := make([]InteractionGroup, 0, len(order))
	for _, id := range order {
		groups = append(groups, *byContact[id])
		if len(groups) >= limit {
			break
		}
	}
	return groups
}

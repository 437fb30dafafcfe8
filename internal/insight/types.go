package insight

import "github.com/ICGNU3/rhiz-prototype-sub002/internal/store"

// RhizomaticInsight is the structured, non-hierarchical suggestion bundle
// produced per generation request. Never mutated after creation.
type RhizomaticInsight struct {
	PrimaryGoal       string             `json:"primary_goal"`
	SuggestedContacts []SuggestedContact `json:"suggested_contacts"`
	ConnectionPath    ConnectionPath     `json:"connection_path"`
	DormantContact    *DormantContact    `json:"dormant_contact"`
	NetworkInsights   []string           `json:"network_insights"`
	Degraded          bool               `json:"degraded,omitempty"`
}

// SuggestedContact is one outreach recommendation. ContactID is the
// stable identifier for graph classification; Name is display text.
type SuggestedContact struct {
	ContactID        int64  `json:"contact_id,omitempty"`
	Name             string `json:"name"`
	Reason           string `json:"reason"`
	SuggestedMessage string `json:"suggested_message"`
	Tone             string `json:"tone"`
	Urgency          string `json:"urgency"`
}

// ConnectionPath is a chain of two or more contact names worth linking.
type ConnectionPath struct {
	Contacts  []string `json:"contacts"`
	Rationale string   `json:"rationale"`
}

// DormantContact flags a relationship worth reactivating.
type DormantContact struct {
	ContactID          int64  `json:"contact_id,omitempty"`
	Name               string `json:"name"`
	LastContact        string `json:"last_contact"`
	ReactivationReason string `json:"reactivation_reason"`
	SuggestedMessage   string `json:"suggested_message"`
}

// Node types in the network graph.
const (
	NodeNormal    = "normal"
	NodeSuggested = "suggested"
	NodeDormant   = "dormant"
	NodeUser      = "user"
)

// Node is one graph vertex with rendering hints.
type Node struct {
	ID       string            `json:"id"`
	Label    string            `json:"label"`
	Type     string            `json:"type"`
	Size     float64           `json:"size"`
	X        *float64          `json:"x,omitempty"`
	Y        *float64          `json:"y,omitempty"`
	Fixed    bool              `json:"fixed,omitempty"`
	Color    string            `json:"color"`
	Metadata map[string]string `json:"metadata,omitempty"`
}

// Edge is one graph connection. Weight doubles as rendered width.
type Edge struct {
	ID     string  `json:"id"`
	From   string  `json:"from"`
	To     string  `json:"to"`
	Weight float64 `json:"weight"`
	Style  string  `json:"style"`
}

// GraphMeta summarizes a built graph.
type GraphMeta struct {
	TotalNodes     int `json:"total_nodes"`
	TotalEdges     int `json:"total_edges"`
	SuggestedCount int `json:"suggested_count"`
	DormantCount   int `json:"dormant_count"`
}

// LayoutHint declares the intended rendering algorithm. It is advice for
// the renderer, not something this package enforces.
type LayoutHint struct {
	Algorithm               string `json:"algorithm"`
	StabilizationIterations int    `json:"stabilization_iterations"`
}

// NetworkGraph is the ephemeral node/edge view of a network. Rebuilt per
// request; node identity across rebuilds is only the contact_{id}
// convention.
type NetworkGraph struct {
	Nodes  []Node     `json:"nodes"`
	Edges  []Edge     `json:"edges"`
	Meta   GraphMeta  `json:"meta"`
	Layout LayoutHint `json:"layout"`
}

// InteractionGroup is a contact's recent interactions collapsed into one
// line for the synthesizer.
type InteractionGroup struct {
	ContactID   int64
	ContactName string
	Count       int
	LatestType  string
	LatestNotes string
	LatestAt    int64
}

// NetworkContext is the bounded summary handed to the synthesizer.
type NetworkContext struct {
	Goals        []store.Goal
	Contacts     []store.ContactActivity
	Interactions []InteractionGroup
}

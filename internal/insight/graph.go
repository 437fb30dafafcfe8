package insight

import (
	"fmt"
	"math/rand"
	"strings"

	"github.com/ICGNU3/rhiz-prototype-sub002/internal/store"
)

// Graph construction constants.
const (
	maxGraphContacts        = 15
	weakTieProbability      = 0.1
	minNodeSize             = 10
	maxNodeSize             = 30
	userNodeSize            = 36
	structuralEdgeWeight    = 1.5
	weakTieEdgeWeight       = 0.8
	userEdgeWeight          = 0.5
	stabilizationIterations = 200
)

var nodeColors = map[string]string{
	NodeNormal:    "#4e79a7",
	NodeSuggested: "#f28e2b",
	NodeDormant:   "#9aa0a6",
	NodeUser:      "#e15759",
}

// GraphBuilder converts contacts plus a synthesized insight into a typed
// node/edge graph. Pure and allocation-only; the random source is
// injected so weak-tie noise is reproducible under test.
type GraphBuilder struct {
	rng *rand.Rand
}

// NewGraphBuilder creates a builder over the given random source.
func NewGraphBuilder(rng *rand.Rand) *GraphBuilder {
	return &GraphBuilder{rng: rng}
}

// Build assembles the network graph from at most the first 15 contacts.
// Classification prefers the contact IDs carried in the insight and falls
// back to exact name equality when a suggestion has no ID.
func (b *GraphBuilder) Build(contacts []store.ContactActivity, ins *RhizomaticInsight) *NetworkGraph {
	if len(contacts) > maxGraphContacts {
		contacts = contacts[:maxGraphContacts]
	}

	suggestedIDs := make(map[int64]bool)
	suggestedNames := make(map[string]bool)
	var dormantID int64
	var dormantName string
	if ins != nil {
		for _, sc := range ins.SuggestedContacts {
			if sc.ContactID != 0 {
				suggestedIDs[sc.ContactID] = true
			} else {
				suggestedNames[sc.Name] = true
			}
		}
		if ins.DormantContact != nil {
			dormantID = ins.DormantContact.ContactID
			dormantName = ins.DormantContact.Name
		}
	}

	graph := &NetworkGraph{
		Nodes: make([]Node, 0, len(contacts)+1),
		Edges: []Edge{},
		Layout: LayoutHint{
			Algorithm:               "force-directed",
			StabilizationIterations: stabilizationIterations,
		},
	}

	for _, c := range contacts {
		nodeType := NodeNormal
		switch {
		case suggestedIDs[c.ID] || suggestedNames[c.Name]:
			nodeType = NodeSuggested
		case (dormantID != 0 && dormantID == c.ID) || (dormantID == 0 && dormantName != "" && dormantName == c.Name):
			nodeType = NodeDormant
		}

		size := float64(minNodeSize + 2*c.InteractionCount)
		if size > maxNodeSize {
			size = maxNodeSize
		}

		graph.Nodes = append(graph.Nodes, Node{
			ID:    fmt.Sprintf("contact_%d", c.ID),
			Label: c.Name,
			Type:  nodeType,
			Size:  size,
			Color: nodeColors[nodeType],
			Metadata: map[string]string{
				"title":   c.Title,
				"company": c.Company,
			},
		})

		switch nodeType {
		case NodeSuggested:
			graph.Meta.SuggestedCount++
		case NodeDormant:
			graph.Meta.DormantCount++
		}
	}

	// Contact-to-contact edges: structural matches always connect; weak
	// ties fill in visual density where no structural signal exists.
	for i := 0; i < len(contacts); i++ {
		for j := i + 1; j < len(contacts); j++ {
			structural := sameCompany(contacts[i].Company, contacts[j].Company) ||
				tagsIntersect(contacts[i].Tags, contacts[j].Tags)

			switch {
			case structural:
				graph.Edges = append(graph.Edges, Edge{
					ID:     fmt.Sprintf("edge_%d_%d", contacts[i].ID, contacts[j].ID),
					From:   fmt.Sprintf("contact_%d", contacts[i].ID),
					To:     fmt.Sprintf("contact_%d", contacts[j].ID),
					Weight: structuralEdgeWeight,
					Style:  "solid",
				})
			case b.rng.Float64() < weakTieProbability:
				graph.Edges = append(graph.Edges, Edge{
					ID:     fmt.Sprintf("edge_%d_%d", contacts[i].ID, contacts[j].ID),
					From:   fmt.Sprintf("contact_%d", contacts[i].ID),
					To:     fmt.Sprintf("contact_%d", contacts[j].ID),
					Weight: weakTieEdgeWeight,
					Style:  "dashed",
				})
			}
		}
	}

	// The user sits fixed at the center, connected to everyone.
	zero := 0.0
	graph.Nodes = append(graph.Nodes, Node{
		ID:    "user",
		Label: "You",
		Type:  NodeUser,
		Size:  userNodeSize,
		X:     &zero,
		Y:     &zero,
		Fixed: true,
		Color: nodeColors[NodeUser],
	})
	for _, c := range contacts {
		graph.Edges = append(graph.Edges, Edge{
			ID:     fmt.Sprintf("edge_user_%d", c.ID),
			From:   "user",
			To:     fmt.Sprintf("contact_%d", c.ID),
			Weight: userEdgeWeight,
			Style:  "solid",
		})
	}

	graph.Meta.TotalNodes = len(graph.Nodes)
	graph.Meta.TotalEdges = len(graph.Edges)
	return graph
}

// EmptyGraph returns the zero-node graph used by the empty fast-path.
func EmptyGraph() *NetworkGraph {
	return &NetworkGraph{
		Nodes: []Node{},
		Edges: []Edge{},
		Layout: LayoutHint{
			Algorithm:               "force-directed",
			StabilizationIterations: stabilizationIterations,
		},
	}
}

func sameCompany(a, b string) bool {
	a = strings.TrimSpace(a)
	b = strings.TrimSpace(b)
	return a != "" && b != "" && strings.EqualFold(a, b)
}

// tagsIntersect compares comma-split, trimmed, lower-cased tag sets.
func tagsIntersect(a, b string) bool {
	setA := tagSet(a)
	if len(setA) == 0 {
		return false
	}
	for _, tag := range strings.Split(b, ",") {
		tag = strings.ToLower(strings.TrimSpace(tag))
		if tag != "" && setA[tag] {
			return true
		}
	}
	return false
}

func tagSet(tags string) map[string]bool {
	set := make(map[string]bool)
	for _, tag := range strings.Split(tags, ",") {
		tag = strings.ToLower(strings.TrimSpace(tag))
		if tag != "" {
			set[tag] = true
		}
	}
	return set
}

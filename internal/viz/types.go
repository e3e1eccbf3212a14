// Package viz renders the country collaboration network as a standalone
// Cytoscape.js page.
package viz

// GraphData contains all data needed to render the visualization.
type GraphData struct {
	Nodes []Node `json:"nodes"`
	Edges []Edge `json:"edges"`
}

// Node is one country.
type Node struct {
	ID    string `json:"id"`
	Label string `json:"label"`

	// Retractions credited to the country under the graph's basis.
	Total int    `json:"total"`
	Flag  string `json:"flag,omitempty"`

	// Number of partner countries kept in the graph.
	ConnectionCount int `json:"connectionCount"`
}

// Edge joins two countries that appear together on retracted papers.
// Source sorts before Target.
type Edge struct {
	Source string `json:"source"`
	Target string `json:"target"`
	Weight int    `json:"weight"`
}

// IsEmpty returns true if the graph has no nodes.
func (g *GraphData) IsEmpty() bool {
	return len(g.Nodes) == 0
}

// MaxTotal returns the largest node total, at least 1.
func (g *GraphData) MaxTotal() int {
	m := 1
	for _, n := range g.Nodes {
		if n.Total > m {
			m = n.Total
		}
	}
	return m
}

// MaxWeight returns the largest edge weight, at least 1.
func (g *GraphData) MaxWeight() int {
	m := 1
	for _, e := range g.Edges {
		if e.Weight > m {
			m = e.Weight
		}
	}
	return m
}

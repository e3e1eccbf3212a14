package viz

import (
	"sort"

	"github.com/Jeet009/Retraction-Watch-Dashboard-Data-Generator-Portal/internal/aggregate"
	"github.com/Jeet009/Retraction-Watch-Dashboard-Data-Generator-Portal/internal/country"
	"github.com/Jeet009/Retraction-Watch-Dashboard-Data-Generator-Portal/internal/dataset"
)

// BuildGraph constructs the undirected collaboration graph for one basis.
// Pairs seen on fewer than minWeight records are dropped, and so are the
// countries left without any partner.
func BuildGraph(e *aggregate.Engine, b dataset.Basis, minWeight int) *GraphData {
	edges, connectionCounts := collectEdges(e.Edges(b), b, minWeight)
	return &GraphData{
		Nodes: buildCountryNodes(e, b, connectionCounts),
		Edges: edges,
	}
}

// collectEdges folds the directed pair counts into one edge per unordered
// pair and tracks how many partners each country keeps.
func collectEdges(directed map[aggregate.EdgeKey]int, b dataset.Basis, minWeight int) ([]Edge, map[string]int) {
	connectionCounts := make(map[string]int)
	var edges []Edge

	for k, n := range directed {
		if k.Basis != b || k.A >= k.B || n < minWeight {
			continue
		}
		edges = append(edges, Edge{Source: k.A, Target: k.B, Weight: n})
		connectionCounts[k.A]++
		connectionCounts[k.B]++
	}

	sort.Slice(edges, func(i, j int) bool {
		if edges[i].Source != edges[j].Source {
			return edges[i].Source < edges[j].Source
		}
		return edges[i].Target < edges[j].Target
	})
	return edges, connectionCounts
}

// buildCountryNodes constructs nodes for every country with a kept edge,
// sorted by name.
func buildCountryNodes(e *aggregate.Engine, b dataset.Basis, connectionCounts map[string]int) []Node {
	names := make([]string, 0, len(connectionCounts))
	for name := range connectionCounts {
		names = append(names, name)
	}
	sort.Strings(names)

	nodes := make([]Node, 0, len(names))
	for _, name := range names {
		nodes = append(nodes, Node{
			ID:              name,
			Label:           name,
			Total:           e.Stats(name, b).Total,
			Flag:            country.FlagPath(name),
			ConnectionCount: connectionCounts[name],
		})
	}
	return nodes
}

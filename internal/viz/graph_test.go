package viz

import (
	"strings"
	"testing"

	"github.com/Jeet009/Retraction-Watch-Dashboard-Data-Generator-Portal/internal/aggregate"
	"github.com/Jeet009/Retraction-Watch-Dashboard-Data-Generator-Portal/internal/classify"
	"github.com/Jeet009/Retraction-Watch-Dashboard-Data-Generator-Portal/internal/dataset"
	"github.com/segmentio/encoding/json"
)

func engineWith(rows ...[3]string) *aggregate.Engine {
	rules := classify.NewRuleSet(nil)
	e := aggregate.NewEngine()
	for _, r := range rows {
		rec := &dataset.Record{
			RetractionNature:  dataset.IncludedNature,
			Country:           r[0],
			OriginalPaperDate: r[1],
			RetractionDate:    r[2],
		}
		rec.Derive(rules)
		e.Add(rec)
	}
	return e
}

func TestBuildGraph(t *testing.T) {
	e := engineWith(
		[3]string{"China;United States", "2019", "2020"},
		[3]string{"United States;China", "2020", "2021"},
		[3]string{"China;Japan;United States", "2021", ""},
		[3]string{"France", "2021", "2022"},
	)

	tests := []struct {
		name      string
		basis     dataset.Basis
		minWeight int
		wantNodes []string
		wantEdges []Edge
	}{
		{
			name:      "all pairs",
			basis:     dataset.Original,
			minWeight: 1,
			wantNodes: []string{"China", "Japan", "United States"},
			wantEdges: []Edge{
				{Source: "China", Target: "Japan", Weight: 1},
				{Source: "China", Target: "United States", Weight: 3},
				{Source: "Japan", Target: "United States", Weight: 1},
			},
		},
		{
			name:      "min weight drops light pairs and orphaned countries",
			basis:     dataset.Original,
			minWeight: 2,
			wantNodes: []string{"China", "United States"},
			wantEdges: []Edge{{Source: "China", Target: "United States", Weight: 3}},
		},
		{
			name:      "notice basis skips records without notice date",
			basis:     dataset.Notice,
			minWeight: 1,
			wantNodes: []string{"China", "United States"},
			wantEdges: []Edge{{Source: "China", Target: "United States", Weight: 2}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := BuildGraph(e, tt.basis, tt.minWeight)

			var ids []string
			for _, n := range g.Nodes {
				ids = append(ids, n.ID)
			}
			if strings.Join(ids, ",") != strings.Join(tt.wantNodes, ",") {
				t.Errorf("nodes = %v, want %v", ids, tt.wantNodes)
			}
			if len(g.Edges) != len(tt.wantEdges) {
				t.Fatalf("edges = %+v, want %+v", g.Edges, tt.wantEdges)
			}
			for i, want := range tt.wantEdges {
				if g.Edges[i] != want {
					t.Errorf("edge %d = %+v, want %+v", i, g.Edges[i], want)
				}
			}
		})
	}
}

func TestBuildGraph_NodeFields(t *testing.T) {
	e := engineWith(
		[3]string{"China;United States", "2019", ""},
		[3]string{"China", "2020", ""},
	)
	g := BuildGraph(e, dataset.Original, 1)
	if len(g.Nodes) != 2 {
		t.Fatalf("nodes = %+v", g.Nodes)
	}
	china := g.Nodes[0]
	if china.Total != 2 || china.ConnectionCount != 1 {
		t.Errorf("China = %+v, want total 2 and 1 connection", china)
	}
	if china.Flag != "/country_flags/China.svg" {
		t.Errorf("Flag = %q", china.Flag)
	}
	if g.MaxTotal() != 2 || g.MaxWeight() != 1 {
		t.Errorf("MaxTotal/MaxWeight = %d/%d", g.MaxTotal(), g.MaxWeight())
	}
}

func TestToCytoscapeJSON(t *testing.T) {
	g := &GraphData{
		Nodes: []Node{{ID: "A", Label: "A", Total: 3}, {ID: "B", Label: "B", Total: 1}},
		Edges: []Edge{{Source: "A", Target: "B", Weight: 2}},
	}
	s, err := g.ToCytoscapeJSON()
	if err != nil {
		t.Fatalf("ToCytoscapeJSON() error = %v", err)
	}

	var elements CytoscapeElements
	if err := json.Unmarshal([]byte(s), &elements); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	if len(elements.Nodes) != 2 || len(elements.Edges) != 1 {
		t.Fatalf("elements = %+v", elements)
	}
	if got := elements.Edges[0].Data; got.ID != "A--B" || got.Weight != 2 {
		t.Errorf("edge data = %+v", got)
	}
}

func TestGenerateHTML(t *testing.T) {
	g := &GraphData{
		Nodes: []Node{{ID: "A", Label: "A", Total: 3}, {ID: "B", Label: "B", Total: 1}},
		Edges: []Edge{{Source: "A", Target: "B", Weight: 2}},
	}

	tests := []struct {
		layout     string
		wantLayout string
		wantErr    bool
	}{
		{"", "cose", false},
		{"force", "cose", false},
		{"circle", "circle", false},
		{"grid", "grid", false},
		{"spiral", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.layout, func(t *testing.T) {
			html, err := GenerateHTML(g, HTMLOptions{Layout: tt.layout})
			if (err != nil) != tt.wantErr {
				t.Fatalf("GenerateHTML() error = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.wantErr {
				return
			}
			if !strings.Contains(html, `const layout = "`+tt.wantLayout+`"`) {
				t.Errorf("layout %q not found in output", tt.wantLayout)
			}
			if !strings.Contains(html, "<title>Retraction collaborations</title>") {
				t.Error("default title not used")
			}
			if !strings.Contains(html, `"A--B"`) {
				t.Error("edge data not embedded")
			}
			if !strings.Contains(html, "<p>2 countries, 1 links</p>") {
				t.Error("graph size not shown in panel")
			}
		})
	}
}

func TestGenerateHTML_Empty(t *testing.T) {
	html, err := GenerateHTML(&GraphData{}, HTMLOptions{Title: "R&D"})
	if err != nil {
		t.Fatalf("GenerateHTML() error = %v", err)
	}
	if !strings.Contains(html, "No collaborations") {
		t.Error("empty state not rendered")
	}
	if !strings.Contains(html, "R&amp;D - Empty") {
		t.Error("title not escaped")
	}

	if _, err := GenerateHTML(nil, DefaultOptions()); err == nil {
		t.Error("GenerateHTML(nil) expected error")
	}
}

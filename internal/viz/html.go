package viz

import (
	"bytes"
	"errors"
	"fmt"
	"html/template"
)

// compiledTemplate is parsed at init time to fail fast on template errors.
var compiledTemplate *template.Template

func init() {
	compiledTemplate = template.Must(template.New("viz").Parse(htmlTemplate))
}

// HTMLOptions configures HTML generation.
type HTMLOptions struct {
	Layout string // "force", "circle", or "grid"
	Title  string
}

// DefaultOptions returns default HTML generation options.
func DefaultOptions() HTMLOptions {
	return HTMLOptions{
		Layout: "force",
		Title:  "Retraction collaborations",
	}
}

// ValidLayouts lists the supported layout algorithm names.
var ValidLayouts = []string{"force", "circle", "grid"}

// GenerateHTML generates a self-contained HTML file for the graph visualization.
func GenerateHTML(graph *GraphData, opts HTMLOptions) (string, error) {
	if graph == nil {
		return "", errors.New("graph cannot be nil")
	}

	if err := validateLayout(opts.Layout); err != nil {
		return "", err
	}
	if opts.Title == "" {
		opts.Title = DefaultOptions().Title
	}

	if graph.IsEmpty() {
		return generateEmptyHTML(opts.Title)
	}

	graphJSON, err := graph.ToCytoscapeJSON()
	if err != nil {
		return "", err
	}

	data := templateData{
		Title:     opts.Title,
		GraphJSON: template.JS(graphJSON),
		Layout:    layoutToCytoscape(opts.Layout),
		MaxTotal:  graph.MaxTotal(),
		MaxWeight: graph.MaxWeight(),
		Countries: len(graph.Nodes),
		Links:     len(graph.Edges),
	}

	var buf bytes.Buffer
	if err := compiledTemplate.Execute(&buf, data); err != nil {
		return "", err
	}

	return buf.String(), nil
}

// validateLayout checks if the layout option is valid.
func validateLayout(layout string) error {
	switch layout {
	case "", "force", "circle", "grid":
		return nil
	default:
		return fmt.Errorf("invalid layout %q: must be force, circle, or grid", layout)
	}
}

// templateData holds data for the HTML template.
type templateData struct {
	Title     string
	GraphJSON template.JS
	Layout    string
	MaxTotal  int
	MaxWeight int
	Countries int
	Links     int
}

// layoutToCytoscape converts user-friendly layout names to Cytoscape.js layout algorithm names.
func layoutToCytoscape(layout string) string {
	switch layout {
	case "circle":
		return "circle"
	case "grid":
		return "grid"
	default:
		return "cose"
	}
}

var emptyTemplate = template.Must(template.New("empty").Parse(`<!DOCTYPE html>
<html>
<head>
  <meta charset="UTF-8">
  <title>{{.}} - Empty</title>
  <style>
    body { font-family: sans-serif; text-align: center; color: #666; margin-top: 20vh; }
  </style>
</head>
<body>
  <h2>No collaborations</h2>
  <p>No two countries share a retracted paper at this threshold.</p>
  <p>Try a lower <code>--min-weight</code>.</p>
</body>
</html>`))

// generateEmptyHTML returns HTML for an empty graph state.
func generateEmptyHTML(title string) (string, error) {
	var buf bytes.Buffer
	if err := emptyTemplate.Execute(&buf, title); err != nil {
		return "", err
	}
	return buf.String(), nil
}

const htmlTemplate = `<!DOCTYPE html>
<html>
<head>
  <meta charset="UTF-8">
  <title>{{.Title}}</title>
  <script src="https://unpkg.com/cytoscape@3/dist/cytoscape.min.js"></script>
  <style>
    body { margin: 0; font-family: sans-serif; display: flex; height: 100vh; }
    #cy { flex: 1; }
    #panel { width: 240px; padding: 12px; border-left: 1px solid #ddd; font-size: 13px; overflow-y: auto; }
    #panel img { height: 16px; vertical-align: middle; margin-right: 6px; }
    #partners { padding-left: 18px; }
  </style>
</head>
<body>
  <div id="cy"></div>
  <div id="panel">
    <h3>{{.Title}}</h3>
    <p>{{.Countries}} countries, {{.Links}} links</p>
    <div id="country">Select a country to list its partners.</div>
    <ol id="partners"></ol>
  </div>
  <script>
    (function() {
      const graphData = {{.GraphJSON}};
      const layout = "{{.Layout}}";
      const maxTotal = {{.MaxTotal}};
      const maxWeight = {{.MaxWeight}};

      const cy = cytoscape({
        container: document.getElementById('cy'),
        elements: graphData,
        style: [
          { selector: 'node', style: {
            'background-color': '#C0392B',
            'label': 'data(label)',
            'font-size': '10px',
            'width': 'mapData(total, 0, ' + maxTotal + ', 15, 80)',
            'height': 'mapData(total, 0, ' + maxTotal + ', 15, 80)'
          }},
          { selector: 'edge', style: {
            'line-color': '#95A5A6',
            'curve-style': 'haystack',
            'width': 'mapData(weight, 1, ' + maxWeight + ', 1, 12)'
          }},
          { selector: '.faded', style: { 'opacity': 0.15 } }
        ],
        layout: { name: layout, animate: false }
      });

      const country = document.getElementById('country');
      const partners = document.getElementById('partners');

      function showCountry(node) {
        country.textContent = '';
        if (node.data('flag')) {
          const img = document.createElement('img');
          img.src = node.data('flag');
          country.appendChild(img);
        }
        country.appendChild(document.createTextNode(
          node.data('label') + ': ' + node.data('total') + ' retractions'));

        partners.textContent = '';
        node.connectedEdges()
          .sort(function(a, b) { return b.data('weight') - a.data('weight'); })
          .forEach(function(edge) {
            const other = edge.source().same(node) ? edge.target() : edge.source();
            const li = document.createElement('li');
            li.textContent = other.data('label') + ' (' + edge.data('weight') + ')';
            partners.appendChild(li);
          });
      }

      cy.on('tap', 'node', function(evt) {
        const hood = evt.target.closedNeighborhood();
        cy.elements().addClass('faded');
        hood.removeClass('faded');
        showCountry(evt.target);
      });

      cy.on('tap', function(evt) {
        if (evt.target === cy) {
          cy.elements().removeClass('faded');
          country.textContent = 'Select a country to list its partners.';
          partners.textContent = '';
        }
      });
    })();
  </script>
</body>
</html>`

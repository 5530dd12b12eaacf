package dependencies

import (
	"fmt"
	"io"
	"strings"
)

// CytoscapeNode represents a node in Cytoscape.js format
type CytoscapeNode struct {
	Data CytoscapeNodeData `json:"data"`
}

// CytoscapeNodeData contains node data for Cytoscape.js
type CytoscapeNodeData struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Group string `json:"group,omitempty"`
	Type  string `json:"type"` // "current", "declared", "missing"
}

// CytoscapeEdge represents an edge in Cytoscape.js format
type CytoscapeEdge struct {
	Data CytoscapeEdgeData `json:"data"`
}

// CytoscapeEdgeData contains edge data for Cytoscape.js
type CytoscapeEdgeData struct {
	ID     string `json:"id"`
	Source string `json:"source"`
	Target string `json:"target"`
	Type   string `json:"type,omitempty"` // "references"
}

// CytoscapeGraph represents the complete graph in Cytoscape.js format
type CytoscapeGraph struct {
	Nodes []CytoscapeNode `json:"nodes"`
	Edges []CytoscapeEdge `json:"edges"`
}

// Cytoscape converts the graph into Cytoscape.js format.
//
// With focus set, only the focus node, its transitive references and its
// transitive dependents are included.
func (g *Graph) Cytoscape(focus string) CytoscapeGraph {
	cytoGraph := CytoscapeGraph{
		Nodes: make([]CytoscapeNode, 0),
		Edges: make([]CytoscapeEdge, 0),
	}

	included := g.neighbourhood(focus)
	for _, key := range g.Keys() {
		if !included[key] {
			continue
		}
		node := g.nodes[key]
		nodeType := "declared"
		switch {
		case key == focus:
			nodeType = "current"
		case !node.Declared:
			nodeType = "missing"
		}
		cytoGraph.Nodes = append(cytoGraph.Nodes, CytoscapeNode{
			Data: CytoscapeNodeData{
				ID:    key,
				Name:  nodeName(key),
				Group: node.Group,
				Type:  nodeType,
			},
		})

		for _, dep := range g.Dependencies(key) {
			if !included[dep] {
				continue
			}
			cytoGraph.Edges = append(cytoGraph.Edges, CytoscapeEdge{
				Data: CytoscapeEdgeData{
					ID:     key + "->" + dep,
					Source: key,
					Target: dep,
					Type:   "references",
				},
			})
		}
	}

	return cytoGraph
}

// WriteDOT renders the graph in Graphviz DOT format
func (g *Graph) WriteDOT(w io.Writer, focus string) error {
	cyto := g.Cytoscape(focus)

	var b strings.Builder
	b.WriteString("digraph references {\n")
	b.WriteString("  rankdir=LR;\n")
	for _, node := range cyto.Nodes {
		attrs := fmt.Sprintf("label=%q", node.Data.Name)
		switch node.Data.Type {
		case "current":
			attrs += ", style=bold"
		case "missing":
			attrs += ", style=dashed, color=red"
		}
		fmt.Fprintf(&b, "  %q [%s];\n", node.Data.ID, attrs)
	}
	for _, edge := range cyto.Edges {
		fmt.Fprintf(&b, "  %q -> %q;\n", edge.Data.Source, edge.Data.Target)
	}
	b.WriteString("}\n")

	_, err := io.WriteString(w, b.String())
	return err
}

// neighbourhood returns the keys to render for focus; every key when focus
// is empty or unknown
func (g *Graph) neighbourhood(focus string) map[string]bool {
	included := make(map[string]bool, len(g.nodes))
	if _, ok := g.nodes[focus]; focus == "" || !ok {
		for key := range g.nodes {
			included[key] = true
		}
		return included
	}

	included[focus] = true
	var down func(string)
	down = func(key string) {
		for _, dep := range g.edges[key] {
			if !included[dep] {
				included[dep] = true
				down(dep)
			}
		}
	}
	down(focus)
	for _, key := range g.TransitiveDependents(focus) {
		included[key] = true
	}
	return included
}

// nodeName strips the "category/" prefix from a key
func nodeName(key string) string {
	if idx := strings.Index(key, "/"); idx != -1 {
		return key[idx+1:]
	}
	return key
}

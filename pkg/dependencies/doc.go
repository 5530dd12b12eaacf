// Package dependencies provides the reference graph between indexed records.
//
// # Overview
//
// Nodes are string keys (tclib uses "category/id"), edges point from a
// record to the records it references. The graph is used to order
// stabilization, to explain why documents could not be loaded and to render
// the reference structure of a library.
//
// # Key Features
//
// Cycle Detection: Find and report circular reference chains
// Topological Order: Referenced records before the records that reference them
// Impact Analysis: Every record that transitively references a given one
// Visualization: Cytoscape.js JSON and Graphviz DOT output
//
// # Usage Example
//
//	graph := dependencies.NewGraph()
//	graph.AddNode("requirements/REQ-2", "requirements", "requirements/REQ-1")
//	graph.AddNode("requirements/REQ-1", "requirements")
//
//	order, err := graph.TopologicalSort()
//	// order: [requirements/REQ-1 requirements/REQ-2]
//
//	if cycle, err := graph.DetectCycle("requirements/REQ-2"); err != nil {
//		fmt.Println(strings.Join(cycle, " -> "))
//	}
package dependencies

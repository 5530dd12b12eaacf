package dependencies

import (
	"fmt"
	"sort"
	"strings"
)

// CycleError reports a circular reference chain
type CycleError struct {
	// Path starts and ends with the same key
	Path []string
}

func (e *CycleError) Error() string {
	return fmt.Sprintf("circular reference detected: %s", strings.Join(e.Path, " -> "))
}

// Node represents a node in the reference graph
type Node struct {
	Key   string
	Group string
	// Declared is false for nodes only known as edge targets
	Declared bool
}

// Graph is a directed reference graph
type Graph struct {
	nodes map[string]*Node
	edges map[string][]string // key -> referenced keys
}

// NewGraph creates an empty graph
func NewGraph() *Graph {
	return &Graph{
		nodes: make(map[string]*Node),
		edges: make(map[string][]string),
	}
}

// AddNode adds a node and its outgoing edges. Adding the same key twice
// merges the edges.
func (g *Graph) AddNode(key, group string, refs ...string) {
	node, ok := g.nodes[key]
	if !ok {
		node = &Node{Key: key}
		g.nodes[key] = node
	}
	node.Group = group
	node.Declared = true

	seen := make(map[string]bool, len(g.edges[key]))
	for _, ref := range g.edges[key] {
		seen[ref] = true
	}
	for _, ref := range refs {
		if seen[ref] {
			continue
		}
		seen[ref] = true
		g.edges[key] = append(g.edges[key], ref)
		if _, ok := g.nodes[ref]; !ok {
			g.nodes[ref] = &Node{Key: ref}
		}
	}
}

// HasNode reports whether key was added with AddNode
func (g *Graph) HasNode(key string) bool {
	node, ok := g.nodes[key]
	return ok && node.Declared
}

// Keys returns every node key, sorted
func (g *Graph) Keys() []string {
	keys := make([]string, 0, len(g.nodes))
	for key := range g.nodes {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}

// Dependencies returns the keys referenced by key
func (g *Graph) Dependencies(key string) []string {
	deps := append([]string(nil), g.edges[key]...)
	sort.Strings(deps)
	return deps
}

// Dependents returns the keys that reference key directly
func (g *Graph) Dependents(key string) []string {
	dependents := make([]string, 0)
	for nodeKey, edges := range g.edges {
		for _, edge := range edges {
			if edge == key {
				dependents = append(dependents, nodeKey)
				break
			}
		}
	}
	sort.Strings(dependents)
	return dependents
}

// TransitiveDependents returns every key that references key directly or
// through other nodes
func (g *Graph) TransitiveDependents(key string) []string {
	visited := map[string]bool{key: true}
	result := make([]string, 0)

	var traverse func(string)
	traverse = func(k string) {
		for _, dep := range g.Dependents(k) {
			if visited[dep] {
				continue
			}
			visited[dep] = true
			result = append(result, dep)
			traverse(dep)
		}
	}
	traverse(key)

	sort.Strings(result)
	return result
}

// DetectCycle returns the first cycle reachable from key
func (g *Graph) DetectCycle(key string) ([]string, error) {
	path := make([]string, 0)
	visited := make(map[string]bool)
	onPath := make(map[string]int)

	var cycle []string
	var visit func(string) bool
	visit = func(k string) bool {
		visited[k] = true
		onPath[k] = len(path)
		path = append(path, k)

		for _, dep := range g.Dependencies(k) {
			if idx, ok := onPath[dep]; ok {
				cycle = append(append([]string(nil), path[idx:]...), dep)
				return true
			}
			if !visited[dep] && visit(dep) {
				return true
			}
		}

		delete(onPath, k)
		path = path[:len(path)-1]
		return false
	}

	if visit(key) {
		return cycle, &CycleError{Path: cycle}
	}
	return nil, nil
}

// TopologicalSort orders every node so that referenced keys come before the
// keys referencing them. Ties are broken by key order.
func (g *Graph) TopologicalSort() ([]string, error) {
	visited := make(map[string]bool)
	onPath := make(map[string]int)
	path := make([]string, 0)
	result := make([]string, 0, len(g.nodes))

	var visit func(string) error
	visit = func(key string) error {
		if idx, ok := onPath[key]; ok {
			cycle := append(append([]string(nil), path[idx:]...), key)
			return &CycleError{Path: cycle}
		}
		if visited[key] {
			return nil
		}

		onPath[key] = len(path)
		path = append(path, key)

		for _, dep := range g.Dependencies(key) {
			if err := visit(dep); err != nil {
				return err
			}
		}

		delete(onPath, key)
		path = path[:len(path)-1]
		visited[key] = true
		result = append(result, key)
		return nil
	}

	for _, key := range g.Keys() {
		if err := visit(key); err != nil {
			return nil, err
		}
	}
	return result, nil
}

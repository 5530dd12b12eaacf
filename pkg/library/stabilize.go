package library

import (
	"sort"

	"github.com/platinummonkey/tclib/pkg/dependencies"
	"github.com/platinummonkey/tclib/pkg/structures"
)

// Stabilize recomputes derived attributes of records until all of them are
// stable or a pass makes no progress. It returns whether everything
// stabilized and the sorted ids of the records that did not.
func Stabilize(records map[string]structures.Record) (bool, []string) {
	unstable, _ := stabilize(records)
	return len(unstable) == 0, unstable
}

func stabilize(records map[string]structures.Record) ([]string, int) {
	pending := stabilizationOrder(records)
	passes := 0

	for len(pending) > 0 {
		passes++
		next := make([]string, 0, len(pending))
		for _, id := range pending {
			if !records[id].Stabilize() {
				next = append(next, id)
			}
		}
		if len(next) == len(pending) {
			sort.Strings(next)
			return next, passes
		}
		pending = next
	}

	return nil, passes
}

// stabilizationOrder visits parents before children when the records form
// no cycle, so that acyclic input converges in a single pass
func stabilizationOrder(records map[string]structures.Record) []string {
	ids := make([]string, 0, len(records))
	graph := dependencies.NewGraph()
	for id, rec := range records {
		ids = append(ids, id)
		refs := make([]string, 0)
		for _, ref := range rec.References() {
			if ref.Category == rec.Category() {
				refs = append(refs, ref.ID)
			}
		}
		graph.AddNode(id, rec.Category().String(), refs...)
	}
	sort.Strings(ids)

	sorted, err := graph.TopologicalSort()
	if err != nil {
		return ids
	}

	order := make([]string, 0, len(ids))
	for _, id := range sorted {
		if _, ok := records[id]; ok {
			order = append(order, id)
		}
	}
	return order
}

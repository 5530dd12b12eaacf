package diff

import (
	"github.com/platinummonkey/tclib/pkg/structures"
)

// Classification is the outcome for one record id
type Classification string

const (
	Removed   Classification = "removed"
	Added     Classification = "added"
	Changed   Classification = "changed"
	Unchanged Classification = "unchanged"
)

// Classifications lists every classification in report order
func Classifications() []Classification {
	return []Classification{Removed, Added, Changed, Unchanged}
}

// Snapshot is the read side of a loaded library
type Snapshot interface {
	ID() string
	IDs(category structures.Category) []string
	Record(category structures.Category, id string) (structures.Record, bool)
}

// CategoryReport holds the sorted ids of one category per classification
type CategoryReport struct {
	Removed   []string `json:"removed"`
	Added     []string `json:"added"`
	Changed   []string `json:"changed"`
	Unchanged []string `json:"unchanged"`
}

func newCategoryReport() *CategoryReport {
	return &CategoryReport{
		Removed:   []string{},
		Added:     []string{},
		Changed:   []string{},
		Unchanged: []string{},
	}
}

// IDs returns the ids with the given classification
func (c *CategoryReport) IDs(classification Classification) []string {
	if c == nil {
		return nil
	}
	switch classification {
	case Removed:
		return c.Removed
	case Added:
		return c.Added
	case Changed:
		return c.Changed
	case Unchanged:
		return c.Unchanged
	default:
		return nil
	}
}

// Counts summarizes a category report
type Counts struct {
	Removed   int `json:"removed"`
	Added     int `json:"added"`
	Changed   int `json:"changed"`
	Unchanged int `json:"unchanged"`
}

// Report is the difference between two snapshots
type Report struct {
	FromSnapshot string                                  `json:"from_snapshot,omitempty"`
	ToSnapshot   string                                  `json:"to_snapshot"`
	Categories   map[structures.Category]*CategoryReport `json:"categories"`
}

// Category returns the report of one category. It is never nil.
func (r *Report) Category(category structures.Category) *CategoryReport {
	if r == nil || r.Categories[category] == nil {
		return newCategoryReport()
	}
	return r.Categories[category]
}

// Empty reports whether nothing was removed, added or changed
func (r *Report) Empty() bool {
	for _, category := range structures.Categories() {
		c := r.Category(category)
		if len(c.Removed)+len(c.Added)+len(c.Changed) > 0 {
			return false
		}
	}
	return true
}

// Summary returns the number of ids per classification for every category
func (r *Report) Summary() map[structures.Category]Counts {
	summary := make(map[structures.Category]Counts, len(structures.Categories()))
	for _, category := range structures.Categories() {
		c := r.Category(category)
		summary[category] = Counts{
			Removed:   len(c.Removed),
			Added:     len(c.Added),
			Changed:   len(c.Changed),
			Unchanged: len(c.Unchanged),
		}
	}
	return summary
}

package diff

import (
	"context"
	"fmt"
	"sort"

	"github.com/hashicorp/go-multierror"
	"github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"github.com/platinummonkey/tclib/pkg/observability"
	"github.com/platinummonkey/tclib/pkg/structures"
)

var tracer = otel.Tracer("tclib/diff")

// Analyzer compares snapshots
type Analyzer struct {
	log     *logrus.Logger
	metrics *observability.Metrics
}

// NewAnalyzer creates a new diff analyzer. Both arguments may be nil.
func NewAnalyzer(log *logrus.Logger, metrics *observability.Metrics) *Analyzer {
	if log == nil {
		log = logrus.New()
	}
	return &Analyzer{log: log, metrics: metrics}
}

// Diff compares two snapshots without logging or metrics
func Diff(from, to Snapshot) *Report {
	return (&Analyzer{log: observability.NopLogger()}).Compare(context.Background(), from, to)
}

// Compare classifies every record of both snapshots. from may be nil.
func (a *Analyzer) Compare(ctx context.Context, from, to Snapshot) *Report {
	_, span := tracer.Start(ctx, "diff.Compare")
	defer span.End()

	if from == nil {
		from = emptySnapshot{}
	}

	report := &Report{
		FromSnapshot: from.ID(),
		ToSnapshot:   to.ID(),
		Categories:   make(map[structures.Category]*CategoryReport, len(structures.Categories())),
	}

	for _, category := range structures.Categories() {
		c := newCategoryReport()
		report.Categories[category] = c
		if category == structures.TestPlans {
			continue
		}

		oldIDs := from.IDs(category)
		newIDs := to.IDs(category)
		inNew := toSet(newIDs)
		inOld := toSet(oldIDs)

		for _, id := range oldIDs {
			if !inNew[id] {
				c.Removed = append(c.Removed, id)
				continue
			}
			before, _ := from.Record(category, id)
			after, _ := to.Record(category, id)
			if before.Equal(after) {
				c.Unchanged = append(c.Unchanged, id)
			} else {
				c.Changed = append(c.Changed, id)
			}
		}
		for _, id := range newIDs {
			if !inOld[id] {
				c.Added = append(c.Added, id)
			}
		}

		for _, classification := range Classifications() {
			ids := c.IDs(classification)
			sort.Strings(ids)
			a.metrics.RecordDiff(category.String(), string(classification), len(ids))
			span.SetAttributes(attribute.Int(fmt.Sprintf("diff.%s.%s", category, classification), len(ids)))
		}

		a.log.WithFields(logrus.Fields{
			"category":  category.String(),
			"removed":   len(c.Removed),
			"added":     len(c.Added),
			"changed":   len(c.Changed),
			"unchanged": len(c.Unchanged),
		}).Debug("Compared category")
	}

	return report
}

// Validate checks that every category partitions the ids of both snapshots
// without overlap
func (r *Report) Validate(from, to Snapshot) error {
	if from == nil {
		from = emptySnapshot{}
	}

	var result *multierror.Error
	for _, category := range structures.Categories() {
		c := r.Category(category)

		seen := make(map[string]Classification)
		for _, classification := range Classifications() {
			for _, id := range c.IDs(classification) {
				if prev, ok := seen[id]; ok {
					result = multierror.Append(result, fmt.Errorf("%s %s is both %s and %s", category, id, prev, classification))
				}
				seen[id] = classification
			}
		}

		if err := sameIDs(from.IDs(category), c.Removed, c.Changed, c.Unchanged); err != nil {
			result = multierror.Append(result, fmt.Errorf("%s: old snapshot %w", category, err))
		}
		if err := sameIDs(to.IDs(category), c.Added, c.Changed, c.Unchanged); err != nil {
			result = multierror.Append(result, fmt.Errorf("%s: new snapshot %w", category, err))
		}
	}
	return result.ErrorOrNil()
}

func sameIDs(want []string, parts ...[]string) error {
	got := make(map[string]bool)
	for _, part := range parts {
		for _, id := range part {
			got[id] = true
		}
	}
	expected := toSet(want)

	for id := range expected {
		if !got[id] {
			return fmt.Errorf("id %s is not classified", id)
		}
	}
	for id := range got {
		if !expected[id] {
			return fmt.Errorf("has no id %s", id)
		}
	}
	return nil
}

func toSet(ids []string) map[string]bool {
	set := make(map[string]bool, len(ids))
	for _, id := range ids {
		set[id] = true
	}
	return set
}

type emptySnapshot struct{}

func (emptySnapshot) ID() string                       { return "" }
func (emptySnapshot) IDs(structures.Category) []string { return nil }
func (emptySnapshot) Record(structures.Category, string) (structures.Record, bool) {
	return nil, false
}

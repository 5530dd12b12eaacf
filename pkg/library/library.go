package library

import (
	"context"
	"fmt"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/platinummonkey/tclib/pkg/dependencies"
	"github.com/platinummonkey/tclib/pkg/structures"
)

var tracer = otel.Tracer("tclib/library")

// Library is an immutable snapshot of loaded records. It is safe for
// concurrent reads.
type Library struct {
	id       string
	takenAt  time.Time
	roots    []string
	records  map[structures.Category]map[string]structures.Record
	unstable map[structures.Category][]string
}

var _ structures.Lookup = (*Library)(nil)

// New loads a library from documents found beneath roots
func New(ctx context.Context, roots []string, opts ...Option) (*Library, error) {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}

	abs := make([]string, 0, len(roots))
	for _, root := range roots {
		path, err := filepath.Abs(root)
		if err != nil {
			return nil, fmt.Errorf("failed to resolve root %s: %w", root, err)
		}
		abs = append(abs, path)
	}

	lib, err := load(ctx, NewFileSystemSource(abs, o.log), o)
	if err != nil {
		return nil, err
	}
	lib.roots = abs
	return lib, nil
}

// Load builds a library from an arbitrary document source
func Load(ctx context.Context, source DocumentSource, opts ...Option) (*Library, error) {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	return load(ctx, source, o)
}

func load(ctx context.Context, source DocumentSource, o options) (*Library, error) {
	ctx, span := tracer.Start(ctx, "library.Load",
		trace.WithAttributes(attribute.Int("library.workers", o.workers)),
	)
	defer span.End()

	cache := o.cache
	if cache == nil {
		cache = structures.NewDocumentCache(structures.DefaultCacheSize, structures.DefaultCacheTTL)
	}
	hits, misses := cache.Stats()

	lib := &Library{
		id:      uuid.NewString(),
		takenAt: time.Now().UTC(),
		records: map[structures.Category]map[string]structures.Record{
			structures.TestPlans: {},
		},
		unstable: make(map[structures.Category][]string),
	}

	loader := NewLoader(o.log, o.metrics, o.workers)
	steps := []struct {
		category structures.Category
		pattern  string
		parser   structures.Parser
	}{
		{structures.Requirements, o.requirementPattern, structures.NewRequirementParser(cache)},
		{structures.TestCases, o.testCasePattern, structures.NewTestCaseParser(cache)},
	}

	for _, step := range steps {
		records, err := loader.Load(ctx, source, step.pattern, step.category, step.parser, lib)
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, "failed to load "+step.category.String())
			return nil, err
		}
		lib.records[step.category] = records
	}

	for _, step := range steps {
		records := lib.records[step.category]
		ok, unstable := Stabilize(records)
		lib.unstable[step.category] = unstable
		o.metrics.SetRecords(step.category.String(), len(records), len(unstable))
		if ok {
			continue
		}

		o.log.WithField("category", step.category.String()).Warnf("%d records did not stabilize: %v", len(unstable), unstable)
		if o.strict {
			err := &UnstableError{Category: step.category, IDs: unstable}
			span.RecordError(err)
			span.SetStatus(codes.Error, "records did not stabilize")
			return nil, err
		}
	}

	newHits, newMisses := cache.Stats()
	o.metrics.RecordCache(newHits-hits, newMisses-misses)

	span.SetAttributes(
		attribute.String("library.id", lib.id),
		attribute.Int("library.requirements", len(lib.records[structures.Requirements])),
		attribute.Int("library.testcases", len(lib.records[structures.TestCases])),
	)
	o.log.WithField("library", lib.id).Infof("Loaded %d requirements and %d test cases",
		len(lib.records[structures.Requirements]), len(lib.records[structures.TestCases]))

	return lib, nil
}

// ID returns the unique snapshot id
func (l *Library) ID() string {
	if l == nil {
		return ""
	}
	return l.id
}

// TakenAt returns when the snapshot was loaded
func (l *Library) TakenAt() time.Time {
	if l == nil {
		return time.Time{}
	}
	return l.takenAt
}

// Roots returns the absolute roots the library was loaded from. It is empty
// for libraries built from a custom DocumentSource.
func (l *Library) Roots() []string {
	if l == nil {
		return nil
	}
	return append([]string(nil), l.roots...)
}

// IDs returns the sorted ids of a category
func (l *Library) IDs(category structures.Category) []string {
	ids := make([]string, 0)
	if l == nil {
		return ids
	}
	for id := range l.records[category] {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Record returns one record
func (l *Library) Record(category structures.Category, id string) (structures.Record, bool) {
	if l == nil {
		return nil, false
	}
	rec, ok := l.records[category][id]
	return rec, ok
}

// Lookup implements structures.Lookup
func (l *Library) Lookup(category structures.Category, id string) (structures.Record, bool) {
	return l.Record(category, id)
}

// Count returns the number of records in a category
func (l *Library) Count(category structures.Category) int {
	if l == nil {
		return 0
	}
	return len(l.records[category])
}

// Unstable returns the sorted ids of records in a category that did not
// stabilize
func (l *Library) Unstable(category structures.Category) []string {
	if l == nil {
		return nil
	}
	return append([]string(nil), l.unstable[category]...)
}

// Requirement returns a requirement by id
func (l *Library) Requirement(id string) (*structures.Requirement, bool) {
	rec, ok := l.Record(structures.Requirements, id)
	if !ok {
		return nil, false
	}
	req, ok := rec.(*structures.Requirement)
	return req, ok
}

// TestCase returns a test case by id
func (l *Library) TestCase(id string) (*structures.TestCase, bool) {
	rec, ok := l.Record(structures.TestCases, id)
	if !ok {
		return nil, false
	}
	tc, ok := rec.(*structures.TestCase)
	return tc, ok
}

// Requirements returns every requirement, sorted by id
func (l *Library) Requirements() []*structures.Requirement {
	reqs := make([]*structures.Requirement, 0)
	for _, id := range l.IDs(structures.Requirements) {
		if req, ok := l.Requirement(id); ok {
			reqs = append(reqs, req)
		}
	}
	return reqs
}

// TestCases returns every test case, sorted by id
func (l *Library) TestCases() []*structures.TestCase {
	tcs := make([]*structures.TestCase, 0)
	for _, id := range l.IDs(structures.TestCases) {
		if tc, ok := l.TestCase(id); ok {
			tcs = append(tcs, tc)
		}
	}
	return tcs
}

// Graph builds the reference graph of every record. Keys are
// structures.Reference keys ("category/id").
func (l *Library) Graph() *dependencies.Graph {
	graph := dependencies.NewGraph()
	for _, category := range structures.Categories() {
		for _, id := range l.IDs(category) {
			rec, _ := l.Record(category, id)
			graph.AddNode(structures.Reference{Category: category, ID: id}.Key(), category.String(), referenceKeys(rec.References())...)
		}
	}
	return graph
}

// Impact returns every record that references ref directly or transitively
func (l *Library) Impact(ref structures.Reference) []structures.Reference {
	impacted := make([]structures.Reference, 0)
	for _, key := range l.Graph().TransitiveDependents(ref.Key()) {
		for _, category := range structures.Categories() {
			if id, ok := strings.CutPrefix(key, category.String()+"/"); ok {
				impacted = append(impacted, structures.Reference{Category: category, ID: id})
				break
			}
		}
	}
	return impacted
}

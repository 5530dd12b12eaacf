package library

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/platinummonkey/tclib/pkg/dependencies"
	"github.com/platinummonkey/tclib/pkg/observability"
	"github.com/platinummonkey/tclib/pkg/structures"
)

// Loader builds one category of records from a document source
type Loader struct {
	log     *logrus.Logger
	metrics *observability.Metrics
	workers int
}

// NewLoader creates a loader. With workers > 1 each pass parses documents
// concurrently.
func NewLoader(log *logrus.Logger, metrics *observability.Metrics, workers int) *Loader {
	if log == nil {
		log = logrus.New()
	}
	if workers < 1 {
		workers = 1
	}
	return &Loader{
		log:     log,
		metrics: metrics,
		workers: workers,
	}
}

// collectionView resolves the category being loaded from the in-progress
// records and everything else from base
type collectionView struct {
	category structures.Category
	records  map[string]structures.Record
	base     structures.Lookup
}

func (v collectionView) Lookup(category structures.Category, id string) (structures.Record, bool) {
	if category == v.category {
		rec, ok := v.records[id]
		return rec, ok
	}
	if v.base == nil {
		return nil, false
	}
	return v.base.Lookup(category, id)
}

type parseResult struct {
	record structures.Record
	err    error
}

// Load parses every document matching pattern into records of category.
//
// Documents whose references are not loaded yet are retried on later passes.
// Loading ends when every document loaded, or fails with a *DocfilesError
// once a pass loads nothing new. Two documents declaring the same id fail
// with a *CollisionError. Any other parse error is returned as is, wrapped
// with the document path.
func (l *Loader) Load(
	ctx context.Context,
	source DocumentSource,
	pattern string,
	category structures.Category,
	parser structures.Parser,
	base structures.Lookup,
) (map[string]structures.Record, error) {
	docs, err := source.Documents(pattern)
	if err != nil {
		return nil, fmt.Errorf("failed to enumerate %s documents: %w", category, err)
	}

	log := l.log.WithFields(logrus.Fields{
		"category": category.String(),
		"pattern":  pattern,
	})
	log.Debugf("Loading %d candidate documents", len(docs))

	loaded := make(map[string]structures.Record, len(docs))
	pending := docs
	failures := make(map[string]error)
	passes := 0

	for len(pending) > 0 {
		passes++

		results, err := l.parsePass(ctx, pending, category, parser, loaded, base)
		if err != nil {
			return nil, err
		}

		retry := make([]Document, 0)
		for i, doc := range pending {
			res := results[i]
			if res.err != nil {
				if errors.Is(res.err, structures.ErrUnknownParent) {
					failures[doc.Path] = res.err
					retry = append(retry, doc)
					continue
				}
				l.metrics.RecordLoadFailure(category.String(), "parse")
				return nil, fmt.Errorf("failed to load %s: %w", doc.Path, res.err)
			}

			id := res.record.ID()
			if existing, ok := loaded[id]; ok {
				l.metrics.RecordLoadFailure(category.String(), "collision")
				return nil, &CollisionError{
					Category: category,
					ID:       id,
					First:    existing.Provenance(),
					Second:   doc.Path,
				}
			}
			loaded[id] = res.record
			delete(failures, doc.Path)
		}

		log.WithFields(logrus.Fields{
			"pass":    passes,
			"loaded":  len(pending) - len(retry),
			"pending": len(retry),
		}).Debug("Load pass complete")

		if len(retry) == len(pending) {
			l.metrics.RecordLoadFailure(category.String(), "unresolved")
			return nil, l.unresolved(category, retry, failures, loaded)
		}
		pending = retry
	}

	l.metrics.RecordLoad(category.String(), len(loaded), passes)
	log.WithField("passes", passes).Infof("Loaded %d %s", len(loaded), category)
	return loaded, nil
}

// parsePass parses pending against the records loaded before the pass, so
// sequential and concurrent passes see the same view and produce the same
// results. Results are merged by the caller in document order.
func (l *Loader) parsePass(
	ctx context.Context,
	pending []Document,
	category structures.Category,
	parser structures.Parser,
	loaded map[string]structures.Record,
	base structures.Lookup,
) ([]parseResult, error) {
	results := make([]parseResult, len(pending))

	// loaded is only written by the merge, after the pass.
	view := collectionView{category: category, records: loaded, base: base}

	if l.workers == 1 || len(pending) == 1 {
		for i, doc := range pending {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
			rec, err := l.parse(parser, doc, view)
			results[i] = parseResult{record: rec, err: err}
		}
		return results, nil
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(l.workers)
	for i, doc := range pending {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			rec, err := l.parse(parser, doc, view)
			results[i] = parseResult{record: rec, err: err}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

// unresolved explains why each leftover document could not be loaded
func (l *Loader) unresolved(
	category structures.Category,
	docs []Document,
	failures map[string]error,
	loaded map[string]structures.Record,
) *DocfilesError {
	graph := dependencies.NewGraph()
	for _, rec := range loaded {
		graph.AddNode(structures.Reference{Category: rec.Category(), ID: rec.ID()}.Key(), rec.Category().String(), referenceKeys(rec.References())...)
	}

	selfKeys := make(map[string]string, len(docs))
	parents := make(map[string]structures.Reference, len(docs))
	for _, doc := range docs {
		var upErr *structures.UnknownParentError
		if !errors.As(failures[doc.Path], &upErr) {
			continue
		}
		key := structures.Reference{Category: upErr.Category, ID: upErr.ID}.Key()
		graph.AddNode(key, category.String(), upErr.Parent.Key())
		selfKeys[doc.Path] = key
		parents[doc.Path] = upErr.Parent
	}

	docErr := &DocfilesError{
		Category:    category,
		Documents:   make([]string, 0, len(docs)),
		Diagnostics: make(map[string]string, len(docs)),
	}
	for _, doc := range docs {
		docErr.Documents = append(docErr.Documents, doc.Path)

		parent, ok := parents[doc.Path]
		switch {
		case !ok:
			docErr.Diagnostics[doc.Path] = "unresolved reference"
		case !graph.HasNode(parent.Key()):
			docErr.Diagnostics[doc.Path] = "missing reference " + parent.String()
		default:
			if cycle, err := graph.DetectCycle(selfKeys[doc.Path]); err != nil {
				docErr.Diagnostics[doc.Path] = "reference cycle " + strings.Join(cycleNames(cycle), " -> ")
			} else {
				docErr.Diagnostics[doc.Path] = "depends on unresolved " + parent.String()
			}
		}
		l.log.WithField("document", doc.Path).Warnf("Unable to load document: %s", docErr.Diagnostics[doc.Path])
	}
	return docErr
}

func referenceKeys(refs []structures.Reference) []string {
	keys := make([]string, 0, len(refs))
	for _, ref := range refs {
		keys = append(keys, ref.Key())
	}
	return keys
}

func cycleNames(keys []string) []string {
	names := make([]string, 0, len(keys))
	for _, key := range keys {
		if idx := strings.Index(key, "/"); idx != -1 {
			key = key[idx+1:]
		}
		names = append(names, key)
	}
	return names
}

// parse runs the parser on one document. A panicking parser fails that
// document instead of the load.
func (l *Loader) parse(parser structures.Parser, doc Document, view structures.Lookup) (rec structures.Record, err error) {
	defer func() {
		if perr := observability.MustRecover(recover()); perr != nil {
			l.log.WithField("document", doc.Path).WithError(perr).Error("Parser panicked")
			rec, err = nil, fmt.Errorf("%s: %w", doc.Path, perr)
		}
	}()
	return parser.Parse(doc.Path, view, doc.Root)
}

package library

import (
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/platinummonkey/tclib/pkg/structures"
)

// fakeRecord is a minimal Record with a single same-category parent
type fakeRecord struct {
	id         string
	provenance string
	parentID   string
	parent     *fakeRecord
	stable     bool
	calls      int
}

func (r *fakeRecord) ID() string                    { return r.id }
func (r *fakeRecord) Provenance() string            { return r.provenance }
func (r *fakeRecord) Category() structures.Category { return structures.Requirements }
func (r *fakeRecord) Stable() bool                  { return r.stable }

func (r *fakeRecord) References() []structures.Reference {
	if r.parentID == "" {
		return nil
	}
	return []structures.Reference{{Category: structures.Requirements, ID: r.parentID}}
}

func (r *fakeRecord) Stabilize() bool {
	r.calls++
	r.stable = r.parent == nil || r.parent.stable
	return r.stable
}

func (r *fakeRecord) Equal(other structures.Record) bool {
	o, ok := other.(*fakeRecord)
	return ok && o.id == r.id && o.parentID == r.parentID
}

// fakeDoc describes a document served by fakeParser
type fakeDoc struct {
	id     string
	parent string
}

// fakeParser resolves documents from memory and records the call sequence
type fakeParser struct {
	docs map[string]fakeDoc

	mu    sync.Mutex
	calls []string
}

func (p *fakeParser) Parse(docfile string, index structures.Lookup, _ string) (structures.Record, error) {
	p.mu.Lock()
	p.calls = append(p.calls, docfile)
	p.mu.Unlock()

	doc := p.docs[docfile]
	rec := &fakeRecord{id: doc.id, provenance: docfile, parentID: doc.parent}
	if doc.parent != "" {
		parent, ok := index.Lookup(structures.Requirements, doc.parent)
		if !ok {
			return nil, &structures.UnknownParentError{
				Document: docfile,
				Category: structures.Requirements,
				ID:       doc.id,
				Parent:   structures.Reference{Category: structures.Requirements, ID: doc.parent},
			}
		}
		rec.parent = parent.(*fakeRecord)
	}
	return rec, nil
}

// staticDocs returns a source serving paths for pattern in the given order
func staticDocs(pattern string, paths ...string) StaticSource {
	docs := make([]Document, 0, len(paths))
	for _, path := range paths {
		docs = append(docs, Document{Path: path, Root: "/"})
	}
	return StaticSource{pattern: docs}
}

func writeDoc(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func ids(records map[string]structures.Record) []string {
	out := make([]string, 0, len(records))
	for id := range records {
		out = append(out, id)
	}
	return out
}

// permutations returns every ordering of items
func permutations(items []string) [][]string {
	if len(items) <= 1 {
		return [][]string{append([]string(nil), items...)}
	}
	var result [][]string
	for i := range items {
		rest := make([]string, 0, len(items)-1)
		rest = append(rest, items[:i]...)
		rest = append(rest, items[i+1:]...)
		for _, perm := range permutations(rest) {
			result = append(result, append([]string{items[i]}, perm...))
		}
	}
	return result
}

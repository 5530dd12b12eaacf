package structures

import (
	"fmt"
	"path/filepath"
	"slices"
	"strings"
)

// DefaultPriority applies when neither a requirement nor any ancestor sets one
const DefaultPriority = "normal"

var validPriorities = []string{"low", "normal", "high", "critical"}

// requirementDocument is the on-disk form of a requirement
type requirementDocument struct {
	Name        string   `yaml:"name"`
	Description string   `yaml:"description"`
	Parent      string   `yaml:"parent"`
	Priority    string   `yaml:"priority"`
	Tags        []string `yaml:"tags"`
	Links       []string `yaml:"links"`
}

type requirementDerived struct {
	priority string
	tags     []string
	lineage  []string
}

// Requirement is a loaded *.req.yaml document
type Requirement struct {
	filename string
	path     string
	doc      requirementDocument
	parent   *Requirement

	derived requirementDerived
	stable  bool
}

var _ Record = (*Requirement)(nil)

func (r *Requirement) ID() string          { return r.doc.Name }
func (r *Requirement) Provenance() string  { return r.filename }
func (r *Requirement) Category() Category  { return Requirements }
func (r *Requirement) Stable() bool        { return r.stable }
func (r *Requirement) Description() string { return r.doc.Description }
func (r *Requirement) ParentID() string    { return r.doc.Parent }
func (r *Requirement) Links() []string     { return cloneStrings(r.doc.Links) }
func (r *Requirement) OwnTags() []string   { return cloneStrings(r.doc.Tags) }
func (r *Requirement) Priority() string    { return r.derived.priority }
func (r *Requirement) Tags() []string      { return cloneStrings(r.derived.tags) }
func (r *Requirement) Lineage() []string   { return cloneStrings(r.derived.lineage) }

// Path returns the document path relative to the root it was found under
func (r *Requirement) Path() string { return r.path }

// Parent returns the resolved parent requirement, or nil
func (r *Requirement) Parent() *Requirement { return r.parent }

// References implements Record
func (r *Requirement) References() []Reference {
	if r.doc.Parent == "" {
		return nil
	}
	return []Reference{{Category: Requirements, ID: r.doc.Parent}}
}

// Stabilize computes the inherited priority, tags and lineage.
func (r *Requirement) Stabilize() bool {
	derived := requirementDerived{
		priority: r.doc.Priority,
		tags:     mergeStrings(nil, r.doc.Tags),
	}
	ready := true

	if p := r.parent; p != nil {
		ready = p.stable
		derived.priority = firstNonEmpty(r.doc.Priority, p.derived.priority)
		derived.tags = mergeStrings(p.derived.tags, r.doc.Tags)
		derived.lineage = lineage(p.derived.lineage, p.ID())
	}
	if derived.priority == "" {
		derived.priority = DefaultPriority
	}

	r.derived = derived
	r.stable = ready
	return ready
}

// Equal implements Record
func (r *Requirement) Equal(other Record) bool {
	o, ok := other.(*Requirement)
	if !ok || o == nil || r == nil {
		return false
	}
	return r.doc.Name == o.doc.Name &&
		r.doc.Description == o.doc.Description &&
		r.doc.Parent == o.doc.Parent &&
		r.doc.Priority == o.doc.Priority &&
		slices.Equal(r.doc.Tags, o.doc.Tags) &&
		slices.Equal(r.doc.Links, o.doc.Links) &&
		r.derived.priority == o.derived.priority &&
		slices.Equal(r.derived.tags, o.derived.tags) &&
		slices.Equal(r.derived.lineage, o.derived.lineage) &&
		r.stable == o.stable
}

func (d requirementDocument) validate() []ValidationError {
	var errs []ValidationError
	if strings.TrimSpace(d.Name) == "" {
		errs = append(errs, ValidationError{Field: "name", Message: "Requirement name is required"})
	}
	if d.Priority != "" && !slices.Contains(validPriorities, d.Priority) {
		errs = append(errs, ValidationError{
			Field:   "priority",
			Message: fmt.Sprintf("Invalid priority: %s (must be one of %s)", d.Priority, strings.Join(validPriorities, ", ")),
		})
	}
	return errs
}

// RequirementParser builds requirements from *.req.yaml documents
type RequirementParser struct {
	cache *DocumentCache
}

// NewRequirementParser creates a parser. cache may be nil.
func NewRequirementParser(cache *DocumentCache) *RequirementParser {
	return &RequirementParser{cache: cache}
}

// Parse implements Parser
func (p *RequirementParser) Parse(docfile string, index Lookup, basedir string) (Record, error) {
	doc, err := decodeDocument[requirementDocument](p.cache, "requirement", docfile)
	if err != nil {
		return nil, err
	}
	if verrs := doc.validate(); len(verrs) > 0 {
		return nil, &DocumentError{Document: docfile, Errors: verrs}
	}

	req := &Requirement{
		filename: docfile,
		path:     relativePath(basedir, docfile),
		doc:      doc,
	}

	if doc.Parent != "" {
		parent, err := resolve[*Requirement](index, docfile, req, Reference{Category: Requirements, ID: doc.Parent})
		if err != nil {
			return nil, err
		}
		req.parent = parent
	}

	return req, nil
}

// resolve looks a reference up and checks it has the expected record type.
func resolve[T Record](index Lookup, docfile string, from Record, ref Reference) (T, error) {
	var zero T
	if index == nil {
		return zero, &UnknownParentError{Document: docfile, Category: from.Category(), ID: from.ID(), Parent: ref}
	}
	rec, ok := index.Lookup(ref.Category, ref.ID)
	if !ok {
		return zero, &UnknownParentError{Document: docfile, Category: from.Category(), ID: from.ID(), Parent: ref}
	}
	typed, ok := rec.(T)
	if !ok {
		return zero, fmt.Errorf("%s: %s resolved to unexpected record type %T", docfile, ref, rec)
	}
	return typed, nil
}

func relativePath(basedir, docfile string) string {
	if basedir == "" {
		return filepath.ToSlash(docfile)
	}
	rel, err := filepath.Rel(basedir, docfile)
	if err != nil {
		return filepath.ToSlash(docfile)
	}
	return filepath.ToSlash(rel)
}

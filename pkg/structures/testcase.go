package structures

import (
	"fmt"
	"slices"
	"strings"
)

// Instructions are the executable parts of a test case
type Instructions struct {
	Setup    []string `yaml:"setup" json:"setup,omitempty"`
	Steps    []string `yaml:"steps" json:"steps,omitempty"`
	Teardown []string `yaml:"teardown" json:"teardown,omitempty"`
}

// inherit fills every empty section from the parent's sections
func (i Instructions) inherit(parent Instructions) Instructions {
	out := Instructions{
		Setup:    cloneStrings(i.Setup),
		Steps:    cloneStrings(i.Steps),
		Teardown: cloneStrings(i.Teardown),
	}
	if len(out.Setup) == 0 {
		out.Setup = cloneStrings(parent.Setup)
	}
	if len(out.Steps) == 0 {
		out.Steps = cloneStrings(parent.Steps)
	}
	if len(out.Teardown) == 0 {
		out.Teardown = cloneStrings(parent.Teardown)
	}
	return out
}

func (i Instructions) equal(o Instructions) bool {
	return slices.Equal(i.Setup, o.Setup) &&
		slices.Equal(i.Steps, o.Steps) &&
		slices.Equal(i.Teardown, o.Teardown)
}

// testCaseDocument is the on-disk form of a test case
type testCaseDocument struct {
	Name         string       `yaml:"name"`
	Description  string       `yaml:"description"`
	Parent       string       `yaml:"parent"`
	Author       string       `yaml:"author"`
	Importance   string       `yaml:"importance"`
	Tags         []string     `yaml:"tags"`
	Verifies     []string     `yaml:"verifies"`
	Instructions Instructions `yaml:"instructions"`
}

type testCaseDerived struct {
	author       string
	importance   string
	tags         []string
	verifies     []string
	instructions Instructions
	lineage      []string
}

// TestCase is a loaded *.tc.yaml document.
//
// A test case inherits author, importance, tags, verified requirements and
// any instruction section it leaves empty from its parent test case.
type TestCase struct {
	filename string
	path     string
	doc      testCaseDocument
	parent   *TestCase
	verifies []*Requirement

	derived testCaseDerived
	stable  bool
}

var _ Record = (*TestCase)(nil)

func (t *TestCase) ID() string         { return t.doc.Name }
func (t *TestCase) Provenance() string { return t.filename }
func (t *TestCase) Category() Category { return TestCases }
func (t *TestCase) Stable() bool       { return t.stable }

// Path returns the document path relative to the root it was found under
func (t *TestCase) Path() string { return t.path }

func (t *TestCase) Description() string { return t.doc.Description }
func (t *TestCase) ParentID() string    { return t.doc.Parent }

// Parent returns the resolved parent test case, or nil
func (t *TestCase) Parent() *TestCase { return t.parent }

func (t *TestCase) Author() string     { return t.derived.author }
func (t *TestCase) Importance() string { return t.derived.importance }
func (t *TestCase) Tags() []string     { return cloneStrings(t.derived.tags) }
func (t *TestCase) Lineage() []string  { return cloneStrings(t.derived.lineage) }

// Verifies returns the ids of every requirement this test case verifies,
// including inherited ones.
func (t *TestCase) Verifies() []string { return cloneStrings(t.derived.verifies) }

// Instructions returns the effective instructions
func (t *TestCase) Instructions() Instructions {
	return t.derived.instructions.inherit(Instructions{})
}

// Requirements returns the requirements named directly in the document
func (t *TestCase) Requirements() []*Requirement {
	return slices.Clone(t.verifies)
}

// References implements Record
func (t *TestCase) References() []Reference {
	refs := make([]Reference, 0, len(t.doc.Verifies)+1)
	if t.doc.Parent != "" {
		refs = append(refs, Reference{Category: TestCases, ID: t.doc.Parent})
	}
	for _, id := range t.doc.Verifies {
		refs = append(refs, Reference{Category: Requirements, ID: id})
	}
	if len(refs) == 0 {
		return nil
	}
	return refs
}

// Stabilize implements Record.
//
// Requirements are stabilized before test cases, so only the parent test
// case decides whether the result is final.
func (t *TestCase) Stabilize() bool {
	derived := testCaseDerived{
		author:       t.doc.Author,
		importance:   t.doc.Importance,
		tags:         mergeStrings(nil, t.doc.Tags),
		verifies:     mergeStrings(nil, t.doc.Verifies),
		instructions: t.doc.Instructions.inherit(Instructions{}),
	}
	ready := true

	if p := t.parent; p != nil {
		ready = p.stable
		derived.author = firstNonEmpty(t.doc.Author, p.derived.author)
		derived.importance = firstNonEmpty(t.doc.Importance, p.derived.importance)
		derived.tags = mergeStrings(p.derived.tags, t.doc.Tags)
		derived.verifies = mergeStrings(p.derived.verifies, t.doc.Verifies)
		derived.instructions = t.doc.Instructions.inherit(p.derived.instructions)
		derived.lineage = lineage(p.derived.lineage, p.ID())
	}

	t.derived = derived
	t.stable = ready
	return ready
}

// Equal implements Record
func (t *TestCase) Equal(other Record) bool {
	o, ok := other.(*TestCase)
	if !ok || o == nil || t == nil {
		return false
	}
	return t.doc.Name == o.doc.Name &&
		t.doc.Description == o.doc.Description &&
		t.doc.Parent == o.doc.Parent &&
		t.doc.Author == o.doc.Author &&
		t.doc.Importance == o.doc.Importance &&
		slices.Equal(t.doc.Tags, o.doc.Tags) &&
		slices.Equal(t.doc.Verifies, o.doc.Verifies) &&
		t.doc.Instructions.equal(o.doc.Instructions) &&
		t.derived.author == o.derived.author &&
		t.derived.importance == o.derived.importance &&
		slices.Equal(t.derived.tags, o.derived.tags) &&
		slices.Equal(t.derived.verifies, o.derived.verifies) &&
		t.derived.instructions.equal(o.derived.instructions) &&
		slices.Equal(t.derived.lineage, o.derived.lineage) &&
		t.stable == o.stable
}

func (d testCaseDocument) validate() []ValidationError {
	var errs []ValidationError
	if strings.TrimSpace(d.Name) == "" {
		errs = append(errs, ValidationError{Field: "name", Message: "Test case name is required"})
	}
	for i, id := range d.Verifies {
		if strings.TrimSpace(id) == "" {
			errs = append(errs, ValidationError{
				Field:   fmt.Sprintf("verifies[%d]", i),
				Message: "Requirement id must not be empty",
			})
		}
	}
	return errs
}

// TestCaseParser builds test cases from *.tc.yaml documents.
//
// Requirements must already be loaded: an unknown requirement in verifies is
// reported the same way as an unknown parent.
type TestCaseParser struct {
	cache *DocumentCache
}

// NewTestCaseParser creates a parser. cache may be nil.
func NewTestCaseParser(cache *DocumentCache) *TestCaseParser {
	return &TestCaseParser{cache: cache}
}

// Parse implements Parser
func (p *TestCaseParser) Parse(docfile string, index Lookup, basedir string) (Record, error) {
	doc, err := decodeDocument[testCaseDocument](p.cache, "testcase", docfile)
	if err != nil {
		return nil, err
	}
	if verrs := doc.validate(); len(verrs) > 0 {
		return nil, &DocumentError{Document: docfile, Errors: verrs}
	}

	tc := &TestCase{
		filename: docfile,
		path:     relativePath(basedir, docfile),
		doc:      doc,
	}

	if doc.Parent != "" {
		parent, err := resolve[*TestCase](index, docfile, tc, Reference{Category: TestCases, ID: doc.Parent})
		if err != nil {
			return nil, err
		}
		tc.parent = parent
	}

	for _, id := range doc.Verifies {
		req, err := resolve[*Requirement](index, docfile, tc, Reference{Category: Requirements, ID: id})
		if err != nil {
			return nil, err
		}
		tc.verifies = append(tc.verifies, req)
	}

	return tc, nil
}

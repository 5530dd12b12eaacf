package structures

// Reference names a record another record depends on
type Reference struct {
	Category Category `json:"category"`
	ID       string   `json:"id"`
}

// Key returns a string form usable as a graph node key
func (r Reference) Key() string {
	return string(r.Category) + "/" + r.ID
}

func (r Reference) String() string {
	return r.Category.singular() + " " + r.ID
}

// Record is one loaded requirement or test case
type Record interface {
	// ID is unique within the record's category.
	ID() string
	// Provenance is the document the record was parsed from.
	Provenance() string
	Category() Category
	// References lists the records this one was resolved against.
	References() []Reference
	// Stabilize recomputes derived attributes and reports whether they are
	// final. It is idempotent.
	Stabilize() bool
	Stable() bool
	// Equal compares ids, domain fields and derived fields. Provenance is
	// not compared.
	Equal(other Record) bool
}

// Lookup is a read-only view over already loaded records
type Lookup interface {
	Lookup(category Category, id string) (Record, bool)
}

// Parser builds a record from a document.
//
// basedir is the root the document was discovered under.
type Parser interface {
	Parse(docfile string, index Lookup, basedir string) (Record, error)
}

// ParserFunc adapts a function to the Parser interface
type ParserFunc func(docfile string, index Lookup, basedir string) (Record, error)

// Parse calls f.
func (f ParserFunc) Parse(docfile string, index Lookup, basedir string) (Record, error) {
	return f(docfile, index, basedir)
}

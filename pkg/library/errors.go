package library

import (
	"fmt"
	"strings"

	"github.com/hashicorp/go-multierror"

	"github.com/platinummonkey/tclib/pkg/structures"
)

// CollisionError means two documents of one category declare the same id
type CollisionError struct {
	Category structures.Category
	ID       string
	// First is the document accepted earlier, Second the one rejected
	First  string
	Second string
}

func (e *CollisionError) Error() string {
	return fmt.Sprintf("attempted to load two %s with the same id %q: %s and %s",
		e.Category, e.ID, e.First, e.Second)
}

// DocfilesError lists every document that could not be loaded because its
// references never resolved
type DocfilesError struct {
	Category  structures.Category
	Documents []string
	// Diagnostics explains each document, keyed by document path
	Diagnostics map[string]string
}

func (e *DocfilesError) Error() string {
	return fmt.Sprintf("unable to load %d %s document(s): %s",
		len(e.Documents), e.Category, strings.Join(e.Documents, ", "))
}

// Causes returns one error per document, or nil
func (e *DocfilesError) Causes() error {
	var result *multierror.Error
	for _, doc := range e.Documents {
		reason := e.Diagnostics[doc]
		if reason == "" {
			reason = "unresolved"
		}
		result = multierror.Append(result, fmt.Errorf("%s: %s", doc, reason))
	}
	return result.ErrorOrNil()
}

// UnstableError is returned under strict stabilization when records did not
// converge
type UnstableError struct {
	Category structures.Category
	IDs      []string
}

func (e *UnstableError) Error() string {
	return fmt.Sprintf("%d %s did not stabilize: %s", len(e.IDs), e.Category, strings.Join(e.IDs, ", "))
}

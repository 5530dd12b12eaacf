package structures

import (
	"errors"
	"fmt"
	"strings"
)

// ErrUnknownParent is matched by every *UnknownParentError.
var ErrUnknownParent = errors.New("unknown parent")

// UnknownParentError means a referenced record is not loaded (yet).
type UnknownParentError struct {
	Document string
	Category Category
	ID       string
	Parent   Reference
}

func (e *UnknownParentError) Error() string {
	return fmt.Sprintf("%s: %s %q references unknown %s", e.Document, e.Category.singular(), e.ID, e.Parent)
}

// Is reports whether target is ErrUnknownParent.
func (e *UnknownParentError) Is(target error) bool {
	return target == ErrUnknownParent
}

// ValidationError represents a document field that failed validation
type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// DocumentError reports every validation failure of one document
type DocumentError struct {
	Document string
	Errors   []ValidationError
}

func (e *DocumentError) Error() string {
	msgs := make([]string, 0, len(e.Errors))
	for _, verr := range e.Errors {
		msgs = append(msgs, verr.Error())
	}
	return fmt.Sprintf("invalid document %s: %s", e.Document, strings.Join(msgs, "; "))
}

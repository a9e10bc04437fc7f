package transaction

import (
	"errors"
	"fmt"
)

// ErrMalformedExport is returned for input that is not a well-formed export document.
var ErrMalformedExport = errors.New("malformed export")

// ErrValidation matches every *ValidationError via errors.Is.
var ErrValidation = errors.New("transaction validation failed")

// ValidationError reports a record that does not conform to the canonical schema.
// Row is the zero-based index of the row within Group, or -1 when the error is not
// tied to a row.
type ValidationError struct {
	Group  string
	Row    int
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	switch {
	case e.Group != "" && e.Row >= 0:
		return fmt.Sprintf("group %q row %d: field %s: %s", e.Group, e.Row, e.Field, e.Reason)
	case e.Row >= 0:
		return fmt.Sprintf("row %d: field %s: %s", e.Row, e.Field, e.Reason)
	}

	return fmt.Sprintf("field %s: %s", e.Field, e.Reason)
}

func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}

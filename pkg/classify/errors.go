package classify

import (
	"errors"
	"fmt"
)

// Classification failures. Every one of them leaves the descriptor
// non-reportable.
var (
	// ErrUnrecognizedCategory means no rule exists for the identifier's
	// category, or the identifier is not a Cassandra metric at all.
	ErrUnrecognizedCategory = errors.New("unrecognized category")

	// ErrMalformedShape means the category is known but the rest of the
	// identifier does not have the expected number of segments.
	ErrMalformedShape = errors.New("malformed identifier shape")

	// ErrIllegalName means the generated name violates the Prometheus
	// metric name grammar.
	ErrIllegalName = errors.New("generated illegal metric name")
)

// Error describes why an identifier could not be classified.
type Error struct {
	Identifier string
	Category   Category
	Err        error
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Category == CategoryUnknown {
		return fmt.Sprintf("unhandled metric %q: %v", e.Identifier, e.Err)
	}
	return fmt.Sprintf("unhandled metric %q (category %s): %v", e.Identifier, e.Category, e.Err)
}

// Unwrap implements error unwrapping for errors.Is/As.
func (e *Error) Unwrap() error {
	return e.Err
}

// Reason returns a short, label-safe name for the failure.
func Reason(err error) string {
	switch {
	case errors.Is(err, ErrUnrecognizedCategory):
		return "unrecognized_category"
	case errors.Is(err, ErrMalformedShape):
		return "malformed_shape"
	case errors.Is(err, ErrIllegalName):
		return "illegal_name"
	default:
		return "unknown"
	}
}

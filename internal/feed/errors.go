package feed

import (
	"errors"
	"fmt"
)

var (
	ErrMissingTable  = errors.New("feed table not found")
	ErrMissingColumn = errors.New("feed table is missing required columns")
)

// FieldError reports a value that could not be parsed into its typed field.
// Row is 1-based and counts data rows only.
type FieldError struct {
	Table  string
	Row    int
	Column string
	Value  string
	Err    error
}

func (e *FieldError) Error() string {
	return fmt.Sprintf("%s row %d: invalid %s %q: %v", e.Table, e.Row, e.Column, e.Value, e.Err)
}

func (e *FieldError) Unwrap() error {
	return e.Err
}

package value

import (
	"errors"
	"fmt"
	"strings"
)

// Construction errors.
var (
	// ErrSchemaMismatch indicates a table row that does not match the table columns.
	ErrSchemaMismatch = errors.New("schema mismatch")

	// ErrDuplicateField indicates a record or column list with a repeated name.
	ErrDuplicateField = errors.New("duplicate field")
)

// SchemaMismatchError describes a rejected table row.
type SchemaMismatchError struct {
	Row      int
	Expected []string
	Got      []string
}

// Error implements the error interface.
func (e *SchemaMismatchError) Error() string {
	return fmt.Sprintf("schema mismatch at row %d: expected columns [%s], got [%s]",
		e.Row, strings.Join(e.Expected, ", "), strings.Join(e.Got, ", "))
}

// Is checks if the error matches the target.
func (e *SchemaMismatchError) Is(target error) bool {
	if target == ErrSchemaMismatch {
		return true
	}
	_, ok := target.(*SchemaMismatchError)
	return ok
}

// DuplicateFieldError reports the repeated name.
type DuplicateFieldError struct {
	Name string
}

// Error implements the error interface.
func (e *DuplicateFieldError) Error() string {
	return fmt.Sprintf("duplicate field %q", e.Name)
}

// Is checks if the error matches the target.
func (e *DuplicateFieldError) Is(target error) bool {
	if target == ErrDuplicateField {
		return true
	}
	_, ok := target.(*DuplicateFieldError)
	return ok
}

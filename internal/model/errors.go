package model

import (
	"errors"
	"strings"
)

// Sentinel errors shared by the store and API layers. Callers wrap them with
// a reason using fmt.Errorf("%w: ...").
var (
	ErrNotFound  = errors.New("not found")
	ErrConflict  = errors.New("conflict")
	ErrForbidden = errors.New("forbidden")
)

// ValidationError lists every problem found in a request. Nothing is written
// when one is returned.
type ValidationError struct {
	Problems []string
}

func (e *ValidationError) Error() string {
	if len(e.Problems) == 1 {
		return "validation failed: " + e.Problems[0]
	}
	return "validation failed: " + strings.Join(e.Problems, "; ")
}

// Invalid returns a ValidationError with the given problems.
func Invalid(problems ...string) *ValidationError {
	return &ValidationError{Problems: problems}
}

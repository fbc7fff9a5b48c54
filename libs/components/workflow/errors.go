package workflow

import (
	"errors"
	"fmt"
	"strings"

	"gorm.io/gorm"
)

var (
	// ErrStepNotFound is returned when a step id is not in the list.
	ErrStepNotFound = errors.New("step not found")
	// ErrDuplicateStepID is returned when a committed step id is already taken.
	ErrDuplicateStepID = errors.New("step id already exists")
	// ErrConfirmationRequired guards step deletion.
	ErrConfirmationRequired = errors.New("step deletion requires confirmation")
	// ErrUnknownField is returned for draft paths outside the known set.
	ErrUnknownField = errors.New("unknown draft field")
	// ErrUnknownPredefined is returned for an unknown predefined template key.
	ErrUnknownPredefined = errors.New("unknown predefined template")
	// ErrInvalidTransition is returned for view changes that are not allowed
	// from the current mode.
	ErrInvalidTransition = errors.New("invalid view transition")
	// ErrNoDraft is returned when a session has nothing to submit.
	ErrNoDraft = errors.New("no template draft")
)

// FieldError names a field that failed validation.
type FieldError struct {
	Field  string `json:"field"`
	Reason string `json:"reason"`
}

// ValidationError reports missing or invalid fields. It is raised before any
// repository call and leaves the draft untouched.
type ValidationError struct {
	Fields []FieldError
}

func (e *ValidationError) Error() string {
	parts := make([]string, 0, len(e.Fields))
	for _, f := range e.Fields {
		parts = append(parts, f.Field+" "+f.Reason)
	}
	return "validation failed: " + strings.Join(parts, ", ")
}

// Has reports whether field failed validation.
func (e *ValidationError) Has(field string) bool {
	for _, f := range e.Fields {
		if f.Field == field {
			return true
		}
	}
	return false
}

// IsValidationError reports whether err carries a ValidationError.
func IsValidationError(err error) bool {
	var verr *ValidationError
	return errors.As(err, &verr)
}

// RepositoryError wraps a failed repository call.
type RepositoryError struct {
	Op  string
	Err error
}

func (e *RepositoryError) Error() string {
	return fmt.Sprintf("repository %s: %v", e.Op, e.Err)
}

func (e *RepositoryError) Unwrap() error {
	return e.Err
}

// IsNotFound indicates whether the error is gorm.ErrRecordNotFound.
func IsNotFound(err error) bool {
	return errors.Is(err, gorm.ErrRecordNotFound)
}

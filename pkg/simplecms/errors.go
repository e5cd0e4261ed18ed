package simplecms

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
)

// Error types
var (
	// ErrEntityNotFound indicates an entity was not found
	ErrEntityNotFound = errors.New("entity not found")

	// ErrTranslationNotFound indicates a translation was not found
	ErrTranslationNotFound = errors.New("translation not found")

	// ErrBlockableNotFound indicates a blockable sub-resource was not found
	ErrBlockableNotFound = errors.New("blockable not found")

	// ErrFileNotFound indicates a file record was not found
	ErrFileNotFound = errors.New("file not found")

	// ErrFileBackendNotFound indicates a file storage backend was not configured
	ErrFileBackendNotFound = errors.New("file storage backend not found")
)

// ValidationError reports missing or malformed input detected before or
// during a write pipeline step.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Reason
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Reason)
}

// NewValidationError builds a ValidationError for a field.
func NewValidationError(field, reason string) *ValidationError {
	return &ValidationError{Field: field, Reason: reason}
}

// IsValidationError reports whether err is (or wraps) a ValidationError.
func IsValidationError(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

// TransactionError wraps a failure raised while a unit of work was open.
// The enclosing transaction has been rolled back when it is returned.
type TransactionError struct {
	Op  string
	Err error
}

func (e *TransactionError) Error() string {
	return fmt.Sprintf("transaction %s failed: %v", e.Op, e.Err)
}

func (e *TransactionError) Unwrap() error {
	return e.Err
}

// EntityError represents an error related to entity operations
type EntityError struct {
	EntityID uuid.UUID
	Op       string
	Err      error
}

func (e *EntityError) Error() string {
	return fmt.Sprintf("entity operation %s failed for entity %s: %v", e.Op, e.EntityID, e.Err)
}

func (e *EntityError) Unwrap() error {
	return e.Err
}

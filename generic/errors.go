/*
errors.go - Centralized error types

PURPOSE:
  All error types in one place for consistency and discoverability.
  Domain packages return the structured errors; callers classify them
  with errors.Is against the sentinels.

ERROR CATEGORIES:
  1. Validation errors - missing or malformed input (create, save)
  2. Not-found errors - update/status change against an unknown id
  3. Access errors - no session, wrong role or branch, bad credentials

  Deleting an unknown id is not an error. A negative remaining allowance is
  not an error either; it is a value the caller decides how to surface.

USAGE:
  _, _, err := lifecycle.Update(requests, patch)
  if generic.IsNotFound(err) {
      // 404
  }

SEE ALSO:
  - holiday/lifecycle.go: returns ValidationError and NotFoundError
  - api/handlers.go: maps errors to HTTP status codes
*/
package generic

import (
	"errors"
	"fmt"
)

// =============================================================================
// SENTINEL ERRORS - Use with errors.Is()
// =============================================================================

var (
	// ErrValidation is returned when a required field is missing or invalid.
	ErrValidation = errors.New("validation failed")

	// ErrNotFound is returned when a referenced record doesn't exist.
	ErrNotFound = errors.New("not found")

	// ErrInvalidCredentials is returned when username/password don't match.
	ErrInvalidCredentials = errors.New("invalid username or password")

	// ErrUnauthenticated is returned when no valid session is presented.
	ErrUnauthenticated = errors.New("not authenticated")

	// ErrForbidden is returned when the actor's role or branch doesn't allow the action.
	ErrForbidden = errors.New("forbidden")
)

// =============================================================================
// STRUCTURED ERRORS - Carry additional context
// =============================================================================

// ValidationError names the offending field.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("validation error: %s: %s", e.Field, e.Message)
	}
	return fmt.Sprintf("validation error: %s", e.Message)
}

func (e *ValidationError) Unwrap() error {
	return ErrValidation
}

// NewValidationError is a shorthand used by the domain packages.
func NewValidationError(field, message string) error {
	return &ValidationError{Field: field, Message: message}
}

// NotFoundError identifies the missing record.
type NotFoundError struct {
	Kind string // e.g. "request", "staff", "branch"
	ID   string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %q not found", e.Kind, e.ID)
}

func (e *NotFoundError) Unwrap() error {
	return ErrNotFound
}

// NewNotFoundError is a shorthand used by the domain packages.
func NewNotFoundError(kind, id string) error {
	return &NotFoundError{Kind: kind, ID: id}
}

// ForbiddenError explains why an actor may not perform an action.
type ForbiddenError struct {
	Reason string
}

func (e *ForbiddenError) Error() string {
	return "forbidden: " + e.Reason
}

func (e *ForbiddenError) Unwrap() error {
	return ErrForbidden
}

// =============================================================================
// ERROR HELPERS
// =============================================================================

// IsNotFound returns true if the error indicates a missing record.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

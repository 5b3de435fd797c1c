package domain

import (
	"errors"
	"fmt"
)

// ValidationError reports input rejected before any write was attempted.
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// NotFoundError reports that a specimen or event id did not resolve.
type NotFoundError struct {
	Entity EntityType
	ID     string
}

func (e NotFoundError) Error() string {
	return fmt.Sprintf("%s %s not found", e.Entity, e.ID)
}

// AuthorizationError reports a record access scoped to a different owning
// account.
type AuthorizationError struct {
	Entity  EntityType
	ID      string
	OwnerID string
}

func (e AuthorizationError) Error() string {
	return fmt.Sprintf("%s %s is not owned by account %s", e.Entity, e.ID, e.OwnerID)
}

// TransientError wraps a store or network failure that the caller may retry.
// The engine itself never retries.
type TransientError struct {
	Op  string
	Err error
}

func (e TransientError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e TransientError) Unwrap() error { return e.Err }

// ErrIDFilterTooLarge is returned by stores when an any-of id predicate
// exceeds the backend cardinality limit of MaxIDFilter.
var ErrIDFilterTooLarge = errors.New("id filter exceeds backend cardinality limit")

// IsValidation reports whether err is (or wraps) a ValidationError.
func IsValidation(err error) bool {
	var ve ValidationError
	return errors.As(err, &ve)
}

// IsNotFound reports whether err is (or wraps) a NotFoundError.
func IsNotFound(err error) bool {
	var nf NotFoundError
	return errors.As(err, &nf)
}

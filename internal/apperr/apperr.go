// Package apperr defines the error kinds the service layer reports and the
// handlers translate to HTTP statuses.
package apperr

import "errors"

var (
	// ErrValidation marks a caller error: missing required field, bad enum
	// value, missing billing cycle with the add-on selected.
	ErrValidation = errors.New("validation failed")

	// ErrNotFound marks a lookup of an id or slug with no live record.
	// Unpublished memorials report this on public reads.
	ErrNotFound = errors.New("not found")

	// ErrConflict marks a uniqueness violation or a stale-version write.
	ErrConflict = errors.New("conflict")

	// ErrInvalidTransition marks a request-status change outside the
	// allowed transition set.
	ErrInvalidTransition = errors.New("invalid status transition")

	// ErrUpstream marks a storage or notification dependency failure.
	ErrUpstream = errors.New("upstream dependency failed")
)

func IsValidation(err error) bool        { return errors.Is(err, ErrValidation) }
func IsNotFound(err error) bool          { return errors.Is(err, ErrNotFound) }
func IsConflict(err error) bool          { return errors.Is(err, ErrConflict) }
func IsInvalidTransition(err error) bool { return errors.Is(err, ErrInvalidTransition) }
func IsUpstream(err error) bool          { return errors.Is(err, ErrUpstream) }

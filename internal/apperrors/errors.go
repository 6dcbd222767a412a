package apperrors

import (
	"errors"
	"fmt"
)

// Sentinel errors surfaced by repositories, media ingestion and storage.
// Handlers map these to HTTP statuses; nothing below this package knows
// about HTTP.
var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrDuplicateUsername  = errors.New("username already taken")
	ErrNotAMember         = errors.New("not a member of this group")
	ErrForbidden          = errors.New("forbidden")
	ErrNotFound           = errors.New("not found")
	ErrTooManyFiles       = errors.New("too many files attached to post")
	ErrNoValidFiles       = errors.New("no valid files in payload")
	ErrDecode             = errors.New("invalid base64 payload")
)

// ValidationError carries a human-readable reason for a 400-equivalent
// rejection.
type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string { return e.Reason }

// NewValidation creates a ValidationError with a formatted reason.
func NewValidation(format string, args ...interface{}) *ValidationError {
	return &ValidationError{Reason: fmt.Sprintf(format, args...)}
}

// StorageError marks a storage backend failure. Uploads react by falling
// back to local storage, resolution by returning raw references; it is never
// surfaced to the end user as a hard failure on the read path.
type StorageError struct {
	Op  string
	Err error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("storage %s: %v", e.Op, e.Err)
}

func (e *StorageError) Unwrap() error { return e.Err }

// IsStorage reports whether err is (or wraps) a StorageError.
func IsStorage(err error) bool {
	var serr *StorageError
	return errors.As(err, &serr)
}

// Package errs contains sentinel errors used across layers for stable error mapping.
package errs

import (
	"errors"
	"fmt"
)

// Common sentinels across repo/service layers.
var (
	// ErrValidation indicates missing or malformed input.
	ErrValidation = errors.New("validation")

	// ErrNotFound indicates the requested entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrForbidden indicates an authenticated caller lacks access to the entity.
	ErrForbidden = errors.New("forbidden")

	// ErrConflict indicates the request clashes with current state.
	ErrConflict = errors.New("conflict")

	// ErrInvalidCredential indicates a wrong group join password.
	ErrInvalidCredential = errors.New("invalid credential")

	// ErrPasswordRequired indicates a protected group was joined without a password.
	ErrPasswordRequired = errors.New("password required")

	// ErrDrawFailed indicates the draw could not find a derangement within its budget.
	ErrDrawFailed = errors.New("draw failed")

	// ErrVersionConflict indicates optimistic concurrency failure (base version mismatch).
	ErrVersionConflict = errors.New("version conflict")

	// ErrUnauthorized indicates failed authentication.
	ErrUnauthorized = errors.New("unauthorized")

	// ErrRateLimited indicates temporary lock due to rate limiting.
	ErrRateLimited = errors.New("rate limited")
)

// Conflict refinements. Each matches ErrConflict under errors.Is.
var (
	ErrAlreadyMember = fmt.Errorf("%w: already a member of this group", ErrConflict)
	ErrEmailTaken    = fmt.Errorf("%w: email already registered", ErrConflict)
	ErrGroupFull     = fmt.Errorf("%w: group is full", ErrConflict)
	ErrGroupClosed   = fmt.Errorf("%w: group is closed", ErrConflict)
)

// Validation wraps ErrValidation with a human-readable reason.
func Validation(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrValidation, fmt.Sprintf(format, args...))
}

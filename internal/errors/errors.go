package errors

import (
	"github.com/cockroachdb/errors"
)

// Sentinel errors used to mark the class of a failure. Services build rich
// errors with NewError/WithError and attach exactly one of these via Mark.
var (
	// ErrPermissionDenied indicates a missing or invalid identity (authentication).
	ErrPermissionDenied = errors.New("permission denied")
	// ErrForbidden indicates a valid identity without the required role or ownership.
	ErrForbidden = errors.New("forbidden")
	ErrValidation    = errors.New("validation error")
	ErrNotFound      = errors.New("item not found")
	ErrAlreadyExists = errors.New("item already exists")
	// ErrInsufficientAllowance indicates no credit path (trial, balance, bypass) applies.
	ErrInsufficientAllowance = errors.New("insufficient letter allowance")
	// ErrInvalidTransition indicates a letter status change not present in the
	// allowed transition graph.
	ErrInvalidTransition = errors.New("invalid status transition")
	// ErrVersionConflict indicates an optimistic concurrency failure: the stored
	// status no longer matched the expected value at write time. Retryable by the
	// caller, never auto-retried here.
	ErrVersionConflict = errors.New("concurrent modification")
	// ErrGeneration indicates the AI content generation call failed, timed out,
	// or returned empty content.
	ErrGeneration = errors.New("letter generation failed")
	ErrDatabase   = errors.New("database error")
	ErrSystem     = errors.New("system error")
	ErrHTTPClient = errors.New("http client error")
)

// Is reports whether any error in err's chain matches target.
func Is(err, target error) bool {
	return errors.Is(err, target)
}

func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

func IsAlreadyExists(err error) bool {
	return errors.Is(err, ErrAlreadyExists)
}

func IsValidation(err error) bool {
	return errors.Is(err, ErrValidation)
}

func IsPermissionDenied(err error) bool {
	return errors.Is(err, ErrPermissionDenied)
}

func IsForbidden(err error) bool {
	return errors.Is(err, ErrForbidden)
}

func IsInsufficientAllowance(err error) bool {
	return errors.Is(err, ErrInsufficientAllowance)
}

func IsInvalidTransition(err error) bool {
	return errors.Is(err, ErrInvalidTransition)
}

func IsVersionConflict(err error) bool {
	return errors.Is(err, ErrVersionConflict)
}

func IsGeneration(err error) bool {
	return errors.Is(err, ErrGeneration)
}

func IsDatabase(err error) bool {
	return errors.Is(err, ErrDatabase)
}

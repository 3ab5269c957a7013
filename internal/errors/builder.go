package errors

import (
	"fmt"

	"github.com/cockroachdb/errors"
)

// InternalError is the rich error carried through the service layers. The
// message is for logs, the hint is safe to show to the user, and the
// reportable details end up in the error response body.
type InternalError struct {
	err     error
	hint    string
	details map[string]interface{}
}

func (e *InternalError) Error() string {
	return e.err.Error()
}

func (e *InternalError) Unwrap() error {
	return e.err
}

func (e *InternalError) Hint() string {
	return e.hint
}

func (e *InternalError) Details() map[string]interface{} {
	return e.details
}

// ErrorBuilder accumulates context before the error is marked with a sentinel.
type ErrorBuilder struct {
	internal *InternalError
}

// NewError starts a builder from a fresh message.
func NewError(message string) *ErrorBuilder {
	return &ErrorBuilder{
		internal: &InternalError{
			err: errors.New(message),
		},
	}
}

// NewErrorf starts a builder from a formatted message.
func NewErrorf(format string, args ...interface{}) *ErrorBuilder {
	return NewError(fmt.Sprintf(format, args...))
}

// WithError starts a builder wrapping an existing error.
func WithError(err error) *ErrorBuilder {
	if err == nil {
		err = errors.New("unknown error")
	}
	return &ErrorBuilder{
		internal: &InternalError{
			err: err,
		},
	}
}

// WithHint attaches a user-safe message.
func (b *ErrorBuilder) WithHint(hint string) *ErrorBuilder {
	b.internal.hint = hint
	return b
}

// WithHintf attaches a formatted user-safe message.
func (b *ErrorBuilder) WithHintf(format string, args ...interface{}) *ErrorBuilder {
	b.internal.hint = fmt.Sprintf(format, args...)
	return b
}

// WithReportableDetails attaches structured details that are safe to return
// to the caller.
func (b *ErrorBuilder) WithReportableDetails(details map[string]interface{}) *ErrorBuilder {
	b.internal.details = details
	return b
}

// Mark finalizes the builder, attaching the sentinel that classifies the
// error for predicates and HTTP mapping.
func (b *ErrorBuilder) Mark(sentinel error) error {
	b.internal.err = errors.Mark(b.internal.err, sentinel)
	return b.internal
}

// HintOf returns the deepest hint in err's chain, if any.
func HintOf(err error) string {
	for err != nil {
		var ie *InternalError
		if errors.As(err, &ie) {
			if ie.hint != "" {
				return ie.hint
			}
			err = errors.Unwrap(ie.err)
			continue
		}
		err = errors.Unwrap(err)
	}
	return ""
}

// DetailsOf returns the first reportable details map in err's chain, if any.
func DetailsOf(err error) map[string]interface{} {
	var ie *InternalError
	if errors.As(err, &ie) && ie.details != nil {
		return ie.details
	}
	return nil
}

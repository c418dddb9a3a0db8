package normalize

import (
	"errors"
	"strings"
)

// Sentinel errors, one per failure kind. Every failure of Normalize matches
// exactly one of them with errors.Is. None of them is retryable.
var (
	ErrConfigurationMismatch = errors.New("configuration mismatch")
	ErrAllocation            = errors.New("allocation failure")
	ErrConversion            = errors.New("conversion failure")
)

// Kind classifies a normalization failure.
type Kind int

// Failure kinds.
const (
	KindConfigurationMismatch Kind = iota + 1
	KindAllocation
	KindConversion
)

func (k Kind) sentinel() error {
	switch k {
	case KindConfigurationMismatch:
		return ErrConfigurationMismatch
	case KindAllocation:
		return ErrAllocation
	case KindConversion:
		return ErrConversion
	default:
		return nil
	}
}

// String returns the kind's name.
func (k Kind) String() string {
	if s := k.sentinel(); s != nil {
		return s.Error()
	}
	return "unknown"
}

// Error is the error returned (or panicked with) by the normalizer.
type Error struct {
	Kind   Kind
	Detail string
	Cause  error
}

func newError(kind Kind, detail string, cause error) *Error {
	return &Error{Kind: kind, Detail: detail, Cause: cause}
}

// Error implements the error interface.
func (e *Error) Error() string {
	var b strings.Builder
	b.WriteString("to standard layout: ")
	b.WriteString(e.Kind.String())
	if e.Detail != "" {
		b.WriteString(": ")
		b.WriteString(e.Detail)
	}
	if e.Cause != nil {
		b.WriteString(": ")
		b.WriteString(e.Cause.Error())
	}
	return b.String()
}

// Unwrap returns the underlying cause.
func (e *Error) Unwrap() error {
	return e.Cause
}

// Is reports whether target is the sentinel for e's kind.
func (e *Error) Is(target error) bool {
	s := e.Kind.sentinel()
	return s != nil && target == s
}

// IsFatal reports whether err came from the normalizer. All such errors
// abort the call and must not be retried.
func IsFatal(err error) bool {
	var e *Error
	return errors.As(err, &e)
}

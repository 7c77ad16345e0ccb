package storage

import "fmt"

// ErrorKind categorizes backend failures. Each kind corresponds to exactly
// one FTP reply code, which the server is responsible for rendering.
type ErrorKind int

const (
	// KindTransientUnavailable maps to 450: file unavailable, e.g. busy.
	KindTransientUnavailable ErrorKind = iota
	// KindPermanentUnavailable maps to 550: file not found, no access.
	KindPermanentUnavailable
	// KindPermissionDenied maps to 550.
	KindPermissionDenied
	// KindLocalError maps to 451: local error in processing.
	KindLocalError
	// KindPageTypeUnknown maps to 551.
	KindPageTypeUnknown
	// KindInsufficientSpace maps to 452: insufficient storage space.
	KindInsufficientSpace
	// KindExceededAllocation maps to 552: exceeded storage allocation.
	KindExceededAllocation
	// KindBadFileName maps to 553: file name not allowed.
	KindBadFileName
)

// String returns the kind's wire-facing description.
func (k ErrorKind) String() string {
	switch k {
	case KindTransientUnavailable:
		return "transient file not available"
	case KindPermanentUnavailable:
		return "permanent file not available"
	case KindPermissionDenied:
		return "permission denied"
	case KindLocalError:
		return "local error"
	case KindPageTypeUnknown:
		return "page type unknown"
	case KindInsufficientSpace:
		return "insufficient storage space"
	case KindExceededAllocation:
		return "exceeded storage allocation"
	case KindBadFileName:
		return "file name not allowed"
	default:
		return "unknown storage error"
	}
}

// Error is the failure type returned by Backend implementations.
type Error struct {
	Kind  ErrorKind
	Cause error
}

// NewError constructs an Error of the given kind wrapping cause (may be nil).
func NewError(kind ErrorKind, cause error) *Error {
	return &Error{Kind: kind, Cause: cause}
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Kind, e.Cause)
	}
	return e.Kind.String()
}

// Unwrap returns the underlying cause.
func (e *Error) Unwrap() error {
	return e.Cause
}

// Package apperr defines the error taxonomy shared across every smarttree
// component and its mapping onto JSON-RPC error codes (spec §6.1, §7).
package apperr

import "fmt"

// Kind classifies a smarttree error so that callers at every layer — scan
// loop, encoder, tool dispatch — can react without string-matching messages.
type Kind int

const (
	// InvalidInput covers schema violations, malformed regex, malformed
	// size/date arguments.
	InvalidInput Kind = iota
	// PermissionDenied covers Path Gate rejections and per-entry OS
	// permission errors.
	PermissionDenied
	// NotFound covers a scan root that does not exist.
	NotFound
	// IOError covers unexpected filesystem failures and signature-store
	// read/write failures (the latter are recoverable, never fatal).
	IOError
	// EncodingError covers an impossible structural condition in the node
	// stream (e.g. depth decreasing by more than one without an ascent
	// marker). Always fatal.
	EncodingError
	// Cancelled covers cooperative cancellation.
	Cancelled
)

func (k Kind) String() string {
	switch k {
	case InvalidInput:
		return "InvalidInput"
	case PermissionDenied:
		return "PermissionDenied"
	case NotFound:
		return "NotFound"
	case IOError:
		return "IOError"
	case EncodingError:
		return "EncodingError"
	case Cancelled:
		return "Cancelled"
	default:
		return "Unknown"
	}
}

// RPCCode returns the JSON-RPC error code for the kind, per spec §6.1.
func (k Kind) RPCCode() int {
	switch k {
	case InvalidInput:
		return -32602
	case PermissionDenied:
		return -32000
	case IOError, NotFound, EncodingError:
		return -32001
	case Cancelled:
		return -32002
	default:
		return -32001
	}
}

// Error is the single error type returned by smarttree's internal packages.
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error { return e.Err }

// New constructs an *Error with no wrapped cause.
func New(kind Kind, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// Wrap constructs an *Error wrapping an underlying cause.
func Wrap(kind Kind, err error, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...), Err: err}
}

// KindOf extracts the Kind from err if it is (or wraps) an *Error, defaulting
// to IOError for unrecognised errors.
func KindOf(err error) Kind {
	var e *Error
	if as(err, &e) {
		return e.Kind
	}
	return IOError
}

// as is a tiny local shim so this package need not import errors.As at every
// call site; kept private and trivial.
func as(err error, target **Error) bool {
	for err != nil {
		if e, ok := err.(*Error); ok {
			*target = e
			return true
		}
		u, ok := err.(interface{ Unwrap() error })
		if !ok {
			return false
		}
		err = u.Unwrap()
	}
	return false
}

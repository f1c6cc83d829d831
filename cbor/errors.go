package cbor

import "errors"

// ErrorCode identifies the class of failure a decoder or encoder
// operation hit. It mirrors the negative-integer error taxonomy of the
// original C implementation, expressed as a Go error type so callers can
// use errors.Is against the package-level sentinels below.
type ErrorCode int

const (
	// Overflow means the encoded value exceeds the destination width or
	// a caller-imposed size class.
	Overflow ErrorCode = iota + 1
	// InvalidType means a getter was called against the wrong major
	// type.
	InvalidType
	// End means the cursor ran off the end of the buffer, or the
	// sink's Fits reported no room.
	End
	// Recursion means a skip or packed-reference resolution exceeded
	// RecursionMax nested frames.
	Recursion
	// Invalid means the input is malformed in a way not covered by a
	// more specific code (e.g. a head with a reserved argument info
	// value 28-30, or a non-UTF-8 text string payload).
	Invalid
	// NotFound means a requested entry (map key, packed reference)
	// could not be located. For packed resolution specifically this is
	// not a user-visible failure: it means "no substitution occurred".
	NotFound
	// PackedFormat means a packed-CBOR table definition (tag 113) did
	// not have the required [table, rump] shape.
	PackedFormat
	// PackedMemory means the packed table stack would exceed
	// NestedTablesMax.
	PackedMemory
	// PackedUndefinedReference means a packed reference index did not
	// resolve to any entry in the active table stack.
	PackedUndefinedReference
)

// String returns a short, lowercase, human-readable name for the code.
func (c ErrorCode) String() string {
	switch c {
	case Overflow:
		return "overflow"
	case InvalidType:
		return "invalid type"
	case End:
		return "end of buffer"
	case Recursion:
		return "recursion limit exceeded"
	case Invalid:
		return "invalid encoding"
	case NotFound:
		return "not found"
	case PackedFormat:
		return "malformed packed table"
	case PackedMemory:
		return "packed table stack exhausted"
	case PackedUndefinedReference:
		return "undefined packed reference"
	default:
		return "unknown error"
	}
}

// Error is the concrete error type returned by every fallible cbor
// operation.
type Error struct {
	Code ErrorCode
}

func (e *Error) Error() string {
	return "cbor: " + e.Code.String()
}

// newError constructs an *Error for the given code. Kept as a helper so
// call sites read as "return 0, newError(End)" instead of repeating the
// struct literal.
func newError(code ErrorCode) *Error {
	return &Error{Code: code}
}

// Sentinel errors for use with errors.Is. Two *Error values with the same
// Code are not == but do compare equal via errors.Is because Error
// implements Is against its Code.
var (
	ErrOverflow                 = newError(Overflow)
	ErrInvalidType              = newError(InvalidType)
	ErrEnd                      = newError(End)
	ErrRecursion                = newError(Recursion)
	ErrInvalid                  = newError(Invalid)
	ErrNotFound                 = newError(NotFound)
	ErrPackedFormat             = newError(PackedFormat)
	ErrPackedMemory             = newError(PackedMemory)
	ErrPackedUndefinedReference = newError(PackedUndefinedReference)
)

// Is reports whether target shares this error's Code, so that code like
// errors.Is(err, cbor.ErrEnd) works regardless of which *Error instance
// produced err.
func (e *Error) Is(target error) bool {
	var other *Error
	if errors.As(target, &other) {
		return e.Code == other.Code
	}
	return false
}

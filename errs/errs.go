// Package errs defines the sentinel error values and the structured wire
// error type shared by every codec package in accordwire.
//
// Callers are expected to compare against the sentinels with errors.Is and,
// where the underlying codec attaches position information, to type-assert
// (or errors.As) to *WireError for the byte offset, expected shape, and
// observed byte that triggered the failure.
package errs

import (
	"errors"
	"fmt"
)

var (
	// ErrShortInput is returned when the source is exhausted before a field
	// finished decoding.
	ErrShortInput = errors.New("accordwire: short input")

	// ErrMalformedVarInt is returned when a varint exceeds its maximum byte
	// length (10 bytes for a 64-bit value, 5 bytes for a 32-bit value).
	ErrMalformedVarInt = errors.New("accordwire: malformed varint")

	// ErrEnumOutOfRange is returned when a decoded enum ordinal falls outside
	// the declared range of values() for that enum.
	ErrEnumOutOfRange = errors.New("accordwire: enum ordinal out of range")

	// ErrUnexpectedVariant is returned when a tagged-union discriminator byte
	// is outside {1..6} or outside the codec instance's permitted set.
	ErrUnexpectedVariant = errors.New("accordwire: unexpected tagged-union variant")

	// ErrCorruptInput is a generic structural inconsistency, e.g. an unknown
	// kind byte with no forward-compatibility allowance.
	ErrCorruptInput = errors.New("accordwire: corrupt input")

	// ErrImplausibleCount is returned when a declared collection size exceeds
	// remaining bytes divided by the minimum per-element size.
	ErrImplausibleCount = errors.New("accordwire: implausible element count")

	// ErrPackedOverflow is returned when a bit-packed value exceeds its
	// declared max.
	ErrPackedOverflow = errors.New("accordwire: packed value exceeds declared max")

	// ErrInvalidErrorCode is returned by the forgiving error-code registry
	// when a negative code is validated for encoding. Unknown non-negative
	// codes are not an error; they decode to Unknown.
	ErrInvalidErrorCode = errors.New("accordwire: negative error code")

	// ErrSubsetMismatch is returned when a subset-relative encode is handed a
	// subset that is not an order-preserving subsequence of the superset.
	ErrSubsetMismatch = errors.New("accordwire: subset bitmap does not match superset length")

	// ErrNonIncreasingBoundary is returned when a SegmentedMap's decoded
	// boundary sequence is not strictly increasing.
	ErrNonIncreasingBoundary = errors.New("accordwire: segmented map boundaries not strictly increasing")

	// ErrNilScheme is returned when a Codec is constructed without a key
	// scheme, which every routing-key or key-route operation requires.
	ErrNilScheme = errors.New("accordwire: nil key scheme")

	// ErrNilBoundaryLess is returned when a Decoder method that validates a
	// segmented map's boundary ordering is called without one configured.
	ErrNilBoundaryLess = errors.New("accordwire: nil segmented map boundary comparator")
)

// WireError adds byte-offset context to one of the sentinel errors above.
// It wraps the sentinel so errors.Is(err, ErrShortInput) (etc.) still works.
type WireError struct {
	Err      error  // one of the sentinels in this package
	Offset   int    // byte offset within the source where the failure was observed
	Expected string // short description of what was expected
	Observed byte   // the byte actually read, when applicable
}

func (e *WireError) Error() string {
	return fmt.Sprintf("%s: at offset %d, expected %s", e.Err, e.Offset, e.Expected)
}

func (e *WireError) Unwrap() error { return e.Err }

// Wrap builds a *WireError around one of the sentinels, attaching the byte
// offset and a short description of what was expected.
func Wrap(err error, offset int, expected string) *WireError {
	return &WireError{Err: err, Offset: offset, Expected: expected}
}

// WrapByte is like Wrap but additionally records the offending byte.
func WrapByte(err error, offset int, expected string, observed byte) *WireError {
	return &WireError{Err: err, Offset: offset, Expected: expected, Observed: observed}
}

package enumcodec

import (
	"math"
	"strconv"

	"github.com/accordwire/accord/errs"
	"github.com/accordwire/accord/internal/hash"
	"github.com/accordwire/accord/varint"
	"github.com/accordwire/accord/wirebuf"
)

// ErrorCode is the stable integer identifier of a request-failure kind.
// Unlike the ordinal enums above, codes are explicit and
// forward-compatible: an unrecognized non-negative code decodes as
// Unknown rather than failing, so a node running an older binary can still
// parse a reply carrying a newer failure kind.
type ErrorCode int32

// Declared codes. Values are stable identifiers, not ordinals — new codes
// may be appended without regard to declaration order, and Unknown's own
// code (-1 in memory, never written to the wire by an encoder that knows
// the real code) is what a forgiving decode produces for anything else.
const (
	CodeUnknown ErrorCode = -1

	CodeTimeout            ErrorCode = 0
	CodeInvalidTransaction ErrorCode = 1
	CodeCoordinatorFailure ErrorCode = 2
	CodeRetryPending       ErrorCode = 3
	CodeRetryWithNewRoute  ErrorCode = 4
	CodeStaleEpoch         ErrorCode = 5
	CodeCommitConflict     ErrorCode = 6
)

var knownErrorCodes = map[ErrorCode]string{
	CodeTimeout:            "Timeout",
	CodeInvalidTransaction: "InvalidTransaction",
	CodeCoordinatorFailure: "CoordinatorFailure",
	CodeRetryPending:       "RetryPending",
	CodeRetryWithNewRoute:  "RetryWithNewRoute",
	CodeStaleEpoch:         "StaleEpoch",
	CodeCommitConflict:     "CommitConflict",
}

// String returns the declared name for a known code, "Unknown" for
// CodeUnknown, or a hash-tagged placeholder for an unrecognized code — the
// tag is a non-normative diagnostic aid (see internal/hash) so two
// different unrecognized codes are visually distinguishable in logs.
func (c ErrorCode) String() string {
	if c == CodeUnknown {
		return "Unknown"
	}

	if name, ok := knownErrorCodes[c]; ok {
		return name
	}

	return "Unknown#" + itoaHash(c)
}

func itoaHash(c ErrorCode) string {
	const hexDigits = "0123456789abcdef"

	h := hash.Fingerprint(strconv.Itoa(int(c)))
	buf := make([]byte, 4)
	for i := range buf {
		buf[i] = hexDigits[(h>>(uint(3-i)*4))&0xF]
	}

	return string(buf)
}

// WriteErrorCode writes a known code as its declared non-negative value.
// Encoding CodeUnknown itself is a programmer error — there is no "the
// real reason was unknown" code to round-trip, since Unknown only ever
// arises from decoding something this binary doesn't recognize.
func WriteErrorCode(s wirebuf.Sink, c ErrorCode) {
	varint.WriteUvarint(s, uint64(c))
}

// SizeErrorCode returns the on-wire size of c.
func SizeErrorCode(c ErrorCode) int {
	return varint.SizeUvarint(uint64(c))
}

// ReadErrorCode decodes a forgiving error code: any non-negative value not
// in the declared set becomes CodeUnknown rather than an error. A negative
// code cannot occur on the wire (codes are written as uvarints); a negative
// code from another source is rejected with ErrInvalidErrorCode by
// ValidateErrorCode, before it is written.
func ReadErrorCode(r wirebuf.Source) (ErrorCode, error) {
	u, err := varint.ReadUvarint(r)
	if err != nil {
		return 0, err
	}

	if u > math.MaxInt32 {
		return CodeUnknown, nil
	}

	code := ErrorCode(u)
	if _, ok := knownErrorCodes[code]; ok {
		return code, nil
	}

	return CodeUnknown, nil
}

// ValidateErrorCode rejects a negative code before it is ever written.
// CodeUnknown (-1) is itself negative and is never valid to encode: it is
// purely the decode-side fallback for a code this binary doesn't know.
func ValidateErrorCode(c ErrorCode) error {
	if c < 0 {
		return errs.ErrInvalidErrorCode
	}

	return nil
}

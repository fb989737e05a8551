// Package enumcodec implements ordinal-indexed enum encoding, flag-word
// bitsets, and the forgiving error-code registry. Enums in accordwire are
// plain integer types; this package supplies the shared ordinal
// validate/write/read helpers so every enum in domain and message follows
// the exact same wire rule instead of each hand-rolling its own bounds
// check.
package enumcodec

import (
	"github.com/accordwire/accord/errs"
	"github.com/accordwire/accord/varint"
	"github.com/accordwire/accord/wirebuf"
)

// WriteOrdinal writes ord (an enum's declaration-order index) as an
// unsigned varint.
func WriteOrdinal(s wirebuf.Sink, ord int) {
	varint.WriteUvarint(s, uint64(ord))
}

// SizeOrdinal returns the on-wire size of ord.
func SizeOrdinal(ord int) int {
	return varint.SizeUvarint(uint64(ord))
}

// ReadOrdinal decodes an enum ordinal and validates it against count, the
// number of declared values for that enum. Ordinals are assigned in
// declaration order and never reused. Fails with ErrEnumOutOfRange when the
// decoded ordinal is >= count.
func ReadOrdinal(r wirebuf.Source, count int) (int, error) {
	u, err := varint.ReadUvarint(r)
	if err != nil {
		return 0, err
	}

	if u >= uint64(count) {
		return 0, errs.Wrap(errs.ErrEnumOutOfRange, r.Offset(), "ordinal within declared range")
	}

	return int(u), nil
}

// FlagWord is an unsigned varint carrying a bitset over a small enum of
// flag bits. The zero value is the empty set.
type FlagWord uint64

// Has reports whether bit is set.
func (f FlagWord) Has(bit uint) bool { return f&(1<<bit) != 0 }

// Set returns f with bit set.
func (f FlagWord) Set(bit uint) FlagWord { return f | (1 << bit) }

// Clear returns f with bit cleared.
func (f FlagWord) Clear(bit uint) FlagWord { return f &^ (1 << bit) }

// Write encodes the flag word as an unsigned varint.
func (f FlagWord) Write(s wirebuf.Sink) { varint.WriteUvarint(s, uint64(f)) }

// Size returns the on-wire size of the flag word.
func (f FlagWord) Size() int { return varint.SizeUvarint(uint64(f)) }

// ReadFlagWord decodes a flag word. Every bit value is accepted here —
// validating which bits are meaningful for a given message is the calling
// codec's job, since an enclosing message may legitimately carry reserved
// bits a future version will define.
func ReadFlagWord(r wirebuf.Source) (FlagWord, error) {
	u, err := varint.ReadUvarint(r)
	if err != nil {
		return 0, err
	}

	return FlagWord(u), nil
}

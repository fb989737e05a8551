// Package varint implements unsigned and signed variable-length integer
// encoding (LEB128-style), plus the fixed-width primitive reads/writes
// every higher-level codec is built from. It is the lowest layer of the
// stack — it depends only on wirebuf and errs.
package varint

import (
	"github.com/accordwire/accord/errs"
	"github.com/accordwire/accord/wirebuf"
)

// maxUvarintLen64 / maxUvarintLen32 bound malformed-input detection: a
// 64-bit unsigned varint never needs more than 10 bytes, a
// 32-bit one never more than 5.
const (
	maxUvarintLen64 = 10
	maxUvarintLen32 = 5
)

// SizeUvarint returns the number of bytes WriteUvarint would emit for v:
// ⌈(⌊log2 v⌋+1)/7⌉, with 1 byte for v == 0.
func SizeUvarint(v uint64) int {
	n := 1
	for v >= 0x80 {
		v >>= 7
		n++
	}

	return n
}

// WriteUvarint writes v using the standard 7-bits-per-byte continuation
// encoding, MSB set meaning "more bytes follow".
func WriteUvarint(s wirebuf.Sink, v uint64) {
	for v >= 0x80 {
		s.WriteByte(byte(v) | 0x80)
		v >>= 7
	}
	s.WriteByte(byte(v))
}

// ReadUvarint decodes an unsigned varint, failing with ErrMalformedVarInt if
// more than 10 bytes are consumed and ErrShortInput on EOF mid-number.
func ReadUvarint(r wirebuf.Source) (uint64, error) {
	var result uint64
	var shift uint

	for i := 0; i < maxUvarintLen64; i++ {
		b, err := r.ReadBytes(1)
		if err != nil {
			return 0, errs.Wrap(errs.ErrShortInput, r.Offset(), "uvarint continuation byte")
		}

		result |= uint64(b[0]&0x7F) << shift
		if b[0] < 0x80 {
			return result, nil
		}
		shift += 7
	}

	return 0, errs.Wrap(errs.ErrMalformedVarInt, r.Offset(), "uvarint within 10 bytes")
}

// SizeUvarint32 is SizeUvarint for a value already known to fit in uint32.
func SizeUvarint32(v uint32) int { return SizeUvarint(uint64(v)) }

// WriteUvarint32 writes v as an unsigned varint.
func WriteUvarint32(s wirebuf.Sink, v uint32) { WriteUvarint(s, uint64(v)) }

// ReadUvarint32 decodes a 32-bit unsigned varint, failing with
// ErrMalformedVarInt past 5 bytes.
func ReadUvarint32(r wirebuf.Source) (uint32, error) {
	var result uint32
	var shift uint

	for i := 0; i < maxUvarintLen32; i++ {
		b, err := r.ReadBytes(1)
		if err != nil {
			return 0, errs.Wrap(errs.ErrShortInput, r.Offset(), "uvarint32 continuation byte")
		}

		result |= uint32(b[0]&0x7F) << shift
		if b[0] < 0x80 {
			return result, nil
		}
		shift += 7
	}

	return 0, errs.Wrap(errs.ErrMalformedVarInt, r.Offset(), "uvarint32 within 5 bytes")
}

// zigzag maps a signed n to an unsigned value so that small-magnitude
// negatives encode as small uvarints: 0,-1,1,-2,2,... -> 0,1,2,3,4,...
func zigzag(n int64) uint64 {
	return (uint64(n) << 1) ^ uint64(n>>63)
}

func unzigzag(u uint64) int64 {
	return int64(u>>1) ^ -int64(u&1)
}

// SizeSvarint returns the on-wire size of n under zigzag+uvarint encoding.
func SizeSvarint(n int64) int { return SizeUvarint(zigzag(n)) }

// WriteSvarint zigzag-encodes n then writes it as an unsigned varint.
func WriteSvarint(s wirebuf.Sink, n int64) { WriteUvarint(s, zigzag(n)) }

// ReadSvarint decodes a zigzag+uvarint signed integer.
func ReadSvarint(r wirebuf.Source) (int64, error) {
	u, err := ReadUvarint(r)
	if err != nil {
		return 0, err
	}

	return unzigzag(u), nil
}

// WriteBool writes b as a single byte: 1 for true, 0 for false.
func WriteBool(s wirebuf.Sink, b bool) {
	if b {
		s.WriteByte(1)
	} else {
		s.WriteByte(0)
	}
}

// ReadBool reads a single boolean byte. Any non-zero byte decodes true.
func ReadBool(r wirebuf.Source) (bool, error) {
	b, err := r.ReadBytes(1)
	if err != nil {
		return false, errs.Wrap(errs.ErrShortInput, r.Offset(), "bool byte")
	}

	return b[0] != 0, nil
}

// WriteFixed8/16/32/64 write raw little-endian fixed-width integers, used
// where a field needs a constant width rather than a varint (e.g. flag
// bytes, magic numbers, bit-packed tail words).

func WriteFixed8(s wirebuf.Sink, v uint8) { s.WriteByte(v) }

func ReadFixed8(r wirebuf.Source) (uint8, error) {
	b, err := r.ReadBytes(1)
	if err != nil {
		return 0, errs.Wrap(errs.ErrShortInput, r.Offset(), "1 byte")
	}

	return b[0], nil
}

func WriteFixed16(s wirebuf.Sink, v uint16) {
	s.WriteByte(byte(v))
	s.WriteByte(byte(v >> 8))
}

func ReadFixed16(r wirebuf.Source) (uint16, error) {
	b, err := r.ReadBytes(2)
	if err != nil {
		return 0, errs.Wrap(errs.ErrShortInput, r.Offset(), "2 bytes")
	}

	return uint16(b[0]) | uint16(b[1])<<8, nil
}

func WriteFixed32(s wirebuf.Sink, v uint32) {
	s.WriteByte(byte(v))
	s.WriteByte(byte(v >> 8))
	s.WriteByte(byte(v >> 16))
	s.WriteByte(byte(v >> 24))
}

func ReadFixed32(r wirebuf.Source) (uint32, error) {
	b, err := r.ReadBytes(4)
	if err != nil {
		return 0, errs.Wrap(errs.ErrShortInput, r.Offset(), "4 bytes")
	}

	return uint32(b[0]) | uint32(b[1])<<8 | uint32(b[2])<<16 | uint32(b[3])<<24, nil
}

func WriteFixed64(s wirebuf.Sink, v uint64) { s.WriteUint64(v) }

func ReadFixed64(r wirebuf.Source) (uint64, error) {
	v, err := r.ReadUint64()
	if err != nil {
		return 0, errs.Wrap(errs.ErrShortInput, r.Offset(), "8 bytes")
	}

	return v, nil
}

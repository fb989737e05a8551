// Package bitpack packs an array of non-negative integers at a fixed bit
// width derived from a declared max value. It is the primitive behind
// routable's subset bitmap encoding, and is exported standalone since it
// carries its own invariants independent of any one caller.
package bitpack

import (
	"math/bits"

	"github.com/accordwire/accord/errs"
	"github.com/accordwire/accord/wirebuf"
)

// Width returns b = ⌈log2(max+1)⌉, the number of bits needed to represent
// any value in [0, max]. Width(0) is 0 — a fixed column of all-zero values
// costs nothing on the wire.
func Width(max uint64) int {
	if max == 0 {
		return 0
	}

	return bits.Len64(max)
}

// Size returns the on-wire byte length for n values packed at width b:
// ⌈n·b/8⌉.
func Size(n, b int) int {
	totalBits := n * b
	return (totalBits + 7) / 8
}

func mask(nbits int) uint64 {
	if nbits >= 64 {
		return ^uint64(0)
	}

	return (uint64(1) << nbits) - 1
}

// Encode packs values[i] into b = Width(max) bits apiece, LSB-first within
// a rolling 64-bit accumulator that is flushed as full 8-byte little-endian
// words, with a final minimal-length tail for any leftover bits. It fails
// with ErrPackedOverflow if any value exceeds max.
func Encode(s wirebuf.Sink, values []uint64, max uint64) error {
	b := Width(max)
	if b == 0 {
		for _, v := range values {
			if v > max {
				return errs.Wrap(errs.ErrPackedOverflow, 0, "value <= declared max")
			}
		}

		return nil
	}

	var bitBuf uint64
	bitCount := 0

	for _, v := range values {
		if v > max {
			return errs.Wrap(errs.ErrPackedOverflow, 0, "value <= declared max")
		}

		if bitCount+b <= 64 {
			bitBuf |= (v & mask(b)) << bitCount
			bitCount += b

			if bitCount == 64 {
				s.WriteUint64(bitBuf)
				bitBuf, bitCount = 0, 0
			}

			continue
		}

		firstBits := 64 - bitCount
		bitBuf |= (v & mask(firstBits)) << bitCount
		s.WriteUint64(bitBuf)

		bitBuf = v >> firstBits
		bitCount = b - firstBits
	}

	if bitCount > 0 {
		tailBytes := (bitCount + 7) / 8
		if tailBytes == 8 {
			s.WriteUint64(bitBuf)
		} else {
			s.WriteUint64LSB(bitBuf, tailBytes)
		}
	}

	return nil
}

// Decode unpacks n values of width b = Width(max) from r, mirroring
// Encode's word/tail framing exactly, including stitching a value's bits
// across a word boundary when b plus the bits remaining in the current
// window exceeds 64.
func Decode(r wirebuf.Source, n int, max uint64) ([]uint64, error) {
	b := Width(max)
	values := make([]uint64, n)

	if b == 0 {
		return values, nil
	}

	var window uint64
	winBits := 0
	left := Size(n, b)

	for i := 0; i < n; i++ {
		if winBits >= b {
			values[i] = window & mask(b)
			window >>= b
			winBits -= b

			continue
		}

		chunk, chunkBits, err := refill(r, left)
		if err != nil {
			return nil, err
		}

		left -= chunkBits / 8

		avail := winBits
		needed := b - avail
		lowPart := window & mask(avail)
		highPart := chunk & mask(needed)
		values[i] = lowPart | (highPart << avail)

		window = chunk >> needed
		winBits = chunkBits - needed
	}

	return values, nil
}

// refill reads the next window chunk out of the left packed bytes not yet
// consumed: a full 8-byte little-endian word when at least 8 of them
// remain, otherwise the remaining 1..7 bytes as the least-significant bytes
// of a uint64. Bytes past the packed data are never read.
func refill(r wirebuf.Source, left int) (chunk uint64, chunkBits int, err error) {
	if left >= 8 {
		chunk, err = r.ReadUint64()
		if err != nil {
			return 0, 0, err
		}

		return chunk, 64, nil
	}

	if left <= 0 {
		return 0, 0, errs.Wrap(errs.ErrShortInput, r.Offset(), "bit-packed tail bytes")
	}

	chunk, err = r.ReadUint64LSB(left)
	if err != nil {
		return 0, 0, err
	}

	return chunk, left * 8, nil
}

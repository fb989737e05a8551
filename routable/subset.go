package routable

import (
	"github.com/accordwire/accord/bitpack"
	"github.com/accordwire/accord/errs"
	"github.com/accordwire/accord/wirebuf"
)

// bitmapWidth is the declared max value handed to bitpack for
// subset-membership bitmaps: a max of 1 packs one bit per superset element.
const bitmapWidth = 1

// EncodeSubsetBitmap encodes subset as a membership bitmap over superset: a
// 1 bit for every superset element that appears in subset, in order. subset
// must be an order-preserving subsequence of superset under eq; violating
// that returns ErrSubsetMismatch rather than silently emitting a wrong
// bitmap.
func EncodeSubsetBitmap[T any](s wirebuf.Sink, superset, subset []T, eq func(a, b T) bool) error {
	bits := make([]uint64, len(superset))

	si := 0
	for i, t := range superset {
		if si < len(subset) && eq(t, subset[si]) {
			bits[i] = 1
			si++
		}
	}

	if si != len(subset) {
		return errs.Wrap(errs.ErrSubsetMismatch, 0, "subset ordered as a subsequence of superset")
	}

	return bitpack.Encode(s, bits, bitmapWidth)
}

// SizeSubsetBitmap returns the on-wire size of a membership bitmap over a
// superset of the given length.
func SizeSubsetBitmap(supersetLen int) int {
	return bitpack.Size(supersetLen, bitpack.Width(bitmapWidth))
}

// DecodeSubsetBitmap reads a membership bitmap over superset and returns
// the selected elements, preserving superset's order.
func DecodeSubsetBitmap[T any](r wirebuf.Source, superset []T) ([]T, error) {
	bits, err := bitpack.Decode(r, len(superset), bitmapWidth)
	if err != nil {
		return nil, err
	}

	out := make([]T, 0, len(superset))
	for i, b := range bits {
		if b == 1 {
			out = append(out, superset[i])
		}
	}

	return out, nil
}

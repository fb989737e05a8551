// Package segmentedmap implements the two concrete segmented maps the
// message codec carries: KnownMap and LatestDeps. Both share the same
// boundary-key skeleton (N+1 strictly-increasing RoutingKey boundaries
// delimiting N segments) and differ only in their per-segment value shape.
package segmentedmap

import (
	"github.com/accordwire/accord/domain"
	"github.com/accordwire/accord/errs"
	"github.com/accordwire/accord/keycodec"
	"github.com/accordwire/accord/varint"
	"github.com/accordwire/accord/wirebuf"
)

// KnownSegment is one segment's value in a KnownMap: either empty, or a
// (minOwned, max) pair of the Known domain value, collapsed to a single
// Known when minOwned == max.
type KnownSegment struct {
	Present  bool
	MinOwned domain.Known
	Max      domain.Known
}

const (
	knownKindEmpty    = 0
	knownKindEqual    = 1
	knownKindDistinct = 2
)

func sizeKnown(k domain.Known) int {
	return varint.SizeSvarint(k.MinOwnedEpoch) + k.Max.Size()
}

func writeKnown(s wirebuf.Sink, k domain.Known) {
	varint.WriteSvarint(s, k.MinOwnedEpoch)
	k.Max.Write(s)
}

func readKnown(r wirebuf.Source) (domain.Known, error) {
	epoch, err := varint.ReadSvarint(r)
	if err != nil {
		return domain.Known{}, err
	}

	max, err := domain.ReadStatus(r)
	if err != nil {
		return domain.Known{}, err
	}

	return domain.Known{MinOwnedEpoch: epoch, Max: max}, nil
}

// KnownMap is a sorted sequence of N+1 boundary keys delimiting N segments,
// each carrying an optional KnownSegment.
type KnownMap struct {
	Boundaries []keycodec.RoutingKey
	Segments   []KnownSegment
}

// Size returns the on-wire size of m.
func (m KnownMap) Size(scheme keycodec.Scheme) int {
	n := varint.SizeUvarint(uint64(len(m.Segments)))
	if len(m.Segments) == 0 {
		return n
	}

	for i, seg := range m.Segments {
		n += sizeBoundary(scheme, m.Boundaries[i]) + 1
		n += sizeKnownSegmentValue(seg)
	}

	n += sizeBoundary(scheme, m.Boundaries[len(m.Segments)])

	return n
}

func sizeKnownSegmentValue(seg KnownSegment) int {
	if !seg.Present {
		return 0
	}

	if seg.MinOwned == seg.Max {
		return sizeKnown(seg.MinOwned)
	}

	return sizeKnown(seg.MinOwned) + sizeKnown(seg.Max)
}

func sizeBoundary(scheme keycodec.Scheme, k keycodec.RoutingKey) int {
	return keycodec.Key{RoutingKey: k}.Size(scheme)
}

func writeBoundary(s wirebuf.Sink, scheme keycodec.Scheme, k keycodec.RoutingKey) {
	keycodec.Key{RoutingKey: k}.Write(s, scheme)
}

func readBoundary(r wirebuf.Source, scheme keycodec.Scheme) (keycodec.RoutingKey, error) {
	k, err := keycodec.ReadKey(r, scheme)
	return k.RoutingKey, err
}

// Write encodes m.
func (m KnownMap) Write(s wirebuf.Sink, scheme keycodec.Scheme) {
	count := len(m.Segments)
	varint.WriteUvarint(s, uint64(count))

	if count == 0 {
		return
	}

	for i, seg := range m.Segments {
		writeBoundary(s, scheme, m.Boundaries[i])

		if !seg.Present {
			s.WriteByte(knownKindEmpty)
			continue
		}

		if seg.MinOwned == seg.Max {
			s.WriteByte(knownKindEqual)
			writeKnown(s, seg.MinOwned)

			continue
		}

		s.WriteByte(knownKindDistinct)
		writeKnown(s, seg.MinOwned)
		writeKnown(s, seg.Max)
	}

	writeBoundary(s, scheme, m.Boundaries[count])
}

// ReadKnownMap decodes a KnownMap, validating that the boundary sequence is
// strictly increasing and carries exactly count+1 entries.
func ReadKnownMap(r wirebuf.Source, scheme keycodec.Scheme, less func(a, b keycodec.RoutingKey) bool) (KnownMap, error) {
	count, err := varint.ReadUvarint(r)
	if err != nil {
		return KnownMap{}, err
	}

	m := KnownMap{
		Boundaries: make([]keycodec.RoutingKey, 0, count+1),
		Segments:   make([]KnownSegment, 0, count),
	}

	if count == 0 {
		return m, nil
	}

	for i := uint64(0); i < count; i++ {
		boundary, err := readBoundary(r, scheme)
		if err != nil {
			return KnownMap{}, err
		}

		m.Boundaries = append(m.Boundaries, boundary)

		kind, err := varint.ReadFixed8(r)
		if err != nil {
			return KnownMap{}, err
		}

		seg, err := readKnownSegment(r, kind)
		if err != nil {
			return KnownMap{}, err
		}

		m.Segments = append(m.Segments, seg)
	}

	trailing, err := readBoundary(r, scheme)
	if err != nil {
		return KnownMap{}, err
	}

	m.Boundaries = append(m.Boundaries, trailing)

	if err := checkStrictlyIncreasing(r, m.Boundaries, less); err != nil {
		return KnownMap{}, err
	}

	return m, nil
}

func readKnownSegment(r wirebuf.Source, kind uint8) (KnownSegment, error) {
	switch kind {
	case knownKindEmpty:
		return KnownSegment{}, nil
	case knownKindEqual:
		k, err := readKnown(r)
		if err != nil {
			return KnownSegment{}, err
		}

		return KnownSegment{Present: true, MinOwned: k, Max: k}, nil
	case knownKindDistinct:
		minOwned, err := readKnown(r)
		if err != nil {
			return KnownSegment{}, err
		}

		max, err := readKnown(r)
		if err != nil {
			return KnownSegment{}, err
		}

		return KnownSegment{Present: true, MinOwned: minOwned, Max: max}, nil
	default:
		return KnownSegment{}, errs.Wrap(errs.ErrCorruptInput, r.Offset(), "known-segment kind in {0,1,2}")
	}
}

func checkStrictlyIncreasing(r wirebuf.Source, boundaries []keycodec.RoutingKey, less func(a, b keycodec.RoutingKey) bool) error {
	for i := 1; i < len(boundaries); i++ {
		if !less(boundaries[i-1], boundaries[i]) {
			return errs.Wrap(errs.ErrNonIncreasingBoundary, r.Offset(), "strictly increasing boundary sequence")
		}
	}

	return nil
}

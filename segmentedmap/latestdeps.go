package segmentedmap

import (
	"github.com/accordwire/accord/domain"
	"github.com/accordwire/accord/keycodec"
	"github.com/accordwire/accord/varint"
	"github.com/accordwire/accord/wirebuf"
)

// LatestDepsSegment is one segment's value in a LatestDeps map: empty, or a
// known-deps coverage marker plus the ballot and the (nullable) coordinated
// and local deps observed at that ballot.
type LatestDepsSegment struct {
	Present         bool
	Known           domain.KnownDeps
	Ballot          domain.Ballot
	CoordinatedDeps *domain.Deps
	LocalDeps       *domain.Deps
}

// LatestDeps is a sorted sequence of N+1 boundary keys delimiting N
// segments, each carrying an optional LatestDepsSegment.
type LatestDeps struct {
	Boundaries []keycodec.RoutingKey
	Segments   []LatestDepsSegment
}

func sizeOptionalDeps(d *domain.Deps) int {
	if d == nil {
		return 1
	}

	return 1 + d.Size()
}

func writeOptionalDeps(s wirebuf.Sink, d *domain.Deps) {
	if d == nil {
		s.WriteByte(0)
		return
	}

	s.WriteByte(1)
	d.Write(s)
}

func readOptionalDeps(r wirebuf.Source) (*domain.Deps, error) {
	present, err := varint.ReadBool(r)
	if err != nil {
		return nil, err
	}

	if !present {
		return nil, nil
	}

	d, err := domain.ReadDeps(r)
	if err != nil {
		return nil, err
	}

	return &d, nil
}

func sizeLatestDepsSegmentValue(seg LatestDepsSegment) int {
	// A null knownDeps marker collapses the whole segment to one byte.
	n := 1 // present flag for knownDeps
	if !seg.Present {
		return n
	}

	n += seg.Known.Size() + seg.Ballot.Size()
	n += sizeOptionalDeps(seg.CoordinatedDeps)
	n += sizeOptionalDeps(seg.LocalDeps)

	return n
}

func writeLatestDepsSegmentValue(s wirebuf.Sink, seg LatestDepsSegment) {
	varint.WriteBool(s, seg.Present)

	if !seg.Present {
		return
	}

	seg.Known.Write(s)
	seg.Ballot.Write(s)
	writeOptionalDeps(s, seg.CoordinatedDeps)
	writeOptionalDeps(s, seg.LocalDeps)
}

func readLatestDepsSegmentValue(r wirebuf.Source) (LatestDepsSegment, error) {
	present, err := varint.ReadBool(r)
	if err != nil {
		return LatestDepsSegment{}, err
	}

	if !present {
		return LatestDepsSegment{}, nil
	}

	known, err := domain.ReadKnownDeps(r)
	if err != nil {
		return LatestDepsSegment{}, err
	}

	ballot, err := domain.ReadBallot(r)
	if err != nil {
		return LatestDepsSegment{}, err
	}

	coordinated, err := readOptionalDeps(r)
	if err != nil {
		return LatestDepsSegment{}, err
	}

	local, err := readOptionalDeps(r)
	if err != nil {
		return LatestDepsSegment{}, err
	}

	return LatestDepsSegment{
		Present:         true,
		Known:           known,
		Ballot:          ballot,
		CoordinatedDeps: coordinated,
		LocalDeps:       local,
	}, nil
}

// Size returns the on-wire size of m.
func (m LatestDeps) Size(scheme keycodec.Scheme) int {
	n := varint.SizeUvarint(uint64(len(m.Segments)))
	if len(m.Segments) == 0 {
		return n
	}

	for i, seg := range m.Segments {
		n += sizeBoundary(scheme, m.Boundaries[i])
		n += sizeLatestDepsSegmentValue(seg)
	}

	n += sizeBoundary(scheme, m.Boundaries[len(m.Segments)])

	return n
}

// Write encodes m.
func (m LatestDeps) Write(s wirebuf.Sink, scheme keycodec.Scheme) {
	count := len(m.Segments)
	varint.WriteUvarint(s, uint64(count))

	if count == 0 {
		return
	}

	for i, seg := range m.Segments {
		writeBoundary(s, scheme, m.Boundaries[i])
		writeLatestDepsSegmentValue(s, seg)
	}

	writeBoundary(s, scheme, m.Boundaries[count])
}

// ReadLatestDeps decodes a LatestDeps map, validating the boundary
// sequence.
func ReadLatestDeps(r wirebuf.Source, scheme keycodec.Scheme, less func(a, b keycodec.RoutingKey) bool) (LatestDeps, error) {
	count, err := varint.ReadUvarint(r)
	if err != nil {
		return LatestDeps{}, err
	}

	m := LatestDeps{
		Boundaries: make([]keycodec.RoutingKey, 0, count+1),
		Segments:   make([]LatestDepsSegment, 0, count),
	}

	if count == 0 {
		return m, nil
	}

	for i := uint64(0); i < count; i++ {
		boundary, err := readBoundary(r, scheme)
		if err != nil {
			return LatestDeps{}, err
		}

		m.Boundaries = append(m.Boundaries, boundary)

		seg, err := readLatestDepsSegmentValue(r)
		if err != nil {
			return LatestDeps{}, err
		}

		m.Segments = append(m.Segments, seg)
	}

	trailing, err := readBoundary(r, scheme)
	if err != nil {
		return LatestDeps{}, err
	}

	m.Boundaries = append(m.Boundaries, trailing)

	if err := checkStrictlyIncreasing(r, m.Boundaries, less); err != nil {
		return LatestDeps{}, err
	}

	return m, nil
}

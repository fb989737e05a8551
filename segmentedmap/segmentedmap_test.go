package segmentedmap

import (
	"bytes"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/accordwire/accord/domain"
	"github.com/accordwire/accord/keycodec"
	"github.com/accordwire/accord/wirebuf"
)

type byteScheme struct{}

func (byteScheme) SizePrefix([]byte) int                    { return 1 }
func (byteScheme) WritePrefix(w wirebuf.Sink, prefix []byte) { w.WriteByte(prefix[0]) }
func (byteScheme) FixedBodyLength([]byte) int                { return -1 }

func (byteScheme) ReadPrefix(r wirebuf.Source) ([]byte, error) {
	b, err := r.ReadBytes(1)
	if err != nil {
		return nil, err
	}

	return append([]byte(nil), b...), nil
}

func boundaryLess(a, b keycodec.RoutingKey) bool {
	if c := bytes.Compare(a.Prefix, b.Prefix); c != 0 {
		return c < 0
	}

	return bytes.Compare(a.Body, b.Body) < 0
}

func key(prefix byte, body string) keycodec.RoutingKey {
	return keycodec.RoutingKey{Prefix: []byte{prefix}, Body: []byte(body)}
}

func TestKnownMapEmptyRoundTrip(t *testing.T) {
	scheme := byteScheme{}
	m := KnownMap{}

	sink := wirebuf.NewBufSink()
	defer sink.Release()
	m.Write(sink, scheme)
	require.Equal(t, m.Size(scheme), sink.Len())
	require.Equal(t, []byte{0x00}, sink.Bytes())

	src := wirebuf.NewByteSource(append([]byte(nil), sink.Bytes()...))
	got, err := ReadKnownMap(src, scheme, boundaryLess)
	require.NoError(t, err)
	require.Empty(t, got.Segments)
}

func TestKnownMapEqualPairCollapsesToSingleKind(t *testing.T) {
	scheme := byteScheme{}
	k := domain.Known{MinOwnedEpoch: 5, Max: domain.StatusCommitted}
	m := KnownMap{
		Boundaries: []keycodec.RoutingKey{key(1, "a"), key(1, "b")},
		Segments:   []KnownSegment{{Present: true, MinOwned: k, Max: k}},
	}

	sink := wirebuf.NewBufSink()
	defer sink.Release()
	m.Write(sink, scheme)
	require.Equal(t, m.Size(scheme), sink.Len())
	require.Equal(t, byte(knownKindEqual), sink.Bytes()[4])

	src := wirebuf.NewByteSource(append([]byte(nil), sink.Bytes()...))
	got, err := ReadKnownMap(src, scheme, boundaryLess)
	require.NoError(t, err)
	require.Len(t, got.Segments, 1)
	require.Equal(t, k, got.Segments[0].MinOwned)
	require.Equal(t, k, got.Segments[0].Max)
}

func TestKnownMapDistinctPairAndEmptySegment(t *testing.T) {
	scheme := byteScheme{}
	minOwned := domain.Known{MinOwnedEpoch: 1, Max: domain.StatusAccepted}
	max := domain.Known{MinOwnedEpoch: 1, Max: domain.StatusCommitted}

	m := KnownMap{
		Boundaries: []keycodec.RoutingKey{key(1, "a"), key(1, "b"), key(1, "c")},
		Segments: []KnownSegment{
			{Present: true, MinOwned: minOwned, Max: max},
			{Present: false},
		},
	}

	sink := wirebuf.NewBufSink()
	defer sink.Release()
	m.Write(sink, scheme)

	src := wirebuf.NewByteSource(append([]byte(nil), sink.Bytes()...))
	got, err := ReadKnownMap(src, scheme, boundaryLess)
	require.NoError(t, err)
	require.Len(t, got.Boundaries, 3)
	require.False(t, got.Segments[1].Present)
}

func TestKnownMapRejectsNonIncreasingBoundaries(t *testing.T) {
	scheme := byteScheme{}
	m := KnownMap{
		Boundaries: []keycodec.RoutingKey{key(1, "b"), key(1, "a")},
		Segments:   []KnownSegment{{Present: false}},
	}

	sink := wirebuf.NewBufSink()
	defer sink.Release()
	m.Write(sink, scheme)

	src := wirebuf.NewByteSource(append([]byte(nil), sink.Bytes()...))
	_, err := ReadKnownMap(src, scheme, boundaryLess)
	require.Error(t, err)
}

func TestLatestDepsRoundTrip(t *testing.T) {
	scheme := byteScheme{}
	ballot := domain.Ballot{HLC: domain.HLC{Epoch: 3, Logical: 1, Node: uuid.New()}}
	deps := domain.Deps{Opaque: domain.Opaque{Version: 1, Body: []byte{9, 9}}}

	m := LatestDeps{
		Boundaries: []keycodec.RoutingKey{key(1, "a"), key(1, "b")},
		Segments: []LatestDepsSegment{
			{
				Present:         true,
				Known:           domain.DepsFullyKnown,
				Ballot:          ballot,
				CoordinatedDeps: &deps,
				LocalDeps:       nil,
			},
		},
	}

	sink := wirebuf.NewBufSink()
	defer sink.Release()
	m.Write(sink, scheme)
	require.Equal(t, m.Size(scheme), sink.Len())

	src := wirebuf.NewByteSource(append([]byte(nil), sink.Bytes()...))
	got, err := ReadLatestDeps(src, scheme, boundaryLess)
	require.NoError(t, err)
	require.Len(t, got.Segments, 1)
	require.True(t, got.Segments[0].Present)
	require.Equal(t, domain.DepsFullyKnown, got.Segments[0].Known)
	require.NotNil(t, got.Segments[0].CoordinatedDeps)
	require.Nil(t, got.Segments[0].LocalDeps)
}

func TestLatestDepsEmptySegment(t *testing.T) {
	scheme := byteScheme{}
	m := LatestDeps{
		Boundaries: []keycodec.RoutingKey{key(1, "a"), key(1, "b")},
		Segments:   []LatestDepsSegment{{Present: false}},
	}

	sink := wirebuf.NewBufSink()
	defer sink.Release()
	m.Write(sink, scheme)

	src := wirebuf.NewByteSource(append([]byte(nil), sink.Bytes()...))
	got, err := ReadLatestDeps(src, scheme, boundaryLess)
	require.NoError(t, err)
	require.False(t, got.Segments[0].Present)
}

package bitpack

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/accordwire/accord/errs"
	"github.com/accordwire/accord/wirebuf"
)

func TestWidth(t *testing.T) {
	require.Equal(t, 0, Width(0))
	require.Equal(t, 1, Width(1))
	require.Equal(t, 2, Width(2))
	require.Equal(t, 2, Width(3))
	require.Equal(t, 3, Width(4))
	require.Equal(t, 8, Width(255))
	require.Equal(t, 9, Width(256))
}

func roundTrip(t *testing.T, values []uint64, max uint64) {
	t.Helper()

	sink := wirebuf.NewBufSink()
	defer sink.Release()

	require.NoError(t, Encode(sink, values, max))

	b := Width(max)
	require.Equal(t, Size(len(values), b), sink.Len())

	out := append([]byte(nil), sink.Bytes()...)
	src := wirebuf.NewByteSource(out)

	got, err := Decode(src, len(values), max)
	require.NoError(t, err)
	require.Equal(t, values, got)

	for _, v := range got {
		require.LessOrEqual(t, v, max)
	}
}

func TestRoundTripSmall(t *testing.T) {
	roundTrip(t, []uint64{0, 1, 1, 0, 1}, 1)
	roundTrip(t, []uint64{0, 2, 3, 1}, 3)
	roundTrip(t, []uint64{0, 100, 200, 255, 1}, 255)
}

func TestRoundTripCrossesWordBoundary(t *testing.T) {
	// width 5 over 20 values = 100 bits, crosses multiple 64-bit words and
	// leaves a non-byte-aligned tail.
	values := make([]uint64, 20)
	for i := range values {
		values[i] = uint64(i % 31)
	}
	roundTrip(t, values, 31)
}

func TestRoundTripWideValues(t *testing.T) {
	values := []uint64{0, 1 << 40, (1 << 41) - 1, 12345678901}
	roundTrip(t, values, (1<<41)-1)
}

func TestZeroWidthEmptyWire(t *testing.T) {
	sink := wirebuf.NewBufSink()
	defer sink.Release()

	require.NoError(t, Encode(sink, []uint64{0, 0, 0}, 0))
	require.Equal(t, 0, sink.Len())

	src := wirebuf.NewByteSource(nil)
	got, err := Decode(src, 3, 0)
	require.NoError(t, err)
	require.Equal(t, []uint64{0, 0, 0}, got)
}

func TestEncodeOverflow(t *testing.T) {
	sink := wirebuf.NewBufSink()
	defer sink.Release()

	err := Encode(sink, []uint64{0, 5}, 3)
	require.ErrorIs(t, err, errs.ErrPackedOverflow)
}

func TestEmptyCollection(t *testing.T) {
	roundTrip(t, []uint64{}, 10)
}

package varint

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/accordwire/accord/errs"
	"github.com/accordwire/accord/wirebuf"
)

func roundTripUvarint(t *testing.T, v uint64) []byte {
	t.Helper()

	sink := wirebuf.NewBufSink()
	defer sink.Release()

	WriteUvarint(sink, v)
	require.Equal(t, SizeUvarint(v), sink.Len())

	out := append([]byte(nil), sink.Bytes()...)
	src := wirebuf.NewByteSource(out)
	got, err := ReadUvarint(src)
	require.NoError(t, err)
	require.Equal(t, v, got)
	require.Equal(t, len(out), src.Offset())

	return out
}

func TestUvarintRoundTrip(t *testing.T) {
	values := []uint64{0, 1, 127, 128, 300, 16383, 16384, 1 << 32, ^uint64(0)}
	for _, v := range values {
		roundTripUvarint(t, v)
	}
}

func TestUvarintBoundarySizes(t *testing.T) {
	require.Equal(t, 1, SizeUvarint(0))
	require.Equal(t, 1, SizeUvarint(127))
	require.Equal(t, 2, SizeUvarint(128))
	require.Equal(t, 2, SizeUvarint(16383))
	require.Equal(t, 3, SizeUvarint(16384))
}

func TestUvarintMalformed(t *testing.T) {
	// 11 continuation bytes with the high bit always set never terminates
	// within the 10-byte limit for a 64-bit varint.
	data := make([]byte, 11)
	for i := range data {
		data[i] = 0xFF
	}
	src := wirebuf.NewByteSource(data)
	_, err := ReadUvarint(src)
	require.ErrorIs(t, err, errs.ErrMalformedVarInt)
}

func TestUvarintShortInput(t *testing.T) {
	data := []byte{0xFF, 0xFF}
	src := wirebuf.NewByteSource(data)
	_, err := ReadUvarint(src)
	require.ErrorIs(t, err, errs.ErrShortInput)
}

func TestSvarintZigzagRoundTrip(t *testing.T) {
	values := []int64{0, -1, 1, -2, 2, 1 << 40, -(1 << 40)}
	for _, v := range values {
		sink := wirebuf.NewBufSink()
		WriteSvarint(sink, v)
		require.Equal(t, SizeSvarint(v), sink.Len())

		out := append([]byte(nil), sink.Bytes()...)
		sink.Release()

		src := wirebuf.NewByteSource(out)
		got, err := ReadSvarint(src)
		require.NoError(t, err)
		require.Equal(t, v, got)
	}
}

func TestFixedWidths(t *testing.T) {
	sink := wirebuf.NewBufSink()
	defer sink.Release()

	WriteFixed8(sink, 0xAB)
	WriteFixed16(sink, 0xBEEF)
	WriteFixed32(sink, 0xDEADBEEF)
	WriteFixed64(sink, 0x0102030405060708)

	out := append([]byte(nil), sink.Bytes()...)
	src := wirebuf.NewByteSource(out)

	v8, err := ReadFixed8(src)
	require.NoError(t, err)
	require.Equal(t, uint8(0xAB), v8)

	v16, err := ReadFixed16(src)
	require.NoError(t, err)
	require.Equal(t, uint16(0xBEEF), v16)

	v32, err := ReadFixed32(src)
	require.NoError(t, err)
	require.Equal(t, uint32(0xDEADBEEF), v32)

	v64, err := ReadFixed64(src)
	require.NoError(t, err)
	require.Equal(t, uint64(0x0102030405060708), v64)
}

func TestBoolRoundTrip(t *testing.T) {
	for _, b := range []bool{true, false} {
		sink := wirebuf.NewBufSink()
		WriteBool(sink, b)
		out := append([]byte(nil), sink.Bytes()...)
		sink.Release()

		src := wirebuf.NewByteSource(out)
		got, err := ReadBool(src)
		require.NoError(t, err)
		require.Equal(t, b, got)
	}
}

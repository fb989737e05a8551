package enumcodec

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/accordwire/accord/errs"
	"github.com/accordwire/accord/wirebuf"
)

func TestOrdinalRoundTrip(t *testing.T) {
	sink := wirebuf.NewBufSink()
	defer sink.Release()

	WriteOrdinal(sink, 2)
	require.Equal(t, SizeOrdinal(2), sink.Len())

	src := wirebuf.NewByteSource(append([]byte(nil), sink.Bytes()...))
	got, err := ReadOrdinal(src, 5)
	require.NoError(t, err)
	require.Equal(t, 2, got)
}

func TestOrdinalOutOfRange(t *testing.T) {
	sink := wirebuf.NewBufSink()
	defer sink.Release()

	WriteOrdinal(sink, 5)

	src := wirebuf.NewByteSource(append([]byte(nil), sink.Bytes()...))
	_, err := ReadOrdinal(src, 5)
	require.ErrorIs(t, err, errs.ErrEnumOutOfRange)
}

func TestFlagWordBits(t *testing.T) {
	var f FlagWord
	f = f.Set(0)
	f = f.Set(3)
	require.True(t, f.Has(0))
	require.True(t, f.Has(3))
	require.False(t, f.Has(1))

	f = f.Clear(0)
	require.False(t, f.Has(0))
	require.True(t, f.Has(3))
}

func TestFlagWordRoundTrip(t *testing.T) {
	f := FlagWord(0).Set(1).Set(7)

	sink := wirebuf.NewBufSink()
	defer sink.Release()
	f.Write(sink)
	require.Equal(t, f.Size(), sink.Len())

	src := wirebuf.NewByteSource(append([]byte(nil), sink.Bytes()...))
	got, err := ReadFlagWord(src)
	require.NoError(t, err)
	require.Equal(t, f, got)
}

func TestErrorCodeForgiving(t *testing.T) {
	sink := wirebuf.NewBufSink()
	defer sink.Release()

	// 9999 is not a declared code.
	WriteErrorCode(sink, ErrorCode(9999))

	src := wirebuf.NewByteSource(append([]byte(nil), sink.Bytes()...))
	got, err := ReadErrorCode(src)
	require.NoError(t, err)
	require.Equal(t, CodeUnknown, got)
}

func TestErrorCodeKnownRoundTrip(t *testing.T) {
	sink := wirebuf.NewBufSink()
	defer sink.Release()

	WriteErrorCode(sink, CodeStaleEpoch)

	src := wirebuf.NewByteSource(append([]byte(nil), sink.Bytes()...))
	got, err := ReadErrorCode(src)
	require.NoError(t, err)
	require.Equal(t, CodeStaleEpoch, got)
}

func TestValidateErrorCodeRejectsNegative(t *testing.T) {
	require.ErrorIs(t, ValidateErrorCode(ErrorCode(-5)), errs.ErrInvalidErrorCode)
	require.NoError(t, ValidateErrorCode(CodeTimeout))
}

func TestErrorCodeStringDistinguishesUnknown(t *testing.T) {
	require.Equal(t, "StaleEpoch", CodeStaleEpoch.String())
	require.Equal(t, "Unknown", CodeUnknown.String())
	require.NotEqual(t, ErrorCode(4242).String(), ErrorCode(9999).String())
}

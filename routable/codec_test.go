package routable

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/accordwire/accord/errs"
	"github.com/accordwire/accord/keycodec"
	"github.com/accordwire/accord/wirebuf"
)

func TestNewCodecRequiresScheme(t *testing.T) {
	_, err := NewCodec()
	require.ErrorIs(t, err, errs.ErrNilScheme)
}

func TestCodecRoundTripDefaultsToAllVariants(t *testing.T) {
	scheme := fixedScheme{length: 4}
	c, err := NewCodec(WithScheme(scheme))
	require.NoError(t, err)

	v := Value{Variant: VariantRoutingKeys, Keys: []keycodec.RoutingKey{
		{Prefix: []byte{1}, Body: []byte{1, 2, 3, 4}},
	}}

	sink := wirebuf.NewBufSink()
	defer sink.Release()
	require.NoError(t, c.Encode(sink, v))
	require.Equal(t, c.Size(v), sink.Len())

	src := wirebuf.NewByteSource(append([]byte(nil), sink.Bytes()...))
	got, err := c.Decode(src)
	require.NoError(t, err)
	require.Equal(t, v.Variant, got.Variant)
}

func TestCodecWithPermittedRejectsOtherVariants(t *testing.T) {
	scheme := fixedScheme{length: 4}
	c, err := NewCodec(WithScheme(scheme), WithPermitted(VariantFullKeyRoute))
	require.NoError(t, err)

	v := Value{Variant: VariantRoutingKeys, Keys: []keycodec.RoutingKey{
		{Prefix: []byte{1}, Body: []byte{1, 2, 3, 4}},
	}}

	sink := wirebuf.NewBufSink()
	defer sink.Release()
	require.NoError(t, Encode(sink, scheme, AllVariants(), v))

	src := wirebuf.NewByteSource(append([]byte(nil), sink.Bytes()...))
	_, err = c.Decode(src)
	require.ErrorIs(t, err, errs.ErrUnexpectedVariant)
}

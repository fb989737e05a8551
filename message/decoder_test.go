package message

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/accordwire/accord/errs"
	"github.com/accordwire/accord/segmentedmap"
	"github.com/accordwire/accord/wirebuf"
)

func TestNewDecoderRequiresScheme(t *testing.T) {
	_, err := NewDecoder()
	require.ErrorIs(t, err, errs.ErrNilScheme)
}

func TestDecoderDecodeEnvelope(t *testing.T) {
	scheme := fixedScheme{length: 4}
	d, err := NewDecoder(WithScheme(scheme))
	require.NoError(t, err)

	e := Envelope{TxnID: txnID(1, 1), WaitForEpoch: 2, MinEpoch: 2}
	sink := wirebuf.NewBufSink()
	defer sink.Release()
	require.NoError(t, e.Write(sink, scheme))

	src := wirebuf.NewByteSource(append([]byte(nil), sink.Bytes()...))
	got, err := d.DecodeEnvelope(src)
	require.NoError(t, err)
	require.Equal(t, e.WaitForEpoch, got.WaitForEpoch)
}

func TestDecoderBeginRecoveryReplyRequiresBoundaryLess(t *testing.T) {
	scheme := fixedScheme{length: 4}
	d, err := NewDecoder(WithScheme(scheme))
	require.NoError(t, err)

	reply := BeginRecoveryReply{Kind: BeginRecoveryReject}
	sink := wirebuf.NewBufSink()
	defer sink.Release()
	require.NoError(t, reply.Write(sink, scheme))

	src := wirebuf.NewByteSource(append([]byte(nil), sink.Bytes()...))
	_, err = d.DecodeBeginRecoveryReply(src)
	require.ErrorIs(t, err, errs.ErrNilBoundaryLess)
}

func TestDecoderWithBoundaryLessDecodesGetLatestDepsReply(t *testing.T) {
	scheme := fixedScheme{length: 4}
	d, err := NewDecoder(WithScheme(scheme), WithBoundaryLess(boundaryLess))
	require.NoError(t, err)

	reply := GetLatestDepsReply{LatestDeps: segmentedmap.LatestDeps{}}
	sink := wirebuf.NewBufSink()
	defer sink.Release()
	reply.Write(sink, scheme)

	src := wirebuf.NewByteSource(append([]byte(nil), sink.Bytes()...))
	_, err = d.DecodeGetLatestDepsReply(src)
	require.NoError(t, err)
}

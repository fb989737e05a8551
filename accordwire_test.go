package accord

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/accordwire/accord/domain"
	"github.com/accordwire/accord/errs"
	"github.com/accordwire/accord/keycodec"
	"github.com/accordwire/accord/message"
	"github.com/accordwire/accord/routable"
	"github.com/accordwire/accord/wirebuf"
)

type fixedScheme struct{ length int }

func (s fixedScheme) SizePrefix([]byte) int                     { return 1 }
func (s fixedScheme) WritePrefix(w wirebuf.Sink, prefix []byte) { w.WriteByte(prefix[0]) }
func (s fixedScheme) FixedBodyLength([]byte) int                { return s.length }

func (s fixedScheme) ReadPrefix(r wirebuf.Source) ([]byte, error) {
	b, err := r.ReadBytes(1)
	if err != nil {
		return nil, err
	}

	return append([]byte(nil), b...), nil
}

func boundaryLess(a, b keycodec.RoutingKey) bool {
	return string(a.Prefix)+string(a.Body) < string(b.Prefix)+string(b.Body)
}

func TestNewRequiresScheme(t *testing.T) {
	_, err := New()
	require.ErrorIs(t, err, errs.ErrNilScheme)
}

func TestEncodeDecodeAcceptRoundTrip(t *testing.T) {
	scheme := fixedScheme{length: 4}
	c, err := New(WithScheme(scheme))
	require.NoError(t, err)

	id := domain.TxnId{HLC: domain.HLC{Epoch: 4, Logical: 0, Node: uuid.New()}}
	env := message.Envelope{
		TxnID: id,
		Scope: routable.Value{Variant: routable.VariantRoutingKeys, Keys: []keycodec.RoutingKey{
			{Prefix: []byte{1}, Body: []byte{1, 2, 3, 4}},
		}},
		WaitForEpoch: 1,
		MinEpoch:     2,
	}
	req := message.AcceptRequest{
		Kind:        message.AcceptKindSlow,
		Ballot:      domain.Ballot{HLC: domain.HLC{Epoch: 1, Logical: 0, Node: uuid.New()}},
		TxnID:       id,
		ExecuteAt:   domain.ExecuteAt{Timestamp: domain.Timestamp{HLC: domain.HLC{Epoch: 4, Logical: 1, Node: id.Node}}},
		PartialDeps: domain.PartialDeps{Opaque: domain.Opaque{Version: 1, Body: []byte("d")}},
	}

	sink := wirebuf.NewBufSink()
	defer sink.Release()
	require.NoError(t, c.EncodeAccept(sink, env, req))
	require.Equal(t, c.SizeAccept(env, req), sink.Len())

	src := wirebuf.NewByteSource(append([]byte(nil), sink.Bytes()...))
	gotEnv, gotReq, err := c.DecodeAccept(src)
	require.NoError(t, err)
	require.Equal(t, env.WaitForEpoch, gotEnv.WaitForEpoch)
	require.Equal(t, req.Kind, gotReq.Kind)
}

func TestDecodeBeginRecoveryReplyRequiresBoundaryLess(t *testing.T) {
	scheme := fixedScheme{length: 4}
	c, err := New(WithScheme(scheme))
	require.NoError(t, err)

	reply := message.BeginRecoveryReply{Kind: message.BeginRecoveryTimeout}
	sink := wirebuf.NewBufSink()
	defer sink.Release()
	require.NoError(t, reply.Write(sink, scheme))

	src := wirebuf.NewByteSource(append([]byte(nil), sink.Bytes()...))
	_, err = c.DecodeBeginRecoveryReply(src)
	require.ErrorIs(t, err, errs.ErrNilBoundaryLess)

	c2, err := New(WithScheme(scheme), WithBoundaryLess(boundaryLess))
	require.NoError(t, err)

	src2 := wirebuf.NewByteSource(append([]byte(nil), sink.Bytes()...))
	got, err := c2.DecodeBeginRecoveryReply(src2)
	require.NoError(t, err)
	require.Equal(t, message.BeginRecoveryTimeout, got.Kind)
}

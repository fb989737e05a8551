package message

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/accordwire/accord/domain"
	"github.com/accordwire/accord/enumcodec"
	"github.com/accordwire/accord/keycodec"
	"github.com/accordwire/accord/routable"
	"github.com/accordwire/accord/segmentedmap"
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
	if c := compareBytes(a.Prefix, b.Prefix); c != 0 {
		return c < 0
	}

	return compareBytes(a.Body, b.Body) < 0
}

func compareBytes(a, b []byte) int {
	for i := 0; i < len(a) && i < len(b); i++ {
		if a[i] != b[i] {
			if a[i] < b[i] {
				return -1
			}

			return 1
		}
	}

	switch {
	case len(a) < len(b):
		return -1
	case len(a) > len(b):
		return 1
	default:
		return 0
	}
}

func txnID(epoch, logical int64) domain.TxnId {
	return domain.TxnId{HLC: domain.HLC{Epoch: epoch, Logical: logical, Node: uuid.New()}}
}

func opaque(version uint8, body string) domain.Opaque {
	return domain.Opaque{Version: version, Body: []byte(body)}
}

func TestEnvelopeRoundTrip(t *testing.T) {
	scheme := fixedScheme{length: 4}
	scope := routable.Value{Variant: routable.VariantRoutingKeys, Keys: []keycodec.RoutingKey{
		{Prefix: []byte{1}, Body: []byte{1, 2, 3, 4}},
	}}

	e := Envelope{TxnID: txnID(10, 1), Scope: scope, WaitForEpoch: 5, MinEpoch: 8}

	sink := wirebuf.NewBufSink()
	defer sink.Release()
	require.NoError(t, e.Write(sink, scheme))
	require.Equal(t, e.Size(scheme), sink.Len())

	src := wirebuf.NewByteSource(append([]byte(nil), sink.Bytes()...))
	got, err := ReadEnvelope(src, scheme)
	require.NoError(t, err)
	require.Equal(t, e.WaitForEpoch, got.WaitForEpoch)
	require.Equal(t, e.MinEpoch, got.MinEpoch)
	require.True(t, e.TxnID.Equal(got.TxnID.HLC))
}

func TestAcceptRequestRoundTrip(t *testing.T) {
	id := txnID(3, 0)
	ea := domain.ExecuteAt{Timestamp: domain.Timestamp{HLC: domain.HLC{Epoch: 3, Logical: 7, Node: id.Node}}}

	req := AcceptRequest{
		Kind:            AcceptKindFast,
		IsPartialAccept: true,
		Ballot:          domain.Ballot{HLC: domain.HLC{Epoch: 1, Logical: 1, Node: uuid.New()}},
		TxnID:           id,
		ExecuteAt:       ea,
		PartialDeps:     domain.PartialDeps{opaque(1, "deps")},
	}

	sink := wirebuf.NewBufSink()
	defer sink.Release()
	req.Write(sink)
	require.Equal(t, req.Size(), sink.Len())

	src := wirebuf.NewByteSource(append([]byte(nil), sink.Bytes()...))
	got, err := ReadAcceptRequest(src, id)
	require.NoError(t, err)
	require.Equal(t, req.Kind, got.Kind)
	require.Equal(t, req.IsPartialAccept, got.IsPartialAccept)
	require.True(t, req.ExecuteAt.Equal(got.ExecuteAt.HLC))
	require.Equal(t, req.PartialDeps.Body, got.PartialDeps.Body)
}

func TestAcceptReplyRoundTripAllFieldsPresent(t *testing.T) {
	scheme := fixedScheme{length: 4}
	ballot := domain.Ballot{HLC: domain.HLC{Epoch: 2, Logical: 0, Node: uuid.New()}}
	ea := domain.ExecuteAt{Timestamp: domain.Timestamp{HLC: domain.HLC{Epoch: 9, Logical: 1, Node: uuid.New()}}}
	deps := domain.Deps{opaque(1, "d")}
	flags := uint64(42)
	successful := routable.Value{Variant: routable.VariantRoutingKeys, Keys: []keycodec.RoutingKey{
		{Prefix: []byte{1}, Body: []byte{0, 0, 0, 0}},
	}}

	reply := AcceptReply{
		Outcome:            1,
		SupersededBy:       &ballot,
		CommittedExecuteAt: &ea,
		Successful:         &successful,
		Deps:               &deps,
		ExecuteFlags:       &flags,
	}

	sink := wirebuf.NewBufSink()
	defer sink.Release()
	require.NoError(t, reply.Write(sink, scheme))
	require.Equal(t, reply.Size(scheme), sink.Len())

	src := wirebuf.NewByteSource(append([]byte(nil), sink.Bytes()...))
	got, err := ReadAcceptReply(src, scheme)
	require.NoError(t, err)
	require.Equal(t, reply.Outcome, got.Outcome)
	require.NotNil(t, got.SupersededBy)
	require.NotNil(t, got.CommittedExecuteAt)
	require.NotNil(t, got.Successful)
	require.NotNil(t, got.Deps)
	require.NotNil(t, got.ExecuteFlags)
	require.Equal(t, *reply.ExecuteFlags, *got.ExecuteFlags)
}

func TestAcceptReplyRoundTripAllFieldsAbsent(t *testing.T) {
	scheme := fixedScheme{length: 4}
	reply := AcceptReply{Outcome: 2}

	sink := wirebuf.NewBufSink()
	defer sink.Release()
	require.NoError(t, reply.Write(sink, scheme))
	require.Equal(t, 1, sink.Len())

	src := wirebuf.NewByteSource(append([]byte(nil), sink.Bytes()...))
	got, err := ReadAcceptReply(src, scheme)
	require.NoError(t, err)
	require.Nil(t, got.SupersededBy)
	require.Nil(t, got.CommittedExecuteAt)
	require.Nil(t, got.Successful)
	require.Nil(t, got.Deps)
	require.Nil(t, got.ExecuteFlags)
}

func TestNotAcceptRoundTrip(t *testing.T) {
	scheme := fixedScheme{length: 4}
	n := NotAccept{
		Status: domain.StatusAccepted,
		Ballot: domain.Ballot{HLC: domain.HLC{Epoch: 1, Logical: 0, Node: uuid.New()}},
		TxnID:  txnID(5, 0),
		Participants: routable.Value{Variant: routable.VariantRoutingKeys, Keys: []keycodec.RoutingKey{
			{Prefix: []byte{1}, Body: []byte{1, 1, 1, 1}},
		}},
	}

	sink := wirebuf.NewBufSink()
	defer sink.Release()
	require.NoError(t, n.Write(sink, scheme))
	require.Equal(t, n.Size(scheme), sink.Len())

	src := wirebuf.NewByteSource(append([]byte(nil), sink.Bytes()...))
	got, err := ReadNotAccept(src, scheme)
	require.NoError(t, err)
	require.Equal(t, n.Status, got.Status)
}

func TestCheckStatusReplyNack(t *testing.T) {
	scheme := fixedScheme{length: 4}
	reply := CheckStatusReply{Kind: CheckStatusNack}

	sink := wirebuf.NewBufSink()
	defer sink.Release()
	require.NoError(t, reply.Write(sink, scheme))
	require.Equal(t, []byte{byte(CheckStatusNack)}, sink.Bytes())

	src := wirebuf.NewByteSource(append([]byte(nil), sink.Bytes()...))
	got, err := ReadCheckStatusReply(src, scheme)
	require.NoError(t, err)
	require.Equal(t, CheckStatusNack, got.Kind)
}

func TestCheckStatusReplyOK(t *testing.T) {
	scheme := fixedScheme{length: 4}
	reply := CheckStatusReply{
		Kind:       CheckStatusOK,
		TxnID:      txnID(1, 1),
		Status:     domain.StatusCommitted,
		Durability: domain.DurabilityMajorityDurable,
	}

	sink := wirebuf.NewBufSink()
	defer sink.Release()
	require.NoError(t, reply.Write(sink, scheme))
	require.Equal(t, reply.Size(scheme), sink.Len())

	src := wirebuf.NewByteSource(append([]byte(nil), sink.Bytes()...))
	got, err := ReadCheckStatusReply(src, scheme)
	require.NoError(t, err)
	require.Equal(t, reply.Status, got.Status)
	require.Nil(t, got.ExecuteAt)
}

func TestCheckStatusReplyFull(t *testing.T) {
	scheme := fixedScheme{length: 4}
	ea := domain.ExecuteAt{Timestamp: domain.Timestamp{HLC: domain.HLC{Epoch: 2, Logical: 3, Node: uuid.New()}}}
	deps := domain.Deps{opaque(1, "full")}
	participants := routable.Value{Variant: routable.VariantRoutingKeys, Keys: []keycodec.RoutingKey{
		{Prefix: []byte{1}, Body: []byte{2, 2, 2, 2}},
	}}

	reply := CheckStatusReply{
		Kind:         CheckStatusFull,
		TxnID:        txnID(4, 2),
		Status:       domain.StatusApplied,
		Durability:   domain.DurabilityUniversalDurable,
		ExecuteAt:    &ea,
		Deps:         &deps,
		Participants: &participants,
	}

	sink := wirebuf.NewBufSink()
	defer sink.Release()
	require.NoError(t, reply.Write(sink, scheme))
	require.Equal(t, reply.Size(scheme), sink.Len())

	src := wirebuf.NewByteSource(append([]byte(nil), sink.Bytes()...))
	got, err := ReadCheckStatusReply(src, scheme)
	require.NoError(t, err)
	require.NotNil(t, got.ExecuteAt)
	require.NotNil(t, got.Deps)
	require.NotNil(t, got.Participants)
}

func TestCheckStatusReplyRejectsUnknownKind(t *testing.T) {
	scheme := fixedScheme{length: 4}
	src := wirebuf.NewByteSource([]byte{0x7F})

	_, err := ReadCheckStatusReply(src, scheme)
	require.Error(t, err)
}

func TestBeginRecoveryRequestRoundTripNoOptionals(t *testing.T) {
	scheme := fixedScheme{length: 4}
	id := txnID(10, 0)

	req := BeginRecoveryRequest{
		PartialTxn: domain.PartialTxn{opaque(1, "txn")},
		Ballot:     domain.Ballot{HLC: domain.HLC{Epoch: 1, Logical: 0, Node: uuid.New()}},
		TxnID:      id,
	}

	sink := wirebuf.NewBufSink()
	defer sink.Release()
	require.NoError(t, req.Write(sink, scheme))
	require.Equal(t, req.Size(scheme), sink.Len())

	src := wirebuf.NewByteSource(append([]byte(nil), sink.Bytes()...))
	got, err := ReadBeginRecoveryRequest(src, scheme, id)
	require.NoError(t, err)
	require.False(t, got.HasExecuteAtEpoch)
	require.Nil(t, got.Route)
	require.Equal(t, id.Epoch, got.ExecuteAtEpoch)
}

func TestBeginRecoveryRequestRoundTripWithOptionals(t *testing.T) {
	scheme := fixedScheme{length: 4}
	id := txnID(10, 0)
	home := keycodec.Key{RoutingKey: keycodec.RoutingKey{Prefix: []byte{1}, Body: []byte{9, 9, 9, 9}}}
	route := routable.Value{Variant: routable.VariantFullKeyRoute, HomeKey: home, Keys: []keycodec.RoutingKey{home.RoutingKey}}

	req := BeginRecoveryRequest{
		PartialTxn:        domain.PartialTxn{opaque(1, "txn")},
		Ballot:            domain.Ballot{HLC: domain.HLC{Epoch: 1, Logical: 0, Node: uuid.New()}},
		TxnID:             id,
		Route:             &route,
		HasExecuteAtEpoch: true,
		ExecuteAtEpoch:    id.Epoch + 5,
		IsFastPathDecided: true,
	}

	sink := wirebuf.NewBufSink()
	defer sink.Release()
	require.NoError(t, req.Write(sink, scheme))
	require.Equal(t, req.Size(scheme), sink.Len())

	src := wirebuf.NewByteSource(append([]byte(nil), sink.Bytes()...))
	got, err := ReadBeginRecoveryRequest(src, scheme, id)
	require.NoError(t, err)
	require.True(t, got.HasExecuteAtEpoch)
	require.Equal(t, id.Epoch+5, got.ExecuteAtEpoch)
	require.True(t, got.IsFastPathDecided)
	require.NotNil(t, got.Route)
}

func TestBeginRecoveryReplyRejectAndTimeoutAreBareKindBytes(t *testing.T) {
	scheme := fixedScheme{length: 4}

	for _, kind := range []BeginRecoveryReplyKind{BeginRecoveryReject, BeginRecoveryTimeout} {
		reply := BeginRecoveryReply{Kind: kind}

		sink := wirebuf.NewBufSink()
		require.NoError(t, reply.Write(sink, scheme))
		require.Equal(t, []byte{byte(kind)}, sink.Bytes())

		src := wirebuf.NewByteSource(append([]byte(nil), sink.Bytes()...))
		got, err := ReadBeginRecoveryReply(src, scheme, boundaryLess)
		require.NoError(t, err)
		require.Equal(t, kind, got.Kind)
		sink.Release()
	}
}

func TestBeginRecoveryReplyOkSynthesizesAppliedMarker(t *testing.T) {
	scheme := fixedScheme{length: 4}

	for _, status := range []domain.Status{domain.StatusPreApplied, domain.StatusApplied, domain.StatusTruncated} {
		reply := BeginRecoveryReply{
			Kind:       BeginRecoveryOk,
			TxnID:      txnID(1, 1),
			Status:     status,
			Ballot:     domain.Ballot{HLC: domain.HLC{Epoch: 1, Logical: 0, Node: uuid.New()}},
			LatestDeps: segmentedmap.LatestDeps{},
			Deps:       domain.Deps{opaque(1, "d")},
		}

		sink := wirebuf.NewBufSink()
		require.NoError(t, reply.Write(sink, scheme))
		require.Equal(t, reply.Size(scheme), sink.Len())

		src := wirebuf.NewByteSource(append([]byte(nil), sink.Bytes()...))
		got, err := ReadBeginRecoveryReply(src, scheme, boundaryLess)
		require.NoError(t, err)
		require.True(t, got.Applied, "status %v should synthesize Applied", status)
		sink.Release()
	}

	reply := BeginRecoveryReply{
		Kind:   BeginRecoveryOk,
		TxnID:  txnID(1, 1),
		Status: domain.StatusAccepted,
		Ballot: domain.Ballot{HLC: domain.HLC{Epoch: 1, Logical: 0, Node: uuid.New()}},
		Deps:   domain.Deps{opaque(1, "d")},
	}

	sink := wirebuf.NewBufSink()
	defer sink.Release()
	require.NoError(t, reply.Write(sink, scheme))

	src := wirebuf.NewByteSource(append([]byte(nil), sink.Bytes()...))
	got, err := ReadBeginRecoveryReply(src, scheme, boundaryLess)
	require.NoError(t, err)
	require.False(t, got.Applied)
}

func TestInformDurableRoundTripWithPrecedingMinEpoch(t *testing.T) {
	waitForEpoch := int64(10)
	d := InformDurable{
		MinEpoch:     5,
		MaxEpoch:     15,
		WaitForEpoch: waitForEpoch,
		ExecuteAt:    domain.ExecuteAt{Timestamp: domain.Timestamp{HLC: domain.HLC{Epoch: 11, Logical: 0, Node: uuid.New()}}},
		Durability:   domain.DurabilityMajorityDurable,
	}

	sink := wirebuf.NewBufSink()
	defer sink.Release()
	d.Write(sink)
	require.Equal(t, d.Size(), sink.Len())

	src := wirebuf.NewByteSource(append([]byte(nil), sink.Bytes()...))
	got, err := ReadInformDurable(src, waitForEpoch)
	require.NoError(t, err)
	require.Equal(t, d.MinEpoch, got.MinEpoch)
	require.Equal(t, d.MaxEpoch, got.MaxEpoch)
}

func TestGetLatestDepsRequestEncodesToNothing(t *testing.T) {
	sink := wirebuf.NewBufSink()
	defer sink.Release()
	GetLatestDepsRequest{}.Write(sink)
	require.Equal(t, 0, sink.Len())
}

func TestGetLatestDepsReplyRoundTrip(t *testing.T) {
	scheme := fixedScheme{length: 4}
	reply := GetLatestDepsReply{LatestDeps: segmentedmap.LatestDeps{}}

	sink := wirebuf.NewBufSink()
	defer sink.Release()
	reply.Write(sink, scheme)
	require.Equal(t, reply.Size(scheme), sink.Len())

	src := wirebuf.NewByteSource(append([]byte(nil), sink.Bytes()...))
	_, err := ReadGetLatestDepsReply(src, scheme, boundaryLess)
	require.NoError(t, err)
}

func TestGetEphemeralReadDepsReplyAbsent(t *testing.T) {
	reply := GetEphemeralReadDepsReply{LatestEpoch: 7, Present: false}

	sink := wirebuf.NewBufSink()
	defer sink.Release()
	reply.Write(sink)
	require.Equal(t, reply.Size(), sink.Len())

	src := wirebuf.NewByteSource(append([]byte(nil), sink.Bytes()...))
	got, err := ReadGetEphemeralReadDepsReply(src)
	require.NoError(t, err)
	require.Equal(t, uint64(7), got.LatestEpoch)
	require.False(t, got.Present)
}

func TestGetEphemeralReadDepsReplyPresent(t *testing.T) {
	flags := enumcodec.FlagWord(0).Set(0).Set(2)
	reply := GetEphemeralReadDepsReply{
		LatestEpoch: 3,
		Present:     true,
		Deps:        domain.Deps{opaque(1, "erd")},
		Flags:       flags,
	}

	sink := wirebuf.NewBufSink()
	defer sink.Release()
	reply.Write(sink)
	require.Equal(t, reply.Size(), sink.Len())

	src := wirebuf.NewByteSource(append([]byte(nil), sink.Bytes()...))
	got, err := ReadGetEphemeralReadDepsReply(src)
	require.NoError(t, err)
	require.True(t, got.Present)
	require.Equal(t, flags, got.Flags)
}

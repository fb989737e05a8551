package message

import (
	"github.com/accordwire/accord/domain"
	"github.com/accordwire/accord/errs"
	"github.com/accordwire/accord/keycodec"
	"github.com/accordwire/accord/routable"
	"github.com/accordwire/accord/segmentedmap"
	"github.com/accordwire/accord/varint"
	"github.com/accordwire/accord/wirebuf"
)

const (
	beginRecoveryFlagHasRoute          = 0x1
	beginRecoveryFlagHasExecuteAtEpoch = 0x2
	beginRecoveryFlagFastPathDecided   = 0x4
)

// FullRoutePermitted restricts a BeginRecovery request's route field to the
// two full-route variants.
var FullRoutePermitted = routable.NewPermittedSet(routable.VariantFullKeyRoute, routable.VariantFullRangeRoute)

// BeginRecoveryRequest is the BeginRecovery request body.
type BeginRecoveryRequest struct {
	PartialTxn domain.PartialTxn
	Ballot     domain.Ballot
	TxnID      domain.TxnId

	Route             *routable.Value // present iff HAS_ROUTE
	ExecuteAtEpoch    int64           // decodes as TxnID.Epoch when !HasExecuteAtEpoch
	HasExecuteAtEpoch bool
	IsFastPathDecided bool
}

func (b BeginRecoveryRequest) flags() uint64 {
	var f uint64
	if b.Route != nil {
		f |= beginRecoveryFlagHasRoute
	}

	if b.HasExecuteAtEpoch {
		f |= beginRecoveryFlagHasExecuteAtEpoch
	}

	if b.IsFastPathDecided {
		f |= beginRecoveryFlagFastPathDecided
	}

	return f
}

// Size returns the on-wire size of b.
func (b BeginRecoveryRequest) Size(scheme keycodec.Scheme) int {
	n := b.PartialTxn.Size() + b.Ballot.Size() + varint.SizeUvarint(b.flags())

	if b.Route != nil {
		n += routable.Size(scheme, *b.Route)
	}

	if b.HasExecuteAtEpoch {
		n += varint.SizeUvarint(uint64(b.ExecuteAtEpoch - b.TxnID.Epoch))
	}

	return n
}

// Write encodes b.
func (b BeginRecoveryRequest) Write(s wirebuf.Sink, scheme keycodec.Scheme) error {
	b.PartialTxn.Write(s)
	b.Ballot.Write(s)
	varint.WriteUvarint(s, b.flags())

	if b.Route != nil {
		if err := routable.Encode(s, scheme, FullRoutePermitted, *b.Route); err != nil {
			return err
		}
	}

	if b.HasExecuteAtEpoch {
		varint.WriteUvarint(s, uint64(b.ExecuteAtEpoch-b.TxnID.Epoch))
	}

	return nil
}

// ReadBeginRecoveryRequest decodes a BeginRecoveryRequest body. txnID comes
// from the enclosing envelope, since executeAtOrTxnIdEpoch is reconstructed
// relative to txnID.Epoch.
func ReadBeginRecoveryRequest(r wirebuf.Source, scheme keycodec.Scheme, txnID domain.TxnId) (BeginRecoveryRequest, error) {
	partialTxn, err := domain.ReadPartialTxn(r)
	if err != nil {
		return BeginRecoveryRequest{}, err
	}

	ballot, err := domain.ReadBallot(r)
	if err != nil {
		return BeginRecoveryRequest{}, err
	}

	flags, err := varint.ReadUvarint(r)
	if err != nil {
		return BeginRecoveryRequest{}, err
	}

	req := BeginRecoveryRequest{
		PartialTxn:        partialTxn,
		Ballot:            ballot,
		TxnID:             txnID,
		IsFastPathDecided: flags&beginRecoveryFlagFastPathDecided != 0,
	}

	if flags&beginRecoveryFlagHasRoute != 0 {
		route, err := routable.Decode(r, scheme, FullRoutePermitted)
		if err != nil {
			return BeginRecoveryRequest{}, err
		}

		req.Route = &route
	}

	req.ExecuteAtEpoch = txnID.Epoch

	if flags&beginRecoveryFlagHasExecuteAtEpoch != 0 {
		delta, err := varint.ReadUvarint(r)
		if err != nil {
			return BeginRecoveryRequest{}, err
		}

		req.HasExecuteAtEpoch = true
		req.ExecuteAtEpoch = txnID.Epoch + int64(delta)
	}

	return req, nil
}

// BeginRecoveryReplyKind discriminates the BeginRecovery reply sum type.
type BeginRecoveryReplyKind byte

const (
	BeginRecoveryOk BeginRecoveryReplyKind = iota
	BeginRecoveryReject
	BeginRecoveryTimeout
)

// BeginRecoveryReply is a BeginRecovery reply. Only the Ok variant carries a
// body; Reject and Timeout are bare kind bytes.
type BeginRecoveryReply struct {
	Kind BeginRecoveryReplyKind

	// Ok-only fields.
	TxnID        domain.TxnId
	Status       domain.Status
	Ballot       domain.Ballot
	ExecuteAt    *domain.ExecuteAt
	LatestDeps   segmentedmap.LatestDeps
	Deps         domain.Deps
	EarlierDeps  domain.Deps
	NakedDeps    domain.Deps
	Supersedes   bool
	Rejects      bool
	Participants *routable.Value
	Writes       *domain.Writes

	// Applied is synthesized on decode, never transmitted, when Status is
	// one of PreApplied, Applied, or Truncated.
	Applied bool
}

// Size returns the on-wire size of b.
func (b BeginRecoveryReply) Size(scheme keycodec.Scheme) int {
	n := 1
	if b.Kind != BeginRecoveryOk {
		return n
	}

	n += b.TxnID.Size() + b.Status.Size() + b.Ballot.Size()
	n += sizeOptionalExecuteAt(b.ExecuteAt)
	n += b.LatestDeps.Size(scheme)
	n += b.Deps.Size() + b.EarlierDeps.Size() + b.NakedDeps.Size()
	n += 1 + 1 // Supersedes, Rejects booleans
	n += sizeOptionalParticipants(scheme, b.Participants)
	n += sizeOptionalWrites(b.Writes)

	return n
}

// Write encodes b.
func (b BeginRecoveryReply) Write(s wirebuf.Sink, scheme keycodec.Scheme) error {
	s.WriteByte(byte(b.Kind))

	if b.Kind != BeginRecoveryOk {
		return nil
	}

	b.TxnID.Write(s)
	b.Status.Write(s)
	b.Ballot.Write(s)
	writeOptionalExecuteAt(s, b.ExecuteAt)
	b.LatestDeps.Write(s, scheme)
	b.Deps.Write(s)
	b.EarlierDeps.Write(s)
	b.NakedDeps.Write(s)
	varint.WriteBool(s, b.Supersedes)
	varint.WriteBool(s, b.Rejects)

	if err := writeOptionalParticipants(s, scheme, b.Participants); err != nil {
		return err
	}

	writeOptionalWrites(s, b.Writes)

	return nil
}

// isAppliedStatus reports whether status is one of the Status values for
// which the decoder synthesizes Applied=true with no corresponding wire bytes.
func isAppliedStatus(status domain.Status) bool {
	return status == domain.StatusPreApplied || status == domain.StatusApplied || status == domain.StatusTruncated
}

// ReadBeginRecoveryReply decodes a BeginRecoveryReply.
func ReadBeginRecoveryReply(r wirebuf.Source, scheme keycodec.Scheme, boundaryLess func(a, b keycodec.RoutingKey) bool) (BeginRecoveryReply, error) {
	kindByte, err := r.ReadBytes(1)
	if err != nil {
		return BeginRecoveryReply{}, err
	}

	kind := BeginRecoveryReplyKind(kindByte[0])
	if kind > BeginRecoveryTimeout {
		return BeginRecoveryReply{}, errs.WrapByte(errs.ErrCorruptInput, r.Offset()-1, "BeginRecovery reply kind", kindByte[0])
	}

	if kind != BeginRecoveryOk {
		return BeginRecoveryReply{Kind: kind}, nil
	}

	txnID, err := domain.ReadTxnId(r)
	if err != nil {
		return BeginRecoveryReply{}, err
	}

	status, err := domain.ReadStatus(r)
	if err != nil {
		return BeginRecoveryReply{}, err
	}

	ballot, err := domain.ReadBallot(r)
	if err != nil {
		return BeginRecoveryReply{}, err
	}

	executeAt, err := readOptionalExecuteAt(r)
	if err != nil {
		return BeginRecoveryReply{}, err
	}

	latestDeps, err := segmentedmap.ReadLatestDeps(r, scheme, boundaryLess)
	if err != nil {
		return BeginRecoveryReply{}, err
	}

	deps, err := domain.ReadDeps(r)
	if err != nil {
		return BeginRecoveryReply{}, err
	}

	earlierDeps, err := domain.ReadDeps(r)
	if err != nil {
		return BeginRecoveryReply{}, err
	}

	nakedDeps, err := domain.ReadDeps(r)
	if err != nil {
		return BeginRecoveryReply{}, err
	}

	supersedes, err := varint.ReadBool(r)
	if err != nil {
		return BeginRecoveryReply{}, err
	}

	rejects, err := varint.ReadBool(r)
	if err != nil {
		return BeginRecoveryReply{}, err
	}

	participants, err := readOptionalParticipants(r, scheme)
	if err != nil {
		return BeginRecoveryReply{}, err
	}

	writes, err := readOptionalWrites(r)
	if err != nil {
		return BeginRecoveryReply{}, err
	}

	return BeginRecoveryReply{
		Kind:         kind,
		TxnID:        txnID,
		Status:       status,
		Ballot:       ballot,
		ExecuteAt:    executeAt,
		LatestDeps:   latestDeps,
		Deps:         deps,
		EarlierDeps:  earlierDeps,
		NakedDeps:    nakedDeps,
		Supersedes:   supersedes,
		Rejects:      rejects,
		Participants: participants,
		Writes:       writes,
		Applied:      isAppliedStatus(status),
	}, nil
}

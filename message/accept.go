package message

import (
	"github.com/accordwire/accord/domain"
	"github.com/accordwire/accord/enumcodec"
	"github.com/accordwire/accord/keycodec"
	"github.com/accordwire/accord/routable"
	"github.com/accordwire/accord/varint"
	"github.com/accordwire/accord/wirebuf"
)

// AcceptKind distinguishes the two Accept request kinds: a regular accept
// and a fast-path accept.
type AcceptKind int

const (
	AcceptKindSlow AcceptKind = iota
	AcceptKindFast
)

const (
	acceptFlagIsPartial uint = 0
	acceptFlagKind      uint = 1
)

// AcceptRequest is the Accept request body; the envelope (TxnId, scope,
// epoch bounds) is carried separately.
type AcceptRequest struct {
	Kind            AcceptKind
	IsPartialAccept bool
	Ballot          domain.Ballot
	TxnID           domain.TxnId
	ExecuteAt       domain.ExecuteAt
	PartialDeps     domain.PartialDeps
}

func (a AcceptRequest) flags() enumcodec.FlagWord {
	var f enumcodec.FlagWord
	if a.IsPartialAccept {
		f = f.Set(acceptFlagIsPartial)
	}

	if a.Kind == AcceptKindFast {
		f = f.Set(acceptFlagKind)
	}

	return f
}

// Size returns the on-wire size of a.
func (a AcceptRequest) Size() int {
	return a.flags().Size() + a.Ballot.Size() +
		domain.SizeExecuteAtDelta(a.TxnID, a.ExecuteAt) + a.PartialDeps.Size()
}

// Write encodes a.
func (a AcceptRequest) Write(s wirebuf.Sink) {
	a.flags().Write(s)
	a.Ballot.Write(s)
	domain.WriteExecuteAtDelta(s, a.TxnID, a.ExecuteAt)
	a.PartialDeps.Write(s)
}

// ReadAcceptRequest decodes an AcceptRequest body. txnID comes from the
// enclosing envelope, since executeAt is encoded as a delta relative to it.
func ReadAcceptRequest(r wirebuf.Source, txnID domain.TxnId) (AcceptRequest, error) {
	flags, err := enumcodec.ReadFlagWord(r)
	if err != nil {
		return AcceptRequest{}, err
	}

	ballot, err := domain.ReadBallot(r)
	if err != nil {
		return AcceptRequest{}, err
	}

	executeAt, err := domain.ReadExecuteAtDelta(r, txnID)
	if err != nil {
		return AcceptRequest{}, err
	}

	partialDeps, err := domain.ReadPartialDeps(r)
	if err != nil {
		return AcceptRequest{}, err
	}

	kind := AcceptKindSlow
	if flags.Has(acceptFlagKind) {
		kind = AcceptKindFast
	}

	return AcceptRequest{
		Kind:            kind,
		IsPartialAccept: flags.Has(acceptFlagIsPartial),
		Ballot:          ballot,
		TxnID:           txnID,
		ExecuteAt:       executeAt,
		PartialDeps:     partialDeps,
	}, nil
}

// Accept reply flag bits. Bits 0..1 carry the outcome ordinal; bit 2
// (0x04) is reserved and tolerated-but-ignored on decode.
const (
	acceptReplyOutcomeMask            = 0x03
	acceptReplyFlagSupersededBy       = 0x08
	acceptReplyFlagCommittedExecuteAt = 0x10
	acceptReplyFlagSuccessful         = 0x20
	acceptReplyFlagDeps               = 0x40
	acceptReplyFlagExecuteFlags       = 0x80
)

// AcceptReply is the Accept reply body.
type AcceptReply struct {
	Outcome            domain.AcceptOutcome
	SupersededBy       *domain.Ballot
	CommittedExecuteAt *domain.ExecuteAt
	Successful         *routable.Value
	Deps               *domain.Deps
	ExecuteFlags       *uint64
}

func (a AcceptReply) flagByte() byte {
	f := byte(a.Outcome) & acceptReplyOutcomeMask

	if a.SupersededBy != nil {
		f |= acceptReplyFlagSupersededBy
	}

	if a.CommittedExecuteAt != nil {
		f |= acceptReplyFlagCommittedExecuteAt
	}

	if a.Successful != nil {
		f |= acceptReplyFlagSuccessful
	}

	if a.Deps != nil {
		f |= acceptReplyFlagDeps
	}

	if a.ExecuteFlags != nil {
		f |= acceptReplyFlagExecuteFlags
	}

	return f
}

// Size returns the on-wire size of a.
func (a AcceptReply) Size(scheme keycodec.Scheme) int {
	n := 1

	if a.SupersededBy != nil {
		n += a.SupersededBy.Size()
	}

	if a.CommittedExecuteAt != nil {
		n += a.CommittedExecuteAt.Size()
	}

	if a.Successful != nil {
		n += routable.Size(scheme, *a.Successful)
	}

	if a.Deps != nil {
		n += a.Deps.Size()
	}

	if a.ExecuteFlags != nil {
		n += varint.SizeUvarint(*a.ExecuteFlags)
	}

	return n
}

// Write encodes a. Every optional field's bytes are emitted iff its flag
// bit is set.
func (a AcceptReply) Write(s wirebuf.Sink, scheme keycodec.Scheme) error {
	s.WriteByte(a.flagByte())

	if a.SupersededBy != nil {
		a.SupersededBy.Write(s)
	}

	if a.CommittedExecuteAt != nil {
		a.CommittedExecuteAt.Write(s)
	}

	if a.Successful != nil {
		if err := routable.Encode(s, scheme, routable.AllVariants(), *a.Successful); err != nil {
			return err
		}
	}

	if a.Deps != nil {
		a.Deps.Write(s)
	}

	if a.ExecuteFlags != nil {
		varint.WriteUvarint(s, *a.ExecuteFlags)
	}

	return nil
}

// ReadAcceptReply decodes an AcceptReply, never reading an optional field
// whose flag bit is clear. The reserved 0x04 bit is read but not
// interpreted.
func ReadAcceptReply(r wirebuf.Source, scheme keycodec.Scheme) (AcceptReply, error) {
	flagByte, err := varint.ReadFixed8(r)
	if err != nil {
		return AcceptReply{}, err
	}

	reply := AcceptReply{Outcome: domain.AcceptOutcome(flagByte & acceptReplyOutcomeMask)}

	if flagByte&acceptReplyFlagSupersededBy != 0 {
		b, err := domain.ReadBallot(r)
		if err != nil {
			return AcceptReply{}, err
		}

		reply.SupersededBy = &b
	}

	if flagByte&acceptReplyFlagCommittedExecuteAt != 0 {
		ts, err := domain.ReadTimestamp(r)
		if err != nil {
			return AcceptReply{}, err
		}

		ea := domain.ExecuteAt{Timestamp: ts}
		reply.CommittedExecuteAt = &ea
	}

	if flagByte&acceptReplyFlagSuccessful != 0 {
		v, err := routable.Decode(r, scheme, routable.AllVariants())
		if err != nil {
			return AcceptReply{}, err
		}

		reply.Successful = &v
	}

	if flagByte&acceptReplyFlagDeps != 0 {
		d, err := domain.ReadDeps(r)
		if err != nil {
			return AcceptReply{}, err
		}

		reply.Deps = &d
	}

	if flagByte&acceptReplyFlagExecuteFlags != 0 {
		flags, err := varint.ReadUvarint(r)
		if err != nil {
			return AcceptReply{}, err
		}

		reply.ExecuteFlags = &flags
	}

	return reply, nil
}

// NotAccept is the inline payload a replica returns when it declines an
// Accept outright. It carries no flag word; every field is unconditional.
type NotAccept struct {
	Status       domain.Status
	Ballot       domain.Ballot
	TxnID        domain.TxnId
	Participants routable.Value
}

// Size returns the on-wire size of n.
func (n NotAccept) Size(scheme keycodec.Scheme) int {
	return n.Status.Size() + n.Ballot.Size() + n.TxnID.Size() + routable.Size(scheme, n.Participants)
}

// Write encodes n.
func (n NotAccept) Write(s wirebuf.Sink, scheme keycodec.Scheme) error {
	n.Status.Write(s)
	n.Ballot.Write(s)
	n.TxnID.Write(s)

	return routable.Encode(s, scheme, routable.AllVariants(), n.Participants)
}

// ReadNotAccept decodes a NotAccept payload.
func ReadNotAccept(r wirebuf.Source, scheme keycodec.Scheme) (NotAccept, error) {
	status, err := domain.ReadStatus(r)
	if err != nil {
		return NotAccept{}, err
	}

	ballot, err := domain.ReadBallot(r)
	if err != nil {
		return NotAccept{}, err
	}

	txnID, err := domain.ReadTxnId(r)
	if err != nil {
		return NotAccept{}, err
	}

	participants, err := routable.Decode(r, scheme, routable.AllVariants())
	if err != nil {
		return NotAccept{}, err
	}

	return NotAccept{Status: status, Ballot: ballot, TxnID: txnID, Participants: participants}, nil
}

package message

import (
	"github.com/accordwire/accord/domain"
	"github.com/accordwire/accord/errs"
	"github.com/accordwire/accord/keycodec"
	"github.com/accordwire/accord/routable"
	"github.com/accordwire/accord/wirebuf"
)

// CheckStatusKind discriminates the three CheckStatus reply shapes.
type CheckStatusKind byte

const (
	CheckStatusOK   CheckStatusKind = 0x00
	CheckStatusFull CheckStatusKind = 0x01
	CheckStatusNack CheckStatusKind = 0x02
)

// CheckStatusReply is a CheckStatus reply. NACK carries no body. OK and
// FULL share a (txnId, status, durability) prefix; FULL additionally
// carries three nullable sub-fields giving a fuller picture of the
// transaction's recorded state.
type CheckStatusReply struct {
	Kind       CheckStatusKind
	TxnID      domain.TxnId
	Status     domain.Status
	Durability domain.Durability

	// FULL-only; nil for OK and NACK.
	ExecuteAt    *domain.ExecuteAt
	Deps         *domain.Deps
	Participants *routable.Value
}

// Size returns the on-wire size of c.
func (c CheckStatusReply) Size(scheme keycodec.Scheme) int {
	n := 1
	if c.Kind == CheckStatusNack {
		return n
	}

	n += c.TxnID.Size() + c.Status.Size() + c.Durability.Size()

	if c.Kind == CheckStatusFull {
		n += sizeOptionalExecuteAt(c.ExecuteAt)
		n += sizeOptionalDeps(c.Deps)
		n += sizeOptionalParticipants(scheme, c.Participants)
	}

	return n
}

// Write encodes c.
func (c CheckStatusReply) Write(s wirebuf.Sink, scheme keycodec.Scheme) error {
	s.WriteByte(byte(c.Kind))

	if c.Kind == CheckStatusNack {
		return nil
	}

	c.TxnID.Write(s)
	c.Status.Write(s)
	c.Durability.Write(s)

	if c.Kind != CheckStatusFull {
		return nil
	}

	writeOptionalExecuteAt(s, c.ExecuteAt)
	writeOptionalDeps(s, c.Deps)

	return writeOptionalParticipants(s, scheme, c.Participants)
}

// ReadCheckStatusReply decodes a CheckStatusReply. An unrecognized kind
// byte fails with ErrCorruptInput rather than being forward-compatibly
// tolerated — unlike the error-code registry, CheckStatus's kind has no
// general reserved-range convention.
func ReadCheckStatusReply(r wirebuf.Source, scheme keycodec.Scheme) (CheckStatusReply, error) {
	kindByte, err := r.ReadBytes(1)
	if err != nil {
		return CheckStatusReply{}, err
	}

	kind := CheckStatusKind(kindByte[0])

	switch kind {
	case CheckStatusNack:
		return CheckStatusReply{Kind: kind}, nil
	case CheckStatusOK, CheckStatusFull:
		// fall through below
	default:
		return CheckStatusReply{}, errs.WrapByte(errs.ErrCorruptInput, r.Offset()-1, "CheckStatus kind in {OK,FULL,NACK}", kindByte[0])
	}

	txnID, err := domain.ReadTxnId(r)
	if err != nil {
		return CheckStatusReply{}, err
	}

	status, err := domain.ReadStatus(r)
	if err != nil {
		return CheckStatusReply{}, err
	}

	durability, err := domain.ReadDurability(r)
	if err != nil {
		return CheckStatusReply{}, err
	}

	reply := CheckStatusReply{Kind: kind, TxnID: txnID, Status: status, Durability: durability}

	if kind != CheckStatusFull {
		return reply, nil
	}

	executeAt, err := readOptionalExecuteAt(r)
	if err != nil {
		return CheckStatusReply{}, err
	}

	deps, err := readOptionalDeps(r)
	if err != nil {
		return CheckStatusReply{}, err
	}

	participants, err := readOptionalParticipants(r, scheme)
	if err != nil {
		return CheckStatusReply{}, err
	}

	reply.ExecuteAt = executeAt
	reply.Deps = deps
	reply.Participants = participants

	return reply, nil
}

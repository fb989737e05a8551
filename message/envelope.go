package message

import (
	"github.com/accordwire/accord/domain"
	"github.com/accordwire/accord/keycodec"
	"github.com/accordwire/accord/routable"
	"github.com/accordwire/accord/varint"
	"github.com/accordwire/accord/wirebuf"
)

// ScopePermitted is the variant set a request envelope's scope route
// accepts. A request's scope may be any routables shape — the envelope
// layer doesn't itself distinguish partial from full routes; that
// restriction belongs to the specific request kind if it wants one.
var ScopePermitted = routable.AllVariants()

// Envelope is the framing every txn-scoped request shares: the
// transaction identifier, the scope it's routed under, and the epoch
// bounds the receiving replica must honor.
type Envelope struct {
	TxnID        domain.TxnId
	Scope        routable.Value
	WaitForEpoch uint64
	MinEpoch     uint64
}

// Size returns the on-wire size of e.
func (e Envelope) Size(scheme keycodec.Scheme) int {
	return e.TxnID.Size() + routable.Size(scheme, e.Scope) +
		varint.SizeUvarint(e.WaitForEpoch) + varint.SizeUvarint(e.MinEpoch-e.WaitForEpoch)
}

// Write encodes e. MinEpoch is written as a delta above WaitForEpoch, which
// the caller must ensure is non-negative.
func (e Envelope) Write(s wirebuf.Sink, scheme keycodec.Scheme) error {
	e.TxnID.Write(s)

	if err := routable.Encode(s, scheme, ScopePermitted, e.Scope); err != nil {
		return err
	}

	varint.WriteUvarint(s, e.WaitForEpoch)
	varint.WriteUvarint(s, e.MinEpoch-e.WaitForEpoch)

	return nil
}

// ReadEnvelope decodes an Envelope, reconstructing MinEpoch from its delta.
func ReadEnvelope(r wirebuf.Source, scheme keycodec.Scheme) (Envelope, error) {
	txnID, err := domain.ReadTxnId(r)
	if err != nil {
		return Envelope{}, err
	}

	scope, err := routable.Decode(r, scheme, ScopePermitted)
	if err != nil {
		return Envelope{}, err
	}

	waitForEpoch, err := varint.ReadUvarint(r)
	if err != nil {
		return Envelope{}, err
	}

	delta, err := varint.ReadUvarint(r)
	if err != nil {
		return Envelope{}, err
	}

	return Envelope{
		TxnID:        txnID,
		Scope:        scope,
		WaitForEpoch: waitForEpoch,
		MinEpoch:     waitForEpoch + delta,
	}, nil
}

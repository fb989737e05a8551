// Package domain models the opaque collaborator types the codec consumes
// but never interprets: TxnId, Ballot, Timestamp, Deps/PartialDeps/
// PartialTxn/Writes, and the finite status/outcome enumerations. The
// semantic engine that gives these values meaning is out of scope; this
// package exists only to give the codec something concrete to serialize
// in tests and in the message package, with the minimum accessor surface
// the codec needs.
package domain

import (
	"github.com/google/uuid"

	"github.com/accordwire/accord/varint"
	"github.com/accordwire/accord/wirebuf"
)

// HLC is the common shape behind TxnId, Ballot, and Timestamp: an epoch, a
// logical counter, and the coordinating node's identity — a classic
// hybrid-logical-clock triple.
type HLC struct {
	Epoch   int64
	Logical int64
	Node    uuid.UUID
}

// Size returns the on-wire size of h.
func (h HLC) Size() int {
	return varint.SizeSvarint(h.Epoch) + varint.SizeSvarint(h.Logical) + 16
}

// Write encodes h as svarint(epoch), svarint(logical), 16 raw node bytes.
func (h HLC) Write(s wirebuf.Sink) {
	varint.WriteSvarint(s, h.Epoch)
	varint.WriteSvarint(s, h.Logical)
	s.WriteBytes(h.Node[:])
}

// ReadHLC decodes an HLC triple.
func ReadHLC(r wirebuf.Source) (HLC, error) {
	epoch, err := varint.ReadSvarint(r)
	if err != nil {
		return HLC{}, err
	}

	logical, err := varint.ReadSvarint(r)
	if err != nil {
		return HLC{}, err
	}

	nodeBytes, err := r.ReadBytes(16)
	if err != nil {
		return HLC{}, err
	}

	var node uuid.UUID
	copy(node[:], nodeBytes)

	return HLC{Epoch: epoch, Logical: logical, Node: node}, nil
}

// Equal reports whether two HLC values are identical.
func (h HLC) Equal(o HLC) bool {
	return h.Epoch == o.Epoch && h.Logical == o.Logical && h.Node == o.Node
}

// Compare orders two HLC values by (Epoch, Logical, Node) — the total
// order the surrounding consensus protocol relies on Ballots and
// Timestamps providing. It is not used by the codec itself (which never
// compares values) but is part of the minimum accessor surface a producer
// needs, e.g. to order Ballots or Timestamps.
func (h HLC) Compare(o HLC) int {
	switch {
	case h.Epoch != o.Epoch:
		return cmpInt64(h.Epoch, o.Epoch)
	case h.Logical != o.Logical:
		return cmpInt64(h.Logical, o.Logical)
	default:
		for i := range h.Node {
			if h.Node[i] != o.Node[i] {
				return int(h.Node[i]) - int(o.Node[i])
			}
		}

		return 0
	}
}

func cmpInt64(a, b int64) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}

// TxnId, Ballot, and Timestamp share the HLC wire shape but are kept as
// distinct Go types so message bodies can't accidentally swap one for
// another.
type (
	TxnId     struct{ HLC }
	Ballot    struct{ HLC }
	Timestamp struct{ HLC }
)

func (t TxnId) Write(s wirebuf.Sink)     { t.HLC.Write(s) }
func (b Ballot) Write(s wirebuf.Sink)    { b.HLC.Write(s) }
func (t Timestamp) Write(s wirebuf.Sink) { t.HLC.Write(s) }

func ReadTxnId(r wirebuf.Source) (TxnId, error) {
	h, err := ReadHLC(r)
	return TxnId{h}, err
}

func ReadBallot(r wirebuf.Source) (Ballot, error) {
	h, err := ReadHLC(r)
	return Ballot{h}, err
}

func ReadTimestamp(r wirebuf.Source) (Timestamp, error) {
	h, err := ReadHLC(r)
	return Timestamp{h}, err
}

// ExecuteAt is a Timestamp that the message codec always encodes as a
// delta relative to a TxnId, since executeAt is typically close to txnId
// and the delta is usually much smaller than the absolute value.
type ExecuteAt struct{ Timestamp }

// WriteExecuteAtDelta writes executeAt as signed deltas from txnId's
// epoch/logical components plus the raw node bytes — the node is written
// in full since it usually differs from the coordinator's.
func WriteExecuteAtDelta(s wirebuf.Sink, txnID TxnId, executeAt ExecuteAt) {
	varint.WriteSvarint(s, executeAt.Epoch-txnID.Epoch)
	varint.WriteSvarint(s, executeAt.Logical-txnID.Logical)
	s.WriteBytes(executeAt.Node[:])
}

// SizeExecuteAtDelta returns the on-wire size WriteExecuteAtDelta would emit.
func SizeExecuteAtDelta(txnID TxnId, executeAt ExecuteAt) int {
	return varint.SizeSvarint(executeAt.Epoch-txnID.Epoch) +
		varint.SizeSvarint(executeAt.Logical-txnID.Logical) + 16
}

// ReadExecuteAtDelta reconstructs executeAt = txnId + delta.
func ReadExecuteAtDelta(r wirebuf.Source, txnID TxnId) (ExecuteAt, error) {
	dEpoch, err := varint.ReadSvarint(r)
	if err != nil {
		return ExecuteAt{}, err
	}

	dLogical, err := varint.ReadSvarint(r)
	if err != nil {
		return ExecuteAt{}, err
	}

	nodeBytes, err := r.ReadBytes(16)
	if err != nil {
		return ExecuteAt{}, err
	}

	var node uuid.UUID
	copy(node[:], nodeBytes)

	return ExecuteAt{Timestamp{HLC{
		Epoch:   txnID.Epoch + dEpoch,
		Logical: txnID.Logical + dLogical,
		Node:    node,
	}}}, nil
}

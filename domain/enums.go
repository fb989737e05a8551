package domain

import (
	"github.com/accordwire/accord/enumcodec"
	"github.com/accordwire/accord/wirebuf"
)

// Status tracks a transaction's progress through the consensus pipeline, in
// declaration order: ordinals are assigned by position and never reused.
type Status int

const (
	StatusNotWitnessed Status = iota
	StatusPreAccepted
	StatusAccepted
	StatusCommitted
	StatusReadyToExecute
	StatusPreApplied
	StatusApplied
	StatusTruncated
	StatusInvalidated
)

var statusNames = [...]string{
	"NotWitnessed", "PreAccepted", "Accepted", "Committed",
	"ReadyToExecute", "PreApplied", "Applied", "Truncated", "Invalidated",
}

func (s Status) String() string {
	if int(s) < 0 || int(s) >= len(statusNames) {
		return "Status(?)"
	}

	return statusNames[s]
}

func (s Status) Write(sink wirebuf.Sink) { enumcodec.WriteOrdinal(sink, int(s)) }
func (s Status) Size() int               { return enumcodec.SizeOrdinal(int(s)) }

func ReadStatus(r wirebuf.Source) (Status, error) {
	ord, err := enumcodec.ReadOrdinal(r, len(statusNames))
	return Status(ord), err
}

// SaveStatus refines Status with the local replica's durable-record
// granularity — finer-grained than Status for the purposes of local persistence.
type SaveStatus int

const (
	SaveNotDefined SaveStatus = iota
	SavePreAccepted
	SaveAccepted
	SaveCommitted
	SaveReadyToExecute
	SavePreApplied
	SaveApplied
	SaveTruncatedApply
	SaveTruncatedApplyWithOutcome
	SaveVestigial
	SaveErased
)

var saveStatusNames = [...]string{
	"NotDefined", "PreAccepted", "Accepted", "Committed", "ReadyToExecute",
	"PreApplied", "Applied", "TruncatedApply", "TruncatedApplyWithOutcome",
	"Vestigial", "Erased",
}

func (s SaveStatus) String() string {
	if int(s) < 0 || int(s) >= len(saveStatusNames) {
		return "SaveStatus(?)"
	}

	return saveStatusNames[s]
}

func (s SaveStatus) Write(sink wirebuf.Sink) { enumcodec.WriteOrdinal(sink, int(s)) }
func (s SaveStatus) Size() int               { return enumcodec.SizeOrdinal(int(s)) }

func ReadSaveStatus(r wirebuf.Source) (SaveStatus, error) {
	ord, err := enumcodec.ReadOrdinal(r, len(saveStatusNames))
	return SaveStatus(ord), err
}

// Durability records how widely a transaction's outcome has been persisted.
type Durability int

const (
	DurabilityNotDurable Durability = iota
	DurabilityShardDurable
	DurabilityMajorityDurable
	DurabilityUniversalDurable
)

var durabilityNames = [...]string{
	"NotDurable", "ShardDurable", "MajorityDurable", "UniversalDurable",
}

func (d Durability) String() string {
	if int(d) < 0 || int(d) >= len(durabilityNames) {
		return "Durability(?)"
	}

	return durabilityNames[d]
}

func (d Durability) Write(sink wirebuf.Sink) { enumcodec.WriteOrdinal(sink, int(d)) }
func (d Durability) Size() int               { return enumcodec.SizeOrdinal(int(d)) }

func ReadDurability(r wirebuf.Source) (Durability, error) {
	ord, err := enumcodec.ReadOrdinal(r, len(durabilityNames))
	return Durability(ord), err
}

// KnownDeps describes how completely a replica's locally-recorded
// dependency set is known to cover the true dependency set.
type KnownDeps int

const (
	DepsUnknown KnownDeps = iota
	DepsFromFullRoute
	DepsPartiallyKnown
	DepsFullyKnown
)

var knownDepsNames = [...]string{
	"DepsUnknown", "DepsFromFullRoute", "DepsPartiallyKnown", "DepsFullyKnown",
}

func (k KnownDeps) String() string {
	if int(k) < 0 || int(k) >= len(knownDepsNames) {
		return "KnownDeps(?)"
	}

	return knownDepsNames[k]
}

func (k KnownDeps) Write(sink wirebuf.Sink) { enumcodec.WriteOrdinal(sink, int(k)) }
func (k KnownDeps) Size() int               { return enumcodec.SizeOrdinal(int(k)) }

func ReadKnownDeps(r wirebuf.Source) (KnownDeps, error) {
	ord, err := enumcodec.ReadOrdinal(r, len(knownDepsNames))
	return KnownDeps(ord), err
}

// InvalidIf records whether a transaction is known invalid, known
// committed, or undetermined — used by the recovery path's synthesized
// decision.
type InvalidIf int

const (
	InvalidIfUndetermined InvalidIf = iota
	InvalidIfNotKnownToBeInvalid
	InvalidIfNotKnownToBeCommitted
)

var invalidIfNames = [...]string{
	"Undetermined", "NotKnownToBeInvalid", "NotKnownToBeCommitted",
}

func (i InvalidIf) String() string {
	if int(i) < 0 || int(i) >= len(invalidIfNames) {
		return "InvalidIf(?)"
	}

	return invalidIfNames[i]
}

func (i InvalidIf) Write(sink wirebuf.Sink) { enumcodec.WriteOrdinal(sink, int(i)) }
func (i InvalidIf) Size() int               { return enumcodec.SizeOrdinal(int(i)) }

func ReadInvalidIf(r wirebuf.Source) (InvalidIf, error) {
	ord, err := enumcodec.ReadOrdinal(r, len(invalidIfNames))
	return InvalidIf(ord), err
}

// AcceptOutcome is the coordinator-facing result of an Accept round: one of
// Accepted, Rejected or Redundant.
type AcceptOutcome int

const (
	AcceptOutcomeAccepted AcceptOutcome = iota
	AcceptOutcomeRejected
	AcceptOutcomeRedundant
)

var acceptOutcomeNames = [...]string{"Accepted", "Rejected", "Redundant"}

func (a AcceptOutcome) String() string {
	if int(a) < 0 || int(a) >= len(acceptOutcomeNames) {
		return "AcceptOutcome(?)"
	}

	return acceptOutcomeNames[a]
}

func (a AcceptOutcome) Write(sink wirebuf.Sink) { enumcodec.WriteOrdinal(sink, int(a)) }
func (a AcceptOutcome) Size() int               { return enumcodec.SizeOrdinal(int(a)) }

func ReadAcceptOutcome(r wirebuf.Source) (AcceptOutcome, error) {
	ord, err := enumcodec.ReadOrdinal(r, len(acceptOutcomeNames))
	return AcceptOutcome(ord), err
}

// SimpleReply is the minimal two-valued reply some requests use in place of
// a richer payload.
type SimpleReply int

const (
	SimpleReplyOk SimpleReply = iota
	SimpleReplyNack
)

var simpleReplyNames = [...]string{"Ok", "Nack"}

func (s SimpleReply) String() string {
	if int(s) < 0 || int(s) >= len(simpleReplyNames) {
		return "SimpleReply(?)"
	}

	return simpleReplyNames[s]
}

func (s SimpleReply) Write(sink wirebuf.Sink) { enumcodec.WriteOrdinal(sink, int(s)) }
func (s SimpleReply) Size() int               { return enumcodec.SizeOrdinal(int(s)) }

func ReadSimpleReply(r wirebuf.Source) (SimpleReply, error) {
	ord, err := enumcodec.ReadOrdinal(r, len(simpleReplyNames))
	return SimpleReply(ord), err
}

// Known pairs a minimum-owned-epoch with a max-known-status bound — the
// per-segment payload of a KnownMap segment.
type Known struct {
	MinOwnedEpoch int64
	Max           Status
}

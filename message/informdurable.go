package message

import (
	"github.com/accordwire/accord/domain"
	"github.com/accordwire/accord/varint"
	"github.com/accordwire/accord/wirebuf"
)

// InformDurable is the InformDurable request body: a coordinator tells a
// replica that a transaction has become durable across some epoch range.
// minEpoch may precede the envelope's waitForEpoch (a replica can be told
// about durability that predates what it's currently waiting on), so both
// epoch fields are signed deltas.
type InformDurable struct {
	MinEpoch     int64
	MaxEpoch     int64
	WaitForEpoch int64
	ExecuteAt    domain.ExecuteAt
	Durability   domain.Durability
}

// Size returns the on-wire size of d.
func (d InformDurable) Size() int {
	return varint.SizeSvarint(d.MinEpoch-d.WaitForEpoch) +
		varint.SizeSvarint(d.MaxEpoch-d.WaitForEpoch) +
		d.ExecuteAt.Size() + d.Durability.Size()
}

// Write encodes d.
func (d InformDurable) Write(s wirebuf.Sink) {
	varint.WriteSvarint(s, d.MinEpoch-d.WaitForEpoch)
	varint.WriteSvarint(s, d.MaxEpoch-d.WaitForEpoch)
	d.ExecuteAt.Write(s)
	d.Durability.Write(s)
}

// ReadInformDurable decodes an InformDurable body. waitForEpoch comes from
// the enclosing envelope, since both epoch fields are deltas relative to it.
func ReadInformDurable(r wirebuf.Source, waitForEpoch int64) (InformDurable, error) {
	minDelta, err := varint.ReadSvarint(r)
	if err != nil {
		return InformDurable{}, err
	}

	maxDelta, err := varint.ReadSvarint(r)
	if err != nil {
		return InformDurable{}, err
	}

	executeAt, err := domain.ReadTimestamp(r)
	if err != nil {
		return InformDurable{}, err
	}

	durability, err := domain.ReadDurability(r)
	if err != nil {
		return InformDurable{}, err
	}

	return InformDurable{
		MinEpoch:     waitForEpoch + minDelta,
		MaxEpoch:     waitForEpoch + maxDelta,
		WaitForEpoch: waitForEpoch,
		ExecuteAt:    domain.ExecuteAt{Timestamp: executeAt},
		Durability:   durability,
	}, nil
}

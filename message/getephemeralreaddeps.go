package message

import (
	"github.com/accordwire/accord/domain"
	"github.com/accordwire/accord/enumcodec"
	"github.com/accordwire/accord/varint"
	"github.com/accordwire/accord/wirebuf"
)

// GetEphemeralReadDepsRequest carries no fields beyond the envelope, like
// GetLatestDepsRequest.
type GetEphemeralReadDepsRequest struct{}

// Size returns the on-wire size of an empty request.
func (GetEphemeralReadDepsRequest) Size() int { return 0 }

// Write encodes nothing.
func (GetEphemeralReadDepsRequest) Write(wirebuf.Sink) {}

// ReadGetEphemeralReadDepsRequest reads nothing and returns the zero request.
func ReadGetEphemeralReadDepsRequest(wirebuf.Source) (GetEphemeralReadDepsRequest, error) {
	return GetEphemeralReadDepsRequest{}, nil
}

// GetEphemeralReadDepsReply reports the replica's latest known epoch and,
// if it has ephemeral read dependencies recorded for the requested scope,
// those dependencies plus the flag word describing how they were computed.
type GetEphemeralReadDepsReply struct {
	LatestEpoch uint64
	Present     bool
	Deps        domain.Deps
	Flags       enumcodec.FlagWord
}

// Size returns the on-wire size of g.
func (g GetEphemeralReadDepsReply) Size() int {
	n := varint.SizeUvarint(g.LatestEpoch) + 1

	if g.Present {
		n += g.Deps.Size() + g.Flags.Size()
	}

	return n
}

// Write encodes g.
func (g GetEphemeralReadDepsReply) Write(s wirebuf.Sink) {
	varint.WriteUvarint(s, g.LatestEpoch)
	varint.WriteBool(s, g.Present)

	if g.Present {
		g.Deps.Write(s)
		g.Flags.Write(s)
	}
}

// ReadGetEphemeralReadDepsReply decodes a GetEphemeralReadDepsReply.
func ReadGetEphemeralReadDepsReply(r wirebuf.Source) (GetEphemeralReadDepsReply, error) {
	latestEpoch, err := varint.ReadUvarint(r)
	if err != nil {
		return GetEphemeralReadDepsReply{}, err
	}

	present, err := varint.ReadBool(r)
	if err != nil {
		return GetEphemeralReadDepsReply{}, err
	}

	reply := GetEphemeralReadDepsReply{LatestEpoch: latestEpoch, Present: present}
	if !present {
		return reply, nil
	}

	deps, err := domain.ReadDeps(r)
	if err != nil {
		return GetEphemeralReadDepsReply{}, err
	}

	flags, err := enumcodec.ReadFlagWord(r)
	if err != nil {
		return GetEphemeralReadDepsReply{}, err
	}

	reply.Deps = deps
	reply.Flags = flags

	return reply, nil
}

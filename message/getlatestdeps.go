package message

import (
	"github.com/accordwire/accord/keycodec"
	"github.com/accordwire/accord/segmentedmap"
	"github.com/accordwire/accord/wirebuf"
)

// GetLatestDepsRequest carries no fields beyond the envelope: the scope and
// epoch bounds already tell a replica what range of latest-deps state to
// return. The type exists so callers have a named request value to pass
// around even though it encodes to zero bytes.
type GetLatestDepsRequest struct{}

// Size returns the on-wire size of an empty request.
func (GetLatestDepsRequest) Size() int { return 0 }

// Write encodes nothing.
func (GetLatestDepsRequest) Write(wirebuf.Sink) {}

// ReadGetLatestDepsRequest reads nothing and returns the zero request.
func ReadGetLatestDepsRequest(wirebuf.Source) (GetLatestDepsRequest, error) {
	return GetLatestDepsRequest{}, nil
}

// GetLatestDepsReply is a segmented map from routing keys to the latest
// dependency state a replica has recorded for each segment.
type GetLatestDepsReply struct {
	LatestDeps segmentedmap.LatestDeps
}

// Size returns the on-wire size of g.
func (g GetLatestDepsReply) Size(scheme keycodec.Scheme) int {
	return g.LatestDeps.Size(scheme)
}

// Write encodes g.
func (g GetLatestDepsReply) Write(s wirebuf.Sink, scheme keycodec.Scheme) {
	g.LatestDeps.Write(s, scheme)
}

// ReadGetLatestDepsReply decodes a GetLatestDepsReply.
func ReadGetLatestDepsReply(r wirebuf.Source, scheme keycodec.Scheme, boundaryLess func(a, b keycodec.RoutingKey) bool) (GetLatestDepsReply, error) {
	ld, err := segmentedmap.ReadLatestDeps(r, scheme, boundaryLess)
	if err != nil {
		return GetLatestDepsReply{}, err
	}

	return GetLatestDepsReply{LatestDeps: ld}, nil
}

// Package message implements the per-request-kind wire layouts built from
// the lower-level codecs: the shared request envelope, and the Accept,
// BeginRecovery, CheckStatus, InformDurable, GetLatestDeps, and
// GetEphemeralReadDeps bodies and replies.
package message

import (
	"github.com/accordwire/accord/domain"
	"github.com/accordwire/accord/keycodec"
	"github.com/accordwire/accord/routable"
	"github.com/accordwire/accord/varint"
	"github.com/accordwire/accord/wirebuf"
)

// The nullable wrapper is uniform across message bodies: 0x00 means absent
// with no payload, 0x01 means present followed by the value's own encoding.
// Multiple adjacent optionals in the same reply are instead collapsed into
// a single flag byte by the caller (see accept.go); these helpers back the
// few fields that are optional on their own.

func writeOptionalExecuteAt(s wirebuf.Sink, v *domain.ExecuteAt) {
	if v == nil {
		varint.WriteBool(s, false)
		return
	}

	varint.WriteBool(s, true)
	v.Write(s)
}

func sizeOptionalExecuteAt(v *domain.ExecuteAt) int {
	if v == nil {
		return 1
	}

	return 1 + v.Size()
}

func readOptionalExecuteAt(r wirebuf.Source) (*domain.ExecuteAt, error) {
	present, err := varint.ReadBool(r)
	if err != nil {
		return nil, err
	}

	if !present {
		return nil, nil
	}

	ts, err := domain.ReadTimestamp(r)
	if err != nil {
		return nil, err
	}

	ea := domain.ExecuteAt{Timestamp: ts}

	return &ea, nil
}

func writeOptionalDeps(s wirebuf.Sink, v *domain.Deps) {
	if v == nil {
		varint.WriteBool(s, false)
		return
	}

	varint.WriteBool(s, true)
	v.Write(s)
}

func sizeOptionalDeps(v *domain.Deps) int {
	if v == nil {
		return 1
	}

	return 1 + v.Size()
}

func readOptionalDeps(r wirebuf.Source) (*domain.Deps, error) {
	present, err := varint.ReadBool(r)
	if err != nil {
		return nil, err
	}

	if !present {
		return nil, nil
	}

	d, err := domain.ReadDeps(r)
	if err != nil {
		return nil, err
	}

	return &d, nil
}

func writeOptionalWrites(s wirebuf.Sink, v *domain.Writes) {
	if v == nil {
		varint.WriteBool(s, false)
		return
	}

	varint.WriteBool(s, true)
	v.Write(s)
}

func sizeOptionalWrites(v *domain.Writes) int {
	if v == nil {
		return 1
	}

	return 1 + v.Size()
}

func readOptionalWrites(r wirebuf.Source) (*domain.Writes, error) {
	present, err := varint.ReadBool(r)
	if err != nil {
		return nil, err
	}

	if !present {
		return nil, nil
	}

	w, err := domain.ReadWrites(r)
	if err != nil {
		return nil, err
	}

	return &w, nil
}

func writeOptionalBallot(s wirebuf.Sink, v *domain.Ballot) {
	if v == nil {
		varint.WriteBool(s, false)
		return
	}

	varint.WriteBool(s, true)
	v.Write(s)
}

func sizeOptionalBallot(v *domain.Ballot) int {
	if v == nil {
		return 1
	}

	return 1 + v.Size()
}

func readOptionalBallot(r wirebuf.Source) (*domain.Ballot, error) {
	present, err := varint.ReadBool(r)
	if err != nil {
		return nil, err
	}

	if !present {
		return nil, nil
	}

	b, err := domain.ReadBallot(r)
	if err != nil {
		return nil, err
	}

	return &b, nil
}

func writeOptionalParticipants(s wirebuf.Sink, scheme keycodec.Scheme, v *routable.Value) error {
	if v == nil {
		varint.WriteBool(s, false)
		return nil
	}

	varint.WriteBool(s, true)

	return routable.Encode(s, scheme, routable.AllVariants(), *v)
}

func sizeOptionalParticipants(scheme keycodec.Scheme, v *routable.Value) int {
	if v == nil {
		return 1
	}

	return 1 + routable.Size(scheme, *v)
}

func readOptionalParticipants(r wirebuf.Source, scheme keycodec.Scheme) (*routable.Value, error) {
	present, err := varint.ReadBool(r)
	if err != nil {
		return nil, err
	}

	if !present {
		return nil, nil
	}

	v, err := routable.Decode(r, scheme, routable.AllVariants())
	if err != nil {
		return nil, err
	}

	return &v, nil
}

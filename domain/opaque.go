package domain

import (
	"github.com/accordwire/accord/varint"
	"github.com/accordwire/accord/wirebuf"
)

// Opaque stands in for Deps, PartialDeps, PartialTxn, and Writes: payloads
// produced by an external collaborator that this codec treats as
// byte-exact black boxes. Its only obligation is to frame them losslessly
// — a version tag plus a length-prefixed body — never to interpret their
// contents.
type Opaque struct {
	Version uint8
	Body    []byte
}

// Size returns the on-wire size of o.
func (o Opaque) Size() int {
	return 1 + varint.SizeUvarint(uint64(len(o.Body))) + len(o.Body)
}

// Write encodes o as (version byte, uvarint length, body bytes).
func (o Opaque) Write(s wirebuf.Sink) {
	s.WriteByte(o.Version)
	varint.WriteUvarint(s, uint64(len(o.Body)))
	s.WriteBytes(o.Body)
}

// ReadOpaque decodes an Opaque payload.
func ReadOpaque(r wirebuf.Source) (Opaque, error) {
	version, err := varint.ReadFixed8(r)
	if err != nil {
		return Opaque{}, err
	}

	n, err := varint.ReadUvarint(r)
	if err != nil {
		return Opaque{}, err
	}

	body, err := r.ReadBytes(int(n))
	if err != nil {
		return Opaque{}, err
	}

	// Copy out of the source's backing array: the caller may reuse or
	// discard the decode buffer once this function returns.
	out := make([]byte, len(body))
	copy(out, body)

	return Opaque{Version: version, Body: out}, nil
}

// Deps, PartialDeps, PartialTxn, and Writes are distinct names for the same
// Opaque wire shape, kept separate so message bodies read as self-
// documenting Go rather than four interchangeable []byte fields.
type (
	Deps        struct{ Opaque }
	PartialDeps struct{ Opaque }
	PartialTxn  struct{ Opaque }
	Writes      struct{ Opaque }
)

func ReadDeps(r wirebuf.Source) (Deps, error) {
	o, err := ReadOpaque(r)
	return Deps{o}, err
}

func ReadPartialDeps(r wirebuf.Source) (PartialDeps, error) {
	o, err := ReadOpaque(r)
	return PartialDeps{o}, err
}

func ReadPartialTxn(r wirebuf.Source) (PartialTxn, error) {
	o, err := ReadOpaque(r)
	return PartialTxn{o}, err
}

func ReadWrites(r wirebuf.Source) (Writes, error) {
	o, err := ReadOpaque(r)
	return Writes{o}, err
}

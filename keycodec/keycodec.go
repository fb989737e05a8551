// Package keycodec implements prefix-aware encoding for a single routing
// key, range, or standalone key. The prefix (typically a table identifier)
// is factored out through a Scheme supplied by the caller, since its shape
// and comparison rule belong to the collaborator that owns key semantics,
// not to the codec.
package keycodec

import (
	"bytes"

	"github.com/accordwire/accord/varint"
	"github.com/accordwire/accord/wirebuf"
)

// Scheme supplies the prefix-level operations a RoutingKey collection needs.
// A prefix is treated as an opaque, equality-comparable byte string.
type Scheme interface {
	// SizePrefix returns the on-wire size of prefix.
	SizePrefix(prefix []byte) int
	// WritePrefix encodes prefix.
	WritePrefix(s wirebuf.Sink, prefix []byte)
	// ReadPrefix decodes a prefix.
	ReadPrefix(r wirebuf.Source) ([]byte, error)
	// FixedBodyLength returns the constant body length shared by every key
	// under prefix, or -1 if bodies under this prefix vary in length.
	FixedBodyLength(prefix []byte) int
}

// RoutingKey is a (prefix, body) pair: the minimum shape the collection and
// route codecs need. Equality is prefix-then-body byte equality.
type RoutingKey struct {
	Prefix []byte
	Body   []byte
}

// Equal reports whether two keys carry identical prefix and body bytes.
func (k RoutingKey) Equal(o RoutingKey) bool {
	return bytes.Equal(k.Prefix, o.Prefix) && bytes.Equal(k.Body, o.Body)
}

// SizeWithoutPrefix returns the body's on-wire size when the prefix and
// length are supplied by an enclosing group (the common case inside a
// prefix-grouped collection).
func (k RoutingKey) SizeWithoutPrefix() int { return len(k.Body) }

// WriteWithoutPrefixOrLength appends the raw body bytes with no framing —
// valid only where the enclosing codec already knows the body's length,
// either because it is fixed for this prefix or because the group supplies
// cumulative end-offsets.
func (k RoutingKey) WriteWithoutPrefixOrLength(s wirebuf.Sink) {
	s.WriteBytes(k.Body)
}

// ReadWithPrefix reconstructs a RoutingKey from a known prefix and an
// already-determined body length.
func ReadWithPrefix(r wirebuf.Source, prefix []byte, length int) (RoutingKey, error) {
	body, err := r.ReadBytes(length)
	if err != nil {
		return RoutingKey{}, err
	}

	out := make([]byte, length)
	copy(out, body)

	return RoutingKey{Prefix: prefix, Body: out}, nil
}

// Key is a standalone routing key encoded with its own prefix and a
// length-prefixed body, independent of any enclosing group.
type Key struct {
	RoutingKey
}

// Size returns the on-wire size of k under scheme.
func (k Key) Size(scheme Scheme) int {
	return scheme.SizePrefix(k.Prefix) + varint.SizeUvarint(uint64(len(k.Body))) + len(k.Body)
}

// Write encodes k as (prefix, uvarint length, body).
func (k Key) Write(s wirebuf.Sink, scheme Scheme) {
	scheme.WritePrefix(s, k.Prefix)
	varint.WriteUvarint(s, uint64(len(k.Body)))
	s.WriteBytes(k.Body)
}

// ReadKey decodes a standalone Key.
func ReadKey(r wirebuf.Source, scheme Scheme) (Key, error) {
	prefix, err := scheme.ReadPrefix(r)
	if err != nil {
		return Key{}, err
	}

	n, err := varint.ReadUvarint(r)
	if err != nil {
		return Key{}, err
	}

	rk, err := ReadWithPrefix(r, prefix, int(n))
	if err != nil {
		return Key{}, err
	}

	return Key{rk}, nil
}

// Range is a pair of prefix-sharing keys. Its wire shape (fixed-length pair
// vs. cumulative end-offsets) is driven by the same Scheme as its prefix's
// constituent keys, since a Range's fixed length, when it exists, is always
// twice the per-key fixed length.
type Range struct {
	Prefix []byte
	Start  []byte
	End    []byte
}

// Equal reports whether two ranges carry identical prefix, start, and end.
func (rg Range) Equal(o Range) bool {
	return bytes.Equal(rg.Prefix, o.Prefix) && bytes.Equal(rg.Start, o.Start) && bytes.Equal(rg.End, o.End)
}

// FixedSize reports the combined fixed body size of a range under prefix —
// twice the per-key fixed length — and whether the prefix has one at all.
func FixedSize(scheme Scheme, prefix []byte) (size int, ok bool) {
	fl := scheme.FixedBodyLength(prefix)
	if fl < 0 {
		return 0, false
	}

	return fl * 2, true
}

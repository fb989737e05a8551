package routable

import (
	"github.com/accordwire/accord/errs"
	"github.com/accordwire/accord/keycodec"
	"github.com/accordwire/accord/varint"
	"github.com/accordwire/accord/wirebuf"
)

// Variant is the tagged-union discriminator for a routables value: one of
// six kinds dispatched by a single leading byte.
type Variant uint8

const (
	VariantRoutingKeys       Variant = 1
	VariantPartialKeyRoute   Variant = 2
	VariantFullKeyRoute      Variant = 3
	VariantRoutingRanges     Variant = 4
	VariantPartialRangeRoute Variant = 5
	VariantFullRangeRoute    Variant = 6
)

func (v Variant) valid() bool { return v >= VariantRoutingKeys && v <= VariantFullRangeRoute }

// PermittedSet restricts which variants a particular codec call site will
// accept, per its declared role (e.g. a full-route field never accepts a
// partial variant).
type PermittedSet uint8

// NewPermittedSet builds a PermittedSet from the given variants.
func NewPermittedSet(variants ...Variant) PermittedSet {
	var p PermittedSet
	for _, v := range variants {
		p |= 1 << (v - 1)
	}

	return p
}

// AllVariants permits every declared variant.
func AllVariants() PermittedSet {
	return NewPermittedSet(
		VariantRoutingKeys, VariantPartialKeyRoute, VariantFullKeyRoute,
		VariantRoutingRanges, VariantPartialRangeRoute, VariantFullRangeRoute,
	)
}

// Allows reports whether v is in the permitted set.
func (p PermittedSet) Allows(v Variant) bool {
	if !v.valid() {
		return false
	}

	return p&(1<<(v-1)) != 0
}

// Value is the decoded or to-be-encoded payload of a routables field: a key
// or range collection, plus a home key for the route variants.
type Value struct {
	Variant Variant
	Keys    []keycodec.RoutingKey
	Ranges  []keycodec.Range
	HomeKey keycodec.Key
}

func isRouteVariant(v Variant) bool {
	return v == VariantPartialKeyRoute || v == VariantFullKeyRoute ||
		v == VariantPartialRangeRoute || v == VariantFullRangeRoute
}

func isKeyVariant(v Variant) bool {
	return v == VariantRoutingKeys || v == VariantPartialKeyRoute || v == VariantFullKeyRoute
}

// Encode writes v's tag byte and dispatches to its collection encoder. It
// fails if v.Variant is outside permitted.
func Encode(s wirebuf.Sink, scheme keycodec.Scheme, permitted PermittedSet, v Value) error {
	if !v.Variant.valid() || !permitted.Allows(v.Variant) {
		return errs.ErrUnexpectedVariant
	}

	s.WriteByte(byte(v.Variant))

	if isKeyVariant(v.Variant) {
		EncodeKeys(s, scheme, v.Keys)

		if v.Variant == VariantPartialKeyRoute || v.Variant == VariantFullKeyRoute {
			writeHomeKeyBackRef(s, scheme, v.Keys, v.HomeKey)
		}

		return nil
	}

	EncodeRanges(s, scheme, v.Ranges)

	if v.Variant == VariantPartialRangeRoute || v.Variant == VariantFullRangeRoute {
		v.HomeKey.Write(s, scheme)
	}

	return nil
}

// Size returns the on-wire size Encode would write for v.
func Size(scheme keycodec.Scheme, v Value) int {
	n := 1

	if isKeyVariant(v.Variant) {
		n += SizeKeys(scheme, v.Keys)

		if v.Variant == VariantPartialKeyRoute || v.Variant == VariantFullKeyRoute {
			n += sizeHomeKeyBackRef(scheme, v.Keys, v.HomeKey)
		}

		return n
	}

	n += SizeRanges(scheme, v.Ranges)

	if v.Variant == VariantPartialRangeRoute || v.Variant == VariantFullRangeRoute {
		n += v.HomeKey.Size(scheme)
	}

	return n
}

// Decode reads the tag byte and dispatches to the matching variant decoder,
// failing with ErrUnexpectedVariant if the tag is outside {1..6} or outside
// permitted.
func Decode(r wirebuf.Source, scheme keycodec.Scheme, permitted PermittedSet) (Value, error) {
	tagByte, err := r.ReadBytes(1)
	if err != nil {
		return Value{}, err
	}

	tag := Variant(tagByte[0])
	if !tag.valid() || !permitted.Allows(tag) {
		return Value{}, errs.WrapByte(errs.ErrUnexpectedVariant, r.Offset()-1, "permitted routables variant", tagByte[0])
	}

	if isKeyVariant(tag) {
		keys, err := DecodeKeys(r, scheme)
		if err != nil {
			return Value{}, err
		}

		v := Value{Variant: tag, Keys: keys}

		if isRouteVariant(tag) {
			home, err := readHomeKeyBackRef(r, scheme, keys)
			if err != nil {
				return Value{}, err
			}

			v.HomeKey = home
		}

		return v, nil
	}

	ranges, err := DecodeRanges(r, scheme)
	if err != nil {
		return Value{}, err
	}

	v := Value{Variant: tag, Ranges: ranges}

	if isRouteVariant(tag) {
		home, err := keycodec.ReadKey(r, scheme)
		if err != nil {
			return Value{}, err
		}

		v.HomeKey = home
	}

	return v, nil
}

// writeHomeKeyBackRef writes home as a back-reference into keys when it
// appears there (uvarint i+1), or as 0 followed by a full encoding
// otherwise.
func writeHomeKeyBackRef(s wirebuf.Sink, scheme keycodec.Scheme, keys []keycodec.RoutingKey, home keycodec.Key) {
	if i := findHomeKeyIndex(keys, home); i >= 0 {
		varint.WriteUvarint(s, uint64(i+1))
		return
	}

	varint.WriteUvarint(s, 0)
	home.Write(s, scheme)
}

func sizeHomeKeyBackRef(scheme keycodec.Scheme, keys []keycodec.RoutingKey, home keycodec.Key) int {
	if i := findHomeKeyIndex(keys, home); i >= 0 {
		return varint.SizeUvarint(uint64(i + 1))
	}

	return varint.SizeUvarint(0) + home.Size(scheme)
}

func findHomeKeyIndex(keys []keycodec.RoutingKey, home keycodec.Key) int {
	for i, k := range keys {
		if k.Equal(home.RoutingKey) {
			return i
		}
	}

	return -1
}

func readHomeKeyBackRef(r wirebuf.Source, scheme keycodec.Scheme, keys []keycodec.RoutingKey) (keycodec.Key, error) {
	i, err := varint.ReadUvarint(r)
	if err != nil {
		return keycodec.Key{}, err
	}

	if i == 0 {
		return keycodec.ReadKey(r, scheme)
	}

	idx := int(i - 1)
	if idx < 0 || idx >= len(keys) {
		return keycodec.Key{}, errs.Wrap(errs.ErrCorruptInput, r.Offset(), "home key back-reference within collection bounds")
	}

	return keycodec.Key{RoutingKey: keys[idx]}, nil
}

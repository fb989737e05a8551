// Package routable implements the prefix-grouped collection codec (an
// ordered array of routing keys or ranges, compressed by runs of equal
// prefix) and the tagged-union routables codec built on top of it.
package routable

import (
	"bytes"

	"github.com/accordwire/accord/errs"
	"github.com/accordwire/accord/internal/scratch"
	"github.com/accordwire/accord/keycodec"
	"github.com/accordwire/accord/varint"
	"github.com/accordwire/accord/wirebuf"
)

// minBytesPerElement bounds a decoded count against the bytes actually
// remaining, so a corrupt or hostile count can't force an oversized
// allocation before any of it is validated.
const minBytesPerElement = 1

func checkImplausibleCount(r wirebuf.Source, n uint64) error {
	if n > 0 && n > uint64(r.Remaining())/minBytesPerElement {
		return errs.Wrap(errs.ErrImplausibleCount, r.Offset(), "count within remaining bytes")
	}

	return nil
}

// EncodeKeys writes ks by runs of equal prefix. The caller's ordering is
// preserved byte-for-byte; EncodeKeys never sorts or reorders.
func EncodeKeys(s wirebuf.Sink, scheme keycodec.Scheme, ks []keycodec.RoutingKey) {
	varint.WriteUvarint(s, uint64(len(ks)))

	for i := 0; i < len(ks); {
		j := i + 1
		for j < len(ks) && bytes.Equal(ks[j].Prefix, ks[i].Prefix) {
			j++
		}

		writeKeyGroup(s, scheme, ks[i:j], len(ks)-j)
		i = j
	}
}

func writeKeyGroup(s wirebuf.Sink, scheme keycodec.Scheme, group []keycodec.RoutingKey, remainingAfter int) {
	varint.WriteUvarint(s, uint64(remainingAfter))
	scheme.WritePrefix(s, group[0].Prefix)

	if scheme.FixedBodyLength(group[0].Prefix) >= 0 {
		for _, k := range group {
			k.WriteWithoutPrefixOrLength(s)
		}

		return
	}

	var cum uint32
	for _, k := range group {
		cum += uint32(len(k.Body))
		s.WriteUint64LSB(uint64(cum), 4)
	}

	for _, k := range group {
		k.WriteWithoutPrefixOrLength(s)
	}
}

// SizeKeys returns the on-wire size EncodeKeys would write for ks.
func SizeKeys(scheme keycodec.Scheme, ks []keycodec.RoutingKey) int {
	total := varint.SizeUvarint(uint64(len(ks)))

	for i := 0; i < len(ks); {
		j := i + 1
		for j < len(ks) && bytes.Equal(ks[j].Prefix, ks[i].Prefix) {
			j++
		}

		total += sizeKeyGroup(scheme, ks[i:j], len(ks)-j)
		i = j
	}

	return total
}

func sizeKeyGroup(scheme keycodec.Scheme, group []keycodec.RoutingKey, remainingAfter int) int {
	n := varint.SizeUvarint(uint64(remainingAfter)) + scheme.SizePrefix(group[0].Prefix)

	if scheme.FixedBodyLength(group[0].Prefix) >= 0 {
		for _, k := range group {
			n += k.SizeWithoutPrefix()
		}

		return n
	}

	n += 4 * len(group)
	for _, k := range group {
		n += k.SizeWithoutPrefix()
	}

	return n
}

// DecodeKeys decodes a prefix-grouped RoutingKey collection.
func DecodeKeys(r wirebuf.Source, scheme keycodec.Scheme) ([]keycodec.RoutingKey, error) {
	n, err := varint.ReadUvarint(r)
	if err != nil {
		return nil, err
	}

	if err := checkImplausibleCount(r, n); err != nil {
		return nil, err
	}

	out := make([]keycodec.RoutingKey, 0, n)

	for uint64(len(out)) < n {
		remainingAfter, err := varint.ReadUvarint(r)
		if err != nil {
			return nil, err
		}

		prefix, err := scheme.ReadPrefix(r)
		if err != nil {
			return nil, err
		}

		groupLen := int(n) - len(out) - int(remainingAfter)
		if groupLen <= 0 {
			return nil, errs.Wrap(errs.ErrCorruptInput, r.Offset(), "positive group length")
		}

		fixed := scheme.FixedBodyLength(prefix)
		if fixed >= 0 {
			for k := 0; k < groupLen; k++ {
				rk, err := keycodec.ReadWithPrefix(r, prefix, fixed)
				if err != nil {
					return nil, err
				}

				out = append(out, rk)
			}

			continue
		}

		offsets, release := scratch.GetOffsets(groupLen)

		for k := range offsets {
			off, err := r.ReadUint64LSB(4)
			if err != nil {
				release()
				return nil, err
			}

			offsets[k] = uint32(off)
		}

		var prev uint32
		for k := 0; k < groupLen; k++ {
			length := int(offsets[k] - prev)
			prev = offsets[k]

			rk, err := keycodec.ReadWithPrefix(r, prefix, length)
			if err != nil {
				release()
				return nil, err
			}

			out = append(out, rk)
		}

		release()
	}

	return out, nil
}

// CountAndSkipKeys advances r past a prefix-grouped RoutingKey collection
// without materializing any key, returning the element count. It walks the
// same group headers DecodeKeys does but skips each group's bodies in one
// jump: a fixed-length group by arithmetic, a variable-length group by
// reading only its last cumulative offset and skipping that many bytes.
func CountAndSkipKeys(r wirebuf.Source, scheme keycodec.Scheme) (int, error) {
	n, err := varint.ReadUvarint(r)
	if err != nil {
		return 0, err
	}

	if err := checkImplausibleCount(r, n); err != nil {
		return 0, err
	}

	count := 0

	for uint64(count) < n {
		remainingAfter, err := varint.ReadUvarint(r)
		if err != nil {
			return 0, err
		}

		prefix, err := scheme.ReadPrefix(r)
		if err != nil {
			return 0, err
		}

		groupLen := int(n) - count - int(remainingAfter)
		if groupLen <= 0 {
			return 0, errs.Wrap(errs.ErrCorruptInput, r.Offset(), "positive group length")
		}

		if fixed := scheme.FixedBodyLength(prefix); fixed >= 0 {
			if err := r.Skip(groupLen * fixed); err != nil {
				return 0, err
			}

			count += groupLen
			continue
		}

		if err := skipOffsetsAndBodies(r, groupLen); err != nil {
			return 0, err
		}

		count += groupLen
	}

	return count, nil
}

// skipOffsetsAndBodies skips an offset-table of count 4-byte cumulative
// end-offsets followed by the body bytes they describe, without reading
// any offset except the last, which is the total body length.
func skipOffsetsAndBodies(r wirebuf.Source, count int) error {
	if count > 1 {
		if err := r.Skip((count - 1) * 4); err != nil {
			return err
		}
	}

	total, err := r.ReadUint64LSB(4)
	if err != nil {
		return err
	}

	return r.Skip(int(total))
}

// EncodeRanges writes rgs by runs of equal prefix, emitting two cumulative
// end-offsets per variable-length entry (after-start, after-end) instead of
// one.
func EncodeRanges(s wirebuf.Sink, scheme keycodec.Scheme, rgs []keycodec.Range) {
	varint.WriteUvarint(s, uint64(len(rgs)))

	for i := 0; i < len(rgs); {
		j := i + 1
		for j < len(rgs) && bytes.Equal(rgs[j].Prefix, rgs[i].Prefix) {
			j++
		}

		writeRangeGroup(s, scheme, rgs[i:j], len(rgs)-j)
		i = j
	}
}

func writeRangeGroup(s wirebuf.Sink, scheme keycodec.Scheme, group []keycodec.Range, remainingAfter int) {
	varint.WriteUvarint(s, uint64(remainingAfter))
	scheme.WritePrefix(s, group[0].Prefix)

	if fixed := scheme.FixedBodyLength(group[0].Prefix); fixed >= 0 {
		for _, rg := range group {
			s.WriteBytes(rg.Start)
			s.WriteBytes(rg.End)
		}

		return
	}

	var cum uint32
	for _, rg := range group {
		cum += uint32(len(rg.Start))
		s.WriteUint64LSB(uint64(cum), 4)
		cum += uint32(len(rg.End))
		s.WriteUint64LSB(uint64(cum), 4)
	}

	for _, rg := range group {
		s.WriteBytes(rg.Start)
		s.WriteBytes(rg.End)
	}
}

// SizeRanges returns the on-wire size EncodeRanges would write for rgs.
func SizeRanges(scheme keycodec.Scheme, rgs []keycodec.Range) int {
	total := varint.SizeUvarint(uint64(len(rgs)))

	for i := 0; i < len(rgs); {
		j := i + 1
		for j < len(rgs) && bytes.Equal(rgs[j].Prefix, rgs[i].Prefix) {
			j++
		}

		total += sizeRangeGroup(scheme, rgs[i:j], len(rgs)-j)
		i = j
	}

	return total
}

func sizeRangeGroup(scheme keycodec.Scheme, group []keycodec.Range, remainingAfter int) int {
	n := varint.SizeUvarint(uint64(remainingAfter)) + scheme.SizePrefix(group[0].Prefix)

	if scheme.FixedBodyLength(group[0].Prefix) >= 0 {
		for _, rg := range group {
			n += len(rg.Start) + len(rg.End)
		}

		return n
	}

	n += 8 * len(group)
	for _, rg := range group {
		n += len(rg.Start) + len(rg.End)
	}

	return n
}

// DecodeRanges decodes a prefix-grouped Range collection.
func DecodeRanges(r wirebuf.Source, scheme keycodec.Scheme) ([]keycodec.Range, error) {
	n, err := varint.ReadUvarint(r)
	if err != nil {
		return nil, err
	}

	if err := checkImplausibleCount(r, n); err != nil {
		return nil, err
	}

	out := make([]keycodec.Range, 0, n)

	for uint64(len(out)) < n {
		remainingAfter, err := varint.ReadUvarint(r)
		if err != nil {
			return nil, err
		}

		prefix, err := scheme.ReadPrefix(r)
		if err != nil {
			return nil, err
		}

		groupLen := int(n) - len(out) - int(remainingAfter)
		if groupLen <= 0 {
			return nil, errs.Wrap(errs.ErrCorruptInput, r.Offset(), "positive group length")
		}

		fixed := scheme.FixedBodyLength(prefix)
		if fixed >= 0 {
			for k := 0; k < groupLen; k++ {
				start, err := r.ReadBytes(fixed)
				if err != nil {
					return nil, err
				}

				end, err := r.ReadBytes(fixed)
				if err != nil {
					return nil, err
				}

				out = append(out, keycodec.Range{
					Prefix: prefix,
					Start:  append([]byte(nil), start...),
					End:    append([]byte(nil), end...),
				})
			}

			continue
		}

		offsets, release := scratch.GetOffsets(groupLen * 2)

		for k := range offsets {
			off, err := r.ReadUint64LSB(4)
			if err != nil {
				release()
				return nil, err
			}

			offsets[k] = uint32(off)
		}

		var prev uint32
		for k := 0; k < groupLen; k++ {
			startLen := int(offsets[2*k] - prev)
			prev = offsets[2*k]
			endLen := int(offsets[2*k+1] - prev)
			prev = offsets[2*k+1]

			start, err := r.ReadBytes(startLen)
			if err != nil {
				release()
				return nil, err
			}

			end, err := r.ReadBytes(endLen)
			if err != nil {
				release()
				return nil, err
			}

			out = append(out, keycodec.Range{
				Prefix: prefix,
				Start:  append([]byte(nil), start...),
				End:    append([]byte(nil), end...),
			})
		}

		release()
	}

	return out, nil
}

// CountAndSkipRanges advances r past a prefix-grouped Range collection
// without materializing any range, returning the element count. A
// variable-length group's offset table carries two cumulative offsets per
// range (after-start, after-end); the last one is still the group's total
// body length, so the same last-offset skip CountAndSkipKeys uses applies
// unchanged.
func CountAndSkipRanges(r wirebuf.Source, scheme keycodec.Scheme) (int, error) {
	n, err := varint.ReadUvarint(r)
	if err != nil {
		return 0, err
	}

	if err := checkImplausibleCount(r, n); err != nil {
		return 0, err
	}

	count := 0

	for uint64(count) < n {
		remainingAfter, err := varint.ReadUvarint(r)
		if err != nil {
			return 0, err
		}

		prefix, err := scheme.ReadPrefix(r)
		if err != nil {
			return 0, err
		}

		groupLen := int(n) - count - int(remainingAfter)
		if groupLen <= 0 {
			return 0, errs.Wrap(errs.ErrCorruptInput, r.Offset(), "positive group length")
		}

		if fixed := scheme.FixedBodyLength(prefix); fixed >= 0 {
			if err := r.Skip(groupLen * 2 * fixed); err != nil {
				return 0, err
			}

			count += groupLen
			continue
		}

		if err := skipOffsetsAndBodies(r, groupLen*2); err != nil {
			return 0, err
		}

		count += groupLen
	}

	return count, nil
}

// Package scratch provides the reusable offset-list buffer the
// prefix-grouped collection decoders (routable.DecodeKeys, DecodeRanges) need while
// decoding a variable-length-body group. The contract is scoped
// acquisition with guaranteed release on every exit path, including error
// unwinds; borrowing is goroutine-local — concurrent decodes each get
// their own slice.
package scratch

import "sync"

var offsetPool = sync.Pool{
	New: func() any { return &[]uint32{} },
}

// GetOffsets returns a []uint32 of exactly length size, backed by a pooled
// array when possible, plus a release function the caller must invoke
// exactly once (typically via defer) when finished with the slice. The
// slice is cleared to zero length on release so no group's offsets leak
// into the next borrow.
func GetOffsets(size int) ([]uint32, func()) {
	ptr, _ := offsetPool.Get().(*[]uint32)
	s := (*ptr)[:0]

	if cap(s) < size {
		s = make([]uint32, size)
	} else {
		s = s[:size]
	}
	*ptr = s

	release := func() {
		*ptr = (*ptr)[:0]
		offsetPool.Put(ptr)
	}

	return s, release
}

// Package pool provides reusable, sync.Pool-backed scratch buffers for the
// codec packages. Every encoder acquires its working buffer here instead of
// allocating, and must release it exactly once when done — scoped
// acquisition with guaranteed release.
package pool

import "sync"

// Size tiers for the message buffer pool. Accord request/reply bodies are
// single RPC payloads (a Ballot, a handful of deps, a route) rather than the
// bulk time-series blobs this buffer type was originally sized for, so the
// default tier is small; the threshold still guards against one outsized
// message (e.g. a GetLatestDeps reply covering a wide route) poisoning the
// pool for everyone else.
const (
	MessageBufferDefaultSize  = 1024       // 1KiB
	MessageBufferMaxThreshold = 1024 * 256 // 256KiB
)

// ByteBuffer is a growable byte slice wrapper with an amortized growth
// strategy tuned to avoid reallocating on every small write a message
// encoder makes.
type ByteBuffer struct {
	B []byte
}

// NewByteBuffer creates a new ByteBuffer with the specified default capacity.
func NewByteBuffer(defaultSize int) *ByteBuffer {
	return &ByteBuffer{B: make([]byte, 0, defaultSize)}
}

// Bytes returns the underlying byte slice.
func (bb *ByteBuffer) Bytes() []byte { return bb.B }

// Reset empties the buffer while retaining its backing array.
func (bb *ByteBuffer) Reset() { bb.B = bb.B[:0] }

// Len returns the number of bytes currently held.
func (bb *ByteBuffer) Len() int { return len(bb.B) }

// Cap returns the buffer's current capacity.
func (bb *ByteBuffer) Cap() int { return cap(bb.B) }

// MustWrite appends data, growing the buffer if necessary.
func (bb *ByteBuffer) MustWrite(data []byte) {
	bb.B = append(bb.B, data...)
}

// Slice returns bb.B[start:end]. Panics on out-of-bounds indices.
func (bb *ByteBuffer) Slice(start, end int) []byte {
	if start < 0 || end < start || end > cap(bb.B) {
		panic("pool: Slice: invalid indices")
	}

	return bb.B[start:end]
}

// Extend grows the logical length by n bytes if capacity already allows it,
// reporting false (without mutating) when it doesn't.
func (bb *ByteBuffer) Extend(n int) bool {
	curLen := len(bb.B)
	if cap(bb.B)-curLen < n {
		return false
	}

	bb.B = bb.B[:curLen+n]

	return true
}

// ExtendOrGrow extends the logical length by n bytes, reallocating first if
// the current capacity is insufficient.
func (bb *ByteBuffer) ExtendOrGrow(n int) {
	if bb.Extend(n) {
		return
	}

	start := len(bb.B)
	bb.Grow(n)
	bb.B = bb.B[:start+n]
}

// Grow ensures the buffer can accept requiredBytes more bytes without a
// further reallocation. Small buffers grow by a fixed default chunk;
// buffers already past 4x that default grow by 25% to bound amortized copy
// cost on messages with unusually large deps payloads.
func (bb *ByteBuffer) Grow(requiredBytes int) {
	available := cap(bb.B) - len(bb.B)
	if available >= requiredBytes {
		return
	}

	growBy := MessageBufferDefaultSize
	if cap(bb.B) > 4*MessageBufferDefaultSize {
		growBy = cap(bb.B) / 4
	}

	if growBy < requiredBytes {
		growBy = requiredBytes
	}

	newBuf := make([]byte, len(bb.B), len(bb.B)+growBy)
	copy(newBuf, bb.B)
	bb.B = newBuf
}

// ByteBufferPool is a sync.Pool of ByteBuffers, with an optional cap on the
// capacity of buffers it will retain (oversized buffers are discarded
// instead of pooled, to avoid memory bloat from one-off large messages).
type ByteBufferPool struct {
	pool         sync.Pool
	maxThreshold int
}

// NewByteBufferPool creates a pool whose buffers start at defaultSize and
// are discarded (rather than retained) once they grow past maxThreshold.
func NewByteBufferPool(defaultSize, maxThreshold int) *ByteBufferPool {
	return &ByteBufferPool{
		pool: sync.Pool{
			New: func() any { return NewByteBuffer(defaultSize) },
		},
		maxThreshold: maxThreshold,
	}
}

// Get retrieves a ByteBuffer from the pool, allocating one if empty.
func (p *ByteBufferPool) Get() *ByteBuffer {
	bb, _ := p.pool.Get().(*ByteBuffer)
	return bb
}

// Put resets and returns bb to the pool, unless it has grown past the
// pool's maxThreshold.
func (p *ByteBufferPool) Put(bb *ByteBuffer) {
	if bb == nil {
		return
	}

	if p.maxThreshold > 0 && cap(bb.B) > p.maxThreshold {
		return
	}

	bb.Reset()
	p.pool.Put(bb)
}

var messagePool = NewByteBufferPool(MessageBufferDefaultSize, MessageBufferMaxThreshold)

// GetMessageBuffer retrieves a ByteBuffer from the shared message pool.
func GetMessageBuffer() *ByteBuffer { return messagePool.Get() }

// PutMessageBuffer returns bb to the shared message pool.
func PutMessageBuffer(bb *ByteBuffer) { messagePool.Put(bb) }

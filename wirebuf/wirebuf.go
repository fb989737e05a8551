// Package wirebuf implements the byte sink/source contract that every
// codec in accordwire is written against. It is the only place in the
// module that touches a raw []byte directly; every other package reads
// and writes through a Sink or a Source.
//
// The wire format is fixed little-endian throughout: messages carry no
// per-message endianness flag, so there is exactly one byte order and
// no configurable-endianness abstraction is exposed.
package wirebuf

import (
	"encoding/binary"

	"github.com/accordwire/accord/errs"
	"github.com/accordwire/accord/internal/pool"
)

// Sink is the append-only write side of the contract: append bytes, write a
// single byte, write a full 8-byte little-endian word, or write the
// least-significant K bytes (K in 1..7) of a 64-bit word — the last form is
// used by the bit-packed codec (C2) to flush a partial tail word.
type Sink interface {
	WriteByte(b byte)
	WriteBytes(b []byte)
	WriteUint64(v uint64)
	WriteUint64LSB(v uint64, k int)
	Len() int
}

// BufSink is the concrete Sink backed by a pooled, amortized-growth byte
// buffer. Callers obtain one with NewBufSink and must call Release when
// done writing.
type BufSink struct {
	buf *pool.ByteBuffer
}

// NewBufSink acquires a scratch buffer from the shared message-buffer pool.
func NewBufSink() *BufSink {
	return &BufSink{buf: pool.GetMessageBuffer()}
}

func (s *BufSink) WriteByte(b byte) {
	s.buf.Grow(1)
	s.buf.MustWrite([]byte{b})
}

func (s *BufSink) WriteBytes(b []byte) {
	s.buf.Grow(len(b))
	s.buf.MustWrite(b)
}

func (s *BufSink) WriteUint64(v uint64) {
	s.buf.Grow(8)
	start := s.buf.Len()
	s.buf.ExtendOrGrow(8)
	binary.LittleEndian.PutUint64(s.buf.Slice(start, start+8), v)
}

// WriteUint64LSB writes the k least-significant bytes of v, little-endian,
// for k in 1..7. It is the primitive the bit-packed codec's tail flush is
// built on.
func (s *BufSink) WriteUint64LSB(v uint64, k int) {
	if k < 1 || k > 7 {
		panic("wirebuf: WriteUint64LSB: k out of range")
	}

	s.buf.Grow(k)
	start := s.buf.Len()
	s.buf.ExtendOrGrow(k)
	dst := s.buf.Slice(start, start+k)
	for i := 0; i < k; i++ {
		dst[i] = byte(v >> (8 * i))
	}
}

func (s *BufSink) Len() int { return s.buf.Len() }

// Bytes returns the bytes written so far. The slice aliases the sink's
// internal buffer and is invalidated by the next write.
func (s *BufSink) Bytes() []byte { return s.buf.Bytes() }

// Release returns the backing buffer to the pool. The sink must not be used
// afterwards.
func (s *BufSink) Release() {
	if s.buf != nil {
		pool.PutMessageBuffer(s.buf)
		s.buf = nil
	}
}

// Source is the read side of the contract: read exactly N bytes (failing if
// fewer remain), peek the next byte without consuming it, skip exactly N
// bytes, read a full 8-byte little-endian word, or read K (1..7)
// least-significant bytes into a uint64.
type Source interface {
	ReadBytes(n int) ([]byte, error)
	PeekByte() (byte, error)
	Skip(n int) error
	ReadUint64() (uint64, error)
	ReadUint64LSB(k int) (uint64, error)
	Remaining() int
	Offset() int
}

// ByteSource is the concrete Source over an in-memory byte slice — the only
// shape the decoder ever needs, since a caller must buffer a full frame
// before invoking decode.
type ByteSource struct {
	data []byte
	pos  int
}

// NewByteSource wraps data for sequential decoding starting at offset 0.
func NewByteSource(data []byte) *ByteSource {
	return &ByteSource{data: data}
}

func (s *ByteSource) Remaining() int { return len(s.data) - s.pos }
func (s *ByteSource) Offset() int    { return s.pos }

func (s *ByteSource) ReadBytes(n int) ([]byte, error) {
	if n < 0 || s.Remaining() < n {
		return nil, errs.Wrap(errs.ErrShortInput, s.pos, "N more bytes")
	}

	b := s.data[s.pos : s.pos+n]
	s.pos += n

	return b, nil
}

func (s *ByteSource) PeekByte() (byte, error) {
	if s.Remaining() < 1 {
		return 0, errs.Wrap(errs.ErrShortInput, s.pos, "1 byte")
	}

	return s.data[s.pos], nil
}

func (s *ByteSource) Skip(n int) error {
	if n < 0 || s.Remaining() < n {
		return errs.Wrap(errs.ErrShortInput, s.pos, "N bytes to skip")
	}

	s.pos += n

	return nil
}

func (s *ByteSource) ReadUint64() (uint64, error) {
	b, err := s.ReadBytes(8)
	if err != nil {
		return 0, err
	}

	return binary.LittleEndian.Uint64(b), nil
}

// ReadUint64LSB reads k (1..7) bytes and returns them as the
// least-significant bytes of a uint64, little-endian.
func (s *ByteSource) ReadUint64LSB(k int) (uint64, error) {
	if k < 1 || k > 7 {
		panic("wirebuf: ReadUint64LSB: k out of range")
	}

	b, err := s.ReadBytes(k)
	if err != nil {
		return 0, err
	}

	var v uint64
	for i := 0; i < k; i++ {
		v |= uint64(b[i]) << (8 * i)
	}

	return v, nil
}

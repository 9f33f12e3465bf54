package stream

import "fmt"

// BufferInput wraps a borrowed, contiguous byte region as a Markable
// Reader. It never copies or takes ownership of data.
type BufferInput struct {
	data []byte
	pos  int
}

// NewBufferInput wraps data for reading. The caller retains ownership;
// BufferInput must not outlive mutation of the backing array.
func NewBufferInput(data []byte) *BufferInput {
	return &BufferInput{data: data}
}

// Len reports the number of unread bytes remaining.
func (b *BufferInput) Len() int { return len(b.data) - b.pos }

// Pos reports the current read offset from the start of the buffer.
func (b *BufferInput) Pos() int { return b.pos }

func (b *BufferInput) Read(out []byte) error {
	if len(out) > b.Len() {
		return fmt.Errorf("%w: wanted %d, had %d", ErrShortRead, len(out), b.Len())
	}
	copy(out, b.data[b.pos:b.pos+len(out)])
	b.pos += len(out)
	return nil
}

func (b *BufferInput) Skip(n int) error {
	if n > b.Len() {
		return fmt.Errorf("%w: wanted to skip %d, had %d", ErrShortRead, n, b.Len())
	}
	b.pos += n
	return nil
}

type bufferMark struct {
	stream *BufferInput
	pos    int
}

func (m *bufferMark) Reset() error {
	if m.pos > len(m.stream.data) {
		return fmt.Errorf("%w: mark position out of range", ErrShortRead)
	}
	m.stream.pos = m.pos
	return nil
}

// Mark captures the current read position; Reset on the returned Mark
// rewinds back to it.
func (b *BufferInput) Mark() Mark {
	return &bufferMark{stream: b, pos: b.pos}
}

var _ Markable = (*BufferInput)(nil)

// maxVarint32HeadroomLen is the widest a varint32 length prefix can be
// (5 bytes: 4x7 data bits plus one more to hold bit 31 and the sign
// extension implied by the two's-complement wire format), matching the
// headroom BufferOutput reserves so a length-prefixed view never needs to
// shift the payload it already wrote.
const maxVarint32HeadroomLen = 5

// BufferOutput owns a growable byte buffer. It reserves headroom at the
// front so a length-prefixed view of the data it accumulates can be
// synthesized without copying the payload.
type BufferOutput struct {
	buf []byte // buf[:maxVarint32HeadroomLen] is reserved headroom; buf[maxVarint32HeadroomLen:] is payload.
}

// NewBufferOutput returns an empty output buffer ready for writing.
func NewBufferOutput() *BufferOutput {
	return &BufferOutput{buf: make([]byte, maxVarint32HeadroomLen, maxVarint32HeadroomLen+64)}
}

func (b *BufferOutput) Write(buf []byte) error {
	b.buf = append(b.buf, buf...)
	return nil
}

// Raw returns the accumulated payload bytes, excluding the reserved
// headroom. The returned slice aliases the buffer's storage.
func (b *BufferOutput) Raw() []byte {
	return b.buf[maxVarint32HeadroomLen:]
}

// LengthPrefixed writes the varint32 encoding of len(Raw()) into the
// reserved headroom and returns the prefix+payload window. Because the
// headroom is sized for the widest varint32 the payload's own length can
// ever produce, this never needs to reallocate or shift the payload.
func (b *BufferOutput) LengthPrefixed() []byte {
	size := len(b.buf) - maxVarint32HeadroomLen
	prefix := encodeVarint32Into(uint32(size))
	start := maxVarint32HeadroomLen - len(prefix)
	copy(b.buf[start:], prefix)
	return b.buf[start:]
}

// encodeVarint32Into is a self-contained LEB128-style encoder used only to
// build the length-prefix headroom above; the full Var32 codec type lives
// in package codec, which itself depends on this package, so duplicating
// this handful of lines here avoids an import cycle.
func encodeVarint32Into(v uint32) []byte {
	var out [maxVarint32HeadroomLen]byte
	n := 0
	for {
		b := byte(v & 0x7f)
		v >>= 7
		if v != 0 {
			b |= 0x80
		}
		out[n] = b
		n++
		if v == 0 {
			break
		}
	}
	return out[:n]
}

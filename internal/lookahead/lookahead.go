// Package lookahead provides a bounded FIFO byte buffer used by the block
// detector to classify ahead of emission.
//
// It is structured like bufio.Reader (and the teacher's bufseekio.ReadSeeker
// before it): a fixed backing array with read and write cursors, topped up
// from the underlying io.Reader by Fill, or by Pop when it runs dry. Unlike bufio.Reader
// it never discards unread data on refill, and unlike bufseekio.ReadSeeker
// it does not support Seek — the detector only ever looks forward.
package lookahead

import "io"

// minSize is the smallest buffer capacity callers may request.
const minSize = 256

// Buffer is a fixed-capacity FIFO of bytes, lazily refilled from an
// underlying reader.
type Buffer struct {
	buf    []byte
	r, w   int // read and write positions within buf
	rd     io.Reader
	eof    bool // true once rd has returned io.EOF
	rdErr  error
}

// New returns a Buffer with the given capacity, reading from rd.
func New(rd io.Reader, capacity int) *Buffer {
	if capacity < minSize {
		capacity = minSize
	}
	return &Buffer{
		buf: make([]byte, capacity),
		rd:  rd,
	}
}

// Len returns the number of buffered, unread bytes.
func (b *Buffer) Len() int {
	return b.w - b.r
}

// Cap returns the buffer's total capacity.
func (b *Buffer) Cap() int {
	return len(b.buf)
}

// AtEOF reports whether the underlying reader is exhausted and every
// buffered byte has been consumed.
func (b *Buffer) AtEOF() bool {
	return b.eof && b.Len() == 0
}

// compact slides unread bytes to the front of buf.
func (b *Buffer) compact() {
	if b.r == 0 {
		return
	}
	n := copy(b.buf, b.buf[b.r:b.w])
	b.r = 0
	b.w = n
}

// Fill refills the buffer up to capacity or until the underlying reader
// reports EOF, whichever comes first. It never blocks once the reader has
// returned a non-nil error.
func (b *Buffer) Fill() error {
	if b.eof || b.rdErr != nil {
		return b.rdErr
	}
	b.compact()
	for b.w < len(b.buf) {
		n, err := b.rd.Read(b.buf[b.w:])
		b.w += n
		if err != nil {
			if err == io.EOF {
				b.eof = true
			} else {
				b.rdErr = err
			}
			return b.rdErr
		}
		if n == 0 {
			break
		}
	}
	return nil
}

// At returns the byte at the given offset from the read cursor without
// consuming it. The caller must ensure index < b.Len().
func (b *Buffer) At(index int) byte {
	return b.buf[b.r+index]
}

// Pop removes and returns the front byte. It refills lazily if empty.
func (b *Buffer) Pop() (byte, bool) {
	if b.Len() == 0 {
		b.Fill()
		if b.Len() == 0 {
			return 0, false
		}
	}
	c := b.buf[b.r]
	b.r++
	return c, true
}

// Discard removes n bytes from the front without returning them. n must not
// exceed Len().
func (b *Buffer) Discard(n int) {
	if n > b.Len() {
		n = b.Len()
	}
	b.r += n
}

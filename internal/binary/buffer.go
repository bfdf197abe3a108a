package binary

import "io"

// Buffer is a growable in-memory file implementing io.ReaderAt,
// io.WriterAt and io.Writer (append).
type Buffer struct {
	buf []byte
}

// NewBuffer returns a Buffer holding a copy-free view of data.
func NewBuffer(data []byte) *Buffer {
	return &Buffer{buf: data}
}

// WriteAt implements io.WriterAt, extending the buffer with zeros as needed.
func (b *Buffer) WriteAt(p []byte, off int64) (int, error) {
	if off < 0 {
		return 0, io.ErrShortWrite
	}
	if end := int(off) + len(p); end > len(b.buf) {
		if end <= cap(b.buf) {
			b.buf = b.buf[:end]
		} else {
			grown := make([]byte, end, 2*end)
			copy(grown, b.buf)
			b.buf = grown
		}
	}
	copy(b.buf[off:], p)
	return len(p), nil
}

// Write appends p.
func (b *Buffer) Write(p []byte) (int, error) {
	return b.WriteAt(p, int64(len(b.buf)))
}

// ReadAt implements io.ReaderAt.
func (b *Buffer) ReadAt(p []byte, off int64) (int, error) {
	if off < 0 || off >= int64(len(b.buf)) {
		return 0, io.EOF
	}
	n := copy(p, b.buf[off:])
	if n < len(p) {
		return n, io.EOF
	}
	return n, nil
}

// Bytes returns the buffer contents.
func (b *Buffer) Bytes() []byte {
	return b.buf
}

// Size returns the number of bytes held as an int64.
func (b *Buffer) Size() int64 {
	return int64(len(b.buf))
}

// Len returns the number of bytes held.
func (b *Buffer) Len() int {
	return len(b.buf)
}

package binary

import (
	"io"
	"math"
)

// Writer writes little-endian values to an io.WriterAt at a tracked position.
type Writer struct {
	w   io.WriterAt
	pos int64
}

// NewWriter creates a writer positioned at offset 0.
func NewWriter(w io.WriterAt) *Writer {
	return &Writer{w: w}
}

// At returns a new writer positioned at the given offset.
// The new writer shares the underlying io.WriterAt but has independent position.
func (w *Writer) At(offset int64) *Writer {
	return &Writer{w: w.w, pos: offset}
}

// Pos returns the current write position.
func (w *Writer) Pos() int64 {
	return w.pos
}

// WriteBytes writes the given bytes at the current position.
func (w *Writer) WriteBytes(data []byte) error {
	if len(data) == 0 {
		return nil
	}
	n, err := w.w.WriteAt(data, w.pos)
	w.pos += int64(n)
	return err
}

// WriteUint8 writes an unsigned 8-bit integer.
func (w *Writer) WriteUint8(v uint8) error {
	return w.WriteBytes([]byte{v})
}

// WriteUint16 writes an unsigned 16-bit integer.
func (w *Writer) WriteUint16(v uint16) error {
	var buf [2]byte
	Order.PutUint16(buf[:], v)
	return w.WriteBytes(buf[:])
}

// WriteUint32 writes an unsigned 32-bit integer.
func (w *Writer) WriteUint32(v uint32) error {
	var buf [4]byte
	Order.PutUint32(buf[:], v)
	return w.WriteBytes(buf[:])
}

// WriteUint64 writes an unsigned 64-bit integer.
func (w *Writer) WriteUint64(v uint64) error {
	var buf [8]byte
	Order.PutUint64(buf[:], v)
	return w.WriteBytes(buf[:])
}

// WriteFloat64 writes an IEEE 754 double.
func (w *Writer) WriteFloat64(v float64) error {
	return w.WriteUint64(math.Float64bits(v))
}

// WriteUintN writes an unsigned integer of n bytes (0, 1, 2, 4, or 8).
// n == 0 writes nothing.
func (w *Writer) WriteUintN(v uint64, n int) error {
	if n == 0 {
		return nil
	}
	if n != 1 && n != 2 && n != 4 && n != 8 {
		return ErrInvalidSize
	}
	buf := make([]byte, n)
	EncodeUint(buf, v)
	return w.WriteBytes(buf)
}

// WriteLink writes a single link field.
func (w *Writer) WriteLink(v int64) error {
	return w.WriteUint64(uint64(v))
}

// WriteLinks writes consecutive link fields.
func (w *Writer) WriteLinks(links []int64) error {
	if len(links) == 0 {
		return nil
	}
	buf := make([]byte, len(links)*LinkSize)
	for i, l := range links {
		Order.PutUint64(buf[i*LinkSize:], uint64(l))
	}
	return w.WriteBytes(buf)
}

// Skip advances the position by n bytes without writing.
func (w *Writer) Skip(n int64) {
	w.pos += n
}

// WritePadding writes zero bytes to align to the given alignment.
func (w *Writer) WritePadding(alignment int64) error {
	return w.WriteZeros(int(AlignUp(w.pos, alignment) - w.pos))
}

// WriteZeros writes n zero bytes.
func (w *Writer) WriteZeros(n int) error {
	if n <= 0 {
		return nil
	}
	return w.WriteBytes(make([]byte, n))
}

// EncodeUint encodes v little-endian into len(buf) bytes.
func EncodeUint(buf []byte, v uint64) {
	switch len(buf) {
	case 1:
		buf[0] = uint8(v)
	case 2:
		Order.PutUint16(buf, uint16(v))
	case 4:
		Order.PutUint32(buf, uint32(v))
	case 8:
		Order.PutUint64(buf, v)
	default:
		for i := range buf {
			buf[i] = byte(v >> (8 * i))
		}
	}
}

// Package binary provides low-level positional I/O for MDF4 block parsing.
//
// MDF4 files are always little-endian and every link is an unsigned 64-bit
// file offset, so unlike most container formats there is no per-file size
// configuration to carry around.
package binary

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"math"
)

var (
	// ErrInvalidSize is returned when an integer width other than 1, 2, 4 or 8 is requested.
	ErrInvalidSize = errors.New("invalid integer size: must be 1, 2, 4, or 8")
	// ErrInvalidLength is returned for a negative byte count.
	ErrInvalidLength = errors.New("invalid length")
)

// Order is the byte order of every multi-byte field in an MDF4 file.
var Order = binary.LittleEndian

// LinkSize is the size in bytes of a link (file offset) field.
const LinkSize = 8

// Reader reads little-endian values from an io.ReaderAt at a tracked position.
type Reader struct {
	r   io.ReaderAt
	pos int64
}

// NewReader creates a reader positioned at offset 0.
func NewReader(r io.ReaderAt) *Reader {
	return &Reader{r: r}
}

// At returns a new reader positioned at the given offset.
// The new reader shares the underlying io.ReaderAt but has independent position.
func (r *Reader) At(offset int64) *Reader {
	return &Reader{r: r.r, pos: offset}
}

// Source returns the underlying io.ReaderAt.
func (r *Reader) Source() io.ReaderAt {
	return r.r
}

// Size returns the size of the source when it reports one
// (bytes.Reader, io.SectionReader, Buffer, mapped files).
func (r *Reader) Size() (int64, bool) {
	if s, ok := r.r.(interface{ Size() int64 }); ok {
		return s.Size(), true
	}
	return 0, false
}

// Pos returns the current read position.
func (r *Reader) Pos() int64 {
	return r.pos
}

// ReadBytes reads exactly n bytes from the current position.
// A short read is reported as io.ErrUnexpectedEOF, before allocating when
// the source size is known.
func (r *Reader) ReadBytes(n int) ([]byte, error) {
	if n < 0 {
		return nil, fmt.Errorf("%w: %d bytes at 0x%x", ErrInvalidLength, n, r.pos)
	}
	if n == 0 {
		return nil, nil
	}
	if size, ok := r.Size(); ok && int64(n) > size-r.pos {
		return nil, io.ErrUnexpectedEOF
	}
	buf := make([]byte, n)
	if err := r.readFull(buf); err != nil {
		return nil, err
	}
	r.pos += int64(n)
	return buf, nil
}

func (r *Reader) readFull(buf []byte) error {
	n, err := r.r.ReadAt(buf, r.pos)
	if n == len(buf) {
		// io.ReaderAt may return io.EOF together with a full buffer.
		return nil
	}
	if err == nil || err == io.EOF {
		return io.ErrUnexpectedEOF
	}
	return err
}

// ReadUint8 reads an unsigned 8-bit integer.
func (r *Reader) ReadUint8() (uint8, error) {
	buf, err := r.ReadBytes(1)
	if err != nil {
		return 0, err
	}
	return buf[0], nil
}

// ReadUint16 reads an unsigned 16-bit integer.
func (r *Reader) ReadUint16() (uint16, error) {
	buf, err := r.ReadBytes(2)
	if err != nil {
		return 0, err
	}
	return Order.Uint16(buf), nil
}

// ReadUint32 reads an unsigned 32-bit integer.
func (r *Reader) ReadUint32() (uint32, error) {
	buf, err := r.ReadBytes(4)
	if err != nil {
		return 0, err
	}
	return Order.Uint32(buf), nil
}

// ReadUint64 reads an unsigned 64-bit integer.
func (r *Reader) ReadUint64() (uint64, error) {
	buf, err := r.ReadBytes(8)
	if err != nil {
		return 0, err
	}
	return Order.Uint64(buf), nil
}

// ReadFloat64 reads an IEEE 754 double.
func (r *Reader) ReadFloat64() (float64, error) {
	v, err := r.ReadUint64()
	if err != nil {
		return 0, err
	}
	return math.Float64frombits(v), nil
}

// ReadUintN reads an unsigned integer of n bytes (1, 2, 4, or 8).
// n == 0 reads nothing and yields 0.
func (r *Reader) ReadUintN(n int) (uint64, error) {
	if n == 0 {
		return 0, nil
	}
	if n != 1 && n != 2 && n != 4 && n != 8 {
		return 0, ErrInvalidSize
	}
	buf, err := r.ReadBytes(n)
	if err != nil {
		return 0, err
	}
	return DecodeUint(buf), nil
}

// ReadLink reads a single link field.
func (r *Reader) ReadLink() (int64, error) {
	v, err := r.ReadUint64()
	if err != nil {
		return 0, err
	}
	return int64(v), nil
}

// ReadLinks reads n consecutive link fields.
func (r *Reader) ReadLinks(n int) ([]int64, error) {
	if n <= 0 {
		return nil, nil
	}
	buf, err := r.ReadBytes(n * LinkSize)
	if err != nil {
		return nil, err
	}
	links := make([]int64, n)
	for i := range links {
		links[i] = int64(Order.Uint64(buf[i*LinkSize:]))
	}
	return links, nil
}

// Skip advances the position by n bytes.
func (r *Reader) Skip(n int64) {
	r.pos += n
}

// Align advances the position to the next multiple of alignment.
// If already aligned, the position is unchanged.
func (r *Reader) Align(alignment int64) {
	r.pos = AlignUp(r.pos, alignment)
}

// Peek reads n bytes without advancing the position.
func (r *Reader) Peek(n int) ([]byte, error) {
	if n <= 0 {
		return nil, nil
	}
	buf := make([]byte, n)
	if err := r.readFull(buf); err != nil {
		return nil, err
	}
	return buf, nil
}

// DecodeUint decodes a little-endian unsigned integer of len(buf) bytes.
func DecodeUint(buf []byte) uint64 {
	switch len(buf) {
	case 1:
		return uint64(buf[0])
	case 2:
		return uint64(Order.Uint16(buf))
	case 4:
		return uint64(Order.Uint32(buf))
	case 8:
		return Order.Uint64(buf)
	default:
		var val uint64
		for i := len(buf) - 1; i >= 0; i-- {
			val = (val << 8) | uint64(buf[i])
		}
		return val
	}
}

// AlignUp rounds pos up to the next multiple of alignment.
func AlignUp(pos, alignment int64) int64 {
	if alignment <= 1 {
		return pos
	}
	if remainder := pos % alignment; remainder != 0 {
		return pos + alignment - remainder
	}
	return pos
}

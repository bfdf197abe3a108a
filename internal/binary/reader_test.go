package binary

import (
	"bytes"
	"encoding/binary"
	"errors"
	"io"
	"testing"
)

// bytesReaderAt wraps a byte slice to implement io.ReaderAt.
type bytesReaderAt []byte

func (b bytesReaderAt) ReadAt(p []byte, off int64) (int, error) {
	if off >= int64(len(b)) {
		return 0, io.EOF
	}
	n := copy(p, b[off:])
	if n < len(p) {
		return n, io.EOF
	}
	return n, nil
}

func TestReaderReadUint8(t *testing.T) {
	data := bytesReaderAt{0x42, 0xFF, 0x00}
	r := NewReader(data)

	v, err := r.ReadUint8()
	if err != nil {
		t.Fatalf("ReadUint8 failed: %v", err)
	}
	if v != 0x42 {
		t.Errorf("expected 0x42, got 0x%02x", v)
	}

	v, err = r.ReadUint8()
	if err != nil {
		t.Fatalf("ReadUint8 failed: %v", err)
	}
	if v != 0xFF {
		t.Errorf("expected 0xFF, got 0x%02x", v)
	}
}

func TestReaderReadUint16(t *testing.T) {
	// Little-endian: 0x0102 stored as [0x02, 0x01]
	data := bytesReaderAt{0x02, 0x01, 0xFF, 0xFF}
	r := NewReader(data)

	v, err := r.ReadUint16()
	if err != nil {
		t.Fatalf("ReadUint16 failed: %v", err)
	}
	if v != 0x0102 {
		t.Errorf("expected 0x0102, got 0x%04x", v)
	}
}

func TestReaderReadUint32AndUint64(t *testing.T) {
	var buf bytes.Buffer
	binary.Write(&buf, binary.LittleEndian, uint32(0xDEADBEEF))
	binary.Write(&buf, binary.LittleEndian, uint64(0x123456789ABCDEF0))

	r := NewReader(bytesReaderAt(buf.Bytes()))

	v32, err := r.ReadUint32()
	if err != nil {
		t.Fatalf("ReadUint32 failed: %v", err)
	}
	if v32 != 0xDEADBEEF {
		t.Errorf("expected 0xDEADBEEF, got 0x%08x", v32)
	}

	v64, err := r.ReadUint64()
	if err != nil {
		t.Fatalf("ReadUint64 failed: %v", err)
	}
	if v64 != 0x123456789ABCDEF0 {
		t.Errorf("expected 0x123456789ABCDEF0, got 0x%016x", v64)
	}
}

func TestReaderReadUintN(t *testing.T) {
	tests := []struct {
		name     string
		size     int
		data     []byte
		expected uint64
	}{
		{"0-byte", 0, nil, 0},
		{"1-byte", 1, []byte{0x7F}, 0x7F},
		{"2-byte", 2, []byte{0x34, 0x12}, 0x1234},
		{"4-byte", 4, []byte{0x78, 0x56, 0x34, 0x12}, 0x12345678},
		{"8-byte", 8, []byte{0xF0, 0xDE, 0xBC, 0x9A, 0x78, 0x56, 0x34, 0x12}, 0x123456789ABCDEF0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := NewReader(bytesReaderAt(tt.data))
			v, err := r.ReadUintN(tt.size)
			if err != nil {
				t.Fatalf("ReadUintN failed: %v", err)
			}
			if v != tt.expected {
				t.Errorf("expected 0x%x, got 0x%x", tt.expected, v)
			}
			if r.Pos() != int64(tt.size) {
				t.Errorf("expected pos %d, got %d", tt.size, r.Pos())
			}
		})
	}

	r := NewReader(bytesReaderAt{1, 2, 3})
	if _, err := r.ReadUintN(3); !errors.Is(err, ErrInvalidSize) {
		t.Errorf("expected ErrInvalidSize, got %v", err)
	}
}

func TestReaderReadLinks(t *testing.T) {
	var buf bytes.Buffer
	for _, l := range []uint64{0, 0x40, 0x1000} {
		binary.Write(&buf, binary.LittleEndian, l)
	}
	r := NewReader(bytesReaderAt(buf.Bytes()))

	links, err := r.ReadLinks(3)
	if err != nil {
		t.Fatalf("ReadLinks failed: %v", err)
	}
	want := []int64{0, 0x40, 0x1000}
	for i := range want {
		if links[i] != want[i] {
			t.Errorf("link %d: expected 0x%x, got 0x%x", i, want[i], links[i])
		}
	}
}

func TestReaderShortRead(t *testing.T) {
	r := NewReader(bytesReaderAt{0x01, 0x02})
	if _, err := r.ReadUint32(); !errors.Is(err, io.ErrUnexpectedEOF) {
		t.Fatalf("expected io.ErrUnexpectedEOF, got %v", err)
	}
	if r.Pos() != 0 {
		t.Errorf("failed read should not advance, got pos %d", r.Pos())
	}
}

func TestReaderAt(t *testing.T) {
	data := bytesReaderAt{0x00, 0x01, 0x02, 0x03, 0x04, 0x05}
	r := NewReader(data)

	// Read from offset 3
	r2 := r.At(3)
	v, err := r2.ReadUint8()
	if err != nil {
		t.Fatalf("ReadUint8 failed: %v", err)
	}
	if v != 0x03 {
		t.Errorf("expected 0x03, got 0x%02x", v)
	}

	// Original reader should be unaffected
	v, err = r.ReadUint8()
	if err != nil {
		t.Fatalf("ReadUint8 failed: %v", err)
	}
	if v != 0x00 {
		t.Errorf("expected 0x00, got 0x%02x", v)
	}
}

func TestReaderAlign(t *testing.T) {
	tests := []struct {
		startPos  int64
		alignment int64
		expected  int64
	}{
		{0, 8, 0},
		{1, 8, 8},
		{7, 8, 8},
		{8, 8, 8},
		{9, 8, 16},
		{3, 1, 3},
	}

	for _, tt := range tests {
		r := NewReader(make(bytesReaderAt, 32))
		r.Skip(tt.startPos)
		r.Align(tt.alignment)

		if r.Pos() != tt.expected {
			t.Errorf("Align(%d) from pos %d: expected pos %d, got %d",
				tt.alignment, tt.startPos, tt.expected, r.Pos())
		}
	}
}

func TestReaderPeek(t *testing.T) {
	r := NewReader(bytesReaderAt{'#', '#', 'D', 'G'})

	peeked, err := r.Peek(4)
	if err != nil {
		t.Fatalf("Peek failed: %v", err)
	}
	if string(peeked) != "##DG" {
		t.Errorf("expected ##DG, got %q", peeked)
	}
	if r.Pos() != 0 {
		t.Errorf("Peek should not advance position, got %d", r.Pos())
	}
}

func TestReaderReadBytesBounds(t *testing.T) {
	r := NewReader(bytes.NewReader(make([]byte, 16)))

	if _, err := r.ReadBytes(-1); !errors.Is(err, ErrInvalidLength) {
		t.Errorf("expected ErrInvalidLength, got %v", err)
	}
	// A length far past the end of a sized source fails without allocating it.
	if _, err := r.At(8).ReadBytes(1 << 30); !errors.Is(err, io.ErrUnexpectedEOF) {
		t.Errorf("expected io.ErrUnexpectedEOF, got %v", err)
	}
	if _, err := r.At(8).ReadBytes(9); !errors.Is(err, io.ErrUnexpectedEOF) {
		t.Errorf("expected io.ErrUnexpectedEOF, got %v", err)
	}
	got, err := r.At(8).ReadBytes(8)
	if err != nil || len(got) != 8 {
		t.Errorf("ReadBytes(8) at 8: got %d bytes, err %v", len(got), err)
	}
	if size, ok := r.Size(); !ok || size != 16 {
		t.Errorf("Size: got %d, %v", size, ok)
	}
	if _, ok := NewReader(bytesReaderAt{1}).Size(); ok {
		t.Error("unsized source should not report a size")
	}
}

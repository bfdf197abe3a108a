package binary

import (
	"bytes"
	"testing"
)

func TestWriterRoundTrip(t *testing.T) {
	buf := &Buffer{}
	w := NewWriter(buf)

	if err := w.WriteUint8(0x11); err != nil {
		t.Fatalf("WriteUint8 failed: %v", err)
	}
	if err := w.WriteUint16(0x2233); err != nil {
		t.Fatalf("WriteUint16 failed: %v", err)
	}
	if err := w.WriteUint32(0x44556677); err != nil {
		t.Fatalf("WriteUint32 failed: %v", err)
	}
	if err := w.WriteUint64(0x8899AABBCCDDEEFF); err != nil {
		t.Fatalf("WriteUint64 failed: %v", err)
	}
	if err := w.WriteFloat64(1.5); err != nil {
		t.Fatalf("WriteFloat64 failed: %v", err)
	}

	r := NewReader(buf)
	u8, _ := r.ReadUint8()
	u16, _ := r.ReadUint16()
	u32, _ := r.ReadUint32()
	u64, _ := r.ReadUint64()
	f64, err := r.ReadFloat64()
	if err != nil {
		t.Fatalf("ReadFloat64 failed: %v", err)
	}

	if u8 != 0x11 || u16 != 0x2233 || u32 != 0x44556677 || u64 != 0x8899AABBCCDDEEFF || f64 != 1.5 {
		t.Errorf("round trip mismatch: %x %x %x %x %v", u8, u16, u32, u64, f64)
	}
}

func TestWriterUintN(t *testing.T) {
	tests := []struct {
		size     int
		value    uint64
		expected []byte
	}{
		{0, 0xFF, nil},
		{1, 0x01, []byte{0x01}},
		{2, 0x0102, []byte{0x02, 0x01}},
		{4, 0x01020304, []byte{0x04, 0x03, 0x02, 0x01}},
		{8, 0x0102030405060708, []byte{0x08, 0x07, 0x06, 0x05, 0x04, 0x03, 0x02, 0x01}},
	}

	for _, tt := range tests {
		buf := &Buffer{}
		w := NewWriter(buf)
		if err := w.WriteUintN(tt.value, tt.size); err != nil {
			t.Fatalf("WriteUintN(%d) failed: %v", tt.size, err)
		}
		if !bytes.Equal(buf.Bytes(), tt.expected) {
			t.Errorf("WriteUintN(%d): expected %v, got %v", tt.size, tt.expected, buf.Bytes())
		}
	}

	w := NewWriter(&Buffer{})
	if err := w.WriteUintN(1, 3); err != ErrInvalidSize {
		t.Errorf("expected ErrInvalidSize, got %v", err)
	}
}

func TestWriterAtAndPadding(t *testing.T) {
	buf := &Buffer{}
	w := NewWriter(buf)

	if err := w.WriteBytes([]byte("##TX")); err != nil {
		t.Fatalf("WriteBytes failed: %v", err)
	}
	if err := w.WriteUint8(0xAA); err != nil {
		t.Fatalf("WriteUint8 failed: %v", err)
	}
	if err := w.WritePadding(8); err != nil {
		t.Fatalf("WritePadding failed: %v", err)
	}
	if w.Pos() != 8 {
		t.Errorf("expected pos 8 after padding, got %d", w.Pos())
	}

	// Patch a field without disturbing the main writer.
	if err := w.At(4).WriteUint8(0xBB); err != nil {
		t.Fatalf("patch failed: %v", err)
	}
	want := []byte{'#', '#', 'T', 'X', 0xBB, 0, 0, 0}
	if !bytes.Equal(buf.Bytes(), want) {
		t.Errorf("expected %v, got %v", want, buf.Bytes())
	}
	if w.Pos() != 8 {
		t.Errorf("At should not move the original writer, got %d", w.Pos())
	}
}

func TestWriterLinks(t *testing.T) {
	buf := &Buffer{}
	w := NewWriter(buf)
	if err := w.WriteLinks([]int64{0x18, 0, 0x200}); err != nil {
		t.Fatalf("WriteLinks failed: %v", err)
	}
	links, err := NewReader(buf).ReadLinks(3)
	if err != nil {
		t.Fatalf("ReadLinks failed: %v", err)
	}
	if links[0] != 0x18 || links[1] != 0 || links[2] != 0x200 {
		t.Errorf("unexpected links %v", links)
	}
}

func TestBufferSparseWrite(t *testing.T) {
	buf := &Buffer{}
	if _, err := buf.WriteAt([]byte{1, 2}, 6); err != nil {
		t.Fatalf("WriteAt failed: %v", err)
	}
	if buf.Len() != 8 {
		t.Fatalf("expected len 8, got %d", buf.Len())
	}
	if !bytes.Equal(buf.Bytes(), []byte{0, 0, 0, 0, 0, 0, 1, 2}) {
		t.Errorf("unexpected contents %v", buf.Bytes())
	}
}

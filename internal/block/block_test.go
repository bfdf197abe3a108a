package block

import (
	"errors"
	"testing"

	"github.com/robert-malhotra/go-mdf/internal/binary"
)

func TestWriteAndReadHeader(t *testing.T) {
	buf := &binary.Buffer{}
	bw := NewWriter(buf, 64)

	offset, err := bw.Place(IDData, nil, []byte{1, 2, 3})
	if err != nil {
		t.Fatalf("Place failed: %v", err)
	}
	if offset != 64 {
		t.Errorf("expected first block at 64, got %d", offset)
	}

	b, err := bw.Begin(IDDataGroup, []int64{0, 0x100, offset, 0})
	if err != nil {
		t.Fatalf("Begin failed: %v", err)
	}
	if b.Offset() != 96 {
		t.Errorf("expected aligned offset 96, got %d", b.Offset())
	}
	b.Body().WriteUint8(2)
	b.Body().WriteZeros(7)
	length, err := b.End()
	if err != nil {
		t.Fatalf("End failed: %v", err)
	}
	if length != 64 {
		t.Errorf("expected DG length 64, got %d", length)
	}

	r := binary.NewReader(buf)
	h, body, err := Read(r, 96, IDDataGroup)
	if err != nil {
		t.Fatalf("Read failed: %v", err)
	}
	if h.Tag() != "DG" || h.Length != 64 || len(h.Links) != 4 {
		t.Fatalf("unexpected header %+v", h)
	}
	if h.Link(2) != offset || h.Link(1) != 0x100 || h.Link(9) != 0 {
		t.Errorf("unexpected links %v", h.Links)
	}
	if h.DataSize() != 8 || h.DataPos() != 96+56 {
		t.Errorf("unexpected data section: size %d pos %d", h.DataSize(), h.DataPos())
	}
	width, err := body.ReadUint8()
	if err != nil || width != 2 {
		t.Errorf("expected width 2, got %d (%v)", width, err)
	}

	dt, _, err := Read(r, offset)
	if err != nil {
		t.Fatalf("Read DT failed: %v", err)
	}
	if dt.DataSize() != 3 {
		t.Errorf("expected 3 data bytes, got %d", dt.DataSize())
	}

	if err := bw.Allocator().Validate(); err != nil {
		t.Errorf("allocator validation failed: %v", err)
	}
}

func TestReadErrors(t *testing.T) {
	buf := &binary.Buffer{}
	bw := NewWriter(buf, 64)
	off, err := bw.Place(IDText, nil, []byte("hi\x00"))
	if err != nil {
		t.Fatalf("Place failed: %v", err)
	}
	r := binary.NewReader(buf)

	if _, _, err := Read(r, off, IDDataGroup); !errors.Is(err, ErrUnexpectedID) {
		t.Errorf("expected ErrUnexpectedID, got %v", err)
	}
	if _, _, err := Read(r, 0); !errors.Is(err, ErrNilLink) {
		t.Errorf("expected ErrNilLink, got %v", err)
	}

	garbage := binary.NewBuffer([]byte("XXXXXXXXXXXXXXXXXXXXXXXXXXXXXXXX"))
	if _, _, err := Read(binary.NewReader(garbage), 8); !errors.Is(err, ErrInvalidBlock) {
		t.Errorf("expected ErrInvalidBlock, got %v", err)
	}
}

func TestBeginWhileOpen(t *testing.T) {
	bw := NewWriter(&binary.Buffer{}, 0)
	b, err := bw.Begin(IDData, nil)
	if err != nil {
		t.Fatalf("Begin failed: %v", err)
	}
	if _, err := bw.Begin(IDData, nil); err == nil {
		t.Error("expected error for nested Begin")
	}
	if _, err := b.End(); err != nil {
		t.Fatalf("End failed: %v", err)
	}
	if _, err := b.End(); err == nil {
		t.Error("expected error for double End")
	}
}

func TestPeekID(t *testing.T) {
	buf := &binary.Buffer{}
	bw := NewWriter(buf, 8)
	off, _ := bw.Place(IDDataList, []int64{0}, make([]byte, 8))

	id, err := PeekID(binary.NewReader(buf), off)
	if err != nil {
		t.Fatalf("PeekID failed: %v", err)
	}
	if id != IDDataList {
		t.Errorf("expected %s, got %s", IDDataList, id)
	}
}

func TestReadRejectsOversizedLength(t *testing.T) {
	buf := &binary.Buffer{}
	bw := NewWriter(buf, 64)
	off, err := bw.Place(IDData, nil, make([]byte, 16))
	if err != nil {
		t.Fatalf("Place failed: %v", err)
	}
	r := binary.NewReader(buf)

	for _, length := range []uint64{1 << 40, 1<<63 + 5, ^uint64(0)} {
		if err := binary.NewWriter(buf).At(off + 8).WriteUint64(length); err != nil {
			t.Fatalf("patching length: %v", err)
		}
		if _, _, err := Read(r, off); !errors.Is(err, ErrInvalidBlock) {
			t.Errorf("length %d: expected ErrInvalidBlock, got %v", length, err)
		}
	}
}

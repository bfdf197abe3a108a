package alloc

import (
	"testing"
)

func TestAllocatorBasic(t *testing.T) {
	a := New(64)

	addr1 := a.Alloc(64, "DG")
	if addr1 != 64 {
		t.Errorf("first allocation: got 0x%x, want 0x%x", addr1, 64)
	}

	// 104-byte CG keeps alignment; next block starts right after.
	addr2 := a.Alloc(104, "CG")
	if addr2 != 128 {
		t.Errorf("second allocation: got 0x%x, want 0x%x", addr2, 128)
	}

	if a.EOFAddr() != 232 {
		t.Errorf("EOF: got 0x%x, want 0x%x", a.EOFAddr(), 232)
	}
}

func TestAllocatorAlignsUnevenBlocks(t *testing.T) {
	a := New(64)

	a.Alloc(27, "DT") // ends at 91
	addr := a.Alloc(64, "DG")
	if addr != 96 {
		t.Errorf("aligned allocation: got 0x%x, want 0x%x", addr, 96)
	}
}

func TestAllocatorZeroSize(t *testing.T) {
	a := New(60)

	addr := a.Alloc(0, "")
	if addr != 64 {
		t.Errorf("zero allocation: got 0x%x, want 0x%x", addr, 64)
	}
	if a.EOFAddr() != 60 {
		t.Errorf("EOF after zero alloc: got 0x%x, want 0x%x", a.EOFAddr(), 60)
	}
	if len(a.Allocations()) != 0 {
		t.Errorf("zero allocation should not be recorded")
	}
}

func TestAllocatorResize(t *testing.T) {
	a := New(0)
	a.Alloc(24, "DT")
	addr := a.Alloc(48, "DZ")

	if err := a.Resize(addr, 100); err != nil {
		t.Fatalf("Resize failed: %v", err)
	}
	if a.EOFAddr() != addr+100 {
		t.Errorf("EOF after resize: got %d, want %d", a.EOFAddr(), addr+100)
	}
	if err := a.Resize(0, 10); err == nil {
		t.Error("expected error resizing an older allocation")
	}
	if err := a.Validate(); err != nil {
		t.Errorf("Validate failed: %v", err)
	}
}

func TestAllocatorValidate(t *testing.T) {
	a := New(64)
	a.Alloc(64, "DG")
	a.Alloc(104, "CG")
	a.Alloc(160, "CN")

	if err := a.Validate(); err != nil {
		t.Errorf("Validate failed: %v", err)
	}

	allocs := a.Allocations()
	if len(allocs) != 3 || allocs[2].Tag != "CN" {
		t.Errorf("unexpected allocations: %+v", allocs)
	}
}

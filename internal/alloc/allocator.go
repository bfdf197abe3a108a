package alloc

import (
	"fmt"
	"sync"
)

// BlockAlignment is the alignment of every MDF4 block.
const BlockAlignment = 8

// Allocator hands out block offsets in an append-only file.
type Allocator struct {
	mu sync.Mutex

	// eofAddr is the next allocation point (before alignment).
	eofAddr uint64

	// baseAddr is the minimum address that can be allocated.
	baseAddr uint64

	allocations []Allocation
}

// Allocation is a single placed block.
type Allocation struct {
	Addr uint64
	Size uint64
	Tag  string // block tag, e.g. "DG"
}

// New creates an allocator whose first block lands at baseAddr (aligned up).
func New(baseAddr uint64) *Allocator {
	return &Allocator{
		eofAddr:  baseAddr,
		baseAddr: baseAddr,
	}
}

// Alloc reserves size bytes at the next aligned offset and returns that offset.
// A zero-size allocation returns the aligned EOF without reserving anything.
func (a *Allocator) Alloc(size uint64, tag string) uint64 {
	a.mu.Lock()
	defer a.mu.Unlock()

	addr := alignUp(a.eofAddr)
	if size == 0 {
		return addr
	}
	a.eofAddr = addr + size
	a.allocations = append(a.allocations, Allocation{Addr: addr, Size: size, Tag: tag})
	return addr
}

// Resize changes the size of the most recent allocation.
// Blocks whose length is only known after their payload has been produced
// (compressed data, variable text) are grown or shrunk in place this way.
func (a *Allocator) Resize(addr, size uint64) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	n := len(a.allocations)
	if n == 0 || a.allocations[n-1].Addr != addr {
		return fmt.Errorf("resize of 0x%x: not the most recent allocation", addr)
	}
	a.allocations[n-1].Size = size
	a.eofAddr = addr + size
	return nil
}

// EOFAddr returns the current end-of-file address.
func (a *Allocator) EOFAddr() uint64 {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.eofAddr
}

// BaseAddr returns the base address (start of allocatable space).
func (a *Allocator) BaseAddr() uint64 {
	return a.baseAddr
}

// Allocations returns a copy of all allocations made.
func (a *Allocator) Allocations() []Allocation {
	a.mu.Lock()
	defer a.mu.Unlock()
	result := make([]Allocation, len(a.allocations))
	copy(result, a.allocations)
	return result
}

// Validate checks that allocations are aligned, within bounds and disjoint.
func (a *Allocator) Validate() error {
	a.mu.Lock()
	defer a.mu.Unlock()

	for _, al := range a.allocations {
		if al.Addr < a.baseAddr {
			return fmt.Errorf("%s block at 0x%x is before base address 0x%x", al.Tag, al.Addr, a.baseAddr)
		}
		if al.Addr%BlockAlignment != 0 {
			return fmt.Errorf("%s block at 0x%x is not %d-byte aligned", al.Tag, al.Addr, BlockAlignment)
		}
		if al.Addr+al.Size > a.eofAddr {
			return fmt.Errorf("%s block at 0x%x size %d extends past EOF 0x%x", al.Tag, al.Addr, al.Size, a.eofAddr)
		}
	}

	// Append-only allocation keeps the list sorted by address.
	for i := 1; i < len(a.allocations); i++ {
		prev, cur := a.allocations[i-1], a.allocations[i]
		if cur.Addr < prev.Addr+prev.Size {
			return fmt.Errorf("overlapping blocks: %s [0x%x, size %d] and %s [0x%x, size %d]",
				prev.Tag, prev.Addr, prev.Size, cur.Tag, cur.Addr, cur.Size)
		}
	}
	return nil
}

func alignUp(addr uint64) uint64 {
	if r := addr % BlockAlignment; r != 0 {
		return addr + BlockAlignment - r
	}
	return addr
}

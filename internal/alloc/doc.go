// Package alloc places MDF4 blocks in a file being written.
//
// Every MDF4 block starts on an 8-byte boundary. Blocks are written
// bottom-up (children before the parent that links to them), so the
// allocator only ever appends: each allocation starts at the current
// end-of-file, rounded up to the block alignment, and advances it.
//
// # Usage
//
// Create an allocator with the first free offset (after the 64-byte ID block
// and whatever the caller has already written):
//
//	a := alloc.New(64)
//	dg := a.Alloc(64, "DG")
//	dt := a.Alloc(24+uint64(len(records)), "DT")
//
// Allocations are recorded with their block tag so a writer can be checked
// for overlaps with [Allocator.Validate].
package alloc

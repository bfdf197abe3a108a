// Package block implements the header and link table shared by every MDF4 block.
//
// Every MDF4 block (except the 64-byte file identification block) starts with
// the same 24-byte header followed by a link table:
//
//	offset  size  field
//	0       4     block id, "##" plus a two letter tag ("##DG", "##DT", ...)
//	4       4     reserved, zero
//	8       8     block length in bytes, header and links included
//	16      8     number of links
//	24      8*n   links: absolute file offsets of other blocks, 0 for none
//
// The block-specific data section follows the links. A block is identified
// by its file offset, which is also what links refer to.
//
// # Reading
//
//	h, body, err := block.Read(r, offset, block.IDDataGroup)
//	next := h.Link(0)
//	width, err := body.ReadUint8()
//
// # Writing
//
// Blocks are appended through a [Writer], which places each block with an
// allocator and patches its length once the body has been written:
//
//	b, err := w.Begin(block.IDDataGroup, links)
//	b.Body().WriteUint8(width)
//	length, err := b.End()
package block

// Package data reads, writes and defragments the data region of an MDF4 file.
//
// The records of a data group (and the signal data of a VLSD channel) are
// stored in a tree of blocks linked from the owning block:
//
//   - Leaf blocks hold raw bytes: DT (records), SD (signal data),
//     RD (reduction data), DV (data values). A DZ block is a leaf whose
//     payload is the compressed content of one of those.
//
//   - List blocks hold links: DL links an ordered run of leaves and chains to
//     the next DL; HL sits on top of a DL chain whose leaves are DZ blocks.
//
// A leaf boundary carries no meaning: a record may start in one DT block and
// end in the next. Decoding therefore needs the leaves' bytes joined in order.
//
// # Tree
//
// [ReadTree] loads the block graph into a [Node], a closed sum type with two
// cases, [*Leaf] and [*List]. A DL chain is folded into the tree by making the
// next DL the last child of its predecessor, so a depth-first walk
// ([Walk]) visits leaves in logical byte order.
//
// # Defragmentation
//
// [Open] turns a tree into one contiguous [Source]:
//
//  1. No tree: an empty source.
//  2. A single uncompressed leaf: a window onto the original file at the
//     leaf's data position. Nothing is copied and no stage is created.
//  3. Anything else: every leaf is appended, inflated if needed, to a fresh
//     [Stage] obtained from a [Stager], and the source reads from the stage.
//
// A Source must be closed; closing releases the stage.
//
// # Writing
//
// [Write] stores a byte run as a single leaf, or as DL-listed fragments,
// optionally compressed into DZ blocks under an HL.
package data

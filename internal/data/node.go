package data

import (
	"github.com/robert-malhotra/go-mdf/internal/block"
	"github.com/robert-malhotra/go-mdf/internal/filter"
)

// Node is a block of a data tree: either a *Leaf or a *List.
type Node interface {
	// Index returns the file offset of the block.
	Index() int64

	// BlockID returns the block id, e.g. "##DT".
	BlockID() string

	node()
}

// Leaf is a block holding bytes.
type Leaf struct {
	Offset  int64
	ID      string
	DataPos int64  // file offset of the stored payload
	Size    uint64 // raw payload size; for DZ the inflated size
	Zip     *ZipInfo
}

// ZipInfo describes the payload of a DZ block.
type ZipInfo struct {
	OrigID string // id of the block the payload replaces, e.g. "##DT"
	Type   filter.ZipType
	Param  uint32
	Length uint64 // stored (compressed) size
}

// List is a block linking other nodes.
type List struct {
	Offset   int64
	ID       string
	Children []Node

	// DL fields
	Flags       uint8
	EqualLength uint64
	Offsets     []uint64

	// HL fields
	ZipType filter.ZipType
}

func (l *Leaf) Index() int64    { return l.Offset }
func (l *Leaf) BlockID() string { return l.ID }
func (*Leaf) node()             {}

func (l *List) Index() int64    { return l.Offset }
func (l *List) BlockID() string { return l.ID }
func (*List) node()             {}

// Compressed reports whether the leaf is a DZ block.
func (l *Leaf) Compressed() bool {
	return l.Zip != nil
}

// RawID returns the id of the block whose bytes the leaf holds: the
// original block id for DZ, the leaf id otherwise.
func (l *Leaf) RawID() string {
	if l.Zip != nil {
		return l.Zip.OrigID
	}
	return l.ID
}

// Walk calls fn for every leaf under n in depth-first order.
// It stops at the first error.
func Walk(n Node, fn func(*Leaf) error) error {
	switch n := n.(type) {
	case nil:
		return nil
	case *Leaf:
		return fn(n)
	case *List:
		for _, child := range n.Children {
			if err := Walk(child, fn); err != nil {
				return err
			}
		}
	}
	return nil
}

// Leaves returns every leaf under n in depth-first order.
func Leaves(n Node) []*Leaf {
	var leaves []*Leaf
	Walk(n, func(l *Leaf) error {
		leaves = append(leaves, l)
		return nil
	})
	return leaves
}

// Size returns the total raw byte count of the leaves under n.
func Size(n Node) uint64 {
	var total uint64
	Walk(n, func(l *Leaf) error {
		total += l.Size
		return nil
	})
	return total
}

// Find returns the node under n whose block is at offset, or nil.
func Find(n Node, offset int64) Node {
	switch n := n.(type) {
	case nil:
		return nil
	case *Leaf:
		if n.Offset == offset {
			return n
		}
	case *List:
		if n.Offset == offset {
			return n
		}
		for _, child := range n.Children {
			if found := Find(child, offset); found != nil {
				return found
			}
		}
	}
	return nil
}

// IsLeafID reports whether id names a block that holds raw bytes.
func IsLeafID(id string) bool {
	switch id {
	case block.IDData, block.IDSignalData, block.IDReductionData, block.IDDataValues:
		return true
	}
	return false
}

package data

import (
	"errors"
	"fmt"
	"math"

	"github.com/robert-malhotra/go-mdf/internal/binary"
	"github.com/robert-malhotra/go-mdf/internal/block"
	"github.com/robert-malhotra/go-mdf/internal/filter"
)

// Errors
var (
	ErrCycle    = errors.New("data block linked more than once")
	ErrTooDeep  = errors.New("data list nesting too deep")
	ErrNoSource = errors.New("nil data source")
	ErrZipSize  = errors.New("inflated size does not match DZ header")
)

// DefaultMaxDepth is the deepest list nesting ReadTree accepts.
// DL chains do not count towards the depth.
const DefaultMaxDepth = 64

// dlEqualLength is the DL flag marking equal-length data blocks.
const dlEqualLength = 0x01

// ReadTree reads the data tree whose root block is at offset.
// A zero offset yields a nil tree.
func ReadTree(r *binary.Reader, offset int64, maxDepth int) (Node, error) {
	if offset == 0 {
		return nil, nil
	}
	if maxDepth <= 0 {
		maxDepth = DefaultMaxDepth
	}
	tr := &treeReader{r: r, visited: make(map[int64]bool), maxDepth: maxDepth}
	return tr.read(offset, 0)
}

type treeReader struct {
	r        *binary.Reader
	visited  map[int64]bool
	maxDepth int
}

func (tr *treeReader) read(offset int64, depth int) (Node, error) {
	if depth > tr.maxDepth {
		return nil, fmt.Errorf("%w: block at 0x%x", ErrTooDeep, offset)
	}
	if tr.visited[offset] {
		return nil, fmt.Errorf("%w: 0x%x", ErrCycle, offset)
	}
	tr.visited[offset] = true

	id, err := block.PeekID(tr.r, offset)
	if err != nil {
		return nil, err
	}

	switch {
	case IsLeafID(id):
		h, _, err := block.Read(tr.r, offset)
		if err != nil {
			return nil, err
		}
		return &Leaf{Offset: offset, ID: h.ID, DataPos: h.DataPos(), Size: h.DataSize()}, nil
	case id == block.IDZipped:
		return tr.readZipped(offset)
	case id == block.IDDataList:
		return tr.readList(offset, depth)
	case id == block.IDHeaderList:
		return tr.readHeaderList(offset, depth)
	default:
		return nil, fmt.Errorf("%w: %s at 0x%x in data tree", block.ErrUnexpectedID, id, offset)
	}
}

func (tr *treeReader) readZipped(offset int64) (Node, error) {
	h, body, err := block.Read(tr.r, offset, block.IDZipped)
	if err != nil {
		return nil, err
	}
	orig, err := body.ReadBytes(2)
	if err != nil {
		return nil, fmt.Errorf("reading DZ original type: %w", err)
	}
	zipType, err := body.ReadUint8()
	if err != nil {
		return nil, err
	}
	body.Skip(1)
	param, err := body.ReadUint32()
	if err != nil {
		return nil, err
	}
	origLength, err := body.ReadUint64()
	if err != nil {
		return nil, err
	}
	length, err := body.ReadUint64()
	if err != nil {
		return nil, err
	}
	if length > h.Length-uint64(body.Pos()-offset) {
		return nil, fmt.Errorf("%w: DZ at 0x%x stores %d bytes in a %d byte block", block.ErrInvalidBlock, offset, length, h.Length)
	}
	if origLength > math.MaxInt {
		return nil, fmt.Errorf("%w: DZ at 0x%x inflates to %d bytes", block.ErrInvalidBlock, offset, origLength)
	}

	return &Leaf{
		Offset:  offset,
		ID:      h.ID,
		DataPos: body.Pos(),
		Size:    origLength,
		Zip: &ZipInfo{
			OrigID: "##" + string(orig),
			Type:   filter.ZipType(zipType),
			Param:  param,
			Length: length,
		},
	}, nil
}

func (tr *treeReader) readList(offset int64, depth int) (Node, error) {
	h, body, err := block.Read(tr.r, offset, block.IDDataList)
	if err != nil {
		return nil, err
	}
	flags, err := body.ReadUint8()
	if err != nil {
		return nil, fmt.Errorf("reading DL flags: %w", err)
	}
	body.Skip(3)
	count, err := body.ReadUint32()
	if err != nil {
		return nil, fmt.Errorf("reading DL count: %w", err)
	}
	if int(count) > len(h.Links)-1 {
		return nil, fmt.Errorf("%w: DL at 0x%x lists %d blocks with %d links", block.ErrInvalidBlock, offset, count, len(h.Links))
	}

	list := &List{Offset: offset, ID: h.ID, Flags: flags}
	if flags&dlEqualLength != 0 {
		if list.EqualLength, err = body.ReadUint64(); err != nil {
			return nil, fmt.Errorf("reading DL equal length: %w", err)
		}
	} else {
		list.Offsets = make([]uint64, count)
		for i := range list.Offsets {
			if list.Offsets[i], err = body.ReadUint64(); err != nil {
				return nil, fmt.Errorf("reading DL offsets: %w", err)
			}
		}
	}

	for _, link := range h.Links[1 : 1+count] {
		if link == 0 {
			continue
		}
		child, err := tr.read(link, depth+1)
		if err != nil {
			return nil, err
		}
		list.Children = append(list.Children, child)
	}

	if next := h.Link(0); next != 0 {
		child, err := tr.read(next, depth)
		if err != nil {
			return nil, err
		}
		list.Children = append(list.Children, child)
	}
	return list, nil
}

func (tr *treeReader) readHeaderList(offset int64, depth int) (Node, error) {
	h, body, err := block.Read(tr.r, offset, block.IDHeaderList)
	if err != nil {
		return nil, err
	}
	if _, err := body.ReadUint16(); err != nil {
		return nil, fmt.Errorf("reading HL flags: %w", err)
	}
	zipType, err := body.ReadUint8()
	if err != nil {
		return nil, fmt.Errorf("reading HL zip type: %w", err)
	}

	list := &List{Offset: offset, ID: h.ID, ZipType: filter.ZipType(zipType)}
	if first := h.Link(0); first != 0 {
		child, err := tr.read(first, depth+1)
		if err != nil {
			return nil, err
		}
		list.Children = append(list.Children, child)
	}
	return list, nil
}

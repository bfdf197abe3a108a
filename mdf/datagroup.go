package mdf

import (
	"bytes"
	"fmt"
	"io"

	"github.com/robert-malhotra/go-mdf/internal/binary"
	"github.com/robert-malhotra/go-mdf/internal/block"
	"github.com/robert-malhotra/go-mdf/internal/data"
	"github.com/robert-malhotra/go-mdf/internal/metadata"
)

// DG link indexes.
const (
	dgLinkNext = iota
	dgLinkChannelGroup
	dgLinkData
	dgLinkComment
	dgLinkCount
)

// dgBodySize is the record id width byte plus 7 reserved bytes.
const dgBodySize = 8

// writeState records where a block went. The zero value is unwritten.
type writeState struct {
	written bool
	offset  int64
	length  uint64
}

// DataGroup is a DG block with its channel groups and data region.
type DataGroup struct {
	opts  *options
	state writeState
	next  int64

	groups   registry
	comment  *metadata.Comment
	dataLink int64
	tree     data.Node

	pending     []pendingRecord // records appended for the next Write
	pendingSize int64           // bytes written from pending
}

// NewDataGroup returns an empty, unwritten data group.
func NewDataGroup(opts ...Option) *DataGroup {
	return &DataGroup{opts: newOptions(opts)}
}

// ReadDataGroup reads the DG block at offset together with its comment,
// channel groups and data tree. Records are not parsed; see
// [DataGroup.PopulateRecords]. Record ids are taken as stored.
func ReadDataGroup(src io.ReaderAt, offset int64, opts ...Option) (*DataGroup, error) {
	if src == nil {
		return nil, fmt.Errorf("read data group: %w: nil source", ErrInvalidArgument)
	}
	dg := NewDataGroup(opts...)
	r := binary.NewReader(src)

	h, body, err := block.Read(r, offset, block.IDDataGroup)
	if err != nil {
		return nil, fmt.Errorf("reading data group: %w", err)
	}
	width, err := body.ReadUint8()
	if err != nil {
		return nil, fmt.Errorf("reading DG at 0x%x record id size: %w", offset, err)
	}
	if !validRecordIDWidth(width) {
		return nil, fmt.Errorf("%w: DG at 0x%x has record id size %d", block.ErrInvalidBlock, offset, width)
	}
	if _, err := body.ReadBytes(7); err != nil {
		return nil, fmt.Errorf("reading DG at 0x%x: %w", offset, err)
	}

	dg.state = writeState{written: true, offset: offset, length: h.Length}
	dg.next = h.Link(dgLinkNext)
	dg.dataLink = h.Link(dgLinkData)

	if dg.comment, err = metadata.ReadComment(r, h.Link(dgLinkComment)); err != nil {
		return nil, fmt.Errorf("DG at 0x%x comment: %w", offset, err)
	}

	seen := make(map[int64]bool)
	for link := h.Link(dgLinkChannelGroup); link != 0; {
		if seen[link] {
			return nil, fmt.Errorf("%w: CG chain of DG at 0x%x loops at 0x%x", block.ErrInvalidBlock, offset, link)
		}
		seen[link] = true
		cg, err := readChannelGroup(r, link, dg.opts.maxDepth)
		if err != nil {
			return nil, fmt.Errorf("DG at 0x%x: %w", offset, err)
		}
		dg.groups.groups = append(dg.groups.groups, cg)
		link = cg.next
	}
	dg.groups.width = width

	if dg.tree, err = data.ReadTree(r, dg.dataLink, dg.opts.maxDepth); err != nil {
		return nil, fmt.Errorf("DG at 0x%x data: %w", offset, err)
	}

	dg.opts.log.Debug("Read data group",
		"offset", offset, "channel_groups", len(dg.groups.groups),
		"record_id_size", width, "data_bytes", dg.DataSize())
	return dg, nil
}

// Index returns the file offset of the block, 0 if not written.
func (dg *DataGroup) Index() int64 {
	return dg.state.offset
}

// Next returns the offset of the next DG in the file, 0 for none.
func (dg *DataGroup) Next() int64 {
	return dg.next
}

// SetNext links next as the following data group in the file. next must
// already be written; nil clears the link.
func (dg *DataGroup) SetNext(next *DataGroup) error {
	if dg.state.written {
		return fmt.Errorf("set next: %w", ErrWritten)
	}
	if next == nil {
		dg.next = 0
		return nil
	}
	if !next.state.written {
		return fmt.Errorf("set next: %w: next data group not written", ErrInvalidArgument)
	}
	dg.next = next.state.offset
	return nil
}

// CreateChannelGroup appends a channel group. Record ids of all groups are
// reassigned and the record id size follows the new group count.
func (dg *DataGroup) CreateChannelGroup() *ChannelGroup {
	cg := &ChannelGroup{}
	dg.groups.add(cg)
	return cg
}

// ChannelGroups returns the channel groups in record id order.
func (dg *DataGroup) ChannelGroups() []*ChannelGroup {
	return dg.groups.groups
}

// RecordIDSize returns the width in bytes of the id prefixing each record.
func (dg *DataGroup) RecordIDSize() uint8 {
	return dg.groups.width
}

// SetRecordIDSize overrides the record id width. Valid sizes are 0, 1, 2, 4
// and 8.
func (dg *DataGroup) SetRecordIDSize(size uint8) error {
	if !validRecordIDWidth(size) {
		return fmt.Errorf("record id size %d: %w", size, ErrInvalidArgument)
	}
	dg.groups.width = size
	return nil
}

// Description returns the comment text. It does not create a comment.
func (dg *DataGroup) Description() string {
	return dg.comment.Text()
}

// SetDescription sets the comment text, creating the comment if needed.
func (dg *DataGroup) SetDescription(s string) {
	if dg.comment == nil {
		dg.comment = metadata.NewComment("DGcomment")
	}
	dg.comment.SetText(s)
}

// DataSize returns the byte count of the data region as known so far,
// without parsing it.
func (dg *DataGroup) DataSize() int64 {
	if dg.tree != nil {
		return int64(data.Size(dg.tree))
	}
	return dg.pendingSize + dg.pendingBytes()
}

// Free drops the data tree read from the file. DataSize reports 0 and
// PopulateRecords finds no records afterwards.
func (dg *DataGroup) Free() {
	dg.tree = nil
}

// Find returns the block at index among the channel groups (with their
// channels, comments and signal data) and then the data tree.
func (dg *DataGroup) Find(index int64) Block {
	if index <= 0 {
		return nil
	}
	for _, cg := range dg.groups.groups {
		if b := cg.find(index); b != nil {
			return b
		}
	}
	if n := data.Find(dg.tree, index); n != nil {
		return n
	}
	if dg.comment != nil && dg.comment.Offset == index {
		return dg.comment
	}
	if dg.state.offset == index {
		return dg
	}
	return nil
}

// pendingRecord is a record waiting for Write. Its id is encoded at write
// time since adding channel groups renumbers them.
type pendingRecord struct {
	cg      *ChannelGroup
	payload []byte
}

// AppendRecord adds a record of cg to the data region written by the next
// Write. payload excludes the record id; the id and the length prefix of
// VLSD groups are added by Write using the record ids in effect then.
func (dg *DataGroup) AppendRecord(cg *ChannelGroup, payload []byte) error {
	if dg.state.written {
		return fmt.Errorf("append record: %w", ErrWritten)
	}
	if cg == nil || !dg.groups.contains(cg) {
		return fmt.Errorf("append record: %w: channel group not in data group", ErrInvalidArgument)
	}
	if !cg.IsVLSD() && len(payload) != cg.RecordSize() {
		return fmt.Errorf("append record of %d bytes to CG %d: %w", len(payload), cg.recordID, ErrRecordSize)
	}

	dg.pending = append(dg.pending, pendingRecord{cg: cg, payload: bytes.Clone(payload)})
	cg.cycleCount++
	return nil
}

func (dg *DataGroup) pendingBytes() int64 {
	var n int64
	for _, rec := range dg.pending {
		n += int64(dg.groups.width) + int64(len(rec.payload))
		if rec.cg.IsVLSD() {
			n += 4
		}
	}
	return n
}

// encodePending lays out the pending records as a record stream.
func (dg *DataGroup) encodePending() []byte {
	w := int(dg.groups.width)
	out := make([]byte, 0, dg.pendingBytes())
	var id [8]byte
	for _, rec := range dg.pending {
		binary.EncodeUint(id[:w], rec.cg.recordID)
		out = append(out, id[:w]...)
		if rec.cg.IsVLSD() {
			var n [4]byte
			binary.Order.PutUint32(n[:], uint32(len(rec.payload)))
			out = append(out, n[:]...)
		}
		out = append(out, rec.payload...)
	}
	return out
}

// Write stores the data group: channel groups, comment, data region and
// finally the DG block itself. It returns the DG block length. Once the
// group has a file position, Write returns the same length and writes
// nothing.
func (dg *DataGroup) Write(w *Writer) (int64, error) {
	if w == nil {
		return 0, fmt.Errorf("write data group: %w: nil writer", ErrInvalidArgument)
	}
	if dg.state.written {
		return int64(dg.state.length), nil
	}

	links := make([]int64, dgLinkCount)
	links[dgLinkNext] = dg.next

	var cgNext int64
	for i := len(dg.groups.groups) - 1; i >= 0; i-- {
		off, err := dg.groups.groups[i].write(w, cgNext)
		if err != nil {
			return 0, fmt.Errorf("write data group: %w", err)
		}
		cgNext = off
	}
	links[dgLinkChannelGroup] = cgNext

	var err error
	if dg.comment != nil {
		if links[dgLinkComment], err = dg.comment.Write(w.bw); err != nil {
			return 0, fmt.Errorf("write data group: %w", err)
		}
	}
	var raw []byte
	if len(dg.pending) > 0 {
		raw = dg.encodePending()
		if dg.dataLink, err = w.writeData(block.IDData, raw, dg.transposeColumns()); err != nil {
			return 0, fmt.Errorf("write data group: %w", err)
		}
	}
	links[dgLinkData] = dg.dataLink

	b, err := w.bw.Begin(block.IDDataGroup, links)
	if err != nil {
		return 0, fmt.Errorf("write data group: %w", err)
	}
	body := b.Body()
	if err := body.WriteUint8(dg.groups.width); err != nil {
		return 0, fmt.Errorf("write data group: %w", err)
	}
	if err := body.WriteZeros(7); err != nil {
		return 0, fmt.Errorf("write data group: %w", err)
	}
	length, err := b.End()
	if err != nil {
		return 0, fmt.Errorf("write data group: %w", err)
	}

	dg.state = writeState{written: true, offset: b.Offset(), length: length}
	dg.pendingSize = int64(len(raw))
	dg.pending = nil
	dg.opts.log.Debug("Wrote data group",
		"offset", dg.state.offset, "channel_groups", len(dg.groups.groups),
		"record_id_size", dg.groups.width, "data_bytes", dg.pendingSize)
	return int64(length), nil
}

// transposeColumns returns the record length when all groups share one,
// else 0.
func (dg *DataGroup) transposeColumns() uint32 {
	var columns int
	for _, cg := range dg.groups.groups {
		if cg.IsVLSD() {
			return 0
		}
		n := int(dg.groups.width) + cg.RecordSize()
		if columns != 0 && n != columns {
			return 0
		}
		columns = n
	}
	return uint32(columns)
}

// Properties lists the block fields for display.
func (dg *DataGroup) Properties() []Property {
	props := []Property{
		{Label: "Block", Value: block.IDDataGroup},
		{Label: "File Position", Value: hex(dg.state.offset)},
		{Label: "Next DG", Value: hex(dg.next), Description: "Link to next data group"},
		{Label: "First CG", Value: hex(dg.firstChannelGroup()), Description: "Link to first channel group"},
		{Label: "Link Data", Value: hex(dg.dataLink), Description: "Link to Data"},
		{Label: "Comment MD", Value: hex(dg.comment.Index()), Description: dg.Description()},
		{Label: "Record ID Size [byte]", Value: fmt.Sprint(dg.groups.width)},
		{Label: "Channel Groups", Value: fmt.Sprint(len(dg.groups.groups))},
		{Label: "Data Size [byte]", Value: fmt.Sprint(dg.DataSize())},
	}
	if dg.tree != nil {
		props = append(props, Property{
			Label:       "Data Blocks",
			Value:       fmt.Sprint(len(data.Leaves(dg.tree))),
			Description: dg.tree.BlockID(),
		})
	}
	return props
}

func (dg *DataGroup) firstChannelGroup() int64 {
	if len(dg.groups.groups) == 0 {
		return 0
	}
	return dg.groups.groups[0].offset
}

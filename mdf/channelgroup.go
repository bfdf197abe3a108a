package mdf

import (
	"errors"
	"fmt"
	"io"

	"github.com/robert-malhotra/go-mdf/internal/binary"
	"github.com/robert-malhotra/go-mdf/internal/block"
	"github.com/robert-malhotra/go-mdf/internal/metadata"
)

// CG flags.
const (
	FlagVLSD uint16 = 1 << 0
)

// CG link indexes.
const (
	cgLinkNext = iota
	cgLinkChannel
	cgLinkName
	cgLinkSource
	cgLinkSampleReduction
	cgLinkComment
	cgLinkCount
)

// RecordFunc receives every record parsed for a channel group. sample counts
// the group's records from 0 for each populate. record is only valid during
// the call.
type RecordFunc func(cg *ChannelGroup, sample uint64, record []byte)

// ChannelGroup is a CG block: the layout of one kind of record.
type ChannelGroup struct {
	offset int64
	next   int64

	recordID      uint64
	cycleCount    uint64
	flags         uint16
	pathSeparator uint16
	dataBytes     uint32
	invalBytes    uint32
	name          string
	comment       *metadata.Comment
	channels      []*Channel

	observers []RecordFunc
	samples   uint64
	scratch   []byte
}

func readChannelGroup(r *binary.Reader, offset int64, maxDepth int) (*ChannelGroup, error) {
	h, body, err := block.Read(r, offset, block.IDChannelGroup)
	if err != nil {
		return nil, err
	}
	cg := &ChannelGroup{offset: offset, next: h.Link(cgLinkNext)}

	if cg.recordID, err = body.ReadUint64(); err != nil {
		return nil, fmt.Errorf("reading CG at 0x%x: %w", offset, err)
	}
	if cg.cycleCount, err = body.ReadUint64(); err != nil {
		return nil, fmt.Errorf("reading CG at 0x%x: %w", offset, err)
	}
	if cg.flags, err = body.ReadUint16(); err != nil {
		return nil, fmt.Errorf("reading CG at 0x%x: %w", offset, err)
	}
	if cg.pathSeparator, err = body.ReadUint16(); err != nil {
		return nil, fmt.Errorf("reading CG at 0x%x: %w", offset, err)
	}
	body.Skip(4) // reserved
	if cg.dataBytes, err = body.ReadUint32(); err != nil {
		return nil, fmt.Errorf("reading CG at 0x%x: %w", offset, err)
	}
	if cg.invalBytes, err = body.ReadUint32(); err != nil {
		return nil, fmt.Errorf("reading CG at 0x%x: %w", offset, err)
	}

	if cg.name, err = metadata.ReadText(r, h.Link(cgLinkName)); err != nil {
		return nil, fmt.Errorf("CG at 0x%x name: %w", offset, err)
	}
	if cg.comment, err = metadata.ReadComment(r, h.Link(cgLinkComment)); err != nil {
		return nil, fmt.Errorf("CG at 0x%x comment: %w", offset, err)
	}

	seen := make(map[int64]bool)
	for link := h.Link(cgLinkChannel); link != 0; {
		if seen[link] {
			return nil, fmt.Errorf("%w: CN chain of CG at 0x%x loops at 0x%x", block.ErrInvalidBlock, offset, link)
		}
		seen[link] = true
		ch, err := readChannel(r, link, maxDepth)
		if err != nil {
			return nil, err
		}
		cg.channels = append(cg.channels, ch)
		link = ch.next
	}
	return cg, nil
}

// Index returns the file offset of the block, 0 if not written.
func (cg *ChannelGroup) Index() int64 { return cg.offset }

// RecordID returns the id prefixing this group's records.
func (cg *ChannelGroup) RecordID() uint64 { return cg.recordID }

// SetRecordID overrides the id assigned by the data group.
func (cg *ChannelGroup) SetRecordID(id uint64) { cg.recordID = id }

// CycleCount returns the number of records stored for the group.
func (cg *ChannelGroup) CycleCount() uint64 { return cg.cycleCount }

func (cg *ChannelGroup) Flags() uint16 { return cg.flags }

// IsVLSD reports whether the group holds variable length signal data
// records rather than fixed size records.
func (cg *ChannelGroup) IsVLSD() bool { return cg.flags&FlagVLSD != 0 }

// SetVLSD marks the group as a VLSD group.
func (cg *ChannelGroup) SetVLSD(vlsd bool) {
	if vlsd {
		cg.flags |= FlagVLSD
	} else {
		cg.flags &^= FlagVLSD
	}
}

// DataBytes returns the record payload size.
func (cg *ChannelGroup) DataBytes() uint32 { return cg.dataBytes }

// InvalidBytes returns the size of the invalidation bytes after the payload.
func (cg *ChannelGroup) InvalidBytes() uint32 { return cg.invalBytes }

// RecordSize returns the bytes a fixed record occupies after its id.
func (cg *ChannelGroup) RecordSize() int { return int(cg.dataBytes) + int(cg.invalBytes) }

// SetRecordSize sets the payload and invalidation byte counts.
func (cg *ChannelGroup) SetRecordSize(dataBytes, invalBytes uint32) {
	cg.dataBytes = dataBytes
	cg.invalBytes = invalBytes
}

// Name returns the acquisition name.
func (cg *ChannelGroup) Name() string { return cg.name }

func (cg *ChannelGroup) SetName(name string) { cg.name = name }

// Description returns the comment text, "" if the group has no comment.
func (cg *ChannelGroup) Description() string { return cg.comment.Text() }

// SetDescription sets the comment text, creating the comment if needed.
func (cg *ChannelGroup) SetDescription(s string) {
	if cg.comment == nil {
		cg.comment = metadata.NewComment("CGcomment")
	}
	cg.comment.SetText(s)
}

// Channels returns the channels in file order.
func (cg *ChannelGroup) Channels() []*Channel {
	return cg.channels
}

// CreateChannel appends a channel whose value starts at byteOffset in the
// record and spans bitCount bits.
func (cg *ChannelGroup) CreateChannel(name string, typ ChannelType, dt DataType, byteOffset, bitCount uint32) *Channel {
	ch := &Channel{
		name:       name,
		typ:        typ,
		dataType:   dt,
		byteOffset: byteOffset,
		bitCount:   bitCount,
	}
	cg.channels = append(cg.channels, ch)
	return ch
}

// Subscribe registers fn to be called with every record parsed for the group.
func (cg *ChannelGroup) Subscribe(fn RecordFunc) {
	cg.observers = append(cg.observers, fn)
}

// Samples returns the number of records parsed by the last populate.
func (cg *ChannelGroup) Samples() uint64 { return cg.samples }

func (cg *ChannelGroup) resetSamples() { cg.samples = 0 }

// lengther is implemented by readers that know how many bytes remain,
// such as *bytes.Reader.
type lengther interface {
	Len() int
}

// ReadRecord consumes one record (id excluded) from r, hands it to the
// observers and returns the bytes consumed. It returns 0 when the record does
// not fit in what r holds or the group has no record layout; r is then left at
// an unspecified position.
func (cg *ChannelGroup) ReadRecord(r io.Reader) (int, error) {
	prefix := 0
	size := cg.RecordSize()
	if cg.IsVLSD() {
		var n [4]byte
		if _, err := io.ReadFull(r, n[:]); err != nil {
			return 0, truncated(err)
		}
		prefix = len(n)
		size = int(binary.Order.Uint32(n[:]))
	} else if size == 0 {
		return 0, nil
	}

	if l, ok := r.(lengther); ok && size > l.Len() {
		return 0, nil
	}
	if cap(cg.scratch) < size {
		cg.scratch = make([]byte, size)
	}
	record := cg.scratch[:size]
	if _, err := io.ReadFull(r, record); err != nil {
		return 0, truncated(err)
	}

	for _, fn := range cg.observers {
		fn(cg, cg.samples, record)
	}
	cg.samples++
	return prefix + size, nil
}

// truncated turns running out of bytes into a zero-length read.
func truncated(err error) error {
	if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
		return nil
	}
	return err
}

// find returns the block of the group at index: the group, one of its
// channels or what a channel links to, or the group comment.
func (cg *ChannelGroup) find(index int64) Block {
	if cg.offset == index {
		return cg
	}
	for _, ch := range cg.channels {
		if b := ch.find(index); b != nil {
			return b
		}
	}
	if cg.comment != nil && cg.comment.Offset == index {
		return cg.comment
	}
	return nil
}

// Properties lists the block fields for display.
func (cg *ChannelGroup) Properties() []Property {
	props := []Property{
		{Label: "Block", Value: block.IDChannelGroup},
		{Label: "File Position", Value: hex(cg.offset)},
		{Label: "Next CG", Value: hex(cg.next), Description: "Link to next channel group"},
		{Label: "Record ID", Value: fmt.Sprint(cg.recordID)},
		{Label: "Cycle Count", Value: fmt.Sprint(cg.cycleCount)},
		{Label: "Flags", Value: fmt.Sprintf("0x%04x", cg.flags)},
		{Label: "Data Bytes", Value: fmt.Sprint(cg.dataBytes)},
		{Label: "Invalid Bytes", Value: fmt.Sprint(cg.invalBytes)},
		{Label: "Channels", Value: fmt.Sprint(len(cg.channels))},
	}
	if cg.name != "" {
		props = append(props, Property{Label: "Acquisition Name", Value: cg.name})
	}
	if d := cg.Description(); d != "" {
		props = append(props, Property{Label: "Comment", Value: d})
	}
	return props
}

// write stores the group, its channels, name and comment; next is the
// following CG.
func (cg *ChannelGroup) write(w *Writer, next int64) (int64, error) {
	if cg.offset != 0 {
		return cg.offset, nil
	}
	links := make([]int64, cgLinkCount)
	links[cgLinkNext] = next

	// The CN chain is written back to front so every block knows its successor.
	var chNext int64
	for i := len(cg.channels) - 1; i >= 0; i-- {
		off, err := cg.channels[i].write(w, chNext)
		if err != nil {
			return 0, err
		}
		chNext = off
	}
	links[cgLinkChannel] = chNext

	var err error
	if cg.name != "" {
		if links[cgLinkName], err = metadata.WriteText(w.bw, block.IDText, cg.name); err != nil {
			return 0, fmt.Errorf("writing CG name: %w", err)
		}
	}
	if cg.comment != nil {
		if links[cgLinkComment], err = cg.comment.Write(w.bw); err != nil {
			return 0, err
		}
	}

	var body binary.Buffer
	bw := binary.NewWriter(&body)
	bw.WriteUint64(cg.recordID)
	bw.WriteUint64(cg.cycleCount)
	bw.WriteUint16(cg.flags)
	bw.WriteUint16(cg.pathSeparator)
	bw.WriteZeros(4)
	bw.WriteUint32(cg.dataBytes)
	bw.WriteUint32(cg.invalBytes)

	offset, err := w.bw.Place(block.IDChannelGroup, links, body.Bytes())
	if err != nil {
		return 0, fmt.Errorf("writing CG %d: %w", cg.recordID, err)
	}
	cg.offset = offset
	cg.next = next
	return offset, nil
}

package mdf

import (
	"fmt"
	"io"

	"github.com/robert-malhotra/go-mdf/internal/binary"
	"github.com/robert-malhotra/go-mdf/internal/block"
	"github.com/robert-malhotra/go-mdf/internal/data"
	"github.com/robert-malhotra/go-mdf/internal/metadata"
)

// ChannelType is the cn_type field of a CN block.
type ChannelType uint8

const (
	FixedLength ChannelType = iota
	VariableLength
	Master
	VirtualMaster
	Sync
	MaxLength
	VirtualData
)

func (t ChannelType) String() string {
	switch t {
	case FixedLength:
		return "fixed"
	case VariableLength:
		return "vlsd"
	case Master:
		return "master"
	case VirtualMaster:
		return "virtual master"
	case Sync:
		return "sync"
	case MaxLength:
		return "max length"
	case VirtualData:
		return "virtual data"
	default:
		return fmt.Sprintf("type %d", uint8(t))
	}
}

// DataType is the cn_data_type field of a CN block.
type DataType uint8

const (
	UintLE DataType = iota
	UintBE
	IntLE
	IntBE
	FloatLE
	FloatBE
	StringASCII
	StringUTF8
	StringUTF16LE
	StringUTF16BE
	ByteArray
)

// CN link indexes.
const (
	cnLinkNext = iota
	cnLinkComposition
	cnLinkName
	cnLinkSource
	cnLinkConversion
	cnLinkData
	cnLinkUnit
	cnLinkComment
	cnLinkCount
)

// Channel is a CN block. Values are not decoded here: a channel knows where
// its bytes sit in a record and, for VLSD channels, holds the signal data the
// record points into while records are parsed.
type Channel struct {
	offset int64
	next   int64

	name       string
	typ        ChannelType
	syncType   uint8
	dataType   DataType
	bitOffset  uint8
	byteOffset uint32
	bitCount   uint32
	flags      uint32
	invalBit   uint32
	precision  uint8
	ranges     [6]float64
	comment    *metadata.Comment

	dataLink int64
	signal   data.Node // SD tree of a VLSD channel
	loaded   []byte    // signal data between ReadData and ClearData
	pending  []byte    // signal data to write
}

func readChannel(r *binary.Reader, offset int64, maxDepth int) (*Channel, error) {
	h, body, err := block.Read(r, offset, block.IDChannel)
	if err != nil {
		return nil, err
	}
	ch := &Channel{offset: offset, next: h.Link(cnLinkNext), dataLink: h.Link(cnLinkData)}

	var fields struct {
		typ, sync, dataType, bitOffset uint8
	}
	for _, p := range []*uint8{&fields.typ, &fields.sync, &fields.dataType, &fields.bitOffset} {
		if *p, err = body.ReadUint8(); err != nil {
			return nil, fmt.Errorf("reading CN at 0x%x: %w", offset, err)
		}
	}
	ch.typ = ChannelType(fields.typ)
	ch.syncType = fields.sync
	ch.dataType = DataType(fields.dataType)
	ch.bitOffset = fields.bitOffset

	for _, p := range []*uint32{&ch.byteOffset, &ch.bitCount, &ch.flags, &ch.invalBit} {
		if *p, err = body.ReadUint32(); err != nil {
			return nil, fmt.Errorf("reading CN at 0x%x: %w", offset, err)
		}
	}
	if ch.precision, err = body.ReadUint8(); err != nil {
		return nil, fmt.Errorf("reading CN at 0x%x: %w", offset, err)
	}
	body.Skip(3) // reserved, attachment count
	for i := range ch.ranges {
		if ch.ranges[i], err = body.ReadFloat64(); err != nil {
			return nil, fmt.Errorf("reading CN at 0x%x: %w", offset, err)
		}
	}

	if ch.name, err = metadata.ReadText(r, h.Link(cnLinkName)); err != nil {
		return nil, fmt.Errorf("CN at 0x%x name: %w", offset, err)
	}
	if ch.comment, err = metadata.ReadComment(r, h.Link(cnLinkComment)); err != nil {
		return nil, fmt.Errorf("CN at 0x%x comment: %w", offset, err)
	}

	// A VLSD channel links either signal data blocks or a VLSD channel group;
	// only the former is loaded here.
	if ch.typ == VariableLength && ch.dataLink != 0 {
		id, err := block.PeekID(r, ch.dataLink)
		if err != nil {
			return nil, err
		}
		if id != block.IDChannelGroup {
			if ch.signal, err = data.ReadTree(r, ch.dataLink, maxDepth); err != nil {
				return nil, fmt.Errorf("CN %q signal data: %w", ch.name, err)
			}
		}
	}
	return ch, nil
}

// Index returns the file offset of the block, 0 if not written.
func (ch *Channel) Index() int64 { return ch.offset }

func (ch *Channel) Name() string       { return ch.name }
func (ch *Channel) Type() ChannelType  { return ch.typ }
func (ch *Channel) DataType() DataType { return ch.dataType }
func (ch *Channel) ByteOffset() uint32 { return ch.byteOffset }
func (ch *Channel) BitOffset() uint8   { return ch.bitOffset }
func (ch *Channel) BitCount() uint32   { return ch.bitCount }
func (ch *Channel) Flags() uint32      { return ch.flags }

// SetBitOffset sets the bit position of the value within its first byte.
// Offsets of whole bytes belong in the byte offset, so b must be below 8.
func (ch *Channel) SetBitOffset(b uint8) error {
	if b > 7 {
		return fmt.Errorf("bit offset %d: %w", b, ErrInvalidArgument)
	}
	ch.bitOffset = b
	return nil
}

// Description returns the comment text, "" if the channel has no comment.
func (ch *Channel) Description() string { return ch.comment.Text() }

// SetDescription sets the comment text, creating the comment if needed.
func (ch *Channel) SetDescription(s string) {
	if ch.comment == nil {
		ch.comment = metadata.NewComment("CNcomment")
	}
	ch.comment.SetText(s)
}

// RawBytes returns the bytes of record the channel value occupies, or nil if
// the record is too short. For a VLSD channel these hold the offset into the
// signal data.
func (ch *Channel) RawBytes(record []byte) []byte {
	n := (uint64(ch.bitOffset) + uint64(ch.bitCount) + 7) / 8
	start := uint64(ch.byteOffset)
	if n == 0 || start+n > uint64(len(record)) {
		return nil
	}
	return record[start : start+n]
}

// ReadData loads the signal data of a VLSD channel so that [Channel.VLSD]
// can resolve values. Other channels have nothing to load.
func (ch *Channel) ReadData(src io.ReaderAt) error {
	if ch.signal == nil {
		return nil
	}
	b, err := data.ReadAll(ch.signal, src)
	if err != nil {
		return fmt.Errorf("loading signal data of %q: %w", ch.name, err)
	}
	ch.loaded = b
	return nil
}

// ClearData drops signal data loaded by ReadData.
func (ch *Channel) ClearData() {
	ch.loaded = nil
}

// VLSD returns the value stored at offset in the loaded signal data.
// Each value is a uint32 length followed by that many bytes.
func (ch *Channel) VLSD(offset uint64) ([]byte, error) {
	if ch.loaded == nil {
		if ch.pending != nil {
			return vlsdValue(ch.pending, offset)
		}
		return nil, fmt.Errorf("%w: channel %q", ErrNoSignalData, ch.name)
	}
	return vlsdValue(ch.loaded, offset)
}

func vlsdValue(sd []byte, offset uint64) ([]byte, error) {
	if offset > uint64(len(sd)) || uint64(len(sd))-offset < 4 {
		return nil, fmt.Errorf("VLSD offset %d outside %d bytes of signal data: %w", offset, len(sd), io.ErrUnexpectedEOF)
	}
	n := uint64(binary.Order.Uint32(sd[offset:]))
	start := offset + 4
	if uint64(len(sd))-start < n {
		return nil, fmt.Errorf("VLSD value at %d claims %d bytes: %w", offset, n, io.ErrUnexpectedEOF)
	}
	return sd[start : start+n], nil
}

// AppendSignal adds a value to the signal data written with a VLSD channel and
// returns the offset a record stores to refer to it.
func (ch *Channel) AppendSignal(value []byte) (uint64, error) {
	if ch.typ != VariableLength {
		return 0, fmt.Errorf("append signal to %s channel %q: %w", ch.typ, ch.name, ErrInvalidArgument)
	}
	if ch.offset != 0 {
		return 0, fmt.Errorf("append signal to %q: %w", ch.name, ErrWritten)
	}
	offset := uint64(len(ch.pending))
	var n [4]byte
	binary.Order.PutUint32(n[:], uint32(len(value)))
	ch.pending = append(ch.pending, n[:]...)
	ch.pending = append(ch.pending, value...)
	return offset, nil
}

// find returns the block of the channel at index: the channel itself, its
// comment or a node of its signal data.
func (ch *Channel) find(index int64) Block {
	if ch.offset == index {
		return ch
	}
	if ch.comment != nil && ch.comment.Offset == index {
		return ch.comment
	}
	if n := data.Find(ch.signal, index); n != nil {
		return n
	}
	return nil
}

// write stores the channel and what it links to; next is the following CN.
func (ch *Channel) write(w *Writer, next int64) (int64, error) {
	if ch.offset != 0 {
		return ch.offset, nil
	}
	links := make([]int64, cnLinkCount)
	links[cnLinkNext] = next

	var err error
	if ch.name != "" {
		if links[cnLinkName], err = metadata.WriteText(w.bw, block.IDText, ch.name); err != nil {
			return 0, fmt.Errorf("writing CN %q name: %w", ch.name, err)
		}
	}
	if ch.comment != nil {
		if links[cnLinkComment], err = ch.comment.Write(w.bw); err != nil {
			return 0, err
		}
	}
	if len(ch.pending) > 0 {
		if ch.dataLink, err = w.writeData(block.IDSignalData, ch.pending, 0); err != nil {
			return 0, fmt.Errorf("writing CN %q signal data: %w", ch.name, err)
		}
	}
	links[cnLinkData] = ch.dataLink

	// Writes into a Buffer cannot fail.
	var body binary.Buffer
	bw := binary.NewWriter(&body)
	for _, v := range []uint8{uint8(ch.typ), ch.syncType, uint8(ch.dataType), ch.bitOffset} {
		bw.WriteUint8(v)
	}
	for _, v := range []uint32{ch.byteOffset, ch.bitCount, ch.flags, ch.invalBit} {
		bw.WriteUint32(v)
	}
	bw.WriteUint8(ch.precision)
	bw.WriteZeros(3)
	for _, v := range ch.ranges {
		bw.WriteFloat64(v)
	}

	offset, err := w.bw.Place(block.IDChannel, links, body.Bytes())
	if err != nil {
		return 0, fmt.Errorf("writing CN %q: %w", ch.name, err)
	}

	ch.offset = offset
	ch.next = next
	return ch.offset, nil
}

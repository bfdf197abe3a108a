package block

import (
	"fmt"
	"io"

	"github.com/robert-malhotra/go-mdf/internal/alloc"
	"github.com/robert-malhotra/go-mdf/internal/binary"
)

// Writer appends blocks to a file.
type Writer struct {
	w     *binary.Writer
	alloc *alloc.Allocator
	open  *Block
}

// NewWriter creates a block writer whose first block is placed at base.
func NewWriter(dst io.WriterAt, base uint64) *Writer {
	return &Writer{
		w:     binary.NewWriter(dst),
		alloc: alloc.New(base),
	}
}

// Allocator returns the allocator tracking placed blocks.
func (bw *Writer) Allocator() *alloc.Allocator {
	return bw.alloc
}

// Block is a block being written. Its length is patched by End.
type Block struct {
	bw     *Writer
	id     string
	offset int64
	body   *binary.Writer
	ended  bool
}

// Begin places a new block at the end of the file and writes its header and
// links with a provisional length. Only one block may be open at a time:
// children must be written before their parent begins.
func (bw *Writer) Begin(id string, links []int64) (*Block, error) {
	if bw.open != nil {
		return nil, fmt.Errorf("begin %s: %s block at 0x%x still open", id, bw.open.id, bw.open.offset)
	}
	fixed := uint64(HeaderSize + binary.LinkSize*len(links))
	offset := int64(bw.alloc.Alloc(fixed, Tag(id)))

	hw := bw.w.At(offset)
	if err := writeHeader(hw, id, fixed, links); err != nil {
		return nil, fmt.Errorf("writing %s header: %w", id, err)
	}

	b := &Block{bw: bw, id: id, offset: offset, body: hw}
	bw.open = b
	return b, nil
}

// Offset returns the file offset of the block.
func (b *Block) Offset() int64 {
	return b.offset
}

// Body returns the writer positioned after the header and links.
func (b *Block) Body() *binary.Writer {
	return b.body
}

// End patches the block length and closes the block, returning the length.
func (b *Block) End() (uint64, error) {
	if b.ended {
		return 0, fmt.Errorf("%s block at 0x%x already ended", b.id, b.offset)
	}
	b.ended = true
	b.bw.open = nil

	length := uint64(b.body.Pos() - b.offset)
	if err := b.bw.alloc.Resize(uint64(b.offset), length); err != nil {
		return 0, err
	}
	if err := b.bw.w.At(b.offset + 8).WriteUint64(length); err != nil {
		return 0, fmt.Errorf("patching %s length: %w", b.id, err)
	}
	return length, nil
}

// Place writes a complete block with the given links and data section.
func (bw *Writer) Place(id string, links []int64, data []byte) (int64, error) {
	b, err := bw.Begin(id, links)
	if err != nil {
		return 0, err
	}
	if err := b.Body().WriteBytes(data); err != nil {
		return 0, fmt.Errorf("writing %s data: %w", id, err)
	}
	if _, err := b.End(); err != nil {
		return 0, err
	}
	return b.Offset(), nil
}

func writeHeader(w *binary.Writer, id string, length uint64, links []int64) error {
	if len(id) != 4 {
		return fmt.Errorf("%w: block id %q", ErrInvalidBlock, id)
	}
	if err := w.WriteBytes([]byte(id)); err != nil {
		return err
	}
	if err := w.WriteZeros(4); err != nil {
		return err
	}
	if err := w.WriteUint64(length); err != nil {
		return err
	}
	if err := w.WriteUint64(uint64(len(links))); err != nil {
		return err
	}
	return w.WriteLinks(links)
}

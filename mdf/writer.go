package mdf

import (
	"fmt"
	"io"

	"github.com/robert-malhotra/go-mdf/internal/block"
	"github.com/robert-malhotra/go-mdf/internal/data"
)

// IDBlockSize is the size of the file identification block at offset 0.
// Blocks written by a Writer start after it unless told otherwise.
const IDBlockSize = 64

// Writer appends blocks to an MDF4 file.
type Writer struct {
	bw   *block.Writer
	opts *writeOptions
}

// NewWriter returns a Writer that places its first block at base, or right
// after the identification block when base is 0.
func NewWriter(dst io.WriterAt, base int64, opts ...WriteOption) (*Writer, error) {
	if dst == nil {
		return nil, fmt.Errorf("new writer: %w: nil destination", ErrInvalidArgument)
	}
	if base < 0 {
		return nil, fmt.Errorf("new writer: %w: negative base %d", ErrInvalidArgument, base)
	}
	if base == 0 {
		base = IDBlockSize
	}
	o := defaultWriteOptions()
	for _, opt := range opts {
		opt(o)
	}
	return &Writer{bw: block.NewWriter(dst, uint64(base)), opts: o}, nil
}

// EOF returns the offset just past the last block written.
func (w *Writer) EOF() int64 {
	return int64(w.bw.Allocator().EOFAddr())
}

// writeData stores a data region of blocks of type id.
// recordSize feeds the transposition filter.
func (w *Writer) writeData(id string, raw []byte, recordSize uint32) (int64, error) {
	return data.Write(w.bw, id, raw, data.WriteOptions{
		FragmentSize: w.opts.fragmentSize,
		Compress:     w.opts.compress,
		ZipType:      w.opts.zipType,
		ZipParam:     recordSize,
		Level:        w.opts.level,
	})
}

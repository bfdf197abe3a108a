package data

import (
	"errors"
	"fmt"
	"io"
	"math"

	"github.com/robert-malhotra/go-mdf/internal/binary"
	"github.com/robert-malhotra/go-mdf/internal/block"
	"github.com/robert-malhotra/go-mdf/internal/filter"
)

// ReadAll returns the raw bytes of the leaf, inflating DZ payloads.
func (l *Leaf) ReadAll(src io.ReaderAt) ([]byte, error) {
	if l.Size > math.MaxInt || (l.Zip != nil && l.Zip.Length > math.MaxInt) {
		return nil, fmt.Errorf("%w: %s at 0x%x too large", block.ErrInvalidBlock, l.ID, l.Offset)
	}
	r := binary.NewReader(src).At(l.DataPos)
	if l.Zip == nil {
		data, err := r.ReadBytes(int(l.Size))
		if err != nil {
			return nil, fmt.Errorf("reading %s at 0x%x: %w", l.ID, l.Offset, err)
		}
		return data, nil
	}

	packed, err := r.ReadBytes(int(l.Zip.Length))
	if err != nil {
		return nil, fmt.Errorf("reading DZ at 0x%x: %w", l.Offset, err)
	}
	p, err := filter.NewPipeline(l.Zip.Type, l.Zip.Param)
	if err != nil {
		return nil, fmt.Errorf("DZ at 0x%x: %w", l.Offset, err)
	}
	data, err := p.DecodeSize(packed, int64(l.Size))
	if errors.Is(err, filter.ErrSizeLimit) {
		return nil, fmt.Errorf("%w: DZ at 0x%x inflates past %d bytes: %w", ErrZipSize, l.Offset, l.Size, err)
	}
	if err != nil {
		return nil, fmt.Errorf("DZ at 0x%x: %w", l.Offset, err)
	}
	if uint64(len(data)) != l.Size {
		return nil, fmt.Errorf("%w: DZ at 0x%x inflated to %d bytes, header says %d", ErrZipSize, l.Offset, len(data), l.Size)
	}
	return data, nil
}

// CopyTo appends the raw bytes of the leaf to w and returns the count.
// Uncompressed leaves are streamed without an intermediate buffer.
func (l *Leaf) CopyTo(w io.Writer, src io.ReaderAt) (int64, error) {
	if l.Zip == nil {
		if l.Size > math.MaxInt64 {
			return 0, fmt.Errorf("%w: %s at 0x%x too large", block.ErrInvalidBlock, l.ID, l.Offset)
		}
		n, err := io.Copy(w, io.NewSectionReader(src, l.DataPos, int64(l.Size)))
		if err != nil {
			return n, fmt.Errorf("copying %s at 0x%x: %w", l.ID, l.Offset, err)
		}
		if n != int64(l.Size) {
			return n, fmt.Errorf("copying %s at 0x%x: %w", l.ID, l.Offset, io.ErrUnexpectedEOF)
		}
		return n, nil
	}

	data, err := l.ReadAll(src)
	if err != nil {
		return 0, err
	}
	n, err := w.Write(data)
	return int64(n), err
}

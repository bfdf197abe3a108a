package data

import (
	"fmt"

	"github.com/robert-malhotra/go-mdf/internal/binary"
	"github.com/robert-malhotra/go-mdf/internal/block"
	"github.com/robert-malhotra/go-mdf/internal/filter"
)

// WriteOptions controls how Write lays out a byte run.
type WriteOptions struct {
	// FragmentSize caps the raw bytes per leaf block; 0 writes one leaf.
	FragmentSize int

	// Compress stores every leaf as a DZ block under an HL.
	Compress bool
	ZipType  filter.ZipType
	ZipParam uint32 // transposition columns, usually the record size
	Level    int    // deflate level, -1 for default
}

// Write stores data as leaf blocks of type id (##DT, ##SD, ...) and returns
// the offset of the root block, or 0 when data is empty.
func Write(bw *block.Writer, id string, data []byte, opts WriteOptions) (int64, error) {
	if len(data) == 0 {
		return 0, nil
	}
	if !IsLeafID(id) {
		return 0, fmt.Errorf("%w: %s is not a data block", block.ErrUnexpectedID, id)
	}

	fragments := split(data, opts.FragmentSize)
	if len(fragments) == 1 && !opts.Compress {
		return bw.Place(id, nil, data)
	}

	var pipeline *filter.Pipeline
	if opts.Compress {
		var err error
		if pipeline, err = filter.NewPipelineLevel(opts.ZipType, opts.ZipParam, opts.Level); err != nil {
			return 0, err
		}
	}

	links := make([]int64, 0, len(fragments))
	for _, frag := range fragments {
		var offset int64
		var err error
		if pipeline != nil {
			offset, err = writeZipped(bw, id, frag, pipeline, opts.ZipParam)
		} else {
			offset, err = bw.Place(id, nil, frag)
		}
		if err != nil {
			return 0, err
		}
		links = append(links, offset)
	}

	dl, err := writeList(bw, links, uint64(len(fragments[0])))
	if err != nil {
		return 0, err
	}
	if pipeline == nil {
		return dl, nil
	}
	return writeHeaderList(bw, dl, opts.ZipType)
}

func split(data []byte, size int) [][]byte {
	if size <= 0 || len(data) <= size {
		return [][]byte{data}
	}
	fragments := make([][]byte, 0, (len(data)+size-1)/size)
	for len(data) > size {
		fragments = append(fragments, data[:size])
		data = data[size:]
	}
	return append(fragments, data)
}

func writeZipped(bw *block.Writer, origID string, raw []byte, p *filter.Pipeline, param uint32) (int64, error) {
	packed, err := p.Encode(raw)
	if err != nil {
		return 0, err
	}
	if p.ZipType() != filter.ZipTransposeDeflate {
		param = 0
	}

	// Writes into a Buffer cannot fail.
	var body binary.Buffer
	w := binary.NewWriter(&body)
	w.WriteBytes([]byte(block.Tag(origID)))
	w.WriteUint8(uint8(p.ZipType()))
	w.WriteZeros(1)
	w.WriteUint32(param)
	w.WriteUint64(uint64(len(raw)))
	w.WriteUint64(uint64(len(packed)))
	w.WriteBytes(packed)

	return bw.Place(block.IDZipped, nil, body.Bytes())
}

func writeList(bw *block.Writer, children []int64, equalLength uint64) (int64, error) {
	var body binary.Buffer
	w := binary.NewWriter(&body)
	w.WriteUint8(dlEqualLength)
	w.WriteZeros(3)
	w.WriteUint32(uint32(len(children)))
	w.WriteUint64(equalLength)

	return bw.Place(block.IDDataList, append([]int64{0}, children...), body.Bytes())
}

func writeHeaderList(bw *block.Writer, dl int64, zip filter.ZipType) (int64, error) {
	var body binary.Buffer
	w := binary.NewWriter(&body)
	w.WriteUint16(dlEqualLength)
	w.WriteUint8(uint8(zip))
	w.WriteZeros(5)

	return bw.Place(block.IDHeaderList, []int64{dl}, body.Bytes())
}

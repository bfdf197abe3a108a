package filter

import (
	"fmt"
)

// Pipeline is the filter chain of one DZ block.
type Pipeline struct {
	zip     ZipType
	filters []Filter
}

// NewPipeline creates the filter chain for a zip type.
// param is the dz_zip_parameter (transposition column count).
func NewPipeline(zip ZipType, param uint32) (*Pipeline, error) {
	return NewPipelineLevel(zip, param, -1)
}

// NewPipelineLevel is NewPipeline with an explicit deflate level.
func NewPipelineLevel(zip ZipType, param uint32, level int) (*Pipeline, error) {
	switch zip {
	case ZipDeflate:
		return &Pipeline{zip: zip, filters: []Filter{NewDeflate(level)}}, nil
	case ZipTransposeDeflate:
		return &Pipeline{zip: zip, filters: []Filter{NewTranspose(param), NewDeflate(level)}}, nil
	default:
		return nil, fmt.Errorf("%w: %d", ErrUnsupportedZip, uint8(zip))
	}
}

// ZipType returns the zip type the pipeline implements.
func (p *Pipeline) ZipType() ZipType {
	return p.zip
}

// Encode applies the filters in order.
func (p *Pipeline) Encode(input []byte) ([]byte, error) {
	data := input
	for _, f := range p.filters {
		var err error
		data, err = f.Encode(data)
		if err != nil {
			return nil, fmt.Errorf("%s encode: %w", p.zip, err)
		}
	}
	return data, nil
}

// Decode applies the filters in reverse order.
func (p *Pipeline) Decode(input []byte) ([]byte, error) {
	data := input
	for i := len(p.filters) - 1; i >= 0; i-- {
		var err error
		data, err = p.filters[i].Decode(data)
		if err != nil {
			return nil, fmt.Errorf("%s decode: %w", p.zip, err)
		}
	}
	return data, nil
}

// DecodeSize is Decode for a block whose raw size is known: inflation stops
// with ErrSizeLimit once the output would exceed size.
func (p *Pipeline) DecodeSize(input []byte, size int64) ([]byte, error) {
	data := input
	for i := len(p.filters) - 1; i >= 0; i-- {
		var err error
		if d, ok := p.filters[i].(*Deflate); ok {
			data, err = d.DecodeLimit(data, size)
		} else {
			data, err = p.filters[i].Decode(data)
		}
		if err != nil {
			return nil, fmt.Errorf("%s decode: %w", p.zip, err)
		}
	}
	return data, nil
}

// Len returns the number of filters in the pipeline.
func (p *Pipeline) Len() int {
	return len(p.filters)
}

package filter

import (
	"bytes"
	"fmt"
	"io"

	"github.com/klauspost/compress/zlib"
)

// Deflate implements zlib-wrapped DEFLATE compression.
type Deflate struct {
	level int
}

// NewDeflate creates a DEFLATE filter. Levels outside 0-9 select the default level.
func NewDeflate(level int) *Deflate {
	if level < zlib.NoCompression || level > zlib.BestCompression {
		level = zlib.DefaultCompression
	}
	return &Deflate{level: level}
}

func (f *Deflate) Encode(input []byte) ([]byte, error) {
	var buf bytes.Buffer
	w, err := zlib.NewWriterLevel(&buf, f.level)
	if err != nil {
		return nil, fmt.Errorf("zlib writer: %w", err)
	}
	if _, err := w.Write(input); err != nil {
		return nil, fmt.Errorf("zlib compress: %w", err)
	}
	if err := w.Close(); err != nil {
		return nil, fmt.Errorf("zlib compress: %w", err)
	}
	return buf.Bytes(), nil
}

func (f *Deflate) Decode(input []byte) ([]byte, error) {
	return f.DecodeLimit(input, -1)
}

// DecodeLimit inflates input, failing with ErrSizeLimit as soon as the
// output exceeds limit bytes. A negative limit means no limit.
func (f *Deflate) DecodeLimit(input []byte, limit int64) ([]byte, error) {
	r, err := zlib.NewReader(bytes.NewReader(input))
	if err != nil {
		return nil, fmt.Errorf("zlib reader: %w", err)
	}
	defer r.Close()

	var src io.Reader = r
	if limit >= 0 {
		src = io.LimitReader(r, limit+1)
	}
	output, err := io.ReadAll(src)
	if err != nil {
		return nil, fmt.Errorf("zlib decompress: %w", err)
	}
	if limit >= 0 && int64(len(output)) > limit {
		return nil, fmt.Errorf("%w: more than %d bytes", ErrSizeLimit, limit)
	}
	return output, nil
}

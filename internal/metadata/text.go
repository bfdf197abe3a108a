package metadata

import (
	"bytes"
	"fmt"

	"github.com/robert-malhotra/go-mdf/internal/binary"
	"github.com/robert-malhotra/go-mdf/internal/block"
)

// ReadText returns the string stored in the TX or MD block at offset.
// A zero offset yields "". Trailing zero bytes are dropped.
func ReadText(r *binary.Reader, offset int64) (string, error) {
	if offset == 0 {
		return "", nil
	}
	h, body, err := block.Read(r, offset, block.IDText, block.IDMetadata)
	if err != nil {
		return "", err
	}
	raw, err := body.ReadBytes(int(h.DataSize()))
	if err != nil {
		return "", fmt.Errorf("reading %s at 0x%x: %w", h.ID, offset, err)
	}
	if i := bytes.IndexByte(raw, 0); i >= 0 {
		raw = raw[:i]
	}
	return string(raw), nil
}

// WriteText stores s as a block of type id (##TX or ##MD) and returns its
// offset. The string is zero terminated and padded to the block alignment.
func WriteText(bw *block.Writer, id, s string) (int64, error) {
	if id != block.IDText && id != block.IDMetadata {
		return 0, fmt.Errorf("%w: %s is not a text block", block.ErrUnexpectedID, id)
	}
	size := binary.AlignUp(int64(len(s)+1), 8)
	payload := make([]byte, size)
	copy(payload, s)
	return bw.Place(id, nil, payload)
}

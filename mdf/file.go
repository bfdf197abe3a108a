package mdf

import (
	"bytes"
	"fmt"
	"io"
	"strings"

	"github.com/robert-malhotra/go-mdf/internal/binary"
	"github.com/robert-malhotra/go-mdf/internal/block"
)

// HeaderOffset is the position of the HD block, right after the
// identification block.
const HeaderOffset = IDBlockSize

// Version reads the identification block at the start of src and returns the
// format version string, for example "4.10".
func Version(src io.ReaderAt) (string, error) {
	if src == nil {
		return "", fmt.Errorf("version: %w: nil source", ErrInvalidArgument)
	}
	id, err := binary.NewReader(src).ReadBytes(16)
	if err != nil {
		return "", fmt.Errorf("reading identification block: %w", err)
	}
	if !bytes.HasPrefix(id, []byte("MDF ")) && !bytes.HasPrefix(id, []byte("UnFinMF ")) {
		return "", ErrNotMDF
	}
	version := strings.TrimSpace(string(id[8:16]))
	if !strings.HasPrefix(version, "4.") {
		return "", fmt.Errorf("%w: version %q", ErrNotMDF, version)
	}
	return version, nil
}

// ReadDataGroups reads every data group of an MDF4 file in file order,
// following the chain from the HD block.
func ReadDataGroups(src io.ReaderAt, opts ...Option) ([]*DataGroup, error) {
	if _, err := Version(src); err != nil {
		return nil, err
	}
	h, _, err := block.Read(binary.NewReader(src), HeaderOffset, block.IDHeader)
	if err != nil {
		return nil, fmt.Errorf("reading header block: %w", err)
	}

	var groups []*DataGroup
	seen := make(map[int64]bool)
	for link := h.Link(0); link != 0; {
		if seen[link] {
			return nil, fmt.Errorf("%w: DG chain loops at 0x%x", block.ErrInvalidBlock, link)
		}
		seen[link] = true
		dg, err := ReadDataGroup(src, link, opts...)
		if err != nil {
			return nil, err
		}
		groups = append(groups, dg)
		link = dg.Next()
	}
	return groups, nil
}

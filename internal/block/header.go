package block

import (
	"errors"
	"fmt"
	"math"

	"github.com/robert-malhotra/go-mdf/internal/binary"
)

// HeaderSize is the size of the fixed block header, links excluded.
const HeaderSize = 24

// Block identifiers used by the data-group engine.
const (
	IDHeader        = "##HD"
	IDDataGroup     = "##DG"
	IDChannelGroup  = "##CG"
	IDChannel       = "##CN"
	IDData          = "##DT"
	IDReductionData = "##RD"
	IDSignalData    = "##SD"
	IDDataValues    = "##DV"
	IDZipped        = "##DZ"
	IDDataList      = "##DL"
	IDHeaderList    = "##HL"
	IDText          = "##TX"
	IDMetadata      = "##MD"
)

// Errors
var (
	ErrInvalidBlock = errors.New("invalid block")
	ErrUnexpectedID = errors.New("unexpected block id")
	ErrNilLink      = errors.New("nil link")
)

// maxLinks bounds the link count of a single block read from a file.
// A corrupt count would otherwise drive a huge allocation.
const maxLinks = 1 << 24

// Header is a parsed block header and link table.
type Header struct {
	ID     string
	Offset int64
	Length uint64
	Links  []int64
}

// Tag returns the two letter tag of the block id ("DG" for "##DG").
func (h *Header) Tag() string {
	return Tag(h.ID)
}

// Link returns link i, or 0 when the block has fewer links.
func (h *Header) Link(i int) int64 {
	if i < 0 || i >= len(h.Links) {
		return 0
	}
	return h.Links[i]
}

// DataSize returns the size of the data section that follows the links.
func (h *Header) DataSize() uint64 {
	fixed := uint64(HeaderSize + binary.LinkSize*len(h.Links))
	if h.Length < fixed {
		return 0
	}
	return h.Length - fixed
}

// DataPos returns the file offset of the data section.
func (h *Header) DataPos() int64 {
	return h.Offset + HeaderSize + int64(binary.LinkSize*len(h.Links))
}

// Tag returns the two letter tag of a block id.
func Tag(id string) string {
	if len(id) == 4 && id[:2] == "##" {
		return id[2:]
	}
	return id
}

// PeekID returns the block id stored at offset without parsing the block.
func PeekID(r *binary.Reader, offset int64) (string, error) {
	if offset <= 0 {
		return "", ErrNilLink
	}
	id, err := r.At(offset).Peek(4)
	if err != nil {
		return "", fmt.Errorf("reading block id at 0x%x: %w", offset, err)
	}
	return string(id), nil
}

// Read parses the header and link table at offset. When ids are given the
// block id must be one of them. The returned reader is positioned at the
// start of the data section.
func Read(r *binary.Reader, offset int64, ids ...string) (*Header, *binary.Reader, error) {
	if offset <= 0 {
		return nil, nil, ErrNilLink
	}
	hr := r.At(offset)

	id, err := hr.ReadBytes(4)
	if err != nil {
		return nil, nil, fmt.Errorf("reading block header at 0x%x: %w", offset, err)
	}
	if id[0] != '#' || id[1] != '#' {
		return nil, nil, fmt.Errorf("%w: bad id %q at 0x%x", ErrInvalidBlock, id, offset)
	}
	if len(ids) > 0 && !contains(ids, string(id)) {
		return nil, nil, fmt.Errorf("%w: got %s at 0x%x, want one of %v", ErrUnexpectedID, id, offset, ids)
	}

	hr.Skip(4) // reserved

	length, err := hr.ReadUint64()
	if err != nil {
		return nil, nil, fmt.Errorf("reading %s length: %w", id, err)
	}
	count, err := hr.ReadUint64()
	if err != nil {
		return nil, nil, fmt.Errorf("reading %s link count: %w", id, err)
	}
	if length > math.MaxInt64-uint64(offset) {
		return nil, nil, fmt.Errorf("%w: %s at 0x%x has length %d", ErrInvalidBlock, id, offset, length)
	}
	if size, ok := r.Size(); ok && offset+int64(length) > size {
		return nil, nil, fmt.Errorf("%w: %s at 0x%x has length %d past end of file at 0x%x", ErrInvalidBlock, id, offset, length, size)
	}
	if count > maxLinks || HeaderSize+count*binary.LinkSize > length {
		return nil, nil, fmt.Errorf("%w: %s at 0x%x has %d links in %d bytes", ErrInvalidBlock, id, offset, count, length)
	}

	links, err := hr.ReadLinks(int(count))
	if err != nil {
		return nil, nil, fmt.Errorf("reading %s links: %w", id, err)
	}

	return &Header{
		ID:     string(id),
		Offset: offset,
		Length: length,
		Links:  links,
	}, hr, nil
}

func contains(ids []string, id string) bool {
	for _, want := range ids {
		if want == id {
			return true
		}
	}
	return false
}

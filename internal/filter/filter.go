package filter

import (
	"errors"
	"fmt"
)

// ZipType is the dz_zip_type field of a DZ block.
type ZipType uint8

// Zip algorithms defined for DZ blocks.
const (
	ZipDeflate          ZipType = 0
	ZipTransposeDeflate ZipType = 1
)

var (
	// ErrUnsupportedZip is returned for zip types this package does not implement.
	ErrUnsupportedZip = errors.New("unsupported zip type")
	// ErrSizeLimit is returned when a payload inflates past its declared size.
	ErrSizeLimit = errors.New("inflated data exceeds declared size")
)

func (z ZipType) String() string {
	switch z {
	case ZipDeflate:
		return "deflate"
	case ZipTransposeDeflate:
		return "transpose+deflate"
	default:
		return fmt.Sprintf("unknown(%d)", uint8(z))
	}
}

// Filter is one reversible transformation of a DZ payload.
type Filter interface {
	// Encode transforms raw data to its stored form.
	Encode(input []byte) ([]byte, error)

	// Decode transforms stored data back to raw form.
	Decode(input []byte) ([]byte, error)
}

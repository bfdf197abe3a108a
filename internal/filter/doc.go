// Package filter implements the codecs of the MDF4 compressed data block (##DZ).
//
// A DZ block stores the payload of another data block (DT, SD, RD, DV)
// compressed with one of the zip algorithms defined by the format:
//
//   - Deflate (zip type 0): zlib-wrapped DEFLATE of the original bytes.
//
//   - Transposition + Deflate (zip type 1): the original bytes are viewed as
//     a matrix with zip-parameter columns (usually the record length) and
//     transposed before deflating, which groups equal byte positions of
//     consecutive records. Trailing bytes that do not fill a complete row are
//     stored untransposed after the matrix.
//
// # Pipeline
//
// [NewPipeline] builds the filter chain for a zip type. Encoding applies the
// filters in order, decoding applies them in reverse:
//
//	p, err := filter.NewPipeline(filter.ZipTransposeDeflate, recordSize)
//	packed, err := p.Encode(raw)
//	raw, err = p.Decode(packed)
//
// # Key Types
//
//   - [Filter]: one reversible transformation
//   - [Deflate]: zlib compression via github.com/klauspost/compress/zlib
//   - [Transpose]: byte matrix transposition
//   - [Pipeline]: filter chain for a zip type
package filter

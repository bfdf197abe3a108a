package mdf

import (
	"bufio"
	"fmt"
	"io"

	"github.com/robert-malhotra/go-mdf/internal/binary"
	"github.com/robert-malhotra/go-mdf/internal/data"
)

// RecordStream is the data region of a data group as one contiguous run of
// bytes. It must be closed.
type RecordStream = data.Source

// StopReason tells why record parsing ended before the end of the stream.
type StopReason int

const (
	// StopNone: every byte of the stream was consumed.
	StopNone StopReason = iota
	// StopUnknownRecordID: a record id matched no channel group.
	StopUnknownRecordID
	// StopShortRecord: a channel group could not read a whole record.
	StopShortRecord
	// StopTruncatedID: the stream ended inside a record id.
	StopTruncatedID
)

func (s StopReason) String() string {
	switch s {
	case StopNone:
		return "none"
	case StopUnknownRecordID:
		return "unknown record id"
	case StopShortRecord:
		return "short record"
	case StopTruncatedID:
		return "truncated record id"
	default:
		return fmt.Sprintf("StopReason(%d)", int(s))
	}
}

// PopulateResult summarizes a PopulateRecords call.
type PopulateResult struct {
	Records  uint64     // records handed to channel groups
	Bytes    int64      // bytes consumed, record ids included
	Size     int64      // bytes in the record stream
	ZeroCopy bool       // stream was read in place
	Stopped  StopReason // why parsing ended early, StopNone if it did not
}

// recordStreamBuffer is the read buffer size of the record parser.
const recordStreamBuffer = 64 << 10

// OpenRecordStream joins the data region into a contiguous stream. A single
// DT block is read in place; anything else is staged with the configured
// Stager.
func (dg *DataGroup) OpenRecordStream(src io.ReaderAt) (*RecordStream, error) {
	if src == nil {
		return nil, fmt.Errorf("open record stream: %w: nil source", ErrInvalidArgument)
	}
	s, err := data.Open(dg.tree, src, dg.opts.stager)
	if err != nil {
		return nil, fmt.Errorf("open record stream of DG at 0x%x: %w", dg.state.offset, err)
	}
	dg.opts.log.Debug("Opened record stream",
		"offset", dg.state.offset, "size", s.Size(),
		"zero_copy", s.ZeroCopy(), "staged", s.Staged())
	return s, nil
}

// PopulateRecords parses every record of the data region and hands each to
// the observers of its channel group. Signal data of VLSD channels is loaded
// for the duration of the call.
//
// Parsing stops early, without error, at a record id that matches no channel
// group or at a record that does not fit in the remaining bytes; the result
// tells which.
func (dg *DataGroup) PopulateRecords(src io.ReaderAt) (PopulateResult, error) {
	if src == nil {
		return PopulateResult{}, fmt.Errorf("populate records: %w: nil source", ErrInvalidArgument)
	}
	for _, cg := range dg.groups.groups {
		cg.resetSamples()
	}
	if dg.tree == nil {
		return PopulateResult{}, nil
	}

	defer dg.clearChannelData()
	for _, cg := range dg.groups.groups {
		for _, ch := range cg.channels {
			if err := ch.ReadData(src); err != nil {
				return PopulateResult{}, fmt.Errorf("populate records: %w", err)
			}
		}
	}

	stream, err := dg.OpenRecordStream(src)
	if err != nil {
		return PopulateResult{}, err
	}
	defer stream.Close()

	return dg.demux(stream)
}

func (dg *DataGroup) clearChannelData() {
	for _, cg := range dg.groups.groups {
		for _, ch := range cg.channels {
			ch.ClearData()
		}
	}
}

func (dg *DataGroup) demux(stream *RecordStream) (PopulateResult, error) {
	size := stream.Size()
	res := PopulateResult{Size: size, ZeroCopy: stream.ZeroCopy()}
	rr := &recordReader{
		r:         bufio.NewReaderSize(io.NewSectionReader(stream, 0, size), recordStreamBuffer),
		remaining: size,
	}
	log := dg.opts.log

	width := int(dg.groups.width)
	var idBuf [8]byte
	for res.Bytes < size {
		var id uint64
		if width > 0 {
			if _, err := io.ReadFull(rr, idBuf[:width]); err != nil {
				if err := truncated(err); err != nil {
					return res, fmt.Errorf("reading record id at %d: %w", res.Bytes, err)
				}
				res.Stopped = StopTruncatedID
				log.Warn("Record stream ends inside a record id",
					"offset", res.Bytes, "remaining", size-res.Bytes)
				break
			}
			id = binary.DecodeUint(idBuf[:width])
		}

		cg := dg.groups.find(id)
		if cg == nil {
			res.Stopped = StopUnknownRecordID
			log.Warn("Record id matches no channel group, stopping",
				"record_id", id, "offset", res.Bytes, "remaining", size-res.Bytes)
			break
		}

		n, err := cg.ReadRecord(rr)
		if err != nil {
			return res, fmt.Errorf("reading record of CG %d at %d: %w", id, res.Bytes, err)
		}
		if n == 0 {
			res.Stopped = StopShortRecord
			log.Warn("Channel group read no record, stopping",
				"record_id", id, "offset", res.Bytes, "remaining", size-res.Bytes)
			break
		}
		res.Bytes += int64(width + n)
		res.Records++
	}

	log.Debug("Parsed records",
		"records", res.Records, "bytes", res.Bytes, "size", size, "stopped", res.Stopped)
	return res, nil
}

// recordReader reads the record stream and knows how much of it is left.
type recordReader struct {
	r         *bufio.Reader
	remaining int64
}

func (rr *recordReader) Read(p []byte) (int, error) {
	if rr.remaining <= 0 {
		return 0, io.EOF
	}
	if int64(len(p)) > rr.remaining {
		p = p[:rr.remaining]
	}
	n, err := rr.r.Read(p)
	rr.remaining -= int64(n)
	return n, err
}

// Len returns the bytes not yet read.
func (rr *recordReader) Len() int {
	return int(rr.remaining)
}

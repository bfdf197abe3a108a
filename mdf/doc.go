// Package mdf reads and writes MDF4 data groups.
//
// A data group (DG block) owns one or more channel groups (CG blocks) and one
// data region. When a data group has more than one channel group their
// records are interleaved in the data region, each prefixed by the record id
// of the group it belongs to. The width of that prefix follows from the number
// of channel groups (see [RecordIDWidth]).
//
// # Reading
//
//	dg, err := mdf.ReadDataGroup(f, offset, mdf.WithLogger(log))
//	if err != nil {
//		return err
//	}
//	for _, cg := range dg.ChannelGroups() {
//		cg.Subscribe(func(cg *mdf.ChannelGroup, sample uint64, record []byte) {
//			...
//		})
//	}
//	res, err := dg.PopulateRecords(f)
//
// PopulateRecords joins the data region into one contiguous stream first.
// A region stored as a single DT block is read in place; anything else
// (DL lists, DZ compression, HL headers) is staged into a temporary file.
// Parsing stops at the first record whose id matches no channel group or
// that does not fit in the remaining bytes; the reason is reported in
// [PopulateResult.Stopped].
//
// # Writing
//
//	w, err := mdf.NewWriter(f, 0, mdf.WithFragmentSize(64<<10))
//	dg := mdf.NewDataGroup()
//	cg := dg.CreateChannelGroup()
//	cg.SetRecordSize(8, 0)
//	cg.CreateChannel("t", mdf.Master, mdf.FloatLE, 0, 64)
//	dg.AppendRecord(cg, rec)
//	length, err := dg.Write(w)
//
// Write is idempotent: once a data group has a file position, further calls
// return the cached block length without writing anything.
package mdf

package mdf

import "errors"

// Common errors
var (
	ErrInvalidArgument = errors.New("invalid argument")
	ErrNotMDF          = errors.New("not an MDF4 file")
	ErrWritten         = errors.New("block already written")
	ErrNoSignalData    = errors.New("signal data not loaded")
	ErrRecordSize      = errors.New("record size does not match channel group")
)

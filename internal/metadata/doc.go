// Package metadata reads and writes the text blocks MDF4 attaches to other
// blocks: TX (plain, zero-terminated UTF-8) and MD (an XML fragment whose
// <TX> element carries the comment text).
//
// Names (channel names, acquisition names) are always TX blocks. Comments may
// be either; [Comment] keeps track of which kind it came from so that an
// unchanged comment is written back the same way.
package metadata

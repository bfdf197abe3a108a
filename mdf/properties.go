package mdf

import "fmt"

// Block is anything Find can return: a channel group, a channel, a comment
// or a node of a data tree. Index is the block's file offset.
type Block interface {
	Index() int64
}

// Property is one labelled field of a block, for display.
type Property struct {
	Label       string `yaml:"label" cbor:"label"`
	Value       string `yaml:"value" cbor:"value"`
	Description string `yaml:"description,omitempty" cbor:"description,omitempty"`
}

func hex(offset int64) string {
	return fmt.Sprintf("0x%x", offset)
}

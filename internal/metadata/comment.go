package metadata

import (
	"bytes"
	"encoding/xml"
	"fmt"
	"strings"

	"github.com/robert-malhotra/go-mdf/internal/binary"
	"github.com/robert-malhotra/go-mdf/internal/block"
)

// Comment is a comment attached to a block.
type Comment struct {
	// Offset is the file offset of the comment block, 0 until written.
	Offset int64

	// ID is block.IDText or block.IDMetadata.
	ID string

	// Root is the XML root element of an MD comment ("DGcomment", "CGcomment", ...).
	Root string

	text  string
	xml   string // raw MD payload as read
	dirty bool
}

// NewComment creates an MD comment with the given root element.
func NewComment(root string) *Comment {
	return &Comment{ID: block.IDMetadata, Root: root, dirty: true}
}

type mdDocument struct {
	XMLName xml.Name
	TX      string `xml:"TX"`
}

// ReadComment reads the TX or MD block at offset. A zero offset yields nil.
func ReadComment(r *binary.Reader, offset int64) (*Comment, error) {
	if offset == 0 {
		return nil, nil
	}
	id, err := block.PeekID(r, offset)
	if err != nil {
		return nil, err
	}
	s, err := ReadText(r, offset)
	if err != nil {
		return nil, err
	}

	c := &Comment{Offset: offset, ID: id}
	if id == block.IDText {
		c.text = s
		return c, nil
	}

	c.xml = s
	var doc mdDocument
	if err := xml.Unmarshal([]byte(s), &doc); err != nil {
		return nil, fmt.Errorf("%w: MD at 0x%x: %v", block.ErrInvalidBlock, offset, err)
	}
	c.Root = doc.XMLName.Local
	c.text = strings.TrimSpace(doc.TX)
	return c, nil
}

// Text returns the comment text: the TX payload, or the <TX> element of an MD block.
func (c *Comment) Text() string {
	if c == nil {
		return ""
	}
	return c.text
}

// SetText replaces the comment text. The block is rewritten on the next Write.
func (c *Comment) SetText(s string) {
	c.text = s
	c.dirty = true
}

// XML returns the MD payload that Write stores. After SetText only the
// <TX> element of a comment read from a file is replaced; the other
// elements are kept byte for byte.
func (c *Comment) XML() string {
	if !c.dirty && c.xml != "" {
		return c.xml
	}
	if c.xml != "" {
		if s, ok := replaceTX(c.xml, c.text); ok {
			return s
		}
	}
	root := c.Root
	if root == "" {
		root = "comment"
	}
	var buf bytes.Buffer
	fmt.Fprintf(&buf, "<%s>", root)
	writeTX(&buf, c.text)
	fmt.Fprintf(&buf, "</%s>", root)
	return buf.String()
}

func writeTX(buf *bytes.Buffer, text string) {
	buf.WriteString("<TX>")
	xml.EscapeText(buf, []byte(text))
	buf.WriteString("</TX>")
}

// replaceTX swaps the first <TX> child of the root element of doc for one
// holding text, or inserts one as the first child when there is none.
func replaceTX(doc, text string) (string, bool) {
	d := xml.NewDecoder(strings.NewReader(doc))
	depth, inTX := 0, false
	rootEnd, txStart := int64(-1), int64(-1) // rootEnd is just past the root start tag
	for {
		before := d.InputOffset()
		tok, err := d.RawToken()
		if err != nil {
			break
		}
		switch t := tok.(type) {
		case xml.StartElement:
			depth++
			switch {
			case depth == 1:
				rootEnd = d.InputOffset()
			case depth == 2 && t.Name.Local == "TX" && txStart < 0:
				txStart, inTX = before, true
			}
		case xml.EndElement:
			if depth == 2 && inTX {
				var buf bytes.Buffer
				buf.WriteString(doc[:txStart])
				writeTX(&buf, text)
				buf.WriteString(doc[d.InputOffset():])
				return buf.String(), true
			}
			depth--
		}
	}
	// No <TX>: insert one, unless the root is self-closing.
	if rootEnd < 2 || doc[rootEnd-2:rootEnd] == "/>" {
		return "", false
	}
	var buf bytes.Buffer
	buf.WriteString(doc[:rootEnd])
	writeTX(&buf, text)
	buf.WriteString(doc[rootEnd:])
	return buf.String(), true
}

// Write stores the comment and returns its offset. A comment read from a
// file and left unchanged keeps its original payload.
func (c *Comment) Write(bw *block.Writer) (int64, error) {
	payload := c.text
	if c.ID != block.IDText {
		c.ID = block.IDMetadata
		payload = c.XML()
	}
	offset, err := WriteText(bw, c.ID, payload)
	if err != nil {
		return 0, fmt.Errorf("writing comment: %w", err)
	}
	c.Offset = offset
	c.xml = ""
	if c.ID == block.IDMetadata {
		c.xml = payload
	}
	c.dirty = false
	return offset, nil
}

// Index returns the file offset of the comment block, 0 if not written.
func (c *Comment) Index() int64 {
	if c == nil {
		return 0
	}
	return c.Offset
}

package markdown

import (
	"fmt"
	"io"
)

// Document is the root of a parsed tree. Inserting a Document into
// another element splices the document's children in individually; the
// Document value itself never becomes a child.
type Document struct {
	element
	main *Heading
}

// NewDocument creates an empty document.
func NewDocument() *Document {
	d := &Document{}
	d.init(d)
	return d
}

func (d *Document) Type() ElementType { return ElementTypeDocument }

// Text returns "": a document has no text of its own.
func (d *Document) Text() string { return "" }

// Source returns "": a document has no source rendering of its own.
func (d *Document) Source() string { return "" }

func (d *Document) strings(strip bool, types []ElementType) []string {
	return d.containerStrings(strip, types)
}

// Main returns the document's main heading: the first level-1 heading
// the parser encountered, or nil for a document without one.
func (d *Document) Main() *Heading { return d.main }

// SetMain designates the main heading of a manually built document.
func (d *Document) SetMain(h *Heading) { d.main = h }

// Title returns the main heading's text, or "".
func (d *Document) Title() string {
	if d.main == nil {
		return ""
	}
	return d.main.Text()
}

// Chapters returns the level-2 headings directly under the main heading,
// in document order. Each one is the unit rendered onto a content slide.
func (d *Document) Chapters() []*Heading {
	if d.main == nil {
		return nil
	}
	var chapters []*Heading
	for _, child := range d.main.base().children {
		if h, ok := child.(*Heading); ok && h.Level == 2 {
			chapters = append(chapters, h)
		}
	}
	return chapters
}

// ParseReader reads r to the end and parses it as Markdown.
func ParseReader(r io.Reader) (*Document, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("markdown: read input: %w", err)
	}
	return Parse(string(data)), nil
}

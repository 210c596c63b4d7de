package markdown

import (
	"fmt"
	"regexp"
	"strings"
)

// List-marker patterns for Paragraph. Markers stay part of the canonical
// text; they are removed only when the stripped form is requested.
var (
	bulletMarkerPattern  = regexp.MustCompile(`^\s*[-*+]\s+`)
	orderedMarkerPattern = regexp.MustCompile(`^\s*\d+\.\s+`)
)

// Heading represents a Markdown heading. One heading per document is
// designated the main title (the single level-1 heading); see
// Document.Main.
type Heading struct {
	element
	// Level is the heading level, 1 through 6.
	Level int
	text  string
}

// NewHeading creates a detached heading element.
func NewHeading(level int, text string) *Heading {
	h := &Heading{Level: level, text: text}
	h.init(h)
	return h
}

func (h *Heading) Type() ElementType { return ElementTypeHeading }

// Text returns the heading title.
func (h *Heading) Text() string { return h.text }

// SetText replaces the heading title.
func (h *Heading) SetText(text string) { h.text = text }

// Source returns the ATX rendering of the heading ("## title").
func (h *Heading) Source() string {
	return strings.Repeat("#", h.Level) + " " + h.text
}

func (h *Heading) strings(strip bool, types []ElementType) []string {
	return h.containerStrings(strip, types)
}

func (h *Heading) String() string {
	return fmt.Sprintf("<Heading level=%d text=%q>", h.Level, h.text)
}

// Paragraph represents one line of body text. A flattened list item is a
// paragraph whose text still carries its marker.
type Paragraph struct {
	element
	text string
}

// NewParagraph creates a detached paragraph element.
func NewParagraph(text string) *Paragraph {
	p := &Paragraph{text: text}
	p.init(p)
	return p
}

func (p *Paragraph) Type() ElementType { return ElementTypeParagraph }

// Text returns the raw paragraph text, markers included.
func (p *Paragraph) Text() string { return p.text }

// SetText replaces the paragraph text.
func (p *Paragraph) SetText(text string) { p.text = text }

// Source returns the paragraph as written.
func (p *Paragraph) Source() string { return p.text }

func (p *Paragraph) strings(strip bool, types []ElementType) []string {
	rejectTypes("Paragraph", types)
	if strip {
		text := bulletMarkerPattern.ReplaceAllString(p.text, "")
		text = orderedMarkerPattern.ReplaceAllString(text, "")
		return []string{strings.TrimSpace(text)}
	}
	return []string{p.text}
}

func (p *Paragraph) String() string {
	return fmt.Sprintf("<Paragraph text=%q>", p.text)
}

// CodeBlock represents a fenced code block.
type CodeBlock struct {
	element
	// Code is the block content, lines joined verbatim.
	Code string
	// Language is the fence's language tag, or "".
	Language string
}

// NewCodeBlock creates a detached code block element.
func NewCodeBlock(code, language string) *CodeBlock {
	c := &CodeBlock{Code: code, Language: language}
	c.init(c)
	return c
}

func (c *CodeBlock) Type() ElementType { return ElementTypeCodeBlock }

// Text returns the code content without the fences.
func (c *CodeBlock) Text() string { return c.Code }

// Source returns the fenced rendering of the block.
func (c *CodeBlock) Source() string {
	return "```" + c.Language + "\n" + c.Code + "\n```"
}

func (c *CodeBlock) strings(strip bool, types []ElementType) []string {
	rejectTypes("CodeBlock", types)
	source := c.Source()
	if strip {
		source = strings.TrimSpace(source)
	}
	return []string{source}
}

func (c *CodeBlock) String() string {
	code := c.Code
	if len(code) > 30 {
		code = code[:30] + "..."
	}
	return fmt.Sprintf("<CodeBlock language=%q code=%q>", c.Language, code)
}

// TableType distinguishes the two table syntaxes the parser accepts.
type TableType int

const (
	TableTypeMarkdown TableType = iota
	TableTypeHTML
)

func (tt TableType) String() string {
	if tt == TableTypeHTML {
		return "html"
	}
	return "markdown"
}

// Table represents a table block. The source text is kept as written
// (pipe-table lines, or the raw HTML block); Headers and the row/column
// counts describe its geometry.
type Table struct {
	element
	Headers   []string
	RowCount  int
	ColCount  int
	TableType TableType
	text      string
}

// NewTable creates a detached table element with the given header names
// and source text.
func NewTable(headers []string, text string) *Table {
	t := &Table{Headers: headers, text: text}
	t.init(t)
	return t
}

func (t *Table) Type() ElementType { return ElementTypeTable }

// Text returns the table's source text.
func (t *Table) Text() string { return t.text }

// SetText replaces the table's source text.
func (t *Table) SetText(text string) { t.text = text }

// Source returns the table's source text.
func (t *Table) Source() string { return t.text }

func (t *Table) strings(strip bool, types []ElementType) []string {
	rejectTypes("Table", types)
	if strip {
		return []string{strings.TrimSpace(t.text)}
	}
	return []string{t.text}
}

func (t *Table) String() string {
	return fmt.Sprintf("<Table headers=%v>", t.Headers)
}

// Picture represents an image reference.
type Picture struct {
	element
	// Src is the image path or URL.
	Src string
	// AltText is the bracketed alternative text, possibly "".
	AltText string
	// Title is the optional quoted title.
	Title string
}

// NewPicture creates a detached picture element.
func NewPicture(src, altText, title string) *Picture {
	p := &Picture{Src: src, AltText: altText, Title: title}
	p.init(p)
	return p
}

func (p *Picture) Type() ElementType { return ElementTypePicture }

// Text returns the Markdown image rendering.
func (p *Picture) Text() string { return p.Source() }

// Source returns the Markdown image rendering.
func (p *Picture) Source() string {
	if p.Title == "" {
		return fmt.Sprintf("![%s](%s)", p.AltText, p.Src)
	}
	return fmt.Sprintf("![%s](%s %q)", p.AltText, p.Src, p.Title)
}

func (p *Picture) strings(strip bool, types []ElementType) []string {
	rejectTypes("Picture", types)
	source := p.Source()
	if strip {
		source = strings.TrimSpace(source)
	}
	return []string{source}
}

func (p *Picture) String() string {
	return fmt.Sprintf("<Picture src=%q alt=%q>", p.Src, p.AltText)
}

package docread

import (
	"bytes"
	"fmt"
	"io"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/fumiama/go-docx"
)

// DocxReader converts Word documents to Markdown. Paragraphs styled
// Heading1 through Heading6 become the matching ATX headings; other
// paragraphs pass through as body text. Documents without a top-level
// heading get one from the file name so the result can title a deck.
type DocxReader struct{}

func (DocxReader) Extensions() []string { return []string{"docx"} }

func (DocxReader) Read(r io.Reader, name string) (string, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return "", fmt.Errorf("reading docx: %w", err)
	}
	doc, err := docx.Parse(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("parsing docx: %w", err)
	}

	var sb strings.Builder
	sawTitle := false
	for _, item := range doc.Document.Body.Items {
		para, ok := item.(*docx.Paragraph)
		if !ok {
			continue
		}
		text := docxParagraphText(para)
		if text == "" {
			continue
		}
		if level := docxHeadingLevel(para); level > 0 {
			if level == 1 {
				sawTitle = true
			}
			sb.WriteString(strings.Repeat("#", level))
			sb.WriteByte(' ')
		}
		sb.WriteString(text)
		sb.WriteString("\n\n")
	}

	out := sb.String()
	if !sawTitle {
		if title := titleFromName(name); title != "" {
			out = "# " + title + "\n\n" + out
		}
	}
	return out, nil
}

// docxHeadingLevel maps a paragraph's style to a heading level, or 0
// for body text. Word names the styles "Heading1" or "heading 1"
// depending on locale.
func docxHeadingLevel(para *docx.Paragraph) int {
	if para.Properties == nil || para.Properties.Style == nil {
		return 0
	}
	style := strings.ToLower(para.Properties.Style.Val)
	if !strings.HasPrefix(style, "heading") {
		return 0
	}
	level, err := strconv.Atoi(strings.TrimSpace(strings.TrimPrefix(style, "heading")))
	if err != nil || level < 1 || level > 6 {
		return 0
	}
	return level
}

// docxParagraphText joins the text runs of a paragraph.
func docxParagraphText(para *docx.Paragraph) string {
	var sb strings.Builder
	for _, child := range para.Children {
		run, ok := child.(*docx.Run)
		if !ok {
			continue
		}
		for _, rc := range run.Children {
			if t, ok := rc.(*docx.Text); ok {
				sb.WriteString(t.Text)
			}
		}
	}
	return strings.TrimSpace(sb.String())
}

// titleFromName derives a document title from a file name hint.
func titleFromName(name string) string {
	if name == "" {
		return ""
	}
	base := filepath.Base(name)
	base = strings.TrimSuffix(base, filepath.Ext(base))
	base = strings.TrimSpace(base)
	if base == "." || base == string(filepath.Separator) {
		return ""
	}
	return base
}

package docread

import (
	"fmt"
	"io"
	"strings"

	"github.com/deckgen/deckgen/pptx"
)

// PptxReader converts presentations to Markdown. The first slide's
// title becomes the document title and every later slide title a
// level-2 heading, so a deck round-trips into the chapter structure
// the generator expects. Footer placeholders (date, footer, slide
// number) are dropped.
type PptxReader struct{}

func (PptxReader) Extensions() []string { return []string{"pptx"} }

func (PptxReader) Read(r io.Reader, name string) (string, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return "", fmt.Errorf("reading pptx: %w", err)
	}
	prs, err := pptx.OpenBytes(data)
	if err != nil {
		return "", fmt.Errorf("opening pptx: %w", err)
	}

	var sb strings.Builder
	for i, slide := range prs.Slides() {
		title := slide.Placeholder(pptx.PlaceholderTitle, pptx.PlaceholderCenterTitle)
		if title != nil {
			if text := strings.TrimSpace(title.Text()); text != "" {
				if i == 0 {
					sb.WriteString("# " + text + "\n\n")
				} else {
					sb.WriteString("## " + text + "\n\n")
				}
			}
		}
		for _, shape := range slide.Shapes() {
			if title != nil && shape.Is(title) {
				continue
			}
			if isFooterPlaceholder(shape) {
				continue
			}
			if shape.IsTable() {
				if rows := shape.TableRows(); len(rows) > 0 {
					sb.WriteString(pipeTable(rows))
					sb.WriteByte('\n')
				}
				continue
			}
			text := strings.TrimSpace(shape.Text())
			if text == "" {
				continue
			}
			sb.WriteString(text)
			sb.WriteString("\n\n")
		}
	}
	return sb.String(), nil
}

// isFooterPlaceholder reports whether a shape holds slide chrome
// rather than content.
func isFooterPlaceholder(sh *pptx.Shape) bool {
	switch sh.PlaceholderType() {
	case "ftr", "dt", "sldNum":
		return true
	}
	return false
}

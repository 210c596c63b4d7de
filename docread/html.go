package docread

import (
	"fmt"
	"io"
	"strings"

	md "github.com/JohannesKaufmann/html-to-markdown"
	"golang.org/x/net/html"
	"golang.org/x/net/html/charset"
)

// HTMLReader converts HTML pages to Markdown. When the page body has
// no level-1 heading, the document <title> supplies one so the result
// carries a deck title.
type HTMLReader struct {
	converter *md.Converter
}

// NewHTMLReader returns an HTMLReader with a default converter.
func NewHTMLReader() *HTMLReader {
	return &HTMLReader{converter: md.NewConverter("", true, nil)}
}

func (*HTMLReader) Extensions() []string { return []string{"html", "htm"} }

func (h *HTMLReader) Read(r io.Reader, name string) (string, error) {
	decoded, err := charset.NewReader(r, "")
	if err != nil {
		return "", fmt.Errorf("detecting charset: %w", err)
	}
	data, err := io.ReadAll(decoded)
	if err != nil {
		return "", fmt.Errorf("reading html: %w", err)
	}

	converted, err := h.converter.ConvertString(string(data))
	if err != nil {
		return "", fmt.Errorf("converting html: %w", err)
	}
	if hasTopHeading(converted) {
		return converted, nil
	}
	if title := htmlTitle(data); title != "" {
		return "# " + title + "\n\n" + converted, nil
	}
	return converted, nil
}

// hasTopHeading reports whether any line opens a level-1 ATX heading.
func hasTopHeading(markdown string) bool {
	for _, line := range strings.Split(markdown, "\n") {
		if strings.HasPrefix(strings.TrimSpace(line), "# ") {
			return true
		}
	}
	return false
}

// htmlTitle extracts the text of the first <title> element.
func htmlTitle(data []byte) string {
	doc, err := html.Parse(strings.NewReader(string(data)))
	if err != nil {
		return ""
	}
	node := findHTMLElement(doc, "title")
	if node == nil {
		return ""
	}
	var sb strings.Builder
	for c := node.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == html.TextNode {
			sb.WriteString(c.Data)
		}
	}
	return strings.TrimSpace(sb.String())
}

func findHTMLElement(n *html.Node, tag string) *html.Node {
	if n.Type == html.ElementNode && n.Data == tag {
		return n
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if found := findHTMLElement(c, tag); found != nil {
			return found
		}
	}
	return nil
}

package docread

import (
	"fmt"
	"io"

	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

// TextReader passes plain text through unchanged, so each line becomes
// Markdown source as written.
type TextReader struct{}

func (TextReader) Extensions() []string { return []string{"txt", "text"} }

func (TextReader) Read(r io.Reader, name string) (string, error) {
	return decodeText(r)
}

// MarkdownReader accepts files that already are Markdown.
type MarkdownReader struct{}

func (MarkdownReader) Extensions() []string { return []string{"md", "markdown"} }

func (MarkdownReader) Read(r io.Reader, name string) (string, error) {
	return decodeText(r)
}

// decodeText reads the stream as UTF-8 unless a byte order mark says
// otherwise. UTF-16 input is transcoded, and any BOM is dropped.
func decodeText(r io.Reader) (string, error) {
	decoder := unicode.BOMOverride(unicode.UTF8.NewDecoder())
	data, err := io.ReadAll(transform.NewReader(r, decoder))
	if err != nil {
		return "", fmt.Errorf("decoding text: %w", err)
	}
	return string(data), nil
}

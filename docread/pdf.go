package docread

import (
	"bytes"
	"fmt"
	"io"
	"strings"

	"github.com/ledongthuc/pdf"
)

// PDFReader extracts the text layer of a PDF as Markdown body text.
// Scanned documents without a text layer come back empty. The file
// name supplies the deck title since PDF text carries no heading
// structure.
type PDFReader struct{}

func (PDFReader) Extensions() []string { return []string{"pdf"} }

func (PDFReader) Read(r io.Reader, name string) (string, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return "", fmt.Errorf("reading pdf: %w", err)
	}
	doc, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("parsing pdf: %w", err)
	}

	var parts []string
	var pageErr error
	for i := 1; i <= doc.NumPage(); i++ {
		p := doc.Page(i)
		if p.V.IsNull() {
			continue
		}
		text, err := p.GetPlainText(nil)
		if err != nil {
			// Record the first failure and keep extracting the rest.
			if pageErr == nil {
				pageErr = fmt.Errorf("reading pdf page %d: %w", i, err)
			}
			continue
		}
		if trimmed := strings.TrimSpace(text); trimmed != "" {
			parts = append(parts, trimmed)
		}
	}
	if len(parts) == 0 && pageErr != nil {
		return "", pageErr
	}

	body := strings.Join(parts, "\n\n")
	if title := titleFromName(name); title != "" {
		if body == "" {
			return "# " + title + "\n", nil
		}
		return "# " + title + "\n\n" + body, nil
	}
	return body, nil
}

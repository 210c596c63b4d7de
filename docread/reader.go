package docread

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// ErrUnsupported marks input whose format no registered reader accepts.
var ErrUnsupported = errors.New("unsupported document format")

// Reader converts one document format to Markdown text. name is the
// original file name when known, or ""; readers may use it to derive a
// fallback title.
type Reader interface {
	// Extensions lists the file extensions the reader accepts,
	// lowercase and without the dot.
	Extensions() []string

	// Read converts the document to Markdown.
	Read(r io.Reader, name string) (string, error)
}

// Registry resolves input formats to readers.
type Registry struct {
	readers []Reader
}

// NewRegistry returns a registry with no readers.
func NewRegistry() *Registry {
	return &Registry{}
}

// DefaultRegistry returns a registry with every built-in reader:
// Markdown, plain text, HTML, DOCX, XLSX, ODT, EPUB, PDF, and PPTX.
func DefaultRegistry() *Registry {
	reg := NewRegistry()
	reg.Register(PptxReader{})
	reg.Register(PDFReader{})
	reg.Register(NewEpubReader())
	reg.Register(OdtReader{})
	reg.Register(XlsxReader{})
	reg.Register(DocxReader{})
	reg.Register(NewHTMLReader())
	reg.Register(TextReader{})
	reg.Register(MarkdownReader{})
	return reg
}

// Register adds a reader. The newest registration wins when several
// readers claim the same extension.
func (reg *Registry) Register(r Reader) {
	reg.readers = append([]Reader{r}, reg.readers...)
}

// Reader returns the reader claiming ext, or nil. The dot is optional.
func (reg *Registry) Reader(ext string) Reader {
	ext = normalizeExt(ext)
	if ext == "" {
		return nil
	}
	for _, r := range reg.readers {
		for _, e := range r.Extensions() {
			if e == ext {
				return r
			}
		}
	}
	return nil
}

// Extensions returns every extension some registered reader accepts,
// sorted, without duplicates.
func (reg *Registry) Extensions() []string {
	seen := make(map[string]bool)
	var exts []string
	for _, r := range reg.readers {
		for _, e := range r.Extensions() {
			if !seen[e] {
				seen[e] = true
				exts = append(exts, e)
			}
		}
	}
	sort.Strings(exts)
	return exts
}

// ReadFile converts the document at path to Markdown, resolving the
// format from the file name and, failing that, the content.
func (reg *Registry) ReadFile(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("opening document: %w", err)
	}
	defer f.Close()
	return reg.Read(f, filepath.Base(path))
}

// Read converts a document to Markdown. hint may be a file name, a
// bare extension, or ""; when it does not resolve the format, the
// content's magic bytes decide. The result is normalized: trailing
// whitespace stripped per line, runs of blank lines collapsed to one.
func (reg *Registry) Read(r io.Reader, hint string) (string, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return "", fmt.Errorf("reading document: %w", err)
	}

	var candidates []string
	if ext := hintExtension(hint); ext != "" {
		candidates = append(candidates, ext)
	}
	if ext := DetectExtension(data); ext != "" && !contains(candidates, ext) {
		candidates = append(candidates, ext)
	}

	var lastErr error
	for _, ext := range candidates {
		reader := reg.Reader(ext)
		if reader == nil {
			continue
		}
		out, err := reader.Read(bytes.NewReader(data), hint)
		if err != nil {
			lastErr = fmt.Errorf("converting %s input: %w", ext, err)
			continue
		}
		return Normalize(out), nil
	}

	if lastErr != nil {
		return "", lastErr
	}
	if len(candidates) == 0 {
		return "", fmt.Errorf("%w: format not recognized", ErrUnsupported)
	}
	return "", fmt.Errorf("%w: no reader for %s", ErrUnsupported, strings.Join(candidates, ", "))
}

// Normalize strips trailing whitespace from every line and collapses
// runs of three or more newlines to a blank line.
func Normalize(s string) string {
	lines := strings.Split(s, "\n")
	for i, line := range lines {
		lines[i] = strings.TrimRight(line, " \t\r")
	}
	s = strings.Join(lines, "\n")
	for strings.Contains(s, "\n\n\n") {
		s = strings.ReplaceAll(s, "\n\n\n", "\n\n")
	}
	return strings.Trim(s, "\n")
}

// hintExtension extracts a candidate extension from a hint that may be
// a file name or a bare extension.
func hintExtension(hint string) string {
	if hint == "" {
		return ""
	}
	if ext := filepath.Ext(hint); ext != "" {
		return normalizeExt(ext)
	}
	return normalizeExt(hint)
}

func normalizeExt(ext string) string {
	return strings.ToLower(strings.TrimPrefix(strings.TrimSpace(ext), "."))
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}

package docread

import (
	"archive/zip"
	"bytes"
	"fmt"
	"io"
	"path"
	"strings"

	"github.com/beevik/etree"
)

// EpubReader converts EPUB books to Markdown. Chapters are converted
// in spine order; when no chapter opens with a level-1 heading, the
// package's Dublin Core title supplies one.
type EpubReader struct {
	html *HTMLReader
}

// NewEpubReader returns an EpubReader with a default HTML converter.
func NewEpubReader() *EpubReader {
	return &EpubReader{html: NewHTMLReader()}
}

func (*EpubReader) Extensions() []string { return []string{"epub"} }

func (e *EpubReader) Read(r io.Reader, name string) (string, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return "", fmt.Errorf("reading epub: %w", err)
	}
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("opening epub: %w", err)
	}

	opfPath, err := epubRootfile(zr)
	if err != nil {
		return "", err
	}
	opfData, err := readZipMember(zr, opfPath)
	if err != nil {
		return "", fmt.Errorf("opening package document: %w", err)
	}
	title, chapters, err := epubChapters(opfData, path.Dir(opfPath))
	if err != nil {
		return "", err
	}

	var parts []string
	for _, chapter := range chapters {
		content, err := readZipMember(zr, chapter)
		if err != nil {
			return "", fmt.Errorf("opening chapter: %w", err)
		}
		converted, err := e.html.converter.ConvertString(string(content))
		if err != nil {
			return "", fmt.Errorf("converting chapter %s: %w", chapter, err)
		}
		if trimmed := strings.TrimSpace(converted); trimmed != "" {
			parts = append(parts, trimmed)
		}
	}

	out := strings.Join(parts, "\n\n")
	if !hasTopHeading(out) {
		if title == "" {
			title = titleFromName(name)
		}
		if title != "" {
			out = "# " + title + "\n\n" + out
		}
	}
	return out, nil
}

// epubRootfile locates the package document through
// META-INF/container.xml.
func epubRootfile(zr *zip.Reader) (string, error) {
	data, err := readZipMember(zr, "META-INF/container.xml")
	if err != nil {
		return "", fmt.Errorf("opening container: %w", err)
	}
	doc := etree.NewDocument()
	if err := doc.ReadFromBytes(data); err != nil {
		return "", fmt.Errorf("parsing container: %w", err)
	}
	for _, rf := range doc.FindElements("//rootfile") {
		if p := rf.SelectAttrValue("full-path", ""); p != "" {
			return p, nil
		}
	}
	return "", fmt.Errorf("epub container names no rootfile")
}

// epubChapters reads the package document and returns the book title
// and the archive paths of the spine's HTML chapters, in reading
// order.
func epubChapters(opfData []byte, baseDir string) (string, []string, error) {
	doc := etree.NewDocument()
	if err := doc.ReadFromBytes(opfData); err != nil {
		return "", nil, fmt.Errorf("parsing package document: %w", err)
	}

	title := ""
	if el := doc.FindElement("//dc:title"); el != nil {
		title = strings.TrimSpace(el.Text())
	}

	type manifestItem struct {
		href      string
		mediaType string
	}
	manifest := make(map[string]manifestItem)
	for _, item := range doc.FindElements("//manifest/item") {
		id := item.SelectAttrValue("id", "")
		if id == "" {
			continue
		}
		manifest[id] = manifestItem{
			href:      item.SelectAttrValue("href", ""),
			mediaType: item.SelectAttrValue("media-type", ""),
		}
	}

	var chapters []string
	for _, ref := range doc.FindElements("//spine/itemref") {
		item, ok := manifest[ref.SelectAttrValue("idref", "")]
		if !ok || item.href == "" {
			continue
		}
		switch item.mediaType {
		case "application/xhtml+xml", "text/html":
			chapters = append(chapters, path.Join(baseDir, item.href))
		}
	}
	if len(chapters) == 0 {
		return "", nil, fmt.Errorf("epub spine has no readable chapters")
	}
	return title, chapters, nil
}

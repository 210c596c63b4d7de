package docread

import (
	"archive/zip"
	"bytes"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/beevik/etree"
)

// OdtReader converts OpenDocument text to Markdown. Outline headings
// become ATX headings of the same level, list items become bullet
// lines, and tables become pipe tables.
type OdtReader struct{}

func (OdtReader) Extensions() []string { return []string{"odt"} }

func (OdtReader) Read(r io.Reader, name string) (string, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return "", fmt.Errorf("reading odt: %w", err)
	}
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("opening odt: %w", err)
	}
	content, err := readZipMember(zr, "content.xml")
	if err != nil {
		return "", fmt.Errorf("opening odt: %w", err)
	}

	doc := etree.NewDocument()
	if err := doc.ReadFromBytes(content); err != nil {
		return "", fmt.Errorf("parsing odt content: %w", err)
	}
	body := doc.FindElement("//office:text")
	if body == nil {
		return "", fmt.Errorf("odt content has no text body")
	}

	var sb strings.Builder
	sawTitle := false
	for _, el := range body.ChildElements() {
		switch {
		case el.Space == "text" && el.Tag == "h":
			text := odtText(el)
			if text == "" {
				continue
			}
			level := 1
			if v := el.SelectAttrValue("text:outline-level", ""); v != "" {
				if n, err := strconv.Atoi(v); err == nil && n >= 1 && n <= 6 {
					level = n
				}
			}
			if level == 1 {
				sawTitle = true
			}
			sb.WriteString(strings.Repeat("#", level) + " " + text + "\n\n")

		case el.Space == "text" && el.Tag == "p":
			if text := odtText(el); text != "" {
				sb.WriteString(text + "\n\n")
			}

		case el.Space == "text" && el.Tag == "list":
			items := odtListItems(el)
			if len(items) > 0 {
				sb.WriteString(strings.Join(items, "\n") + "\n\n")
			}

		case el.Space == "table" && el.Tag == "table":
			if rows := odtTableRows(el); len(rows) > 0 {
				sb.WriteString(pipeTable(rows))
				sb.WriteByte('\n')
			}
		}
	}

	out := sb.String()
	if !sawTitle {
		if title := titleFromName(name); title != "" {
			out = "# " + title + "\n\n" + out
		}
	}
	return out, nil
}

// odtText flattens an element's text content. <text:s> expands to its
// declared run of spaces; tabs and line breaks soften to one space.
func odtText(el *etree.Element) string {
	var sb strings.Builder
	odtTextInto(el, &sb)
	return strings.TrimSpace(sb.String())
}

func odtTextInto(el *etree.Element, sb *strings.Builder) {
	for _, child := range el.Child {
		switch node := child.(type) {
		case *etree.CharData:
			sb.WriteString(node.Data)
		case *etree.Element:
			if node.Space != "text" {
				odtTextInto(node, sb)
				continue
			}
			switch node.Tag {
			case "s":
				count := 1
				if v := node.SelectAttrValue("text:c", ""); v != "" {
					if n, err := strconv.Atoi(v); err == nil && n > 0 {
						count = n
					}
				}
				sb.WriteString(strings.Repeat(" ", count))
			case "tab", "line-break":
				sb.WriteByte(' ')
			case "note":
				// Footnote bodies would interleave with the sentence.
			default:
				odtTextInto(node, sb)
			}
		}
	}
}

func odtListItems(list *etree.Element) []string {
	var items []string
	for _, li := range list.SelectElements("text:list-item") {
		var parts []string
		for _, p := range li.FindElements(".//text:p") {
			if t := odtText(p); t != "" {
				parts = append(parts, t)
			}
		}
		if len(parts) > 0 {
			items = append(items, "- "+strings.Join(parts, " "))
		}
	}
	return items
}

func odtTableRows(tbl *etree.Element) [][]string {
	var rows [][]string
	for _, tr := range tbl.FindElements(".//table:table-row") {
		var row []string
		for _, tc := range tr.SelectElements("table:table-cell") {
			var parts []string
			for _, p := range tc.SelectElements("text:p") {
				if t := odtText(p); t != "" {
					parts = append(parts, t)
				}
			}
			row = append(row, strings.Join(parts, " "))
		}
		if len(row) > 0 {
			rows = append(rows, row)
		}
	}
	return rows
}

// readZipMember returns the named archive member's content.
func readZipMember(zr *zip.Reader, name string) ([]byte, error) {
	for _, f := range zr.File {
		if f.Name == name {
			rc, err := f.Open()
			if err != nil {
				return nil, fmt.Errorf("opening %s: %w", name, err)
			}
			defer rc.Close()
			return io.ReadAll(rc)
		}
	}
	return nil, fmt.Errorf("file not found: %s", name)
}

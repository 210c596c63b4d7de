package docread

import (
	"fmt"
	"io"
	"strings"

	"github.com/xuri/excelize/v2"
)

// XlsxReader converts workbooks to Markdown. Each sheet becomes a
// level-2 heading followed by a pipe table, so a workbook maps onto
// one chapter per sheet. The file name supplies the deck title.
type XlsxReader struct{}

func (XlsxReader) Extensions() []string { return []string{"xlsx"} }

func (XlsxReader) Read(r io.Reader, name string) (string, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return "", fmt.Errorf("opening workbook: %w", err)
	}
	defer f.Close()

	var sb strings.Builder
	if title := titleFromName(name); title != "" {
		sb.WriteString("# " + title + "\n\n")
	}
	for _, sheet := range f.GetSheetList() {
		rows, err := f.GetRows(sheet)
		if err != nil {
			return "", fmt.Errorf("reading sheet %q: %w", sheet, err)
		}
		if len(rows) == 0 {
			continue
		}
		sb.WriteString("## " + sheet + "\n\n")
		sb.WriteString(pipeTable(rows))
		sb.WriteByte('\n')
	}
	return sb.String(), nil
}

package docread

import "strings"

// tableColWidth is the narrowest a column renders, matching the three
// dashes a Markdown separator row needs.
const tableColWidth = 3

// pipeTable renders rows as a Markdown pipe table. The first row is
// the header and every column is padded to its widest cell.
func pipeTable(rows [][]string) string {
	if len(rows) == 0 {
		return ""
	}
	cols := 0
	for _, row := range rows {
		if len(row) > cols {
			cols = len(row)
		}
	}
	if cols == 0 {
		return ""
	}

	widths := make([]int, cols)
	for i := range widths {
		widths[i] = tableColWidth
	}
	for _, row := range rows {
		for i, raw := range row {
			if w := len(escapeCell(raw)); w > widths[i] {
				widths[i] = w
			}
		}
	}

	var sb strings.Builder
	writeRow := func(cells []string) {
		sb.WriteByte('|')
		for i := 0; i < cols; i++ {
			value := ""
			if i < len(cells) {
				value = escapeCell(cells[i])
			}
			sb.WriteByte(' ')
			sb.WriteString(value)
			sb.WriteString(strings.Repeat(" ", widths[i]-len(value)))
			sb.WriteString(" |")
		}
		sb.WriteByte('\n')
	}

	writeRow(rows[0])
	sb.WriteByte('|')
	for i := 0; i < cols; i++ {
		sb.WriteString(" " + strings.Repeat("-", widths[i]) + " |")
	}
	sb.WriteByte('\n')
	for _, row := range rows[1:] {
		writeRow(row)
	}
	return sb.String()
}

// escapeCell keeps literal pipes from breaking the table syntax.
func escapeCell(s string) string {
	return strings.ReplaceAll(strings.TrimSpace(s), "|", `\|`)
}

package markdown

import (
	"regexp"
	"strings"
)

var (
	codeFencePattern  = regexp.MustCompile("^\\s*```(\\w+)?")
	setextH1Pattern   = regexp.MustCompile(`^\s*={3,}\s*$`)
	setextH2Pattern   = regexp.MustCompile(`^\s*-{3,}\s*$`)
	atxHeadingPattern = regexp.MustCompile(`^(#{1,6})\s+(.+?)\s*$`)
	listItemPattern   = regexp.MustCompile(`^\s*(?:[-*+]|\d+[.)])\s+`)
	separatorCell     = regexp.MustCompile(`^\s*:?-+:?\s*$`)
	imagePattern      = regexp.MustCompile(`^!\[(.*?)\]\(\s*(\S+?)(?:\s+"(.*?)")?\s*\)$`)

	// HTML tables are mined with regular expressions, not a real HTML
	// parser. That keeps the single-pass line model but means nested
	// tables and exotic markup inside cells are not handled.
	theadPattern = regexp.MustCompile(`(?is)<thead[^>]*>(.*?)</thead>`)
	tbodyPattern = regexp.MustCompile(`(?is)<tbody[^>]*>(.*?)</tbody>`)
	thPattern    = regexp.MustCompile(`(?is)<th[^>]*>(.*?)</th>`)
	trPattern    = regexp.MustCompile(`(?is)<tr[^>]*>(.*?)</tr>`)
	tdPattern    = regexp.MustCompile(`(?is)<td[^>]*>(.*?)</td>`)
	tagPattern   = regexp.MustCompile(`<[^>]+>`)
)

// Parse builds a document tree from Markdown text. It never fails:
// anything that matches no construct becomes a paragraph, and blank
// lines produce nothing.
func Parse(text string) *Document {
	p := &parser{doc: NewDocument()}
	p.cursor = p.doc
	p.lines = splitLines(text)
	p.run()
	return p.doc
}

// parser is a single-pass state machine over the document's lines with
// one unit of lookahead. cursor tracks the current insertion point:
// either the document root or the most recently opened heading.
type parser struct {
	doc    *Document
	cursor Element

	lines    []string
	index    int
	skipNext bool

	inCodeBlock  bool
	codeLanguage string
	codeLines    []string

	inTableBlock bool
	tableType    TableType
	tableLines   []string
}

func splitLines(text string) []string {
	lines := strings.Split(text, "\n")
	for i, line := range lines {
		lines[i] = strings.TrimSuffix(line, "\r")
	}
	return lines
}

func (p *parser) run() {
	for p.index = 0; p.index < len(p.lines); p.index++ {
		if p.skipNext {
			p.skipNext = false
			continue
		}
		line := p.lines[p.index]

		if p.inCodeBlock {
			p.continueCodeBlock(line)
			continue
		}
		if p.inTableBlock {
			if p.continueTable(line) {
				continue
			}
			// The table closed without consuming this line; it still
			// needs normal dispatch.
		}
		p.dispatch(line)
	}
	p.flush()
}

// peek returns the next line without consuming it.
func (p *parser) peek() (string, bool) {
	if p.index+1 < len(p.lines) {
		return p.lines[p.index+1], true
	}
	return "", false
}

// dispatch tries each construct in fixed priority order; the first
// match wins.
func (p *parser) dispatch(line string) {
	switch {
	case p.tryCodeFence(line):
	case p.trySetextHeading(line):
	case p.tryATXHeading(line):
	case p.tryListItem(line):
	case p.tryTableStart(line):
	case p.tryImage(line):
	default:
		p.tryParagraph(line)
	}
}

// flush closes any block still open at end of input so no buffered
// content is lost.
func (p *parser) flush() {
	if p.inCodeBlock {
		p.inCodeBlock = false
		p.cursor.Append(NewCodeBlock(strings.Join(p.codeLines, "\n"), p.codeLanguage))
		p.codeLines = nil
	}
	if p.inTableBlock {
		p.closeTable()
	}
}

func (p *parser) tryCodeFence(line string) bool {
	m := codeFencePattern.FindStringSubmatch(line)
	if m == nil {
		return false
	}
	p.inCodeBlock = true
	p.codeLanguage = m[1]
	p.codeLines = nil
	return true
}

func (p *parser) continueCodeBlock(line string) {
	if strings.HasPrefix(strings.TrimSpace(line), "```") {
		p.inCodeBlock = false
		p.cursor.Append(NewCodeBlock(strings.Join(p.codeLines, "\n"), p.codeLanguage))
		p.codeLines = nil
		return
	}
	p.codeLines = append(p.codeLines, line)
}

func (p *parser) trySetextHeading(line string) bool {
	if strings.TrimSpace(line) == "" {
		return false
	}
	next, ok := p.peek()
	if !ok || strings.TrimSpace(next) == "" {
		return false
	}
	var level int
	switch {
	case setextH1Pattern.MatchString(next):
		level = 1
	case setextH2Pattern.MatchString(next):
		level = 2
	default:
		return false
	}
	p.insertHeading(NewHeading(level, strings.TrimSpace(line)))
	p.skipNext = true
	return true
}

func (p *parser) tryATXHeading(line string) bool {
	m := atxHeadingPattern.FindStringSubmatch(line)
	if m == nil {
		return false
	}
	p.insertHeading(NewHeading(len(m[1]), m[2]))
	return true
}

// insertHeading attaches a new heading by walking the cursor up while
// its level is greater than or equal to the new heading's, so an H2
// arriving after an H3 closes the H3 and becomes a sibling under the
// nearest H1. The document root accepts any heading directly.
func (p *parser) insertHeading(h *Heading) {
	cursor := p.cursor
	for {
		ch, ok := cursor.(*Heading)
		if !ok || ch.Level < h.Level {
			break
		}
		cursor = ch.Parent()
	}
	cursor.Append(h)
	if h.Level == 1 && p.doc.main == nil {
		p.doc.main = h
	}
	p.cursor = h
}

// tryListItem flattens bullet and ordered items into paragraphs; list
// structure is not modeled. The marker stays in the canonical text.
func (p *parser) tryListItem(line string) bool {
	if !listItemPattern.MatchString(line) {
		return false
	}
	p.cursor.Append(NewParagraph(line))
	return true
}

func (p *parser) tryTableStart(line string) bool {
	trimmed := strings.TrimSpace(line)
	if strings.HasPrefix(trimmed, "|") && strings.HasSuffix(trimmed, "|") {
		if next, ok := p.peek(); ok && isSeparatorRow(next) {
			p.inTableBlock = true
			p.tableType = TableTypeMarkdown
			p.tableLines = []string{line}
			// The separator row is consumed but never stored.
			p.skipNext = true
			return true
		}
		return false
	}
	if strings.Contains(strings.ToLower(line), "<table") {
		p.inTableBlock = true
		p.tableType = TableTypeHTML
		p.tableLines = []string{line}
		if strings.Contains(strings.ToLower(line), "</table>") {
			p.closeTable()
		}
		return true
	}
	return false
}

// continueTable buffers one more table line. It reports false when a
// Markdown table ends at a line that is not part of it, in which case
// the caller re-dispatches that line.
func (p *parser) continueTable(line string) bool {
	if p.tableType == TableTypeHTML {
		p.tableLines = append(p.tableLines, line)
		if strings.Contains(strings.ToLower(line), "</table>") {
			p.closeTable()
		}
		return true
	}

	trimmed := strings.TrimSpace(line)
	if trimmed == "" || !strings.HasPrefix(trimmed, "|") {
		p.closeTable()
		return false
	}
	p.tableLines = append(p.tableLines, line)
	if next, ok := p.peek(); !ok || !strings.HasPrefix(strings.TrimSpace(next), "|") {
		p.closeTable()
	}
	return true
}

func (p *parser) closeTable() {
	lines := p.tableLines
	tableType := p.tableType
	p.inTableBlock = false
	p.tableLines = nil
	if len(lines) == 0 {
		return
	}
	var table *Table
	if tableType == TableTypeMarkdown {
		table = buildMarkdownTable(lines)
	} else {
		table = buildHTMLTable(lines)
	}
	p.cursor.Append(table)
}

// isSeparatorRow reports whether a line is a pipe-bounded separator row
// such as "|---|:---:|".
func isSeparatorRow(line string) bool {
	trimmed := strings.TrimSpace(line)
	if !strings.HasPrefix(trimmed, "|") || !strings.HasSuffix(trimmed, "|") {
		return false
	}
	cells := splitRow(trimmed)
	if len(cells) == 0 {
		return false
	}
	for _, cell := range cells {
		if !separatorCell.MatchString(cell) {
			return false
		}
	}
	return true
}

// splitRow splits a pipe-bounded row into trimmed cell texts.
func splitRow(row string) []string {
	parts := strings.Split(row, "|")
	if len(parts) > 0 && strings.TrimSpace(parts[0]) == "" {
		parts = parts[1:]
	}
	if len(parts) > 0 && strings.TrimSpace(parts[len(parts)-1]) == "" {
		parts = parts[:len(parts)-1]
	}
	cells := make([]string, len(parts))
	for i, part := range parts {
		cells[i] = strings.TrimSpace(part)
	}
	return cells
}

func buildMarkdownTable(lines []string) *Table {
	headers := splitRow(strings.TrimSpace(lines[0]))
	table := NewTable(headers, strings.Join(lines, "\n"))
	table.TableType = TableTypeMarkdown
	table.RowCount = len(lines) - 1
	table.ColCount = len(headers)
	return table
}

func buildHTMLTable(lines []string) *Table {
	source := strings.Join(lines, "\n")

	headerScope := source
	if m := theadPattern.FindStringSubmatch(source); m != nil {
		headerScope = m[1]
	}
	var headers []string
	for _, th := range thPattern.FindAllStringSubmatch(headerScope, -1) {
		headers = append(headers, strings.TrimSpace(tagPattern.ReplaceAllString(th[1], "")))
	}

	rowScope := source
	if m := tbodyPattern.FindStringSubmatch(source); m != nil {
		rowScope = m[1]
	}
	rowCount := 0
	firstRowCols := 0
	for _, tr := range trPattern.FindAllStringSubmatch(rowScope, -1) {
		cells := len(tdPattern.FindAllString(tr[1], -1))
		if cells == 0 {
			// A header row outside a tbody; not a data row.
			continue
		}
		rowCount++
		if firstRowCols == 0 {
			firstRowCols = cells
		}
	}

	cols := len(headers)
	if cols == 0 {
		cols = firstRowCols
	}

	table := NewTable(headers, source)
	table.TableType = TableTypeHTML
	table.RowCount = rowCount
	table.ColCount = cols
	return table
}

func (p *parser) tryImage(line string) bool {
	m := imagePattern.FindStringSubmatch(strings.TrimSpace(line))
	if m == nil {
		return false
	}
	p.cursor.Append(NewPicture(m[2], m[1], m[3]))
	return true
}

func (p *parser) tryParagraph(line string) {
	if strings.TrimSpace(line) == "" {
		return
	}
	p.cursor.Append(NewParagraph(line))
}

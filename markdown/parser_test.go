package markdown

import (
	"strings"
	"testing"
)

// childTypes summarizes an element's direct children for table-driven
// structure checks.
func childTypes(t *testing.T, el Element) []ElementType {
	t.Helper()
	var out []ElementType
	for _, child := range el.Children() {
		out = append(out, child.Type())
	}
	return out
}

func sameTypes(a, b []ElementType) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// firstOfType finds the first descendant of the given type, or fails
// the test.
func firstOfType(t *testing.T, doc *Document, et ElementType) Element {
	t.Helper()
	for _, d := range doc.Descendants() {
		if d.Type() == et {
			return d
		}
	}
	t.Fatalf("document has no %v element", et)
	return nil
}

// ============================================================================
// Heading Tests
// ============================================================================

func TestParseHeadingNesting(t *testing.T) {
	doc := Parse("# A\n## B\n### C\n## D")

	if doc.Title() != "A" {
		t.Errorf("Title() = %q, want %q", doc.Title(), "A")
	}

	main := doc.Main()
	if main == nil {
		t.Fatal("Main() = nil, want the level-1 heading")
	}
	if got := collectTexts(t, main.Children()); !sameStrings(got, []string{"B", "D"}) {
		t.Errorf("main children = %v, want [B D]", got)
	}

	b := main.Children()[0].(*Heading)
	if got := collectTexts(t, b.Children()); !sameStrings(got, []string{"C"}) {
		t.Errorf("B children = %v, want [C]", got)
	}

	if got := collectTexts(t, mustHeadings(t, doc.Chapters())); !sameStrings(got, []string{"B", "D"}) {
		t.Errorf("Chapters() = %v, want [B D]", got)
	}
	checkPreOrder(t, doc)
}

func mustHeadings(t *testing.T, hs []*Heading) []Element {
	t.Helper()
	out := make([]Element, len(hs))
	for i, h := range hs {
		out[i] = h
	}
	return out
}

func TestParseHeadingLevelJump(t *testing.T) {
	doc := Parse("# A\n### deep\n## up")

	main := doc.Main()
	if got := collectTexts(t, main.Children()); !sameStrings(got, []string{"deep", "up"}) {
		t.Errorf("main children = %v, want [deep up]", got)
	}
}

func TestParseFirstH1Wins(t *testing.T) {
	doc := Parse("# First\nbody\n# Second")

	if doc.Title() != "First" {
		t.Errorf("Title() = %q, want %q", doc.Title(), "First")
	}
	if got := collectTexts(t, doc.Children()); !sameStrings(got, []string{"First", "Second"}) {
		t.Errorf("document children = %v, want [First Second]", got)
	}
}

func TestParseChaptersRequireMain(t *testing.T) {
	doc := Parse("## early\n# Main\n## ch")

	if got := collectTexts(t, mustHeadings(t, doc.Chapters())); !sameStrings(got, []string{"ch"}) {
		t.Errorf("Chapters() = %v, want [ch]", got)
	}
	// The stray level-2 heading before the title hangs off the root.
	if got := collectTexts(t, doc.Children()); !sameStrings(got, []string{"early", "Main"}) {
		t.Errorf("document children = %v, want [early Main]", got)
	}
}

func TestParseSetextEquivalentToATX(t *testing.T) {
	setext := Parse("Title\n=====\nSection\n-------")
	atx := Parse("# Title\n## Section")

	for _, doc := range []*Document{setext, atx} {
		if doc.Title() != "Title" {
			t.Errorf("Title() = %q, want %q", doc.Title(), "Title")
		}
		chapters := doc.Chapters()
		if len(chapters) != 1 {
			t.Fatalf("Chapters() = %d, want 1", len(chapters))
		}
		if chapters[0].Text() != "Section" {
			t.Errorf("chapter text = %q, want %q", chapters[0].Text(), "Section")
		}
	}
}

func TestParseATXEdgeCases(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		wantType ElementType
		wantText string
	}{
		{"trailing spaces trimmed", "## Padded   ", ElementTypeHeading, "Padded"},
		{"seven hashes is not a heading", "####### deep", ElementTypeParagraph, "####### deep"},
		{"hash without space is not a heading", "#tag", ElementTypeParagraph, "#tag"},
		{"hash alone is not a heading", "#", ElementTypeParagraph, "#"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc := Parse(tt.input)
			children := doc.Children()
			if len(children) != 1 {
				t.Fatalf("document has %d children, want 1", len(children))
			}
			if children[0].Type() != tt.wantType {
				t.Errorf("child type = %v, want %v", children[0].Type(), tt.wantType)
			}
			if children[0].Text() != tt.wantText {
				t.Errorf("child text = %q, want %q", children[0].Text(), tt.wantText)
			}
		})
	}
}

func TestParseStandaloneDashesAreParagraph(t *testing.T) {
	doc := Parse("intro\n\n---")

	if got := childTypes(t, doc); !sameTypes(got, []ElementType{ElementTypeParagraph, ElementTypeParagraph}) {
		t.Errorf("children = %v, want two paragraphs", got)
	}
}

// ============================================================================
// Code Block Tests
// ============================================================================

func TestParseCodeFence(t *testing.T) {
	doc := Parse("# T\n```go\nfunc main() {}\n# not a heading\n```\nafter")

	code := firstOfType(t, doc, ElementTypeCodeBlock).(*CodeBlock)
	if code.Language != "go" {
		t.Errorf("Language = %q, want %q", code.Language, "go")
	}
	want := "func main() {}\n# not a heading"
	if code.Code != want {
		t.Errorf("Code = %q, want %q", code.Code, want)
	}

	// The fence swallowed the heading-looking line.
	if got := len(doc.Chapters()); got != 0 {
		t.Errorf("Chapters() = %d, want 0", got)
	}
	para := firstOfType(t, doc, ElementTypeParagraph)
	if para.Text() != "after" {
		t.Errorf("trailing paragraph = %q, want %q", para.Text(), "after")
	}
}

func TestParseCodeFenceWithoutLanguage(t *testing.T) {
	doc := Parse("```\nplain\n```")

	code := firstOfType(t, doc, ElementTypeCodeBlock).(*CodeBlock)
	if code.Language != "" {
		t.Errorf("Language = %q, want empty", code.Language)
	}
	if code.Code != "plain" {
		t.Errorf("Code = %q, want %q", code.Code, "plain")
	}
}

func TestParseUnclosedCodeFenceFlushes(t *testing.T) {
	doc := Parse("```python\nx = 1\ny = 2")

	code := firstOfType(t, doc, ElementTypeCodeBlock).(*CodeBlock)
	if code.Language != "python" {
		t.Errorf("Language = %q, want %q", code.Language, "python")
	}
	if code.Code != "x = 1\ny = 2" {
		t.Errorf("Code = %q, want %q", code.Code, "x = 1\ny = 2")
	}
}

func TestParseCodeFencePreservesBlankLines(t *testing.T) {
	doc := Parse("```\na\n\nb\n```")

	code := firstOfType(t, doc, ElementTypeCodeBlock).(*CodeBlock)
	if code.Code != "a\n\nb" {
		t.Errorf("Code = %q, want %q", code.Code, "a\n\nb")
	}
}

// ============================================================================
// Table Tests
// ============================================================================

func TestParseMarkdownTable(t *testing.T) {
	doc := Parse("# T\n| Name | Age |\n|------|-----|\n| Ann | 30 |\n| Bob | 25 |\nafterword")

	table := firstOfType(t, doc, ElementTypeTable).(*Table)
	if !sameStrings(table.Headers, []string{"Name", "Age"}) {
		t.Errorf("Headers = %v, want [Name Age]", table.Headers)
	}
	if table.RowCount != 2 {
		t.Errorf("RowCount = %d, want 2", table.RowCount)
	}
	if table.ColCount != 2 {
		t.Errorf("ColCount = %d, want 2", table.ColCount)
	}
	if table.TableType != TableTypeMarkdown {
		t.Errorf("TableType = %v, want markdown", table.TableType)
	}

	// The separator row is consumed, not stored.
	want := "| Name | Age |\n| Ann | 30 |\n| Bob | 25 |"
	if table.Source() != want {
		t.Errorf("Source() = %q, want %q", table.Source(), want)
	}

	para := firstOfType(t, doc, ElementTypeParagraph)
	if para.Text() != "afterword" {
		t.Errorf("line after table = %q, want %q", para.Text(), "afterword")
	}
}

func TestParseTableRequiresSeparatorRow(t *testing.T) {
	doc := Parse("| a | b |\n| not | separator |")

	got := childTypes(t, doc)
	want := []ElementType{ElementTypeParagraph, ElementTypeParagraph}
	if !sameTypes(got, want) {
		t.Errorf("children = %v, want two paragraphs", got)
	}
}

func TestParseSeparatorRowForms(t *testing.T) {
	tests := []struct {
		name string
		row  string
		want bool
	}{
		{"plain dashes", "|---|---|", true},
		{"aligned", "|:---|---:|", true},
		{"centered", "|:---:|:---:|", true},
		{"spaced", "| --- | --- |", true},
		{"single dash cells", "|-|-|", true},
		{"letters", "|---|abc|", false},
		{"unbounded", "---|---", false},
		{"empty", "||", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := isSeparatorRow(tt.row); got != tt.want {
				t.Errorf("isSeparatorRow(%q) = %v, want %v", tt.row, got, tt.want)
			}
		})
	}
}

func TestParseTableClosedByBlankLine(t *testing.T) {
	doc := Parse("|a|b|\n|---|---|\n|1|2|\n\n|x|y|\n|---|---|")

	var tables []*Table
	for _, d := range doc.Descendants() {
		if tbl, ok := d.(*Table); ok {
			tables = append(tables, tbl)
		}
	}
	if len(tables) != 2 {
		t.Fatalf("parsed %d tables, want 2", len(tables))
	}
	if tables[0].RowCount != 1 {
		t.Errorf("first table RowCount = %d, want 1", tables[0].RowCount)
	}
	if tables[1].RowCount != 0 {
		t.Errorf("second table RowCount = %d, want 0", tables[1].RowCount)
	}
}

func TestParseTableZeroRows(t *testing.T) {
	doc := Parse("|a|b|\n|---|---|\nplain text")

	table := firstOfType(t, doc, ElementTypeTable).(*Table)
	if table.RowCount != 0 {
		t.Errorf("RowCount = %d, want 0", table.RowCount)
	}
	para := firstOfType(t, doc, ElementTypeParagraph)
	if para.Text() != "plain text" {
		t.Errorf("paragraph after empty table = %q, want %q", para.Text(), "plain text")
	}
}

func TestParseHTMLTable(t *testing.T) {
	input := strings.Join([]string{
		"<table>",
		"<thead><tr><th>Name</th><th>Age</th></tr></thead>",
		"<tbody>",
		"<tr><td>Ann</td><td>30</td></tr>",
		"<tr><td>Bob</td><td>25</td></tr>",
		"</tbody>",
		"</table>",
		"after",
	}, "\n")
	doc := Parse(input)

	table := firstOfType(t, doc, ElementTypeTable).(*Table)
	if table.TableType != TableTypeHTML {
		t.Errorf("TableType = %v, want html", table.TableType)
	}
	if !sameStrings(table.Headers, []string{"Name", "Age"}) {
		t.Errorf("Headers = %v, want [Name Age]", table.Headers)
	}
	if table.RowCount != 2 {
		t.Errorf("RowCount = %d, want 2", table.RowCount)
	}
	if table.ColCount != 2 {
		t.Errorf("ColCount = %d, want 2", table.ColCount)
	}
	if !strings.Contains(table.Source(), "<tbody>") {
		t.Errorf("Source() lost the raw markup: %q", table.Source())
	}

	para := firstOfType(t, doc, ElementTypeParagraph)
	if para.Text() != "after" {
		t.Errorf("line after table = %q, want %q", para.Text(), "after")
	}
}

func TestParseHTMLTableSingleLine(t *testing.T) {
	doc := Parse("<table><tr><td>only</td></tr></table>")

	table := firstOfType(t, doc, ElementTypeTable).(*Table)
	if table.RowCount != 1 {
		t.Errorf("RowCount = %d, want 1", table.RowCount)
	}
	if table.ColCount != 1 {
		t.Errorf("ColCount = %d, want 1", table.ColCount)
	}
	if len(table.Headers) != 0 {
		t.Errorf("Headers = %v, want none", table.Headers)
	}
}

func TestParseHTMLTableWithoutSections(t *testing.T) {
	input := "<table>\n<tr><th>H</th></tr>\n<tr><td>v1</td></tr>\n<tr><td>v2</td></tr>\n</table>"
	doc := Parse(input)

	table := firstOfType(t, doc, ElementTypeTable).(*Table)
	if !sameStrings(table.Headers, []string{"H"}) {
		t.Errorf("Headers = %v, want [H]", table.Headers)
	}
	// The th-only row is not counted as a data row.
	if table.RowCount != 2 {
		t.Errorf("RowCount = %d, want 2", table.RowCount)
	}
}

func TestParseUnclosedHTMLTableFlushes(t *testing.T) {
	doc := Parse("<table>\n<tr><td>x</td></tr>")

	table := firstOfType(t, doc, ElementTypeTable).(*Table)
	if table.RowCount != 1 {
		t.Errorf("RowCount = %d, want 1", table.RowCount)
	}
}

// ============================================================================
// Picture Tests
// ============================================================================

func TestParseImages(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantAlt string
		wantSrc string
		wantTtl string
	}{
		{"plain", "![logo](img/logo.png)", "logo", "img/logo.png", ""},
		{"titled", `![chart](chart.png "Q3 results")`, "chart", "chart.png", "Q3 results"},
		{"empty alt", "![](pic.jpg)", "", "pic.jpg", ""},
		{"indented", "  ![x](a.png)", "x", "a.png", ""},
		{"url", "![remote](https://example.com/a.png)", "remote", "https://example.com/a.png", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc := Parse(tt.input)
			pic := firstOfType(t, doc, ElementTypePicture).(*Picture)
			if pic.AltText != tt.wantAlt {
				t.Errorf("AltText = %q, want %q", pic.AltText, tt.wantAlt)
			}
			if pic.Src != tt.wantSrc {
				t.Errorf("Src = %q, want %q", pic.Src, tt.wantSrc)
			}
			if pic.Title != tt.wantTtl {
				t.Errorf("Title = %q, want %q", pic.Title, tt.wantTtl)
			}
		})
	}
}

func TestParseMalformedImageIsParagraph(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"space in src", "![alt](has space.png)"},
		{"missing close", "![alt](open.png"},
		{"link not image", "[alt](page.html)"},
		{"trailing text", "![alt](a.png) and more"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc := Parse(tt.input)
			if got := childTypes(t, doc); !sameTypes(got, []ElementType{ElementTypeParagraph}) {
				t.Errorf("children = %v, want one paragraph", got)
			}
		})
	}
}

// ============================================================================
// List and Paragraph Tests
// ============================================================================

func TestParseListItemsFlatten(t *testing.T) {
	doc := Parse("# T\n## C\n- first\n* second\n+ third\n1. fourth\n2) fifth")

	chapter := doc.Chapters()[0]
	got := childTypes(t, chapter)
	want := []ElementType{
		ElementTypeParagraph, ElementTypeParagraph, ElementTypeParagraph,
		ElementTypeParagraph, ElementTypeParagraph,
	}
	if !sameTypes(got, want) {
		t.Fatalf("chapter children = %v, want five paragraphs", got)
	}

	// Canonical text keeps the markers; stripped text drops them.
	if chapter.Children()[0].Text() != "- first" {
		t.Errorf("Text() = %q, want %q", chapter.Children()[0].Text(), "- first")
	}
	stripped := chapter.GetText("\n", true)
	want2 := "first\nsecond\nthird\nfourth\n2) fifth"
	if stripped != want2 {
		t.Errorf("GetText(strip) = %q, want %q", stripped, want2)
	}
}

func TestParseBlankLinesProduceNothing(t *testing.T) {
	doc := Parse("\n\n   \n")
	if !doc.Empty() {
		t.Errorf("document has %d children, want 0", len(doc.Children()))
	}
	if doc.Title() != "" {
		t.Errorf("Title() = %q, want empty", doc.Title())
	}
	if doc.Main() != nil {
		t.Errorf("Main() = %v, want nil", doc.Main())
	}
}

func TestParseCRLFInput(t *testing.T) {
	doc := Parse("# A\r\n## B\r\nbody\r\n")

	if doc.Title() != "A" {
		t.Errorf("Title() = %q, want %q", doc.Title(), "A")
	}
	chapters := doc.Chapters()
	if len(chapters) != 1 || chapters[0].Text() != "B" {
		t.Fatalf("Chapters() = %v, want one chapter B", chapters)
	}
	if got := chapters[0].Children()[0].Text(); got != "body" {
		t.Errorf("body text = %q, want %q", got, "body")
	}
}

func TestParseBodyAttachesToCurrentHeading(t *testing.T) {
	doc := Parse("intro\n# A\nunder a\n## B\nunder b")

	// Text before any heading lands on the root.
	if doc.Children()[0].Type() != ElementTypeParagraph {
		t.Errorf("first root child = %v, want Paragraph", doc.Children()[0].Type())
	}

	main := doc.Main()
	if got := childTypes(t, main); !sameTypes(got, []ElementType{ElementTypeParagraph, ElementTypeHeading}) {
		t.Errorf("main children = %v, want [Paragraph Heading]", got)
	}
	b := doc.Chapters()[0]
	if got := collectTexts(t, b.Children()); !sameStrings(got, []string{"under b"}) {
		t.Errorf("chapter children = %v, want [under b]", got)
	}
}

// ============================================================================
// Round Trip Tests
// ============================================================================

func TestParseReader(t *testing.T) {
	doc, err := ParseReader(strings.NewReader("# Hello\n## World"))
	if err != nil {
		t.Fatalf("ParseReader returned error: %v", err)
	}
	if doc.Title() != "Hello" {
		t.Errorf("Title() = %q, want %q", doc.Title(), "Hello")
	}
}

func TestParseMixedDocument(t *testing.T) {
	input := strings.Join([]string{
		"# Deck",
		"## Intro",
		"Welcome to the deck.",
		"- point one",
		"![diagram](d.png)",
		"## Data",
		"| k | v |",
		"|---|---|",
		"| a | 1 |",
		"```sql",
		"SELECT 1;",
		"```",
	}, "\n")
	doc := Parse(input)

	chapters := doc.Chapters()
	if len(chapters) != 2 {
		t.Fatalf("Chapters() = %d, want 2", len(chapters))
	}

	intro := childTypes(t, chapters[0])
	wantIntro := []ElementType{ElementTypeParagraph, ElementTypeParagraph, ElementTypePicture}
	if !sameTypes(intro, wantIntro) {
		t.Errorf("intro children = %v, want %v", intro, wantIntro)
	}

	data := childTypes(t, chapters[1])
	wantData := []ElementType{ElementTypeTable, ElementTypeCodeBlock}
	if !sameTypes(data, wantData) {
		t.Errorf("data children = %v, want %v", data, wantData)
	}

	checkPreOrder(t, doc)
}

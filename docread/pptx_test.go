package docread

import (
	"archive/zip"
	"bytes"
	"fmt"
	"strings"
	"testing"
)

func phShape(id int, phType, text string) string {
	return fmt.Sprintf(`<p:sp>
<p:nvSpPr><p:cNvPr id="%d" name="Placeholder %d"/><p:cNvSpPr/><p:nvPr><p:ph type="%s"/></p:nvPr></p:nvSpPr>
<p:spPr><a:xfrm><a:off x="1000000" y="1000000"/><a:ext cx="6000000" cy="1000000"/></a:xfrm></p:spPr>
<p:txBody><a:bodyPr/><a:p><a:r><a:t>%s</a:t></a:r></a:p></p:txBody>
</p:sp>`, id, id, phType, text)
}

func bodyShape(id int, text string) string {
	return fmt.Sprintf(`<p:sp>
<p:nvSpPr><p:cNvPr id="%d" name="TextBox %d"/><p:cNvSpPr/><p:nvPr/></p:nvSpPr>
<p:spPr><a:xfrm><a:off x="1000000" y="2500000"/><a:ext cx="6000000" cy="1000000"/></a:xfrm></p:spPr>
<p:txBody><a:bodyPr/><a:p><a:r><a:t>%s</a:t></a:r></a:p></p:txBody>
</p:sp>`, id, id, text)
}

func tableShape(id int, rows [][]string) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, `<p:graphicFrame>
<p:nvGraphicFramePr><p:cNvPr id="%d" name="Table %d"/><p:cNvGraphicFramePr/><p:nvPr/></p:nvGraphicFramePr>
<p:xfrm><a:off x="1000000" y="3500000"/><a:ext cx="6000000" cy="1500000"/></p:xfrm>
<a:graphic><a:graphicData uri="http://schemas.openxmlformats.org/drawingml/2006/table"><a:tbl><a:tblGrid>`, id, id)
	for range rows[0] {
		sb.WriteString(`<a:gridCol w="3000000"/>`)
	}
	sb.WriteString(`</a:tblGrid>`)
	for _, row := range rows {
		sb.WriteString(`<a:tr h="370840">`)
		for _, cell := range row {
			fmt.Fprintf(&sb, `<a:tc><a:txBody><a:bodyPr/><a:p><a:r><a:t>%s</a:t></a:r></a:p></a:txBody></a:tc>`, cell)
		}
		sb.WriteString(`</a:tr>`)
	}
	sb.WriteString(`</a:tbl></a:graphicData></a:graphic></p:graphicFrame>`)
	return sb.String()
}

func deckSlide(shapes ...string) string {
	return `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<p:sld xmlns:a="http://schemas.openxmlformats.org/drawingml/2006/main" xmlns:p="http://schemas.openxmlformats.org/presentationml/2006/main" xmlns:r="http://schemas.openxmlformats.org/officeDocument/2006/relationships">
<p:cSld><p:spTree><p:nvGrpSpPr><p:cNvPr id="1" name=""/><p:cNvGrpSpPr/><p:nvPr/></p:nvGrpSpPr><p:grpSpPr/>
` + strings.Join(shapes, "\n") + `
</p:spTree></p:cSld></p:sld>`
}

// deckBytes assembles a presentation archive from slide XML parts.
func deckBytes(t *testing.T, slides ...string) []byte {
	t.Helper()

	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	add := func(name, content string) {
		w, err := zw.Create(name)
		if err != nil {
			t.Fatalf("creating %s: %v", name, err)
		}
		if _, err := w.Write([]byte(content)); err != nil {
			t.Fatalf("writing %s: %v", name, err)
		}
	}

	var types, ids, rels strings.Builder
	for i := range slides {
		fmt.Fprintf(&types, `<Override PartName="/ppt/slides/slide%d.xml" ContentType="application/vnd.openxmlformats-officedocument.presentationml.slide+xml"/>`, i+1)
		fmt.Fprintf(&ids, `<p:sldId id="%d" r:id="rId%d"/>`, 256+i, i+1)
		fmt.Fprintf(&rels, `<Relationship Id="rId%d" Type="http://schemas.openxmlformats.org/officeDocument/2006/relationships/slide" Target="slides/slide%d.xml"/>`, i+1, i+1)
	}

	add("[Content_Types].xml", `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<Types xmlns="http://schemas.openxmlformats.org/package/2006/content-types">
<Default Extension="rels" ContentType="application/vnd.openxmlformats-package.relationships+xml"/>
<Default Extension="xml" ContentType="application/xml"/>
<Override PartName="/ppt/presentation.xml" ContentType="application/vnd.openxmlformats-officedocument.presentationml.presentation.main+xml"/>
`+types.String()+`
</Types>`)
	add("_rels/.rels", `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<Relationships xmlns="http://schemas.openxmlformats.org/package/2006/relationships">
<Relationship Id="rId1" Type="http://schemas.openxmlformats.org/officeDocument/2006/relationships/officeDocument" Target="ppt/presentation.xml"/>
</Relationships>`)
	add("ppt/presentation.xml", `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<p:presentation xmlns:a="http://schemas.openxmlformats.org/drawingml/2006/main" xmlns:p="http://schemas.openxmlformats.org/presentationml/2006/main" xmlns:r="http://schemas.openxmlformats.org/officeDocument/2006/relationships">
<p:sldIdLst>`+ids.String()+`</p:sldIdLst>
</p:presentation>`)
	add("ppt/_rels/presentation.xml.rels", `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<Relationships xmlns="http://schemas.openxmlformats.org/package/2006/relationships">
`+rels.String()+`
</Relationships>`)
	for i, slide := range slides {
		add(fmt.Sprintf("ppt/slides/slide%d.xml", i+1), slide)
	}

	if err := zw.Close(); err != nil {
		t.Fatalf("closing archive: %v", err)
	}
	return buf.Bytes()
}

func TestPptxReader(t *testing.T) {
	data := deckBytes(t,
		deckSlide(
			phShape(2, "ctrTitle", "Road Map 2026"),
			bodyShape(3, "The plan for the year."),
		),
		deckSlide(
			phShape(2, "title", "Milestones"),
			tableShape(3, [][]string{{"Phase", "Date"}, {"Beta", "March"}}),
			phShape(4, "ftr", "Confidential"),
			phShape(5, "sldNum", "2"),
		),
	)

	got, err := PptxReader{}.Read(bytes.NewReader(data), "roadmap.pptx")
	if err != nil {
		t.Fatalf("Read() error = %v", err)
	}

	if !strings.HasPrefix(got, "# Road Map 2026") {
		t.Errorf("first slide title is not the document title:\n%s", got)
	}
	if !strings.Contains(got, "## Milestones") {
		t.Errorf("later slide title is not a chapter heading:\n%s", got)
	}
	if !strings.Contains(got, "The plan for the year.") {
		t.Errorf("body text missing:\n%s", got)
	}
	if !strings.Contains(got, "| Beta") || !strings.Contains(got, "March") {
		t.Errorf("table not rendered:\n%s", got)
	}
	if strings.Contains(got, "Confidential") || strings.Contains(got, "\n2\n") {
		t.Errorf("footer placeholders leaked into output:\n%s", got)
	}
}

func TestPptxReaderThroughRegistry(t *testing.T) {
	// No hint: the archive layout identifies the deck.
	data := deckBytes(t, deckSlide(phShape(2, "ctrTitle", "Sniffed Deck")))

	got, err := DefaultRegistry().Read(bytes.NewReader(data), "")
	if err != nil {
		t.Fatalf("Read() error = %v", err)
	}
	if !strings.Contains(got, "# Sniffed Deck") {
		t.Errorf("Read() = %q", got)
	}
}

func TestPptxReaderNotADeck(t *testing.T) {
	if _, err := (PptxReader{}).Read(strings.NewReader("plain text"), "x.pptx"); err == nil {
		t.Fatal("Read() expected error for non-presentation input")
	}
}

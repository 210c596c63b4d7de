package deckgen

import (
	"archive/zip"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/deckgen/deckgen/catalog"
	"github.com/deckgen/deckgen/deck"
	"github.com/deckgen/deckgen/geom"
	"github.com/deckgen/deckgen/markdown"
	"github.com/deckgen/deckgen/pptx"
)

// ============================================================================
// Fixtures
// ============================================================================

const outline = `# Launch Plan

## Alpha

### Step one

Do the thing.

### Step two

Do the other thing.

## Beta

### Step three

Check the result.

### Step four

Ship it.
`

// shapeXML renders one template shape. A non-empty ph makes it a
// placeholder; an empty text leaves it a bare decoration.
func shapeXML(id int, name, ph string, x, y, w, h int64, text string) string {
	nv := `<p:nvPr/>`
	geo := `<a:prstGeom prst="rect"><a:avLst/></a:prstGeom>`
	if ph != "" {
		nv = fmt.Sprintf(`<p:nvPr><p:ph type=%q/></p:nvPr>`, ph)
		geo = ""
	}
	body := ""
	if text != "" {
		body = fmt.Sprintf(`<p:txBody><a:bodyPr/><a:p><a:r><a:t>%s</a:t></a:r></a:p></p:txBody>`, text)
	}
	return fmt.Sprintf(`<p:sp><p:nvSpPr><p:cNvPr id="%d" name=%q/><p:cNvSpPr/>%s</p:nvSpPr><p:spPr><a:xfrm><a:off x="%d" y="%d"/><a:ext cx="%d" cy="%d"/></a:xfrm>%s</p:spPr>%s</p:sp>`,
		id, name, nv, x, y, w, h, geo, body)
}

func slideXML(shapes ...string) string {
	return `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<p:sld xmlns:a="http://schemas.openxmlformats.org/drawingml/2006/main" xmlns:p="http://schemas.openxmlformats.org/presentationml/2006/main" xmlns:r="http://schemas.openxmlformats.org/officeDocument/2006/relationships">
  <p:cSld>
    <p:spTree>
      <p:nvGrpSpPr><p:cNvPr id="1" name=""/><p:cNvGrpSpPr/><p:nvPr/></p:nvGrpSpPr>
      <p:grpSpPr/>
      ` + strings.Join(shapes, "\n      ") + `
    </p:spTree>
  </p:cSld>
</p:sld>`
}

// templateSlides builds the five-part template: cover, a catalog page
// with three chapter slots, chapter home, chapter content, end.
func templateSlides() []string {
	return []string{
		slideXML(shapeXML(2, "Title 1", "ctrTitle", 1000000, 3000000, 8000000, 1000000, "Template Cover")),
		slideXML(
			shapeXML(10, "BG 1", "", 950000, 1950000, 1700000, 1200000, ""),
			shapeXML(11, "BG 2", "", 3450000, 1950000, 1700000, 1200000, ""),
			shapeXML(12, "BG 3", "", 5950000, 1950000, 1700000, 1200000, ""),
			shapeXML(2, "Number 1", "", 1000000, 2000000, 400000, 400000, "01"),
			shapeXML(3, "Number 2", "", 3500000, 2000000, 400000, 400000, "02"),
			shapeXML(4, "Number 3", "", 6000000, 2000000, 400000, 400000, "03"),
			shapeXML(5, "Label 1", "", 1000000, 2600000, 1500000, 400000, "Slot A"),
			shapeXML(6, "Label 2", "", 3500000, 2600000, 1500000, 400000, "Slot B"),
			shapeXML(7, "Label 3", "", 6000000, 2600000, 1500000, 400000, "Slot C"),
		),
		slideXML(
			shapeXML(2, "Title 1", "title", 1000000, 3000000, 6000000, 800000, "Chapter Title"),
			shapeXML(3, "Chapter Number", "", 1000000, 1500000, 800000, 600000, "01"),
		),
		slideXML(shapeXML(2, "Title 1", "title", 1000000, 500000, 7000000, 800000, "Content Title")),
		slideXML(shapeXML(2, "Title 1", "title", 1000000, 3000000, 6000000, 800000, "The End")),
	}
}

// writeTemplate assembles the template deck under dir and returns its
// path.
func writeTemplate(t *testing.T, dir string) string {
	t.Helper()

	file := filepath.Join(dir, "template.pptx")
	f, err := os.Create(file)
	if err != nil {
		t.Fatalf("creating %s: %v", file, err)
	}
	zw := zip.NewWriter(f)
	write := func(name, content string) {
		w, err := zw.Create(name)
		if err != nil {
			t.Fatalf("creating zip entry %s: %v", name, err)
		}
		if _, err := w.Write([]byte(content)); err != nil {
			t.Fatalf("writing zip entry %s: %v", name, err)
		}
	}

	slides := templateSlides()
	var types, ids, rels strings.Builder
	types.WriteString(`<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<Types xmlns="http://schemas.openxmlformats.org/package/2006/content-types">
  <Default Extension="rels" ContentType="application/vnd.openxmlformats-package.relationships+xml"/>
  <Default Extension="xml" ContentType="application/xml"/>
  <Default Extension="png" ContentType="image/png"/>
  <Override PartName="/ppt/presentation.xml" ContentType="application/vnd.openxmlformats-officedocument.presentationml.presentation.main+xml"/>`)
	for i := range slides {
		fmt.Fprintf(&types, `
  <Override PartName="/ppt/slides/slide%d.xml" ContentType="application/vnd.openxmlformats-officedocument.presentationml.slide+xml"/>`, i+1)
		fmt.Fprintf(&ids, `
    <p:sldId id="%d" r:id="rId%d"/>`, 256+i, i+1)
		fmt.Fprintf(&rels, `
  <Relationship Id="rId%d" Type="http://schemas.openxmlformats.org/officeDocument/2006/relationships/slide" Target="slides/slide%d.xml"/>`, i+1, i+1)
	}
	types.WriteString("\n</Types>")

	write("[Content_Types].xml", types.String())
	write("_rels/.rels", `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<Relationships xmlns="http://schemas.openxmlformats.org/package/2006/relationships">
  <Relationship Id="rId1" Type="http://schemas.openxmlformats.org/officeDocument/2006/relationships/officeDocument" Target="ppt/presentation.xml"/>
</Relationships>`)
	write("ppt/presentation.xml", fmt.Sprintf(`<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<p:presentation xmlns:p="http://schemas.openxmlformats.org/presentationml/2006/main" xmlns:r="http://schemas.openxmlformats.org/officeDocument/2006/relationships">
  <p:sldIdLst>%s
  </p:sldIdLst>
</p:presentation>`, ids.String()))
	write("ppt/_rels/presentation.xml.rels", fmt.Sprintf(`<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<Relationships xmlns="http://schemas.openxmlformats.org/package/2006/relationships">%s
</Relationships>`, rels.String()))
	for i, slide := range slides {
		write(fmt.Sprintf("ppt/slides/slide%d.xml", i+1), slide)
	}

	if err := zw.Close(); err != nil {
		t.Fatalf("closing zip: %v", err)
	}
	if err := f.Close(); err != nil {
		t.Fatalf("closing file: %v", err)
	}
	return file
}

func openTemplate(t *testing.T) *pptx.Presentation {
	t.Helper()

	prs, err := pptx.Open(writeTemplate(t, t.TempDir()))
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	return prs
}

const styleSeed = `<p:sp><p:nvSpPr><p:cNvPr id="9" name="Seed"/><p:cNvSpPr/><p:nvPr/></p:nvSpPr><p:spPr><a:prstGeom prst="rect"><a:avLst/></a:prstGeom></p:spPr><p:txBody><a:bodyPr/><a:p><a:r><a:rPr lang="en-US" sz="1400"/><a:t>seed</a:t></a:r></a:p></p:txBody></p:sp>`

func rowRects(n int, y int64) []geom.Rect {
	locs := make([]geom.Rect, n)
	for i := range locs {
		locs[i] = geom.Rect{X: int64(500000 + i*2200000), Y: y, Width: 2000000, Height: 1200000}
	}
	return locs
}

// styleCatalog holds one style for the n-point layout: a title row, a
// body row, and a number badge row.
func styleCatalog(t *testing.T, points int) *catalog.Catalog {
	t.Helper()

	c := catalog.New()
	lt := c.AddLayout(catalog.LayoutForPoints(points))
	styled := styleSeed
	style := catalog.NewStyle("fixture")
	style.AddShape("PointTitle_1", &catalog.ShapeTemplate{
		XML:         &styled,
		ZOrder:      1,
		ContentType: catalog.ContentTypeTitle,
		Locations:   rowRects(points, 1500000),
	})
	style.AddShape("PointBody_2", &catalog.ShapeTemplate{
		XML:         &styled,
		ZOrder:      2,
		ContentType: catalog.ContentTypeContent,
		Locations:   rowRects(points, 3000000),
	})
	style.AddShape("PointNum_3", &catalog.ShapeTemplate{
		XML:         &styled,
		ZOrder:      3,
		ContentType: catalog.ContentTypeNumber,
		Locations:   rowRects(points, 1000000),
	})
	if err := lt.AddStyle(style); err != nil {
		t.Fatalf("AddStyle() error = %v", err)
	}
	return c
}

func slideText(t *testing.T, prs *pptx.Presentation, index int) string {
	t.Helper()

	slide, err := prs.Slide(index)
	if err != nil {
		t.Fatalf("Slide(%d) error = %v", index, err)
	}
	return slide.Text()
}

// ============================================================================
// Tests
// ============================================================================

func TestGenerateFile(t *testing.T) {
	dir := t.TempDir()
	input := filepath.Join(dir, "talk.md")
	if err := os.WriteFile(input, []byte(outline), 0o644); err != nil {
		t.Fatalf("writing outline: %v", err)
	}
	template := writeTemplate(t, dir)
	catPath := filepath.Join(dir, "catalog.json")
	if err := styleCatalog(t, 2).Save(catPath); err != nil {
		t.Fatalf("Save() error = %v", err)
	}
	out := filepath.Join(dir, "talk.pptx")

	gen := New(WithCatalogFile(catPath), WithSeed(1))
	if err := gen.GenerateFile(input, template, out); err != nil {
		t.Fatalf("GenerateFile() error = %v", err)
	}

	prs, err := pptx.Open(out)
	if err != nil {
		t.Fatalf("Open(out) error = %v", err)
	}
	if got := prs.SlideCount(); got != 7 {
		t.Fatalf("SlideCount() = %d, want 7 (cover, catalog, 2x home+content, end)", got)
	}
	if got := slideText(t, prs, 0); !strings.Contains(got, "Launch Plan") {
		t.Errorf("cover text = %q, want the outline title", got)
	}
	if got := slideText(t, prs, 3); !strings.Contains(got, "Do the thing.") {
		t.Errorf("content text = %q, want the first point body", got)
	}
	if got := slideText(t, prs, 6); !strings.Contains(got, "Thank you!") {
		t.Errorf("end text = %q, want the default closing title", got)
	}
}

// Non-Markdown input converts through the document readers first.
func TestGenerateFileFromHTML(t *testing.T) {
	dir := t.TempDir()
	input := filepath.Join(dir, "talk.html")
	page := `<html><head><title>unused</title></head><body>
<h1>Launch Plan</h1>
<h2>Alpha</h2>
<h3>Step one</h3><p>Do the thing.</p>
<h3>Step two</h3><p>Do the other thing.</p>
</body></html>`
	if err := os.WriteFile(input, []byte(page), 0o644); err != nil {
		t.Fatalf("writing page: %v", err)
	}
	template := writeTemplate(t, dir)
	out := filepath.Join(dir, "talk.pptx")

	gen := New(WithCatalog(styleCatalog(t, 2)), WithSeed(2))
	if err := gen.GenerateFile(input, template, out); err != nil {
		t.Fatalf("GenerateFile() error = %v", err)
	}

	prs, err := pptx.Open(out)
	if err != nil {
		t.Fatalf("Open(out) error = %v", err)
	}
	if got := prs.SlideCount(); got != 5 {
		t.Fatalf("SlideCount() = %d, want 5 (cover, catalog, home, content, end)", got)
	}
	if got := slideText(t, prs, 0); !strings.Contains(got, "Launch Plan") {
		t.Errorf("cover text = %q, want the page heading", got)
	}
}

func TestGenerate(t *testing.T) {
	prs := openTemplate(t)
	doc := markdown.Parse(outline)

	gen := New(WithCatalog(styleCatalog(t, 2)), WithSeed(42))
	if err := gen.Generate(doc, prs); err != nil {
		t.Fatalf("Generate() error = %v", err)
	}

	if got := prs.SlideCount(); got != 7 {
		t.Fatalf("SlideCount() = %d, want 7", got)
	}
	content := slideText(t, prs, 3)
	for _, want := range []string{"Alpha", "Step one", "Do the thing."} {
		if !strings.Contains(content, want) {
			t.Errorf("content text %q missing %q", content, want)
		}
	}
}

func TestGenerateWithoutCatalog(t *testing.T) {
	prs := openTemplate(t)

	err := New().Generate(markdown.Parse(outline), prs)
	if !errors.Is(err, ErrNoCatalog) {
		t.Errorf("Generate() error = %v, want ErrNoCatalog", err)
	}
}

func TestGenerateFileMissingInput(t *testing.T) {
	dir := t.TempDir()
	template := writeTemplate(t, dir)

	gen := New(WithCatalog(styleCatalog(t, 2)))
	err := gen.GenerateFile(filepath.Join(dir, "absent.md"), template, filepath.Join(dir, "out.pptx"))
	if err == nil {
		t.Fatal("GenerateFile() succeeded with a missing input file")
	}
}

func TestGenerateFileMissingCatalogFile(t *testing.T) {
	dir := t.TempDir()
	input := filepath.Join(dir, "talk.md")
	if err := os.WriteFile(input, []byte(outline), 0o644); err != nil {
		t.Fatalf("writing outline: %v", err)
	}
	template := writeTemplate(t, dir)

	gen := New(WithCatalogFile(filepath.Join(dir, "absent.json")))
	err := gen.GenerateFile(input, template, filepath.Join(dir, "out.pptx"))
	if err == nil {
		t.Fatal("GenerateFile() succeeded with a missing catalog file")
	}
}

func TestWithConfig(t *testing.T) {
	cfg := deck.DefaultConfig()
	cfg.EndTitle = "Fin"

	prs := openTemplate(t)
	gen := New(WithCatalog(styleCatalog(t, 2)), WithConfig(cfg), WithSeed(3))
	if err := gen.Generate(markdown.Parse(outline), prs); err != nil {
		t.Fatalf("Generate() error = %v", err)
	}
	if got := slideText(t, prs, 6); !strings.Contains(got, "Fin") {
		t.Errorf("end text = %q, want the configured closing title", got)
	}
}

func TestWithPictureDir(t *testing.T) {
	base := t.TempDir()
	if err := os.MkdirAll(filepath.Join(base, "components"), 0o755); err != nil {
		t.Fatalf("creating picture dir: %v", err)
	}
	if err := os.WriteFile(filepath.Join(base, "components", "logo.png"), []byte("deck-logo-bytes"), 0o644); err != nil {
		t.Fatalf("writing picture: %v", err)
	}

	c := catalog.New()
	lt := c.AddLayout(catalog.LayoutForPoints(1))
	relative := "components/logo.png"
	style := catalog.NewStyle("pictured")
	style.AddShape("Photo_1", &catalog.ShapeTemplate{
		ZOrder:      1,
		ContentType: catalog.ContentTypePicture,
		Path:        &relative,
		Locations:   []geom.Rect{{X: 1000000, Y: 1000000, Width: 2000000, Height: 1500000}},
	})
	if err := lt.AddStyle(style); err != nil {
		t.Fatalf("AddStyle() error = %v", err)
	}

	prs := openTemplate(t)
	doc := markdown.Parse("# Visual\n\n## Gallery\n\n### Only\n\nOne picture.\n")
	gen := New(WithCatalog(c), WithPictureDir(base), WithSeed(4))
	if err := gen.Generate(doc, prs); err != nil {
		t.Fatalf("Generate() error = %v", err)
	}

	slide, err := prs.Slide(3)
	if err != nil {
		t.Fatalf("Slide(3) error = %v", err)
	}
	var data []byte
	for _, shape := range slide.Shapes() {
		if shape.IsPicture() {
			data, _, err = shape.PictureData()
			if err != nil {
				t.Fatalf("PictureData() error = %v", err)
			}
		}
	}
	if string(data) != "deck-logo-bytes" {
		t.Errorf("picture data = %q, want the anchored file contents", data)
	}
}

func TestMust(t *testing.T) {
	if got := Must(3, nil); got != 3 {
		t.Errorf("Must(3, nil) = %d, want 3", got)
	}
	defer func() {
		if recover() == nil {
			t.Error("Must() did not panic on error")
		}
	}()
	Must(0, errors.New("boom"))
}

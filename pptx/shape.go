package pptx

import (
	"fmt"
	"path"
	"strconv"
	"strings"

	"github.com/beevik/etree"

	"github.com/deckgen/deckgen/geom"
)

// Shape wraps one shape element on a slide. Mutations write straight
// into the slide's XML tree.
type Shape struct {
	slide *Slide
	el    *etree.Element
}

// Is reports whether two wrappers refer to the same shape element.
func (sh *Shape) Is(other *Shape) bool {
	return other != nil && sh.el == other.el
}

func (sh *Shape) cNvPr() *etree.Element {
	return sh.el.FindElement(".//p:cNvPr")
}

// ID returns the shape id, or 0 if the shape has none.
func (sh *Shape) ID() int {
	if pr := sh.cNvPr(); pr != nil {
		return attrInt(pr, "id")
	}
	return 0
}

// Name returns the shape name.
func (sh *Shape) Name() string {
	if pr := sh.cNvPr(); pr != nil {
		return pr.SelectAttrValue("name", "")
	}
	return ""
}

// SetName renames the shape.
func (sh *Shape) SetName(name string) {
	if pr := sh.cNvPr(); pr != nil {
		pr.CreateAttr("name", name)
	}
}

// IsPlaceholder reports whether the shape is a layout placeholder.
func (sh *Shape) IsPlaceholder() bool {
	return sh.el.FindElement(".//p:nvPr/p:ph") != nil
}

// PlaceholderType returns the placeholder type ("title", "body", ...).
// A placeholder without an explicit type attribute is a body
// placeholder. Non-placeholders return "".
func (sh *Shape) PlaceholderType() string {
	ph := sh.el.FindElement(".//p:nvPr/p:ph")
	if ph == nil {
		return ""
	}
	return ph.SelectAttrValue("type", PlaceholderBody)
}

// IsPicture reports whether the shape is a picture.
func (sh *Shape) IsPicture() bool {
	return sh.el.Space == "p" && sh.el.Tag == "pic"
}

// textBody returns the shape's text frame element, or nil.
func (sh *Shape) textBody() *etree.Element {
	return sh.el.SelectElement("p:txBody")
}

// HasTextFrame reports whether the shape can hold text.
func (sh *Shape) HasTextFrame() bool {
	return sh.textBody() != nil
}

// Text returns the shape's text. Paragraphs are joined with newlines;
// within a paragraph, run and field text is concatenated.
func (sh *Shape) Text() string {
	tb := sh.textBody()
	if tb == nil {
		return ""
	}
	var paras []string
	for _, p := range tb.SelectElements("a:p") {
		var b strings.Builder
		for _, child := range p.ChildElements() {
			if child.Space != "a" {
				continue
			}
			if child.Tag == "r" || child.Tag == "fld" {
				if t := child.SelectElement("a:t"); t != nil {
					b.WriteString(t.Text())
				}
			}
		}
		paras = append(paras, b.String())
	}
	return strings.Join(paras, "\n")
}

// SetText replaces the shape's text while keeping the template's
// formatting. Placeholders take inherited formatting; other shapes
// keep the run properties of their existing first paragraph, or the
// paragraph's end-of-paragraph properties when it holds no text yet.
func (sh *Shape) SetText(text string) error {
	tb := sh.textBody()
	if tb == nil {
		return fmt.Errorf("shape %q has no text frame", sh.Name())
	}
	if sh.IsPlaceholder() {
		sh.setPlaceholderText(tb, text)
		return nil
	}
	if sh.Text() != "" {
		if p := tb.SelectElement("a:p"); p != nil {
			if run := mergeRuns(p); run != nil {
				setRunText(run, text)
			}
		}
		return nil
	}
	sh.setStyledText(tb, text)
	return nil
}

// setPlaceholderText collapses the text frame to plain runs. The run
// formatting is inherited from the placeholder's layout.
func (sh *Shape) setPlaceholderText(tb *etree.Element, text string) {
	paras := tb.SelectElements("a:p")
	var first *etree.Element
	if len(paras) == 0 {
		first = tb.CreateElement("a:p")
	} else {
		first = paras[0]
		for _, p := range paras[1:] {
			tb.RemoveChild(p)
		}
	}
	for _, child := range first.ChildElements() {
		if child.Space != "a" || child.Tag != "pPr" {
			first.RemoveChild(child)
		}
	}
	lines := strings.Split(text, "\n")
	addPlainRun(first, lines[0])
	for _, line := range lines[1:] {
		addPlainRun(tb.CreateElement("a:p"), line)
	}
}

// setStyledText writes text into an empty shape, promoting the first
// paragraph's end-of-paragraph run properties to the new run so the
// template's formatting carries over.
func (sh *Shape) setStyledText(tb *etree.Element, text string) {
	paras := tb.SelectElements("a:p")
	var p *etree.Element
	if len(paras) == 0 {
		p = tb.CreateElement("a:p")
	} else {
		p = paras[0]
		for _, extra := range paras[1:] {
			tb.RemoveChild(extra)
		}
	}

	r := etree.NewElement("a:r")
	if end := p.SelectElement("a:endParaRPr"); end != nil {
		rPr := etree.NewElement("a:rPr")
		for _, attr := range end.Attr {
			rPr.CreateAttr(attrName(attr), attr.Value)
		}
		for _, child := range end.ChildElements() {
			rPr.AddChild(child.Copy())
		}
		r.AddChild(rPr)
		p.RemoveChild(end)
	}
	t := r.CreateElement("a:t")
	t.SetText(text)

	if pPr := p.SelectElement("a:pPr"); pPr != nil {
		p.InsertChildAt(pPr.Index()+1, r)
	} else {
		p.InsertChildAt(0, r)
	}
}

// mergeRuns collapses a paragraph's runs into the one with the most
// text and returns it. Field runs are first converted to plain runs so
// their text becomes editable. Returns nil when the paragraph has no
// runs at all.
func mergeRuns(p *etree.Element) *etree.Element {
	runs := p.SelectElements("a:r")
	if len(runs) == 0 {
		for _, fld := range p.SelectElements("a:fld") {
			r := etree.NewElement("a:r")
			if rPr := fld.SelectElement("a:rPr"); rPr != nil {
				r.AddChild(rPr.Copy())
			}
			t := r.CreateElement("a:t")
			if ft := fld.SelectElement("a:t"); ft != nil {
				t.SetText(ft.Text())
			}
			p.InsertChildAt(fld.Index(), r)
			p.RemoveChild(fld)
		}
		runs = p.SelectElements("a:r")
	}
	if len(runs) == 0 {
		return nil
	}
	if len(runs) == 1 {
		return runs[0]
	}

	longest := runs[0]
	var full strings.Builder
	for _, r := range runs {
		t := runText(r)
		full.WriteString(t)
		if len(t) > len(runText(longest)) {
			longest = r
		}
	}
	setRunText(longest, full.String())
	for _, r := range runs {
		if r != longest {
			p.RemoveChild(r)
		}
	}
	return longest
}

func runText(r *etree.Element) string {
	if t := r.SelectElement("a:t"); t != nil {
		return t.Text()
	}
	return ""
}

func setRunText(r *etree.Element, text string) {
	t := r.SelectElement("a:t")
	if t == nil {
		t = r.CreateElement("a:t")
	}
	t.SetText(text)
}

func addPlainRun(p *etree.Element, text string) {
	r := p.CreateElement("a:r")
	t := r.CreateElement("a:t")
	t.SetText(text)
}

// xfrm returns the element holding the shape's transform, wherever the
// shape kind keeps it.
func (sh *Shape) xfrm() *etree.Element {
	if spPr := sh.el.SelectElement("p:spPr"); spPr != nil {
		return spPr.SelectElement("a:xfrm")
	}
	if grpSpPr := sh.el.SelectElement("p:grpSpPr"); grpSpPr != nil {
		return grpSpPr.SelectElement("a:xfrm")
	}
	return sh.el.SelectElement("p:xfrm")
}

// Frame returns the shape's position and size in EMU. Shapes that
// inherit their geometry from the layout report a zero rectangle.
func (sh *Shape) Frame() geom.Rect {
	x := sh.xfrm()
	if x == nil {
		return geom.Rect{}
	}
	var r geom.Rect
	if off := x.SelectElement("a:off"); off != nil {
		r.X = attrInt64(off, "x")
		r.Y = attrInt64(off, "y")
	}
	if ext := x.SelectElement("a:ext"); ext != nil {
		r.Width = attrInt64(ext, "cx")
		r.Height = attrInt64(ext, "cy")
	}
	return r
}

// SetFrame positions and sizes the shape, creating the transform
// elements if the template shape inherited its geometry.
func (sh *Shape) SetFrame(frame geom.Rect) {
	x := sh.xfrm()
	if x == nil {
		prop := sh.el.SelectElement("p:spPr")
		if prop == nil {
			prop = sh.el.SelectElement("p:grpSpPr")
		}
		if prop == nil {
			x = etree.NewElement("p:xfrm")
			sh.el.InsertChildAt(0, x)
		} else {
			x = etree.NewElement("a:xfrm")
			prop.InsertChildAt(0, x)
		}
	}
	off := x.SelectElement("a:off")
	if off == nil {
		off = etree.NewElement("a:off")
		x.InsertChildAt(0, off)
	}
	off.CreateAttr("x", strconv.FormatInt(frame.X, 10))
	off.CreateAttr("y", strconv.FormatInt(frame.Y, 10))
	ext := x.SelectElement("a:ext")
	if ext == nil {
		ext = x.CreateElement("a:ext")
	}
	ext.CreateAttr("cx", strconv.FormatInt(frame.Width, 10))
	ext.CreateAttr("cy", strconv.FormatInt(frame.Height, 10))
}

// Area returns the shape's area in square EMU.
func (sh *Shape) Area() int64 {
	f := sh.Frame()
	return f.Width * f.Height
}

// ensureBodyPr returns the text frame's body properties element,
// creating it as the first child if missing.
func (sh *Shape) ensureBodyPr() *etree.Element {
	tb := sh.textBody()
	if tb == nil {
		return nil
	}
	bodyPr := tb.SelectElement("a:bodyPr")
	if bodyPr == nil {
		bodyPr = etree.NewElement("a:bodyPr")
		tb.InsertChildAt(0, bodyPr)
	}
	return bodyPr
}

// DisableWordWrap turns off word wrapping so long titles overflow the
// frame instead of breaking.
func (sh *Shape) DisableWordWrap() {
	if bodyPr := sh.ensureBodyPr(); bodyPr != nil {
		bodyPr.CreateAttr("wrap", "none")
	}
}

// AlignTopJustify anchors the text frame to the top edge and justifies
// every paragraph.
func (sh *Shape) AlignTopJustify() {
	bodyPr := sh.ensureBodyPr()
	if bodyPr == nil {
		return
	}
	bodyPr.CreateAttr("anchor", "t")
	for _, p := range sh.textBody().SelectElements("a:p") {
		pPr := p.SelectElement("a:pPr")
		if pPr == nil {
			pPr = etree.NewElement("a:pPr")
			p.InsertChildAt(0, pPr)
		}
		pPr.CreateAttr("algn", "just")
	}
}

// IsTable reports whether the shape is a graphic frame holding a table.
func (sh *Shape) IsTable() bool {
	return sh.el.Space == "p" && sh.el.Tag == "graphicFrame" && sh.el.FindElement(".//a:tbl") != nil
}

// TableRows returns the table's cell texts, row by row. Paragraphs
// within a cell are joined with spaces. Non-table shapes return nil.
func (sh *Shape) TableRows() [][]string {
	tbl := sh.el.FindElement(".//a:tbl")
	if tbl == nil {
		return nil
	}
	var rows [][]string
	for _, tr := range tbl.SelectElements("a:tr") {
		var row []string
		for _, tc := range tr.SelectElements("a:tc") {
			var parts []string
			if body := tc.SelectElement("a:txBody"); body != nil {
				for _, p := range body.SelectElements("a:p") {
					var b strings.Builder
					for _, child := range p.ChildElements() {
						if child.Space != "a" || (child.Tag != "r" && child.Tag != "fld") {
							continue
						}
						if t := child.SelectElement("a:t"); t != nil {
							b.WriteString(t.Text())
						}
					}
					if b.Len() > 0 {
						parts = append(parts, b.String())
					}
				}
			}
			row = append(row, strings.Join(parts, " "))
		}
		rows = append(rows, row)
	}
	return rows
}

// PictureData returns the embedded image bytes and their extension
// (without dot).
func (sh *Shape) PictureData() ([]byte, string, error) {
	blip := sh.el.FindElement(".//a:blip")
	if blip == nil {
		return nil, "", fmt.Errorf("shape %q has no image fill", sh.Name())
	}
	rid := blip.SelectAttrValue("r:embed", "")
	if rid == "" {
		return nil, "", fmt.Errorf("shape %q has no embedded image", sh.Name())
	}
	target := sh.slide.relTarget(rid)
	if target == "" {
		return nil, "", fmt.Errorf("unresolved image relationship %q", rid)
	}
	partName := resolvePartName(path.Dir(sh.slide.partName), target)
	e := sh.slide.pres.byName[partName]
	if e == nil {
		return nil, "", fmt.Errorf("image part not found: %s", partName)
	}
	ext := strings.TrimPrefix(path.Ext(partName), ".")
	return e.data, ext, nil
}

// XML serializes the shape with namespace declarations so the
// fragment can stand alone. Custom-data subtrees are stripped.
func (sh *Shape) XML() (string, error) {
	cp := sh.el.Copy()
	for _, cd := range cp.FindElements(".//p:custDataLst") {
		if parent := cd.Parent(); parent != nil {
			parent.RemoveChild(cd)
		}
	}
	ensureShapeNamespaces(cp)
	return serializeElement(cp)
}

package pptx

import (
	"archive/zip"
	"bytes"
	"fmt"
	"io"
	"os"
	"path"
	"strconv"
	"strings"

	"github.com/beevik/etree"
)

// entry is one file in the package archive. Untouched entries are
// written back exactly as read.
type entry struct {
	name string
	data []byte
}

// Presentation is an opened PPTX package. Edits go through the live
// XML documents; Save serializes those over their entries and leaves
// everything else byte-identical.
type Presentation struct {
	entries []*entry
	byName  map[string]*entry
	live    map[string]*etree.Document

	presDoc  *etree.Document
	relsDoc  *etree.Document
	typesDoc *etree.Document

	slides []*Slide
}

// Open reads a PPTX file.
func Open(filename string) (*Presentation, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("opening presentation: %w", err)
	}
	return OpenBytes(data)
}

// OpenReader reads a PPTX package from r.
func OpenReader(r io.Reader) (*Presentation, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("reading presentation: %w", err)
	}
	return OpenBytes(data)
}

// OpenBytes reads a PPTX package from memory.
func OpenBytes(data []byte) (*Presentation, error) {
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("opening ZIP archive: %w", err)
	}

	p := &Presentation{
		byName: make(map[string]*entry),
		live:   make(map[string]*etree.Document),
	}

	for _, f := range zr.File {
		if strings.HasSuffix(f.Name, "/") {
			continue
		}
		rc, err := f.Open()
		if err != nil {
			return nil, fmt.Errorf("reading %s: %w", f.Name, err)
		}
		content, err := io.ReadAll(rc)
		rc.Close()
		if err != nil {
			return nil, fmt.Errorf("reading %s: %w", f.Name, err)
		}
		p.addEntry(f.Name, content)
	}

	if err := p.validate(); err != nil {
		return nil, err
	}

	if p.typesDoc, err = p.parsePart(partContentTypes); err != nil {
		return nil, fmt.Errorf("parsing content types: %w", err)
	}
	if p.presDoc, err = p.parsePart(partPresentation); err != nil {
		return nil, fmt.Errorf("parsing presentation: %w", err)
	}
	if p.relsDoc, err = p.parsePart(partPresRels); err != nil {
		return nil, fmt.Errorf("parsing relationships: %w", err)
	}

	if err := p.loadSlides(); err != nil {
		return nil, err
	}

	return p, nil
}

// validate checks that required package parts exist.
func (p *Presentation) validate() error {
	required := []string{partContentTypes, partPresentation, partPresRels}
	for _, name := range required {
		if p.byName[name] == nil {
			return fmt.Errorf("missing required file: %s", name)
		}
	}
	return nil
}

func (p *Presentation) addEntry(name string, data []byte) *entry {
	if e := p.byName[name]; e != nil {
		e.data = data
		return e
	}
	e := &entry{name: name, data: data}
	p.entries = append(p.entries, e)
	p.byName[name] = e
	return e
}

func (p *Presentation) removeEntry(name string) {
	e := p.byName[name]
	if e == nil {
		return
	}
	delete(p.byName, name)
	delete(p.live, name)
	for i, cur := range p.entries {
		if cur == e {
			p.entries = append(p.entries[:i], p.entries[i+1:]...)
			break
		}
	}
}

// parsePart parses an archive entry into a live XML document. Further
// edits to the document are picked up on Save.
func (p *Presentation) parsePart(name string) (*etree.Document, error) {
	if doc := p.live[name]; doc != nil {
		return doc, nil
	}
	e := p.byName[name]
	if e == nil {
		return nil, fmt.Errorf("file not found: %s", name)
	}
	doc := etree.NewDocument()
	if err := doc.ReadFromBytes(e.data); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", name, err)
	}
	p.live[name] = doc
	return doc, nil
}

// registerPart installs a freshly built document as a new archive part.
func (p *Presentation) registerPart(name string, doc *etree.Document) {
	p.addEntry(name, nil)
	p.live[name] = doc
}

// loadSlides builds the slide list in sldIdLst order, resolving each
// r:id through the presentation relationships.
func (p *Presentation) loadSlides() error {
	lst := p.slideIDList()
	if lst == nil {
		return fmt.Errorf("presentation has no slide list")
	}
	for _, id := range lst.SelectElements("p:sldId") {
		rid := id.SelectAttrValue("r:id", "")
		target := p.relTarget(rid)
		if target == "" {
			return fmt.Errorf("unresolved slide relationship %q", rid)
		}
		partName := resolvePartName("ppt", target)
		slide, err := p.openSlide(partName)
		if err != nil {
			return err
		}
		p.slides = append(p.slides, slide)
	}
	if len(p.slides) == 0 {
		return fmt.Errorf("no slides found in presentation")
	}
	return nil
}

func (p *Presentation) openSlide(partName string) (*Slide, error) {
	doc, err := p.parsePart(partName)
	if err != nil {
		return nil, fmt.Errorf("parsing slide: %w", err)
	}
	s := &Slide{pres: p, partName: partName, doc: doc}
	if relsName := relsPartName(partName); p.byName[relsName] != nil {
		rels, err := p.parsePart(relsName)
		if err != nil {
			return nil, fmt.Errorf("parsing slide relationships: %w", err)
		}
		s.rels = rels
	}
	return s, nil
}

func (p *Presentation) slideIDList() *etree.Element {
	root := p.presDoc.Root()
	if root == nil {
		return nil
	}
	return root.SelectElement("p:sldIdLst")
}

// relTarget resolves a relationship id in the presentation rels to its
// target path, or "".
func (p *Presentation) relTarget(rid string) string {
	root := p.relsDoc.Root()
	if root == nil {
		return ""
	}
	for _, rel := range root.SelectElements("Relationship") {
		if rel.SelectAttrValue("Id", "") == rid {
			return rel.SelectAttrValue("Target", "")
		}
	}
	return ""
}

// relsPartName maps a part name to its companion .rels part name.
func relsPartName(partName string) string {
	return path.Join(path.Dir(partName), "_rels", path.Base(partName)+".rels")
}

// resolvePartName resolves a relationship target against the directory
// its source part lives in.
func resolvePartName(baseDir, target string) string {
	if strings.HasPrefix(target, "/") {
		return strings.TrimPrefix(target, "/")
	}
	return path.Clean(path.Join(baseDir, target))
}

// SlideCount returns the number of slides.
func (p *Presentation) SlideCount() int {
	return len(p.slides)
}

// Slide returns the slide at the given index (0-indexed).
func (p *Presentation) Slide(index int) (*Slide, error) {
	if index < 0 || index >= len(p.slides) {
		return nil, fmt.Errorf("slide index %d out of range (0-%d)", index, len(p.slides)-1)
	}
	return p.slides[index], nil
}

// Slides returns the slides in presentation order.
func (p *Presentation) Slides() []*Slide {
	out := make([]*Slide, len(p.slides))
	copy(out, p.slides)
	return out
}

// SlideIndex returns the current position of a slide, or -1.
func (p *Presentation) SlideIndex(s *Slide) int {
	for i, cur := range p.slides {
		if cur == s {
			return i
		}
	}
	return -1
}

// DuplicateSlide deep-copies the slide at the given index and appends
// the copy at the end of the deck. Custom-data subtrees are dropped
// from the copy; media references keep pointing at the original parts.
// Speaker notes are not carried over.
func (p *Presentation) DuplicateSlide(index int) (*Slide, error) {
	src, err := p.Slide(index)
	if err != nil {
		return nil, err
	}

	partName := fmt.Sprintf("ppt/slides/slide%d.xml", p.nextSlideNumber())

	doc := src.doc.Copy()
	removeCustomData(doc)
	p.registerPart(partName, doc)
	p.addOverride("/"+partName, contentTypeSlide)

	copied := &Slide{pres: p, partName: partName, doc: doc}
	if src.rels != nil {
		// .rels parts are covered by the Default extension mapping,
		// so no content-type override is needed for the copy.
		rels := src.rels.Copy()
		dropRelationships(rels, relTypeNotesSlide)
		p.registerPart(relsPartName(partName), rels)
		copied.rels = rels
	}

	rid := p.addRelationship(relTypeSlide, strings.TrimPrefix(partName, "ppt/"))
	p.appendSlideID(rid)
	p.slides = append(p.slides, copied)

	return copied, nil
}

// MoveSlide moves the slide at index from to index to, shifting the
// slides in between.
func (p *Presentation) MoveSlide(from, to int) error {
	if from < 0 || from >= len(p.slides) {
		return fmt.Errorf("slide index %d out of range (0-%d)", from, len(p.slides)-1)
	}
	if to < 0 {
		to = 0
	}
	if to >= len(p.slides) {
		to = len(p.slides) - 1
	}
	if from == to {
		return nil
	}

	lst := p.slideIDList()
	ids := lst.SelectElements("p:sldId")
	moved := ids[from]
	order := make([]*etree.Element, 0, len(ids))
	for i, id := range ids {
		if i != from {
			order = append(order, id)
		}
	}
	order = append(order[:to], append([]*etree.Element{moved}, order[to:]...)...)
	for _, id := range ids {
		lst.RemoveChild(id)
	}
	for _, id := range order {
		lst.AddChild(id)
	}

	s := p.slides[from]
	p.slides = append(p.slides[:from], p.slides[from+1:]...)
	p.slides = append(p.slides[:to], append([]*Slide{s}, p.slides[to:]...)...)
	return nil
}

// RemoveSlide deletes the slide at the given index, dropping its
// relationship, its parts and its content-type override.
func (p *Presentation) RemoveSlide(index int) error {
	s, err := p.Slide(index)
	if err != nil {
		return err
	}

	lst := p.slideIDList()
	ids := lst.SelectElements("p:sldId")
	id := ids[index]
	rid := id.SelectAttrValue("r:id", "")
	lst.RemoveChild(id)
	p.removeRelationship(rid)

	p.removeOverride("/" + s.partName)
	p.removeOverride("/" + relsPartName(s.partName))
	p.removeEntry(s.partName)
	p.removeEntry(relsPartName(s.partName))

	p.slides = append(p.slides[:index], p.slides[index+1:]...)
	return nil
}

// nextSlideNumber finds the lowest slide part number not yet in use.
func (p *Presentation) nextSlideNumber() int {
	max := 0
	for _, e := range p.entries {
		name := e.name
		if !strings.HasPrefix(name, "ppt/slides/slide") || !strings.HasSuffix(name, ".xml") {
			continue
		}
		num := strings.TrimSuffix(strings.TrimPrefix(name, "ppt/slides/slide"), ".xml")
		if n, err := strconv.Atoi(num); err == nil && n > max {
			max = n
		}
	}
	return max + 1
}

// appendSlideID adds a p:sldId entry for a new slide relationship at
// the end of the slide list.
func (p *Presentation) appendSlideID(rid string) {
	lst := p.slideIDList()
	max := 255 // slide ids start at 256
	for _, id := range lst.SelectElements("p:sldId") {
		if n, err := strconv.Atoi(id.SelectAttrValue("id", "")); err == nil && n > max {
			max = n
		}
	}
	id := lst.CreateElement("p:sldId")
	id.CreateAttr("id", strconv.Itoa(max+1))
	id.CreateAttr("r:id", rid)
}

// addRelationship registers a new relationship in the presentation
// rels and returns its id.
func (p *Presentation) addRelationship(relType, target string) string {
	root := p.relsDoc.Root()
	max := 0
	for _, rel := range root.SelectElements("Relationship") {
		id := rel.SelectAttrValue("Id", "")
		if n, err := strconv.Atoi(strings.TrimPrefix(id, "rId")); err == nil && n > max {
			max = n
		}
	}
	rid := fmt.Sprintf("rId%d", max+1)
	rel := root.CreateElement("Relationship")
	rel.CreateAttr("Id", rid)
	rel.CreateAttr("Type", relType)
	rel.CreateAttr("Target", target)
	return rid
}

func (p *Presentation) removeRelationship(rid string) {
	root := p.relsDoc.Root()
	for _, rel := range root.SelectElements("Relationship") {
		if rel.SelectAttrValue("Id", "") == rid {
			root.RemoveChild(rel)
			return
		}
	}
}

// addOverride registers a content-type override for a part.
func (p *Presentation) addOverride(partName, contentType string) {
	root := p.typesDoc.Root()
	for _, o := range root.SelectElements("Override") {
		if o.SelectAttrValue("PartName", "") == partName {
			return
		}
	}
	o := root.CreateElement("Override")
	o.CreateAttr("PartName", partName)
	o.CreateAttr("ContentType", contentType)
}

func (p *Presentation) removeOverride(partName string) {
	root := p.typesDoc.Root()
	for _, o := range root.SelectElements("Override") {
		if o.SelectAttrValue("PartName", "") == partName {
			root.RemoveChild(o)
			return
		}
	}
}

// ensureDefaultContentType registers a Default extension mapping if it
// is not present yet.
func (p *Presentation) ensureDefaultContentType(ext, contentType string) {
	root := p.typesDoc.Root()
	for _, d := range root.SelectElements("Default") {
		if strings.EqualFold(d.SelectAttrValue("Extension", ""), ext) {
			return
		}
	}
	d := root.CreateElement("Default")
	d.CreateAttr("Extension", ext)
	d.CreateAttr("ContentType", contentType)
}

// nextMediaNumber finds the lowest unused media part number.
func (p *Presentation) nextMediaNumber() int {
	max := 0
	for _, e := range p.entries {
		if !strings.HasPrefix(e.name, "ppt/media/image") {
			continue
		}
		rest := strings.TrimPrefix(e.name, "ppt/media/image")
		if dot := strings.IndexByte(rest, '.'); dot > 0 {
			if n, err := strconv.Atoi(rest[:dot]); err == nil && n > max {
				max = n
			}
		}
	}
	return max + 1
}

// Save writes the package to a file.
func (p *Presentation) Save(filename string) error {
	var buf bytes.Buffer
	if err := p.Write(&buf); err != nil {
		return err
	}
	if err := os.WriteFile(filename, buf.Bytes(), 0o644); err != nil {
		return fmt.Errorf("saving presentation: %w", err)
	}
	return nil
}

// Write serializes the package to w. Parts opened for editing are
// re-serialized; all other entries are written back unchanged.
func (p *Presentation) Write(w io.Writer) error {
	zw := zip.NewWriter(w)
	for _, e := range p.entries {
		data := e.data
		if doc, ok := p.live[e.name]; ok {
			out, err := doc.WriteToBytes()
			if err != nil {
				return fmt.Errorf("serializing %s: %w", e.name, err)
			}
			data = out
		}
		f, err := zw.Create(e.name)
		if err != nil {
			return fmt.Errorf("writing %s: %w", e.name, err)
		}
		if _, err := f.Write(data); err != nil {
			return fmt.Errorf("writing %s: %w", e.name, err)
		}
	}
	return zw.Close()
}

// removeCustomData strips p:custDataLst subtrees from a slide
// document. Template slides sometimes carry tool-specific custom data
// that must not leak into generated copies.
func removeCustomData(doc *etree.Document) {
	for _, cd := range doc.FindElements("//p:custDataLst") {
		if parent := cd.Parent(); parent != nil {
			parent.RemoveChild(cd)
		}
	}
}

// dropRelationships removes all relationships of the given type.
func dropRelationships(rels *etree.Document, relType string) {
	root := rels.Root()
	if root == nil {
		return
	}
	for _, rel := range root.SelectElements("Relationship") {
		if rel.SelectAttrValue("Type", "") == relType {
			root.RemoveChild(rel)
		}
	}
}

package pptx

import (
	"fmt"
	"strings"

	"github.com/beevik/etree"

	"github.com/deckgen/deckgen/geom"
)

// Slide is one slide part of an open presentation.
type Slide struct {
	pres     *Presentation
	partName string
	doc      *etree.Document
	rels     *etree.Document
}

// PartName returns the slide's part name within the package, for
// example "ppt/slides/slide1.xml".
func (s *Slide) PartName() string {
	return s.partName
}

// Index returns the slide's current position in the deck.
func (s *Slide) Index() int {
	return s.pres.SlideIndex(s)
}

// spTree returns the slide's shape tree element.
func (s *Slide) spTree() *etree.Element {
	root := s.doc.Root()
	if root == nil {
		return nil
	}
	cSld := root.SelectElement("p:cSld")
	if cSld == nil {
		return nil
	}
	return cSld.SelectElement("p:spTree")
}

// shapeTags are the spTree children that count as shapes. Child order
// is the z-order, back to front.
var shapeTags = map[string]bool{
	"sp":           true,
	"pic":          true,
	"graphicFrame": true,
	"grpSp":        true,
	"cxnSp":        true,
}

// Shapes returns the slide's shapes in z-order.
func (s *Slide) Shapes() []*Shape {
	tree := s.spTree()
	if tree == nil {
		return nil
	}
	var shapes []*Shape
	for _, el := range tree.ChildElements() {
		if el.Space == "p" && shapeTags[el.Tag] {
			shapes = append(shapes, &Shape{slide: s, el: el})
		}
	}
	return shapes
}

// Placeholder returns the first shape whose placeholder type matches
// one of the given types, or nil.
func (s *Slide) Placeholder(types ...string) *Shape {
	for _, shape := range s.Shapes() {
		if !shape.IsPlaceholder() {
			continue
		}
		pt := shape.PlaceholderType()
		for _, want := range types {
			if pt == want {
				return shape
			}
		}
	}
	return nil
}

// Text returns the concatenated text of all shapes on the slide, one
// shape per line. Empty shapes are skipped.
func (s *Slide) Text() string {
	var parts []string
	for _, shape := range s.Shapes() {
		if t := shape.Text(); t != "" {
			parts = append(parts, t)
		}
	}
	return strings.Join(parts, "\n")
}

// RemoveShape detaches a shape from the slide.
func (s *Slide) RemoveShape(shape *Shape) error {
	tree := s.spTree()
	if tree == nil || shape.el.Parent() != tree {
		return fmt.Errorf("shape %q is not on this slide", shape.Name())
	}
	tree.RemoveChild(shape.el)
	return nil
}

// maxShapeID returns the highest shape id on the slide.
func (s *Slide) maxShapeID() int {
	max := 0
	for _, cNvPr := range s.doc.FindElements("//p:cNvPr") {
		if id := attrInt(cNvPr, "id"); id > max {
			max = id
		}
	}
	return max
}

// NextShapeID returns an id unused by any shape on the slide.
func (s *Slide) NextShapeID() int {
	return s.maxShapeID() + 1
}

// insertShapeElement adds a shape element to the shape tree, before
// the extension list if one is present.
func (s *Slide) insertShapeElement(el *etree.Element) {
	tree := s.spTree()
	if ext := tree.SelectElement("p:extLst"); ext != nil {
		tree.InsertChildAt(ext.Index(), el)
		return
	}
	tree.AddChild(el)
}

// AddShapeFromXML inserts a shape built from a serialized fragment,
// rewriting its id and name and positioning it. The fragment's text
// content is left untouched.
func (s *Slide) AddShapeFromXML(fragment string, id int, name string, frame geom.Rect) (*Shape, error) {
	el, err := prepareShapeXML(fragment, id, name, nil)
	if err != nil {
		return nil, err
	}
	s.insertShapeElement(el)
	shape := &Shape{slide: s, el: el}
	shape.SetFrame(frame)
	return shape, nil
}

// AddTextShapeFromXML inserts a shape built from a serialized
// fragment, rewriting its id and name, replacing its first text run
// with the given text, and positioning it.
func (s *Slide) AddTextShapeFromXML(fragment string, id int, name, text string, frame geom.Rect) (*Shape, error) {
	el, err := prepareShapeXML(fragment, id, name, &text)
	if err != nil {
		return nil, err
	}
	s.insertShapeElement(el)
	shape := &Shape{slide: s, el: el}
	shape.SetFrame(frame)
	return shape, nil
}

// ensureRels returns the slide's relationship document, creating the
// part if the slide has none yet.
func (s *Slide) ensureRels() *etree.Document {
	if s.rels != nil {
		return s.rels
	}
	doc := etree.NewDocument()
	doc.CreateProcInst("xml", `version="1.0" encoding="UTF-8" standalone="yes"`)
	root := doc.CreateElement("Relationships")
	root.CreateAttr("xmlns", nsPackageRels)
	s.pres.registerPart(relsPartName(s.partName), doc)
	s.rels = doc
	return doc
}

// addRelationship registers a relationship on the slide and returns
// its id.
func (s *Slide) addRelationship(relType, target string) string {
	root := s.ensureRels().Root()
	max := 0
	for _, rel := range root.SelectElements("Relationship") {
		if n := parseRelID(rel.SelectAttrValue("Id", "")); n > max {
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

// relTarget resolves a relationship id on the slide to its target, or
// "".
func (s *Slide) relTarget(rid string) string {
	if s.rels == nil {
		return ""
	}
	root := s.rels.Root()
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

// AddPicture embeds image data as a new picture shape. ext selects the
// image format ("png", "jpg", ...).
func (s *Slide) AddPicture(data []byte, ext string, frame geom.Rect) (*Shape, error) {
	ext = strings.ToLower(strings.TrimPrefix(ext, "."))
	contentType, ok := imageContentTypes[ext]
	if !ok {
		return nil, fmt.Errorf("unsupported image format: %q", ext)
	}

	mediaName := fmt.Sprintf("ppt/media/image%d.%s", s.pres.nextMediaNumber(), ext)
	s.pres.addEntry(mediaName, data)
	s.pres.ensureDefaultContentType(ext, contentType)

	rid := s.addRelationship(relTypeImage, "../media/"+strings.TrimPrefix(mediaName, "ppt/media/"))

	id := s.NextShapeID()
	el := buildPictureElement(id, fmt.Sprintf("Picture %d", id), rid, frame)
	s.insertShapeElement(el)
	return &Shape{slide: s, el: el}, nil
}

// buildPictureElement constructs a p:pic element referencing an image
// relationship.
func buildPictureElement(id int, name, rid string, frame geom.Rect) *etree.Element {
	pic := etree.NewElement("p:pic")

	nvPicPr := pic.CreateElement("p:nvPicPr")
	cNvPr := nvPicPr.CreateElement("p:cNvPr")
	cNvPr.CreateAttr("id", fmt.Sprintf("%d", id))
	cNvPr.CreateAttr("name", name)
	cNvPicPr := nvPicPr.CreateElement("p:cNvPicPr")
	picLocks := cNvPicPr.CreateElement("a:picLocks")
	picLocks.CreateAttr("noChangeAspect", "1")
	nvPicPr.CreateElement("p:nvPr")

	blipFill := pic.CreateElement("p:blipFill")
	blip := blipFill.CreateElement("a:blip")
	blip.CreateAttr("r:embed", rid)
	blipFill.CreateElement("a:stretch").CreateElement("a:fillRect")

	spPr := pic.CreateElement("p:spPr")
	xfrm := spPr.CreateElement("a:xfrm")
	off := xfrm.CreateElement("a:off")
	off.CreateAttr("x", fmt.Sprintf("%d", frame.X))
	off.CreateAttr("y", fmt.Sprintf("%d", frame.Y))
	ext := xfrm.CreateElement("a:ext")
	ext.CreateAttr("cx", fmt.Sprintf("%d", frame.Width))
	ext.CreateAttr("cy", fmt.Sprintf("%d", frame.Height))
	prstGeom := spPr.CreateElement("a:prstGeom")
	prstGeom.CreateAttr("prst", "rect")
	prstGeom.CreateElement("a:avLst")

	return pic
}

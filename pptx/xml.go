package pptx

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/beevik/etree"
)

// parseShapeXML parses a standalone shape fragment.
func parseShapeXML(fragment string) (*etree.Element, error) {
	doc := etree.NewDocument()
	if err := doc.ReadFromString(fragment); err != nil {
		return nil, fmt.Errorf("parsing shape XML: %w", err)
	}
	root := doc.Root()
	if root == nil {
		return nil, fmt.Errorf("empty shape XML")
	}
	return root, nil
}

// prepareShapeXML parses a shape fragment and rewrites its identity.
// When text is non-nil, the first text run is replaced with a run
// holding the new text and the old run's properties.
func prepareShapeXML(fragment string, id int, name string, text *string) (*etree.Element, error) {
	root, err := parseShapeXML(fragment)
	if err != nil {
		return nil, err
	}
	if cNvPr := root.FindElement(".//p:cNvPr"); cNvPr != nil {
		cNvPr.CreateAttr("id", strconv.Itoa(id))
		cNvPr.CreateAttr("name", name)
	}
	if text != nil {
		replaceFirstRunText(root, *text)
	}
	return root, nil
}

// replaceFirstRunText swaps the run holding the first a:t for a fresh
// run with the given text. The old run's properties are copied so the
// template formatting survives.
func replaceFirstRunText(root *etree.Element, text string) {
	t := root.FindElement(".//a:t")
	if t == nil {
		return
	}
	r := t.Parent()
	if r == nil {
		return
	}
	p := r.Parent()
	if p == nil {
		return
	}

	newR := etree.NewElement("a:r")
	if rPr := r.FindElement(".//a:rPr"); rPr != nil {
		newR.AddChild(rPr.Copy())
	}
	newT := newR.CreateElement("a:t")
	newT.SetText(text)

	p.InsertChildAt(r.Index(), newR)
	p.RemoveChild(r)
}

// ModifyShapeXML rewrites a serialized shape's id, name and first run
// text, returning the new serialization.
func ModifyShapeXML(fragment string, id int, name, text string) (string, error) {
	el, err := prepareShapeXML(fragment, id, name, &text)
	if err != nil {
		return "", err
	}
	return serializeElement(el)
}

// SameShape reports whether two serialized shapes are structurally
// identical once position, identity and text content are masked out.
// Shapes that repeat across a template's slides with only those
// differences are the same decoration.
func SameShape(xml1, xml2 string) bool {
	c1, err1 := canonicalShape(xml1)
	c2, err2 := canonicalShape(xml2)
	if err1 != nil || err2 != nil {
		return false
	}
	return c1 == c2
}

// canonicalShape strips a shape fragment down to its comparable form:
// no transform, fixed identity, fixed text.
func canonicalShape(fragment string) (string, error) {
	root, err := parseShapeXML(fragment)
	if err != nil {
		return "", err
	}
	for _, x := range root.FindElements(".//a:xfrm") {
		if parent := x.Parent(); parent != nil {
			parent.RemoveChild(x)
		}
	}
	if cNvPr := root.FindElement(".//p:cNvPr"); cNvPr != nil {
		cNvPr.CreateAttr("id", "1")
		cNvPr.CreateAttr("name", "temp")
	}
	for _, t := range root.FindElements(".//a:t") {
		t.SetText("placeholder_text")
	}
	return serializeElement(root)
}

// serializeElement writes a parentless element as a document.
func serializeElement(el *etree.Element) (string, error) {
	doc := etree.NewDocument()
	doc.SetRoot(el)
	out, err := doc.WriteToString()
	if err != nil {
		return "", fmt.Errorf("serializing shape XML: %w", err)
	}
	return out, nil
}

// shapeNamespaces are the declarations a standalone fragment needs.
// The order is fixed so serializations compare bytewise.
var shapeNamespaces = []struct{ key, uri string }{
	{"xmlns:a", nsDrawingML},
	{"xmlns:p", nsPresentationML},
	{"xmlns:r", nsRelationships},
}

// ensureShapeNamespaces adds missing namespace declarations to a
// fragment root.
func ensureShapeNamespaces(el *etree.Element) {
	for _, ns := range shapeNamespaces {
		if el.SelectAttr(ns.key) == nil {
			el.CreateAttr(ns.key, ns.uri)
		}
	}
}

// attrName rebuilds an attribute's qualified name.
func attrName(a etree.Attr) string {
	if a.Space != "" {
		return a.Space + ":" + a.Key
	}
	return a.Key
}

// attrInt reads an integer attribute, returning 0 when absent or
// malformed.
func attrInt(el *etree.Element, key string) int {
	n, err := strconv.Atoi(el.SelectAttrValue(key, ""))
	if err != nil {
		return 0
	}
	return n
}

// attrInt64 reads a 64-bit integer attribute such as an EMU offset.
func attrInt64(el *etree.Element, key string) int64 {
	n, err := strconv.ParseInt(el.SelectAttrValue(key, ""), 10, 64)
	if err != nil {
		return 0
	}
	return n
}

// parseRelID extracts the number from a relationship id like "rId7".
func parseRelID(id string) int {
	n, err := strconv.Atoi(strings.TrimPrefix(id, "rId"))
	if err != nil {
		return 0
	}
	return n
}

package markdown

import "strings"

// ElementType identifies the concrete type of a tree element.
type ElementType int

const (
	ElementTypeUnknown ElementType = iota
	ElementTypeDocument
	ElementTypeHeading
	ElementTypeParagraph
	ElementTypeCodeBlock
	ElementTypeTable
	ElementTypePicture
)

func (et ElementType) String() string {
	switch et {
	case ElementTypeDocument:
		return "Document"
	case ElementTypeHeading:
		return "Heading"
	case ElementTypeParagraph:
		return "Paragraph"
	case ElementTypeCodeBlock:
		return "CodeBlock"
	case ElementTypeTable:
		return "Table"
	case ElementTypePicture:
		return "Picture"
	default:
		return "Unknown"
	}
}

// Element is the interface shared by every node of a document tree.
// Implementations are provided by this package only.
//
// Structural misuse (inserting a nil element, inserting an element into
// itself) panics: those are programmer errors, not input conditions.
// Traversal methods never panic; absence is an empty slice or nil.
type Element interface {
	// Type returns the concrete element type.
	Type() ElementType
	// Parent returns the containing element, or nil at the root.
	Parent() Element
	// Children returns a copy of the direct child list.
	Children() []Element
	// NextElement returns the pre-order successor across the whole tree.
	NextElement() Element
	// PreviousElement returns the pre-order predecessor.
	PreviousElement() Element
	// NextSibling returns the next element under the same parent.
	NextSibling() Element
	// PreviousSibling returns the previous element under the same parent.
	PreviousSibling() Element
	// Descendants returns the full subtree below this element in
	// document order. The element itself is not included.
	Descendants() []Element
	// Parents returns the chain of ancestors, nearest first.
	Parents() []Element
	// NextSiblings returns all following siblings in order.
	NextSiblings() []Element
	// PreviousSiblings returns all preceding siblings, nearest first.
	PreviousSiblings() []Element
	// Insert places the given elements as children starting at position
	// (clamped to the current child count) and returns the inserted
	// elements. An element that already has a parent is moved. Inserting
	// a *Document splices its children in individually.
	Insert(position int, elements ...Element) []Element
	// Append inserts one element at the end and returns it.
	Append(element Element) Element
	// Extract removes this element and its subtree from the tree,
	// patching the surrounding links, and returns it parentless.
	Extract() Element
	// Decompose extracts this element and permanently invalidates it and
	// every descendant. A decomposed element must not be reused; check
	// Decomposed before touching an element of uncertain provenance.
	Decompose()
	// Decomposed reports whether Decompose has destroyed this element.
	Decomposed() bool
	// Empty reports whether the element has no children.
	Empty() bool
	// GetText joins the element's strings with separator. strip selects
	// the cleaned form of each string (Markdown markers removed,
	// whitespace trimmed); otherwise the source form is used. types
	// restricts container traversal to the given element types; leaf
	// elements reject a non-empty filter.
	GetText(separator string, strip bool, types ...ElementType) string
	// Text returns the element's own text payload.
	Text() string
	// Source returns the element's Markdown source rendering.
	Source() string
	// Setup wires this element's link fields in one call. When
	// previousSibling is nil and the parent already has children, the
	// parent's last child is used. Setup does not manage the parent's
	// child list; Insert does.
	Setup(parent, previousElement, nextElement, previousSibling, nextSibling Element)

	strings(strip bool, types []ElementType) []string
	base() *element
}

// element is the embedded core of every tree node. The self field holds
// the outer value so shared logic can hand out and compare interface
// values.
type element struct {
	self            Element
	parent          Element
	previousElement Element
	nextElement     Element
	previousSibling Element
	nextSibling     Element
	children        []Element
	decomposed      bool
}

func (e *element) init(self Element) {
	e.self = self
}

func (e *element) base() *element { return e }

func (e *element) Parent() Element          { return e.parent }
func (e *element) NextElement() Element     { return e.nextElement }
func (e *element) PreviousElement() Element { return e.previousElement }
func (e *element) NextSibling() Element     { return e.nextSibling }
func (e *element) PreviousSibling() Element { return e.previousSibling }
func (e *element) Decomposed() bool         { return e.decomposed }
func (e *element) Empty() bool              { return len(e.children) == 0 }

func (e *element) Children() []Element {
	out := make([]Element, len(e.children))
	copy(out, e.children)
	return out
}

func (e *element) Setup(parent, previousElement, nextElement, previousSibling, nextSibling Element) {
	e.parent = parent

	e.previousElement = previousElement
	if e.previousElement != nil {
		e.previousElement.base().nextElement = e.self
	}

	e.nextElement = nextElement
	if e.nextElement != nil {
		e.nextElement.base().previousElement = e.self
	}

	e.nextSibling = nextSibling
	if e.nextSibling != nil {
		e.nextSibling.base().previousSibling = e.self
	}

	if previousSibling == nil && e.parent != nil {
		if kids := e.parent.base().children; len(kids) > 0 && kids[len(kids)-1] != e.self {
			previousSibling = kids[len(kids)-1]
		}
	}
	e.previousSibling = previousSibling
	if e.previousSibling != nil {
		e.previousSibling.base().nextSibling = e.self
	}
}

// indexOf finds a child by identity.
func (e *element) indexOf(child Element) int {
	for i, c := range e.children {
		if c == child {
			return i
		}
	}
	panic("markdown: element is not a child of this element")
}

// lastDescendant finds the last element of this subtree in document
// order. When the element is already wired into a tree (isInitialized)
// and has a next sibling, the answer is read off the sibling's
// previous-element link; otherwise the child lists are walked down.
func (e *element) lastDescendant(isInitialized, acceptSelf bool) Element {
	var last Element
	if isInitialized && e.nextSibling != nil {
		last = e.nextSibling.base().previousElement
	} else {
		last = e.self
		for len(last.base().children) > 0 {
			kids := last.base().children
			last = kids[len(kids)-1]
		}
	}
	if !acceptSelf && last == e.self {
		return nil
	}
	return last
}

func (e *element) Extract() Element {
	if e.parent != nil {
		i := e.parent.base().indexOf(e.self)
		parent := e.parent.base()
		parent.children = append(parent.children[:i], parent.children[i+1:]...)
	}

	lastChild := e.lastDescendant(true, true).base()
	next := lastChild.nextElement

	if e.previousElement != nil && e.previousElement != next {
		e.previousElement.base().nextElement = next
	}
	if next != nil && next != e.previousElement {
		next.base().previousElement = e.previousElement
	}
	e.previousElement = nil
	lastChild.nextElement = nil

	e.parent = nil
	if e.previousSibling != nil && e.previousSibling != e.nextSibling {
		e.previousSibling.base().nextSibling = e.nextSibling
	}
	if e.nextSibling != nil && e.nextSibling != e.previousSibling {
		e.nextSibling.base().previousSibling = e.previousSibling
	}
	e.previousSibling = nil
	e.nextSibling = nil
	return e.self
}

func (e *element) Decompose() {
	e.Extract()
	cur := e.self
	for cur != nil {
		next := cur.base().nextElement
		b := cur.base()
		b.parent = nil
		b.previousElement = nil
		b.nextElement = nil
		b.previousSibling = nil
		b.nextSibling = nil
		b.children = nil
		b.decomposed = true
		cur = next
	}
}

func (e *element) Insert(position int, elements ...Element) []Element {
	var inserted []Element
	for _, el := range elements {
		added := e.insert(position, el)
		inserted = append(inserted, added...)
		position += len(added)
	}
	return inserted
}

func (e *element) insert(position int, newChild Element) []Element {
	if newChild == nil {
		panic("markdown: cannot insert a nil element")
	}
	if newChild == e.self {
		panic("markdown: cannot insert an element into itself")
	}
	if doc, ok := newChild.(*Document); ok {
		return e.Insert(position, doc.Children()...)
	}

	if position > len(e.children) {
		position = len(e.children)
	}
	if position < 0 {
		position = 0
	}

	nc := newChild.base()
	if nc.parent != nil {
		if nc.parent == e.self {
			current := e.indexOf(newChild)
			if current < position {
				position--
			} else if current == position {
				return []Element{newChild}
			}
		}
		newChild.Extract()
	}

	nc.parent = e.self
	if position == 0 {
		nc.previousSibling = nil
		nc.previousElement = e.self
	} else {
		previousChild := e.children[position-1]
		nc.previousSibling = previousChild
		previousChild.base().nextSibling = newChild
		nc.previousElement = previousChild.base().lastDescendant(false, true)
	}
	if nc.previousElement != nil {
		nc.previousElement.base().nextElement = newChild
	}

	newChildsLast := nc.lastDescendant(false, true).base()

	if position >= len(e.children) {
		nc.nextSibling = nil

		// The subtree's successor is the next sibling of the nearest
		// ancestor that has one; at the document tail it is nil.
		var parentsNextSibling Element
		ancestor := e.self
		for parentsNextSibling == nil && ancestor != nil {
			parentsNextSibling = ancestor.base().nextSibling
			ancestor = ancestor.base().parent
		}
		newChildsLast.nextElement = parentsNextSibling
	} else {
		nextChild := e.children[position]
		nc.nextSibling = nextChild
		nextChild.base().previousSibling = newChild
		newChildsLast.nextElement = nextChild
	}

	if newChildsLast.nextElement != nil {
		newChildsLast.nextElement.base().previousElement = newChildsLast.self
	}

	e.children = append(e.children, nil)
	copy(e.children[position+1:], e.children[position:])
	e.children[position] = newChild

	return []Element{newChild}
}

func (e *element) Append(el Element) Element {
	return e.Insert(len(e.children), el)[0]
}

func (e *element) Descendants() []Element {
	if len(e.children) == 0 {
		return nil
	}
	// lastDescendant cannot return nil here because acceptSelf is true,
	// so the walk is bounded by the subtree's successor.
	stop := e.lastDescendant(true, true).base().nextElement
	var out []Element
	for cur := e.children[0]; cur != stop && cur != nil; cur = cur.base().nextElement {
		out = append(out, cur)
	}
	return out
}

func (e *element) Parents() []Element {
	var out []Element
	for cur := e.parent; cur != nil; cur = cur.base().parent {
		out = append(out, cur)
	}
	return out
}

func (e *element) NextSiblings() []Element {
	var out []Element
	for cur := e.nextSibling; cur != nil; cur = cur.base().nextSibling {
		out = append(out, cur)
	}
	return out
}

func (e *element) PreviousSiblings() []Element {
	var out []Element
	for cur := e.previousSibling; cur != nil; cur = cur.base().previousSibling {
		out = append(out, cur)
	}
	return out
}

func (e *element) GetText(separator string, strip bool, types ...ElementType) string {
	return strings.Join(e.self.strings(strip, types), separator)
}

// containerStrings collects the text of every descendant, honoring the
// type filter. Container elements (Document, Heading) share it: the
// container's own text is not included, only its subtree's. A heading
// descendant contributes its title (stripped) or its "## title" source
// form; leaves contribute their single string.
func (e *element) containerStrings(strip bool, types []ElementType) []string {
	var out []string
	for _, d := range e.Descendants() {
		if len(types) > 0 && !typeIn(d.Type(), types) {
			continue
		}
		var text string
		switch h := d.(type) {
		case *Heading:
			if strip {
				text = h.Text()
			} else {
				text = h.Source()
			}
		default:
			if ss := d.strings(strip, nil); len(ss) > 0 {
				text = ss[0]
			}
		}
		if text != "" {
			out = append(out, text)
		}
	}
	return out
}

func typeIn(t ElementType, types []ElementType) bool {
	for _, want := range types {
		if t == want {
			return true
		}
	}
	return false
}

// rejectTypes guards the leaf elements' strings implementations: a type
// filter only makes sense on containers.
func rejectTypes(kind string, types []ElementType) {
	if len(types) > 0 {
		panic("markdown: " + kind + " does not support a type filter")
	}
}

package catalog

import (
	"encoding/json"
	"errors"
	"fmt"
	"math/rand"
	"os"
	"sort"

	"github.com/deckgen/deckgen/geom"
)

var (
	// ErrLayoutNotFound is returned when a layout type is not present in
	// the catalog.
	ErrLayoutNotFound = errors.New("layout type not found")

	// ErrStyleExists is returned when a style is added under a name that
	// is already taken within its layout type.
	ErrStyleExists = errors.New("style already exists")
)

// Layout type names for content pages, keyed by the number of points a
// chapter carries.
const (
	LayoutOnePoint    = "one_point"
	LayoutTwoPoints   = "two_points"
	LayoutThreePoints = "three_points"
	LayoutFourPoints  = "four_points"
)

// StyleOrderedName is the reserved style name whose shape templates fix
// the fill order of shapes sharing a name within a layout type.
const StyleOrderedName = "style_ordered"

// DefaultPictureDir is where pictures extracted from template slides
// are exported when no other directory is configured.
const DefaultPictureDir = "components/picture"

// DefaultAreaSlack is the bounding-box area tolerance, in square EMUs,
// used to separate body shapes from smaller title and number shapes
// during extraction.
const DefaultAreaSlack = 10000

// LayoutForPoints returns the layout type name for a content page with
// n points, or "" when no layout covers that count.
func LayoutForPoints(n int) string {
	switch n {
	case 1:
		return LayoutOnePoint
	case 2:
		return LayoutTwoPoints
	case 3:
		return LayoutThreePoints
	case 4:
		return LayoutFourPoints
	}
	return ""
}

// ContentType classifies what a shape template holds and therefore how
// the generator fills it.
type ContentType int

const (
	// ContentTypeNone marks decorative shapes that are copied onto the
	// slide unchanged.
	ContentTypeNone ContentType = iota

	// ContentTypeContent marks body text shapes.
	ContentTypeContent

	// ContentTypePicture marks picture shapes backed by an exported
	// image file.
	ContentTypePicture

	// ContentTypeNumber marks shapes that display a point number.
	ContentTypeNumber

	// ContentTypeTitle marks shapes that display a point title.
	ContentTypeTitle
)

// String returns the catalog-file spelling of the content type.
func (ct ContentType) String() string {
	switch ct {
	case ContentTypeContent:
		return "content"
	case ContentTypePicture:
		return "picture"
	case ContentTypeNumber:
		return "number"
	case ContentTypeTitle:
		return "title"
	default:
		return "none"
	}
}

// MarshalJSON encodes the content type as its catalog-file spelling,
// with ContentTypeNone serialized as null.
func (ct ContentType) MarshalJSON() ([]byte, error) {
	if ct == ContentTypeNone {
		return []byte("null"), nil
	}
	return json.Marshal(ct.String())
}

// UnmarshalJSON decodes a catalog-file content type. Null and missing
// values map to ContentTypeNone; unknown strings are an error.
func (ct *ContentType) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*ct = ContentTypeNone
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	switch s {
	case "content":
		*ct = ContentTypeContent
	case "picture":
		*ct = ContentTypePicture
	case "number":
		*ct = ContentTypeNumber
	case "title":
		*ct = ContentTypeTitle
	default:
		return fmt.Errorf("unknown content type %q", s)
	}
	return nil
}

// ShapeTemplate is one shape extracted from a template slide. Either
// XML carries the serialized shape element, or, for pictures, Path
// points at the exported image file. Locations lists every position the
// shape appeared at; duplicated decorations collect more than one.
type ShapeTemplate struct {
	XML         *string     `json:"xml"`
	ZOrder      int         `json:"zorder"`
	ContentType ContentType `json:"content_type"`
	Path        *string     `json:"path"`
	Locations   []geom.Rect `json:"location"`
}

// Style is a named set of shape templates extracted from one template
// slide.
type Style struct {
	Name string

	shapes map[string]*ShapeTemplate
	order  []string
}

// NewStyle returns an empty style with the given name.
func NewStyle(name string) *Style {
	return &Style{
		Name:   name,
		shapes: make(map[string]*ShapeTemplate),
	}
}

// Shape returns the template stored under key, or nil when the style
// has no such shape.
func (s *Style) Shape(key string) *ShapeTemplate {
	return s.shapes[key]
}

// AddShape stores a template under key. A template already stored under
// the same key is replaced without disturbing the key order.
func (s *Style) AddShape(key string, tpl *ShapeTemplate) {
	if s.shapes == nil {
		s.shapes = make(map[string]*ShapeTemplate)
	}
	if _, ok := s.shapes[key]; !ok {
		s.order = append(s.order, key)
	}
	s.shapes[key] = tpl
}

// RemoveShape drops the template stored under key, if any.
func (s *Style) RemoveShape(key string) {
	if _, ok := s.shapes[key]; !ok {
		return
	}
	delete(s.shapes, key)
	for i, k := range s.order {
		if k == key {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
}

// ShapeKeys returns the shape keys in their stable order.
func (s *Style) ShapeKeys() []string {
	keys := make([]string, len(s.order))
	copy(keys, s.order)
	return keys
}

// Len returns the number of shape templates in the style.
func (s *Style) Len() int {
	return len(s.shapes)
}

// MarshalJSON encodes the style as a shape-key → template object.
func (s *Style) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.shapes)
}

// UnmarshalJSON decodes a shape-key → template object. Keys are ordered
// lexicographically so that iteration over a loaded style is stable.
func (s *Style) UnmarshalJSON(data []byte) error {
	var shapes map[string]*ShapeTemplate
	if err := json.Unmarshal(data, &shapes); err != nil {
		return err
	}
	if shapes == nil {
		shapes = make(map[string]*ShapeTemplate)
	}
	order := make([]string, 0, len(shapes))
	for key := range shapes {
		order = append(order, key)
	}
	sort.Strings(order)
	s.shapes = shapes
	s.order = order
	return nil
}

// LayoutType groups the styles available for one kind of page, such as
// the cover or a three-point content page.
type LayoutType struct {
	Name string

	// StyleOrder holds the reserved "style_ordered" style when the
	// layout type has one. It is also kept in the regular style set.
	StyleOrder *Style

	styles map[string]*Style
	order  []string
}

// NewLayoutType returns an empty layout type with the given name.
func NewLayoutType(name string) *LayoutType {
	return &LayoutType{
		Name:   name,
		styles: make(map[string]*Style),
	}
}

// Style returns the style stored under name, or nil when the layout
// type has no such style.
func (lt *LayoutType) Style(name string) *Style {
	return lt.styles[name]
}

// AddStyle stores a style under its name. Adding a second style with a
// name already taken fails with ErrStyleExists.
func (lt *LayoutType) AddStyle(style *Style) error {
	if lt.styles == nil {
		lt.styles = make(map[string]*Style)
	}
	if _, ok := lt.styles[style.Name]; ok {
		return fmt.Errorf("style %q in layout type %q: %w", style.Name, lt.Name, ErrStyleExists)
	}
	lt.styles[style.Name] = style
	lt.order = append(lt.order, style.Name)
	if style.Name == StyleOrderedName {
		lt.StyleOrder = style
	}
	return nil
}

// StyleNames returns the style names in their stable order.
func (lt *LayoutType) StyleNames() []string {
	names := make([]string, len(lt.order))
	copy(names, lt.order)
	return names
}

// Len returns the number of styles in the layout type.
func (lt *LayoutType) Len() int {
	return len(lt.styles)
}

// MarshalJSON encodes the layout type as a style-name → style object.
func (lt *LayoutType) MarshalJSON() ([]byte, error) {
	return json.Marshal(lt.styles)
}

// UnmarshalJSON decodes a style-name → style object, naming each style
// after its key and ordering names lexicographically.
func (lt *LayoutType) UnmarshalJSON(data []byte) error {
	var styles map[string]*Style
	if err := json.Unmarshal(data, &styles); err != nil {
		return err
	}
	if styles == nil {
		styles = make(map[string]*Style)
	}
	order := make([]string, 0, len(styles))
	for name, style := range styles {
		style.Name = name
		order = append(order, name)
	}
	sort.Strings(order)
	lt.styles = styles
	lt.order = order
	lt.StyleOrder = styles[StyleOrderedName]
	return nil
}

// Catalog is the full template library, keyed by layout type name.
type Catalog struct {
	// PictureDir is where AddStyleFromSlide exports picture shapes.
	PictureDir string

	// AreaSlack is the bounding-box area tolerance, in square EMUs,
	// separating body shapes from title and number shapes during
	// extraction.
	AreaSlack int64

	path    string
	layouts map[string]*LayoutType
	order   []string
}

// New returns an empty catalog.
func New() *Catalog {
	return &Catalog{
		PictureDir: DefaultPictureDir,
		AreaSlack:  DefaultAreaSlack,
		layouts:    make(map[string]*LayoutType),
	}
}

// Parse decodes a catalog from its JSON serialization.
func Parse(data []byte) (*Catalog, error) {
	var layouts map[string]*LayoutType
	if err := json.Unmarshal(data, &layouts); err != nil {
		return nil, fmt.Errorf("parsing catalog: %w", err)
	}
	c := New()
	if layouts == nil {
		return c, nil
	}
	order := make([]string, 0, len(layouts))
	for name, lt := range layouts {
		lt.Name = name
		order = append(order, name)
	}
	sort.Strings(order)
	c.layouts = layouts
	c.order = order
	return c, nil
}

// Load reads and decodes the catalog file at path. The path is
// remembered so the catalog can be reloaded in place.
func Load(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading catalog: %w", err)
	}
	c, err := Parse(data)
	if err != nil {
		return nil, err
	}
	c.path = path
	return c, nil
}

// Path returns the file the catalog was loaded from or last saved to,
// or "" for a catalog built in memory.
func (c *Catalog) Path() string {
	return c.path
}

// Save encodes the catalog as indented JSON and writes it to path. The
// path is remembered for later reloads.
func (c *Catalog) Save(path string) error {
	data, err := json.MarshalIndent(c.layouts, "", "    ")
	if err != nil {
		return fmt.Errorf("encoding catalog: %w", err)
	}
	data = append(data, '\n')
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing catalog: %w", err)
	}
	c.path = path
	return nil
}

// Reload replaces the catalog contents with the current state of the
// file it was loaded from, picking up edits made on disk.
func (c *Catalog) Reload() error {
	if c.path == "" {
		return errors.New("catalog has no backing file")
	}
	fresh, err := Load(c.path)
	if err != nil {
		return err
	}
	c.layouts = fresh.layouts
	c.order = fresh.order
	return nil
}

// Layout returns the layout type stored under name. A missing layout
// type fails with an error wrapping ErrLayoutNotFound.
func (c *Catalog) Layout(name string) (*LayoutType, error) {
	lt, ok := c.layouts[name]
	if !ok {
		return nil, fmt.Errorf("%q: %w", name, ErrLayoutNotFound)
	}
	return lt, nil
}

// AddLayout returns the layout type stored under name, creating an
// empty one when the catalog has none.
func (c *Catalog) AddLayout(name string) *LayoutType {
	if c.layouts == nil {
		c.layouts = make(map[string]*LayoutType)
	}
	if lt, ok := c.layouts[name]; ok {
		return lt
	}
	lt := NewLayoutType(name)
	c.layouts[name] = lt
	c.order = append(c.order, name)
	return lt
}

// LayoutNames returns the layout type names in their stable order.
func (c *Catalog) LayoutNames() []string {
	names := make([]string, len(c.order))
	copy(names, c.order)
	return names
}

// RandomStyle picks a style uniformly at random from the named layout
// type. It returns nil when the layout type is missing or has no
// styles. A nil rng falls back to the shared source in math/rand.
func (c *Catalog) RandomStyle(layout string, rng *rand.Rand) *Style {
	lt, ok := c.layouts[layout]
	if !ok || len(lt.order) == 0 {
		return nil
	}
	var i int
	if rng != nil {
		i = rng.Intn(len(lt.order))
	} else {
		i = rand.Intn(len(lt.order))
	}
	return lt.styles[lt.order[i]]
}

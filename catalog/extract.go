package catalog

import (
	"fmt"
	"os"
	"path"
	"path/filepath"
	"unicode"

	"github.com/deckgen/deckgen/geom"
	"github.com/deckgen/deckgen/pptx"
)

// AddStyleFromSlide extracts every non-placeholder shape on slide into
// a new style named styleName under the layout type layoutName.
//
// Pictures are exported to PictureDir and referenced by path. Text
// shapes are classified by comparing bounding-box areas: the largest
// ones hold body content, while shapes smaller by more than AreaSlack
// hold numbers (all-digit text) or titles. Shapes that match apart from
// position collapse into one template listing every position.
//
// The layout type must already exist and the style name must be free.
func (c *Catalog) AddStyleFromSlide(slide *pptx.Slide, layoutName, styleName string) error {
	lt, err := c.Layout(layoutName)
	if err != nil {
		return err
	}
	if lt.Style(styleName) != nil {
		return fmt.Errorf("style %q in layout type %q: %w", styleName, layoutName, ErrStyleExists)
	}

	type extracted struct {
		key    string
		text   string
		merged bool
		tpl    *ShapeTemplate
	}
	var (
		shapes  []*extracted
		maxArea int64
	)
	for i, shape := range slide.Shapes() {
		if shape.IsPlaceholder() {
			continue
		}
		tpl := &ShapeTemplate{
			ZOrder:    i,
			Locations: []geom.Rect{shape.Frame()},
		}
		ent := &extracted{key: fmt.Sprintf("%s_%d", shape.Name(), i), tpl: tpl}
		switch {
		case shape.IsPicture():
			data, _, err := shape.PictureData()
			if err != nil {
				return fmt.Errorf("exporting picture %q: %w", shape.Name(), err)
			}
			file := path.Join(c.pictureDir(), fmt.Sprintf("%s_%d.png", shape.Name(), i))
			if err := writePicture(file, data); err != nil {
				return err
			}
			tpl.ContentType = ContentTypePicture
			tpl.Path = &file
		case shape.HasTextFrame():
			xml, err := shape.XML()
			if err != nil {
				return fmt.Errorf("serializing shape %q: %w", shape.Name(), err)
			}
			tpl.XML = &xml
			ent.text = shape.Text()
			if ent.text != "" {
				tpl.ContentType = ContentTypeContent
			}
			if area := tpl.Locations[0].Area(); area > maxArea {
				maxArea = area
			}
		default:
			xml, err := shape.XML()
			if err != nil {
				continue
			}
			tpl.XML = &xml
		}
		shapes = append(shapes, ent)
	}

	// Body shapes keep the largest bounding boxes. Text shapes smaller
	// by more than the slack are numbers when all-digit, titles
	// otherwise.
	slack := c.AreaSlack
	if slack <= 0 {
		slack = DefaultAreaSlack
	}
	for _, ent := range shapes {
		if ent.tpl.ContentType != ContentTypeContent {
			continue
		}
		if ent.tpl.Locations[0].Area() >= maxArea-slack {
			continue
		}
		if allDigits(ent.text) {
			ent.tpl.ContentType = ContentTypeNumber
		} else {
			ent.tpl.ContentType = ContentTypeTitle
		}
	}

	for i, ent := range shapes {
		if ent.merged || ent.tpl.XML == nil {
			continue
		}
		for _, other := range shapes[i+1:] {
			if other.merged || other.tpl.XML == nil {
				continue
			}
			if !pptx.SameShape(*ent.tpl.XML, *other.tpl.XML) {
				continue
			}
			ent.tpl.Locations = append(ent.tpl.Locations, other.tpl.Locations...)
			other.merged = true
		}
	}

	style := NewStyle(styleName)
	for _, ent := range shapes {
		if ent.merged {
			continue
		}
		style.AddShape(ent.key, ent.tpl)
	}
	return lt.AddStyle(style)
}

func (c *Catalog) pictureDir() string {
	if c.PictureDir == "" {
		return DefaultPictureDir
	}
	return c.PictureDir
}

func writePicture(name string, data []byte) error {
	file := filepath.FromSlash(name)
	if err := os.MkdirAll(filepath.Dir(file), 0o755); err != nil {
		return fmt.Errorf("creating picture directory: %w", err)
	}
	if err := os.WriteFile(file, data, 0o644); err != nil {
		return fmt.Errorf("exporting picture: %w", err)
	}
	return nil
}

func allDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if !unicode.IsDigit(r) {
			return false
		}
	}
	return true
}

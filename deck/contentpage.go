package deck

import (
	"bytes"
	"fmt"
	"image"
	"os"
	"path/filepath"
	"sort"
	"strings"

	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"

	"github.com/deckgen/deckgen/catalog"
	"github.com/deckgen/deckgen/geom"
	"github.com/deckgen/deckgen/markdown"
	"github.com/deckgen/deckgen/pptx"
)

// imageExtensions marks a catalog picture path as a single image file
// rather than a directory of candidates.
var imageExtensions = map[string]bool{
	"bmp": true, "jpg": true, "jpeg": true, "pgm": true, "png": true,
	"ppm": true, "tif": true, "tiff": true, "webp": true,
}

func isImagePath(path string) bool {
	ext := strings.TrimPrefix(strings.ToLower(filepath.Ext(path)), ".")
	return imageExtensions[ext]
}

// contentPage clones the chapter-content template, fills it from a
// randomly chosen style for the chapter's point count, and moves it to
// slideIndex. Each chapter child is one point: its heading text becomes
// the point title and its subtree text the point body.
func (g *Generator) contentPage(pres *pptx.Presentation, chapter *markdown.Heading, templateIndex, slideIndex int) error {
	children := chapter.Children()
	points := len(children)
	if points == 0 {
		return fmt.Errorf("%w: chapter %q has no sub-sections", ErrGeneration, chapter.Text())
	}
	if points > g.Config.MaxPoints {
		return fmt.Errorf("%w: chapter %q has %d points, no layout beyond %d",
			ErrGeneration, chapter.Text(), points, g.Config.MaxPoints)
	}

	titles := make([]string, points)
	bodies := make([]string, points)
	for i, child := range children {
		titles[i] = child.Text()
		bodies[i] = child.GetText("\n", false)
	}

	layoutName := catalog.LayoutForPoints(points)
	style := g.Catalog.RandomStyle(layoutName, g.rng)
	if style == nil {
		return fmt.Errorf("%w: catalog has no styles for layout %q", ErrGeneration, layoutName)
	}

	slide, err := pres.DuplicateSlide(templateIndex)
	if err != nil {
		return fmt.Errorf("cloning chapter content slide: %w", err)
	}
	if placeholder := slide.Placeholder(pptx.PlaceholderTitle); placeholder != nil {
		if err := placeholder.SetText(chapter.Text()); err != nil {
			return fmt.Errorf("setting content title: %w", err)
		}
		placeholder.DisableWordWrap()
	}

	// Paint order must be preserved: backgrounds first.
	keys := style.ShapeKeys()
	sort.SliceStable(keys, func(i, j int) bool {
		return style.Shape(keys[i]).ZOrder < style.Shape(keys[j]).ZOrder
	})

	for index, key := range keys {
		tpl := style.Shape(key)
		if err := g.placeShape(slide, key, index, tpl, titles, bodies); err != nil {
			return err
		}
	}

	return pres.MoveSlide(pres.SlideIndex(slide), slideIndex)
}

// placeShape inserts one style shape at each of its locations. For
// content, title, and number shapes location i corresponds to point i.
func (g *Generator) placeShape(slide *pptx.Slide, key string, index int, tpl *catalog.ShapeTemplate, titles, bodies []string) error {
	for locIndex, loc := range tpl.Locations {
		switch tpl.ContentType {
		case catalog.ContentTypeContent:
			if len(bodies) != len(tpl.Locations) {
				return fmt.Errorf("%w: shape %q expects %d body texts, chapter has %d",
					ErrGeneration, key, len(tpl.Locations), len(bodies))
			}
			shape, err := g.addTemplateText(slide, key, index, tpl, bodies[locIndex], loc)
			if err != nil {
				return err
			}
			shape.AlignTopJustify()
		case catalog.ContentTypeTitle:
			if len(titles) != len(tpl.Locations) {
				return fmt.Errorf("%w: shape %q expects %d titles, chapter has %d",
					ErrGeneration, key, len(tpl.Locations), len(titles))
			}
			shape, err := g.addTemplateText(slide, key, index, tpl, titles[locIndex], loc)
			if err != nil {
				return err
			}
			shape.AlignTopJustify()
		case catalog.ContentTypeNumber:
			if _, err := g.addTemplateText(slide, key, index, tpl, fmt.Sprintf("%02d", locIndex+1), loc); err != nil {
				return err
			}
		case catalog.ContentTypePicture:
			if err := g.addPicture(slide, key, tpl, loc); err != nil {
				return err
			}
		default:
			if tpl.XML == nil {
				return fmt.Errorf("%w: shape %q has no template markup", ErrGeneration, key)
			}
			if _, err := slide.AddShapeFromXML(*tpl.XML, index, key, loc); err != nil {
				return fmt.Errorf("inserting shape %q: %w", key, err)
			}
		}
	}
	return nil
}

func (g *Generator) addTemplateText(slide *pptx.Slide, key string, index int, tpl *catalog.ShapeTemplate, text string, loc geom.Rect) (*pptx.Shape, error) {
	if tpl.XML == nil {
		return nil, fmt.Errorf("%w: shape %q has no template markup", ErrGeneration, key)
	}
	shape, err := slide.AddTextShapeFromXML(*tpl.XML, index, key, text, loc)
	if err != nil {
		return nil, fmt.Errorf("inserting shape %q: %w", key, err)
	}
	return shape, nil
}

func (g *Generator) addPicture(slide *pptx.Slide, key string, tpl *catalog.ShapeTemplate, loc geom.Rect) error {
	if tpl.Path == nil {
		return fmt.Errorf("%w: picture shape %q has no path", ErrGeneration, key)
	}
	file := filepath.FromSlash(*tpl.Path)
	if g.Config.PictureDir != "" && !filepath.IsAbs(file) {
		file = filepath.Join(g.Config.PictureDir, file)
	}
	if !isImagePath(file) {
		picked, err := g.pickPicture(file)
		if err != nil {
			return err
		}
		file = picked
	}
	data, err := os.ReadFile(file)
	if err != nil {
		return fmt.Errorf("%w: reading picture for shape %q: %v", ErrGeneration, key, err)
	}
	ext := strings.TrimPrefix(strings.ToLower(filepath.Ext(file)), ".")
	if _, err := slide.AddPicture(data, ext, loc); err != nil {
		return fmt.Errorf("adding picture for shape %q: %w", key, err)
	}
	return nil
}

// pickPicture draws a random image from a directory of candidates,
// avoiding repeats within the run until the pool is exhausted, then
// starting over. The pick must decode as an image.
func (g *Generator) pickPicture(dir string) (string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return "", fmt.Errorf("%w: picture directory: %v", ErrGeneration, err)
	}
	var pool []string
	for _, entry := range entries {
		if !entry.IsDir() && isImagePath(entry.Name()) {
			pool = append(pool, entry.Name())
		}
	}
	if len(pool) == 0 {
		return "", fmt.Errorf("%w: picture directory %q has no images", ErrGeneration, dir)
	}

	if g.usedPictures == nil {
		g.usedPictures = make(map[string]map[string]bool)
	}
	used := g.usedPictures[dir]
	if used == nil {
		used = make(map[string]bool)
		g.usedPictures[dir] = used
	}
	var available []string
	for _, name := range pool {
		if !used[name] {
			available = append(available, name)
		}
	}
	if len(available) == 0 {
		used = make(map[string]bool)
		g.usedPictures[dir] = used
		available = pool
	}

	name := available[g.rng.Intn(len(available))]
	used[name] = true
	file := filepath.Join(dir, name)

	data, err := os.ReadFile(file)
	if err != nil {
		return "", fmt.Errorf("%w: reading picture %q: %v", ErrGeneration, file, err)
	}
	if _, _, err := image.DecodeConfig(bytes.NewReader(data)); err != nil {
		return "", fmt.Errorf("%w: %q is not a decodable image: %v", ErrGeneration, file, err)
	}
	return file, nil
}

package deck

import (
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"

	"github.com/deckgen/deckgen/geom"
	"github.com/deckgen/deckgen/markdown"
	"github.com/deckgen/deckgen/pptx"
)

// catalogDirection is the flow direction of the catalog page's chapter
// numbers. Label search runs perpendicular to it.
type catalogDirection int

const (
	directionUndefined catalogDirection = iota
	directionHorizontal
	directionVertical
)

func (d catalogDirection) String() string {
	switch d {
	case directionHorizontal:
		return "horizontal"
	case directionVertical:
		return "vertical"
	default:
		return "undefined"
	}
}

// catalogShape caches the text and frame of one slide shape during
// catalog matching.
type catalogShape struct {
	shape *pptx.Shape
	frame geom.Rect
	text  string
	value int
}

// catalogItem is one matched chapter slot: its number shape, its label
// shape, and an optional decorative background.
type catalogItem struct {
	number     *catalogShape
	label      *catalogShape
	background *catalogShape
}

// catalogPage fills the catalog slide at pageIndex with one numbered
// entry per chapter, starting at beginNumber. When the slide has fewer
// slots than chapters remain, it is cloned and filling continues on the
// clone. Returns the index of the last catalog slide.
func (g *Generator) catalogPage(pres *pptx.Presentation, chapters []*markdown.Heading, pageIndex, beginNumber int) (int, error) {
	if len(chapters) == 0 {
		return 0, fmt.Errorf("%w: catalog page needs at least one chapter", ErrGeneration)
	}

	slide, err := pres.Slide(pageIndex)
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrTemplate, err)
	}
	items, err := g.catalogItems(slide)
	if err != nil {
		return 0, err
	}

	if len(items) > len(chapters) {
		// A background may be shared between entries; remove each shape
		// once.
		removed := make(map[*catalogShape]bool)
		for _, item := range items[len(chapters):] {
			shapes := []*catalogShape{item.number, item.label}
			if item.background != nil {
				shapes = append(shapes, item.background)
			}
			for _, cs := range shapes {
				if removed[cs] {
					continue
				}
				removed[cs] = true
				if err := slide.RemoveShape(cs.shape); err != nil {
					return 0, fmt.Errorf("removing excess catalog shape %q: %w", cs.shape.Name(), err)
				}
			}
		}
		items = items[:len(chapters)]
	}

	for i, item := range items {
		if err := item.label.shape.SetText(chapters[i].Text()); err != nil {
			return 0, fmt.Errorf("setting catalog label: %w", err)
		}
		if err := item.number.shape.SetText(fmt.Sprintf("%02d", beginNumber)); err != nil {
			return 0, fmt.Errorf("setting catalog number: %w", err)
		}
		beginNumber++
	}

	// More chapters than slots: clone the filled slide right after this
	// one and continue there with the next number.
	if len(items) < len(chapters) {
		clone, err := pres.DuplicateSlide(pageIndex)
		if err != nil {
			return 0, fmt.Errorf("cloning catalog slide: %w", err)
		}
		if err := pres.MoveSlide(pres.SlideIndex(clone), pageIndex+1); err != nil {
			return 0, fmt.Errorf("positioning catalog slide: %w", err)
		}
		return g.catalogPage(pres, chapters[len(items):], pageIndex+1, beginNumber)
	}

	return pageIndex, nil
}

// catalogItems pairs every chapter-number shape on the slide with its
// label and, when present, a background decoration.
func (g *Generator) catalogItems(slide *pptx.Slide) ([]*catalogItem, error) {
	var all, texts []*catalogShape
	for _, shape := range slide.Shapes() {
		if shape.IsPlaceholder() {
			continue
		}
		cs := &catalogShape{shape: shape, frame: shape.Frame()}
		if shape.HasTextFrame() {
			cs.text = strings.TrimSpace(shape.Text())
			texts = append(texts, cs)
		}
		all = append(all, cs)
	}

	var numbers []*catalogShape
	for _, cs := range texts {
		value, ok := g.catalogNumber(cs.text)
		if !ok {
			continue
		}
		cs.value = value
		numbers = append(numbers, cs)
	}
	if len(numbers) == 0 {
		return nil, fmt.Errorf("%w: catalog slide has no chapter number shapes", ErrTemplate)
	}
	sort.SliceStable(numbers, func(i, j int) bool { return numbers[i].value < numbers[j].value })

	direction := directionUndefined
	if len(numbers) > 1 {
		direction = layoutDirection(numbers)
	}

	isNumber := make(map[*catalogShape]bool, len(numbers))
	for _, n := range numbers {
		isNumber[n] = true
	}
	var labels []*catalogShape
	for _, cs := range texts {
		if !isNumber[cs] {
			labels = append(labels, cs)
		}
	}

	claimed := make(map[*catalogShape]bool)
	var items []*catalogItem
	for _, number := range numbers {
		label := nearestLabel(number, labels, claimed, direction)
		if label == nil {
			return nil, fmt.Errorf("%w: no chapter label found for number %q at (%d, %d)",
				ErrTemplate, number.text, number.frame.X, number.frame.Y)
		}
		claimed[number] = true
		claimed[label] = true
		items = append(items, &catalogItem{number: number, label: label})
	}

	// With enough shapes left over, each entry may also have a
	// decorative background close to its number.
	var leftovers []*catalogShape
	for _, cs := range all {
		if !claimed[cs] {
			leftovers = append(leftovers, cs)
		}
	}
	if len(leftovers) >= len(numbers) {
		for _, item := range items {
			item.background = nearestBackground(item.number, leftovers, g.Config.BackgroundDistanceFactor)
		}
	}

	return items, nil
}

// catalogNumber reports whether text looks like a chapter number: at
// most MaxCatalogDigits characters, all digits with an optional trailing
// period, and a value within MaxCatalogNumber.
func (g *Generator) catalogNumber(text string) (int, bool) {
	if text == "" || len(text) > g.Config.MaxCatalogDigits {
		return 0, false
	}
	digits := strings.TrimSuffix(text, ".")
	if digits == "" {
		return 0, false
	}
	for _, r := range digits {
		if r < '0' || r > '9' {
			return 0, false
		}
	}
	value, err := strconv.Atoi(digits)
	if err != nil || value > g.Config.MaxCatalogNumber {
		return 0, false
	}
	return value, true
}

// layoutDirection compares the average horizontal and vertical spacing
// between consecutive number shapes in reading order; the wider axis is
// the flow direction.
func layoutDirection(numbers []*catalogShape) catalogDirection {
	ordered := make([]*catalogShape, len(numbers))
	copy(ordered, numbers)
	sort.SliceStable(ordered, func(i, j int) bool {
		if ordered[i].frame.X != ordered[j].frame.X {
			return ordered[i].frame.X < ordered[j].frame.X
		}
		return ordered[i].frame.Y < ordered[j].frame.Y
	})

	var horizontal, vertical int64
	for i := 0; i < len(ordered)-1; i++ {
		horizontal += abs64(ordered[i+1].frame.X - ordered[i].frame.X)
		vertical += abs64(ordered[i+1].frame.Y - ordered[i].frame.Y)
	}
	if horizontal > vertical {
		return directionHorizontal
	}
	return directionVertical
}

// nearestLabel finds the closest unclaimed label for a number shape.
// Horizontal flows look below the number gated on horizontal overlap,
// vertical flows look to its right gated on vertical overlap, and an
// undefined direction falls back to plain distance.
func nearestLabel(number *catalogShape, labels []*catalogShape, claimed map[*catalogShape]bool, direction catalogDirection) *catalogShape {
	minDistance := math.Inf(1)
	var closest *catalogShape
	for _, label := range labels {
		if claimed[label] {
			continue
		}
		switch direction {
		case directionHorizontal:
			if label.frame.Y <= number.frame.Y || overlap(number.frame.X, number.frame.Width, label.frame.X, label.frame.Width) <= 0 {
				continue
			}
		case directionVertical:
			if label.frame.X <= number.frame.X || overlap(number.frame.Y, number.frame.Height, label.frame.Y, label.frame.Height) <= 0 {
				continue
			}
		}
		if distance := number.frame.Distance(label.frame); distance < minDistance {
			minDistance = distance
			closest = label
		}
	}
	return closest
}

// nearestBackground finds the closest leftover shape within factor times
// its own height of the number shape. Backgrounds are not claimed, so a
// shared decoration may back several entries.
func nearestBackground(number *catalogShape, leftovers []*catalogShape, factor float64) *catalogShape {
	minDistance := math.Inf(1)
	var closest *catalogShape
	for _, cs := range leftovers {
		distance := number.frame.Distance(cs.frame)
		if distance < minDistance && distance < float64(cs.frame.Height)*factor {
			minDistance = distance
			closest = cs
		}
	}
	return closest
}

// overlap returns the length of the shared range of two extents.
func overlap(start1, size1, start2, size2 int64) int64 {
	return min64(start1+size1, start2+size2) - max64(start1, start2)
}

func abs64(v int64) int64 {
	if v < 0 {
		return -v
	}
	return v
}

func min64(a, b int64) int64 {
	if a < b {
		return a
	}
	return b
}

func max64(a, b int64) int64 {
	if a > b {
		return a
	}
	return b
}

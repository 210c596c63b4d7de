package deck

import (
	"fmt"
	"math/rand"
	"sort"
	"strings"
	"time"

	"github.com/deckgen/deckgen/catalog"
	"github.com/deckgen/deckgen/markdown"
	"github.com/deckgen/deckgen/pptx"
)

// Template slide positions fixed by the template contract.
const (
	coverSlideIndex    = 0
	catalogSlideIndex  = 1
	templateSlideCount = 5
)

// fallbackTitle replaces a blank main heading on the cover.
const fallbackTitle = "Presentation Title"

// Generator assembles one presentation. It holds per-run state, so use
// a fresh Generator per deck; a single Generator must not be shared
// across concurrent generations.
type Generator struct {
	// Catalog supplies the shape templates for content pages.
	Catalog *catalog.Catalog

	// Config holds the run's limits and heuristics.
	Config Config

	rng          *rand.Rand
	numberStyle  int
	usedPictures map[string]map[string]bool
}

// NewGenerator returns a Generator drawing styles from cat with the
// default configuration and a time-seeded random source.
func NewGenerator(cat *catalog.Catalog) *Generator {
	return &Generator{
		Catalog:      cat,
		Config:       DefaultConfig(),
		rng:          rand.New(rand.NewSource(time.Now().UnixNano())),
		usedPictures: make(map[string]map[string]bool),
	}
}

// Seed replaces the generator's random source so that style and picture
// choices can be reproduced.
func (g *Generator) Seed(seed int64) {
	g.rng = rand.New(rand.NewSource(seed))
}

// Generate fills pres, a template deck, from doc. The template's first
// five slides must be the cover, catalog, chapter home, chapter content
// and end pages, in that order. On error the presentation may be left
// partially assembled and should be discarded.
func (g *Generator) Generate(pres *pptx.Presentation, doc *markdown.Document) error {
	if !hasHeadingLevel(doc, 1) {
		return fmt.Errorf("%w: document has no level 1 heading", ErrContent)
	}
	main := doc.Main()
	if main == nil {
		return fmt.Errorf("%w: document has no main heading", ErrContent)
	}
	if pres.SlideCount() < templateSlideCount {
		return fmt.Errorf("%w: template has %d slides, need cover, catalog, chapter home, chapter content and end",
			ErrTemplate, pres.SlideCount())
	}

	if err := g.coverPage(pres, main, coverSlideIndex); err != nil {
		return err
	}

	chapters := doc.Chapters()
	if len(chapters) == 0 {
		return fmt.Errorf("%w: document has no chapters (level 2 headings)", ErrContent)
	}

	catalogLast, err := g.catalogPage(pres, chapters, catalogSlideIndex, 1)
	if err != nil {
		return err
	}

	homeIndex := catalogLast + 1
	contentIndex := homeIndex + 1
	endIndex := contentIndex + 1
	current := endIndex + 1

	for i, chapter := range chapters {
		if err := g.homePage(pres, chapter, homeIndex, i+1, current); err != nil {
			return err
		}
		current++
		if err := g.contentPage(pres, chapter, contentIndex, current); err != nil {
			return err
		}
		current++
	}

	if err := g.endPage(pres, endIndex, current); err != nil {
		return err
	}

	return g.removeTemplateSlides(pres, homeIndex, contentIndex, endIndex)
}

// removeTemplateSlides deletes the spent template slides back to front
// so earlier removals do not shift the remaining indices.
func (g *Generator) removeTemplateSlides(pres *pptx.Presentation, indices ...int) error {
	sort.Sort(sort.Reverse(sort.IntSlice(indices)))
	for _, index := range indices {
		if err := pres.RemoveSlide(index); err != nil {
			return fmt.Errorf("removing template slide %d: %w", index, err)
		}
	}
	return nil
}

func hasHeadingLevel(doc *markdown.Document, level int) bool {
	for _, el := range doc.Descendants() {
		if h, ok := el.(*markdown.Heading); ok && h.Level == level {
			return true
		}
	}
	return false
}

// coverPage fills the template's cover slide in place.
func (g *Generator) coverPage(pres *pptx.Presentation, main *markdown.Heading, index int) error {
	slide, err := pres.Slide(index)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrTemplate, err)
	}

	title := main.Text()
	if strings.TrimSpace(title) == "" {
		title = fallbackTitle
	}

	placeholder := slide.Placeholder(pptx.PlaceholderTitle, pptx.PlaceholderCenterTitle)
	if placeholder == nil {
		return fmt.Errorf("%w: cover slide has no title placeholder", ErrTemplate)
	}
	if err := placeholder.SetText(title); err != nil {
		return fmt.Errorf("setting cover title: %w", err)
	}
	placeholder.DisableWordWrap()
	return nil
}

// endPage clones the end template, titles it, and moves it to
// slideIndex.
func (g *Generator) endPage(pres *pptx.Presentation, templateIndex, slideIndex int) error {
	slide, err := pres.DuplicateSlide(templateIndex)
	if err != nil {
		return fmt.Errorf("cloning end slide: %w", err)
	}

	placeholder := slide.Placeholder(pptx.PlaceholderTitle)
	if placeholder == nil {
		return fmt.Errorf("%w: end slide has no title placeholder", ErrTemplate)
	}
	if err := placeholder.SetText(g.Config.EndTitle); err != nil {
		return fmt.Errorf("setting end title: %w", err)
	}
	placeholder.DisableWordWrap()

	return pres.MoveSlide(pres.SlideIndex(slide), slideIndex)
}

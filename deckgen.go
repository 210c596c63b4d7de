// Package deckgen builds styled PowerPoint decks from Markdown outlines.
//
// The outline maps directly onto the deck: the level 1 heading becomes
// the cover title, every level 2 heading a chapter with its own home
// page, and every level 3 heading one point on the chapter's content
// page. Shape styles are drawn at random from a catalog of templates
// extracted from hand-made decks, so every run of the same outline can
// look different.
//
// Basic usage:
//
//	gen := deckgen.New(deckgen.WithCatalogFile("catalog.json"))
//	if err := gen.GenerateFile("talk.md", "template.pptx", "talk.pptx"); err != nil {
//	    log.Fatal(err)
//	}
//
// With an in-memory document and template:
//
//	doc := markdown.Parse(outline)
//	prs, err := pptx.Open("template.pptx")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	gen := deckgen.New(deckgen.WithCatalog(cat), deckgen.WithSeed(42))
//	if err := gen.Generate(doc, prs); err != nil {
//	    log.Fatal(err)
//	}
//	err = prs.Save("talk.pptx")
//
// The lower-level packages remain available for finer control: markdown
// parses outlines, pptx reads and edits presentations, catalog manages
// the style library, and docread converts other document formats to
// Markdown.
package deckgen

import (
	"errors"

	"github.com/deckgen/deckgen/catalog"
	"github.com/deckgen/deckgen/deck"
	"github.com/deckgen/deckgen/docread"
	"github.com/deckgen/deckgen/markdown"
	"github.com/deckgen/deckgen/pptx"
)

// ErrNoCatalog reports generation without a configured style catalog.
var ErrNoCatalog = errors.New("no style catalog configured")

// Generator turns outlines into presentations. Construct one with New;
// the zero value has no catalog and fails every generation.
//
// A Generator may be reused across decks but not shared by concurrent
// generations.
type Generator struct {
	catalog     *catalog.Catalog
	catalogPath string
	config      deck.Config
	seed        int64
	seeded      bool
	readers     *docread.Registry
}

// New returns a Generator configured by opts.
func New(opts ...Option) *Generator {
	g := &Generator{
		config:  deck.DefaultConfig(),
		readers: docread.DefaultRegistry(),
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// GenerateFile reads the outline at inputPath, fills the template deck
// at templatePath from it, and writes the finished deck to outPath.
// Markdown input is used as is; any other format the docread package
// recognizes is converted to Markdown first.
func (g *Generator) GenerateFile(inputPath, templatePath, outPath string) error {
	text, err := g.readers.ReadFile(inputPath)
	if err != nil {
		return err
	}
	doc := markdown.Parse(text)

	prs, err := pptx.Open(templatePath)
	if err != nil {
		return err
	}
	if err := g.Generate(doc, prs); err != nil {
		return err
	}
	return prs.Save(outPath)
}

// Generate fills prs, a template deck, from doc. The template's first
// five slides must be the cover, catalog, chapter home, chapter content
// and end pages, in that order. On error prs may be left partially
// assembled and should be discarded.
func (g *Generator) Generate(doc *markdown.Document, prs *pptx.Presentation) error {
	cat, err := g.resolveCatalog()
	if err != nil {
		return err
	}
	gen := deck.NewGenerator(cat)
	gen.Config = g.config
	if g.seeded {
		gen.Seed(g.seed)
	}
	return gen.Generate(prs, doc)
}

// resolveCatalog returns the configured catalog, loading and caching
// the WithCatalogFile path on first use.
func (g *Generator) resolveCatalog() (*catalog.Catalog, error) {
	if g.catalog != nil {
		return g.catalog, nil
	}
	if g.catalogPath != "" {
		cat, err := catalog.Load(g.catalogPath)
		if err != nil {
			return nil, err
		}
		g.catalog = cat
		return cat, nil
	}
	return nil, ErrNoCatalog
}

// Must panics when err is non-nil, otherwise returns val. It keeps
// short scripts and examples free of error plumbing.
//
// Example:
//
//	prs := deckgen.Must(pptx.Open("template.pptx"))
func Must[T any](val T, err error) T {
	if err != nil {
		panic(err)
	}
	return val
}

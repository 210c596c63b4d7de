package deckgen

import (
	"github.com/deckgen/deckgen/catalog"
	"github.com/deckgen/deckgen/deck"
)

// Option configures a Generator. Options apply in the order given to
// New, so later options win where they overlap.
type Option func(*Generator)

// WithCatalog supplies the style catalog directly.
func WithCatalog(cat *catalog.Catalog) Option {
	return func(g *Generator) { g.catalog = cat }
}

// WithCatalogFile names a catalog JSON file, loaded on first use. A
// catalog given with WithCatalog takes precedence.
func WithCatalogFile(path string) Option {
	return func(g *Generator) { g.catalogPath = path }
}

// WithSeed fixes the random source so style and picture choices can be
// reproduced.
func WithSeed(seed int64) Option {
	return func(g *Generator) {
		g.seed = seed
		g.seeded = true
	}
}

// WithPictureDir anchors relative catalog picture paths at dir.
func WithPictureDir(dir string) Option {
	return func(g *Generator) { g.config.PictureDir = dir }
}

// WithConfig replaces the generation limits and heuristics wholesale.
// Start from deck.DefaultConfig when only some fields should change.
func WithConfig(cfg deck.Config) Option {
	return func(g *Generator) { g.config = cfg }
}

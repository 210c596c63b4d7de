// Package catalog holds the layout catalog: the library of slide
// templates the generator draws from. A catalog file is one JSON tree,
// layout type → style → shape template, where each shape template
// carries the serialized shape XML (or an exported picture path), its
// paint order, its semantic role and the positions it appears at.
//
// Catalogs are built from annotated template decks with
// AddStyleFromSlide and consumed read-only during generation.
package catalog

// Package deck assembles a styled presentation from a parsed Markdown
// document and a template deck. The template's first five slides are the
// cover, the catalog, the chapter home, the chapter content, and the end
// page; Generate fills the cover and catalog in place, clones the other
// three once per chapter, and removes the spent template slides.
//
// A Generator carries per-run state (random source, the sticky chapter
// number style, picture-pool bookkeeping), so concurrent generations
// must each use their own Generator.
package deck

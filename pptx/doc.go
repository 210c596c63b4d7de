// Package pptx reads and writes PPTX (Office Open XML Presentation)
// packages at the slide and shape level.
//
// A Presentation keeps every part of the opened archive in memory and
// rewrites only the parts it has touched, so template decks round-trip
// without disturbing masters, layouts, themes or media. Slides are
// edited through an XML element tree rather than typed structs: the
// generator's job is cloning, re-targeting and repositioning existing
// template markup, which must survive serialization byte-for-byte
// wherever it was not deliberately changed.
//
// All lengths are EMU (914400 per inch), matching the units stored in
// the format.
package pptx

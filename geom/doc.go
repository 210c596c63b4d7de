// Package geom provides the integer geometry primitives shared by the
// catalog and synthesis packages.
//
// All coordinates are in English Metric Units (EMU, 914400 per inch), the
// native length unit of presentation templates. The origin is the top-left
// corner of the slide: Y grows downward, so a shape with a larger Y sits
// lower on the slide.
package geom

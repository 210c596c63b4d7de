package deck

import "errors"

var (
	// ErrTemplate reports a template deck that does not meet the slide
	// contract: a missing title placeholder, a catalog page whose number
	// and label shapes cannot be paired, or too few template slides.
	ErrTemplate = errors.New("template mismatch")

	// ErrContent reports a Markdown document the generator cannot map
	// onto slides, such as a document without a main heading or without
	// chapters.
	ErrContent = errors.New("unsuitable document")

	// ErrGeneration reports a failure while filling slides: a chapter
	// with more points than any layout supports, a style whose location
	// count does not match the chapter, or an unusable picture source.
	ErrGeneration = errors.New("generation failed")
)

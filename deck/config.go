package deck

// Config holds the tunable limits and heuristics of a generation run.
// The geometric values are heuristics calibrated against common template
// designs, not guarantees.
type Config struct {
	// Maximum numeric value accepted as a chapter number on the catalog
	// page. Short numeric text above this is treated as unrelated.
	MaxCatalogNumber int

	// Maximum text length for a catalog chapter number, period included.
	MaxCatalogDigits int

	// A catalog background shape must lie within its own height times
	// this factor of the chapter number it decorates.
	BackgroundDistanceFactor float64

	// Maximum sub-sections per chapter; no layout exists beyond this.
	MaxPoints int

	// Directory that relative catalog picture paths resolve against.
	// Empty leaves them relative to the working directory.
	PictureDir string

	// Title of the closing slide.
	EndTitle string
}

// DefaultConfig returns the configuration used by NewGenerator.
func DefaultConfig() Config {
	return Config{
		MaxCatalogNumber:         49,
		MaxCatalogDigits:         3,
		BackgroundDistanceFactor: 1.5,
		MaxPoints:                4,
		EndTitle:                 "Thank you!",
	}
}

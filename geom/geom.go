package geom

import "math"

// EMUPerInch is the number of English Metric Units in one inch.
const EMUPerInch = 914400

// Point represents a 2D point in EMU
type Point struct {
	X, Y int64
}

// Distance calculates the Euclidean distance to another point
func (p Point) Distance(other Point) float64 {
	dx := float64(p.X - other.X)
	dy := float64(p.Y - other.Y)
	return math.Sqrt(dx*dx + dy*dy)
}

// Rect represents a rectangle in EMU with a top-left origin.
// The JSON field names match the catalog file format.
type Rect struct {
	X      int64 `json:"x"`
	Y      int64 `json:"y"`
	Width  int64 `json:"width"`
	Height int64 `json:"height"`
}

// NewRect creates a rectangle from its top-left corner and size
func NewRect(x, y, width, height int64) Rect {
	return Rect{X: x, Y: y, Width: width, Height: height}
}

// Left returns the left edge X coordinate
func (r Rect) Left() int64 {
	return r.X
}

// Right returns the right edge X coordinate
func (r Rect) Right() int64 {
	return r.X + r.Width
}

// Top returns the top edge Y coordinate
func (r Rect) Top() int64 {
	return r.Y
}

// Bottom returns the bottom edge Y coordinate
func (r Rect) Bottom() int64 {
	return r.Y + r.Height
}

// TopLeft returns the top-left corner
func (r Rect) TopLeft() Point {
	return Point{X: r.X, Y: r.Y}
}

// Center returns the center point
func (r Rect) Center() Point {
	return Point{
		X: r.X + r.Width/2,
		Y: r.Y + r.Height/2,
	}
}

// Area returns the area in EMU²
func (r Rect) Area() int64 {
	return r.Width * r.Height
}

// Contains checks if a point is inside the rectangle
func (r Rect) Contains(p Point) bool {
	return p.X >= r.Left() && p.X <= r.Right() &&
		p.Y >= r.Top() && p.Y <= r.Bottom()
}

// Intersects checks if two rectangles intersect
func (r Rect) Intersects(other Rect) bool {
	return !(r.Right() < other.Left() ||
		r.Left() > other.Right() ||
		r.Bottom() < other.Top() ||
		r.Top() > other.Bottom())
}

// OverlapsHorizontally reports whether the horizontal extents of the two
// rectangles share any range, regardless of their vertical positions.
func (r Rect) OverlapsHorizontally(other Rect) bool {
	return r.Left() <= other.Right() && r.Right() >= other.Left()
}

// OverlapsVertically reports whether the vertical extents of the two
// rectangles share any range, regardless of their horizontal positions.
func (r Rect) OverlapsVertically(other Rect) bool {
	return r.Top() <= other.Bottom() && r.Bottom() >= other.Top()
}

// Distance calculates the Euclidean distance between the top-left corners
// of two rectangles.
func (r Rect) Distance(other Rect) float64 {
	return r.TopLeft().Distance(other.TopLeft())
}

// IsValid returns true if the rectangle has positive dimensions
func (r Rect) IsValid() bool {
	return r.Width > 0 && r.Height > 0
}

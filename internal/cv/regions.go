package cv

import "image"

// Region is a rectangle in a pixel coordinate space. Which space (capture or
// screen) is positional: matcher and resolver results are capture-space, the
// coordinate translator produces screen-space. Width and height are never
// negative for a well-formed region.
type Region struct {
	X1, Y1, X2, Y2 int
}

// Point is a single pixel coordinate.
type Point struct {
	X, Y int
}

// NewRegion creates a region from two corner points.
func NewRegion(x1, y1, x2, y2 int) Region {
	return Region{X1: x1, Y1: y1, X2: x2, Y2: y2}
}

// RegionFromRect converts an image.Rectangle to a Region.
func RegionFromRect(r image.Rectangle) Region {
	return Region{X1: r.Min.X, Y1: r.Min.Y, X2: r.Max.X, Y2: r.Max.Y}
}

// Width returns the region width.
func (r Region) Width() int {
	return r.X2 - r.X1
}

// Height returns the region height.
func (r Region) Height() int {
	return r.Y2 - r.Y1
}

// Center returns the region's center point.
func (r Region) Center() Point {
	return Point{X: r.X1 + r.Width()/2, Y: r.Y1 + r.Height()/2}
}

// Contains checks if a point lies within the region.
func (r Region) Contains(p Point) bool {
	return p.X >= r.X1 && p.X <= r.X2 && p.Y >= r.Y1 && p.Y <= r.Y2
}

// Empty reports whether the region covers no pixels.
func (r Region) Empty() bool {
	return r.X2 <= r.X1 || r.Y2 <= r.Y1
}

// ToImageRectangle converts the region to an image.Rectangle.
func (r Region) ToImageRectangle() image.Rectangle {
	return image.Rect(r.X1, r.Y1, r.X2, r.Y2)
}

// Package geometry provides the 2-D primitives used by the page layout model:
// points, polygons/polylines and axis-aligned bounding boxes.
package geometry

import "math"

// Point is a single 2-D pixel coordinate
type Point struct {
	X float64 // Horizontal coordinate
	Y float64 // Vertical coordinate
}

// Box represents an axis-aligned rectangle in the document
type Box struct {
	X1 float64 // Left coordinate
	Y1 float64 // Top coordinate
	X2 float64 // Right coordinate
	Y2 float64 // Bottom coordinate
}

// NewBox creates a box from left/top/right/bottom coordinates
func NewBox(x1, y1, x2, y2 float64) Box {
	return Box{X1: x1, Y1: y1, X2: x2, Y2: y2}
}

// Width returns the horizontal extent of the box
func (b Box) Width() float64 { return b.X2 - b.X1 }

// Height returns the vertical extent of the box
func (b Box) Height() float64 { return b.Y2 - b.Y1 }

// IsZero reports whether the box has no area
func (b Box) IsZero() bool { return b.Width() <= 0 || b.Height() <= 0 }

// BoxFromPoints returns the bounding box of a point set.
// An empty set yields the zero box.
func BoxFromPoints(points []Point) Box {
	if len(points) == 0 {
		return Box{}
	}
	box := Box{
		X1: math.Inf(1), Y1: math.Inf(1),
		X2: math.Inf(-1), Y2: math.Inf(-1),
	}
	for _, p := range points {
		box.X1 = math.Min(box.X1, p.X)
		box.Y1 = math.Min(box.Y1, p.Y)
		box.X2 = math.Max(box.X2, p.X)
		box.Y2 = math.Max(box.Y2, p.Y)
	}
	return box
}

// Rect returns the four corners of a box as a closed-order polygon,
// clockwise from the top-left corner.
func Rect(b Box) []Point {
	return []Point{
		{X: b.X1, Y: b.Y1},
		{X: b.X2, Y: b.Y1},
		{X: b.X2, Y: b.Y2},
		{X: b.X1, Y: b.Y2},
	}
}

// Envelope returns the smallest box containing all the given boxes.
// No boxes yields the zero box.
func Envelope(boxes ...Box) Box {
	if len(boxes) == 0 {
		return Box{}
	}
	env := boxes[0]
	for _, b := range boxes[1:] {
		env.X1 = math.Min(env.X1, b.X1)
		env.Y1 = math.Min(env.Y1, b.Y1)
		env.X2 = math.Max(env.X2, b.X2)
		env.Y2 = math.Max(env.Y2, b.Y2)
	}
	return env
}

// AverageY returns the mean vertical coordinate of a polyline.
// An empty polyline yields 0.
func AverageY(points []Point) float64 {
	if len(points) == 0 {
		return 0
	}
	var sum float64
	for _, p := range points {
		sum += p.Y
	}
	return sum / float64(len(points))
}

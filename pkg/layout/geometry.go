// Package layout computes chart-ready geometry from the aggregated models:
// a Sankey attrition diagram, a ridge distribution comparison, and a bullet
// performance scorecard. All output is plain coordinate records for an
// external renderer; nothing here paints.
//
// Coordinates are user units (pixels in SVG) with the origin at the top-left
// corner and y growing downward.
package layout

import "errors"

// ErrEmptyFrame reports a frame without drawable area.
var ErrEmptyFrame = errors.New("empty render frame")

// Chart kinds, used by renderers to dispatch on a serialized layout.
const (
	KindSankey = "sankey"
	KindRidge  = "ridge"
	KindBullet = "bullet"
)

// =============================================================================
// Geometry Primitives
// =============================================================================

// Frame is the pixel area a chart lays out into.
type Frame struct {
	Width  float64 `json:"width" bson:"width"`
	Height float64 `json:"height" bson:"height"`
}

// Valid reports whether the frame has drawable area.
func (f Frame) Valid() bool { return f.Width > 0 && f.Height > 0 }

// Point is a position in frame coordinates.
type Point struct {
	X float64 `json:"x" bson:"x"`
	Y float64 `json:"y" bson:"y"`
}

// Rect is an axis-aligned rectangle anchored at its top-left corner.
type Rect struct {
	X      float64 `json:"x" bson:"x"`
	Y      float64 `json:"y" bson:"y"`
	Width  float64 `json:"width" bson:"width"`
	Height float64 `json:"height" bson:"height"`
}

// CenterY returns the vertical center of the rectangle.
func (r Rect) CenterY() float64 { return r.Y + r.Height/2 }

// Right returns the x coordinate of the right edge.
func (r Rect) Right() float64 { return r.X + r.Width }

// Bottom returns the y coordinate of the bottom edge.
func (r Rect) Bottom() float64 { return r.Y + r.Height }

// Curve is one cubic Bézier segment.
type Curve struct {
	Start Point `json:"start" bson:"start"`
	C1    Point `json:"c1" bson:"c1"`
	C2    Point `json:"c2" bson:"c2"`
	End   Point `json:"end" bson:"end"`
}

// Marker is a vertical reference line.
type Marker struct {
	X      float64 `json:"x" bson:"x"`
	Top    float64 `json:"top" bson:"top"`
	Bottom float64 `json:"bottom" bson:"bottom"`
	Dashed bool    `json:"dashed,omitempty" bson:"dashed,omitempty"`
}

// Annotation is a text line anchored at a point. The renderer centers the
// text horizontally on X.
type Annotation struct {
	Text string  `json:"text" bson:"text"`
	X    float64 `json:"x" bson:"x"`
	Y    float64 `json:"y" bson:"y"`
}

// symmetricCurve builds a cubic Bézier between two points with both control
// points at the horizontal midpoint, which keeps the tangents horizontal at
// each end.
func symmetricCurve(start, end Point) Curve {
	mid := (start.X + end.X) / 2
	return Curve{
		Start: start,
		C1:    Point{X: mid, Y: start.Y},
		C2:    Point{X: mid, Y: end.Y},
		End:   end,
	}
}

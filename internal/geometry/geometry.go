// Package geometry provides the planar primitives the rule engine needs:
// polygons over the camera frame, point containment and centroids.
// All operations are pure; the engine owns no geometry state.
package geometry

import (
	"fmt"
)

// Point is a position in frame pixel coordinates.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Polygon is a closed ring of vertices in frame pixel coordinates.
// The closing edge from the last vertex back to the first is implicit.
type Polygon []Point

// FracBBox is a bounding box with coordinates expressed as fractions of
// the frame dimensions, the way detections arrive in annotation files.
type FracBBox struct {
	Left   float64 `json:"left"`
	Top    float64 `json:"top"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// Validate checks that the box is resolvable against a frame: all four
// values in [0,1], a non-empty footprint, and the far corner still
// inside the frame.
func (b FracBBox) Validate() error {
	for _, v := range []float64{b.Left, b.Top, b.Width, b.Height} {
		if v < 0 || v > 1 {
			return fmt.Errorf("bbox value %v outside [0,1]", v)
		}
	}
	if b.Width == 0 || b.Height == 0 {
		return fmt.Errorf("bbox has empty footprint (%vx%v)", b.Width, b.Height)
	}
	if b.Left+b.Width > 1 || b.Top+b.Height > 1 {
		return fmt.Errorf("bbox extends past frame edge (right %v, bottom %v)", b.Left+b.Width, b.Top+b.Height)
	}
	return nil
}

// NewPolygon builds a polygon, rejecting rings with fewer than three
// vertices.
func NewPolygon(pts []Point) (Polygon, error) {
	if len(pts) < 3 {
		return nil, fmt.Errorf("polygon needs at least 3 vertices, got %d", len(pts))
	}
	p := make(Polygon, len(pts))
	copy(p, pts)
	return p, nil
}

// BBoxPolygon converts a fractional bounding box to a pixel-space
// rectangle over a frame of the given dimensions. Vertex order is
// top-left, top-right, bottom-right, bottom-left.
func BBoxPolygon(b FracBBox, frameWidth, frameHeight int) (Polygon, error) {
	if err := b.Validate(); err != nil {
		return nil, err
	}
	if frameWidth <= 0 || frameHeight <= 0 {
		return nil, fmt.Errorf("invalid frame dimensions %dx%d", frameWidth, frameHeight)
	}
	w := float64(frameWidth)
	h := float64(frameHeight)
	return Polygon{
		{X: b.Left * w, Y: b.Top * h},
		{X: (b.Left + b.Width) * w, Y: b.Top * h},
		{X: (b.Left + b.Width) * w, Y: (b.Top + b.Height) * h},
		{X: b.Left * w, Y: (b.Top + b.Height) * h},
	}, nil
}

// Contains reports whether pt lies inside the polygon, using the
// even-odd ray casting test. Points exactly on an edge count as inside.
func (p Polygon) Contains(pt Point) bool {
	n := len(p)
	if n < 3 {
		return false
	}
	inside := false
	j := n - 1
	for i := 0; i < n; i++ {
		a, b := p[i], p[j]
		if onSegment(pt, a, b) {
			return true
		}
		if (a.Y > pt.Y) != (b.Y > pt.Y) {
			x := (b.X-a.X)*(pt.Y-a.Y)/(b.Y-a.Y) + a.X
			if pt.X < x {
				inside = !inside
			}
		}
		j = i
	}
	return inside
}

// Centroid returns the area centroid of the polygon. Degenerate
// (zero-area) rings fall back to the vertex mean.
func (p Polygon) Centroid() Point {
	var area, cx, cy float64
	n := len(p)
	for i := 0; i < n; i++ {
		a := p[i]
		b := p[(i+1)%n]
		cross := a.X*b.Y - b.X*a.Y
		area += cross
		cx += (a.X + b.X) * cross
		cy += (a.Y + b.Y) * cross
	}
	if area == 0 {
		var sx, sy float64
		for _, v := range p {
			sx += v.X
			sy += v.Y
		}
		return Point{X: sx / float64(n), Y: sy / float64(n)}
	}
	area *= 0.5
	return Point{X: cx / (6 * area), Y: cy / (6 * area)}
}

func onSegment(pt, a, b Point) bool {
	cross := (b.X-a.X)*(pt.Y-a.Y) - (b.Y-a.Y)*(pt.X-a.X)
	if cross != 0 {
		return false
	}
	if pt.X < min(a.X, b.X) || pt.X > max(a.X, b.X) {
		return false
	}
	if pt.Y < min(a.Y, b.Y) || pt.Y > max(a.Y, b.Y) {
		return false
	}
	return true
}

// Package render draws per-frame overlays: detection outlines and
// centroid dots, region-of-interest boundaries, an alert border and the
// frame number. It consumes frame results from the engine bus and never
// feeds back into engine state.
package render

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/jpeg"
	"math"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"

	"vigil/internal/engine"
	"vigil/internal/geometry"
)

var classColors = map[string]color.RGBA{
	"person": {R: 82, G: 168, B: 50, A: 255},
	"car":    {R: 250, G: 127, B: 144, A: 255},
	"truck":  {R: 199, G: 214, B: 84, A: 255},
}

var (
	alertColor = color.RGBA{R: 242, G: 10, B: 2, A: 255}
	otherColor = color.RGBA{R: 255, G: 255, B: 255, A: 255}
)

// Renderer draws frame results over a fixed set of region polygons.
type Renderer struct {
	regions []geometry.Polygon
	quality int
}

// New creates a renderer for the configured regions.
func New(regions []geometry.Polygon) *Renderer {
	return &Renderer{regions: regions, quality: 85}
}

// Render produces the overlay image for one frame result.
func (r *Renderer) Render(result *engine.FrameResult) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, result.Width, result.Height))
	draw.Draw(img, img.Bounds(), image.NewUniform(color.RGBA{A: 255}), image.Point{}, draw.Src)

	for _, obj := range result.Objects {
		c := classColor(obj.Class)
		drawPolygon(img, obj.Outline, c, 2)
		drawDot(img, obj.Centroid, c, 3)
	}

	alerting := false
	for i, roi := range r.regions {
		c := otherColor
		if result.AlertRegions[i] {
			alerting = true
			c = alertColor
		}
		drawPolygon(img, roi, c, 2)
	}

	// Full-frame border doubles as a visual alert indicator.
	borderColor := otherColor
	if alerting {
		borderColor = alertColor
	}
	w := float64(result.Width)
	h := float64(result.Height)
	drawPolygon(img, geometry.Polygon{{X: 0, Y: 0}, {X: w, Y: 0}, {X: w, Y: h}, {X: 0, Y: h}}, borderColor, 2)

	drawLabel(img, 50, 50, fmt.Sprintf("frame: %d", result.FrameNum), otherColor)
	return img
}

// RenderJPEG renders and encodes one frame result.
func (r *Renderer) RenderJPEG(result *engine.FrameResult) ([]byte, error) {
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, r.Render(result), &jpeg.Options{Quality: r.quality}); err != nil {
		return nil, fmt.Errorf("failed to encode frame %d: %w", result.FrameNum, err)
	}
	return buf.Bytes(), nil
}

func classColor(class string) color.RGBA {
	if c, ok := classColors[class]; ok {
		return c
	}
	return otherColor
}

// drawPolygon strokes the closed ring with the given thickness.
func drawPolygon(img *image.RGBA, poly geometry.Polygon, c color.RGBA, thickness int) {
	n := len(poly)
	if n < 2 {
		return
	}
	for i := 0; i < n; i++ {
		a := poly[i]
		b := poly[(i+1)%n]
		drawLine(img, a, b, c, thickness)
	}
}

func drawLine(img *image.RGBA, a, b geometry.Point, c color.RGBA, thickness int) {
	dx := b.X - a.X
	dy := b.Y - a.Y
	steps := int(math.Max(math.Abs(dx), math.Abs(dy)))
	if steps == 0 {
		setThick(img, int(a.X), int(a.Y), c, thickness)
		return
	}
	for i := 0; i <= steps; i++ {
		t := float64(i) / float64(steps)
		setThick(img, int(a.X+dx*t), int(a.Y+dy*t), c, thickness)
	}
}

func setThick(img *image.RGBA, x, y int, c color.RGBA, thickness int) {
	half := thickness / 2
	bounds := img.Bounds()
	for oy := -half; oy <= half; oy++ {
		for ox := -half; ox <= half; ox++ {
			px, py := x+ox, y+oy
			if px >= bounds.Min.X && px < bounds.Max.X && py >= bounds.Min.Y && py < bounds.Max.Y {
				img.SetRGBA(px, py, c)
			}
		}
	}
}

// drawDot fills a circle at the point, used for detection centroids.
func drawDot(img *image.RGBA, pt geometry.Point, c color.RGBA, radius int) {
	cx, cy := int(pt.X), int(pt.Y)
	bounds := img.Bounds()
	for oy := -radius; oy <= radius; oy++ {
		for ox := -radius; ox <= radius; ox++ {
			if ox*ox+oy*oy > radius*radius {
				continue
			}
			px, py := cx+ox, cy+oy
			if px >= bounds.Min.X && px < bounds.Max.X && py >= bounds.Min.Y && py < bounds.Max.Y {
				img.SetRGBA(px, py, c)
			}
		}
	}
}

// drawLabel draws text at the given baseline position.
func drawLabel(img *image.RGBA, x, y int, label string, c color.RGBA) {
	d := &font.Drawer{
		Dst:  img,
		Src:  image.NewUniform(c),
		Face: basicfont.Face7x13,
		Dot:  fixed.Point26_6{X: fixed.I(x), Y: fixed.I(y)},
	}
	d.DrawString(label)
}

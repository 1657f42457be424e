package render

import (
	"bytes"
	"image/jpeg"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"vigil/internal/engine"
	"vigil/internal/geometry"
)

var testROIs = []geometry.Polygon{
	{{X: 10, Y: 10}, {X: 50, Y: 10}, {X: 50, Y: 50}, {X: 10, Y: 50}},
	{{X: 60, Y: 60}, {X: 90, Y: 60}, {X: 90, Y: 90}, {X: 60, Y: 90}},
}

func quietResult(num int) *engine.FrameResult {
	return &engine.FrameResult{
		CamName:      "gate-south",
		FrameNum:     num,
		Width:        200,
		Height:       120,
		AlertRegions: map[int]bool{},
	}
}

func TestRenderBorderReflectsAlertState(t *testing.T) {
	r := New(testROIs)

	img := r.Render(quietResult(1))
	assert.Equal(t, otherColor, img.RGBAAt(0, 0))
	assert.Equal(t, otherColor, img.RGBAAt(100, 0))

	alerting := quietResult(2)
	alerting.AlertRegions[0] = true
	alerting.Alerts = []engine.Alert{{RegionIndex: 0, RuleName: "Car and Person", FrameNum: 2}}

	img = r.Render(alerting)
	assert.Equal(t, alertColor, img.RGBAAt(0, 0))
	assert.Equal(t, alertColor, img.RGBAAt(100, 0))

	// The alerting region is stroked in the alert color, the quiet one
	// stays white.
	assert.Equal(t, alertColor, img.RGBAAt(10, 10))
	assert.Equal(t, otherColor, img.RGBAAt(60, 60))
}

func TestRenderDrawsObjects(t *testing.T) {
	r := New(testROIs)

	result := quietResult(3)
	result.Objects = []engine.ObjectShape{
		{
			Class:    "car",
			Outline:  geometry.Polygon{{X: 100, Y: 20}, {X: 140, Y: 20}, {X: 140, Y: 40}, {X: 100, Y: 40}},
			Centroid: geometry.Point{X: 120, Y: 30},
		},
		{
			Class:    "zebra",
			Outline:  geometry.Polygon{{X: 100, Y: 60}, {X: 140, Y: 60}, {X: 140, Y: 80}, {X: 100, Y: 80}},
			Centroid: geometry.Point{X: 120, Y: 70},
		},
	}

	img := r.Render(result)
	assert.Equal(t, classColors["car"], img.RGBAAt(100, 20))
	assert.Equal(t, classColors["car"], img.RGBAAt(120, 30))
	// Unknown classes fall back to white.
	assert.Equal(t, otherColor, img.RGBAAt(100, 60))
}

func TestRenderJPEGDecodes(t *testing.T) {
	r := New(testROIs)

	data, err := r.RenderJPEG(quietResult(4))
	require.NoError(t, err)

	img, err := jpeg.Decode(bytes.NewReader(data))
	require.NoError(t, err)
	assert.Equal(t, 200, img.Bounds().Dx())
	assert.Equal(t, 120, img.Bounds().Dy())
}

func TestJPEGSinkWritesFrames(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "out")
	sink, err := NewJPEGSink(New(testROIs), dir, nil)
	require.NoError(t, err)
	defer sink.Close()

	sink.OnFrameResult(quietResult(5))
	sink.OnFrameResult(quietResult(6))

	assert.Equal(t, 2, sink.Written())
	for _, name := range []string{"frame_00005.jpg", "frame_00006.jpg"} {
		_, err := os.Stat(filepath.Join(dir, name))
		assert.NoError(t, err)
	}
}

// Package annotations reads the per-frame detection files produced by
// the upstream tracker. A file carries one camera's detections:
//
//	{
//	  "cam_name": "gate-south",
//	  "frames": [
//	    {"frame_num": 5, "timestamp": 1500000000,
//	     "frame_width": 1920, "frame_height": 1080,
//	     "detections": [{"class": "car",
//	       "bbox": {"left": 0.1, "top": 0.2, "width": 0.05, "height": 0.08}}]}
//	  ]
//	}
package annotations

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"vigil/internal/engine"
)

// Manifest is a parsed annotations file: the camera name and its
// ordered frame batches.
type Manifest struct {
	CamName string              `json:"cam_name"`
	Frames  []engine.FrameBatch `json:"frames"`
}

// Load reads and validates an annotations file.
func Load(path string) (*Manifest, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open annotations: %w", err)
	}
	defer f.Close()
	return Parse(f)
}

// Parse decodes a manifest from r and validates frame ordering and
// coordinate ranges.
func Parse(r io.Reader) (*Manifest, error) {
	var m Manifest
	dec := json.NewDecoder(r)
	if err := dec.Decode(&m); err != nil {
		return nil, fmt.Errorf("failed to decode annotations: %w", err)
	}
	if err := m.validate(); err != nil {
		return nil, err
	}
	return &m, nil
}

func (m *Manifest) validate() error {
	if m.CamName == "" {
		return fmt.Errorf("annotations missing cam_name")
	}
	lastFrame := -1
	lastTS := int64(-1)
	for i := range m.Frames {
		fb := &m.Frames[i]
		if fb.Width <= 0 || fb.Height <= 0 {
			return fmt.Errorf("frame %d: invalid dimensions %dx%d", fb.FrameNum, fb.Width, fb.Height)
		}
		// Frame numbers and timestamps are non-decreasing across the
		// stream; gaps are allowed.
		if fb.FrameNum < lastFrame {
			return fmt.Errorf("frame %d: frame numbers must be non-decreasing (previous %d)", fb.FrameNum, lastFrame)
		}
		if fb.Timestamp < lastTS {
			return fmt.Errorf("frame %d: timestamps must be non-decreasing", fb.FrameNum)
		}
		lastFrame = fb.FrameNum
		lastTS = fb.Timestamp

		// Bounding boxes are not validated here: a malformed bbox is a
		// per-detection condition the engine reports and skips, not a
		// reason to reject the whole file.
		for j, det := range fb.Detections {
			if det.Class == "" {
				return fmt.Errorf("frame %d: detection %d missing class", fb.FrameNum, j)
			}
		}
	}
	return nil
}

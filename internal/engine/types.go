package engine

import (
	"vigil/internal/geometry"
)

// Detection is a single per-frame observation: a class label and a
// fractional bounding box relative to the frame dimensions. Detections
// are given by the input source, never computed here.
type Detection struct {
	Class string            `json:"class"`
	BBox  geometry.FracBBox `json:"bbox"`
}

// FrameBatch is all detections sharing one frame number, plus the frame
// metadata needed to resolve fractional coordinates.
type FrameBatch struct {
	FrameNum   int         `json:"frame_num"`
	Timestamp  int64       `json:"timestamp"` // nanoseconds since stream origin
	Width      int         `json:"frame_width"`
	Height     int         `json:"frame_height"`
	Detections []Detection `json:"detections"`
}

// Alert is raised when a rule evaluates positive and the debounce gate
// approves. It is handed to the notifier and published on the bus; the
// engine does not retain it.
type Alert struct {
	RegionIndex int    `json:"region_index"`
	RuleName    string `json:"rule_name"`
	FrameNum    int    `json:"frame_num"`
	Timestamp   int64  `json:"timestamp"`
	CamName     string `json:"cam_name"`
}

// ObjectShape is the drawable form of one detection: its pixel-space
// outline and representative point. Detections that never land in a
// region still get a shape so the renderer can draw them.
type ObjectShape struct {
	Class    string
	Outline  geometry.Polygon
	Centroid geometry.Point
}

// FrameResult is everything downstream consumers (renderer, store,
// websocket hub) need about one processed frame.
type FrameResult struct {
	CamName      string
	FrameNum     int
	Timestamp    int64
	Width        int
	Height       int
	Objects      []ObjectShape
	AlertRegions map[int]bool // region index -> alerted this frame
	Alerts       []Alert      // alerts actually approved by the gate
	Positives    int          // rule-positive evaluations this frame, sent or not
}

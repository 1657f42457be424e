package engine

import (
	"errors"
	"fmt"

	"vigil/internal/geometry"
)

var (
	// ErrInvalidRegionIndex means a presence operation referenced a
	// region outside the configured range. This is a programmer or
	// configuration error and is treated as fatal by the orchestrator.
	ErrInvalidRegionIndex = errors.New("region index out of range")

	// ErrUnknownClass means a presence operation referenced a class
	// outside the tracked set. Also fatal; valid configuration never
	// produces it.
	ErrUnknownClass = errors.New("class not in tracked set")
)

// Presence is a read-only view of one region's per-class observation
// flags for the current frame.
type Presence map[string]bool

// RegionSet is the fixed, insertion-ordered list of regions of interest.
// Geometry is set once at construction and never mutated; per-frame
// presence state lives alongside each polygon and is reset by the
// orchestrator exactly once per frame.
type RegionSet struct {
	regions []regionState
	classes []string
}

type regionState struct {
	polygon  geometry.Polygon
	presence map[string]bool
}

// NewRegionSet builds a region set over the given polygons, tracking
// presence for exactly the given classes in every region. Region order
// is significant: containment resolution stops at the first match.
func NewRegionSet(polygons []geometry.Polygon, classes []string) (*RegionSet, error) {
	if len(polygons) == 0 {
		return nil, fmt.Errorf("no regions configured")
	}
	if len(classes) == 0 {
		return nil, fmt.Errorf("no tracked classes configured")
	}
	rs := &RegionSet{
		regions: make([]regionState, 0, len(polygons)),
		classes: append([]string(nil), classes...),
	}
	for i, poly := range polygons {
		if len(poly) < 3 {
			return nil, fmt.Errorf("region %d: polygon needs at least 3 vertices, got %d", i, len(poly))
		}
		rs.regions = append(rs.regions, regionState{
			polygon:  poly,
			presence: emptyPresence(classes),
		})
	}
	return rs, nil
}

func emptyPresence(classes []string) map[string]bool {
	m := make(map[string]bool, len(classes))
	for _, c := range classes {
		m[c] = false
	}
	return m
}

// Len returns the number of configured regions.
func (rs *RegionSet) Len() int { return len(rs.regions) }

// Polygon returns the boundary of region index i.
func (rs *RegionSet) Polygon(i int) geometry.Polygon {
	return rs.regions[i].polygon
}

// Tracks reports whether class belongs to the tracked set.
func (rs *RegionSet) Tracks(class string) bool {
	for _, c := range rs.classes {
		if c == class {
			return true
		}
	}
	return false
}

// Resolve returns the index of the first region, in configured order,
// whose polygon contains pt. A detection is attributed to at most one
// region even when its point lies in overlapping boundaries.
func (rs *RegionSet) Resolve(pt geometry.Point) (int, bool) {
	for i := range rs.regions {
		if rs.regions[i].polygon.Contains(pt) {
			return i, true
		}
	}
	return -1, false
}

// Mark records that an object of the given class was observed in region
// i during the current frame. Marking is idempotent.
func (rs *RegionSet) Mark(i int, class string) error {
	if i < 0 || i >= len(rs.regions) {
		return fmt.Errorf("%w: %d (have %d regions)", ErrInvalidRegionIndex, i, len(rs.regions))
	}
	if !rs.Tracks(class) {
		return fmt.Errorf("%w: %q", ErrUnknownClass, class)
	}
	rs.regions[i].presence[class] = true
	return nil
}

// Presence returns the per-class flags for region i. The map is shared
// with the set; callers treat it as read-only.
func (rs *RegionSet) Presence(i int) Presence {
	return rs.regions[i].presence
}

// Reset clears every region's presence so the previous frame's objects
// do not leak into the next one. Called exactly once per processed
// frame, after all of that frame's detections have been evaluated.
func (rs *RegionSet) Reset() {
	for i := range rs.regions {
		for c := range rs.regions[i].presence {
			rs.regions[i].presence[c] = false
		}
	}
}

package config

import (
	"encoding/json"
	"fmt"
	"os"

	"vigil/internal/geometry"
)

// LoadRegions reads region polygons from a JSON file shaped as an
// ordered array of vertex lists: [[[x,y],[x,y],...],...]. Order
// matters: containment resolution stops at the first matching region.
func LoadRegions(path string) ([]geometry.Polygon, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read regions file: %w", err)
	}

	var raw [][][2]float64
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("failed to decode regions file: %w", err)
	}

	polygons := make([]geometry.Polygon, 0, len(raw))
	for i, ring := range raw {
		pts := make([]geometry.Point, 0, len(ring))
		for _, v := range ring {
			pts = append(pts, geometry.Point{X: v[0], Y: v[1]})
		}
		poly, err := geometry.NewPolygon(pts)
		if err != nil {
			return nil, fmt.Errorf("region %d: %w", i, err)
		}
		polygons = append(polygons, poly)
	}
	if len(polygons) == 0 {
		return nil, fmt.Errorf("regions file defines no regions")
	}
	return polygons, nil
}

// DefaultRegions returns the two stock gate-camera regions used when no
// regions file is given.
func DefaultRegions() []geometry.Polygon {
	return []geometry.Polygon{
		{{X: 885, Y: 85}, {X: 834, Y: 246}, {X: 1228, Y: 260}, {X: 1139, Y: 77}},
		{{X: 181, Y: 288}, {X: 165, Y: 522}, {X: 612, Y: 510}, {X: 544, Y: 246}},
	}
}

package geo

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
)

// Candidate property keys, in lookup order. The source datasets carry
// redundant naming across records, so every attribute read falls back
// through an explicit chain instead of assuming one key.
var (
	CountryNameKeys  = []string{"ADMIN", "NAME"}
	PointCityKeys    = []string{"NAME", "name"}
	PointCountryKeys = []string{"ADM0NAME", "SOV0NAME", "COUNTRY"}
)

type FeatureCollection struct {
	Type     string    `json:"type"`
	Features []Feature `json:"features"`
}

type Feature struct {
	Type       string          `json:"type"`
	Properties map[string]any  `json:"properties"`
	Geometry   json.RawMessage `json:"geometry"`
}

// Prop returns the first non-empty string property under the candidate keys.
func (f Feature) Prop(keys []string) string {
	for _, k := range keys {
		if v, ok := f.Properties[k]; ok {
			if s, ok := v.(string); ok && strings.TrimSpace(s) != "" {
				return s
			}
		}
	}
	return ""
}

type geometryHeader struct {
	Type        string          `json:"type"`
	Coordinates json.RawMessage `json:"coordinates"`
}

// PolygonParts decodes the feature geometry into polygon parts. Malformed
// geometry (absent, non-numeric coordinates, wrong nesting) yields nil so the
// feature simply never contains anything; resolution must not abort on bad
// members of an otherwise usable dataset.
func (f Feature) PolygonParts() []PolygonPart {
	if len(f.Geometry) == 0 {
		return nil
	}
	var hdr geometryHeader
	if err := json.Unmarshal(f.Geometry, &hdr); err != nil {
		return nil
	}
	switch hdr.Type {
	case "Polygon":
		part, ok := decodePart(hdr.Coordinates)
		if !ok {
			return nil
		}
		return []PolygonPart{part}
	case "MultiPolygon":
		var raw []json.RawMessage
		if err := json.Unmarshal(hdr.Coordinates, &raw); err != nil {
			return nil
		}
		parts := make([]PolygonPart, 0, len(raw))
		for _, r := range raw {
			part, ok := decodePart(r)
			if !ok {
				return nil
			}
			parts = append(parts, part)
		}
		return parts
	default:
		return nil
	}
}

func decodePart(raw json.RawMessage) (PolygonPart, bool) {
	var rings [][][]float64
	if err := json.Unmarshal(raw, &rings); err != nil {
		return nil, false
	}
	part := make(PolygonPart, 0, len(rings))
	for _, r := range rings {
		ring := make(Ring, 0, len(r))
		for _, v := range r {
			if len(v) < 2 {
				return nil, false
			}
			ring = append(ring, Position{v[0], v[1]})
		}
		part = append(part, ring)
	}
	return part, true
}

// Point decodes a Point geometry, returning lon, lat.
func (f Feature) Point() (lon, lat float64, ok bool) {
	if len(f.Geometry) == 0 {
		return 0, 0, false
	}
	var hdr geometryHeader
	if err := json.Unmarshal(f.Geometry, &hdr); err != nil || hdr.Type != "Point" {
		return 0, 0, false
	}
	var coords []float64
	if err := json.Unmarshal(hdr.Coordinates, &coords); err != nil || len(coords) < 2 {
		return 0, 0, false
	}
	return coords[0], coords[1], true
}

// ContainsPoint reports whether any polygon part of the feature contains the
// point. Outer rings only, see PolygonPart.Contains.
func (f Feature) ContainsPoint(lon, lat float64) bool {
	for _, part := range f.PolygonParts() {
		if part.Contains(lon, lat) {
			return true
		}
	}
	return false
}

// LoadFeatureCollection reads a GeoJSON feature collection from disk.
func LoadFeatureCollection(path string) (*FeatureCollection, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	var fc FeatureCollection
	if err := json.Unmarshal(b, &fc); err != nil {
		return nil, fmt.Errorf("decode %s: %w", path, err)
	}
	if fc.Type != "FeatureCollection" {
		return nil, fmt.Errorf("%s: expected FeatureCollection, got %q", path, fc.Type)
	}
	return &fc, nil
}

// Package geo implements the geometric primitives behind the map click
// resolver: even-odd point-in-polygon containment and great-circle distance.
package geo

import "math"

const earthRadiusKm = 6371.0

// Position is a (longitude, latitude) vertex, GeoJSON axis order.
type Position [2]float64

func (p Position) Lon() float64 { return p[0] }
func (p Position) Lat() float64 { return p[1] }

// Ring is a closed sequence of vertices. The first vertex may or may not be
// repeated as the last; containment is computed with a circular wrap either way.
type Ring []Position

// PointInRing reports whether (lon, lat) lies inside ring using even-odd ray
// casting: a horizontal ray towards +lon, counting edge crossings.
func PointInRing(lon, lat float64, ring Ring) bool {
	inside := false
	for i, j := 0, len(ring)-1; i < len(ring); j, i = i, i+1 {
		xi, yi := ring[i].Lon(), ring[i].Lat()
		xj, yj := ring[j].Lon(), ring[j].Lat()
		if yi == yj {
			// zero-height edge: no crossing, and guards the slope division
			continue
		}
		if (yi > lat) != (yj > lat) && lon < (xj-xi)*(lat-yi)/(yj-yi)+xi {
			inside = !inside
		}
	}
	return inside
}

// PolygonPart is one polygon of a (multi)polygon feature: an outer ring
// followed by optional holes.
type PolygonPart []Ring

// Contains tests the outer ring only. Holes (ring index > 0) are deliberately
// ignored; country outlines in the source data are simple enough that interior
// holes do not matter for attribution. Known simplification, kept as is.
func (p PolygonPart) Contains(lon, lat float64) bool {
	if len(p) == 0 {
		return false
	}
	return PointInRing(lon, lat, p[0])
}

// HaversineKm returns the great-circle distance in kilometers between two
// (lat, lon) points on a spherical Earth.
func HaversineKm(lat1, lon1, lat2, lon2 float64) float64 {
	dLat := radians(lat2 - lat1)
	dLon := radians(lon2 - lon1)
	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(radians(lat1))*math.Cos(radians(lat2))*math.Sin(dLon/2)*math.Sin(dLon/2)
	return 2 * earthRadiusKm * math.Asin(math.Sqrt(a))
}

func radians(deg float64) float64 { return deg * math.Pi / 180 }

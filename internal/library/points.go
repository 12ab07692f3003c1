package library

import (
	"log/slog"

	"mediamap/internal/geo"
)

// PlacePoint is a single geographic point for a city the library knows about.
type PlacePoint struct {
	Country string
	City    string
	Lon     float64
	Lat     float64
}

// FilterPlacePoints reduces the raw place-point dataset to the points whose
// (country, city) pair exists in the library. Attribute names vary across
// records, so both names fall back through their candidate key chains; a
// point missing either attribute under every key is dropped, as is anything
// without a decodable Point geometry.
func FilterPlacePoints(fc *geo.FeatureCollection, ix *FacetIndex, logger *slog.Logger) []PlacePoint {
	if logger == nil {
		logger = slog.Default()
	}
	var kept []PlacePoint
	for _, f := range fc.Features {
		city := f.Prop(geo.PointCityKeys)
		country := f.Prop(geo.PointCountryKeys)
		if city == "" || country == "" {
			continue
		}
		if !ix.HasPair(country, city) {
			continue
		}
		lon, lat, ok := f.Point()
		if !ok {
			continue
		}
		kept = append(kept, PlacePoint{Country: country, City: city, Lon: lon, Lat: lat})
	}
	logger.Debug("place points filtered", "raw", len(fc.Features), "kept", len(kept))
	return kept
}

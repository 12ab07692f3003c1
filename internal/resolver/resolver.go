// Package resolver maps a map click to a country and the nearest city the
// library knows about inside that country.
package resolver

import (
	"log/slog"

	"mediamap/internal/geo"
	"mediamap/internal/library"
	"mediamap/internal/observability"
)

// Resolution is the outcome of a click. Country is always set when a
// resolution exists; City and CityDistanceKm are set only when the country
// has at least one library place point.
type Resolution struct {
	Country        string
	City           string
	CityDistanceKm float64
	HasCity        bool
}

type countryFeature struct {
	name  string
	parts []geo.PolygonPart
}

// Resolver holds country outlines decoded once at construction and reads the
// library point set through the catalog, so a catalog reload takes effect on
// the next click.
type Resolver struct {
	countries []countryFeature
	catalog   *library.Catalog
	logger    *slog.Logger
}

// New decodes the country polygon collection up front. Features with
// malformed geometry decode to zero parts and can never contain a point;
// they are kept so dataset order is preserved.
func New(countries *geo.FeatureCollection, catalog *library.Catalog, logger *slog.Logger) *Resolver {
	if logger == nil {
		logger = slog.Default()
	}
	fs := make([]countryFeature, 0, len(countries.Features))
	for _, f := range countries.Features {
		fs = append(fs, countryFeature{
			name:  f.Prop(geo.CountryNameKeys),
			parts: f.PolygonParts(),
		})
	}
	return &Resolver{countries: fs, catalog: catalog, logger: logger}
}

// ResolveClick resolves (lat, lon) to a country and nearest library city.
// The first containing feature in dataset order decides the country; if it
// carries no display name under any candidate key the click resolves to
// nothing, matching the upstream dataset contract. Ties on distance go to the
// first point in iteration order.
func (r *Resolver) ResolveClick(lat, lon float64) (Resolution, bool) {
	country := ""
	for _, f := range r.countries {
		if containsPoint(f.parts, lon, lat) {
			country = f.name
			break
		}
	}
	if country == "" {
		observability.IncResolve("no_country")
		return Resolution{}, false
	}

	res := Resolution{Country: country}
	snap, err := r.catalog.Snapshot()
	if err != nil {
		// no library data yet; country alone is still a valid resolution
		r.logger.Warn("resolving click without library points", "err", err)
		observability.IncResolve("no_city")
		return res, true
	}

	bestKm := 0.0
	for _, p := range snap.Points {
		if p.Country != country {
			continue
		}
		d := geo.HaversineKm(lat, lon, p.Lat, p.Lon)
		if !res.HasCity || d < bestKm {
			res.City = p.City
			res.CityDistanceKm = d
			res.HasCity = true
			bestKm = d
		}
	}

	if res.HasCity {
		observability.IncResolve("city")
	} else {
		observability.IncResolve("no_city")
	}
	r.logger.Debug("click resolved",
		"lat", lat, "lon", lon,
		"country", country, "city", res.City, "has_city", res.HasCity)
	return res, true
}

func containsPoint(parts []geo.PolygonPart, lon, lat float64) bool {
	for _, p := range parts {
		if p.Contains(lon, lat) {
			return true
		}
	}
	return false
}

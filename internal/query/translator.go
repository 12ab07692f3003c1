// Package query translates filter state into the tabular query endpoint's
// parameter protocol: exact-match facets, inclusive capture-time bounds,
// fixed sort and paging.
package query

import (
	"net/url"
	"strconv"
	"strings"

	"mediamap/internal/state"
)

// PageSize is the fixed result page size.
const PageSize = 24

// sortField is the capture timestamp column; results are always newest first.
const sortField = "taken_utc"

// Descriptor is the normalized, request-ready projection of a FilterState.
// All values are trimmed; empty means "not filtered".
type Descriptor struct {
	Text      string
	Country   string
	City      string
	Camera    string
	MediaType string
	DateFrom  string
	DateTo    string
	Page      int
}

// FromState normalizes a FilterState. Typed country/city fields are
// authoritative; the map-derived selection only fills in when the typed field
// is blank. Whitespace-only values collapse to empty and are omitted from the
// request entirely.
func FromState(s state.FilterState) Descriptor {
	country := strings.TrimSpace(s.Country)
	if country == "" {
		country = strings.TrimSpace(s.SelectedCountry)
	}
	city := strings.TrimSpace(s.City)
	if city == "" {
		city = strings.TrimSpace(s.SelectedCity)
	}
	page := s.Page
	if page < 0 {
		page = 0
	}
	return Descriptor{
		Text:      strings.TrimSpace(s.Query),
		Country:   country,
		City:      city,
		Camera:    strings.TrimSpace(s.Camera),
		MediaType: strings.TrimSpace(s.MediaType),
		DateFrom:  strings.TrimSpace(s.DateFrom),
		DateTo:    strings.TrimSpace(s.DateTo),
		Page:      page,
	}
}

// Params encodes the descriptor for the Datasette-style endpoint. Date bounds
// are inclusive: from at 00:00:00 and to at 23:59:59 of the calendar date.
func (d Descriptor) Params() url.Values {
	p := url.Values{}
	p.Set("_shape", "objects")
	p.Set("_size", strconv.Itoa(PageSize))
	p.Set("_offset", strconv.Itoa(d.Page*PageSize))
	p.Set("_sort_desc", sortField)

	if d.Country != "" {
		p.Set("country__exact", d.Country)
	}
	if d.City != "" {
		p.Set("city__exact", d.City)
	}
	if d.Camera != "" {
		p.Set("camera__exact", d.Camera)
	}
	if d.MediaType != "" {
		p.Set("media_type__exact", d.MediaType)
	}
	if d.DateFrom != "" {
		p.Set(sortField+"__gte", d.DateFrom+"T00:00:00")
	}
	if d.DateTo != "" {
		p.Set(sortField+"__lte", d.DateTo+"T23:59:59")
	}
	if d.Text != "" {
		p.Set("filename__contains", d.Text)
	}
	return p
}

// Package library knows what the media library actually contains: its
// country/city/camera facet values and the geographic points retained for
// cities that occur in the library at least once.
package library

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"
)

// Pair is the membership key for library place points: case-sensitive exact
// match on both parts, no normalization.
type Pair struct {
	Country string
	City    string
}

// FacetIndex is the read-only index over the library's facet listings.
// Rebuilt wholesale; never updated in place.
type FacetIndex struct {
	countries       []string
	cameras         []string
	citiesByCountry map[string][]string
	pairs           map[Pair]struct{}
}

// BuildFacetIndex assembles the index from the three facet listings. City
// lists are sorted with locale-aware collation. Blank countries or cities are
// dropped.
func BuildFacetIndex(countries []string, pairs []Pair, cameras []string) *FacetIndex {
	ix := &FacetIndex{
		citiesByCountry: make(map[string][]string),
		pairs:           make(map[Pair]struct{}, len(pairs)),
	}
	for _, c := range countries {
		if c != "" {
			ix.countries = append(ix.countries, c)
		}
	}
	for _, cam := range cameras {
		if cam != "" {
			ix.cameras = append(ix.cameras, cam)
		}
	}
	for _, p := range pairs {
		if p.Country == "" || p.City == "" {
			continue
		}
		if _, seen := ix.pairs[p]; seen {
			continue
		}
		ix.pairs[p] = struct{}{}
		ix.citiesByCountry[p.Country] = append(ix.citiesByCountry[p.Country], p.City)
	}

	col := collate.New(language.Und)
	for _, cities := range ix.citiesByCountry {
		col.SortStrings(cities)
	}
	return ix
}

// HasPair reports whether the library contains at least one item tagged with
// the exact (country, city) pair.
func (ix *FacetIndex) HasPair(country, city string) bool {
	_, ok := ix.pairs[Pair{Country: country, City: city}]
	return ok
}

// HasCountry reports whether the library contains any item for the country.
func (ix *FacetIndex) HasCountry(country string) bool {
	if country == "" {
		return false
	}
	for _, c := range ix.countries {
		if c == country {
			return true
		}
	}
	return false
}

// Cities returns the sorted city names known for country.
func (ix *FacetIndex) Cities(country string) []string {
	return ix.citiesByCountry[country]
}

func (ix *FacetIndex) Countries() []string { return ix.countries }
func (ix *FacetIndex) Cameras() []string   { return ix.cameras }

// CitiesByCountry returns the full country to sorted-cities mapping.
func (ix *FacetIndex) CitiesByCountry() map[string][]string { return ix.citiesByCountry }

// Client fetches the library's facet listing views from the tabular query
// service.
type Client struct {
	http   *http.Client
	base   *url.URL
	logger *slog.Logger
}

// NewClient takes the database base URL, e.g. http://host/search/media_index.
func NewClient(hc *http.Client, base string, logger *slog.Logger) (*Client, error) {
	u, err := url.Parse(strings.TrimRight(base, "/"))
	if err != nil {
		return nil, fmt.Errorf("parse search base url: %w", err)
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Client{http: hc, base: u, logger: logger}, nil
}

// Countries lists the distinct country names known in the library.
func (c *Client) Countries(ctx context.Context) ([]string, error) {
	var rows []struct {
		Country string `json:"country"`
	}
	if err := c.fetchRows(ctx, "v_countries", &rows); err != nil {
		return nil, err
	}
	out := make([]string, 0, len(rows))
	for _, r := range rows {
		if r.Country != "" {
			out = append(out, r.Country)
		}
	}
	return out, nil
}

// CityPairs lists the distinct (country, city) pairs known in the library.
func (c *Client) CityPairs(ctx context.Context) ([]Pair, error) {
	var rows []struct {
		Country string `json:"country"`
		City    string `json:"city"`
	}
	if err := c.fetchRows(ctx, "v_cities", &rows); err != nil {
		return nil, err
	}
	out := make([]Pair, 0, len(rows))
	for _, r := range rows {
		if r.Country == "" || r.City == "" {
			continue
		}
		out = append(out, Pair{Country: r.Country, City: r.City})
	}
	return out, nil
}

// Cameras lists the distinct camera models known in the library.
func (c *Client) Cameras(ctx context.Context) ([]string, error) {
	var rows []struct {
		Camera string `json:"camera"`
	}
	if err := c.fetchRows(ctx, "v_cameras", &rows); err != nil {
		return nil, err
	}
	out := make([]string, 0, len(rows))
	for _, r := range rows {
		if r.Camera != "" {
			out = append(out, r.Camera)
		}
	}
	return out, nil
}

// FetchIndex loads all three listings and builds the index.
func (c *Client) FetchIndex(ctx context.Context) (*FacetIndex, error) {
	countries, err := c.Countries(ctx)
	if err != nil {
		return nil, err
	}
	pairs, err := c.CityPairs(ctx)
	if err != nil {
		return nil, err
	}
	cameras, err := c.Cameras(ctx)
	if err != nil {
		return nil, err
	}
	c.logger.Debug("facet listings fetched",
		"countries", len(countries), "city_pairs", len(pairs), "cameras", len(cameras))
	return BuildFacetIndex(countries, pairs, cameras), nil
}

func (c *Client) fetchRows(ctx context.Context, view string, rows any) error {
	u := *c.base
	u.Path = u.Path + "/" + view + ".json"
	u.RawQuery = url.Values{"_shape": {"objects"}}.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return fmt.Errorf("build %s request: %w", view, err)
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("fetch %s: %w", view, err)
	}
	defer func() { _ = resp.Body.Close() }()
	if resp.StatusCode != http.StatusOK {
		_, _ = io.Copy(io.Discard, resp.Body)
		return fmt.Errorf("fetch %s: unexpected status %d", view, resp.StatusCode)
	}

	var body struct {
		Rows json.RawMessage `json:"rows"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return fmt.Errorf("decode %s: %w", view, err)
	}
	if len(body.Rows) == 0 {
		return nil
	}
	if err := json.Unmarshal(body.Rows, rows); err != nil {
		return fmt.Errorf("decode %s rows: %w", view, err)
	}
	return nil
}

// Package search executes translated queries against the library's tabular
// query endpoint and caches recent result pages in process.
package search

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/cespare/xxhash/v2"
	"github.com/hashicorp/golang-lru/v2/expirable"

	"mediamap/internal/observability"
	"mediamap/internal/query"
)

// Row is one result from the v_search view.
type Row struct {
	Path        string   `json:"path"`
	Filename    string   `json:"filename"`
	Ext         string   `json:"ext"`
	SizeBytes   int64    `json:"size_bytes"`
	Mtime       int64    `json:"mtime"`
	CreatedUTC  string   `json:"created_utc"`
	TakenUTC    string   `json:"taken_utc"`
	Country     string   `json:"country"`
	City        string   `json:"city"`
	Camera      string   `json:"camera"`
	Admin1      string   `json:"admin1"`
	Admin2      string   `json:"admin2"`
	CountryCode string   `json:"country_code"`
	Lat         *float64 `json:"lat"`
	Lon         *float64 `json:"lon"`
	Year        *int     `json:"year"`
}

// TakenOrCreated returns the capture timestamp, falling back to the file
// creation timestamp when the camera never recorded one.
func (r Row) TakenOrCreated() string {
	if r.TakenUTC != "" {
		return r.TakenUTC
	}
	return r.CreatedUTC
}

// ErrUpstream marks a non-success response from the query endpoint. The
// failure is surfaced to the caller as is; there is no retry.
var ErrUpstream = errors.New("search upstream error")

const defaultCacheSize = 256

// Client queries the search view. Identical queries inside the cache TTL are
// served from an in-process LRU keyed by a hash of the encoded parameters;
// the cache is purged wholesale when the library is reindexed.
type Client struct {
	http      *http.Client
	searchURL *url.URL
	cache     *expirable.LRU[uint64, []Row]
	logger    *slog.Logger
}

// New takes the database base URL, e.g. http://host/search/media_index.
// cacheTTL <= 0 disables caching.
func New(hc *http.Client, base string, cacheTTL time.Duration, logger *slog.Logger) (*Client, error) {
	u, err := url.Parse(strings.TrimRight(base, "/") + "/v_search.json")
	if err != nil {
		return nil, fmt.Errorf("parse search base url: %w", err)
	}
	if logger == nil {
		logger = slog.Default()
	}
	c := &Client{http: hc, searchURL: u, logger: logger}
	if cacheTTL > 0 {
		c.cache = expirable.NewLRU[uint64, []Row](defaultCacheSize, nil, cacheTTL)
	}
	return c, nil
}

// Search runs one page query. Rows come back in the endpoint's order
// (descending capture time).
func (c *Client) Search(ctx context.Context, d query.Descriptor) ([]Row, error) {
	encoded := d.Params().Encode()
	key := xxhash.Sum64String(encoded)

	if c.cache != nil {
		if rows, ok := c.cache.Get(key); ok {
			observability.IncSearchCacheHit()
			return rows, nil
		}
		observability.IncSearchCacheMiss()
	}

	u := *c.searchURL
	u.RawQuery = encoded

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("build search request: %w", err)
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	observability.ObserveUpstreamLatency("search", time.Since(start).Seconds())
	if err != nil {
		return nil, fmt.Errorf("search request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil, fmt.Errorf("%w: status %d", ErrUpstream, resp.StatusCode)
	}

	var body struct {
		Rows []Row `json:"rows"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("decode search response: %w", err)
	}

	if c.cache != nil {
		c.cache.Add(key, body.Rows)
	}
	c.logger.Debug("search executed", "rows", len(body.Rows), "query", encoded)
	return body.Rows, nil
}

// Flush drops every cached page. Called when the library index changes.
func (c *Client) Flush() {
	if c.cache != nil {
		c.cache.Purge()
	}
}

package library

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync/atomic"

	"mediamap/internal/geo"
)

// Snapshot is one immutable build of the library-derived data: the facet
// index plus the place points filtered against it.
type Snapshot struct {
	Facets *FacetIndex
	Points []PlacePoint
}

// Catalog owns the current Snapshot and rebuilds it wholesale on demand.
// Readers take the snapshot through an atomic pointer, so a reload can swap
// it while requests are being served.
type Catalog struct {
	client    *Client
	rawPoints *geo.FeatureCollection
	logger    *slog.Logger
	current   atomic.Pointer[Snapshot]
}

func NewCatalog(client *Client, rawPoints *geo.FeatureCollection, logger *slog.Logger) *Catalog {
	if logger == nil {
		logger = slog.Default()
	}
	return &Catalog{client: client, rawPoints: rawPoints, logger: logger}
}

// Reload fetches the facet listings, rebuilds the index and the filtered
// point set, and swaps them in atomically. On error the previous snapshot
// stays in place.
func (c *Catalog) Reload(ctx context.Context) error {
	ix, err := c.client.FetchIndex(ctx)
	if err != nil {
		return fmt.Errorf("reload facet index: %w", err)
	}
	snap := &Snapshot{
		Facets: ix,
		Points: FilterPlacePoints(c.rawPoints, ix, c.logger),
	}
	c.current.Store(snap)
	c.logger.Info("library catalog reloaded",
		"countries", len(ix.Countries()), "points", len(snap.Points))
	return nil
}

// Install replaces the current snapshot directly, for callers that assemble
// one without a facet service (tools, tests).
func (c *Catalog) Install(s *Snapshot) {
	c.current.Store(s)
}

var ErrNotLoaded = errors.New("library catalog not loaded")

// Snapshot returns the current build, or ErrNotLoaded before the first
// successful Reload.
func (c *Catalog) Snapshot() (*Snapshot, error) {
	if s := c.current.Load(); s != nil {
		return s, nil
	}
	return nil, ErrNotLoaded
}

// Ready reports whether a snapshot is available.
func (c *Catalog) Ready() bool {
	return c.current.Load() != nil
}

package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"net/http"
	"strconv"
	"strings"

	"mediamap/internal/library"
	"mediamap/internal/logger"
	"mediamap/internal/media"
	"mediamap/internal/query"
	"mediamap/internal/resolver"
	"mediamap/internal/search"
	"mediamap/internal/state"
)

// Searcher runs one translated page query.
type Searcher interface {
	Search(ctx context.Context, d query.Descriptor) ([]search.Row, error)
}

// SnapshotStore persists per-session filter state.
type SnapshotStore interface {
	Load(ctx context.Context, session string) (state.FilterState, error)
	Save(ctx context.Context, session string, st state.FilterState) error
	Delete(ctx context.Context, session string) error
}

// ClickResolver maps a click to a country and nearest library city.
type ClickResolver interface {
	ResolveClick(lat, lon float64) (resolver.Resolution, bool)
}

type Handler struct {
	Logger   *slog.Logger
	Catalog  *library.Catalog
	Resolver ClickResolver
	Store    SnapshotStore
	Search   Searcher
	Links    media.LinkBuilder
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, code int, msg string) {
	writeJSON(w, code, map[string]string{"error": msg})
}

// loadState restores the session snapshot. Anything unusable collapses to
// defaults; a missing snapshot is the normal first-visit case.
func (h *Handler) loadState(ctx context.Context, session string) state.FilterState {
	st, err := h.Store.Load(ctx, session)
	if err != nil {
		if !errors.Is(err, state.ErrNoSnapshot) {
			h.Logger.WarnContext(ctx, "snapshot load failed, using defaults", "err", err)
		}
		return state.FilterState{}
	}
	return st
}

// Facets serves the library's facet listings for UI autocomplete.
func (h *Handler) Facets(w http.ResponseWriter, r *http.Request) {
	snap, err := h.Catalog.Snapshot()
	if err != nil {
		writeError(w, http.StatusServiceUnavailable, "library catalog not loaded")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"countries":         snap.Facets.Countries(),
		"cities_by_country": snap.Facets.CitiesByCountry(),
		"cameras":           snap.Facets.Cameras(),
	})
}

type resolutionPayload struct {
	Country        string `json:"country"`
	City           string `json:"city,omitempty"`
	CityDistanceKm *int   `json:"city_distance_km,omitempty"`
}

func toPayload(res resolver.Resolution) resolutionPayload {
	p := resolutionPayload{Country: res.Country}
	if res.HasCity {
		p.City = res.City
		// rounded for display only
		km := int(math.Round(res.CityDistanceKm))
		p.CityDistanceKm = &km
	}
	return p
}

func parseCoord(r *http.Request, name string, min, max float64) (float64, error) {
	raw := strings.TrimSpace(r.URL.Query().Get(name))
	if raw == "" {
		return 0, fmt.Errorf("missing required parameter: %s", name)
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", name, err)
	}
	if v < min || v > max {
		return 0, fmt.Errorf("%s must be in [%v,%v]", name, min, max)
	}
	return v, nil
}

// Resolve answers a map click without touching filter state.
func (h *Handler) Resolve(w http.ResponseWriter, r *http.Request) {
	lat, err := parseCoord(r, "lat", -90, 90)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	lon, err := parseCoord(r, "lon", -180, 180)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	res, ok := h.Resolver.ResolveClick(lat, lon)
	if !ok {
		writeJSON(w, http.StatusOK, map[string]any{"resolved": false})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"resolved":   true,
		"resolution": toPayload(res),
	})
}

// Filters returns the session's current filter state.
func (h *Handler) Filters(w http.ResponseWriter, r *http.Request) {
	session := sessionID(w, r)
	ctx := logger.WithSession(r.Context(), session)
	writeJSON(w, http.StatusOK, map[string]any{
		"state": h.loadState(ctx, session),
	})
}

type intentRequest struct {
	Kind  state.Kind `json:"kind"`
	Field string     `json:"field,omitempty"`
	Value string     `json:"value,omitempty"`
	Lat   *float64   `json:"lat,omitempty"`
	Lon   *float64   `json:"lon,omitempty"`
}

var validKinds = map[state.Kind]bool{
	state.KindSetField: true,
	state.KindMapClick: true,
	state.KindClearMap: true,
	state.KindReset:    true,
	state.KindPrevPage: true,
	state.KindNextPage: true,
	state.KindSearch:   true,
}

// Intent applies one user interaction to the session's filter state and
// persists the result. Every mutation goes through here, so the snapshot in
// Redis always matches what the engine last produced.
func (h *Handler) Intent(w http.ResponseWriter, r *http.Request) {
	session := sessionID(w, r)

	var req intentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid intent body")
		return
	}
	if !validKinds[req.Kind] {
		writeError(w, http.StatusBadRequest, "unknown intent kind")
		return
	}

	ctx := logger.WithSession(r.Context(), session)
	cur := h.loadState(ctx, session)
	in := state.Intent{Kind: req.Kind, Field: req.Field, Value: req.Value}

	var resPayload any
	if req.Kind == state.KindMapClick {
		if req.Lat == nil || req.Lon == nil {
			writeError(w, http.StatusBadRequest, "map_click requires lat and lon")
			return
		}
		res, ok := h.Resolver.ResolveClick(*req.Lat, *req.Lon)
		if !ok {
			// click outside every country is a no-op
			writeJSON(w, http.StatusOK, map[string]any{"state": cur, "resolved": false})
			return
		}
		resPayload = toPayload(res)
		in.ResolvedCountry = res.Country
		if res.HasCity {
			in.ResolvedCity = res.City
		}
		// the selection invariant: only library-known values enter the
		// state, and an unloaded catalog vouches for nothing
		if snap, err := h.Catalog.Snapshot(); err != nil || !snap.Facets.HasCountry(res.Country) {
			writeJSON(w, http.StatusOK, map[string]any{
				"state": cur, "resolved": true, "resolution": resPayload,
			})
			return
		}
	}

	next := state.Apply(cur, in)

	if req.Kind == state.KindReset {
		if err := h.Store.Delete(ctx, session); err != nil {
			h.Logger.WarnContext(ctx, "snapshot delete failed", "err", err)
		}
	} else if err := h.Store.Save(ctx, session, next); err != nil {
		h.Logger.WarnContext(ctx, "snapshot save failed", "err", err)
	}

	out := map[string]any{"state": next}
	if resPayload != nil {
		out["resolved"] = true
		out["resolution"] = resPayload
	}
	writeJSON(w, http.StatusOK, out)
}

type resultItem struct {
	search.Row
	MediaKind   string `json:"media_kind,omitempty"`
	TakenAt     string `json:"taken_at,omitempty"`
	PreviewURL  string `json:"preview_url"`
	DownloadURL string `json:"download_url"`
	SMBURL      string `json:"smb_url,omitempty"`
}

// SearchPage translates the session's filter state and runs the upstream
// query. Upstream failure is surfaced as is; nothing is retried and no page
// state changes.
func (h *Handler) SearchPage(w http.ResponseWriter, r *http.Request) {
	session := sessionID(w, r)
	ctx := logger.WithSession(r.Context(), session)
	st := h.loadState(ctx, session)
	d := query.FromState(st)

	rows, err := h.Search.Search(ctx, d)
	if err != nil {
		h.Logger.ErrorContext(ctx, "search failed", "err", err)
		writeError(w, http.StatusBadGateway, "search query failed")
		return
	}

	items := make([]resultItem, 0, len(rows))
	for _, row := range rows {
		item := resultItem{
			Row:         row,
			MediaKind:   media.Kind(row.Ext),
			TakenAt:     row.TakenOrCreated(),
			PreviewURL:  h.Links.Preview(row.Path),
			DownloadURL: h.Links.Download(row.Path),
		}
		if smb, ok := h.Links.SMB(row.Path); ok {
			item.SMBURL = smb
		}
		items = append(items, item)
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"page":      d.Page,
		"page_size": query.PageSize,
		"count":     len(items),
		"rows":      items,
	})
}

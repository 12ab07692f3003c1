package library

import (
	"context"
	"encoding/json"
	"testing"

	"mediamap/internal/geo"
)

func pointFeature(props map[string]any, lon, lat float64) geo.Feature {
	coords, _ := json.Marshal([]float64{lon, lat})
	return geo.Feature{
		Type:       "Feature",
		Properties: props,
		Geometry:   json.RawMessage(`{"type":"Point","coordinates":` + string(coords) + `}`),
	}
}

func TestFilterPlacePoints_LibraryMembership(t *testing.T) {
	// library knows only (CountryA, City1)
	ix := BuildFacetIndex(nil, []Pair{{"CountryA", "City1"}}, nil)

	fc := &geo.FeatureCollection{Type: "FeatureCollection", Features: []geo.Feature{
		pointFeature(map[string]any{"NAME": "City1", "ADM0NAME": "CountryA"}, 10, 20),
		pointFeature(map[string]any{"NAME": "City2", "ADM0NAME": "CountryA"}, 11, 21),
		pointFeature(map[string]any{"NAME": "City1", "ADM0NAME": "CountryB"}, 12, 22),
	}}

	kept := FilterPlacePoints(fc, ix, nil)
	if len(kept) != 1 {
		t.Fatalf("kept %d points, want 1: %+v", len(kept), kept)
	}
	p := kept[0]
	if p.Country != "CountryA" || p.City != "City1" || p.Lon != 10 || p.Lat != 20 {
		t.Fatalf("unexpected point: %+v", p)
	}
}

func TestFilterPlacePoints_AttributeFallbackAndDrops(t *testing.T) {
	ix := BuildFacetIndex(nil, []Pair{
		{"Sweden", "Uppsala"},
		{"Japan", "Tokyo"},
	}, nil)

	fc := &geo.FeatureCollection{Type: "FeatureCollection", Features: []geo.Feature{
		// lowercase name key, country via SOV0NAME fallback
		pointFeature(map[string]any{"name": "Tokyo", "SOV0NAME": "Japan"}, 139.65, 35.68),
		// country via COUNTRY fallback
		pointFeature(map[string]any{"NAME": "Uppsala", "COUNTRY": "Sweden"}, 17.64, 59.86),
		// missing city under every key
		pointFeature(map[string]any{"ADM0NAME": "Sweden"}, 1, 1),
		// missing country under every key
		pointFeature(map[string]any{"NAME": "Uppsala"}, 1, 1),
		// library pair but unusable geometry
		{Type: "Feature",
			Properties: map[string]any{"NAME": "Uppsala", "ADM0NAME": "Sweden"},
			Geometry:   json.RawMessage(`{"type":"Point","coordinates":["x"]}`)},
	}}

	kept := FilterPlacePoints(fc, ix, nil)
	if len(kept) != 2 {
		t.Fatalf("kept %d points, want 2: %+v", len(kept), kept)
	}
	if kept[0].City != "Tokyo" || kept[1].City != "Uppsala" {
		t.Fatalf("unexpected order or points: %+v", kept)
	}
}

func TestCatalog_ReloadAndSnapshot(t *testing.T) {
	srv := facetServer(t)
	client, err := NewClient(srv.Client(), srv.URL+"/search/media_index", nil)
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}

	raw := &geo.FeatureCollection{Type: "FeatureCollection", Features: []geo.Feature{
		pointFeature(map[string]any{"NAME": "Tokyo", "ADM0NAME": "Japan"}, 139.65, 35.68),
		pointFeature(map[string]any{"NAME": "Osaka", "ADM0NAME": "Japan"}, 135.5, 34.69),
	}}

	cat := NewCatalog(client, raw, nil)
	if cat.Ready() {
		t.Fatal("catalog should not be ready before reload")
	}
	if _, err := cat.Snapshot(); err == nil {
		t.Fatal("expected ErrNotLoaded before reload")
	}

	if err := cat.Reload(context.Background()); err != nil {
		t.Fatalf("Reload: %v", err)
	}
	snap, err := cat.Snapshot()
	if err != nil {
		t.Fatalf("Snapshot: %v", err)
	}
	// only Tokyo is a library pair in the fixture
	if len(snap.Points) != 1 || snap.Points[0].City != "Tokyo" {
		t.Fatalf("unexpected points: %+v", snap.Points)
	}
	if !cat.Ready() {
		t.Fatal("catalog should be ready after reload")
	}
}

package config

import (
	"testing"
	"time"
)

func TestFromEnv_Defaults(t *testing.T) {
	cfg := FromEnv()
	if cfg.Addr != ":8090" {
		t.Fatalf("Addr = %q", cfg.Addr)
	}
	if cfg.SnapshotTTL != 365*24*time.Hour {
		t.Fatalf("SnapshotTTL = %v", cfg.SnapshotTTL)
	}
	if cfg.SearchDBURL() != "http://localhost:8001/search/media_index" {
		t.Fatalf("SearchDBURL = %q", cfg.SearchDBURL())
	}
}

func TestFromEnv_Overrides(t *testing.T) {
	t.Setenv("ADDR", ":9000")
	t.Setenv("SEARCH_BASE_URL", "http://nas/search/")
	t.Setenv("SEARCH_DB", "photos")
	t.Setenv("SNAPSHOT_TTL", "48h")
	t.Setenv("KAFKA_ENABLED", "true")
	t.Setenv("LOG_CONSOLE", "yes")

	cfg := FromEnv()
	if cfg.Addr != ":9000" {
		t.Fatalf("Addr = %q", cfg.Addr)
	}
	if cfg.SearchDBURL() != "http://nas/search/photos" {
		t.Fatalf("SearchDBURL = %q", cfg.SearchDBURL())
	}
	if cfg.SnapshotTTL != 48*time.Hour {
		t.Fatalf("SnapshotTTL = %v", cfg.SnapshotTTL)
	}
	if !cfg.Kafka.Enabled || !cfg.LogConsole {
		t.Fatalf("bool overrides not applied: %+v", cfg)
	}
}

func TestFromEnv_BadValuesFallBack(t *testing.T) {
	t.Setenv("SNAPSHOT_TTL", "soon")
	t.Setenv("KAFKA_ENABLED", "maybe")

	cfg := FromEnv()
	if cfg.SnapshotTTL != 365*24*time.Hour {
		t.Fatalf("SnapshotTTL = %v", cfg.SnapshotTTL)
	}
	if cfg.Kafka.Enabled {
		t.Fatal("unparseable bool must keep default")
	}
}

// Package config reads service configuration from the environment.
package config

import (
	"os"
	"path/filepath"
	"strings"
	"time"
)

type KafkaCfg struct {
	Enabled bool
	Brokers string
	Topic   string
	GroupID string
}

type Config struct {
	Addr       string
	LogLevel   string
	LogConsole bool

	// upstream tabular query service, e.g. http://localhost:8001/search
	SearchBaseURL string
	SearchDB      string

	// geometry datasets, loaded once at startup
	GeodataDir string

	RedisAddr   string
	SnapshotTTL time.Duration

	SearchCacheTTL time.Duration

	// the share directory sits under UnixPrefix, so the path-derived part
	// of an smb:// link already starts with it
	SMBHost    string
	UnixPrefix string

	Kafka KafkaCfg
}

func FromEnv() Config {
	return Config{
		Addr:       getenv("ADDR", ":8090"),
		LogLevel:   getenv("LOG_LEVEL", "info"),
		LogConsole: getbool("LOG_CONSOLE", false),

		SearchBaseURL: getenv("SEARCH_BASE_URL", "http://localhost:8001/search"),
		SearchDB:      getenv("SEARCH_DB", "media_index"),

		GeodataDir: getenv("GEODATA_DIR", "./data"),

		RedisAddr:   getenv("REDIS_ADDR", "localhost:6379"),
		SnapshotTTL: getduration("SNAPSHOT_TTL", 365*24*time.Hour),

		SearchCacheTTL: getduration("SEARCH_CACHE_TTL", 30*time.Second),

		SMBHost:    getenv("SMB_HOST", "raspberrypi.local"),
		UnixPrefix: getenv("UNIX_PREFIX", "/srv/mergerfs/"),

		Kafka: KafkaCfg{
			Enabled: getbool("KAFKA_ENABLED", false),
			Brokers: getenv("KAFKA_BROKERS", "localhost:9092"),
			Topic:   getenv("KAFKA_TOPIC", "media-reindex"),
			GroupID: getenv("KAFKA_GROUP_ID", "mediamap"),
		},
	}
}

// SearchDBURL is the database base for facet and search views.
func (c Config) SearchDBURL() string {
	return strings.TrimRight(c.SearchBaseURL, "/") + "/" + c.SearchDB
}

func (c Config) CountriesPath() string {
	return filepath.Join(c.GeodataDir, "countries.geojson")
}

func (c Config) CitiesPath() string {
	return filepath.Join(c.GeodataDir, "cities.geojson")
}

func getenv(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}

func getbool(k string, def bool) bool {
	if v := os.Getenv(k); v != "" {
		switch strings.ToLower(strings.TrimSpace(v)) {
		case "1", "t", "true", "y", "yes":
			return true
		case "0", "f", "false", "n", "no":
			return false
		}
	}
	return def
}

func getduration(k string, def time.Duration) time.Duration {
	if v := os.Getenv(k); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return def
}

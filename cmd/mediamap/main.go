package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"mediamap/internal/config"
	"mediamap/internal/geo"
	"mediamap/internal/invalidation/kafkaconsumer"
	"mediamap/internal/library"
	"mediamap/internal/logger"
	"mediamap/internal/media"
	"mediamap/internal/observability"
	"mediamap/internal/resolver"
	"mediamap/internal/search"
	"mediamap/internal/server"
	"mediamap/internal/state"
)

var Version = "dev"

func main() {
	os.Exit(run())
}

// reindexRefresher is what a reindex event triggers: drop cached result
// pages, then rebuild the facet catalog from the fresh index.
type reindexRefresher struct {
	catalog *library.Catalog
	search  *search.Client
}

func (r reindexRefresher) Refresh(ctx context.Context) error {
	r.search.Flush()
	return r.catalog.Reload(ctx)
}

func run() int {
	_ = godotenv.Load()
	cfg := config.FromEnv()

	zl := logger.Build(logger.Config{
		Level:     cfg.LogLevel,
		Console:   cfg.LogConsole,
		Component: "mediamap",
	}, os.Stdout)
	appLog := logger.NewSlog(&zl)

	observability.ExposeBuildInfo(Version)
	appLog.Info("starting mediamap",
		"addr", cfg.Addr,
		"version", Version,
		"search", cfg.SearchDBURL(),
		"geodata", cfg.GeodataDir)

	countries, err := geo.LoadFeatureCollection(cfg.CountriesPath())
	if err != nil {
		appLog.Error("load country outlines", "err", err)
		return 1
	}
	cities, err := geo.LoadFeatureCollection(cfg.CitiesPath())
	if err != nil {
		appLog.Error("load city points", "err", err)
		return 1
	}

	httpClient := &http.Client{Timeout: 15 * time.Second}

	libClient, err := library.NewClient(httpClient, cfg.SearchDBURL(), appLog)
	if err != nil {
		appLog.Error("library client setup", "err", err)
		return 1
	}
	catalog := library.NewCatalog(libClient, cities, appLog)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// first load is best effort: the endpoint may come up after us, and
	// /readyz stays 503 until a reload succeeds
	if err := catalog.Reload(ctx); err != nil {
		appLog.Warn("initial catalog load failed, serving degraded", "err", err)
	}

	searchClient, err := search.New(httpClient, cfg.SearchDBURL(), cfg.SearchCacheTTL, appLog)
	if err != nil {
		appLog.Error("search client setup", "err", err)
		return 1
	}

	store, err := state.NewStore(ctx, cfg.RedisAddr, cfg.SnapshotTTL)
	if err != nil {
		appLog.Error("redis connect", "err", err)
		return 1
	}
	defer store.Close()

	handler := &server.Handler{
		Logger:   appLog,
		Catalog:  catalog,
		Resolver: resolver.New(countries, catalog, appLog),
		Store:    store,
		Search:   searchClient,
		Links: media.LinkBuilder{
			SMBHost:    cfg.SMBHost,
			UnixPrefix: cfg.UnixPrefix,
		},
	}

	if cfg.Kafka.Enabled {
		consumer := kafkaconsumer.New(
			kafkaconsumer.NewConfig(cfg.Kafka.Brokers, cfg.Kafka.Topic, cfg.Kafka.GroupID),
			appLog,
			reindexRefresher{catalog: catalog, search: searchClient},
		)
		go func() {
			if err := consumer.Start(ctx); err != nil {
				appLog.Error("reindex consumer stopped", "err", err)
			}
		}()
	}

	if err := server.Run(ctx, cfg, appLog, handler); err != nil {
		appLog.Error("server exited with error", "err", err)
		return 1
	}
	appLog.Info("server stopped")
	return 0
}

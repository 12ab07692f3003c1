// geocheck resolves a single coordinate against the country outlines and the
// library's city points, printing what a map click at that spot would select.
package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/joho/godotenv"

	"mediamap/internal/config"
	"mediamap/internal/geo"
	"mediamap/internal/library"
	"mediamap/internal/logger"
	"mediamap/internal/resolver"
)

func main() {
	os.Exit(run())
}

func run() int {
	_ = godotenv.Load()
	cfg := config.FromEnv()

	lat := flag.Float64("lat", 0, "latitude of the click")
	lon := flag.Float64("lon", 0, "longitude of the click")
	geodata := flag.String("geodata", cfg.GeodataDir, "directory with countries.geojson and cities.geojson")
	searchURL := flag.String("search", cfg.SearchDBURL(), "tabular query endpoint base")
	flag.Parse()

	cfg.GeodataDir = *geodata

	zl := logger.Build(logger.Config{Level: "warn", Console: true, Component: "geocheck"}, os.Stderr)
	log := logger.NewSlog(&zl)

	countries, err := geo.LoadFeatureCollection(cfg.CountriesPath())
	if err != nil {
		fmt.Fprintf(os.Stderr, "load countries: %v\n", err)
		return 1
	}
	cities, err := geo.LoadFeatureCollection(cfg.CitiesPath())
	if err != nil {
		fmt.Fprintf(os.Stderr, "load cities: %v\n", err)
		return 1
	}

	client, err := library.NewClient(&http.Client{Timeout: 15 * time.Second}, *searchURL, log)
	if err != nil {
		fmt.Fprintf(os.Stderr, "library client: %v\n", err)
		return 1
	}
	catalog := library.NewCatalog(client, cities, log)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := catalog.Reload(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "load facet catalog: %v\n", err)
		return 1
	}

	res, ok := resolver.New(countries, catalog, log).ResolveClick(*lat, *lon)
	if !ok {
		fmt.Printf("(%.5f, %.5f): no country\n", *lat, *lon)
		return 0
	}
	if res.HasCity {
		fmt.Printf("(%.5f, %.5f): %s, nearest library city %s (%.1f km)\n",
			*lat, *lon, res.Country, res.City, res.CityDistanceKm)
	} else {
		fmt.Printf("(%.5f, %.5f): %s, no library city\n", *lat, *lon, res.Country)
	}
	return 0
}

// Command catalog-snapshot downloads the courier reference catalogs (service
// types, towns, location types) and writes them as a gzip-compressed JSON
// snapshot. Storefronts that cannot reach the courier API directly serve
// checkout selects from the snapshot instead.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"time"

	"github.com/go-faster/errors"
	pgzip "github.com/klauspost/pgzip"
	"golang.org/x/sync/errgroup"

	"github.com/zash22/collivery-rates/internal/collivery"
)

// snapshot is the on-disk document: id-to-label maps for each catalog plus
// the time it was taken.
type snapshot struct {
	TakenAt       time.Time      `json:"takenAt"`
	Services      map[int]string `json:"services"`
	Towns         map[int]string `json:"towns"`
	LocationTypes map[int]string `json:"locationTypes"`
}

func main() {
	var (
		colliveryURL string
		token        string
		outFile      string
	)

	flag.StringVar(&colliveryURL, "collivery-url", "https://api.collivery.net", "Collivery API base URL")
	flag.StringVar(&token, "collivery-token", "", "Collivery API token (or MDS_COLLIVERY_TOKEN env)")
	flag.StringVar(&outFile, "out", "catalog-snapshot.json.gz", "output file path")
	flag.Parse()

	if token == "" {
		token = os.Getenv("MDS_COLLIVERY_TOKEN")
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	if err := run(ctx, colliveryURL, token, outFile); err != nil {
		slog.Error("snapshot failed", slog.String("error", err.Error()))
		os.Exit(1)
	}

	slog.Info("snapshot completed successfully", slog.String("file", outFile))
}

func run(ctx context.Context, colliveryURL, token, outFile string) error {
	client := collivery.NewClient(collivery.Config{
		BaseURL: colliveryURL,
		Token:   token,
		Timeout: 30 * time.Second,
	})

	slog.Info("fetching catalogs", slog.String("url", colliveryURL))

	snap := snapshot{TakenAt: time.Now().UTC()}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		services, err := client.Services(gctx)
		if err != nil {
			return errors.Wrap(err, "fetch services")
		}
		snap.Services = make(map[int]string, len(services))
		for _, svc := range services {
			snap.Services[svc.ID] = svc.Title
		}
		return nil
	})
	g.Go(func() error {
		towns, err := client.Towns(gctx)
		if err != nil {
			return errors.Wrap(err, "fetch towns")
		}
		snap.Towns = towns
		return nil
	})
	g.Go(func() error {
		locationTypes, err := client.LocationTypes(gctx)
		if err != nil {
			return errors.Wrap(err, "fetch location types")
		}
		snap.LocationTypes = locationTypes
		return nil
	})
	if err := g.Wait(); err != nil {
		return err
	}

	slog.Info("catalogs fetched",
		slog.Int("services", len(snap.Services)),
		slog.Int("towns", len(snap.Towns)),
		slog.Int("location_types", len(snap.LocationTypes)),
	)

	if err := writeSnapshot(outFile, snap); err != nil {
		return errors.Wrap(err, "write snapshot")
	}

	return verifySnapshot(outFile, snap)
}

func writeSnapshot(path string, snap snapshot) error {
	f, err := os.Create(path)
	if err != nil {
		return errors.Wrapf(err, "create %s", path)
	}
	defer func() { _ = f.Close() }()

	gz := pgzip.NewWriter(f)
	if err := json.NewEncoder(gz).Encode(snap); err != nil {
		return errors.Wrap(err, "encode snapshot")
	}
	if err := gz.Close(); err != nil {
		return errors.Wrap(err, "flush gzip")
	}
	return f.Close()
}

// verifySnapshot re-reads the written file and checks the catalog sizes
// match what was fetched.
func verifySnapshot(path string, want snapshot) error {
	f, err := os.Open(path)
	if err != nil {
		return errors.Wrapf(err, "open %s", path)
	}
	defer func() { _ = f.Close() }()

	gz, err := pgzip.NewReader(f)
	if err != nil {
		return errors.Wrap(err, "create gzip reader")
	}
	defer func() { _ = gz.Close() }()

	var got snapshot
	if err := json.NewDecoder(gz).Decode(&got); err != nil {
		return errors.Wrap(err, "decode snapshot")
	}

	if len(got.Services) != len(want.Services) ||
		len(got.Towns) != len(want.Towns) ||
		len(got.LocationTypes) != len(want.LocationTypes) {
		return errors.New("snapshot verification failed: catalog sizes do not match")
	}

	slog.Info("snapshot verified")
	return nil
}

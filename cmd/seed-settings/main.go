// Command seed-settings fetches the live courier service catalog and creates
// a configuration row for every service that does not have one yet, so a
// fresh deployment offers all services with the default markup.
package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"time"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"

	"github.com/zash22/collivery-rates/internal/collivery"
	"github.com/zash22/collivery-rates/internal/domain/rate"
	"github.com/zash22/collivery-rates/internal/storage/postgres"
)

func main() {
	var (
		databaseURL   string
		colliveryURL  string
		token         string
		markupPercent string
	)

	flag.StringVar(&databaseURL, "database-url", "", "PostgreSQL connection URL (or DATABASE_URL env)")
	flag.StringVar(&colliveryURL, "collivery-url", "https://api.collivery.net", "Collivery API base URL")
	flag.StringVar(&token, "collivery-token", "", "Collivery API token (or MDS_COLLIVERY_TOKEN env)")
	flag.StringVar(&markupPercent, "markup", "10", "default markup percentage for new services")
	flag.Parse()

	if databaseURL == "" {
		databaseURL = os.Getenv("DATABASE_URL")
	}
	if databaseURL == "" {
		slog.Error("database URL is required: set --database-url or DATABASE_URL")
		os.Exit(1)
	}
	if token == "" {
		token = os.Getenv("MDS_COLLIVERY_TOKEN")
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	if err := run(ctx, databaseURL, colliveryURL, token, markupPercent); err != nil {
		slog.Error("seed failed", slog.String("error", err.Error()))
		os.Exit(1)
	}

	slog.Info("seed completed successfully")
}

func run(ctx context.Context, databaseURL, colliveryURL, token, markupPercent string) error {
	markup, err := decimal.NewFromString(markupPercent)
	if err != nil {
		return errors.Wrap(err, "parse markup")
	}

	slog.Info("connecting to database")

	pool, err := postgres.NewPool(ctx, databaseURL)
	if err != nil {
		return errors.Wrap(err, "connect to database")
	}
	defer pool.Close()

	slog.Info("running migrations")

	if err := postgres.RunMigrations(ctx, pool); err != nil {
		return errors.Wrap(err, "run migrations")
	}

	client := collivery.NewClient(collivery.Config{
		BaseURL: colliveryURL,
		Token:   token,
		Timeout: 30 * time.Second,
	})

	slog.Info("fetching service catalog", slog.String("url", colliveryURL))

	services, err := client.Services(ctx)
	if err != nil {
		return errors.Wrap(err, "fetch service catalog")
	}

	repo := postgres.NewSettingsRepository(pool)

	settings, err := repo.Load(ctx)
	if err != nil {
		return errors.Wrap(err, "load existing settings")
	}

	slog.Info("seeding services", slog.Int("count", len(services)))

	for _, svc := range services {
		if existing, ok := settings.Services[svc.ID]; ok {
			// Keep operator tuning, only refresh the catalog title.
			existing.Title = svc.Title
			if err := repo.UpsertService(ctx, existing); err != nil {
				return err
			}
			slog.Info("refreshed service", slog.Int("id", svc.ID), slog.String("title", svc.Title))
			continue
		}

		if err := repo.UpsertService(ctx, rate.ServiceOption{
			ID:            svc.ID,
			Title:         svc.Title,
			Enabled:       true,
			MarkupPercent: markup,
		}); err != nil {
			return err
		}
		slog.Info("seeded service", slog.Int("id", svc.ID), slog.String("title", svc.Title))
	}

	return nil
}

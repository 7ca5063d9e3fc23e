package postgres

import (
	"context"

	"github.com/go-faster/errors"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/zash22/collivery-rates/internal/domain/rate"
)

// SettingsRepository loads and mutates the operator configuration consulted
// on every rate calculation.
type SettingsRepository struct {
	pool *pgxpool.Pool
}

// NewSettingsRepository returns a SettingsRepository that uses the given pool.
func NewSettingsRepository(pool *pgxpool.Pool) *SettingsRepository {
	return &SettingsRepository{pool: pool}
}

// Load reads the delivery policy singleton and all per-service options. A
// missing delivery row falls back to schema defaults so a fresh database is
// still usable.
func (r *SettingsRepository) Load(ctx context.Context) (rate.Settings, error) {
	settings := rate.Settings{
		Services: make(map[int]rate.ServiceOption),
	}

	err := r.pool.QueryRow(ctx, `
		SELECT risk_cover, round_up, free_enabled, free_wording, free_min_total, free_local_only
		FROM delivery_settings
		WHERE singleton`,
	).Scan(
		&settings.RiskCover,
		&settings.RoundUp,
		&settings.Free.Enabled,
		&settings.Free.Wording,
		&settings.Free.MinTotal,
		&settings.Free.LocalOnly,
	)
	if err != nil && !errors.Is(err, pgx.ErrNoRows) {
		return rate.Settings{}, errors.Wrap(err, "load delivery settings")
	}

	rows, err := r.pool.Query(ctx, `
		SELECT service_id, title, enabled, markup_percent, wording
		FROM service_settings
		ORDER BY service_id`,
	)
	if err != nil {
		return rate.Settings{}, errors.Wrap(err, "load service settings")
	}
	defer rows.Close()

	for rows.Next() {
		var opt rate.ServiceOption
		if err := rows.Scan(&opt.ID, &opt.Title, &opt.Enabled, &opt.MarkupPercent, &opt.Wording); err != nil {
			return rate.Settings{}, errors.Wrap(err, "scan service settings")
		}
		settings.Services[opt.ID] = opt
	}
	if err := rows.Err(); err != nil {
		return rate.Settings{}, errors.Wrap(err, "iterate service settings")
	}

	return settings, nil
}

// UpsertService creates or updates the configuration row for one service.
func (r *SettingsRepository) UpsertService(ctx context.Context, opt rate.ServiceOption) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO service_settings (service_id, title, enabled, markup_percent, wording, updated_at)
		VALUES ($1, $2, $3, $4, $5, now())
		ON CONFLICT (service_id) DO UPDATE
		SET title = EXCLUDED.title,
		    enabled = EXCLUDED.enabled,
		    markup_percent = EXCLUDED.markup_percent,
		    wording = EXCLUDED.wording,
		    updated_at = now()`,
		opt.ID, opt.Title, opt.Enabled, opt.MarkupPercent, opt.Wording,
	)
	if err != nil {
		return errors.Wrapf(err, "upsert service %d", opt.ID)
	}
	return nil
}

// UpdateDelivery replaces the store-wide delivery policy.
func (r *SettingsRepository) UpdateDelivery(ctx context.Context, riskCover, roundUp bool, free rate.FreeDelivery) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO delivery_settings
			(singleton, risk_cover, round_up, free_enabled, free_wording, free_min_total, free_local_only, updated_at)
		VALUES (TRUE, $1, $2, $3, $4, $5, $6, now())
		ON CONFLICT (singleton) DO UPDATE
		SET risk_cover = EXCLUDED.risk_cover,
		    round_up = EXCLUDED.round_up,
		    free_enabled = EXCLUDED.free_enabled,
		    free_wording = EXCLUDED.free_wording,
		    free_min_total = EXCLUDED.free_min_total,
		    free_local_only = EXCLUDED.free_local_only,
		    updated_at = now()`,
		riskCover, roundUp, free.Enabled, free.Wording, free.MinTotal, free.LocalOnly,
	)
	if err != nil {
		return errors.Wrap(err, "update delivery settings")
	}
	return nil
}

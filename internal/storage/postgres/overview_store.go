// Package postgres provides Postgres-backed persistence implementations.
package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/brandworks/siteprofiler/internal/profile"
)

// OverviewStoreConfig controls the Postgres connection pool used for overview rows.
type OverviewStoreConfig struct {
	DSN             string
	MaxConns        int32
	MinConns        int32
	MaxConnLifetime time.Duration
}

type pgxPool interface {
	Exec(context.Context, string, ...any) (pgconn.CommandTag, error)
	QueryRow(context.Context, string, ...any) pgx.Row
	Query(context.Context, string, ...any) (pgx.Rows, error)
	Close()
}

// OverviewStore persists brand overviews in Postgres.
type OverviewStore struct {
	pool pgxPool
}

// NewOverviewStore creates a Postgres-backed OverviewStore using the provided config.
func NewOverviewStore(ctx context.Context, cfg OverviewStoreConfig) (*OverviewStore, error) {
	if cfg.DSN == "" {
		return nil, fmt.Errorf("database.dsn is required")
	}
	poolCfg, err := pgxpool.ParseConfig(cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("parse postgres dsn: %w", err)
	}
	if cfg.MaxConns > 0 {
		poolCfg.MaxConns = cfg.MaxConns
	}
	if cfg.MinConns > 0 {
		poolCfg.MinConns = cfg.MinConns
	}
	if cfg.MaxConnLifetime > 0 {
		poolCfg.MaxConnLifetime = cfg.MaxConnLifetime
	}
	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("connect postgres: %w", err)
	}
	return &OverviewStore{pool: pool}, nil
}

// NewOverviewStoreWithPool constructs a store from an existing pool (primarily for testing).
func NewOverviewStoreWithPool(pool pgxPool) (*OverviewStore, error) {
	if pool == nil {
		return nil, fmt.Errorf("pool is required")
	}
	return &OverviewStore{pool: pool}, nil
}

// Close releases the underlying pool resources.
func (s *OverviewStore) Close() {
	if s == nil || s.pool == nil {
		return
	}
	s.pool.Close()
}

const overviewColumns = `id, target_id, status, summary, structured_profile, warnings, error_text, created_at, updated_at`

// Get returns the overview for a target, or profile.ErrNotFound when the
// target has never been generated.
func (s *OverviewStore) Get(ctx context.Context, targetID string) (profile.BrandOverview, error) {
	query := `
		SELECT ` + overviewColumns + `
		FROM brand_overviews
		WHERE target_id = $1;
	`
	rec, err := scanOverview(s.pool.QueryRow(ctx, query, targetID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return profile.BrandOverview{}, profile.ErrNotFound
		}
		return profile.BrandOverview{}, fmt.Errorf("get overview: %w", err)
	}
	return rec, nil
}

// TryStart atomically transitions a target into running status. The insert
// wins when no row exists; the conditional update wins when the existing row
// is failed, or complete with force set. A won transition wipes the prior
// run's error text and warnings. When neither applies the row is left
// untouched and the current record is returned with acquired=false, so two
// concurrent requests for the same target resolve to a single run.
func (s *OverviewStore) TryStart(
	ctx context.Context,
	targetID string,
	id string,
	force bool,
	now time.Time,
) (profile.BrandOverview, bool, error) {
	query := `
		INSERT INTO brand_overviews (id, target_id, status, summary, warnings, error_text, created_at, updated_at)
		VALUES ($1, $2, $3, '', NULL, '', $4, $4)
		ON CONFLICT (target_id) DO UPDATE
		SET status = EXCLUDED.status,
			error_text = '',
			warnings = NULL,
			updated_at = EXCLUDED.updated_at
		WHERE brand_overviews.status = $5
			OR (brand_overviews.status = $6 AND $7::boolean)
		RETURNING ` + overviewColumns + `;
	`
	rec, err := scanOverview(s.pool.QueryRow(
		ctx,
		query,
		id,
		targetID,
		profile.StatusRunning,
		now,
		profile.StatusFailed,
		profile.StatusComplete,
		force,
	))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			// Lost the transition; report the row that beat us.
			current, getErr := s.Get(ctx, targetID)
			if getErr != nil {
				return profile.BrandOverview{}, false, fmt.Errorf("load current overview: %w", getErr)
			}
			return current, false, nil
		}
		return profile.BrandOverview{}, false, fmt.Errorf("start overview: %w", err)
	}
	return rec, true, nil
}

// Finish records the terminal outcome of a run and returns the updated row.
func (s *OverviewStore) Finish(
	ctx context.Context,
	targetID string,
	status profile.OverviewStatus,
	summary string,
	structured json.RawMessage,
	warnings []string,
	errText string,
	now time.Time,
) (profile.BrandOverview, error) {
	query := `
		UPDATE brand_overviews
		SET status = $2,
			summary = $3,
			structured_profile = $4,
			warnings = $5,
			error_text = $6,
			updated_at = $7
		WHERE target_id = $1
		RETURNING ` + overviewColumns + `;
	`
	rec, err := scanOverview(s.pool.QueryRow(
		ctx,
		query,
		targetID,
		status,
		summary,
		[]byte(structured),
		warnings,
		errText,
		now,
	))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return profile.BrandOverview{}, profile.ErrNotFound
		}
		return profile.BrandOverview{}, fmt.Errorf("finish overview: %w", err)
	}
	return rec, nil
}

// List retrieves overviews, most recently updated first, with optional status
// filtering.
func (s *OverviewStore) List(
	ctx context.Context,
	status *profile.OverviewStatus,
	limit,
	offset int,
) ([]profile.BrandOverview, error) {
	query := `
		SELECT ` + overviewColumns + `
		FROM brand_overviews
		WHERE ($1::text IS NULL OR status = $1)
		ORDER BY updated_at DESC
		LIMIT $2 OFFSET $3;
	`
	rows, err := s.pool.Query(ctx, query, status, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list overviews: %w", err)
	}
	defer rows.Close()

	var recs []profile.BrandOverview
	for rows.Next() {
		rec, err := scanOverview(rows)
		if err != nil {
			return nil, fmt.Errorf("scan overview row: %w", err)
		}
		recs = append(recs, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate overview rows: %w", err)
	}
	return recs, nil
}

func scanOverview(row pgx.Row) (profile.BrandOverview, error) {
	var (
		rec        profile.BrandOverview
		structured []byte
	)
	err := row.Scan(
		&rec.ID,
		&rec.TargetID,
		&rec.Status,
		&rec.Summary,
		&structured,
		&rec.Warnings,
		&rec.ErrorText,
		&rec.CreatedAt,
		&rec.UpdatedAt,
	)
	if err != nil {
		return profile.BrandOverview{}, err
	}
	if len(structured) > 0 {
		rec.StructuredProfile = json.RawMessage(structured)
	}
	return rec, nil
}

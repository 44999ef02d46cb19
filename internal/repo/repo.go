// Package repo provides database repositories
package repo

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"go-skydata/internal/domain"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// SnapshotRepo archives normalized payloads per source
type SnapshotRepo struct {
	pool *pgxpool.Pool
}

// NewSnapshotRepo creates a new snapshot repository
func NewSnapshotRepo(pool *pgxpool.Pool) *SnapshotRepo {
	return &SnapshotRepo{pool: pool}
}

// Write appends a snapshot for source
func (r *SnapshotRepo) Write(ctx context.Context, source string, payload json.RawMessage) error {
	_, err := r.pool.Exec(ctx,
		"INSERT INTO space_snapshot(source, payload) VALUES ($1,$2)",
		source, payload)
	if err != nil {
		return fmt.Errorf("insert snapshot %s: %w", source, err)
	}
	return nil
}

// GetLatest gets the newest snapshot for a source, or nil when there is none
func (r *SnapshotRepo) GetLatest(ctx context.Context, source string) (*domain.SpaceSnapshot, error) {
	row := r.pool.QueryRow(ctx,
		"SELECT id, source, fetched_at, payload FROM space_snapshot WHERE source = $1 ORDER BY id DESC LIMIT 1",
		source)

	var snap domain.SpaceSnapshot
	err := row.Scan(&snap.ID, &snap.Source, &snap.FetchedAt, &snap.Payload)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("select snapshot %s: %w", source, err)
	}
	return &snap, nil
}

// InitDB initializes database tables
func InitDB(ctx context.Context, pool *pgxpool.Pool) error {
	queries := []string{
		`CREATE TABLE IF NOT EXISTS space_snapshot(
			id BIGSERIAL PRIMARY KEY,
			source TEXT NOT NULL,
			fetched_at TIMESTAMPTZ NOT NULL DEFAULT now(),
			payload JSONB NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS ix_space_snapshot_source
		 ON space_snapshot(source,fetched_at DESC)`,
	}

	for _, q := range queries {
		if _, err := pool.Exec(ctx, q); err != nil {
			return fmt.Errorf("init schema: %w", err)
		}
	}
	return nil
}

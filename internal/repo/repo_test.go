package repo_test

import (
	"context"
	"encoding/json"
	"os"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go-skydata/internal/repo"
)

// setupTestPool connects to SKYDATA_TEST_DATABASE_URL and skips when it is unset or unreachable
func setupTestPool(t *testing.T) *pgxpool.Pool {
	t.Helper()
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}
	dsn := os.Getenv("SKYDATA_TEST_DATABASE_URL")
	if dsn == "" {
		t.Skip("SKYDATA_TEST_DATABASE_URL not set")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		t.Skipf("Skipping test: could not connect to test database: %v", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		t.Skipf("Skipping test: could not ping test database: %v", err)
	}
	require.NoError(t, repo.InitDB(ctx, pool))
	_, err = pool.Exec(ctx, "DELETE FROM space_snapshot WHERE source LIKE 'test_%'")
	require.NoError(t, err)
	t.Cleanup(pool.Close)
	return pool
}

func TestSnapshotRepo_WriteAndGetLatest(t *testing.T) {
	pool := setupTestPool(t)
	r := repo.NewSnapshotRepo(pool)
	ctx := context.Background()

	require.NoError(t, r.Write(ctx, "test_apod", json.RawMessage(`{"title":"first"}`)))
	require.NoError(t, r.Write(ctx, "test_apod", json.RawMessage(`{"title":"second"}`)))

	snap, err := r.GetLatest(ctx, "test_apod")
	require.NoError(t, err)
	require.NotNil(t, snap)
	assert.Equal(t, "test_apod", snap.Source)
	assert.JSONEq(t, `{"title":"second"}`, string(snap.Payload))
	assert.False(t, snap.FetchedAt.IsZero())
}

func TestSnapshotRepo_GetLatestEmpty(t *testing.T) {
	pool := setupTestPool(t)
	r := repo.NewSnapshotRepo(pool)

	snap, err := r.GetLatest(context.Background(), "test_nothing")
	require.NoError(t, err)
	assert.Nil(t, snap)
}

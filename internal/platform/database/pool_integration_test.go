//go:build integration

package database_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"targetkit/internal/platform/config"
	"targetkit/internal/platform/database"
	"targetkit/pkg/testutil/containers"
)

func TestNewMigratesAndReportsHealth(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	pg := containers.SharedPostgres(t)
	ctx := context.Background()

	pool, err := database.New(ctx, config.DatabaseConfig{URL: pg.DSN, MaxOpenConns: 2, MaxIdleConns: 1})
	require.NoError(t, err, "migrations must be re-runnable against a migrated database")
	defer pool.Close()

	assert.NoError(t, pool.Health(ctx))

	var n int
	require.NoError(t, pool.DB().QueryRowContext(ctx, "SELECT count(*) FROM created_activities").Scan(&n))
	assert.Equal(t, 0, n)
}

func TestNewWithoutURL(t *testing.T) {
	pool, err := database.New(context.Background(), config.DatabaseConfig{})

	assert.NoError(t, err)
	assert.Nil(t, pool)
	assert.Error(t, pool.Health(context.Background()))
	assert.NoError(t, pool.Close())
}

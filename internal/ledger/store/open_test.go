package store

import (
	"database/sql"
	"path/filepath"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"targetkit/internal/platform/config"
)

func TestOpen(t *testing.T) {
	t.Run("file is the default", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "ledger.json")
		st, err := Open(config.Ledger{File: path}, Clients{})
		require.NoError(t, err)
		fs, ok := st.(*FileStore)
		require.True(t, ok)
		assert.Equal(t, path, fs.Path())
	})

	t.Run("memory", func(t *testing.T) {
		st, err := Open(config.Ledger{Backend: config.LedgerBackendMemory}, Clients{})
		require.NoError(t, err)
		assert.IsType(t, &InMemoryStore{}, st)
	})

	t.Run("redis uses the key prefix", func(t *testing.T) {
		mr := miniredis.RunT(t)
		client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
		t.Cleanup(func() { _ = client.Close() })

		st, err := Open(config.Ledger{Backend: config.LedgerBackendRedis}, Clients{Redis: client, RedisPrefix: "tk"})
		require.NoError(t, err)
		rs, ok := st.(*RedisStore)
		require.True(t, ok)
		assert.Equal(t, "tk:ledger:created-activities", rs.Key())
	})

	t.Run("postgres wraps the pool", func(t *testing.T) {
		st, err := Open(config.Ledger{Backend: config.LedgerBackendPostgres}, Clients{DB: &sql.DB{}})
		require.NoError(t, err)
		assert.IsType(t, &PostgresStore{}, st)
	})

	t.Run("missing clients", func(t *testing.T) {
		_, err := Open(config.Ledger{Backend: config.LedgerBackendRedis}, Clients{})
		assert.ErrorContains(t, err, "REDIS_URL")
		_, err = Open(config.Ledger{Backend: config.LedgerBackendPostgres}, Clients{})
		assert.ErrorContains(t, err, "DATABASE_URL")
	})

	t.Run("unknown backend", func(t *testing.T) {
		_, err := Open(config.Ledger{Backend: "s3"}, Clients{})
		assert.ErrorContains(t, err, `unknown ledger backend "s3"`)
	})
}

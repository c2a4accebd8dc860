package main

import (
	"context"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"targetkit/internal/platform/config"
	httptransport "targetkit/internal/transport/http"
)

func baseConfig() config.Server {
	return config.Server{
		Environment:    "test",
		RequestTimeout: 5 * time.Second,
		MaxBodyBytes:   1 << 10,
		Ledger:         config.Ledger{Backend: config.LedgerBackendMemory},
		Target: config.Target{
			Tenant:      "acme",
			ClientID:    "client-1",
			AccessToken: "static",
			APIBaseURL:  "http://127.0.0.1:1",
		},
		PropertiesCacheTTL: time.Minute,
	}
}

func serveBuilt(t *testing.T, app *application, cfg config.Server, path string) *httptest.ResponseRecorder {
	t.Helper()
	h := httptransport.NewRouter(httptransport.Dependencies{
		Config:     cfg,
		Logger:     slog.New(slog.DiscardHandler),
		Health:     app.health,
		Settings:   app.settings,
		Offers:     app.offers,
		Activities: app.activities,
		Login:      app.login,
		Sessions:   app.sessions,
	})
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
	return rec
}

func TestBuildWithoutLogin(t *testing.T) {
	cfg := baseConfig()

	app, err := build(context.Background(), cfg, slog.New(slog.DiscardHandler), prometheus.NewRegistry())
	require.NoError(t, err)
	defer app.close()

	assert.Nil(t, app.login)
	assert.Nil(t, app.sessions)
	assert.Equal(t, http.StatusOK, serveBuilt(t, app, cfg, "/api/workspaces").Code)
	assert.Equal(t, http.StatusOK, serveBuilt(t, app, cfg, "/health/ready").Code)
}

func TestBuildWithLoginUsesEphemeralSecret(t *testing.T) {
	cfg := baseConfig()
	cfg.Auth = config.Auth{User: "operator", Password: "pw", SessionTTL: time.Hour}

	app, err := build(context.Background(), cfg, slog.New(slog.DiscardHandler), prometheus.NewRegistry())
	require.NoError(t, err)
	defer app.close()

	require.NotNil(t, app.sessions)
	assert.Equal(t, http.StatusUnauthorized, serveBuilt(t, app, cfg, "/api/workspaces").Code)
}

func TestBuildWithRedisLedger(t *testing.T) {
	mr := miniredis.RunT(t)
	cfg := baseConfig()
	cfg.Ledger.Backend = config.LedgerBackendRedis
	cfg.Redis = config.RedisConfig{URL: "redis://" + mr.Addr(), KeyPrefix: "test:"}
	reg := prometheus.NewRegistry()

	app, err := build(context.Background(), cfg, slog.New(slog.DiscardHandler), reg)
	require.NoError(t, err)
	defer app.close()

	rec := serveBuilt(t, app, cfg, "/health/ready")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ready","checks":{"redis":"up"}}`, rec.Body.String())

	families, err := reg.Gather()
	require.NoError(t, err)
	names := make([]string, 0, len(families))
	for _, f := range families {
		names = append(names, f.GetName())
	}
	assert.Contains(t, names, "targetkit_redis_pool_total_conns")
}

func TestBuildFailsWithoutRedisURL(t *testing.T) {
	cfg := baseConfig()
	cfg.Ledger.Backend = config.LedgerBackendRedis

	_, err := build(context.Background(), cfg, slog.New(slog.DiscardHandler), prometheus.NewRegistry())

	assert.Error(t, err)
}

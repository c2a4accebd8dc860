package main

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	activityhandler "targetkit/internal/activity/handler"
	activityservice "targetkit/internal/activity/service"
	ledgermodels "targetkit/internal/ledger/models"
	ledgerservice "targetkit/internal/ledger/service"
	ledgerstore "targetkit/internal/ledger/store"
	offerhandler "targetkit/internal/offer/handler"
	offerservice "targetkit/internal/offer/service"
	"targetkit/internal/platform/config"
	"targetkit/internal/platform/database"
	"targetkit/internal/platform/health"
	"targetkit/internal/platform/metrics"
	"targetkit/internal/platform/redis"
	"targetkit/internal/platform/tracer"
	"targetkit/internal/property"
	"targetkit/internal/session"
	httptransport "targetkit/internal/transport/http"
	"targetkit/internal/upstream"
	"targetkit/internal/workspace"
	"targetkit/pkg/platform/middleware/auth"
	"targetkit/pkg/secrets"
)

type application struct {
	catalog    *workspace.Catalog
	health     *health.Handler
	settings   *httptransport.ConfigHandler
	offers     *offerhandler.Handler
	activities *activityhandler.Handler
	login      httptransport.RouteRegistrar
	sessions   auth.SessionValidator
	redis      *redis.Client
	db         *database.Pool
}

func build(ctx context.Context, cfg config.Server, log *slog.Logger, reg prometheus.Registerer) (*application, error) {
	app := &application{health: health.New(cfg.Environment)}
	m := metrics.New(reg)

	catalog, err := workspace.LoadFile(cfg.WorkspacesFile)
	if err != nil {
		return nil, fmt.Errorf("load workspaces: %w", err)
	}
	app.catalog = catalog

	clients, err := app.connect(ctx, cfg, reg)
	if err != nil {
		app.close()
		return nil, err
	}
	st, err := ledgerstore.Open(cfg.Ledger, clients)
	if err != nil {
		app.close()
		return nil, err
	}
	ledger := ledgerservice.New(st,
		ledgerservice.WithLogger(log),
		ledgerservice.WithMetrics(m),
	)

	tr := tracer.NewOTel()
	tokens := upstream.NewTokenSource(upstream.TokenConfig{
		TokenURL:     cfg.Target.IMSTokenURL,
		ClientID:     cfg.Target.ClientID,
		ClientSecret: cfg.Target.ClientSecret,
		Tenant:       cfg.Target.Tenant,
		StaticToken:  cfg.Target.AccessToken,
		Timeout:      cfg.Target.TokenTimeout,
	},
		upstream.WithTokenLogger(log),
		upstream.WithTokenMetrics(m),
		upstream.WithTokenTracer(tr),
	)
	client := upstream.NewClient(upstream.ClientConfig{
		BaseURL: cfg.Target.APIBaseURL,
		Tenant:  cfg.Target.Tenant,
		APIKey:  cfg.Target.ClientID,
		Timeout: cfg.Target.Timeout,
	}, tokens,
		upstream.WithLogger(log),
		upstream.WithMetrics(m),
		upstream.WithTracer(tr),
	)

	properties := property.New(client, cfg.PropertiesCacheTTL,
		property.WithLogger(log),
		property.WithMetrics(m),
	)
	resolver := offerservice.NewResolver(client, catalog,
		offerservice.WithResolverLogger(log),
		offerservice.WithResolverMetrics(m),
		offerservice.WithResolverTracer(tr),
	)
	offers := offerservice.New(client, resolver, catalog, offerservice.WithLogger(log))
	owner := ledgermodels.Owner{Tenant: cfg.Target.Tenant, ClientID: cfg.Target.ClientID}
	activities := activityservice.New(client, ledger, properties, catalog, owner, activityservice.WithLogger(log))

	app.settings = httptransport.NewConfigHandler(catalog, cfg.Target, tokens, log)
	app.offers = offerhandler.New(offers, log)
	app.activities = activityhandler.New(activities, log)

	if cfg.Auth.Enabled() {
		secret := cfg.Auth.SessionSecret
		if secret == "" {
			if secret, err = secrets.Generate(); err != nil {
				app.close()
				return nil, err
			}
			log.WarnContext(ctx, "SESSION_SECRET not set; using an ephemeral key, sessions end on restart")
		}
		sessions := session.New(cfg.Auth, session.NewTokenService(secret, cfg.Auth.SessionTTL),
			session.WithLogger(log),
			session.WithMetrics(m),
		)
		app.login = session.NewHandler(sessions, cfg.Auth.SecureCookie, log)
		app.sessions = sessions
	}

	return app, nil
}

// connect opens the redis and postgres clients that are configured and
// registers their readiness checks and pool metrics.
func (app *application) connect(ctx context.Context, cfg config.Server, reg prometheus.Registerer) (ledgerstore.Clients, error) {
	clients := ledgerstore.Clients{RedisPrefix: cfg.Redis.KeyPrefix}

	rdb, err := redis.New(ctx, cfg.Redis)
	if err != nil {
		return clients, fmt.Errorf("connect redis: %w", err)
	}
	if rdb != nil {
		app.redis = rdb
		clients.Redis = rdb.Client
		app.health.RegisterCheck("redis", rdb.Health)
		reg.MustRegister(redis.NewPoolCollector(rdb))
	}

	pool, err := database.New(ctx, cfg.Database)
	if err != nil {
		return clients, fmt.Errorf("connect database: %w", err)
	}
	if pool != nil {
		app.db = pool
		clients.DB = pool.DB()
		app.health.RegisterCheck("database", pool.Health)
		reg.MustRegister(collectors.NewDBStatsCollector(pool.DB(), "targetkit"))
	}
	return clients, nil
}

func (app *application) close() {
	if app.redis != nil {
		_ = app.redis.Close()
	}
	if app.db != nil {
		_ = app.db.Close()
	}
}

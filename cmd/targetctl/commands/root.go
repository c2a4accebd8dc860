package commands

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	ledgerservice "targetkit/internal/ledger/service"
	ledgerstore "targetkit/internal/ledger/store"
	offerservice "targetkit/internal/offer/service"
	"targetkit/internal/platform/config"
	"targetkit/internal/platform/database"
	"targetkit/internal/platform/logger"
	"targetkit/internal/platform/redis"
	"targetkit/internal/upstream"
	"targetkit/internal/workspace"
)

// Runtime holds what the commands operate on. Nil fields are built lazily
// from Config; tests fill them in directly.
type Runtime struct {
	Config  config.Server
	Logger  *slog.Logger
	Catalog *workspace.Catalog
	Ledger  *ledgerservice.Service
	Offers  offerservice.OfferFetcher

	closers []func() error
}

// NewRuntime reads the environment the same way the server does.
func NewRuntime() *Runtime {
	cfg := config.FromEnv()
	return &Runtime{
		Config: cfg,
		Logger: logger.NewWithWriter(os.Stderr, cfg.LogLevel),
	}
}

func (rt *Runtime) catalog() (*workspace.Catalog, error) {
	if rt.Catalog == nil {
		c, err := workspace.LoadFile(rt.Config.WorkspacesFile)
		if err != nil {
			return nil, fmt.Errorf("load workspaces: %w", err)
		}
		rt.Catalog = c
	}
	return rt.Catalog, nil
}

func (rt *Runtime) ledger(ctx context.Context) (*ledgerservice.Service, error) {
	if rt.Ledger != nil {
		return rt.Ledger, nil
	}

	clients := ledgerstore.Clients{RedisPrefix: rt.Config.Redis.KeyPrefix}
	switch rt.Config.Ledger.Backend {
	case config.LedgerBackendRedis:
		rdb, err := redis.New(ctx, rt.Config.Redis)
		if err != nil {
			return nil, err
		}
		if rdb != nil {
			rt.closers = append(rt.closers, rdb.Close)
			clients.Redis = rdb.Client
		}
	case config.LedgerBackendPostgres:
		pool, err := database.New(ctx, rt.Config.Database)
		if err != nil {
			return nil, err
		}
		if pool != nil {
			rt.closers = append(rt.closers, pool.Close)
			clients.DB = pool.DB()
		}
	}

	st, err := ledgerstore.Open(rt.Config.Ledger, clients)
	if err != nil {
		return nil, err
	}
	rt.Ledger = ledgerservice.New(st, ledgerservice.WithLogger(rt.Logger))
	return rt.Ledger, nil
}

func (rt *Runtime) offers() offerservice.OfferFetcher {
	if rt.Offers == nil {
		t := rt.Config.Target
		tokens := upstream.NewTokenSource(upstream.TokenConfig{
			TokenURL:     t.IMSTokenURL,
			ClientID:     t.ClientID,
			ClientSecret: t.ClientSecret,
			Tenant:       t.Tenant,
			StaticToken:  t.AccessToken,
			Timeout:      t.TokenTimeout,
		}, upstream.WithTokenLogger(rt.Logger))
		rt.Offers = upstream.NewClient(upstream.ClientConfig{
			BaseURL: t.APIBaseURL,
			Tenant:  t.Tenant,
			APIKey:  t.ClientID,
			Timeout: t.Timeout,
		}, tokens, upstream.WithLogger(rt.Logger))
	}
	return rt.Offers
}

// Close releases connections opened by the commands.
func (rt *Runtime) Close() {
	for _, c := range rt.closers {
		_ = c()
	}
	rt.closers = nil
}

// NewRootCommand builds the command tree around rt.
func NewRootCommand(rt *Runtime, version string) *cobra.Command {
	root := &cobra.Command{
		Use:   "targetctl",
		Short: "Operate a targetkit deployment from the command line",
		Long: `targetctl reads the same environment as the targetkit server
(TARGET_*, LEDGER_BACKEND, REDIS_URL, DATABASE_URL, WORKSPACES_FILE, ...).

It can list the configured workspaces, inspect or edit the ledger of
activities created by this app, and resolve an offer across workspaces.`,
		Version:       version,
		SilenceErrors: true,
		SilenceUsage:  true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	root.AddCommand(
		newWorkspacesCommand(rt),
		newLedgerCommand(rt),
		newOffersCommand(rt),
		newSessionCommand(rt),
	)
	return root
}

// Execute runs the CLI against the process environment.
func Execute(version string) error {
	rt := NewRuntime()
	defer rt.Close()

	root := NewRootCommand(rt, version)
	if err := root.Execute(); err != nil {
		printError(root.ErrOrStderr(), err)
		return err
	}
	return nil
}

func printError(w io.Writer, err error) {
	errorColor.Fprintf(w, "error: %v\n", err) //nolint:errcheck // terminal output
}

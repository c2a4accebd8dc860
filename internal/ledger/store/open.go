package store

import (
	"database/sql"
	"fmt"

	"github.com/redis/go-redis/v9"

	"targetkit/internal/platform/config"
)

// Clients are the shared connections a backend may need. Either may be nil
// when the matching URL is not configured.
type Clients struct {
	Redis       redis.UniversalClient
	RedisPrefix string
	DB          *sql.DB
}

// Open selects the backend named by cfg.Backend.
func Open(cfg config.Ledger, clients Clients) (Store, error) {
	switch cfg.Backend {
	case "", config.LedgerBackendFile:
		return NewFile(cfg.File), nil
	case config.LedgerBackendMemory:
		return NewInMemory(), nil
	case config.LedgerBackendRedis:
		if clients.Redis == nil {
			return nil, fmt.Errorf("ledger backend %q requires REDIS_URL", cfg.Backend)
		}
		return NewRedis(clients.Redis, clients.RedisPrefix), nil
	case config.LedgerBackendPostgres:
		if clients.DB == nil {
			return nil, fmt.Errorf("ledger backend %q requires DATABASE_URL", cfg.Backend)
		}
		return NewPostgres(clients.DB), nil
	default:
		return nil, fmt.Errorf("unknown ledger backend %q", cfg.Backend)
	}
}

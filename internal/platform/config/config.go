package config

import (
	"net/netip"
	"os"
	"strconv"
	"strings"
	"time"

	"targetkit/pkg/validation"
)

const (
	DefaultAPIBaseURL  = "https://mc.adobe.io"
	DefaultIMSTokenURL = "https://ims-na1.adobelogin.com/ims/token/v3"
)

// Ledger backends selectable through LEDGER_BACKEND.
const (
	LedgerBackendFile     = "file"
	LedgerBackendRedis    = "redis"
	LedgerBackendPostgres = "postgres"
	LedgerBackendMemory   = "memory"
)

// Server captures HTTP server level configuration.
type Server struct {
	Addr           string
	Environment    string
	AllowedOrigin  string
	RequestTimeout time.Duration
	MaxBodyBytes   int64
	LogLevel       string
	// TrustedProxies may set X-Forwarded-For / X-Real-IP.
	TrustedProxies []netip.Prefix

	Target   Target
	Ledger   Ledger
	Redis    RedisConfig
	Database DatabaseConfig
	Auth     Auth

	WorkspacesFile     string
	PropertiesCacheTTL time.Duration
}

// Target holds the upstream credentials and endpoints.
type Target struct {
	Tenant       string
	ClientID     string
	ClientSecret string
	AccessToken  string
	APIBaseURL   string
	IMSTokenURL  string
	Timeout      time.Duration
	TokenTimeout time.Duration
}

// HasConfig reports whether enough credentials are present to talk to the upstream.
func (t Target) HasConfig() bool {
	return t.Tenant != "" && (t.AccessToken != "" || (t.ClientID != "" && t.ClientSecret != ""))
}

// MissingFields lists the env vars an operator still needs to set.
func (t Target) MissingFields() []string {
	if t.HasConfig() {
		return []string{}
	}
	missing := []string{}
	if t.Tenant == "" {
		missing = append(missing, "TARGET_TENANT")
	}
	if t.AccessToken == "" && t.ClientID == "" {
		missing = append(missing, "TARGET_CLIENT_ID")
	}
	if t.AccessToken == "" && t.ClientSecret == "" {
		missing = append(missing, "TARGET_CLIENT_SECRET")
	}
	return missing
}

type Ledger struct {
	Backend string
	File    string
}

// RedisConfig configures the shared redis client.
type RedisConfig struct {
	URL          string
	KeyPrefix    string
	PoolSize     int
	MinIdleConns int
	DialTimeout  time.Duration
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

type DatabaseConfig struct {
	URL             string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
}

// Auth configures the operator login. Empty User disables the session gate.
type Auth struct {
	User          string
	Password      string
	PasswordHash  string
	SessionSecret string
	SessionTTL    time.Duration
	SecureCookie  bool
}

func (a Auth) Enabled() bool {
	return a.User != ""
}

// FromEnv builds a Server config from environment variables so main stays lean.
func FromEnv() Server {
	return Server{
		Addr:           envOr("TARGETKIT_ADDR", ":3000"),
		Environment:    envOr("ENVIRONMENT", "development"),
		AllowedOrigin:  os.Getenv("CORS_ALLOWED_ORIGIN"),
		RequestTimeout: durationOr("REQUEST_TIMEOUT", 60*time.Second),
		MaxBodyBytes:   int64(intOr("MAX_BODY_BYTES", validation.MaxBodySize)),
		LogLevel:       envOr("LOG_LEVEL", "info"),
		TrustedProxies: prefixesOr("TRUSTED_PROXIES"),
		Target: Target{
			Tenant:       strings.TrimSpace(os.Getenv("TARGET_TENANT")),
			ClientID:     strings.TrimSpace(os.Getenv("TARGET_CLIENT_ID")),
			ClientSecret: strings.TrimSpace(os.Getenv("TARGET_CLIENT_SECRET")),
			AccessToken:  strings.TrimSpace(os.Getenv("TARGET_ACCESS_TOKEN")),
			APIBaseURL:   strings.TrimRight(envOr("TARGET_API_BASE_URL", DefaultAPIBaseURL), "/"),
			IMSTokenURL:  envOr("TARGET_IMS_TOKEN_URL", DefaultIMSTokenURL),
			Timeout:      durationOr("UPSTREAM_TIMEOUT", 30*time.Second),
			TokenTimeout: durationOr("TOKEN_TIMEOUT", 25*time.Second),
		},
		Ledger: Ledger{
			Backend: envOr("LEDGER_BACKEND", LedgerBackendFile),
			File:    envOr("LEDGER_FILE", "data/created-activities.json"),
		},
		Redis: RedisConfig{
			URL:          os.Getenv("REDIS_URL"),
			KeyPrefix:    envOr("REDIS_KEY_PREFIX", "targetkit"),
			PoolSize:     intOr("REDIS_POOL_SIZE", 10),
			MinIdleConns: intOr("REDIS_MIN_IDLE_CONNS", 2),
			DialTimeout:  durationOr("REDIS_DIAL_TIMEOUT", 5*time.Second),
			ReadTimeout:  durationOr("REDIS_READ_TIMEOUT", 3*time.Second),
			WriteTimeout: durationOr("REDIS_WRITE_TIMEOUT", 3*time.Second),
		},
		Database: DatabaseConfig{
			URL:             os.Getenv("DATABASE_URL"),
			MaxOpenConns:    intOr("DB_MAX_OPEN_CONNS", 10),
			MaxIdleConns:    intOr("DB_MAX_IDLE_CONNS", 2),
			ConnMaxLifetime: durationOr("DB_CONN_MAX_LIFETIME", 5*time.Minute),
		},
		Auth: Auth{
			User:          strings.TrimSpace(os.Getenv("AUTH_USER")),
			Password:      os.Getenv("AUTH_PASSWORD"),
			PasswordHash:  os.Getenv("AUTH_PASSWORD_HASH"),
			SessionSecret: os.Getenv("SESSION_SECRET"),
			SessionTTL:    durationOr("SESSION_TTL", 12*time.Hour),
			SecureCookie:  os.Getenv("SESSION_SECURE_COOKIE") == "true",
		},
		WorkspacesFile:     os.Getenv("WORKSPACES_FILE"),
		PropertiesCacheTTL: durationOr("PROPERTIES_CACHE_TTL", 5*time.Minute),
	}
}

// prefixesOr parses a comma separated list of CIDRs or bare addresses,
// skipping entries that do not parse.
func prefixesOr(key string) []netip.Prefix {
	var out []netip.Prefix
	for _, raw := range strings.Split(os.Getenv(key), ",") {
		raw = strings.TrimSpace(raw)
		if raw == "" {
			continue
		}
		if p, err := netip.ParsePrefix(raw); err == nil {
			out = append(out, p.Masked())
			continue
		}
		if a, err := netip.ParseAddr(raw); err == nil {
			out = append(out, netip.PrefixFrom(a, a.BitLen()))
		}
	}
	return out
}

func envOr(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}

func durationOr(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}

func intOr(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

// Package property resolves the upstream properties attached to a workspace.
// Activities created outside the default workspace must name at least one.
package property

import (
	"context"
	"log/slog"
	"time"

	"golang.org/x/sync/singleflight"

	"targetkit/internal/platform/metrics"
	"targetkit/internal/ttlcache"
	"targetkit/internal/upstream"
	"targetkit/pkg/requestcontext"
)

const (
	DefaultTTL   = 5 * time.Minute
	fetchTimeout = 30 * time.Second
	cacheKey     = "properties"
)

// Lister fetches the tenant-wide property list.
type Lister interface {
	ListProperties(ctx context.Context) ([]upstream.Item, error)
}

type Option func(*Service)

func WithLogger(l *slog.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) {
		s.metrics = m
	}
}

// WithClock overrides the cache clock.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		s.now = now
	}
}

// Service caches the full property list for a TTL and filters it per workspace.
type Service struct {
	lister  Lister
	ttl     time.Duration
	now     func() time.Time
	cache   *ttlcache.Cache[[]upstream.Item]
	group   singleflight.Group
	logger  *slog.Logger
	metrics *metrics.Metrics
}

func New(lister Lister, ttl time.Duration, opts ...Option) *Service {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	s := &Service{
		lister: lister,
		ttl:    ttl,
		now:    time.Now,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.cache = ttlcache.New[[]upstream.Item](ttl, ttlcache.WithClock[[]upstream.Item](s.now))
	return s
}

// IDsForWorkspace returns the ids of properties whose workspaces list
// contains workspaceID. An upstream failure yields no ids and is not cached.
func (s *Service) IDsForWorkspace(ctx context.Context, workspaceID string) []any {
	props := s.all(ctx)
	ids := []any{}
	for _, p := range props {
		list, _ := p["workspaces"].([]any)
		for _, ws := range list {
			if upstream.IDString(ws) == workspaceID {
				ids = append(ids, p["id"])
				break
			}
		}
	}
	return ids
}

func (s *Service) all(ctx context.Context) []upstream.Item {
	if props, ok := s.cache.Get(cacheKey); ok {
		s.observe(true)
		return props
	}
	s.observe(false)

	ch := s.group.DoChan(cacheKey, func() (any, error) {
		if props, ok := s.cache.Get(cacheKey); ok {
			return props, nil
		}
		fetchCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), fetchTimeout)
		defer cancel()
		props, err := s.lister.ListProperties(fetchCtx)
		if err != nil {
			s.logger.WarnContext(ctx, "failed to list properties",
				"error", err,
				"request_id", requestcontext.RequestID(ctx),
			)
			return []upstream.Item(nil), nil
		}
		s.cache.Set(cacheKey, props)
		return props, nil
	})

	select {
	case res := <-ch:
		props, _ := res.Val.([]upstream.Item)
		return props
	case <-ctx.Done():
		return nil
	}
}

// Invalidate drops the cached list.
func (s *Service) Invalidate() {
	s.cache.Delete(cacheKey)
}

func (s *Service) observe(hit bool) {
	if s.metrics != nil {
		s.metrics.IncrementPropertiesCache(hit)
	}
}

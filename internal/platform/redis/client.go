// Package redis opens the shared go-redis client and exposes its pool
// statistics to Prometheus.
package redis

import (
	"context"
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/v9"

	"targetkit/internal/platform/config"
)

// Client is the go-redis client plus a readiness check.
type Client struct {
	*redis.Client
}

// New connects and pings. It returns nil, nil when no URL is configured.
func New(ctx context.Context, cfg config.RedisConfig) (*Client, error) {
	if cfg.URL == "" {
		return nil, nil
	}

	opts, err := redis.ParseURL(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("parse redis URL: %w", err)
	}
	applyPoolConfig(opts, cfg)

	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis ping failed: %w", err)
	}
	return &Client{Client: client}, nil
}

func applyPoolConfig(opts *redis.Options, cfg config.RedisConfig) {
	if cfg.PoolSize > 0 {
		opts.PoolSize = cfg.PoolSize
	}
	if cfg.MinIdleConns > 0 {
		opts.MinIdleConns = cfg.MinIdleConns
	}
	if cfg.DialTimeout > 0 {
		opts.DialTimeout = cfg.DialTimeout
	}
	if cfg.ReadTimeout > 0 {
		opts.ReadTimeout = cfg.ReadTimeout
	}
	if cfg.WriteTimeout > 0 {
		opts.WriteTimeout = cfg.WriteTimeout
	}
}

// Wrap adopts an existing go-redis client (tests use it with miniredis).
func Wrap(c *redis.Client) *Client {
	return &Client{Client: c}
}

func (c *Client) Health(ctx context.Context) error {
	return c.Ping(ctx).Err()
}

var (
	poolHitsDesc = prometheus.NewDesc("targetkit_redis_pool_hits_total",
		"Times a free connection was found in the pool", nil, nil)
	poolMissesDesc = prometheus.NewDesc("targetkit_redis_pool_misses_total",
		"Times a free connection was not found in the pool", nil, nil)
	poolTimeoutsDesc = prometheus.NewDesc("targetkit_redis_pool_timeouts_total",
		"Times a wait for a connection timed out", nil, nil)
	poolTotalDesc = prometheus.NewDesc("targetkit_redis_pool_total_conns",
		"Connections currently in the pool", nil, nil)
	poolIdleDesc = prometheus.NewDesc("targetkit_redis_pool_idle_conns",
		"Idle connections currently in the pool", nil, nil)
)

// PoolCollector reads the client's pool statistics at scrape time.
type PoolCollector struct {
	client *redis.Client
}

func NewPoolCollector(c *Client) *PoolCollector {
	return &PoolCollector{client: c.Client}
}

func (p *PoolCollector) Describe(ch chan<- *prometheus.Desc) {
	ch <- poolHitsDesc
	ch <- poolMissesDesc
	ch <- poolTimeoutsDesc
	ch <- poolTotalDesc
	ch <- poolIdleDesc
}

func (p *PoolCollector) Collect(ch chan<- prometheus.Metric) {
	s := p.client.PoolStats()
	ch <- prometheus.MustNewConstMetric(poolHitsDesc, prometheus.CounterValue, float64(s.Hits))
	ch <- prometheus.MustNewConstMetric(poolMissesDesc, prometheus.CounterValue, float64(s.Misses))
	ch <- prometheus.MustNewConstMetric(poolTimeoutsDesc, prometheus.CounterValue, float64(s.Timeouts))
	ch <- prometheus.MustNewConstMetric(poolTotalDesc, prometheus.GaugeValue, float64(s.TotalConns))
	ch <- prometheus.MustNewConstMetric(poolIdleDesc, prometheus.GaugeValue, float64(s.IdleConns))
}

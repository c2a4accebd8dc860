package metrics

import (
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Resolver outcomes.
const (
	OutcomeDirect   = "direct"
	OutcomeFallback = "fallback"
	OutcomeNotFound = "not_found"
	OutcomeError    = "error"
)

// Metrics holds all Prometheus metrics for the application
type Metrics struct {
	UpstreamCalls    *prometheus.CounterVec
	UpstreamLatency  *prometheus.HistogramVec
	TokenExchanges   *prometheus.CounterVec
	ResolverOutcomes *prometheus.CounterVec
	FallbackAttempts prometheus.Counter
	LedgerOps        *prometheus.CounterVec
	LedgerRecovered  prometheus.Counter
	PropertiesCache  *prometheus.CounterVec
	LoginAttempts    *prometheus.CounterVec
}

// New creates all metrics and registers them with reg.
// main passes prometheus.DefaultRegisterer; tests pass a fresh registry.
func New(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		UpstreamCalls: f.NewCounterVec(prometheus.CounterOpts{
			Name: "targetkit_upstream_calls_total",
			Help: "Upstream API calls, labeled by operation and status class",
		}, []string{"operation", "status_class"}),
		UpstreamLatency: f.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "targetkit_upstream_latency_seconds",
			Help:    "Latency of upstream API calls in seconds",
			Buckets: prometheus.DefBuckets,
		}, []string{"operation"}),
		TokenExchanges: f.NewCounterVec(prometheus.CounterOpts{
			Name: "targetkit_token_exchanges_total",
			Help: "Client-credential exchanges against the identity endpoint, labeled by result",
		}, []string{"result"}),
		ResolverOutcomes: f.NewCounterVec(prometheus.CounterOpts{
			Name: "targetkit_offer_resolver_outcomes_total",
			Help: "Offer lookups, labeled by outcome (direct, fallback, not_found, error)",
		}, []string{"outcome"}),
		FallbackAttempts: f.NewCounter(prometheus.CounterOpts{
			Name: "targetkit_offer_resolver_fallback_attempts_total",
			Help: "Upstream calls made while scanning other workspaces",
		}),
		LedgerOps: f.NewCounterVec(prometheus.CounterOpts{
			Name: "targetkit_ledger_operations_total",
			Help: "Ledger operations, labeled by operation and result",
		}, []string{"operation", "result"}),
		LedgerRecovered: f.NewCounter(prometheus.CounterOpts{
			Name: "targetkit_ledger_read_recovered_total",
			Help: "Ledger reads that failed and were treated as an empty ledger",
		}),
		PropertiesCache: f.NewCounterVec(prometheus.CounterOpts{
			Name: "targetkit_properties_cache_total",
			Help: "Property listing cache lookups, labeled by hit or miss",
		}, []string{"result"}),
		LoginAttempts: f.NewCounterVec(prometheus.CounterOpts{
			Name: "targetkit_login_attempts_total",
			Help: "Operator login attempts, labeled by result",
		}, []string{"result"}),
	}
}

func (m *Metrics) ObserveUpstreamCall(operation string, status int, durationSeconds float64) {
	m.UpstreamCalls.WithLabelValues(operation, StatusClass(status)).Inc()
	m.UpstreamLatency.WithLabelValues(operation).Observe(durationSeconds)
}

func (m *Metrics) IncrementResolverOutcome(outcome string) {
	m.ResolverOutcomes.WithLabelValues(outcome).Inc()
}

func (m *Metrics) IncrementFallbackAttempt() {
	m.FallbackAttempts.Inc()
}

func (m *Metrics) IncrementLedgerOp(operation string, err error) {
	result := "ok"
	if err != nil {
		result = "error"
	}
	m.LedgerOps.WithLabelValues(operation, result).Inc()
}

func (m *Metrics) IncrementLedgerRecovered() {
	m.LedgerRecovered.Inc()
}

func (m *Metrics) IncrementPropertiesCache(hit bool) {
	if hit {
		m.PropertiesCache.WithLabelValues("hit").Inc()
		return
	}
	m.PropertiesCache.WithLabelValues("miss").Inc()
}

func (m *Metrics) IncrementTokenExchange(err error) {
	if err != nil {
		m.TokenExchanges.WithLabelValues("error").Inc()
		return
	}
	m.TokenExchanges.WithLabelValues("ok").Inc()
}

func (m *Metrics) IncrementLogin(success bool) {
	if success {
		m.LoginAttempts.WithLabelValues("success").Inc()
		return
	}
	m.LoginAttempts.WithLabelValues("failure").Inc()
}

// StatusClass buckets an HTTP status ("2xx", "4xx", ...); 0 means the
// request never got a response.
func StatusClass(status int) string {
	if status <= 0 {
		return "transport_error"
	}
	return strconv.Itoa(status/100) + "xx"
}

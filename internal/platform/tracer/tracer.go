// Package tracer provides a lightweight tracing abstraction for upstream calls.
//
// The interface keeps OpenTelemetry out of the service packages. NoopTracer is
// used in tests; OTelTracer adapts the global OpenTelemetry provider.
package tracer

import (
	"context"
	"time"
)

// Span is an active trace span. End must be called exactly once.
type Span interface {
	End(err error)
	SetAttributes(attrs ...Attribute)
	AddEvent(name string, attrs ...Attribute)
}

// Tracer starts spans. Implementations must be safe for concurrent use.
type Tracer interface {
	Start(ctx context.Context, name string, attrs ...Attribute) (context.Context, Span)
}

// NoopTracer records nothing.
type NoopTracer struct{}

func NewNoop() NoopTracer { return NoopTracer{} }

func (NoopTracer) Start(ctx context.Context, _ string, _ ...Attribute) (context.Context, Span) {
	return ctx, noopSpan{}
}

type noopSpan struct{}

func (noopSpan) End(error)                     {}
func (noopSpan) SetAttributes(...Attribute)    {}
func (noopSpan) AddEvent(string, ...Attribute) {}

// Attribute represents a key-value pair attached to spans.
type Attribute struct {
	Key   string
	Value any
}

func String(key, value string) Attribute {
	return Attribute{Key: key, Value: value}
}

func Bool(key string, value bool) Attribute {
	return Attribute{Key: key, Value: value}
}

func Int64(key string, value int64) Attribute {
	return Attribute{Key: key, Value: value}
}

func Int(key string, value int) Attribute {
	return Attribute{Key: key, Value: value}
}

// Duration creates a duration attribute in milliseconds.
func Duration(key string, value time.Duration) Attribute {
	return Attribute{Key: key, Value: value.Milliseconds()}
}

// Span names.
const (
	SpanOfferResolve  = "offer.resolve"
	SpanUpstreamCall  = "upstream.call"
	SpanTokenExchange = "upstream.token"
)

// Attribute keys.
const (
	AttrOfferID       = "offer.id"
	AttrWorkspaceID   = "workspace.id"
	AttrFoundIn       = "offer.found_in"
	AttrFallback      = "offer.fallback"
	AttrAttempts      = "offer.attempts"
	AttrOperation     = "upstream.operation"
	AttrStatus        = "http.status_code"
	AttrCacheHit      = "cache.hit"
	EventFallbackMiss = "fallback.miss"
)

package tracer

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace/noop"
)

func TestKeyValues(t *testing.T) {
	got := keyValues([]Attribute{
		String(AttrOfferID, "42"),
		Bool(AttrFallback, true),
		Int(AttrAttempts, 3),
		Duration("elapsed", 1500*time.Millisecond),
		{Key: "dropped", Value: struct{}{}},
	})

	assert.Equal(t, []attribute.KeyValue{
		attribute.String(AttrOfferID, "42"),
		attribute.Bool(AttrFallback, true),
		attribute.Int(AttrAttempts, 3),
		attribute.Int64("elapsed", 1500),
	}, got)
	assert.Nil(t, keyValues(nil))
}

func TestOTelTracerWithProvider(t *testing.T) {
	tr := NewOTel(WithProvider(noop.NewTracerProvider()))

	ctx, span := tr.Start(context.Background(), SpanOfferResolve, String(AttrWorkspaceID, "100"))

	assert.NotNil(t, ctx)
	span.AddEvent(EventFallbackMiss)
	span.SetAttributes(Bool(AttrFallback, false))
	span.End(errors.New("not found"))
}

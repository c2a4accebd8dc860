package property

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/suite"

	"targetkit/internal/platform/metrics"
	"targetkit/internal/upstream"
)

type fakeLister struct {
	calls atomic.Int32
	mu    sync.Mutex
	items []upstream.Item
	err   error
}

func (f *fakeLister) ListProperties(context.Context) ([]upstream.Item, error) {
	f.calls.Add(1)
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.items, f.err
}

func (f *fakeLister) set(items []upstream.Item, err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.items, f.err = items, err
}

type PropertySuite struct {
	suite.Suite
	lister  *fakeLister
	now     time.Time
	metrics *metrics.Metrics
	service *Service
}

func TestPropertySuite(t *testing.T) {
	suite.Run(t, new(PropertySuite))
}

func (s *PropertySuite) SetupTest() {
	s.lister = &fakeLister{}
	s.lister.set([]upstream.Item{
		{"id": json.Number("11"), "workspaces": []any{json.Number("223101869"), "259214924"}},
		{"id": json.Number("12"), "workspaces": []any{"223101884"}},
		{"id": json.Number("13")},
		{"id": json.Number("14"), "workspaces": []any{json.Number("223101869")}},
	}, nil)
	s.now = time.Date(2026, 5, 1, 9, 0, 0, 0, time.UTC)
	s.metrics = metrics.New(prometheus.NewRegistry())
	s.service = New(s.lister, 5*time.Minute, WithClock(func() time.Time { return s.now }), WithMetrics(s.metrics))
}

func (s *PropertySuite) TestFiltersByWorkspace() {
	ctx := context.Background()
	s.Equal([]any{json.Number("11"), json.Number("14")}, s.service.IDsForWorkspace(ctx, "223101869"))
	s.Equal([]any{json.Number("11")}, s.service.IDsForWorkspace(ctx, "259214924"))
	s.Empty(s.service.IDsForWorkspace(ctx, "999"))
	s.Equal(int32(1), s.lister.calls.Load())
	s.Equal(float64(2), testutil.ToFloat64(s.metrics.PropertiesCache.WithLabelValues("hit")))
}

func (s *PropertySuite) TestCacheExpires() {
	ctx := context.Background()
	s.service.IDsForWorkspace(ctx, "223101869")

	s.now = s.now.Add(4 * time.Minute)
	s.service.IDsForWorkspace(ctx, "223101869")
	s.Equal(int32(1), s.lister.calls.Load())

	s.now = s.now.Add(time.Minute)
	s.service.IDsForWorkspace(ctx, "223101869")
	s.Equal(int32(2), s.lister.calls.Load())
}

func (s *PropertySuite) TestFailureIsNotCached() {
	ctx := context.Background()
	s.lister.set(nil, errors.New("boom"))
	s.Empty(s.service.IDsForWorkspace(ctx, "223101869"))

	s.lister.set([]upstream.Item{{"id": "1", "workspaces": []any{"223101869"}}}, nil)
	s.Equal([]any{"1"}, s.service.IDsForWorkspace(ctx, "223101869"))
	s.Equal(int32(2), s.lister.calls.Load())
}

func (s *PropertySuite) TestInvalidate() {
	ctx := context.Background()
	s.service.IDsForWorkspace(ctx, "1")
	s.service.Invalidate()
	s.service.IDsForWorkspace(ctx, "1")
	s.Equal(int32(2), s.lister.calls.Load())
}

// gatedLister blocks each fetch until release is closed or its context ends.
type gatedLister struct {
	calls   atomic.Int32
	entered chan struct{}
	release chan struct{}
	once    sync.Once
}

func (g *gatedLister) ListProperties(ctx context.Context) ([]upstream.Item, error) {
	g.calls.Add(1)
	g.once.Do(func() { close(g.entered) })
	select {
	case <-g.release:
		return []upstream.Item{{"id": "7", "workspaces": []any{"ws-1"}}}, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func (s *PropertySuite) TestCancelledCallerDoesNotAbortSharedFetch() {
	lister := &gatedLister{entered: make(chan struct{}), release: make(chan struct{})}
	svc := New(lister, time.Minute, WithClock(func() time.Time { return s.now }))

	ctx, cancel := context.WithCancel(context.Background())
	first := make(chan []any, 1)
	go func() { first <- svc.IDsForWorkspace(ctx, "ws-1") }()
	<-lister.entered
	cancel()
	s.Empty(<-first)

	close(lister.release)
	s.Equal([]any{"7"}, svc.IDsForWorkspace(context.Background(), "ws-1"))
	s.Equal(int32(1), lister.calls.Load())
}

package ttlcache

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"
)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (f *fakeClock) Now() time.Time {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.now
}

func (f *fakeClock) Advance(d time.Duration) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.now = f.now.Add(d)
}

type CacheSuite struct {
	suite.Suite
	clock *fakeClock
	cache *Cache[[]string]
}

func TestCacheSuite(t *testing.T) {
	suite.Run(t, new(CacheSuite))
}

func (s *CacheSuite) SetupTest() {
	s.clock = &fakeClock{now: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)}
	s.cache = New(5*time.Minute, WithClock[[]string](s.clock.Now))
}

func (s *CacheSuite) TestGetSet() {
	s.Run("miss on empty cache", func() {
		_, ok := s.cache.Get("properties")
		s.False(ok)
	})

	s.Run("hit before expiry", func() {
		s.cache.Set("properties", []string{"p1"})
		s.clock.Advance(4*time.Minute + 59*time.Second)

		v, ok := s.cache.Get("properties")
		s.True(ok)
		s.Equal([]string{"p1"}, v)
	})

	s.Run("miss at exactly the ttl", func() {
		s.cache.Set("properties", []string{"p1"})
		s.clock.Advance(5 * time.Minute)

		_, ok := s.cache.Get("properties")
		s.False(ok)
	})
}

func (s *CacheSuite) TestSetWithExpiry() {
	expires := s.clock.Now().Add(30 * time.Second)
	s.cache.SetWithExpiry("token", []string{"abc"}, expires)

	got, ok := s.cache.ExpiresAt("token")
	s.True(ok)
	s.Equal(expires, got)

	s.clock.Advance(31 * time.Second)
	_, hit := s.cache.Get("token")
	s.False(hit)
}

func (s *CacheSuite) TestDelete() {
	s.cache.Set("k", []string{"v"})
	s.cache.Delete("k")

	_, ok := s.cache.Get("k")
	s.False(ok)
}

func (s *CacheSuite) TestExpiredEntriesAreCleanedOnSet() {
	s.cache.Set("old", []string{"v"})
	s.clock.Advance(10 * time.Minute)
	s.cache.Set("new", []string{"v"})

	_, ok := s.cache.ExpiresAt("old")
	s.False(ok)
}

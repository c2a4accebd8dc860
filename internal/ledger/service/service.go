// Package service owns the created-activity ledger: which upstream activities
// this app created under a given tenant and client id.
package service

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"sync"

	"targetkit/internal/ledger/models"
	"targetkit/internal/ledger/store"
	"targetkit/internal/platform/metrics"
	dErrors "targetkit/pkg/domain-errors"
	"targetkit/pkg/requestcontext"
)

// Store is the persistence port for ledger documents. Implementations that
// also satisfy store.AtomicStore get their read-modify-write cycles run
// through Update.
type Store interface {
	LoadAll(ctx context.Context) ([]models.Entry, error)
	SaveAll(ctx context.Context, entries []models.Entry) error
}

const (
	opRecord = "record"
	opForget = "forget"
	opOwned  = "owned"
)

type Option func(*Service)

type Service struct {
	store   Store
	mu      sync.Mutex
	logger  *slog.Logger
	metrics *metrics.Metrics
}

func New(st Store, opts ...Option) *Service {
	svc := &Service{
		store:  st,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(svc)
	}
	return svc
}

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		if logger != nil {
			s.logger = logger
		}
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) {
		s.metrics = m
	}
}

// Record marks activityID as created by owner. Empty inputs are ignored and
// recording an existing triple leaves the ledger untouched.
func (s *Service) Record(ctx context.Context, owner models.Owner, activityID string) error {
	if activityID == "" || !owner.Valid() {
		return nil
	}
	entry := models.Entry{ID: activityID, Tenant: owner.Tenant, ClientID: owner.ClientID}
	err := s.mutate(ctx, func(entries []models.Entry) ([]models.Entry, bool) {
		if slices.ContainsFunc(entries, func(e models.Entry) bool { return e == entry }) {
			return entries, false
		}
		return append(entries, entry), true
	})
	s.observe(opRecord, err)
	if err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to record created activity "+activityID)
	}
	return nil
}

// Forget removes every entry matching the triple. Absent triples are a no-op.
func (s *Service) Forget(ctx context.Context, owner models.Owner, activityID string) error {
	if activityID == "" || !owner.Valid() {
		return nil
	}
	err := s.mutate(ctx, func(entries []models.Entry) ([]models.Entry, bool) {
		next := slices.DeleteFunc(entries, func(e models.Entry) bool { return e.Matches(owner, activityID) })
		return next, len(next) != len(entries)
	})
	s.observe(opForget, err)
	if err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to forget created activity "+activityID)
	}
	return nil
}

// IDsOwnedBy returns the ids recorded for owner. An unreadable store reads as empty.
func (s *Service) IDsOwnedBy(ctx context.Context, owner models.Owner) models.IDSet {
	ids := models.IDSet{}
	if !owner.Valid() {
		return ids
	}
	for _, e := range s.load(ctx) {
		if e.OwnedBy(owner) {
			ids[e.ID] = struct{}{}
		}
	}
	s.observe(opOwned, nil)
	return ids
}

// RequireOwned returns a forbidden error unless owner recorded activityID.
func (s *Service) RequireOwned(ctx context.Context, owner models.Owner, activityID string) error {
	if activityID != "" && s.IDsOwnedBy(ctx, owner).Has(activityID) {
		return nil
	}
	return dErrors.New(dErrors.CodeForbidden, "activity "+activityID+" was not created by this app")
}

// Entries returns the full ledger in stored order.
func (s *Service) Entries(ctx context.Context) []models.Entry {
	return s.load(ctx)
}

func (s *Service) mutate(ctx context.Context, fn store.Mutator) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if atomic, ok := s.store.(store.AtomicStore); ok {
		return atomic.Update(ctx, fn)
	}
	if locker, ok := s.store.(store.Locker); ok {
		unlock, err := locker.Lock(ctx)
		if err != nil {
			return fmt.Errorf("lock ledger: %w", err)
		}
		defer unlock()
	}
	next, changed := fn(s.load(ctx))
	if !changed {
		return nil
	}
	return s.store.SaveAll(ctx, next)
}

func (s *Service) load(ctx context.Context) []models.Entry {
	entries, err := s.store.LoadAll(ctx)
	if err != nil {
		s.logger.WarnContext(ctx, "ledger unreadable, treating as empty",
			"error", err,
			"request_id", requestcontext.RequestID(ctx),
		)
		if s.metrics != nil {
			s.metrics.IncrementLedgerRecovered()
		}
		return []models.Entry{}
	}
	return entries
}

func (s *Service) observe(op string, err error) {
	if s.metrics != nil {
		s.metrics.IncrementLedgerOp(op, err)
	}
}

// Package store persists the created-activity ledger. Every backend exposes the
// whole ledger as an ordered slice; ownership rules live in the service.
package store

import (
	"context"
	"errors"

	"targetkit/internal/ledger/models"
)

// ErrCorrupt is returned by LoadAll when stored data exists but cannot be decoded.
var ErrCorrupt = errors.New("ledger data is corrupt")

type Store interface {
	LoadAll(ctx context.Context) ([]models.Entry, error)
	SaveAll(ctx context.Context, entries []models.Entry) error
}

// Mutator computes the next ledger from the current one. changed=false means
// nothing needs to be written.
type Mutator func(entries []models.Entry) (next []models.Entry, changed bool)

// AtomicStore is implemented by backends that can run a read-modify-write
// cycle atomically across processes. Unreadable data is handed to fn as an
// empty ledger.
type AtomicStore interface {
	Store
	Update(ctx context.Context, fn Mutator) error
}

// Locker is implemented by backends that serialise read-modify-write cycles
// across processes with an external lock. The returned func releases it.
type Locker interface {
	Lock(ctx context.Context) (unlock func(), err error)
}

func cloneEntries(entries []models.Entry) []models.Entry {
	out := make([]models.Entry, len(entries))
	copy(out, entries)
	return out
}

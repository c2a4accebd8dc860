package store

import (
	"context"
	"database/sql"
	"fmt"

	"targetkit/internal/ledger/models"
)

// ledgerLockKey scopes pg_advisory_xact_lock to ledger rewrites.
const ledgerLockKey int64 = 0x74676b6c64677200

// PostgresStore persists ledger entries as rows in created_activities.
// Insertion order is preserved through the seq column.
type PostgresStore struct {
	db *sql.DB
}

// NewPostgres constructs a PostgreSQL-backed ledger store.
func NewPostgres(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

type dbExecutor interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
}

func (s *PostgresStore) LoadAll(ctx context.Context) ([]models.Entry, error) {
	return loadEntries(ctx, s.db)
}

func (s *PostgresStore) SaveAll(ctx context.Context, entries []models.Entry) error {
	return s.inLockedTx(ctx, func(tx *sql.Tx) error {
		return replaceEntries(ctx, tx, entries)
	})
}

// Update runs fn inside a transaction holding a transaction-scoped advisory
// lock, so concurrent writers in other processes queue behind it.
func (s *PostgresStore) Update(ctx context.Context, fn Mutator) error {
	return s.inLockedTx(ctx, func(tx *sql.Tx) error {
		current, err := loadEntries(ctx, tx)
		if err != nil {
			return err
		}
		next, changed := fn(current)
		if !changed {
			return nil
		}
		return replaceEntries(ctx, tx, next)
	})
}

func (s *PostgresStore) inLockedTx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin ledger tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, `SELECT pg_advisory_xact_lock($1)`, ledgerLockKey); err != nil {
		return fmt.Errorf("acquire ledger lock: %w", err)
	}
	if err := fn(tx); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit ledger tx: %w", err)
	}
	return nil
}

func loadEntries(ctx context.Context, q dbExecutor) ([]models.Entry, error) {
	rows, err := q.QueryContext(ctx, `
		SELECT activity_id, tenant, client_id
		FROM created_activities
		ORDER BY seq
	`)
	if err != nil {
		return nil, fmt.Errorf("load ledger entries: %w", err)
	}
	defer rows.Close()

	entries := []models.Entry{}
	for rows.Next() {
		var e models.Entry
		if err := rows.Scan(&e.ID, &e.Tenant, &e.ClientID); err != nil {
			return nil, fmt.Errorf("scan ledger entry: %w", err)
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate ledger entries: %w", err)
	}
	return entries, nil
}

// replaceEntries rewrites the table so row order matches entries. Rows that
// survive keep their seq; only removed rows are deleted and new rows appended.
func replaceEntries(ctx context.Context, q dbExecutor, entries []models.Entry) error {
	current, err := loadEntries(ctx, q)
	if err != nil {
		return err
	}
	keep := make(map[models.Entry]struct{}, len(entries))
	for _, e := range entries {
		keep[e] = struct{}{}
	}
	existing := make(map[models.Entry]struct{}, len(current))
	for _, e := range current {
		existing[e] = struct{}{}
		if _, ok := keep[e]; ok {
			continue
		}
		if _, err := q.ExecContext(ctx, `
			DELETE FROM created_activities
			WHERE tenant = $1 AND client_id = $2 AND activity_id = $3
		`, e.Tenant, e.ClientID, e.ID); err != nil {
			return fmt.Errorf("delete ledger entry: %w", err)
		}
	}
	for _, e := range entries {
		if _, ok := existing[e]; ok {
			continue
		}
		if _, err := q.ExecContext(ctx, `
			INSERT INTO created_activities (activity_id, tenant, client_id)
			VALUES ($1, $2, $3)
			ON CONFLICT (tenant, client_id, activity_id) DO NOTHING
		`, e.ID, e.Tenant, e.ClientID); err != nil {
			return fmt.Errorf("insert ledger entry: %w", err)
		}
		existing[e] = struct{}{}
	}
	return nil
}

var _ AtomicStore = (*PostgresStore)(nil)

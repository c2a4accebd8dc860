package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"

	"targetkit/internal/ledger/models"
)

const (
	ledgerKeySuffix  = "ledger:created-activities"
	maxUpdateRetries = 10
)

// ErrUpdateContention is returned when an optimistic update keeps losing the
// race against other writers.
var ErrUpdateContention = errors.New("ledger update retries exhausted")

// RedisStore keeps the ledger document as one JSON value so it can be shared
// by several server instances.
type RedisStore struct {
	client redis.UniversalClient
	key    string
}

func NewRedis(client redis.UniversalClient, keyPrefix string) *RedisStore {
	key := ledgerKeySuffix
	if keyPrefix != "" {
		key = keyPrefix + ":" + ledgerKeySuffix
	}
	return &RedisStore{client: client, key: key}
}

func (s *RedisStore) Key() string {
	return s.key
}

func (s *RedisStore) LoadAll(ctx context.Context) ([]models.Entry, error) {
	raw, err := s.client.Get(ctx, s.key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return []models.Entry{}, nil
		}
		return nil, fmt.Errorf("read ledger key: %w", err)
	}
	return decodeDocument(raw, s.key)
}

func (s *RedisStore) SaveAll(ctx context.Context, entries []models.Entry) error {
	data, err := encodeDocument(entries)
	if err != nil {
		return err
	}
	if err := s.client.Set(ctx, s.key, data, 0).Err(); err != nil {
		return fmt.Errorf("write ledger key: %w", err)
	}
	return nil
}

// Update applies fn under WATCH/MULTI and retries when another writer
// modifies the key in between.
func (s *RedisStore) Update(ctx context.Context, fn Mutator) error {
	txf := func(tx *redis.Tx) error {
		current := []models.Entry{}
		raw, err := tx.Get(ctx, s.key).Bytes()
		switch {
		case errors.Is(err, redis.Nil):
		case err != nil:
			return fmt.Errorf("read ledger key: %w", err)
		default:
			if decoded, derr := decodeDocument(raw, s.key); derr == nil {
				current = decoded
			}
		}

		next, changed := fn(current)
		if !changed {
			return nil
		}
		data, err := encodeDocument(next)
		if err != nil {
			return err
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, s.key, data, 0)
			return nil
		})
		return err
	}

	for range maxUpdateRetries {
		err := s.client.Watch(ctx, txf, s.key)
		if err == nil {
			return nil
		}
		if errors.Is(err, redis.TxFailedErr) {
			continue
		}
		return err
	}
	return ErrUpdateContention
}

func encodeDocument(entries []models.Entry) ([]byte, error) {
	if entries == nil {
		entries = []models.Entry{}
	}
	data, err := json.Marshal(models.Document{Entries: entries})
	if err != nil {
		return nil, fmt.Errorf("marshal ledger: %w", err)
	}
	return data, nil
}

func decodeDocument(raw []byte, source string) ([]models.Entry, error) {
	var doc models.Document
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrCorrupt, source, err)
	}
	if doc.Entries == nil {
		return []models.Entry{}, nil
	}
	return doc.Entries, nil
}

var _ AtomicStore = (*RedisStore)(nil)

// Package sync serializes work per key without one global lock.
package sync

import (
	"hash/fnv"
	"sync"
)

const defaultShards = 32

// KeyedMutex maps keys onto a fixed set of mutexes. Calls for the same key
// never overlap; unrelated keys only contend when they share a shard.
type KeyedMutex struct {
	shards []sync.Mutex
}

// NewKeyedMutex returns a KeyedMutex with n shards (32 when n <= 0).
func NewKeyedMutex(n int) *KeyedMutex {
	if n <= 0 {
		n = defaultShards
	}
	return &KeyedMutex{shards: make([]sync.Mutex, n)}
}

// Do runs fn while holding the lock for key.
func (m *KeyedMutex) Do(key string, fn func() error) error {
	mu := &m.shards[m.shard(key)]
	mu.Lock()
	defer mu.Unlock()
	return fn()
}

func (m *KeyedMutex) shard(key string) int {
	h := fnv.New32a()
	_, _ = h.Write([]byte(key))
	return int(h.Sum32() % uint32(len(m.shards)))
}

//go:build !unix

package store

import "context"

// Lock is a no-op where flock is unavailable; only the in-process mutex
// serialises writers.
func (s *FileStore) Lock(context.Context) (func(), error) {
	return func() {}, nil
}

//go:build unix

package store_test

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"targetkit/internal/ledger/store"
)

func TestFileStoreLockExcludesOtherHandles(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ledger", "created-activities.json")
	server := store.NewFile(path)
	cli := store.NewFile(path)

	unlock, err := server.Lock(context.Background())
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	_, err = cli.Lock(ctx)
	assert.ErrorIs(t, err, context.DeadlineExceeded)

	unlock()

	unlockCLI, err := cli.Lock(context.Background())
	require.NoError(t, err)
	unlockCLI()
}

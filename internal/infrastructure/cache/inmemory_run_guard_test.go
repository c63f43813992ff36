package cache

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInMemoryRunGuard_TryAcquire(t *testing.T) {
	guard := NewInMemoryRunGuard()
	defer guard.Close()

	ctx := context.Background()

	t.Run("acquires a fresh key", func(t *testing.T) {
		acquired, err := guard.TryAcquire(ctx, "payouts:generate", 1*time.Hour)
		require.NoError(t, err)
		assert.True(t, acquired, "fresh key should be acquired")
	})

	t.Run("rejects a key already in flight", func(t *testing.T) {
		acquired, err := guard.TryAcquire(ctx, "run-2", 1*time.Hour)
		require.NoError(t, err)
		assert.True(t, acquired)

		acquired, err = guard.TryAcquire(ctx, "run-2", 1*time.Hour)
		require.NoError(t, err)
		assert.False(t, acquired, "in-flight key should not be acquired twice")
	})

	t.Run("allows reacquisition after TTL expiry", func(t *testing.T) {
		acquired, err := guard.TryAcquire(ctx, "run-3", 10*time.Millisecond)
		require.NoError(t, err)
		assert.True(t, acquired)

		time.Sleep(20 * time.Millisecond)

		acquired, err = guard.TryAcquire(ctx, "run-3", 10*time.Millisecond)
		require.NoError(t, err)
		assert.True(t, acquired, "expired key should be reacquirable")
	})
}

func TestInMemoryRunGuard_Release(t *testing.T) {
	guard := NewInMemoryRunGuard()
	defer guard.Close()

	ctx := context.Background()

	acquired, err := guard.TryAcquire(ctx, "run-release", 1*time.Hour)
	require.NoError(t, err)
	require.True(t, acquired)

	require.NoError(t, guard.Release(ctx, "run-release"))

	acquired, err = guard.TryAcquire(ctx, "run-release", 1*time.Hour)
	require.NoError(t, err)
	assert.True(t, acquired, "released key should be acquirable again")
}

func TestInMemoryRunGuard_Close(t *testing.T) {
	guard := NewInMemoryRunGuard()

	require.NoError(t, guard.Close())
	// Safe to call multiple times
	require.NoError(t, guard.Close())
}

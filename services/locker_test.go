package services

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestKeyedLocker_MutualExclusion(t *testing.T) {
	l := NewKeyedLocker()
	ctx := context.Background()

	var (
		wg      sync.WaitGroup
		holders atomic.Int32
		maxSeen atomic.Int32
	)
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			unlock, err := l.Lock(ctx, RoomLockKey(1))
			if !assert.NoError(t, err) {
				return
			}
			n := holders.Add(1)
			if n > maxSeen.Load() {
				maxSeen.Store(n)
			}
			time.Sleep(time.Millisecond)
			holders.Add(-1)
			unlock()
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(1), maxSeen.Load())
	l.mu.Lock()
	assert.Empty(t, l.slots, "idle keys are dropped")
	l.mu.Unlock()
}

func TestKeyedLocker_IndependentKeys(t *testing.T) {
	l := NewKeyedLocker()
	ctx := context.Background()

	unlockRoom, err := l.Lock(ctx, RoomLockKey(1))
	require.NoError(t, err)
	defer unlockRoom()

	unlockOther, err := acquire(ctx, l, RoomLockKey(2), 50*time.Millisecond)
	require.NoError(t, err)
	unlockOther()

	unlockDiscount, err := acquire(ctx, l, DiscountLockKey(1), 50*time.Millisecond)
	require.NoError(t, err)
	unlockDiscount()
}

func TestAcquire_TimeoutIsConflict(t *testing.T) {
	l := NewKeyedLocker()
	ctx := context.Background()

	unlock, err := l.Lock(ctx, RoomLockKey(1))
	require.NoError(t, err)

	_, err = acquire(ctx, l, RoomLockKey(1), 20*time.Millisecond)
	assert.ErrorIs(t, err, ErrConflict)

	// Double unlock is harmless.
	unlock()
	unlock()

	again, err := acquire(ctx, l, RoomLockKey(1), 20*time.Millisecond)
	require.NoError(t, err)
	again()
}

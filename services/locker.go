package services

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"
)

// Locker grants exclusive access to a key (a room or a discount) for the
// duration of a read-decide-write sequence. Locks are not reentrant.
type Locker interface {
	Lock(ctx context.Context, key string) (unlock func(), err error)
}

func RoomLockKey(roomID uint) string { return fmt.Sprintf("lock:room:%d", roomID) }

func DiscountLockKey(discountID uint) string { return fmt.Sprintf("lock:discount:%d", discountID) }

// KeyedLocker is the in-process Locker. Each key gets a one-slot channel that
// is dropped again once nobody holds or waits for it.
type KeyedLocker struct {
	mu    sync.Mutex
	slots map[string]*lockSlot
}

type lockSlot struct {
	ch   chan struct{}
	refs int
}

func NewKeyedLocker() *KeyedLocker {
	return &KeyedLocker{slots: map[string]*lockSlot{}}
}

func (l *KeyedLocker) Lock(ctx context.Context, key string) (func(), error) {
	l.mu.Lock()
	slot, ok := l.slots[key]
	if !ok {
		slot = &lockSlot{ch: make(chan struct{}, 1)}
		l.slots[key] = slot
	}
	slot.refs++
	l.mu.Unlock()

	select {
	case slot.ch <- struct{}{}:
		var once sync.Once
		return func() {
			once.Do(func() {
				<-slot.ch
				l.release(key, slot)
			})
		}, nil
	case <-ctx.Done():
		l.release(key, slot)
		return nil, ctx.Err()
	}
}

func (l *KeyedLocker) release(key string, slot *lockSlot) {
	l.mu.Lock()
	defer l.mu.Unlock()
	slot.refs--
	if slot.refs == 0 {
		delete(l.slots, key)
	}
}

// acquire bounds the wait by timeout and reports a timeout as ErrConflict.
func acquire(ctx context.Context, locker Locker, key string, timeout time.Duration) (func(), error) {
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}
	unlock, err := locker.Lock(ctx, key)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
			return nil, fmt.Errorf("%w: timed out waiting for %s", ErrConflict, key)
		}
		return nil, err
	}
	return unlock, nil
}

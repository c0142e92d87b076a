package services

import (
	"context"
	"sync"

	"hotel-reservation/metrics"
	"hotel-reservation/utils"

	"go.uber.org/zap"
)

// dispatcher hands items to a single background writer. Submit never blocks:
// when the buffer is full the item is dropped and counted.
type dispatcher[T any] struct {
	name   string
	queue  chan T
	handle func(context.Context, T) error
	logger *zap.SugaredLogger

	mu     sync.RWMutex
	closed bool
	done   chan struct{}
}

func newDispatcher[T any](name string, buffer int, handle func(context.Context, T) error, logger *zap.SugaredLogger) *dispatcher[T] {
	if buffer <= 0 {
		buffer = 256
	}
	d := &dispatcher[T]{
		name:   name,
		queue:  make(chan T, buffer),
		handle: handle,
		logger: logger,
		done:   make(chan struct{}),
	}
	go d.run()
	return d
}

func (d *dispatcher[T]) submit(item T) bool {
	d.mu.RLock()
	defer d.mu.RUnlock()
	if d.closed {
		return false
	}
	select {
	case d.queue <- item:
		return true
	default:
		metrics.SinkDropped.WithLabelValues(d.name).Inc()
		d.logger.Warnw("sink buffer full, dropping entry", "sink", d.name)
		return false
	}
}

func (d *dispatcher[T]) run() {
	defer close(d.done)
	for item := range d.queue {
		d.process(item)
	}
}

func (d *dispatcher[T]) process(item T) {
	defer utils.Recover(d.name, d.logger)
	if err := d.handle(context.Background(), item); err != nil {
		d.logger.Warnw("sink write failed", "sink", d.name, "error", err)
	}
}

// close stops accepting items and waits for the queue to drain or ctx to end.
func (d *dispatcher[T]) close(ctx context.Context) error {
	d.mu.Lock()
	if !d.closed {
		d.closed = true
		close(d.queue)
	}
	d.mu.Unlock()

	select {
	case <-d.done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

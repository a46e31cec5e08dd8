// Package batch buffers rows in memory and writes them to the database in
// batches from a background loop.
package batch

import (
	"log/slog"
	"sync"
	"time"

	"gorm.io/gorm"
)

const (
	DefaultSize     = 50
	DefaultInterval = 5 * time.Second
)

// Batcher flushes every Interval, or as soon as Size rows are buffered.
// Write errors are logged and the batch is dropped.
type Batcher[T any] struct {
	db       *gorm.DB
	name     string
	size     int
	mu       sync.Mutex
	buffer   []T
	closed   bool
	ticker   *time.Ticker
	done     chan struct{}
	stopped  chan struct{}
	stopOnce sync.Once
	wg       sync.WaitGroup
}

func New[T any](db *gorm.DB, name string, size int, interval time.Duration) *Batcher[T] {
	if size <= 0 {
		size = DefaultSize
	}
	if interval <= 0 {
		interval = DefaultInterval
	}
	b := &Batcher[T]{
		db:      db,
		name:    name,
		size:    size,
		buffer:  make([]T, 0, size),
		ticker:  time.NewTicker(interval),
		done:    make(chan struct{}),
		stopped: make(chan struct{}),
	}
	go b.flushLoop()
	return b
}

func (b *Batcher[T]) flushLoop() {
	defer close(b.stopped)
	for {
		select {
		case <-b.ticker.C:
			b.Flush()
		case <-b.done:
			b.wg.Wait()
			b.Flush()
			return
		}
	}
}

// Add buffers a row. It never blocks on the database, except after Stop,
// when the row is written immediately.
func (b *Batcher[T]) Add(row T) {
	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		b.write([]T{row})
		return
	}
	b.buffer = append(b.buffer, row)
	needFlush := len(b.buffer) >= b.size
	if needFlush {
		b.wg.Add(1)
	}
	b.mu.Unlock()

	if needFlush {
		go func() {
			defer b.wg.Done()
			b.Flush()
		}()
	}
}

// Flush writes whatever is buffered right now.
func (b *Batcher[T]) Flush() {
	b.mu.Lock()
	if len(b.buffer) == 0 {
		b.mu.Unlock()
		return
	}
	rows := b.buffer
	b.buffer = make([]T, 0, b.size)
	b.mu.Unlock()

	b.write(rows)
}

func (b *Batcher[T]) write(rows []T) {
	if err := b.db.CreateInBatches(rows, b.size).Error; err != nil {
		// Logged at WARN so a failing log sink cannot feed itself.
		slog.Warn("batch flush failed", "batch", b.name, "error", err, "count", len(rows))
	}
}

// Stop flushes the remaining rows and waits for the loop to exit.
func (b *Batcher[T]) Stop() {
	b.stopOnce.Do(func() {
		b.mu.Lock()
		b.closed = true
		b.mu.Unlock()
		b.ticker.Stop()
		close(b.done)
	})
	<-b.stopped
}

package mentions

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

// queue is a bounded FIFO of document paths pending an incremental rescan.
// Duplicate paths collapse into one pending entry so a burst of change
// events for the same document triggers a single rescan.
type queue struct {
	mu       sync.Mutex
	paths    []string
	pending  map[string]struct{}
	capacity int
	timer    *time.Timer
}

func newQueue(capacity int) queue {
	return queue{
		pending:  make(map[string]struct{}),
		capacity: capacity,
	}
}

// Enqueue schedules a document for incremental rescan. Processing happens in
// small timed batches so a flood of change events never blocks the caller.
func (c *Counter) Enqueue(path string) {
	c.queue.mu.Lock()
	defer c.queue.mu.Unlock()

	if _, ok := c.queue.pending[path]; ok {
		return
	}
	if len(c.queue.paths) >= c.queue.capacity {
		slog.Warn("rescan queue full, change event dropped",
			slog.String("path", path),
			slog.Int("capacity", c.queue.capacity))
		return
	}

	c.queue.paths = append(c.queue.paths, path)
	c.queue.pending[path] = struct{}{}
	c.scheduleLocked()
}

// QueueLen reports how many documents are waiting for a rescan.
func (c *Counter) QueueLen() int {
	c.queue.mu.Lock()
	defer c.queue.mu.Unlock()
	return len(c.queue.paths)
}

// scheduleLocked arms the drain timer if it is not already armed.
// Caller holds queue.mu.
func (c *Counter) scheduleLocked() {
	if c.queue.timer != nil {
		return
	}
	c.queue.timer = time.AfterFunc(c.queueDelay, c.drainBatch)
}

// drainBatch rescans up to batchSize queued documents, then re-arms the
// timer if more are waiting. One batch per tick keeps incremental work
// cooperative with searches running against the same counter.
func (c *Counter) drainBatch() {
	c.queue.mu.Lock()
	n := c.batchSize
	if n > len(c.queue.paths) {
		n = len(c.queue.paths)
	}
	batch := make([]string, n)
	copy(batch, c.queue.paths[:n])
	c.queue.paths = c.queue.paths[n:]
	for _, path := range batch {
		delete(c.queue.pending, path)
	}
	c.queue.timer = nil
	c.queue.mu.Unlock()

	ctx := context.Background()
	for _, path := range batch {
		if err := c.RescanFile(ctx, path); err != nil {
			slog.Warn("queued rescan failed",
				slog.String("path", path),
				slog.String("error", err.Error()))
		}
	}

	c.queue.mu.Lock()
	if len(c.queue.paths) > 0 {
		c.scheduleLocked()
	}
	c.queue.mu.Unlock()
}

// DrainNow synchronously processes the entire queue. Used by commands that
// need counts settled before reporting, and by tests.
func (c *Counter) DrainNow(ctx context.Context) error {
	for {
		c.queue.mu.Lock()
		if len(c.queue.paths) == 0 {
			if c.queue.timer != nil {
				c.queue.timer.Stop()
				c.queue.timer = nil
			}
			c.queue.mu.Unlock()
			return nil
		}
		path := c.queue.paths[0]
		c.queue.paths = c.queue.paths[1:]
		delete(c.queue.pending, path)
		c.queue.mu.Unlock()

		if err := ctx.Err(); err != nil {
			return err
		}
		if err := c.RescanFile(ctx, path); err != nil {
			slog.Warn("rescan failed during drain",
				slog.String("path", path),
				slog.String("error", err.Error()))
		}
	}
}

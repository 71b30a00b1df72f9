// Package daemon provides the long-running reconfiguration loop: a
// debounced, coalescing coordinator that reapplies the desired display
// configuration whenever the hardware or the input file changes.
package daemon

import (
	"context"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/oklog/ulid/v2"
)

// Coordinator serializes reconfiguration passes. Notification sources call
// Notify from arbitrary goroutines; the single worker loop in Run performs
// the passes one at a time.
//
// The mutex is held for the full duration of a pass, including the
// quiescence sleep. Notify uses a non-blocking TryLock, so a notification
// that arrives while a pass is in flight is dropped rather than queued;
// bursts of hardware events collapse into one pass and a slow pass can
// never back up the notification source.
type Coordinator struct {
	mu      sync.Mutex
	cond    *sync.Cond
	pending bool
	stopped bool

	wait        time.Duration
	reconfigure func() error
	onPass      func(completed uint64)
	completed   atomic.Uint64
	logger      *slog.Logger
}

// NewCoordinator creates a coordinator that waits the given quiescence
// period after a notification before invoking reconfigure.
func NewCoordinator(wait time.Duration, reconfigure func() error, logger *slog.Logger) *Coordinator {
	if logger == nil {
		logger = slog.Default()
	}
	c := &Coordinator{wait: wait, reconfigure: reconfigure, logger: logger}
	c.cond = sync.NewCond(&c.mu)
	return c
}

// SetPassCallback registers a callback invoked after every completed pass,
// successful or not, with the new completion count. Must be called before
// Run.
func (c *Coordinator) SetPassCallback(callback func(completed uint64)) {
	c.onPass = callback
}

// Notify requests a reconfiguration. Safe to call from any goroutine. If a
// pass is currently in flight the notification is intentionally dropped.
func (c *Coordinator) Notify() {
	if !c.mu.TryLock() {
		return
	}
	c.pending = true
	c.cond.Signal()
	c.mu.Unlock()
}

// Completed returns the number of reconfiguration passes that have finished.
func (c *Coordinator) Completed() uint64 {
	return c.completed.Load()
}

// Run executes the worker loop until ctx is cancelled. A failed pass is
// logged and the loop keeps waiting for the next notification; nothing a
// pass does can terminate the coordinator.
func (c *Coordinator) Run(ctx context.Context) {
	go func() {
		<-ctx.Done()
		c.mu.Lock()
		c.stopped = true
		c.cond.Broadcast()
		c.mu.Unlock()
	}()

	c.mu.Lock()
	defer c.mu.Unlock()

	for {
		for !c.pending && !c.stopped {
			c.cond.Wait()
		}
		if c.stopped {
			return
		}

		// Let the burst of hardware notifications settle before reading
		// anything. The lock stays held so further notifications coalesce
		// into this pass.
		time.Sleep(c.wait)

		logger := c.logger.With("attempt", ulid.Make().String())
		logger.Info("reconfiguring displays")

		if err := c.reconfigure(); err != nil {
			logger.Error("reconfiguration failed", "error", err)
		} else {
			logger.Info("reconfiguration successful")
		}

		c.pending = false
		count := c.completed.Add(1)
		if c.onPass != nil {
			c.onPass(count)
		}
	}
}

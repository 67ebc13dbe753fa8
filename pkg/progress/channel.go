// Package progress implements the per-job progress channel.
//
// A Channel is written by exactly one producer (the job worker) and read by
// any number of subscribers. Every subscriber observes the full event
// sequence from the first event, regardless of when it subscribed, and the
// producer never waits for a slow subscriber.
package progress

import (
	"context"
	"math"
	"sync"
)

// Event is a single progress update. Progress is in [0, 1].
type Event struct {
	Progress float64
}

// Channel is a monotone, replayable progress stream for a single job.
// It must not be reused after Close.
type Channel struct {
	mu        sync.Mutex
	history   []Event
	notify    chan struct{}
	done      chan struct{}
	closed    bool
	cancelled bool
	onCancel  []func()
}

// New creates an open Channel.
func New() *Channel {
	return &Channel{
		notify: make(chan struct{}),
		done:   make(chan struct{}),
	}
}

// Publish appends an update. Values are clamped to [0, 1] and never fall
// below the last published value. Publishing on a closed channel is a no-op.
func (c *Channel) Publish(p float64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}

	if math.IsNaN(p) {
		p = 0
	}
	p = math.Max(0, math.Min(1, p))
	if n := len(c.history); n > 0 && p < c.history[n-1].Progress {
		p = c.history[n-1].Progress
	}

	c.history = append(c.history, Event{Progress: p})
	close(c.notify)
	c.notify = make(chan struct{})
}

// Close terminates the stream. Subscribers drain the remaining events and
// then see their channel closed. Close is idempotent.
func (c *Channel) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closeLocked()
}

func (c *Channel) closeLocked() {
	if c.closed {
		return
	}
	c.closed = true
	close(c.notify)
	close(c.done)
}

// Cancel closes the stream from the consumer side and runs the registered
// cancel hooks. It does nothing once the stream is already closed.
func (c *Channel) Cancel() {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	c.cancelled = true
	c.closeLocked()
	hooks := c.onCancel
	c.onCancel = nil
	c.mu.Unlock()

	for _, fn := range hooks {
		fn()
	}
}

// OnCancel registers fn to run when Cancel is called. If the channel was
// already cancelled, fn runs immediately.
func (c *Channel) OnCancel(fn func()) {
	c.mu.Lock()
	if c.cancelled {
		c.mu.Unlock()
		fn()
		return
	}
	c.onCancel = append(c.onCancel, fn)
	c.mu.Unlock()
}

// Subscribe returns a receive-only stream of all events, starting with the
// first one ever published. The returned channel is closed after the last
// event once the Channel is closed, or when ctx is done.
func (c *Channel) Subscribe(ctx context.Context) <-chan Event {
	out := make(chan Event)
	go func() {
		defer close(out)
		next := 0
		for {
			c.mu.Lock()
			pending := append([]Event(nil), c.history[next:]...)
			closed := c.closed
			wait := c.notify
			c.mu.Unlock()

			if len(pending) == 0 {
				if closed {
					return
				}
				select {
				case <-wait:
					continue
				case <-ctx.Done():
					return
				}
			}

			for _, ev := range pending {
				select {
				case out <- ev:
					next++
				case <-ctx.Done():
					return
				}
			}
		}
	}()
	return out
}

// Events returns a snapshot of everything published so far.
func (c *Channel) Events() []Event {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]Event(nil), c.history...)
}

// Last returns the most recent progress value and whether any was published.
func (c *Channel) Last() (float64, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if len(c.history) == 0 {
		return 0, false
	}
	return c.history[len(c.history)-1].Progress, true
}

// Done is closed when the stream terminates.
func (c *Channel) Done() <-chan struct{} {
	return c.done
}

// Closed reports whether the stream has terminated.
func (c *Channel) Closed() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.closed
}

// Cancelled reports whether the stream was terminated by Cancel.
func (c *Channel) Cancelled() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.cancelled
}

// Package epoch provides change signaling over a segment: a
// monotonically increasing counter stored in segment memory (host
// byte order, via the segment's atomic word access) with in-process
// wake-up for waiters. Cross-process observers of a shared segment
// see the counter through memory and are picked up by the wait loop's
// periodic recheck.
package epoch

import (
	"context"
	"runtime"
	"sync"
	"sync/atomic"
	"time"

	"github.com/nmxmxh/memview/segment"
)

// How long Wait spins before parking on a channel, and how often a
// parked waiter rechecks memory for increments done by another
// process.
const (
	spinBudget     = time.Microsecond
	recheckPeriod  = time.Millisecond
	waiterCapacity = 8
)

// Counter is one epoch counter at a fixed 4-aligned offset inside a
// segment. Clones from Reader share the waiter list, so an Increment
// through any handle wakes waiters on all of them.
type Counter struct {
	seg segment.Segment
	off int

	waiters   *[]chan struct{}
	waitersMu *sync.Mutex

	stats *Stats
}

// Stats tracks counter activity.
type Stats struct {
	Increments uint64
	Wakes      uint64
}

// New binds a counter to seg at the given byte offset. The offset
// must be 4-byte aligned and inside the segment; the probe load
// reports segment.ErrMisaligned or segment.ErrOutOfBounds otherwise.
func New(seg segment.Segment, off int) (*Counter, error) {
	if _, err := seg.AtomicLoadUint32(off); err != nil {
		return nil, err
	}
	waiters := make([]chan struct{}, 0, waiterCapacity)
	return &Counter{
		seg:       seg,
		off:       off,
		waiters:   &waiters,
		waitersMu: &sync.Mutex{},
		stats:     &Stats{},
	}, nil
}

// Reader returns a handle sharing this counter's waiter list.
func (c *Counter) Reader() *Counter {
	return &Counter{
		seg:       c.seg,
		off:       c.off,
		waiters:   c.waiters,
		waitersMu: c.waitersMu,
		stats:     c.stats,
	}
}

// Load reads the current counter value.
func (c *Counter) Load() (uint32, error) {
	return c.seg.AtomicLoadUint32(c.off)
}

// Increment bumps the counter and wakes waiters.
func (c *Counter) Increment() (uint32, error) {
	v, err := c.seg.AtomicAddUint32(c.off, 1)
	if err != nil {
		return 0, err
	}
	atomic.AddUint64(&c.stats.Increments, 1)
	c.notifyWaiters()
	return v, nil
}

// Wait blocks until the counter differs from last, then returns the
// new value. Fast path first, a short spin second, then a parked
// channel wait with periodic rechecks. Context cancellation returns
// ctx.Err(); segment failures (detachment) propagate.
func (c *Counter) Wait(ctx context.Context, last uint32) (uint32, error) {
	// Fast path
	current, err := c.Load()
	if err != nil {
		return 0, err
	}
	if current != last {
		atomic.AddUint64(&c.stats.Wakes, 1)
		return current, nil
	}

	// Spin-wait
	spinDeadline := time.Now().Add(spinBudget)
	for time.Now().Before(spinDeadline) {
		runtime.Gosched()
		current, err = c.Load()
		if err != nil {
			return 0, err
		}
		if current != last {
			atomic.AddUint64(&c.stats.Wakes, 1)
			return current, nil
		}
	}

	// Park. Recheck after registering so an increment between the
	// spin and the registration cannot be missed.
	ch := make(chan struct{}, 1)
	c.addWaiter(ch)
	defer c.removeWaiter(ch)

	ticker := time.NewTicker(recheckPeriod)
	defer ticker.Stop()

	for {
		current, err = c.Load()
		if err != nil {
			return 0, err
		}
		if current != last {
			atomic.AddUint64(&c.stats.Wakes, 1)
			return current, nil
		}
		select {
		case <-ch:
		case <-ticker.C:
		case <-ctx.Done():
			return 0, ctx.Err()
		}
	}
}

// Snapshot returns a copy of the activity counters.
func (c *Counter) Snapshot() Stats {
	return Stats{
		Increments: atomic.LoadUint64(&c.stats.Increments),
		Wakes:      atomic.LoadUint64(&c.stats.Wakes),
	}
}

func (c *Counter) addWaiter(ch chan struct{}) {
	c.waitersMu.Lock()
	defer c.waitersMu.Unlock()
	*c.waiters = append(*c.waiters, ch)
}

func (c *Counter) removeWaiter(ch chan struct{}) {
	c.waitersMu.Lock()
	defer c.waitersMu.Unlock()
	for i, waiter := range *c.waiters {
		if waiter == ch {
			*c.waiters = append((*c.waiters)[:i], (*c.waiters)[i+1:]...)
			break
		}
	}
}

func (c *Counter) notifyWaiters() {
	c.waitersMu.Lock()
	waiters := make([]chan struct{}, len(*c.waiters))
	copy(waiters, *c.waiters)
	c.waitersMu.Unlock()

	for _, ch := range waiters {
		select {
		case ch <- struct{}{}:
		default:
		}
	}
}

// Package datelock serializes in-process writers of the same business date.
// Database advisory locks still guard cross-process writers; this layer bounds
// how long a request waits and keeps contended requests off the connection pool.
package datelock

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/propdesk-cashbook/internal/domain/shared"
	"golang.org/x/sync/semaphore"
)

type entry struct {
	sem  *semaphore.Weighted
	refs int
}

// Locker hands out one mutual-exclusion slot per key
type Locker struct {
	mu      sync.Mutex
	entries map[string]*entry
	timeout time.Duration
}

// NewLocker creates a locker; timeout <= 0 waits as long as ctx allows
func NewLocker(timeout time.Duration) *Locker {
	return &Locker{
		entries: make(map[string]*entry),
		timeout: timeout,
	}
}

// Lock blocks until key is free and returns its release func.
// Waiting longer than the timeout yields a shared.ConcurrencyError.
func (l *Locker) Lock(ctx context.Context, key string) (func(), error) {
	e := l.acquireEntry(key)

	waitCtx := ctx
	if l.timeout > 0 {
		var cancel context.CancelFunc
		waitCtx, cancel = context.WithTimeout(ctx, l.timeout)
		defer cancel()
	}

	if err := e.sem.Acquire(waitCtx, 1); err != nil {
		l.releaseEntry(key)
		if ctx.Err() != nil {
			return nil, fmt.Errorf("failed to lock %s: %w", key, ctx.Err())
		}
		if errors.Is(err, context.DeadlineExceeded) {
			return nil, shared.ConcurrencyError{Key: key, Reason: "lock wait timed out"}
		}
		return nil, fmt.Errorf("failed to lock %s: %w", key, err)
	}

	var once sync.Once
	return func() {
		once.Do(func() {
			e.sem.Release(1)
			l.releaseEntry(key)
		})
	}, nil
}

// Len reports how many keys are currently held or awaited
func (l *Locker) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.entries)
}

func (l *Locker) acquireEntry(key string) *entry {
	l.mu.Lock()
	defer l.mu.Unlock()

	e, ok := l.entries[key]
	if !ok {
		e = &entry{sem: semaphore.NewWeighted(1)}
		l.entries[key] = e
	}
	e.refs++
	return e
}

func (l *Locker) releaseEntry(key string) {
	l.mu.Lock()
	defer l.mu.Unlock()

	e, ok := l.entries[key]
	if !ok {
		return
	}
	e.refs--
	if e.refs == 0 {
		delete(l.entries, key)
	}
}

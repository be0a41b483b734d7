// Package lock provides the per-manufacturing-order mutual exclusion used by
// the cascade engine. Two implementations share one interface: an
// in-process keyed mutex for a single server and a Redis lock for several.
package lock

import (
	"context"
	"sync"
)

// Unlock releases a held lock. It is safe to call more than once.
type Unlock func()

// Locker grants exclusive access to a key.
type Locker interface {
	// Lock blocks until the key is held, the context ends, or the
	// implementation gives up. Failure to obtain is a domain ConflictError.
	Lock(ctx context.Context, key string) (Unlock, error)
}

// OrderKey is the lock key guarding an order and its work orders.
func OrderKey(orderID string) string {
	return "mo:" + orderID
}

// Local is an in-process keyed mutex. Waiters honour context cancellation.
// Entries are reference counted and dropped when no goroutine holds or
// waits on them.
type Local struct {
	mu      sync.Mutex
	entries map[string]*localEntry
}

type localEntry struct {
	ch   chan struct{}
	refs int
}

func NewLocal() *Local {
	return &Local{entries: make(map[string]*localEntry)}
}

func (l *Local) Lock(ctx context.Context, key string) (Unlock, error) {
	l.mu.Lock()
	e, ok := l.entries[key]
	if !ok {
		e = &localEntry{ch: make(chan struct{}, 1)}
		l.entries[key] = e
	}
	e.refs++
	l.mu.Unlock()

	select {
	case e.ch <- struct{}{}:
	case <-ctx.Done():
		l.release(key, e)
		return nil, ctx.Err()
	}

	var once sync.Once
	return func() {
		once.Do(func() {
			<-e.ch
			l.release(key, e)
		})
	}, nil
}

func (l *Local) release(key string, e *localEntry) {
	l.mu.Lock()
	defer l.mu.Unlock()
	e.refs--
	if e.refs == 0 {
		delete(l.entries, key)
	}
}

// held reports how many keys currently have holders or waiters.
func (l *Local) held() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.entries)
}

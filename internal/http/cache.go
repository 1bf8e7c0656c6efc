package http

import (
	"context"
	"sync"
	"time"

	"carteira/internal/core"
)

// snapshotCache memoizes the full ledger read for a bounded time so page
// loads and downloads do not hammer the backing file. A zero TTL disables
// caching entirely.
type snapshotCache struct {
	mu        sync.Mutex
	ttl       time.Duration
	rows      []core.Transaction
	fetchedAt time.Time
	valid     bool

	now func() time.Time
}

func newSnapshotCache(ttl time.Duration) *snapshotCache {
	return &snapshotCache{ttl: ttl, now: time.Now}
}

// Get returns the cached snapshot, loading through load when the cached one
// is missing or stale. Callers must not mutate the returned slice.
func (c *snapshotCache) Get(ctx context.Context, load func(context.Context) ([]core.Transaction, error)) ([]core.Transaction, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.valid && c.ttl > 0 && c.now().Sub(c.fetchedAt) < c.ttl {
		return c.rows, nil
	}

	rows, err := load(ctx)
	if err != nil {
		// Serve the stale snapshot if there is one rather than a blank page.
		if c.valid {
			return c.rows, nil
		}
		return nil, err
	}

	c.rows = rows
	c.fetchedAt = c.now()
	c.valid = true
	return rows, nil
}

// Invalidate drops the snapshot so the next Get reloads.
func (c *snapshotCache) Invalidate() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.valid = false
	c.rows = nil
}

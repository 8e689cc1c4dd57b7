package listing

import (
	"context"
	"fmt"
	"sync"
	"time"
)

// PublishedLister is the read side of the listing store used by Catalog.
type PublishedLister interface {
	ListPublished(ctx context.Context) ([]JobListing, error)
}

// Catalog keeps an in-memory snapshot of published listings. The snapshot is
// replaced wholesale on every Refresh and never mutated in place, so callers
// may hold on to a returned slice.
type Catalog struct {
	src PublishedLister

	mu        sync.RWMutex
	snapshot  []JobListing
	loadedAt  time.Time
	refreshMu sync.Mutex
}

// NewCatalog returns an empty Catalog backed by src.
func NewCatalog(src PublishedLister) *Catalog {
	return &Catalog{src: src}
}

// Refresh reloads the snapshot from the backing store.
func (c *Catalog) Refresh(ctx context.Context) (int, error) {
	c.refreshMu.Lock()
	defer c.refreshMu.Unlock()
	return c.refreshLocked(ctx)
}

// refreshLocked reloads the snapshot; the caller holds refreshMu.
func (c *Catalog) refreshLocked(ctx context.Context) (int, error) {
	listings, err := c.src.ListPublished(ctx)
	if err != nil {
		return 0, fmt.Errorf("refresh catalog: %w", err)
	}

	c.mu.Lock()
	c.snapshot = listings
	c.loadedAt = time.Now()
	c.mu.Unlock()
	return len(listings), nil
}

// Published returns the current snapshot, loading it first if the catalog
// has never been refreshed.
func (c *Catalog) Published(ctx context.Context) ([]JobListing, error) {
	c.mu.RLock()
	snap, loaded := c.snapshot, !c.loadedAt.IsZero()
	c.mu.RUnlock()
	if loaded {
		return snap, nil
	}

	c.refreshMu.Lock()
	defer c.refreshMu.Unlock()
	// another caller may have loaded it while we waited
	if c.LoadedAt().IsZero() {
		if _, err := c.refreshLocked(ctx); err != nil {
			return nil, err
		}
	}
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.snapshot, nil
}

// LoadedAt reports when the snapshot was last replaced.
func (c *Catalog) LoadedAt() time.Time {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.loadedAt
}

package client

import (
	"sync"
	"time"
)

// ResultCache memoizes successful verification-code resolutions for the life
// of a session. Entries are written only after a resolution succeeds and are
// never mutated or evicted afterwards: a cached snapshot may go stale while
// the item's state evolves server-side, which is an accepted trade-off, not a
// bug. Construct one per session and discard it when the session ends.
type ResultCache struct {
	mu      sync.RWMutex
	entries map[string]cachedResult
}

type cachedResult struct {
	item     Item
	cachedAt time.Time
}

func NewResultCache() *ResultCache {
	return &ResultCache{entries: make(map[string]cachedResult)}
}

// Get returns the snapshot cached for a code, if any. The returned item is a
// copy; mutating it cannot corrupt the cached snapshot.
func (rc *ResultCache) Get(code string) (*Item, bool) {
	rc.mu.RLock()
	defer rc.mu.RUnlock()
	entry, ok := rc.entries[code]
	if !ok {
		return nil, false
	}
	item := entry.item
	return &item, true
}

// CachedAt reports when a code's snapshot was taken.
func (rc *ResultCache) CachedAt(code string) (time.Time, bool) {
	rc.mu.RLock()
	defer rc.mu.RUnlock()
	entry, ok := rc.entries[code]
	return entry.cachedAt, ok
}

// Len returns the number of cached resolutions.
func (rc *ResultCache) Len() int {
	rc.mu.RLock()
	defer rc.mu.RUnlock()
	return len(rc.entries)
}

// put stores a successful resolution. First write wins; the snapshot for a
// code never changes once taken.
func (rc *ResultCache) put(code string, item Item) {
	rc.mu.Lock()
	defer rc.mu.Unlock()
	if _, exists := rc.entries[code]; exists {
		return
	}
	rc.entries[code] = cachedResult{item: item, cachedAt: time.Now()}
}

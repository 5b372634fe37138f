package cache

import (
	"sync"
)

// DialogueCache maps fingerprints to generated text and tracks which
// fingerprints are currently being generated. Entries are never evicted.
type DialogueCache interface {
	TryGet(fp Fingerprint) (string, bool)
	Put(fp Fingerprint, text string)
	// TryBeginGeneration atomically claims fp. It returns false if fp is
	// already in flight.
	TryBeginGeneration(fp Fingerprint) bool
	// EndGeneration releases a claim. Call it exactly once per successful
	// TryBeginGeneration, on every path.
	EndGeneration(fp Fingerprint)
}

// MemoryCache is the process-lifetime DialogueCache.
type MemoryCache struct {
	mu       sync.RWMutex
	items    map[Fingerprint]string
	inflight map[Fingerprint]struct{}
}

func NewMemoryCache() *MemoryCache {
	return &MemoryCache{
		items:    make(map[Fingerprint]string),
		inflight: make(map[Fingerprint]struct{}),
	}
}

func (c *MemoryCache) TryGet(fp Fingerprint) (string, bool) {
	c.mu.RLock()
	text, ok := c.items[fp]
	c.mu.RUnlock()
	return text, ok
}

// Put overwrites any existing entry; last write wins.
func (c *MemoryCache) Put(fp Fingerprint, text string) {
	c.mu.Lock()
	c.items[fp] = text
	c.mu.Unlock()
}

func (c *MemoryCache) TryBeginGeneration(fp Fingerprint) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, busy := c.inflight[fp]; busy {
		return false
	}
	c.inflight[fp] = struct{}{}
	return true
}

func (c *MemoryCache) EndGeneration(fp Fingerprint) {
	c.mu.Lock()
	delete(c.inflight, fp)
	c.mu.Unlock()
}

// Len returns the number of cached lines.
func (c *MemoryCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.items)
}

// InFlight reports whether fp is currently claimed.
func (c *MemoryCache) InFlight(fp Fingerprint) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	_, ok := c.inflight[fp]
	return ok
}

// InFlightCount returns the number of claimed fingerprints.
func (c *MemoryCache) InFlightCount() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.inflight)
}

package server

import (
	"sync"
	"time"

	"github.com/ogulcanaydogan/ai-bug-detector/pkg/types"
)

type cacheEntry struct {
	result    types.AnalysisResult
	expiresAt time.Time
}

type resultCache struct {
	mu      sync.RWMutex
	ttl     time.Duration
	entries map[string]cacheEntry
}

func newResultCache(ttl time.Duration) *resultCache {
	if ttl <= 0 {
		return nil
	}
	return &resultCache{
		ttl:     ttl,
		entries: make(map[string]cacheEntry),
	}
}

func (c *resultCache) get(key string, now time.Time) (types.AnalysisResult, bool) {
	if c == nil {
		return types.AnalysisResult{}, false
	}
	c.mu.RLock()
	e, ok := c.entries[key]
	c.mu.RUnlock()
	if !ok {
		return types.AnalysisResult{}, false
	}
	if e.expiresAt.After(now) {
		return e.result, true
	}
	c.mu.Lock()
	delete(c.entries, key)
	c.mu.Unlock()
	return types.AnalysisResult{}, false
}

// put stores res unless it is degraded.
func (c *resultCache) put(key string, res types.AnalysisResult, now time.Time) {
	if c == nil || res.Degraded() {
		return
	}
	c.mu.Lock()
	c.entries[key] = cacheEntry{result: res, expiresAt: now.Add(c.ttl)}
	c.mu.Unlock()
}

package dashboard

import (
	"context"
	"crypto/sha1"
	"encoding/hex"
	"encoding/json"
	"strings"
	"sync"
	"time"
)

// RenderCache memoizes rendered chart HTML so repeated layouts are cheap.
type RenderCache interface {
	GetOrRender(key string, render func() (string, error)) (string, error)
}

// ChartCache is an in-memory TTL cache for rendered charts.
type ChartCache struct {
	ttl     time.Duration
	now     func() time.Time
	mu      sync.RWMutex
	entries map[string]cachedChart
}

type cachedChart struct {
	html    string
	expires time.Time
}

// NewChartCache builds a cache with the provided TTL. A non-positive TTL
// disables caching.
func NewChartCache(ttl time.Duration) *ChartCache {
	return &ChartCache{
		ttl:     ttl,
		now:     time.Now,
		entries: make(map[string]cachedChart),
	}
}

// GetOrRender returns a cached entry or renders/stores a new one.
func (c *ChartCache) GetOrRender(key string, render func() (string, error)) (string, error) {
	if html, ok := c.get(key); ok {
		return html, nil
	}
	html, err := render()
	if err != nil {
		return "", err
	}
	c.set(key, html)
	return html, nil
}

// Len returns the number of live entries.
func (c *ChartCache) Len() int {
	if c == nil {
		return 0
	}
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

// Invalidate drops every entry whose key starts with prefix and reports how
// many were removed. An empty prefix clears the cache.
func (c *ChartCache) Invalidate(prefix string) int {
	if c == nil {
		return 0
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	removed := 0
	for k := range c.entries {
		if strings.HasPrefix(k, prefix) {
			delete(c.entries, k)
			removed++
		}
	}
	return removed
}

// RefreshHook evicts the charts of the widget named by each event. Events
// without a widget evict the whole category, or everything on a reseed.
func (c *ChartCache) RefreshHook() RefreshHook {
	return RefreshHookFunc(func(_ context.Context, event WidgetEvent) error {
		prefix := ""
		if event.Category != "" {
			prefix = string(event.Category) + ":"
			if event.Widget != "" {
				prefix = chartKeyPrefix(event.Category, event.Widget)
			}
		}
		c.Invalidate(prefix)
		return nil
	})
}

func chartKeyPrefix(category CategoryKey, widget string) string {
	return string(category) + ":" + widget + ":"
}

func (c *ChartCache) get(key string) (string, bool) {
	if c == nil || c.ttl <= 0 {
		return "", false
	}
	c.mu.RLock()
	entry, ok := c.entries[key]
	c.mu.RUnlock()
	if !ok || c.now().After(entry.expires) {
		if ok {
			c.mu.Lock()
			delete(c.entries, key)
			c.mu.Unlock()
		}
		return "", false
	}
	return entry.html, true
}

func (c *ChartCache) set(key, html string) {
	if c == nil || c.ttl <= 0 {
		return
	}
	now := c.now()
	c.mu.Lock()
	defer c.mu.Unlock()
	// widgets are removed far more often than keys are re-read; sweep
	// expired charts while we hold the lock anyway
	for k, entry := range c.entries {
		if now.After(entry.expires) {
			delete(c.entries, k)
		}
	}
	c.entries[key] = cachedChart{
		html:    html,
		expires: now.Add(c.ttl),
	}
}

// payloadHash returns a deterministic hash for a widget payload.
func payloadHash(payload map[string]any) string {
	if len(payload) == 0 {
		return "empty"
	}
	b, err := json.Marshal(payload)
	if err != nil {
		return "invalid"
	}
	sum := sha1.Sum(b)
	return hex.EncodeToString(sum[:])
}

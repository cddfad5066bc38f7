// Package cache provides thread-safe generic caching and the caches the
// console keeps for rendered previews, syntax stylesheets and static assets.
package cache

import "sync"

type Cache[K comparable, V any] struct {
	mu    sync.RWMutex
	items map[K]V
	limit int
}

func NewCache[K comparable, V any]() *Cache[K, V] {
	return &Cache[K, V]{
		items: make(map[K]V),
	}
}

// NewBoundedCache returns a cache that starts over once it holds limit items.
func NewBoundedCache[K comparable, V any](limit int) *Cache[K, V] {
	c := NewCache[K, V]()
	c.limit = limit
	return c
}

func (c *Cache[K, V]) Get(key K) (V, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	val, ok := c.items[key]
	return val, ok
}

func (c *Cache[K, V]) Set(key K, value V) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.items[key]; !ok && c.limit > 0 && len(c.items) >= c.limit {
		c.items = make(map[K]V, c.limit)
	}
	c.items[key] = value
}

func (c *Cache[K, V]) Delete(key K) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.items, key)
}

func (c *Cache[K, V]) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.items = make(map[K]V)
}

func (c *Cache[K, V]) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.items)
}

// PreviewCacheSize bounds the rendered preview cache.
const PreviewCacheSize = 512

var renderedPreviewCache = NewBoundedCache[string, []byte](PreviewCacheSize)

func GetRenderedPreview(contentHash, syntaxTheme string) ([]byte, bool) {
	return renderedPreviewCache.Get(contentHash + ":" + syntaxTheme)
}

func SetRenderedPreview(contentHash, syntaxTheme string, html []byte) {
	renderedPreviewCache.Set(contentHash+":"+syntaxTheme, html)
}

func ClearRenderedPreviewCache() {
	renderedPreviewCache.Clear()
}

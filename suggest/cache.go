package suggest

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/jellydator/ttlcache/v3"

	"github.com/Paranoid-AF/promptline"
)

const defaultCacheCapacity = 256

// Cache memoizes the results of a Source for a short time. Entries are keyed
// by the request text, caret, and working directory; failed lookups are not
// cached.
type Cache struct {
	src   Source
	cache *ttlcache.Cache[string, []promptline.Suggestion]
	once  sync.Once
}

// NewCache wraps src with a TTL cache holding at most capacity entries.
// A capacity of zero or less uses the default.
func NewCache(src Source, ttl time.Duration, capacity int) *Cache {
	if capacity <= 0 {
		capacity = defaultCacheCapacity
	}
	c := ttlcache.New[string, []promptline.Suggestion](
		ttlcache.WithTTL[string, []promptline.Suggestion](ttl),
		ttlcache.WithDisableTouchOnHit[string, []promptline.Suggestion](),
		ttlcache.WithCapacity[string, []promptline.Suggestion](uint64(capacity)),
	)
	go c.Start()
	return &Cache{src: src, cache: c}
}

// Suggest implements Source.
func (c *Cache) Suggest(ctx context.Context, req *promptline.Request) ([]promptline.Suggestion, error) {
	key := cacheKey(req)
	if item := c.cache.Get(key); item != nil {
		return item.Value(), nil
	}

	got, err := c.src.Suggest(ctx, req)
	if err != nil {
		return nil, err
	}
	c.cache.Set(key, got, ttlcache.DefaultTTL)
	return got, nil
}

// Len returns the number of cached entries.
func (c *Cache) Len() int {
	return c.cache.Len()
}

// Invalidate drops every cached entry, e.g. after a command was recorded.
func (c *Cache) Invalidate() {
	c.cache.DeleteAll()
}

// Close stops the expiration loop. It is safe to call more than once.
func (c *Cache) Close() {
	c.once.Do(c.cache.Stop)
}

func cacheKey(req *promptline.Request) string {
	return fmt.Sprintf("%s\x00%d\x00%s\x00%d", req.Environment["PWD"], req.CurrentCaretPosition, req.CurrentText, req.MaxCandidates)
}

package manifest

import (
	"context"
	"time"

	gocache "github.com/patrickmn/go-cache"

	"github.com/litescript/ls-release-tui/internal/log"
)

const cacheKey = "manifest"

// CachedSource remembers successful fetches of another source for a TTL.
// Failures are never cached, so a retry always reaches the remote.
type CachedSource struct {
	src   Source
	cache *gocache.Cache
}

// NewCachedSource wraps src.
func NewCachedSource(src Source, ttl time.Duration) *CachedSource {
	return &CachedSource{
		src:   src,
		cache: gocache.New(ttl, 2*ttl),
	}
}

// Name returns the wrapped source's name.
func (c *CachedSource) Name() string {
	return c.src.Name()
}

// Fetch returns the cached manifest or fetches a fresh one.
func (c *CachedSource) Fetch(ctx context.Context) (Manifest, error) {
	if v, found := c.cache.Get(cacheKey); found {
		if m, ok := v.(Manifest); ok {
			log.Debug(log.CatManifest, "cache hit", "source", c.src.Name())
			return m, nil
		}
	}

	m, err := c.src.Fetch(ctx)
	if err != nil {
		return Manifest{}, err
	}
	c.cache.SetDefault(cacheKey, m)
	return m, nil
}

// Invalidate drops the cached manifest.
func (c *CachedSource) Invalidate() {
	c.cache.Delete(cacheKey)
}

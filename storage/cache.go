package storage

import (
	"context"
	"sync/atomic"

	"github.com/coocood/freecache"

	"github.com/janelia-flyem/omezarr/ngff"
)

// Default size of the metadata cache placed in front of opened stores.
const DefaultCacheSize = 16 * 1024 * 1024

var cacheSize atomic.Int64

func init() {
	cacheSize.Store(DefaultCacheSize)
}

// SetCacheSize sets the metadata cache size in bytes for stores returned by
// ParseURL.  A size of zero disables caching.
func SetCacheSize(bytes int) {
	if bytes < 0 {
		bytes = 0
	}
	cacheSize.Store(int64(bytes))
}

// CacheSize returns the metadata cache size in bytes.
func CacheSize() int {
	return int(cacheSize.Load())
}

// Cached values are prefixed with a marker byte so missing keys can be cached.
// markExists records a key known to exist whose document hasn't been read.
const (
	markMissing byte = iota
	markFound
	markExists
)

// CachedStore remembers the documents, misses and existence checks of a
// wrapped store.
type CachedStore struct {
	Store
	cache *freecache.Cache
}

// NewCachedStore wraps a store with a cache of roughly the given size in bytes.
func NewCachedStore(store Store, bytes int) *CachedStore {
	return &CachedStore{Store: store, cache: freecache.NewCache(bytes)}
}

func (c *CachedStore) lookup(key string) (marker byte, data []byte, found bool) {
	value, err := c.cache.Get([]byte(key))
	if err != nil {
		if err != freecache.ErrNotFound {
			ngff.Errorf("metadata cache get failed for %q: %v\n", key, err)
		}
		return 0, nil, false
	}
	if len(value) == 0 {
		return 0, nil, false
	}
	return value[0], value[1:], true
}

func (c *CachedStore) set(key string, value []byte) {
	if err := c.cache.Set([]byte(key), value, 0); err != nil {
		ngff.Debugf("not caching %q: %v\n", key, err)
	}
}

func (c *CachedStore) Get(ctx context.Context, key string) ([]byte, error) {
	if marker, data, found := c.lookup(key); found {
		switch marker {
		case markMissing:
			return nil, nil
		case markFound:
			return data, nil
		}
	}
	data, err := c.Store.Get(ctx, key)
	if err != nil {
		return nil, err
	}
	value := []byte{markMissing}
	if data != nil {
		value = make([]byte, len(data)+1)
		value[0] = markFound
		copy(value[1:], data)
	}
	c.set(key, value)
	return data, nil
}

func (c *CachedStore) Exists(ctx context.Context, key string) (bool, error) {
	if marker, _, found := c.lookup(key); found {
		return marker != markMissing, nil
	}
	exists, err := c.Store.Exists(ctx, key)
	if err != nil {
		return false, err
	}
	if exists {
		c.set(key, []byte{markExists})
	} else {
		c.set(key, []byte{markMissing})
	}
	return exists, nil
}

// Stats returns the cache hit and miss counts.
func (c *CachedStore) Stats() (hits, misses int64) {
	return c.cache.HitCount(), c.cache.MissCount()
}

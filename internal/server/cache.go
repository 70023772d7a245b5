package server

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"log/slog"
	"maps"
	"sync/atomic"

	"github.com/bigfamingjia/ai-fortune-teller/internal/config"
)

// cacheItem stores a rendered response and its strong validator.
type cacheItem struct {
	data []byte
	etag string
	mime string
}

// newItem computes the quoted SHA-256 ETag of data.
func newItem(data []byte, mime string) *cacheItem {
	hash := sha256.Sum256(data)
	return &cacheItem{
		data: data,
		etag: fmt.Sprintf(config.FormatETag, hex.EncodeToString(hash[:])),
		mime: mime,
	}
}

// responseCache is a copy-on-write map behind an atomic.Pointer: reads
// never lock, and a full cache starts over instead of evicting.
type responseCache struct {
	items atomic.Pointer[map[string]*cacheItem]
	limit int
}

func newResponseCache(limit int) *responseCache {
	c := &responseCache{limit: limit}
	empty := map[string]*cacheItem{}
	c.items.Store(&empty)
	return c
}

// get is lock-free.
func (c *responseCache) get(key string) (*cacheItem, bool) {
	item, ok := (*c.items.Load())[key]
	return item, ok
}

// put stores item under key, retrying if another writer swapped the map first.
func (c *responseCache) put(key string, item *cacheItem) {
	for {
		old := c.items.Load()
		var next map[string]*cacheItem
		if len(*old) >= c.limit {
			next = make(map[string]*cacheItem, 1)
			slog.Debug(config.MsgCacheReset,
				config.LogKeyComponent, config.CompServer,
				config.LogKeyCount, len(*old),
			)
		} else {
			next = maps.Clone(*old)
		}
		next[key] = item
		if c.items.CompareAndSwap(old, &next) {
			slog.Debug(config.MsgCacheStored,
				config.LogKeyComponent, config.CompServer,
				config.LogKeySizeBytes, len(item.data),
				config.LogKeyETag, item.etag,
			)
			return
		}
	}
}

func (c *responseCache) len() int { return len(*c.items.Load()) }

// cacheKey hashes a canonical request encoding.
func cacheKey(prefix string, canonical []byte) string {
	hash := sha256.Sum256(canonical)
	return prefix + hex.EncodeToString(hash[:])
}

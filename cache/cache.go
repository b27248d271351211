package cache

import (
	"context"
	"strconv"
	"time"

	"github.com/cespare/xxhash/v2"
	gocache "github.com/patrickmn/go-cache"

	"github.com/goliatone/go-openfeature/feature"
)

// Entry stores a successful resolution.
type Entry struct {
	Value        any
	Variant      string
	Reason       feature.Reason
	FlagMetadata map[string]any
}

// Cache stores resolutions by key.
type Cache interface {
	Get(ctx context.Context, key string) (Entry, bool)
	Set(ctx context.Context, key string, entry Entry)
	Delete(ctx context.Context, key string)
	Clear(ctx context.Context)
}

// NoopCache ignores all cache operations.
type NoopCache struct{}

// Get implements Cache.
func (NoopCache) Get(context.Context, string) (Entry, bool) {
	return Entry{}, false
}

// Set implements Cache.
func (NoopCache) Set(context.Context, string, Entry) {}

// Delete implements Cache.
func (NoopCache) Delete(context.Context, string) {}

// Clear implements Cache.
func (NoopCache) Clear(context.Context) {}

// MemoryCache keeps entries in process with a TTL.
type MemoryCache struct {
	store *gocache.Cache
}

// NewMemory constructs a MemoryCache. A zero ttl keeps entries until
// cleared.
func NewMemory(ttl, cleanupInterval time.Duration) *MemoryCache {
	if ttl <= 0 {
		ttl = gocache.NoExpiration
	}
	return &MemoryCache{store: gocache.New(ttl, cleanupInterval)}
}

// Get implements Cache.
func (c *MemoryCache) Get(_ context.Context, key string) (Entry, bool) {
	raw, ok := c.store.Get(key)
	if !ok {
		return Entry{}, false
	}
	entry, ok := raw.(Entry)
	return entry, ok
}

// Set implements Cache.
func (c *MemoryCache) Set(_ context.Context, key string, entry Entry) {
	c.store.SetDefault(key, entry)
}

// Delete implements Cache.
func (c *MemoryCache) Delete(_ context.Context, key string) {
	c.store.Delete(key)
}

// Clear implements Cache.
func (c *MemoryCache) Clear(context.Context) {
	c.store.Flush()
}

// Len returns the number of stored entries, expired ones included until
// cleanup runs.
func (c *MemoryCache) Len() int {
	return c.store.ItemCount()
}

// Key derives a stable cache key for a typed flag lookup under evalCtx.
func Key(kind feature.FlagType, flag string, evalCtx feature.EvaluationContext) string {
	digest := xxhash.New()
	_, _ = digest.WriteString(evalCtx.TargetingKey)
	for _, name := range evalCtx.Keys() {
		value, _ := evalCtx.Field(name)
		_, _ = digest.WriteString("\x00")
		_, _ = digest.WriteString(name)
		_, _ = digest.WriteString("\x01")
		_, _ = digest.WriteString(value.Kind().String())
		_, _ = digest.WriteString("\x01")
		_, _ = digest.WriteString(value.String())
	}
	return string(kind) + ":" + flag + ":" + strconv.FormatUint(digest.Sum64(), 16)
}

var (
	_ Cache = NoopCache{}
	_ Cache = (*MemoryCache)(nil)
)

package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"time"

	"go.uber.org/zap"
)

// Key prefixes per cached operation. Invalidation patterns are prefix globs
// over these, so every write path can bound staleness to the next read.
const (
	PrefixSubjects  = "subjects"
	PrefixChapters  = "chapters"
	PrefixQuizzes   = "quizzes"
	PrefixDashboard = "dashboard"
)

// Cache is a best-effort facade over a key/value store. Every operation
// fails open: a store error is logged and treated as a miss or a no-op,
// never surfaced to the caller. Correctness must never depend on it.
type Cache struct {
	store  Store
	logger *zap.Logger
}

func New(store Store, logger *zap.Logger) *Cache {
	return &Cache{store: store, logger: logger}
}

// Get looks up a key and unmarshals the stored JSON into out.
// Returns false on miss, expiry, store failure or corrupt payload.
func (c *Cache) Get(ctx context.Context, key string, out interface{}) bool {
	raw, ok, err := c.store.Get(ctx, key)
	if err != nil {
		c.logger.Warn("cache get failed", zap.String("key", key), zap.Error(err))
		return false
	}
	if !ok {
		return false
	}
	if err := json.Unmarshal([]byte(raw), out); err != nil {
		c.logger.Warn("cache entry corrupt", zap.String("key", key), zap.Error(err))
		return false
	}
	return true
}

// Set stores a JSON snapshot of value under key with the given TTL.
func (c *Cache) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) {
	raw, err := json.Marshal(value)
	if err != nil {
		c.logger.Warn("cache marshal failed", zap.String("key", key), zap.Error(err))
		return
	}
	if err := c.store.Set(ctx, key, string(raw), ttl); err != nil {
		c.logger.Warn("cache set failed", zap.String("key", key), zap.Error(err))
	}
}

// Invalidate deletes every key matching the glob pattern. Writes call this
// with a prefix pattern before responding, so a cached read never outlives
// the mutation it depends on by more than its TTL.
func (c *Cache) Invalidate(ctx context.Context, pattern string) {
	if err := c.store.DeletePattern(ctx, pattern); err != nil {
		c.logger.Warn("cache invalidate failed", zap.String("pattern", pattern), zap.Error(err))
	}
}

// InvalidatePrefix invalidates every entry under a key prefix.
func (c *Cache) InvalidatePrefix(ctx context.Context, prefix string) {
	c.Invalidate(ctx, prefix+":*")
}

// KeyFor derives a cache key from a prefix, the cached operation's name and
// its arguments. The hash is over the JSON encoding of the argument list,
// so it is stable across processes, order-sensitive for positional args and
// independent of object identity.
func KeyFor(prefix, op string, args ...interface{}) string {
	raw, err := json.Marshal(args)
	if err != nil {
		raw = []byte(op)
	}
	sum := sha256.Sum256(raw)
	return prefix + ":" + op + ":" + hex.EncodeToString(sum[:16])
}

// Cached memoizes a read operation. On a hit the stored snapshot is returned
// without invoking fn; on a miss fn runs and its result is stored. A store
// failure on either side still returns fn's normal result.
func Cached[T any](ctx context.Context, c *Cache, ttl time.Duration, prefix, op string, fn func() (T, error), args ...interface{}) (T, error) {
	key := KeyFor(prefix, op, args...)

	var cached T
	if c.Get(ctx, key, &cached) {
		return cached, nil
	}

	result, err := fn()
	if err != nil {
		return result, err
	}
	c.Set(ctx, key, result, ttl)
	return result, nil
}

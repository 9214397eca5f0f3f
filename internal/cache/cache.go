package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"time"

	"github.com/ppiankov/plancours/internal/model"
)

const keyPrefix = "plancours:v1:"

// Cache defines the interface for caching
type Cache interface {
	Get(key string) ([]byte, bool)
	Set(key string, value []byte, ttl time.Duration) error
	Delete(key string) error
	Clear() error
}

// Key derives a cache key from the inputs that determine a verdict.
// Parts are length-delimited so ("ab", "c") and ("a", "bc") never collide.
func Key(parts ...string) string {
	h := sha256.New()
	var sep [1]byte
	for _, p := range parts {
		_, _ = h.Write([]byte(p))
		_, _ = h.Write(sep[:])
	}
	return keyPrefix + hex.EncodeToString(h.Sum(nil))
}

// New builds the cache described by cfg. A disabled cache still returns a
// working memory layer so callers never branch on nil.
func New(cfg model.CacheConfig) Cache {
	memoryTTL := cfg.MemoryTTL
	if memoryTTL <= 0 {
		memoryTTL = time.Hour
	}
	if !cfg.Enabled || cfg.Dir == "" {
		return NewMemoryCache(memoryTTL, 10*time.Minute)
	}
	return NewLayeredCache(memoryTTL, cfg.Dir, cfg.DiskTTL)
}

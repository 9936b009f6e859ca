package match

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"sync"
)

// Fingerprint hashes a text into the cache key for its embedding.
func Fingerprint(text string) string {
	sum := sha256.Sum256([]byte(text))
	return hex.EncodeToString(sum[:])
}

// EmbeddingCache memoizes embedding vectors by content fingerprint. It is
// safe for concurrent use; two goroutines racing on the same key may both
// compute, and the second write simply overwrites the identical value.
// The cache is purely an optimization and is never persisted.
type EmbeddingCache struct {
	mu      sync.RWMutex
	entries map[string][]float32
}

func NewEmbeddingCache() *EmbeddingCache {
	return &EmbeddingCache{
		entries: make(map[string][]float32),
	}
}

// GetOrCompute returns the cached vector for key, calling compute on a miss.
// compute runs outside the lock so slow embedding calls for distinct keys
// can overlap.
func (c *EmbeddingCache) GetOrCompute(ctx context.Context, key string, compute func(ctx context.Context) ([]float32, error)) ([]float32, error) {
	c.mu.RLock()
	vec, ok := c.entries[key]
	c.mu.RUnlock()
	if ok {
		return vec, nil
	}

	vec, err := compute(ctx)
	if err != nil {
		return nil, err
	}

	c.mu.Lock()
	c.entries[key] = vec
	c.mu.Unlock()

	return vec, nil
}

// Len reports the number of cached vectors.
func (c *EmbeddingCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

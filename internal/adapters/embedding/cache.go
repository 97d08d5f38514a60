package embedding

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"sync"

	"github.com/resumatch/resumatch/pkg/metrics"
)

// defaultCacheSize bounds the cache when no size is configured.
const defaultCacheSize = 10_000

// CachedEmbedder wraps an Embedder with a content-hash cache. Catalog rows
// are embedded once at startup and resumes repeat across page reloads, so
// hits are common. Write-mostly at startup, read-mostly afterwards.
type CachedEmbedder struct {
	inner Embedder

	mu      sync.RWMutex
	entries map[string][]float32
	maxSize int
}

// CacheOption applies a configuration option to the CachedEmbedder.
type CacheOption func(*CachedEmbedder)

// WithMaxSize bounds the number of cached embeddings.
func WithMaxSize(size int) CacheOption {
	return func(c *CachedEmbedder) {
		if size > 0 {
			c.maxSize = size
		}
	}
}

// NewCached wraps inner with a cache.
func NewCached(inner Embedder, opts ...CacheOption) *CachedEmbedder {
	c := &CachedEmbedder{
		inner:   inner,
		entries: make(map[string][]float32),
		maxSize: defaultCacheSize,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Dimension implements Embedder.
func (c *CachedEmbedder) Dimension() int { return c.inner.Dimension() }

// Embed implements Embedder.
func (c *CachedEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	key := contentKey(text)

	c.mu.RLock()
	vec, ok := c.entries[key]
	c.mu.RUnlock()
	if ok {
		metrics.RecordEmbeddingCacheHit()
		return vec, nil
	}

	vec, err := c.inner.Embed(ctx, text)
	if err != nil {
		return nil, err
	}
	c.store(key, vec)
	return vec, nil
}

// EmbedBatch implements Embedder. Only cache misses reach the inner
// provider; outputs keep input order.
func (c *CachedEmbedder) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, len(texts))
	var missIdx []int
	var missTexts []string

	c.mu.RLock()
	for i, t := range texts {
		if vec, ok := c.entries[contentKey(t)]; ok {
			out[i] = vec
			metrics.RecordEmbeddingCacheHit()
			continue
		}
		missIdx = append(missIdx, i)
		missTexts = append(missTexts, t)
	}
	c.mu.RUnlock()

	if len(missTexts) == 0 {
		return out, nil
	}
	vecs, err := c.inner.EmbedBatch(ctx, missTexts)
	if err != nil {
		return nil, err
	}
	if len(vecs) != len(missTexts) {
		return nil, fmt.Errorf("%w: got %d embeddings for %d inputs", ErrProviderResponse, len(vecs), len(missTexts))
	}
	for j, i := range missIdx {
		out[i] = vecs[j]
		c.store(contentKey(texts[i]), vecs[j])
	}
	return out, nil
}

// Size returns the current entry count.
func (c *CachedEmbedder) Size() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

func (c *CachedEmbedder) store(key string, vec []float32) {
	c.mu.Lock()
	// The working set (catalog + recent resumes) fits well under maxSize;
	// a full reset on overflow keeps the map bounded without bookkeeping.
	if len(c.entries) >= c.maxSize {
		c.entries = make(map[string][]float32)
	}
	c.entries[key] = vec
	size := len(c.entries)
	c.mu.Unlock()

	metrics.UpdateEmbeddingCacheSize(size)
}

func contentKey(text string) string {
	sum := sha256.Sum256([]byte(text))
	return hex.EncodeToString(sum[:])
}

package embed

import (
	"context"

	"github.com/andrea9293/mcp-documentation-server/internal/cache"
	docerrors "github.com/andrea9293/mcp-documentation-server/internal/errors"
)

// CachedEmbedder wraps an Embedder with the LRU embedding cache so repeated
// queries and re-chunked content skip the provider entirely. A cache miss is
// never an error, only a delegated call.
type CachedEmbedder struct {
	inner Embedder
	cache *cache.Cache
}

// NewCachedEmbedder creates a cached embedder sharing the given cache.
// Sharing one cache between query and chunk embedding maximizes reuse.
func NewCachedEmbedder(inner Embedder, c *cache.Cache) *CachedEmbedder {
	if c == nil {
		c = cache.New(cache.DefaultCapacity)
	}
	return &CachedEmbedder{inner: inner, cache: c}
}

// Verify interface implementation at compile time.
var _ Embedder = (*CachedEmbedder)(nil)

// Embed returns the cached embedding if present, otherwise computes and
// caches it. The returned vector is checked against the provider's declared
// dimensionality.
func (c *CachedEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	if vec, ok := c.cache.Get(text); ok {
		return vec, nil
	}

	vec, err := c.inner.Embed(ctx, text)
	if err != nil {
		return nil, err
	}
	if dims := c.inner.Dimensions(); dims > 0 && len(vec) != dims {
		return nil, docerrors.DimensionMismatch(dims, len(vec))
	}

	c.cache.Put(text, vec)
	return vec, nil
}

// EmbedBatch embeds multiple texts, serving what it can from cache and
// delegating only the misses in one provider call.
func (c *CachedEmbedder) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return [][]float32{}, nil
	}

	results := make([][]float32, len(texts))
	uncachedIndices := make([]int, 0, len(texts))
	uncachedTexts := make([]string, 0, len(texts))

	for i, text := range texts {
		if vec, ok := c.cache.Get(text); ok {
			results[i] = vec
		} else {
			uncachedIndices = append(uncachedIndices, i)
			uncachedTexts = append(uncachedTexts, text)
		}
	}

	if len(uncachedTexts) == 0 {
		return results, nil
	}

	newEmbeddings, err := c.inner.EmbedBatch(ctx, uncachedTexts)
	if err != nil {
		return nil, err
	}

	dims := c.inner.Dimensions()
	for j, idx := range uncachedIndices {
		vec := newEmbeddings[j]
		if dims > 0 && len(vec) != dims {
			return nil, docerrors.DimensionMismatch(dims, len(vec))
		}
		results[idx] = vec
		c.cache.Put(texts[idx], vec)
	}

	return results, nil
}

// Dimensions returns the embedding dimensionality (passthrough).
func (c *CachedEmbedder) Dimensions() int {
	return c.inner.Dimensions()
}

// ModelName returns the model identifier (passthrough).
func (c *CachedEmbedder) ModelName() string {
	return c.inner.ModelName()
}

// Ready reports readiness (passthrough).
func (c *CachedEmbedder) Ready(ctx context.Context) bool {
	return c.inner.Ready(ctx)
}

// Close closes the inner embedder. The cache is owned by the caller and
// survives for persistence.
func (c *CachedEmbedder) Close() error {
	return c.inner.Close()
}

// Cache returns the underlying embedding cache for stats and persistence.
func (c *CachedEmbedder) Cache() *cache.Cache {
	return c.cache
}

// Inner returns the wrapped embedder.
func (c *CachedEmbedder) Inner() Embedder {
	return c.inner
}

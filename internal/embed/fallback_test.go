package embed

import (
	"context"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFallbackDeterministic(t *testing.T) {
	e := NewFallbackEmbedder()
	ctx := context.Background()

	v1, err := e.Embed(ctx, "the quick brown fox")
	require.NoError(t, err)
	v2, err := e.Embed(ctx, "the quick brown fox")
	require.NoError(t, err)

	assert.Equal(t, v1, v2)
}

func TestFallbackDimensions(t *testing.T) {
	e := NewFallbackEmbedder()

	vec, err := e.Embed(context.Background(), "hello")
	require.NoError(t, err)
	assert.Len(t, vec, FallbackDimensions)
	assert.Equal(t, FallbackDimensions, e.Dimensions())
}

func TestFallbackNormalized(t *testing.T) {
	e := NewFallbackEmbedder()

	vec, err := e.Embed(context.Background(), "some meaningful document text")
	require.NoError(t, err)

	var norm float64
	for _, v := range vec {
		norm += float64(v) * float64(v)
	}
	assert.InDelta(t, 1.0, math.Sqrt(norm), 1e-3)
}

func TestFallbackEmptyInput(t *testing.T) {
	e := NewFallbackEmbedder()

	vec, err := e.Embed(context.Background(), "   \n  ")
	require.NoError(t, err)
	assert.Len(t, vec, FallbackDimensions)
	for _, v := range vec {
		assert.Zero(t, v)
	}
}

func TestFallbackDistinctTextsDiffer(t *testing.T) {
	e := NewFallbackEmbedder()
	ctx := context.Background()

	v1, err := e.Embed(ctx, "cats chase mice around the barn")
	require.NoError(t, err)
	v2, err := e.Embed(ctx, "quantum entanglement experiments")
	require.NoError(t, err)

	assert.NotEqual(t, v1, v2)
}

func TestFallbackEmbedBatch(t *testing.T) {
	e := NewFallbackEmbedder()

	vecs, err := e.EmbedBatch(context.Background(), []string{"one", "two", "three"})
	require.NoError(t, err)
	require.Len(t, vecs, 3)
	for _, v := range vecs {
		assert.Len(t, v, FallbackDimensions)
	}
}

func TestFallbackAlwaysReady(t *testing.T) {
	e := NewFallbackEmbedder()
	assert.True(t, e.Ready(context.Background()))

	require.NoError(t, e.Close())
	assert.False(t, e.Ready(context.Background()))

	_, err := e.Embed(context.Background(), "x")
	assert.Error(t, err)
}

func TestTokenizeDropsStopwords(t *testing.T) {
	tokens := tokenize("The cat and the dog")
	assert.Equal(t, []string{"cat", "dog"}, tokens)
}

func TestExtractNgrams(t *testing.T) {
	assert.Equal(t, []string{"abc", "bcd"}, extractNgrams("abcd", 3))
	assert.Empty(t, extractNgrams("ab", 3))
}

package embed

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	docerrors "github.com/andrea9293/mcp-documentation-server/internal/errors"
)

func TestLazyNoBuildBeforeFirstEmbed(t *testing.T) {
	var builds atomic.Int64
	l := NewLazyEmbedder(func(ctx context.Context) (Embedder, error) {
		builds.Add(1)
		return newMockEmbedder(8), nil
	}, "declared-model", 8, time.Second)

	assert.Equal(t, int64(0), builds.Load())
	assert.Equal(t, "declared-model", l.ModelName())
	assert.Equal(t, 8, l.Dimensions())
	assert.False(t, l.Ready(context.Background()))
}

func TestLazyBuildsOnce(t *testing.T) {
	var builds atomic.Int64
	l := NewLazyEmbedder(func(ctx context.Context) (Embedder, error) {
		builds.Add(1)
		return newMockEmbedder(8), nil
	}, "m", 8, time.Second)

	ctx := context.Background()
	_, err := l.Embed(ctx, "first")
	require.NoError(t, err)
	_, err = l.Embed(ctx, "second")
	require.NoError(t, err)

	assert.Equal(t, int64(1), builds.Load())
	assert.True(t, l.Ready(ctx))
}

func TestLazyConcurrentInitCollapsed(t *testing.T) {
	var builds atomic.Int64
	l := NewLazyEmbedder(func(ctx context.Context) (Embedder, error) {
		builds.Add(1)
		time.Sleep(20 * time.Millisecond) // widen the race window
		return newMockEmbedder(8), nil
	}, "m", 8, time.Second)

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := l.Embed(context.Background(), "race")
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	assert.Equal(t, int64(1), builds.Load(), "concurrent callers must share one initialization")
}

func TestLazyInitTimeout(t *testing.T) {
	l := NewLazyEmbedder(func(ctx context.Context) (Embedder, error) {
		<-ctx.Done()
		return nil, ctx.Err()
	}, "m", 8, 20*time.Millisecond)

	_, err := l.Embed(context.Background(), "x")
	require.Error(t, err)
	assert.Equal(t, docerrors.ErrCodeProviderInitTimeout, docerrors.GetCode(err))
	assert.True(t, docerrors.IsRetryable(err))
}

func TestLazyRetryAfterFailure(t *testing.T) {
	var builds atomic.Int64
	l := NewLazyEmbedder(func(ctx context.Context) (Embedder, error) {
		if builds.Add(1) == 1 {
			return nil, errors.New("transient init failure")
		}
		return newMockEmbedder(8), nil
	}, "m", 8, time.Second)

	ctx := context.Background()
	_, err := l.Embed(ctx, "x")
	require.Error(t, err)

	// A failed initialization is not memoized; the next call retries.
	_, err = l.Embed(ctx, "x")
	require.NoError(t, err)
	assert.Equal(t, int64(2), builds.Load())
}

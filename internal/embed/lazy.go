package embed

import (
	"context"
	"errors"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	docerrors "github.com/andrea9293/mcp-documentation-server/internal/errors"
)

// BuildFunc constructs the underlying embedder. It is invoked at most once
// per initialization attempt, on the first Embed call.
type BuildFunc func(ctx context.Context) (Embedder, error)

// LazyEmbedder defers provider construction to the first embedding call.
// Concurrent first calls are collapsed through a single-flight guard: all
// callers await one in-flight initialization instead of triggering redundant
// model loads. A failed or timed-out initialization is not memoized, so a
// later call retries from scratch.
type LazyEmbedder struct {
	build       BuildFunc
	initTimeout time.Duration

	// Declared identity, reported before the real provider exists.
	declaredModel string
	declaredDims  int

	group singleflight.Group
	mu    sync.RWMutex
	inner Embedder
}

// Verify interface implementation at compile time.
var _ Embedder = (*LazyEmbedder)(nil)

// NewLazyEmbedder wraps a build function with lazy single-flight
// initialization. declaredModel and declaredDims describe the provider
// before it is built; they must match what the build function produces.
func NewLazyEmbedder(build BuildFunc, declaredModel string, declaredDims int, initTimeout time.Duration) *LazyEmbedder {
	if initTimeout <= 0 {
		initTimeout = DefaultInitTimeout
	}
	return &LazyEmbedder{
		build:         build,
		initTimeout:   initTimeout,
		declaredModel: declaredModel,
		declaredDims:  declaredDims,
	}
}

// ensure returns the initialized inner embedder, building it if needed.
func (l *LazyEmbedder) ensure() (Embedder, error) {
	l.mu.RLock()
	inner := l.inner
	l.mu.RUnlock()
	if inner != nil {
		return inner, nil
	}

	// Initialization runs on a detached context so one caller's
	// cancellation cannot poison the shared result for other waiters.
	// The timeout alone bounds it.
	v, err, _ := l.group.Do("init", func() (any, error) {
		initCtx, cancel := context.WithTimeout(context.Background(), l.initTimeout)
		defer cancel()

		built, err := l.build(initCtx)
		if err != nil {
			if errors.Is(err, context.DeadlineExceeded) || initCtx.Err() != nil {
				return nil, docerrors.New(docerrors.ErrCodeProviderInitTimeout,
					"embedding provider failed to initialize in time", err).
					WithSuggestion("Check that the model service is running; the call may be retried.")
			}
			return nil, err
		}

		l.mu.Lock()
		l.inner = built
		l.mu.Unlock()
		return built, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(Embedder), nil
}

// Embed initializes the provider if needed and delegates.
func (l *LazyEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	inner, err := l.ensure()
	if err != nil {
		return nil, err
	}
	return inner.Embed(ctx, text)
}

// EmbedBatch initializes the provider if needed and delegates.
func (l *LazyEmbedder) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	inner, err := l.ensure()
	if err != nil {
		return nil, err
	}
	return inner.EmbedBatch(ctx, texts)
}

// Dimensions returns the declared dimensionality until the provider is
// built, then the provider's actual dimensionality.
func (l *LazyEmbedder) Dimensions() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	if l.inner != nil {
		return l.inner.Dimensions()
	}
	return l.declaredDims
}

// ModelName returns the model identifier.
func (l *LazyEmbedder) ModelName() string {
	l.mu.RLock()
	defer l.mu.RUnlock()
	if l.inner != nil {
		return l.inner.ModelName()
	}
	return l.declaredModel
}

// Ready reports whether the provider has been initialized and is usable.
// It never triggers initialization.
func (l *LazyEmbedder) Ready(ctx context.Context) bool {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.inner != nil && l.inner.Ready(ctx)
}

// Close releases the inner embedder if it was ever built.
func (l *LazyEmbedder) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.inner != nil {
		return l.inner.Close()
	}
	return nil
}

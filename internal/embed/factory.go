package embed

import (
	"context"
	"log/slog"

	"github.com/andrea9293/mcp-documentation-server/internal/cache"
	"github.com/andrea9293/mcp-documentation-server/internal/config"
)

// NewEmbedder creates the configured embedder, wrapped with lazy
// initialization and the shared embedding cache.
//
// Provider selection:
//   - "ollama": lazy Ollama-backed provider (default)
//   - "fallback": deterministic hash-based provider
//
// The factory never probes availability itself; degradation to the fallback
// provider is a caller decision, keeping construction deterministic.
func NewEmbedder(cfg config.EmbeddingsConfig, c *cache.Cache) *CachedEmbedder {
	var inner Embedder

	switch cfg.Provider {
	case "fallback":
		inner = NewFallbackEmbedder()
	default:
		dims := cfg.Dimensions
		if dims == 0 {
			dims = DefaultDimensions
		}
		build := func(ctx context.Context) (Embedder, error) {
			slog.Info("initializing embedding provider",
				slog.String("model", cfg.Model),
				slog.String("host", cfg.OllamaHost))
			return NewOllamaEmbedder(ctx, OllamaConfig{
				Host:       cfg.OllamaHost,
				Model:      cfg.Model,
				Dimensions: cfg.Dimensions,
			})
		}
		inner = NewLazyEmbedder(build, cfg.Model, dims, cfg.InitTimeout)
	}

	return NewCachedEmbedder(inner, c)
}

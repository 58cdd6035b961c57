// Package search scores document chunks against a query embedding and
// serves context windows around a chunk.
package search

import (
	"context"
	"log/slog"
	"math"
	"sort"
	"strconv"
	"strings"

	"github.com/andrea9293/mcp-documentation-server/internal/chunk"
	"github.com/andrea9293/mcp-documentation-server/internal/embed"
	docerrors "github.com/andrea9293/mcp-documentation-server/internal/errors"
)

// Result pairs a chunk with its similarity score.
type Result struct {
	Chunk chunk.Chunk
	Score float64
}

// Window is a contiguous slice of a document's chunks around a center.
type Window struct {
	Chunks []chunk.Chunk
	Center int
	Total  int
}

// Engine ranks chunks by cosine similarity to a query. Queries go through
// the same cache-backed embedder as ingestion, so repeated queries are
// cheap.
type Engine struct {
	embedder embed.Embedder
	logger   *slog.Logger
}

// NewEngine creates a search engine on top of the given embedder.
func NewEngine(embedder embed.Embedder, logger *slog.Logger) *Engine {
	if logger == nil {
		logger = slog.Default()
	}
	return &Engine{embedder: embedder, logger: logger}
}

// Search embeds the query and scores every chunk, returning the top limit
// results ordered by score descending, ties broken by ascending chunk
// index. Chunks without an embedding score 0 rather than erroring.
func (e *Engine) Search(ctx context.Context, chunks []chunk.Chunk, query string, limit int) ([]Result, error) {
	if strings.TrimSpace(query) == "" {
		return nil, docerrors.New(docerrors.ErrCodeQueryEmpty, "search query is empty", nil)
	}
	if limit <= 0 {
		limit = DefaultLimit
	}

	queryVec, err := e.embedder.Embed(ctx, query)
	if err != nil {
		return nil, docerrors.Wrap(docerrors.ErrCodeEmbeddingFailed, err)
	}

	results := make([]Result, 0, len(chunks))
	for _, ch := range chunks {
		var score float64
		if len(ch.Embedding) > 0 {
			score, err = CosineSimilarity(queryVec, ch.Embedding)
			if err != nil {
				return nil, err
			}
		}
		results = append(results, Result{Chunk: ch, Score: score})
	}

	sort.SliceStable(results, func(i, j int) bool {
		if results[i].Score != results[j].Score {
			return results[i].Score > results[j].Score
		}
		return results[i].Chunk.Index < results[j].Chunk.Index
	})

	if len(results) > limit {
		results = results[:limit]
	}
	return results, nil
}

// DefaultLimit is the result count when the caller does not specify one.
const DefaultLimit = 10

// CosineSimilarity computes dot(a,b) / (||a|| * ||b||). A zero-norm vector
// on either side yields 0 so ordering stays well-defined. Mismatched
// dimensions are a typed error, never truncated or padded.
func CosineSimilarity(a, b []float32) (float64, error) {
	if len(a) != len(b) {
		return 0, docerrors.DimensionMismatch(len(a), len(b)).
			WithSuggestion("re-add the document so its chunks are embedded with the current model")
	}

	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	if normA == 0 || normB == 0 {
		return 0, nil
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB)), nil
}

// ContextWindow returns the chunks in [max(0, center-before),
// min(total, center+after+1)) in original order. A center outside the
// document is a validation error.
func ContextWindow(chunks []chunk.Chunk, center, before, after int) (Window, error) {
	total := len(chunks)
	if center < 0 || center >= total {
		return Window{}, docerrors.ValidationError("chunk index out of range", nil).
			WithDetail("chunk_index", strconv.Itoa(center)).
			WithDetail("total_chunks", strconv.Itoa(total))
	}
	if before < 0 {
		before = 0
	}
	if after < 0 {
		after = 0
	}

	lo := center - before
	if lo < 0 {
		lo = 0
	}
	hi := center + after + 1
	if hi > total {
		hi = total
	}

	window := make([]chunk.Chunk, hi-lo)
	copy(window, chunks[lo:hi])
	return Window{Chunks: window, Center: center, Total: total}, nil
}

package chunk

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"log/slog"

	"golang.org/x/sync/errgroup"

	"github.com/andrea9293/mcp-documentation-server/internal/embed"
	docerrors "github.com/andrea9293/mcp-documentation-server/internal/errors"
)

// Chunker splits text into chunks and embeds them.
type Chunker struct {
	embedder embed.Embedder
	logger   *slog.Logger
}

// NewChunker creates a chunker using the given embedder (normally the
// cache-backed one).
func NewChunker(embedder embed.Embedder, logger *slog.Logger) *Chunker {
	if logger == nil {
		logger = slog.Default()
	}
	return &Chunker{embedder: embedder, logger: logger}
}

// boundary is a half-open [start, end) span of the source text.
type boundary struct {
	start int
	end   int
}

// Chunk splits text into embedded chunks. Splitting is deterministic for a
// fixed input and options; embedding failures fail the whole operation so a
// partially embedded document is never produced.
func (c *Chunker) Chunk(ctx context.Context, documentID, text string, opts Options) ([]Chunk, error) {
	opts = opts.normalized()

	boundaries := splitBoundaries(text, opts)
	if len(boundaries) == 0 {
		return []Chunk{}, nil
	}

	chunks := make([]Chunk, len(boundaries))
	for i, b := range boundaries {
		content := text[b.start:b.end]
		chunks[i] = Chunk{
			ID:         chunkID(documentID, b.start),
			DocumentID: documentID,
			Index:      i,
			Content:    content,
			StartPos:   b.start,
			EndPos:     b.end,
		}
	}

	var err error
	if opts.Parallel && len(chunks) > 1 {
		err = c.embedParallel(ctx, chunks, opts.Workers)
	} else {
		err = c.embedSequential(ctx, chunks)
	}
	if err != nil {
		return nil, docerrors.New(docerrors.ErrCodeChunkingFailed,
			fmt.Sprintf("chunking document %s failed", documentID), err)
	}

	c.logger.Debug("document chunked",
		slog.String("document_id", documentID),
		slog.Int("chunks", len(chunks)),
		slog.Bool("parallel", opts.Parallel))

	return chunks, nil
}

// embedSequential embeds chunks one at a time with per-chunk retries.
func (c *Chunker) embedSequential(ctx context.Context, chunks []Chunk) error {
	for i := range chunks {
		vec, err := c.embedWithRetry(ctx, chunks[i].Content)
		if err != nil {
			return fmt.Errorf("embed chunk %d: %w", i, err)
		}
		chunks[i].Embedding = vec
	}
	return nil
}

// embedParallel embeds chunks concurrently up to the worker bound. Results
// land by chunk index, so final ordering matches the sequential split order
// regardless of completion order.
func (c *Chunker) embedParallel(ctx context.Context, chunks []Chunk, workers int) error {
	g, gctx := errgroup.WithContext(ctx)
	sem := make(chan struct{}, workers)

	for i := range chunks {
		i := i
		g.Go(func() error {
			select {
			case sem <- struct{}{}:
				defer func() { <-sem }()
			case <-gctx.Done():
				return gctx.Err()
			}

			vec, err := c.embedWithRetry(gctx, chunks[i].Content)
			if err != nil {
				return fmt.Errorf("embed chunk %d: %w", i, err)
			}
			chunks[i].Embedding = vec
			return nil
		})
	}

	return g.Wait()
}

// embedWithRetry calls the embedder with bounded retries for transient
// provider failures.
func (c *Chunker) embedWithRetry(ctx context.Context, content string) ([]float32, error) {
	return docerrors.RetryWithResult(ctx, docerrors.EmbedRetryConfig(), func() ([]float32, error) {
		return c.embedder.Embed(ctx, content)
	})
}

// chunkID derives a stable chunk identifier from the parent document and
// the chunk's start offset.
func chunkID(documentID string, start int) string {
	sum := sha256.Sum256([]byte(fmt.Sprintf("%s:%d", documentID, start)))
	return hex.EncodeToString(sum[:])[:16]
}

// splitBoundaries computes chunk spans over the text. Each span ends at a
// sentence boundary when one fits within the target size; a single sentence
// longer than the target is hard-split. Consecutive spans share an overlap
// region, so concatenating spans with the overlap removed reproduces the
// text exactly.
func splitBoundaries(text string, opts Options) []boundary {
	if len(text) == 0 {
		return nil
	}

	var boundaries []boundary
	start := 0
	for start < len(text) {
		target := opts.MaxSize
		if opts.AdaptiveSize {
			target = adaptiveTarget(text, start, opts)
		}

		end := start + target
		if end >= len(text) {
			end = len(text)
		} else {
			if cut := lastSentenceEnd(text, start, end); cut > start {
				end = cut
			}
			// No sentence boundary in range: hard split at target,
			// avoiding a mid-rune cut.
			end = alignRune(text, end)
			if end <= start {
				end = nextRune(text, start)
			}
		}

		boundaries = append(boundaries, boundary{start: start, end: end})
		if end >= len(text) {
			break
		}

		next := alignRune(text, end-opts.Overlap)
		if next <= start {
			next = end // overlap would stall; move on without it
		}
		start = next
	}
	return boundaries
}

// lastSentenceEnd returns the largest offset in (start, limit] that follows
// a sentence terminator (., !, ?) and its trailing whitespace run, or start
// if there is none.
func lastSentenceEnd(text string, start, limit int) int {
	best := start
	for i := start; i < limit; i++ {
		switch text[i] {
		case '.', '!', '?':
			// Swallow the whitespace run after the terminator so chunks
			// end cleanly and the next chunk starts at a word.
			j := i + 1
			for j < limit && isSpace(text[j]) {
				j++
			}
			// Only treat as sentence end if followed by space/EOF, not
			// an abbreviation glued to the next word (e.g. "3.14").
			if j == len(text) || j > i+1 {
				best = j
			}
		}
	}
	return best
}

func isSpace(b byte) bool {
	return b == ' ' || b == '\t' || b == '\n' || b == '\r'
}

// alignRune moves pos back to the nearest rune start so a hard split never
// severs a multi-byte character.
func alignRune(text string, pos int) int {
	for pos > 0 && pos < len(text) && text[pos]&0xC0 == 0x80 {
		pos--
	}
	return pos
}

// nextRune returns the offset just past the rune starting at pos.
func nextRune(text string, pos int) int {
	pos++
	for pos < len(text) && text[pos]&0xC0 == 0x80 {
		pos++
	}
	return pos
}

package chunk

import (
	"context"
	"fmt"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	docerrors "github.com/andrea9293/mcp-documentation-server/internal/errors"
)

type stubEmbedder struct {
	calls   atomic.Int64
	embedFn func(text string) ([]float32, error)
}

func (s *stubEmbedder) Embed(_ context.Context, text string) ([]float32, error) {
	s.calls.Add(1)
	if s.embedFn != nil {
		return s.embedFn(text)
	}
	return []float32{float32(len(text)), 1, 0}, nil
}

func (s *stubEmbedder) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, len(texts))
	for i, t := range texts {
		vec, err := s.Embed(ctx, t)
		if err != nil {
			return nil, err
		}
		out[i] = vec
	}
	return out, nil
}

func (s *stubEmbedder) Dimensions() int             { return 3 }
func (s *stubEmbedder) ModelName() string           { return "stub" }
func (s *stubEmbedder) Ready(_ context.Context) bool { return true }
func (s *stubEmbedder) Close() error                { return nil }

func sentences(n int) string {
	var b strings.Builder
	for i := 0; i < n; i++ {
		fmt.Fprintf(&b, "This is sentence number %d with some filler words in it. ", i)
	}
	return strings.TrimRight(b.String(), " ")
}

func TestChunkEmptyText(t *testing.T) {
	c := NewChunker(&stubEmbedder{}, nil)

	chunks, err := c.Chunk(context.Background(), "doc-1", "", DefaultOptions())
	require.NoError(t, err)
	assert.Empty(t, chunks)
}

func TestChunkShortTextSingleChunk(t *testing.T) {
	c := NewChunker(&stubEmbedder{}, nil)
	text := "A short document. Nothing to split here."

	chunks, err := c.Chunk(context.Background(), "doc-1", text, DefaultOptions())
	require.NoError(t, err)
	require.Len(t, chunks, 1)
	assert.Equal(t, text, chunks[0].Content)
	assert.Equal(t, 0, chunks[0].StartPos)
	assert.Equal(t, len(text), chunks[0].EndPos)
	assert.NotEmpty(t, chunks[0].Embedding)
}

func TestChunkDeterministic(t *testing.T) {
	text := sentences(80)
	opts := Options{MaxSize: 300, Overlap: 50, AdaptiveSize: true}

	c := NewChunker(&stubEmbedder{}, nil)
	first, err := c.Chunk(context.Background(), "doc-1", text, opts)
	require.NoError(t, err)
	second, err := c.Chunk(context.Background(), "doc-1", text, opts)
	require.NoError(t, err)

	require.Equal(t, len(first), len(second))
	for i := range first {
		assert.Equal(t, first[i].ID, second[i].ID)
		assert.Equal(t, first[i].Content, second[i].Content)
		assert.Equal(t, first[i].StartPos, second[i].StartPos)
		assert.Equal(t, first[i].EndPos, second[i].EndPos)
	}
}

func TestChunkReconstruction(t *testing.T) {
	text := sentences(120)
	opts := Options{MaxSize: 280, Overlap: 60}

	c := NewChunker(&stubEmbedder{}, nil)
	chunks, err := c.Chunk(context.Background(), "doc-1", text, opts)
	require.NoError(t, err)
	require.Greater(t, len(chunks), 2)

	// Dropping each chunk's leading overlap (the region already emitted by
	// its predecessor) and concatenating must reproduce the source exactly.
	var b strings.Builder
	prevEnd := 0
	for _, ch := range chunks {
		require.LessOrEqual(t, ch.StartPos, prevEnd)
		b.WriteString(ch.Content[prevEnd-ch.StartPos:])
		prevEnd = ch.EndPos
	}
	assert.Equal(t, text, b.String())
}

func TestChunkSentenceBoundaries(t *testing.T) {
	text := sentences(40)
	opts := Options{MaxSize: 250, Overlap: 40}

	c := NewChunker(&stubEmbedder{}, nil)
	chunks, err := c.Chunk(context.Background(), "doc-1", text, opts)
	require.NoError(t, err)

	for i, ch := range chunks[:len(chunks)-1] {
		trimmed := strings.TrimRight(ch.Content, " \t\n")
		last := trimmed[len(trimmed)-1]
		assert.Contains(t, ".!?", string(last),
			"chunk %d should end at a sentence boundary: %q", i, ch.Content)
	}
}

func TestChunkHardSplitLongSentence(t *testing.T) {
	text := strings.Repeat("x", 2000) // no terminators anywhere
	opts := Options{MaxSize: 500, Overlap: 100}

	c := NewChunker(&stubEmbedder{}, nil)
	chunks, err := c.Chunk(context.Background(), "doc-1", text, opts)
	require.NoError(t, err)
	require.Greater(t, len(chunks), 1)

	for _, ch := range chunks {
		assert.LessOrEqual(t, len(ch.Content), opts.MaxSize)
	}
	assert.Equal(t, len(text), chunks[len(chunks)-1].EndPos)
}

func TestChunkMultibyteNeverSplit(t *testing.T) {
	text := strings.Repeat("日本語テキスト", 200)
	opts := Options{MaxSize: 301, Overlap: 50} // deliberately off rune stride

	c := NewChunker(&stubEmbedder{}, nil)
	chunks, err := c.Chunk(context.Background(), "doc-1", text, opts)
	require.NoError(t, err)

	for i, ch := range chunks {
		assert.True(t, strings.HasPrefix(text[ch.StartPos:], ch.Content))
		for _, r := range ch.Content {
			require.NotEqual(t, '�', r, "chunk %d contains a severed rune", i)
		}
	}
}

func TestChunkDecimalNotTreatedAsSentence(t *testing.T) {
	// A decimal point glued to digits must not become a chunk boundary.
	text := "The constant pi is approximately 3.14159 in most uses. " +
		strings.Repeat("More prose follows to force a split somewhere later on. ", 10)
	opts := Options{MaxSize: 90, Overlap: 10}

	c := NewChunker(&stubEmbedder{}, nil)
	chunks, err := c.Chunk(context.Background(), "doc-1", text, opts)
	require.NoError(t, err)

	for _, ch := range chunks {
		assert.NotEqual(t, "3.", ch.Content[maxInt(0, len(ch.Content)-2):],
			"chunk ended inside the decimal literal: %q", ch.Content)
	}
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}

func TestChunkParallelMatchesSequential(t *testing.T) {
	text := sentences(150)
	base := Options{MaxSize: 260, Overlap: 50, Workers: 8}

	seq := base
	seq.Parallel = false
	par := base
	par.Parallel = true

	c := NewChunker(&stubEmbedder{}, nil)
	seqChunks, err := c.Chunk(context.Background(), "doc-1", text, seq)
	require.NoError(t, err)
	parChunks, err := c.Chunk(context.Background(), "doc-1", text, par)
	require.NoError(t, err)

	require.Equal(t, len(seqChunks), len(parChunks))
	for i := range seqChunks {
		assert.Equal(t, seqChunks[i].ID, parChunks[i].ID)
		assert.Equal(t, seqChunks[i].Content, parChunks[i].Content)
		assert.Equal(t, seqChunks[i].Embedding, parChunks[i].Embedding)
	}
}

func TestChunkEmbeddingFailureIsAtomic(t *testing.T) {
	var n atomic.Int64
	emb := &stubEmbedder{embedFn: func(text string) ([]float32, error) {
		if n.Add(1) == 3 {
			return nil, docerrors.ValidationError("provider rejected input", nil)
		}
		return []float32{1, 0, 0}, nil
	}}

	c := NewChunker(emb, nil)
	chunks, err := c.Chunk(context.Background(), "doc-1", sentences(60),
		Options{MaxSize: 200, Overlap: 30})

	require.Error(t, err)
	assert.Nil(t, chunks)
	assert.Equal(t, docerrors.ErrCodeChunkingFailed, docerrors.GetCode(err))
}

func TestChunkIDsStableAndUnique(t *testing.T) {
	c := NewChunker(&stubEmbedder{}, nil)
	chunks, err := c.Chunk(context.Background(), "doc-1", sentences(80),
		Options{MaxSize: 250, Overlap: 40})
	require.NoError(t, err)

	seen := map[string]bool{}
	for _, ch := range chunks {
		assert.Len(t, ch.ID, 16)
		assert.False(t, seen[ch.ID], "duplicate chunk id %s", ch.ID)
		seen[ch.ID] = true
	}

	other, err := c.Chunk(context.Background(), "doc-2", sentences(80),
		Options{MaxSize: 250, Overlap: 40})
	require.NoError(t, err)
	assert.NotEqual(t, chunks[0].ID, other[0].ID, "ids must be scoped to the document")
}

func TestAdaptiveTargetShrinksForDenseContent(t *testing.T) {
	opts := Options{MaxSize: 1200, Overlap: 200}.normalized()

	prose := strings.Repeat("Plain readable prose flows in long comfortable lines over here. ", 40)
	code := strings.Repeat("if (x != nil) { y[i] = f(x, &z); }\n", 60)

	proseTarget := adaptiveTarget(prose, 0, opts)
	codeTarget := adaptiveTarget(code, 0, opts)

	assert.Less(t, codeTarget, proseTarget)
	assert.GreaterOrEqual(t, codeTarget, MinChunkSize)
	assert.GreaterOrEqual(t, codeTarget, opts.MaxSize/2)
}

func TestAdaptiveTargetDeterministic(t *testing.T) {
	opts := Options{MaxSize: 800, Overlap: 100}.normalized()
	text := sentences(100)

	first := adaptiveTarget(text, 0, opts)
	for i := 0; i < 5; i++ {
		assert.Equal(t, first, adaptiveTarget(text, 0, opts))
	}
}

func TestOptionsNormalized(t *testing.T) {
	o := Options{}.normalized()
	assert.Equal(t, DefaultMaxSize, o.MaxSize)
	assert.Equal(t, DefaultWorkers, o.Workers)

	o = Options{MaxSize: 100, Overlap: 100}.normalized()
	assert.Equal(t, 25, o.Overlap, "overlap >= max size is clamped to a quarter")

	o = Options{MaxSize: 100, Overlap: -5}.normalized()
	assert.Equal(t, 0, o.Overlap)
}

package mcp

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFormatSearchResultsEmpty(t *testing.T) {
	out := FormatSearchResults("missing topic", nil)
	assert.Contains(t, out, "No results found")
	assert.Contains(t, out, "missing topic")
}

func TestFormatSearchResults(t *testing.T) {
	results := []SearchResultOutput{
		{DocumentID: "d", ChunkIndex: 3, Score: 0.91234, Content: "best match content"},
		{DocumentID: "d", ChunkIndex: 7, Score: 0.5, Content: "second match"},
	}
	out := FormatSearchResults("query", results)

	assert.Contains(t, out, "Found 2 results")
	assert.Contains(t, out, "Chunk 3")
	assert.Contains(t, out, "0.9123")
	assert.Contains(t, out, "best match content")
	assert.Contains(t, out, "get_context_window")
	assert.Less(t, strings.Index(out, "Chunk 3"), strings.Index(out, "Chunk 7"))
}

func TestFormatSearchResultsTruncatesLongChunks(t *testing.T) {
	long := strings.Repeat("x", 2000)
	out := FormatSearchResults("q", []SearchResultOutput{{Content: long}})
	assert.NotContains(t, out, long)
	assert.Contains(t, out, "…")
}

func TestFormatContextWindowMarksCenter(t *testing.T) {
	out := FormatContextWindow(ContextWindowOutput{
		Window: []WindowChunkOutput{
			{ChunkIndex: 1, Content: "before"},
			{ChunkIndex: 2, Content: "middle"},
			{ChunkIndex: 3, Content: "after"},
		},
		Center:      2,
		TotalChunks: 9,
	})
	assert.Contains(t, out, "Chunk 2 (center)")
	assert.NotContains(t, out, "Chunk 1 (center)")
	assert.Contains(t, out, "center 2 of 9")
}

func TestFormatDocumentList(t *testing.T) {
	assert.Contains(t, FormatDocumentList(nil), "No documents")

	out := FormatDocumentList([]DocumentInfoOutput{
		{ID: "abc", Title: "Guide", Size: 1234, ChunkCount: 5},
	})
	assert.Contains(t, out, "Guide")
	assert.Contains(t, out, "`abc`")
	assert.Contains(t, out, "| 1234 | 5 |")
}

func TestSnippetRuneSafe(t *testing.T) {
	s := strings.Repeat("日", 600)
	got := snippet(s, 500)
	assert.True(t, strings.HasSuffix(got, "…"))
	for _, r := range got {
		assert.NotEqual(t, '�', r)
	}
}

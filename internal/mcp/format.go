package mcp

import (
	"fmt"
	"strings"
)

// FormatSearchResults renders ranked chunks as markdown for clients that
// display text content.
func FormatSearchResults(query string, results []SearchResultOutput) string {
	if len(results) == 0 {
		return fmt.Sprintf("No results found for %q", query)
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("## Search Results for %q\n\n", query))
	sb.WriteString(fmt.Sprintf("Found %d result", len(results)))
	if len(results) != 1 {
		sb.WriteString("s")
	}
	sb.WriteString("\n\n")

	for i, r := range results {
		sb.WriteString(fmt.Sprintf("### %d. Chunk %d (score %.4f)\n\n", i+1, r.ChunkIndex, r.Score))
		sb.WriteString(snippet(r.Content, 500))
		sb.WriteString("\n\n")
	}

	sb.WriteString("Use get_context_window with a chunk_index above to read the surrounding text.\n")
	return sb.String()
}

// FormatContextWindow renders a context window as markdown, marking the
// center chunk.
func FormatContextWindow(out ContextWindowOutput) string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("## Context Window (center %d of %d chunks)\n\n",
		out.Center, out.TotalChunks))
	for _, ch := range out.Window {
		marker := ""
		if ch.ChunkIndex == out.Center {
			marker = " (center)"
		}
		sb.WriteString(fmt.Sprintf("### Chunk %d%s\n\n%s\n\n", ch.ChunkIndex, marker, ch.Content))
	}
	return sb.String()
}

// FormatDocumentList renders document summaries as a markdown table.
func FormatDocumentList(docs []DocumentInfoOutput) string {
	if len(docs) == 0 {
		return "No documents stored yet. Use add_document or drop files into the uploads folder."
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("## Documents (%d)\n\n", len(docs)))
	sb.WriteString("| Title | ID | Size | Chunks |\n")
	sb.WriteString("|---|---|---|---|\n")
	for _, d := range docs {
		sb.WriteString(fmt.Sprintf("| %s | `%s` | %d | %d |\n",
			d.Title, d.ID, d.Size, d.ChunkCount))
	}
	return sb.String()
}

// snippet truncates long chunk content for display, on a rune boundary.
func snippet(content string, limit int) string {
	if len(content) <= limit {
		return content
	}
	runes := []rune(content)
	if len(runes) <= limit {
		return content
	}
	return string(runes[:limit]) + "…"
}

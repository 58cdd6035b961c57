// Package store persists documents as one JSON file each and coordinates
// chunking, indexing, and the uploads pipeline.
package store

import (
	"time"

	"github.com/andrea9293/mcp-documentation-server/internal/chunk"
)

// Document is the unit of storage: full text plus its embedded chunks.
// Documents are immutable once created; the only mutations are creation and
// deletion.
type Document struct {
	ID        string         `json:"id"`
	Title     string         `json:"title"`
	Content   string         `json:"content"`
	Metadata  map[string]any `json:"metadata,omitempty"`
	Chunks    []chunk.Chunk  `json:"chunks"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
}

// Info is the listing summary for a document, without content or chunks.
type Info struct {
	ID         string         `json:"id"`
	Title      string         `json:"title"`
	Size       int            `json:"size"`
	ChunkCount int            `json:"chunk_count"`
	Metadata   map[string]any `json:"metadata,omitempty"`
	CreatedAt  time.Time      `json:"created_at"`
	UpdatedAt  time.Time      `json:"updated_at"`
}

// info builds the summary view of a document.
func (d *Document) info() Info {
	return Info{
		ID:         d.ID,
		Title:      d.Title,
		Size:       len(d.Content),
		ChunkCount: len(d.Chunks),
		Metadata:   d.Metadata,
		CreatedAt:  d.CreatedAt,
		UpdatedAt:  d.UpdatedAt,
	}
}

package mcp

import "time"

// AddDocumentInput is the input for the add_document tool.
type AddDocumentInput struct {
	Title    string         `json:"title" jsonschema:"title of the document"`
	Content  string         `json:"content" jsonschema:"full text content of the document"`
	Metadata map[string]any `json:"metadata,omitempty" jsonschema:"optional free-form metadata attached to the document"`
}

// AddDocumentOutput is the result of add_document.
type AddDocumentOutput struct {
	ID         string    `json:"id" jsonschema:"generated document id"`
	Title      string    `json:"title" jsonschema:"document title"`
	Size       int       `json:"size" jsonschema:"content length in characters after normalization"`
	ChunkCount int       `json:"chunk_count" jsonschema:"number of embedded chunks produced"`
	Created    bool      `json:"created" jsonschema:"false when identical content already existed and the existing document was returned"`
	CreatedAt  time.Time `json:"created_at" jsonschema:"creation timestamp"`
}

// SearchDocumentsInput is the input for search_documents.
type SearchDocumentsInput struct {
	DocumentID string `json:"document_id" jsonschema:"id of the document to search within"`
	Query      string `json:"query" jsonschema:"the semantic search query"`
	Limit      int    `json:"limit,omitempty" jsonschema:"maximum number of results, default 10"`
}

// SearchResultOutput is one ranked chunk.
type SearchResultOutput struct {
	DocumentID string  `json:"document_id" jsonschema:"id of the containing document"`
	ChunkIndex int     `json:"chunk_index" jsonschema:"position of the chunk within the document"`
	Score      float64 `json:"score" jsonschema:"cosine similarity to the query, higher is more similar"`
	Content    string  `json:"content" jsonschema:"chunk text"`
}

// SearchDocumentsOutput is the result of search_documents.
type SearchDocumentsOutput struct {
	Results []SearchResultOutput `json:"results" jsonschema:"ranked search results, best first"`
	Hint    string               `json:"hint,omitempty" jsonschema:"suggestion for retrieving surrounding context"`
}

// ContextWindowInput is the input for get_context_window.
type ContextWindowInput struct {
	DocumentID string `json:"document_id" jsonschema:"id of the document"`
	ChunkIndex int    `json:"chunk_index" jsonschema:"index of the center chunk"`
	Before     int    `json:"before,omitempty" jsonschema:"number of chunks before the center, default 1"`
	After      int    `json:"after,omitempty" jsonschema:"number of chunks after the center, default 1"`
}

// WindowChunkOutput is one chunk inside a context window.
type WindowChunkOutput struct {
	ChunkIndex int    `json:"chunk_index" jsonschema:"position of the chunk within the document"`
	Content    string `json:"content" jsonschema:"chunk text"`
}

// ContextWindowOutput is the result of get_context_window.
type ContextWindowOutput struct {
	Window      []WindowChunkOutput `json:"window" jsonschema:"contiguous chunks in original order"`
	Center      int                 `json:"center" jsonschema:"the requested center chunk index"`
	TotalChunks int                 `json:"total_chunks" jsonschema:"total number of chunks in the document"`
}

// GetDocumentInput is the input for get_document.
type GetDocumentInput struct {
	ID string `json:"id" jsonschema:"document id"`
}

// DocumentOutput is the full document view.
type DocumentOutput struct {
	ID         string         `json:"id" jsonschema:"document id"`
	Title      string         `json:"title" jsonschema:"document title"`
	Content    string         `json:"content" jsonschema:"full normalized text"`
	Metadata   map[string]any `json:"metadata,omitempty" jsonschema:"document metadata"`
	ChunkCount int            `json:"chunk_count" jsonschema:"number of embedded chunks"`
	CreatedAt  time.Time      `json:"created_at" jsonschema:"creation timestamp"`
	UpdatedAt  time.Time      `json:"updated_at" jsonschema:"last update timestamp"`
}

// ListDocumentsInput is the (empty) input for list_documents.
type ListDocumentsInput struct{}

// DocumentInfoOutput is one listing entry.
type DocumentInfoOutput struct {
	ID         string    `json:"id" jsonschema:"document id"`
	Title      string    `json:"title" jsonschema:"document title"`
	Size       int       `json:"size" jsonschema:"content length in characters"`
	ChunkCount int       `json:"chunk_count" jsonschema:"number of embedded chunks"`
	CreatedAt  time.Time `json:"created_at" jsonschema:"creation timestamp"`
}

// ListDocumentsOutput is the result of list_documents.
type ListDocumentsOutput struct {
	Documents []DocumentInfoOutput `json:"documents" jsonschema:"all stored documents sorted by title"`
}

// DeleteDocumentInput is the input for delete_document.
type DeleteDocumentInput struct {
	ID string `json:"id" jsonschema:"id of the document to delete"`
}

// DeleteDocumentOutput is the result of delete_document.
type DeleteDocumentOutput struct {
	Deleted bool   `json:"deleted" jsonschema:"true when the document was removed"`
	ID      string `json:"id" jsonschema:"the deleted document id"`
}

// FindDocumentsInput is the input for find_documents.
type FindDocumentsInput struct {
	Query string `json:"query" jsonschema:"keywords to match against document titles and content"`
}

// FindDocumentsOutput is the result of find_documents.
type FindDocumentsOutput struct {
	Documents []DocumentInfoOutput `json:"documents" jsonschema:"documents matching the keywords, best match first"`
}

// ProcessUploadsInput is the (empty) input for process_uploads.
type ProcessUploadsInput struct{}

// ProcessUploadsOutput is the result of process_uploads.
type ProcessUploadsOutput struct {
	Processed int      `json:"processed" jsonschema:"number of files converted into documents"`
	Errors    []string `json:"errors,omitempty" jsonschema:"per-file error messages for files that failed"`
}

// UploadsInfoInput is the (empty) input for uploads_info.
type UploadsInfoInput struct{}

// UploadsInfoOutput is the result of uploads_info.
type UploadsInfoOutput struct {
	Path       string   `json:"path" jsonschema:"directory to drop files into"`
	Extensions []string `json:"extensions" jsonschema:"supported file extensions"`
}

// CacheStatsInput is the (empty) input for cache_stats.
type CacheStatsInput struct{}

// CacheStatsOutput is the result of cache_stats.
type CacheStatsOutput struct {
	Size     int     `json:"size" jsonschema:"current number of cached embeddings"`
	Capacity int     `json:"capacity" jsonschema:"maximum number of cached embeddings"`
	Hits     uint64  `json:"hits" jsonschema:"cache hits since startup"`
	Misses   uint64  `json:"misses" jsonschema:"cache misses since startup"`
	HitRate  float64 `json:"hit_rate" jsonschema:"hits divided by total lookups, 0 when no lookups yet"`
}

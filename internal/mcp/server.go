package mcp

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/andrea9293/mcp-documentation-server/internal/cache"
	"github.com/andrea9293/mcp-documentation-server/internal/search"
	"github.com/andrea9293/mcp-documentation-server/internal/store"
	"github.com/andrea9293/mcp-documentation-server/pkg/version"
)

// ServerName is the implementation name reported to MCP clients.
const ServerName = "mcp-documentation-server"

// Server wires the document store, search engine, uploads pipeline, and
// embedding cache into MCP tools over stdio.
type Server struct {
	mcp       *mcp.Server
	store     *store.Store
	engine    *search.Engine
	processor *store.Processor
	cache     *cache.Cache
	logger    *slog.Logger
}

// NewServer creates the MCP server and registers every tool.
func NewServer(st *store.Store, engine *search.Engine, processor *store.Processor, c *cache.Cache, logger *slog.Logger) (*Server, error) {
	if st == nil {
		return nil, errors.New("document store is required")
	}
	if engine == nil {
		return nil, errors.New("search engine is required")
	}
	if logger == nil {
		logger = slog.Default()
	}

	s := &Server{
		store:     st,
		engine:    engine,
		processor: processor,
		cache:     c,
		logger:    logger,
	}

	s.mcp = mcp.NewServer(
		&mcp.Implementation{
			Name:    ServerName,
			Version: version.Version,
		},
		nil,
	)
	s.registerTools()
	return s, nil
}

// MCPServer returns the underlying SDK server, for tests and embedding.
func (s *Server) MCPServer() *mcp.Server {
	return s.mcp
}

// Run serves MCP over stdio until the context is cancelled.
func (s *Server) Run(ctx context.Context) error {
	s.logger.Info("MCP server starting",
		slog.String("name", ServerName),
		slog.String("version", version.Version))
	return s.mcp.Run(ctx, &mcp.StdioTransport{})
}

func (s *Server) registerTools() {
	mcp.AddTool(s.mcp, &mcp.Tool{
		Name:        "add_document",
		Description: "Store a document: the text is chunked, embedded, and indexed for semantic search. Identical content is deduplicated and returns the existing document.",
	}, s.handleAddDocument)

	mcp.AddTool(s.mcp, &mcp.Tool{
		Name:        "search_documents",
		Description: "Semantic search within one document. Returns the chunks most similar to the query, best first. Follow up with get_context_window to read the text around a result.",
	}, s.handleSearchDocuments)

	mcp.AddTool(s.mcp, &mcp.Tool{
		Name:        "get_context_window",
		Description: "Read the chunks surrounding a given chunk index, in original document order. Use after search_documents to expand a promising result.",
	}, s.handleContextWindow)

	mcp.AddTool(s.mcp, &mcp.Tool{
		Name:        "get_document",
		Description: "Retrieve a document's full content and metadata by id.",
	}, s.handleGetDocument)

	mcp.AddTool(s.mcp, &mcp.Tool{
		Name:        "list_documents",
		Description: "List all stored documents with title, size, and chunk count.",
	}, s.handleListDocuments)

	mcp.AddTool(s.mcp, &mcp.Tool{
		Name:        "delete_document",
		Description: "Delete a document by id, including its search index entries and any uploaded source file.",
	}, s.handleDeleteDocument)

	mcp.AddTool(s.mcp, &mcp.Tool{
		Name:        "find_documents",
		Description: "Find documents by keywords across titles and content. Use this to locate the right document id before running search_documents.",
	}, s.handleFindDocuments)

	if s.processor != nil {
		mcp.AddTool(s.mcp, &mcp.Tool{
			Name:        "process_uploads",
			Description: "Scan the uploads folder and convert each supported file (.txt, .md, .pdf with an extractor installed) into a searchable document. Re-uploaded files replace the previous document with the same name.",
		}, s.handleProcessUploads)

		mcp.AddTool(s.mcp, &mcp.Tool{
			Name:        "uploads_info",
			Description: "Show the uploads folder path and the supported file extensions.",
		}, s.handleUploadsInfo)
	}

	if s.cache != nil {
		mcp.AddTool(s.mcp, &mcp.Tool{
			Name:        "cache_stats",
			Description: "Report embedding cache size, capacity, and hit rate.",
		}, s.handleCacheStats)
	}

	s.logger.Debug("MCP tools registered")
}

func (s *Server) handleAddDocument(ctx context.Context, _ *mcp.CallToolRequest, input AddDocumentInput) (
	*mcp.CallToolResult,
	AddDocumentOutput,
	error,
) {
	if strings.TrimSpace(input.Title) == "" {
		return nil, AddDocumentOutput{}, NewInvalidParamsError("title parameter is required")
	}
	if strings.TrimSpace(input.Content) == "" {
		return nil, AddDocumentOutput{}, NewInvalidParamsError("content parameter is required")
	}

	doc, created, err := s.store.Create(ctx, input.Title, input.Content, input.Metadata)
	if err != nil {
		return nil, AddDocumentOutput{}, MapError(err)
	}

	return nil, AddDocumentOutput{
		ID:         doc.ID,
		Title:      doc.Title,
		Size:       len(doc.Content),
		ChunkCount: len(doc.Chunks),
		Created:    created,
		CreatedAt:  doc.CreatedAt,
	}, nil
}

func (s *Server) handleSearchDocuments(ctx context.Context, _ *mcp.CallToolRequest, input SearchDocumentsInput) (
	*mcp.CallToolResult,
	SearchDocumentsOutput,
	error,
) {
	if input.DocumentID == "" {
		return nil, SearchDocumentsOutput{}, NewInvalidParamsError("document_id parameter is required")
	}
	if strings.TrimSpace(input.Query) == "" {
		return nil, SearchDocumentsOutput{}, NewInvalidParamsError("query parameter is required")
	}

	doc, err := s.store.Get(input.DocumentID)
	if err != nil {
		return nil, SearchDocumentsOutput{}, MapError(err)
	}

	results, err := s.engine.Search(ctx, doc.Chunks, input.Query, input.Limit)
	if err != nil {
		return nil, SearchDocumentsOutput{}, MapError(err)
	}

	output := SearchDocumentsOutput{
		Results: make([]SearchResultOutput, 0, len(results)),
	}
	for _, r := range results {
		output.Results = append(output.Results, SearchResultOutput{
			DocumentID: r.Chunk.DocumentID,
			ChunkIndex: r.Chunk.Index,
			Score:      r.Score,
			Content:    r.Chunk.Content,
		})
	}
	if len(output.Results) > 0 {
		output.Hint = "Call get_context_window with a chunk_index from these results to read the surrounding text."
	}

	return textResult(FormatSearchResults(input.Query, output.Results)), output, nil
}

func (s *Server) handleContextWindow(_ context.Context, _ *mcp.CallToolRequest, input ContextWindowInput) (
	*mcp.CallToolResult,
	ContextWindowOutput,
	error,
) {
	if input.DocumentID == "" {
		return nil, ContextWindowOutput{}, NewInvalidParamsError("document_id parameter is required")
	}

	doc, err := s.store.Get(input.DocumentID)
	if err != nil {
		return nil, ContextWindowOutput{}, MapError(err)
	}

	before, after := input.Before, input.After
	if before == 0 && after == 0 {
		before, after = 1, 1
	}

	window, err := search.ContextWindow(doc.Chunks, input.ChunkIndex, before, after)
	if err != nil {
		return nil, ContextWindowOutput{}, MapError(err)
	}

	output := ContextWindowOutput{
		Window:      make([]WindowChunkOutput, 0, len(window.Chunks)),
		Center:      window.Center,
		TotalChunks: window.Total,
	}
	for _, ch := range window.Chunks {
		output.Window = append(output.Window, WindowChunkOutput{
			ChunkIndex: ch.Index,
			Content:    ch.Content,
		})
	}

	return textResult(FormatContextWindow(output)), output, nil
}

func (s *Server) handleGetDocument(_ context.Context, _ *mcp.CallToolRequest, input GetDocumentInput) (
	*mcp.CallToolResult,
	DocumentOutput,
	error,
) {
	if input.ID == "" {
		return nil, DocumentOutput{}, NewInvalidParamsError("id parameter is required")
	}

	doc, err := s.store.Get(input.ID)
	if err != nil {
		return nil, DocumentOutput{}, MapError(err)
	}

	return nil, DocumentOutput{
		ID:         doc.ID,
		Title:      doc.Title,
		Content:    doc.Content,
		Metadata:   doc.Metadata,
		ChunkCount: len(doc.Chunks),
		CreatedAt:  doc.CreatedAt,
		UpdatedAt:  doc.UpdatedAt,
	}, nil
}

func (s *Server) handleListDocuments(_ context.Context, _ *mcp.CallToolRequest, _ ListDocumentsInput) (
	*mcp.CallToolResult,
	ListDocumentsOutput,
	error,
) {
	infos, err := s.store.List()
	if err != nil {
		return nil, ListDocumentsOutput{}, MapError(err)
	}

	output := ListDocumentsOutput{Documents: toInfoOutputs(infos)}
	return textResult(FormatDocumentList(output.Documents)), output, nil
}

func (s *Server) handleDeleteDocument(_ context.Context, _ *mcp.CallToolRequest, input DeleteDocumentInput) (
	*mcp.CallToolResult,
	DeleteDocumentOutput,
	error,
) {
	if input.ID == "" {
		return nil, DeleteDocumentOutput{}, NewInvalidParamsError("id parameter is required")
	}

	if err := s.store.Delete(input.ID); err != nil {
		return nil, DeleteDocumentOutput{}, MapError(err)
	}
	return nil, DeleteDocumentOutput{Deleted: true, ID: input.ID}, nil
}

func (s *Server) handleFindDocuments(_ context.Context, _ *mcp.CallToolRequest, input FindDocumentsInput) (
	*mcp.CallToolResult,
	FindDocumentsOutput,
	error,
) {
	if strings.TrimSpace(input.Query) == "" {
		return nil, FindDocumentsOutput{}, NewInvalidParamsError("query parameter is required")
	}

	infos, err := s.store.KeywordSearch(input.Query)
	if err != nil {
		return nil, FindDocumentsOutput{}, MapError(err)
	}

	output := FindDocumentsOutput{Documents: toInfoOutputs(infos)}
	return textResult(FormatDocumentList(output.Documents)), output, nil
}

func (s *Server) handleProcessUploads(ctx context.Context, _ *mcp.CallToolRequest, _ ProcessUploadsInput) (
	*mcp.CallToolResult,
	ProcessUploadsOutput,
	error,
) {
	report, err := s.processor.Process(ctx)
	if err != nil {
		return nil, ProcessUploadsOutput{}, MapError(err)
	}
	return nil, ProcessUploadsOutput{
		Processed: report.Processed,
		Errors:    report.Errors,
	}, nil
}

func (s *Server) handleUploadsInfo(_ context.Context, _ *mcp.CallToolRequest, _ UploadsInfoInput) (
	*mcp.CallToolResult,
	UploadsInfoOutput,
	error,
) {
	return nil, UploadsInfoOutput{
		Path:       s.processor.UploadsDir(),
		Extensions: s.processor.Supported(),
	}, nil
}

func (s *Server) handleCacheStats(_ context.Context, _ *mcp.CallToolRequest, _ CacheStatsInput) (
	*mcp.CallToolResult,
	CacheStatsOutput,
	error,
) {
	stats := s.cache.Stats()
	return nil, CacheStatsOutput{
		Size:     stats.Size,
		Capacity: stats.Capacity,
		Hits:     stats.Hits,
		Misses:   stats.Misses,
		HitRate:  stats.HitRate,
	}, nil
}

func toInfoOutputs(infos []store.Info) []DocumentInfoOutput {
	out := make([]DocumentInfoOutput, 0, len(infos))
	for _, info := range infos {
		out = append(out, DocumentInfoOutput{
			ID:         info.ID,
			Title:      info.Title,
			Size:       info.Size,
			ChunkCount: info.ChunkCount,
			CreatedAt:  info.CreatedAt,
		})
	}
	return out
}

// textResult wraps markdown in a tool result so text-oriented clients get a
// readable rendering alongside the structured output.
func textResult(markdown string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{&mcp.TextContent{Text: markdown}},
	}
}

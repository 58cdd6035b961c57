package store

import (
	"context"
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/andrea9293/mcp-documentation-server/internal/chunk"
	docerrors "github.com/andrea9293/mcp-documentation-server/internal/errors"
	"github.com/andrea9293/mcp-documentation-server/internal/index"
)

// Config configures a Store.
type Config struct {
	// DocumentsDir holds one JSON file per document.
	DocumentsDir string

	// OriginalsDir holds the raw source file for documents that came in
	// through the uploads pipeline. Deleting a document removes its
	// original too.
	OriginalsDir string

	// IndexEnabled turns the derived index on. When off, lookups and
	// dedup fall back to a full directory scan.
	IndexEnabled bool

	// ChunkOptions is the chunking policy applied at document creation.
	ChunkOptions chunk.Options
}

// Store owns document persistence. Mutations are serialized under one lock
// so a create and a delete can never interleave on the same files; reads go
// straight to disk.
type Store struct {
	mu      sync.Mutex
	cfg     Config
	chunker *chunk.Chunker
	idx     *index.Index
	logger  *slog.Logger
}

// New creates a Store, ensures its directories exist, and brings the index
// up: loaded from its file when valid, rebuilt from a document scan when
// the file is missing or corrupt.
func New(cfg Config, chunker *chunk.Chunker, idx *index.Index, logger *slog.Logger) (*Store, error) {
	if logger == nil {
		logger = slog.Default()
	}
	for _, dir := range []string{cfg.DocumentsDir, cfg.OriginalsDir} {
		if dir == "" {
			continue
		}
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, docerrors.New(docerrors.ErrCodeFilePermission, "create data directory", err).
				WithDetail("dir", dir)
		}
	}

	s := &Store{cfg: cfg, chunker: chunker, idx: idx, logger: logger}

	if cfg.IndexEnabled && idx != nil {
		if err := idx.Load(); err != nil {
			if !os.IsNotExist(err) {
				logger.Warn("index load failed, rebuilding from document scan",
					slog.String("error", err.Error()))
			}
			if rebuildErr := s.rebuildIndex(); rebuildErr != nil {
				return nil, rebuildErr
			}
		}
	}

	return s, nil
}

// Create normalizes content, chunks and embeds it, persists the document,
// and indexes it. If a live document already has identical normalized
// content, that document is returned instead and created is false; no
// chunking or embedding work happens in that case.
func (s *Store) Create(ctx context.Context, title, content string, metadata map[string]any) (*Document, bool, error) {
	if strings.TrimSpace(title) == "" {
		return nil, false, docerrors.ValidationError("document title is empty", nil)
	}
	normalized := index.NormalizeContent(content)
	if normalized == "" {
		return nil, false, docerrors.ValidationError("document content is empty", nil)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	hash := index.ContentHash(normalized)
	if existingID, ok := s.findByContentHash(hash); ok {
		existing, err := s.readDocument(existingID)
		if err == nil {
			s.logger.Info("duplicate content, returning existing document",
				slog.String("document_id", existingID))
			return existing, false, nil
		}
		// Stale index entry pointing at a broken file; fall through and
		// create fresh.
		s.logger.Warn("dedup hit on unreadable document, recreating",
			slog.String("document_id", existingID),
			slog.String("error", err.Error()))
	}

	id := uuid.NewString()
	chunks, err := s.chunker.Chunk(ctx, id, normalized, s.cfg.ChunkOptions)
	if err != nil {
		return nil, false, err
	}

	now := time.Now().UTC()
	doc := &Document{
		ID:        id,
		Title:     title,
		Content:   normalized,
		Metadata:  metadata,
		Chunks:    chunks,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := s.writeDocument(doc); err != nil {
		return nil, false, err
	}
	s.indexDocument(doc, hash)

	s.logger.Info("document created",
		slog.String("document_id", id),
		slog.String("title", title),
		slog.Int("chunks", len(chunks)))
	return doc, true, nil
}

// Get loads a document by id. A missing file is NotFound; a corrupt file is
// logged and also reported as NotFound, per the treat-as-absent policy for
// damaged records.
func (s *Store) Get(id string) (*Document, error) {
	doc, err := s.readDocument(id)
	if err != nil {
		if docerrors.GetCode(err) == docerrors.ErrCodeDocumentCorrupt {
			s.logger.Warn("document file corrupt, treating as absent",
				slog.String("document_id", id))
			return nil, docerrors.NotFound(id)
		}
		return nil, err
	}
	return doc, nil
}

// List returns summaries of all readable documents sorted by title, then
// id. Corrupt files are skipped with a warning.
func (s *Store) List() ([]Info, error) {
	ids, err := s.scanIDs()
	if err != nil {
		return nil, err
	}

	infos := make([]Info, 0, len(ids))
	for _, id := range ids {
		doc, err := s.readDocument(id)
		if err != nil {
			s.logger.Warn("skipping unreadable document",
				slog.String("document_id", id),
				slog.String("error", err.Error()))
			continue
		}
		infos = append(infos, doc.info())
	}

	sort.Slice(infos, func(i, j int) bool {
		if infos[i].Title != infos[j].Title {
			return infos[i].Title < infos[j].Title
		}
		return infos[i].ID < infos[j].ID
	})
	return infos, nil
}

// FindByTitle returns the first document whose title matches exactly, used
// by the uploads pipeline to replace re-uploaded files.
func (s *Store) FindByTitle(title string) (*Document, error) {
	ids, err := s.scanIDs()
	if err != nil {
		return nil, err
	}
	for _, id := range ids {
		doc, err := s.readDocument(id)
		if err != nil {
			continue
		}
		if doc.Title == title {
			return doc, nil
		}
	}
	return nil, docerrors.NotFound(title)
}

// Delete removes the document file, any original artifact, and the index
// entries. Deleting an unknown id is NotFound; a partial failure after the
// document was confirmed present is surfaced as an error.
func (s *Store) Delete(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	path := s.documentPath(id)
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return docerrors.NotFound(id)
		}
		return docerrors.New(docerrors.ErrCodeFilePermission, "stat document file", err)
	}

	if err := os.Remove(path); err != nil {
		return docerrors.New(docerrors.ErrCodeFilePermission, "remove document file", err).
			WithDetail("document_id", id)
	}

	if s.cfg.OriginalsDir != "" {
		if err := s.removeOriginal(id); err != nil {
			return err
		}
	}

	if s.indexEnabled() {
		s.idx.Remove(id)
		if err := s.idx.Persist(); err != nil {
			s.logger.Warn("index persist after delete failed",
				slog.String("error", err.Error()))
		}
	}

	s.logger.Info("document deleted", slog.String("document_id", id))
	return nil
}

// KeywordSearch finds documents matching the query terms. With the index
// enabled it reads the posting lists; otherwise it scans every document.
func (s *Store) KeywordSearch(query string) ([]Info, error) {
	if s.indexEnabled() {
		infos := make([]Info, 0)
		for _, id := range s.idx.KeywordSearch(query) {
			doc, err := s.readDocument(id)
			if err != nil {
				continue
			}
			infos = append(infos, doc.info())
		}
		return infos, nil
	}
	return s.scanKeywordSearch(query)
}

// scanKeywordSearch is the O(n) fallback path when the index is disabled.
func (s *Store) scanKeywordSearch(query string) ([]Info, error) {
	terms := index.ExtractKeywords(query)
	if len(terms) == 0 {
		return nil, nil
	}

	ids, err := s.scanIDs()
	if err != nil {
		return nil, err
	}

	type scored struct {
		info    Info
		matched int
	}
	var results []scored
	for _, id := range ids {
		doc, err := s.readDocument(id)
		if err != nil {
			continue
		}
		docWords := make(map[string]struct{})
		for _, kw := range index.ExtractKeywords(doc.Title + " " + doc.Content) {
			docWords[kw] = struct{}{}
		}
		matched := 0
		for _, term := range terms {
			if _, ok := docWords[term]; ok {
				matched++
			}
		}
		if matched > 0 {
			results = append(results, scored{info: doc.info(), matched: matched})
		}
	}

	sort.Slice(results, func(i, j int) bool {
		if results[i].matched != results[j].matched {
			return results[i].matched > results[j].matched
		}
		return results[i].info.ID < results[j].info.ID
	})

	infos := make([]Info, len(results))
	for i, r := range results {
		infos[i] = r.info
	}
	return infos, nil
}

// UploadsReplace swaps the stored document for a re-uploaded title: the old
// document is removed first, then the new content is created. Used only by
// the uploads pipeline.
func (s *Store) UploadsReplace(ctx context.Context, title, content string, metadata map[string]any) (*Document, error) {
	if existing, err := s.FindByTitle(title); err == nil {
		if err := s.Delete(existing.ID); err != nil && !docerrors.IsNotFound(err) {
			return nil, err
		}
	}
	doc, _, err := s.Create(ctx, title, content, metadata)
	return doc, err
}

func (s *Store) indexEnabled() bool {
	return s.cfg.IndexEnabled && s.idx != nil
}

func (s *Store) documentPath(id string) string {
	return filepath.Join(s.cfg.DocumentsDir, id+".json")
}

// findByContentHash consults the index, or scans when the index is off.
func (s *Store) findByContentHash(hash string) (string, bool) {
	if s.indexEnabled() {
		return s.idx.ExistsByContentHash(hash)
	}

	ids, err := s.scanIDs()
	if err != nil {
		return "", false
	}
	for _, id := range ids {
		doc, err := s.readDocument(id)
		if err != nil {
			continue
		}
		if index.ContentHash(doc.Content) == hash {
			return id, true
		}
	}
	return "", false
}

// indexDocument records a freshly persisted document in the index.
func (s *Store) indexDocument(doc *Document, hash string) {
	if !s.indexEnabled() {
		return
	}
	s.idx.Put(index.Entry{
		ID:          doc.ID,
		Path:        s.documentPath(doc.ID),
		ContentHash: hash,
		Title:       doc.Title,
		Content:     doc.Content,
	})
	if err := s.idx.Persist(); err != nil {
		s.logger.Warn("index persist failed", slog.String("error", err.Error()))
	}
}

// rebuildIndex reconstructs the index from a full document scan and
// persists it.
func (s *Store) rebuildIndex() error {
	ids, err := s.scanIDs()
	if err != nil {
		return err
	}

	entries := make([]index.Entry, 0, len(ids))
	for _, id := range ids {
		doc, err := s.readDocument(id)
		if err != nil {
			s.logger.Warn("skipping unreadable document during rebuild",
				slog.String("document_id", id),
				slog.String("error", err.Error()))
			continue
		}
		entries = append(entries, index.Entry{
			ID:          doc.ID,
			Path:        s.documentPath(doc.ID),
			ContentHash: index.ContentHash(doc.Content),
			Title:       doc.Title,
			Content:     doc.Content,
		})
	}

	s.idx.Rebuild(entries)
	if err := s.idx.Persist(); err != nil {
		s.logger.Warn("index persist after rebuild failed",
			slog.String("error", err.Error()))
	}
	return nil
}

// scanIDs lists document ids from the documents directory.
func (s *Store) scanIDs() ([]string, error) {
	entries, err := os.ReadDir(s.cfg.DocumentsDir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, docerrors.New(docerrors.ErrCodeFilePermission, "read documents directory", err)
	}

	ids := make([]string, 0, len(entries))
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || !strings.HasSuffix(name, ".json") {
			continue
		}
		ids = append(ids, strings.TrimSuffix(name, ".json"))
	}
	sort.Strings(ids)
	return ids, nil
}

// readDocument loads and decodes one document file.
func (s *Store) readDocument(id string) (*Document, error) {
	data, err := os.ReadFile(s.documentPath(id))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, docerrors.NotFound(id)
		}
		return nil, docerrors.New(docerrors.ErrCodeFilePermission, "read document file", err).
			WithDetail("document_id", id)
	}

	var doc Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, docerrors.New(docerrors.ErrCodeDocumentCorrupt, "document file is not valid JSON", err).
			WithDetail("document_id", id)
	}
	return &doc, nil
}

// writeDocument persists a document atomically (temp file + rename).
func (s *Store) writeDocument(doc *Document) error {
	data, err := json.Marshal(doc)
	if err != nil {
		return docerrors.InternalError("marshal document", err)
	}

	path := s.documentPath(doc.ID)
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return docerrors.New(docerrors.ErrCodeFilePermission, "write document file", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return docerrors.New(docerrors.ErrCodeFilePermission, "replace document file", err)
	}
	return nil
}

// removeOriginal deletes the uploaded source file saved for this document,
// if one exists. Originals are stored as <id>.<original extension>.
func (s *Store) removeOriginal(id string) error {
	entries, err := os.ReadDir(s.cfg.OriginalsDir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return docerrors.New(docerrors.ErrCodeFilePermission, "read originals directory", err)
	}
	for _, e := range entries {
		name := e.Name()
		if strings.TrimSuffix(name, filepath.Ext(name)) != id {
			continue
		}
		if err := os.Remove(filepath.Join(s.cfg.OriginalsDir, name)); err != nil {
			return docerrors.New(docerrors.ErrCodeFilePermission, "remove original file", err).
				WithDetail("document_id", id)
		}
	}
	return nil
}

// SaveOriginal copies an uploaded source file next to the document store so
// deletion can clean it up later.
func (s *Store) SaveOriginal(id, srcPath string) error {
	if s.cfg.OriginalsDir == "" {
		return nil
	}
	data, err := os.ReadFile(srcPath)
	if err != nil {
		return docerrors.New(docerrors.ErrCodeFilePermission, "read uploaded file", err)
	}
	dst := filepath.Join(s.cfg.OriginalsDir, id+filepath.Ext(srcPath))
	if err := os.WriteFile(dst, data, 0o644); err != nil {
		return docerrors.New(docerrors.ErrCodeFilePermission, "save original file", err)
	}
	return nil
}

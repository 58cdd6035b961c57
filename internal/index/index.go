// Package index maintains a derived lookup layer over the document store:
// document id to file path, normalized content hash to document id for
// deduplication, and keyword posting lists. The store's on-disk documents
// are the source of truth; the index can always be rebuilt from a full scan.
package index

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	docerrors "github.com/andrea9293/mcp-documentation-server/internal/errors"
)

// FormatVersion tags the persisted index file. Files with a different
// version are treated as corrupt and trigger a rebuild.
const FormatVersion = 1

// Entry is what a document contributes to the index.
type Entry struct {
	ID          string
	Path        string
	ContentHash string
	Title       string
	Content     string
}

// Index is the in-memory index with JSON file persistence. All methods are
// safe for concurrent use; writes are serialized under a single lock.
type Index struct {
	mu     sync.RWMutex
	path   string
	logger *slog.Logger

	paths  map[string]string              // document id -> file path
	hashes map[string]string              // content hash -> document id
	words  map[string]map[string]struct{} // keyword -> document id set

	// docWords remembers each document's keywords so a re-Put can retract
	// stale associations before adding the new ones.
	docWords map[string][]string
}

// New creates an empty index persisting to path.
func New(path string, logger *slog.Logger) *Index {
	if logger == nil {
		logger = slog.Default()
	}
	return &Index{
		path:     path,
		logger:   logger,
		paths:    make(map[string]string),
		hashes:   make(map[string]string),
		words:    make(map[string]map[string]struct{}),
		docWords: make(map[string][]string),
	}
}

// ContentHash fingerprints document content for deduplication. Content is
// normalized first (trimmed, line endings unified) so cosmetic differences
// do not defeat the dedup check.
func ContentHash(content string) string {
	normalized := NormalizeContent(content)
	sum := sha256.Sum256([]byte(normalized))
	return hex.EncodeToString(sum[:])
}

// NormalizeContent trims surrounding whitespace and unifies CRLF line
// endings. This is the canonical form stored in documents.
func NormalizeContent(content string) string {
	content = strings.ReplaceAll(content, "\r\n", "\n")
	return strings.TrimSpace(content)
}

// Put indexes a document, replacing any previous entry for the same id.
// Stale keyword and hash associations from the prior version are removed
// first, so Put is idempotent.
func (ix *Index) Put(e Entry) {
	ix.mu.Lock()
	defer ix.mu.Unlock()

	ix.removeLocked(e.ID)

	ix.paths[e.ID] = e.Path
	if e.ContentHash != "" {
		ix.hashes[e.ContentHash] = e.ID
	}

	keywords := ExtractKeywords(e.Title + " " + e.Content)
	for _, kw := range keywords {
		set, ok := ix.words[kw]
		if !ok {
			set = make(map[string]struct{})
			ix.words[kw] = set
		}
		set[e.ID] = struct{}{}
	}
	ix.docWords[e.ID] = keywords
}

// Remove drops all entries for the document id. Removing an unknown id is a
// no-op.
func (ix *Index) Remove(id string) {
	ix.mu.Lock()
	defer ix.mu.Unlock()
	ix.removeLocked(id)
}

func (ix *Index) removeLocked(id string) {
	delete(ix.paths, id)

	for hash, owner := range ix.hashes {
		if owner == id {
			delete(ix.hashes, hash)
		}
	}

	for _, kw := range ix.docWords[id] {
		if set, ok := ix.words[kw]; ok {
			delete(set, id)
			if len(set) == 0 {
				delete(ix.words, kw)
			}
		}
	}
	delete(ix.docWords, id)
}

// Lookup returns the file path for a document id.
func (ix *Index) Lookup(id string) (string, bool) {
	ix.mu.RLock()
	defer ix.mu.RUnlock()
	path, ok := ix.paths[id]
	return path, ok
}

// ExistsByContentHash returns the id of a live document with identical
// normalized content, if any. The caller decides whether to short-circuit
// creation.
func (ix *Index) ExistsByContentHash(hash string) (string, bool) {
	ix.mu.RLock()
	defer ix.mu.RUnlock()
	id, ok := ix.hashes[hash]
	return id, ok
}

// KeywordSearch returns ids of documents matching the query terms, ordered
// by number of matching terms descending, ties by id ascending. Terms go
// through the same extraction as indexing, so casing and punctuation in the
// query are irrelevant.
func (ix *Index) KeywordSearch(query string) []string {
	terms := ExtractKeywords(query)
	if len(terms) == 0 {
		return nil
	}

	ix.mu.RLock()
	defer ix.mu.RUnlock()

	matches := make(map[string]int)
	for _, term := range terms {
		for id := range ix.words[term] {
			matches[id]++
		}
	}
	if len(matches) == 0 {
		return nil
	}

	ids := make([]string, 0, len(matches))
	for id := range matches {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool {
		if matches[ids[i]] != matches[ids[j]] {
			return matches[ids[i]] > matches[ids[j]]
		}
		return ids[i] < ids[j]
	})
	return ids
}

// Len returns the number of indexed documents.
func (ix *Index) Len() int {
	ix.mu.RLock()
	defer ix.mu.RUnlock()
	return len(ix.paths)
}

// Rebuild replaces the whole index from a store scan.
func (ix *Index) Rebuild(entries []Entry) {
	ix.mu.Lock()
	ix.paths = make(map[string]string, len(entries))
	ix.hashes = make(map[string]string, len(entries))
	ix.words = make(map[string]map[string]struct{})
	ix.docWords = make(map[string][]string, len(entries))
	ix.mu.Unlock()

	for _, e := range entries {
		ix.Put(e)
	}

	ix.logger.Info("index rebuilt", slog.Int("documents", len(entries)))
}

// indexFile is the persisted form.
type indexFile struct {
	Version  int                 `json:"version"`
	SavedAt  time.Time           `json:"saved_at"`
	Paths    map[string]string   `json:"paths"`
	Hashes   map[string]string   `json:"hashes"`
	Keywords map[string][]string `json:"keywords"`
}

// Persist writes the index to its file atomically (temp file + rename).
func (ix *Index) Persist() error {
	ix.mu.RLock()
	file := indexFile{
		Version:  FormatVersion,
		SavedAt:  time.Now().UTC(),
		Paths:    make(map[string]string, len(ix.paths)),
		Hashes:   make(map[string]string, len(ix.hashes)),
		Keywords: make(map[string][]string, len(ix.words)),
	}
	for id, p := range ix.paths {
		file.Paths[id] = p
	}
	for h, id := range ix.hashes {
		file.Hashes[h] = id
	}
	for kw, set := range ix.words {
		ids := make([]string, 0, len(set))
		for id := range set {
			ids = append(ids, id)
		}
		sort.Strings(ids)
		file.Keywords[kw] = ids
	}
	ix.mu.RUnlock()

	data, err := json.Marshal(file)
	if err != nil {
		return docerrors.InternalError("marshal index", err)
	}

	if err := os.MkdirAll(filepath.Dir(ix.path), 0o755); err != nil {
		return docerrors.New(docerrors.ErrCodeFilePermission, "create index directory", err)
	}

	tmp := ix.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return docerrors.New(docerrors.ErrCodeFilePermission, "write index file", err)
	}
	if err := os.Rename(tmp, ix.path); err != nil {
		os.Remove(tmp)
		return docerrors.New(docerrors.ErrCodeFilePermission, "replace index file", err)
	}
	return nil
}

// Load reads the persisted index. A missing file returns os.ErrNotExist; a
// corrupt or version-mismatched file returns ERR_205 so the caller can fall
// back to Rebuild.
func (ix *Index) Load() error {
	data, err := os.ReadFile(ix.path)
	if err != nil {
		return err
	}

	var file indexFile
	if err := json.Unmarshal(data, &file); err != nil {
		return docerrors.New(docerrors.ErrCodeCorruptIndex, "index file is not valid JSON", err)
	}
	if file.Version != FormatVersion {
		return docerrors.New(docerrors.ErrCodeCorruptIndex, "unsupported index format version", nil).
			WithDetail("version", strconv.Itoa(file.Version)).
			WithDetail("supported", strconv.Itoa(FormatVersion))
	}

	ix.mu.Lock()
	defer ix.mu.Unlock()

	ix.paths = file.Paths
	if ix.paths == nil {
		ix.paths = make(map[string]string)
	}
	ix.hashes = file.Hashes
	if ix.hashes == nil {
		ix.hashes = make(map[string]string)
	}
	ix.words = make(map[string]map[string]struct{}, len(file.Keywords))
	ix.docWords = make(map[string][]string)
	for kw, ids := range file.Keywords {
		set := make(map[string]struct{}, len(ids))
		for _, id := range ids {
			set[id] = struct{}{}
			ix.docWords[id] = append(ix.docWords[id], kw)
		}
		ix.words[kw] = set
	}

	ix.logger.Debug("index loaded",
		slog.Int("documents", len(ix.paths)),
		slog.Int("keywords", len(ix.words)))
	return nil
}

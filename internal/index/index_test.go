package index

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	docerrors "github.com/andrea9293/mcp-documentation-server/internal/errors"
)

func newTestIndex(t *testing.T) *Index {
	t.Helper()
	return New(filepath.Join(t.TempDir(), "index.json"), nil)
}

func entry(id, title, content string) Entry {
	return Entry{
		ID:          id,
		Path:        "/data/documents/" + id + ".json",
		ContentHash: ContentHash(content),
		Title:       title,
		Content:     content,
	}
}

func TestPutAndLookup(t *testing.T) {
	ix := newTestIndex(t)
	ix.Put(entry("doc-1", "Kubernetes Guide", "pods and services explained"))

	path, ok := ix.Lookup("doc-1")
	require.True(t, ok)
	assert.Equal(t, "/data/documents/doc-1.json", path)

	_, ok = ix.Lookup("missing")
	assert.False(t, ok)
}

func TestPutIsIdempotent(t *testing.T) {
	ix := newTestIndex(t)
	ix.Put(entry("doc-1", "First", "alpha bravo charlie"))
	ix.Put(entry("doc-1", "First", "alpha bravo charlie"))

	assert.Equal(t, 1, ix.Len())
	assert.Equal(t, []string{"doc-1"}, ix.KeywordSearch("bravo"))
}

func TestPutReplacesStaleKeywords(t *testing.T) {
	ix := newTestIndex(t)
	ix.Put(entry("doc-1", "Networking", "routing tables and subnets"))
	ix.Put(entry("doc-1", "Storage", "volumes and snapshots"))

	assert.Empty(t, ix.KeywordSearch("routing"), "old keywords must be retracted")
	assert.Equal(t, []string{"doc-1"}, ix.KeywordSearch("snapshots"))

	// The stale content hash must be gone too.
	_, ok := ix.ExistsByContentHash(ContentHash("routing tables and subnets"))
	assert.False(t, ok)
	id, ok := ix.ExistsByContentHash(ContentHash("volumes and snapshots"))
	require.True(t, ok)
	assert.Equal(t, "doc-1", id)
}

func TestRemove(t *testing.T) {
	ix := newTestIndex(t)
	ix.Put(entry("doc-1", "Title", "unique keyword payload"))
	ix.Remove("doc-1")

	assert.Equal(t, 0, ix.Len())
	_, ok := ix.Lookup("doc-1")
	assert.False(t, ok)
	assert.Empty(t, ix.KeywordSearch("payload"))
	_, ok = ix.ExistsByContentHash(ContentHash("unique keyword payload"))
	assert.False(t, ok)

	ix.Remove("doc-1") // second remove is a no-op
}

func TestContentHashNormalization(t *testing.T) {
	assert.Equal(t, ContentHash("hello world"), ContentHash("  hello world\n"))
	assert.Equal(t, ContentHash("line one\nline two"), ContentHash("line one\r\nline two"))
	assert.NotEqual(t, ContentHash("hello world"), ContentHash("hello, world"))
}

func TestExistsByContentHashDedup(t *testing.T) {
	ix := newTestIndex(t)
	ix.Put(entry("doc-1", "Original", "the quick brown fox jumps"))

	id, ok := ix.ExistsByContentHash(ContentHash("  the quick brown fox jumps  "))
	require.True(t, ok)
	assert.Equal(t, "doc-1", id)
}

func TestKeywordSearchRanking(t *testing.T) {
	ix := newTestIndex(t)
	ix.Put(entry("doc-a", "Go concurrency", "goroutines channels select statements"))
	ix.Put(entry("doc-b", "Go basics", "goroutines syntax variables"))
	ix.Put(entry("doc-c", "Python asyncio", "coroutines event loops"))

	// doc-a matches both terms, doc-b one, doc-c none.
	ids := ix.KeywordSearch("goroutines channels")
	assert.Equal(t, []string{"doc-a", "doc-b"}, ids)

	assert.Empty(t, ix.KeywordSearch("nonexistent"))
	assert.Empty(t, ix.KeywordSearch(""))
	assert.Empty(t, ix.KeywordSearch("a of")) // short + stopword only
}

func TestKeywordSearchCaseAndPunctuation(t *testing.T) {
	ix := newTestIndex(t)
	ix.Put(entry("doc-1", "API Reference", "endpoint authentication tokens"))

	assert.Equal(t, []string{"doc-1"}, ix.KeywordSearch("AUTHENTICATION!"))
	assert.Equal(t, []string{"doc-1"}, ix.KeywordSearch("tokens, endpoint"))
}

func TestExtractKeywords(t *testing.T) {
	tests := []struct {
		name string
		text string
		want []string
	}{
		{"lowercases", "Hello WORLD", []string{"hello", "world"}},
		{"drops short tokens", "go is ok fine", []string{"fine"}},
		{"drops stopwords", "the cat and the dog", []string{"cat", "dog"}},
		{"splits punctuation", "foo-bar.baz_qux", []string{"foo", "bar", "baz", "qux"}},
		{"deduplicates", "repeat repeat repeat", []string{"repeat"}},
		{"empty", "", nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ExtractKeywords(tt.text)
			if tt.want == nil {
				assert.Empty(t, got)
			} else {
				assert.Equal(t, tt.want, got)
			}
		})
	}
}

func TestPersistAndLoad(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "index.json")

	ix := New(path, nil)
	ix.Put(entry("doc-1", "Alpha", "content about databases"))
	ix.Put(entry("doc-2", "Beta", "content about networking"))
	require.NoError(t, ix.Persist())

	loaded := New(path, nil)
	require.NoError(t, loaded.Load())

	assert.Equal(t, 2, loaded.Len())
	p, ok := loaded.Lookup("doc-1")
	require.True(t, ok)
	assert.Equal(t, "/data/documents/doc-1.json", p)
	id, ok := loaded.ExistsByContentHash(ContentHash("content about networking"))
	require.True(t, ok)
	assert.Equal(t, "doc-2", id)
	assert.Equal(t, []string{"doc-1"}, loaded.KeywordSearch("databases"))
}

func TestLoadMissingFile(t *testing.T) {
	ix := New(filepath.Join(t.TempDir(), "absent.json"), nil)
	err := ix.Load()
	assert.True(t, errors.Is(err, os.ErrNotExist))
}

func TestLoadCorruptFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "index.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o644))

	ix := New(path, nil)
	err := ix.Load()
	require.Error(t, err)
	assert.Equal(t, docerrors.ErrCodeCorruptIndex, docerrors.GetCode(err))
}

func TestLoadWrongVersion(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "index.json")
	require.NoError(t, os.WriteFile(path,
		[]byte(`{"version": 99, "paths": {}, "hashes": {}, "keywords": {}}`), 0o644))

	ix := New(path, nil)
	err := ix.Load()
	require.Error(t, err)
	assert.Equal(t, docerrors.ErrCodeCorruptIndex, docerrors.GetCode(err))
}

func TestRebuild(t *testing.T) {
	ix := newTestIndex(t)
	ix.Put(entry("stale", "Old", "this entry should vanish"))

	ix.Rebuild([]Entry{
		entry("doc-1", "Fresh", "rebuilt entry number one"),
		entry("doc-2", "Fresh Too", "rebuilt entry number two"),
	})

	assert.Equal(t, 2, ix.Len())
	_, ok := ix.Lookup("stale")
	assert.False(t, ok)
	assert.ElementsMatch(t, []string{"doc-1", "doc-2"}, ix.KeywordSearch("rebuilt"))
}

func TestPersistIsAtomic(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "index.json")

	ix := New(path, nil)
	ix.Put(entry("doc-1", "Title", "some content here"))
	require.NoError(t, ix.Persist())

	// No temp file left behind.
	_, err := os.Stat(path + ".tmp")
	assert.True(t, errors.Is(err, os.ErrNotExist))
}

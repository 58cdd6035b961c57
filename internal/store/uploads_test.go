package store

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestProcessor(t *testing.T) (*Processor, *Store) {
	t.Helper()
	s := newTestStore(t, true)
	uploads := filepath.Join(t.TempDir(), "uploads")
	p := NewProcessor(uploads, s, nil, nil)
	return p, s
}

func dropFile(t *testing.T, dir, name, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(dir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644))
}

func TestProcessEmptyInbox(t *testing.T) {
	p, _ := newTestProcessor(t)

	report, err := p.Process(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0, report.Processed)
	assert.Empty(t, report.Errors)
}

func TestProcessTextAndMarkdown(t *testing.T) {
	p, s := newTestProcessor(t)
	dropFile(t, p.UploadsDir(), "notes.txt", "Plain text notes about deployment procedures.")
	dropFile(t, p.UploadsDir(), "readme.md", "# Heading\n\nSome **bold** markdown prose.")

	report, err := p.Process(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, report.Processed)
	assert.Empty(t, report.Errors)

	notes, err := s.FindByTitle("notes")
	require.NoError(t, err)
	assert.Contains(t, notes.Content, "deployment procedures")

	readme, err := s.FindByTitle("readme")
	require.NoError(t, err)
	assert.Contains(t, readme.Content, "Heading")
	assert.Contains(t, readme.Content, "bold")
	assert.NotContains(t, readme.Content, "**", "markdown syntax must be stripped")

	// Processed files leave the inbox; originals are preserved.
	entries, err := os.ReadDir(p.UploadsDir())
	require.NoError(t, err)
	for _, e := range entries {
		assert.True(t, e.Name()[0] == '.', "inbox should only keep the lock file, found %s", e.Name())
	}

	originals, err := os.ReadDir(s.cfg.OriginalsDir)
	require.NoError(t, err)
	assert.Len(t, originals, 2)
}

func TestProcessSkipsUnsupportedFiles(t *testing.T) {
	p, _ := newTestProcessor(t)
	dropFile(t, p.UploadsDir(), "image.png", "not really an image")

	report, err := p.Process(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0, report.Processed)
	assert.Empty(t, report.Errors)

	// Unsupported files stay put rather than being deleted.
	_, err = os.Stat(filepath.Join(p.UploadsDir(), "image.png"))
	assert.NoError(t, err)
}

func TestProcessReplacesSameTitle(t *testing.T) {
	p, s := newTestProcessor(t)
	ctx := context.Background()

	dropFile(t, p.UploadsDir(), "manual.txt", "first upload of the manual")
	_, err := p.Process(ctx)
	require.NoError(t, err)

	dropFile(t, p.UploadsDir(), "manual.txt", "second upload of the manual")
	_, err = p.Process(ctx)
	require.NoError(t, err)

	infos, err := s.List()
	require.NoError(t, err)
	require.Len(t, infos, 1)

	doc, err := s.FindByTitle("manual")
	require.NoError(t, err)
	assert.Contains(t, doc.Content, "second upload")
}

func TestProcessReportsBadFileAndContinues(t *testing.T) {
	p, s := newTestProcessor(t)
	dropFile(t, p.UploadsDir(), "empty.txt", "   \n  ")
	dropFile(t, p.UploadsDir(), "good.txt", "this one is perfectly fine")

	report, err := p.Process(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, report.Processed)
	require.Len(t, report.Errors, 1)
	assert.Contains(t, report.Errors[0], "empty.txt")

	_, err = s.FindByTitle("good")
	assert.NoError(t, err)
}

func TestDeriveTitle(t *testing.T) {
	assert.Equal(t, "report", deriveTitle("/inbox/report.txt"))
	assert.Equal(t, "release-notes", deriveTitle("release-notes.md"))
	assert.Equal(t, "archive.tar", deriveTitle("archive.tar.gz"))
}

func TestSupportedExtensions(t *testing.T) {
	p, _ := newTestProcessor(t)
	exts := p.Supported()
	assert.Contains(t, exts, ".txt")
	assert.Contains(t, exts, ".md")
}

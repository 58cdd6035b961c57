package store

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/gofrs/flock"

	docerrors "github.com/andrea9293/mcp-documentation-server/internal/errors"
)

// Report summarizes one uploads run.
type Report struct {
	Processed int      `json:"processed"`
	Errors    []string `json:"errors,omitempty"`
}

// Processor ingests files dropped into the uploads inbox. A file lock in
// the inbox guards against two instances processing the same files at once;
// within one process the store lock already serializes the mutations.
type Processor struct {
	uploadsDir string
	store      *Store
	extractors *ExtractorRegistry
	logger     *slog.Logger
}

// NewProcessor creates an uploads processor over the given inbox directory.
func NewProcessor(uploadsDir string, store *Store, extractors *ExtractorRegistry, logger *slog.Logger) *Processor {
	if logger == nil {
		logger = slog.Default()
	}
	if extractors == nil {
		extractors = NewExtractorRegistry()
	}
	return &Processor{
		uploadsDir: uploadsDir,
		store:      store,
		extractors: extractors,
		logger:     logger,
	}
}

// UploadsDir returns the inbox location users drop files into.
func (p *Processor) UploadsDir() string {
	return p.uploadsDir
}

// Supported lists the file extensions the processor can ingest.
func (p *Processor) Supported() []string {
	exts := p.extractors.Supported()
	sort.Strings(exts)
	return exts
}

// Process scans the inbox and converts each supported file into a document,
// replacing any existing document with the same derived title. Files that
// fail are reported in the errors list; one bad file never aborts the run.
// Successfully ingested files are removed from the inbox, with the raw
// source preserved in the originals directory.
func (p *Processor) Process(ctx context.Context) (*Report, error) {
	if err := os.MkdirAll(p.uploadsDir, 0o755); err != nil {
		return nil, docerrors.New(docerrors.ErrCodeFilePermission, "create uploads directory", err)
	}

	lock := flock.New(filepath.Join(p.uploadsDir, ".uploads.lock"))
	locked, err := lock.TryLock()
	if err != nil {
		return nil, docerrors.New(docerrors.ErrCodeUploadFailed, "acquire uploads lock", err)
	}
	if !locked {
		return nil, docerrors.New(docerrors.ErrCodeUploadFailed,
			"another uploads run is in progress", nil).
			WithSuggestion("wait for the running process_uploads to finish and retry")
	}
	defer lock.Unlock()

	entries, err := os.ReadDir(p.uploadsDir)
	if err != nil {
		return nil, docerrors.New(docerrors.ErrCodeFilePermission, "read uploads directory", err)
	}

	report := &Report{}
	for _, e := range entries {
		if e.IsDir() || strings.HasPrefix(e.Name(), ".") {
			continue
		}
		path := filepath.Join(p.uploadsDir, e.Name())

		extractor, ok := p.extractors.For(path)
		if !ok {
			continue // unsupported type, leave in place
		}

		if err := p.ingest(ctx, path, extractor); err != nil {
			report.Errors = append(report.Errors, fmt.Sprintf("%s: %v", e.Name(), err))
			p.logger.Warn("upload failed",
				slog.String("file", e.Name()),
				slog.String("error", err.Error()))
			continue
		}
		report.Processed++
	}

	p.logger.Info("uploads processed",
		slog.Int("processed", report.Processed),
		slog.Int("errors", len(report.Errors)))
	return report, nil
}

// ingest converts one inbox file into a document and cleans up the inbox.
func (p *Processor) ingest(ctx context.Context, path string, extractor Extractor) error {
	content, err := extractor.Extract(path)
	if err != nil {
		return err
	}
	if strings.TrimSpace(content) == "" {
		return docerrors.ValidationError("file has no extractable text", nil)
	}

	title := deriveTitle(path)
	doc, err := p.store.UploadsReplace(ctx, title, content, map[string]any{
		"source":    "upload",
		"file_name": filepath.Base(path),
	})
	if err != nil {
		return err
	}

	if err := p.store.SaveOriginal(doc.ID, path); err != nil {
		return err
	}
	if err := os.Remove(path); err != nil {
		return docerrors.New(docerrors.ErrCodeUploadFailed, "remove processed upload", err)
	}
	return nil
}

// deriveTitle turns a file name into the document title: base name without
// extension.
func deriveTitle(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

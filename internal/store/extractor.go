package store

import (
	"bytes"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"

	docerrors "github.com/andrea9293/mcp-documentation-server/internal/errors"
)

// Extractor converts an uploaded file into plain text for ingestion.
type Extractor interface {
	// Extensions lists the file extensions (with dot, lowercase) this
	// extractor handles.
	Extensions() []string

	// Extract reads the file and returns its text content.
	Extract(path string) (string, error)
}

// ExtractorRegistry maps file extensions to extractors.
type ExtractorRegistry struct {
	byExt map[string]Extractor
}

// NewExtractorRegistry creates a registry with the built-in text and
// markdown extractors. PDF support plugs in through Register.
func NewExtractorRegistry() *ExtractorRegistry {
	r := &ExtractorRegistry{byExt: make(map[string]Extractor)}
	r.Register(TextExtractor{})
	r.Register(MarkdownExtractor{})
	return r
}

// Register adds an extractor for its declared extensions, replacing any
// previous handler for the same extension.
func (r *ExtractorRegistry) Register(e Extractor) {
	for _, ext := range e.Extensions() {
		r.byExt[strings.ToLower(ext)] = e
	}
}

// For returns the extractor for a file path, matched by extension.
func (r *ExtractorRegistry) For(path string) (Extractor, bool) {
	e, ok := r.byExt[strings.ToLower(filepath.Ext(path))]
	return e, ok
}

// Supported lists the registered extensions.
func (r *ExtractorRegistry) Supported() []string {
	exts := make([]string, 0, len(r.byExt))
	for ext := range r.byExt {
		exts = append(exts, ext)
	}
	return exts
}

// TextExtractor passes plain text files through unchanged.
type TextExtractor struct {
	// StreamThreshold switches to a buffered read for files at or above
	// this size in bytes. Zero reads everything in one call.
	StreamThreshold int64
}

func (TextExtractor) Extensions() []string { return []string{".txt"} }

func (e TextExtractor) Extract(path string) (string, error) {
	if e.StreamThreshold > 0 {
		if info, err := os.Stat(path); err == nil && info.Size() >= e.StreamThreshold {
			return streamFile(path, info.Size())
		}
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return "", docerrors.New(docerrors.ErrCodeFilePermission, "read text file", err)
	}
	return string(data), nil
}

// streamFile reads a large file through a fixed-size buffer instead of a
// single allocation sized to the whole file.
func streamFile(path string, size int64) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", docerrors.New(docerrors.ErrCodeFilePermission, "open text file", err)
	}
	defer f.Close()

	var sb strings.Builder
	sb.Grow(int(size))
	buf := make([]byte, 256*1024)
	for {
		n, err := f.Read(buf)
		if n > 0 {
			sb.Write(buf[:n])
		}
		if err == io.EOF {
			return sb.String(), nil
		}
		if err != nil {
			return "", docerrors.New(docerrors.ErrCodeFilePermission, "read text file", err)
		}
	}
}

// MarkdownExtractor strips markdown syntax, keeping the readable text so
// embeddings are not polluted by formatting characters.
type MarkdownExtractor struct{}

func (MarkdownExtractor) Extensions() []string { return []string{".md", ".markdown"} }

func (MarkdownExtractor) Extract(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", docerrors.New(docerrors.ErrCodeFilePermission, "read markdown file", err)
	}

	md := goldmark.New()
	doc := md.Parser().Parse(text.NewReader(data))

	var buf bytes.Buffer
	err = ast.Walk(doc, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			// Block boundaries become paragraph breaks in the output.
			if _, isBlock := n.(*ast.Paragraph); isBlock || n.Kind() == ast.KindHeading {
				buf.WriteString("\n\n")
			}
			return ast.WalkContinue, nil
		}
		switch node := n.(type) {
		case *ast.Text:
			buf.Write(node.Segment.Value(data))
			if node.SoftLineBreak() || node.HardLineBreak() {
				buf.WriteByte('\n')
			}
		case *ast.CodeBlock:
			writeCodeLines(&buf, node.Lines(), data)
		case *ast.FencedCodeBlock:
			writeCodeLines(&buf, node.Lines(), data)
		}
		return ast.WalkContinue, nil
	})
	if err != nil {
		return "", docerrors.InternalError("walk markdown tree", err)
	}

	return strings.TrimSpace(buf.String()), nil
}

func writeCodeLines(buf *bytes.Buffer, lines *text.Segments, source []byte) {
	for i := 0; i < lines.Len(); i++ {
		seg := lines.At(i)
		buf.Write(seg.Value(source))
	}
	buf.WriteString("\n")
}

package embed

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"

	docerrors "github.com/andrea9293/mcp-documentation-server/internal/errors"
)

// OllamaConfig configures the Ollama embedder.
type OllamaConfig struct {
	// Host is the Ollama API endpoint (default http://localhost:11434).
	Host string

	// Model is the embedding model name.
	Model string

	// Dimensions is the expected dimensionality (0 = detect on first call).
	Dimensions int

	// RequestTimeout bounds individual embedding requests.
	RequestTimeout time.Duration
}

// OllamaEmbedder generates embeddings using Ollama's HTTP API.
// Construction is cheap and does not touch the network; the first Embed
// call (through LazyEmbedder) pays the model load cost.
type OllamaEmbedder struct {
	client *http.Client
	config OllamaConfig

	mu     sync.RWMutex
	dims   int
	closed bool
}

// Verify interface implementation at compile time.
var _ Embedder = (*OllamaEmbedder)(nil)

// NewOllamaEmbedder creates an Ollama embedder and verifies the endpoint is
// reachable. Dimensions are detected from a probe embedding when not
// configured, which forces the model to load now rather than on the first
// real request.
func NewOllamaEmbedder(ctx context.Context, cfg OllamaConfig) (*OllamaEmbedder, error) {
	if cfg.Host == "" {
		cfg.Host = "http://localhost:11434"
	}
	if cfg.Model == "" {
		cfg.Model = "nomic-embed-text"
	}
	if cfg.RequestTimeout <= 0 {
		cfg.RequestTimeout = DefaultRequestTimeout
	}

	e := &OllamaEmbedder{
		client: &http.Client{},
		config: cfg,
		dims:   cfg.Dimensions,
	}

	if e.dims == 0 {
		vecs, err := e.request(ctx, []string{"dimension probe"})
		if err != nil {
			return nil, docerrors.Wrap(docerrors.ErrCodeProviderUnavailable, err)
		}
		if len(vecs) == 0 || len(vecs[0]) == 0 {
			return nil, docerrors.New(docerrors.ErrCodeProviderUnavailable,
				"ollama returned an empty probe embedding", nil)
		}
		e.dims = len(vecs[0])
	}

	return e, nil
}

// embedRequest is the Ollama /api/embed request payload.
type embedRequest struct {
	Model string   `json:"model"`
	Input []string `json:"input"`
}

// embedResponse is the Ollama /api/embed response payload.
type embedResponse struct {
	Embeddings [][]float32 `json:"embeddings"`
}

// request performs one /api/embed call for the given inputs.
func (e *OllamaEmbedder) request(ctx context.Context, inputs []string) ([][]float32, error) {
	body, err := json.Marshal(embedRequest{Model: e.config.Model, Input: inputs})
	if err != nil {
		return nil, fmt.Errorf("marshal embed request: %w", err)
	}

	reqCtx, cancel := context.WithTimeout(ctx, e.config.RequestTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(reqCtx, http.MethodPost,
		e.config.Host+"/api/embed", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("build embed request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := e.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("ollama request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("ollama returned status %d: %s", resp.StatusCode, string(msg))
	}

	var parsed embedResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, fmt.Errorf("decode embed response: %w", err)
	}
	if len(parsed.Embeddings) != len(inputs) {
		return nil, fmt.Errorf("ollama returned %d embeddings for %d inputs",
			len(parsed.Embeddings), len(inputs))
	}
	return parsed.Embeddings, nil
}

// Embed generates the embedding for a single text.
func (e *OllamaEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	vecs, err := e.EmbedBatch(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	return vecs[0], nil
}

// EmbedBatch generates embeddings for multiple texts. Every returned vector
// is checked against the declared dimensionality; a mismatch is an error,
// never silently tolerated.
func (e *OllamaEmbedder) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	e.mu.RLock()
	if e.closed {
		e.mu.RUnlock()
		return nil, fmt.Errorf("embedder is closed")
	}
	e.mu.RUnlock()

	if len(texts) == 0 {
		return [][]float32{}, nil
	}

	vecs, err := e.request(ctx, texts)
	if err != nil {
		return nil, docerrors.Wrap(docerrors.ErrCodeEmbeddingFailed, err)
	}

	for _, v := range vecs {
		if len(v) != e.dims {
			return nil, docerrors.DimensionMismatch(e.dims, len(v))
		}
	}
	return vecs, nil
}

// Dimensions returns the embedding dimensionality.
func (e *OllamaEmbedder) Dimensions() int {
	return e.dims
}

// ModelName returns the model identifier.
func (e *OllamaEmbedder) ModelName() string {
	return e.config.Model
}

// Ready checks whether the Ollama endpoint responds.
func (e *OllamaEmbedder) Ready(ctx context.Context) bool {
	e.mu.RLock()
	if e.closed {
		e.mu.RUnlock()
		return false
	}
	e.mu.RUnlock()

	reqCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	req, err := http.NewRequestWithContext(reqCtx, http.MethodGet, e.config.Host+"/api/tags", nil)
	if err != nil {
		return false
	}
	resp, err := e.client.Do(req)
	if err != nil {
		return false
	}
	defer resp.Body.Close()
	return resp.StatusCode == http.StatusOK
}

// Close releases resources.
func (e *OllamaEmbedder) Close() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.closed = true
	e.client.CloseIdleConnections()
	return nil
}

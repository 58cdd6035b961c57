// Package config loads and validates the documentation server configuration.
//
// Configuration is resolved in priority order:
//  1. DOCSERVER_* environment variables (highest)
//  2. Config file (~/.mcp-documentation-server/config.yaml or explicit path)
//  3. Built-in defaults
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config represents the complete server configuration.
type Config struct {
	Version    int              `yaml:"version" json:"version"`
	Paths      PathsConfig      `yaml:"paths" json:"paths"`
	Embeddings EmbeddingsConfig `yaml:"embeddings" json:"embeddings"`
	Chunking   ChunkingConfig   `yaml:"chunking" json:"chunking"`
	Uploads    UploadsConfig    `yaml:"uploads" json:"uploads"`
	Index      IndexConfig      `yaml:"index" json:"index"`
	Server     ServerConfig     `yaml:"server" json:"server"`
}

// PathsConfig configures on-disk locations.
type PathsConfig struct {
	// DataDir is the root for documents, the index artifact, the embedding
	// cache artifact, and logs.
	DataDir string `yaml:"data_dir" json:"data_dir"`

	// UploadsDir is the inbox scanned by process_uploads.
	UploadsDir string `yaml:"uploads_dir" json:"uploads_dir"`
}

// EmbeddingsConfig configures the embedding provider and cache.
type EmbeddingsConfig struct {
	// Provider selects the embedding backend: "ollama" or "fallback".
	Provider string `yaml:"provider" json:"provider"`

	// Model is the embedding model identifier.
	Model string `yaml:"model" json:"model"`

	// Dimensions is the expected embedding dimensionality (0 = auto-detect).
	Dimensions int `yaml:"dimensions" json:"dimensions"`

	// OllamaHost is the Ollama API endpoint.
	OllamaHost string `yaml:"ollama_host" json:"ollama_host"`

	// InitTimeout bounds lazy model initialization.
	InitTimeout time.Duration `yaml:"init_timeout" json:"init_timeout"`

	// CacheSize is the maximum number of entries in the embedding LRU cache.
	CacheSize int `yaml:"cache_size" json:"cache_size"`

	// CachePersist enables export/import of the embedding cache to disk.
	CachePersist bool `yaml:"cache_persist" json:"cache_persist"`
}

// ChunkingConfig configures document chunking.
type ChunkingConfig struct {
	// MaxSize is the target maximum chunk size in characters.
	MaxSize int `yaml:"max_size" json:"max_size"`

	// Overlap is the number of trailing characters carried into the next chunk.
	Overlap int `yaml:"overlap" json:"overlap"`

	// Adaptive shrinks the chunk target for dense, structured content.
	Adaptive bool `yaml:"adaptive" json:"adaptive"`

	// Parallel enables concurrent chunk embedding.
	Parallel bool `yaml:"parallel" json:"parallel"`

	// Workers bounds concurrent embedding calls when Parallel is set.
	Workers int `yaml:"workers" json:"workers"`
}

// UploadsConfig configures upload file ingestion.
type UploadsConfig struct {
	// StreamingReads switches to buffered reads for upload files larger
	// than StreamingThresholdMB instead of slurping them in one call.
	StreamingReads bool `yaml:"streaming_reads" json:"streaming_reads"`

	// StreamingThresholdMB is the file size, in megabytes, above which
	// streaming reads kick in.
	StreamingThresholdMB int `yaml:"streaming_threshold_mb" json:"streaming_threshold_mb"`
}

// IndexConfig configures the document index.
type IndexConfig struct {
	// Enabled toggles the in-memory index. When disabled, lookups fall back
	// to a full scan of the document directory (slower, still correct).
	Enabled bool `yaml:"enabled" json:"enabled"`
}

// ServerConfig configures the MCP server.
type ServerConfig struct {
	Transport string `yaml:"transport" json:"transport"`
	LogLevel  string `yaml:"log_level" json:"log_level"`
}

// Defaults.
const (
	DefaultChunkMaxSize = 1200
	DefaultChunkOverlap = 200
	DefaultCacheSize    = 1000
	DefaultInitTimeout  = 3 * time.Minute
	DefaultModel        = "nomic-embed-text"
	DefaultOllamaHost   = "http://localhost:11434"

	DefaultStreamingThresholdMB = 10
)

// NewConfig returns a Config populated with defaults.
func NewConfig() *Config {
	return &Config{
		Version: 1,
		Paths: PathsConfig{
			DataDir:    DefaultDataDir(),
			UploadsDir: filepath.Join(DefaultDataDir(), "uploads"),
		},
		Embeddings: EmbeddingsConfig{
			Provider:     "ollama",
			Model:        DefaultModel,
			OllamaHost:   DefaultOllamaHost,
			InitTimeout:  DefaultInitTimeout,
			CacheSize:    DefaultCacheSize,
			CachePersist: true,
		},
		Chunking: ChunkingConfig{
			MaxSize:  DefaultChunkMaxSize,
			Overlap:  DefaultChunkOverlap,
			Adaptive: true,
			Parallel: true,
			Workers:  defaultWorkers(),
		},
		Uploads: UploadsConfig{
			StreamingReads:       true,
			StreamingThresholdMB: DefaultStreamingThresholdMB,
		},
		Index: IndexConfig{
			Enabled: true,
		},
		Server: ServerConfig{
			Transport: "stdio",
			LogLevel:  "info",
		},
	}
}

// DefaultDataDir returns the default data directory.
func DefaultDataDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(os.TempDir(), ".mcp-documentation-server")
	}
	return filepath.Join(home, ".mcp-documentation-server")
}

// defaultWorkers bounds the embedding worker pool by available CPUs.
func defaultWorkers() int {
	n := runtime.NumCPU()
	if n > 8 {
		n = 8
	}
	if n < 1 {
		n = 1
	}
	return n
}

// Load reads configuration from the given path (optional) and applies
// environment overrides. A missing config file is not an error; defaults
// are used.
func Load(path string) (*Config, error) {
	cfg := NewConfig()

	if path == "" {
		path = filepath.Join(DefaultDataDir(), "config.yaml")
	}

	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config %s: %w", path, err)
		}
	case os.IsNotExist(err):
		// Defaults only.
	default:
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}

	cfg.applyEnvOverrides()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Save writes the configuration to the given path as YAML.
func (c *Config) Save(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create config directory: %w", err)
	}
	return os.WriteFile(path, data, 0o644)
}

// applyEnvOverrides applies DOCSERVER_* environment variables on top of
// whatever the file provided. Env vars always win.
func (c *Config) applyEnvOverrides() {
	if v := os.Getenv("DOCSERVER_DATA_DIR"); v != "" {
		c.Paths.DataDir = v
		// Uploads follow the data dir unless overridden explicitly.
		if os.Getenv("DOCSERVER_UPLOADS_DIR") == "" {
			c.Paths.UploadsDir = filepath.Join(v, "uploads")
		}
	}
	if v := os.Getenv("DOCSERVER_UPLOADS_DIR"); v != "" {
		c.Paths.UploadsDir = v
	}
	if v := os.Getenv("DOCSERVER_EMBEDDER"); v != "" {
		c.Embeddings.Provider = strings.ToLower(v)
	}
	if v := os.Getenv("DOCSERVER_EMBED_MODEL"); v != "" {
		c.Embeddings.Model = v
	}
	if v := os.Getenv("DOCSERVER_OLLAMA_HOST"); v != "" {
		c.Embeddings.OllamaHost = v
	}
	if v := os.Getenv("DOCSERVER_CACHE_SIZE"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.Embeddings.CacheSize = n
		}
	}
	if v := os.Getenv("DOCSERVER_CACHE_PERSIST"); v != "" {
		c.Embeddings.CachePersist = parseBool(v, c.Embeddings.CachePersist)
	}
	if v := os.Getenv("DOCSERVER_CHUNK_SIZE"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.Chunking.MaxSize = n
		}
	}
	if v := os.Getenv("DOCSERVER_CHUNK_OVERLAP"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.Chunking.Overlap = n
		}
	}
	if v := os.Getenv("DOCSERVER_PARALLEL_CHUNKING"); v != "" {
		c.Chunking.Parallel = parseBool(v, c.Chunking.Parallel)
	}
	if v := os.Getenv("DOCSERVER_CHUNK_WORKERS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.Chunking.Workers = n
		}
	}
	if v := os.Getenv("DOCSERVER_STREAMING_READS"); v != "" {
		c.Uploads.StreamingReads = parseBool(v, c.Uploads.StreamingReads)
	}
	if v := os.Getenv("DOCSERVER_STREAMING_THRESHOLD_MB"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.Uploads.StreamingThresholdMB = n
		}
	}
	if v := os.Getenv("DOCSERVER_INDEX_ENABLED"); v != "" {
		c.Index.Enabled = parseBool(v, c.Index.Enabled)
	}
	if v := os.Getenv("DOCSERVER_LOG_LEVEL"); v != "" {
		c.Server.LogLevel = strings.ToLower(v)
	}
}

func parseBool(v string, fallback bool) bool {
	switch strings.ToLower(v) {
	case "true", "1", "on", "yes", "enabled":
		return true
	case "false", "0", "off", "no", "disabled":
		return false
	default:
		return fallback
	}
}

// Validate checks the configuration for consistency.
func (c *Config) Validate() error {
	if c.Paths.DataDir == "" {
		return fmt.Errorf("paths.data_dir must not be empty")
	}
	if c.Chunking.MaxSize <= 0 {
		return fmt.Errorf("chunking.max_size must be positive, got %d", c.Chunking.MaxSize)
	}
	if c.Chunking.Overlap < 0 {
		return fmt.Errorf("chunking.overlap must not be negative, got %d", c.Chunking.Overlap)
	}
	if c.Chunking.Overlap >= c.Chunking.MaxSize {
		return fmt.Errorf("chunking.overlap (%d) must be smaller than chunking.max_size (%d)",
			c.Chunking.Overlap, c.Chunking.MaxSize)
	}
	if c.Chunking.Workers < 0 {
		return fmt.Errorf("chunking.workers must not be negative, got %d", c.Chunking.Workers)
	}
	if c.Uploads.StreamingThresholdMB < 0 {
		return fmt.Errorf("uploads.streaming_threshold_mb must not be negative, got %d", c.Uploads.StreamingThresholdMB)
	}
	if c.Embeddings.CacheSize < 0 {
		return fmt.Errorf("embeddings.cache_size must not be negative, got %d", c.Embeddings.CacheSize)
	}
	switch c.Embeddings.Provider {
	case "", "ollama", "fallback":
	default:
		return fmt.Errorf("embeddings.provider must be \"ollama\" or \"fallback\", got %q", c.Embeddings.Provider)
	}
	switch c.Server.Transport {
	case "", "stdio":
	default:
		return fmt.Errorf("server.transport must be \"stdio\", got %q", c.Server.Transport)
	}
	return nil
}

// DocumentsDir returns the directory holding persisted documents.
func (c *Config) DocumentsDir() string {
	return filepath.Join(c.Paths.DataDir, "documents")
}

// OriginalsDir returns the directory holding original upload artifacts.
func (c *Config) OriginalsDir() string {
	return filepath.Join(c.Paths.DataDir, "originals")
}

// IndexPath returns the path of the persisted index artifact.
func (c *Config) IndexPath() string {
	return filepath.Join(c.Paths.DataDir, "index.json")
}

// CachePath returns the path of the persisted embedding cache artifact.
func (c *Config) CachePath() string {
	return filepath.Join(c.Paths.DataDir, "embedding-cache.json")
}

// LogPath returns the server log path under the data dir.
func (c *Config) LogPath() string {
	return filepath.Join(c.Paths.DataDir, "logs", "server.log")
}

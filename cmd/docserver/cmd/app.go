package cmd

import (
	"log/slog"
	"path/filepath"

	"github.com/andrea9293/mcp-documentation-server/internal/cache"
	"github.com/andrea9293/mcp-documentation-server/internal/chunk"
	"github.com/andrea9293/mcp-documentation-server/internal/config"
	"github.com/andrea9293/mcp-documentation-server/internal/embed"
	"github.com/andrea9293/mcp-documentation-server/internal/index"
	"github.com/andrea9293/mcp-documentation-server/internal/logging"
	"github.com/andrea9293/mcp-documentation-server/internal/search"
	"github.com/andrea9293/mcp-documentation-server/internal/store"
)

// app holds the wired components shared by all commands.
type app struct {
	cfg       *config.Config
	logger    *slog.Logger
	cache     *cache.Cache
	embedder  *embed.CachedEmbedder
	store     *store.Store
	engine    *search.Engine
	processor *store.Processor

	logCleanup func()
}

// buildApp loads configuration and constructs every component. logToFile
// selects the rotating file handler (used by serve, where stdout carries
// the protocol); other commands log to stderr only.
func buildApp(logToFile bool) (*app, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}

	logCfg := logging.Config{
		Level:         cfg.Server.LogLevel,
		WriteToStderr: !logToFile,
	}
	if debugMode {
		logCfg.Level = "debug"
	}
	if logToFile {
		logCfg.FilePath = cfg.LogPath()
	}
	logger, logCleanup, err := logging.Setup(logCfg)
	if err != nil {
		return nil, err
	}

	c := cache.New(cfg.Embeddings.CacheSize)
	if cfg.Embeddings.CachePersist {
		if err := c.LoadFile(cfg.CachePath()); err != nil {
			logger.Warn("embedding cache load failed, starting empty",
				slog.String("error", err.Error()))
		}
	}

	embedder := embed.NewEmbedder(cfg.Embeddings, c)
	chunker := chunk.NewChunker(embedder, logger)
	idx := index.New(cfg.IndexPath(), logger)

	st, err := store.New(store.Config{
		DocumentsDir: cfg.DocumentsDir(),
		OriginalsDir: cfg.OriginalsDir(),
		IndexEnabled: cfg.Index.Enabled,
		ChunkOptions: chunk.Options{
			MaxSize:      cfg.Chunking.MaxSize,
			Overlap:      cfg.Chunking.Overlap,
			AdaptiveSize: cfg.Chunking.Adaptive,
			Parallel:     cfg.Chunking.Parallel,
			Workers:      cfg.Chunking.Workers,
		},
	}, chunker, idx, logger)
	if err != nil {
		logCleanup()
		return nil, err
	}

	uploadsDir := cfg.Paths.UploadsDir
	if uploadsDir == "" {
		uploadsDir = filepath.Join(cfg.Paths.DataDir, "uploads")
	}

	extractors := store.NewExtractorRegistry()
	if cfg.Uploads.StreamingReads {
		extractors.Register(store.TextExtractor{
			StreamThreshold: int64(cfg.Uploads.StreamingThresholdMB) << 20,
		})
	}

	return &app{
		cfg:        cfg,
		logger:     logger,
		cache:      c,
		embedder:   embedder,
		store:      st,
		engine:     search.NewEngine(embedder, logger),
		processor:  store.NewProcessor(uploadsDir, st, extractors, logger),
		logCleanup: logCleanup,
	}, nil
}

// Close persists the embedding cache when enabled and releases the
// embedder and log writer.
func (a *app) Close() {
	if a.cfg.Embeddings.CachePersist {
		if err := a.cache.SaveFile(a.cfg.CachePath()); err != nil {
			a.logger.Warn("embedding cache save failed",
				slog.String("error", err.Error()))
		}
	}
	if err := a.embedder.Close(); err != nil {
		a.logger.Warn("embedder close failed", slog.String("error", err.Error()))
	}
	if a.logCleanup != nil {
		a.logCleanup()
	}
}

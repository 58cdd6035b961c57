// Package chunk splits document text into overlapping, sentence-respecting
// chunks and attaches embeddings to each.
package chunk

// Chunk size defaults, in characters.
const (
	DefaultMaxSize = 1200
	DefaultOverlap = 200

	// MinChunkSize is the floor for adaptive sizing; a chunk target never
	// shrinks below this.
	MinChunkSize = 200

	// DefaultWorkers bounds concurrent embedding calls under Parallel.
	DefaultWorkers = 4
)

// Chunk is a contiguous, bounded slice of a document's text carrying its
// own embedding vector.
type Chunk struct {
	ID         string            `json:"id"`
	DocumentID string            `json:"document_id"`
	Index      int               `json:"chunk_index"`
	Content    string            `json:"content"`
	Embedding  []float32         `json:"embedding,omitempty"`
	StartPos   int               `json:"start_position"`
	EndPos     int               `json:"end_position"`
	Metadata   map[string]string `json:"metadata,omitempty"`
}

// Options configures a chunking run.
type Options struct {
	// MaxSize is the target maximum chunk size in characters.
	MaxSize int

	// Overlap is the number of trailing characters carried into the start
	// of the next chunk.
	Overlap int

	// AdaptiveSize shrinks the chunk target for dense, structured content
	// so each embedding stays semantically focused.
	AdaptiveSize bool

	// Parallel issues embedding calls for independent chunks concurrently.
	// Final chunk ordering is deterministic regardless.
	Parallel bool

	// Workers bounds concurrency when Parallel is set.
	Workers int
}

// DefaultOptions returns the default chunking options.
func DefaultOptions() Options {
	return Options{
		MaxSize:      DefaultMaxSize,
		Overlap:      DefaultOverlap,
		AdaptiveSize: true,
		Parallel:     true,
		Workers:      DefaultWorkers,
	}
}

// normalized applies defaults and clamps inconsistent values.
func (o Options) normalized() Options {
	if o.MaxSize <= 0 {
		o.MaxSize = DefaultMaxSize
	}
	if o.Overlap < 0 {
		o.Overlap = 0
	}
	if o.Overlap >= o.MaxSize {
		o.Overlap = o.MaxSize / 4
	}
	if o.Workers <= 0 {
		o.Workers = DefaultWorkers
	}
	return o
}

package embed

import (
	"context"
	"sync/atomic"
)

// mockEmbedder is a test double that counts calls.
type mockEmbedder struct {
	embedCalls atomic.Int64
	batchCalls atomic.Int64
	dimensions int
	modelName  string
	embedFn    func(text string) ([]float32, error)
}

func newMockEmbedder(dims int) *mockEmbedder {
	m := &mockEmbedder{
		dimensions: dims,
		modelName:  "mock-model",
	}
	m.embedFn = func(string) ([]float32, error) {
		vec := make([]float32, dims)
		for i := range vec {
			vec[i] = float32(i) * 0.001
		}
		return vec, nil
	}
	return m
}

func (m *mockEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	m.embedCalls.Add(1)
	return m.embedFn(text)
}

func (m *mockEmbedder) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	m.batchCalls.Add(1)
	result := make([][]float32, len(texts))
	for i, t := range texts {
		vec, err := m.embedFn(t)
		if err != nil {
			return nil, err
		}
		result[i] = vec
	}
	return result, nil
}

func (m *mockEmbedder) Dimensions() int                 { return m.dimensions }
func (m *mockEmbedder) ModelName() string               { return m.modelName }
func (m *mockEmbedder) Ready(ctx context.Context) bool  { return true }
func (m *mockEmbedder) Close() error                    { return nil }

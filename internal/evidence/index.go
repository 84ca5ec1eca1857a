package evidence

import (
	"context"
	"sync"

	"github.com/spigell/hh-screener/internal/embedding"
)

// Index stores the segment vectors of one resume and answers similarity queries
// against all of them.
type Index interface {
	// Load replaces the indexed segments.
	Load(ctx context.Context, segments []string, vecs [][]float32) error
	// Similarities returns the similarity of query to every loaded segment, by
	// segment position.
	Similarities(ctx context.Context, query []float32) ([]float64, error)
	Close(ctx context.Context) error
}

// MemoryIndex keeps vectors in memory and scores by brute-force cosine.
type MemoryIndex struct {
	mu   sync.RWMutex
	vecs [][]float32
}

func NewMemoryIndex() *MemoryIndex {
	return &MemoryIndex{}
}

func (m *MemoryIndex) Load(_ context.Context, _ []string, vecs [][]float32) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.vecs = vecs
	return nil
}

func (m *MemoryIndex) Similarities(_ context.Context, query []float32) ([]float64, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	sims := make([]float64, len(m.vecs))
	for i, v := range m.vecs {
		sims[i] = embedding.Cosine(query, v)
	}
	return sims, nil
}

func (m *MemoryIndex) Close(context.Context) error {
	return nil
}

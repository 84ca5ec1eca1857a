package embedding

import (
	"context"
	"fmt"
	"sync"

	"go.uber.org/zap"
)

// Safe wraps an Embedder so that failures never reach the caller: a failed call
// yields nil vectors, whose similarity to anything is 0. Failures are counted so
// the result can be marked degraded.
type Safe struct {
	inner  Embedder
	logger *zap.Logger

	mu       sync.Mutex
	dim      int
	failures int
	lastErr  error
}

func NewSafe(inner Embedder, logger *zap.Logger) *Safe {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Safe{inner: inner, logger: logger}
}

// Embed never returns an error. Entries are nil where embedding failed or where the
// vector dimension disagrees with earlier results.
func (s *Safe) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, len(texts))
	if len(texts) == 0 {
		return out, nil
	}
	if s.inner == nil {
		s.fail(fmt.Errorf("no embedder configured"), len(texts))
		return out, nil
	}

	vecs, err := s.inner.Embed(ctx, texts)
	if err != nil {
		s.fail(err, len(texts))
		return out, nil
	}
	if len(vecs) != len(texts) {
		s.fail(fmt.Errorf("%w: got %d, want %d", ErrCountMismatch, len(vecs), len(texts)), len(texts))
		return out, nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	for i, v := range vecs {
		if len(v) == 0 {
			s.recordLocked(fmt.Errorf("%w: empty vector", ErrDimensionMismatch))
			continue
		}
		if s.dim == 0 {
			s.dim = len(v)
		}
		if len(v) != s.dim {
			s.recordLocked(fmt.Errorf("%w: got %d, want %d", ErrDimensionMismatch, len(v), s.dim))
			continue
		}
		out[i] = v
	}
	return out, nil
}

// One embeds a single text, returning nil on failure.
func (s *Safe) One(ctx context.Context, text string) []float32 {
	vecs, _ := s.Embed(ctx, []string{text})
	return vecs[0]
}

// Failures is the number of texts that could not be embedded.
func (s *Safe) Failures() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.failures
}

func (s *Safe) Err() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastErr
}

func (s *Safe) fail(err error, n int) {
	s.logger.Warn("embedding failed, similarity defaults to zero",
		zap.Int("texts", n),
		zap.Error(err),
	)
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failures += n
	s.lastErr = err
}

func (s *Safe) recordLocked(err error) {
	s.logger.Warn("embedding rejected", zap.Error(err))
	s.failures++
	s.lastErr = err
}

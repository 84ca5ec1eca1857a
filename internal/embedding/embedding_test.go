package embedding

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestCosine(t *testing.T) {
	t.Parallel()

	assert.InDelta(t, 1.0, Cosine([]float32{1, 2, 3}, []float32{2, 4, 6}), 1e-9)
	assert.InDelta(t, 0.0, Cosine([]float32{1, 0}, []float32{0, 1}), 1e-9)
	assert.InDelta(t, -1.0, Cosine([]float32{1, 0}, []float32{-1, 0}), 1e-9)
	assert.Zero(t, Cosine([]float32{1, 0}, []float32{1, 0, 0}))
	assert.Zero(t, Cosine(nil, nil))
	assert.Zero(t, Cosine([]float32{0, 0}, []float32{1, 1}))
}

func TestNormalize(t *testing.T) {
	t.Parallel()

	v := Normalize([]float32{3, 4})
	assert.InDelta(t, 0.6, v[0], 1e-6)
	assert.InDelta(t, 0.8, v[1], 1e-6)
	assert.Equal(t, []float32{0, 0}, Normalize([]float32{0, 0}))
}

func TestHashEmbedder(t *testing.T) {
	t.Parallel()

	e := NewHashEmbedder(0)
	require.Equal(t, DefaultHashDimension, e.Dimension())

	vecs, err := e.Embed(context.Background(), []string{
		"Python Django developer",
		"django python engineer",
		"kubernetes helm charts",
		"Python Django developer",
		"",
	})
	require.NoError(t, err)
	require.Len(t, vecs, 5)
	for _, v := range vecs {
		assert.Len(t, v, DefaultHashDimension)
	}

	assert.InDelta(t, 1.0, Cosine(vecs[0], vecs[3]), 1e-6)
	assert.Greater(t, Cosine(vecs[0], vecs[1]), Cosine(vecs[0], vecs[2]))
	assert.Greater(t, Cosine(vecs[0], vecs[1]), 0.3)
	assert.Zero(t, Cosine(vecs[0], vecs[4]))
}

func TestHashEmbedderHonoursContext(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewHashEmbedder(16).Embed(ctx, []string{"go"})
	require.ErrorIs(t, err, context.Canceled)
}

type stubEmbedder struct {
	vecs [][]float32
	err  error
}

func (s stubEmbedder) Embed(_ context.Context, _ []string) ([][]float32, error) {
	return s.vecs, s.err
}

func TestSafe(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		inner    Embedder
		texts    []string
		wantNil  []bool
		failures int
		errIs    error
	}{
		{
			name:     "inner error",
			inner:    stubEmbedder{err: errors.New("quota exceeded")},
			texts:    []string{"a", "b"},
			wantNil:  []bool{true, true},
			failures: 2,
		},
		{
			name:     "count mismatch",
			inner:    stubEmbedder{vecs: [][]float32{{1, 0}}},
			texts:    []string{"a", "b"},
			wantNil:  []bool{true, true},
			failures: 2,
			errIs:    ErrCountMismatch,
		},
		{
			name:     "dimension mismatch",
			inner:    stubEmbedder{vecs: [][]float32{{1, 0}, {1, 0, 0}, {}}},
			texts:    []string{"a", "b", "c"},
			wantNil:  []bool{false, true, true},
			failures: 2,
			errIs:    ErrDimensionMismatch,
		},
		{
			name:     "missing embedder",
			inner:    nil,
			texts:    []string{"a"},
			wantNil:  []bool{true},
			failures: 1,
		},
		{
			name:    "healthy",
			inner:   stubEmbedder{vecs: [][]float32{{1, 0}, {0, 1}}},
			texts:   []string{"a", "b"},
			wantNil: []bool{false, false},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			safe := NewSafe(tt.inner, nil)
			vecs, err := safe.Embed(context.Background(), tt.texts)
			require.NoError(t, err)
			require.Len(t, vecs, len(tt.texts))
			for i, wantNil := range tt.wantNil {
				assert.Equal(t, wantNil, vecs[i] == nil, "vector %d", i)
			}
			assert.Equal(t, tt.failures, safe.Failures())
			if tt.errIs != nil {
				assert.ErrorIs(t, safe.Err(), tt.errIs)
			}
			if tt.failures == 0 {
				assert.NoError(t, safe.Err())
			}
		})
	}
}

func TestSafeLogsFailures(t *testing.T) {
	t.Parallel()

	core, recorded := observer.New(zapcore.WarnLevel)
	safe := NewSafe(stubEmbedder{err: errors.New("boom")}, zap.New(core))

	assert.Nil(t, safe.One(context.Background(), "python"))

	entries := recorded.FilterMessage("embedding failed, similarity defaults to zero").All()
	require.Len(t, entries, 1)
	assert.Equal(t, int64(1), entries[0].ContextMap()["texts"])
}

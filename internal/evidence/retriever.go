package evidence

import (
	"context"
	"sort"

	"go.uber.org/zap"

	"github.com/spigell/hh-screener/internal/embedding"
)

// Retriever answers evidence queries against one resume. Segments are embedded
// once; each requirement is embedded on demand. Embedding or index failures only
// zero the similarity of the affected query.
type Retriever struct {
	embedder *embedding.Safe
	index    Index
	logger   *zap.Logger
	topK     int

	segments []string
	vecs     [][]float32
	degraded []string
}

// Options tune a Retriever. Zero values select the defaults.
type Options struct {
	TopK   int
	Index  Index
	Logger *zap.Logger
}

// NewRetriever embeds the segments and loads them into the index. A failing index
// falls back to an in-memory one.
func NewRetriever(ctx context.Context, embedder embedding.Embedder, segments []string, opts Options) *Retriever {
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	safe, ok := embedder.(*embedding.Safe)
	if !ok {
		safe = embedding.NewSafe(embedder, logger)
	}

	r := &Retriever{
		embedder: safe,
		index:    opts.Index,
		logger:   logger,
		topK:     opts.TopK,
		segments: segments,
	}
	if r.topK <= 0 {
		r.topK = DefaultTopK
	}
	if r.index == nil {
		r.index = NewMemoryIndex()
	}

	r.vecs, _ = safe.Embed(ctx, segments)
	if safe.Failures() > 0 {
		r.degraded = append(r.degraded, "segment_embedding")
	}

	if err := r.index.Load(ctx, segments, r.vecs); err != nil {
		logger.Warn("segment index unavailable, using in-memory index", zap.Error(err))
		r.degraded = append(r.degraded, "segment_index")
		r.index = NewMemoryIndex()
		_ = r.index.Load(ctx, segments, r.vecs)
	}
	return r
}

func (r *Retriever) Segments() []string {
	return r.segments
}

// Degraded lists the fallbacks that fired while preparing or querying.
func (r *Retriever) Degraded() []string {
	return r.degraded
}

// Retrieve returns the evidence for one requirement.
func (r *Retriever) Retrieve(ctx context.Context, requirement string) Match {
	return score(requirement, r.segments, r.similarities(ctx, requirement), r.topK)
}

// Search returns up to k segments most similar to query, best first.
func (r *Retriever) Search(ctx context.Context, query string, k int) []string {
	sims := r.similarities(ctx, query)
	order := make([]int, len(sims))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool {
		return sims[order[a]] > sims[order[b]]
	})
	if k > len(order) {
		k = len(order)
	}
	out := make([]string, 0, k)
	for _, idx := range order[:k] {
		out = append(out, r.segments[idx])
	}
	return out
}

// GlobalSemantic embeds the job description and returns its semantic fit to the
// resume segments.
func (r *Retriever) GlobalSemantic(ctx context.Context, jd string) float64 {
	return GlobalSemantic(r.embedder.One(ctx, jd), r.vecs)
}

func (r *Retriever) similarities(ctx context.Context, query string) []float64 {
	sims := make([]float64, len(r.segments))
	vec := r.embedder.One(ctx, query)
	if vec == nil {
		return sims
	}
	got, err := r.index.Similarities(ctx, vec)
	if err != nil {
		r.logger.Warn("similarity query failed", zap.String("query", query), zap.Error(err))
		return sims
	}
	copy(sims, got)
	return sims
}

// Close releases the index.
func (r *Retriever) Close(ctx context.Context) error {
	return r.index.Close(ctx)
}

package embedding

import (
	"context"
	"hash/fnv"

	"github.com/spigell/hh-screener/internal/textproc"
)

// DefaultHashDimension is the vector size of NewHashEmbedder(0).
const DefaultHashDimension = 512

// HashEmbedder is an offline embedder based on feature hashing of tokens, token
// bigrams and character trigrams. It captures lexical overlap only, but needs no
// network and is deterministic, which makes it the fallback when no model is
// configured.
type HashEmbedder struct {
	dim int
}

func NewHashEmbedder(dim int) *HashEmbedder {
	if dim <= 0 {
		dim = DefaultHashDimension
	}
	return &HashEmbedder{dim: dim}
}

func (h *HashEmbedder) Dimension() int {
	return h.dim
}

func (h *HashEmbedder) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, len(texts))
	for i, text := range texts {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		out[i] = h.vector(text)
	}
	return out, nil
}

func (h *HashEmbedder) vector(text string) []float32 {
	v := make([]float32, h.dim)
	tokens := textproc.Tokens(textproc.Fold(text))
	for i, tok := range tokens {
		h.add(v, "t:"+tok, 1.0)
		if i > 0 {
			h.add(v, "b:"+tokens[i-1]+" "+tok, 0.5)
		}
		r := []rune(tok)
		for j := 0; j+3 <= len(r); j++ {
			h.add(v, "c:"+string(r[j:j+3]), 0.3)
		}
	}
	return Normalize(v)
}

func (h *HashEmbedder) add(v []float32, feature string, weight float32) {
	f := fnv.New32a()
	_, _ = f.Write([]byte(feature))
	sum := f.Sum32()
	idx := int(sum % uint32(h.dim))
	// the top bit picks the sign so that colliding features tend to cancel
	if sum&(1<<31) != 0 {
		weight = -weight
	}
	v[idx] += weight
}

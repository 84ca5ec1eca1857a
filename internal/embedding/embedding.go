// Package embedding defines the text embedding contract used by the matchers and
// the vector math around it.
package embedding

import (
	"context"
	"errors"
	"math"
)

var (
	ErrCountMismatch     = errors.New("embedding count does not match input count")
	ErrDimensionMismatch = errors.New("embedding dimension mismatch")
)

// Embedder turns texts into vectors of a fixed dimension, one per input, in order.
// Implementations return L2-normalized vectors.
type Embedder interface {
	Embed(ctx context.Context, texts []string) ([][]float32, error)
}

// Cosine returns the cosine similarity of a and b. Vectors of different length or
// with zero norm have similarity 0.
func Cosine(a, b []float32) float64 {
	if len(a) == 0 || len(a) != len(b) {
		return 0
	}
	var dot, na, nb float64
	for i := range a {
		x, y := float64(a[i]), float64(b[i])
		dot += x * y
		na += x * x
		nb += y * y
	}
	if na == 0 || nb == 0 {
		return 0
	}
	return dot / (math.Sqrt(na) * math.Sqrt(nb))
}

// Normalize scales v to unit length in place and returns it.
func Normalize(v []float32) []float32 {
	var sum float64
	for _, x := range v {
		sum += float64(x) * float64(x)
	}
	if sum == 0 {
		return v
	}
	norm := float32(math.Sqrt(sum))
	for i := range v {
		v[i] /= norm
	}
	return v
}

package evidence

import (
	"sort"

	"github.com/spigell/hh-screener/internal/embedding"
)

const globalTopK = 8

// GlobalSemantic is the overall semantic fit of a resume to a job description: the
// top eight segment similarities averaged with weights rising linearly from 0.7 to
// 1.0 towards the best one, clipped to [0, 1].
func GlobalSemantic(jdVec []float32, segVecs [][]float32) float64 {
	if len(jdVec) == 0 || len(segVecs) == 0 {
		return 0
	}
	sims := make([]float64, 0, len(segVecs))
	for _, v := range segVecs {
		if len(v) == 0 {
			continue
		}
		sims = append(sims, embedding.Cosine(jdVec, v))
	}
	return weightedTop(sims)
}

func weightedTop(sims []float64) float64 {
	if len(sims) == 0 {
		return 0
	}
	sorted := append([]float64(nil), sims...)
	sort.Float64s(sorted)

	k := globalTopK
	if len(sorted) < k {
		k = len(sorted)
	}
	top := sorted[len(sorted)-k:]

	if k == 1 {
		return clamp01(top[0])
	}
	var sum, weights float64
	for i, s := range top {
		w := 0.7 + 0.3*float64(i)/float64(k-1)
		sum += w * s
		weights += w
	}
	return clamp01(sum / weights)
}

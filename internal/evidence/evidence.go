// Package evidence finds the resume segments that support a requirement.
package evidence

import (
	"regexp"
	"sort"
	"strings"

	"github.com/spigell/hh-screener/internal/embedding"
	"github.com/spigell/hh-screener/internal/textproc"
)

const (
	// DefaultTopK is the number of evidence items kept per requirement.
	DefaultTopK = 5

	similarityWeight = 0.6
	keywordWeight    = 0.3
	fuzzyWeight      = 0.1

	minCombined   = 0.35
	strongKeyword = 0.5
)

var keywordRe = regexp.MustCompile(`[a-z0-9]{3,}`)

// Item is one resume segment scored against a requirement.
type Item struct {
	Text       string  `json:"text"`
	Similarity float64 `json:"similarity"`
	Keyword    float64 `json:"keyword_overlap"`
	Fuzzy      float64 `json:"fuzzy"`
	Combined   float64 `json:"combined"`
}

// Combine is the weighted blend used to rank evidence.
func Combine(similarity, keyword, fuzzy float64) float64 {
	return similarityWeight*similarity + keywordWeight*keyword + fuzzyWeight*fuzzy
}

// Match is the evidence found for one requirement. MaxSimilarity and MaxKeyword
// are taken over every scored segment, not only the retained items.
type Match struct {
	Requirement   string  `json:"requirement"`
	Items         []Item  `json:"evidence"`
	MaxSimilarity float64 `json:"max_similarity"`
	MaxKeyword    float64 `json:"keyword_overlap"`
}

// Best scores every segment against the requirement and returns the top-k retained
// items together with the maximum semantic similarity over all segments.
func Best(requirement string, reqVec []float32, segments []string, segVecs [][]float32, topK int) ([]Item, float64) {
	sims := make([]float64, len(segments))
	for i := range segments {
		if i < len(segVecs) {
			sims[i] = embedding.Cosine(reqVec, segVecs[i])
		}
	}
	m := score(requirement, segments, sims, topK)
	return m.Items, m.MaxSimilarity
}

// score ranks segments given precomputed similarities, one per segment.
func score(requirement string, segments []string, sims []float64, topK int) Match {
	if topK <= 0 {
		topK = DefaultTopK
	}
	m := Match{Requirement: requirement}
	if strings.TrimSpace(requirement) == "" {
		return m
	}

	reqTokens := keywordTokens(requirement)
	reqLower := strings.ToLower(requirement)

	var items []Item
	for i, seg := range segments {
		sim := 0.0
		if i < len(sims) {
			sim = clamp01(sims[i])
		}
		kw := overlap(reqTokens, keywordTokens(seg))
		if sim > m.MaxSimilarity {
			m.MaxSimilarity = sim
		}
		if kw > m.MaxKeyword {
			m.MaxKeyword = kw
		}

		fuzzy := Ratio(reqLower, strings.ToLower(seg))
		combined := Combine(sim, kw, fuzzy)
		if combined < minCombined && kw < strongKeyword {
			continue
		}
		items = append(items, Item{
			Text:       textproc.Truncate(seg, MaxEvidenceText),
			Similarity: sim,
			Keyword:    kw,
			Fuzzy:      fuzzy,
			Combined:   combined,
		})
	}

	sort.SliceStable(items, func(i, j int) bool {
		return items[i].Combined > items[j].Combined
	})
	if len(items) > topK {
		items = items[:topK]
	}
	m.Items = items
	return m
}

func keywordTokens(s string) map[string]struct{} {
	words := keywordRe.FindAllString(strings.ToLower(s), -1)
	set := make(map[string]struct{}, len(words))
	for _, w := range words {
		set[w] = struct{}{}
	}
	return set
}

// overlap is the share of requirement tokens present in the segment.
func overlap(req, seg map[string]struct{}) float64 {
	if len(req) == 0 {
		return 0
	}
	hit := 0
	for t := range req {
		if _, ok := seg[t]; ok {
			hit++
		}
	}
	return float64(hit) / float64(len(req))
}

func clamp01(v float64) float64 {
	switch {
	case v < 0:
		return 0
	case v > 1:
		return 1
	default:
		return v
	}
}

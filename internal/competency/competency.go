// Package competency scores ecosystem-level capability (a language plus its
// frameworks, project work and recent activity) rather than single keywords.
package competency

import (
	"context"
	"math"
	"sort"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/spigell/hh-screener/internal/ai"
	"github.com/spigell/hh-screener/internal/atoms"
	"github.com/spigell/hh-screener/internal/textproc"
)

const (
	coreWeight     = 0.30
	recencyWeight  = 0.10
	verifierBoost  = 0.12
	verifierCap    = 0.80
	verifyFrom     = 0.45
	verifyBelow    = 0.75
	recencyWindow  = 4
	queriesPerComp = 2
	hitsPerQuery   = 2
	maxContexts    = 5
)

// ContextSource finds resume passages for a query.
type ContextSource interface {
	Search(ctx context.Context, query string, k int) []string
}

type Score struct {
	ID              string   `json:"id"`
	Score           float64  `json:"score"`
	Core            []string `json:"core_found"`
	Frameworks      []string `json:"frameworks_found"`
	FrameworksCount int      `json:"frameworks_count"`
	Contexts        []string `json:"project_contexts"`
	Recent          bool     `json:"recent"`
	Verified        bool     `json:"verified"`
}

type Scorer struct {
	catalog  []Competency
	verifier ai.CompetencyVerifier
	logger   *zap.Logger
	now      func() time.Time
}

// NewScorer builds a scorer over Catalog. verifier may be nil.
func NewScorer(verifier ai.CompetencyVerifier, logger *zap.Logger) *Scorer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Scorer{catalog: Catalog, verifier: verifier, logger: logger, now: time.Now}
}

// Score rates every competency in catalog order. source may be nil, in which case
// project evidence and the verifier are skipped.
func (s *Scorer) Score(ctx context.Context, resumeText string, source ContextSource) []Score {
	tokens := textproc.TokenSet(resumeText)
	years := recentYears(s.now().Year())

	out := make([]Score, 0, len(s.catalog))
	for _, c := range s.catalog {
		core := findTerms(c.Core, tokens, resumeText)
		frameworks := findTerms(c.Frameworks, tokens, resumeText)
		contexts := gatherContexts(ctx, source, c.Queries)

		projects := 0
		for _, passage := range contexts {
			if containsAny(strings.ToLower(passage), c.ProjectVerbs) {
				projects++
			}
		}
		recent := containsAny(strings.Join(contexts, "\n"), years) || containsAny(resumeText, years)

		sc := Score{
			ID:              c.ID,
			Score:           formula(len(core) > 0, len(frameworks), projects, recent),
			Core:            limit(core, 5),
			Frameworks:      limit(frameworks, 10),
			FrameworksCount: len(frameworks),
			Contexts:        contexts,
			Recent:          recent,
		}

		if s.verifier != nil && sc.Score >= verifyFrom && sc.Score < verifyBelow && len(contexts) > 0 {
			ok, err := s.verifier.Substantial(ctx, c.ID, contexts)
			switch {
			case err != nil:
				s.logger.Warn("competency verification failed", zap.String("competency", c.ID), zap.Error(err))
			case ok:
				sc.Score = math.Min(verifierCap, sc.Score+verifierBoost)
				sc.Verified = true
			}
		}

		sc.Score = math.Max(0, math.Min(1, sc.Score))
		out = append(out, sc)
	}
	return out
}

// formula: core presence, frameworks with diminishing returns, project evidence and
// recency.
func formula(core bool, frameworks, projects int, recent bool) float64 {
	var score float64
	if core {
		score += coreWeight
	}
	if frameworks > 0 {
		score += math.Min(0.45, 0.20+0.12*float64(min(3, frameworks-1)))
	}
	if projects > 0 {
		score += math.Min(0.15, 0.07+0.04*float64(min(2, projects-1)))
	}
	if recent {
		score += recencyWeight
	}
	return score
}

// findTerms returns the sorted normalized terms present in the text.
func findTerms(terms []string, tokens map[string]struct{}, text string) []string {
	hits := make(map[string]struct{})
	for _, t := range terms {
		if atoms.Contains(t, tokens, text) {
			hits[textproc.Normalize(t)] = struct{}{}
		}
	}
	out := make([]string, 0, len(hits))
	for h := range hits {
		out = append(out, h)
	}
	sort.Strings(out)
	return out
}

func gatherContexts(ctx context.Context, source ContextSource, queries []string) []string {
	if source == nil {
		return nil
	}
	seen := make(map[string]struct{})
	var out []string
	for _, q := range queries[:min(queriesPerComp, len(queries))] {
		for _, passage := range source.Search(ctx, q, hitsPerQuery) {
			if _, ok := seen[passage]; ok {
				continue
			}
			seen[passage] = struct{}{}
			out = append(out, passage)
		}
	}
	return limit(out, maxContexts)
}

func recentYears(current int) []string {
	years := make([]string, 0, recencyWindow)
	for y := current - recencyWindow + 1; y <= current; y++ {
		years = append(years, strconv.Itoa(y))
	}
	return years
}

func containsAny(text string, needles []string) bool {
	for _, n := range needles {
		if strings.Contains(text, n) {
			return true
		}
	}
	return false
}

func limit(list []string, n int) []string {
	if len(list) > n {
		return list[:n]
	}
	return list
}

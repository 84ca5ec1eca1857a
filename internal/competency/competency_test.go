package competency

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

type fixedSource struct {
	passages []string
	queries  []string
}

func (f *fixedSource) Search(_ context.Context, query string, k int) []string {
	f.queries = append(f.queries, query)
	if len(f.passages) > k {
		return f.passages[:k]
	}
	return f.passages
}

type recordingVerifier struct {
	answer bool
	err    error
	calls  []string
}

func (r *recordingVerifier) Substantial(_ context.Context, competency string, _ []string) (bool, error) {
	r.calls = append(r.calls, competency)
	return r.answer, r.err
}

func newTestScorer(v *recordingVerifier, logger *zap.Logger) *Scorer {
	var s *Scorer
	if v == nil {
		s = NewScorer(nil, logger)
	} else {
		s = NewScorer(v, logger)
	}
	s.now = func() time.Time { return time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC) }
	return s
}

func byID(scores []Score) map[string]Score {
	out := make(map[string]Score, len(scores))
	for _, s := range scores {
		out[s.ID] = s
	}
	return out
}

func TestFormula(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		core       bool
		frameworks int
		projects   int
		recent     bool
		expect     float64
	}{
		{"nothing", false, 0, 0, false, 0},
		{"core only", true, 0, 0, false, 0.30},
		{"one framework", false, 1, 0, false, 0.20},
		{"three frameworks", true, 3, 0, false, 0.74},
		{"frameworks saturate", true, 9, 0, false, 0.30 + 0.45},
		{"one project", false, 0, 1, false, 0.07},
		{"projects saturate", false, 0, 5, false, 0.15},
		{"recent only", false, 0, 0, true, 0.10},
		{"everything", true, 4, 3, true, 1.0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.expect, formula(tt.core, tt.frameworks, tt.projects, tt.recent), 1e-9)
		})
	}
}

func TestScoreWithoutSource(t *testing.T) {
	t.Parallel()

	scores := newTestScorer(nil, nil).Score(context.Background(), "Java 17 developer. Spring Boot and Hibernate services.", nil)
	require.Len(t, scores, len(Catalog))
	assert.Equal(t, "java_ecosystem", scores[0].ID)

	java := scores[0]
	assert.InDelta(t, 0.74, java.Score, 1e-9)
	assert.Equal(t, []string{"java", "java 17"}, java.Core)
	assert.Equal(t, []string{"hibernate", "spring", "spring boot"}, java.Frameworks)
	assert.Equal(t, 3, java.FrameworksCount)
	assert.Empty(t, java.Contexts)
	assert.False(t, java.Recent)
	assert.False(t, java.Verified)

	assert.Zero(t, byID(scores)["python_backend"].Score)
}

func TestScoreUsesProjectContexts(t *testing.T) {
	t.Parallel()

	source := &fixedSource{passages: []string{
		"Built payment platform on Spring in 2025",
		"Deployed services",
	}}
	scores := byID(newTestScorer(nil, nil).Score(context.Background(),
		"Java 17 developer. Spring Boot and Hibernate services.", source))

	java := scores["java_ecosystem"]
	assert.Len(t, java.Contexts, 2)
	assert.True(t, java.Recent)
	assert.InDelta(t, 0.30+0.44+0.11+0.10, java.Score, 1e-9)

	// two queries per competency
	assert.Len(t, source.queries, 2*len(Catalog))
	assert.Equal(t, "java spring boot project", source.queries[0])
	assert.Equal(t, "java microservices", source.queries[1])
}

func TestScoreRecencyWindow(t *testing.T) {
	t.Parallel()

	s := newTestScorer(nil, nil)
	old := byID(s.Score(context.Background(), "Python developer from 2019 to 2022", nil))
	assert.False(t, old["python_backend"].Recent)

	recent := byID(s.Score(context.Background(), "Python developer since 2023", nil))
	assert.True(t, recent["python_backend"].Recent)
	assert.InDelta(t, 0.40, recent["python_backend"].Score, 1e-9)
}

func TestScoreVerifierBoost(t *testing.T) {
	t.Parallel()

	verifier := &recordingVerifier{answer: true}
	source := &fixedSource{passages: []string{"Kubernetes cluster maintenance"}}

	scores := byID(newTestScorer(verifier, nil).Score(context.Background(), "Docker, Kubernetes, Terraform", source))

	devops := scores["devops_cloud"]
	assert.True(t, devops.Verified)
	assert.InDelta(t, 0.62, devops.Score, 1e-9)
	assert.Equal(t, []string{"devops_cloud"}, verifier.calls)
}

func TestScoreVerifierFailureKeepsScore(t *testing.T) {
	t.Parallel()

	core, logs := observer.New(zap.WarnLevel)
	verifier := &recordingVerifier{err: errors.New("quota")}
	source := &fixedSource{passages: []string{"Kubernetes cluster maintenance"}}

	scores := byID(newTestScorer(verifier, zap.New(core)).Score(context.Background(), "Docker, Kubernetes, Terraform", source))

	assert.False(t, scores["devops_cloud"].Verified)
	assert.InDelta(t, 0.50, scores["devops_cloud"].Score, 1e-9)
	assert.Equal(t, 1, logs.FilterMessage("competency verification failed").Len())
}

func TestScoreVerifierSkippedOutsideRange(t *testing.T) {
	t.Parallel()

	verifier := &recordingVerifier{answer: true}
	source := &fixedSource{passages: []string{"Built payment platform on Spring in 2025"}}

	scores := byID(newTestScorer(verifier, nil).Score(context.Background(),
		"Java 17 developer. Spring Boot and Hibernate services.", source))

	assert.GreaterOrEqual(t, scores["java_ecosystem"].Score, 0.75)
	assert.Empty(t, verifier.calls)
}

func TestGatherContextsDedupesAndCaps(t *testing.T) {
	t.Parallel()

	source := &fixedSource{passages: []string{"a", "b"}}
	got := gatherContexts(context.Background(), source, []string{"q1", "q2", "q3"})
	assert.Equal(t, []string{"a", "b"}, got)
	assert.Equal(t, []string{"q1", "q2"}, source.queries)

	assert.Nil(t, gatherContexts(context.Background(), nil, []string{"q1"}))
}

func TestMapAtoms(t *testing.T) {
	t.Parallel()

	got := MapAtoms([]string{
		"Spring Boot 3",
		"Python",
		"Email marketing",
		"Kubernetes operators",
		"TypeScript",
		"JavaScript",
		"Vertex AI",
		"node.js",
		"",
	})

	assert.Equal(t, map[string]Mapping{
		"Spring Boot 3":        {Competency: "java_ecosystem", Kind: KindFramework},
		"Python":               {Competency: "python_backend", Kind: KindCore},
		"Kubernetes operators": {Competency: "devops_cloud", Kind: KindCore},
		"TypeScript":           {Competency: "node_backend", Kind: KindFramework},
		"JavaScript":           {Competency: "frontend_js", Kind: KindCore},
		"Vertex AI":            {Competency: "data_ml", Kind: KindCore},
		"node.js":              {Competency: "node_backend", Kind: KindCore},
	}, got)
}

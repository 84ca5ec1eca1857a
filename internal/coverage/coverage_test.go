package coverage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/spigell/hh-screener/internal/ai"
	"github.com/spigell/hh-screener/internal/evidence"
)

type stubSource map[string]evidence.Match

func (s stubSource) Retrieve(_ context.Context, requirement string) evidence.Match {
	m := s[requirement]
	m.Requirement = requirement
	return m
}

type stubAdjudicator struct {
	mu       sync.Mutex
	verdicts map[string]ai.Verdict
	errs     []error
	batches  [][]ai.AdjudicationItem
	excerpts []string
	block    bool
}

func (s *stubAdjudicator) Adjudicate(ctx context.Context, excerpt string, items []ai.AdjudicationItem) (map[string]ai.Verdict, error) {
	s.mu.Lock()
	s.batches = append(s.batches, items)
	s.excerpts = append(s.excerpts, excerpt)
	var err error
	if len(s.errs) > 0 {
		err = s.errs[0]
		s.errs = s.errs[1:]
	}
	s.mu.Unlock()

	if s.block {
		<-ctx.Done()
		return nil, ctx.Err()
	}
	if err != nil {
		return nil, err
	}

	out := make(map[string]ai.Verdict)
	for _, item := range items {
		if v, ok := s.verdicts[item.Requirement]; ok {
			out[item.Requirement] = v
		}
	}
	return out, nil
}

func withEvidence(sim, kw float64) evidence.Match {
	return evidence.Match{
		Items:         []evidence.Item{{Text: "segment", Similarity: sim, Keyword: kw}},
		MaxSimilarity: sim,
		MaxKeyword:    kw,
	}
}

func fastConfig() Config {
	return Config{BatchSize: 10, MaxAttempts: 1, BatchTimeout: time.Second}
}

func TestPreScore(t *testing.T) {
	t.Parallel()

	tests := []struct {
		sim, kw, expect float64
	}{
		{0.85, 0, 0.80},
		{0.80, 0, 0.80},
		{0.75, 0, 0.65},
		{0.60, 0, 0.50},
		{0.50, 0, 0.35},
		{0.30, 0, 0.20},
		{0.29, 0, 0},
		{0.10, 0.70, 0.70},
		{0.10, 0.60, 0.55},
		{0.10, 0.40, 0.40},
		{0.10, 0.25, 0.25},
		{0.10, 0.24, 0},
		{0.85, 0.70, 0.80},
		{0.65, 0.60, 0.55},
	}

	for _, tt := range tests {
		t.Run(fmt.Sprintf("sim=%.2f kw=%.2f", tt.sim, tt.kw), func(t *testing.T) {
			t.Parallel()
			assert.InDelta(t, tt.expect, PreScore(tt.sim, tt.kw), 1e-9)
		})
	}
}

func TestAdjudicatedScore(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		present    bool
		confidence float64
		sim        float64
		pre        float64
		expect     float64
	}{
		{name: "present plain", present: true, confidence: 0.6, sim: 0.5, expect: 0.8},
		{name: "present boost 5", present: true, confidence: 0.6, sim: 0.65, expect: 0.84},
		{name: "present boost 10", present: true, confidence: 0.6, sim: 0.75, expect: 0.88},
		{name: "present boost 15", present: true, confidence: 0.6, sim: 0.85, expect: 0.92},
		{name: "present clamped", present: true, confidence: 1, sim: 0.9, expect: 1},
		{name: "confidence clamped", present: true, confidence: 3, sim: 0, expect: 1},
		{name: "absent confident", confidence: 0.8, sim: 0.9, expect: 0},
		{name: "absent likely", confidence: 0.7, expect: 0.10},
		{name: "absent unsure", confidence: 0.5, expect: 0.25},
		{name: "absent low confidence strong sim", confidence: 0.2, sim: 0.6, expect: 0.45},
		{name: "absent low confidence fair sim", confidence: 0.2, sim: 0.45, expect: 0.35},
		{name: "absent falls back to pre-score", confidence: 0.2, sim: 0.3, pre: 0.2, expect: 0.16},
		{name: "absent pre-score capped", confidence: 0.2, sim: 0.3, pre: 0.7, expect: 0.30},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.InDelta(t, tt.expect, AdjudicatedScore(tt.present, tt.confidence, tt.sim, tt.pre), 1e-9)
		})
	}
}

func TestPenaltyFactor(t *testing.T) {
	t.Parallel()

	assert.Equal(t, 0.50, PenaltyFactor(0))
	assert.Equal(t, 0.50, PenaltyFactor(0.2))
	assert.Equal(t, 0.70, PenaltyFactor(0.3))
	assert.Equal(t, 0.85, PenaltyFactor(0.5))
	assert.Equal(t, 0.85, PenaltyFactor(0.69))
	assert.Equal(t, 1.0, PenaltyFactor(0.7))
	assert.Equal(t, 1.0, PenaltyFactor(1))
}

func TestEvaluateEmptyAtoms(t *testing.T) {
	t.Parallel()

	e := New(nil, Config{}, nil, nil)
	s := e.Evaluate(context.Background(), nil, nil, stubSource{}, "resume")

	assert.Equal(t, 0.0, s.Must)
	assert.Equal(t, 1.0, s.Nice)
	assert.Equal(t, s.Nice, s.Overall)
	assert.Zero(t, s.MustAtomsCount)
	assert.Zero(t, s.NiceAtomsCount)
	assert.Empty(t, s.Degraded)
}

func TestEvaluateScenario(t *testing.T) {
	t.Parallel()

	source := stubSource{
		"python":     withEvidence(0.7, 0.6),
		"django":     withEvidence(0.7, 0.6),
		"postgresql": withEvidence(0.7, 0.6),
		"docker":     withEvidence(0.7, 0.6),
		"aws":        withEvidence(0.3, 0),
	}
	adj := &stubAdjudicator{verdicts: map[string]ai.Verdict{
		"python":     {Present: true, Confidence: 0.9},
		"django":     {Present: true, Confidence: 0.9},
		"postgresql": {Present: true, Confidence: 0.9},
		"docker":     {Present: true, Confidence: 0.9},
		"aws":        {Present: false, Confidence: 0.3, Rationale: "No AWS"},
	}}

	e := New(adj, fastConfig(), zap.NewNop(), nil)
	s := e.Evaluate(context.Background(), []string{"python", "django", "postgresql"}, []string{"aws", "docker"}, source, "resume text")

	assert.GreaterOrEqual(t, s.Must, 0.9)
	assert.GreaterOrEqual(t, s.Nice, 0.5)
	assert.LessOrEqual(t, s.Nice, 0.6)
	assert.Equal(t, 1.0, s.MustFulfillmentRate)
	assert.Equal(t, 1.0, s.PenaltyFactor)
	assert.InDelta(t, 0.75*s.Must+0.25*s.Nice, s.Overall, 1e-9)
	assert.GreaterOrEqual(t, s.Overall, 0.8)
	assert.LessOrEqual(t, s.Overall, 0.95)

	assert.Equal(t, 3, s.MustAtomsCount)
	assert.Equal(t, 2, s.NiceAtomsCount)
	assert.Equal(t, 3, s.MustPresentCount)
	require.Len(t, adj.batches, 1)
	assert.Len(t, adj.batches[0], 5)

	aws := s.NiceDetails[0]
	assert.True(t, aws.Adjudicated)
	assert.False(t, aws.Present)
	assert.Equal(t, "No AWS", aws.Rationale)
	assert.InDelta(t, 0.16, aws.Score, 1e-9)
	assert.Empty(t, MissingRequirements(s, 0))
}

func TestEvaluateWithoutAdjudicator(t *testing.T) {
	t.Parallel()

	source := stubSource{
		"go":    withEvidence(0.65, 0),
		"rust":  withEvidence(0.2, 0.3),
		"kafka": {},
	}
	s := New(nil, Config{}, nil, nil).Evaluate(context.Background(), []string{"go", "rust", "kafka"}, nil, source, "resume")

	require.Len(t, s.MustDetails, 3)
	for _, v := range s.MustDetails {
		assert.False(t, v.Present, v.Requirement)
		assert.False(t, v.Adjudicated, v.Requirement)
	}
	assert.True(t, s.MustDetails[0].Supported)
	assert.False(t, s.MustDetails[1].Supported)
	assert.InDelta(t, 0.5, s.MustDetails[0].Score, 1e-9)
	assert.InDelta(t, 0.25, s.MustDetails[1].Score, 1e-9)
	assert.InDelta(t, 0.25, s.Must, 1e-9)
	assert.Equal(t, 0, s.MustPresentCount)
	assert.Equal(t, 0.0, s.MustFulfillmentRate)
	assert.Equal(t, 0.50, s.PenaltyFactor)
	assert.InDelta(t, (0.75*0.25+0.25*1)*0.50, s.Overall, 1e-9)
	assert.Equal(t, []string{"rust", "kafka"}, MissingRequirements(s, 5))
}

func TestSupportedEvidenceDoesNotFulfilMustHaves(t *testing.T) {
	t.Parallel()

	source := stubSource{
		"go":         withEvidence(0.65, 0),
		"kubernetes": withEvidence(0.65, 0),
	}
	s := New(nil, Config{}, nil, nil).Evaluate(context.Background(), []string{"go", "kubernetes"}, nil, source, "resume")

	assert.True(t, s.MustDetails[0].Supported)
	assert.True(t, s.MustDetails[1].Supported)
	assert.Equal(t, 0.0, s.MustFulfillmentRate)
	assert.Equal(t, 0.50, s.PenaltyFactor)
	assert.InDelta(t, 0.3125, s.Overall, 1e-9)
}

func TestEvaluateAdjudicationFailureKeepsPreScores(t *testing.T) {
	t.Parallel()

	core, logs := observer.New(zap.WarnLevel)
	adj := &stubAdjudicator{errs: []error{errors.New("boom"), errors.New("boom again")}}
	cfg := fastConfig()
	cfg.MaxAttempts = 2

	s := New(adj, cfg, zap.New(core), nil).Evaluate(context.Background(), []string{"go"}, nil, stubSource{"go": withEvidence(0.8, 0)}, "resume")

	assert.Len(t, adj.batches, 2)
	assert.False(t, s.MustDetails[0].Adjudicated)
	assert.InDelta(t, 0.8, s.MustDetails[0].Score, 1e-9)
	assert.Equal(t, []string{DegradedAdjudication}, s.Degraded)
	assert.Equal(t, 1, logs.FilterMessage("adjudication batch failed, keeping deterministic scores").Len())
}

func TestEvaluateRetrySucceeds(t *testing.T) {
	t.Parallel()

	adj := &stubAdjudicator{
		errs:     []error{errors.New("transient")},
		verdicts: map[string]ai.Verdict{"go": {Present: true, Confidence: 1}},
	}
	cfg := fastConfig()
	cfg.MaxAttempts = 3

	s := New(adj, cfg, nil, nil).Evaluate(context.Background(), []string{"go"}, nil, stubSource{"go": withEvidence(0.5, 0)}, "resume")

	assert.Len(t, adj.batches, 2)
	assert.True(t, s.MustDetails[0].Adjudicated)
	assert.Equal(t, 1.0, s.MustDetails[0].Score)
	assert.Empty(t, s.Degraded)
}

func TestEvaluateBatchTimeout(t *testing.T) {
	t.Parallel()

	adj := &stubAdjudicator{block: true}
	cfg := Config{BatchSize: 10, MaxAttempts: 1, BatchTimeout: 10 * time.Millisecond}

	s := New(adj, cfg, nil, nil).Evaluate(context.Background(), []string{"go"}, nil, stubSource{"go": withEvidence(0.7, 0)}, "resume")

	assert.InDelta(t, 0.65, s.MustDetails[0].Score, 1e-9)
	assert.Equal(t, []string{DegradedAdjudication}, s.Degraded)
}

func TestEvaluateCancelledContext(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	adj := &stubAdjudicator{verdicts: map[string]ai.Verdict{"go": {Present: true, Confidence: 1}}}
	s := New(adj, fastConfig(), nil, nil).Evaluate(ctx, []string{"go"}, nil, stubSource{"go": withEvidence(0.7, 0)}, "resume")

	assert.Empty(t, adj.batches)
	assert.InDelta(t, 0.65, s.MustDetails[0].Score, 1e-9)
	assert.Equal(t, []string{DegradedCancelled}, s.Degraded)
}

func TestEvaluateBatchesAndPayload(t *testing.T) {
	t.Parallel()

	source := stubSource{}
	var must []string
	for i := 0; i < 23; i++ {
		req := fmt.Sprintf("skill-%02d", i)
		must = append(must, req)
		source[req] = evidence.Match{
			Items: []evidence.Item{
				{Text: strings.Repeat("a", 400), Similarity: 0.61234},
				{Text: "b"}, {Text: "c"}, {Text: "d"},
			},
			MaxSimilarity: 0.61234,
		}
	}
	// no evidence, never sent for adjudication
	must = append(must, "orphan")

	adj := &stubAdjudicator{}
	resume := strings.Repeat("r", 5000)
	New(adj, fastConfig(), nil, nil).Evaluate(context.Background(), must, nil, source, resume)

	require.Len(t, adj.batches, 3)
	assert.Len(t, adj.batches[0], 10)
	assert.Len(t, adj.batches[1], 10)
	assert.Len(t, adj.batches[2], 3)

	item := adj.batches[0][0]
	assert.Equal(t, "skill-00", item.Requirement)
	assert.Equal(t, "must", item.Type)
	require.Len(t, item.Evidence, 3)
	assert.Len(t, item.Evidence[0].Text, 250)
	assert.Equal(t, 0.612, item.Evidence[0].Similarity)
	assert.Len(t, adj.excerpts[0], 4000)
}

func TestMissingRequirementsLimit(t *testing.T) {
	t.Parallel()

	var details []Verdict
	for i := 0; i < 8; i++ {
		details = append(details, Verdict{Requirement: fmt.Sprintf("r%d", i), MaxSimilarity: 0.2})
	}
	details = append(details[:1], append([]Verdict{
		{Requirement: "uncertain", Adjudicated: true, Confidence: 0.3, MaxSimilarity: 0.7},
		{Requirement: "present", Present: true},
	}, details[1:]...)...)

	got := MissingRequirements(Summary{MustDetails: details}, 0)
	assert.Equal(t, []string{"r0", "r1", "r2", "r3", "r4"}, got)
}

func TestSummaryJSONRounds(t *testing.T) {
	t.Parallel()

	s := Aggregate([]Verdict{{Requirement: "go", Score: 1.0 / 3, PreScore: 1.0 / 3, MaxSimilarity: 0.123456}}, nil)
	data, err := json.Marshal(s)
	require.NoError(t, err)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, 0.333, decoded["must"])
	details := decoded["must_details"].([]any)
	assert.Equal(t, 0.123, details[0].(map[string]any)["max_similarity"])
	assert.InDelta(t, 1.0/3, s.Must, 1e-12)
}

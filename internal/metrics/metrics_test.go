package metrics

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetricsObserve(t *testing.T) {
	t.Parallel()

	m := New()
	m.ObserveEvaluation("strong", 7.4)
	m.ObserveEvaluation("strong", 7.9)
	m.ObserveEvaluation("weak", 2)
	m.ObserveAdjudicationBatch(OutcomeOK, time.Second)
	m.ObserveAdjudicationBatch(OutcomeTimeout, 3*time.Second)
	m.ObserveAdjudicationBatch(OutcomeSkipped, 0)
	m.AddEmbeddingFailures(2)
	m.AddEmbeddingFailures(0)
	m.ObserveStage("coverage", 10*time.Millisecond)

	families, err := m.Gatherer().Gather()
	require.NoError(t, err)

	counters := make(map[string]float64)
	for _, mf := range families {
		for _, metric := range mf.GetMetric() {
			if metric.GetCounter() == nil {
				continue
			}
			key := mf.GetName()
			for _, label := range metric.GetLabel() {
				key += "/" + label.GetValue()
			}
			counters[key] = metric.GetCounter().GetValue()
		}
	}

	assert.Equal(t, 2.0, counters["hh_screener_evaluations_total/strong"])
	assert.Equal(t, 1.0, counters["hh_screener_evaluations_total/weak"])
	assert.Equal(t, 1.0, counters["hh_screener_adjudication_batches_total/timeout"])
	assert.Equal(t, 1.0, counters["hh_screener_adjudication_batches_total/skipped"])
	assert.Equal(t, 2.0, counters["hh_screener_embedding_failures_total"])
}

func TestNilMetricsDiscard(t *testing.T) {
	t.Parallel()

	var m *Metrics
	assert.NotPanics(t, func() {
		m.ObserveEvaluation("weak", 0)
		m.ObserveAdjudicationBatch(OutcomeError, time.Second)
		m.AddEmbeddingFailures(1)
		m.ObserveStage("cues", time.Second)
	})
}

func TestWriteToTextfile(t *testing.T) {
	t.Parallel()

	m := New()
	m.ObserveEvaluation("good", 6.5)

	path := filepath.Join(t.TempDir(), "screener.prom")
	require.NoError(t, m.WriteToTextfile(path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.True(t, strings.Contains(string(data), `hh_screener_evaluations_total{tier="good"} 1`))
}

// Package metrics collects screening counters and latencies. The CLI is a
// short-lived process, so collectors live in a private registry that is dumped to
// a node-exporter textfile instead of being scraped.
package metrics

import (
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "hh_screener"

// Batch outcomes for ObserveAdjudicationBatch.
const (
	OutcomeOK      = "ok"
	OutcomeError   = "error"
	OutcomeTimeout = "timeout"
	OutcomeSkipped = "skipped"
)

// Metrics is safe for concurrent use. A nil *Metrics discards every observation.
type Metrics struct {
	registry *prometheus.Registry

	evaluations    *prometheus.CounterVec
	finalScore     prometheus.Histogram
	batches        *prometheus.CounterVec
	batchDuration  prometheus.Summary
	embedFailures  prometheus.Counter
	stageDurations *prometheus.SummaryVec
}

func New() *Metrics {
	registry := prometheus.NewRegistry()
	factory := promauto.With(registry)

	return &Metrics{
		registry: registry,
		evaluations: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "evaluations_total",
				Help:      "Total number of resume evaluations by tier",
			},
			[]string{"tier"},
		),
		finalScore: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "final_score",
			Help:      "Calibrated final scores",
			Buckets:   prometheus.LinearBuckets(1, 1, 10),
		}),
		batches: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "adjudication_batches_total",
				Help:      "Adjudication batches by outcome",
			},
			[]string{"outcome"},
		),
		batchDuration: factory.NewSummary(prometheus.SummaryOpts{
			Namespace: namespace,
			Name:      "adjudication_batch_duration_seconds",
			Help:      "Adjudication batch duration in seconds",
			Objectives: map[float64]float64{
				0.5:  0.05,
				0.9:  0.01,
				0.99: 0.001,
			},
		}),
		embedFailures: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "embedding_failures_total",
			Help:      "Embedding calls that fell back to zero similarity",
		}),
		stageDurations: factory.NewSummaryVec(
			prometheus.SummaryOpts{
				Namespace: namespace,
				Name:      "stage_duration_seconds",
				Help:      "Screening stage duration in seconds",
			},
			[]string{"stage"},
		),
	}
}

func (m *Metrics) ObserveEvaluation(tier string, score float64) {
	if m == nil {
		return
	}
	m.evaluations.WithLabelValues(tier).Inc()
	m.finalScore.Observe(score)
}

func (m *Metrics) ObserveAdjudicationBatch(outcome string, d time.Duration) {
	if m == nil {
		return
	}
	m.batches.WithLabelValues(outcome).Inc()
	if outcome != OutcomeSkipped {
		m.batchDuration.Observe(d.Seconds())
	}
}

func (m *Metrics) AddEmbeddingFailures(n int) {
	if m == nil || n <= 0 {
		return
	}
	m.embedFailures.Add(float64(n))
}

func (m *Metrics) ObserveStage(stage string, d time.Duration) {
	if m == nil {
		return
	}
	m.stageDurations.WithLabelValues(stage).Observe(d.Seconds())
}

func (m *Metrics) Gatherer() prometheus.Gatherer {
	if m == nil {
		return prometheus.NewRegistry()
	}
	return m.registry
}

// WriteToTextfile dumps every collector in the text exposition format.
func (m *Metrics) WriteToTextfile(path string) error {
	if err := prometheus.WriteToTextfile(path, m.Gatherer()); err != nil {
		return fmt.Errorf("write metrics textfile: %w", err)
	}
	return nil
}

package coverage

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/spigell/hh-screener/internal/ai"
	"github.com/spigell/hh-screener/internal/atoms"
	"github.com/spigell/hh-screener/internal/metrics"
	"github.com/spigell/hh-screener/internal/textproc"
	"github.com/spigell/hh-screener/internal/utils"
)

const (
	maxSnippets       = 3
	maxSnippetChars   = 250
	maxResumeExcerpt  = 4000
	defaultBatchSize  = 10
	defaultAttempts   = 2
	defaultTimeout    = 90 * time.Second
	defaultBackoff    = 2 * time.Second
	maxBackoffDoubles = 4
)

// Config bounds the adjudication round-trips.
type Config struct {
	BatchSize    int           `mapstructure:"batch-size" validate:"gte=0,lte=50"`
	MaxAttempts  int           `mapstructure:"max-attempts" validate:"gte=0,lte=10"`
	BatchTimeout time.Duration `mapstructure:"batch-timeout" validate:"gte=0"`
	Backoff      time.Duration `mapstructure:"backoff" validate:"gte=0"`
}

func DefaultConfig() Config {
	return Config{
		BatchSize:    defaultBatchSize,
		MaxAttempts:  defaultAttempts,
		BatchTimeout: defaultTimeout,
		Backoff:      defaultBackoff,
	}
}

func (c Config) withDefaults() Config {
	if c.BatchSize <= 0 {
		c.BatchSize = defaultBatchSize
	}
	if c.MaxAttempts <= 0 {
		c.MaxAttempts = defaultAttempts
	}
	if c.BatchTimeout <= 0 {
		c.BatchTimeout = defaultTimeout
	}
	return c
}

// Evaluator scores requirement coverage. It holds no per-evaluation state and is
// safe for concurrent use when its adjudicator is.
type Evaluator struct {
	adjudicator ai.Adjudicator
	cfg         Config
	logger      *zap.Logger
	metrics     *metrics.Metrics
}

// New builds an Evaluator. A nil adjudicator keeps every score deterministic.
func New(adjudicator ai.Adjudicator, cfg Config, logger *zap.Logger, m *metrics.Metrics) *Evaluator {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Evaluator{
		adjudicator: adjudicator,
		cfg:         cfg.withDefaults(),
		logger:      logger,
		metrics:     m,
	}
}

// Evaluate scores must and nice requirements against the resume. It never fails:
// adjudication problems leave the affected requirements at their pre-score and
// are reported in Summary.Degraded.
func (e *Evaluator) Evaluate(ctx context.Context, must, nice []string, source EvidenceSource, resumeText string) Summary {
	mustDetails := e.scoreAll(ctx, must, atoms.Must, source)
	niceDetails := e.scoreAll(ctx, nice, atoms.Nice, source)

	if e.adjudicator == nil {
		return Aggregate(mustDetails, niceDetails)
	}

	if ctx.Err() != nil {
		s := Aggregate(mustDetails, niceDetails)
		s.Degraded = append(s.Degraded, DegradedCancelled)
		return s
	}

	queue := make([]*Verdict, 0, len(mustDetails)+len(niceDetails))
	for i := range mustDetails {
		if len(mustDetails[i].Evidence) > 0 {
			queue = append(queue, &mustDetails[i])
		}
	}
	for i := range niceDetails {
		if len(niceDetails[i].Evidence) > 0 {
			queue = append(queue, &niceDetails[i])
		}
	}

	degraded := e.adjudicateAll(ctx, queue, textproc.Truncate(resumeText, maxResumeExcerpt))

	s := Aggregate(mustDetails, niceDetails)
	s.Degraded = degraded
	return s
}

func (e *Evaluator) scoreAll(ctx context.Context, requirements []string, kind atoms.Priority, source EvidenceSource) []Verdict {
	details := make([]Verdict, 0, len(requirements))
	for _, req := range requirements {
		details = append(details, deterministic(req, kind, source.Retrieve(ctx, req)))
	}
	return details
}

// adjudicateAll runs the queue in fixed-size batches and applies verdicts in place.
func (e *Evaluator) adjudicateAll(ctx context.Context, queue []*Verdict, excerpt string) []string {
	var degraded []string
	flag := func(f string) {
		for _, d := range degraded {
			if d == f {
				return
			}
		}
		degraded = append(degraded, f)
	}

	for start := 0; start < len(queue); start += e.cfg.BatchSize {
		batch := queue[start:min(start+e.cfg.BatchSize, len(queue))]

		if ctx.Err() != nil {
			e.metrics.ObserveAdjudicationBatch(metrics.OutcomeSkipped, 0)
			flag(DegradedCancelled)
			continue
		}

		began := time.Now()
		verdicts, err := e.adjudicateBatch(ctx, excerpt, batch)
		elapsed := time.Since(began)

		if err != nil {
			outcome := metrics.OutcomeError
			if errors.Is(err, context.DeadlineExceeded) {
				outcome = metrics.OutcomeTimeout
			}
			e.metrics.ObserveAdjudicationBatch(outcome, elapsed)
			e.logger.Warn("adjudication batch failed, keeping deterministic scores",
				zap.Int("batch_start", start),
				zap.Int("batch_size", len(batch)),
				zap.String("outcome", outcome),
				zap.Error(err),
			)
			if ctx.Err() != nil {
				flag(DegradedCancelled)
			} else {
				flag(DegradedAdjudication)
			}
			continue
		}

		e.metrics.ObserveAdjudicationBatch(metrics.OutcomeOK, elapsed)
		applied := 0
		for _, v := range batch {
			verdict, ok := verdicts[v.Requirement]
			if !ok {
				continue
			}
			apply(v, verdict)
			applied++
		}
		e.logger.Debug("adjudication batch done",
			zap.Int("batch_start", start),
			zap.Int("batch_size", len(batch)),
			zap.Int("verdicts", applied),
			zap.Duration("elapsed", elapsed),
		)
	}
	return degraded
}

// adjudicateBatch calls the adjudicator with a per-attempt timeout and exponential
// backoff between attempts.
func (e *Evaluator) adjudicateBatch(ctx context.Context, excerpt string, batch []*Verdict) (map[string]ai.Verdict, error) {
	items := make([]ai.AdjudicationItem, 0, len(batch))
	for _, v := range batch {
		items = append(items, adjudicationItem(v))
	}

	var lastErr error
	for attempt := 1; attempt <= e.cfg.MaxAttempts; attempt++ {
		attemptCtx, cancel := context.WithTimeout(ctx, e.cfg.BatchTimeout)
		verdicts, err := e.adjudicator.Adjudicate(attemptCtx, excerpt, items)
		cancel()
		if err == nil {
			return verdicts, nil
		}
		lastErr = err

		if attempt == e.cfg.MaxAttempts || ctx.Err() != nil {
			break
		}
		if err := utils.WaitFor(ctx, backoffDelay(e.cfg.Backoff, attempt)); err != nil {
			break
		}
	}
	return nil, fmt.Errorf("adjudicate %d requirements: %w", len(batch), lastErr)
}

func backoffDelay(base time.Duration, attempt int) time.Duration {
	shift := min(attempt-1, maxBackoffDoubles)
	return base << shift
}

func adjudicationItem(v *Verdict) ai.AdjudicationItem {
	snippets := make([]ai.Snippet, 0, maxSnippets)
	for _, item := range v.Evidence {
		if len(snippets) == maxSnippets {
			break
		}
		snippets = append(snippets, ai.Snippet{
			Text:       textproc.Truncate(item.Text, maxSnippetChars),
			Similarity: round(item.Similarity, 3),
		})
	}
	return ai.AdjudicationItem{
		Requirement: v.Requirement,
		Type:        string(v.Type),
		Evidence:    snippets,
	}
}

func apply(v *Verdict, verdict ai.Verdict) {
	v.Adjudicated = true
	v.Present = verdict.Present
	v.Confidence = clamp01(verdict.Confidence)
	v.Rationale = verdict.Rationale
	v.Quote = verdict.Evidence
	v.Score = AdjudicatedScore(v.Present, v.Confidence, v.MaxSimilarity, v.PreScore)
}

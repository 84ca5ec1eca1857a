// Package screening runs the full evaluation of resumes against one job
// description: requirement planning, evidence retrieval, coverage, semantic fit,
// competencies, cue alignment and calibration.
package screening

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/spigell/hh-screener/internal/ai"
	"github.com/spigell/hh-screener/internal/competency"
	"github.com/spigell/hh-screener/internal/coverage"
	"github.com/spigell/hh-screener/internal/embedding"
	"github.com/spigell/hh-screener/internal/evidence"
	"github.com/spigell/hh-screener/internal/logger"
	"github.com/spigell/hh-screener/internal/metrics"
)

const (
	MinTextLength = 50

	defaultWorkers      = 4
	defaultChunkChars   = 800
	defaultChunkOverlap = 150
)

// Config tunes an evaluation. Zero values select the defaults.
type Config struct {
	MaxAtoms     int             `mapstructure:"max-atoms" validate:"gte=0,lte=100"`
	TopK         int             `mapstructure:"top-k" validate:"gte=0,lte=20"`
	ChunkChars   int             `mapstructure:"chunk-chars" validate:"gte=0,lte=10000"`
	ChunkOverlap int             `mapstructure:"chunk-overlap" validate:"gte=0,ltefield=ChunkChars"`
	Workers      int             `mapstructure:"workers" validate:"gte=0,lte=64"`
	MissingLimit int             `mapstructure:"missing-limit" validate:"gte=0,lte=50"`
	Disable      []string        `mapstructure:"disable" validate:"dive,oneof=competencies cues"`
	Coverage     coverage.Config `mapstructure:"coverage"`
}

func (c Config) withDefaults() Config {
	if c.Workers <= 0 {
		c.Workers = defaultWorkers
	}
	if c.ChunkChars <= 0 {
		c.ChunkChars = defaultChunkChars
		c.ChunkOverlap = defaultChunkOverlap
	}
	if c.MissingLimit <= 0 {
		c.MissingLimit = coverage.DefaultMissingLimit
	}
	return c
}

// Deps aggregates dependencies shared across all stages. Only Embedder is needed;
// everything else is optional.
type Deps struct {
	Logger     *zap.Logger
	Embedder   embedding.Embedder
	Planner    ai.Planner
	Coverage   *coverage.Evaluator
	Competency *competency.Scorer
	// NewIndex returns a fresh segment index per resume. Nil keeps segments in memory.
	NewIndex func() evidence.Index
	Metrics  *metrics.Metrics
}

// Job is the description resumes are screened against. Cues, when set, are used
// for cue alignment in addition to the planner's.
type Job struct {
	Name        string
	Description string
	Cues        []string
}

type Document struct {
	Name string
	Text string
}

// InputError reports a job description or resume that cannot be evaluated.
type InputError struct {
	Field  string
	Reason string
}

func (e *InputError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// Screener evaluates resumes. It is safe for concurrent use: evaluations share only
// read-only tables and the concurrency-safe dependencies.
type Screener struct {
	cfg      Config
	deps     Deps
	validate *validator.Validate
}

func New(cfg Config, deps Deps) *Screener {
	if deps.Logger == nil {
		deps.Logger = zap.NewNop()
	}
	if deps.Embedder == nil {
		deps.Embedder = embedding.NewHashEmbedder(0)
	}
	if deps.Coverage == nil {
		deps.Coverage = coverage.New(nil, cfg.Coverage, deps.Logger, deps.Metrics)
	}
	return &Screener{
		cfg:      cfg.withDefaults(),
		deps:     deps,
		validate: validator.New(),
	}
}

// Evaluate screens one resume. It never returns an error: invalid input yields a
// zero-score weak evaluation with the error recorded.
func (s *Screener) Evaluate(ctx context.Context, job Job, resume Document) *Evaluation {
	return s.evaluate(ctx, job, resume, nil)
}

// EvaluateMany screens resumes concurrently against one job and returns them
// ranked by final score. Requirements are planned once for all resumes.
func (s *Screener) EvaluateMany(ctx context.Context, job Job, resumes []Document) []*Evaluation {
	out := make([]*Evaluation, len(resumes))
	if len(resumes) == 0 {
		return out
	}

	var shared *requirementPlan
	if s.checkField("job description", job.Description) == nil {
		shared = planRequirements(ctx, s.cfg, s.deps, job)
	}

	var g errgroup.Group
	g.SetLimit(s.cfg.Workers)
	for i, resume := range resumes {
		g.Go(func() error {
			out[i] = s.evaluate(ctx, job, resume, shared)
			return nil
		})
	}
	_ = g.Wait()

	Rank(out)
	return out
}

func (s *Screener) evaluate(ctx context.Context, job Job, resume Document, plan *requirementPlan) *Evaluation {
	began := time.Now()
	job.Description = strings.TrimSpace(job.Description)
	resume.Text = strings.TrimSpace(resume.Text)

	ev := &Evaluation{ID: uuid.NewString(), JD: job.Name, Resume: resume.Name}
	log := logger.WithFields(s.deps.Logger, logger.EvaluationFields(ev.ID, job.Name, resume.Name)...)

	if err := s.checkInput(job.Description, resume.Text); err != nil {
		log.Warn("evaluation input rejected", zap.Error(err))
		ev.reject(err)
		s.deps.Metrics.ObserveEvaluation(string(ev.Tier), ev.FinalScore)
		return ev
	}

	deps := s.deps
	deps.Logger = log

	st := newState(job, resume, plan)
	defer st.close(context.WithoutCancel(ctx), log)

	stages := s.stages()
	err := Run(ctx, &s.cfg, deps, stages, st)

	ev.fill(st, s.cfg.MissingLimit)
	ev.Stages = Describe(stages)
	if err != nil {
		log.Error("evaluation incomplete", zap.Error(err))
		ev.Error = err.Error()
	}
	if st.safe != nil {
		deps.Metrics.AddEmbeddingFailures(st.safe.Failures())
	}
	deps.Metrics.ObserveEvaluation(string(ev.Tier), ev.FinalScore)

	log.Info("evaluation done",
		zap.Float64("score", ev.FinalScore),
		zap.String("tier", string(ev.Tier)),
		zap.Strings("degraded", ev.Degraded),
		zap.Duration("elapsed", time.Since(began)),
	)
	return ev
}

// stages returns a fresh stage list; stages keep per-evaluation status.
func (s *Screener) stages() []Stage {
	stages := []Stage{
		&requirementsStage{},
		&evidenceStage{},
		&coverageStage{},
		&semanticStage{},
		&competenciesStage{},
		&cuesStage{},
		&calibrationStage{},
	}
	for _, name := range s.cfg.Disable {
		DisableByName(stages, name, "disabled in config")
	}
	if s.deps.Competency == nil {
		DisableByName(stages, competenciesStageName, "competency scorer is not configured")
	}
	return stages
}

func (s *Screener) checkInput(jd, resume string) error {
	if err := s.checkField("job description", jd); err != nil {
		return err
	}
	return s.checkField("resume", resume)
}

func (s *Screener) checkField(name, value string) error {
	if err := s.validate.Var(strings.TrimSpace(value), fmt.Sprintf("required,min=%d", MinTextLength)); err != nil {
		return &InputError{Field: name, Reason: fmt.Sprintf("must be at least %d characters", MinTextLength)}
	}
	return nil
}

// Rank orders evaluations by final score, best first. Ties keep input order.
func Rank(evals []*Evaluation) {
	sort.SliceStable(evals, func(i, j int) bool {
		return evals[i].FinalScore > evals[j].FinalScore
	})
}

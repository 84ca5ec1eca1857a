package screening

import (
	"context"
	"errors"
	"strconv"

	"go.uber.org/zap"

	"github.com/spigell/hh-screener/internal/atoms"
	"github.com/spigell/hh-screener/internal/calibration"
	"github.com/spigell/hh-screener/internal/competency"
	"github.com/spigell/hh-screener/internal/coverage"
	"github.com/spigell/hh-screener/internal/cues"
	"github.com/spigell/hh-screener/internal/embedding"
	"github.com/spigell/hh-screener/internal/evidence"
	"github.com/spigell/hh-screener/internal/terms"
	"github.com/spigell/hh-screener/internal/textproc"
)

const (
	requirementsStageName = "requirements"
	evidenceStageName     = "evidence"
	coverageStageName     = "coverage"
	semanticStageName     = "semantic"
	competenciesStageName = "competencies"
	cuesStageName         = "cues"
	calibrationStageName  = "calibration"

	plannerAI            = "ai"
	plannerDeterministic = "deterministic"

	degradedPlanner = "planner"
)

var errNoRequirements = errors.New("no valid requirements in plan")

// requirementPlan is the must/nice split of one job description.
type requirementPlan struct {
	must     []string
	nice     []string
	cues     []string
	source   string
	proposed int
	degraded []string
}

// planRequirements asks the planner first and falls back to deterministic
// extraction when it is missing, fails or returns nothing usable.
func planRequirements(ctx context.Context, cfg Config, deps Deps, job Job) *requirementPlan {
	if deps.Planner != nil {
		plan, err := deps.Planner.Plan(ctx, job.Description)
		if err == nil {
			must, reserved := atoms.Refine(plan.Must, nil, cfg.MaxAtoms)
			nice, _ := atoms.Refine(plan.Nice, reserved, cfg.MaxAtoms)
			if len(must)+len(nice) > 0 {
				return &requirementPlan{
					must:     must,
					nice:     nice,
					cues:     append(append([]string{}, job.Cues...), plan.Cues...),
					source:   plannerAI,
					proposed: len(plan.Must) + len(plan.Nice),
				}
			}
			err = errNoRequirements
		}
		deps.Logger.Warn("requirement planner failed, using deterministic extraction", zap.Error(err))
		p := deterministicPlan(cfg, job)
		p.degraded = []string{degradedPlanner}
		return p
	}
	return deterministicPlan(cfg, job)
}

func deterministicPlan(cfg Config, job Job) *requirementPlan {
	set := atoms.FromDescription(job.Description, cfg.MaxAtoms)
	jdCues := append([]string{}, job.Cues...)
	if len(jdCues) == 0 {
		jdCues = append(append(jdCues, set.Must...), set.Nice...)
	}
	return &requirementPlan{
		must:     set.Must,
		nice:     set.Nice,
		cues:     jdCues,
		source:   plannerDeterministic,
		proposed: set.Total(),
	}
}

// state carries one evaluation through the stages.
type state struct {
	job    Job
	resume Document

	plan         *requirementPlan
	requirements terms.RequirementMatch

	safe      *embedding.Safe
	retriever *evidence.Retriever
	evidence  map[string]evidence.Match

	coverage     coverage.Summary
	semantic     float64
	details      SemanticDetails
	competencies []competency.Score
	mapping      map[string]competency.Mapping
	alignment    *cues.Alignment
	breakdown    *calibration.Breakdown

	degraded []string
}

func newState(job Job, resume Document, plan *requirementPlan) *state {
	return &state{job: job, resume: resume, plan: plan, evidence: make(map[string]evidence.Match)}
}

// Retrieve serves requirement evidence, retrieving each requirement once.
func (st *state) Retrieve(ctx context.Context, requirement string) evidence.Match {
	if m, ok := st.evidence[requirement]; ok {
		return m
	}
	m := st.retriever.Retrieve(ctx, requirement)
	st.evidence[requirement] = m
	return m
}

func (st *state) requirementsList() []string {
	return append(append([]string{}, st.plan.must...), st.plan.nice...)
}

func (st *state) degrade(flags ...string) {
	for _, f := range flags {
		found := false
		for _, d := range st.degraded {
			if d == f {
				found = true
				break
			}
		}
		if !found {
			st.degraded = append(st.degraded, f)
		}
	}
}

func (st *state) close(ctx context.Context, log *zap.Logger) {
	if st.retriever == nil {
		return
	}
	if err := st.retriever.Close(ctx); err != nil {
		log.Warn("closing segment index failed", zap.Error(err))
	}
}

type requirementsStage struct {
	required
	cfg    Config
	source string
}

func (s *requirementsStage) Name() string { return requirementsStageName }

func (s *requirementsStage) Validate(cfg *Config) error {
	s.cfg = *cfg
	return nil
}

func (s *requirementsStage) Apply(ctx context.Context, deps Deps, st *state) (Step, error) {
	if st.plan == nil {
		st.plan = planRequirements(ctx, s.cfg, deps, st.job)
	}
	st.degrade(st.plan.degraded...)
	s.source = st.plan.source

	st.requirements = terms.MatchRequirements(st.requirementsList(), terms.ExtractSkills(st.resume.Text), st.resume.Text)

	kept := len(st.plan.must) + len(st.plan.nice)
	deps.Logger.Debug("requirements planned",
		zap.String("planner", st.plan.source),
		zap.Strings("must", st.plan.must),
		zap.Strings("nice", st.plan.nice),
	)
	return Step{Initial: max(st.plan.proposed, kept), Dropped: max(0, st.plan.proposed-kept), Left: kept}, nil
}

func (s *requirementsStage) Status() Status {
	details := map[string]string{}
	if s.source != "" {
		details["planner"] = s.source
	}
	return Status{Name: s.Name(), Enabled: true, Step: s.step, Details: details}
}

type evidenceStage struct {
	required
	cfg      Config
	segments int
}

func (s *evidenceStage) Name() string { return evidenceStageName }

func (s *evidenceStage) Validate(cfg *Config) error {
	s.cfg = *cfg
	return nil
}

func (s *evidenceStage) Apply(ctx context.Context, deps Deps, st *state) (Step, error) {
	chunks := textproc.Chunk(st.resume.Text, nil, s.cfg.ChunkChars, s.cfg.ChunkOverlap)
	segments := evidence.Segment(st.resume.Text, chunks, nil)
	s.segments = len(segments)

	opts := evidence.Options{TopK: s.cfg.TopK, Logger: deps.Logger}
	if deps.NewIndex != nil {
		opts.Index = deps.NewIndex()
	}
	st.safe = embedding.NewSafe(deps.Embedder, deps.Logger)
	st.retriever = evidence.NewRetriever(ctx, st.safe, segments, opts)
	st.degrade(st.retriever.Degraded()...)

	reqs := st.requirementsList()
	withEvidence := 0
	for _, req := range reqs {
		if len(st.Retrieve(ctx, req).Items) > 0 {
			withEvidence++
		}
	}
	return Step{Initial: len(reqs), Dropped: len(reqs) - withEvidence, Left: withEvidence}, nil
}

func (s *evidenceStage) Status() Status {
	return Status{
		Name:    s.Name(),
		Enabled: true,
		Step:    s.step,
		Details: map[string]string{"segments": strconv.Itoa(s.segments)},
	}
}

type coverageStage struct {
	required
}

func (s *coverageStage) Name() string { return coverageStageName }

func (s *coverageStage) Validate(*Config) error { return nil }

func (s *coverageStage) Apply(ctx context.Context, deps Deps, st *state) (Step, error) {
	st.coverage = deps.Coverage.Evaluate(ctx, st.plan.must, st.plan.nice, st, st.resume.Text)
	st.degrade(st.coverage.Degraded...)

	present := 0
	for _, list := range [][]coverage.Verdict{st.coverage.MustDetails, st.coverage.NiceDetails} {
		for _, v := range list {
			// without a verdict the evidence decides what the step reports
			if v.Present || (!v.Adjudicated && v.Supported) {
				present++
			}
		}
	}
	total := len(st.coverage.MustDetails) + len(st.coverage.NiceDetails)
	return Step{Initial: total, Dropped: total - present, Left: present}, nil
}

func (s *coverageStage) Status() Status {
	return Status{Name: s.Name(), Enabled: true, Step: s.step}
}

type semanticStage struct {
	required
}

func (s *semanticStage) Name() string { return semanticStageName }

func (s *semanticStage) Validate(*Config) error { return nil }

func (s *semanticStage) Apply(ctx context.Context, _ Deps, st *state) (Step, error) {
	st.semantic = st.retriever.GlobalSemantic(ctx, st.job.Description)
	st.details = semanticDetails(st.semantic, st.coverage)

	segments := len(st.retriever.Segments())
	return Step{Initial: segments, Left: segments}, nil
}

func (s *semanticStage) Status() Status {
	return Status{Name: s.Name(), Enabled: true, Step: s.step}
}

type competenciesStage struct {
	toggle
}

func (s *competenciesStage) Name() string { return competenciesStageName }

func (s *competenciesStage) Validate(*Config) error { return nil }

func (s *competenciesStage) Apply(ctx context.Context, deps Deps, st *state) (Step, error) {
	if deps.Competency == nil {
		return Step{}, errors.New("competency scorer is required")
	}
	st.competencies = deps.Competency.Score(ctx, st.resume.Text, st.retriever)
	st.mapping = competency.MapAtoms(st.requirementsList())

	scored := 0
	for _, c := range st.competencies {
		if c.Score > 0 {
			scored++
		}
	}
	return Step{Initial: len(st.competencies), Dropped: len(st.competencies) - scored, Left: scored}, nil
}

func (s *competenciesStage) Status() Status {
	return Status{Name: s.Name(), Enabled: s.IsEnabled(), Reason: s.reason, Step: s.step}
}

type cuesStage struct {
	toggle
}

func (s *cuesStage) Name() string { return cuesStageName }

func (s *cuesStage) Validate(*Config) error { return nil }

func (s *cuesStage) Apply(ctx context.Context, deps Deps, st *state) (Step, error) {
	resumeCues := append(terms.ExtractSkills(st.resume.Text), atoms.Extract(st.resume.Text, cues.MaxResumeCues)...)
	alignment := cues.AlignWithContext(ctx, st.plan.cues, resumeCues, deps.Embedder, st.retriever)
	st.alignment = &alignment

	total := len(alignment.JDCues)
	return Step{Initial: total, Dropped: len(alignment.Weak), Left: total - len(alignment.Weak)}, nil
}

func (s *cuesStage) Status() Status {
	return Status{Name: s.Name(), Enabled: s.IsEnabled(), Reason: s.reason, Step: s.step}
}

type calibrationStage struct {
	required
}

func (s *calibrationStage) Name() string { return calibrationStageName }

func (s *calibrationStage) Validate(*Config) error { return nil }

func (s *calibrationStage) Apply(_ context.Context, deps Deps, st *state) (Step, error) {
	b := calibration.Calibrate(st.coverage.Overall, st.semantic, st.coverage.MustFulfillmentRate, st.coverage.Nice)
	st.breakdown = &b

	if len(b.Penalties) > 0 {
		deps.Logger.Debug("score penalties applied", zap.Strings("penalties", b.Penalties))
	}
	adjustments := len(b.Penalties) + len(b.Bonuses)
	return Step{Initial: adjustments, Dropped: len(b.Penalties), Left: len(b.Bonuses)}, nil
}

func (s *calibrationStage) Status() Status {
	return Status{Name: s.Name(), Enabled: true, Step: s.step}
}

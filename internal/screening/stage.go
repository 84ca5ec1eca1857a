package screening

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"
)

// Stage is one step of an evaluation.
type Stage interface {
	Name() string
	Disable(reason string)
	IsEnabled() bool

	Validate(cfg *Config) error
	Apply(ctx context.Context, deps Deps, st *state) (Step, error)
}

// Step describes the result of executing a stage: how many items it looked at,
// how many it set aside and how many remain.
type Step struct {
	Initial int `json:"initial"`
	Dropped int `json:"dropped"`
	Left    int `json:"left"`
}

// Status represents runtime information about a stage.
type Status struct {
	Name    string            `json:"name"`
	Enabled bool              `json:"enabled"`
	Reason  string            `json:"reason,omitempty"`
	Step    *Step             `json:"step,omitempty"`
	Details map[string]string `json:"details,omitempty"`
}

type statusProvider interface {
	Status() Status
}

// toggle gives optional stages their enable state.
type toggle struct {
	disabled bool
	reason   string
	step     *Step
}

func (t *toggle) Disable(reason string) {
	t.disabled = true
	t.reason = reason
}

func (t *toggle) IsEnabled() bool { return !t.disabled }

func (t *toggle) record(s Step) { t.step = &s }

// required stages ignore Disable.
type required struct {
	step *Step
}

func (*required) Disable(string) {}

func (*required) IsEnabled() bool { return true }

func (r *required) record(s Step) { r.step = &s }

type recorder interface {
	record(Step)
}

// DisableByName marks a stage with the provided name as disabled while keeping it in the list.
func DisableByName(stages []Stage, name, reason string) {
	for _, stage := range stages {
		if stage.Name() == name {
			stage.Disable(reason)
		}
	}
}

// Run executes the stages sequentially against one evaluation state.
func Run(ctx context.Context, cfg *Config, deps Deps, stages []Stage, st *state) error {
	for _, stage := range stages {
		if !stage.IsEnabled() {
			continue
		}
		if err := stage.Validate(cfg); err != nil {
			return fmt.Errorf("%s: %w", stage.Name(), err)
		}
	}

	for _, stage := range stages {
		if !stage.IsEnabled() {
			deps.Logger.Debug("stage disabled", zap.String("name", stage.Name()))
			continue
		}

		began := time.Now()
		info, err := stage.Apply(ctx, deps, st)
		if err != nil {
			return fmt.Errorf("%s: %w", stage.Name(), err)
		}
		deps.Metrics.ObserveStage(stage.Name(), time.Since(began))

		if r, ok := stage.(recorder); ok {
			r.record(info)
		}

		deps.Logger.Info("screening step",
			zap.String("name", stage.Name()),
			zap.Int("initial", info.Initial),
			zap.Int("dropped", info.Dropped),
			zap.Int("left", info.Left),
		)
	}
	return nil
}

// Describe returns status entries for the provided stages.
func Describe(stages []Stage) []Status {
	statuses := make([]Status, 0, len(stages))
	for _, stage := range stages {
		if reporter, ok := stage.(statusProvider); ok {
			statuses = append(statuses, reporter.Status())
			continue
		}

		statuses = append(statuses, Status{
			Name:    stage.Name(),
			Enabled: stage.IsEnabled(),
		})
	}
	return statuses
}

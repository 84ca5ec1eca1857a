// Package ai holds the provider-neutral contracts for the optional LLM layer.
// Every consumer treats these as enhancements: a nil implementation or an error
// means the deterministic result stands.
package ai

import "context"

// Snippet is a piece of resume evidence shown to the adjudicator.
type Snippet struct {
	Text       string  `json:"text"`
	Similarity float64 `json:"similarity"`
}

// AdjudicationItem asks whether one requirement is met.
type AdjudicationItem struct {
	Requirement string    `json:"requirement"`
	Type        string    `json:"type"`
	Evidence    []Snippet `json:"evidence"`
}

// Verdict is the adjudicator's answer for one requirement.
type Verdict struct {
	Present    bool    `json:"present"`
	Confidence float64 `json:"confidence"`
	Rationale  string  `json:"rationale"`
	Evidence   string  `json:"evidence"`
}

// Adjudicator decides requirement presence for a batch. The returned map is keyed
// by requirement text; requirements without an entry keep their deterministic score.
type Adjudicator interface {
	Adjudicate(ctx context.Context, resumeExcerpt string, items []AdjudicationItem) (map[string]Verdict, error)
}

// RequirementPlan is a structured reading of a job description.
type RequirementPlan struct {
	Must []string `json:"must"`
	Nice []string `json:"nice"`
	Cues []string `json:"cues"`
}

// Planner extracts must/nice requirements and cues from a job description.
type Planner interface {
	Plan(ctx context.Context, jd string) (*RequirementPlan, error)
}

// CompetencyVerifier confirms that resume excerpts show substantial hands-on work
// in a competency.
type CompetencyVerifier interface {
	Substantial(ctx context.Context, competency string, excerpts []string) (bool, error)
}

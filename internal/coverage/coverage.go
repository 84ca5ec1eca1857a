// Package coverage scores how well resume evidence covers must-have and
// nice-to-have requirements.
//
// Every requirement gets a deterministic pre-score before any adjudication call is
// made, so a cancelled or failing adjudicator still leaves a complete summary.
package coverage

import (
	"context"
	"encoding/json"

	"github.com/spigell/hh-screener/internal/atoms"
	"github.com/spigell/hh-screener/internal/evidence"
)

const (
	// DefaultMissingLimit bounds MissingRequirements.
	DefaultMissingLimit = 5

	// pre-scores from here on mark a requirement as supported by evidence
	supportedPreScore = 0.5

	mustWeight = 0.75
	niceWeight = 0.25
)

// Degradation flags reported in Summary.Degraded.
const (
	DegradedAdjudication = "adjudication"
	DegradedCancelled    = "adjudication_cancelled"
)

// EvidenceSource finds resume evidence for a requirement.
type EvidenceSource interface {
	Retrieve(ctx context.Context, requirement string) evidence.Match
}

// Verdict is the scored state of one requirement.
type Verdict struct {
	Requirement    string          `json:"requirement"`
	Type           atoms.Priority  `json:"type"`
	MaxSimilarity  float64         `json:"max_similarity"`
	KeywordOverlap float64         `json:"keyword_overlap"`
	Evidence       []evidence.Item `json:"evidence"`
	PreScore       float64         `json:"pre_score"`
	Score          float64         `json:"score"`

	// Supported reflects the pre-score only and never counts toward fulfillment.
	Supported bool `json:"supported"`

	Adjudicated bool    `json:"adjudicated"`
	Present     bool    `json:"present"`
	Confidence  float64 `json:"confidence"`
	Rationale   string  `json:"rationale,omitempty"`
	Quote       string  `json:"adjudicator_evidence,omitempty"`
}

// Summary aggregates requirement verdicts. Values keep full precision; JSON output
// is rounded to three decimals.
type Summary struct {
	Must                float64 `json:"must"`
	Nice                float64 `json:"nice"`
	MustFulfillmentRate float64 `json:"must_fulfillment_rate"`
	PenaltyFactor       float64 `json:"penalty_factor"`
	Overall             float64 `json:"overall"`

	MustAtomsCount   int `json:"must_atoms_count"`
	NiceAtomsCount   int `json:"nice_atoms_count"`
	MustPresentCount int `json:"must_present_count"`

	MustDetails []Verdict `json:"must_details"`
	NiceDetails []Verdict `json:"nice_details"`

	Degraded []string `json:"degraded,omitempty"`
}

// Aggregate computes coverage ratios from scored verdicts.
func Aggregate(must, nice []Verdict) Summary {
	s := Summary{
		Must:           mean(must, 0),
		Nice:           mean(nice, 1),
		MustAtomsCount: len(must),
		NiceAtomsCount: len(nice),
		MustDetails:    must,
		NiceDetails:    nice,
	}

	for _, v := range must {
		if v.Present {
			s.MustPresentCount++
		}
	}
	s.MustFulfillmentRate = float64(s.MustPresentCount) / float64(max(1, len(must)))

	if len(must) == 0 {
		s.PenaltyFactor = 1
		s.Overall = s.Nice
		return s
	}

	s.PenaltyFactor = PenaltyFactor(s.MustFulfillmentRate)
	s.Overall = (mustWeight*s.Must + niceWeight*s.Nice) * s.PenaltyFactor
	return s
}

// MissingRequirements lists must-haves that are confidently absent or have weak
// evidence, in requirement order.
func MissingRequirements(s Summary, limit int) []string {
	if limit <= 0 {
		limit = DefaultMissingLimit
	}

	var out []string
	for _, v := range s.MustDetails {
		if v.Present {
			continue
		}
		if v.Confidence >= 0.4 || v.MaxSimilarity < 0.5 {
			out = append(out, v.Requirement)
			if len(out) == limit {
				break
			}
		}
	}
	return out
}

// deterministic scores one requirement from its evidence alone. Present stays
// false until an adjudicator verdict says otherwise.
func deterministic(requirement string, kind atoms.Priority, m evidence.Match) Verdict {
	pre := PreScore(m.MaxSimilarity, m.MaxKeyword)
	return Verdict{
		Requirement:    requirement,
		Type:           kind,
		MaxSimilarity:  m.MaxSimilarity,
		KeywordOverlap: m.MaxKeyword,
		Evidence:       m.Items,
		PreScore:       pre,
		Score:          pre,
		Supported:      pre >= supportedPreScore,
	}
}

func (v Verdict) MarshalJSON() ([]byte, error) {
	type plain Verdict
	out := plain(v)
	out.MaxSimilarity = round(out.MaxSimilarity, 3)
	out.KeywordOverlap = round(out.KeywordOverlap, 3)
	out.PreScore = round(out.PreScore, 3)
	out.Score = round(out.Score, 3)
	out.Confidence = round(out.Confidence, 3)
	return json.Marshal(out)
}

func (s Summary) MarshalJSON() ([]byte, error) {
	type plain Summary
	out := plain(s)
	out.Must = round(out.Must, 3)
	out.Nice = round(out.Nice, 3)
	out.MustFulfillmentRate = round(out.MustFulfillmentRate, 3)
	out.PenaltyFactor = round(out.PenaltyFactor, 3)
	out.Overall = round(out.Overall, 3)
	return json.Marshal(out)
}

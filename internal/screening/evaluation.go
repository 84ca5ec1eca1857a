package screening

import (
	"encoding/json"
	"fmt"
	"math"
	"os"
	"strings"

	"github.com/ecodeclub/ekit/slice"

	"github.com/spigell/hh-screener/internal/calibration"
	"github.com/spigell/hh-screener/internal/competency"
	"github.com/spigell/hh-screener/internal/coverage"
	"github.com/spigell/hh-screener/internal/cues"
	"github.com/spigell/hh-screener/internal/terms"
)

// Evaluation is the result of screening one resume against one job description.
type Evaluation struct {
	ID     string `json:"id"`
	JD     string `json:"jd,omitempty"`
	Resume string `json:"resume,omitempty"`

	Planner   string   `json:"planner,omitempty"`
	MustAtoms []string `json:"must_atoms"`
	NiceAtoms []string `json:"nice_atoms"`

	GlobalSemantic float64                `json:"global_semantic"`
	Semantic       SemanticDetails        `json:"semantic_details"`
	Coverage       *coverage.Summary      `json:"coverage,omitempty"`
	Breakdown      *calibration.Breakdown `json:"breakdown,omitempty"`

	FinalScore     float64          `json:"final_score"`
	Tier           calibration.Tier `json:"tier"`
	Recommendation string           `json:"recommendation"`
	Missing        []string         `json:"missing_requirements"`

	Competencies  []competency.Score            `json:"competencies,omitempty"`
	CompetencyMap map[string]competency.Mapping `json:"competency_map,omitempty"`
	Cues          *cues.Alignment               `json:"cue_alignment,omitempty"`
	Requirements  terms.RequirementMatch        `json:"requirements_match"`

	Stages   []Status `json:"stages,omitempty"`
	Degraded []string `json:"degraded,omitempty"`
	Error    string   `json:"error,omitempty"`
}

// SemanticDetails relates the global semantic score to requirement-level similarity.
type SemanticDetails struct {
	Overall               float64 `json:"overall_similarity"`
	RequirementSimilarity float64 `json:"requirement_match_similarity"`
	Alignment             string  `json:"jd_resume_alignment"`
}

func semanticDetails(global float64, s coverage.Summary) SemanticDetails {
	var sum float64
	n := 0
	for _, details := range [][]coverage.Verdict{s.MustDetails, s.NiceDetails} {
		for _, v := range details {
			sum += v.MaxSimilarity
			n++
		}
	}
	avg := 0.0
	if n > 0 {
		avg = sum / float64(n)
	}

	label := "Weak"
	switch alignment := (global + avg + s.Overall) / 3; {
	case alignment >= 0.75:
		label = "Excellent"
	case alignment >= 0.60:
		label = "Good"
	case alignment >= 0.45:
		label = "Fair"
	}
	return SemanticDetails{Overall: round(global, 3), RequirementSimilarity: round(avg, 3), Alignment: label}
}

// reject marks the evaluation as failed input.
func (e *Evaluation) reject(err error) {
	e.Error = err.Error()
	e.FinalScore = 0
	e.Tier = calibration.Weak
	e.Recommendation = calibration.Message(calibration.Weak) + " " + err.Error() + "."
	e.MustAtoms = []string{}
	e.NiceAtoms = []string{}
	e.Missing = []string{}
	e.Semantic.Alignment = "Weak"
}

func (e *Evaluation) fill(st *state, missingLimit int) {
	e.MustAtoms, e.NiceAtoms = []string{}, []string{}
	if st.plan != nil {
		e.Planner = st.plan.source
		e.MustAtoms = append(e.MustAtoms, st.plan.must...)
		e.NiceAtoms = append(e.NiceAtoms, st.plan.nice...)
	}

	e.GlobalSemantic = st.semantic
	e.Semantic = st.details
	if e.Semantic.Alignment == "" {
		e.Semantic.Alignment = "Weak"
	}

	cov := st.coverage
	e.Coverage = &cov
	e.Missing = coverage.MissingRequirements(cov, missingLimit)
	if e.Missing == nil {
		e.Missing = []string{}
	}

	e.Competencies = st.competencies
	e.CompetencyMap = st.mapping
	e.Cues = st.alignment
	e.Requirements = st.requirements
	e.Degraded = st.degraded

	e.Tier = calibration.Weak
	if st.breakdown != nil {
		e.Breakdown = st.breakdown
		e.FinalScore = st.breakdown.Score()
		e.Tier = st.breakdown.Tier
	}
	e.Recommendation = recommendation(e.Tier, e.FinalScore, cov)
}

func recommendation(tier calibration.Tier, score float64, cov coverage.Summary) string {
	msg := fmt.Sprintf("%s Score: %.1f/10 (%s).", calibration.Message(tier), score, tier)
	if cov.MustAtomsCount > 0 {
		msg += fmt.Sprintf(" %d/%d must-haves met.", cov.MustPresentCount, cov.MustAtomsCount)
	}
	return msg
}

func (e Evaluation) MarshalJSON() ([]byte, error) {
	type plain Evaluation
	out := plain(e)
	out.GlobalSemantic = round(out.GlobalSemantic, 3)
	return json.Marshal(out)
}

// Summary is the one-line view of an evaluation.
type Summary struct {
	ID       string   `json:"id"`
	Resume   string   `json:"resume"`
	Score    float64  `json:"score"`
	Tier     string   `json:"tier"`
	MustMet  string   `json:"must_met"`
	Missing  []string `json:"missing"`
	Degraded bool     `json:"degraded"`
	Error    string   `json:"error,omitempty"`
}

// Summaries projects evaluations into their one-line views, keeping order.
func Summaries(evals []*Evaluation) []Summary {
	return slice.Map(evals, func(_ int, e *Evaluation) Summary {
		s := Summary{
			ID:       e.ID,
			Resume:   e.Resume,
			Score:    e.FinalScore,
			Tier:     string(e.Tier),
			MustMet:  "-",
			Missing:  e.Missing,
			Degraded: len(e.Degraded) > 0,
			Error:    e.Error,
		}
		if e.Coverage != nil && e.Coverage.MustAtomsCount > 0 {
			s.MustMet = fmt.Sprintf("%d/%d", e.Coverage.MustPresentCount, e.Coverage.MustAtomsCount)
		}
		return s
	})
}

// ReportByTier groups evaluations by tier for display.
func ReportByTier(evals []*Evaluation) map[string][]map[string]string {
	report := make(map[string][]map[string]string)
	for _, s := range Summaries(evals) {
		entry := map[string]string{
			"id":       s.ID,
			"resume":   s.Resume,
			"score":    fmt.Sprintf("%.1f", s.Score),
			"must met": s.MustMet,
		}
		if len(s.Missing) > 0 {
			entry["missing"] = strings.Join(s.Missing, ", ")
		}
		if s.Error != "" {
			entry["error"] = s.Error
		}
		report[s.Tier] = append(report[s.Tier], entry)
	}
	return report
}

// DumpToTmpFile writes the evaluations as indented JSON to a temporary file and
// returns its path.
func DumpToTmpFile(evals []*Evaluation) (string, error) {
	file, err := os.CreateTemp("", "evaluations_*.json")
	if err != nil {
		return "", err
	}
	defer file.Close()

	enc := json.NewEncoder(file)
	enc.SetIndent("", "  ")
	if err := enc.Encode(evals); err != nil {
		return "", err
	}
	return file.Name(), nil
}

func round(v float64, places int) float64 {
	p := math.Pow(10, float64(places))
	return math.Round(v*p) / p
}

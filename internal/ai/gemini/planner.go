package gemini

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"unicode/utf8"

	_ "embed"

	"github.com/spigell/hh-screener/internal/ai"
	"github.com/spigell/hh-screener/internal/utils"
	"go.uber.org/zap"
)

//go:embed plan.md
var planPrompt string

const (
	maxPlanMust = 25
	maxPlanNice = 15
	maxPlanCues = 25
	// long descriptions are cut; requirements sit in the first pages
	maxPlanInput = 12000
)

var planSchema = mustSchema(`{
  "type": "object",
  "required": ["must"],
  "properties": {
    "must": {"type": "array", "items": {"type": "string"}},
    "nice": {"type": "array", "items": {"type": "string"}},
    "cues": {"type": "array", "items": {"type": "string"}}
  }
}`)

// Planner reads a job description into must/nice requirements and work cues.
type Planner struct {
	generator contentGenerator
	logger    *zap.Logger
	maxLogLen int
}

var _ ai.Planner = (*Planner)(nil)

func NewPlanner(generator contentGenerator, logger *zap.Logger, maxLogLength int) *Planner {
	if logger == nil {
		logger = zap.NewNop()
	}
	if maxLogLength <= 0 {
		maxLogLength = defaultMaxLogLength
	}
	return &Planner{generator: generator, logger: logger, maxLogLen: maxLogLength}
}

func (p *Planner) Plan(ctx context.Context, jd string) (*ai.RequirementPlan, error) {
	jd = strings.TrimSpace(jd)
	if jd == "" {
		return nil, fmt.Errorf("job description is empty")
	}
	if utf8.RuneCountInString(jd) > maxPlanInput {
		jd = string([]rune(jd)[:maxPlanInput])
	}

	raw, err := p.generator.GenerateContent(ctx, planPrompt, "Job description:\n"+jd)
	if err != nil {
		return nil, err
	}

	p.logger.Debug("gemini plan response",
		zap.Int("response_length", utf8.RuneCountInString(raw)),
		zap.String("response_preview", utils.TruncateForLog(raw, p.maxLogLen)),
	)

	return parsePlan(raw)
}

func parsePlan(raw string) (*ai.RequirementPlan, error) {
	cleaned := extractJSON(raw)
	if err := validateDocument(planSchema, cleaned); err != nil {
		return nil, fmt.Errorf("invalid plan response: %w", err)
	}

	var data map[string]any
	if err := json.Unmarshal([]byte(cleaned), &data); err != nil {
		return nil, fmt.Errorf("parse plan response: %w", err)
	}

	must := uniqueItems(coerceStrings(data["must"]), nil, maxPlanMust)
	plan := &ai.RequirementPlan{
		Must: must,
		Nice: uniqueItems(coerceStrings(data["nice"]), must, maxPlanNice),
		Cues: uniqueItems(coerceStrings(data["cues"]), nil, maxPlanCues),
	}
	if len(plan.Must)+len(plan.Nice) == 0 {
		return nil, fmt.Errorf("plan response has no requirements")
	}
	return plan, nil
}

// uniqueItems drops case-insensitive duplicates and anything already in exclude.
func uniqueItems(items, exclude []string, limit int) []string {
	seen := make(map[string]struct{}, len(items)+len(exclude))
	for _, e := range exclude {
		seen[strings.ToLower(e)] = struct{}{}
	}

	out := make([]string, 0, len(items))
	for _, item := range items {
		key := strings.ToLower(item)
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, item)
		if len(out) == limit {
			break
		}
	}
	return out
}

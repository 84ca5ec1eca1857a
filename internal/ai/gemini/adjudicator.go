package gemini

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"strings"
	"unicode/utf8"

	_ "embed"

	"github.com/spigell/hh-screener/internal/ai"
	"github.com/spigell/hh-screener/internal/textproc"
	"github.com/spigell/hh-screener/internal/utils"
	"go.uber.org/zap"
)

type contentGenerator interface {
	GenerateContent(ctx context.Context, system, message string) (string, error)
	Model() string
}

//go:embed adjudicate.md
var adjudicatePrompt string

const (
	defaultMaxLogLength = 200

	maxRationaleWords = 20
	maxEvidenceWords  = 30

	adjudicationMessage = "Requirements to verify:\n{{REQUIREMENTS_JSON}}\n\nCandidate resume:\n{{RESUME}}\n"
)

var verdictSchema = mustSchema(`{
  "type": "object",
  "additionalProperties": {
    "type": "object",
    "properties": {
      "present": {"type": ["boolean", "string", "number"]},
      "confidence": {"type": ["number", "string"]},
      "rationale": {"type": ["string", "null"]},
      "evidence": {"type": ["string", "null"]}
    }
  }
}`)

// Adjudicator asks Gemini whether each requirement of a batch is met by the resume.
type Adjudicator struct {
	generator contentGenerator
	logger    *zap.Logger
	maxLogLen int
}

var _ ai.Adjudicator = (*Adjudicator)(nil)

func NewAdjudicator(generator contentGenerator, logger *zap.Logger, maxLogLength int) *Adjudicator {
	if logger == nil {
		logger = zap.NewNop()
	}
	if maxLogLength <= 0 {
		maxLogLength = defaultMaxLogLength
	}
	return &Adjudicator{generator: generator, logger: logger, maxLogLen: maxLogLength}
}

// Adjudicate returns verdicts keyed by requirement text. Requirements the model
// skipped are absent from the map.
func (a *Adjudicator) Adjudicate(ctx context.Context, resumeExcerpt string, items []ai.AdjudicationItem) (map[string]ai.Verdict, error) {
	if len(items) == 0 {
		return map[string]ai.Verdict{}, nil
	}

	payload, err := json.MarshalIndent(items, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshal requirements payload: %w", err)
	}

	message := strings.ReplaceAll(adjudicationMessage, "{{REQUIREMENTS_JSON}}", string(payload))
	message = strings.ReplaceAll(message, "{{RESUME}}", strings.TrimSpace(resumeExcerpt))

	a.logger.Debug("gemini adjudication request",
		zap.Int("requirements", len(items)),
		zap.Int("prompt_length", utf8.RuneCountInString(message)),
		zap.String("prompt_preview", utils.TruncateForLog(message, a.maxLogLen)),
	)

	raw, err := a.generator.GenerateContent(ctx, adjudicatePrompt, message)
	if err != nil {
		return nil, err
	}

	a.logger.Debug("gemini adjudication response",
		zap.Int("response_length", utf8.RuneCountInString(raw)),
		zap.String("response_preview", utils.TruncateForLog(raw, a.maxLogLen)),
	)

	return parseVerdicts(raw, items)
}

func parseVerdicts(raw string, items []ai.AdjudicationItem) (map[string]ai.Verdict, error) {
	cleaned := extractJSON(raw)
	if err := validateDocument(verdictSchema, cleaned); err != nil {
		return nil, fmt.Errorf("invalid adjudication response: %w", err)
	}

	var data map[string]map[string]any
	if err := json.Unmarshal([]byte(cleaned), &data); err != nil {
		return nil, fmt.Errorf("parse adjudication response: %w", err)
	}

	byNormalized := make(map[string]map[string]any, len(data))
	for key, value := range data {
		norm := textproc.Normalize(key)
		if _, ok := byNormalized[norm]; !ok {
			byNormalized[norm] = value
		}
	}

	verdicts := make(map[string]ai.Verdict, len(items))
	for _, item := range items {
		name := item.Requirement
		if strings.TrimSpace(name) == "" {
			continue
		}

		fields, ok := data[name]
		if !ok {
			fields, ok = byNormalized[textproc.Normalize(name)]
		}
		if !ok || fields == nil {
			continue
		}
		verdicts[name] = toVerdict(fields)
	}
	return verdicts, nil
}

func toVerdict(fields map[string]any) ai.Verdict {
	confidence := coerceFloat(fields["confidence"])
	if math.IsNaN(confidence) {
		confidence = 0
	}
	return ai.Verdict{
		Present:    coerceBool(fields["present"]),
		Confidence: clamp01(confidence),
		Rationale:  cleanText(coerceString(fields["rationale"]), maxRationaleWords),
		Evidence:   cleanText(coerceString(fields["evidence"]), maxEvidenceWords),
	}
}

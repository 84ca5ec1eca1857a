package gemini

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	_ "embed"

	"github.com/spigell/hh-screener/internal/ai"
	"go.uber.org/zap"
)

//go:embed verify.md
var verifyPrompt string

const maxVerifyExcerpts = 4

var verifySchema = mustSchema(`{
  "type": "object",
  "required": ["substantial"],
  "properties": {
    "substantial": {"type": ["boolean", "string"]},
    "reason": {"type": "string"}
  }
}`)

// Verifier confirms hands-on work in a competency from retrieved excerpts.
type Verifier struct {
	generator contentGenerator
	logger    *zap.Logger
}

var _ ai.CompetencyVerifier = (*Verifier)(nil)

func NewVerifier(generator contentGenerator, logger *zap.Logger) *Verifier {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Verifier{generator: generator, logger: logger}
}

func (v *Verifier) Substantial(ctx context.Context, competency string, excerpts []string) (bool, error) {
	if len(excerpts) == 0 {
		return false, nil
	}
	if len(excerpts) > maxVerifyExcerpts {
		excerpts = excerpts[:maxVerifyExcerpts]
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Competency: %s\n\nResume excerpts:\n", competency)
	for _, e := range excerpts {
		fmt.Fprintf(&b, "- %s\n", strings.TrimSpace(e))
	}

	raw, err := v.generator.GenerateContent(ctx, verifyPrompt, b.String())
	if err != nil {
		return false, err
	}

	cleaned := extractJSON(raw)
	if err := validateDocument(verifySchema, cleaned); err != nil {
		return false, fmt.Errorf("invalid verification response: %w", err)
	}

	var data map[string]any
	if err := json.Unmarshal([]byte(cleaned), &data); err != nil {
		return false, fmt.Errorf("parse verification response: %w", err)
	}

	ok := coerceBool(data["substantial"])
	v.logger.Debug("competency verified",
		zap.String("competency", competency),
		zap.Bool("substantial", ok),
		zap.String("reason", coerceString(data["reason"])),
	)
	return ok, nil
}

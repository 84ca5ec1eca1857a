package gemini

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/spigell/hh-screener/internal/embedding"
	"go.uber.org/zap"
	"google.golang.org/genai"
)

const (
	defaultEmbedModel = "text-embedding-004"
	// EmbedContent accepts at most this many contents per request
	embedBatchSize = 100
	// embedding inputs beyond this size are truncated server side anyway
	maxEmbedChars = 8000
)

type contentEmbedder interface {
	EmbedContent(ctx context.Context, model string, contents []*genai.Content, config *genai.EmbedContentConfig) (*genai.EmbedContentResponse, error)
}

// Embedder produces unit-length semantic vectors through the Gemini embedding API.
type Embedder struct {
	models contentEmbedder
	model  string
	logger *zap.Logger
}

var _ embedding.Embedder = (*Embedder)(nil)

func NewEmbedder(client *genai.Client, model string, logger *zap.Logger) (*Embedder, error) {
	if client == nil {
		return nil, errors.New("genai client is required")
	}
	return newEmbedder(client.Models, model, logger), nil
}

func newEmbedder(models contentEmbedder, model string, logger *zap.Logger) *Embedder {
	if logger == nil {
		logger = zap.NewNop()
	}
	if model = strings.TrimSpace(model); model == "" {
		model = defaultEmbedModel
	}
	return &Embedder{models: models, model: model, logger: logger}
}

func (e *Embedder) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, 0, len(texts))
	for start := 0; start < len(texts); start += embedBatchSize {
		end := min(start+embedBatchSize, len(texts))
		batch := texts[start:end]

		contents := make([]*genai.Content, 0, len(batch))
		for _, text := range batch {
			if len(text) > maxEmbedChars {
				text = text[:maxEmbedChars]
			}
			contents = append(contents, genai.NewContentFromText(text, genai.RoleUser))
		}

		resp, err := e.models.EmbedContent(ctx, e.model, contents, &genai.EmbedContentConfig{TaskType: "SEMANTIC_SIMILARITY"})
		if err != nil {
			return nil, fmt.Errorf("embed content: %w", err)
		}
		if resp == nil || len(resp.Embeddings) != len(batch) {
			got := 0
			if resp != nil {
				got = len(resp.Embeddings)
			}
			return nil, fmt.Errorf("%w: sent %d, got %d", embedding.ErrCountMismatch, len(batch), got)
		}

		for _, emb := range resp.Embeddings {
			if emb == nil || len(emb.Values) == 0 {
				return nil, errors.New("gemini returned an empty embedding")
			}
			vec := make([]float32, len(emb.Values))
			copy(vec, emb.Values)
			embedding.Normalize(vec)
			out = append(out, vec)
		}
	}

	e.logger.Debug("texts embedded", zap.String("model", e.model), zap.Int("texts", len(texts)))
	return out, nil
}

func (e *Embedder) Model() string {
	return e.model
}

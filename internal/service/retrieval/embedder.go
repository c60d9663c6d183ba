package retrieval

import (
	"context"
	"fmt"

	"github.com/sourcegraph/conc/iter"
	"google.golang.org/genai"
)

// Embedder turns text into vectors. Documents and queries share one vector space.
type Embedder interface {
	Name() string
	EmbedDocuments(ctx context.Context, texts []string) ([][]float32, error)
	EmbedQuery(ctx context.Context, text string) ([]float32, error)
}

// contentEmbedder is the part of *genai.Models used here.
type contentEmbedder interface {
	EmbedContent(ctx context.Context, model string, contents []*genai.Content, config *genai.EmbedContentConfig) (*genai.EmbedContentResponse, error)
}

type GeminiEmbedder struct {
	models  contentEmbedder
	model   string
	workers int
}

func NewGeminiEmbedder(client *genai.Client, model string, workers int) *GeminiEmbedder {
	return newGeminiEmbedder(client.Models, model, workers)
}

func newGeminiEmbedder(models contentEmbedder, model string, workers int) *GeminiEmbedder {
	if workers <= 0 {
		workers = 1
	}
	return &GeminiEmbedder{models: models, model: model, workers: workers}
}

func (g *GeminiEmbedder) Name() string { return "gemini:" + g.model }

func (g *GeminiEmbedder) EmbedDocuments(ctx context.Context, texts []string) ([][]float32, error) {
	mapper := iter.Mapper[string, []float32]{MaxGoroutines: g.workers}
	return mapper.MapErr(texts, func(text *string) ([]float32, error) {
		return g.EmbedQuery(ctx, *text)
	})
}

func (g *GeminiEmbedder) EmbedQuery(ctx context.Context, text string) ([]float32, error) {
	resp, err := g.models.EmbedContent(ctx, g.model, genai.Text(text), nil)
	if err != nil {
		return nil, fmt.Errorf("gemini embed: %w", err)
	}
	if resp == nil || len(resp.Embeddings) == 0 || resp.Embeddings[0] == nil {
		return nil, fmt.Errorf("gemini embed: empty response")
	}
	return resp.Embeddings[0].Values, nil
}

// featureExtractor is the part of the langchaingo HuggingFace client used here.
type featureExtractor interface {
	CreateEmbedding(ctx context.Context, inputTexts []string, model string, task string) ([][]float32, error)
}

// HuggingFaceEmbedder calls the feature-extraction pipeline (all-MiniLM-L6-v2 by default).
type HuggingFaceEmbedder struct {
	client featureExtractor
	model  string
}

func NewHuggingFaceEmbedder(client featureExtractor, model string) *HuggingFaceEmbedder {
	return &HuggingFaceEmbedder{client: client, model: model}
}

func (h *HuggingFaceEmbedder) Name() string { return "huggingface:" + h.model }

func (h *HuggingFaceEmbedder) EmbedDocuments(ctx context.Context, texts []string) ([][]float32, error) {
	vectors, err := h.client.CreateEmbedding(ctx, texts, h.model, "feature-extraction")
	if err != nil {
		return nil, fmt.Errorf("huggingface embed: %w", err)
	}
	if len(vectors) != len(texts) {
		return nil, fmt.Errorf("huggingface embed: got %d vectors for %d texts", len(vectors), len(texts))
	}
	return vectors, nil
}

func (h *HuggingFaceEmbedder) EmbedQuery(ctx context.Context, text string) ([]float32, error) {
	vectors, err := h.EmbedDocuments(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	return vectors[0], nil
}

package ai

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/huggingface"
	"go.uber.org/zap"
)

// HuggingFaceProvider calls the HuggingFace inference endpoint (Mistral-7B-Instruct by default).
// The endpoint has no JSON mode, so JSON requests carry the instruction in the prompt.
type HuggingFaceProvider struct {
	llm          llms.Model
	defaultModel string
	logger       *zap.Logger
}

func NewHuggingFaceLLM(token, model string) (*huggingface.LLM, error) {
	llm, err := huggingface.New(
		huggingface.WithToken(token),
		huggingface.WithModel(model),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create HuggingFace client: %w", err)
	}
	return llm, nil
}

func NewHuggingFaceProvider(llm llms.Model, defaultModel string, logger *zap.Logger) *HuggingFaceProvider {
	return &HuggingFaceProvider{
		llm:          llm,
		defaultModel: defaultModel,
		logger:       logger,
	}
}

func (h *HuggingFaceProvider) Name() string {
	return "HuggingFace"
}

func (h *HuggingFaceProvider) Generate(ctx context.Context, prompt string, preset ModelPreset, opts *GenerateOptions) (ProviderResult, error) {
	if h.llm == nil {
		return ProviderResult{}, fmt.Errorf("huggingface client not initialized")
	}

	modelName := modelOrDefault(opts, h.defaultModel)
	config := resolveConfig(preset, opts)

	if opts != nil && opts.JSONMode {
		prompt = prompt + "\n\n" + jsonSystemInstruction
	}

	h.logger.Debug("Generating with HuggingFace",
		zap.String("model", modelName),
		zap.String("preset", string(preset)),
	)

	text, err := llms.GenerateFromSinglePrompt(ctx, h.llm, prompt,
		llms.WithModel(modelName),
		llms.WithTemperature(float64(config.Temperature)),
		llms.WithTopP(float64(config.TopP)),
		llms.WithTopK(config.TopK),
		llms.WithMaxTokens(config.MaxOutputTokens),
	)
	if err != nil {
		h.logger.Error("HuggingFace generation failed", zap.Error(err))
		return ProviderResult{}, err
	}

	text = strings.TrimSpace(text)
	if text == "" {
		return ProviderResult{}, fmt.Errorf("empty response from HuggingFace")
	}

	return ProviderResult{Text: text, Model: modelName}, nil
}

func (h *HuggingFaceProvider) Ping(ctx context.Context) bool {
	if h.llm == nil {
		return false
	}

	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	_, err := llms.GenerateFromSinglePrompt(ctx, h.llm, "ping", llms.WithMaxTokens(5))
	if err != nil {
		h.logger.Debug("HuggingFace ping failed", zap.Error(err))
		return false
	}
	return true
}

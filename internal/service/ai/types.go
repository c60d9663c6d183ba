package ai

import "context"

// ModelPreset represents the model usage preset
type ModelPreset string

const (
	PresetCreative ModelPreset = "creative" // essays, replies
	PresetPrecise  ModelPreset = "precise"  // classification, JSON grading
	PresetBalanced ModelPreset = "balanced" // summaries
)

// Generator is what the demo services need from the hosted model layer.
type Generator interface {
	GenerateText(ctx context.Context, prompt string, preset ModelPreset, opts *GenerateOptions) (string, *GenerateMetadata, error)
	GenerateJSON(ctx context.Context, prompt string, preset ModelPreset, dest any, opts *GenerateOptions) (*GenerateMetadata, error)
}

// ModelConfig holds model configuration
type ModelConfig struct {
	Temperature      float32
	TopP             float32
	TopK             int
	MaxOutputTokens  int
	ResponseMimeType string // "application/json" or "text/plain"
}

type GenerateMetadata struct {
	Provider     string `json:"provider"`
	Model        string `json:"model"`
	UsedFallback bool   `json:"used_fallback"`
}

type GenerateOptions struct {
	Model     string
	JSONMode  bool
	Overrides *ModelConfig
}

func GetPresetConfig(preset ModelPreset) ModelConfig {
	switch preset {
	case PresetCreative:
		return ModelConfig{
			Temperature:     0.7,
			TopP:            0.95,
			TopK:            40,
			MaxOutputTokens: 2048,
		}
	case PresetPrecise:
		return ModelConfig{
			Temperature:     0.1,
			TopP:            0.9,
			TopK:            20,
			MaxOutputTokens: 1024,
		}
	case PresetBalanced:
		return ModelConfig{
			Temperature:     0.3,
			TopP:            0.95,
			TopK:            40,
			MaxOutputTokens: 4096,
		}
	default:
		return GetPresetConfig(PresetBalanced)
	}
}

// resolveConfig applies per-call overrides on top of the preset.
func resolveConfig(preset ModelPreset, opts *GenerateOptions) ModelConfig {
	config := GetPresetConfig(preset)
	if opts == nil {
		return config
	}

	if o := opts.Overrides; o != nil {
		if o.Temperature > 0 {
			config.Temperature = o.Temperature
		}
		if o.TopP > 0 {
			config.TopP = o.TopP
		}
		if o.TopK > 0 {
			config.TopK = o.TopK
		}
		if o.MaxOutputTokens > 0 {
			config.MaxOutputTokens = o.MaxOutputTokens
		}
	}
	if opts.JSONMode {
		config.ResponseMimeType = "application/json"
	}
	return config
}

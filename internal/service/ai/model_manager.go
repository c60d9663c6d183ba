package ai

import (
	"context"
	"encoding/json"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/kapu/ai-demo-hub/internal/constants"
	"github.com/kapu/ai-demo-hub/internal/metrics"
	"github.com/kapu/ai-demo-hub/internal/util"
	"github.com/kapu/ai-demo-hub/pkg/errors"
	"go.uber.org/zap"
)

var (
	statusCodeRegex = regexp.MustCompile(`\b(5\d{2})\b`)
	geminiCodeRegex = regexp.MustCompile(`"code":\s*(\d{3})`)
	openaiCodeRegex = regexp.MustCompile(`^(\d{3})\s`)
)

// ModelManager routes generation to the primary provider, retries once on the fallback
// and opens a circuit when the hosted models keep failing.
type ModelManager struct {
	primary        Provider
	fallback       Provider
	logger         *zap.Logger
	circuitBreaker *util.CircuitBreaker
}

type ModelManagerConfig struct {
	Primary  Provider
	Fallback Provider // optional
}

func NewModelManager(cfg ModelManagerConfig, logger *zap.Logger) (*ModelManager, error) {
	if cfg.Primary == nil {
		return nil, fmt.Errorf("primary model provider is required")
	}

	mm := &ModelManager{
		primary:  cfg.Primary,
		fallback: cfg.Fallback,
		logger:   logger,
	}

	if mm.fallback != nil {
		logger.Info("Model fallback enabled",
			zap.String("primary", mm.primary.Name()),
			zap.String("fallback", mm.fallback.Name()),
		)
	} else {
		logger.Info("Model fallback disabled", zap.String("primary", mm.primary.Name()))
	}

	mm.circuitBreaker = util.NewCircuitBreaker(
		"models",
		constants.CircuitBreakerConfig.FailureThreshold,
		constants.CircuitBreakerConfig.ResetTimeout,
		constants.CircuitBreakerConfig.HealthCheckInterval,
		mm.healthCheckPing,
		logger,
	)

	return mm, nil
}

func (mm *ModelManager) GenerateText(ctx context.Context, prompt string, preset ModelPreset, opts *GenerateOptions) (string, *GenerateMetadata, error) {
	var options GenerateOptions
	if opts != nil {
		options = *opts
	}
	return mm.generate(ctx, prompt, preset, &options)
}

func (mm *ModelManager) GenerateJSON(ctx context.Context, prompt string, preset ModelPreset, dest any, opts *GenerateOptions) (*GenerateMetadata, error) {
	var options GenerateOptions
	if opts != nil {
		options = *opts
	}
	options.JSONMode = true

	text, metadata, err := mm.generate(ctx, prompt, preset, &options)
	if err != nil {
		return nil, err
	}
	return mm.decodeJSON(text, metadata, dest)
}

func (mm *ModelManager) generate(ctx context.Context, prompt string, preset ModelPreset, opts *GenerateOptions) (string, *GenerateMetadata, error) {
	if !mm.circuitBreaker.CanExecute() {
		status := mm.circuitBreaker.GetStatus()
		nextRetry := "unknown"
		if status.NextRetryTime != nil {
			nextRetry = status.NextRetryTime.Format("15:04")
		}

		mm.logger.Error("AI service unavailable (Circuit OPEN)",
			zap.String("state", status.State.String()),
			zap.Int("failure_count", status.FailureCount),
			zap.String("next_retry", nextRetry),
		)

		return "", nil, errors.NewServiceError(
			fmt.Sprintf("The AI service is temporarily unavailable. Automatic retry at %s", nextRetry),
			"ai", "generate", nil)
	}

	primaryResult, primaryErr := mm.invoke(ctx, mm.primary, prompt, preset, opts)
	if primaryErr == nil {
		mm.circuitBreaker.RecordSuccess()
		return primaryResult.Text, &GenerateMetadata{
			Provider: mm.primary.Name(),
			Model:    primaryResult.Model,
		}, nil
	}

	if mm.fallback != nil {
		mm.logger.Warn("Primary provider failed, trying fallback",
			zap.String("primary", mm.primary.Name()),
			zap.Error(primaryErr),
		)

		fallbackResult, fallbackErr := mm.invoke(ctx, mm.fallback, prompt, preset, opts)
		if fallbackErr == nil {
			mm.circuitBreaker.RecordSuccess()
			return fallbackResult.Text, &GenerateMetadata{
				Provider:     mm.fallback.Name(),
				Model:        fallbackResult.Model,
				UsedFallback: true,
			}, nil
		}

		mm.recordFailure(primaryErr)
		mm.recordFailure(fallbackErr)

		if isServiceFailure(primaryErr) || isServiceFailure(fallbackErr) {
			return "", nil, errors.NewServiceError("The AI service is having trouble. Please try again shortly", "ai", "generate", fallbackErr)
		}
		return "", nil, fallbackErr
	}

	mm.recordFailure(primaryErr)

	if isServiceFailure(primaryErr) {
		return "", nil, errors.NewServiceError("The AI service is having trouble. Please try again shortly", "ai", "generate", primaryErr)
	}
	return "", nil, primaryErr
}

func (mm *ModelManager) invoke(ctx context.Context, provider Provider, prompt string, preset ModelPreset, opts *GenerateOptions) (ProviderResult, error) {
	result, err := provider.Generate(ctx, prompt, preset, opts)
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	metrics.ModelGenerations.WithLabelValues(provider.Name(), outcome).Inc()
	return result, err
}

// decodeJSON unmarshals a model reply, tolerating ``` fences and prose around the object.
func (mm *ModelManager) decodeJSON(text string, metadata *GenerateMetadata, dest any) (*GenerateMetadata, error) {
	cleaned := ExtractJSON(text)
	if cleaned == "" {
		return nil, fmt.Errorf("%s API returned empty response", metadata.Provider)
	}

	if err := json.Unmarshal([]byte(cleaned), dest); err != nil {
		mm.logger.Error("Failed to unmarshal JSON response",
			zap.String("provider", metadata.Provider),
			zap.Error(err),
			zap.String("response_preview", util.Preview(cleaned, constants.StringLimits.LogPreview)),
		)
		return nil, fmt.Errorf("invalid JSON from %s: %w", metadata.Provider, err)
	}

	return metadata, nil
}

// ExtractJSON strips markdown fences and any text outside the outermost JSON object.
func ExtractJSON(text string) string {
	cleaned := strings.TrimSpace(text)
	if strings.HasPrefix(cleaned, "```json") {
		cleaned = strings.TrimPrefix(cleaned, "```json")
	} else if strings.HasPrefix(cleaned, "```") {
		cleaned = strings.TrimPrefix(cleaned, "```")
	}
	cleaned = strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(cleaned), "```"))

	start := strings.Index(cleaned, "{")
	end := strings.LastIndex(cleaned, "}")
	if start >= 0 && end > start {
		cleaned = cleaned[start : end+1]
	}
	return strings.TrimSpace(cleaned)
}

func (mm *ModelManager) recordFailure(err error) {
	if err == nil || !isServiceFailure(err) {
		return
	}

	timeout := constants.CircuitBreakerConfig.ResetTimeout
	if isRateLimitError(err) {
		timeout = constants.CircuitBreakerConfig.RateLimitTimeout
	}

	mm.circuitBreaker.RecordFailure(timeout)
}

func (mm *ModelManager) healthCheckPing() bool {
	ctx, cancel := context.WithTimeout(context.Background(), constants.CircuitBreakerConfig.HealthCheckTimeout)
	defer cancel()

	primaryOK := mm.primary.Ping(ctx)
	fallbackOK := false
	if mm.fallback != nil {
		fallbackOK = mm.fallback.Ping(ctx)
	}

	mm.logger.Info("Health Check: Result",
		zap.Bool("primary", primaryOK),
		zap.Bool("fallback", fallbackOK),
	)

	return primaryOK || fallbackOK
}

func isServiceFailure(err error) bool {
	if err == nil {
		return false
	}

	msg := err.Error()

	if strings.Contains(msg, "timeout") || strings.Contains(msg, "ETIMEDOUT") || strings.Contains(msg, "deadline exceeded") {
		return true
	}

	if isRateLimitError(err) {
		return true
	}

	if statusCodeRegex.MatchString(msg) {
		return true
	}

	if code, ok := extractStatus(msg); ok {
		return code >= 500 && code < 600
	}

	return false
}

func isRateLimitError(err error) bool {
	if err == nil {
		return false
	}

	msg := err.Error()
	if strings.Contains(msg, "429") || strings.Contains(msg, "Rate limit") || strings.Contains(msg, "quota") {
		return true
	}

	code, ok := extractStatus(msg)
	return ok && code == 429
}

func extractStatus(msg string) (int, bool) {
	for _, re := range []*regexp.Regexp{geminiCodeRegex, openaiCodeRegex} {
		if matches := re.FindStringSubmatch(msg); len(matches) > 1 {
			if code, err := strconv.Atoi(matches[1]); err == nil {
				return code, true
			}
		}
	}
	return 0, false
}

func (mm *ModelManager) GetCircuitStatus() util.CircuitBreakerStatus {
	return mm.circuitBreaker.GetStatus()
}

func (mm *ModelManager) ResetCircuit() {
	mm.circuitBreaker.Reset()
}

// PrimaryName reports which provider answers first.
func (mm *ModelManager) PrimaryName() string {
	return mm.primary.Name()
}

var _ Generator = (*ModelManager)(nil)

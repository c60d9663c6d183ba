package ai

import (
	"context"
	stderrors "errors"
	"testing"

	"github.com/kapu/ai-demo-hub/internal/util"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakeProvider struct {
	name    string
	replies []string
	errs    []error
	calls   int
	prompts []string
	opts    []*GenerateOptions
}

func (f *fakeProvider) Name() string { return f.name }

func (f *fakeProvider) Generate(_ context.Context, prompt string, _ ModelPreset, opts *GenerateOptions) (ProviderResult, error) {
	i := f.calls
	f.calls++
	f.prompts = append(f.prompts, prompt)
	f.opts = append(f.opts, opts)
	if i < len(f.errs) && f.errs[i] != nil {
		return ProviderResult{}, f.errs[i]
	}
	reply := ""
	if i < len(f.replies) {
		reply = f.replies[i]
	}
	return ProviderResult{Text: reply, Model: f.name + "-model"}, nil
}

func (f *fakeProvider) Ping(context.Context) bool { return true }

func newManager(t *testing.T, primary, fallback Provider) *ModelManager {
	t.Helper()
	mm, err := NewModelManager(ModelManagerConfig{Primary: primary, Fallback: fallback}, zap.NewNop())
	require.NoError(t, err)
	return mm
}

func TestNewModelManagerRequiresPrimary(t *testing.T) {
	_, err := NewModelManager(ModelManagerConfig{}, zap.NewNop())
	assert.Error(t, err)
}

func TestGenerateTextUsesPrimary(t *testing.T) {
	primary := &fakeProvider{name: "Gemini", replies: []string{"hello"}}
	mm := newManager(t, primary, nil)

	text, meta, err := mm.GenerateText(context.Background(), "say hi", PresetCreative, nil)
	require.NoError(t, err)
	assert.Equal(t, "hello", text)
	assert.Equal(t, "Gemini", meta.Provider)
	assert.False(t, meta.UsedFallback)
	assert.False(t, primary.opts[0].JSONMode)
}

func TestGenerateTextFallsBack(t *testing.T) {
	primary := &fakeProvider{name: "HuggingFace", errs: []error{stderrors.New("503 Service Unavailable")}}
	fallback := &fakeProvider{name: "OpenAI", replies: []string{"from fallback"}}
	mm := newManager(t, primary, fallback)

	text, meta, err := mm.GenerateText(context.Background(), "p", PresetBalanced, nil)
	require.NoError(t, err)
	assert.Equal(t, "from fallback", text)
	assert.Equal(t, "OpenAI", meta.Provider)
	assert.True(t, meta.UsedFallback)
}

func TestGenerateJSONStripsFences(t *testing.T) {
	primary := &fakeProvider{name: "Gemini", replies: []string{"```json\n{\"feedback\": \"solid\", \"score\": 8}\n```"}}
	mm := newManager(t, primary, nil)

	var out struct {
		Feedback string `json:"feedback"`
		Score    int    `json:"score"`
	}
	meta, err := mm.GenerateJSON(context.Background(), "grade", PresetPrecise, &out, nil)
	require.NoError(t, err)
	assert.Equal(t, "Gemini", meta.Provider)
	assert.Equal(t, "solid", out.Feedback)
	assert.Equal(t, 8, out.Score)
	assert.True(t, primary.opts[0].JSONMode)
}

func TestGenerateJSONRejectsProse(t *testing.T) {
	primary := &fakeProvider{name: "Gemini", replies: []string{"I cannot grade this essay."}}
	mm := newManager(t, primary, nil)

	var out map[string]any
	_, err := mm.GenerateJSON(context.Background(), "grade", PresetPrecise, &out, nil)
	assert.ErrorContains(t, err, "invalid JSON from Gemini")
}

func TestCircuitOpensAfterRepeatedServiceFailures(t *testing.T) {
	failure := stderrors.New(`Error 500 {"code":500}`)
	primary := &fakeProvider{name: "Gemini", errs: []error{failure, failure, failure, failure}}
	mm := newManager(t, primary, nil)

	for i := 0; i < 3; i++ {
		_, _, err := mm.GenerateText(context.Background(), "p", PresetBalanced, nil)
		require.Error(t, err)
	}
	assert.Equal(t, util.CircuitStateOpen, mm.GetCircuitStatus().State)

	_, _, err := mm.GenerateText(context.Background(), "p", PresetBalanced, nil)
	assert.ErrorContains(t, err, "temporarily unavailable")
	assert.Equal(t, 3, primary.calls)

	mm.ResetCircuit()
	assert.Equal(t, util.CircuitStateClosed, mm.GetCircuitStatus().State)
}

func TestClientErrorsDoNotTripCircuit(t *testing.T) {
	badRequest := stderrors.New("400 Bad Request: invalid model")
	primary := &fakeProvider{name: "OpenAI", errs: []error{badRequest, badRequest, badRequest, badRequest}}
	mm := newManager(t, primary, nil)

	for i := 0; i < 4; i++ {
		_, _, err := mm.GenerateText(context.Background(), "p", PresetBalanced, nil)
		assert.ErrorIs(t, err, badRequest)
	}
	assert.Equal(t, util.CircuitStateClosed, mm.GetCircuitStatus().State)
}

func TestExtractJSON(t *testing.T) {
	assert.Equal(t, `{"a":1}`, ExtractJSON("Sure! Here it is:\n{\"a\":1}\nHope that helps."))
	assert.Equal(t, `{"a":1}`, ExtractJSON("```\n{\"a\":1}\n```"))
	assert.Equal(t, "", ExtractJSON("   "))
}

func TestErrorClassification(t *testing.T) {
	assert.True(t, isRateLimitError(stderrors.New("429 Too Many Requests")))
	assert.True(t, isServiceFailure(stderrors.New("context deadline exceeded")))
	assert.True(t, isServiceFailure(stderrors.New(`{"error":{"code":503}}`)))
	assert.False(t, isServiceFailure(stderrors.New(`{"error":{"code":400}}`)))
	assert.False(t, isServiceFailure(nil))
}

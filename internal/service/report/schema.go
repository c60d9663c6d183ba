package report

import (
	"encoding/json"
	"fmt"
	"math"
	"strings"

	"github.com/kapu/ai-demo-hub/internal/domain"
	"github.com/xeipuuv/gojsonschema"
)

var feedbackSchema = gojsonschema.NewGoLoader(map[string]any{
	"type":     "object",
	"required": []string{"feedback", "score"},
	"properties": map[string]any{
		"feedback": map[string]any{"type": "string", "minLength": 1},
		"score":    map[string]any{"type": "integer", "minimum": 0, "maximum": 10},
	},
})

var overallSchema = gojsonschema.NewGoLoader(map[string]any{
	"type":     "object",
	"required": []string{"feedback", "evaluation"},
	"properties": map[string]any{
		"feedback":   map[string]any{"type": "string", "minLength": 1},
		"evaluation": map[string]any{"type": "string", "enum": []string{"approved", "not approved"}},
	},
})

// feedbackReply keeps score as a number so 8.0 decodes as well as 8.
type feedbackReply struct {
	Feedback string      `json:"feedback"`
	Score    json.Number `json:"score"`
}

func (r feedbackReply) toFeedback() (*domain.Feedback, error) {
	score, err := r.Score.Float64()
	if err != nil {
		return nil, fmt.Errorf("score %q is not a number", r.Score)
	}
	if score != math.Trunc(score) || score < 0 || score > 10 {
		return nil, fmt.Errorf("score %v is not an integer between 0 and 10", score)
	}
	return &domain.Feedback{Feedback: r.Feedback, Score: int(score)}, nil
}

// decodeStrict validates raw JSON against schema before unmarshalling it into dest.
func decodeStrict(schema gojsonschema.JSONLoader, raw []byte, dest any) error {
	result, err := gojsonschema.Validate(schema, gojsonschema.NewBytesLoader(raw))
	if err != nil {
		return fmt.Errorf("validation error: %w", err)
	}

	if !result.Valid() {
		errs := make([]string, len(result.Errors()))
		for i, desc := range result.Errors() {
			errs[i] = desc.String()
		}
		return fmt.Errorf("model output failed validation: %s", strings.Join(errs, "; "))
	}

	return json.Unmarshal(raw, dest)
}

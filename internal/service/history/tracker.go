package history

import (
	"context"
	"time"

	"github.com/kapu/ai-demo-hub/internal/domain"
	"github.com/kapu/ai-demo-hub/internal/metrics"
	"go.uber.org/zap"
)

// Tracker records every demo invocation in metrics and, when enabled, in the run history.
type Tracker struct {
	recorder Recorder
	logger   *zap.Logger
}

func NewTracker(recorder Recorder, logger *zap.Logger) *Tracker {
	if recorder == nil {
		recorder = Noop{}
	}
	return &Tracker{recorder: recorder, logger: logger}
}

func (t *Tracker) Recorder() Recorder {
	return t.recorder
}

// Track never fails the caller: history write errors are logged only.
func (t *Tracker) Track(ctx context.Context, feature domain.Feature, source, input, output string, err error, started time.Time) {
	metrics.ObserveRun(string(feature), err, started)

	run := NewRun(feature, source, input, output, err, started)
	if recErr := t.recorder.Record(context.WithoutCancel(ctx), run); recErr != nil {
		t.logger.Warn("Failed to record run",
			zap.String("feature", string(feature)),
			zap.Error(recErr),
		)
	}
}

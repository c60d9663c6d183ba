package history

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/kapu/ai-demo-hub/internal/constants"
	"github.com/kapu/ai-demo-hub/internal/domain"
	"github.com/kapu/ai-demo-hub/internal/service/database"
	"github.com/kapu/ai-demo-hub/internal/util"
	"go.uber.org/zap"
)

// Recorder stores demo runs and lists recent ones.
type Recorder interface {
	Record(ctx context.Context, run *domain.Run) error
	Recent(ctx context.Context, feature domain.Feature, limit int) ([]domain.Run, error)
}

// NewRun builds the record for one invocation. err may be nil.
func NewRun(feature domain.Feature, source, input, output string, err error, started time.Time) *domain.Run {
	run := &domain.Run{
		Feature:   feature,
		Source:    source,
		Input:     input,
		Output:    output,
		Duration:  time.Since(started),
		CreatedAt: started,
	}
	if err != nil {
		run.Error = err.Error()
	}
	return run
}

type RunRepository struct {
	db     *sql.DB
	logger *zap.Logger
}

func NewRunRepository(postgres *database.PostgresService, logger *zap.Logger) *RunRepository {
	return &RunRepository{
		db:     postgres.GetDB(),
		logger: logger,
	}
}

func (r *RunRepository) Record(ctx context.Context, run *domain.Run) error {
	if run.ID == "" {
		run.ID = uuid.NewString()
	}
	if run.CreatedAt.IsZero() {
		run.CreatedAt = time.Now()
	}

	query := `
		INSERT INTO demo_runs (id, feature, source, input, output, error, duration_ms, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`
	_, err := r.db.ExecContext(ctx, query,
		run.ID,
		string(run.Feature),
		run.Source,
		util.TruncateString(run.Input, constants.StringLimits.HistoryPreview),
		util.TruncateString(run.Output, constants.StringLimits.HistoryPreview),
		run.Error,
		run.Duration.Milliseconds(),
		run.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert run: %w", err)
	}

	r.logger.Debug("Run recorded", zap.String("id", run.ID), zap.String("feature", string(run.Feature)))
	return nil
}

// Recent lists the newest runs first. An empty feature lists every feature.
func (r *RunRepository) Recent(ctx context.Context, feature domain.Feature, limit int) ([]domain.Run, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}

	query := `
		SELECT id, feature, source, input, output, error, duration_ms, created_at
		FROM demo_runs
		WHERE ($1 = '' OR feature = $1)
		ORDER BY created_at DESC
		LIMIT $2
	`
	rows, err := r.db.QueryContext(ctx, query, string(feature), limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query runs: %w", err)
	}
	defer rows.Close()

	runs := make([]domain.Run, 0, limit)
	for rows.Next() {
		var (
			run        domain.Run
			featureVal string
			durationMS int64
		)
		if err := rows.Scan(&run.ID, &featureVal, &run.Source, &run.Input, &run.Output, &run.Error, &durationMS, &run.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan run: %w", err)
		}
		run.Feature = domain.Feature(featureVal)
		run.Duration = time.Duration(durationMS) * time.Millisecond
		runs = append(runs, run)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate runs: %w", err)
	}
	return runs, nil
}

// Noop is used when history is disabled.
type Noop struct{}

func (Noop) Record(context.Context, *domain.Run) error { return nil }

func (Noop) Recent(context.Context, domain.Feature, int) ([]domain.Run, error) {
	return []domain.Run{}, nil
}

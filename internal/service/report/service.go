package report

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/kapu/ai-demo-hub/internal/constants"
	"github.com/kapu/ai-demo-hub/internal/domain"
	"github.com/kapu/ai-demo-hub/internal/prompt"
	"github.com/kapu/ai-demo-hub/internal/service/ai"
	"github.com/kapu/ai-demo-hub/internal/util"
	"github.com/kapu/ai-demo-hub/pkg/errors"
	"github.com/sourcegraph/conc/pool"
	"go.uber.org/zap"
)

// Node names, in execution order.
const (
	NodeEssay     = "essay_generator"
	NodeDepth     = "depth_feedback"
	NodeGrammar   = "grammar_feedback"
	NodeStructure = "structure_feedback"
	NodeOverall   = "overall_feedback"
)

type Config struct {
	// ParallelFeedback runs the three graders concurrently. The result is identical to the
	// sequential order since each grader reads only topic and essay.
	ParallelFeedback bool
}

// Service drives the essay → depth → grammar → structure → overall pipeline.
type Service struct {
	generator ai.Generator
	prompts   *prompt.Prompts
	cfg       Config
	logger    *zap.Logger
}

func NewService(generator ai.Generator, prompts *prompt.Prompts, cfg Config, logger *zap.Logger) *Service {
	return &Service{
		generator: generator,
		prompts:   prompts,
		cfg:       cfg,
		logger:    logger,
	}
}

type grader struct {
	node   string
	aspect prompt.FeedbackAspect
	target func(*domain.Report) **domain.Feedback
}

var graders = []grader{
	{NodeDepth, prompt.AspectDepth, func(r *domain.Report) **domain.Feedback { return &r.Depth }},
	{NodeGrammar, prompt.AspectGrammar, func(r *domain.Report) **domain.Feedback { return &r.Grammar }},
	{NodeStructure, prompt.AspectStructure, func(r *domain.Report) **domain.Feedback { return &r.Structure }},
}

func (s *Service) Generate(ctx context.Context, topic string) (*domain.Report, error) {
	topic = strings.TrimSpace(topic)
	if topic == "" {
		return nil, errors.NewValidationError("Please enter a topic to generate a report.", "topic", topic)
	}
	if len([]rune(topic)) > constants.AIInputLimits.MaxTopicLength {
		return nil, errors.NewValidationError(
			fmt.Sprintf("Topics are limited to %d characters.", constants.AIInputLimits.MaxTopicLength), "topic", len(topic))
	}

	started := time.Now()
	report := &domain.Report{Topic: topic}

	if err := s.writeEssay(ctx, report); err != nil {
		return nil, err
	}

	if s.cfg.ParallelFeedback {
		if err := s.gradeParallel(ctx, report); err != nil {
			return nil, err
		}
	} else {
		for _, g := range graders {
			fb, err := s.grade(ctx, g, report.Topic, report.Essay)
			if err != nil {
				return nil, err
			}
			*g.target(report) = fb
		}
	}

	report.AvgScore = AverageScore(report.Depth, report.Grammar, report.Structure)

	if err := s.overall(ctx, report); err != nil {
		return nil, err
	}

	s.logger.Info("Report generated",
		zap.String("topic", topic),
		zap.Float64("avg_score", report.AvgScore),
		zap.String("evaluation", string(report.Overall.Evaluation)),
		zap.Duration("elapsed", time.Since(started)),
	)
	return report, nil
}

func (s *Service) writeEssay(ctx context.Context, report *domain.Report) error {
	essay, _, err := s.generator.GenerateText(ctx, s.prompts.Essay(prompt.EssayVars{Topic: report.Topic}), ai.PresetCreative, nil)
	if err != nil {
		return nodeError(NodeEssay, err)
	}
	report.Essay = strings.TrimSpace(essay)
	if report.Essay == "" {
		return nodeError(NodeEssay, fmt.Errorf("model returned an empty essay"))
	}
	return nil
}

func (s *Service) gradeParallel(ctx context.Context, report *domain.Report) error {
	results := make([]*domain.Feedback, len(graders))

	p := pool.New().WithContext(ctx).WithCancelOnError().WithMaxGoroutines(len(graders))
	for idx, g := range graders {
		p.Go(func(ctx context.Context) error {
			fb, err := s.grade(ctx, g, report.Topic, report.Essay)
			if err != nil {
				return err
			}
			results[idx] = fb
			return nil
		})
	}
	if err := p.Wait(); err != nil {
		return err
	}

	for idx, g := range graders {
		*g.target(report) = results[idx]
	}
	return nil
}

func (s *Service) grade(ctx context.Context, g grader, topic, essay string) (*domain.Feedback, error) {
	text := s.prompts.Feedback(prompt.FeedbackVars{Aspect: g.aspect, Topic: topic, Essay: essay})

	var raw json.RawMessage
	if _, err := s.generator.GenerateJSON(ctx, text, ai.PresetPrecise, &raw, nil); err != nil {
		return nil, nodeError(g.node, err)
	}

	var reply feedbackReply
	if err := decodeStrict(feedbackSchema, raw, &reply); err != nil {
		return nil, nodeError(g.node, err)
	}
	fb, err := reply.toFeedback()
	if err != nil {
		return nil, nodeError(g.node, err)
	}
	return fb, nil
}

func (s *Service) overall(ctx context.Context, report *domain.Report) error {
	text := s.prompts.Overall(prompt.OverallVars{
		Topic:             report.Topic,
		Essay:             report.Essay,
		DepthFeedback:     report.Depth.Feedback,
		GrammarFeedback:   report.Grammar.Feedback,
		StructureFeedback: report.Structure.Feedback,
		AvgScore:          strconv.FormatFloat(report.AvgScore, 'f', -1, 64),
	})

	var raw json.RawMessage
	if _, err := s.generator.GenerateJSON(ctx, text, ai.PresetPrecise, &raw, nil); err != nil {
		return nodeError(NodeOverall, err)
	}

	var overall domain.OverallFeedback
	if err := decodeStrict(overallSchema, raw, &overall); err != nil {
		return nodeError(NodeOverall, err)
	}
	report.Overall = &overall
	return nil
}

// AverageScore is the mean of the three grader scores rounded to two decimals.
func AverageScore(depth, grammar, structure *domain.Feedback) float64 {
	return util.RoundTo(util.Mean(float64(depth.Score), float64(grammar.Score), float64(structure.Score)), 2)
}

func nodeError(node string, err error) error {
	return errors.NewServiceError(fmt.Sprintf("report pipeline failed at %s", node), "report", node, err)
}

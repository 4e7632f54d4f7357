package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/noah-isme/hackjudge/internal/models"
	"github.com/noah-isme/hackjudge/internal/observability"
	"github.com/noah-isme/hackjudge/internal/repository"
	"github.com/noah-isme/hackjudge/pkg/ai"
	"github.com/noah-isme/hackjudge/pkg/sources"
)

const applyTimeout = 5 * time.Second

// ErrEvaluatorUnavailable is recorded when no AI evaluator is configured.
var ErrEvaluatorUnavailable = errors.New("evaluator unavailable")

// RepositoryReader fetches the README of a project repository.
type RepositoryReader interface {
	ReadREADME(ctx context.Context, link string) (string, error)
}

// VideoDescriber resolves the title and description of a demo video.
type VideoDescriber interface {
	Inspect(ctx context.Context, link string) (sources.VideoSummary, error)
}

// ModelDescriber is implemented by evaluators that can name their backend.
type ModelDescriber interface {
	Provider() string
	Model() string
}

// EvaluationService moves a NEW submission to its single terminal status.
type EvaluationService interface {
	Evaluate(ctx context.Context, submissionID uint) error
	MarkFailed(ctx context.Context, submissionID uint, reason string) error
}

type evaluationService struct {
	submissions repository.SubmissionRepository
	evaluator   ai.Evaluator
	readme      RepositoryReader
	video       VideoDescriber
	dashboard   DashboardService
	timeout     time.Duration
	logger      zerolog.Logger
	tracer      trace.Tracer
	now         func() time.Time
}

// EvaluationDeps groups the collaborators of the evaluation service.
type EvaluationDeps struct {
	Submissions repository.SubmissionRepository
	Evaluator   ai.Evaluator
	Readme      RepositoryReader
	Video       VideoDescriber
	Dashboard   DashboardService
	// Timeout bounds one evaluation including collection. Zero means no bound.
	Timeout time.Duration
}

// NewEvaluationService builds the evaluator pipeline.
func NewEvaluationService(deps EvaluationDeps, logger zerolog.Logger) EvaluationService {
	return &evaluationService{
		submissions: deps.Submissions,
		evaluator:   deps.Evaluator,
		readme:      deps.Readme,
		video:       deps.Video,
		dashboard:   deps.Dashboard,
		timeout:     deps.Timeout,
		logger:      logger.With().Str("component", "evaluation_service").Logger(),
		tracer:      otel.Tracer("github.com/noah-isme/hackjudge/internal/service/evaluation"),
		now:         func() time.Time { return time.Now().UTC() },
	}
}

func (s *evaluationService) Evaluate(parent context.Context, submissionID uint) error {
	ctx, span := s.tracer.Start(parent, "evaluations.run", trace.WithAttributes(
		attribute.Int("submission.id", int(submissionID)),
	))
	defer span.End()

	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	submission, err := s.submissions.GetByID(ctx, submissionID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			s.logger.Warn().Uint("submission_id", submissionID).Msg("evaluation requested for unknown submission")
			return nil
		}
		span.RecordError(err)
		return err
	}
	if !submission.IsPending() {
		s.logger.Debug().Uint("submission_id", submissionID).Str("status", submission.Status).Msg("submission already evaluated")
		return nil
	}

	update := s.run(ctx, submission)
	if update.Status == models.SubmissionStatusAIError {
		span.SetStatus(codes.Error, "evaluation failed")
	}

	// The outcome is written even when the evaluation deadline has passed.
	writeCtx, cancelWrite := context.WithTimeout(context.WithoutCancel(ctx), applyTimeout)
	defer cancelWrite()
	return s.apply(writeCtx, submission.HackathonID, submissionID, update)
}

func (s *evaluationService) MarkFailed(ctx context.Context, submissionID uint, reason string) error {
	submission, err := s.submissions.GetByID(ctx, submissionID)
	if err != nil {
		return err
	}
	justification := strings.TrimSpace(reason)
	update := repository.EvaluationUpdate{
		Status:        models.SubmissionStatusAIError,
		Justification: &justification,
		Meta:          datatypes.JSONMap{"error": justification},
	}
	return s.apply(ctx, submission.HackathonID, submissionID, update)
}

func (s *evaluationService) observeLatency(started time.Time, err error) {
	provider := "unknown"
	if describer, ok := s.evaluator.(ModelDescriber); ok {
		provider = describer.Provider()
	}
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	observability.EvaluatorLatency().WithLabelValues(provider, outcome).Observe(time.Since(started).Seconds())
}

func (s *evaluationService) run(ctx context.Context, submission models.Submission) repository.EvaluationUpdate {
	if s.evaluator == nil {
		return failure(fmt.Sprintf("AI evaluation failed: %s", ErrEvaluatorUnavailable))
	}

	input, err := s.collect(ctx, submission)
	if err != nil {
		s.logger.Warn().Err(err).Uint("submission_id", submission.ID).Msg("failed to collect project data")
		return failure(fmt.Sprintf("Failed to communicate with evaluation services: %s", err))
	}

	started := time.Now()
	result, err := s.evaluator.Evaluate(ctx, input)
	s.observeLatency(started, err)
	if err != nil {
		var formatErr *ai.FormatError
		if errors.As(err, &formatErr) {
			return failure(fmt.Sprintf("AI returned invalid format. Response: %s", formatErr.Reply))
		}
		s.logger.Warn().Err(err).Uint("submission_id", submission.ID).Msg("ai evaluation failed")
		return failure(fmt.Sprintf("AI evaluation failed: %s", err))
	}

	justification := plainText(result.Justification)
	meta := datatypes.JSONMap{"decision": result.Decision}
	if describer, ok := s.evaluator.(ModelDescriber); ok {
		meta["provider"] = describer.Provider()
		meta["model"] = describer.Model()
	}
	if usage, ok := result.Raw["usage"]; ok {
		meta["usage"] = usage
	}

	status := models.SubmissionStatusAIError
	switch {
	case !result.IsDecisive():
		justification = fmt.Sprintf("%s (Note: Unclear decision: %s)", justification, result.Decision)
	case result.Decision == ai.DecisionAccepted:
		status = models.SubmissionStatusAIAccepted
	default:
		status = models.SubmissionStatusAIRejected
	}

	return repository.EvaluationUpdate{
		Status:          status,
		ScoreInnovation: result.ScoreInnovation,
		ScoreImpact:     result.ScoreImpact,
		Justification:   &justification,
		Meta:            meta,
	}
}

func (s *evaluationService) collect(ctx context.Context, submission models.Submission) (ai.EvaluationInput, error) {
	input := ai.EvaluationInput{
		Criteria:    submission.Hackathon.EffectiveCriteria(),
		ProjectName: submission.ProjectName,
	}

	if s.readme != nil {
		readme, err := s.readme.ReadREADME(ctx, submission.GithubLink)
		if err != nil {
			return ai.EvaluationInput{}, fmt.Errorf("could not fetch README: %w", err)
		}
		input.Readme = readme
	}

	if s.video != nil {
		summary, err := s.video.Inspect(ctx, submission.VideoLink)
		if err != nil {
			return ai.EvaluationInput{}, fmt.Errorf("could not process video link: %w", err)
		}
		input.VideoTitle = summary.Title
		input.VideoDescription = summary.Description
	}

	return input, nil
}

func (s *evaluationService) apply(ctx context.Context, hackathonID, submissionID uint, update repository.EvaluationUpdate) error {
	update.EvaluatedAt = s.now()
	if err := s.submissions.ApplyEvaluation(ctx, submissionID, update); err != nil {
		if errors.Is(err, repository.ErrSubmissionAlreadyEvaluated) {
			s.logger.Debug().Uint("submission_id", submissionID).Msg("evaluation discarded, submission already decided")
			return nil
		}
		return err
	}

	observability.EvaluationsTotal().WithLabelValues(update.Status).Inc()
	if s.dashboard != nil {
		s.dashboard.Invalidate(ctx, hackathonID)
	}

	s.logger.Info().
		Uint("submission_id", submissionID).
		Str("status", update.Status).
		Msg("submission evaluated")
	return nil
}

func failure(reason string) repository.EvaluationUpdate {
	return repository.EvaluationUpdate{
		Status:        models.SubmissionStatusAIError,
		Justification: &reason,
		Meta:          datatypes.JSONMap{"error": reason},
	}
}

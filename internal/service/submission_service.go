package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"gorm.io/gorm"

	"github.com/noah-isme/hackjudge/internal/dto"
	"github.com/noah-isme/hackjudge/internal/models"
	"github.com/noah-isme/hackjudge/internal/observability"
	"github.com/noah-isme/hackjudge/internal/repository"
)

const defaultProjectName = "Untitled"

// MissingFieldsError lists required submission fields that were absent or empty.
type MissingFieldsError struct {
	Fields []string
}

func (e *MissingFieldsError) Error() string {
	return fmt.Sprintf("Missing required fields: %s", strings.Join(e.Fields, ", "))
}

// SubmissionService accepts projects into a hackathon.
type SubmissionService interface {
	Submit(ctx context.Context, payload dto.SubmissionCreateRequest) (dto.SubmissionCreateResponse, error)
}

type submissionService struct {
	hackathons  repository.HackathonRepository
	submissions repository.SubmissionRepository
	evaluations EvaluationService
	dispatcher  Dispatcher
	dashboard   DashboardService
	validator   *validator.Validate
	logger      zerolog.Logger
	tracer      trace.Tracer
}

// NewSubmissionService constructs the submission intake.
func NewSubmissionService(
	hackathons repository.HackathonRepository,
	submissions repository.SubmissionRepository,
	evaluations EvaluationService,
	dispatcher Dispatcher,
	dashboard DashboardService,
	validate *validator.Validate,
	logger zerolog.Logger,
) SubmissionService {
	return &submissionService{
		hackathons:  hackathons,
		submissions: submissions,
		evaluations: evaluations,
		dispatcher:  dispatcher,
		dashboard:   dashboard,
		validator:   validate,
		logger:      logger.With().Str("component", "submission_service").Logger(),
		tracer:      otel.Tracer("github.com/noah-isme/hackjudge/internal/service/submission"),
	}
}

func (s *submissionService) Submit(ctx context.Context, payload dto.SubmissionCreateRequest) (dto.SubmissionCreateResponse, error) {
	if missing := missingFields(payload); len(missing) > 0 {
		return dto.SubmissionCreateResponse{}, &MissingFieldsError{Fields: missing}
	}

	hackathonID, err := ParseHackathonID(payload.HackathonID)
	if err != nil {
		return dto.SubmissionCreateResponse{}, err
	}

	ctx, span := s.tracer.Start(ctx, "submissions.create", trace.WithAttributes(
		attribute.Int("hackathon.id", int(hackathonID)),
	))
	defer span.End()

	if _, err := s.hackathons.GetByID(ctx, hackathonID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.SubmissionCreateResponse{}, ErrHackathonNotFound
		}
		return dto.SubmissionCreateResponse{}, err
	}

	payload.GithubLink = strings.TrimSpace(payload.GithubLink)
	payload.VideoLink = strings.TrimSpace(payload.VideoLink)
	if err := s.validator.Struct(payload); err != nil {
		return dto.SubmissionCreateResponse{}, err
	}

	projectName := plainText(payload.ProjectName)
	if projectName == "" {
		projectName = defaultProjectName
	}

	submission := models.Submission{
		HackathonID: hackathonID,
		ProjectName: projectName,
		GithubLink:  payload.GithubLink,
		VideoLink:   payload.VideoLink,
		Status:      models.SubmissionStatusNew,
	}
	if err := s.submissions.Create(ctx, &submission); err != nil {
		span.RecordError(err)
		return dto.SubmissionCreateResponse{}, err
	}
	s.dashboard.Invalidate(ctx, hackathonID)

	mode := s.dispatcher.Mode()
	if err := s.dispatcher.Dispatch(ctx, submission.ID); err != nil {
		span.RecordError(err)
		s.logger.Error().Err(err).Uint("submission_id", submission.ID).Str("dispatch", mode).Msg("failed to dispatch evaluation")
		if markErr := s.evaluations.MarkFailed(ctx, submission.ID, fmt.Sprintf("Failed to communicate with evaluation services: %s", err)); markErr != nil {
			s.logger.Error().Err(markErr).Uint("submission_id", submission.ID).Msg("failed to record dispatch failure")
		}
	}
	observability.SubmissionsTotal().WithLabelValues(mode).Inc()

	status := submission.Status
	if stored, err := s.submissions.GetByID(ctx, submission.ID); err == nil {
		status = stored.Status
	}

	s.logger.Info().
		Uint("submission_id", submission.ID).
		Uint("hackathon_id", hackathonID).
		Str("status", status).
		Msg("submission stored")

	return dto.SubmissionCreateResponse{
		Message:      "Project submitted successfully!",
		SubmissionID: submission.ID,
		Status:       status,
	}, nil
}

func missingFields(payload dto.SubmissionCreateRequest) []string {
	var missing []string
	switch strings.TrimSpace(string(payload.HackathonID)) {
	case "", "null", `""`, "0":
		missing = append(missing, "hackathon_id")
	}
	if strings.TrimSpace(payload.GithubLink) == "" {
		missing = append(missing, "github_link")
	}
	if strings.TrimSpace(payload.VideoLink) == "" {
		missing = append(missing, "video_link")
	}
	return missing
}

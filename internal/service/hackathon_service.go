package service

import (
	"context"
	"encoding/json"
	"errors"
	"math"
	"regexp"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"gorm.io/gorm"

	"github.com/noah-isme/hackjudge/internal/dto"
	"github.com/noah-isme/hackjudge/internal/models"
	"github.com/noah-isme/hackjudge/internal/repository"
)

// ErrHackathonNotFound indicates the hackathon id does not exist.
var ErrHackathonNotFound = errors.New("hackathon not found")

// ErrInvalidHackathonIDFormat indicates the id is not an integer.
var ErrInvalidHackathonIDFormat = errors.New("invalid hackathon id format")

// ErrJudgeIDRequired indicates a listing without a judge id.
var ErrJudgeIDRequired = errors.New("judge id is required")

// ErrHackathonForbidden indicates the caller does not own the hackathon.
var ErrHackathonForbidden = errors.New("hackathon belongs to another judge")

// ErrHackathonNameRequired indicates the name is empty after sanitisation.
var ErrHackathonNameRequired = errors.New("hackathon name and judge id are required")

// HackathonService is the hackathon registry.
type HackathonService interface {
	Create(ctx context.Context, payload dto.HackathonCreateRequest) (dto.HackathonResponse, error)
	ListByJudge(ctx context.Context, judgeID string) ([]dto.HackathonResponse, error)
	Verify(ctx context.Context, rawID json.RawMessage) (dto.HackathonResponse, error)
	GetCriteria(ctx context.Context, id uint) (string, error)
	UpdateCriteria(ctx context.Context, id uint, judgeID string, payload dto.CriteriaUpdateRequest) error
}

type hackathonService struct {
	repo            repository.HackathonRepository
	validator       *validator.Validate
	logger          zerolog.Logger
	tracer          trace.Tracer
	defaultCriteria string
}

// NewHackathonService constructs the registry service. An empty
// defaultCriteria falls back to models.DefaultCriteria.
func NewHackathonService(repo repository.HackathonRepository, validate *validator.Validate, defaultCriteria string, logger zerolog.Logger) HackathonService {
	if strings.TrimSpace(defaultCriteria) == "" {
		defaultCriteria = models.DefaultCriteria
	}
	return &hackathonService{
		repo:            repo,
		validator:       validate,
		logger:          logger.With().Str("component", "hackathon_service").Logger(),
		tracer:          otel.Tracer("github.com/noah-isme/hackjudge/internal/service/hackathon"),
		defaultCriteria: defaultCriteria,
	}
}

func (s *hackathonService) Create(ctx context.Context, payload dto.HackathonCreateRequest) (dto.HackathonResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.HackathonResponse{}, err
	}

	ctx, span := s.tracer.Start(ctx, "hackathons.create", trace.WithAttributes(
		attribute.String("hackathon.judge_id", payload.JudgeID),
	))
	defer span.End()

	name := plainText(payload.Name)
	judgeID := strings.TrimSpace(payload.JudgeID)
	if name == "" || judgeID == "" {
		return dto.HackathonResponse{}, ErrHackathonNameRequired
	}

	criteria := s.defaultCriteria
	if payload.Criteria != nil {
		if cleaned := plainText(*payload.Criteria); cleaned != "" {
			criteria = cleaned
		}
	}

	hackathon := models.Hackathon{
		Name:     name,
		JudgeID:  judgeID,
		Criteria: criteria,
	}
	if err := s.repo.Create(ctx, &hackathon); err != nil {
		span.RecordError(err)
		return dto.HackathonResponse{}, err
	}

	s.logger.Info().Uint("hackathon_id", hackathon.ID).Str("judge_id", judgeID).Msg("hackathon created")
	return dto.NewHackathonResponse(hackathon), nil
}

func (s *hackathonService) ListByJudge(ctx context.Context, judgeID string) ([]dto.HackathonResponse, error) {
	judgeID = strings.TrimSpace(judgeID)
	if judgeID == "" {
		return nil, ErrJudgeIDRequired
	}

	items, err := s.repo.ListByJudge(ctx, judgeID)
	if err != nil {
		return nil, err
	}
	return dto.NewHackathonResponses(items), nil
}

func (s *hackathonService) Verify(ctx context.Context, rawID json.RawMessage) (dto.HackathonResponse, error) {
	id, err := ParseHackathonID(rawID)
	if err != nil {
		return dto.HackathonResponse{}, err
	}

	hackathon, err := s.find(ctx, id)
	if err != nil {
		return dto.HackathonResponse{}, err
	}
	return dto.NewHackathonResponse(hackathon), nil
}

func (s *hackathonService) GetCriteria(ctx context.Context, id uint) (string, error) {
	hackathon, err := s.find(ctx, id)
	if err != nil {
		return "", err
	}
	return hackathon.EffectiveCriteria(), nil
}

func (s *hackathonService) UpdateCriteria(ctx context.Context, id uint, judgeID string, payload dto.CriteriaUpdateRequest) error {
	if err := s.validator.Struct(payload); err != nil {
		return err
	}

	hackathon, err := s.find(ctx, id)
	if err != nil {
		return err
	}
	if judgeID != "" && judgeID != hackathon.JudgeID {
		return ErrHackathonForbidden
	}

	criteria := plainText(payload.CriteriaText)
	if criteria == "" {
		criteria = s.defaultCriteria
	}

	if err := s.repo.UpdateCriteria(ctx, id, criteria); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrHackathonNotFound
		}
		return err
	}

	s.logger.Info().Uint("hackathon_id", id).Msg("criteria updated")
	return nil
}

func (s *hackathonService) find(ctx context.Context, id uint) (models.Hackathon, error) {
	if id == 0 {
		return models.Hackathon{}, ErrHackathonNotFound
	}
	hackathon, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.Hackathon{}, ErrHackathonNotFound
		}
		return models.Hackathon{}, err
	}
	return hackathon, nil
}

var integralIDPattern = regexp.MustCompile(`^[+-]?[0-9]+(\.0+)?$`)

// ParseHackathonID accepts a JSON integer or a string holding one. Integral
// floats such as 42.0 are accepted; anything else is a format error.
// Well-formed ids that cannot exist (zero or negative) map to
// ErrHackathonNotFound.
func ParseHackathonID(raw json.RawMessage) (uint, error) {
	trimmed := strings.TrimSpace(string(raw))
	if trimmed == "" || trimmed == "null" {
		return 0, ErrInvalidHackathonIDFormat
	}

	if strings.HasPrefix(trimmed, `"`) {
		var text string
		if err := json.Unmarshal([]byte(trimmed), &text); err != nil {
			return 0, ErrInvalidHackathonIDFormat
		}
		trimmed = strings.TrimSpace(text)
	}

	if !integralIDPattern.MatchString(trimmed) {
		return 0, ErrInvalidHackathonIDFormat
	}
	if dot := strings.IndexByte(trimmed, '.'); dot >= 0 {
		trimmed = trimmed[:dot]
	}
	value, err := strconv.ParseInt(trimmed, 10, 64)
	if err != nil {
		return 0, ErrHackathonNotFound
	}

	if value <= 0 || uint64(value) > math.MaxUint32 {
		return 0, ErrHackathonNotFound
	}
	return uint(value), nil
}

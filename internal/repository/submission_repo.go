package repository

import (
	"context"
	"errors"
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/noah-isme/hackjudge/internal/models"
)

// ErrSubmissionAlreadyEvaluated is returned when an evaluation is applied to
// a submission that has already left the NEW state.
var ErrSubmissionAlreadyEvaluated = errors.New("submission already evaluated")

// EvaluationUpdate is the single mutation the evaluator performs on a submission.
type EvaluationUpdate struct {
	Status          string
	ScoreInnovation *float64
	ScoreImpact     *float64
	Justification   *string
	Meta            datatypes.JSONMap
	EvaluatedAt     time.Time
}

// SubmissionRepository defines data operations for submissions.
type SubmissionRepository interface {
	Create(ctx context.Context, submission *models.Submission) error
	GetByID(ctx context.Context, id uint) (models.Submission, error)
	ListByHackathon(ctx context.Context, hackathonID uint) ([]models.Submission, error)
	ApplyEvaluation(ctx context.Context, id uint, update EvaluationUpdate) error
}

type submissionRepository struct {
	db *gorm.DB
}

// NewSubmissionRepository instantiates the repository.
func NewSubmissionRepository(db *gorm.DB) SubmissionRepository {
	return &submissionRepository{db: db}
}

func (r *submissionRepository) Create(ctx context.Context, submission *models.Submission) error {
	return r.db.WithContext(ctx).Omit("Hackathon").Create(submission).Error
}

func (r *submissionRepository) GetByID(ctx context.Context, id uint) (models.Submission, error) {
	var submission models.Submission
	if err := r.db.WithContext(ctx).Preload("Hackathon").First(&submission, id).Error; err != nil {
		return models.Submission{}, err
	}
	return submission, nil
}

func (r *submissionRepository) ListByHackathon(ctx context.Context, hackathonID uint) ([]models.Submission, error) {
	var submissions []models.Submission
	if err := r.db.WithContext(ctx).
		Where("hackathon_id = ?", hackathonID).
		Order("id DESC").
		Find(&submissions).Error; err != nil {
		return nil, err
	}
	return submissions, nil
}

// ApplyEvaluation only touches rows still in NEW, so concurrent evaluators
// cannot both decide the same submission.
func (r *submissionRepository) ApplyEvaluation(ctx context.Context, id uint, update EvaluationUpdate) error {
	if !models.IsTerminalStatus(update.Status) {
		return errors.New("evaluation status must be terminal")
	}

	evaluatedAt := update.EvaluatedAt
	if evaluatedAt.IsZero() {
		evaluatedAt = time.Now().UTC()
	}

	result := r.db.WithContext(ctx).
		Model(&models.Submission{}).
		Where("id = ? AND status = ?", id, models.SubmissionStatusNew).
		Updates(map[string]interface{}{
			"status":           update.Status,
			"score_innovation": update.ScoreInnovation,
			"score_impact":     update.ScoreImpact,
			"justification":    update.Justification,
			"evaluation_meta":  update.Meta,
			"evaluated_at":     evaluatedAt,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 1 {
		return nil
	}

	var count int64
	if err := r.db.WithContext(ctx).Model(&models.Submission{}).Where("id = ?", id).Count(&count).Error; err != nil {
		return err
	}
	if count == 0 {
		return gorm.ErrRecordNotFound
	}
	return ErrSubmissionAlreadyEvaluated
}

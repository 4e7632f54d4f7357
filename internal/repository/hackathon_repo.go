package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/noah-isme/hackjudge/internal/models"
)

// HackathonRepository defines data operations for hackathons.
type HackathonRepository interface {
	Create(ctx context.Context, hackathon *models.Hackathon) error
	GetByID(ctx context.Context, id uint) (models.Hackathon, error)
	ListByJudge(ctx context.Context, judgeID string) ([]models.Hackathon, error)
	UpdateCriteria(ctx context.Context, id uint, criteria string) error
}

type hackathonRepository struct {
	db *gorm.DB
}

// NewHackathonRepository instantiates the repository.
func NewHackathonRepository(db *gorm.DB) HackathonRepository {
	return &hackathonRepository{db: db}
}

func (r *hackathonRepository) Create(ctx context.Context, hackathon *models.Hackathon) error {
	return r.db.WithContext(ctx).Create(hackathon).Error
}

func (r *hackathonRepository) GetByID(ctx context.Context, id uint) (models.Hackathon, error) {
	var hackathon models.Hackathon
	if err := r.db.WithContext(ctx).First(&hackathon, id).Error; err != nil {
		return models.Hackathon{}, err
	}
	return hackathon, nil
}

func (r *hackathonRepository) ListByJudge(ctx context.Context, judgeID string) ([]models.Hackathon, error) {
	var hackathons []models.Hackathon
	if err := r.db.WithContext(ctx).
		Where("judge_id = ?", judgeID).
		Order("id DESC").
		Find(&hackathons).Error; err != nil {
		return nil, err
	}
	return hackathons, nil
}

func (r *hackathonRepository) UpdateCriteria(ctx context.Context, id uint, criteria string) error {
	result := r.db.WithContext(ctx).
		Model(&models.Hackathon{}).
		Where("id = ?", id).
		Update("criteria", criteria)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

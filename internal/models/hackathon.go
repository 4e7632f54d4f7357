package models

import "time"

// DefaultCriteria is applied when a judge creates a hackathon without criteria.
const DefaultCriteria = "Evaluate based on innovation and impact."

// Hackathon is a judging session owned by a single judge. Its ID is the
// capability submitters use to join.
type Hackathon struct {
	ID          uint         `gorm:"primaryKey" json:"id"`
	Name        string       `gorm:"size:100;not null" json:"name"`
	JudgeID     string       `gorm:"size:100;not null;index" json:"judge_id"`
	Criteria    string       `gorm:"type:text" json:"criteria"`
	CreatedAt   time.Time    `json:"created_at"`
	UpdatedAt   time.Time    `json:"updated_at"`
	Submissions []Submission `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"-"`
}

// EffectiveCriteria returns the criteria used for evaluation.
func (h Hackathon) EffectiveCriteria() string {
	if h.Criteria == "" {
		return DefaultCriteria
	}
	return h.Criteria
}

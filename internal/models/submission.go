package models

import (
	"time"

	"gorm.io/datatypes"
)

// Submission statuses. A submission is created as NEW and moves to one of
// the AI_* statuses exactly once.
const (
	SubmissionStatusNew        = "NEW"
	SubmissionStatusAIAccepted = "AI_ACCEPTED"
	SubmissionStatusAIRejected = "AI_REJECTED"
	SubmissionStatusAIError    = "AI_ERROR"
)

// Submission is a project entered into a hackathon.
type Submission struct {
	ID              uint              `gorm:"primaryKey" json:"id"`
	HackathonID     uint              `gorm:"not null;index" json:"hackathon_id"`
	ProjectName     string            `gorm:"size:100;not null" json:"project_name"`
	GithubLink      string            `gorm:"size:200;not null" json:"github_link"`
	VideoLink       string            `gorm:"size:200;not null" json:"video_link"`
	Status          string            `gorm:"size:32;not null;default:NEW;index" json:"status"`
	ScoreInnovation *float64          `json:"score_innovation"`
	ScoreImpact     *float64          `json:"score_impact"`
	Justification   *string           `gorm:"type:text" json:"justification"`
	EvaluationMeta  datatypes.JSONMap `json:"-"`
	EvaluatedAt     *time.Time        `json:"-"`
	CreatedAt       time.Time         `json:"created_at"`
	UpdatedAt       time.Time         `json:"updated_at"`
	Hackathon       Hackathon         `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"-"`
}

// IsPending reports whether the evaluator has not yet decided.
func (s Submission) IsPending() bool {
	return s.Status == SubmissionStatusNew
}

// IsTerminalStatus reports whether status is one the evaluator may assign.
func IsTerminalStatus(status string) bool {
	switch status {
	case SubmissionStatusAIAccepted, SubmissionStatusAIRejected, SubmissionStatusAIError:
		return true
	default:
		return false
	}
}

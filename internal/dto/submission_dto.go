package dto

import (
	"encoding/json"

	"github.com/noah-isme/hackjudge/internal/models"
)

// SubmissionCreateRequest is posted by a submitter after verification.
type SubmissionCreateRequest struct {
	HackathonID json.RawMessage `json:"hackathon_id"`
	ProjectName string          `json:"project_name" validate:"omitempty,max=100"`
	GithubLink  string          `json:"github_link" validate:"required,url,max=200"`
	VideoLink   string          `json:"video_link" validate:"required,url,max=200"`
}

// SubmissionCreateResponse acknowledges a stored submission.
type SubmissionCreateResponse struct {
	Message      string `json:"message"`
	SubmissionID uint   `json:"submission_id"`
	Status       string `json:"status"`
}

// SubmissionResponse is a dashboard row. Scores and justification stay null
// until the evaluator has produced them.
type SubmissionResponse struct {
	ID              uint     `json:"id"`
	HackathonID     uint     `json:"hackathon_id"`
	ProjectName     string   `json:"project_name"`
	GithubLink      string   `json:"github_link"`
	VideoLink       string   `json:"video_link"`
	Status          string   `json:"status"`
	ScoreInnovation *float64 `json:"score_innovation"`
	ScoreImpact     *float64 `json:"score_impact"`
	Justification   *string  `json:"justification"`
}

// NewSubmissionResponse converts a Submission model into a DTO.
func NewSubmissionResponse(model models.Submission) SubmissionResponse {
	return SubmissionResponse{
		ID:              model.ID,
		HackathonID:     model.HackathonID,
		ProjectName:     model.ProjectName,
		GithubLink:      model.GithubLink,
		VideoLink:       model.VideoLink,
		Status:          model.Status,
		ScoreInnovation: model.ScoreInnovation,
		ScoreImpact:     model.ScoreImpact,
		Justification:   model.Justification,
	}
}

// NewSubmissionResponses converts a slice of models.
func NewSubmissionResponses(items []models.Submission) []SubmissionResponse {
	responses := make([]SubmissionResponse, 0, len(items))
	for _, item := range items {
		responses = append(responses, NewSubmissionResponse(item))
	}
	return responses
}

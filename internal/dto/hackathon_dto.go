package dto

import (
	"encoding/json"

	"github.com/noah-isme/hackjudge/internal/models"
)

// HackathonCreateRequest is the payload a judge sends to open a hackathon.
type HackathonCreateRequest struct {
	Name     string  `json:"name" validate:"required,max=100"`
	JudgeID  string  `json:"judge_id" validate:"required,max=100"`
	Criteria *string `json:"criteria"`
}

// HackathonResponse is the registry's view of a hackathon.
type HackathonResponse struct {
	ID       uint   `json:"id"`
	Name     string `json:"name"`
	JudgeID  string `json:"judge_id,omitempty"`
	Criteria string `json:"criteria"`
}

// HackathonCreateResponse wraps a freshly created hackathon.
type HackathonCreateResponse struct {
	Message   string            `json:"message"`
	Hackathon HackathonResponse `json:"hackathon"`
}

// VerifyRequest carries a candidate hackathon id. The raw value is kept so
// that numbers and numeric strings are both accepted.
type VerifyRequest struct {
	HackathonID json.RawMessage `json:"hackathon_id"`
}

// VerifyResponse reports whether a hackathon id may be submitted to.
type VerifyResponse struct {
	Valid         bool   `json:"valid"`
	HackathonName string `json:"hackathonName,omitempty"`
	Message       string `json:"message,omitempty"`
}

// CriteriaResponse returns the criteria text currently used for evaluation.
type CriteriaResponse struct {
	CurrentCriteria string `json:"current_criteria"`
}

// CriteriaUpdateRequest overwrites a hackathon's criteria.
type CriteriaUpdateRequest struct {
	CriteriaText string `json:"criteria_text" validate:"required"`
}

// NewHackathonResponse converts a model into its API form.
func NewHackathonResponse(model models.Hackathon) HackathonResponse {
	return HackathonResponse{
		ID:       model.ID,
		Name:     model.Name,
		JudgeID:  model.JudgeID,
		Criteria: model.Criteria,
	}
}

// NewHackathonResponses converts a slice of models.
func NewHackathonResponses(items []models.Hackathon) []HackathonResponse {
	responses := make([]HackathonResponse, 0, len(items))
	for _, item := range items {
		responses = append(responses, NewHackathonResponse(item))
	}
	return responses
}

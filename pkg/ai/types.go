package ai

import "context"

// Decisions the evaluator may return.
const (
	DecisionAccepted = "ACCEPTED"
	DecisionRejected = "REJECTED"
)

// EvaluationInput contains the artefacts needed to judge a hackathon project.
type EvaluationInput struct {
	Criteria         string
	ProjectName      string
	Readme           string
	VideoTitle       string
	VideoDescription string
}

// EvaluationResult is the structured verdict returned by the AI evaluator.
// Scores are nil when the model did not provide a usable number.
type EvaluationResult struct {
	ScoreInnovation *float64               `json:"score_innovation"`
	ScoreImpact     *float64               `json:"score_impact"`
	Justification   string                 `json:"justification"`
	Decision        string                 `json:"decision"`
	Raw             map[string]interface{} `json:"raw,omitempty"`
}

// Evaluator describes an AI model capable of judging submissions.
type Evaluator interface {
	Evaluate(ctx context.Context, input EvaluationInput) (EvaluationResult, error)
}

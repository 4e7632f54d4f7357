package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/noah-isme/hackjudge/internal/dto"
	"github.com/noah-isme/hackjudge/internal/models"
	"github.com/noah-isme/hackjudge/internal/repository"
	"github.com/noah-isme/hackjudge/pkg/ai"
	"github.com/noah-isme/hackjudge/pkg/sources"
)

type stubEvaluator struct {
	mu     sync.Mutex
	result ai.EvaluationResult
	err    error
	inputs []ai.EvaluationInput
}

func (s *stubEvaluator) Evaluate(_ context.Context, input ai.EvaluationInput) (ai.EvaluationResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.inputs = append(s.inputs, input)
	return s.result, s.err
}

func (s *stubEvaluator) calls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.inputs)
}

func (s *stubEvaluator) Provider() string { return "stub" }
func (s *stubEvaluator) Model() string    { return "stub-model" }

type stubReader struct {
	content string
	err     error
}

func (s stubReader) ReadREADME(context.Context, string) (string, error) {
	return s.content, s.err
}

type stubVideo struct {
	summary sources.VideoSummary
	err     error
}

func (s stubVideo) Inspect(context.Context, string) (sources.VideoSummary, error) {
	return s.summary, s.err
}

type recordingDashboard struct {
	mu          sync.Mutex
	invalidated []uint
}

func (r *recordingDashboard) ListSubmissions(context.Context, uint) ([]dto.SubmissionResponse, error) {
	return nil, nil
}

func (r *recordingDashboard) Invalidate(_ context.Context, hackathonID uint) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.invalidated = append(r.invalidated, hackathonID)
}

func (r *recordingDashboard) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.invalidated)
}

type blockingEvaluator struct{}

func (blockingEvaluator) Evaluate(ctx context.Context, _ ai.EvaluationInput) (ai.EvaluationResult, error) {
	<-ctx.Done()
	return ai.EvaluationResult{}, ctx.Err()
}

func floatPointer(v float64) *float64 { return &v }

func seedSubmission(t *testing.T, db *gorm.DB, criteria string) models.Submission {
	t.Helper()

	hackathon := models.Hackathon{Name: "Winter Codefest", JudgeID: "judge-1", Criteria: criteria}
	require.NoError(t, db.Create(&hackathon).Error)
	submission := models.Submission{
		HackathonID: hackathon.ID,
		ProjectName: "AutoEval",
		GithubLink:  "https://github.com/org/autoeval",
		VideoLink:   "https://youtu.be/demo",
		Status:      models.SubmissionStatusNew,
	}
	require.NoError(t, db.Create(&submission).Error)
	return submission
}

func newTestEvaluationService(db *gorm.DB, evaluator ai.Evaluator, reader RepositoryReader, video VideoDescriber) EvaluationService {
	return NewEvaluationService(EvaluationDeps{
		Submissions: repository.NewSubmissionRepository(db),
		Evaluator:   evaluator,
		Readme:      reader,
		Video:       video,
		Dashboard:   NewDashboardService(repository.NewSubmissionRepository(db), nil, 0, zerolog.Nop()),
	}, zerolog.Nop())
}

func loadSubmission(t *testing.T, db *gorm.DB, id uint) models.Submission {
	t.Helper()
	var stored models.Submission
	require.NoError(t, db.First(&stored, id).Error)
	return stored
}

func TestEvaluationServiceAcceptsProject(t *testing.T) {
	db := setupServiceDB(t)
	submission := seedSubmission(t, db, "")
	evaluator := &stubEvaluator{result: ai.EvaluationResult{
		ScoreInnovation: floatPointer(8.5),
		ScoreImpact:     floatPointer(7),
		Justification:   "Strong <em>demo</em>.",
		Decision:        ai.DecisionAccepted,
	}}
	svc := newTestEvaluationService(db, evaluator,
		stubReader{content: "# AutoEval"},
		stubVideo{summary: sources.VideoSummary{Title: "Demo", Description: "N/A"}},
	)

	require.NoError(t, svc.Evaluate(context.Background(), submission.ID))

	stored := loadSubmission(t, db, submission.ID)
	require.Equal(t, models.SubmissionStatusAIAccepted, stored.Status)
	require.InDelta(t, 8.5, *stored.ScoreInnovation, 0.001)
	require.Equal(t, "Strong demo.", *stored.Justification)
	require.NotNil(t, stored.EvaluatedAt)
	require.Equal(t, "stub-model", stored.EvaluationMeta["model"])

	require.Len(t, evaluator.inputs, 1)
	input := evaluator.inputs[0]
	require.Equal(t, models.DefaultCriteria, input.Criteria)
	require.Equal(t, "# AutoEval", input.Readme)
	require.Equal(t, "Demo", input.VideoTitle)
}

func TestEvaluationServiceTransitionsOnce(t *testing.T) {
	db := setupServiceDB(t)
	submission := seedSubmission(t, db, "Reward accessibility")
	evaluator := &stubEvaluator{result: ai.EvaluationResult{Justification: "meh", Decision: ai.DecisionRejected}}
	svc := newTestEvaluationService(db, evaluator, nil, nil)

	require.NoError(t, svc.Evaluate(context.Background(), submission.ID))
	evaluator.result.Decision = ai.DecisionAccepted
	require.NoError(t, svc.Evaluate(context.Background(), submission.ID))
	require.NoError(t, svc.MarkFailed(context.Background(), submission.ID, "late failure"))

	stored := loadSubmission(t, db, submission.ID)
	require.Equal(t, models.SubmissionStatusAIRejected, stored.Status)
	require.Equal(t, 1, evaluator.calls())
	require.Nil(t, stored.ScoreInnovation)
	require.Equal(t, "Reward accessibility", evaluator.inputs[0].Criteria)
}

func TestEvaluationServiceFailureModes(t *testing.T) {
	cases := []struct {
		name      string
		evaluator ai.Evaluator
		reader    RepositoryReader
		contains  string
	}{
		{
			name:      "unclear decision",
			evaluator: &stubEvaluator{result: ai.EvaluationResult{Justification: "Looks fine", Decision: "MAYBE"}},
			contains:  "Looks fine (Note: Unclear decision: MAYBE)",
		},
		{
			name:      "invalid format",
			evaluator: &stubEvaluator{err: &ai.FormatError{Reply: "I like it", Err: ai.ErrInvalidFormat}},
			contains:  "AI returned invalid format. Response: I like it",
		},
		{
			name:      "collector failure",
			evaluator: &stubEvaluator{},
			reader:    stubReader{err: errors.New("status 404")},
			contains:  "Failed to communicate with evaluation services",
		},
		{
			name:      "model failure",
			evaluator: &stubEvaluator{err: errors.New("rate limited")},
			contains:  "AI evaluation failed: rate limited",
		},
		{
			name:     "no evaluator",
			contains: "evaluator unavailable",
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			db := setupServiceDB(t)
			submission := seedSubmission(t, db, "")
			svc := newTestEvaluationService(db, tc.evaluator, tc.reader, nil)

			require.NoError(t, svc.Evaluate(context.Background(), submission.ID))

			stored := loadSubmission(t, db, submission.ID)
			require.Equal(t, models.SubmissionStatusAIError, stored.Status)
			require.NotNil(t, stored.Justification)
			require.Contains(t, *stored.Justification, tc.contains)
		})
	}
}

func TestEvaluationServiceIgnoresUnknownSubmission(t *testing.T) {
	db := setupServiceDB(t)
	svc := newTestEvaluationService(db, &stubEvaluator{}, nil, nil)
	require.NoError(t, svc.Evaluate(context.Background(), 99))
}

func TestEvaluationServiceRecordsTimeout(t *testing.T) {
	db := setupServiceDB(t)
	submission := seedSubmission(t, db, "")
	dashboard := &recordingDashboard{}
	svc := NewEvaluationService(EvaluationDeps{
		Submissions: repository.NewSubmissionRepository(db),
		Evaluator:   blockingEvaluator{},
		Dashboard:   dashboard,
		Timeout:     50 * time.Millisecond,
	}, zerolog.Nop())

	require.NoError(t, svc.Evaluate(context.Background(), submission.ID))

	stored := loadSubmission(t, db, submission.ID)
	require.Equal(t, models.SubmissionStatusAIError, stored.Status)
	require.NotNil(t, stored.Justification)
	require.Contains(t, *stored.Justification, "AI evaluation failed: context deadline exceeded")
	require.NotNil(t, stored.EvaluatedAt)
	require.Equal(t, 1, dashboard.count())
}

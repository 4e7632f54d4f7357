package repository

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"
	"gorm.io/datatypes"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/noah-isme/hackjudge/internal/models"
)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.Hackathon{}, &models.Submission{}))
	return db
}

func floatPtr(v float64) *float64 { return &v }

func stringPtr(v string) *string { return &v }

func TestHackathonRepositoryListByJudgeNewestFirst(t *testing.T) {
	db := setupTestDB(t)
	repo := NewHackathonRepository(db)
	ctx := context.Background()

	first := models.Hackathon{Name: "Spring Jam", JudgeID: "j1"}
	second := models.Hackathon{Name: "Winter Codefest", JudgeID: "j1"}
	other := models.Hackathon{Name: "Elsewhere", JudgeID: "j2"}
	require.NoError(t, repo.Create(ctx, &first))
	require.NoError(t, repo.Create(ctx, &second))
	require.NoError(t, repo.Create(ctx, &other))

	items, err := repo.ListByJudge(ctx, "j1")
	require.NoError(t, err)
	require.Len(t, items, 2)
	require.Equal(t, second.ID, items[0].ID)
	require.Equal(t, first.ID, items[1].ID)
}

func TestHackathonRepositoryUpdateCriteria(t *testing.T) {
	db := setupTestDB(t)
	repo := NewHackathonRepository(db)
	ctx := context.Background()

	hackathon := models.Hackathon{Name: "Winter Codefest", JudgeID: "j1", Criteria: "old"}
	require.NoError(t, repo.Create(ctx, &hackathon))

	require.NoError(t, repo.UpdateCriteria(ctx, hackathon.ID, "reward accessibility"))
	stored, err := repo.GetByID(ctx, hackathon.ID)
	require.NoError(t, err)
	require.Equal(t, "reward accessibility", stored.Criteria)

	err = repo.UpdateCriteria(ctx, 9999, "nope")
	require.True(t, errors.Is(err, gorm.ErrRecordNotFound))
}

func TestSubmissionRepositoryApplyEvaluationOnlyOnce(t *testing.T) {
	db := setupTestDB(t)
	hackathons := NewHackathonRepository(db)
	repo := NewSubmissionRepository(db)
	ctx := context.Background()

	hackathon := models.Hackathon{Name: "Winter Codefest", JudgeID: "j1"}
	require.NoError(t, hackathons.Create(ctx, &hackathon))

	submission := models.Submission{
		HackathonID: hackathon.ID,
		ProjectName: "AutoEval",
		GithubLink:  "https://github.com/org/autoeval",
		VideoLink:   "https://youtu.be/abc",
		Status:      models.SubmissionStatusNew,
	}
	require.NoError(t, repo.Create(ctx, &submission))
	require.NotZero(t, submission.ID)

	err := repo.ApplyEvaluation(ctx, submission.ID, EvaluationUpdate{
		Status:          models.SubmissionStatusAIAccepted,
		ScoreInnovation: floatPtr(8.5),
		ScoreImpact:     floatPtr(7),
		Justification:   stringPtr("solid"),
		Meta:            datatypes.JSONMap{"provider": "openai"},
	})
	require.NoError(t, err)

	stored, err := repo.GetByID(ctx, submission.ID)
	require.NoError(t, err)
	require.Equal(t, models.SubmissionStatusAIAccepted, stored.Status)
	require.NotNil(t, stored.ScoreInnovation)
	require.InDelta(t, 8.5, *stored.ScoreInnovation, 0.001)
	require.Equal(t, "Winter Codefest", stored.Hackathon.Name)
	require.NotNil(t, stored.EvaluatedAt)

	err = repo.ApplyEvaluation(ctx, submission.ID, EvaluationUpdate{Status: models.SubmissionStatusAIRejected})
	require.True(t, errors.Is(err, ErrSubmissionAlreadyEvaluated))

	err = repo.ApplyEvaluation(ctx, 9999, EvaluationUpdate{Status: models.SubmissionStatusAIRejected})
	require.True(t, errors.Is(err, gorm.ErrRecordNotFound))

	err = repo.ApplyEvaluation(ctx, submission.ID, EvaluationUpdate{Status: models.SubmissionStatusNew})
	require.Error(t, err)
}

func TestSubmissionRepositoryListByHackathonKeepsNullScores(t *testing.T) {
	db := setupTestDB(t)
	repo := NewSubmissionRepository(db)
	ctx := context.Background()

	hackathon := models.Hackathon{Name: "Winter Codefest", JudgeID: "j1"}
	require.NoError(t, db.Create(&hackathon).Error)

	for _, name := range []string{"one", "two"} {
		submission := models.Submission{HackathonID: hackathon.ID, ProjectName: name, GithubLink: "https://github.com/a/b", VideoLink: "https://youtu.be/x", Status: models.SubmissionStatusNew}
		require.NoError(t, repo.Create(ctx, &submission))
	}

	items, err := repo.ListByHackathon(ctx, hackathon.ID)
	require.NoError(t, err)
	require.Len(t, items, 2)
	require.Equal(t, "two", items[0].ProjectName)
	require.Nil(t, items[0].ScoreInnovation)
	require.Nil(t, items[0].Justification)

	empty, err := repo.ListByHackathon(ctx, hackathon.ID+1)
	require.NoError(t, err)
	require.Empty(t, empty)
}

package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/noah-isme/hackjudge/internal/dto"
	"github.com/noah-isme/hackjudge/internal/models"
	"github.com/noah-isme/hackjudge/internal/repository"
)

func setupServiceDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.Hackathon{}, &models.Submission{}))

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	return db
}

func stringPointer(v string) *string { return &v }

func TestHackathonServiceCreateAppliesDefaults(t *testing.T) {
	db := setupServiceDB(t)
	svc := NewHackathonService(repository.NewHackathonRepository(db), validator.New(), "", zerolog.Nop())
	ctx := context.Background()

	created, err := svc.Create(ctx, dto.HackathonCreateRequest{Name: "<b>Winter</b> Codefest", JudgeID: "judge-1"})
	require.NoError(t, err)
	require.NotZero(t, created.ID)
	require.Equal(t, "Winter Codefest", created.Name)
	require.Equal(t, models.DefaultCriteria, created.Criteria)

	custom, err := svc.Create(ctx, dto.HackathonCreateRequest{Name: "Spring Jam", JudgeID: "judge-1", Criteria: stringPointer("Reward accessibility")})
	require.NoError(t, err)
	require.Equal(t, "Reward accessibility", custom.Criteria)

	_, err = svc.Create(ctx, dto.HackathonCreateRequest{Name: "<script></script>", JudgeID: "judge-1"})
	require.ErrorIs(t, err, ErrHackathonNameRequired)

	_, err = svc.Create(ctx, dto.HackathonCreateRequest{Name: "No judge"})
	var validationErrs validator.ValidationErrors
	require.True(t, errors.As(err, &validationErrs))

	listed, err := svc.ListByJudge(ctx, "judge-1")
	require.NoError(t, err)
	require.Len(t, listed, 2)
	require.Equal(t, custom.ID, listed[0].ID)

	_, err = svc.ListByJudge(ctx, "  ")
	require.ErrorIs(t, err, ErrJudgeIDRequired)
}

func TestHackathonServiceVerify(t *testing.T) {
	db := setupServiceDB(t)
	svc := NewHackathonService(repository.NewHackathonRepository(db), validator.New(), "", zerolog.Nop())
	ctx := context.Background()

	created, err := svc.Create(ctx, dto.HackathonCreateRequest{Name: "Winter Codefest", JudgeID: "judge-1"})
	require.NoError(t, err)

	found, err := svc.Verify(ctx, json.RawMessage(fmt.Sprintf(`"%d"`, created.ID)))
	require.NoError(t, err)
	require.Equal(t, "Winter Codefest", found.Name)

	_, err = svc.Verify(ctx, json.RawMessage(`9999`))
	require.ErrorIs(t, err, ErrHackathonNotFound)

	_, err = svc.Verify(ctx, json.RawMessage(`"abc"`))
	require.ErrorIs(t, err, ErrInvalidHackathonIDFormat)
}

func TestParseHackathonID(t *testing.T) {
	cases := []struct {
		raw      string
		expected uint
		err      error
	}{
		{raw: `42`, expected: 42},
		{raw: `"42"`, expected: 42},
		{raw: `" 7 "`, expected: 7},
		{raw: `42.0`, expected: 42},
		{raw: `"42.00"`, expected: 42},
		{raw: `"+5"`, expected: 5},
		{raw: `42.5`, err: ErrInvalidHackathonIDFormat},
		{raw: `1e1`, err: ErrInvalidHackathonIDFormat},
		{raw: `"4.2e1"`, err: ErrInvalidHackathonIDFormat},
		{raw: `"0x2A"`, err: ErrInvalidHackathonIDFormat},
		{raw: `"abc"`, err: ErrInvalidHackathonIDFormat},
		{raw: `null`, err: ErrInvalidHackathonIDFormat},
		{raw: ``, err: ErrInvalidHackathonIDFormat},
		{raw: `true`, err: ErrInvalidHackathonIDFormat},
		{raw: `0`, err: ErrHackathonNotFound},
		{raw: `-3`, err: ErrHackathonNotFound},
	}

	for _, tc := range cases {
		id, err := ParseHackathonID(json.RawMessage(tc.raw))
		if tc.err != nil {
			require.ErrorIs(t, err, tc.err, tc.raw)
			continue
		}
		require.NoError(t, err, tc.raw)
		require.Equal(t, tc.expected, id, tc.raw)
	}
}

func TestHackathonServiceCriteria(t *testing.T) {
	db := setupServiceDB(t)
	svc := NewHackathonService(repository.NewHackathonRepository(db), validator.New(), "", zerolog.Nop())
	ctx := context.Background()

	created, err := svc.Create(ctx, dto.HackathonCreateRequest{Name: "Winter Codefest", JudgeID: "judge-1"})
	require.NoError(t, err)

	current, err := svc.GetCriteria(ctx, created.ID)
	require.NoError(t, err)
	require.Equal(t, models.DefaultCriteria, current)

	err = svc.UpdateCriteria(ctx, created.ID, "judge-2", dto.CriteriaUpdateRequest{CriteriaText: "x"})
	require.ErrorIs(t, err, ErrHackathonForbidden)

	require.NoError(t, svc.UpdateCriteria(ctx, created.ID, "judge-1", dto.CriteriaUpdateRequest{CriteriaText: "Reward accessibility"}))
	current, err = svc.GetCriteria(ctx, created.ID)
	require.NoError(t, err)
	require.Equal(t, "Reward accessibility", current)

	require.NoError(t, svc.UpdateCriteria(ctx, created.ID, "", dto.CriteriaUpdateRequest{CriteriaText: "Open to all"}))

	_, err = svc.GetCriteria(ctx, 404)
	require.ErrorIs(t, err, ErrHackathonNotFound)

	err = svc.UpdateCriteria(ctx, created.ID, "", dto.CriteriaUpdateRequest{})
	require.Error(t, err)
}

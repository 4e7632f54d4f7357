package handler_test

import (
	"context"
	"errors"
	"io"
	"net/http"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/noah-isme/hackjudge/internal/config"
	"github.com/noah-isme/hackjudge/internal/dto"
	"github.com/noah-isme/hackjudge/internal/handler"
)

type mockDashboardService struct {
	rows []dto.SubmissionResponse
	err  error
}

func (m *mockDashboardService) ListSubmissions(_ context.Context, hackathonID uint) ([]dto.SubmissionResponse, error) {
	if m.err != nil {
		return nil, m.err
	}
	if hackathonID != 7 {
		return []dto.SubmissionResponse{}, nil
	}
	return m.rows, nil
}

func (m *mockDashboardService) Invalidate(context.Context, uint) {}

func TestDashboardHandlerList(t *testing.T) {
	score := 8.5
	svc := &mockDashboardService{rows: []dto.SubmissionResponse{
		{ID: 2, ProjectName: "AutoEval", Status: "AI_ACCEPTED", ScoreInnovation: &score},
		{ID: 1, ProjectName: "Pending", Status: "NEW"},
	}}
	app := fiber.New()
	handler.NewDashboardHandler(svc, zerolog.New(io.Discard)).Register(app.Group("/api/dashboard"))

	resp := doJSON(t, app, http.MethodGet, "/api/dashboard/7", nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	var rows []map[string]interface{}
	decodeJSON(t, resp, &rows)
	require.Len(t, rows, 2)
	require.Equal(t, 8.5, rows[0]["score_innovation"])
	require.Contains(t, rows[1], "score_innovation")
	require.Nil(t, rows[1]["score_innovation"])

	resp = doJSON(t, app, http.MethodGet, "/api/dashboard/12345", nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	var empty []map[string]interface{}
	decodeJSON(t, resp, &empty)
	require.Empty(t, empty)

	resp = doJSON(t, app, http.MethodGet, "/api/dashboard/abc", nil)
	require.Equal(t, fiber.StatusNotFound, resp.StatusCode)

	svc.err = errors.New("db down")
	resp = doJSON(t, app, http.MethodGet, "/api/dashboard/7", nil)
	require.Equal(t, fiber.StatusInternalServerError, resp.StatusCode)
}

func TestHealthCheckWithoutDatabase(t *testing.T) {
	app := fiber.New()
	app.Get("/health", handler.HealthCheck(testConfig(), nil))

	resp := doJSON(t, app, http.MethodGet, "/health", nil)
	require.Equal(t, fiber.StatusServiceUnavailable, resp.StatusCode)
	var body handler.HealthResponse
	decodeJSON(t, resp, &body)
	require.Equal(t, "degraded", body.Status)
	require.Equal(t, "hackjudge", body.Service)
}

func TestHealthCheckReportsConnectedDatabase(t *testing.T) {
	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{})
	require.NoError(t, err)

	app := fiber.New()
	app.Get("/health", handler.HealthCheck(testConfig(), db))

	resp := doJSON(t, app, http.MethodGet, "/health", nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	var body handler.HealthResponse
	decodeJSON(t, resp, &body)
	require.Equal(t, "healthy", body.Status)
	require.Equal(t, "connected", body.Database)
}

func testConfig() config.Config {
	return config.Config{AppName: "hackjudge", AppEnv: "test"}
}

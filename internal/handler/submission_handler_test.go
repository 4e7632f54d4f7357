package handler_test

import (
	"context"
	"io"
	"net/http"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/hackjudge/internal/dto"
	"github.com/noah-isme/hackjudge/internal/handler"
	"github.com/noah-isme/hackjudge/internal/service"
)

type mockSubmissionService struct {
	last dto.SubmissionCreateRequest
	err  error
}

func (m *mockSubmissionService) Submit(_ context.Context, payload dto.SubmissionCreateRequest) (dto.SubmissionCreateResponse, error) {
	m.last = payload
	if m.err != nil {
		return dto.SubmissionCreateResponse{}, m.err
	}
	return dto.SubmissionCreateResponse{Message: "Project submitted successfully!", SubmissionID: 11, Status: "NEW"}, nil
}

func newSubmitApp(svc service.SubmissionService) *fiber.App {
	app := fiber.New()
	app.Post("/submit", handler.NewSubmissionHandler(svc, zerolog.New(io.Discard)).Submit)
	return app
}

func TestSubmissionHandlerCreated(t *testing.T) {
	svc := &mockSubmissionService{}
	app := newSubmitApp(svc)

	resp := doJSON(t, app, http.MethodPost, "/submit", `{"hackathon_id":"7","project_name":"AutoEval","github_link":"https://github.com/org/autoeval","video_link":"https://youtu.be/demo"}`)
	require.Equal(t, fiber.StatusCreated, resp.StatusCode)

	var body dto.SubmissionCreateResponse
	decodeJSON(t, resp, &body)
	require.Equal(t, uint(11), body.SubmissionID)
	require.Equal(t, "NEW", body.Status)
	require.JSONEq(t, `"7"`, string(svc.last.HackathonID))
	require.Equal(t, "AutoEval", svc.last.ProjectName)
}

func TestSubmissionHandlerErrors(t *testing.T) {
	cases := []struct {
		name    string
		body    string
		err     error
		status  int
		message string
	}{
		{name: "empty body", body: "", status: fiber.StatusBadRequest, message: "No data provided"},
		{
			name:    "missing fields",
			body:    `{}`,
			err:     &service.MissingFieldsError{Fields: []string{"hackathon_id", "video_link"}},
			status:  fiber.StatusBadRequest,
			message: "Missing required fields: hackathon_id, video_link",
		},
		{name: "bad id", body: `{}`, err: service.ErrInvalidHackathonIDFormat, status: fiber.StatusBadRequest, message: "Invalid Hackathon ID format"},
		{name: "unknown hackathon", body: `{}`, err: service.ErrHackathonNotFound, status: fiber.StatusNotFound, message: "Invalid Hackathon ID"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			app := newSubmitApp(&mockSubmissionService{err: tc.err})
			resp := doJSON(t, app, http.MethodPost, "/submit", tc.body)
			require.Equal(t, tc.status, resp.StatusCode)

			var body map[string]interface{}
			decodeJSON(t, resp, &body)
			require.Equal(t, tc.message, body["error"])
			require.Equal(t, tc.message, body["message"])
		})
	}
}

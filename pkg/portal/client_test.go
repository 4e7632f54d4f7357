package portal

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestClientSendsNumericCandidateAsInteger(t *testing.T) {
	var received []interface{}
	client := newStubServer(t, map[string]http.HandlerFunc{
		"POST /api/hackathons/verify": func(w http.ResponseWriter, r *http.Request) {
			received = append(received, decodeBody(t, r)["hackathon_id"])
			writeJSON(w, http.StatusBadRequest, map[string]interface{}{"valid": false, "message": "Invalid Hackathon ID format"})
		},
	})

	for _, candidate := range []string{"42", " 7 ", "abc"} {
		result, err := client.VerifyHackathon(context.Background(), candidate)
		require.NoError(t, err)
		require.False(t, result.Valid)
		require.Equal(t, "Invalid Hackathon ID format", result.Message)
	}

	require.Equal(t, []interface{}{float64(42), float64(7), "abc"}, received)
}

func TestClientStatusErrorMessages(t *testing.T) {
	client := newStubServer(t, map[string]http.HandlerFunc{
		"POST /submit": func(w http.ResponseWriter, r *http.Request) {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "Missing required fields: video_link"})
		},
		"GET /api/dashboard/{id}": func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusInternalServerError)
		},
		"POST /api/hackathons/verify": func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusBadGateway)
		},
	})
	ctx := context.Background()

	_, err := client.Submit(ctx, 42, SubmissionForm{ProjectName: "p", GithubLink: "g"})
	var status *StatusError
	require.True(t, errors.As(err, &status))
	require.Equal(t, http.StatusBadRequest, status.Status)
	require.Equal(t, "Missing required fields: video_link", status.Message)

	_, err = client.DashboardSubmissions(ctx, 42)
	require.True(t, errors.As(err, &status))
	require.Equal(t, MessageDashboardFailed, status.Message)

	_, err = client.VerifyHackathon(ctx, "42")
	require.True(t, errors.As(err, &status))
	require.Equal(t, MessageVerificationFailed, status.Message)
}

func TestClientTransportError(t *testing.T) {
	client := NewClient("http://127.0.0.1:1")

	_, err := client.ListHackathons(context.Background(), "j1")
	var transport *TransportError
	require.True(t, errors.As(err, &transport))
	require.Equal(t, MessageTransport, err.Error())
	require.Equal(t, MessageTransport, Message(err))
}

func TestClientEmptyListsAreNonNil(t *testing.T) {
	client := newStubServer(t, map[string]http.HandlerFunc{
		"GET /api/hackathons": func(w http.ResponseWriter, r *http.Request) {
			require.Equal(t, "j 1", r.URL.Query().Get("judge_id"))
			writeJSON(w, http.StatusOK, nil)
		},
	})

	items, err := client.ListHackathons(context.Background(), "j 1")
	require.NoError(t, err)
	require.NotNil(t, items)
	require.Empty(t, items)
}

func TestCandidateIDAcceptsOnlyIntegralText(t *testing.T) {
	accepted := map[string]int64{"42": 42, " 7 ": 7, "42.0": 42, "+5": 5, "-3": -3}
	for candidate, expected := range accepted {
		id, ok := candidateID(candidate)
		require.True(t, ok, candidate)
		require.Equal(t, expected, id, candidate)
	}

	for _, candidate := range []string{"1e1", "4.2e1", "42.5", "abc", "", "0x2A", "Inf"} {
		_, ok := candidateID(candidate)
		require.False(t, ok, candidate)
	}
	require.Equal(t, "1e1", candidateValue("1e1"))
}

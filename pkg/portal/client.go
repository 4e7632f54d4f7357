package portal

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"regexp"
	"strconv"
	"strings"

	"github.com/rs/zerolog"
)

// Submission statuses as reported by the store.
const (
	StatusNew        = "NEW"
	StatusAIAccepted = "AI_ACCEPTED"
	StatusAIRejected = "AI_REJECTED"
	StatusAIError    = "AI_ERROR"
)

// Hackathon is the client's immutable snapshot of a registry entry.
type Hackathon struct {
	ID       int64  `json:"id"`
	Name     string `json:"name"`
	JudgeID  string `json:"judge_id,omitempty"`
	Criteria string `json:"criteria,omitempty"`
}

// Submission is a dashboard row. Nil scores mean the evaluator gave none.
type Submission struct {
	ID              int64    `json:"id"`
	HackathonID     int64    `json:"hackathon_id,omitempty"`
	ProjectName     string   `json:"project_name"`
	GithubLink      string   `json:"github_link"`
	VideoLink       string   `json:"video_link"`
	Status          string   `json:"status"`
	ScoreInnovation *float64 `json:"score_innovation"`
	ScoreImpact     *float64 `json:"score_impact"`
	Justification   *string  `json:"justification"`
}

// VerifyResult is the registry's answer to a verification request.
type VerifyResult struct {
	Valid         bool   `json:"valid"`
	HackathonName string `json:"hackathonName"`
	Message       string `json:"message"`
}

// SubmissionForm holds the fields a submitter types.
type SubmissionForm struct {
	ProjectName string `json:"project_name"`
	GithubLink  string `json:"github_link"`
	VideoLink   string `json:"video_link"`
}

// SubmitAck acknowledges a stored submission.
type SubmitAck struct {
	Message      string `json:"message"`
	SubmissionID int64  `json:"submission_id"`
	Status       string `json:"status"`
}

// Client speaks the registry/store HTTP contract. It holds no state
// between calls and is safe for concurrent use.
type Client struct {
	baseURL string
	http    *http.Client
	logger  zerolog.Logger
}

// ClientOption customises a Client.
type ClientOption func(*Client)

// WithHTTPClient replaces the default http.Client.
func WithHTTPClient(client *http.Client) ClientOption {
	return func(c *Client) {
		if client != nil {
			c.http = client
		}
	}
}

// WithLogger attaches a logger for request diagnostics.
func WithLogger(logger zerolog.Logger) ClientOption {
	return func(c *Client) {
		c.logger = logger.With().Str("component", "portal_client").Logger()
	}
}

// NewClient returns a client for the API rooted at baseURL. No request
// timeout is set; callers bound calls through their context.
func NewClient(baseURL string, opts ...ClientOption) *Client {
	client := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{},
		logger:  zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(client)
	}
	return client
}

// CreateHackathon registers a hackathon and returns the server-confirmed object.
func (c *Client) CreateHackathon(ctx context.Context, name, judgeID, criteria string) (Hackathon, error) {
	var reply struct {
		Hackathon Hackathon `json:"hackathon"`
	}
	body := map[string]string{"name": name, "judge_id": judgeID, "criteria": criteria}
	if err := c.do(ctx, http.MethodPost, "/api/hackathons/create", body, &reply, MessageCreateFailed); err != nil {
		return Hackathon{}, err
	}
	return reply.Hackathon, nil
}

// ListHackathons returns the judge's hackathons, newest first.
func (c *Client) ListHackathons(ctx context.Context, judgeID string) ([]Hackathon, error) {
	var items []Hackathon
	path := "/api/hackathons?" + url.Values{"judge_id": {judgeID}}.Encode()
	if err := c.do(ctx, http.MethodGet, path, nil, &items, MessageListFailed); err != nil {
		return nil, err
	}
	if items == nil {
		items = []Hackathon{}
	}
	return items, nil
}

// VerifyHackathon asks whether candidate names an existing hackathon. A
// negative answer is returned as a VerifyResult with Valid false, not as an
// error. Numeric candidates are sent as JSON numbers, anything else as-is.
func (c *Client) VerifyHackathon(ctx context.Context, candidate string) (VerifyResult, error) {
	body := map[string]interface{}{"hackathon_id": candidateValue(candidate)}

	status, payload, err := c.send(ctx, http.MethodPost, "/api/hackathons/verify", body)
	if err != nil {
		return VerifyResult{}, err
	}

	var result struct {
		Valid         *bool  `json:"valid"`
		HackathonName string `json:"hackathonName"`
		Message       string `json:"message"`
		Error         string `json:"error"`
	}
	if jsonErr := json.Unmarshal(payload, &result); jsonErr != nil || result.Valid == nil {
		if isSuccess(status) {
			return VerifyResult{}, &TransportError{Err: fmt.Errorf("decode verify reply: %v", jsonErr)}
		}
		return VerifyResult{}, statusError(status, payload, MessageVerificationFailed)
	}

	message := result.Message
	if message == "" {
		message = result.Error
	}
	return VerifyResult{Valid: *result.Valid && isSuccess(status), HackathonName: result.HackathonName, Message: message}, nil
}

// Submit posts a project bound to hackathonID.
func (c *Client) Submit(ctx context.Context, hackathonID int64, form SubmissionForm) (SubmitAck, error) {
	body := map[string]interface{}{
		"hackathon_id": hackathonID,
		"project_name": form.ProjectName,
		"github_link":  form.GithubLink,
		"video_link":   form.VideoLink,
	}
	var ack SubmitAck
	if err := c.do(ctx, http.MethodPost, "/submit", body, &ack, MessageSubmissionFailed); err != nil {
		return SubmitAck{}, err
	}
	return ack, nil
}

// DashboardSubmissions returns every submission of a hackathon.
func (c *Client) DashboardSubmissions(ctx context.Context, hackathonID int64) ([]Submission, error) {
	var items []Submission
	path := "/api/dashboard/" + strconv.FormatInt(hackathonID, 10)
	if err := c.do(ctx, http.MethodGet, path, nil, &items, MessageDashboardFailed); err != nil {
		return nil, err
	}
	if items == nil {
		items = []Submission{}
	}
	return items, nil
}

// GetCriteria returns the criteria text of a hackathon.
func (c *Client) GetCriteria(ctx context.Context, hackathonID int64) (string, error) {
	var reply struct {
		CurrentCriteria string `json:"current_criteria"`
	}
	if err := c.do(ctx, http.MethodGet, criteriaPath(hackathonID), nil, &reply, MessageCriteriaFailed); err != nil {
		return "", err
	}
	return reply.CurrentCriteria, nil
}

// SaveCriteria overwrites the criteria text of a hackathon.
func (c *Client) SaveCriteria(ctx context.Context, hackathonID int64, text string) error {
	body := map[string]string{"criteria_text": text}
	return c.do(ctx, http.MethodPost, criteriaPath(hackathonID), body, nil, MessageCriteriaFailed)
}

func criteriaPath(hackathonID int64) string {
	return "/api/hackathons/" + strconv.FormatInt(hackathonID, 10) + "/criteria"
}

func (c *Client) do(ctx context.Context, method, path string, body, target interface{}, fallback string) error {
	status, payload, err := c.send(ctx, method, path, body)
	if err != nil {
		return err
	}
	if !isSuccess(status) {
		return statusError(status, payload, fallback)
	}
	if target == nil || len(bytes.TrimSpace(payload)) == 0 {
		return nil
	}
	if err := json.Unmarshal(payload, target); err != nil {
		return &TransportError{Err: fmt.Errorf("decode %s %s: %w", method, path, err)}
	}
	return nil
}

func (c *Client) send(ctx context.Context, method, path string, body interface{}) (int, []byte, error) {
	var reader io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			return 0, nil, fmt.Errorf("encode request: %w", err)
		}
		reader = bytes.NewReader(encoded)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return 0, nil, &TransportError{Err: err}
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		c.logger.Debug().Err(err).Str("method", method).Str("path", path).Msg("request failed")
		return 0, nil, &TransportError{Err: err}
	}
	defer resp.Body.Close()

	payload, err := io.ReadAll(resp.Body)
	if err != nil {
		return 0, nil, &TransportError{Err: err}
	}

	c.logger.Debug().Str("method", method).Str("path", path).Int("status", resp.StatusCode).Msg("request completed")
	return resp.StatusCode, payload, nil
}

func isSuccess(status int) bool {
	return status >= 200 && status < 300
}

func statusError(status int, payload []byte, fallback string) *StatusError {
	var body struct {
		Error   string `json:"error"`
		Message string `json:"message"`
	}
	message := fallback
	if err := json.Unmarshal(payload, &body); err == nil {
		switch {
		case body.Error != "":
			message = body.Error
		case body.Message != "":
			message = body.Message
		}
	}
	return &StatusError{Status: status, Message: message}
}

func candidateValue(candidate string) interface{} {
	if id, ok := candidateID(candidate); ok {
		return id
	}
	return candidate
}

var integralPattern = regexp.MustCompile(`^[+-]?[0-9]+(\.0+)?$`)

// candidateID parses integers and integral decimals such as "42.0".
// Exponents and fractions are not ids.
func candidateID(candidate string) (int64, bool) {
	trimmed := strings.TrimSpace(candidate)
	if !integralPattern.MatchString(trimmed) {
		return 0, false
	}
	if dot := strings.IndexByte(trimmed, '.'); dot >= 0 {
		trimmed = trimmed[:dot]
	}
	id, err := strconv.ParseInt(trimmed, 10, 64)
	return id, err == nil
}

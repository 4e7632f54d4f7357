package portal

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/rs/zerolog"
)

// ScorePlaceholder is shown for scores the evaluator did not provide.
const ScorePlaceholder = "N/A"

// HackathonIDSource resolves which hackathon a dashboard shows.
type HackathonIDSource interface {
	HackathonID() (int64, error)
}

// StaticID is a hackathon id known at construction.
type StaticID int64

// HackathonID implements HackathonIDSource.
func (s StaticID) HackathonID() (int64, error) {
	if s <= 0 {
		return 0, ErrMissingHackathonID
	}
	return int64(s), nil
}

// RouteParam reads the hackathon id from route parameters, such as the
// hackathonId segment of /dashboard/:hackathonId.
type RouteParam struct {
	Params map[string]string
	Key    string
}

// HackathonID implements HackathonIDSource.
func (r RouteParam) HackathonID() (int64, error) {
	key := r.Key
	if key == "" {
		key = "hackathonId"
	}
	raw := strings.TrimSpace(r.Params[key])
	if raw == "" {
		return 0, ErrMissingHackathonID
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("%w: %q", ErrMissingHackathonID, raw)
	}
	return id, nil
}

// View is the visible state of a dashboard. Exactly one is active.
type View int

// Dashboard views.
const (
	ViewLoading View = iota
	ViewFailed
	ViewReady
)

func (v View) String() string {
	switch v {
	case ViewFailed:
		return "failed"
	case ViewReady:
		return "ready"
	default:
		return "loading"
	}
}

// Buckets is the judge-actionable split of a hackathon's submissions.
type Buckets struct {
	Accepted []Submission
	Rejected []Submission
}

// Partition splits submissions by status. NEW and AI_ERROR submissions are
// in neither bucket.
func Partition(submissions []Submission) Buckets {
	buckets := Buckets{Accepted: []Submission{}, Rejected: []Submission{}}
	for _, submission := range submissions {
		switch submission.Status {
		case StatusAIAccepted:
			buckets.Accepted = append(buckets.Accepted, submission)
		case StatusAIRejected:
			buckets.Rejected = append(buckets.Rejected, submission)
		}
	}
	return buckets
}

// FormatScore renders a score with one decimal, or ScorePlaceholder when absent.
func FormatScore(score *float64) string {
	if score == nil {
		return ScorePlaceholder
	}
	return strconv.FormatFloat(*score, 'f', 1, 64)
}

// Card is one rendered submission.
type Card struct {
	SubmissionID  int64
	ProjectName   string
	GithubLink    string
	VideoLink     string
	Innovation    string
	Impact        string
	Justification string
}

// Column is one rendered bucket.
type Column struct {
	Status string
	Title  string
	Cards  []Card
}

// DashboardState is a snapshot of a Dashboard.
type DashboardState struct {
	View        View
	HackathonID int64
	Message     string
	Submissions []Submission
}

// Dashboard shows the submissions of one hackathon split by outcome.
type Dashboard struct {
	client *Client
	source HackathonIDSource
	logger zerolog.Logger

	life        lifecycle
	fetch       action
	view        View
	hackathonID int64
	message     string
	submissions []Submission
}

// DashboardOption customises a Dashboard.
type DashboardOption func(*Dashboard)

// WithDashboardLogger attaches a logger.
func WithDashboardLogger(logger zerolog.Logger) DashboardOption {
	return func(d *Dashboard) {
		d.logger = logger.With().Str("component", "dashboard").Logger()
	}
}

// NewDashboard constructs a dashboard in the loading view. Call Refresh to mount.
func NewDashboard(client *Client, source HackathonIDSource, opts ...DashboardOption) *Dashboard {
	dashboard := &Dashboard{
		client: client,
		source: source,
		logger: zerolog.Nop(),
		view:   ViewLoading,
	}
	for _, opt := range opts {
		opt(dashboard)
	}
	return dashboard
}

// Refresh fetches the submissions. Mount and the retry action both call it.
// Only the most recent call may update the view.
func (d *Dashboard) Refresh(ctx context.Context) error {
	d.life.mu.Lock()
	if d.life.closed {
		d.life.mu.Unlock()
		return ErrClosed
	}

	id, err := d.resolveID()
	if err != nil {
		d.fetch.phase = PhaseFailure
		d.view = ViewFailed
		d.message = MessageMissingHackathonID
		d.submissions = nil
		d.life.mu.Unlock()
		return err
	}

	token := d.life.restart(&d.fetch)
	d.view = ViewLoading
	d.hackathonID = id
	d.message = ""
	d.life.mu.Unlock()

	items, callErr := d.client.DashboardSubmissions(ctx, id)

	d.life.mu.Lock()
	defer d.life.mu.Unlock()
	if !d.life.current(&d.fetch, token) {
		d.logger.Debug().Int64("hackathon_id", id).Msg("discarding stale dashboard response")
		return callErr
	}

	d.life.settle(&d.fetch, callErr)
	if callErr != nil {
		d.view = ViewFailed
		d.message = MessageDashboardFailed
		d.submissions = nil
		d.logger.Warn().Err(callErr).Int64("hackathon_id", id).Msg("failed to load submissions")
		return callErr
	}

	d.view = ViewReady
	d.submissions = items
	return nil
}

func (d *Dashboard) resolveID() (int64, error) {
	if d.source == nil {
		return 0, ErrMissingHackathonID
	}
	return d.source.HackathonID()
}

// State returns a snapshot of the dashboard.
func (d *Dashboard) State() DashboardState {
	d.life.mu.Lock()
	defer d.life.mu.Unlock()

	return DashboardState{
		View:        d.view,
		HackathonID: d.hackathonID,
		Message:     d.message,
		Submissions: append([]Submission(nil), d.submissions...),
	}
}

// Buckets partitions the loaded submissions.
func (d *Dashboard) Buckets() Buckets {
	d.life.mu.Lock()
	defer d.life.mu.Unlock()
	return Partition(d.submissions)
}

// Columns renders the accepted and rejected buckets with their counts.
func (d *Dashboard) Columns() []Column {
	buckets := d.Buckets()
	return []Column{
		column(StatusAIAccepted, "AI Accepted", buckets.Accepted),
		column(StatusAIRejected, "AI Rejected", buckets.Rejected),
	}
}

// Close detaches the dashboard.
func (d *Dashboard) Close() {
	d.life.close()
}

func column(status, label string, submissions []Submission) Column {
	cards := make([]Card, 0, len(submissions))
	for _, submission := range submissions {
		justification := ScorePlaceholder
		if submission.Justification != nil {
			justification = *submission.Justification
		}
		cards = append(cards, Card{
			SubmissionID:  submission.ID,
			ProjectName:   submission.ProjectName,
			GithubLink:    submission.GithubLink,
			VideoLink:     submission.VideoLink,
			Innovation:    FormatScore(submission.ScoreInnovation),
			Impact:        FormatScore(submission.ScoreImpact),
			Justification: justification,
		})
	}
	return Column{
		Status: status,
		Title:  fmt.Sprintf("%s (%d)", label, len(cards)),
		Cards:  cards,
	}
}

package portal

import (
	"context"
	"strings"
)

// SubmissionState is a snapshot of a SubmissionFlow.
type SubmissionState struct {
	Phase   Phase
	Form    SubmissionForm
	LastAck *SubmitAck
	Message string
}

// SubmissionFlow posts projects to one verified hackathon. It stays bound
// to that hackathon across submissions.
type SubmissionFlow struct {
	client    *Client
	hackathon Verified

	life    lifecycle
	submit  action
	form    SubmissionForm
	lastAck *SubmitAck
	message string
}

func newSubmissionFlow(client *Client, hackathon Verified) *SubmissionFlow {
	return &SubmissionFlow{client: client, hackathon: hackathon}
}

// Hackathon returns the verified hackathon the flow is bound to.
func (s *SubmissionFlow) Hackathon() Verified {
	return s.hackathon
}

// SetForm replaces the typed values without submitting.
func (s *SubmissionFlow) SetForm(form SubmissionForm) {
	s.life.mu.Lock()
	defer s.life.mu.Unlock()
	if s.submit.phase != PhasePending {
		s.form = form
	}
}

// Submit posts form. Empty required fields fail locally with
// ErrMissingField. On success the form is cleared; on failure the typed
// values are kept.
func (s *SubmissionFlow) Submit(ctx context.Context, form SubmissionForm) (SubmitAck, error) {
	s.life.mu.Lock()
	if s.life.closed {
		s.life.mu.Unlock()
		return SubmitAck{}, ErrClosed
	}
	if s.submit.phase == PhasePending {
		s.life.mu.Unlock()
		return SubmitAck{}, ErrBusy
	}
	s.form = form
	if err := validateForm(form); err != nil {
		s.submit.phase = PhaseFailure
		s.message = Message(err)
		s.life.mu.Unlock()
		return SubmitAck{}, err
	}
	token, err := s.life.begin(&s.submit)
	if err != nil {
		s.life.mu.Unlock()
		return SubmitAck{}, err
	}
	s.message = ""
	s.life.mu.Unlock()

	ack, callErr := s.client.Submit(ctx, s.hackathon.ID, form)

	s.life.mu.Lock()
	defer s.life.mu.Unlock()
	if !s.life.current(&s.submit, token) {
		return ack, callErr
	}

	s.life.settle(&s.submit, callErr)
	if callErr != nil {
		s.message = Message(callErr)
		return SubmitAck{}, callErr
	}
	s.form = SubmissionForm{}
	s.lastAck = &ack
	return ack, nil
}

// State returns a snapshot of the flow.
func (s *SubmissionFlow) State() SubmissionState {
	s.life.mu.Lock()
	defer s.life.mu.Unlock()

	state := SubmissionState{Phase: s.submit.phase, Form: s.form, Message: s.message}
	if s.lastAck != nil {
		ack := *s.lastAck
		state.LastAck = &ack
	}
	return state
}

// Close detaches the flow.
func (s *SubmissionFlow) Close() {
	s.life.close()
}

func validateForm(form SubmissionForm) error {
	switch {
	case strings.TrimSpace(form.ProjectName) == "":
		return missingField("project_name")
	case strings.TrimSpace(form.GithubLink) == "":
		return missingField("github_link")
	case strings.TrimSpace(form.VideoLink) == "":
		return missingField("video_link")
	}
	return nil
}

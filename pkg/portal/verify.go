package portal

import (
	"context"
	"errors"
)

// Verified is a hackathon confirmed by the registry.
type Verified struct {
	ID   int64
	Name string
}

// VerificationState is a snapshot of a VerificationFlow.
type VerificationState struct {
	Phase    Phase
	Verified *Verified
	// Message is the last failure message, cleared when a new attempt starts.
	Message string
}

// VerificationFlow exchanges a candidate hackathon id for a confirmed
// hackathon. Submitting is only possible through the SubmissionFlow it
// hands out after success.
type VerificationFlow struct {
	client *Client

	life     lifecycle
	verify   action
	verified *Verified
	message  string
}

// NewVerificationFlow constructs an unverified flow.
func NewVerificationFlow(client *Client) *VerificationFlow {
	return &VerificationFlow{client: client}
}

// Verify sends candidate as entered. A negative answer is returned as a
// *Rejection carrying the server's message.
func (f *VerificationFlow) Verify(ctx context.Context, candidate string) (Verified, error) {
	f.life.mu.Lock()
	token, err := f.life.begin(&f.verify)
	if err != nil {
		f.life.mu.Unlock()
		return Verified{}, err
	}
	f.verified = nil
	f.message = ""
	f.life.mu.Unlock()

	result, callErr := f.client.VerifyHackathon(ctx, candidate)

	var verified Verified
	if callErr == nil {
		if result.Valid {
			verified = Verified{Name: result.HackathonName}
			if id, ok := candidateID(candidate); ok {
				verified.ID = id
			} else {
				callErr = &Rejection{Message: MessageVerificationFailed}
			}
		} else {
			message := result.Message
			if message == "" {
				message = MessageVerificationFailed
			}
			callErr = &Rejection{Message: message}
		}
	}

	f.life.mu.Lock()
	defer f.life.mu.Unlock()
	if !f.life.current(&f.verify, token) {
		if callErr != nil {
			return Verified{}, callErr
		}
		return verified, nil
	}

	f.life.settle(&f.verify, callErr)
	if callErr != nil {
		f.message = verificationMessage(callErr)
		return Verified{}, callErr
	}
	f.verified = &verified
	return verified, nil
}

// State returns a snapshot of the flow.
func (f *VerificationFlow) State() VerificationState {
	f.life.mu.Lock()
	defer f.life.mu.Unlock()

	state := VerificationState{Phase: f.verify.phase, Message: f.message}
	if f.verified != nil {
		copied := *f.verified
		state.Verified = &copied
	}
	return state
}

// SubmissionFlow returns a submission form bound to the verified hackathon.
func (f *VerificationFlow) SubmissionFlow() (*SubmissionFlow, error) {
	f.life.mu.Lock()
	defer f.life.mu.Unlock()

	if f.life.closed {
		return nil, ErrClosed
	}
	if f.verified == nil {
		return nil, ErrNotVerified
	}
	return newSubmissionFlow(f.client, *f.verified), nil
}

// Close detaches the flow. Late completions no longer change its state.
func (f *VerificationFlow) Close() {
	f.life.close()
}

func verificationMessage(err error) string {
	var status *StatusError
	if errors.As(err, &status) && status.Message == "" {
		return MessageVerificationFailed
	}
	return Message(err)
}

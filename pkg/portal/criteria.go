package portal

import (
	"context"
)

// LoadingPlaceholder is shown in place of the criteria text while a load or
// save is in flight.
const LoadingPlaceholder = "Loading..."

// Navigator moves the user to another view.
type Navigator interface {
	ToDashboard(hackathonID int64)
}

// NavigatorFunc adapts a function to Navigator.
type NavigatorFunc func(hackathonID int64)

// ToDashboard implements Navigator.
func (f NavigatorFunc) ToDashboard(hackathonID int64) {
	f(hackathonID)
}

// CriteriaState is a snapshot of a CriteriaEditor.
type CriteriaState struct {
	LoadPhase Phase
	SavePhase Phase
	Text      string
	Message   string
}

// CriteriaEditor reads and overwrites the criteria of one hackathon.
type CriteriaEditor struct {
	client      *Client
	hackathonID int64
	navigator   Navigator

	life    lifecycle
	load    action
	save    action
	text    string
	message string
}

// NewCriteriaEditor constructs an editor bound to hackathonID. navigator may be nil.
func NewCriteriaEditor(client *Client, hackathonID int64, navigator Navigator) *CriteriaEditor {
	return &CriteriaEditor{client: client, hackathonID: hackathonID, navigator: navigator}
}

// Load fetches the current criteria. Call it on mount.
func (e *CriteriaEditor) Load(ctx context.Context) error {
	e.life.mu.Lock()
	if e.hackathonID <= 0 {
		e.life.mu.Unlock()
		return ErrMissingHackathonID
	}
	if e.save.phase == PhasePending {
		e.life.mu.Unlock()
		return ErrBusy
	}
	token, err := e.life.begin(&e.load)
	if err != nil {
		e.life.mu.Unlock()
		return err
	}
	e.message = ""
	e.life.mu.Unlock()

	text, callErr := e.client.GetCriteria(ctx, e.hackathonID)

	e.life.mu.Lock()
	defer e.life.mu.Unlock()
	if !e.life.current(&e.load, token) {
		return callErr
	}

	e.life.settle(&e.load, callErr)
	if callErr != nil {
		e.message = Message(callErr)
		return callErr
	}
	e.text = text
	return nil
}

// SetText edits the criteria. Edits are ignored while the input is disabled.
func (e *CriteriaEditor) SetText(text string) {
	e.life.mu.Lock()
	defer e.life.mu.Unlock()
	if !e.disabledLocked() {
		e.text = text
	}
}

// Save posts the current text and navigates to the dashboard on success.
// On failure the typed text is kept.
func (e *CriteriaEditor) Save(ctx context.Context) error {
	e.life.mu.Lock()
	if e.hackathonID <= 0 {
		e.life.mu.Unlock()
		return ErrMissingHackathonID
	}
	if e.load.phase == PhasePending {
		e.life.mu.Unlock()
		return ErrBusy
	}
	token, err := e.life.begin(&e.save)
	if err != nil {
		e.life.mu.Unlock()
		return err
	}
	text := e.text
	e.message = ""
	e.life.mu.Unlock()

	callErr := e.client.SaveCriteria(ctx, e.hackathonID, text)

	e.life.mu.Lock()
	if !e.life.current(&e.save, token) {
		e.life.mu.Unlock()
		return callErr
	}
	e.life.settle(&e.save, callErr)
	if callErr != nil {
		e.message = "An error occurred: " + Message(callErr)
		e.life.mu.Unlock()
		return callErr
	}
	navigator := e.navigator
	e.life.mu.Unlock()

	if navigator != nil {
		navigator.ToDashboard(e.hackathonID)
	}
	return nil
}

// Disabled reports whether the input must not accept edits.
func (e *CriteriaEditor) Disabled() bool {
	e.life.mu.Lock()
	defer e.life.mu.Unlock()
	return e.disabledLocked()
}

// Display returns what the input shows: the placeholder while disabled,
// the text otherwise.
func (e *CriteriaEditor) Display() string {
	e.life.mu.Lock()
	defer e.life.mu.Unlock()
	if e.disabledLocked() {
		return LoadingPlaceholder
	}
	return e.text
}

// State returns a snapshot of the editor.
func (e *CriteriaEditor) State() CriteriaState {
	e.life.mu.Lock()
	defer e.life.mu.Unlock()
	return CriteriaState{
		LoadPhase: e.load.phase,
		SavePhase: e.save.phase,
		Text:      e.text,
		Message:   e.message,
	}
}

// Close detaches the editor. A save completing after Close does not navigate.
func (e *CriteriaEditor) Close() {
	e.life.close()
}

func (e *CriteriaEditor) disabledLocked() bool {
	return e.load.phase == PhasePending || e.save.phase == PhasePending
}

package portal

import (
	"context"
	"strings"

	"github.com/rs/zerolog"
)

// DefaultCriteria seeds the criteria draft of a new hackathon.
const DefaultCriteria = "Evaluate based on innovation, impact, and technical execution."

// ConsoleState is a snapshot of a JudgeConsole.
type ConsoleState struct {
	CreatePhase Phase
	ListPhase   Phase
	Hackathons  []Hackathon
	Criteria    string
	// LastCreatedID is the id to share after the latest successful create.
	LastCreatedID int64
	// Alert is the last user-facing failure of either action.
	Alert string
	// IdentityResolved is false while the judge id is unknown.
	IdentityResolved bool
}

// JudgeConsole creates hackathons and lists the judge's own.
type JudgeConsole struct {
	client   *Client
	identity Identity
	logger   zerolog.Logger

	life          lifecycle
	create        action
	list          action
	hackathons    []Hackathon
	created       []Hackathon
	criteria      string
	lastCreatedID int64
	alert         string
}

// ConsoleOption customises a JudgeConsole.
type ConsoleOption func(*JudgeConsole)

// WithConsoleLogger attaches a logger.
func WithConsoleLogger(logger zerolog.Logger) ConsoleOption {
	return func(c *JudgeConsole) {
		c.logger = logger.With().Str("component", "judge_console").Logger()
	}
}

// NewJudgeConsole constructs a console for the judge resolved by identity.
func NewJudgeConsole(client *Client, identity Identity, opts ...ConsoleOption) *JudgeConsole {
	console := &JudgeConsole{
		client:     client,
		identity:   identity,
		logger:     zerolog.Nop(),
		criteria:   DefaultCriteria,
		hackathons: []Hackathon{},
	}
	for _, opt := range opts {
		opt(console)
	}
	return console
}

// SetCriteria edits the criteria draft used by the next Create.
func (c *JudgeConsole) SetCriteria(text string) {
	c.life.mu.Lock()
	defer c.life.mu.Unlock()
	if c.create.phase != PhasePending {
		c.criteria = text
	}
}

// Create registers a hackathon named name with the current criteria draft.
// The server-confirmed hackathon is prepended to the list and the draft is
// reset to DefaultCriteria.
func (c *JudgeConsole) Create(ctx context.Context, name string) (Hackathon, error) {
	c.life.mu.Lock()
	if c.life.closed {
		c.life.mu.Unlock()
		return Hackathon{}, ErrClosed
	}
	if c.create.phase == PhasePending {
		c.life.mu.Unlock()
		return Hackathon{}, ErrBusy
	}
	if strings.TrimSpace(name) == "" {
		c.life.mu.Unlock()
		return Hackathon{}, missingField("name")
	}
	judgeID, ok := resolveJudge(c.identity)
	if !ok {
		c.create.phase = PhaseFailure
		c.alert = "Error: " + MessageIdentityUnresolved
		c.life.mu.Unlock()
		return Hackathon{}, ErrIdentityUnresolved
	}
	token, err := c.life.begin(&c.create)
	if err != nil {
		c.life.mu.Unlock()
		return Hackathon{}, err
	}
	criteria := c.criteria
	c.lastCreatedID = 0
	c.life.mu.Unlock()

	created, callErr := c.client.CreateHackathon(ctx, name, judgeID, criteria)

	c.life.mu.Lock()
	defer c.life.mu.Unlock()
	if !c.life.current(&c.create, token) {
		return created, callErr
	}

	c.life.settle(&c.create, callErr)
	if callErr != nil {
		c.alert = "Error: " + Message(callErr)
		c.logger.Warn().Err(callErr).Msg("failed to create hackathon")
		return Hackathon{}, callErr
	}

	c.hackathons = append([]Hackathon{created}, c.hackathons...)
	c.created = append([]Hackathon{created}, c.created...)
	c.lastCreatedID = created.ID
	c.criteria = DefaultCriteria
	c.alert = ""
	return created, nil
}

// Refresh loads the judge's hackathons. It is the single fetch path for
// mount and manual retry. With an unresolved identity no request is sent.
// A newer Refresh supersedes an older one still in flight.
func (c *JudgeConsole) Refresh(ctx context.Context) error {
	c.life.mu.Lock()
	if c.life.closed {
		c.life.mu.Unlock()
		return ErrClosed
	}
	judgeID, ok := resolveJudge(c.identity)
	if !ok {
		c.list.phase = PhaseFailure
		c.alert = MessageIdentityUnresolved
		c.life.mu.Unlock()
		return ErrIdentityUnresolved
	}
	token := c.life.restart(&c.list)
	c.life.mu.Unlock()

	items, callErr := c.client.ListHackathons(ctx, judgeID)

	c.life.mu.Lock()
	defer c.life.mu.Unlock()
	if !c.life.current(&c.list, token) {
		return callErr
	}

	c.life.settle(&c.list, callErr)
	if callErr != nil {
		c.hackathons = []Hackathon{}
		c.alert = MessageListFailed
		c.logger.Warn().Err(callErr).Msg("failed to load hackathons")
		return callErr
	}
	c.hackathons = mergeCreated(c.created, items)
	if c.alert == MessageListFailed || c.alert == MessageIdentityUnresolved {
		c.alert = ""
	}
	return nil
}

// mergeCreated prepends hackathons created by this console that a list
// response does not contain yet, such as one requested before the create.
func mergeCreated(created, items []Hackathon) []Hackathon {
	listed := make(map[int64]struct{}, len(items))
	for _, item := range items {
		listed[item.ID] = struct{}{}
	}
	merged := make([]Hackathon, 0, len(created)+len(items))
	for _, hackathon := range created {
		if _, ok := listed[hackathon.ID]; !ok {
			merged = append(merged, hackathon)
		}
	}
	return append(merged, items...)
}

// State returns a snapshot of the console.
func (c *JudgeConsole) State() ConsoleState {
	c.life.mu.Lock()
	defer c.life.mu.Unlock()

	_, resolved := resolveJudge(c.identity)
	return ConsoleState{
		CreatePhase:      c.create.phase,
		ListPhase:        c.list.phase,
		Hackathons:       append([]Hackathon(nil), c.hackathons...),
		Criteria:         c.criteria,
		LastCreatedID:    c.lastCreatedID,
		Alert:            c.alert,
		IdentityResolved: resolved,
	}
}

// Close detaches the console.
func (c *JudgeConsole) Close() {
	c.life.close()
}

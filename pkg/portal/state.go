package portal

import "sync"

// Phase is the state of one logical action.
type Phase int

// Action phases. Failure returns to Idle when the action is retried.
const (
	PhaseIdle Phase = iota
	PhasePending
	PhaseSuccess
	PhaseFailure
)

func (p Phase) String() string {
	switch p {
	case PhasePending:
		return "pending"
	case PhaseSuccess:
		return "success"
	case PhaseFailure:
		return "failure"
	default:
		return "idle"
	}
}

// action tracks one logical action of a component.
type action struct {
	phase Phase
	token uint64
}

// lifecycle holds the lock, request tokens and closed flag shared by the
// actions of one component. Network calls run with mu released; a
// completion may write only while its token is still current.
type lifecycle struct {
	mu     sync.Mutex
	closed bool
	next   uint64
}

// begin moves a to Pending. Callers hold l.mu. A pending action rejects
// re-entry with ErrBusy.
func (l *lifecycle) begin(a *action) (uint64, error) {
	if l.closed {
		return 0, ErrClosed
	}
	if a.phase == PhasePending {
		return 0, ErrBusy
	}
	return l.restart(a), nil
}

// restart moves a to Pending with a new token even if a request is already
// outstanding. The older request's completion becomes stale.
func (l *lifecycle) restart(a *action) uint64 {
	l.next++
	a.phase = PhasePending
	a.token = l.next
	return l.next
}

// current reports whether the completion carrying token may write. Callers
// hold l.mu.
func (l *lifecycle) current(a *action, token uint64) bool {
	return !l.closed && a.token == token
}

// settle records the outcome of a. Callers hold l.mu and have checked current.
func (l *lifecycle) settle(a *action, err error) {
	if err != nil {
		a.phase = PhaseFailure
		return
	}
	a.phase = PhaseSuccess
}

func (l *lifecycle) close() {
	l.mu.Lock()
	l.closed = true
	l.mu.Unlock()
}

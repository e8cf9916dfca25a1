package form

import (
	"sync"
	"time"
)

// State of the result panel: Idle → Pending → {Success | Failed}, re-entering
// Pending on every submission.
type State int

const (
	StateIdle State = iota
	StatePending
	StateSuccess
	StateFailed
)

func (s State) String() string {
	switch s {
	case StatePending:
		return "pending"
	case StateSuccess:
		return "success"
	case StateFailed:
		return "failed"
	default:
		return "idle"
	}
}

// Tone is the color coding of the panel.
type Tone int

const (
	ToneNeutral Tone = iota
	ToneSuccess
	ToneError
)

const (
	ResultHeading = "Prediction Results:"
	PendingText   = "Predicting..."
)

// ResultView is an immutable snapshot of the panel.
type ResultView struct {
	State     State
	Tone      Tone
	Heading   string
	Lines     []string
	RequestID string
	Elapsed   time.Duration
}

// ResultPanel is the results region. Every submission takes a token from
// Begin; only the holder of the newest token may resolve the panel, so a
// stale response can never overwrite a newer one or a cleared panel.
type ResultPanel struct {
	mu         sync.Mutex
	view       ResultView
	generation uint64
}

func NewResultPanel() *ResultPanel {
	return &ResultPanel{view: idleView()}
}

func idleView() ResultView {
	return ResultView{State: StateIdle, Tone: ToneNeutral, Heading: ResultHeading}
}

// Begin moves the panel to Pending with the interim placeholder and returns
// the submission token.
func (p *ResultPanel) Begin(requestID string) uint64 {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.generation++
	p.view = ResultView{
		State:     StatePending,
		Tone:      ToneNeutral,
		Heading:   ResultHeading,
		Lines:     []string{PendingText},
		RequestID: requestID,
	}
	return p.generation
}

// Succeed resolves the panel with prediction lines. It reports false and
// leaves the panel untouched when token is stale.
func (p *ResultPanel) Succeed(token uint64, lines []string, elapsed time.Duration) bool {
	return p.resolve(token, StateSuccess, ToneSuccess, ResultHeading, lines, elapsed)
}

// Fail resolves the panel with an error. It reports false when token is stale.
func (p *ResultPanel) Fail(token uint64, heading, message string, elapsed time.Duration) bool {
	return p.resolve(token, StateFailed, ToneError, heading, []string{message}, elapsed)
}

func (p *ResultPanel) resolve(token uint64, st State, tone Tone, heading string, lines []string, elapsed time.Duration) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	if token != p.generation || p.view.State != StatePending {
		return false
	}
	p.view = ResultView{
		State:     st,
		Tone:      tone,
		Heading:   heading,
		Lines:     append([]string(nil), lines...),
		RequestID: p.view.RequestID,
		Elapsed:   elapsed,
	}
	return true
}

// Reset returns the panel to Idle and invalidates every outstanding token.
func (p *ResultPanel) Reset() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.generation++
	p.view = idleView()
}

// View snapshots the panel.
func (p *ResultPanel) View() ResultView {
	p.mu.Lock()
	defer p.mu.Unlock()
	v := p.view
	v.Lines = append([]string(nil), p.view.Lines...)
	return v
}

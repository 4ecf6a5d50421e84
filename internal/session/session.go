package session

import (
	"sync"
	"time"
)

// #region session
// Session is one submitted prompt, from submission to rendered answer or
// failure. A retry creates a new Session with the same ID and Prompt.
type Session struct {
	ID        ID
	Prompt    string
	Attempt   int
	StartedAt time.Time

	mu          sync.Mutex
	state       State
	output      string
	err         error
	transitions []State
	done        chan struct{}
}

func newSession(id ID, prompt string, attempt int) *Session {
	s := &Session{
		ID:      id,
		Prompt:  prompt,
		Attempt: attempt,
		done:    make(chan struct{}),
	}
	s.setState(StateSubmitting)
	return s
}

// Done is closed once the session is done, retry-ready, or abandoned
// because its controller closed.
func (s *Session) Done() <-chan struct{} { return s.done }

// State returns the current state.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Transitions returns every state the session has entered, in order.
func (s *Session) Transitions() []State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]State(nil), s.transitions...)
}

// Output is the text the answer region shows: the reply being typed, or
// the rendered error.
func (s *Session) Output() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.output
}

// Err is the fault that sent the session to the error state, or the
// context error when it was abandoned.
func (s *Session) Err() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.err
}

func (s *Session) setState(st State) {
	s.mu.Lock()
	s.state = st
	s.transitions = append(s.transitions, st)
	s.mu.Unlock()
}

func (s *Session) setOutput(text string) {
	s.mu.Lock()
	s.output = text
	s.mu.Unlock()
}

func (s *Session) setErr(err error) {
	s.mu.Lock()
	s.err = err
	s.mu.Unlock()
}

// #endregion session

package session

import "sync"

// State is the running flag of one review session. Stop may be called from
// any goroutine; the loop observes it between steps.
type State struct {
	mu      sync.Mutex
	running bool
	done    chan struct{}
}

// NewState returns a stopped session state
func NewState() *State {
	return &State{}
}

// Start marks the session as running
func (s *State) Start() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.running {
		s.running = true
		s.done = make(chan struct{})
	}
}

// Stop asks the session to end after the current step
func (s *State) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.running {
		s.running = false
		close(s.done)
	}
}

// Running reports whether the session should keep going
func (s *State) Running() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.running
}

// Done is closed when the session is stopped
func (s *State) Done() <-chan struct{} {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.done == nil {
		s.done = make(chan struct{})
		close(s.done)
	}
	return s.done
}

package recognize

import (
	"sync"
	"time"
)

// State is the orchestrator's position in the recognition cycle.
type State int

const (
	Idle State = iota
	Debouncing
	Recognizing
	Displayed
	Failed
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Debouncing:
		return "debouncing"
	case Recognizing:
		return "recognizing"
	case Displayed:
		return "displayed"
	case Failed:
		return "failed"
	default:
		return "unknown"
	}
}

// session is the per-orchestrator recognition state. All fields are
// guarded by the orchestrator mutex except the backend flags, which have
// their own lock because batch recognition shares them.
type session struct {
	state State

	lastSignature string
	target        string

	displayedValue string
	displayedAt    time.Time

	flagsMu    sync.Mutex
	authFailed map[string]bool
	warned     map[string]bool
}

func newSession() *session {
	return &session{
		authFailed: make(map[string]bool),
		warned:     make(map[string]bool),
	}
}

func (s *session) isAuthFailed(backend string) bool {
	s.flagsMu.Lock()
	defer s.flagsMu.Unlock()
	return s.authFailed[backend]
}

func (s *session) markAuthFailed(backend string) bool {
	s.flagsMu.Lock()
	defer s.flagsMu.Unlock()
	first := !s.authFailed[backend]
	s.authFailed[backend] = true
	return first
}

// warnOnce reports true the first time a backend is found unconfigured.
func (s *session) warnOnce(backend string) bool {
	s.flagsMu.Lock()
	defer s.flagsMu.Unlock()
	if s.warned[backend] {
		return false
	}
	s.warned[backend] = true
	return true
}

// duplicate reports whether value is already on screen and was shown
// less than window ago.
func (s *session) duplicate(value string, now time.Time, window time.Duration) bool {
	return value != "" && value == s.displayedValue && now.Sub(s.displayedAt) < window
}

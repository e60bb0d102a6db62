package capture

import (
	"strings"
	"sync"

	"github.com/google/uuid"

	"carevoice/internal/domain/capture/inter"
	platformerrors "carevoice/internal/platform/errors"
)

// Session tracks one capture attempt through the shared state machine:
//
//	idle -> listening -> stopping -> transcribing -> completed
//
// with any step allowed to fail. finalText is set at most once; partials
// arriving after it are dropped.
type Session struct {
	ID       string
	Strategy inter.Strategy

	mu          sync.Mutex
	state       inter.State
	partialText string
	finalText   string
	finalSet    bool
	err         error
}

func newSession(strategy inter.Strategy) *Session {
	return &Session{
		ID:       uuid.NewString(),
		Strategy: strategy,
		state:    inter.StateIdle,
	}
}

// State returns the current lifecycle state.
func (s *Session) State() inter.State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// PartialText returns the latest interim transcript.
func (s *Session) PartialText() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.partialText
}

// FinalText returns the final transcript, empty until completion.
func (s *Session) FinalText() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.finalText
}

// Err returns the terminal error, if any.
func (s *Session) Err() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.err
}

// transitions lists the legal state machine edges. A final result may arrive
// without an explicit stop (platform recognizers end on silence), so
// listening steps directly to transcribing as well.
var transitions = map[inter.State][]inter.State{
	inter.StateIdle:         {inter.StateListening},
	inter.StateListening:    {inter.StateStopping, inter.StateTranscribing, inter.StateFailed},
	inter.StateStopping:     {inter.StateTranscribing, inter.StateFailed},
	inter.StateTranscribing: {inter.StateCompleted, inter.StateFailed},
}

func (s *Session) advance(to inter.State) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.advanceLocked(to)
}

func (s *Session) advanceLocked(to inter.State) bool {
	for _, allowed := range transitions[s.state] {
		if allowed == to {
			s.state = to
			return true
		}
	}
	return false
}

// setPartial records an interim transcript. Partials never overwrite a set
// final text and are ignored outside live states.
func (s *Session) setPartial(text string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.finalSet {
		return false
	}
	switch s.state {
	case inter.StateListening, inter.StateStopping, inter.StateTranscribing:
		s.partialText = text
		return true
	}
	return false
}

// setFinal records the final transcript exactly once and completes the
// session. A whitespace-only transcript fails the session with
// empty-result instead, so callers never auto-submit blank input.
func (s *Session) setFinal(text string) (ok bool, failed error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.finalSet || s.isTerminalLocked() {
		return false, nil
	}

	if strings.TrimSpace(text) == "" {
		err := platformerrors.New(platformerrors.KindEmptyResult, "capture.final",
			"final transcript was empty")
		s.failLocked(err)
		return false, err
	}

	// walk the remaining edges so a final arriving mid-listen still lands
	// in completed through transcribing
	if s.state == inter.StateListening || s.state == inter.StateStopping {
		s.advanceLocked(inter.StateTranscribing)
	}
	if !s.advanceLocked(inter.StateCompleted) {
		return false, nil
	}
	s.finalText = text
	s.finalSet = true
	return true, nil
}

// fail moves the session to failed with the given error. Returns false when
// the session is already terminal.
func (s *Session) fail(err error) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.failLocked(err)
}

func (s *Session) failLocked(err error) bool {
	if s.isTerminalLocked() {
		return false
	}
	s.state = inter.StateFailed
	s.err = err
	return true
}

func (s *Session) isTerminalLocked() bool {
	return s.state == inter.StateCompleted || s.state == inter.StateFailed
}

package synthesis

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"carevoice/internal/domain/synthesis/inter"
)

// Request tracks one utterance through the state machine:
//
//	idle -> requesting -> playing -> completed
//
// with failed reachable from any live state and cancelled forcing any live
// state straight down. Exactly one request is active at a time; a newer
// Speak cancels its predecessor before starting.
type Request struct {
	ID      string
	Text    string
	Profile inter.VoiceProfile

	mu       sync.Mutex
	state    inter.State
	strategy inter.Strategy
	err      error

	ctx    context.Context
	cancel context.CancelFunc
	done   chan struct{}
}

func newRequest(text string, profile inter.VoiceProfile) *Request {
	ctx, cancel := context.WithCancel(context.Background())
	return &Request{
		ID:      uuid.NewString(),
		Text:    text,
		Profile: profile,
		state:   inter.StateIdle,
		ctx:     ctx,
		cancel:  cancel,
		done:    make(chan struct{}),
	}
}

// Done is closed once the request stops producing effects: no audio, no
// events, no state changes after it.
func (r *Request) Done() <-chan struct{} {
	return r.done
}

// State returns the current lifecycle state.
func (r *Request) State() inter.State {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.state
}

// Strategy reports which synthesis path delivered (or is delivering) the
// utterance.
func (r *Request) Strategy() inter.Strategy {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.strategy
}

// Err returns the terminal error, if any.
func (r *Request) Err() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.err
}

var requestTransitions = map[inter.State][]inter.State{
	inter.StateIdle:       {inter.StateRequesting},
	inter.StateRequesting: {inter.StatePlaying, inter.StateFailed, inter.StateCancelled},
	inter.StatePlaying:    {inter.StateCompleted, inter.StateFailed, inter.StateCancelled},
}

func (r *Request) advance(to inter.State) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, allowed := range requestTransitions[r.state] {
		if allowed == to {
			r.state = to
			return true
		}
	}
	return false
}

func (r *Request) setStrategy(s inter.Strategy) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.strategy = s
}

// fail moves the request to failed. Rejected once terminal, so a cancelled
// request never also reports failure.
func (r *Request) fail(err error) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.isTerminalLocked() {
		return false
	}
	r.state = inter.StateFailed
	r.err = err
	return true
}

// markCancelled forces any live state to cancelled. Returns false when the
// request already reached a terminal state.
func (r *Request) markCancelled() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.isTerminalLocked() {
		return false
	}
	r.state = inter.StateCancelled
	return true
}

func (r *Request) isTerminalLocked() bool {
	switch r.state {
	case inter.StateCompleted, inter.StateFailed, inter.StateCancelled:
		return true
	}
	return false
}

package synthesis

import (
	"errors"
	"testing"

	"carevoice/internal/domain/synthesis/inter"
)

func TestRequestHappyPath(t *testing.T) {
	req := newRequest("hello", inter.VoiceProfile{Gender: inter.GenderFemale, LanguageCode: "en-US"})
	if req.State() != inter.StateIdle {
		t.Fatalf("new request state = %s", req.State())
	}
	if req.ID == "" {
		t.Fatalf("request has no id")
	}

	for _, to := range []inter.State{inter.StateRequesting, inter.StatePlaying, inter.StateCompleted} {
		if !req.advance(to) {
			t.Fatalf("advance to %s rejected from %s", to, req.State())
		}
	}
	if req.State() != inter.StateCompleted {
		t.Errorf("final state = %s", req.State())
	}
}

func TestRequestRejectsSkippedStates(t *testing.T) {
	req := newRequest("hello", inter.VoiceProfile{})
	if req.advance(inter.StatePlaying) {
		t.Errorf("idle -> playing must be rejected")
	}
	if req.advance(inter.StateCompleted) {
		t.Errorf("idle -> completed must be rejected")
	}
}

func TestRequestFailFromLiveStates(t *testing.T) {
	for _, live := range []inter.State{inter.StateRequesting, inter.StatePlaying} {
		req := newRequest("hello", inter.VoiceProfile{})
		req.advance(inter.StateRequesting)
		if live == inter.StatePlaying {
			req.advance(inter.StatePlaying)
		}

		cause := errors.New("boom")
		if !req.fail(cause) {
			t.Fatalf("fail rejected from %s", live)
		}
		if req.State() != inter.StateFailed {
			t.Errorf("state = %s", req.State())
		}
		if req.Err() != cause {
			t.Errorf("err = %v", req.Err())
		}
	}
}

func TestRequestTerminalStatesAreFinal(t *testing.T) {
	req := newRequest("hello", inter.VoiceProfile{})
	req.advance(inter.StateRequesting)
	if !req.markCancelled() {
		t.Fatalf("cancel rejected from requesting")
	}
	if req.markCancelled() {
		t.Errorf("second cancel must report already terminal")
	}
	if req.fail(errors.New("late")) {
		t.Errorf("fail after cancel must be rejected")
	}
	if req.advance(inter.StatePlaying) {
		t.Errorf("advance after cancel must be rejected")
	}
	if req.State() != inter.StateCancelled {
		t.Errorf("state = %s", req.State())
	}
}

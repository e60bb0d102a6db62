package capture

import (
	"testing"

	"carevoice/internal/domain/capture/inter"
	platformerrors "carevoice/internal/platform/errors"
)

func TestSessionHappyPath(t *testing.T) {
	s := newSession(inter.StrategyPlatformNative)
	if s.State() != inter.StateIdle {
		t.Fatalf("new session should be idle, got %s", s.State())
	}

	if !s.advance(inter.StateListening) {
		t.Fatalf("idle -> listening should be legal")
	}
	if !s.setPartial("show my") {
		t.Fatalf("partial should be accepted while listening")
	}
	if ok, _ := s.setFinal("show my medications"); !ok {
		t.Fatalf("final should be accepted")
	}
	if s.State() != inter.StateCompleted {
		t.Errorf("expected completed, got %s", s.State())
	}
	if s.FinalText() != "show my medications" {
		t.Errorf("unexpected final text: %q", s.FinalText())
	}
}

func TestSessionStopPath(t *testing.T) {
	s := newSession(inter.StrategyCloudUpload)
	s.advance(inter.StateListening)

	if !s.advance(inter.StateStopping) {
		t.Fatalf("listening -> stopping should be legal")
	}
	if !s.advance(inter.StateTranscribing) {
		t.Fatalf("stopping -> transcribing should be legal")
	}
	if ok, _ := s.setFinal("refill request"); !ok {
		t.Fatalf("final should complete the session")
	}
	if s.State() != inter.StateCompleted {
		t.Errorf("expected completed, got %s", s.State())
	}
}

func TestSessionIllegalTransitions(t *testing.T) {
	s := newSession(inter.StrategyPlatformNative)

	if s.advance(inter.StateTranscribing) {
		t.Errorf("idle -> transcribing should be rejected")
	}
	s.advance(inter.StateListening)
	if s.advance(inter.StateListening) {
		t.Errorf("listening -> listening should be rejected")
	}
}

func TestSessionFinalSetOnce(t *testing.T) {
	s := newSession(inter.StrategyPlatformNative)
	s.advance(inter.StateListening)

	if ok, _ := s.setFinal("first"); !ok {
		t.Fatalf("first final should be accepted")
	}
	if ok, _ := s.setFinal("second"); ok {
		t.Fatalf("second final must be rejected")
	}
	if s.FinalText() != "first" {
		t.Errorf("final text overwritten: %q", s.FinalText())
	}

	// partials never overwrite a set final
	if s.setPartial("late partial") {
		t.Errorf("partial after final must be dropped")
	}
}

func TestSessionWhitespaceFinalFails(t *testing.T) {
	s := newSession(inter.StrategyCloudUpload)
	s.advance(inter.StateListening)

	ok, err := s.setFinal("   \n\t ")
	if ok {
		t.Fatalf("whitespace final must not complete the session")
	}
	if !platformerrors.IsKind(err, platformerrors.KindEmptyResult) {
		t.Errorf("expected empty-result, got %v", err)
	}
	if s.State() != inter.StateFailed {
		t.Errorf("expected failed, got %s", s.State())
	}
}

func TestSessionFailFromAnyLiveState(t *testing.T) {
	for _, setup := range []struct {
		name  string
		steps []inter.State
	}{
		{name: "listening", steps: []inter.State{inter.StateListening}},
		{name: "stopping", steps: []inter.State{inter.StateListening, inter.StateStopping}},
		{name: "transcribing", steps: []inter.State{inter.StateListening, inter.StateTranscribing}},
	} {
		t.Run(setup.name, func(t *testing.T) {
			s := newSession(inter.StrategyPlatformNative)
			for _, st := range setup.steps {
				s.advance(st)
			}
			err := platformerrors.New(platformerrors.KindTranscription, "test", "boom")
			if !s.fail(err) {
				t.Fatalf("fail should succeed from %s", setup.name)
			}
			if s.State() != inter.StateFailed {
				t.Errorf("expected failed, got %s", s.State())
			}
			// failing twice is a no-op
			if s.fail(err) {
				t.Errorf("fail on terminal session should be rejected")
			}
		})
	}
}

package edge

import (
	"context"
	"testing"

	"carevoice/internal/domain/synthesis/inter"
	platformerrors "carevoice/internal/platform/errors"
)

func TestVoicesReturnsCopy(t *testing.T) {
	s := NewSynthesizer(Config{}, nil)
	voices := s.Voices()
	if len(voices) == 0 {
		t.Fatalf("expected voices")
	}
	voices[0].ID = "mutated"
	if s.Voices()[0].ID == "mutated" {
		t.Errorf("Voices must not expose internal state")
	}
}

func TestStrategy(t *testing.T) {
	s := NewSynthesizer(Config{}, nil)
	if s.Strategy() != inter.StrategyPlatformNative {
		t.Errorf("unexpected strategy: %s", s.Strategy())
	}
}

func TestSynthesizeNoMatchingVoice(t *testing.T) {
	s := NewSynthesizer(Config{DefaultLanguage: "xx-XX"}, nil)
	s.voices = []inter.VoiceInfo{
		{ID: "de-DE-KatjaNeural", Name: "Katja", Language: "de-DE", Gender: "Female"},
	}

	_, err := s.Synthesize(context.Background(), "hello",
		inter.VoiceProfile{Gender: inter.GenderFemale, LanguageCode: "ja-JP"})
	if err == nil {
		t.Fatalf("expected error")
	}
	if !platformerrors.IsKind(err, platformerrors.KindNoCapability) {
		t.Errorf("expected no-capability, got %v", err)
	}
}

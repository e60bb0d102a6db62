package inter

import (
	"context"
	"time"
)

// Strategy identifies how text becomes audible speech.
type Strategy string

const (
	StrategyCloud          Strategy = "cloud"
	StrategyPlatformNative Strategy = "platform-native"
)

// State is the synthesis request lifecycle.
type State string

const (
	StateIdle       State = "idle"
	StateRequesting State = "requesting"
	StatePlaying    State = "playing"
	StateCompleted  State = "completed"
	StateFailed     State = "failed"
	StateCancelled  State = "cancelled"
)

// Voice profile genders accepted by both synthesis paths. Anything else is
// coerced to female before a synthesizer sees it.
const (
	GenderMale   = "male"
	GenderFemale = "female"
)

// VoiceProfile selects which voice speaks.
type VoiceProfile struct {
	Gender       string `json:"gender"`
	LanguageCode string `json:"language_code"`
}

// VoiceInfo describes one platform voice.
type VoiceInfo struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Language string `json:"language"`
	Gender   string `json:"gender"`
}

// Audio is one synthesized utterance.
type Audio struct {
	Data     []byte
	Format   string
	Duration time.Duration
}

// Synthesizer is one synthesis strategy. Implementations receive text that
// has already been normalized.
type Synthesizer interface {
	// Strategy identifies the synthesizer.
	Strategy() Strategy

	// Synthesize produces audio for the text and voice profile.
	Synthesize(ctx context.Context, text string, profile VoiceProfile) (Audio, error)

	// Close releases the synthesizer's resources.
	Close() error
}

// VoiceLister is implemented by synthesizers that can enumerate platform
// voices.
type VoiceLister interface {
	Voices() []VoiceInfo
}

// Player delivers synthesized audio to the user. Play blocks until playback
// ends or ctx is cancelled; cancellation must stop audio before Play
// returns.
type Player interface {
	Play(ctx context.Context, audio Audio) error
}

// Config tunes a synthesis coordinator.
type Config struct {
	DefaultProfile  VoiceProfile
	DefaultLanguage string
}

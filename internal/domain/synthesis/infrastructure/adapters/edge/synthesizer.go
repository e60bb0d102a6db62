package edge

import (
	"context"
	"fmt"
	"time"

	"github.com/wujunwei928/edge-tts-go/edge_tts"

	"carevoice/internal/domain/synthesis/inter"
	"carevoice/internal/platform/errors"
	"carevoice/internal/platform/logging"
)

// Synthesizer is the platform-native synthesis strategy, backed by the Edge
// neural voices available on the device.
type Synthesizer struct {
	cfg    Config
	voices []inter.VoiceInfo
	logger *logging.Logger
}

// Strategy identifies the synthesizer.
func (s *Synthesizer) Strategy() inter.Strategy {
	return inter.StrategyPlatformNative
}

// Voices lists the voices this synthesizer can speak with.
func (s *Synthesizer) Voices() []inter.VoiceInfo {
	out := make([]inter.VoiceInfo, len(s.voices))
	copy(out, s.voices)
	return out
}

// Synthesize produces audio for the text using the best matching voice.
func (s *Synthesizer) Synthesize(ctx context.Context, text string, profile inter.VoiceProfile) (inter.Audio, error) {
	voice, ok := inter.SelectVoice(s.voices, profile, s.cfg.DefaultLanguage)
	if !ok {
		return inter.Audio{}, errors.New(errors.KindNoCapability, "edge.Synthesize",
			fmt.Sprintf("no voice available for language %s", profile.LanguageCode))
	}

	communicate, err := edge_tts.NewCommunicate(text, edge_tts.SetVoice(voice.ID))
	if err != nil {
		return inter.Audio{}, errors.Wrap(errors.KindSynthesisTransient, "edge.Synthesize",
			"failed to create communicator", err)
	}

	start := time.Now()
	audioData, err := communicate.Stream()
	if err != nil {
		return inter.Audio{}, errors.Wrap(errors.KindSynthesisTransient, "edge.Synthesize",
			"synthesis failed", err)
	}
	if len(audioData) == 0 {
		return inter.Audio{}, errors.New(errors.KindSynthesisTransient, "edge.Synthesize",
			"synthesis returned no audio")
	}

	s.logger.Slog().Debug("platform synthesis done",
		"voice", voice.ID, "bytes", len(audioData), "elapsed", time.Since(start))

	return inter.Audio{Data: audioData, Format: "mp3"}, nil
}

// Close releases the synthesizer's resources.
func (s *Synthesizer) Close() error {
	return nil
}

package playback

import (
	"bytes"
	"context"
	"io"
	"time"

	"github.com/hajimehoshi/go-mp3"

	"carevoice/internal/domain/synthesis/inter"
	"carevoice/internal/platform/errors"
	"carevoice/internal/platform/logging"
)

// Sink receives decoded 16-bit little-endian stereo PCM.
type Sink interface {
	// Write delivers one chunk of PCM to the output device.
	Write(pcm []byte) error
}

// bytesPerSecond converts a sample rate to the decoder's output rate:
// two channels, two bytes per sample.
func bytesPerSecond(sampleRate int) int {
	return sampleRate * 4
}

// Config tunes the player.
type Config struct {
	// ChunkDuration is how much audio each Sink.Write carries.
	ChunkDuration time.Duration

	// SampleRate applies to raw PCM input, where no header announces it.
	SampleRate int
}

// Player decodes synthesized audio and streams it to a sink, pacing
// delivery at playback speed so cancellation stops audio promptly.
type Player struct {
	cfg    Config
	sink   Sink
	logger *logging.Logger
}

// NewPlayer creates a Player writing to sink.
func NewPlayer(cfg Config, sink Sink, logger *logging.Logger) *Player {
	if logger == nil {
		logger = logging.Default
	}
	if cfg.ChunkDuration <= 0 {
		cfg.ChunkDuration = 100 * time.Millisecond
	}
	if cfg.SampleRate <= 0 {
		cfg.SampleRate = 24000
	}
	return &Player{cfg: cfg, sink: sink, logger: logger}
}

// Play blocks until the audio has been fully delivered, an error occurs,
// or ctx is cancelled. After a cancelled ctx is observed no further chunks
// reach the sink.
func (p *Player) Play(ctx context.Context, audio inter.Audio) error {
	const op = "playback.Play"
	if len(audio.Data) == 0 {
		return errors.New(errors.KindPlayback, op, "no audio to play")
	}

	var (
		pcm        io.Reader
		sampleRate int
	)
	switch audio.Format {
	case "mp3":
		decoder, err := mp3.NewDecoder(bytes.NewReader(audio.Data))
		if err != nil {
			return errors.Wrap(errors.KindPlayback, op, "decode failed", err)
		}
		pcm = decoder
		sampleRate = decoder.SampleRate()
	case "pcm":
		pcm = bytes.NewReader(audio.Data)
		sampleRate = p.cfg.SampleRate
	default:
		return errors.New(errors.KindPlayback, op, "unsupported format "+audio.Format)
	}

	chunkSize := bytesPerSecond(sampleRate) * int(p.cfg.ChunkDuration) / int(time.Second)
	if chunkSize < 4 {
		chunkSize = 4
	}
	// Keep chunks aligned to whole sample frames.
	chunkSize -= chunkSize % 4

	ticker := time.NewTicker(p.cfg.ChunkDuration)
	defer ticker.Stop()

	buf := make([]byte, chunkSize)
	for {
		n, err := io.ReadFull(pcm, buf)
		if n > 0 {
			if werr := p.sink.Write(buf[:n]); werr != nil {
				return errors.Wrap(errors.KindPlayback, op, "sink write failed", werr)
			}
		}
		if err == io.EOF || err == io.ErrUnexpectedEOF {
			return nil
		}
		if err != nil {
			return errors.Wrap(errors.KindPlayback, op, "decode failed", err)
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
}

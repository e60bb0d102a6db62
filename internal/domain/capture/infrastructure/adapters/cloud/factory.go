package cloud

import (
	"fmt"
	"net/http"
	"time"

	"carevoice/internal/domain/availability"
	"carevoice/internal/domain/capture/inter"
	"carevoice/internal/platform/logging"
)

// Config holds the cloud transcription endpoint settings.
type Config struct {
	BaseURL           string        `json:"url" yaml:"url"`
	APIKey            string        `json:"api_key" yaml:"api_key"`
	Timeout           time.Duration `json:"timeout" yaml:"timeout"`
	SampleRate        int           `json:"sample_rate" yaml:"sample_rate"`
	MaxRecordDuration time.Duration `json:"max_record_duration" yaml:"max_record_duration"`
}

// ValidateConfig checks the endpoint settings before a recognizer is built.
func ValidateConfig(cfg Config) error {
	if cfg.BaseURL == "" {
		return fmt.Errorf("transcription url required")
	}
	if cfg.SampleRate <= 0 {
		return fmt.Errorf("invalid sample rate: %d", cfg.SampleRate)
	}
	if cfg.MaxRecordDuration <= 0 {
		return fmt.Errorf("invalid max record duration: %v", cfg.MaxRecordDuration)
	}
	return nil
}

// NewRecognizer creates a cloud-upload recognizer over the given microphone
// source.
func NewRecognizer(
	cfg Config,
	source inter.AudioSource,
	avail *availability.Availability,
	logger *logging.Logger,
) (*Recognizer, error) {
	if err := ValidateConfig(cfg); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}
	if source == nil {
		return nil, fmt.Errorf("audio source required")
	}
	if avail == nil {
		avail = availability.New(logger)
	}
	if logger == nil {
		logger = logging.Default
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 15 * time.Second
	}

	return &Recognizer{
		cfg:    cfg,
		source: source,
		avail:  avail,
		logger: logger,
		client: &http.Client{Timeout: cfg.Timeout},
	}, nil
}

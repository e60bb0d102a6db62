package cloud

import (
	"fmt"
	"net/http"
	"time"

	"carevoice/internal/platform/logging"
)

// Config holds the cloud synthesis endpoint settings.
type Config struct {
	BaseURL string        `json:"url" yaml:"url"`
	APIKey  string        `json:"api_key" yaml:"api_key"`
	Timeout time.Duration `json:"timeout" yaml:"timeout"`
}

// ValidateConfig checks the endpoint settings.
func ValidateConfig(cfg Config) error {
	if cfg.BaseURL == "" {
		return fmt.Errorf("synthesis url required")
	}
	return nil
}

// NewSynthesizer creates the cloud synthesis strategy.
func NewSynthesizer(cfg Config, logger *logging.Logger) (*Synthesizer, error) {
	if err := ValidateConfig(cfg); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}
	if logger == nil {
		logger = logging.Default
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 15 * time.Second
	}

	return &Synthesizer{
		cfg:    cfg,
		client: &http.Client{Timeout: cfg.Timeout},
		logger: logger,
	}, nil
}

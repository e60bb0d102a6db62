package config

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const defaultPath = ".config.yaml"

// Loader reads configuration from a yaml file layered over DefaultConfig.
type Loader struct {
	useDotEnv bool
	path      string
}

// NewLoader creates a loader reading .config.yaml from the working directory.
func NewLoader() *Loader {
	return &Loader{
		useDotEnv: true,
		path:      defaultPath,
	}
}

// WithDotEnv toggles loading variables from a .env file before reading config.
func (l *Loader) WithDotEnv(enabled bool) *Loader {
	l.useDotEnv = enabled
	return l
}

// WithPath overrides the configuration file path (useful for tests).
func (l *Loader) WithPath(path string) *Loader {
	if path != "" {
		l.path = path
	}
	return l
}

// Result captures the loaded configuration and its origin path.
type Result struct {
	Config *Config
	Path   string
}

// Load reads the config file when present; a missing file yields defaults.
func (l *Loader) Load() (*Result, error) {
	if l.useDotEnv {
		if err := godotenv.Load(); err != nil {
			fmt.Println("no .env file found, using system environment")
		}
	}

	cfg := DefaultConfig()

	data, err := os.ReadFile(l.path)
	if err != nil {
		if os.IsNotExist(err) {
			l.applyEnv(cfg)
			return &Result{Config: cfg, Path: ""}, nil
		}
		return nil, fmt.Errorf("read config: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	l.applyEnv(cfg)

	if err := l.validate(cfg); err != nil {
		return nil, err
	}

	return &Result{Config: cfg, Path: l.path}, nil
}

// applyEnv lets secrets come from the environment instead of the file.
func (l *Loader) applyEnv(cfg *Config) {
	if v := os.Getenv("CAREVOICE_SPEECH_API_KEY"); v != "" {
		cfg.Capture.Cloud.APIKey = v
		cfg.Synthesis.Cloud.APIKey = v
	}
	if v := os.Getenv("CAREVOICE_ASSIST_API_KEY"); v != "" {
		cfg.Assist.APIKey = v
	}
}

func (l *Loader) validate(cfg *Config) error {
	if cfg.Server.Port <= 0 || cfg.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d", cfg.Server.Port)
	}
	if cfg.Web.Enabled && (cfg.Web.Port <= 0 || cfg.Web.Port > 65535) {
		return fmt.Errorf("invalid web port: %d", cfg.Web.Port)
	}
	if cfg.Capture.MaxRecordSeconds <= 0 {
		return fmt.Errorf("invalid max_record_seconds: %d", cfg.Capture.MaxRecordSeconds)
	}
	if cfg.Capture.SampleRate <= 0 {
		return fmt.Errorf("invalid sample_rate: %d", cfg.Capture.SampleRate)
	}
	return nil
}

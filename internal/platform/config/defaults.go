package config

import "time"

// DefaultConfig returns the configuration used when no file overrides it.
func DefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			IP:   "0.0.0.0",
			Port: 8000,
		},
		Log: LogConfig{
			Level: "INFO",
			Dir:   "data/logs",
			File:  "carevoice.log",
		},
		Web: WebConfig{
			Enabled:      true,
			Port:         8080,
			StaticDir:    "web/panel",
			AllowOrigins: []string{"*"},
		},
		Capture: CaptureConfig{
			Language:         "en-US",
			MaxRecordSeconds: 10,
			SampleRate:       16000,
			Cloud: CloudSpeechConfig{
				StatusPath: "/v1/status",
				Timeout:    15 * time.Second,
			},
		},
		Synthesis: SynthesisConfig{
			Voice: VoiceProfileConfig{
				Gender:   "female",
				Language: "en-US",
			},
			OutputDir: "data/audio",
			Cloud: CloudSpeechConfig{
				StatusPath: "/v1/status",
				Timeout:    15 * time.Second,
			},
		},
		Assist: AssistConfig{
			ModelName:   "gpt-4o-mini",
			Temperature: 0.7,
			MaxTokens:   500,
		},
		Availability: AvailabilityConfig{
			Store: StoreConfig{
				Type: "memory",
			},
		},
		Storage: StorageConfig{
			DSN: "data/carevoice.db",
		},
	}
}

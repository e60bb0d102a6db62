package store

import "context"

// Snapshot is the persisted view of the degraded-mode flags.
type Snapshot struct {
	CloudSpeechEnabled    bool `json:"cloud_speech_enabled"`
	CloudSynthesisEnabled bool `json:"cloud_synthesis_enabled"`
}

// Store persists availability flags across portal reloads. In-session state
// lives in the Availability object; the store only exists so an operator can
// opt into remembering degraded mode between sessions.
type Store interface {
	Load(ctx context.Context) (Snapshot, bool, error)
	Save(ctx context.Context, snap Snapshot) error
	Close(ctx context.Context) error
}

// Config describes the high level store selection parameters.
type Config struct {
	Driver    string
	Namespace string
	Redis     *RedisConfig
}

// RedisConfig captures connection options.
type RedisConfig struct {
	Addr     string
	Username string
	Password string
	DB       int
	Prefix   string
}

package config

import "time"

type Config struct {
	Server       ServerConfig       `yaml:"server"`
	Log          LogConfig          `yaml:"log"`
	Web          WebConfig          `yaml:"web"`
	Capture      CaptureConfig      `yaml:"capture"`
	Synthesis    SynthesisConfig    `yaml:"synthesis"`
	Assist       AssistConfig       `yaml:"assist"`
	Availability AvailabilityConfig `yaml:"availability"`
	Storage      StorageConfig      `yaml:"storage"`
}

type ServerConfig struct {
	IP   string `yaml:"ip"`
	Port int    `yaml:"port"`
}

type LogConfig struct {
	Level string `yaml:"log_level"`
	Dir   string `yaml:"log_dir"`
	File  string `yaml:"log_file"`
}

type WebConfig struct {
	Enabled      bool     `yaml:"enabled"`
	Port         int      `yaml:"port"`
	StaticDir    string   `yaml:"static_dir"`
	AllowOrigins []string `yaml:"allow_origins"`
}

// CloudSpeechConfig describes one cloud speech endpoint (transcription or
// synthesis). StatusPath is the lightweight reachability probe target.
type CloudSpeechConfig struct {
	BaseURL    string        `yaml:"url"`
	APIKey     string        `yaml:"api_key"`
	StatusPath string        `yaml:"status_path"`
	Timeout    time.Duration `yaml:"timeout"`
}

type CaptureConfig struct {
	Language         string            `yaml:"language"`
	MaxRecordSeconds int               `yaml:"max_record_seconds"`
	SampleRate       int               `yaml:"sample_rate"`
	Cloud            CloudSpeechConfig `yaml:"cloud"`
}

type SynthesisConfig struct {
	Voice     VoiceProfileConfig `yaml:"voice"`
	OutputDir string             `yaml:"output_dir"`
	Cloud     CloudSpeechConfig  `yaml:"cloud"`
}

type VoiceProfileConfig struct {
	Gender   string `yaml:"gender"`
	Language string `yaml:"language"`
}

type AssistConfig struct {
	BaseURL     string  `yaml:"url"`
	APIKey      string  `yaml:"api_key"`
	ModelName   string  `yaml:"model_name"`
	Temperature float64 `yaml:"temperature"`
	MaxTokens   int     `yaml:"max_tokens"`
}

type AvailabilityConfig struct {
	Store StoreConfig `yaml:"store"`
}

type StoreConfig struct {
	Type  string           `yaml:"type"`
	Redis RedisStoreConfig `yaml:"redis,omitempty"`
}

type RedisStoreConfig struct {
	Addr     string `yaml:"addr"`
	Username string `yaml:"username,omitempty"`
	Password string `yaml:"password,omitempty"`
	DB       int    `yaml:"db,omitempty"`
	Prefix   string `yaml:"prefix,omitempty"`
}

type StorageConfig struct {
	DSN string `yaml:"dsn"`
}

package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoader_Load(t *testing.T) {
	tempDir := t.TempDir()
	configFile := filepath.Join(tempDir, ".config.yaml")

	configContent := `
server:
  ip: "127.0.0.1"
  port: 8080
log:
  log_level: "DEBUG"
  log_dir: "/tmp/logs"
  log_file: "test.log"
capture:
  language: "en-GB"
  max_record_seconds: 8
`

	require.NoError(t, os.WriteFile(configFile, []byte(configContent), 0644))

	loader := NewLoader().WithDotEnv(false).WithPath(configFile)
	res, err := loader.Load()
	require.NoError(t, err)
	cfg := res.Config

	assert.Equal(t, "127.0.0.1", cfg.Server.IP)
	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, "DEBUG", cfg.Log.Level)
	assert.Equal(t, "en-GB", cfg.Capture.Language)
	assert.Equal(t, 8, cfg.Capture.MaxRecordSeconds)
	// untouched sections keep defaults
	assert.Equal(t, "female", cfg.Synthesis.Voice.Gender)
	assert.Equal(t, 16000, cfg.Capture.SampleRate)
}

func TestLoader_LoadMissingFile(t *testing.T) {
	loader := NewLoader().WithDotEnv(false).WithPath(filepath.Join(t.TempDir(), "absent.yaml"))
	res, err := loader.Load()
	require.NoError(t, err, "missing file should fall back to defaults")

	assert.Empty(t, res.Path)
	assert.Equal(t, 8000, res.Config.Server.Port)
}

func TestLoader_Validate(t *testing.T) {
	loader := NewLoader()

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{
			name:    "valid config",
			mutate:  func(*Config) {},
			wantErr: false,
		},
		{
			name:    "invalid server port",
			mutate:  func(c *Config) { c.Server.Port = 70000 },
			wantErr: true,
		},
		{
			name:    "invalid web port",
			mutate:  func(c *Config) { c.Web.Port = -1 },
			wantErr: true,
		},
		{
			name:    "invalid record ceiling",
			mutate:  func(c *Config) { c.Capture.MaxRecordSeconds = 0 },
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			err := loader.validate(cfg)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestLoader_EnvOverride(t *testing.T) {
	t.Setenv("CAREVOICE_SPEECH_API_KEY", "sk-speech")
	t.Setenv("CAREVOICE_ASSIST_API_KEY", "sk-assist")

	loader := NewLoader().WithDotEnv(false).WithPath(filepath.Join(t.TempDir(), "absent.yaml"))
	res, err := loader.Load()
	require.NoError(t, err)

	assert.Equal(t, "sk-speech", res.Config.Capture.Cloud.APIKey)
	assert.Equal(t, "sk-speech", res.Config.Synthesis.Cloud.APIKey)
	assert.Equal(t, "sk-assist", res.Config.Assist.APIKey)
}

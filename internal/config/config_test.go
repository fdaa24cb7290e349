package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/plant-identifier/backend/internal/identify"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, name := range []string{"PORT", "GEMINI_API_KEY", "GOOGLE_API_KEY", "PLANTID_MODEL", "PLANTID_EXTRACTION", "LOG_LEVEL"} {
		t.Setenv(name, "")
	}
}

func TestLoadConfig_CreatesDefault(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "plantid.yaml")

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, DefaultModel, cfg.Upstream.Model)
	assert.Equal(t, identify.ExtractionBracket, cfg.ExtractionMode())
	assert.Zero(t, cfg.UpstreamTimeout())

	_, err = os.Stat(path)
	assert.NoError(t, err, "default config should be written")
}

func TestLoadConfig_ReadsFile(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "plantid.yaml")
	content := `
server:
  port: 9000
  bind_address: 127.0.0.1
  body_limit: 5M
upstream:
  model: gemini-2.0-flash
  timeout_seconds: 45
identify:
  extraction: strict
logging:
  level: debug
  format: console
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, "127.0.0.1:9000", cfg.GetServerAddr())
	assert.Equal(t, "5M", cfg.Server.BodyLimit)
	assert.Equal(t, "gemini-2.0-flash", cfg.Upstream.Model)
	assert.Equal(t, 45*time.Second, cfg.UpstreamTimeout())
	assert.Equal(t, identify.ExtractionStrict, cfg.ExtractionMode())
	assert.Equal(t, "console", cfg.Logging.Format)
	// Unset keys keep their defaults.
	assert.Equal(t, 120, cfg.Server.IdleTimeout)
}

func TestLoadConfig_EnvironmentOverrides(t *testing.T) {
	clearEnv(t)
	t.Setenv("PORT", "7000")
	t.Setenv("GOOGLE_API_KEY", "google-key")
	t.Setenv("GEMINI_API_KEY", "gemini-key")
	t.Setenv("PLANTID_MODEL", "gemini-exp")
	t.Setenv("LOG_LEVEL", "warn")

	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "plantid.yaml"))
	require.NoError(t, err)
	assert.Equal(t, 7000, cfg.Server.Port)
	assert.Equal(t, "google-key", cfg.Upstream.APIKey)
	assert.Equal(t, "gemini-exp", cfg.Upstream.Model)
	assert.Equal(t, "warn", cfg.Logging.Level)
}

func TestLoadConfig_Invalid(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"bad yaml", "server: [unclosed"},
		{"bad port", "server:\n  port: 70000\n"},
		{"bad extraction", "identify:\n  extraction: regex\n"},
		{"negative timeout", "upstream:\n  timeout_seconds: -1\n"},
		{"empty model", "upstream:\n  model: \"\"\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clearEnv(t)
			path := filepath.Join(t.TempDir(), "plantid.yaml")
			require.NoError(t, os.WriteFile(path, []byte(tt.content), 0644))
			_, err := LoadConfig(path)
			assert.Error(t, err)
		})
	}
}

func TestSave_OmitsAPIKey(t *testing.T) {
	path := filepath.Join(t.TempDir(), "plantid.yaml")
	cfg := DefaultConfig()
	cfg.Upstream.APIKey = "secret"

	require.NoError(t, cfg.Save(path))
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.NotContains(t, string(data), "secret")
	assert.Equal(t, "secret", cfg.Upstream.APIKey, "Save must not modify the receiver")
}

func TestGetAllowOrigins(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Server.AllowOrigins = " http://a.example , http://b.example,"
	assert.Equal(t, []string{"http://a.example", "http://b.example"}, cfg.GetAllowOrigins())

	cfg.Server.AllowOrigins = ""
	assert.Equal(t, []string{"*"}, cfg.GetAllowOrigins())
}

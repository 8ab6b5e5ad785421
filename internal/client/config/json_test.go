package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeTempJSON(t *testing.T, dir, name string, data map[string]any) string {
	t.Helper()
	if dir == "" {
		dir = t.TempDir()
	}
	if name == "" {
		name = "cfg.json"
	}
	path := filepath.Join(dir, name)
	b, err := json.Marshal(data)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(path, b, 0o600))
	return path
}

func Test_parseJson_SourcesAndPrecedence(t *testing.T) {
	dir := t.TempDir()
	pathFlag := writeTempJSON(t, dir, "flag.json", map[string]any{
		"api_base_url":          "https://staging.example/v1",
		"request_timeout":       "10s",
		"token_refresh_buffer":  60_000_000_000,
		"max_login_attempts":    3,
		"ssl_enabled":           false,
		"ssl_pins":              []string{"p1", "p2"},
		"refresh_retries":       0,
		"online_check_interval": "10s",
	})

	t.Run("loads from flags", func(t *testing.T) {
		cfg := &Config{}
		cfg.LoadDefaults()
		require.NoError(t, parseJson(cfg, []string{"-config", pathFlag}))

		assert.Equal(t, "https://staging.example/v1", cfg.APIBaseURL)
		assert.Equal(t, 10*time.Second, cfg.RequestTimeout)
		assert.Equal(t, time.Minute, cfg.TokenRefreshBuffer)
		assert.Equal(t, 3, cfg.MaxLoginAttempts)
		assert.False(t, cfg.SSLEnabled)
		assert.Equal(t, []string{"p1", "p2"}, cfg.SSLPins)
		assert.Equal(t, 0, cfg.RefreshRetries)
		assert.Equal(t, 10*time.Second, cfg.OnlineCheckInterval)
		// absent keys keep defaults
		assert.Equal(t, 3, cfg.MaxResetAttempts)
		assert.Equal(t, "text", cfg.LogFormat)
	})

	t.Run("short flag", func(t *testing.T) {
		cfg := &Config{}
		require.NoError(t, parseJson(cfg, []string{"-c", pathFlag}))
		assert.Equal(t, "https://staging.example/v1", cfg.APIBaseURL)
	})

	t.Run("no flags → no changes", func(t *testing.T) {
		cfg := &Config{
			APIBaseURL:          "https://defaults",
			OnlineCheckInterval: 42 * time.Second,
		}
		require.NoError(t, parseJson(cfg, nil))

		assert.Equal(t, "https://defaults", cfg.APIBaseURL)
		assert.Equal(t, 42*time.Second, cfg.OnlineCheckInterval)
	})

	t.Run("invalid JSON → error", func(t *testing.T) {
		bad := filepath.Join(dir, "bad.json")
		require.NoError(t, os.WriteFile(bad, []byte(`{ this is not valid json`), 0o600))

		require.Error(t, parseJson(&Config{}, []string{"-config", bad}))
	})

	t.Run("missing file → error", func(t *testing.T) {
		require.Error(t, parseJson(&Config{}, []string{"-config", filepath.Join(dir, "nope.json")}))
	})
}

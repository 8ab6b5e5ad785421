package config

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/dmitrijs2005/holyculture/internal/flagx"
	"github.com/dmitrijs2005/holyculture/internal/timex"
)

// JsonConfig is a DTO used exclusively for JSON unmarshalling. Durations use
// timex.Duration so they can be written as "5m" or as nanoseconds. Absent or
// zero fields leave the current value untouched.
type JsonConfig struct {
	APIBaseURL          string         `json:"api_base_url"`
	RequestTimeout      timex.Duration `json:"request_timeout"`
	RequestsPerSecond   float64        `json:"requests_per_second"`
	SSLEnabled          *bool          `json:"ssl_enabled"`
	SSLPins             []string       `json:"ssl_pins"`
	ClientName          string         `json:"client_name"`
	ClientVersion       string         `json:"client_version"`
	TokenRefreshBuffer  timex.Duration `json:"token_refresh_buffer"`
	SessionTimeout      timex.Duration `json:"session_timeout"`
	MaxLoginAttempts    int            `json:"max_login_attempts"`
	LockoutDuration     timex.Duration `json:"lockout_duration"`
	MaxResetAttempts    int            `json:"max_reset_attempts"`
	ResetWindow         timex.Duration `json:"reset_window"`
	RefreshRetries      *int           `json:"refresh_retries"`
	VaultPath           string         `json:"vault_path"`
	DeviceKeyPath       string         `json:"device_key_path"`
	LogLevel            string         `json:"log_level"`
	LogFormat           string         `json:"log_format"`
	OnlineCheckInterval timex.Duration `json:"online_check_interval"`
	Environment         string         `json:"environment"`
}

// parseJson overlays cfg with the JSON file named by -c/-config, if any.
func parseJson(cfg *Config, args []string) error {
	path := flagx.ConfigPath(args)
	if path == "" {
		return nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config %s: %w", path, err)
	}
	var jc JsonConfig
	if err := json.Unmarshal(data, &jc); err != nil {
		return fmt.Errorf("parse config %s: %w", path, err)
	}

	setIfNonZero(&cfg.APIBaseURL, jc.APIBaseURL)
	setIfNonZero(&cfg.RequestTimeout, jc.RequestTimeout.Duration)
	setIfNonZero(&cfg.RequestsPerSecond, jc.RequestsPerSecond)
	if jc.SSLEnabled != nil {
		cfg.SSLEnabled = *jc.SSLEnabled
	}
	if jc.SSLPins != nil {
		cfg.SSLPins = jc.SSLPins
	}
	setIfNonZero(&cfg.ClientName, jc.ClientName)
	setIfNonZero(&cfg.ClientVersion, jc.ClientVersion)
	setIfNonZero(&cfg.TokenRefreshBuffer, jc.TokenRefreshBuffer.Duration)
	setIfNonZero(&cfg.SessionTimeout, jc.SessionTimeout.Duration)
	setIfNonZero(&cfg.MaxLoginAttempts, jc.MaxLoginAttempts)
	setIfNonZero(&cfg.LockoutDuration, jc.LockoutDuration.Duration)
	setIfNonZero(&cfg.MaxResetAttempts, jc.MaxResetAttempts)
	setIfNonZero(&cfg.ResetWindow, jc.ResetWindow.Duration)
	if jc.RefreshRetries != nil {
		cfg.RefreshRetries = *jc.RefreshRetries
	}
	setIfNonZero(&cfg.VaultPath, jc.VaultPath)
	setIfNonZero(&cfg.DeviceKeyPath, jc.DeviceKeyPath)
	setIfNonZero(&cfg.LogLevel, jc.LogLevel)
	setIfNonZero(&cfg.LogFormat, jc.LogFormat)
	setIfNonZero(&cfg.OnlineCheckInterval, jc.OnlineCheckInterval.Duration)
	setIfNonZero(&cfg.Environment, jc.Environment)
	return nil
}

func setIfNonZero[T comparable](dst *T, v T) {
	var zero T
	if v != zero {
		*dst = v
	}
}

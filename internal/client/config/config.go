package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/dmitrijs2005/holyculture/internal/validation"
)

const EnvProduction = "production"

// Config holds runtime settings for the Holy Culture client.
type Config struct {
	APIBaseURL        string        `env:"API_BASE_URL" validate:"required,url"`
	RequestTimeout    time.Duration `env:"API_TIMEOUT" validate:"gt=0"`
	RequestsPerSecond float64       `env:"API_RPS" validate:"gte=0"`
	SSLEnabled        bool          `env:"SSL_ENABLED"`
	SSLPins           []string      `env:"SSL_PINS" envSeparator:","`
	ClientName        string        `env:"CLIENT_NAME" validate:"required"`
	ClientVersion     string        `env:"CLIENT_VERSION" validate:"required"`

	TokenRefreshBuffer time.Duration `env:"TOKEN_REFRESH_BUFFER" validate:"gte=0"`
	SessionTimeout     time.Duration `env:"SESSION_TIMEOUT" validate:"gte=0"`
	MaxLoginAttempts   int           `env:"MAX_LOGIN_ATTEMPTS" validate:"gt=0"`
	LockoutDuration    time.Duration `env:"LOCKOUT_DURATION" validate:"gt=0"`
	MaxResetAttempts   int           `env:"MAX_RESET_ATTEMPTS" validate:"gt=0"`
	ResetWindow        time.Duration `env:"RESET_WINDOW" validate:"gt=0"`
	RefreshRetries     int           `env:"REFRESH_RETRIES" validate:"gte=0,lte=10"`

	VaultPath     string `env:"VAULT_PATH" validate:"required"`
	DeviceKeyPath string `env:"DEVICE_KEY_PATH" validate:"required"`

	LogLevel  string `env:"LOG_LEVEL" validate:"oneof=debug info warn error"`
	LogFormat string `env:"LOG_FORMAT" validate:"oneof=text json zap"`

	OnlineCheckInterval time.Duration `env:"ONLINE_CHECK_INTERVAL" validate:"gte=0"`
	Environment         string        `env:"APP_ENV" validate:"oneof=development staging production"`
}

var ErrMissingPins = errors.New("SSL pins are required in production")

// LoadDefaults populates c with sensible defaults.
func (c *Config) LoadDefaults() {
	dir := defaultDataDir()

	c.APIBaseURL = "https://api.holycultureradio.com/v1"
	c.RequestTimeout = 30 * time.Second
	c.RequestsPerSecond = 10
	c.SSLEnabled = true
	c.SSLPins = nil
	c.ClientName = "holy-culture-cli"
	c.ClientVersion = "1.0.0"

	c.TokenRefreshBuffer = 5 * time.Minute
	c.SessionTimeout = time.Hour
	c.MaxLoginAttempts = 5
	c.LockoutDuration = 5 * time.Minute
	c.MaxResetAttempts = 3
	c.ResetWindow = time.Hour
	c.RefreshRetries = 2

	c.VaultPath = filepath.Join(dir, "vault.db")
	c.DeviceKeyPath = filepath.Join(dir, "device.key")

	c.LogLevel = "info"
	c.LogFormat = "text"

	c.OnlineCheckInterval = 30 * time.Second
	c.Environment = "development"
}

func defaultDataDir() string {
	if dir, err := os.UserConfigDir(); err == nil {
		return filepath.Join(dir, "holyculture")
	}
	return ".holyculture"
}

// ActivePins returns the pins to enforce, or nil when pinning is disabled.
func (c *Config) ActivePins() []string {
	if !c.SSLEnabled {
		return nil
	}
	return c.SSLPins
}

// Validate checks field ranges and the production-only requirements.
func (c *Config) Validate() error {
	if err := validation.Struct(c); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	if c.Environment == EnvProduction && c.SSLEnabled && len(c.SSLPins) == 0 {
		return ErrMissingPins
	}
	return nil
}

// LoadConfig builds a Config from defaults, then an optional JSON file
// (-c/-config), then the environment and an optional dotenv file (-env), then
// command-line flags. Later sources take precedence over earlier ones.
func LoadConfig(args []string) (*Config, error) {
	cfg := &Config{}
	cfg.LoadDefaults()
	if err := parseJson(cfg, args); err != nil {
		return nil, err
	}
	if err := parseEnv(cfg, args, os.Environ()); err != nil {
		return nil, err
	}
	if err := parseFlags(cfg, args); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

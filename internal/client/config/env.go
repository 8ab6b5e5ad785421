package config

import (
	"fmt"
	"strings"

	"github.com/caarlos0/env/v11"
	"github.com/dmitrijs2005/holyculture/internal/flagx"
	"github.com/joho/godotenv"
)

const EnvPrefix = "HOLY_"

// parseEnv overlays cfg with HOLY_* variables from environ. A dotenv file
// named by -env supplies values for variables not already set.
func parseEnv(cfg *Config, args []string, environ []string) error {
	vars := make(map[string]string, len(environ))

	if path := flagx.EnvFilePath(args); path != "" {
		fileVars, err := godotenv.Read(path)
		if err != nil {
			return fmt.Errorf("read env file %s: %w", path, err)
		}
		for k, v := range fileVars {
			vars[k] = v
		}
	}
	for _, kv := range environ {
		if k, v, ok := strings.Cut(kv, "="); ok {
			vars[k] = v
		}
	}

	if err := env.ParseWithOptions(cfg, env.Options{Prefix: EnvPrefix, Environment: vars}); err != nil {
		return fmt.Errorf("parse environment: %w", err)
	}
	return nil
}

// Package config loads runtime configuration for the Holy Culture client.
//
// Sources & precedence
//
//  1. Built-in defaults (see (*Config).LoadDefaults).
//  2. Optional JSON file selected via -c or -config.
//  3. HOLY_* environment variables; an optional dotenv file given with -env
//     fills in variables that are not set in the process environment.
//  4. Command-line flags, which override earlier values.
//
// Supported flags
//
//	-a string   API base URL
//	-t int      request timeout (seconds)
//	-d string   vault database path
//	-l string   log level
//	-i int      online status check interval (seconds)
//
// # JSON schema
//
// Durations are timex.Duration, so values can be strings like "5m" or
// integer nanoseconds:
//
//	{
//	  "api_base_url": "https://api.holycultureradio.com/v1",
//	  "request_timeout": "30s",
//	  "token_refresh_buffer": "5m",
//	  "max_login_attempts": 5,
//	  "ssl_pins": ["base64-spki-sha256"]
//	}
package config

// Package config handles configuration for the development backend,
// including defaults, JSON overlay, and command-line flags.
package config

import (
	"os"
	"time"
)

// Config holds runtime settings for the development backend.
//
// Fields:
//   - Addr: bind address for the HTTP listener.
//   - Prefix: path prefix of the API routes (the health check is also served at /health).
//   - SecretKey: HMAC secret for signing JWTs (HS256). Do not use the default outside development.
//   - AccessTokenValidityDuration: access token lifetime.
//   - LogLevel: debug, info, warn or error. Requests are logged at debug.
type Config struct {
	Addr                        string
	Prefix                      string
	SecretKey                   string
	AccessTokenValidityDuration time.Duration
	LogLevel                    string
}

// LoadDefaults populates Config with development defaults that match the
// client's default base URL.
func (c *Config) LoadDefaults() {
	c.Addr = ":8000"
	c.Prefix = "/v1"
	c.SecretKey = "secretKey"
	c.AccessTokenValidityDuration = 30 * time.Minute
	c.LogLevel = "info"
}

// LoadConfig builds a Config by applying defaults, then overlaying values
// from an optional JSON file and finally from command-line flags.
func LoadConfig() (*Config, error) {
	return Load(os.Args[1:])
}

// Load is LoadConfig over an explicit argument list.
func Load(args []string) (*Config, error) {
	cfg := &Config{}
	cfg.LoadDefaults()
	if err := parseJSON(cfg, args); err != nil {
		return nil, err
	}
	if err := parseFlags(cfg, args); err != nil {
		return nil, err
	}
	return cfg, nil
}

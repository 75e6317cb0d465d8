package config

import (
	"os"
	"time"
)

// Config holds runtime settings for the todo CLI.
//
// Fields:
//   - APIBaseURL: backend base URL; endpoint paths are appended verbatim.
//   - StoragePath: SQLite file that keeps the session and preferences.
//   - IdleTimeout: auto-logout after this much inactivity (0 disables it).
//   - RequestTimeout: per-request ceiling (0 means none, requests run to completion).
//   - TokenExpiryBuffer: a JWT is treated as expired this long before its exp claim.
//   - LogLevel: debug, info, warn or error.
//   - LogRequests: log every API request/response at debug level.
//   - BackendLogout: call POST /auth/logout before clearing the local session.
//   - HealthCheckInterval: how often the CLI probes /health for its online marker (0 disables it).
type Config struct {
	APIBaseURL        string
	StoragePath       string
	IdleTimeout       time.Duration
	RequestTimeout    time.Duration
	TokenExpiryBuffer time.Duration
	LogLevel          string
	LogRequests       bool
	BackendLogout     bool

	HealthCheckInterval time.Duration
}

// LoadDefaults populates c with the development defaults.
func (c *Config) LoadDefaults() {
	c.APIBaseURL = "http://localhost:8000/v1"
	c.StoragePath = "todo.db"
	c.IdleTimeout = 30 * time.Minute
	c.RequestTimeout = 0
	c.TokenExpiryBuffer = 5 * time.Minute
	c.LogLevel = "info"
	c.LogRequests = false
	c.BackendLogout = false
	c.HealthCheckInterval = 30 * time.Second
}

// LoadConfig builds a Config from defaults, then the JSON file (if any), then
// command-line flags. Later sources take precedence over earlier ones.
func LoadConfig() (*Config, error) {
	return Load(os.Args[1:])
}

// Load is LoadConfig over an explicit argument list (without the program name).
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

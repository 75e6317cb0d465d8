package config

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/dmitrijs2005/todoclient/internal/flagx"
	"github.com/dmitrijs2005/todoclient/internal/timex"
)

// JSONConfig is the DTO for the config file. Pointer fields distinguish
// "absent" from "zero", so a file only overrides what it mentions.
type JSONConfig struct {
	APIBaseURL        *string         `json:"api_base_url"`
	StoragePath       *string         `json:"storage_path"`
	IdleTimeout       *timex.Duration `json:"idle_timeout"`
	RequestTimeout    *timex.Duration `json:"request_timeout"`
	TokenExpiryBuffer *timex.Duration `json:"token_expiry_buffer"`
	LogLevel          *string         `json:"log_level"`
	LogRequests       *bool           `json:"log_requests"`
	BackendLogout     *bool           `json:"backend_logout"`

	HealthCheckInterval *timex.Duration `json:"health_check_interval"`
}

// parseJSON overlays cfg with values from the file named by -c/-config (or
// $TODOCLIENT_CONFIG). No path means nothing to do.
func parseJSON(cfg *Config, args []string) error {
	path := flagx.ConfigPath(args)
	if path == "" {
		return nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config %s: %w", path, err)
	}

	var jc JSONConfig
	if err := json.Unmarshal(data, &jc); err != nil {
		return fmt.Errorf("parse config %s: %w", path, err)
	}

	if jc.APIBaseURL != nil {
		cfg.APIBaseURL = *jc.APIBaseURL
	}
	if jc.StoragePath != nil {
		cfg.StoragePath = *jc.StoragePath
	}
	if jc.IdleTimeout != nil {
		cfg.IdleTimeout = jc.IdleTimeout.Duration
	}
	if jc.RequestTimeout != nil {
		cfg.RequestTimeout = jc.RequestTimeout.Duration
	}
	if jc.TokenExpiryBuffer != nil {
		cfg.TokenExpiryBuffer = jc.TokenExpiryBuffer.Duration
	}
	if jc.LogLevel != nil {
		cfg.LogLevel = *jc.LogLevel
	}
	if jc.LogRequests != nil {
		cfg.LogRequests = *jc.LogRequests
	}
	if jc.BackendLogout != nil {
		cfg.BackendLogout = *jc.BackendLogout
	}
	if jc.HealthCheckInterval != nil {
		cfg.HealthCheckInterval = jc.HealthCheckInterval.Duration
	}
	return nil
}

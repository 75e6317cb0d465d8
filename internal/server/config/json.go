package config

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/dmitrijs2005/todoclient/internal/flagx"
	"github.com/dmitrijs2005/todoclient/internal/timex"
)

// JSONConfig is the DTO for the config file. timex.Duration accepts both
// "30m" and integer nanoseconds; absent fields keep their current value.
type JSONConfig struct {
	Addr                        *string         `json:"addr"`
	Prefix                      *string         `json:"prefix"`
	SecretKey                   *string         `json:"secret_key"`
	AccessTokenValidityDuration *timex.Duration `json:"access_token_validity_duration"`
	LogLevel                    *string         `json:"log_level"`
}

// parseJSON overlays cfg with the file named by -c/-config (or
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

	if jc.Addr != nil {
		cfg.Addr = *jc.Addr
	}
	if jc.Prefix != nil {
		cfg.Prefix = *jc.Prefix
	}
	if jc.SecretKey != nil {
		cfg.SecretKey = *jc.SecretKey
	}
	if jc.AccessTokenValidityDuration != nil {
		cfg.AccessTokenValidityDuration = jc.AccessTokenValidityDuration.Duration
	}
	if jc.LogLevel != nil {
		cfg.LogLevel = *jc.LogLevel
	}
	return nil
}

// Package config loads runtime configuration for the todo CLI and holds the
// fixed constants (storage keys, user-facing messages, validation rules).
//
// Sources & precedence
//
//  1. Built-in defaults (see (*Config).LoadDefaults).
//  2. Optional JSON file named by -c/-config, or $TODOCLIENT_CONFIG.
//  3. Command-line flags, which override earlier values.
//
// Supported flags
//
//	-a string   API base URL
//	-s string   storage file path
//	-t int      idle timeout (minutes, 0 disables auto-logout)
//	-l string   log level (debug, info, warn, error)
//	-v          log API requests
//
// # JSON schema
//
// Durations are timex.Duration, so either strings like "30m" or integer
// nanoseconds. Absent keys keep their previous value:
//
//	{
//	  "api_base_url": "http://localhost:8000/v1",
//	  "storage_path": "todo.db",
//	  "idle_timeout": "30m",
//	  "request_timeout": "0s",
//	  "token_expiry_buffer": "5m",
//	  "log_level": "info",
//	  "log_requests": false,
//	  "backend_logout": false
//	}
package config

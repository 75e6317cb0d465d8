package config

import (
	"flag"
	"fmt"
	"io"
	"time"

	"github.com/dmitrijs2005/todoclient/internal/flagx"
)

var flagSpec = flagx.Spec{
	Valued:   []string{"-a", "-s", "-t", "-l"},
	Switches: []string{"-v"},
}

// parseFlags overlays cfg with command-line flags:
//
//	-a string   API base URL
//	-s string   storage file path
//	-t int      idle timeout in minutes (0 disables auto-logout)
//	-l string   log level
//	-v          log API requests
//
// Only these flags are looked at (see flagx.Spec), so -c/-config and
// anything else on the command line is left alone.
func parseFlags(cfg *Config, args []string) error {
	fs := flag.NewFlagSet("todo", flag.ContinueOnError)
	fs.SetOutput(io.Discard)

	fs.StringVar(&cfg.APIBaseURL, "a", cfg.APIBaseURL, "API base URL")
	fs.StringVar(&cfg.StoragePath, "s", cfg.StoragePath, "storage file path")
	idle := fs.Int("t", int(cfg.IdleTimeout.Minutes()), "idle timeout (in minutes)")
	fs.StringVar(&cfg.LogLevel, "l", cfg.LogLevel, "log level")
	fs.BoolVar(&cfg.LogRequests, "v", cfg.LogRequests, "log API requests")

	if err := fs.Parse(flagSpec.Filter(args)); err != nil {
		return fmt.Errorf("parse flags: %w", err)
	}

	fs.Visit(func(f *flag.Flag) {
		if f.Name == "t" {
			cfg.IdleTimeout = time.Duration(*idle) * time.Minute
		}
	})
	return nil
}

// Package flagx lets several components parse their own flags out of a single
// os.Args without tripping over each other's unknown flags.
package flagx

import (
	"flag"
	"os"
	"strings"
)

// ConfigEnvVar names the environment variable consulted by ConfigPath when no
// -c/-config flag is given.
const ConfigEnvVar = "TODOCLIENT_CONFIG"

// Spec lists the flags one parser owns. Valued flags take the next argument as
// their value unless it looks like another flag; switches never consume the
// next argument (so "-v localhost" keeps "localhost" out of the result).
type Spec struct {
	Valued   []string
	Switches []string
}

// Filter returns the subset of args that belongs to s, in original order.
//
// Supported formats:
//  1. Flag and value as separate arguments:  -c conf.json
//  2. Flag and value combined with '=':      --config=conf.json, -v=false
//  3. Bare switch:                           -v
func (s Spec) Filter(args []string) []string {
	valued := toSet(s.Valued)
	switches := toSet(s.Switches)

	filtered := make([]string, 0, len(args))

	for i := 0; i < len(args); i++ {
		arg := args[i]

		if strings.HasPrefix(arg, "-") && strings.Contains(arg, "=") {
			name := strings.SplitN(arg, "=", 2)[0]
			if _, ok := valued[name]; ok {
				filtered = append(filtered, arg)
			} else if _, ok := switches[name]; ok {
				filtered = append(filtered, arg)
			}
			continue
		}

		if _, ok := switches[arg]; ok {
			filtered = append(filtered, arg)
			continue
		}

		if _, ok := valued[arg]; ok {
			filtered = append(filtered, arg)
			if i+1 < len(args) && !strings.HasPrefix(args[i+1], "-") {
				filtered = append(filtered, args[i+1])
				i++
			}
		}
	}

	return filtered
}

// FilterArgs is Spec{Valued: allowedFlags}.Filter(args).
func FilterArgs(args []string, allowedFlags []string) []string {
	return Spec{Valued: allowedFlags}.Filter(args)
}

// ConfigPath extracts the config file path given via -c or -config in args.
// When neither flag is present it falls back to $TODOCLIENT_CONFIG, and to ""
// when that is unset too.
func ConfigPath(args []string) string {
	var path string

	fs := flag.NewFlagSet("json", flag.ContinueOnError)
	fs.StringVar(&path, "config", "", "Path to config file")
	fs.StringVar(&path, "c", "", "Path to config file (short)")
	_ = fs.Parse(FilterArgs(args, []string{"-c", "-config"}))

	if path == "" {
		path = os.Getenv(ConfigEnvVar)
	}
	return path
}

func toSet(names []string) map[string]struct{} {
	set := make(map[string]struct{}, len(names))
	for _, n := range names {
		set[n] = struct{}{}
	}
	return set
}

package cli

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/dmitrijs2005/todoclient/internal/client/api"
	"github.com/dmitrijs2005/todoclient/internal/client/models"
)

// Stats prints the dashboard. A half that failed to load is reported and the
// other half is still shown; an expired session aborts the whole command.
func (a *App) Stats(ctx context.Context) error {
	d, err := a.dashService.Load(ctx)
	if err != nil {
		if errors.Is(err, api.ErrUnauthorized) {
			return err
		}
		printlnFn("Some dashboard data could not be loaded:", api.UserMessage(err))
	}
	printStats(d.Stats)
	if len(d.RecentLists) == 0 {
		return nil
	}
	printlnFn("Recent lists:")
	for _, l := range d.RecentLists {
		printlnFn("  " + formatList(l))
	}
	return nil
}

// Theme shows the theme, sets it ("theme dark") or flips it ("theme toggle").
func (a *App) Theme(ctx context.Context, args []string) error {
	if len(args) == 0 {
		printlnFn("Theme:", a.prefsService.Theme(ctx))
		return nil
	}
	if strings.EqualFold(args[0], "toggle") {
		next, err := a.prefsService.ToggleTheme(ctx)
		if err != nil {
			return err
		}
		printlnFn("Theme:", next)
		return nil
	}
	if err := a.prefsService.SetTheme(ctx, args[0]); err != nil {
		return err
	}
	printlnFn("Theme:", a.prefsService.Theme(ctx))
	return nil
}

// Prefs shows the preferences or changes one: "prefs priority high",
// "prefs hide on".
func (a *App) Prefs(ctx context.Context, args []string) error {
	p := a.prefsService.Preferences(ctx)
	if len(args) == 0 {
		printlnFn("Default priority:", string(p.DefaultPriority))
		printlnFn("Hide completed:  ", p.HideCompleted)
		return nil
	}
	if len(args) != 2 {
		return usageError("prefs [priority low|medium|high | hide on|off]")
	}

	switch strings.ToLower(args[0]) {
	case "priority":
		p.DefaultPriority = models.Priority(args[1])
	case "hide":
		switch strings.ToLower(args[1]) {
		case "on", "yes", "true":
			p.HideCompleted = true
		case "off", "no", "false":
			p.HideCompleted = false
		default:
			return usageError("prefs hide on|off")
		}
	default:
		return fmt.Errorf("unknown preference %q", args[0])
	}

	if err := a.prefsService.SavePreferences(ctx, p); err != nil {
		return err
	}
	printlnFn("Preferences saved.")
	return nil
}

// Health probes the backend and updates the online marker.
func (a *App) Health(ctx context.Context) error {
	if err := a.authService.Ping(ctx); err != nil {
		a.setMode(ModeOffline)
		return err
	}
	a.setMode(ModeOnline)
	printlnFn("Backend is healthy.")
	return nil
}

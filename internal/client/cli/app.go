package cli

import (
	"bufio"
	"context"
	"io"
	"sync"
	"time"

	"github.com/dmitrijs2005/todoclient/internal/client/config"
	"github.com/dmitrijs2005/todoclient/internal/client/services"
	"github.com/dmitrijs2005/todoclient/internal/logging"
)

type Mode string

const (
	ModeOffline Mode = "offline"
	ModeOnline  Mode = "online"
)

// Activity is told about every command the user runs. *session.IdleWatcher
// implements it.
type Activity interface {
	Touch()
}

// Freshener renews the token before it runs out. *session.Manager implements it.
type Freshener interface {
	EnsureFresh(ctx context.Context) error
}

// Deps are the collaborators an App is built from. Activity and Fresh may be nil.
type Deps struct {
	Auth        services.AuthService
	Todo        services.TodoService
	Dashboard   services.DashboardService
	Preferences services.PreferencesService
	Activity    Activity
	Fresh       Freshener
	Logger      logging.Logger

	// HealthCheckInterval drives StartOnlineStatusWatcher from Run; 0 disables it.
	HealthCheckInterval time.Duration
}

type App struct {
	authService  services.AuthService
	todoService  services.TodoService
	dashService  services.DashboardService
	prefsService services.PreferencesService
	activityHook Activity
	fresh        Freshener
	log          logging.Logger
	interval     time.Duration

	reader *bufio.Reader
	out    io.Writer
	now    func() time.Time

	modeMu sync.RWMutex
	mode   Mode
}

// NewApp builds an App reading commands from in and writing prompts to out.
func NewApp(d Deps, in io.Reader, out io.Writer) *App {
	log := d.Logger
	if log == nil {
		log = logging.Discard()
	}
	return &App{
		authService:  d.Auth,
		todoService:  d.Todo,
		dashService:  d.Dashboard,
		prefsService: d.Preferences,
		activityHook: d.Activity,
		fresh:        d.Fresh,
		log:          log.With("component", "cli"),
		interval:     d.HealthCheckInterval,
		reader:       bufio.NewReader(in),
		out:          out,
		now:          time.Now,
	}
}

// Run prints the greeting and blocks in the REPL until the user exits or
// input ends.
func (a *App) Run(ctx context.Context) {
	printlnFn("Welcome to the todo CLI (type 'help' for commands)")
	if u := a.authService.CurrentUser(); u != nil {
		printlnFn("Logged in as", u.DisplayName())
	}

	if a.interval > 0 {
		watchCtx, cancel := context.WithCancel(ctx)
		defer cancel()
		go a.StartOnlineStatusWatcher(watchCtx, a.interval)
	}

	runREPL(ctx, a, a.getStatus, a.reader)
}

// NotifyAutoLogout is the idle watcher's expiry callback.
func (a *App) NotifyAutoLogout() {
	printlnFn()
	printlnFn(config.MsgAutoLogout)
}

func (a *App) isLoggedIn() bool {
	return a.authService.IsLoggedIn()
}

// activity records user activity and renews the token when it is about to
// expire. A failed renewal has already ended the session.
func (a *App) activity(ctx context.Context) {
	if !a.isLoggedIn() {
		return
	}
	if a.activityHook != nil {
		a.activityHook.Touch()
	}
	if a.fresh == nil {
		return
	}
	if err := a.fresh.EnsureFresh(ctx); err != nil {
		a.log.Warn(ctx, "token refresh failed", "error", err)
		printlnFn(config.MsgUnauthorized)
	}
}

func (a *App) getStatus() string {
	s := ""
	if u := a.authService.CurrentUser(); u != nil {
		s = u.DisplayName()
	}
	if m := a.Mode(); m != "" {
		if s != "" {
			s += " "
		}
		s += string(m)
	}
	if s != "" {
		s = " (" + s + ")"
	}
	return s
}

func (a *App) Mode() Mode {
	a.modeMu.RLock()
	defer a.modeMu.RUnlock()
	return a.mode
}

func (a *App) setMode(mode Mode) {
	a.modeMu.Lock()
	changed := a.mode != mode
	a.mode = mode
	a.modeMu.Unlock()

	if changed {
		a.log.Info(context.Background(), "connectivity changed", "mode", string(mode))
	}
}

// StartOnlineStatusWatcher probes the backend every interval and keeps the
// online/offline marker in the prompt up to date. It returns when ctx is done.
func (a *App) StartOnlineStatusWatcher(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	a.probe(ctx)
	for {
		select {
		case <-ticker.C:
			a.probe(ctx)
		case <-ctx.Done():
			return
		}
	}
}

func (a *App) probe(ctx context.Context) {
	pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	if err := a.authService.Ping(pingCtx); err != nil {
		a.setMode(ModeOffline)
		return
	}
	a.setMode(ModeOnline)
}

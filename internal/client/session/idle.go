package session

import (
	"context"
	"sync"
	"time"

	"github.com/dmitrijs2005/todoclient/internal/logging"
)

// IdleWatcher logs the session out after a period without user activity. It
// is armed while someone is logged in; Touch restarts the countdown.
type IdleWatcher struct {
	mgr           *Manager
	timeout       time.Duration
	backendLogout bool
	onExpire      func()
	log           logging.Logger

	mu          sync.Mutex
	ctx         context.Context
	timer       *time.Timer
	gen         int
	unsubscribe func()
}

// NewIdleWatcher builds a watcher; onExpire (may be nil) runs after the
// automatic logout. backendLogout is passed to Manager.Logout. A zero timeout
// disables the watcher.
func NewIdleWatcher(mgr *Manager, timeout time.Duration, backendLogout bool, onExpire func(), log logging.Logger) *IdleWatcher {
	return &IdleWatcher{
		mgr:           mgr,
		timeout:       timeout,
		backendLogout: backendLogout,
		onExpire:      onExpire,
		log:           log.With("component", "idle"),
	}
}

// Start follows the session: login arms the watcher, logout disarms it.
func (w *IdleWatcher) Start(ctx context.Context) {
	if w.timeout <= 0 {
		return
	}
	w.mu.Lock()
	w.ctx = context.WithoutCancel(ctx)
	w.mu.Unlock()

	unsubscribe := w.mgr.Subscribe(func(ctx context.Context, ch Change) error {
		switch ch.Type {
		case ChangeLogin, ChangeRegister:
			w.arm()
		case ChangeLogout, ChangeForceReauth:
			w.disarm()
		}
		return nil
	})

	w.mu.Lock()
	w.unsubscribe = unsubscribe
	w.mu.Unlock()

	if w.mgr.IsLoggedIn() {
		w.arm()
	}
}

// Touch records user activity. It never arms a disarmed watcher.
func (w *IdleWatcher) Touch() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.timer != nil {
		w.armLocked()
	}
}

// Stop disarms the watcher and detaches it from the session.
func (w *IdleWatcher) Stop() {
	w.disarm()
	w.mu.Lock()
	unsubscribe := w.unsubscribe
	w.unsubscribe = nil
	w.mu.Unlock()
	if unsubscribe != nil {
		unsubscribe()
	}
}

// Armed reports whether a countdown is running.
func (w *IdleWatcher) Armed() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.timer != nil
}

func (w *IdleWatcher) arm() {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.armLocked()
}

func (w *IdleWatcher) armLocked() {
	if w.timer != nil {
		w.timer.Stop()
	}
	w.gen++
	gen := w.gen
	w.timer = time.AfterFunc(w.timeout, func() { w.fire(gen) })
}

func (w *IdleWatcher) disarm() {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.timer != nil {
		w.timer.Stop()
		w.timer = nil
	}
	w.gen++
}

func (w *IdleWatcher) fire(gen int) {
	w.mu.Lock()
	if gen != w.gen {
		w.mu.Unlock()
		return
	}
	w.timer = nil
	w.gen++
	ctx := w.ctx
	w.mu.Unlock()

	w.log.Info(ctx, "idle timeout reached, logging out", "timeout", w.timeout)
	w.mgr.Logout(ctx, w.backendLogout)
	if w.onExpire != nil {
		w.onExpire()
	}
}

// Package session owns the client's authentication state: the bearer token
// and the user it belongs to. Both are always set or cleared together, in
// memory and in the store, and every transition is announced to observers.
package session

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/dmitrijs2005/todoclient/internal/client/api"
	"github.com/dmitrijs2005/todoclient/internal/client/config"
	"github.com/dmitrijs2005/todoclient/internal/client/models"
	"github.com/dmitrijs2005/todoclient/internal/logging"
)

var ErrNotAuthenticated = errors.New("not logged in")

// Backend is the subset of the API the session drives.
type Backend interface {
	Login(ctx context.Context, cr api.Credentials) (*api.AuthResponse, error)
	Register(ctx context.Context, r api.Registration) (*api.AuthResponse, error)
	RefreshToken(ctx context.Context) (*api.AuthResponse, error)
	Logout(ctx context.Context) error
	GetProfile(ctx context.Context) (*models.User, error)
}

// Store persists the session between runs. *storage.Store implements it.
type Store interface {
	Lookup(ctx context.Context, key string, dst any) bool
	Set(ctx context.Context, key string, value any) bool
	SetMany(ctx context.Context, values map[string]any) bool
	Remove(ctx context.Context, keys ...string) bool
}

type Manager struct {
	backend      Backend
	store        Store
	log          logging.Logger
	expiryBuffer time.Duration
	now          func() time.Time

	mu    sync.RWMutex
	token string
	user  *models.User

	obsMu          sync.Mutex
	observers      []observerEntry
	nextObserverID int
}

type Option func(*Manager)

// WithExpiryBuffer treats a JWT as expired this long before its exp claim.
func WithExpiryBuffer(d time.Duration) Option {
	return func(m *Manager) { m.expiryBuffer = d }
}

func WithClock(now func() time.Time) Option {
	return func(m *Manager) { m.now = now }
}

func NewManager(backend Backend, store Store, log logging.Logger, opts ...Option) *Manager {
	m := &Manager{
		backend: backend,
		store:   store,
		log:     log.With("component", "session"),
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Restore loads a saved session. It reports whether one was found; a token
// without a user (or the reverse) is discarded.
func (m *Manager) Restore(ctx context.Context) bool {
	var (
		token string
		user  models.User
	)
	hasToken := m.store.Lookup(ctx, config.StorageKeyToken, &token) && token != ""
	hasUser := m.store.Lookup(ctx, config.StorageKeyUser, &user)

	m.mu.Lock()
	defer m.mu.Unlock()

	if !hasToken || !hasUser {
		m.token, m.user = "", nil
		if hasToken || hasUser {
			m.store.Remove(ctx, config.StorageKeyToken, config.StorageKeyUser)
		}
		return false
	}
	m.token, m.user = token, &user
	return true
}

// Validate checks the restored session against the backend and refreshes the
// cached user. Any failure ends the session locally.
func (m *Manager) Validate(ctx context.Context) error {
	if !m.IsLoggedIn() {
		return ErrNotAuthenticated
	}
	profile, err := m.backend.GetProfile(ctx)
	if err != nil {
		m.log.Warn(ctx, "stored session rejected", "error", err)
		m.Invalidate(ctx)
		return err
	}
	_, err = m.UpdateUser(ctx, profile)
	return err
}

func (m *Manager) Login(ctx context.Context, cr api.Credentials) (*models.User, error) {
	resp, err := m.backend.Login(ctx, cr)
	if err != nil {
		return nil, err
	}
	return m.establish(ctx, resp, ChangeLogin)
}

func (m *Manager) Register(ctx context.Context, r api.Registration) (*models.User, error) {
	resp, err := m.backend.Register(ctx, r)
	if err != nil {
		return nil, err
	}
	return m.establish(ctx, resp, ChangeRegister)
}

func missingToken(op string) error {
	return &api.Error{Kind: api.KindInvalidResponse, Message: op + " response has no access token"}
}

func (m *Manager) establish(ctx context.Context, resp *api.AuthResponse, typ ChangeType) (*models.User, error) {
	if resp == nil || resp.AccessToken == "" {
		return nil, missingToken(string(typ))
	}
	user := resp.User
	if user == nil {
		user = &models.User{}
	}

	m.mu.Lock()
	m.token, m.user = resp.AccessToken, user
	if !m.store.SetMany(ctx, map[string]any{
		config.StorageKeyToken: resp.AccessToken,
		config.StorageKeyUser:  user,
	}) {
		m.log.Warn(ctx, "session kept in memory only")
	}
	m.mu.Unlock()

	m.notify(ctx, Change{Type: typ, User: copyUser(user), Authenticated: true})
	return copyUser(user), nil
}

// Logout ends the session. When callBackend is set and a token is held the
// backend is told first; its failure is logged and ignored. The local state is
// always cleared and observers always get a logout change.
func (m *Manager) Logout(ctx context.Context, callBackend bool) {
	if callBackend && m.Token() != "" {
		if err := m.backend.Logout(ctx); err != nil {
			m.log.Warn(ctx, "backend logout failed", "error", err)
		}
	}

	m.mu.Lock()
	m.clearLocked(ctx)
	m.mu.Unlock()

	m.notify(ctx, Change{Type: ChangeLogout})
}

// Invalidate drops the session after the backend rejected the token. Observers
// hear about it only if there was something to drop.
func (m *Manager) Invalidate(ctx context.Context) {
	m.mu.Lock()
	cleared := m.clearLocked(ctx)
	m.mu.Unlock()

	if cleared {
		m.notify(ctx, Change{Type: ChangeLogout})
	}
}

// ForceReauth drops the session and asks observers to collect credentials
// again.
func (m *Manager) ForceReauth(ctx context.Context) {
	m.mu.Lock()
	m.clearLocked(ctx)
	m.mu.Unlock()

	m.notify(ctx, Change{Type: ChangeForceReauth})
}

func (m *Manager) clearLocked(ctx context.Context) bool {
	had := m.token != "" || m.user != nil
	m.token, m.user = "", nil
	if !m.store.Remove(ctx, config.StorageKeyToken, config.StorageKeyUser) {
		m.log.Warn(ctx, "stored session could not be removed")
	}
	return had
}

// Refresh swaps the token for a new one, keeping the user. A failed call ends
// the session locally and returns the error.
func (m *Manager) Refresh(ctx context.Context) error {
	callFailed, err := m.renew(ctx)
	if callFailed {
		m.Invalidate(ctx)
	}
	return err
}

// renew asks the backend for a new token. callFailed is true when the request
// itself failed, as opposed to a reply without a token.
func (m *Manager) renew(ctx context.Context) (callFailed bool, err error) {
	resp, err := m.backend.RefreshToken(ctx)
	if err != nil {
		m.log.Warn(ctx, "token refresh failed", "error", err)
		return true, err
	}
	if resp == nil || resp.AccessToken == "" {
		return false, missingToken("refresh")
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if m.user == nil {
		return false, ErrNotAuthenticated
	}
	m.token = resp.AccessToken
	if !m.store.Set(ctx, config.StorageKeyToken, resp.AccessToken) {
		m.log.Warn(ctx, "refreshed token kept in memory only")
	}
	return false, nil
}

// UpdateUser merges the top-level fields of patch into the current user and
// persists the result. It does nothing when no one is logged in.
func (m *Manager) UpdateUser(ctx context.Context, patch any) (*models.User, error) {
	m.mu.Lock()
	if m.user == nil {
		m.mu.Unlock()
		return nil, nil
	}
	merged, err := m.user.Merge(patch)
	if err != nil {
		m.mu.Unlock()
		return nil, err
	}
	m.user = merged
	if !m.store.Set(ctx, config.StorageKeyUser, merged) {
		m.log.Warn(ctx, "updated user kept in memory only")
	}
	m.mu.Unlock()

	m.notify(ctx, Change{Type: ChangeUserUpdate, User: copyUser(merged), Authenticated: true})
	return copyUser(merged), nil
}

func (m *Manager) IsLoggedIn() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.token != "" && m.user != nil
}

// User returns a copy of the current user, or nil.
func (m *Manager) User() *models.User {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return copyUser(m.user)
}

func (m *Manager) Token() string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.token
}

func copyUser(u *models.User) *models.User {
	if u == nil {
		return nil
	}
	c := *u
	if u.Extra != nil {
		c.Extra = make(models.Extra, len(u.Extra))
		for k, v := range u.Extra {
			c.Extra[k] = v
		}
	}
	return &c
}

package session

import (
	"context"
	"errors"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrijs2005/todoclient/internal/client/api"
	"github.com/dmitrijs2005/todoclient/internal/client/config"
	"github.com/dmitrijs2005/todoclient/internal/client/models"
	"github.com/dmitrijs2005/todoclient/internal/client/storage"
	"github.com/dmitrijs2005/todoclient/internal/logging"
)

type fakeBackend struct {
	mu sync.Mutex

	loginResp    *api.AuthResponse
	loginErr     error
	registerResp *api.AuthResponse
	refreshResp  *api.AuthResponse
	refreshErr   error
	logoutErr    error
	profile      *models.User
	profileErr   error

	logoutCalls int
}

func (f *fakeBackend) Login(ctx context.Context, cr api.Credentials) (*api.AuthResponse, error) {
	return f.loginResp, f.loginErr
}

func (f *fakeBackend) Register(ctx context.Context, r api.Registration) (*api.AuthResponse, error) {
	return f.registerResp, nil
}

func (f *fakeBackend) RefreshToken(ctx context.Context) (*api.AuthResponse, error) {
	return f.refreshResp, f.refreshErr
}

func (f *fakeBackend) Logout(ctx context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.logoutCalls++
	return f.logoutErr
}

func (f *fakeBackend) GetProfile(ctx context.Context) (*models.User, error) {
	return f.profile, f.profileErr
}

func newStore(t *testing.T) *storage.Store {
	t.Helper()
	s, err := storage.Open(context.Background(), filepath.Join(t.TempDir(), "session.db"), logging.Discard())
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func loginResponse(token string) *api.AuthResponse {
	return &api.AuthResponse{AccessToken: token, User: &models.User{ID: "1", Email: "a@b.com"}}
}

type changeLog struct {
	mu      sync.Mutex
	changes []ChangeType
}

func (c *changeLog) observe(ctx context.Context, ch Change) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.changes = append(c.changes, ch.Type)
	return nil
}

func (c *changeLog) types() []ChangeType {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]ChangeType(nil), c.changes...)
}

func TestLogin_PersistsSession(t *testing.T) {
	store := newStore(t)
	backend := &fakeBackend{loginResp: loginResponse("tok1")}
	m := NewManager(backend, store, logging.Discard())
	log := &changeLog{}
	m.Subscribe(log.observe)
	ctx := context.Background()

	user, err := m.Login(ctx, api.Credentials{Email: "a@b.com", Password: "secret1234!"})
	require.NoError(t, err)
	assert.Equal(t, "a@b.com", user.Email)

	assert.True(t, m.IsLoggedIn())
	assert.Equal(t, "tok1", m.Token())
	assert.Equal(t, "tok1", storage.Get(ctx, store, config.StorageKeyToken, ""))
	assert.Equal(t, "a@b.com", storage.Get(ctx, store, config.StorageKeyUser, models.User{}).Email)
	assert.Equal(t, []ChangeType{ChangeLogin}, log.types())
}

func TestLogin_MissingTokenLeavesStateUnchanged(t *testing.T) {
	store := newStore(t)
	backend := &fakeBackend{loginResp: loginResponse("tok1")}
	m := NewManager(backend, store, logging.Discard())
	ctx := context.Background()

	_, err := m.Login(ctx, api.Credentials{})
	require.NoError(t, err)

	log := &changeLog{}
	m.Subscribe(log.observe)
	backend.loginResp = &api.AuthResponse{User: &models.User{ID: "2"}}

	_, err = m.Login(ctx, api.Credentials{})
	require.ErrorIs(t, err, api.ErrInvalidResponse)

	assert.Equal(t, "tok1", m.Token())
	assert.Equal(t, models.ID("1"), m.User().ID)
	assert.Equal(t, "tok1", storage.Get(ctx, store, config.StorageKeyToken, ""))
	assert.Empty(t, log.types())
}

func TestLogin_MissingTokenFromLoggedOutState(t *testing.T) {
	m := NewManager(&fakeBackend{loginResp: &api.AuthResponse{}}, newStore(t), logging.Discard())

	_, err := m.Login(context.Background(), api.Credentials{})
	require.ErrorIs(t, err, api.ErrInvalidResponse)
	assert.False(t, m.IsLoggedIn())
	assert.Empty(t, m.Token())
	assert.Nil(t, m.User())
}

func TestLogin_BackendErrorPropagates(t *testing.T) {
	boom := &api.Error{Kind: api.KindServer, Status: 500}
	m := NewManager(&fakeBackend{loginErr: boom}, newStore(t), logging.Discard())

	_, err := m.Login(context.Background(), api.Credentials{})
	assert.ErrorIs(t, err, api.ErrServer)
	assert.False(t, m.IsLoggedIn())
}

func TestRegister_NotifiesRegister(t *testing.T) {
	m := NewManager(&fakeBackend{registerResp: loginResponse("tok2")}, newStore(t), logging.Discard())
	log := &changeLog{}
	m.Subscribe(log.observe)

	_, err := m.Register(context.Background(), api.Registration{Email: "a@b.com", Password: "x"})
	require.NoError(t, err)
	assert.True(t, m.IsLoggedIn())
	assert.Equal(t, []ChangeType{ChangeRegister}, log.types())
}

func TestLogin_NilUserStillAuthenticates(t *testing.T) {
	m := NewManager(&fakeBackend{loginResp: &api.AuthResponse{AccessToken: "tok"}}, newStore(t), logging.Discard())

	_, err := m.Login(context.Background(), api.Credentials{})
	require.NoError(t, err)
	assert.True(t, m.IsLoggedIn())
	assert.NotNil(t, m.User())
}

func TestLogout_IsIdempotent(t *testing.T) {
	store := newStore(t)
	backend := &fakeBackend{loginResp: loginResponse("tok1")}
	m := NewManager(backend, store, logging.Discard())
	log := &changeLog{}
	m.Subscribe(log.observe)
	ctx := context.Background()

	_, err := m.Login(ctx, api.Credentials{})
	require.NoError(t, err)

	m.Logout(ctx, false)
	m.Logout(ctx, false)

	assert.False(t, m.IsLoggedIn())
	assert.Empty(t, m.Token())
	assert.Nil(t, m.User())
	assert.Equal(t, "", storage.Get(ctx, store, config.StorageKeyToken, ""))
	assert.Equal(t, []ChangeType{ChangeLogin, ChangeLogout, ChangeLogout}, log.types())
	assert.Zero(t, backend.logoutCalls)
}

func TestLogout_BackendFailureIsSwallowed(t *testing.T) {
	backend := &fakeBackend{loginResp: loginResponse("tok1"), logoutErr: api.ErrNetwork}
	m := NewManager(backend, newStore(t), logging.Discard())
	ctx := context.Background()

	_, err := m.Login(ctx, api.Credentials{})
	require.NoError(t, err)

	m.Logout(ctx, true)
	assert.Equal(t, 1, backend.logoutCalls)
	assert.False(t, m.IsLoggedIn())

	m.Logout(ctx, true)
	assert.Equal(t, 1, backend.logoutCalls, "no token, no backend call")
}

func TestInvalidate_NotifiesOnlyWhenSomethingCleared(t *testing.T) {
	m := NewManager(&fakeBackend{loginResp: loginResponse("tok1")}, newStore(t), logging.Discard())
	log := &changeLog{}
	m.Subscribe(log.observe)
	ctx := context.Background()

	m.Invalidate(ctx)
	assert.Empty(t, log.types())

	_, err := m.Login(ctx, api.Credentials{})
	require.NoError(t, err)
	m.Invalidate(ctx)
	m.Invalidate(ctx)
	assert.Equal(t, []ChangeType{ChangeLogin, ChangeLogout}, log.types())
	assert.False(t, m.IsLoggedIn())
}

func TestForceReauth(t *testing.T) {
	m := NewManager(&fakeBackend{loginResp: loginResponse("tok1")}, newStore(t), logging.Discard())
	log := &changeLog{}
	m.Subscribe(log.observe)
	ctx := context.Background()

	_, err := m.Login(ctx, api.Credentials{})
	require.NoError(t, err)
	m.ForceReauth(ctx)

	assert.False(t, m.IsLoggedIn())
	assert.Equal(t, []ChangeType{ChangeLogin, ChangeForceReauth}, log.types())
}

func TestRestore(t *testing.T) {
	store := newStore(t)
	ctx := context.Background()

	m := NewManager(&fakeBackend{loginResp: loginResponse("tok1")}, store, logging.Discard())
	_, err := m.Login(ctx, api.Credentials{})
	require.NoError(t, err)

	restored := NewManager(&fakeBackend{}, store, logging.Discard())
	require.True(t, restored.Restore(ctx))
	assert.Equal(t, "tok1", restored.Token())
	assert.Equal(t, "a@b.com", restored.User().Email)
}

func TestRestore_PartialStateIsDiscarded(t *testing.T) {
	store := newStore(t)
	ctx := context.Background()
	require.True(t, store.Set(ctx, config.StorageKeyToken, "orphan"))

	m := NewManager(&fakeBackend{}, store, logging.Discard())
	assert.False(t, m.Restore(ctx))
	assert.False(t, m.IsLoggedIn())
	assert.Empty(t, m.Token())
	assert.Equal(t, "", storage.Get(ctx, store, config.StorageKeyToken, ""))
}

func TestRestore_EmptyStore(t *testing.T) {
	m := NewManager(&fakeBackend{}, newStore(t), logging.Discard())
	assert.False(t, m.Restore(context.Background()))
}

func TestValidate(t *testing.T) {
	store := newStore(t)
	backend := &fakeBackend{
		loginResp: loginResponse("tok1"),
		profile:   &models.User{ID: "1", Email: "a@b.com", Username: "alice"},
	}
	m := NewManager(backend, store, logging.Discard())
	ctx := context.Background()

	assert.ErrorIs(t, m.Validate(ctx), ErrNotAuthenticated)

	_, err := m.Login(ctx, api.Credentials{})
	require.NoError(t, err)
	require.NoError(t, m.Validate(ctx))
	assert.Equal(t, "alice", m.User().Username)

	backend.profileErr = api.ErrNetwork
	assert.ErrorIs(t, m.Validate(ctx), api.ErrNetwork)
	assert.False(t, m.IsLoggedIn())
}

func TestRefresh(t *testing.T) {
	store := newStore(t)
	backend := &fakeBackend{loginResp: loginResponse("tok1"), refreshResp: &api.AuthResponse{AccessToken: "tok2"}}
	m := NewManager(backend, store, logging.Discard())
	ctx := context.Background()

	_, err := m.Login(ctx, api.Credentials{})
	require.NoError(t, err)

	require.NoError(t, m.Refresh(ctx))
	assert.Equal(t, "tok2", m.Token())
	assert.Equal(t, "a@b.com", m.User().Email, "user is kept")
	assert.Equal(t, "tok2", storage.Get(ctx, store, config.StorageKeyToken, ""))
}

func TestRefresh_MissingToken(t *testing.T) {
	backend := &fakeBackend{loginResp: loginResponse("tok1"), refreshResp: &api.AuthResponse{}}
	m := NewManager(backend, newStore(t), logging.Discard())
	ctx := context.Background()

	_, err := m.Login(ctx, api.Credentials{})
	require.NoError(t, err)

	assert.ErrorIs(t, m.Refresh(ctx), api.ErrInvalidResponse)
	assert.Equal(t, "tok1", m.Token())
}

func TestRefresh_FailureLogsOut(t *testing.T) {
	backend := &fakeBackend{loginResp: loginResponse("tok1"), refreshErr: api.ErrServer}
	m := NewManager(backend, newStore(t), logging.Discard())
	log := &changeLog{}
	m.Subscribe(log.observe)
	ctx := context.Background()

	_, err := m.Login(ctx, api.Credentials{})
	require.NoError(t, err)

	assert.ErrorIs(t, m.Refresh(ctx), api.ErrServer)
	assert.False(t, m.IsLoggedIn())
	assert.Equal(t, []ChangeType{ChangeLogin, ChangeLogout}, log.types())
}

func TestRefresh_WhenLoggedOut(t *testing.T) {
	m := NewManager(&fakeBackend{refreshResp: &api.AuthResponse{AccessToken: "tok"}}, newStore(t), logging.Discard())
	assert.ErrorIs(t, m.Refresh(context.Background()), ErrNotAuthenticated)
	assert.Empty(t, m.Token())
}

func TestUpdateUser(t *testing.T) {
	store := newStore(t)
	m := NewManager(&fakeBackend{loginResp: loginResponse("tok1")}, store, logging.Discard())
	log := &changeLog{}
	m.Subscribe(log.observe)
	ctx := context.Background()

	u, err := m.UpdateUser(ctx, map[string]any{"username": "ghost"})
	require.NoError(t, err)
	assert.Nil(t, u, "no-op when logged out")
	assert.Empty(t, log.types())

	_, err = m.Login(ctx, api.Credentials{})
	require.NoError(t, err)

	u, err = m.UpdateUser(ctx, map[string]any{"username": "alice", "theme": "dark"})
	require.NoError(t, err)
	assert.Equal(t, "alice", u.Username)
	assert.Equal(t, "a@b.com", u.Email)

	stored := storage.Get(ctx, store, config.StorageKeyUser, models.User{})
	assert.Equal(t, "alice", stored.Username)
	assert.JSONEq(t, `"dark"`, string(stored.Extra["theme"]))
	assert.Equal(t, []ChangeType{ChangeLogin, ChangeUserUpdate}, log.types())

	_, err = m.UpdateUser(ctx, "not an object")
	assert.Error(t, err)
	assert.Equal(t, "alice", m.User().Username)
}

func TestUserIsACopy(t *testing.T) {
	m := NewManager(&fakeBackend{loginResp: loginResponse("tok1")}, newStore(t), logging.Discard())
	_, err := m.Login(context.Background(), api.Credentials{})
	require.NoError(t, err)

	u := m.User()
	u.Email = "changed"
	assert.Equal(t, "a@b.com", m.User().Email)
}

func TestObservers_PanicAndErrorDoNotStopOthers(t *testing.T) {
	m := NewManager(&fakeBackend{loginResp: loginResponse("tok1")}, newStore(t), logging.Discard())
	var order []string

	m.Subscribe(func(ctx context.Context, ch Change) error {
		order = append(order, "first")
		panic("observer exploded")
	})
	m.Subscribe(func(ctx context.Context, ch Change) error {
		order = append(order, "second")
		return errors.New("observer failed")
	})
	m.Subscribe(func(ctx context.Context, ch Change) error {
		order = append(order, "third")
		assert.True(t, ch.Authenticated)
		assert.Equal(t, "a@b.com", ch.User.Email)
		return nil
	})

	_, err := m.Login(context.Background(), api.Credentials{})
	require.NoError(t, err)
	assert.Equal(t, []string{"first", "second", "third"}, order)
	assert.True(t, m.IsLoggedIn())
}

func TestUnsubscribe(t *testing.T) {
	m := NewManager(&fakeBackend{loginResp: loginResponse("tok1")}, newStore(t), logging.Discard())
	a, b := &changeLog{}, &changeLog{}
	unsubA := m.Subscribe(a.observe)
	m.Subscribe(b.observe)
	ctx := context.Background()

	unsubA()
	unsubA()

	_, err := m.Login(ctx, api.Credentials{})
	require.NoError(t, err)
	assert.Empty(t, a.types())
	assert.Equal(t, []ChangeType{ChangeLogin}, b.types())
}

func TestObserverCanReadState(t *testing.T) {
	m := NewManager(&fakeBackend{loginResp: loginResponse("tok1")}, newStore(t), logging.Discard())
	var seen string
	m.Subscribe(func(ctx context.Context, ch Change) error {
		seen = m.Token()
		return nil
	})

	_, err := m.Login(context.Background(), api.Credentials{})
	require.NoError(t, err)
	assert.Equal(t, "tok1", seen, "observers run outside the lock and see the new state")
}

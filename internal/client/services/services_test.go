package services

import (
	"context"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/dmitrijs2005/todoclient/internal/client/api"
	"github.com/dmitrijs2005/todoclient/internal/client/config"
	"github.com/dmitrijs2005/todoclient/internal/client/session"
	"github.com/dmitrijs2005/todoclient/internal/client/storage"
	"github.com/dmitrijs2005/todoclient/internal/fakeapi"
	"github.com/dmitrijs2005/todoclient/internal/logging"
)

const testPassword = "Secret123!"

type env struct {
	backend *fakeapi.Server
	client  *api.Client
	store   *storage.Store
	session *session.Manager

	auth  AuthService
	todo  TodoService
	dash  DashboardService
	prefs PreferencesService
}

func newEnv(t *testing.T) *env {
	t.Helper()
	backend := fakeapi.New(fakeapi.Config{BcryptCost: bcrypt.MinCost}, logging.Discard())
	ts := httptest.NewServer(backend.Handler())
	t.Cleanup(ts.Close)

	store, err := storage.Open(context.Background(), filepath.Join(t.TempDir(), "client.db"), logging.Discard())
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })

	client := api.New(ts.URL + "/v1")
	mgr := session.NewManager(client, store, logging.Discard())
	client.BindSession(mgr)

	return &env{
		backend: backend,
		client:  client,
		store:   store,
		session: mgr,
		auth:    NewAuthService(mgr, client, config.Password, true),
		todo:    NewTodoService(client, logging.Discard()),
		dash:    NewDashboardService(client, logging.Discard()),
		prefs:   NewPreferencesService(store),
	}
}

// loggedIn registers a fresh account and leaves the session open.
func loggedIn(t *testing.T) *env {
	t.Helper()
	e := newEnv(t)
	_, err := e.auth.Register(context.Background(), "ann@example.com", "ann", []byte(testPassword))
	require.NoError(t, err)
	return e
}

func ptr[T any](v T) *T { return &v }

package api

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/dmitrijs2005/todoclient/internal/client/config"
	"github.com/dmitrijs2005/todoclient/internal/client/models"
	"github.com/dmitrijs2005/todoclient/internal/fakeapi"
	"github.com/dmitrijs2005/todoclient/internal/logging"
)

// newBackend starts a fake backend and returns a client logged in to it.
func newBackend(t *testing.T) (*fakeapi.Server, *Client, *fakeSession) {
	t.Helper()
	srv := fakeapi.New(fakeapi.Config{BcryptCost: bcrypt.MinCost}, logging.Discard())
	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(ts.Close)

	sess := &fakeSession{}
	c := New(ts.URL+"/v1", WithRequestLogging(true))
	c.BindSession(sess)

	resp, err := c.Register(context.Background(), Registration{Email: "a@b.com", Password: "secret1234!"})
	require.NoError(t, err)
	sess.token = resp.AccessToken
	return srv, c, sess
}

func strPtr(s string) *string { return &s }

func TestCreateListThenGetLists(t *testing.T) {
	_, c, _ := newBackend(t)
	ctx := context.Background()

	created, err := c.CreateList(ctx, models.ListInput{Name: "Groceries"})
	require.NoError(t, err)
	assert.False(t, created.ID.IsZero())

	lists, err := c.GetLists(ctx, nil)
	require.NoError(t, err)

	names := make([]string, 0, len(lists))
	for _, l := range lists {
		names = append(names, l.Name)
	}
	assert.Contains(t, names, "Groceries")
}

func TestLoginAndProfile(t *testing.T) {
	_, c, sess := newBackend(t)
	ctx := context.Background()

	resp, err := c.Login(ctx, Credentials{Email: "a@b.com", Password: "secret1234!"})
	require.NoError(t, err)
	assert.NotEmpty(t, resp.AccessToken)
	assert.Equal(t, "a@b.com", resp.User.Email)
	sess.token = resp.AccessToken

	u, err := c.GetProfile(ctx)
	require.NoError(t, err)
	assert.Equal(t, "a@b.com", u.Email)

	u, err = c.UpdateProfile(ctx, map[string]any{"username": "alice", "bio": "hello"})
	require.NoError(t, err)
	assert.Equal(t, "alice", u.Username)
	assert.JSONEq(t, `"hello"`, string(u.Extra["bio"]))
}

func TestLogin_BadCredentialsIsUnauthorized(t *testing.T) {
	_, c, _ := newBackend(t)

	_, err := c.Login(context.Background(), Credentials{Email: "a@b.com", Password: "wrong"})
	assert.ErrorIs(t, err, ErrUnauthorized)
}

func TestListsAndTasks(t *testing.T) {
	_, c, _ := newBackend(t)
	ctx := context.Background()

	l, err := c.CreateList(ctx, models.ListInput{Name: "Home", Description: "chores"})
	require.NoError(t, err)

	got, err := c.GetList(ctx, l.ID)
	require.NoError(t, err)
	assert.Equal(t, "chores", got.Description)

	l, err = c.UpdateList(ctx, l.ID, models.ListInput{Name: "House"})
	require.NoError(t, err)
	assert.Equal(t, "House", l.Name)

	high := models.PriorityHigh
	task, err := c.CreateTask(ctx, models.TaskInput{ListID: l.ID, Title: strPtr("Vacuum"), Priority: &high})
	require.NoError(t, err)
	assert.Equal(t, l.ID, task.ListID)
	assert.Equal(t, models.PriorityHigh, task.Priority)

	task, err = c.CompleteTask(ctx, task.ID)
	require.NoError(t, err)
	assert.True(t, task.Completed)

	task, err = c.IncompleteTask(ctx, task.ID)
	require.NoError(t, err)
	assert.False(t, task.Completed)

	task, err = c.UpdateTask(ctx, task.ID, models.TaskInput{Description: strPtr("whole flat")})
	require.NoError(t, err)
	assert.Equal(t, "whole flat", task.Description)
	assert.Equal(t, "Vacuum", task.Title)

	fetched, err := c.GetTask(ctx, task.ID)
	require.NoError(t, err)
	assert.Equal(t, task.ID, fetched.ID)

	listTasks, err := c.GetListTasks(ctx, l.ID, nil)
	require.NoError(t, err)
	assert.Len(t, listTasks, 1)

	all, err := c.GetTasks(ctx, Query{"completed": "true"})
	require.NoError(t, err)
	assert.Empty(t, all)

	require.NoError(t, c.DeleteTask(ctx, task.ID))
	_, err = c.GetTask(ctx, task.ID)
	assert.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, c.DeleteList(ctx, l.ID))
	_, err = c.GetList(ctx, l.ID)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestCreateList_ValidationError(t *testing.T) {
	_, c, _ := newBackend(t)

	_, err := c.CreateList(context.Background(), models.ListInput{Name: ""})
	require.ErrorIs(t, err, ErrValidation)

	var apiErr *Error
	require.ErrorAs(t, err, &apiErr)
	require.Len(t, apiErr.Fields, 1)
	assert.Equal(t, "name", apiErr.Fields[0].Field)
}

func TestRefreshAndLogout(t *testing.T) {
	_, c, sess := newBackend(t)
	ctx := context.Background()

	resp, err := c.RefreshToken(ctx)
	require.NoError(t, err)
	require.NotEmpty(t, resp.AccessToken)
	sess.token = resp.AccessToken

	require.NoError(t, c.Logout(ctx))

	_, err = c.GetLists(ctx, nil)
	require.ErrorIs(t, err, ErrUnauthorized)
	assert.Equal(t, 1, sess.invalidated)
}

func TestInjectedServerError(t *testing.T) {
	srv, c, _ := newBackend(t)
	srv.InjectFault(fakeapi.Fault{Path: "/lists", Status: http.StatusInternalServerError, Body: map[string]string{"detail": "db down"}})

	_, err := c.GetLists(context.Background(), nil)
	require.ErrorIs(t, err, ErrServer)
	assert.Equal(t, config.MsgServer, UserMessage(err))
}

func TestHealthCheck(t *testing.T) {
	srv, c, _ := newBackend(t)

	h, err := c.HealthCheck(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "healthy", h.Status)

	srv.InjectFault(fakeapi.Fault{Path: "/health", Status: http.StatusServiceUnavailable})
	_, err = c.HealthCheck(context.Background())
	assert.ErrorIs(t, err, ErrUnknown)
	assert.Contains(t, err.Error(), "health check")
}

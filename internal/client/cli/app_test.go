package cli

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/dmitrijs2005/todoclient/internal/client/api"
	"github.com/dmitrijs2005/todoclient/internal/client/config"
	"github.com/dmitrijs2005/todoclient/internal/client/models"
	"github.com/dmitrijs2005/todoclient/internal/client/services"
	"github.com/dmitrijs2005/todoclient/internal/client/session"
	"github.com/dmitrijs2005/todoclient/internal/client/storage"
	"github.com/dmitrijs2005/todoclient/internal/fakeapi"
	"github.com/dmitrijs2005/todoclient/internal/logging"
)

const registerScript = "register\nann@example.com\nann\nSecret123!\nSecret123!\n"

type harness struct {
	t       *testing.T
	backend *fakeapi.Server
	mgr     *session.Manager
	deps    Deps
	out     *strings.Builder
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	stubTerminal(t, false, nil, nil)
	out := captureOutput(t)

	backend := fakeapi.New(fakeapi.Config{BcryptCost: bcrypt.MinCost}, logging.Discard())
	ts := httptest.NewServer(backend.Handler())
	t.Cleanup(ts.Close)

	store, err := storage.Open(context.Background(), filepath.Join(t.TempDir(), "cli.db"), logging.Discard())
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })

	client := api.New(ts.URL + "/v1")
	mgr := session.NewManager(client, store, logging.Discard())
	client.BindSession(mgr)

	return &harness{
		t:       t,
		backend: backend,
		mgr:     mgr,
		out:     out,
		deps: Deps{
			Auth:        services.NewAuthService(mgr, client, config.Password, true),
			Todo:        services.NewTodoService(client, logging.Discard()),
			Dashboard:   services.NewDashboardService(client, logging.Discard()),
			Preferences: services.NewPreferencesService(store),
			Fresh:       mgr,
		},
	}
}

// run feeds script to a fresh App over the shared services and returns what
// was printed.
func (h *harness) run(script string) string {
	h.t.Helper()
	start := h.out.Len()
	app := NewApp(h.deps, strings.NewReader(script), io.Discard)
	runREPL(context.Background(), app, app.getStatus, app.reader)
	return h.out.String()[start:]
}

func (h *harness) onlyList() models.List {
	h.t.Helper()
	lists, err := h.deps.Todo.Lists(context.Background())
	require.NoError(h.t, err)
	require.Len(h.t, lists, 1)
	return lists[0]
}

func (h *harness) onlyTask() models.Task {
	h.t.Helper()
	tasks, err := h.deps.Todo.Tasks(context.Background(), "")
	require.NoError(h.t, err)
	require.Len(h.t, tasks, 1)
	return tasks[0]
}

func TestApp_ListAndTaskWorkflow(t *testing.T) {
	h := newHarness(t)

	out := h.run(registerScript + "newlist\nGroceries\nweekly\n")
	assert.Contains(t, out, config.MsgRegistered)
	assert.Contains(t, out, "Logged in as ann")
	assert.Contains(t, out, config.MsgListCreated)
	list := h.onlyList()
	lid := list.ID.String()

	out = h.run("addtask " + lid + "\nMilk\n2 litres\n\nhigh\n2030-01-01\n")
	assert.Contains(t, out, config.MsgTaskCreated)
	task := h.onlyTask()
	assert.Equal(t, "Milk", task.Title)
	assert.Equal(t, "2 litres", task.Description)
	assert.Equal(t, models.PriorityHigh, task.Priority)
	tid := task.ID.String()

	out = h.run("done " + tid + "\ntasks\nstats\nshow " + lid + "\nlists\n")
	assert.Contains(t, out, config.MsgTaskCompleted)
	assert.Contains(t, out, "[x] "+tid+"  Milk  (high, due 2030-01-01)")
	assert.Contains(t, out, "Lists: 1  Tasks: 1  Completed: 1  Pending: 0")
	assert.Contains(t, out, lid+"  Groceries  (1/1 done) - weekly")

	out = h.run("undo " + tid + "\nedittask " + tid + "\nBread\n\n\n\n")
	assert.Contains(t, out, config.MsgTaskIncompleted)
	assert.Contains(t, out, config.MsgTaskUpdated)
	task = h.onlyTask()
	assert.Equal(t, "Bread", task.Title)
	assert.Equal(t, "2 litres", task.Description)
	assert.False(t, task.Completed)

	out = h.run("edittask " + tid + "\n\n\n\n\n")
	assert.Contains(t, out, "Nothing to update.")

	out = h.run("renamelist " + lid + "\nFood\n\n")
	assert.Contains(t, out, config.MsgListUpdated)
	assert.Equal(t, "Food", h.onlyList().Name)

	out = h.run("deltask " + tid + "\nn\ndeltask " + tid + "\ny\ndellist " + lid + "\nyes\nlists\n")
	assert.Equal(t, 1, strings.Count(out, config.MsgTaskDeleted))
	assert.Contains(t, out, config.MsgListDeleted)
	assert.Contains(t, out, "No lists yet.")
}

func TestApp_UsageAndValidationMessages(t *testing.T) {
	h := newHarness(t)
	h.run(registerScript)

	out := h.run("show\ndone\nnewlist\n \n\naddtask\n")
	assert.Contains(t, out, "Usage: show <list-id>")
	assert.Contains(t, out, "Usage: done <task-id>")
	assert.Contains(t, out, "Error: name: value is required")
	assert.Contains(t, out, "Usage: addtask <list-id>")

	out = h.run("show missing\n")
	assert.Contains(t, out, config.MsgNotFound)
}

func TestApp_LoginFailureAndExpiredSession(t *testing.T) {
	h := newHarness(t)
	h.run(registerScript + "logout\n")
	require.False(t, h.mgr.IsLoggedIn())

	out := h.run("login\nann@example.com\nWrong123!!\n")
	assert.Contains(t, out, config.MsgLoginFailed)
	assert.NotContains(t, out, config.MsgUnauthorized)

	out = h.run("login\nann\nSecret123!\nlogin\n")
	assert.Contains(t, out, config.MsgLoggedIn)
	assert.Contains(t, out, "Already logged in as ann")

	h.backend.InjectFault(fakeapi.Fault{Path: "/lists", Status: http.StatusUnauthorized, Body: map[string]string{"detail": "Token expired"}})
	out = h.run("lists\nlists\n")
	assert.Contains(t, out, config.MsgUnauthorized)
	assert.Contains(t, out, config.MsgLoginFirst)
	assert.False(t, h.mgr.IsLoggedIn())
}

func TestApp_RegisterPasswordMismatch(t *testing.T) {
	h := newHarness(t)

	out := h.run("register\nann@example.com\n\nSecret123!\nSecret123?\n")
	assert.Contains(t, out, "Error: passwords do not match")
	assert.False(t, h.mgr.IsLoggedIn())

	out = h.run("register\nann@example.com\n\nweak\nweak\n")
	assert.Contains(t, out, "Password must be at least 10 characters long")
}

func TestApp_ProfileAndWhoAmI(t *testing.T) {
	h := newHarness(t)
	h.run(registerScript)

	out := h.run("profile\nannie\n\nwhoami\nprofile\n\n\n")
	assert.Contains(t, out, config.MsgProfileUpdated)
	assert.Contains(t, out, "annie")
	assert.Contains(t, out, "ann@example.com")
	assert.Contains(t, out, "Nothing to update.")
	assert.Equal(t, "annie", h.mgr.User().Username)
}

func TestApp_ThemeAndPrefs(t *testing.T) {
	h := newHarness(t)

	out := h.run("theme\ntheme dark\ntheme toggle\ntheme neon\nprefs\n")
	assert.Contains(t, out, "Theme: light")
	assert.Contains(t, out, "Theme: dark")
	assert.Contains(t, out, "Error: theme must be light or dark")
	assert.Contains(t, out, config.MsgLoginFirst, "prefs needs a session")

	h.run(registerScript)
	out = h.run("prefs priority high\nprefs hide on\nprefs\nprefs hide maybe\nprefs colour red\n")
	assert.Contains(t, out, "Default priority: high")
	assert.Contains(t, out, "Hide completed:   true")
	assert.Contains(t, out, "Usage: prefs hide on|off")
	assert.Contains(t, out, `Error: unknown preference "colour"`)
}

func TestApp_HiddenCompletedTasks(t *testing.T) {
	h := newHarness(t)
	h.run(registerScript + "newlist\nHome\n\n")
	lid := h.onlyList().ID.String()
	h.run("addtask " + lid + "\nSweep\n\n\n\n")
	tid := h.onlyTask().ID.String()

	out := h.run("prefs hide on\ndone " + tid + "\ntasks\n")
	assert.Contains(t, out, "All tasks are completed")
	assert.NotContains(t, out, "Sweep")
}

type countingActivity struct{ n atomic.Int32 }

func (c *countingActivity) Touch() { c.n.Add(1) }

func TestApp_CommandsCountAsActivityWhileLoggedIn(t *testing.T) {
	h := newHarness(t)
	act := &countingActivity{}
	h.deps.Activity = act

	h.run("help\ntheme\n")
	assert.Zero(t, act.n.Load())

	h.run(registerScript + "lists\nwhoami\n")
	assert.Equal(t, int32(2), act.n.Load())
}

func TestApp_OnlineStatusWatcher(t *testing.T) {
	h := newHarness(t)
	app := NewApp(h.deps, strings.NewReader(""), io.Discard)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		app.StartOnlineStatusWatcher(ctx, 10*time.Millisecond)
		close(done)
	}()
	require.Eventually(t, func() bool { return app.Mode() == ModeOnline }, time.Second, 5*time.Millisecond)
	assert.Equal(t, " (online)", app.getStatus())
	cancel()
	<-done

	deps := h.deps
	deps.Auth = services.NewAuthService(h.mgr, api.New("http://127.0.0.1:1/v1"), config.Password, false)
	offline := NewApp(deps, strings.NewReader(""), io.Discard)
	require.Error(t, offline.Health(context.Background()))
	assert.Equal(t, ModeOffline, offline.Mode())
}

func TestApp_NotifyAutoLogout(t *testing.T) {
	out := captureOutput(t)
	(&App{}).NotifyAutoLogout()
	assert.Contains(t, out.String(), config.MsgAutoLogout)
}

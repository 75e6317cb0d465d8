package services

import (
	"context"
	"net/http"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrijs2005/todoclient/internal/client/api"
	"github.com/dmitrijs2005/todoclient/internal/client/models"
	"github.com/dmitrijs2005/todoclient/internal/fakeapi"
	"github.com/dmitrijs2005/todoclient/internal/validate"
)

func TestTodo_ListLifecycle(t *testing.T) {
	e := loggedIn(t)
	ctx := context.Background()

	l, err := e.todo.CreateList(ctx, "  Groceries ", "weekly")
	require.NoError(t, err)
	assert.Equal(t, "Groceries", l.Name)

	lists, err := e.todo.Lists(ctx)
	require.NoError(t, err)
	require.Len(t, lists, 1)
	assert.Equal(t, l.ID, lists[0].ID)

	l, err = e.todo.UpdateList(ctx, l.ID, "Food", "")
	require.NoError(t, err)
	assert.Equal(t, "Food", l.Name)

	require.NoError(t, e.todo.DeleteList(ctx, l.ID))
	_, err = e.todo.List(ctx, l.ID)
	require.ErrorIs(t, err, api.ErrNotFound)
}

func TestTodo_ListValidationNeverReachesBackend(t *testing.T) {
	e := loggedIn(t)
	ctx := context.Background()

	_, err := e.todo.CreateList(ctx, "   ", "")
	require.ErrorIs(t, err, validate.ErrRequired)
	_, err = e.todo.CreateList(ctx, strings.Repeat("x", 101), "")
	require.ErrorIs(t, err, validate.ErrTooLong)
	_, err = e.todo.CreateList(ctx, "ok", strings.Repeat("x", 501))
	require.ErrorIs(t, err, validate.ErrTooLong)
	_, err = e.todo.UpdateList(ctx, "", "ok", "")
	require.ErrorIs(t, err, validate.ErrRequired)
	require.ErrorIs(t, e.todo.DeleteList(ctx, ""), validate.ErrRequired)

	lists, err := e.todo.Lists(ctx)
	require.NoError(t, err)
	assert.Empty(t, lists)
}

func TestTodo_TaskLifecycle(t *testing.T) {
	e := loggedIn(t)
	ctx := context.Background()

	l, err := e.todo.CreateList(ctx, "Home", "")
	require.NoError(t, err)

	task, err := e.todo.AddTask(ctx, models.TaskInput{ListID: l.ID, Title: ptr(" Vacuum "), DueDate: ptr("2030-01-02")})
	require.NoError(t, err)
	assert.Equal(t, "Vacuum", task.Title)
	assert.Equal(t, models.PriorityMedium, task.Priority, "priority defaults to medium")
	assert.Equal(t, "2030-01-02", task.DueDate)

	task, err = e.todo.EditTask(ctx, task.ID, models.TaskInput{Priority: ptr(models.Priority("HIGH"))})
	require.NoError(t, err)
	assert.Equal(t, models.PriorityHigh, task.Priority)
	assert.Equal(t, "Vacuum", task.Title)

	task, err = e.todo.SetCompleted(ctx, task.ID, true)
	require.NoError(t, err)
	assert.True(t, task.Completed)
	task, err = e.todo.SetCompleted(ctx, task.ID, false)
	require.NoError(t, err)
	assert.False(t, task.Completed)

	got, err := e.todo.Task(ctx, task.ID)
	require.NoError(t, err)
	assert.Equal(t, task.ID, got.ID)

	full, err := e.todo.List(ctx, l.ID)
	require.NoError(t, err)
	require.Len(t, full.Tasks, 1)

	all, err := e.todo.Tasks(ctx, "")
	require.NoError(t, err)
	assert.Len(t, all, 1)

	require.NoError(t, e.todo.DeleteTask(ctx, task.ID))
	inList, err := e.todo.Tasks(ctx, l.ID)
	require.NoError(t, err)
	assert.Empty(t, inList)
}

func TestTodo_TaskValidation(t *testing.T) {
	e := loggedIn(t)
	ctx := context.Background()
	l, err := e.todo.CreateList(ctx, "Home", "")
	require.NoError(t, err)

	tests := []struct {
		name string
		in   models.TaskInput
		want error
	}{
		{name: "missing list", in: models.TaskInput{Title: ptr("x")}, want: validate.ErrRequired},
		{name: "missing title", in: models.TaskInput{ListID: l.ID}, want: validate.ErrRequired},
		{name: "blank title", in: models.TaskInput{ListID: l.ID, Title: ptr("  ")}, want: validate.ErrRequired},
		{name: "long title", in: models.TaskInput{ListID: l.ID, Title: ptr(strings.Repeat("t", 201))}, want: validate.ErrTooLong},
		{name: "long description", in: models.TaskInput{ListID: l.ID, Title: ptr("x"), Description: ptr(strings.Repeat("d", 1001))}, want: validate.ErrTooLong},
		{name: "bad priority", in: models.TaskInput{ListID: l.ID, Title: ptr("x"), Priority: ptr(models.Priority("urgent"))}, want: models.ErrUnknownPriority},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := e.todo.AddTask(ctx, tt.in)
			require.ErrorIs(t, err, tt.want)
		})
	}

	_, err = e.todo.AddTask(ctx, models.TaskInput{ListID: l.ID, Title: ptr("x"), DueDate: ptr("tomorrow")})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "YYYY-MM-DD")

	tasks, err := e.todo.Tasks(ctx, "")
	require.NoError(t, err)
	assert.Empty(t, tasks)
}

func TestTodo_ListsWithTasksDegradesPerList(t *testing.T) {
	e := loggedIn(t)
	ctx := context.Background()

	a, err := e.todo.CreateList(ctx, "A", "")
	require.NoError(t, err)
	b, err := e.todo.CreateList(ctx, "B", "")
	require.NoError(t, err)
	for _, l := range []*models.List{a, b} {
		_, err := e.todo.AddTask(ctx, models.TaskInput{ListID: l.ID, Title: ptr("task in " + l.Name)})
		require.NoError(t, err)
	}

	e.backend.InjectFault(fakeapi.Fault{Path: "/lists/" + a.ID.String() + "/tasks", Status: http.StatusInternalServerError})

	lists, err := e.todo.ListsWithTasks(ctx)
	require.NoError(t, err)
	require.Len(t, lists, 2)
	byID := map[models.ID]models.List{}
	for _, l := range lists {
		byID[l.ID] = l
	}
	assert.NotNil(t, byID[a.ID].Tasks)
	assert.Empty(t, byID[a.ID].Tasks)
	assert.Len(t, byID[b.ID].Tasks, 1)
}

func TestTodo_UnauthorizedEndsSession(t *testing.T) {
	e := loggedIn(t)
	e.backend.InjectFault(fakeapi.Fault{Path: "/lists", Status: http.StatusUnauthorized, Body: map[string]string{"detail": "Not authenticated"}})

	_, err := e.todo.Lists(context.Background())
	require.ErrorIs(t, err, api.ErrUnauthorized)
	assert.False(t, e.auth.IsLoggedIn())
}

package fakeapi

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"
)

const (
	maxNameLength        = 100
	maxTitleLength       = 200
	maxDescriptionLength = 1000
)

var priorities = map[string]bool{"low": true, "medium": true, "high": true}

type listRequest struct {
	Name        *string `json:"name"`
	Description *string `json:"description"`
}

type taskRequest struct {
	ListID      *string `json:"list_id"`
	ListIDAlt   *string `json:"listId"`
	Title       *string `json:"title"`
	Name        *string `json:"name"`
	Description *string `json:"description"`
	Completed   *bool   `json:"completed"`
	IsCompleted *bool   `json:"is_completed"`
	Priority    *string `json:"priority"`
	DueDate     *string `json:"due_date"`
}

func (r *taskRequest) listID() *string {
	if r.ListID != nil {
		return r.ListID
	}
	return r.ListIDAlt
}

func (r *taskRequest) title() *string {
	if r.Title != nil {
		return r.Title
	}
	return r.Name
}

func (r *taskRequest) completed() *bool {
	if r.Completed != nil {
		return r.Completed
	}
	return r.IsCompleted
}

func userID(c echo.Context) string { return c.Get(ctxUserID).(string) }

func (s *Server) getLists(c echo.Context) error {
	lists := s.store.userLists(userID(c), c.QueryParam("sort"))

	if raw := c.QueryParam("limit"); raw != "" {
		limit, err := strconv.Atoi(raw)
		if err != nil || limit < 0 {
			return validationFailed(c, map[string]string{"limit": "value is not a valid integer"})
		}
		if limit < len(lists) {
			lists = lists[:limit]
		}
	}

	out := make([]listJSON, 0, len(lists))
	for _, l := range lists {
		out = append(out, renderList(l))
	}
	return c.JSON(http.StatusOK, out)
}

func (s *Server) createList(c echo.Context) error {
	var req listRequest
	if err := c.Bind(&req); err != nil {
		return detail(c, http.StatusBadRequest, "Malformed request body")
	}
	if problems := checkList(req, true); len(problems) > 0 {
		return validationFailed(c, problems)
	}

	now := s.now()
	l := listRecord{UserID: userID(c), Name: strings.TrimSpace(*req.Name), CreatedAt: now, UpdatedAt: now}
	if req.Description != nil {
		l.Description = *req.Description
	}
	return c.JSON(http.StatusCreated, renderList(s.store.createList(l)))
}

func (s *Server) getList(c echo.Context) error {
	l, err := s.store.getList(userID(c), c.Param("id"))
	if err != nil {
		return detail(c, http.StatusNotFound, "List not found")
	}
	return c.JSON(http.StatusOK, renderList(l))
}

func (s *Server) updateList(c echo.Context) error {
	var req listRequest
	if err := c.Bind(&req); err != nil {
		return detail(c, http.StatusBadRequest, "Malformed request body")
	}
	if problems := checkList(req, false); len(problems) > 0 {
		return validationFailed(c, problems)
	}

	l, err := s.store.updateList(userID(c), c.Param("id"), func(l *listRecord) {
		if req.Name != nil {
			l.Name = strings.TrimSpace(*req.Name)
		}
		if req.Description != nil {
			l.Description = *req.Description
		}
		l.UpdatedAt = s.now()
	})
	if err != nil {
		return detail(c, http.StatusNotFound, "List not found")
	}
	return c.JSON(http.StatusOK, renderList(l))
}

func (s *Server) deleteList(c echo.Context) error {
	if err := s.store.deleteList(userID(c), c.Param("id")); err != nil {
		return detail(c, http.StatusNotFound, "List not found")
	}
	return c.NoContent(http.StatusNoContent)
}

func (s *Server) getListTasks(c echo.Context) error {
	uid := userID(c)
	if _, err := s.store.getList(uid, c.Param("id")); err != nil {
		return detail(c, http.StatusNotFound, "List not found")
	}
	tasks, err := filterTasks(s.store.userTasks(uid, c.Param("id")), c)
	if err != nil {
		return validationFailed(c, map[string]string{"completed": "value could not be parsed to a boolean"})
	}
	return c.JSON(http.StatusOK, renderTasks(tasks))
}

func (s *Server) createListTask(c echo.Context) error {
	return s.createTaskIn(c, c.Param("id"))
}

func (s *Server) getTasks(c echo.Context) error {
	tasks, err := filterTasks(s.store.userTasks(userID(c), c.QueryParam("list_id")), c)
	if err != nil {
		return validationFailed(c, map[string]string{"completed": "value could not be parsed to a boolean"})
	}
	return c.JSON(http.StatusOK, renderTasks(tasks))
}

func (s *Server) createTask(c echo.Context) error {
	return s.createTaskIn(c, "")
}

func (s *Server) createTaskIn(c echo.Context, listID string) error {
	var req taskRequest
	if err := c.Bind(&req); err != nil {
		return detail(c, http.StatusBadRequest, "Malformed request body")
	}
	if listID == "" && req.listID() != nil {
		listID = *req.listID()
	}

	problems := checkTask(req, true)
	if listID == "" {
		problems["list_id"] = "field required"
	}
	if len(problems) > 0 {
		return validationFailed(c, problems)
	}

	now := s.now()
	t := taskRecord{
		ListID:    listID,
		UserID:    userID(c),
		Priority:  "medium",
		CreatedAt: now,
		UpdatedAt: now,
	}
	applyTask(&t, req)

	created, err := s.store.createTask(t)
	if err != nil {
		return detail(c, http.StatusNotFound, "List not found")
	}
	return c.JSON(http.StatusCreated, renderTask(created))
}

func (s *Server) getTask(c echo.Context) error {
	t, err := s.store.getTask(userID(c), c.Param("id"))
	if err != nil {
		return detail(c, http.StatusNotFound, "Task not found")
	}
	return c.JSON(http.StatusOK, renderTask(t))
}

func (s *Server) updateTask(c echo.Context) error {
	var req taskRequest
	if err := c.Bind(&req); err != nil {
		return detail(c, http.StatusBadRequest, "Malformed request body")
	}
	if problems := checkTask(req, false); len(problems) > 0 {
		return validationFailed(c, problems)
	}
	return s.mutateTask(c, func(t *taskRecord) {
		if id := req.listID(); id != nil && *id != "" {
			t.ListID = *id
		}
		applyTask(t, req)
	})
}

func (s *Server) deleteTask(c echo.Context) error {
	if err := s.store.deleteTask(userID(c), c.Param("id")); err != nil {
		return detail(c, http.StatusNotFound, "Task not found")
	}
	return c.NoContent(http.StatusNoContent)
}

func (s *Server) completeTask(c echo.Context) error {
	return s.mutateTask(c, func(t *taskRecord) { t.Completed = true })
}

func (s *Server) incompleteTask(c echo.Context) error {
	return s.mutateTask(c, func(t *taskRecord) { t.Completed = false })
}

func (s *Server) mutateTask(c echo.Context, fn func(t *taskRecord)) error {
	t, err := s.store.updateTask(userID(c), c.Param("id"), func(t *taskRecord) error {
		fn(t)
		t.UpdatedAt = s.now()
		return nil
	})
	if err != nil {
		return detail(c, http.StatusNotFound, "Task not found")
	}
	return c.JSON(http.StatusOK, renderTask(t))
}

func applyTask(t *taskRecord, req taskRequest) {
	if v := req.title(); v != nil {
		t.Title = strings.TrimSpace(*v)
	}
	if req.Description != nil {
		t.Description = *req.Description
	}
	if v := req.completed(); v != nil {
		t.Completed = *v
	}
	if req.Priority != nil && *req.Priority != "" {
		t.Priority = strings.ToLower(*req.Priority)
	}
	if req.DueDate != nil {
		t.DueDate = *req.DueDate
	}
}

// filterTasks applies the optional ?completed= filter.
func filterTasks(tasks []taskRecord, c echo.Context) ([]taskRecord, error) {
	raw := c.QueryParam("completed")
	if raw == "" {
		return tasks, nil
	}
	want, err := strconv.ParseBool(raw)
	if err != nil {
		return nil, err
	}
	out := tasks[:0]
	for _, t := range tasks {
		if t.Completed == want {
			out = append(out, t)
		}
	}
	return out, nil
}

func checkList(req listRequest, create bool) map[string]string {
	problems := map[string]string{}
	switch {
	case req.Name == nil && create:
		problems["name"] = "field required"
	case req.Name != nil && strings.TrimSpace(*req.Name) == "":
		problems["name"] = "ensure this value has at least 1 characters"
	case req.Name != nil && len([]rune(*req.Name)) > maxNameLength:
		problems["name"] = "ensure this value has at most 100 characters"
	}
	if req.Description != nil && len([]rune(*req.Description)) > maxDescriptionLength {
		problems["description"] = "ensure this value has at most 1000 characters"
	}
	return problems
}

func checkTask(req taskRequest, create bool) map[string]string {
	problems := map[string]string{}
	title := req.title()
	switch {
	case title == nil && req.Description == nil && create:
		problems["title"] = "field required"
	case title != nil && len([]rune(*title)) > maxTitleLength:
		problems["title"] = "ensure this value has at most 200 characters"
	}
	if req.Description != nil && len([]rune(*req.Description)) > maxDescriptionLength {
		problems["description"] = "ensure this value has at most 1000 characters"
	}
	if req.Priority != nil && *req.Priority != "" && !priorities[strings.ToLower(*req.Priority)] {
		problems["priority"] = "value is not a valid enumeration member; permitted: 'low', 'medium', 'high'"
	}
	return problems
}

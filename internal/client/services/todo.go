package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/dmitrijs2005/todoclient/internal/client/api"
	"github.com/dmitrijs2005/todoclient/internal/client/models"
	"github.com/dmitrijs2005/todoclient/internal/logging"
	"github.com/dmitrijs2005/todoclient/internal/validate"
)

// maxParallelFetches bounds the per-list task requests issued at once.
const maxParallelFetches = 4

// TodoAPI is the list and task part of api.Client.
type TodoAPI interface {
	GetLists(ctx context.Context, q api.Query) ([]models.List, error)
	GetList(ctx context.Context, id models.ID) (*models.List, error)
	CreateList(ctx context.Context, in models.ListInput) (*models.List, error)
	UpdateList(ctx context.Context, id models.ID, in models.ListInput) (*models.List, error)
	DeleteList(ctx context.Context, id models.ID) error
	GetListTasks(ctx context.Context, id models.ID, q api.Query) ([]models.Task, error)
	GetTasks(ctx context.Context, q api.Query) ([]models.Task, error)
	GetTask(ctx context.Context, id models.ID) (*models.Task, error)
	CreateTask(ctx context.Context, in models.TaskInput) (*models.Task, error)
	UpdateTask(ctx context.Context, id models.ID, in models.TaskInput) (*models.Task, error)
	DeleteTask(ctx context.Context, id models.ID) error
	CompleteTask(ctx context.Context, id models.ID) (*models.Task, error)
	IncompleteTask(ctx context.Context, id models.ID) (*models.Task, error)
}

// TodoService defines list and task operations for the CLI.
//
// Contract:
//   - Input is validated locally before any request; invalid input never reaches the backend.
//   - ListsWithTasks/List attach each list's tasks; a failed per-list fetch attaches an empty slice.
//   - Tasks with a zero list id returns every task of the user.
//   - AddTask requires ListID and Title; EditTask sends only the fields that are set.
//
// Backend failures are returned wrapped; they match the api sentinels with errors.Is.
type TodoService interface {
	Lists(ctx context.Context) ([]models.List, error)
	ListsWithTasks(ctx context.Context) ([]models.List, error)
	List(ctx context.Context, id models.ID) (*models.List, error)
	CreateList(ctx context.Context, name, description string) (*models.List, error)
	UpdateList(ctx context.Context, id models.ID, name, description string) (*models.List, error)
	DeleteList(ctx context.Context, id models.ID) error

	Tasks(ctx context.Context, listID models.ID) ([]models.Task, error)
	Task(ctx context.Context, id models.ID) (*models.Task, error)
	AddTask(ctx context.Context, in models.TaskInput) (*models.Task, error)
	EditTask(ctx context.Context, id models.ID, in models.TaskInput) (*models.Task, error)
	SetCompleted(ctx context.Context, id models.ID, done bool) (*models.Task, error)
	DeleteTask(ctx context.Context, id models.ID) error
}

type todoService struct {
	api TodoAPI
	log logging.Logger
}

// NewTodoService constructs a TodoService over the API client.
func NewTodoService(client TodoAPI, log logging.Logger) TodoService {
	return &todoService{api: client, log: log.With("component", "todo")}
}

func (s *todoService) Lists(ctx context.Context) ([]models.List, error) {
	lists, err := s.api.GetLists(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("get lists: %w", err)
	}
	return lists, nil
}

func (s *todoService) ListsWithTasks(ctx context.Context) ([]models.List, error) {
	lists, err := s.Lists(ctx)
	if err != nil {
		return nil, err
	}
	attachTasks(ctx, s.api, lists, s.log)
	return lists, nil
}

func (s *todoService) List(ctx context.Context, id models.ID) (*models.List, error) {
	if id.IsZero() {
		return nil, fmt.Errorf("list id: %w", validate.ErrRequired)
	}
	l, err := s.api.GetList(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get list %s: %w", id, err)
	}
	tasks, err := s.api.GetListTasks(ctx, id, nil)
	if err != nil {
		return nil, fmt.Errorf("get tasks of list %s: %w", id, err)
	}
	l.Tasks = tasks
	return l, nil
}

func (s *todoService) CreateList(ctx context.Context, name, description string) (*models.List, error) {
	in, err := listInput(name, description)
	if err != nil {
		return nil, err
	}
	l, err := s.api.CreateList(ctx, in)
	if err != nil {
		return nil, fmt.Errorf("create list: %w", err)
	}
	return l, nil
}

func (s *todoService) UpdateList(ctx context.Context, id models.ID, name, description string) (*models.List, error) {
	if id.IsZero() {
		return nil, fmt.Errorf("list id: %w", validate.ErrRequired)
	}
	in, err := listInput(name, description)
	if err != nil {
		return nil, err
	}
	l, err := s.api.UpdateList(ctx, id, in)
	if err != nil {
		return nil, fmt.Errorf("update list %s: %w", id, err)
	}
	return l, nil
}

func (s *todoService) DeleteList(ctx context.Context, id models.ID) error {
	if id.IsZero() {
		return fmt.Errorf("list id: %w", validate.ErrRequired)
	}
	if err := s.api.DeleteList(ctx, id); err != nil {
		return fmt.Errorf("delete list %s: %w", id, err)
	}
	return nil
}

func (s *todoService) Tasks(ctx context.Context, listID models.ID) ([]models.Task, error) {
	var (
		tasks []models.Task
		err   error
	)
	if listID.IsZero() {
		tasks, err = s.api.GetTasks(ctx, nil)
	} else {
		tasks, err = s.api.GetListTasks(ctx, listID, nil)
	}
	if err != nil {
		return nil, fmt.Errorf("get tasks: %w", err)
	}
	return tasks, nil
}

func (s *todoService) Task(ctx context.Context, id models.ID) (*models.Task, error) {
	if id.IsZero() {
		return nil, fmt.Errorf("task id: %w", validate.ErrRequired)
	}
	t, err := s.api.GetTask(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get task %s: %w", id, err)
	}
	return t, nil
}

func (s *todoService) AddTask(ctx context.Context, in models.TaskInput) (*models.Task, error) {
	if in.ListID.IsZero() {
		return nil, fmt.Errorf("list id: %w", validate.ErrRequired)
	}
	if in.Title == nil {
		return nil, fmt.Errorf("title: %w", validate.ErrRequired)
	}
	in, err := checkTaskInput(in)
	if err != nil {
		return nil, err
	}
	if in.Priority == nil {
		p := models.PriorityMedium
		in.Priority = &p
	}
	t, err := s.api.CreateTask(ctx, in)
	if err != nil {
		return nil, fmt.Errorf("create task: %w", err)
	}
	return t, nil
}

func (s *todoService) EditTask(ctx context.Context, id models.ID, in models.TaskInput) (*models.Task, error) {
	if id.IsZero() {
		return nil, fmt.Errorf("task id: %w", validate.ErrRequired)
	}
	in, err := checkTaskInput(in)
	if err != nil {
		return nil, err
	}
	t, err := s.api.UpdateTask(ctx, id, in)
	if err != nil {
		return nil, fmt.Errorf("update task %s: %w", id, err)
	}
	return t, nil
}

func (s *todoService) SetCompleted(ctx context.Context, id models.ID, done bool) (*models.Task, error) {
	if id.IsZero() {
		return nil, fmt.Errorf("task id: %w", validate.ErrRequired)
	}
	call, verb := s.api.IncompleteTask, "reopen"
	if done {
		call, verb = s.api.CompleteTask, "complete"
	}
	t, err := call(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("%s task %s: %w", verb, id, err)
	}
	return t, nil
}

func (s *todoService) DeleteTask(ctx context.Context, id models.ID) error {
	if id.IsZero() {
		return fmt.Errorf("task id: %w", validate.ErrRequired)
	}
	if err := s.api.DeleteTask(ctx, id); err != nil {
		return fmt.Errorf("delete task %s: %w", id, err)
	}
	return nil
}

func listInput(name, description string) (models.ListInput, error) {
	in := models.ListInput{Name: strings.TrimSpace(name), Description: strings.TrimSpace(description)}
	if err := validate.ListName(in.Name); err != nil {
		return in, err
	}
	if err := validate.ListDescription(in.Description); err != nil {
		return in, err
	}
	return in, nil
}

// checkTaskInput trims and validates the fields present in in.
func checkTaskInput(in models.TaskInput) (models.TaskInput, error) {
	if in.Title != nil {
		title := strings.TrimSpace(*in.Title)
		if err := validate.TaskTitle(title); err != nil {
			return in, err
		}
		in.Title = &title
	}
	if in.Description != nil {
		desc := strings.TrimSpace(*in.Description)
		if err := validate.TaskDescription(desc); err != nil {
			return in, err
		}
		in.Description = &desc
	}
	if in.Priority != nil {
		p, err := models.ParsePriority(string(*in.Priority))
		if err != nil {
			return in, err
		}
		in.Priority = &p
	}
	if in.DueDate != nil && *in.DueDate != "" {
		if _, err := time.Parse(time.DateOnly, *in.DueDate); err != nil {
			return in, fmt.Errorf("due date must be YYYY-MM-DD: %w", err)
		}
	}
	return in, nil
}

// attachTasks fills in Tasks for every list, fetching them concurrently.
func attachTasks(ctx context.Context, client TodoAPI, lists []models.List, log logging.Logger) {
	var g errgroup.Group
	g.SetLimit(maxParallelFetches)
	for i := range lists {
		g.Go(func() error {
			tasks, err := client.GetListTasks(ctx, lists[i].ID, nil)
			if err != nil {
				log.Warn(ctx, "fetch list tasks failed", "list_id", lists[i].ID.String(), "error", err)
				tasks = []models.Task{}
			}
			lists[i].Tasks = tasks
			return nil
		})
	}
	_ = g.Wait()
}

package api

import (
	"context"

	"github.com/dmitrijs2005/todoclient/internal/client/models"
)

func (c *Client) GetTasks(ctx context.Context, q Query) ([]models.Task, error) {
	var out []models.Task
	if err := c.Get(ctx, PathTasks, q, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) GetTask(ctx context.Context, id models.ID) (*models.Task, error) {
	var out models.Task
	if err := c.Get(ctx, TaskPath(id), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) CreateTask(ctx context.Context, in models.TaskInput) (*models.Task, error) {
	var out models.Task
	if err := c.Post(ctx, PathTasks, in, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) UpdateTask(ctx context.Context, id models.ID, in models.TaskInput) (*models.Task, error) {
	var out models.Task
	if err := c.Put(ctx, TaskPath(id), in, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) DeleteTask(ctx context.Context, id models.ID) error {
	return c.Delete(ctx, TaskPath(id), nil)
}

func (c *Client) CompleteTask(ctx context.Context, id models.ID) (*models.Task, error) {
	var out models.Task
	if err := c.Post(ctx, TaskCompletePath(id), emptyObject, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) IncompleteTask(ctx context.Context, id models.ID) (*models.Task, error) {
	var out models.Task
	if err := c.Post(ctx, TaskIncompletePath(id), emptyObject, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

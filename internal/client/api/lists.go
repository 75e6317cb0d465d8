package api

import (
	"context"

	"github.com/dmitrijs2005/todoclient/internal/client/models"
)

func (c *Client) GetLists(ctx context.Context, q Query) ([]models.List, error) {
	var out []models.List
	if err := c.Get(ctx, PathLists, q, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) GetList(ctx context.Context, id models.ID) (*models.List, error) {
	var out models.List
	if err := c.Get(ctx, ListPath(id), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) CreateList(ctx context.Context, in models.ListInput) (*models.List, error) {
	var out models.List
	if err := c.Post(ctx, PathLists, in, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) UpdateList(ctx context.Context, id models.ID, in models.ListInput) (*models.List, error) {
	var out models.List
	if err := c.Put(ctx, ListPath(id), in, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) DeleteList(ctx context.Context, id models.ID) error {
	return c.Delete(ctx, ListPath(id), nil)
}

func (c *Client) GetListTasks(ctx context.Context, id models.ID, q Query) ([]models.Task, error) {
	var out []models.Task
	if err := c.Get(ctx, ListTasksPath(id), q, &out); err != nil {
		return nil, err
	}
	return out, nil
}

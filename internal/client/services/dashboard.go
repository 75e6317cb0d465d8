package services

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"golang.org/x/sync/errgroup"

	"github.com/dmitrijs2005/todoclient/internal/client/api"
	"github.com/dmitrijs2005/todoclient/internal/client/config"
	"github.com/dmitrijs2005/todoclient/internal/client/models"
	"github.com/dmitrijs2005/todoclient/internal/logging"
)

// Stats summarises the user's lists and tasks.
type Stats struct {
	TotalLists     int
	TotalTasks     int
	CompletedTasks int
	PendingTasks   int
}

// Dashboard is everything the home screen shows.
type Dashboard struct {
	Stats       Stats
	RecentLists []models.List
}

// DashboardService defines the home-screen queries.
//
// Contract:
//   - Statistics: lists and tasks are fetched concurrently; on failure the
//     zero Stats is returned together with the error, which is also logged.
//   - RecentLists: the n most recently updated lists with their tasks attached.
//     n <= 0 means the default of six.
//   - Load: both of the above, run concurrently. Each half degrades on its own;
//     the returned error joins whatever failed.
type DashboardService interface {
	Statistics(ctx context.Context) (Stats, error)
	RecentLists(ctx context.Context, n int) ([]models.List, error)
	Load(ctx context.Context) (*Dashboard, error)
}

type dashboardService struct {
	api TodoAPI
	log logging.Logger
}

// NewDashboardService constructs a DashboardService over the API client.
func NewDashboardService(client TodoAPI, log logging.Logger) DashboardService {
	return &dashboardService{api: client, log: log.With("component", "dashboard")}
}

func (s *dashboardService) Statistics(ctx context.Context) (Stats, error) {
	var (
		lists []models.List
		tasks []models.Task
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		lists, err = s.api.GetLists(gctx, nil)
		return err
	})
	g.Go(func() error {
		var err error
		tasks, err = s.api.GetTasks(gctx, nil)
		return err
	})
	if err := g.Wait(); err != nil {
		s.log.Error(ctx, "load statistics failed", "error", err)
		return Stats{}, fmt.Errorf("statistics: %w", err)
	}
	return computeStats(lists, tasks), nil
}

func computeStats(lists []models.List, tasks []models.Task) Stats {
	st := Stats{TotalLists: len(lists), TotalTasks: len(tasks)}
	for _, t := range tasks {
		if t.Completed {
			st.CompletedTasks++
		}
	}
	st.PendingTasks = st.TotalTasks - st.CompletedTasks
	return st
}

func (s *dashboardService) RecentLists(ctx context.Context, n int) ([]models.List, error) {
	if n <= 0 {
		n = config.RecentListsLimit
	}
	lists, err := s.api.GetLists(ctx, api.Query{"limit": strconv.Itoa(n), "sort": "-updated_at"})
	if err != nil {
		s.log.Error(ctx, "load recent lists failed", "error", err)
		return nil, fmt.Errorf("recent lists: %w", err)
	}
	if len(lists) > n {
		lists = lists[:n]
	}
	attachTasks(ctx, s.api, lists, s.log)
	return lists, nil
}

func (s *dashboardService) Load(ctx context.Context) (*Dashboard, error) {
	var (
		d                  Dashboard
		statsErr, listsErr error
	)
	// Each half handles its own failure, so the group never cancels the other.
	var g errgroup.Group
	g.Go(func() error {
		d.Stats, statsErr = s.Statistics(ctx)
		return nil
	})
	g.Go(func() error {
		d.RecentLists, listsErr = s.RecentLists(ctx, config.RecentListsLimit)
		return nil
	})
	_ = g.Wait()

	if d.RecentLists == nil {
		d.RecentLists = []models.List{}
	}
	return &d, errors.Join(statsErr, listsErr)
}

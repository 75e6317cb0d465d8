package api

import "github.com/dmitrijs2005/todoclient/internal/client/models"

// Endpoint paths, relative to the base URL.
const (
	PathRegister = "/auth/register"
	PathLogin    = "/auth/login"
	PathLogout   = "/auth/logout"
	PathRefresh  = "/auth/refresh"
	PathProfile  = "/users/me"
	PathLists    = "/lists"
	PathTasks    = "/tasks"
	PathHealth   = "/health"
)

func ListPath(id models.ID) string { return PathLists + "/" + id.String() }

func ListTasksPath(id models.ID) string { return ListPath(id) + "/tasks" }

func TaskPath(id models.ID) string { return PathTasks + "/" + id.String() }

func TaskCompletePath(id models.ID) string { return TaskPath(id) + "/complete" }

func TaskIncompletePath(id models.ID) string { return TaskPath(id) + "/incomplete" }

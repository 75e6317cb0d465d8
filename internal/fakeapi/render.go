package fakeapi

import (
	"sort"
	"time"
)

func formatTime(t time.Time) string { return t.UTC().Format(time.RFC3339Nano) }

func renderUser(u userRecord) map[string]any {
	out := make(map[string]any, len(u.Profile)+6)
	for k, v := range u.Profile {
		out[k] = v
	}
	out["id"] = u.ID
	out["email"] = u.Email
	out["username"] = u.Username
	out["is_active"] = u.IsActive
	out["created_at"] = formatTime(u.CreatedAt)
	out["updated_at"] = formatTime(u.UpdatedAt)
	return out
}

type listJSON struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	UserID      string `json:"userId"`
	CreatedAt   string `json:"created_at"`
	UpdatedAt   string `json:"updated_at"`
}

func renderList(l listRecord) listJSON {
	return listJSON{
		ID:          l.ID,
		Name:        l.Name,
		Description: l.Description,
		UserID:      l.UserID,
		CreatedAt:   formatTime(l.CreatedAt),
		UpdatedAt:   formatTime(l.UpdatedAt),
	}
}

type taskJSON struct {
	ID          string `json:"id"`
	ListID      string `json:"listId"`
	Title       string `json:"title"`
	Description string `json:"description,omitempty"`
	Completed   bool   `json:"completed"`
	Priority    string `json:"priority"`
	DueDate     string `json:"due_date,omitempty"`
	CreatedAt   string `json:"created_at"`
	UpdatedAt   string `json:"updated_at"`
}

func renderTask(t taskRecord) taskJSON {
	return taskJSON{
		ID:          t.ID,
		ListID:      t.ListID,
		Title:       t.Title,
		Description: t.Description,
		Completed:   t.Completed,
		Priority:    t.Priority,
		DueDate:     t.DueDate,
		CreatedAt:   formatTime(t.CreatedAt),
		UpdatedAt:   formatTime(t.UpdatedAt),
	}
}

func renderTasks(ts []taskRecord) []taskJSON {
	out := make([]taskJSON, 0, len(ts))
	for _, t := range ts {
		out = append(out, renderTask(t))
	}
	return out
}

func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

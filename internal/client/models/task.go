package models

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
)

var ErrUnknownPriority = errors.New("priority must be low, medium or high")

func ParsePriority(s string) (Priority, error) {
	switch p := Priority(strings.ToLower(strings.TrimSpace(s))); p {
	case PriorityLow, PriorityMedium, PriorityHigh:
		return p, nil
	case "":
		return PriorityMedium, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownPriority, s)
	}
}

// Task is a single todo item.
type Task struct {
	ID          ID
	ListID      ID
	Title       string
	Description string
	Completed   bool
	Priority    Priority
	DueDate     string
	CreatedAt   string
	UpdatedAt   string
	Extra       Extra
}

// TaskInput is the body of create and update task requests. Nil pointers are
// left out so an update only touches the fields that were given.
type TaskInput struct {
	ListID      ID        `json:"list_id,omitempty"`
	Title       *string   `json:"title,omitempty"`
	Description *string   `json:"description,omitempty"`
	Completed   *bool     `json:"completed,omitempty"`
	Priority    *Priority `json:"priority,omitempty"`
	DueDate     *string   `json:"due_date,omitempty"`
}

// EffectivePriority treats a missing priority as medium.
func (t *Task) EffectivePriority() Priority {
	if t.Priority == "" {
		return PriorityMedium
	}
	return t.Priority
}

// Due parses DueDate as a calendar date or an RFC 3339 timestamp.
func (t *Task) Due() (time.Time, bool) {
	if t.DueDate == "" {
		return time.Time{}, false
	}
	for _, layout := range []string{time.DateOnly, time.RFC3339, "2006-01-02T15:04:05"} {
		if d, err := time.Parse(layout, t.DueDate); err == nil {
			return d, true
		}
	}
	return time.Time{}, false
}

// IsOverdue reports whether an open task is past its due date at now.
func (t *Task) IsOverdue(now time.Time) bool {
	if t.Completed {
		return false
	}
	d, ok := t.Due()
	if !ok {
		return false
	}
	if len(t.DueDate) == len(time.DateOnly) {
		d = d.Add(24 * time.Hour)
	}
	return now.After(d)
}

func (t *Task) UnmarshalJSON(data []byte) error {
	f, err := decodeFields(data)
	if err != nil {
		return err
	}
	var (
		out                    Task
		completed, isCompleted bool
	)
	if err := firstErr(
		f.take(&out.ID, "id"),
		f.take(&out.ListID, "listId", "list_id"),
		f.take(&out.Title, "title", "name"),
		f.take(&out.Description, "description"),
		f.take(&completed, "completed"),
		f.take(&isCompleted, "is_completed"),
		f.take(&out.Priority, "priority"),
		f.take(&out.DueDate, "due_date"),
		f.take(&out.CreatedAt, "created_at"),
		f.take(&out.UpdatedAt, "updated_at"),
	); err != nil {
		return fmt.Errorf("decode task: %w", err)
	}
	out.Completed = completed || isCompleted
	out.Extra = f.extra()
	*t = out
	return nil
}

func (t Task) MarshalJSON() ([]byte, error) {
	f := encodeFields(t.Extra)
	if err := firstErr(
		f.put("id", t.ID),
		f.putIf(!t.ListID.IsZero(), "listId", t.ListID),
		f.putIf(t.Title != "", "title", t.Title),
		f.putIf(t.Description != "", "description", t.Description),
		f.put("completed", t.Completed),
		f.putIf(t.Priority != "", "priority", t.Priority),
		f.putIf(t.DueDate != "", "due_date", t.DueDate),
		f.putIf(t.CreatedAt != "", "created_at", t.CreatedAt),
		f.putIf(t.UpdatedAt != "", "updated_at", t.UpdatedAt),
	); err != nil {
		return nil, fmt.Errorf("encode task: %w", err)
	}
	return f.marshal()
}

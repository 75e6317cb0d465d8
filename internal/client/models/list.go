package models

import "fmt"

// List is a named collection of tasks. Tasks is filled in by the client for
// display and is never sent to or read from the backend.
type List struct {
	ID          ID
	Name        string
	Description string
	UserID      ID
	CreatedAt   string
	UpdatedAt   string
	Tasks       []Task
	Extra       Extra
}

// ListInput is the body of create and update list requests.
type ListInput struct {
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
}

func (l *List) UnmarshalJSON(data []byte) error {
	f, err := decodeFields(data)
	if err != nil {
		return err
	}
	var out List
	if err := firstErr(
		f.take(&out.ID, "id"),
		f.take(&out.Name, "name"),
		f.take(&out.Description, "description"),
		f.take(&out.UserID, "userId", "user_id"),
		f.take(&out.CreatedAt, "created_at"),
		f.take(&out.UpdatedAt, "updated_at"),
	); err != nil {
		return fmt.Errorf("decode list: %w", err)
	}
	// Some backends embed tasks; they are fetched separately here.
	delete(f, "tasks")
	out.Extra = f.extra()
	*l = out
	return nil
}

func (l List) MarshalJSON() ([]byte, error) {
	f := encodeFields(l.Extra)
	if err := firstErr(
		f.put("id", l.ID),
		f.put("name", l.Name),
		f.putIf(l.Description != "", "description", l.Description),
		f.putIf(!l.UserID.IsZero(), "userId", l.UserID),
		f.putIf(l.CreatedAt != "", "created_at", l.CreatedAt),
		f.putIf(l.UpdatedAt != "", "updated_at", l.UpdatedAt),
	); err != nil {
		return nil, fmt.Errorf("encode list: %w", err)
	}
	return f.marshal()
}

// CompletedCount counts the attached tasks that are done.
func (l *List) CompletedCount() int {
	n := 0
	for _, t := range l.Tasks {
		if t.Completed {
			n++
		}
	}
	return n
}

package fakeapi

import (
	"errors"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
)

var (
	ErrNotFound  = errors.New("not found")
	ErrDuplicate = errors.New("already exists")
)

type userRecord struct {
	ID           string
	Email        string
	Username     string
	PasswordHash []byte
	IsActive     bool
	Profile      map[string]any
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

type listRecord struct {
	ID          string
	UserID      string
	Name        string
	Description string
	CreatedAt   time.Time
	UpdatedAt   time.Time
	seq         int64
}

type taskRecord struct {
	ID          string
	ListID      string
	UserID      string
	Title       string
	Description string
	Completed   bool
	Priority    string
	DueDate     string
	CreatedAt   time.Time
	UpdatedAt   time.Time
	seq         int64
}

// memStore keeps every record in memory. All methods are safe for concurrent use.
type memStore struct {
	mu    sync.RWMutex
	seq   int64
	users map[string]*userRecord
	lists map[string]*listRecord
	tasks map[string]*taskRecord
}

func newMemStore() *memStore {
	return &memStore{
		users: make(map[string]*userRecord),
		lists: make(map[string]*listRecord),
		tasks: make(map[string]*taskRecord),
	}
}

func (s *memStore) nextSeq() int64 {
	s.seq++
	return s.seq
}

func (s *memStore) createUser(u userRecord) (userRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, other := range s.users {
		if (u.Email != "" && strings.EqualFold(other.Email, u.Email)) ||
			(u.Username != "" && strings.EqualFold(other.Username, u.Username)) {
			return userRecord{}, ErrDuplicate
		}
	}
	u.ID = uuid.NewString()
	if u.Profile == nil {
		u.Profile = map[string]any{}
	}
	s.users[u.ID] = &u
	return u, nil
}

// findUser looks a user up by email or username, case-insensitively.
func (s *memStore) findUser(login string) (userRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, u := range s.users {
		if (u.Email != "" && strings.EqualFold(u.Email, login)) ||
			(u.Username != "" && strings.EqualFold(u.Username, login)) {
			return *u, nil
		}
	}
	return userRecord{}, ErrNotFound
}

func (s *memStore) getUser(id string) (userRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	u, ok := s.users[id]
	if !ok {
		return userRecord{}, ErrNotFound
	}
	return *u, nil
}

func (s *memStore) updateUser(id string, fn func(u *userRecord) error) (userRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	u, ok := s.users[id]
	if !ok {
		return userRecord{}, ErrNotFound
	}
	next := *u
	next.Profile = make(map[string]any, len(u.Profile))
	for k, v := range u.Profile {
		next.Profile[k] = v
	}
	if err := fn(&next); err != nil {
		return userRecord{}, err
	}
	for _, other := range s.users {
		if other.ID == id {
			continue
		}
		if (next.Email != "" && strings.EqualFold(other.Email, next.Email)) ||
			(next.Username != "" && strings.EqualFold(other.Username, next.Username)) {
			return userRecord{}, ErrDuplicate
		}
	}
	s.users[id] = &next
	return next, nil
}

func (s *memStore) createList(l listRecord) listRecord {
	s.mu.Lock()
	defer s.mu.Unlock()

	l.ID = uuid.NewString()
	l.seq = s.nextSeq()
	s.lists[l.ID] = &l
	return l
}

func (s *memStore) getList(userID, id string) (listRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	l, ok := s.lists[id]
	if !ok || l.UserID != userID {
		return listRecord{}, ErrNotFound
	}
	return *l, nil
}

// userLists returns the user's lists ordered by sort ("name", "created_at",
// "updated_at", optionally prefixed with "-" for descending). The default is
// creation order.
func (s *memStore) userLists(userID, sortBy string) []listRecord {
	s.mu.RLock()
	out := make([]listRecord, 0)
	for _, l := range s.lists {
		if l.UserID == userID {
			out = append(out, *l)
		}
	}
	s.mu.RUnlock()

	desc := strings.HasPrefix(sortBy, "-")
	key := strings.TrimPrefix(sortBy, "-")
	less := func(a, b listRecord) bool {
		switch key {
		case "name":
			if a.Name != b.Name {
				return a.Name < b.Name
			}
		case "updated_at":
			if !a.UpdatedAt.Equal(b.UpdatedAt) {
				return a.UpdatedAt.Before(b.UpdatedAt)
			}
		}
		return a.seq < b.seq
	}
	sort.Slice(out, func(i, j int) bool {
		if desc {
			return less(out[j], out[i])
		}
		return less(out[i], out[j])
	})
	return out
}

func (s *memStore) updateList(userID, id string, fn func(l *listRecord)) (listRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	l, ok := s.lists[id]
	if !ok || l.UserID != userID {
		return listRecord{}, ErrNotFound
	}
	next := *l
	fn(&next)
	s.lists[id] = &next
	return next, nil
}

// deleteList removes the list and every task in it.
func (s *memStore) deleteList(userID, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	l, ok := s.lists[id]
	if !ok || l.UserID != userID {
		return ErrNotFound
	}
	delete(s.lists, id)
	for tid, t := range s.tasks {
		if t.ListID == id {
			delete(s.tasks, tid)
		}
	}
	return nil
}

func (s *memStore) createTask(t taskRecord) (taskRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	l, ok := s.lists[t.ListID]
	if !ok || l.UserID != t.UserID {
		return taskRecord{}, ErrNotFound
	}
	t.ID = uuid.NewString()
	t.seq = s.nextSeq()
	s.tasks[t.ID] = &t
	return t, nil
}

func (s *memStore) getTask(userID, id string) (taskRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	t, ok := s.tasks[id]
	if !ok || t.UserID != userID {
		return taskRecord{}, ErrNotFound
	}
	return *t, nil
}

// userTasks returns the user's tasks in creation order, optionally limited to
// one list.
func (s *memStore) userTasks(userID, listID string) []taskRecord {
	s.mu.RLock()
	out := make([]taskRecord, 0)
	for _, t := range s.tasks {
		if t.UserID == userID && (listID == "" || t.ListID == listID) {
			out = append(out, *t)
		}
	}
	s.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool { return out[i].seq < out[j].seq })
	return out
}

func (s *memStore) updateTask(userID, id string, fn func(t *taskRecord) error) (taskRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	t, ok := s.tasks[id]
	if !ok || t.UserID != userID {
		return taskRecord{}, ErrNotFound
	}
	next := *t
	if err := fn(&next); err != nil {
		return taskRecord{}, err
	}
	if l, ok := s.lists[next.ListID]; !ok || l.UserID != userID {
		return taskRecord{}, ErrNotFound
	}
	s.tasks[id] = &next
	return next, nil
}

func (s *memStore) deleteTask(userID, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	t, ok := s.tasks[id]
	if !ok || t.UserID != userID {
		return ErrNotFound
	}
	delete(s.tasks, id)
	return nil
}

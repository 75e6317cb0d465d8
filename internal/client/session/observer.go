package session

import (
	"context"

	"github.com/dmitrijs2005/todoclient/internal/client/models"
)

// ChangeType names a session transition.
type ChangeType string

const (
	ChangeLogin       ChangeType = "login"
	ChangeRegister    ChangeType = "register"
	ChangeLogout      ChangeType = "logout"
	ChangeUserUpdate  ChangeType = "user_update"
	ChangeForceReauth ChangeType = "force_reauth"
)

// Change is delivered to observers after the state it describes is in place.
type Change struct {
	Type          ChangeType
	User          *models.User
	Authenticated bool
}

// Observer reacts to a session change. A returned error is logged and does
// not stop delivery to the remaining observers.
type Observer func(ctx context.Context, ch Change) error

type observerEntry struct {
	id int
	fn Observer
}

// Subscribe registers fn and returns a function that removes it. Observers
// are called synchronously, in subscription order.
func (m *Manager) Subscribe(fn Observer) (unsubscribe func()) {
	m.obsMu.Lock()
	defer m.obsMu.Unlock()

	m.nextObserverID++
	id := m.nextObserverID
	m.observers = append(m.observers, observerEntry{id: id, fn: fn})

	return func() {
		m.obsMu.Lock()
		defer m.obsMu.Unlock()
		for i, o := range m.observers {
			if o.id == id {
				m.observers = append(m.observers[:i:i], m.observers[i+1:]...)
				return
			}
		}
	}
}

func (m *Manager) notify(ctx context.Context, ch Change) {
	m.obsMu.Lock()
	observers := make([]observerEntry, len(m.observers))
	copy(observers, m.observers)
	m.obsMu.Unlock()

	for _, o := range observers {
		m.deliver(ctx, o, ch)
	}
}

func (m *Manager) deliver(ctx context.Context, o observerEntry, ch Change) {
	defer func() {
		if r := recover(); r != nil {
			m.log.Error(ctx, "session observer panicked", "change", ch.Type, "panic", r)
		}
	}()
	if err := o.fn(ctx, ch); err != nil {
		m.log.Error(ctx, "session observer failed", "change", ch.Type, "error", err)
	}
}

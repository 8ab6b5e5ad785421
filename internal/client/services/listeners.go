package services

import (
	"github.com/dmitrijs2005/holyculture/internal/client/models"
)

type listenerEntry struct {
	id uint64
	fn Listener
}

// Subscribe registers fn and immediately calls it with the current state.
// The returned func removes the listener; calling it twice is harmless.
func (a *authService) Subscribe(fn Listener) func() {
	a.lmu.Lock()
	a.nextID++
	id := a.nextID
	a.listeners = append(a.listeners, listenerEntry{id: id, fn: fn})
	a.lmu.Unlock()

	authenticated, user := a.snapshot()
	fn(authenticated, user)

	return func() {
		a.lmu.Lock()
		defer a.lmu.Unlock()
		for i, l := range a.listeners {
			if l.id == id {
				a.listeners = append(a.listeners[:i:i], a.listeners[i+1:]...)
				return
			}
		}
	}
}

// notify calls every listener in registration order. Each listener gets its
// own copy of user.
func (a *authService) notify(authenticated bool, user *models.User) {
	a.lmu.Lock()
	ls := make([]listenerEntry, len(a.listeners))
	copy(ls, a.listeners)
	a.lmu.Unlock()

	for _, l := range ls {
		l.fn(authenticated, cloneUser(user))
	}
}

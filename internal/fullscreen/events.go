package fullscreen

import (
	"github.com/1broseidon/fullframe/internal/geometry"
	"github.com/1broseidon/fullframe/internal/platform"
)

// Event reports one fullscreen transition.
type Event struct {
	WindowID   platform.WindowID `json:"window_id"`
	WindowType string            `json:"window_type"`
	AtPosition geometry.Point    `json:"at_position"`
	Entered    bool              `json:"entered"`
}

type subscriber struct {
	id int
	fn func(Event)
}

// Subscribe registers fn for fullscreen events. Subscribers are called
// synchronously, in subscription order, after the transition that caused
// the event has released the manager lock. The returned function removes
// the subscription.
func (m *Manager) Subscribe(fn func(Event)) (unsubscribe func()) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.nextSubID++
	id := m.nextSubID
	m.subs = append(m.subs, subscriber{id: id, fn: fn})

	return func() {
		m.mu.Lock()
		defer m.mu.Unlock()
		for i, s := range m.subs {
			if s.id == id {
				m.subs = append(m.subs[:i:i], m.subs[i+1:]...)
				return
			}
		}
	}
}

func (m *Manager) emit(ev Event) {
	m.pending = append(m.pending, ev)
}

// withLock runs fn under the manager lock, then delivers the events fn
// produced to the subscribers registered at that moment.
func (m *Manager) withLock(fn func()) {
	events, subs := func() ([]Event, []subscriber) {
		m.mu.Lock()
		defer m.mu.Unlock()
		fn()
		events := m.pending
		m.pending = nil
		return events, append([]subscriber(nil), m.subs...)
	}()

	for _, ev := range events {
		for _, s := range subs {
			s.fn(ev)
		}
	}
}

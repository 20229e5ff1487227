package store

import (
	"sync"

	"photo-grid/internal/logging"
	"photo-grid/internal/metrics"
)

// Store is the application state container used by the grid engine.
type Store interface {
	GetState() State
	Dispatch(action Action)
}

// Listener is notified with the new state after every effective dispatch.
type Listener func(State)

// Memory is an in-process Store. Dispatch is safe for concurrent use;
// listeners run on the dispatching goroutine, outside the store lock.
type Memory struct {
	mu        sync.RWMutex
	state     State
	listeners []listenerEntry
	nextID    int
}

type listenerEntry struct {
	id int
	fn Listener
}

// NewMemory creates a store holding initial.
func NewMemory(initial State) *Memory {
	if initial.SectionsByID == nil {
		initial.SectionsByID = NewState().SectionsByID
	}
	return &Memory{state: initial}
}

// GetState returns the current state snapshot.
func (m *Memory) GetState() State {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.state
}

// Dispatch reduces action into the current state and notifies listeners if
// the state changed.
func (m *Memory) Dispatch(action Action) {
	name := ActionName(action)

	m.mu.Lock()
	prev := m.state
	next := Reduce(prev, action)
	changed := next.Version != prev.Version
	m.state = next
	listeners := m.listeners
	m.mu.Unlock()

	metrics.StoreActionsTotal.WithLabelValues(name).Inc()
	if !changed {
		logging.Debug("store: %s had no effect", name)
		return
	}
	logging.Debug("store: %s -> version %d", name, next.Version)

	for _, e := range listeners {
		e.fn(next)
	}
}

// Subscribe registers a listener and returns a function removing it.
func (m *Memory) Subscribe(l Listener) func() {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.nextID++
	id := m.nextID
	m.listeners = append(m.listeners, listenerEntry{id: id, fn: l})

	return func() {
		m.mu.Lock()
		defer m.mu.Unlock()
		// Copy so that a dispatch iterating the old slice is not affected.
		listeners := make([]listenerEntry, 0, len(m.listeners))
		for _, e := range m.listeners {
			if e.id != id {
				listeners = append(listeners, e)
			}
		}
		m.listeners = listeners
	}
}

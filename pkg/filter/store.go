package filter

import (
	"fmt"
	"sync"
)

// Listener is called after every state change with the previous and new value.
type Listener func(prev, next State)

// Store owns the filter State for a browsing session.
type Store struct {
	mu        sync.Mutex
	state     State
	nextID    int
	listeners []listenerEntry
}

type listenerEntry struct {
	id int
	fn Listener
}

// NewStore creates a store holding Default().
func NewStore() *Store {
	return &Store{state: Default()}
}

// State returns the current state value.
func (s *Store) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// SetFilters merges p into the current filters. The page cursor is untouched.
func (s *Store) SetFilters(p Patch) {
	s.update(p.apply)
}

// ResetFilters restores every filter field to its default and leaves the
// page cursor for the caller to reset.
func (s *Store) ResetFilters() {
	s.update(func(st State) State {
		next := defaultFilters()
		next.CurrentPage = st.CurrentPage
		return next
	})
}

// SetCurrentPage replaces the page cursor. No upper bound is applied.
func (s *Store) SetCurrentPage(page int) error {
	if page < 1 {
		return fmt.Errorf("set page %d: %w", page, ErrInvalidPage)
	}
	s.update(func(st State) State {
		st.CurrentPage = page
		return st
	})
	return nil
}

// Subscribe registers fn for change notifications and returns a function
// that removes it.
func (s *Store) Subscribe(fn Listener) (unsubscribe func()) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.nextID++
	id := s.nextID
	s.listeners = append(s.listeners, listenerEntry{id: id, fn: fn})

	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		for i, l := range s.listeners {
			if l.id == id {
				s.listeners = append(s.listeners[:i:i], s.listeners[i+1:]...)
				return
			}
		}
	}
}

func (s *Store) update(fn func(State) State) {
	s.mu.Lock()
	prev := s.state
	next := fn(prev)
	s.state = next
	listeners := make([]listenerEntry, len(s.listeners))
	copy(listeners, s.listeners)
	s.mu.Unlock()

	for _, l := range listeners {
		l.fn(prev, next)
	}
}

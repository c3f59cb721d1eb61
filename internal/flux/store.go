// Package flux holds state behind a reducer and fans every new state out to
// subscribers.
package flux

import (
	"sync"

	"github.com/oklog/ulid/v2"
)

// Reducer computes the next state. It must not mutate prev in place; slices
// and maps shared with prev are copied before being changed.
type Reducer[S any, A any] func(prev S, action A) S

type Store[S any, A any] struct {
	mu          sync.RWMutex
	state       S
	reduce      Reducer[S, A]
	subscribers map[string]chan S
}

func New[S any, A any](initial S, reduce Reducer[S, A]) *Store[S, A] {
	return &Store[S, A]{
		state:       initial,
		reduce:      reduce,
		subscribers: make(map[string]chan S),
	}
}

// Dispatch applies one reducer step and publishes the resulting state.
func (s *Store[S, A]) Dispatch(action A) S {
	s.mu.Lock()
	next := s.reduce(s.state, action)
	s.state = next
	for _, ch := range s.subscribers {
		select {
		case ch <- next:
		default:
			// subscriber is behind; it will see a later state
		}
	}
	s.mu.Unlock()
	return next
}

func (s *Store[S, A]) State() S {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state
}

// Subscribe registers a subscriber with a buffer of bufSize states. A full
// buffer drops the notification, so subscribers should re-read State when
// they need the latest value.
func (s *Store[S, A]) Subscribe(bufSize int) (string, <-chan S) {
	id := ulid.Make().String()
	ch := make(chan S, bufSize)
	s.mu.Lock()
	s.subscribers[id] = ch
	s.mu.Unlock()
	return id, ch
}

func (s *Store[S, A]) Unsubscribe(id string) {
	s.mu.Lock()
	if ch, ok := s.subscribers[id]; ok {
		close(ch)
		delete(s.subscribers, id)
	}
	s.mu.Unlock()
}

package session

import (
	"sync"
	"time"
)

type EventType string

const (
	SignedIn  EventType = "signed_in"
	SignedOut EventType = "signed_out"
)

type Event struct {
	Type   EventType
	UserID string
	At     time.Time
}

// Store is the explicit session-change notifier. Components that hold
// per-user state subscribe to it instead of reading a process-wide global.
type Store struct {
	mu     sync.RWMutex
	nextID int
	subs   map[int]func(Event)
}

func NewStore() *Store {
	return &Store{subs: make(map[int]func(Event))}
}

// Subscribe registers fn and returns a func that removes it.
func (s *Store) Subscribe(fn func(Event)) func() {
	s.mu.Lock()
	id := s.nextID
	s.nextID++
	s.subs[id] = fn
	s.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			s.mu.Lock()
			delete(s.subs, id)
			s.mu.Unlock()
		})
	}
}

// Publish delivers ev to every subscriber synchronously.
func (s *Store) Publish(ev Event) {
	s.mu.RLock()
	fns := make([]func(Event), 0, len(s.subs))
	for _, fn := range s.subs {
		fns = append(fns, fn)
	}
	s.mu.RUnlock()

	for _, fn := range fns {
		fn(ev)
	}
}

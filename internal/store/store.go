// Package store owns the canonical in-memory catalog sequence and fans out
// every replacement to its subscribers.
package store

import (
	"sync"

	"github.com/msomdec/photolog/internal/domain"
)

// Subscriber receives the full new snapshot after every replacement.
// Callbacks run synchronously on the mutating goroutine, in subscription
// order.
type Subscriber func(entries []domain.CatalogEntry)

// Store holds the ordered catalog sequence. The sequence is only ever
// swapped wholesale via Replace, never mutated in place; higher-level
// operations are expressed as "compute a new sequence, then replace".
type Store struct {
	mu      sync.Mutex
	entries []domain.CatalogEntry
	subs    []subscription
	nextID  int
}

type subscription struct {
	id int
	fn Subscriber
}

// New creates an empty Store.
func New() *Store {
	return &Store{}
}

// Current returns a copy of the live snapshot. The entry slice is fresh on
// every call; callers may retain it across later replacements.
func (s *Store) Current() []domain.CatalogEntry {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]domain.CatalogEntry(nil), s.entries...)
}

// Len returns the number of entries in the current snapshot.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}

// Replace swaps the sequence and synchronously notifies every subscriber
// with the new snapshot, in subscription order. Each subscriber receives
// its own copy of the slice.
func (s *Store) Replace(entries []domain.CatalogEntry) {
	s.mu.Lock()
	s.entries = append([]domain.CatalogEntry(nil), entries...)
	subs := append([]subscription(nil), s.subs...)
	snapshot := s.entries
	s.mu.Unlock()

	for _, sub := range subs {
		sub.fn(append([]domain.CatalogEntry(nil), snapshot...))
	}
}

// Subscribe registers fn for future replacements and returns a function
// that removes the subscription. Subscribers do not receive the current
// snapshot on registration; callers needing it must read Current first.
func (s *Store) Subscribe(fn Subscriber) (unsubscribe func()) {
	s.mu.Lock()
	id := s.nextID
	s.nextID++
	s.subs = append(s.subs, subscription{id: id, fn: fn})
	s.mu.Unlock()

	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		for i, sub := range s.subs {
			if sub.id == id {
				s.subs = append(s.subs[:i], s.subs[i+1:]...)
				return
			}
		}
	}
}

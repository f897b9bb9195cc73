// Package upstream holds the process-wide upstream base URL that every proxied
// call is built from.
package upstream

import (
	"errors"
	"sync"
)

// DefaultBaseURL is the base URL used until settings are loaded.
const DefaultBaseURL = "http://localhost:8080"

// ErrLockPoisoned is returned by every Store operation after a panic escaped
// a critical section. Only calls touching the store fail; the process continues.
var ErrLockPoisoned = errors.New("upstream base URL lock poisoned")

// Store is the single authoritative base URL cell.
// The guard is held only for the read or write itself, never across I/O.
type Store struct {
	mu       sync.Mutex
	baseURL  string
	poisoned bool
}

// NewStore creates a Store holding the given base URL.
// An empty value falls back to DefaultBaseURL.
func NewStore(baseURL string) *Store {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}

	return &Store{baseURL: baseURL}
}

// Get returns the current base URL.
func (s *Store) Get() (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.poisoned {
		return "", ErrLockPoisoned
	}

	return s.baseURL, nil
}

// Set replaces the base URL. Concurrent writers race with last-write-wins.
func (s *Store) Set(baseURL string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.poisoned {
		return ErrLockPoisoned
	}

	s.baseURL = baseURL
	return nil
}

// Update replaces the base URL with fn(current) under the guard.
// If fn panics the store is poisoned and the panic is re-raised to the caller.
func (s *Store) Update(fn func(current string) string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.poisoned {
		return ErrLockPoisoned
	}

	defer func() {
		if r := recover(); r != nil {
			s.poisoned = true
			panic(r)
		}
	}()

	s.baseURL = fn(s.baseURL)
	return nil
}

// Poisoned reports whether a prior critical section panicked.
func (s *Store) Poisoned() bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.poisoned
}

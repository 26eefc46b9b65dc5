package testutil

import (
	"context"
	"sync"

	ierr "github.com/yadgarautos/jobfiles/internal/errors"
)

// InMemoryCounterStore implements sequence.Repository. The mutex stands in
// for the atomic increment of a real backend.
type InMemoryCounterStore struct {
	mu         sync.Mutex
	counters   map[string]int64
	failures   int
	failure    error
	reads      int
	increments int
}

func NewInMemoryCounterStore() *InMemoryCounterStore {
	return &InMemoryCounterStore{
		counters: make(map[string]int64),
	}
}

// FailNext makes the next n calls return a store unavailable error
func (s *InMemoryCounterStore) FailNext(n int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failures = n
	s.failure = ierr.NewError("counter store offline").
		WithHint("The counter store is unavailable").
		Mark(ierr.ErrStoreUnavailable)
}

func (s *InMemoryCounterStore) fail() error {
	if s.failures > 0 {
		s.failures--
		return s.failure
	}
	return nil
}

func (s *InMemoryCounterStore) Read(_ context.Context, name string) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.reads++
	if err := s.fail(); err != nil {
		return 0, err
	}

	current, ok := s.counters[name]
	if !ok {
		return 0, ierr.NewErrorf("counter %s not found", name).
			WithHintf("Counter %s not found", name).
			Mark(ierr.ErrNotFound)
	}
	return current, nil
}

func (s *InMemoryCounterStore) Init(_ context.Context, name string, value int64) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.fail(); err != nil {
		return false, err
	}

	if _, ok := s.counters[name]; ok {
		return false, nil
	}
	s.counters[name] = value
	return true, nil
}

func (s *InMemoryCounterStore) Increment(_ context.Context, name string, delta int64) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.increments++
	if err := s.fail(); err != nil {
		return 0, err
	}

	s.counters[name] += delta
	return s.counters[name], nil
}

// Exists reports whether the counter record was ever created
func (s *InMemoryCounterStore) Exists(name string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.counters[name]
	return ok
}

// Reads is the number of Read calls, failed ones included
func (s *InMemoryCounterStore) Reads() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.reads
}

// Increments is the number of Increment calls, failed ones included
func (s *InMemoryCounterStore) Increments() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.increments
}

func (s *InMemoryCounterStore) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.counters = make(map[string]int64)
	s.failures = 0
	s.reads = 0
	s.increments = 0
}

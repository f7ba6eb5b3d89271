package memorystore

import "sync"

// Store publishes the current Snapshot to concurrent readers.
// Writers replace the whole reference, so readers holding an older snapshot
// keep a consistent view until they are done with it.
type Store struct {
	mu      sync.RWMutex
	current *Snapshot
}

func NewStore() *Store {
	return &Store{current: &Snapshot{}}
}

// Publish atomically swaps in a new snapshot and returns the previous one.
func (s *Store) Publish(snap *Snapshot) *Snapshot {
	if snap == nil {
		snap = &Snapshot{}
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	prev := s.current
	s.current = snap
	return prev
}

// Current returns the latest published snapshot. It is never nil.
func (s *Store) Current() *Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current
}

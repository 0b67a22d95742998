// Package samples implements the append-only store of RTT samples shared by
// the receiver loop (single writer) and the statistics readers.
package samples

import "sync"

// Store is an append-only sequence of RTT samples in milliseconds, in
// arrival order. It is safe for concurrent use.
type Store struct {
	mu     sync.RWMutex
	data   []float64
	sealed bool
}

// New returns an empty Store.
func New() *Store {
	return &Store{
		data: make([]float64, 0, 64),
	}
}

// Append adds a sample. It returns false if the store has been sealed, in
// which case the sample is dropped.
func (s *Store) Append(rtt float64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.sealed {
		return false
	}
	s.data = append(s.data, rtt)
	return true
}

// Seal stops the store from accepting samples. Calling it more than once
// is harmless.
func (s *Store) Seal() {
	s.mu.Lock()
	s.sealed = true
	s.mu.Unlock()
}

// Sealed reports whether Seal has been called.
func (s *Store) Sealed() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.sealed
}

// Len returns the number of samples.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.data)
}

// Snapshot returns a copy of the current samples.
func (s *Store) Snapshot() []float64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]float64, len(s.data))
	copy(out, s.data)
	return out
}

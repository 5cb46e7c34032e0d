package httpclient

import "sync"

// Sequencer serializes overlapping lookups so that only the result of the
// most recently issued request is applied. Responses arriving for an older
// request are dropped, never applied over a newer one.
type Sequencer struct {
	mu      sync.Mutex
	issued  uint64
	applied uint64
}

// Next stamps a new request and returns its sequence number
func (s *Sequencer) Next() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.issued++
	return s.issued
}

// Apply runs fn only if seq belongs to the latest issued request and no
// newer result has been applied. It reports whether fn ran.
func (s *Sequencer) Apply(seq uint64, fn func()) bool {
	s.mu.Lock()
	if seq != s.issued || seq <= s.applied {
		s.mu.Unlock()
		return false
	}
	s.applied = seq
	s.mu.Unlock()

	fn()
	return true
}

// Latest reports whether seq is still the most recently issued request
func (s *Sequencer) Latest(seq uint64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return seq == s.issued
}

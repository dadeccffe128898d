package activity

import (
	"net/netip"
	"sync"
)

// DefaultWindow is the number of records kept in the recent window.
const DefaultWindow = 100

// Store is an append-only, time-ordered log of records with a bounded
// window over the most recent ones.
//
// Append is meant to be called from a single goroutine. Readers may run
// concurrently and always get a copy of a consistent state.
type Store struct {
	mu sync.RWMutex

	log []Record

	// window is a ring buffer; head is where the next write goes.
	window []Record
	head   int
	size   int
}

// NewStore creates a store whose recent window holds n records.
// A non-positive n selects DefaultWindow.
func NewStore(n int) *Store {
	if n <= 0 {
		n = DefaultWindow
	}

	return &Store{
		window: make([]Record, n),
	}
}

// Append adds r to the log and to the window, evicting the oldest window
// entry once the window is full.
func (s *Store) Append(r Record) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.log = append(s.log, r)

	s.window[s.head] = r
	s.head = (s.head + 1) % len(s.window)
	if s.size < len(s.window) {
		s.size++
	}
}

// Recent returns the last n records of the window, oldest first and most
// recent last. n is clamped to the window size.
func (s *Store) Recent(n int) []Record {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.recentLocked(n)
}

func (s *Store) recentLocked(n int) []Record {
	n = min(max(n, 0), s.size)
	if n == 0 {
		return nil
	}

	out := make([]Record, n)
	start := s.head - n
	if start < 0 {
		start += len(s.window)
	}

	for i := range n {
		out[i] = s.window[(start+i)%len(s.window)]
	}

	return out
}

// ByDevice returns the window records whose source or destination is addr,
// oldest first.
func (s *Store) ByDevice(addr netip.Addr) []Record {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []Record
	for _, r := range s.recentLocked(s.size) {
		if r.Touches(addr) {
			out = append(out, r)
		}
	}

	return out
}

// All returns a copy of the full log.
func (s *Store) All() []Record {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return append([]Record(nil), s.log...)
}

// Len returns the number of records ever appended.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return len(s.log)
}

// WindowSize returns the capacity of the recent window.
func (s *Store) WindowSize() int {
	return len(s.window)
}

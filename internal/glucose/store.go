package glucose

import "sync"

// DefaultCapacity keeps three hours of 5-minute readings.
const DefaultCapacity = 36

// Store is a bounded, append-only reading history, oldest first.
//
// It is safe for concurrent use: the collector appends while the display loop takes snapshots.
type Store struct {
	mu      sync.Mutex
	buf     []Reading
	start   int
	n       int
	version uint64
}

func NewStore(capacity int) *Store {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	return &Store{buf: make([]Reading, capacity)}
}

// Append adds r at the tail, evicting the oldest reading when full.
// Readings older than the current tail are dropped so epochs stay non-decreasing.
func (s *Store) Append(r Reading) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.n > 0 && r.Epoch < s.buf[s.index(s.n-1)].Epoch {
		return false
	}
	if s.n < len(s.buf) {
		s.buf[s.index(s.n)] = r
		s.n++
	} else {
		s.buf[s.start] = r
		s.start = (s.start + 1) % len(s.buf)
	}
	s.version++
	return true
}

// Snapshot returns a copy of the history, oldest first.
func (s *Store) Snapshot() []Reading {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]Reading, s.n)
	for i := 0; i < s.n; i++ {
		out[i] = s.buf[s.index(i)]
	}
	return out
}

func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.n
}

// Version increases on every successful Append.
func (s *Store) Version() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.version
}

func (s *Store) index(i int) int { return (s.start + i) % len(s.buf) }

package history

import (
	"sync"

	"github.com/netpulse/netpulse/internal/domain"
)

// Store keeps a bounded ring of recent probe results per target.
// Appends are O(1); the oldest entry is evicted when a window is full.
type Store struct {
	mu       sync.RWMutex
	capacity int
	windows  map[domain.TargetID]*ring
}

func New(capacity int) *Store {
	if capacity < 1 {
		capacity = 1
	}
	return &Store{
		capacity: capacity,
		windows:  make(map[domain.TargetID]*ring),
	}
}

func (s *Store) Append(r domain.ProbeResult) {
	s.mu.Lock()
	defer s.mu.Unlock()
	w, ok := s.windows[r.TargetID]
	if !ok {
		w = newRing(s.capacity)
		s.windows[r.TargetID] = w
	}
	w.push(r)
}

// Query returns up to limit results for the target, most recent first.
// An unknown target yields an empty slice; limit <= 0 means "all".
func (s *Store) Query(id domain.TargetID, limit int) []domain.ProbeResult {
	s.mu.RLock()
	defer s.mu.RUnlock()
	w, ok := s.windows[id]
	if !ok {
		return nil
	}
	return w.newestFirst(limit)
}

// Len reports how many results are currently retained for the target.
func (s *Store) Len(id domain.TargetID) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if w, ok := s.windows[id]; ok {
		return w.n
	}
	return 0
}

// Drop discards the target's whole window.
func (s *Store) Drop(id domain.TargetID) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.windows, id)
}

type ring struct {
	buf  []domain.ProbeResult
	next int // index the next push writes to
	n    int // filled entries, <= len(buf)
}

func newRing(capacity int) *ring {
	return &ring{buf: make([]domain.ProbeResult, capacity)}
}

func (r *ring) push(v domain.ProbeResult) {
	r.buf[r.next] = v
	r.next = (r.next + 1) % len(r.buf)
	if r.n < len(r.buf) {
		r.n++
	}
}

func (r *ring) newestFirst(limit int) []domain.ProbeResult {
	if limit <= 0 || limit > r.n {
		limit = r.n
	}
	out := make([]domain.ProbeResult, 0, limit)
	for i := 1; i <= limit; i++ {
		idx := (r.next - i + len(r.buf)) % len(r.buf)
		out = append(out, r.buf[idx])
	}
	return out
}

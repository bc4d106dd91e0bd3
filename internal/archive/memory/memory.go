package memory

import (
	"context"
	"sync"

	"github.com/netpulse/netpulse/internal/archive"
	"github.com/netpulse/netpulse/internal/domain"
)

// Store keeps appended results in memory. Mostly a test double, but
// also handy for single-process deployments without a database.
type Store struct {
	mu      sync.RWMutex
	results []domain.ProbeResult
}

func New() *Store {
	return &Store{results: make([]domain.ProbeResult, 0, 128)}
}

func (m *Store) Append(_ context.Context, r domain.ProbeResult) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.results = append(m.results, r)
	return nil
}

func (m *Store) Close() error { return nil }

// All returns a copy of everything appended so far, oldest first.
func (m *Store) All() []domain.ProbeResult {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]domain.ProbeResult, len(m.results))
	copy(out, m.results)
	return out
}

var _ archive.Writer = (*Store)(nil)

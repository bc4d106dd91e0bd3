package archive

import (
	"context"

	"github.com/netpulse/netpulse/internal/domain"
)

// Writer is the durable sink for applied probe results. The in-memory
// history ring serves queries; the archive only accumulates. Swap in
// any DB adapter.
type Writer interface {
	Append(ctx context.Context, r domain.ProbeResult) error
	Close() error
}

// Nop discards everything; used when no DATABASE_URL is configured.
type Nop struct{}

func (Nop) Append(context.Context, domain.ProbeResult) error { return nil }
func (Nop) Close() error                                     { return nil }

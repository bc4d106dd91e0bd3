package probe

import (
	"context"
	"errors"
	"net"
	"time"

	"github.com/netpulse/netpulse/internal/domain"
)

// Prober performs one health check against one target. It never returns
// an error: every failure category is expressed in the result's Outcome.
type Prober interface {
	Probe(ctx context.Context, t domain.Target) domain.ProbeResult
}

// Dispatcher routes a target to the prober registered for its protocol.
type Dispatcher struct {
	probers map[domain.Protocol]Prober
}

func NewDispatcher() *Dispatcher {
	return &Dispatcher{
		probers: map[domain.Protocol]Prober{
			domain.ProtocolHTTP: NewHTTPProber(),
			domain.ProtocolTCP:  &TCPProber{},
			domain.ProtocolICMP: &ICMPProber{},
		},
	}
}

func (d *Dispatcher) Probe(ctx context.Context, t domain.Target) domain.ProbeResult {
	p, ok := d.probers[t.Protocol]
	if !ok {
		return domain.ProbeResult{
			TargetID:  t.ID,
			Outcome:   domain.OutcomeError,
			Message:   "unsupported protocol: " + string(t.Protocol),
			CheckedAt: time.Now().UTC(),
		}
	}
	return p.Probe(ctx, t)
}

// classifyNetErr maps a transport error to the timeout/error split the
// aggregator cares about. Timeouts are a distinct outcome so a slow
// endpoint is never conflated with an unreachable one.
func classifyNetErr(err error) (domain.Outcome, string) {
	if errors.Is(err, context.DeadlineExceeded) {
		return domain.OutcomeTimeout, "deadline exceeded"
	}
	var nerr net.Error
	if errors.As(err, &nerr) && nerr.Timeout() {
		return domain.OutcomeTimeout, err.Error()
	}
	return domain.OutcomeError, err.Error()
}

func latencyMS(start time.Time) float64 {
	return float64(time.Since(start)) / float64(time.Millisecond)
}

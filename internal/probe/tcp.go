package probe

import (
	"context"
	"net"
	"time"

	"github.com/netpulse/netpulse/internal/domain"
)

// TCPProber considers a target healthy when a TCP connection to
// host:port can be opened within the deadline.
type TCPProber struct {
	Dialer net.Dialer
}

func (p *TCPProber) Probe(ctx context.Context, t domain.Target) domain.ProbeResult {
	start := time.Now()
	res := domain.ProbeResult{TargetID: t.ID, CheckedAt: start.UTC()}

	conn, err := p.Dialer.DialContext(ctx, "tcp", t.Address())
	res.LatencyMS = latencyMS(start)
	if err != nil {
		res.Outcome, res.Message = classifyNetErr(err)
		return res
	}
	_ = conn.Close()

	res.Outcome = domain.OutcomeSuccess
	res.Message = "connected"
	return res
}

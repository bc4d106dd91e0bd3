package probe

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/netpulse/netpulse/internal/domain"
)

// HTTPProber checks a target by issuing a GET and inspecting the status
// code. 2xx/3xx is healthy; anything else the endpoint answered with is
// a protocol-level failure, distinct from transport errors.
type HTTPProber struct {
	Client *http.Client
}

func NewHTTPProber() *HTTPProber {
	return &HTTPProber{
		// Per-probe deadlines come from the context; the client itself
		// carries no timeout so the target's setting always wins.
		Client: &http.Client{},
	}
}

func (h *HTTPProber) Probe(ctx context.Context, t domain.Target) domain.ProbeResult {
	start := time.Now()
	res := domain.ProbeResult{TargetID: t.ID, CheckedAt: start.UTC()}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, t.Address(), nil)
	if err != nil {
		res.Outcome = domain.OutcomeError
		res.Message = err.Error()
		return res
	}

	resp, err := h.Client.Do(req)
	res.LatencyMS = latencyMS(start)
	if err != nil {
		res.Outcome, res.Message = classifyNetErr(err)
		return res
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 200 && resp.StatusCode < 400 {
		res.Outcome = domain.OutcomeSuccess
		res.Message = resp.Status
		return res
	}
	res.Outcome = domain.OutcomeFailure
	res.Message = fmt.Sprintf("unhealthy status %s", resp.Status)
	return res
}

package notify

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/netpulse/netpulse/internal/domain"
)

type AlerterConfig struct {
	AlertOnRecovery bool
	Cooldown        time.Duration
}

// Alerter turns status transitions into notifications. DOWN alerts are
// rate-limited per target by the cooldown; recovery alerts bypass it.
type Alerter struct {
	notifier Notifier
	cfg      AlerterConfig

	mu   sync.Mutex
	sent map[domain.TargetID]time.Time // last DOWN alert per target
}

func NewAlerter(n Notifier, cfg AlerterConfig) *Alerter {
	return &Alerter{
		notifier: n,
		cfg:      cfg,
		sent:     make(map[domain.TargetID]time.Time),
	}
}

// Observe is called by the engine on every status transition.
func (a *Alerter) Observe(ctx context.Context, t domain.Target, prev domain.Status, st domain.HealthState, r domain.ProbeResult) {
	if a == nil || a.notifier == nil {
		return
	}

	switch {
	case st.Status == domain.StatusDown:
		a.mu.Lock()
		last, seen := a.sent[t.ID]
		cooled := !seen || time.Since(last) >= a.cfg.Cooldown
		if cooled {
			a.sent[t.ID] = time.Now()
		}
		a.mu.Unlock()
		if !cooled {
			return
		}
		_ = a.notifier.Send(ctx, "🔴 Target DOWN", a.describe(t, r))

	case prev == domain.StatusDown && (st.Status == domain.StatusUp || st.Status == domain.StatusDegraded):
		if !a.cfg.AlertOnRecovery {
			return
		}
		_ = a.notifier.Send(ctx, "🟢 Target RECOVERED", a.describe(t, r))
	}
}

// Forget clears cooldown tracking for a removed target.
func (a *Alerter) Forget(id domain.TargetID) {
	if a == nil {
		return
	}
	a.mu.Lock()
	delete(a.sent, id)
	a.mu.Unlock()
}

func (a *Alerter) describe(t domain.Target, r domain.ProbeResult) string {
	latencyTxt := "n/a"
	if r.LatencyMS > 0 {
		latencyTxt = fmt.Sprintf("%.0f ms", r.LatencyMS)
	}
	return fmt.Sprintf(
		"Target: %s (%s)\nOutcome: %s\nLatency: %s\nMessage: %s\nChecked: %s",
		t.Address(), t.Protocol, r.Outcome, latencyTxt, r.Message, r.CheckedAt.Format(time.RFC3339),
	)
}

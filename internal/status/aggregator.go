package status

import (
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/netpulse/netpulse/internal/domain"
)

// Aggregator folds probe results into per-target health states. It is
// the only writer of HealthState. Hysteresis: a run of
// success-threshold consecutive successes is required to reach UP, a
// run of failure-threshold non-successes to reach DOWN, so single blips
// never flip the state.
type Aggregator struct {
	logger *zap.Logger
	mu     sync.RWMutex
	states map[domain.TargetID]*domain.HealthState
}

func New(logger *zap.Logger) *Aggregator {
	return &Aggregator{
		logger: logger,
		states: make(map[domain.TargetID]*domain.HealthState),
	}
}

// Apply folds one result into the target's state and reports whether a
// transition happened. Results for one target must arrive in order; the
// scheduler guarantees that by probing each target from a single loop.
func (a *Aggregator) Apply(t domain.Target, r domain.ProbeResult) (domain.HealthState, bool) {
	a.mu.Lock()
	defer a.mu.Unlock()

	st, ok := a.states[t.ID]
	if !ok {
		st = &domain.HealthState{TargetID: t.ID, Status: domain.StatusUnknown}
		a.states[t.ID] = st
	}

	prev := st.Status
	if r.Outcome == domain.OutcomeSuccess {
		st.ConsecutiveSuccesses++
		st.ConsecutiveFailures = 0
		a.applySuccess(t, st, r)
	} else {
		st.ConsecutiveFailures++
		st.ConsecutiveSuccesses = 0
		if st.Status != domain.StatusDown && st.ConsecutiveFailures >= t.FailureThreshold {
			st.Status = domain.StatusDown
		}
	}

	transitioned := st.Status != prev
	if transitioned {
		st.LastTransition = r.CheckedAt
		a.logger.Info("status_transition",
			zap.String("target_id", string(t.ID)),
			zap.String("from", string(prev)),
			zap.String("to", string(st.Status)),
			zap.String("outcome", string(r.Outcome)),
			zap.Float64("latency_ms", r.LatencyMS),
		)
	}
	return *st, transitioned
}

func (a *Aggregator) applySuccess(t domain.Target, st *domain.HealthState, r domain.ProbeResult) {
	slow := t.DegradedLatency > 0 && r.LatencyMS > float64(t.DegradedLatency)/float64(time.Millisecond)

	switch st.Status {
	case domain.StatusUp:
		if slow {
			st.Status = domain.StatusDegraded
		}
	case domain.StatusDegraded:
		if !slow {
			st.Status = domain.StatusUp
		}
	default: // unknown or down: needs the full success run
		if st.ConsecutiveSuccesses >= t.SuccessThreshold {
			if slow {
				st.Status = domain.StatusDegraded
			} else {
				st.Status = domain.StatusUp
			}
		}
	}
}

// Get returns a copy of the target's state. Targets that have not
// completed a probe yet report StatusUnknown.
func (a *Aggregator) Get(id domain.TargetID) domain.HealthState {
	a.mu.RLock()
	defer a.mu.RUnlock()
	if st, ok := a.states[id]; ok {
		return *st
	}
	return domain.HealthState{TargetID: id, Status: domain.StatusUnknown}
}

// Drop discards the target's state.
func (a *Aggregator) Drop(id domain.TargetID) {
	a.mu.Lock()
	defer a.mu.Unlock()
	delete(a.states, id)
}

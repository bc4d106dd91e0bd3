package engine

import (
	"context"
	"sync"

	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/netpulse/netpulse/internal/archive"
	"github.com/netpulse/netpulse/internal/domain"
	"github.com/netpulse/netpulse/internal/history"
	"github.com/netpulse/netpulse/internal/notify"
	"github.com/netpulse/netpulse/internal/probe"
	"github.com/netpulse/netpulse/internal/registry"
	"github.com/netpulse/netpulse/internal/scheduler"
	"github.com/netpulse/netpulse/internal/status"
)

type Config struct {
	Workers         int
	JitterFrac      float64
	HistoryCapacity int
	Archive         archive.Writer  // nil means discard
	Alerter         *notify.Alerter // nil means no alerts
}

// Engine owns the registry, scheduler, aggregator, history and archive
// behind one explicit lifecycle. Everything is constructed here; there
// are no package-level singletons.
type Engine struct {
	logger   *zap.Logger
	registry *registry.Registry
	sched    *scheduler.Scheduler
	health   *status.Aggregator
	hist     *history.Store
	arch     archive.Writer
	alerter  *notify.Alerter

	// guards target removal against a racing result application, so a
	// removed target's state can never be resurrected by a late probe
	mu sync.RWMutex
}

func New(logger *zap.Logger, prober probe.Prober, cfg Config) *Engine {
	if cfg.HistoryCapacity < 1 {
		cfg.HistoryCapacity = 100
	}
	if cfg.Archive == nil {
		cfg.Archive = archive.Nop{}
	}
	e := &Engine{
		logger:   logger,
		registry: registry.New(),
		health:   status.New(logger),
		hist:     history.New(cfg.HistoryCapacity),
		arch:     cfg.Archive,
		alerter:  cfg.Alerter,
	}
	e.sched = scheduler.New(logger, prober, e, scheduler.Config{
		Workers:    cfg.Workers,
		JitterFrac: cfg.JitterFrac,
	})
	return e
}

// Start launches the probe scheduler.
func (e *Engine) Start() {
	e.sched.Start()
	e.logger.Info("engine_started")
}

// Shutdown stops scheduling, drains in-flight probes and closes the
// archive. Safe to call more than once.
func (e *Engine) Shutdown(ctx context.Context) error {
	err := multierr.Append(
		e.sched.Shutdown(ctx),
		e.arch.Close(),
	)
	e.logger.Info("engine_stopped", zap.Error(err))
	return err
}

func (e *Engine) AddTarget(spec domain.TargetSpec) (domain.Target, error) {
	t, err := e.registry.Add(spec)
	if err != nil {
		return domain.Target{}, err
	}
	e.sched.Track(t)
	e.logger.Info("target_added",
		zap.String("target_id", string(t.ID)),
		zap.String("address", t.Address()),
		zap.String("protocol", string(t.Protocol)),
		zap.Duration("interval", t.Interval),
	)
	return t, nil
}

// RemoveTarget cancels the target's schedule and drops its health state
// and history. Concurrent status/history queries either see the target
// fully alive or not at all.
func (e *Engine) RemoveTarget(id domain.TargetID) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if err := e.registry.Remove(id); err != nil {
		return err
	}
	e.sched.Untrack(id)
	e.health.Drop(id)
	e.hist.Drop(id)
	e.alerter.Forget(id)
	e.logger.Info("target_removed", zap.String("target_id", string(id)))
	return nil
}

func (e *Engine) UpdateTarget(id domain.TargetID, patch domain.TargetPatch) (domain.Target, error) {
	t, err := e.registry.Update(id, patch)
	if err != nil {
		return domain.Target{}, err
	}
	e.sched.Reschedule(t)
	e.logger.Info("target_updated",
		zap.String("target_id", string(t.ID)),
		zap.Duration("interval", t.Interval),
	)
	return t, nil
}

func (e *Engine) Target(id domain.TargetID) (domain.Target, error) {
	return e.registry.Get(id)
}

func (e *Engine) Targets() []domain.Target {
	return e.registry.List()
}

// Status reports the target's current health. Before the first probe
// completes the status is unknown.
func (e *Engine) Status(id domain.TargetID) (domain.HealthState, error) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	if _, err := e.registry.Get(id); err != nil {
		return domain.HealthState{}, err
	}
	return e.health.Get(id), nil
}

// History returns up to limit recent results, most recent first.
func (e *Engine) History(id domain.TargetID, limit int) ([]domain.ProbeResult, error) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	if _, err := e.registry.Get(id); err != nil {
		return nil, err
	}
	return e.hist.Query(id, limit), nil
}

// Apply implements scheduler.ResultSink. Results for a target arrive in
// probe order; late results for removed targets are discarded.
func (e *Engine) Apply(ctx context.Context, t domain.Target, r domain.ProbeResult) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	if _, err := e.registry.Get(t.ID); err != nil {
		return
	}

	prev := e.health.Get(t.ID).Status
	st, transitioned := e.health.Apply(t, r)
	e.hist.Append(r)

	if err := e.arch.Append(ctx, r); err != nil {
		e.logger.Warn("archive_append_error",
			zap.String("target_id", string(t.ID)),
			zap.Error(err),
		)
	}
	if transitioned {
		e.alerter.Observe(ctx, t, prev, st, r)
	}
}

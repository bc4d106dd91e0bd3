package scheduler

import (
	"context"
	"math/rand"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/netpulse/netpulse/internal/domain"
	"github.com/netpulse/netpulse/internal/probe"
)

// ResultSink receives applied probe results. Calls for one target are
// serialized because each target is probed from a single loop.
type ResultSink interface {
	Apply(ctx context.Context, t domain.Target, r domain.ProbeResult)
}

type Config struct {
	Workers    int     // max concurrently in-flight probes
	JitterFrac float64 // fraction of the interval added as random offset
}

// Scheduler runs one timer loop per tracked target. Due probes acquire
// a slot on a bounded worker pool; when the pool is saturated they
// queue rather than drop, trading delay for at-least-once-per-interval.
type Scheduler struct {
	logger *zap.Logger
	prober probe.Prober
	sink   ResultSink
	cfg    Config
	sem    chan struct{}

	mu      sync.Mutex
	running bool
	entries map[domain.TargetID]*entry
	pending []domain.Target
	wg      sync.WaitGroup
}

type entry struct {
	cancel context.CancelFunc
}

func New(logger *zap.Logger, p probe.Prober, sink ResultSink, cfg Config) *Scheduler {
	if cfg.Workers < 1 {
		cfg.Workers = 1
	}
	if cfg.JitterFrac < 0 {
		cfg.JitterFrac = 0
	}
	if cfg.JitterFrac > 1 {
		cfg.JitterFrac = 1
	}
	return &Scheduler{
		logger:  logger,
		prober:  p,
		sink:    sink,
		cfg:     cfg,
		sem:     make(chan struct{}, cfg.Workers),
		entries: make(map[domain.TargetID]*entry),
	}
}

// Start launches loops for every target tracked so far. Further Track
// calls start their loops immediately.
func (s *Scheduler) Start() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.running {
		return
	}
	s.running = true
	for _, t := range s.pending {
		s.launch(t)
	}
	s.pending = nil
}

// Track begins scheduling probes for the target.
func (s *Scheduler) Track(t domain.Target) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.running {
		s.pending = append(s.pending, t)
		return
	}
	if _, ok := s.entries[t.ID]; ok {
		return
	}
	s.launch(t)
}

// Untrack stops scheduling the target. An in-flight probe is allowed to
// finish; its result is discarded instead of applied.
func (s *Scheduler) Untrack(id domain.TargetID) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if e, ok := s.entries[id]; ok {
		e.cancel()
		delete(s.entries, id)
	}
	for i, t := range s.pending {
		if t.ID == id {
			s.pending = append(s.pending[:i], s.pending[i+1:]...)
			break
		}
	}
}

// Reschedule replaces the target's loop with one carrying the updated
// configuration; it takes effect on the next cycle.
func (s *Scheduler) Reschedule(t domain.Target) {
	s.Untrack(t.ID)
	s.Track(t)
}

// Shutdown cancels every loop and waits for in-flight probes to drain,
// bounded by ctx.
func (s *Scheduler) Shutdown(ctx context.Context) error {
	s.mu.Lock()
	for id, e := range s.entries {
		e.cancel()
		delete(s.entries, id)
	}
	s.running = false
	s.mu.Unlock()

	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
		s.logger.Info("scheduler_stopped")
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// launch assumes s.mu is held.
func (s *Scheduler) launch(t domain.Target) {
	ctx, cancel := context.WithCancel(context.Background())
	s.entries[t.ID] = &entry{cancel: cancel}
	s.wg.Add(1)
	go s.loop(ctx, t)
	s.logger.Debug("scheduler_target_tracked",
		zap.String("target_id", string(t.ID)),
		zap.Duration("interval", t.Interval),
	)
}

func (s *Scheduler) loop(ctx context.Context, t domain.Target) {
	defer s.wg.Done()
	for {
		timer := time.NewTimer(s.jittered(t.Interval))
		select {
		case <-ctx.Done():
			timer.Stop()
			return
		case <-timer.C:
		}

		// queue for a worker slot; a saturated pool delays, never drops
		select {
		case <-ctx.Done():
			return
		case s.sem <- struct{}{}:
		}

		// the probe context is deliberately independent of the loop
		// context: removal never aborts an in-flight probe
		pctx, cancel := context.WithTimeout(context.Background(), t.Timeout)
		r := s.prober.Probe(pctx, t)
		cancel()
		<-s.sem

		if ctx.Err() != nil {
			s.logger.Debug("scheduler_result_discarded",
				zap.String("target_id", string(t.ID)))
			return
		}

		s.sink.Apply(ctx, t, r)
		s.logger.Debug("scheduler_probe_done",
			zap.String("target_id", string(t.ID)),
			zap.String("outcome", string(r.Outcome)),
			zap.Float64("latency_ms", r.LatencyMS),
		)
	}
}

func (s *Scheduler) jittered(interval time.Duration) time.Duration {
	if s.cfg.JitterFrac == 0 {
		return interval
	}
	return interval + time.Duration(rand.Float64()*s.cfg.JitterFrac*float64(interval))
}

package scheduler

import (
	"context"
	"sync"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/netpulse/netpulse/internal/domain"
)

// --- fakes ---

type fakeProber struct {
	mu    sync.Mutex
	n     int
	delay time.Duration
}

func (f *fakeProber) Probe(ctx context.Context, t domain.Target) domain.ProbeResult {
	f.mu.Lock()
	f.n++
	f.mu.Unlock()
	if f.delay > 0 {
		select {
		case <-time.After(f.delay):
		case <-ctx.Done():
		}
	}
	return domain.ProbeResult{
		TargetID:  t.ID,
		Outcome:   domain.OutcomeSuccess,
		LatencyMS: 1,
		CheckedAt: time.Now().UTC(),
	}
}

func (f *fakeProber) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.n
}

type recordingSink struct {
	mu      sync.Mutex
	applied []domain.ProbeResult
}

func (s *recordingSink) Apply(_ context.Context, _ domain.Target, r domain.ProbeResult) {
	s.mu.Lock()
	s.applied = append(s.applied, r)
	s.mu.Unlock()
}

func (s *recordingSink) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.applied)
}

func target(id string, interval time.Duration) domain.Target {
	return domain.Target{
		ID:       domain.TargetID(id),
		Host:     "example.com",
		Protocol: domain.ProtocolHTTP,
		Interval: interval,
		Timeout:  time.Second,
	}
}

// --- tests ---

func TestScheduler_ProbeCountWithinIntervalBounds(t *testing.T) {
	p := &fakeProber{}
	sink := &recordingSink{}
	s := New(zap.NewNop(), p, sink, Config{Workers: 4, JitterFrac: 0.2})

	s.Track(target("T1", 50*time.Millisecond))
	s.Start()
	time.Sleep(500 * time.Millisecond)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := s.Shutdown(ctx); err != nil {
		t.Fatalf("Shutdown: %v", err)
	}

	// interval 50ms with <=20% jitter over 500ms: expect roughly 8-10
	// cycles, wide margins against slow CI
	got := p.count()
	if got < 4 || got > 12 {
		t.Fatalf("probe count %d outside expected bounds", got)
	}
	if sink.count() == 0 {
		t.Fatalf("expected results applied to the sink")
	}
}

func TestScheduler_UntrackDiscardsInFlightResult(t *testing.T) {
	p := &fakeProber{delay: 100 * time.Millisecond}
	sink := &recordingSink{}
	s := New(zap.NewNop(), p, sink, Config{Workers: 1})

	s.Start()
	s.Track(target("T1", 10*time.Millisecond))

	// wait until the probe is in flight, then untrack
	for i := 0; i < 100 && p.count() == 0; i++ {
		time.Sleep(5 * time.Millisecond)
	}
	if p.count() == 0 {
		t.Fatalf("probe never started")
	}
	s.Untrack("T1")

	// let the in-flight probe finish
	time.Sleep(200 * time.Millisecond)
	if got := sink.count(); got != 0 {
		t.Fatalf("result after untrack must be discarded, got %d applied", got)
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	_ = s.Shutdown(ctx)
}

func TestScheduler_SaturatedPoolQueuesNotDrops(t *testing.T) {
	p := &fakeProber{delay: 60 * time.Millisecond}
	sink := &recordingSink{}
	s := New(zap.NewNop(), p, sink, Config{Workers: 1})

	// three targets contending for one worker
	s.Track(target("A", 30*time.Millisecond))
	s.Track(target("B", 30*time.Millisecond))
	s.Track(target("C", 30*time.Millisecond))
	s.Start()

	time.Sleep(400 * time.Millisecond)
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := s.Shutdown(ctx); err != nil {
		t.Fatalf("Shutdown: %v", err)
	}

	// every target must have been probed despite the contention
	seen := map[domain.TargetID]bool{}
	sink.mu.Lock()
	for _, r := range sink.applied {
		seen[r.TargetID] = true
	}
	sink.mu.Unlock()
	for _, id := range []domain.TargetID{"A", "B", "C"} {
		if !seen[id] {
			t.Fatalf("target %s starved by saturated pool", id)
		}
	}
}

func TestScheduler_ShutdownDrains(t *testing.T) {
	p := &fakeProber{delay: 50 * time.Millisecond}
	sink := &recordingSink{}
	s := New(zap.NewNop(), p, sink, Config{Workers: 2})

	s.Start()
	s.Track(target("T1", 5*time.Millisecond))
	time.Sleep(30 * time.Millisecond)

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	if err := s.Shutdown(ctx); err != nil {
		t.Fatalf("Shutdown did not drain in time: %v", err)
	}

	// no more probes after shutdown returned
	n := p.count()
	time.Sleep(60 * time.Millisecond)
	if p.count() != n {
		t.Fatalf("probe ran after shutdown: %d -> %d", n, p.count())
	}
}

func TestScheduler_RescheduleAppliesNewInterval(t *testing.T) {
	p := &fakeProber{}
	sink := &recordingSink{}
	s := New(zap.NewNop(), p, sink, Config{Workers: 2})

	tgt := target("T1", time.Hour) // effectively never fires
	s.Track(tgt)
	s.Start()

	tgt.Interval = 20 * time.Millisecond
	s.Reschedule(tgt)

	deadline := time.After(2 * time.Second)
	for p.count() == 0 {
		select {
		case <-deadline:
			t.Fatalf("rescheduled target never probed")
		case <-time.After(10 * time.Millisecond):
		}
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	_ = s.Shutdown(ctx)
}

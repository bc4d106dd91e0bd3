package registry

import (
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/netpulse/netpulse/internal/domain"
)

// Defaults applied when a spec leaves tuning fields zero. Interval has
// no default on purpose: a target without an interval is a bad spec.
const (
	DefaultTimeout          = 5 * time.Second
	DefaultSuccessThreshold = 2
	DefaultFailureThreshold = 3
)

// Registry is the authoritative set of monitored targets. It hands out
// copies; the internal records are never shared with callers.
type Registry struct {
	mu      sync.RWMutex
	targets map[domain.TargetID]*domain.Target
	order   []domain.TargetID
}

func New() *Registry {
	return &Registry{
		targets: make(map[domain.TargetID]*domain.Target),
	}
}

func (r *Registry) Add(spec domain.TargetSpec) (domain.Target, error) {
	t, err := fromSpec(spec)
	if err != nil {
		return domain.Target{}, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.targets[t.ID] = &t
	r.order = append(r.order, t.ID)
	return t, nil
}

// Remove deletes the target. A second removal of the same id fails with
// ErrNotFound; the failed call leaves the registry untouched.
func (r *Registry) Remove(id domain.TargetID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.targets[id]; !ok {
		return domain.NotFoundError(id)
	}
	delete(r.targets, id)
	for i, tid := range r.order {
		if tid == id {
			r.order = append(r.order[:i], r.order[i+1:]...)
			break
		}
	}
	return nil
}

// Update merges the non-nil patch fields into the target. The merged
// configuration is validated as a whole before anything is stored.
func (r *Registry) Update(id domain.TargetID, patch domain.TargetPatch) (domain.Target, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	cur, ok := r.targets[id]
	if !ok {
		return domain.Target{}, domain.NotFoundError(id)
	}

	next := *cur
	if patch.Interval != nil {
		next.Interval = *patch.Interval
	}
	if patch.Timeout != nil {
		next.Timeout = *patch.Timeout
	}
	if patch.SuccessThreshold != nil {
		next.SuccessThreshold = *patch.SuccessThreshold
	}
	if patch.FailureThreshold != nil {
		next.FailureThreshold = *patch.FailureThreshold
	}
	if patch.DegradedLatency != nil {
		next.DegradedLatency = *patch.DegradedLatency
	}
	if err := validateTuning(next.Interval, next.Timeout, next.SuccessThreshold, next.FailureThreshold); err != nil {
		return domain.Target{}, err
	}

	*cur = next
	return next, nil
}

func (r *Registry) Get(id domain.TargetID) (domain.Target, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	t, ok := r.targets[id]
	if !ok {
		return domain.Target{}, domain.NotFoundError(id)
	}
	return *t, nil
}

// List returns targets in insertion order.
func (r *Registry) List() []domain.Target {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]domain.Target, 0, len(r.order))
	for _, id := range r.order {
		out = append(out, *r.targets[id])
	}
	return out
}

func fromSpec(spec domain.TargetSpec) (domain.Target, error) {
	host := strings.TrimSpace(spec.Host)
	if host == "" {
		return domain.Target{}, domain.ValidationErrorf("host is required")
	}

	switch spec.Protocol {
	case domain.ProtocolHTTP:
		if spec.Port == 0 {
			spec.Port = 80
		}
	case domain.ProtocolTCP:
		if spec.Port == 0 {
			return domain.Target{}, domain.ValidationErrorf("tcp targets need a port")
		}
	case domain.ProtocolICMP:
		if spec.Port != 0 {
			return domain.Target{}, domain.ValidationErrorf("icmp targets take no port")
		}
	default:
		return domain.Target{}, domain.ValidationErrorf("unknown protocol %q", spec.Protocol)
	}
	if spec.Port < 0 || spec.Port > 65535 {
		return domain.Target{}, domain.ValidationErrorf("port %d out of range", spec.Port)
	}

	if spec.Timeout == 0 {
		spec.Timeout = DefaultTimeout
	}
	if spec.SuccessThreshold == 0 {
		spec.SuccessThreshold = DefaultSuccessThreshold
	}
	if spec.FailureThreshold == 0 {
		spec.FailureThreshold = DefaultFailureThreshold
	}
	if err := validateTuning(spec.Interval, spec.Timeout, spec.SuccessThreshold, spec.FailureThreshold); err != nil {
		return domain.Target{}, err
	}

	return domain.Target{
		ID:               domain.TargetID(uuid.NewString()),
		Host:             host,
		Port:             spec.Port,
		Protocol:         spec.Protocol,
		Interval:         spec.Interval,
		Timeout:          spec.Timeout,
		SuccessThreshold: spec.SuccessThreshold,
		FailureThreshold: spec.FailureThreshold,
		DegradedLatency:  spec.DegradedLatency,
		CreatedAt:        time.Now().UTC(),
	}, nil
}

func validateTuning(interval, timeout time.Duration, succ, fail int) error {
	if interval <= 0 {
		return domain.ValidationErrorf("interval must be positive, got %v", interval)
	}
	if timeout <= 0 {
		return domain.ValidationErrorf("timeout must be positive, got %v", timeout)
	}
	if succ < 1 || fail < 1 {
		return domain.ValidationErrorf("thresholds must be >= 1, got success=%d failure=%d", succ, fail)
	}
	return nil
}

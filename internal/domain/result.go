package domain

import "time"

// Outcome classifies a single probe attempt. Outcomes are values, not
// errors: a prober never raises, it reports.
//
//   - OutcomeSuccess: the check passed at the protocol level.
//   - OutcomeFailure: the endpoint answered but unhealthily (e.g. HTTP 5xx).
//   - OutcomeTimeout: the check exceeded the target's timeout.
//   - OutcomeError:   transport-level fault (refused connection, DNS failure).
type Outcome string

const (
	OutcomeSuccess Outcome = "success"
	OutcomeFailure Outcome = "failure"
	OutcomeTimeout Outcome = "timeout"
	OutcomeError   Outcome = "error"
)

// ProbeResult is the immutable record of one probe attempt.
type ProbeResult struct {
	TargetID  TargetID  `json:"target_id"`
	Outcome   Outcome   `json:"outcome"`
	LatencyMS float64   `json:"latency_ms,omitempty"`
	Message   string    `json:"message,omitempty"`
	CheckedAt time.Time `json:"checked_at"`
}

type Status string

const (
	StatusUnknown  Status = "unknown"
	StatusUp       Status = "up"
	StatusDown     Status = "down"
	StatusDegraded Status = "degraded"
)

// HealthState is the rolling per-target health. It is mutated only by
// the status aggregator; everyone else gets copies.
type HealthState struct {
	TargetID             TargetID  `json:"target_id"`
	Status               Status    `json:"status"`
	ConsecutiveSuccesses int       `json:"consecutive_successes"`
	ConsecutiveFailures  int       `json:"consecutive_failures"`
	LastTransition       time.Time `json:"last_transition,omitempty"`
}

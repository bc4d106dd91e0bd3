package domain

import (
	"fmt"
	"time"
)

type TargetID string

type Protocol string

const (
	ProtocolTCP  Protocol = "tcp"
	ProtocolHTTP Protocol = "http"
	ProtocolICMP Protocol = "icmp"
)

// Target is a monitored endpoint plus its check configuration.
// Identity and address are fixed at creation; interval, timeout and
// thresholds may be updated and take effect on the next scheduling cycle.
type Target struct {
	ID               TargetID      `json:"id"`
	Host             string        `json:"host"`
	Port             int           `json:"port,omitempty"`
	Protocol         Protocol      `json:"protocol"`
	Interval         time.Duration `json:"-"`
	Timeout          time.Duration `json:"-"`
	SuccessThreshold int           `json:"success_threshold"`
	FailureThreshold int           `json:"failure_threshold"`
	DegradedLatency  time.Duration `json:"-"`
	CreatedAt        time.Time     `json:"created_at"`
}

// Address renders the dialable form of the target. HTTP targets get a
// full URL so the prober can hand it straight to an http.Client.
func (t Target) Address() string {
	switch t.Protocol {
	case ProtocolHTTP:
		if t.Port == 0 || t.Port == 80 {
			return fmt.Sprintf("http://%s", t.Host)
		}
		return fmt.Sprintf("http://%s:%d", t.Host, t.Port)
	case ProtocolTCP:
		return fmt.Sprintf("%s:%d", t.Host, t.Port)
	default:
		return t.Host
	}
}

// TargetSpec is the caller-supplied description used to create a target.
type TargetSpec struct {
	Host             string
	Port             int
	Protocol         Protocol
	Interval         time.Duration
	Timeout          time.Duration
	SuccessThreshold int
	FailureThreshold int
	DegradedLatency  time.Duration
}

// TargetPatch carries a partial update; nil fields are left untouched.
// Host, port and protocol are immutable after creation and have no
// patch fields on purpose.
type TargetPatch struct {
	Interval         *time.Duration
	Timeout          *time.Duration
	SuccessThreshold *int
	FailureThreshold *int
	DegradedLatency  *time.Duration
}

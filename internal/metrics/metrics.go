// Package metrics provides lightweight hooks for instrumentation.
package metrics

import "time"

// Outcome labels shared by the auth counters.
const (
	OutcomeSuccess           = "success"
	OutcomeDuplicateEmail    = "duplicate_email"
	OutcomeDuplicateUsername = "duplicate_username"
	OutcomeInvalid           = "invalid_credentials"
	OutcomeError             = "error"
)

// Recorder captures metric events for the application.
// Implementations can expose these to Prometheus, StatsD, etc.
type Recorder interface {
	IncSignup(outcome string)
	IncLogin(outcome string)
	IncSessionResolve(outcome string)
	ObservePasswordHash(duration time.Duration)
}

// Snapshotter exposes a snapshot of current metrics.
type Snapshotter interface {
	Snapshot() Snapshot
}

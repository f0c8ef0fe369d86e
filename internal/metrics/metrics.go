// Package metrics provides lightweight hooks for instrumentation.
package metrics

import "time"

// Outcome labels for attempt counters.
const (
	ResultSuccess = "success"
	ResultFailure = "failure"
)

// Recorder captures metric events for the application.
// Implementations can expose these to Prometheus, StatsD, etc.
type Recorder interface {
	// Account metrics
	IncAccountRegistered()
	IncAccountDeactivated()
	IncLogin(result string)        // result: "success" or "failure"
	IncTokenRefresh(result string) // result: "success" or "failure"

	// Project metrics
	IncProjectCreated()
	IncProjectCancelled()
	IncProjectDeleted()

	// HTTP metrics
	IncRateLimited()
	ObserveRequestDuration(duration time.Duration)
}

// Snapshotter exposes a snapshot of current metrics.
type Snapshotter interface {
	Snapshot() Snapshot
}

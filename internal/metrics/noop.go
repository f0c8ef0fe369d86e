package metrics

import "time"

// NoopRecorder implements Recorder with no-op methods.
type NoopRecorder struct{}

// NewNoop returns a Recorder that discards all metrics.
func NewNoop() Recorder {
	return &NoopRecorder{}
}

func (n *NoopRecorder) IncAccountRegistered()                         {}
func (n *NoopRecorder) IncAccountDeactivated()                        {}
func (n *NoopRecorder) IncLogin(result string)                        {}
func (n *NoopRecorder) IncTokenRefresh(result string)                 {}
func (n *NoopRecorder) IncProjectCreated()                            {}
func (n *NoopRecorder) IncProjectCancelled()                          {}
func (n *NoopRecorder) IncProjectDeleted()                            {}
func (n *NoopRecorder) IncRateLimited()                               {}
func (n *NoopRecorder) ObserveRequestDuration(duration time.Duration) {}

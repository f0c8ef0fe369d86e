package metrics

import (
	"sync/atomic"
	"time"
)

// Snapshot captures current in-memory counters.
type Snapshot struct {
	AccountsRegistered     uint64
	AccountsDeactivated    uint64
	LoginSuccesses         uint64
	LoginFailures          uint64
	RefreshSuccesses       uint64
	RefreshFailures        uint64
	ProjectsCreated        uint64
	ProjectsCancelled      uint64
	ProjectsDeleted        uint64
	RateLimited            uint64
	RequestDurationCount   uint64
	RequestDurationTotalNs int64
}

// InMemoryRecorder stores metrics in memory. It backs the /metrics
// endpoint and test assertions.
type InMemoryRecorder struct {
	accountsRegistered     atomic.Uint64
	accountsDeactivated    atomic.Uint64
	loginSuccesses         atomic.Uint64
	loginFailures          atomic.Uint64
	refreshSuccesses       atomic.Uint64
	refreshFailures        atomic.Uint64
	projectsCreated        atomic.Uint64
	projectsCancelled      atomic.Uint64
	projectsDeleted        atomic.Uint64
	rateLimited            atomic.Uint64
	requestDurationCount   atomic.Uint64
	requestDurationTotalNs atomic.Int64
}

// NewInMemory returns a Recorder that stores counters in memory.
func NewInMemory() *InMemoryRecorder {
	return &InMemoryRecorder{}
}

// Snapshot returns a copy of the counters.
func (m *InMemoryRecorder) Snapshot() Snapshot {
	return Snapshot{
		AccountsRegistered:     m.accountsRegistered.Load(),
		AccountsDeactivated:    m.accountsDeactivated.Load(),
		LoginSuccesses:         m.loginSuccesses.Load(),
		LoginFailures:          m.loginFailures.Load(),
		RefreshSuccesses:       m.refreshSuccesses.Load(),
		RefreshFailures:        m.refreshFailures.Load(),
		ProjectsCreated:        m.projectsCreated.Load(),
		ProjectsCancelled:      m.projectsCancelled.Load(),
		ProjectsDeleted:        m.projectsDeleted.Load(),
		RateLimited:            m.rateLimited.Load(),
		RequestDurationCount:   m.requestDurationCount.Load(),
		RequestDurationTotalNs: m.requestDurationTotalNs.Load(),
	}
}

// IncAccountRegistered increments the registration counter.
func (m *InMemoryRecorder) IncAccountRegistered() {
	m.accountsRegistered.Add(1)
}

// IncAccountDeactivated increments the deactivation counter.
func (m *InMemoryRecorder) IncAccountDeactivated() {
	m.accountsDeactivated.Add(1)
}

// IncLogin counts a login attempt by result.
func (m *InMemoryRecorder) IncLogin(result string) {
	if result == ResultSuccess {
		m.loginSuccesses.Add(1)
		return
	}
	m.loginFailures.Add(1)
}

// IncTokenRefresh counts a refresh attempt by result.
func (m *InMemoryRecorder) IncTokenRefresh(result string) {
	if result == ResultSuccess {
		m.refreshSuccesses.Add(1)
		return
	}
	m.refreshFailures.Add(1)
}

// IncProjectCreated increments project created counter.
func (m *InMemoryRecorder) IncProjectCreated() {
	m.projectsCreated.Add(1)
}

// IncProjectCancelled increments project cancelled counter.
func (m *InMemoryRecorder) IncProjectCancelled() {
	m.projectsCancelled.Add(1)
}

// IncProjectDeleted increments project deleted counter.
func (m *InMemoryRecorder) IncProjectDeleted() {
	m.projectsDeleted.Add(1)
}

// IncRateLimited increments the throttled request counter.
func (m *InMemoryRecorder) IncRateLimited() {
	m.rateLimited.Add(1)
}

// ObserveRequestDuration records an HTTP request duration.
func (m *InMemoryRecorder) ObserveRequestDuration(duration time.Duration) {
	m.requestDurationCount.Add(1)
	m.requestDurationTotalNs.Add(duration.Nanoseconds())
}

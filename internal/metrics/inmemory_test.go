package metrics

import (
	"testing"
	"time"
)

func TestInMemoryRecorder_Snapshot(t *testing.T) {
	m := NewInMemory()

	m.IncAccountRegistered()
	m.IncLogin(ResultSuccess)
	m.IncLogin(ResultFailure)
	m.IncLogin(ResultFailure)
	m.IncTokenRefresh(ResultFailure)
	m.IncProjectCreated()
	m.IncProjectCreated()
	m.IncProjectCancelled()
	m.IncProjectDeleted()
	m.IncRateLimited()
	m.ObserveRequestDuration(150 * time.Millisecond)
	m.ObserveRequestDuration(50 * time.Millisecond)

	snap := m.Snapshot()
	if snap.AccountsRegistered != 1 {
		t.Errorf("AccountsRegistered = %d, want 1", snap.AccountsRegistered)
	}
	if snap.LoginSuccesses != 1 || snap.LoginFailures != 2 {
		t.Errorf("logins = %d/%d, want 1/2", snap.LoginSuccesses, snap.LoginFailures)
	}
	if snap.RefreshSuccesses != 0 || snap.RefreshFailures != 1 {
		t.Errorf("refreshes = %d/%d, want 0/1", snap.RefreshSuccesses, snap.RefreshFailures)
	}
	if snap.ProjectsCreated != 2 || snap.ProjectsCancelled != 1 || snap.ProjectsDeleted != 1 {
		t.Errorf("unexpected project counters: %+v", snap)
	}
	if snap.RateLimited != 1 {
		t.Errorf("RateLimited = %d, want 1", snap.RateLimited)
	}
	if snap.RequestDurationCount != 2 || snap.RequestDurationTotalNs != (200*time.Millisecond).Nanoseconds() {
		t.Errorf("unexpected duration stats: %d/%d", snap.RequestDurationCount, snap.RequestDurationTotalNs)
	}
}

func TestNoopRecorder(t *testing.T) {
	var r Recorder = NewNoop()
	r.IncAccountRegistered()
	r.IncLogin(ResultSuccess)
	r.ObserveRequestDuration(time.Second)
}

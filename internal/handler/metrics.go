package handler

import (
	"fmt"
	"io"
	"net/http"

	"github.com/clientdesk/clientdesk/internal/metrics"
)

// MetricsHandler exposes in-memory metrics.
type MetricsHandler struct {
	snapshotter metrics.Snapshotter
}

// NewMetricsHandler creates a new MetricsHandler.
func NewMetricsHandler(snapshotter metrics.Snapshotter) *MetricsHandler {
	return &MetricsHandler{snapshotter: snapshotter}
}

// Metrics returns metrics in Prometheus exposition format.
//
// GET /metrics
func (h *MetricsHandler) Metrics(w http.ResponseWriter, r *http.Request) {
	if h.snapshotter == nil {
		w.WriteHeader(http.StatusServiceUnavailable)
		return
	}

	snap := h.snapshotter.Snapshot()

	w.Header().Set("Content-Type", "text/plain; version=0.0.4")

	writeMetric(w, "clientdesk_accounts_registered_total %d\n", snap.AccountsRegistered)
	writeMetric(w, "clientdesk_accounts_deactivated_total %d\n", snap.AccountsDeactivated)
	writeMetric(w, "clientdesk_logins_total{result=\"success\"} %d\n", snap.LoginSuccesses)
	writeMetric(w, "clientdesk_logins_total{result=\"failure\"} %d\n", snap.LoginFailures)
	writeMetric(w, "clientdesk_token_refreshes_total{result=\"success\"} %d\n", snap.RefreshSuccesses)
	writeMetric(w, "clientdesk_token_refreshes_total{result=\"failure\"} %d\n", snap.RefreshFailures)

	writeMetric(w, "clientdesk_projects_created_total %d\n", snap.ProjectsCreated)
	writeMetric(w, "clientdesk_projects_cancelled_total %d\n", snap.ProjectsCancelled)
	writeMetric(w, "clientdesk_projects_deleted_total %d\n", snap.ProjectsDeleted)

	writeMetric(w, "clientdesk_rate_limited_total %d\n", snap.RateLimited)
	writeMetric(w, "clientdesk_http_request_duration_seconds_count %d\n", snap.RequestDurationCount)
	writeMetric(w, "clientdesk_http_request_duration_seconds_sum %.6f\n", float64(snap.RequestDurationTotalNs)/1e9)
}

func writeMetric(w io.Writer, format string, args ...any) {
	_, _ = fmt.Fprintf(w, format, args...)
}

package handler

import (
	"fmt"
	"net/http"

	"github.com/carepredict/authapi/internal/metrics"
)

// MetricsHandler exposes in-memory metrics.
type MetricsHandler struct {
	snapshotter metrics.Snapshotter
}

// NewMetricsHandler creates a new MetricsHandler. A nil snapshotter makes
// the endpoint report 503.
func NewMetricsHandler(snapshotter metrics.Snapshotter) *MetricsHandler {
	return &MetricsHandler{snapshotter: snapshotter}
}

// Metrics returns metrics in Prometheus exposition format.
func (h *MetricsHandler) Metrics(w http.ResponseWriter, r *http.Request) {
	if h.snapshotter == nil {
		w.WriteHeader(http.StatusServiceUnavailable)
		return
	}

	snap := h.snapshotter.Snapshot()

	w.Header().Set("Content-Type", "text/plain; version=0.0.4")

	writeCounter(w, "authapi_signups_total", "Signup attempts by outcome.", snap.Signups)
	writeCounter(w, "authapi_logins_total", "Login attempts by outcome.", snap.Logins)
	writeCounter(w, "authapi_session_resolves_total", "Bearer token resolutions by outcome.", snap.SessionResolves)

	writeMetric(w, "# HELP authapi_password_hash_duration_seconds Time spent hashing or verifying passwords.\n")
	writeMetric(w, "# TYPE authapi_password_hash_duration_seconds summary\n")
	writeMetric(w, "authapi_password_hash_duration_seconds_count %d\n", snap.PasswordHashCount)
	writeMetric(w, "authapi_password_hash_duration_seconds_sum %.6f\n", float64(snap.PasswordHashDurationNsum)/1e9)
}

func writeCounter(w http.ResponseWriter, name, help string, counts map[string]uint64) {
	writeMetric(w, "# HELP %s %s\n", name, help)
	writeMetric(w, "# TYPE %s counter\n", name)
	for _, outcome := range metrics.Outcomes(counts) {
		writeMetric(w, "%s{outcome=%q} %d\n", name, outcome, counts[outcome])
	}
}

func writeMetric(w http.ResponseWriter, format string, args ...any) {
	_, _ = fmt.Fprintf(w, format, args...)
}

// Package metrics exposes Prometheus counters for the authentication core.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// AuthFailures counts requests rejected by the authentication gate, by reason.
	AuthFailures = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "auth_failures_total",
		Help: "Requests rejected by the authentication gate.",
	}, []string{"reason"})

	// AuditWriteDrops counts security event/alert writes that failed and were
	// intentionally dropped. Audit-trail health never blocks authentication, so
	// this counter is the channel that surfaces the loss.
	AuditWriteDrops = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "security_audit_write_drops_total",
		Help: "Security event/alert writes dropped after a persistence failure.",
	}, []string{"kind"})

	// AnomalyFlags counts advisory anomaly detections, by heuristic.
	AnomalyFlags = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "anomaly_flags_total",
		Help: "Advisory anomaly detections.",
	}, []string{"heuristic"})
)

// Handler returns the /metrics endpoint handler.
func Handler() http.Handler {
	return promhttp.Handler()
}

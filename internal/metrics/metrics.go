// Package metrics holds the Prometheus collectors exported at /metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// ExecutorDuration tracks privileged command latency by command name and result.
	ExecutorDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "sentinelguard",
		Name:      "executor_duration_seconds",
		Help:      "Duration of privileged command executions",
		Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
	}, []string{"command", "result"})

	// EnforcementActions counts trust and enforcement operations.
	EnforcementActions = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "sentinelguard",
		Name:      "enforcement_actions_total",
		Help:      "Trust and enforcement operations by action and result",
	}, []string{"action", "result"})

	// AuditEvents counts appended audit events by level.
	AuditEvents = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "sentinelguard",
		Name:      "audit_events_total",
		Help:      "Audit events appended, by level",
	}, []string{"level"})

	// AuditWriteFailures counts best-effort audit writes that failed.
	AuditWriteFailures = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "sentinelguard",
		Name:      "audit_write_failures_total",
		Help:      "Secondary audit writes that failed after a successful primary operation",
	})

	// Devices reports the last observed device counts by trust state.
	Devices = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: "sentinelguard",
		Name:      "devices",
		Help:      "Connected devices at the last inventory, by trust state",
	}, []string{"trust"})
)

// Result labels.
const (
	ResultSuccess = "success"
	ResultFailure = "failure"
	ResultNoop    = "noop"
)

// ObserveResult maps an error to a result label.
func ObserveResult(err error) string {
	if err != nil {
		return ResultFailure
	}
	return ResultSuccess
}

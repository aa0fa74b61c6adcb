// Invariants are conditions in code that must be true; otherwise, there is a bug in code.
// Think of what you'd `panic()` on, but you don't want to take the cache server down because of it. When an
// invariant is violated, an error is logged and the `invariants_total` counter is incremented so it can be alerted
// on. The caller still has to handle the erroneous case, e.g. by falling back to a sane value or returning early.
//
// Don't raise invariants for conditions that depend on the outside world (a client sending a malformed command, a
// missing config file); those are regular errors. A cache that is full while its recency list is empty, on the other
// hand, can only be produced by a bug and is a good candidate for an invariant.

package utils

import (
	"log/slog"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	promclient "github.com/prometheus/client_model/go"
)

var invariantsMetric = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "invariants_total",
	Help: "The total number of invariant violations",
}, []string{
	"module", // The module in which this invariant occurred.
	"type",   // The type of the invariant that occurred.
})

// RaiseInvariant reports a violated invariant of `module`. The `args` are slog attributes describing the state.
// Test mode builds panic instead, so violations can't go unnoticed in CI.
func RaiseInvariant(module, invariantType, msg string, args ...any) {
	invariantsMetric.WithLabelValues(module, invariantType).Inc()
	slog.With("invariant", invariantType, "module", module).Error(msg, args...)
	if IsTestMode {
		panic("invariant violated: " + invariantType)
	}
}

// GetMetricValue returns how many times the invariant `invariantType` of `module` has been raised.
func GetMetricValue(module, invariantType string) int {
	metric := &promclient.Metric{}
	if err := invariantsMetric.WithLabelValues(module, invariantType).Write(metric); err != nil {
		slog.Error("Failed to read the invariants metric.", "error", err)
		return 0
	}
	return int(metric.GetCounter().GetValue())
}

package aggregates

import (
	"strings"
	"time"
)

// Hooks captures aggregate-level observability events.
type Hooks interface {
	ObserveOperation(name, status string, dur time.Duration)
	IncConflict(name string)
	IncRetry(name string)
}

type noopHooks struct{}

func (noopHooks) ObserveOperation(string, string, time.Duration) {}
func (noopHooks) IncConflict(string)                             {}
func (noopHooks) IncRetry(string)                                {}

// MetricsSink is the part of observability.Metrics the hooks report to.
type MetricsSink interface {
	ObserveAggregateOperation(operation, status string, dur time.Duration)
	IncAggregateConflict(operation string)
	IncAggregateRetry(operation string)
}

type metricsHooks struct {
	sink MetricsSink
}

// NewMetricsHooks creates aggregate hooks backed by a metrics sink.
func NewMetricsHooks(sink MetricsSink) Hooks {
	if sink == nil {
		return noopHooks{}
	}
	return &metricsHooks{sink: sink}
}

func (h *metricsHooks) ObserveOperation(name, status string, dur time.Duration) {
	h.sink.ObserveAggregateOperation(strings.TrimSpace(name), strings.TrimSpace(status), dur)
}

func (h *metricsHooks) IncConflict(name string) {
	h.sink.IncAggregateConflict(strings.TrimSpace(name))
}

func (h *metricsHooks) IncRetry(name string) {
	h.sink.IncAggregateRetry(strings.TrimSpace(name))
}

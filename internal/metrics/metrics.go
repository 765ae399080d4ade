// Package metrics exposes allocation and diagnostic counters to Prometheus.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"

	"sapec/internal/diag"
)

const namespace = "sapec"

// Metrics groups the counters fed by the allocation layer and the
// diagnostic reporter.
type Metrics struct {
	// AllocationsTotal counts successful allocations by operation.
	AllocationsTotal *prometheus.CounterVec

	// AllocatedBytesTotal counts bytes handed out by the allocation layer.
	AllocatedBytesTotal prometheus.Counter

	// AllocationFailuresTotal counts refused allocations by operation and reason.
	AllocationFailuresTotal *prometheus.CounterVec

	// DiagnosticsTotal counts reported messages by severity.
	DiagnosticsTotal *prometheus.CounterVec
}

// New creates the counters and registers them on reg. A nil reg leaves
// them unregistered, which is what one-shot CLI runs want.
func New(reg prometheus.Registerer) (*Metrics, error) {
	m := &Metrics{
		AllocationsTotal: NewCounterVec(
			"allocations_total",
			"Successful allocations by operation.",
			[]string{"op"},
		),
		AllocatedBytesTotal: NewCounter(
			"allocated_bytes_total",
			"Bytes handed out by the allocation layer.",
		),
		AllocationFailuresTotal: NewCounterVec(
			"allocation_failures_total",
			"Refused allocations by operation and reason.",
			[]string{"op", "reason"},
		),
		DiagnosticsTotal: NewCounterVec(
			"diagnostics_total",
			"Diagnostics reported by severity.",
			[]string{"severity"},
		),
	}
	if reg == nil {
		return m, nil
	}
	for _, c := range m.collectors() {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}
	return m, nil
}

func (m *Metrics) collectors() []prometheus.Collector {
	return []prometheus.Collector{
		m.AllocationsTotal,
		m.AllocatedBytesTotal,
		m.AllocationFailuresTotal,
		m.DiagnosticsTotal,
	}
}

// ObserveAllocation records a successful allocation of n bytes.
func (m *Metrics) ObserveAllocation(op string, n int) {
	if m == nil {
		return
	}
	m.AllocationsTotal.WithLabelValues(op).Inc()
	if n > 0 {
		m.AllocatedBytesTotal.Add(float64(n))
	}
}

// ObserveAllocationFailure records a refused allocation.
func (m *Metrics) ObserveAllocationFailure(op, reason string) {
	if m == nil {
		return
	}
	m.AllocationFailuresTotal.WithLabelValues(op, reason).Inc()
}

// ObserveDiagnostic implements diag.Sink.
func (m *Metrics) ObserveDiagnostic(sev diag.Severity) {
	if m == nil {
		return
	}
	m.DiagnosticsTotal.WithLabelValues(sev.String()).Inc()
}

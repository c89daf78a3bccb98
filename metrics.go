package hexagonrpc

import (
	"sync/atomic"
	"time"
)

// LatencyBuckets defines the latency histogram buckets in nanoseconds.
// Buckets cover from 1us to 10s with logarithmic spacing.
var LatencyBuckets = []uint64{
	1_000,          // 1us
	10_000,         // 10us
	100_000,        // 100us
	1_000_000,      // 1ms
	10_000_000,     // 10ms
	100_000_000,    // 100ms
	1_000_000_000,  // 1s
	10_000_000_000, // 10s
}

const numLatencyBuckets = 8

// Metrics tracks operational statistics for one daemon session: the
// forward calls it issues and the reverse calls it serves.
type Metrics struct {
	// Forward path
	ForwardCalls  atomic.Uint64 // Total forward invocations
	ForwardErrors atomic.Uint64 // Forward invocations that failed

	// Reverse path
	Dispatches      atomic.Uint64 // Total dispatched reverse calls
	DispatchErrors  atomic.Uint64 // Dispatches with a non-zero result
	TunnelBytesIn   atomic.Uint64 // Flat inbound bytes received
	TunnelBytesOut  atomic.Uint64 // Flat outbound bytes returned
	UnknownHandles  atomic.Uint64 // Not updated; unknown handles are counted in UnknownMethods
	UnknownMethods  atomic.Uint64 // Dispatches answered EUnsupported (unknown handle or method, unbound slot)
	GeometryRejects atomic.Uint64 // Dispatches answered EBadParm (bad geometry or input stream)

	// Latency tracking across both paths
	TotalLatencyNs atomic.Uint64
	OpCount        atomic.Uint64

	// Each bucket[i] counts operations with latency <= LatencyBuckets[i]
	LatencyBuckets [numLatencyBuckets]atomic.Uint64

	// Session lifecycle
	StartTime atomic.Int64 // Session start timestamp (UnixNano)
	StopTime  atomic.Int64 // Session stop timestamp (UnixNano)
}

// NewMetrics creates a new metrics instance
func NewMetrics() *Metrics {
	m := &Metrics{}
	m.StartTime.Store(time.Now().UnixNano())
	return m
}

// RecordForward records one forward invocation
func (m *Metrics) RecordForward(latencyNs uint64, success bool) {
	m.ForwardCalls.Add(1)
	if !success {
		m.ForwardErrors.Add(1)
	}
	m.recordLatency(latencyNs)
}

// RecordDispatch records one reverse dispatch and its result code
func (m *Metrics) RecordDispatch(result uint32, latencyNs uint64) {
	m.Dispatches.Add(1)
	if result != 0 {
		m.DispatchErrors.Add(1)
	}
	switch ResultCode(result) {
	case EUnsupported:
		m.UnknownMethods.Add(1)
	case EBadParm:
		m.GeometryRejects.Add(1)
	}
	m.recordLatency(latencyNs)
}

// RecordTunnelBytes records the flat stream sizes of one poll
func (m *Metrics) RecordTunnelBytes(in, out uint64) {
	m.TunnelBytesIn.Add(in)
	m.TunnelBytesOut.Add(out)
}

func (m *Metrics) recordLatency(latencyNs uint64) {
	m.TotalLatencyNs.Add(latencyNs)
	m.OpCount.Add(1)

	for i, bound := range LatencyBuckets {
		if latencyNs <= bound {
			m.LatencyBuckets[i].Add(1)
		}
	}
}

// Stop marks the session as finished
func (m *Metrics) Stop() {
	m.StopTime.Store(time.Now().UnixNano())
}

// MetricsSnapshot is a point-in-time copy of the counters
type MetricsSnapshot struct {
	ForwardCalls    uint64 `json:"forward_calls"`
	ForwardErrors   uint64 `json:"forward_errors"`
	Dispatches      uint64 `json:"dispatches"`
	DispatchErrors  uint64 `json:"dispatch_errors"`
	TunnelBytesIn   uint64 `json:"tunnel_bytes_in"`
	TunnelBytesOut  uint64 `json:"tunnel_bytes_out"`
	UnknownMethods  uint64 `json:"unknown_methods"`
	GeometryRejects uint64 `json:"geometry_rejects"`
	AvgLatencyNs    uint64 `json:"avg_latency_ns"`
	UptimeSeconds   int64  `json:"uptime_seconds"`
}

// Snapshot captures the current counter values
func (m *Metrics) Snapshot() MetricsSnapshot {
	s := MetricsSnapshot{
		ForwardCalls:    m.ForwardCalls.Load(),
		ForwardErrors:   m.ForwardErrors.Load(),
		Dispatches:      m.Dispatches.Load(),
		DispatchErrors:  m.DispatchErrors.Load(),
		TunnelBytesIn:   m.TunnelBytesIn.Load(),
		TunnelBytesOut:  m.TunnelBytesOut.Load(),
		UnknownMethods:  m.UnknownMethods.Load(),
		GeometryRejects: m.GeometryRejects.Load(),
	}

	if ops := m.OpCount.Load(); ops > 0 {
		s.AvgLatencyNs = m.TotalLatencyNs.Load() / ops
	}

	end := m.StopTime.Load()
	if end == 0 {
		end = time.Now().UnixNano()
	}
	s.UptimeSeconds = (end - m.StartTime.Load()) / int64(time.Second)

	return s
}

// MetricsObserver feeds the engine's observer callbacks into a Metrics
// instance.
type MetricsObserver struct {
	metrics *Metrics
}

// NewMetricsObserver creates an observer backed by the given metrics
func NewMetricsObserver(m *Metrics) *MetricsObserver {
	return &MetricsObserver{metrics: m}
}

func (o *MetricsObserver) ObserveForward(latencyNs uint64, success bool) {
	o.metrics.RecordForward(latencyNs, success)
}

func (o *MetricsObserver) ObserveDispatch(handle, method, result uint32, latencyNs uint64) {
	o.metrics.RecordDispatch(result, latencyNs)
}

func (o *MetricsObserver) ObserveTunnelBytes(in, out uint64) {
	o.metrics.RecordTunnelBytes(in, out)
}

// NoOpObserver discards all observations
type NoOpObserver struct{}

func (NoOpObserver) ObserveForward(uint64, bool)                {}
func (NoOpObserver) ObserveDispatch(uint32, uint32, uint32, uint64) {}
func (NoOpObserver) ObserveTunnelBytes(uint64, uint64)          {}

// Compile-time interface checks
var (
	_ Observer = (*MetricsObserver)(nil)
	_ Observer = NoOpObserver{}
)

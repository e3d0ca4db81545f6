package kalman

import (
	"sync/atomic"
	"time"
)

// Rejection reasons passed to MetricsCollector.RecordReject.
const (
	RejectTemporal = "temporal"
	RejectSingular = "singular"
)

// MetricsCollector defines an interface for collecting filter metrics.
// Implement this interface to integrate with monitoring systems like Prometheus;
// see observability.PrometheusCollector.
type MetricsCollector interface {
	// RecordPredict is called after each Predict call.
	// duration is the total time taken, err is nil if successful.
	RecordPredict(duration time.Duration, err error)

	// RecordUpdate is called after each Update call.
	RecordUpdate(duration time.Duration, err error)

	// RecordReject is called when a call fails with a recoverable error
	// that left the filter unchanged. reason is RejectTemporal or RejectSingular.
	RecordReject(reason string)
}

// NoopMetricsCollector is a no-op implementation of MetricsCollector.
type NoopMetricsCollector struct{}

func (NoopMetricsCollector) RecordPredict(time.Duration, error) {}
func (NoopMetricsCollector) RecordUpdate(time.Duration, error)  {}
func (NoopMetricsCollector) RecordReject(string)                {}

// BasicMetricsCollector provides simple in-memory metrics collection.
// It is safe for concurrent use, so several filters may share one.
type BasicMetricsCollector struct {
	PredictCount      atomic.Int64
	PredictErrors     atomic.Int64
	PredictTotalNanos atomic.Int64
	UpdateCount       atomic.Int64
	UpdateErrors      atomic.Int64
	UpdateTotalNanos  atomic.Int64
	TemporalRejects   atomic.Int64
	SingularRejects   atomic.Int64
}

// RecordPredict implements MetricsCollector.
func (b *BasicMetricsCollector) RecordPredict(duration time.Duration, err error) {
	b.PredictCount.Add(1)
	b.PredictTotalNanos.Add(duration.Nanoseconds())
	if err != nil {
		b.PredictErrors.Add(1)
	}
}

// RecordUpdate implements MetricsCollector.
func (b *BasicMetricsCollector) RecordUpdate(duration time.Duration, err error) {
	b.UpdateCount.Add(1)
	b.UpdateTotalNanos.Add(duration.Nanoseconds())
	if err != nil {
		b.UpdateErrors.Add(1)
	}
}

// RecordReject implements MetricsCollector.
func (b *BasicMetricsCollector) RecordReject(reason string) {
	switch reason {
	case RejectTemporal:
		b.TemporalRejects.Add(1)
	case RejectSingular:
		b.SingularRejects.Add(1)
	}
}

// GetStats returns a snapshot of current metrics.
func (b *BasicMetricsCollector) GetStats() BasicMetricsStats {
	return BasicMetricsStats{
		PredictCount:    b.PredictCount.Load(),
		PredictErrors:   b.PredictErrors.Load(),
		PredictAvgNanos: avg(b.PredictTotalNanos.Load(), b.PredictCount.Load()),
		UpdateCount:     b.UpdateCount.Load(),
		UpdateErrors:    b.UpdateErrors.Load(),
		UpdateAvgNanos:  avg(b.UpdateTotalNanos.Load(), b.UpdateCount.Load()),
		TemporalRejects: b.TemporalRejects.Load(),
		SingularRejects: b.SingularRejects.Load(),
	}
}

func avg(total, count int64) int64 {
	if count == 0 {
		return 0
	}
	return total / count
}

// BasicMetricsStats is a snapshot of BasicMetricsCollector state.
type BasicMetricsStats struct {
	PredictCount    int64
	PredictErrors   int64
	PredictAvgNanos int64
	UpdateCount     int64
	UpdateErrors    int64
	UpdateAvgNanos  int64
	TemporalRejects int64
	SingularRejects int64
}

package observability

import (
	"time"

	"github.com/hupe1980/kalman"
	"github.com/hupe1980/kalman/replay"
	"github.com/hupe1980/kalman/resource"
	"github.com/prometheus/client_golang/prometheus"
)

// PrometheusCollector implements kalman.MetricsCollector and also exports
// replay and resource figures.
type PrometheusCollector struct {
	opLatency *prometheus.HistogramVec
	rejects   *prometheus.CounterVec
	samples   *prometheus.CounterVec
	replays   *prometheus.CounterVec
	arenaPeak prometheus.Histogram

	reg prometheus.Registerer
}

var _ kalman.MetricsCollector = (*PrometheusCollector)(nil)

// NewPrometheusCollector creates the collectors and registers them with reg.
// A nil reg uses prometheus.DefaultRegisterer.
func NewPrometheusCollector(reg prometheus.Registerer) *PrometheusCollector {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}

	c := &PrometheusCollector{
		opLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "kalman_operation_latency_seconds",
			Help:    "Latency of filter predict and update calls",
			Buckets: prometheus.ExponentialBuckets(1e-7, 4, 10),
		}, []string{"op", "status"}),
		rejects: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "kalman_rejected_total",
			Help: "Filter calls refused without changing state",
		}, []string{"reason"}),
		samples: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "kalman_replay_samples_total",
			Help: "Trace samples replayed",
		}, []string{"outcome"}),
		replays: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "kalman_replays_total",
			Help: "Traces replayed",
		}, []string{"status"}),
		arenaPeak: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "kalman_arena_peak_bytes",
			Help:    "Peak arena usage per replayed trace",
			Buckets: prometheus.ExponentialBuckets(256, 2, 12),
		}),
		reg: reg,
	}

	reg.MustRegister(c.opLatency, c.rejects, c.samples, c.replays, c.arenaPeak)
	return c
}

func status(err error) string {
	if err != nil {
		return "error"
	}
	return "success"
}

// RecordPredict implements kalman.MetricsCollector.
func (c *PrometheusCollector) RecordPredict(d time.Duration, err error) {
	c.opLatency.WithLabelValues("predict", status(err)).Observe(d.Seconds())
}

// RecordUpdate implements kalman.MetricsCollector.
func (c *PrometheusCollector) RecordUpdate(d time.Duration, err error) {
	c.opLatency.WithLabelValues("update", status(err)).Observe(d.Seconds())
}

// RecordReject implements kalman.MetricsCollector.
func (c *PrometheusCollector) RecordReject(reason string) {
	c.rejects.WithLabelValues(reason).Inc()
}

// ObserveReport records the outcome of one replay. Nil reports, from jobs
// that never started, are ignored.
func (c *PrometheusCollector) ObserveReport(rep *replay.Report) {
	if rep == nil {
		return
	}
	c.replays.WithLabelValues(status(rep.Err)).Inc()
	c.samples.WithLabelValues("accepted").Add(float64(rep.Accepted))
	c.samples.WithLabelValues("rejected").Add(float64(rep.RejectedCount()))
	if rep.ArenaCapacity > 0 {
		c.arenaPeak.Observe(float64(rep.PeakArena))
	}
}

// RegisterController exports the controller's memory usage and limit as
// gauges read on every scrape.
func (c *PrometheusCollector) RegisterController(rc *resource.Controller) error {
	used := prometheus.NewGaugeFunc(prometheus.GaugeOpts{
		Name: "kalman_arena_memory_bytes",
		Help: "Arena memory currently reserved",
	}, func() float64 { return float64(rc.MemoryUsage()) })
	limit := prometheus.NewGaugeFunc(prometheus.GaugeOpts{
		Name: "kalman_arena_memory_limit_bytes",
		Help: "Arena memory budget, 0 when unlimited",
	}, func() float64 { return float64(rc.MemoryLimit()) })

	if err := c.reg.Register(used); err != nil {
		return err
	}
	return c.reg.Register(limit)
}

// Package metrics exposes pipeline run statistics as Prometheus metrics.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/sells-group/inforoute-cli/internal/fusion"
)

const (
	namespace = "inforoute"
	subsystem = "fusion"
)

// Option configures a Recorder.
type Option func(*Recorder)

// WithRegistry uses reg instead of a private registry.
func WithRegistry(reg *prometheus.Registry) Option {
	return func(r *Recorder) { r.registry = reg }
}

// WithClock overrides the clock used for the last-success timestamp.
func WithClock(now func() time.Time) Option {
	return func(r *Recorder) { r.now = now }
}

// Recorder implements fusion.Recorder on a Prometheus registry.
type Recorder struct {
	registry *prometheus.Registry
	now      func() time.Time

	runs          prometheus.Counter
	received      *prometheus.CounterVec
	rejected      *prometheus.CounterVec
	fetchFailures *prometheus.CounterVec
	features      *prometheus.GaugeVec
	runDuration   prometheus.Histogram
	writeFailures prometheus.Counter
	lastSuccess   prometheus.Gauge
}

var _ fusion.Recorder = (*Recorder)(nil)

// NewRecorder registers the pipeline metrics.
func NewRecorder(opts ...Option) *Recorder {
	r := &Recorder{registry: prometheus.NewRegistry(), now: time.Now}
	for _, opt := range opts {
		opt(r)
	}

	f := promauto.With(r.registry)
	r.runs = f.NewCounter(prometheus.CounterOpts{
		Namespace: namespace, Subsystem: subsystem,
		Name: "runs_total",
		Help: "Completed fusion runs.",
	})
	r.received = f.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace, Subsystem: subsystem,
		Name: "records_received_total",
		Help: "Raw records received per source.",
	}, []string{"source"})
	r.rejected = f.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace, Subsystem: subsystem,
		Name: "records_rejected_total",
		Help: "Records dropped during mapping, by source and reason.",
	}, []string{"source", "reason"})
	r.fetchFailures = f.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace, Subsystem: subsystem,
		Name: "fetch_failures_total",
		Help: "Source fetches that failed and contributed nothing.",
	}, []string{"source"})
	r.features = f.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: namespace, Subsystem: subsystem,
		Name: "features",
		Help: "Features emitted per source by the last run.",
	}, []string{"source"})
	r.runDuration = f.NewHistogram(prometheus.HistogramOpts{
		Namespace: namespace, Subsystem: subsystem,
		Name:    "run_duration_seconds",
		Help:    "Wall time of a fusion run.",
		Buckets: []float64{0.5, 1, 2.5, 5, 10, 30, 60, 120},
	})
	r.writeFailures = f.NewCounter(prometheus.CounterOpts{
		Namespace: namespace, Subsystem: subsystem,
		Name: "write_failures_total",
		Help: "Runs whose artifacts could not be written.",
	})
	r.lastSuccess = f.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace, Subsystem: subsystem,
		Name: "last_success_timestamp_seconds",
		Help: "Unix time of the last run whose artifacts were written.",
	})
	return r
}

// ObserveRun records the outcome of a completed run.
func (r *Recorder) ObserveRun(stats []fusion.SourceStats, _ int, elapsed time.Duration) {
	r.runs.Inc()
	for _, s := range stats {
		r.received.WithLabelValues(s.Key).Add(float64(s.Received))
		for reason, n := range s.Rejected {
			r.rejected.WithLabelValues(s.Key, string(reason)).Add(float64(n))
		}
		if s.FetchErr != nil {
			r.fetchFailures.WithLabelValues(s.Key).Inc()
		}
		r.features.WithLabelValues(s.Key).Set(float64(s.Accepted))
	}
	r.runDuration.Observe(elapsed.Seconds())
}

// ObserveWrite records the outcome of persisting a run. Only a successful
// write moves the last-success timestamp.
func (r *Recorder) ObserveWrite(err error) {
	if err != nil {
		r.writeFailures.Inc()
		return
	}
	r.lastSuccess.Set(float64(r.now().Unix()))
}

// Handler serves the registry in the Prometheus exposition format.
func (r *Recorder) Handler() http.Handler {
	return promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{Registry: r.registry})
}

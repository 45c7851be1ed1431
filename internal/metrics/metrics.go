// Package metrics records run metrics in a Prometheus registry.
//
// A batch run has no scrape endpoint, so the registry is written as a
// node-exporter textfile when the run ends.
package metrics

import (
	"os"
	"path/filepath"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/ricesearch/bugeval/internal/pkg/errors"
)

// Outcome label values.
const (
	OutcomeOK    = "ok"
	OutcomeError = "error"
)

// Collector holds all run metrics in a private registry.
type Collector struct {
	registry *prometheus.Registry

	ReportsProcessed *prometheus.CounterVec // labels: project
	ScoredPairs      prometheus.Counter
	Skipped          *prometheus.CounterVec // labels: reason
	CodeBLEU         prometheus.Histogram

	JudgeRequests *prometheus.CounterVec // labels: outcome
	JudgeLatency  prometheus.Histogram

	BusPublished *prometheus.CounterVec // labels: topic, outcome
	BusLatency   *prometheus.HistogramVec

	CacheHits   *prometheus.CounterVec // labels: type
	CacheMisses *prometheus.CounterVec // labels: type

	RunDuration prometheus.Gauge
	startTime   time.Time
}

// New creates a collector with every metric registered.
func New() *Collector {
	reg := prometheus.NewRegistry()
	f := promauto.With(reg)

	return &Collector{
		registry: reg,

		ReportsProcessed: f.NewCounterVec(prometheus.CounterOpts{
			Name: "bugeval_reports_processed_total",
			Help: "Bug reports processed, by project",
		}, []string{"project"}),
		ScoredPairs: f.NewCounter(prometheus.CounterOpts{
			Name: "bugeval_scored_pairs_total",
			Help: "Candidate and ground-truth method pairs scored",
		}),
		Skipped: f.NewCounterVec(prometheus.CounterOpts{
			Name: "bugeval_skipped_total",
			Help: "Reports or candidates skipped, by reason",
		}, []string{"reason"}),
		CodeBLEU: f.NewHistogram(prometheus.HistogramOpts{
			Name:    "bugeval_codebleu",
			Help:    "Distribution of composite similarity scores",
			Buckets: prometheus.LinearBuckets(0.1, 0.1, 10),
		}),

		JudgeRequests: f.NewCounterVec(prometheus.CounterOpts{
			Name: "bugeval_judge_requests_total",
			Help: "LLM judge requests, by outcome",
		}, []string{"outcome"}),
		JudgeLatency: f.NewHistogram(prometheus.HistogramOpts{
			Name:    "bugeval_judge_request_duration_seconds",
			Help:    "LLM judge request latency",
			Buckets: prometheus.ExponentialBuckets(0.5, 2, 8),
		}),

		BusPublished: f.NewCounterVec(prometheus.CounterOpts{
			Name: "bugeval_bus_publish_total",
			Help: "Events published on the bus, by topic and outcome",
		}, []string{"topic", "outcome"}),
		BusLatency: f.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "bugeval_bus_publish_duration_seconds",
			Help:    "Bus publish latency",
			Buckets: prometheus.DefBuckets,
		}, []string{"topic"}),

		CacheHits: f.NewCounterVec(prometheus.CounterOpts{
			Name: "bugeval_cache_hits_total",
			Help: "Method cache hits, by cache type",
		}, []string{"type"}),
		CacheMisses: f.NewCounterVec(prometheus.CounterOpts{
			Name: "bugeval_cache_misses_total",
			Help: "Method cache misses, by cache type",
		}, []string{"type"}),

		RunDuration: f.NewGauge(prometheus.GaugeOpts{
			Name: "bugeval_run_duration_seconds",
			Help: "Wall time of the run when metrics were written",
		}),
		startTime: time.Now(),
	}
}

// Registry returns the underlying registry.
func (c *Collector) Registry() *prometheus.Registry {
	return c.registry
}

// RecordReport counts one processed report.
func (c *Collector) RecordReport(project string) {
	c.ReportsProcessed.WithLabelValues(project).Inc()
}

// RecordScore counts one scored pair and observes its composite score.
func (c *Collector) RecordScore(codebleu float64) {
	c.ScoredPairs.Inc()
	c.CodeBLEU.Observe(codebleu)
}

// RecordSkip counts one skip.
func (c *Collector) RecordSkip(reason string) {
	c.Skipped.WithLabelValues(reason).Inc()
}

// RecordJudgeRequest counts one LLM call and its latency.
func (c *Collector) RecordJudgeRequest(d time.Duration, err error) {
	c.JudgeRequests.WithLabelValues(outcome(err)).Inc()
	c.JudgeLatency.Observe(d.Seconds())
}

// RecordBusPublish implements bus.MetricsRecorder.
func (c *Collector) RecordBusPublish(topic string, latencyMs int64, err error) {
	c.BusPublished.WithLabelValues(topic, outcome(err)).Inc()
	c.BusLatency.WithLabelValues(topic).Observe(float64(latencyMs) / 1000)
}

// RecordCacheHit implements cache.Metrics.
func (c *Collector) RecordCacheHit(cacheType string) {
	c.CacheHits.WithLabelValues(cacheType).Inc()
}

// RecordCacheMiss implements cache.Metrics.
func (c *Collector) RecordCacheMiss(cacheType string) {
	c.CacheMisses.WithLabelValues(cacheType).Inc()
}

// WriteTextfile writes every metric to path in the text exposition format.
// The write is atomic, so a node-exporter never reads a partial file.
func (c *Collector) WriteTextfile(path string) error {
	c.RunDuration.Set(time.Since(c.startTime).Seconds())

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return errors.InternalError("failed to create metrics directory", err)
	}
	if err := prometheus.WriteToTextfile(path, c.registry); err != nil {
		return errors.InternalError("failed to write metrics textfile", err)
	}
	return nil
}

func outcome(err error) string {
	if err != nil {
		return OutcomeError
	}
	return OutcomeOK
}

// Package telemetry keeps Prometheus statistics about scholar-fetch runs and
// can dump them for node_exporter's textfile collector.
package telemetry

import (
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	scholar "github.com/compscidr/scholar-snapshot"
)

// Stats owns a private registry so repeated construction in tests never
// collides with the global one.
type Stats struct {
	registry       *prometheus.Registry
	runs           *prometheus.CounterVec
	publications   prometheus.Gauge
	totalCitations prometheus.Gauge
	fetchDuration  prometheus.Histogram
	lastRun        prometheus.Gauge
}

func New() *Stats {
	s := &Stats{
		registry: prometheus.NewRegistry(),
		runs: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "scholar_runs_total",
				Help: "Snapshot runs, labeled by extraction outcome and persistence action.",
			},
			[]string{"outcome", "action"},
		),
		publications: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "scholar_publications",
			Help: "Publications extracted by the last successful run.",
		}),
		totalCitations: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "scholar_total_citations",
			Help: "Total citations reported by the last successful run.",
		}),
		fetchDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "scholar_fetch_duration_seconds",
			Help:    "Time spent fetching the profile page.",
			Buckets: []float64{0.1, 0.25, 0.5, 1, 2, 5, 10, 30},
		}),
		lastRun: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "scholar_last_run_timestamp_seconds",
			Help: "Unix time the last run finished.",
		}),
	}
	s.registry.MustRegister(s.runs, s.publications, s.totalCitations, s.fetchDuration, s.lastRun)
	return s
}

// Registry exposes the underlying registry, mainly for tests.
func (s *Stats) Registry() *prometheus.Registry {
	return s.registry
}

// ObserveRun implements scholar.Recorder.
func (s *Stats) ObserveRun(report scholar.Report, err error) {
	s.lastRun.Set(float64(time.Now().Unix()))
	if report.FetchDuration > 0 {
		s.fetchDuration.Observe(report.FetchDuration.Seconds())
	}
	if err != nil {
		s.runs.WithLabelValues("error", "none").Inc()
		return
	}
	s.runs.WithLabelValues(report.Outcome.String(), report.Action.String()).Inc()
	if report.Outcome == scholar.OutcomeSuccess {
		s.publications.Set(float64(report.Publications))
		s.totalCitations.Set(float64(report.TotalCitations))
	}
}

// WriteTextfile writes the registry in text exposition format. An empty
// path is a no-op.
func (s *Stats) WriteTextfile(path string) error {
	if path == "" {
		return nil
	}
	if err := prometheus.WriteToTextfile(path, s.registry); err != nil {
		return fmt.Errorf("write metrics textfile %s: %w", path, err)
	}
	return nil
}

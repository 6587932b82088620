package engine

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/iWorld-y/workforce_radar/app/workforce_radar/pkg/model"
)

var (
	batchRuns = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "workforce_radar",
		Subsystem: "batch",
		Name:      "runs_total",
		Help:      "Runs seen by the comparative batch broken down by how their metric was obtained.",
	}, []string{"source"})

	batchIssues = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "workforce_radar",
		Subsystem: "batch",
		Name:      "issues_total",
		Help:      "Skipped or degraded items broken down by issue kind.",
	}, []string{"kind"})

	batchDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: "workforce_radar",
		Subsystem: "batch",
		Name:      "duration_seconds",
		Help:      "Wall time of one comparative batch.",
		Buckets:   prometheus.ExponentialBuckets(0.05, 2, 12),
	})

	metricWriteFailures = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "workforce_radar",
		Subsystem: "store",
		Name:      "metric_write_failures_total",
		Help:      "Recomputed workforce metrics that could not be persisted.",
	})
)

const (
	sourceStored     = "stored"
	sourceRecomputed = "recomputed"
	sourceNoSignal   = "no_signal"
	sourceMissing    = "missing"
)

func recordRun(source string) {
	batchRuns.WithLabelValues(source).Inc()
}

func recordIssues(issues []model.Issue) {
	for _, is := range issues {
		batchIssues.WithLabelValues(string(is.Kind)).Inc()
	}
}

func observeBatch(start time.Time) {
	batchDuration.Observe(time.Since(start).Seconds())
}

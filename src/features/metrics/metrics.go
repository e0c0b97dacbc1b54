// Package metrics exposes Prometheus metrics for reconciliation runs.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/polaMikhail/directory-sync/src/mirror"
)

// Recorder collects run and action metrics.
type Recorder struct {
	runsTotal    *prometheus.CounterVec
	actionsTotal *prometheus.CounterVec
	runDuration  prometheus.Histogram
	lastRunTime  prometheus.Gauge
	sourceFiles  prometheus.Gauge
}

// NewRecorder registers the collectors on the given registerer.
func NewRecorder(reg prometheus.Registerer) *Recorder {
	factory := promauto.With(reg)
	return &Recorder{
		runsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "dirsync",
			Name:      "runs_total",
			Help:      "Reconciliation runs by trigger and status.",
		}, []string{"trigger", "status"}),
		actionsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "dirsync",
			Name:      "actions_total",
			Help:      "Applied reconciliation actions by kind and outcome.",
		}, []string{"kind", "outcome"}),
		runDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: "dirsync",
			Name:      "run_duration_seconds",
			Help:      "Duration of reconciliation runs.",
			Buckets:   prometheus.ExponentialBuckets(0.01, 4, 8),
		}),
		lastRunTime: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: "dirsync",
			Name:      "last_run_timestamp_seconds",
			Help:      "Unix time of the most recent finished run.",
		}),
		sourceFiles: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: "dirsync",
			Name:      "source_files",
			Help:      "Files seen in the source tree during the last scan.",
		}),
	}
}

// ObserveRun records one finished reconciliation run.
func (r *Recorder) ObserveRun(report *mirror.Report, status mirror.RunStatus) {
	r.runsTotal.WithLabelValues(report.Trigger, string(status)).Inc()
	r.actionsTotal.WithLabelValues(string(mirror.ActionCopy), "success").Add(float64(report.Copied))
	r.actionsTotal.WithLabelValues(string(mirror.ActionDelete), "success").Add(float64(report.Deleted))
	r.actionsTotal.WithLabelValues(string(mirror.ActionSkip), "success").Add(float64(report.Skipped))
	for _, failure := range report.Failures {
		r.actionsTotal.WithLabelValues(string(failure.Kind), "failure").Inc()
	}
	r.runDuration.Observe(report.Duration().Seconds())
	r.lastRunTime.SetToCurrentTime()
}

// ObserveScanFailure records a run that died before applying anything.
func (r *Recorder) ObserveScanFailure(trigger string) {
	r.runsTotal.WithLabelValues(trigger, string(mirror.RunFailed)).Inc()
}

// SetSourceFiles records the size of the latest source snapshot.
func (r *Recorder) SetSourceFiles(n int) {
	r.sourceFiles.Set(float64(n))
}

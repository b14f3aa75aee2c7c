package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	RunsProcessedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "truthlens_runs_processed_total",
		Help: "Total number of analysis runs processed, by status",
	}, []string{"status"})

	RunStageDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "truthlens_run_stage_duration_seconds",
		Help:    "Duration of each analysis run stage",
		Buckets: []float64{0.1, 0.5, 1, 2, 5, 10, 30, 60, 120},
	}, []string{"stage"})

	FramesSampledTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "truthlens_frames_sampled_total",
		Help: "Total number of thumbnails sampled across all runs",
	})

	ActiveRuns = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "truthlens_active_runs",
		Help: "Number of analysis runs currently in progress",
	})

	RetryTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "truthlens_retry_total",
		Help: "Total number of retries",
	}, []string{"attempt"})

	SeekTimeoutsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "truthlens_seek_timeouts_total",
		Help: "Total number of runs that failed on a seek timeout",
	})
)

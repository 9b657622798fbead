package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const metricPrefix = "factoryline_"

const (
	ResultSuccess = "success"
	ResultError   = "error"
	ResultSkipped = "skipped"
)

var (
	downtimeRunDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    metricPrefix + "downtime_run_seconds",
			Help:    "Incremental downtime calculation duration",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"result"},
	)
	downtimeIntervalsEmitted = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: metricPrefix + "downtime_intervals_emitted_total",
			Help: "Calculated downtime intervals persisted",
		},
	)
	checkpointConflicts = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: metricPrefix + "downtime_checkpoint_conflicts_total",
			Help: "Incremental runs skipped because the checkpoint moved",
		},
	)
	oeeComputeDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    metricPrefix + "oee_compute_seconds",
			Help:    "OEE aggregation duration",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"result"},
	)
)

func init() {
	prometheus.MustRegister(
		downtimeRunDuration,
		downtimeIntervalsEmitted,
		checkpointConflicts,
		oeeComputeDuration,
	)
}

// ObserveDowntimeRun records one incremental calculation.
func ObserveDowntimeRun(result string, elapsed time.Duration, emitted int) {
	downtimeRunDuration.WithLabelValues(result).Observe(elapsed.Seconds())
	if emitted > 0 {
		downtimeIntervalsEmitted.Add(float64(emitted))
	}
}

// IncCheckpointConflict records a benign checkpoint skip.
func IncCheckpointConflict() {
	checkpointConflicts.Inc()
}

// ObserveOEECompute records one aggregation request.
func ObserveOEECompute(result string, elapsed time.Duration) {
	oeeComputeDuration.WithLabelValues(result).Observe(elapsed.Seconds())
}

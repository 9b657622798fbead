package metrics

import (
	"database/sql"
	"log"

	"github.com/prometheus/client_golang/prometheus"
)

// RegisterDBMetrics exposes gauges over the downtime store. Call once at
// startup after the pool is open.
func RegisterDBMetrics(db *sql.DB, logger *log.Logger) {
	prometheus.MustRegister(prometheus.NewGaugeFunc(
		prometheus.GaugeOpts{
			Name: metricPrefix + "downtime_events_calculated",
			Help: "Persisted calculated downtime intervals",
		},
		func() float64 {
			return queryCount(db, logger, "SELECT COUNT(*) FROM downtime_events WHERE source = 'calculated'")
		},
	))

	prometheus.MustRegister(prometheus.NewGaugeFunc(
		prometheus.GaugeOpts{
			Name: metricPrefix + "downtime_events_manual",
			Help: "Persisted operator-entered downtime intervals",
		},
		func() float64 {
			return queryCount(db, logger, "SELECT COUNT(*) FROM downtime_events WHERE source = 'db'")
		},
	))
}

func queryCount(db *sql.DB, logger *log.Logger, query string) float64 {
	if db == nil {
		return 0
	}
	var count int64
	if err := db.QueryRow(query).Scan(&count); err != nil {
		if logger != nil {
			logger.Printf("metrics query failed: %v", err)
		}
		return 0
	}
	if count < 0 {
		return 0
	}
	return float64(count)
}

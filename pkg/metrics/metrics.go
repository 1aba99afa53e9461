// Package metrics provides Prometheus collectors for table loads.
//
// # Basic Usage
//
//	timer := metrics.NewTimer()
//	tbl, err := table.Load[int64](ctx, r, ',')
//	metrics.ObserveLoad("int64", timer, err)
//
// Collectors are registered with the default Prometheus registry on import.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	// StatusSuccess labels a load that produced a table
	StatusSuccess = "success"
	// StatusFailure labels a load that was aborted
	StatusFailure = "failure"

	// ReasonPadded labels rows that were zero-padded to the column count
	ReasonPadded = "padded"
	// ReasonTruncated labels rows whose extra segments were dropped
	ReasonTruncated = "truncated"
)

var (
	// LoadsTotal counts load attempts.
	// Labels: kind (scalar type of the table), status (success/failure)
	LoadsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "delimtab_loads_total",
			Help: "Total number of table loads",
		},
		[]string{"kind", "status"},
	)

	// RowsLoaded counts data rows appended to tables.
	RowsLoaded = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "delimtab_rows_loaded_total",
			Help: "Total number of data rows loaded",
		},
		[]string{"kind"},
	)

	// FieldsCoerced counts numeric fields replaced by the zero value.
	FieldsCoerced = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "delimtab_fields_coerced_total",
			Help: "Total number of malformed fields coerced to zero",
		},
		[]string{"kind"},
	)

	// RowsReshaped counts rows whose segment count differed from the column count.
	// Labels: kind, reason (padded/truncated)
	RowsReshaped = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "delimtab_rows_reshaped_total",
			Help: "Total number of rows padded or truncated to the column count",
		},
		[]string{"kind", "reason"},
	)

	// LoadDuration tracks how long a full load takes.
	LoadDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "delimtab_load_duration_seconds",
			Help:    "Duration of table loads in seconds",
			Buckets: prometheus.ExponentialBuckets(0.0001, 4, 10),
		},
		[]string{"kind"},
	)
)

// Timer measures elapsed time from creation
type Timer struct {
	start time.Time
}

// NewTimer starts a timer
func NewTimer() *Timer {
	return &Timer{start: time.Now()}
}

// Elapsed returns the time since the timer started
func (t *Timer) Elapsed() time.Duration {
	return time.Since(t.start)
}

// ObserveLoad records the outcome and duration of one load
func ObserveLoad(kind string, timer *Timer, err error) {
	status := StatusSuccess
	if err != nil {
		status = StatusFailure
	}
	LoadsTotal.WithLabelValues(kind, status).Inc()
	LoadDuration.WithLabelValues(kind).Observe(timer.Elapsed().Seconds())
}

// ObserveRows records per-row counters for a successful load
func ObserveRows(kind string, rows, padded, truncated, coerced int) {
	RowsLoaded.WithLabelValues(kind).Add(float64(rows))
	if padded > 0 {
		RowsReshaped.WithLabelValues(kind, ReasonPadded).Add(float64(padded))
	}
	if truncated > 0 {
		RowsReshaped.WithLabelValues(kind, ReasonTruncated).Add(float64(truncated))
	}
	if coerced > 0 {
		FieldsCoerced.WithLabelValues(kind).Add(float64(coerced))
	}
}

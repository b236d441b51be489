package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Prometheus metrics for the tracker backend

var (
	// Provider API metrics
	ProviderCallsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cfbtracker_provider_calls_total",
			Help: "Total number of CollegeFootballData API calls",
		},
		[]string{"endpoint", "status"},
	)

	ProviderCallDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "cfbtracker_provider_call_duration_seconds",
			Help:    "Duration of provider API calls in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"endpoint"},
	)

	// Import pipeline metrics
	ImportRecordsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cfbtracker_import_records_total",
			Help: "Reconciled records by stage and outcome",
		},
		[]string{"stage", "outcome"},
	)

	ImportRunsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cfbtracker_import_runs_total",
			Help: "Season imports by final state",
		},
		[]string{"state"},
	)

	ImportDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "cfbtracker_import_duration_seconds",
			Help:    "Duration of full season imports in seconds",
			Buckets: []float64{1, 5, 15, 30, 60, 120, 300, 600},
		},
	)

	// Attendance metrics
	AttendanceMarksTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cfbtracker_attendance_marks_total",
			Help: "Attendance marking operations by outcome",
		},
		[]string{"outcome"},
	)

	// Cache metrics
	CacheHitsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cfbtracker_cache_hits_total",
			Help: "Cache lookups by result",
		},
		[]string{"result"},
	)
)

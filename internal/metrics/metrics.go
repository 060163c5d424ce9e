package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	CapacityCalculations = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "finplan_capacity_calculations_total",
			Help: "Total number of capacity calculations by resulting risk band",
		},
		[]string{"risk_band"},
	)

	StrategyApplications = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "finplan_strategy_applications_total",
			Help: "Total number of one-shot strategy applications",
		},
		[]string{"strategy"},
	)

	Projections = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "finplan_projections_total",
			Help: "Total number of debt projections computed",
		},
		[]string{"strategy"},
	)

	ActiveSessions = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "finplan_active_sessions",
			Help: "Number of live planning sessions",
		},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "finplan_http_request_duration_seconds",
			Help:    "Duration of HTTP requests in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"route", "method", "status"},
	)
)

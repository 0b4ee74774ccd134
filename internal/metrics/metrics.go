// Package metrics defines prometheus metrics to expose
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	RequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "careermind_api_request_duration_seconds",
			Help:    "Total time taken for requests in seconds",
			Buckets: []float64{.01, .05, .1, .5, 1, 2.5, 5, 10, 15, 20, 30, 60, 120, 300},
		},
		[]string{"path"},
	)

	GenerationDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "careermind_api_generation_duration_seconds",
			Help:    "Time spent inside the model generate call in seconds",
			Buckets: []float64{.5, 1, 2.5, 5, 10, 15, 20, 25, 30, 40, 50, 75, 100, 150, 200},
		},
		[]string{"model"},
	)

	GenerationCount = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "careermind_api_generation_count_total",
			Help: "Total number of roadmap generations by outcome",
		},
		[]string{"model", "status"},
	)

	ErrorCount = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "careermind_api_error_count",
			Help: "Error count",
		},
		[]string{"model", "endpoint", "code"},
	)

	InflightGenerations = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "careermind_api_inflight_generations",
			Help: "Current Inflight Generations",
		},
		[]string{"model"},
	)

	SlotWait = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "careermind_api_slot_wait_seconds",
			Help:    "Time spent waiting for a generation slot in seconds",
			Buckets: []float64{.001, .01, .1, .5, 1, 2.5, 5, 10, 30, 60},
		},
		[]string{"model"},
	)

	AnalysisCount = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "careermind_api_ats_analysis_total",
			Help: "Total number of resume analyses by mode and outcome",
		},
		[]string{"mode", "status"},
	)

	MarketQueries = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "careermind_api_market_queries_total",
			Help: "Total number of job market queries",
		},
		[]string{"view"},
	)

	ResponseCodes = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "careermind_api_status_code",
			Help: "Status Codes",
		},
		[]string{"path", "status_code"},
	)
)

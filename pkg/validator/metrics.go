package validator

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	validationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "rgvalidator_validations_total",
			Help: "Total number of validation requests by result",
		},
		[]string{"result"}, // ok, invalid, error
	)

	validationScore = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "rgvalidator_validation_score",
			Help:    "Total points of completed validations",
			Buckets: []float64{-20, -10, 0, 10, 20, 30},
		},
	)

	checkTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "rgvalidator_check_total",
			Help: "Total number of scored checks by check and outcome",
		},
		[]string{"check", "outcome"}, // outcome: passed or failed
	)

	lookupDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "rgvalidator_lookup_duration_seconds",
			Help:    "Time taken by directory lookups",
			Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		},
		[]string{"directory", "outcome"}, // directory: resource_group or virtual_machine
	)
)

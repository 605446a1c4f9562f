package services

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Grading passes by outcome: graded, regraded, invalid, conflict, error
	gradingAttempts = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "assessment_grading_attempts_total",
			Help: "Total number of grading passes",
		},
		[]string{"status"},
	)

	gradingDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "assessment_grading_duration_seconds",
			Help:    "Time spent grading one attempt, including store access",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"status"},
	)

	gradedScores = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "assessment_graded_percentage_score",
			Help:    "Distribution of graded percentage scores",
			Buckets: prometheus.LinearBuckets(10, 10, 10),
		},
	)

	analyticsRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "assessment_analytics_requests_total",
			Help: "Total number of analytics computations",
		},
		[]string{"view"},
	)

	questionsIngested = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "assessment_generated_questions_total",
			Help: "Generated questions received from the question generation service",
		},
		[]string{"outcome"},
	)
)

package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const (
	FeedbackConfirmed = "confirmed"
	FeedbackCorrected = "corrected"
	FeedbackDuplicate = "duplicate"
	FeedbackError     = "error"
)

var (
	classificationsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "gut_assistant",
			Name:      "classifications_total",
			Help:      "Messages classified, partitioned by intent and response provenance.",
		},
		[]string{"intent", "provenance"},
	)

	feedbackTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "gut_assistant",
			Name:      "feedback_total",
			Help:      "Feedback submissions, partitioned by outcome.",
		},
		[]string{"outcome"},
	)

	httpRequestSeconds = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "gut_assistant",
			Name:      "http_request_seconds",
			Help:      "HTTP request latency in seconds.",
			Buckets:   []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5},
		},
		[]string{"method", "route", "status"},
	)
)

// Register attaches the collectors to reg. Registering twice is not an error.
func Register(reg prometheus.Registerer) error {
	collectors := []prometheus.Collector{
		classificationsTotal,
		feedbackTotal,
		httpRequestSeconds,
	}

	for _, collector := range collectors {
		if err := reg.Register(collector); err != nil {
			if _, ok := err.(prometheus.AlreadyRegisteredError); ok {
				continue
			}
			return err
		}
	}
	return nil
}

func ObserveClassification(intent, provenance string) {
	classificationsTotal.WithLabelValues(intent, provenance).Inc()
}

func ObserveFeedback(outcome string) {
	switch outcome {
	case FeedbackConfirmed, FeedbackCorrected, FeedbackDuplicate:
	default:
		outcome = FeedbackError
	}
	feedbackTotal.WithLabelValues(outcome).Inc()
}

func ObserveHTTP(method, route, status string, duration time.Duration) {
	if route == "" {
		route = "unknown"
	}
	if duration < 0 {
		duration = 0
	}
	httpRequestSeconds.WithLabelValues(method, route, status).Observe(duration.Seconds())
}

package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"animewatch/internal/recognition"
)

// Metrics holds directly instrumented recognition metrics.
type Metrics struct {
	Recognitions        *prometheus.CounterVec
	RecognitionDuration *prometheus.HistogramVec
	FuzzyConfidence     prometheus.Histogram
}

// New creates and registers recognition metrics with the given registry.
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		Recognitions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "animewatch",
			Subsystem: "tracker",
			Name:      "recognitions_total",
			Help:      "Recognitions served by the tracker, by result kind.",
		}, []string{"kind"}),
		RecognitionDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "animewatch",
			Subsystem: "tracker",
			Name:      "recognition_duration_seconds",
			Help:      "Time spent inside the recognition engine, by answering tier.",
			Buckets:   []float64{0.00001, 0.0001, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1},
		}, []string{"tier"}),
		FuzzyConfidence: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "animewatch",
			Subsystem: "tracker",
			Name:      "fuzzy_confidence",
			Help:      "Confidence of fuzzy matches.",
			Buckets:   []float64{0.6, 0.7, 0.8, 0.9, 0.95, 1},
		}),
	}

	reg.MustRegister(
		m.Recognitions,
		m.RecognitionDuration,
		m.FuzzyConfidence,
	)
	return m
}

// ObserveRecognition implements tracker.Observer.
func (m *Metrics) ObserveRecognition(result recognition.MatchResult, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.Recognitions.WithLabelValues(result.Kind.String()).Inc()
	m.RecognitionDuration.WithLabelValues(result.Tier.String()).Observe(elapsed.Seconds())
	if result.Kind == recognition.Fuzzy && result.Tier == recognition.TierFuzzy {
		m.FuzzyConfidence.Observe(result.Confidence)
	}
}

package llm

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics records chat completion calls.
type Metrics struct {
	requests         *prometheus.CounterVec
	duration         *prometheus.HistogramVec
	promptTokens     *prometheus.HistogramVec
	completionTokens *prometheus.HistogramVec
}

// NewMetrics registers the LLM collectors with reg. A nil reg uses the
// default registerer.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	factory := promauto.With(reg)

	return &Metrics{
		requests: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "annotate",
			Subsystem: "llm",
			Name:      "requests_total",
			Help:      "Chat completion calls by provider, model and outcome.",
		}, []string{"provider", "model", "status"}),
		duration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "annotate",
			Subsystem: "llm",
			Name:      "request_duration_seconds",
			Help:      "Latency of chat completion calls.",
			Buckets:   prometheus.ExponentialBuckets(0.25, 2, 10),
		}, []string{"provider", "model"}),
		promptTokens: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "annotate",
			Subsystem: "llm",
			Name:      "prompt_tokens",
			Help:      "Estimated prompt tokens per call.",
			Buckets:   prometheus.LinearBuckets(250, 250, 20),
		}, []string{"provider", "model"}),
		completionTokens: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "annotate",
			Subsystem: "llm",
			Name:      "completion_tokens",
			Help:      "Estimated completion tokens per call.",
			Buckets:   prometheus.LinearBuckets(50, 50, 20),
		}, []string{"provider", "model"}),
	}
}

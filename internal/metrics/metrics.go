package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	OutcomeOK            = "ok"
	OutcomeNotConfigured = "not_configured"
	OutcomeUpstream      = "upstream_error"
	OutcomeError         = "error"

	SpeechDone    = "done"
	SpeechFailed  = "failed"
	SpeechSkipped = "skipped"
)

var (
	replies = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "wacrm",
		Name:      "replies_total",
		Help:      "Reply orchestrations by provider and outcome.",
	}, []string{"provider", "outcome"})

	speech = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "wacrm",
		Name:      "speech_total",
		Help:      "Speech synthesis attempts by outcome.",
	}, []string{"outcome"})

	providerLatency = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "wacrm",
		Name:      "provider_latency_seconds",
		Help:      "Language model call latency.",
		Buckets:   []float64{0.1, 0.25, 0.5, 1, 2, 4, 8, 15, 30, 60},
	}, []string{"provider"})
)

func RecordReply(provider, outcome string) {
	if provider == "" {
		provider = "none"
	}
	replies.WithLabelValues(provider, outcome).Inc()
}

func RecordSpeech(outcome string) {
	speech.WithLabelValues(outcome).Inc()
}

func ObserveProvider(provider string, d time.Duration) {
	providerLatency.WithLabelValues(provider).Observe(d.Seconds())
}

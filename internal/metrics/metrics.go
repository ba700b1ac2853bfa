package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// healthdesk_http_requests_total{route,status}
	HTTPRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "healthdesk_http_requests_total",
		Help: "HTTP requests handled, by route and status code",
	}, []string{"route", "status"})

	// healthdesk_http_request_duration_seconds{route}
	HTTPLatency = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "healthdesk_http_request_duration_seconds",
		Help:    "HTTP request latency in seconds",
		Buckets: prometheus.DefBuckets,
	}, []string{"route"})

	// healthdesk_chat_replies_total{outcome=greeting|thanks|answered|fallback}
	ChatReplies = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "healthdesk_chat_replies_total",
		Help: "Chatbot replies by how they were produced",
	}, []string{"outcome"})

	// healthdesk_chat_match_score observes the best similarity of indexed lookups.
	ChatMatchScore = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "healthdesk_chat_match_score",
		Help:    "Best lexical similarity score for chat messages reaching the index",
		Buckets: prometheus.LinearBuckets(0, 0.1, 11),
	})

	// healthdesk_risk_assessments_total{tier=low|medium|high}
	RiskAssessments = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "healthdesk_risk_assessments_total",
		Help: "Completed risk assessments by tier",
	}, []string{"tier"})

	// healthdesk_errors_total{kind=validation|unavailable|internal}
	Errors = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "healthdesk_errors_total",
		Help: "Errors returned to API callers by kind",
	}, []string{"kind"})

	// healthdesk_faq_entries is the size of the loaded corpus.
	FAQEntries = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "healthdesk_faq_entries",
		Help: "Number of FAQ entries in the lexical index",
	})
)

func RecordChatReply(outcome string) {
	ChatReplies.WithLabelValues(outcome).Inc()
}

func RecordRiskTier(tier string) {
	RiskAssessments.WithLabelValues(tier).Inc()
}

func RecordError(kind string) {
	Errors.WithLabelValues(kind).Inc()
}

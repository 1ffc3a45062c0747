package service

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	deliveryKindWelcome    = "welcome"
	deliveryKindNewsletter = "newsletter"

	resultSuccess = "success"
	resultFailure = "failure"
)

// Metrics are the domain counters exposed next to the HTTP ones.
type Metrics struct {
	subscriptions prometheus.Counter
	confirmations prometheus.Counter
	deliveries    *prometheus.CounterVec
	skipped       prometheus.Counter
}

func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		subscriptions: factory.NewCounter(prometheus.CounterOpts{
			Name: "newsletter_subscriptions_total",
			Help: "Number of accepted sign-ups",
		}),
		confirmations: factory.NewCounter(prometheus.CounterOpts{
			Name: "newsletter_confirmations_total",
			Help: "Number of successful confirmations, repeats included",
		}),
		deliveries: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "newsletter_deliveries_total",
			Help: "Outbound email attempts by message kind and result",
		}, []string{"kind", "result"}),
		skipped: factory.NewCounter(prometheus.CounterOpts{
			Name: "newsletter_skipped_subscribers_total",
			Help: "Confirmed subscribers skipped during publish because their stored email is invalid",
		}),
	}
}

func (m *Metrics) delivery(kind string, err error) {
	result := resultSuccess
	if err != nil {
		result = resultFailure
	}
	m.deliveries.WithLabelValues(kind, result).Inc()
}

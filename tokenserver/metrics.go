package tokenserver

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type metrics struct {
	tokensIssued    *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
}

func newMetrics(reg prometheus.Registerer) *metrics {
	factory := promauto.With(reg)
	return &metrics{
		tokensIssued: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "ipm_quickstart",
			Name:      "tokens_issued_total",
			Help:      "Access tokens handed out, by outcome.",
		}, []string{"outcome"}),
		requestDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "ipm_quickstart",
			Name:      "http_request_duration_seconds",
			Help:      "Token server request latency.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"route", "status"}),
	}
}

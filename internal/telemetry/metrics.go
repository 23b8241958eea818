package telemetry

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	ResolutionsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "payment_result_resolutions_total",
		Help: "Payment results resolved, by outcome.",
	}, []string{"outcome"})

	LookupDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "payment_result_lookup_duration_seconds",
		Help:    "Latency of backend lookups, by source and result.",
		Buckets: prometheus.DefBuckets,
	}, []string{"source", "result"})

	CartClearsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "payment_result_cart_clears_total",
		Help: "Cart clear side effects, by result.",
	}, []string{"result"})
)

package txhandler

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	prometheusBatches    prometheus.Counter
	prometheusAccepted   prometheus.Counter
	prometheusDuplicates prometheus.Counter
	prometheusRejected   *prometheus.CounterVec

	// only init the metrics once
	prometheusMetricsInitOnce sync.Once
)

func initPrometheusMetrics() {
	prometheusMetricsInitOnce.Do(_initPrometheusMetrics)
}

func _initPrometheusMetrics() {
	prometheusBatches = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "scrooge_txhandler_batches",
			Help: "Number of handled transaction batches",
		},
	)
	prometheusAccepted = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "scrooge_txhandler_accepted",
			Help: "Number of accepted transactions",
		},
	)
	prometheusDuplicates = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "scrooge_txhandler_duplicates",
			Help: "Number of duplicate transactions collapsed in batches",
		},
	)
	prometheusRejected = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "scrooge_txhandler_rejected",
			Help: "Number of rejected transactions",
		},
		[]string{
			"reason", // reason of the rejection
		},
	)
}

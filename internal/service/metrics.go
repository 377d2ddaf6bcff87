package service

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	engineOpsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "rld",
			Subsystem: "engine",
			Name:      "ops_total",
			Help:      "Total pack/unpack/forward operations by result",
		},
		[]string{"op", "model", "result"},
	)

	engineOpDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "rld",
			Subsystem: "engine",
			Name:      "op_duration_seconds",
			Help:      "Duration of engine operations in seconds",
			Buckets:   prometheus.ExponentialBuckets(0.00001, 4, 10),
		},
		[]string{"op"},
	)
)

func init() {
	prometheus.MustRegister(engineOpsTotal, engineOpDuration)
}

// unknownModel labels operations whose model id did not resolve, keeping
// client-supplied ids out of the label set.
const unknownModel = "unknown"

// observe records one operation. Call as: defer observe("pack", id, time.Now(), &err)
func observe(op, model string, start time.Time, errp *error) {
	result := "ok"
	switch {
	case *errp == nil:
	case IsModelNotFound(*errp):
		result = "not_found"
		model = unknownModel
	case IsBadInput(*errp):
		result = "bad_input"
	default:
		result = "error"
	}
	engineOpsTotal.WithLabelValues(op, model, result).Inc()
	engineOpDuration.WithLabelValues(op).Observe(time.Since(start).Seconds())
}

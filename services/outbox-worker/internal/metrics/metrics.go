package metrics

import "github.com/prometheus/client_golang/prometheus"

var (
	OutboxSentTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "outbox_sent_total",
		Help: "Outbox events published to the broker",
	}, []string{"event_type"})
	OutboxPublishErrorsTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "outbox_publish_errors_total",
		Help: "Failed outbox publish attempts",
	})
	OutboxDroppedTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "outbox_dropped_total",
		Help: "Outbox events abandoned after the last allowed attempt",
	})
	OutboxPending = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "outbox_pending",
		Help: "Outbox events not yet sent",
	})
)

func init() {
	prometheus.MustRegister(OutboxSentTotal, OutboxPublishErrorsTotal, OutboxDroppedTotal, OutboxPending)
}

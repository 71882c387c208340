package messaging

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	published = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "chatmesh_events_published_total",
		Help: "Events accepted by the broker channel, by exchange and routing key.",
	}, []string{"exchange", "routing_key"})

	publishFailures = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "chatmesh_events_publish_failures_total",
		Help: "Publish attempts that returned false (disabled, mid-reconnect, or rejected).",
	}, []string{"exchange", "routing_key"})

	consumed = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "chatmesh_events_consumed_total",
		Help: "Messages delivered to a consumer, by queue.",
	}, []string{"queue"})

	acked = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "chatmesh_events_acked_total",
		Help: "Messages acknowledged after successful handling, by queue.",
	}, []string{"queue"})

	nacked = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "chatmesh_events_nacked_total",
		Help: "Messages rejected without requeue, by queue and reason.",
	}, []string{"queue", "reason"})

	reconnects = promauto.NewCounter(prometheus.CounterOpts{
		Name: "chatmesh_broker_connects_total",
		Help: "Successful broker connects, including reconnects.",
	})
)

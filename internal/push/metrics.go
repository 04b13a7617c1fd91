package push

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	pushesTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: "task_reminder",
			Subsystem: "push",
			Name:      "payloads_total",
			Help:      "Push payloads received.",
		},
	)

	displayFailuresTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: "task_reminder",
			Subsystem: "push",
			Name:      "display_failures_total",
			Help:      "Notifications the platform failed to show.",
		},
	)

	clicksTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "task_reminder",
			Subsystem: "push",
			Name:      "clicks_total",
			Help:      "Notification clicks by resulting action.",
		},
		[]string{"action"},
	)

	connectedClients = promauto.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "task_reminder",
			Subsystem: "push",
			Name:      "connected_clients",
			Help:      "Client windows connected to the worker.",
		},
	)
)

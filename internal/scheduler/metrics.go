package scheduler

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	resourceReminders = "reminders"
	resourceNotes     = "notes"
	resourceHistory   = "history"

	outcomeSuccess = "success"
	outcomeFailure = "failure"
)

var (
	refreshTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "task_reminder",
			Subsystem: "sync",
			Name:      "refresh_total",
			Help:      "Cache refreshes by resource and outcome.",
		},
		[]string{"resource", "outcome"},
	)

	mutationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "task_reminder",
			Subsystem: "sync",
			Name:      "mutations_total",
			Help:      "Store mutations by kind and outcome.",
		},
		[]string{"mutation", "outcome"},
	)

	alertsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: "task_reminder",
			Subsystem: "alerts",
			Name:      "emitted_total",
			Help:      "Due alerts handed to the notification bridge.",
		},
	)

	// syncState mirrors Scheduler.State; the last writer wins when several
	// schedulers run in one process.
	syncState = promauto.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "task_reminder",
			Subsystem: "sync",
			Name:      "state",
			Help:      "Current refresh phase (0 idle, 1 fetching, 2 applied, 3 failed).",
		},
	)
)

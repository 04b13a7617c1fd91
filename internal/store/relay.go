package store

import (
	"context"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/rs/zerolog"

	"github.com/notexe/task-reminder/internal/alert"
	"github.com/notexe/task-reminder/internal/notify"
)

var relayedTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: "task_reminder",
		Subsystem: "store",
		Name:      "relayed_pushes_total",
		Help:      "Due reminders forwarded to the push worker, by outcome.",
	},
	[]string{"outcome"},
)

// Relay periodically forwards reminders about to fall due to a push worker,
// so alerts reach the user while no client window is open.
type Relay struct {
	store    *Store
	http     *resty.Client
	interval time.Duration
	tracker  *alert.Tracker
	now      func() time.Time
	log      zerolog.Logger
}

// NewRelay posts to pushURL + "/push" every interval.
func NewRelay(store *Store, pushURL string, interval time.Duration, log zerolog.Logger) *Relay {
	return &Relay{
		store: store,
		http: resty.New().
			SetBaseURL(pushURL).
			SetTimeout(10 * time.Second),
		interval: interval,
		tracker:  alert.NewTracker(),
		now:      time.Now,
		log:      log,
	}
}

// Run relays immediately and then on every tick until ctx is cancelled.
func (r *Relay) Run(ctx context.Context) error {
	if r.interval <= 0 {
		return fmt.Errorf("relay interval must be positive, got %s", r.interval)
	}

	r.relayDue(ctx)

	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			r.relayDue(ctx)
		}
	}
}

func (r *Relay) relayDue(ctx context.Context) {
	reminders, err := r.store.ListReminders(ctx)
	if err != nil {
		r.log.Error().Err(err).Msg("relay failed to list reminders")
		return
	}

	now := r.now()
	events := r.tracker.Filter(alert.Evaluate(reminders, now))
	r.tracker.Forget(now.Add(-24 * time.Hour))

	for _, ev := range events {
		n := notify.DueNotification(ev.Reminder)
		n.URL = "/"

		resp, err := r.http.R().
			SetContext(ctx).
			SetHeader("Content-Type", "application/json").
			SetBody(n).
			Post("/push")
		switch {
		case err != nil:
			relayedTotal.WithLabelValues("error").Inc()
			r.log.Warn().Err(err).Str("reminder_id", string(ev.Reminder.ID)).Msg("push worker unreachable")
		case !resp.IsSuccess():
			relayedTotal.WithLabelValues("error").Inc()
			r.log.Warn().Int("status", resp.StatusCode()).Str("reminder_id", string(ev.Reminder.ID)).Msg("push worker rejected payload")
		default:
			relayedTotal.WithLabelValues("ok").Inc()
			r.log.Info().Str("reminder_id", string(ev.Reminder.ID)).Str("task", ev.Reminder.Task).Msg("relayed due reminder")
		}
	}
}

// Package alert decides which reminders are about to fall due and computes
// the summary statistics shown next to the reminder list.
package alert

import (
	"time"

	"github.com/notexe/task-reminder/internal/reminder"
)

// Window is how far ahead of now a due instant may lie for its reminder to
// be alert-eligible.
const Window = 60 * time.Second

// Event is a reminder that crossed its alert threshold during one evaluation.
type Event struct {
	Reminder reminder.Reminder
	DueAt    time.Time
}

// Evaluate returns the pending reminders whose due instant lies strictly
// between now and now+Window. Due instants are resolved in now's location.
// No state is kept between calls.
func Evaluate(reminders []reminder.Reminder, now time.Time) []Event {
	var events []Event
	for _, r := range reminders {
		if r.Completed {
			continue
		}
		dueAt, ok := r.DueInstant(now.Location())
		if !ok {
			continue
		}
		delta := dueAt.Sub(now)
		if delta > 0 && delta < Window {
			events = append(events, Event{Reminder: r, DueAt: dueAt})
		}
	}
	return events
}

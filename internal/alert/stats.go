package alert

import (
	"math"
	"time"

	"github.com/notexe/task-reminder/internal/reminder"
)

// UpcomingDays is the horizon of the upcoming counter.
const UpcomingDays = 3

// Stats summarizes one snapshot.
type Stats struct {
	Total     int `json:"total"`
	Completed int `json:"completed"`
	Upcoming  int `json:"upcoming"`
	Notes     int `json:"notes"`
}

// ComputeStats counts reminders and notes. Upcoming reminders are pending
// ones due between today and UpcomingDays days from now.
func ComputeStats(reminders []reminder.Reminder, notes []reminder.Note, now time.Time) Stats {
	s := Stats{
		Total: len(reminders),
		Notes: len(notes),
	}
	for _, r := range reminders {
		if r.Completed {
			s.Completed++
			continue
		}
		if days, ok := DaysUntil(r, now); ok && days >= 0 && days <= UpcomingDays {
			s.Upcoming++
		}
	}
	return s
}

// DaysUntil is the number of days from now to the start of the due date,
// rounded up. A reminder due today yields 0 and one due yesterday -1.
func DaysUntil(r reminder.Reminder, now time.Time) (int, bool) {
	due, err := time.ParseInLocation(reminder.DateLayout, r.Due, now.Location())
	if err != nil {
		return 0, false
	}
	days := math.Ceil(due.Sub(now).Hours() / 24)
	return int(days), true
}

// Upcoming filters reminders to the pending ones counted by Stats.Upcoming.
func Upcoming(reminders []reminder.Reminder, now time.Time) []reminder.Reminder {
	var out []reminder.Reminder
	for _, r := range reminders {
		if r.Completed {
			continue
		}
		if days, ok := DaysUntil(r, now); ok && days >= 0 && days <= UpcomingDays {
			out = append(out, r)
		}
	}
	return out
}

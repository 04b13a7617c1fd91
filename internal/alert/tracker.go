package alert

import (
	"sync"
	"time"

	"github.com/notexe/task-reminder/internal/reminder"
)

// Tracker remembers which due instants already produced an alert so that a
// reminder staying inside the window across two evaluations fires once.
type Tracker struct {
	mu    sync.Mutex
	fired map[reminder.ID]time.Time
}

// NewTracker returns an empty tracker.
func NewTracker() *Tracker {
	return &Tracker{fired: make(map[reminder.ID]time.Time)}
}

// Filter drops events already seen for the same reminder and due instant,
// and records the rest. A nil tracker passes every event through.
func (t *Tracker) Filter(events []Event) []Event {
	if t == nil {
		return events
	}
	t.mu.Lock()
	defer t.mu.Unlock()

	var out []Event
	for _, ev := range events {
		if last, ok := t.fired[ev.Reminder.ID]; ok && last.Equal(ev.DueAt) {
			continue
		}
		t.fired[ev.Reminder.ID] = ev.DueAt
		out = append(out, ev)
	}
	return out
}

// Forget drops entries whose due instant is older than cutoff.
func (t *Tracker) Forget(cutoff time.Time) {
	if t == nil {
		return
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	for id, at := range t.fired {
		if at.Before(cutoff) {
			delete(t.fired, id)
		}
	}
}

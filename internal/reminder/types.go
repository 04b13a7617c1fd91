package reminder

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"
)

// Priority levels for reminders.
const (
	PriorityLow    = "low"
	PriorityMedium = "medium"
	PriorityHigh   = "high"
)

// Categories offered by the client. The store accepts any non-empty tag.
var Categories = []string{"work", "personal", "study", "health", "finance", "other"}

// Layouts for the calendar fields of a reminder.
const (
	DateLayout = "2006-01-02"
	TimeLayout = "15:04"
)

// ID identifies a reminder. The store issues numbers; the client never
// interprets them.
type ID string

// UnmarshalJSON accepts both JSON numbers and strings.
func (id *ID) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if bytes.Equal(b, []byte("null")) {
		*id = ""
		return nil
	}
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*id = ID(s)
		return nil
	}
	*id = ID(b)
	return nil
}

// MarshalJSON writes numeric ids as numbers, everything else as strings.
func (id ID) MarshalJSON() ([]byte, error) {
	if id != "" && json.Valid([]byte(id)) && strings.IndexFunc(string(id), func(r rune) bool {
		return (r < '0' || r > '9') && r != '-'
	}) < 0 {
		return []byte(id), nil
	}
	return json.Marshal(string(id))
}

// Timestamp is a time.Time that also accepts zone-less ISO timestamps.
type Timestamp struct {
	time.Time
}

var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
}

// UnmarshalJSON parses any of the known timestamp layouts.
func (t *Timestamp) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}
	if s == "" {
		t.Time = time.Time{}
		return nil
	}
	for _, layout := range timestampLayouts {
		if parsed, err := time.ParseInLocation(layout, s, time.Local); err == nil {
			t.Time = parsed
			return nil
		}
	}
	return fmt.Errorf("unrecognized timestamp %q", s)
}

// MarshalJSON writes RFC3339 with nanoseconds.
func (t Timestamp) MarshalJSON() ([]byte, error) {
	if t.IsZero() {
		return []byte(`""`), nil
	}
	return json.Marshal(t.Format(time.RFC3339Nano))
}

// Reminder is a task the user wants to be reminded of.
type Reminder struct {
	ID        ID        `json:"id"`
	Task      string    `json:"task"`
	Category  string    `json:"category"`
	Due       string    `json:"due"`
	DueTime   string    `json:"due_time,omitempty"`
	Priority  string    `json:"priority"`
	Completed bool      `json:"completed"`
	CreatedAt Timestamp `json:"created_at"`
}

// AllDay reports whether the reminder has no time of day.
func (r Reminder) AllDay() bool {
	return strings.TrimSpace(r.DueTime) == ""
}

// DueInstant combines the due date with the due time (midnight when unset)
// in loc. ok is false when the reminder has no parseable due date.
func (r Reminder) DueInstant(loc *time.Location) (time.Time, bool) {
	if r.Due == "" {
		return time.Time{}, false
	}
	clock := "00:00"
	if !r.AllDay() {
		clock = strings.TrimSpace(r.DueTime)
	}
	t, err := time.ParseInLocation(DateLayout+" "+TimeLayout, r.Due+" "+clock, loc)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

// TimeLabel is the due time for display, or "All day".
func (r Reminder) TimeLabel() string {
	if r.AllDay() {
		return "All day"
	}
	return r.DueTime
}

// Fields holds the user-supplied fields of a new reminder.
type Fields struct {
	Task     string `json:"task"`
	Category string `json:"category"`
	Due      string `json:"due"`
	DueTime  string `json:"due_time"`
	Priority string `json:"priority"`
}

// ErrIncomplete is returned when a required field is missing.
var ErrIncomplete = errors.New("please fill in all required fields")

// Normalize trims the fields and applies the medium priority default.
func (f Fields) Normalize() Fields {
	f.Task = strings.TrimSpace(f.Task)
	f.Category = strings.TrimSpace(f.Category)
	f.Due = strings.TrimSpace(f.Due)
	f.DueTime = strings.TrimSpace(f.DueTime)
	f.Priority = strings.ToLower(strings.TrimSpace(f.Priority))
	if f.Priority == "" {
		f.Priority = PriorityMedium
	}
	return f
}

// Validate checks required fields and formats. Call on normalized fields.
func (f Fields) Validate() error {
	if f.Task == "" || f.Category == "" || f.Due == "" {
		return ErrIncomplete
	}
	if _, err := time.Parse(DateLayout, f.Due); err != nil {
		return fmt.Errorf("invalid due date %q (use YYYY-MM-DD)", f.Due)
	}
	if f.DueTime != "" {
		if _, err := time.Parse(TimeLayout, f.DueTime); err != nil {
			return fmt.Errorf("invalid due time %q (use HH:MM)", f.DueTime)
		}
	}
	switch f.Priority {
	case PriorityLow, PriorityMedium, PriorityHigh:
	default:
		return fmt.Errorf("invalid priority %q (use low, medium or high)", f.Priority)
	}
	return nil
}

// Note is a free-form note. Its identity is its position in the list the
// store last returned.
type Note struct {
	Content   string    `json:"content"`
	CreatedAt Timestamp `json:"created_at"`
}

// HistoryEntry records a reminder mutation performed by the store.
type HistoryEntry struct {
	Action    string    `json:"action"`
	Reminder  Reminder  `json:"reminder"`
	Timestamp Timestamp `json:"timestamp"`
}

// History actions written by the store.
const (
	ActionCreated   = "created"
	ActionCompleted = "completed"
	ActionDeleted   = "deleted"
)

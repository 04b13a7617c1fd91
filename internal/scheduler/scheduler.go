package scheduler

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"

	"github.com/notexe/task-reminder/internal/alert"
	"github.com/notexe/task-reminder/internal/cache"
	"github.com/notexe/task-reminder/internal/notify"
	"github.com/notexe/task-reminder/internal/reminder"
)

// DefaultInterval is the period of the reminder refresh.
const DefaultInterval = 60 * time.Second

// Gateway is the part of the store client the sync loop needs.
type Gateway interface {
	cache.Source
	CreateReminder(ctx context.Context, f reminder.Fields) error
	CompleteReminder(ctx context.Context, id reminder.ID) error
	DeleteReminder(ctx context.Context, id reminder.ID) error
	CreateNote(ctx context.Context, content string) error
	DeleteNote(ctx context.Context, index int) error
}

// Presenter renders the cache after every applied refresh.
type Presenter interface {
	Render(snap cache.Snapshot, editMode bool)
}

// Notifier surfaces banners and due alerts.
type Notifier interface {
	Show(message string, sev notify.Severity)
	Alert(ctx context.Context, ev alert.Event)
}

// State is a phase of a refresh: Idle → Fetching → Applied|FetchFailed →
// Idle. State reports the live phase; LastOutcome keeps the result of the
// most recent refresh.
type State int32

const (
	StateIdle State = iota
	StateFetching
	StateApplied
	StateFetchFailed
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateFetching:
		return "fetching"
	case StateApplied:
		return "applied"
	case StateFetchFailed:
		return "fetch_failed"
	default:
		return fmt.Sprintf("state(%d)", int32(s))
	}
}

// Scheduler keeps the cache in sync with the store: a full refresh on start,
// a reminder refresh every interval, and a targeted refresh after each
// successful mutation. Due alerts are evaluated after every reminder refresh.
type Scheduler struct {
	gw        Gateway
	cache     *cache.Cache
	presenter Presenter
	notifier  Notifier
	tracker   *alert.Tracker
	interval  time.Duration
	now       func() time.Time
	log       zerolog.Logger

	observe func(State)
	state   atomic.Int32
	last    atomic.Int32
}

// Option configures a Scheduler.
type Option func(*Scheduler)

// WithInterval sets the refresh period.
func WithInterval(d time.Duration) Option {
	return func(s *Scheduler) { s.interval = d }
}

// WithTracker suppresses repeated alerts for the same due instant.
func WithTracker(t *alert.Tracker) Option {
	return func(s *Scheduler) { s.tracker = t }
}

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(s *Scheduler) { s.now = now }
}

// WithStateObserver calls fn on every state transition, from the goroutine
// running the refresh.
func WithStateObserver(fn func(State)) Option {
	return func(s *Scheduler) { s.observe = fn }
}

// WithLogger sets the scheduler logger.
func WithLogger(l zerolog.Logger) Option {
	return func(s *Scheduler) { s.log = l }
}

// New creates a Scheduler. presenter may be nil for headless use.
func New(gw Gateway, c *cache.Cache, presenter Presenter, notifier Notifier, opts ...Option) *Scheduler {
	s := &Scheduler{
		gw:        gw,
		cache:     c,
		presenter: presenter,
		notifier:  notifier,
		interval:  DefaultInterval,
		now:       time.Now,
		log:       zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// State returns the current phase. It is Idle between refreshes.
func (s *Scheduler) State() State {
	return State(s.state.Load())
}

// LastOutcome returns Applied or FetchFailed for the most recent refresh,
// or Idle before the first one.
func (s *Scheduler) LastOutcome() State {
	return State(s.last.Load())
}

// Run blocks and refreshes on interval, after a full refresh on start.
// It exits when ctx is cancelled.
func (s *Scheduler) Run(ctx context.Context) error {
	if s.interval <= 0 {
		return fmt.Errorf("scheduler interval must be positive, got %s", s.interval)
	}

	s.log.Info().Dur("interval", s.interval).Msg("started")

	_ = s.Sync(ctx)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.log.Info().Msg("shutting down")
			return nil
		case <-ticker.C:
			s.tick(ctx)
		}
	}
}

// Sync refreshes reminders, notes and history, then evaluates due alerts.
func (s *Scheduler) Sync(ctx context.Context) error {
	err := errors.Join(
		s.refresh(ctx, resourceReminders, s.cache.RefreshReminders),
		s.refresh(ctx, resourceNotes, s.cache.RefreshNotes),
		s.refresh(ctx, resourceHistory, s.cache.RefreshHistory),
	)
	s.render()
	s.evaluate(ctx)
	if err != nil {
		s.notifier.Show("Failed to load reminders.", notify.SeverityError)
	}
	return err
}

func (s *Scheduler) tick(ctx context.Context) {
	if err := s.refresh(ctx, resourceReminders, s.cache.RefreshReminders); err != nil {
		s.notifier.Show("Failed to load reminders.", notify.SeverityError)
		return
	}
	s.render()
	s.evaluate(ctx)
}

// AddReminder validates and creates a reminder, then refreshes reminders and
// history.
func (s *Scheduler) AddReminder(ctx context.Context, f reminder.Fields) error {
	f = f.Normalize()
	if err := f.Validate(); err != nil {
		if errors.Is(err, reminder.ErrIncomplete) {
			s.notifier.Show("Please fill in all required fields!", notify.SeverityError)
		} else {
			s.notifier.Show(err.Error(), notify.SeverityError)
		}
		return err
	}
	return s.mutate(ctx, mutation{
		name:    "add reminder",
		call:    func(ctx context.Context) error { return s.gw.CreateReminder(ctx, f) },
		ok:      "Reminder added successfully!",
		failed:  "Failed to add reminder. Please try again.",
		refresh: s.refreshRemindersAndHistory,
	})
}

// CompleteReminder marks a reminder completed.
func (s *Scheduler) CompleteReminder(ctx context.Context, id reminder.ID) error {
	return s.mutate(ctx, mutation{
		name:    "complete reminder",
		call:    func(ctx context.Context) error { return s.gw.CompleteReminder(ctx, id) },
		ok:      "Reminder marked as completed!",
		failed:  "Failed to complete reminder. Please try again.",
		refresh: s.refreshRemindersAndHistory,
	})
}

// DeleteReminder deletes a reminder.
func (s *Scheduler) DeleteReminder(ctx context.Context, id reminder.ID) error {
	return s.mutate(ctx, mutation{
		name:    "delete reminder",
		call:    func(ctx context.Context) error { return s.gw.DeleteReminder(ctx, id) },
		ok:      "Reminder deleted successfully!",
		failed:  "Failed to delete reminder. Please try again.",
		refresh: s.refreshRemindersAndHistory,
	})
}

// AddNote creates a note. Blank content is ignored.
func (s *Scheduler) AddNote(ctx context.Context, content string) error {
	content = strings.TrimSpace(content)
	if content == "" {
		return nil
	}
	return s.mutate(ctx, mutation{
		name:    "add note",
		call:    func(ctx context.Context) error { return s.gw.CreateNote(ctx, content) },
		ok:      "Note added successfully!",
		failed:  "Failed to add note. Please try again.",
		refresh: s.refreshNotes,
	})
}

// DeleteNote deletes the note at index of the current snapshot.
func (s *Scheduler) DeleteNote(ctx context.Context, index int) error {
	return s.mutate(ctx, mutation{
		name:    "delete note",
		call:    func(ctx context.Context) error { return s.gw.DeleteNote(ctx, index) },
		ok:      "Note deleted successfully!",
		failed:  "Failed to delete note. Please try again.",
		refresh: s.refreshNotes,
	})
}

// ToggleEditMode flips edit mode and re-renders.
func (s *Scheduler) ToggleEditMode() bool {
	on := s.cache.ToggleEditMode()
	s.render()
	return on
}

type mutation struct {
	name    string
	call    func(ctx context.Context) error
	ok      string
	failed  string
	refresh func(ctx context.Context) error
}

// mutate runs one mutation flow. The refresh starts only after the call
// succeeded, so the caller sees its own write once mutate returns nil.
func (s *Scheduler) mutate(ctx context.Context, m mutation) error {
	if err := m.call(ctx); err != nil {
		mutationsTotal.WithLabelValues(m.name, outcomeFailure).Inc()
		s.log.Error().Err(err).Str("mutation", m.name).Msg("mutation failed")
		s.notifier.Show(m.failed, notify.SeverityError)
		return fmt.Errorf("%s: %w", m.name, err)
	}
	mutationsTotal.WithLabelValues(m.name, outcomeSuccess).Inc()

	refreshErr := m.refresh(ctx)
	s.render()
	s.notifier.Show(m.ok, notify.SeveritySuccess)
	if refreshErr != nil {
		s.notifier.Show("Failed to refresh after update.", notify.SeverityError)
	}
	return nil
}

func (s *Scheduler) refreshRemindersAndHistory(ctx context.Context) error {
	err := s.refresh(ctx, resourceReminders, s.cache.RefreshReminders)
	if err == nil {
		s.evaluate(ctx)
	}
	return errors.Join(err, s.refresh(ctx, resourceHistory, s.cache.RefreshHistory))
}

func (s *Scheduler) refreshNotes(ctx context.Context) error {
	return s.refresh(ctx, resourceNotes, s.cache.RefreshNotes)
}

func (s *Scheduler) refresh(ctx context.Context, resource string, fn func(context.Context) error) error {
	s.setState(StateFetching)
	defer s.setState(StateIdle)
	if err := fn(ctx); err != nil {
		s.setState(StateFetchFailed)
		refreshTotal.WithLabelValues(resource, outcomeFailure).Inc()
		s.log.Warn().Err(err).Str("resource", resource).Msg("refresh failed")
		return err
	}
	s.setState(StateApplied)
	refreshTotal.WithLabelValues(resource, outcomeSuccess).Inc()
	s.log.Debug().Str("resource", resource).Msg("refreshed")
	return nil
}

func (s *Scheduler) setState(st State) {
	s.state.Store(int32(st))
	if st == StateApplied || st == StateFetchFailed {
		s.last.Store(int32(st))
	}
	syncState.Set(float64(st))
	if s.observe != nil {
		s.observe(st)
	}
}

func (s *Scheduler) render() {
	if s.presenter == nil {
		return
	}
	s.presenter.Render(s.cache.Snapshot(), s.cache.EditMode())
}

func (s *Scheduler) evaluate(ctx context.Context) {
	now := s.now()
	events := s.tracker.Filter(alert.Evaluate(s.cache.Snapshot().Reminders, now))
	s.tracker.Forget(now.Add(-alert.Window))

	for _, ev := range events {
		alertsTotal.Inc()
		s.log.Info().
			Str("reminder_id", string(ev.Reminder.ID)).
			Str("task", ev.Reminder.Task).
			Time("due_at", ev.DueAt).
			Msg("reminder due")
		s.notifier.Alert(ctx, ev)
	}
}

package scheduler

import (
	"context"
	"errors"
	"strconv"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/notexe/task-reminder/internal/alert"
	"github.com/notexe/task-reminder/internal/cache"
	"github.com/notexe/task-reminder/internal/notify"
	"github.com/notexe/task-reminder/internal/reminder"
)

var errStore = errors.New("store down")

// memGateway is an in-memory store.
type memGateway struct {
	mu        sync.Mutex
	reminders []reminder.Reminder
	notes     []reminder.Note
	history   []reminder.HistoryEntry
	nextID    int
	failReads bool
	failWrite bool
	writes    int
}

func (g *memGateway) ListReminders(context.Context) ([]reminder.Reminder, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.failReads {
		return nil, errStore
	}
	return append([]reminder.Reminder(nil), g.reminders...), nil
}

func (g *memGateway) ListNotes(context.Context) ([]reminder.Note, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.failReads {
		return nil, errStore
	}
	return append([]reminder.Note(nil), g.notes...), nil
}

func (g *memGateway) ListHistory(context.Context) ([]reminder.HistoryEntry, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.failReads {
		return nil, errStore
	}
	return append([]reminder.HistoryEntry(nil), g.history...), nil
}

func (g *memGateway) write() error {
	g.writes++
	if g.failWrite {
		return errStore
	}
	return nil
}

func (g *memGateway) CreateReminder(_ context.Context, f reminder.Fields) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	if err := g.write(); err != nil {
		return err
	}
	g.nextID++
	r := reminder.Reminder{
		ID: reminder.ID(strconv.Itoa(g.nextID)), Task: f.Task, Category: f.Category,
		Due: f.Due, DueTime: f.DueTime, Priority: f.Priority,
	}
	g.reminders = append(g.reminders, r)
	g.history = append(g.history, reminder.HistoryEntry{Action: reminder.ActionCreated, Reminder: r})
	return nil
}

func (g *memGateway) CompleteReminder(_ context.Context, id reminder.ID) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	if err := g.write(); err != nil {
		return err
	}
	for i := range g.reminders {
		if g.reminders[i].ID == id {
			g.reminders[i].Completed = true
			return nil
		}
	}
	return errStore
}

func (g *memGateway) DeleteReminder(_ context.Context, id reminder.ID) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	if err := g.write(); err != nil {
		return err
	}
	for i := range g.reminders {
		if g.reminders[i].ID == id {
			g.reminders = append(g.reminders[:i], g.reminders[i+1:]...)
			return nil
		}
	}
	return errStore
}

func (g *memGateway) CreateNote(_ context.Context, content string) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	if err := g.write(); err != nil {
		return err
	}
	g.notes = append(g.notes, reminder.Note{Content: content})
	return nil
}

func (g *memGateway) DeleteNote(_ context.Context, index int) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	if err := g.write(); err != nil {
		return err
	}
	if index < 0 || index >= len(g.notes) {
		return errStore
	}
	g.notes = append(g.notes[:index], g.notes[index+1:]...)
	return nil
}

func (g *memGateway) setFailReads(v bool) {
	g.mu.Lock()
	g.failReads = v
	g.mu.Unlock()
}

type banner struct {
	msg string
	sev notify.Severity
}

type fakeNotifier struct {
	mu      sync.Mutex
	banners []banner
	alerts  []alert.Event
}

func (n *fakeNotifier) Show(msg string, sev notify.Severity) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.banners = append(n.banners, banner{msg, sev})
}

func (n *fakeNotifier) Alert(_ context.Context, ev alert.Event) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.alerts = append(n.alerts, ev)
}

func (n *fakeNotifier) lastBanner() banner {
	n.mu.Lock()
	defer n.mu.Unlock()
	if len(n.banners) == 0 {
		return banner{}
	}
	return n.banners[len(n.banners)-1]
}

func (n *fakeNotifier) alertCount() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return len(n.alerts)
}

type fakePresenter struct {
	mu      sync.Mutex
	renders int
	last    cache.Snapshot
	edit    bool
}

func (p *fakePresenter) Render(snap cache.Snapshot, editMode bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.renders++
	p.last = snap
	p.edit = editMode
}

func (p *fakePresenter) count() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.renders
}

var fixedNow = time.Date(2025, 1, 10, 8, 59, 30, 0, time.Local)

type harness struct {
	gw        *memGateway
	cache     *cache.Cache
	notifier  *fakeNotifier
	presenter *fakePresenter
	sched     *Scheduler
}

func newHarness(opts ...Option) *harness {
	h := &harness{
		gw:        &memGateway{},
		notifier:  &fakeNotifier{},
		presenter: &fakePresenter{},
	}
	h.cache = cache.New(h.gw)
	opts = append([]Option{WithClock(func() time.Time { return fixedNow })}, opts...)
	h.sched = New(h.gw, h.cache, h.presenter, h.notifier, opts...)
	return h
}

func TestCreateCompleteRoundTrip(t *testing.T) {
	h := newHarness()
	ctx := context.Background()

	err := h.sched.AddReminder(ctx, reminder.Fields{
		Task: "Pay bills", Category: "finance", Due: "2025-01-10", DueTime: "09:00", Priority: "high",
	})
	require.NoError(t, err)
	assert.Equal(t, banner{"Reminder added successfully!", notify.SeveritySuccess}, h.notifier.lastBanner())

	snap := h.cache.Snapshot()
	require.Len(t, snap.Active(), 1)
	created := snap.Active()[0]
	assert.Equal(t, "Pay bills", created.Task)
	assert.False(t, created.Completed)
	assert.Len(t, snap.History, 1)

	require.NoError(t, h.sched.CompleteReminder(ctx, created.ID))
	snap = h.cache.Snapshot()
	assert.Empty(t, snap.Active())
	require.Len(t, snap.Completed(), 1)
	assert.Equal(t, created.ID, snap.Completed()[0].ID)
	assert.Equal(t, StateApplied, h.sched.LastOutcome())
}

func TestMutationEvaluatesAlerts(t *testing.T) {
	h := newHarness()

	// due 30 seconds after fixedNow
	require.NoError(t, h.sched.AddReminder(context.Background(), reminder.Fields{
		Task: "Pay bills", Category: "finance", Due: "2025-01-10", DueTime: "09:00",
	}))
	assert.Equal(t, 1, h.notifier.alertCount())
}

func TestAddReminderValidation(t *testing.T) {
	h := newHarness()

	err := h.sched.AddReminder(context.Background(), reminder.Fields{Task: "  ", Category: "work", Due: "2025-01-10"})
	assert.ErrorIs(t, err, reminder.ErrIncomplete)
	assert.Equal(t, banner{"Please fill in all required fields!", notify.SeverityError}, h.notifier.lastBanner())
	assert.Equal(t, 0, h.gw.writes)

	err = h.sched.AddReminder(context.Background(), reminder.Fields{Task: "x", Category: "work", Due: "10/01/2025"})
	assert.Error(t, err)
	assert.Equal(t, notify.SeverityError, h.notifier.lastBanner().sev)
	assert.Equal(t, 0, h.gw.writes)
}

func TestMutationFailureSkipsRefresh(t *testing.T) {
	h := newHarness()
	h.gw.failWrite = true

	err := h.sched.DeleteReminder(context.Background(), "1")
	assert.ErrorIs(t, err, errStore)
	assert.Equal(t, banner{"Failed to delete reminder. Please try again.", notify.SeverityError}, h.notifier.lastBanner())
	assert.Equal(t, 0, h.presenter.count())
}

func TestRefreshFailureAfterMutation(t *testing.T) {
	h := newHarness()
	require.NoError(t, h.sched.AddNote(context.Background(), "first"))

	h.gw.setFailReads(true)
	require.NoError(t, h.sched.AddNote(context.Background(), "second"))

	assert.Equal(t, banner{"Failed to refresh after update.", notify.SeverityError}, h.notifier.lastBanner())
	require.Len(t, h.cache.Snapshot().Notes, 1)
	assert.Equal(t, "first", h.cache.Snapshot().Notes[0].Content)
	assert.Equal(t, StateFetchFailed, h.sched.LastOutcome())
	assert.Equal(t, StateIdle, h.sched.State())
}

func TestBlankNoteIsIgnored(t *testing.T) {
	h := newHarness()
	require.NoError(t, h.sched.AddNote(context.Background(), "   "))
	assert.Equal(t, 0, h.gw.writes)
}

func TestDeleteNoteByIndex(t *testing.T) {
	h := newHarness()
	ctx := context.Background()
	require.NoError(t, h.sched.AddNote(ctx, "a"))
	require.NoError(t, h.sched.AddNote(ctx, "b"))
	require.NoError(t, h.sched.AddNote(ctx, "c"))

	require.NoError(t, h.sched.DeleteNote(ctx, 1))

	notes := h.cache.Snapshot().Notes
	require.Len(t, notes, 2)
	assert.Equal(t, "a", notes[0].Content)
	assert.Equal(t, "c", notes[1].Content)
	assert.Equal(t, banner{"Note deleted successfully!", notify.SeveritySuccess}, h.notifier.lastBanner())
}

func TestFailedTickKeepsCacheAndRecovers(t *testing.T) {
	h := newHarness()
	ctx := context.Background()
	require.NoError(t, h.gw.CreateReminder(ctx, reminder.Fields{Task: "a", Category: "work", Due: "2025-02-01", Priority: "low"}))
	require.NoError(t, h.sched.Sync(ctx))
	before := h.cache.Snapshot()
	renders := h.presenter.count()

	h.gw.setFailReads(true)
	h.sched.tick(ctx)

	assert.Equal(t, before, h.cache.Snapshot())
	assert.Equal(t, renders, h.presenter.count())
	assert.Equal(t, banner{"Failed to load reminders.", notify.SeverityError}, h.notifier.lastBanner())
	assert.Equal(t, StateFetchFailed, h.sched.LastOutcome())
	assert.Equal(t, StateIdle, h.sched.State())

	h.gw.setFailReads(false)
	require.NoError(t, h.gw.CreateReminder(ctx, reminder.Fields{Task: "b", Category: "work", Due: "2025-02-02", Priority: "low"}))
	h.sched.tick(ctx)

	assert.Len(t, h.cache.Snapshot().Reminders, 2)
	assert.Equal(t, StateApplied, h.sched.LastOutcome())
	assert.Equal(t, renders+1, h.presenter.count())
}

func TestRefreshStateTransitions(t *testing.T) {
	var (
		mu   sync.Mutex
		seen []State
	)
	h := newHarness(WithStateObserver(func(st State) {
		mu.Lock()
		defer mu.Unlock()
		seen = append(seen, st)
	}))
	ctx := context.Background()
	assert.Equal(t, StateIdle, h.sched.LastOutcome())

	h.sched.tick(ctx)
	assert.Equal(t, []State{StateFetching, StateApplied, StateIdle}, seen)
	assert.Equal(t, StateIdle, h.sched.State())
	assert.Equal(t, StateApplied, h.sched.LastOutcome())

	seen = nil
	h.gw.setFailReads(true)
	h.sched.tick(ctx)
	assert.Equal(t, []State{StateFetching, StateFetchFailed, StateIdle}, seen)
	assert.Equal(t, StateIdle, h.sched.State())
	assert.Equal(t, StateFetchFailed, h.sched.LastOutcome())
}

func TestTickRefiresWithoutTracker(t *testing.T) {
	h := newHarness()
	ctx := context.Background()
	require.NoError(t, h.gw.CreateReminder(ctx, reminder.Fields{Task: "a", Category: "work", Due: "2025-01-10", DueTime: "09:00"}))

	h.sched.tick(ctx)
	h.sched.tick(ctx)
	assert.Equal(t, 2, h.notifier.alertCount())
}

func TestTickFiresOnceWithTracker(t *testing.T) {
	h := newHarness(WithTracker(alert.NewTracker()))
	ctx := context.Background()
	require.NoError(t, h.gw.CreateReminder(ctx, reminder.Fields{Task: "a", Category: "work", Due: "2025-01-10", DueTime: "09:00"}))

	h.sched.tick(ctx)
	h.sched.tick(ctx)
	assert.Equal(t, 1, h.notifier.alertCount())
}

func TestToggleEditModeRenders(t *testing.T) {
	h := newHarness()
	assert.True(t, h.sched.ToggleEditMode())
	assert.Equal(t, 1, h.presenter.count())
	assert.True(t, h.presenter.edit)
}

func TestRunRejectsNonPositiveInterval(t *testing.T) {
	h := newHarness(WithInterval(0))
	assert.Error(t, h.sched.Run(context.Background()))
}

func TestRunRefreshesUntilCancelled(t *testing.T) {
	h := newHarness(WithInterval(10 * time.Millisecond))
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan error, 1)
	go func() { done <- h.sched.Run(ctx) }()

	require.Eventually(t, func() bool { return h.presenter.count() >= 3 }, time.Second, 5*time.Millisecond)
	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("Run did not return after cancel")
	}
}

func TestStateString(t *testing.T) {
	assert.Equal(t, "idle", StateIdle.String())
	assert.Equal(t, "fetch_failed", StateFetchFailed.String())
	assert.Equal(t, "state(9)", State(9).String())
}

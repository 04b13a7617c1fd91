package repl

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/notexe/task-reminder/internal/cache"
	"github.com/notexe/task-reminder/internal/notify"
	"github.com/notexe/task-reminder/internal/reminder"
	"github.com/notexe/task-reminder/internal/ui"
)

type staticSource struct {
	reminders []reminder.Reminder
}

func (s staticSource) ListReminders(context.Context) ([]reminder.Reminder, error) {
	return s.reminders, nil
}

func (s staticSource) ListNotes(context.Context) ([]reminder.Note, error) { return nil, nil }

func (s staticSource) ListHistory(context.Context) ([]reminder.HistoryEntry, error) {
	return nil, nil
}

type fakeActions struct {
	added     []reminder.Fields
	completed []reminder.ID
	deleted   []reminder.ID
	notes     []string
	rmNotes   []int
	syncs     int
	edit      bool
	err       error
}

func (a *fakeActions) Sync(context.Context) error { a.syncs++; return a.err }

func (a *fakeActions) AddReminder(_ context.Context, f reminder.Fields) error {
	a.added = append(a.added, f)
	return a.err
}

func (a *fakeActions) CompleteReminder(_ context.Context, id reminder.ID) error {
	a.completed = append(a.completed, id)
	return a.err
}

func (a *fakeActions) DeleteReminder(_ context.Context, id reminder.ID) error {
	a.deleted = append(a.deleted, id)
	return a.err
}

func (a *fakeActions) AddNote(_ context.Context, content string) error {
	a.notes = append(a.notes, content)
	return a.err
}

func (a *fakeActions) DeleteNote(_ context.Context, index int) error {
	a.rmNotes = append(a.rmNotes, index)
	return a.err
}

func (a *fakeActions) ToggleEditMode() bool { a.edit = !a.edit; return a.edit }

type fakePermissions struct{ perm notify.Permission }

func (p fakePermissions) OptIn(context.Context) notify.Permission { return p.perm }

type fakeThemes struct{ saved []string }

func (t *fakeThemes) SetTheme(theme string) error {
	t.saved = append(t.saved, theme)
	return nil
}

type harness struct {
	repl    *REPL
	actions *fakeActions
	themes  *fakeThemes
	out     *bytes.Buffer
	answer  bool
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	c := cache.New(staticSource{reminders: []reminder.Reminder{
		{ID: "1", Task: "Pay bills", Category: "finance", Due: "2025-01-10"},
	}})
	require.NoError(t, c.RefreshReminders(context.Background()))

	h := &harness{actions: &fakeActions{}, themes: &fakeThemes{}, out: &bytes.Buffer{}}
	formatter := ui.NewFormatter(false)
	h.repl = &REPL{
		Deps: Deps{
			Actions:     h.actions,
			Cache:       c,
			Permissions: fakePermissions{perm: notify.PermissionDenied},
			Themes:      h.themes,
			Presenter:   ui.NewPresenter(h.out, formatter, ui.ThemeLight, 80),
			Formatter:   formatter,
		},
		out:     h.out,
		confirm: func(string) bool { return h.answer },
	}
	return h
}

func (h *harness) run(t *testing.T, input string) (bool, error) {
	t.Helper()
	isCommand, command, args := parseCommand(input)
	require.True(t, isCommand)
	return h.repl.handleCommand(context.Background(), command, args)
}

func TestParseCommand(t *testing.T) {
	isCommand, command, args := parseCommand("/ADD  Pay bills|finance|2025-01-10 ")
	assert.True(t, isCommand)
	assert.Equal(t, "/add", command)
	assert.Equal(t, "Pay bills|finance|2025-01-10", args)

	isCommand, _, _ = parseCommand("hello")
	assert.False(t, isCommand)
}

func TestAddParsesFields(t *testing.T) {
	h := newHarness(t)

	_, err := h.run(t, "/add Pay bills|finance|2025-01-10|09:00|high")
	require.NoError(t, err)
	require.Len(t, h.actions.added, 1)
	assert.Equal(t, reminder.Fields{
		Task: "Pay bills", Category: "finance", Due: "2025-01-10", DueTime: "09:00", Priority: "high",
	}, h.actions.added[0])

	_, err = h.run(t, "/add just a task")
	assert.ErrorContains(t, err, "usage")
	assert.Len(t, h.actions.added, 1)
}

func TestDoneRequiresKnownID(t *testing.T) {
	h := newHarness(t)

	_, err := h.run(t, "/done 9")
	assert.ErrorContains(t, err, "no reminder with id 9")

	_, err = h.run(t, "/done 1")
	require.NoError(t, err)
	assert.Equal(t, []reminder.ID{"1"}, h.actions.completed)
}

func TestRemoveAsksForConfirmation(t *testing.T) {
	h := newHarness(t)

	_, err := h.run(t, "/rm 1")
	require.NoError(t, err)
	assert.Empty(t, h.actions.deleted)
	assert.Contains(t, h.out.String(), "Cancelled.")

	h.answer = true
	_, err = h.run(t, "/rm 1")
	require.NoError(t, err)
	assert.Equal(t, []reminder.ID{"1"}, h.actions.deleted)
}

func TestRemoveNoteIsOneBased(t *testing.T) {
	h := newHarness(t)
	h.answer = true

	_, err := h.run(t, "/rmnote 2")
	require.NoError(t, err)
	assert.Equal(t, []int{1}, h.actions.rmNotes)

	_, err = h.run(t, "/rmnote 0")
	assert.Error(t, err)
}

func TestRemoveNoteAsksForConfirmation(t *testing.T) {
	h := newHarness(t)

	_, err := h.run(t, "/rmnote 1")
	require.NoError(t, err)
	assert.Empty(t, h.actions.rmNotes)
	assert.Contains(t, h.out.String(), "Cancelled.")

	h.answer = true
	_, err = h.run(t, "/rmnote 1")
	require.NoError(t, err)
	assert.Equal(t, []int{0}, h.actions.rmNotes)
}

func TestMutationFailureIsNotPrintedTwice(t *testing.T) {
	h := newHarness(t)
	h.actions.err = errors.New("store down")

	_, err := h.run(t, "/note buy milk")
	assert.ErrorIs(t, err, errHandled)

	h.repl.displayError(err)
	assert.Empty(t, h.out.String())
}

func TestThemeTogglesAndPersists(t *testing.T) {
	h := newHarness(t)

	_, err := h.run(t, "/theme")
	require.NoError(t, err)
	assert.Equal(t, ui.ThemeDark, h.repl.Presenter.Theme())

	_, err = h.run(t, "/theme light")
	require.NoError(t, err)
	assert.Equal(t, []string{ui.ThemeDark, ui.ThemeLight}, h.themes.saved)

	_, err = h.run(t, "/theme blue")
	assert.Error(t, err)
}

func TestNotifyDenied(t *testing.T) {
	h := newHarness(t)

	_, err := h.run(t, "/notify on")
	require.NoError(t, err)
	assert.Contains(t, h.out.String(), "denied")
}

func TestQuit(t *testing.T) {
	h := newHarness(t)
	quit, err := h.run(t, "/quit")
	require.NoError(t, err)
	assert.True(t, quit)
}

func TestUnknownCommand(t *testing.T) {
	h := newHarness(t)
	_, err := h.run(t, "/frobnicate")
	assert.ErrorContains(t, err, "unknown command")
}

package ui

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/notexe/task-reminder/internal/cache"
	"github.com/notexe/task-reminder/internal/notify"
	"github.com/notexe/task-reminder/internal/reminder"
)

func testSnapshot() cache.Snapshot {
	return cache.Snapshot{
		Reminders: []reminder.Reminder{
			{ID: "1", Task: "Pay bills", Category: "finance", Due: "2025-01-10", DueTime: "09:00", Priority: "high"},
			{ID: "2", Task: "Stretch", Category: "health", Due: "2025-01-11", Priority: "low", Completed: true},
			{ID: "3", Task: "Read", Category: "study", Due: "2025-03-01", Priority: "medium"},
		},
		Notes: []reminder.Note{{Content: "buy milk"}},
	}
}

func newTestPresenter(buf *bytes.Buffer) *Presenter {
	p := NewPresenter(buf, NewFormatter(false), "light", 80)
	p.now = func() time.Time { return time.Date(2025, 1, 9, 12, 0, 0, 0, time.Local) }
	return p
}

func TestRenderShowsActiveRemindersAndStats(t *testing.T) {
	var buf bytes.Buffer
	p := newTestPresenter(&buf)

	p.Render(testSnapshot(), false)
	out := buf.String()

	assert.Contains(t, out, "Total 3  Completed 1  Upcoming 1  Notes 1")
	assert.Contains(t, out, "Pay bills")
	assert.Contains(t, out, "Read")
	assert.Contains(t, out, "All day")
	assert.NotContains(t, out, "Stretch")
	assert.NotContains(t, out, "/rm 1")
}

func TestRenderEditModeShowsActions(t *testing.T) {
	var buf bytes.Buffer
	p := newTestPresenter(&buf)

	p.Render(testSnapshot(), true)
	assert.Contains(t, buf.String(), "/done 1  /rm 1")
}

func TestRenderSkipsUnchangedFrame(t *testing.T) {
	var buf bytes.Buffer
	p := newTestPresenter(&buf)

	p.Render(testSnapshot(), false)
	first := buf.Len()
	p.Render(testSnapshot(), false)
	assert.Equal(t, first, buf.Len())

	p.Render(testSnapshot(), true)
	assert.Greater(t, buf.Len(), first)
}

func TestRenderEmpty(t *testing.T) {
	var buf bytes.Buffer
	p := newTestPresenter(&buf)
	p.Render(cache.Snapshot{}, false)
	assert.Contains(t, buf.String(), "No active reminders")
}

func TestNotesMarkdown(t *testing.T) {
	assert.Contains(t, NotesMarkdown(nil), "No notes yet")

	md := NotesMarkdown([]reminder.Note{{Content: "first\nline"}, {Content: "second"}})
	assert.Contains(t, md, "1. first line")
	assert.Contains(t, md, "2. second")
}

func TestHistoryMarkdownSkipsCompletedEntries(t *testing.T) {
	completed := []reminder.Reminder{{Task: "Stretch", Category: "health", Priority: "low", Due: "2025-01-11"}}
	history := []reminder.HistoryEntry{
		{Action: reminder.ActionCreated, Reminder: reminder.Reminder{Task: "Stretch"}},
		{Action: reminder.ActionCompleted, Reminder: reminder.Reminder{Task: "Stretch"}},
		{Action: reminder.ActionDeleted, Reminder: reminder.Reminder{Task: "Old"}},
	}

	md := HistoryMarkdown(completed, history)
	assert.Equal(t, 1, strings.Count(md, "**Completed**"))
	assert.Contains(t, md, "**Created** Stretch")
	assert.Contains(t, md, "**Deleted** Old")

	assert.Contains(t, HistoryMarkdown(nil, nil), "No history yet")
}

func TestThemeNormalization(t *testing.T) {
	p := NewPresenter(&bytes.Buffer{}, NewFormatter(false), "solarized", 0)
	assert.Equal(t, ThemeLight, p.Theme())
	p.SetTheme(ThemeDark)
	assert.Equal(t, ThemeDark, p.Theme())
}

func TestBannerSinkPlain(t *testing.T) {
	var buf bytes.Buffer
	sink := NewBannerSink(&buf, NewFormatter(false), true)

	b := notify.Banner{ID: 1, Message: "Reminder due: Pay bills", Severity: notify.SeverityInfo}
	sink.Enter(b)
	sink.Exit(b)
	sink.Remove(b)

	assert.Equal(t, "\r\033[K[info] Reminder due: Pay bills\n", buf.String())
}

func TestBannerSinkDisabled(t *testing.T) {
	var buf bytes.Buffer
	NewBannerSink(&buf, NewFormatter(false), false).Enter(notify.Banner{Message: "x"})
	assert.Empty(t, buf.String())
}

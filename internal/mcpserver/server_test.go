package mcpserver

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/notexe/task-reminder/internal/reminder"
)

type fakeBackend struct {
	reminders []reminder.Reminder
	notes     []reminder.Note
	created   []reminder.Fields
	completed []reminder.ID
	deleted   []int
	err       error
}

func (b *fakeBackend) ListReminders(context.Context) ([]reminder.Reminder, error) {
	return b.reminders, b.err
}

func (b *fakeBackend) ListUpcoming(context.Context) ([]reminder.Reminder, error) {
	return nil, b.err
}

func (b *fakeBackend) CreateReminder(_ context.Context, f reminder.Fields) error {
	b.created = append(b.created, f)
	return b.err
}

func (b *fakeBackend) CompleteReminder(_ context.Context, id reminder.ID) error {
	b.completed = append(b.completed, id)
	return b.err
}

func (b *fakeBackend) DeleteReminder(context.Context, reminder.ID) error { return b.err }

func (b *fakeBackend) ListNotes(context.Context) ([]reminder.Note, error) { return b.notes, b.err }

func (b *fakeBackend) CreateNote(context.Context, string) error { return b.err }

func (b *fakeBackend) DeleteNote(_ context.Context, index int) error {
	b.deleted = append(b.deleted, index)
	return b.err
}

func (b *fakeBackend) ListHistory(context.Context) ([]reminder.HistoryEntry, error) {
	return nil, b.err
}

func call(args map[string]any) mcp.CallToolRequest {
	return mcp.CallToolRequest{Params: mcp.CallToolParams{Arguments: args}}
}

func text(t *testing.T, res *mcp.CallToolResult) string {
	t.Helper()
	require.NotEmpty(t, res.Content)
	tc, ok := res.Content[0].(mcp.TextContent)
	require.True(t, ok)
	return tc.Text
}

func TestAddReminderValidates(t *testing.T) {
	b := &fakeBackend{}
	s := NewServer(b)

	res, err := s.handleAddReminder(context.Background(), call(map[string]any{"task": "Pay bills"}))
	require.NoError(t, err)
	assert.True(t, res.IsError)
	assert.Empty(t, b.created)

	res, err = s.handleAddReminder(context.Background(), call(map[string]any{
		"task": "Pay bills", "category": "finance", "due": "2025-01-10",
	}))
	require.NoError(t, err)
	assert.False(t, res.IsError)
	assert.Contains(t, text(t, res), "All day")
	require.Len(t, b.created, 1)
	assert.Equal(t, "medium", b.created[0].Priority)
}

func TestListRemindersByStatus(t *testing.T) {
	b := &fakeBackend{reminders: []reminder.Reminder{
		{ID: "1", Task: "open"},
		{ID: "2", Task: "done", Completed: true},
	}}
	s := NewServer(b)

	res, err := s.handleListReminders(context.Background(), call(map[string]any{"status": "completed"}))
	require.NoError(t, err)
	out := text(t, res)
	assert.Contains(t, out, "done")
	assert.NotContains(t, out, "open")

	res, err = s.handleListReminders(context.Background(), call(map[string]any{"status": "bogus"}))
	require.NoError(t, err)
	assert.True(t, res.IsError)
}

func TestGetDueReminders(t *testing.T) {
	b := &fakeBackend{reminders: []reminder.Reminder{
		{ID: "1", Task: "overdue", Due: "2025-01-09", DueTime: "10:00"},
		{ID: "2", Task: "later", Due: "2025-01-11"},
		{ID: "3", Task: "done", Due: "2025-01-01", Completed: true},
	}}
	s := NewServer(b)
	s.now = func() time.Time { return time.Date(2025, 1, 10, 12, 0, 0, 0, time.Local) }

	res, err := s.handleGetDueReminders(context.Background(), call(nil))
	require.NoError(t, err)
	out := text(t, res)
	assert.Contains(t, out, "overdue")
	assert.NotContains(t, out, "later")
	assert.NotContains(t, out, `"done"`)
}

func TestCompleteReminderPassesID(t *testing.T) {
	b := &fakeBackend{}
	s := NewServer(b)

	res, err := s.handleCompleteReminder(context.Background(), call(map[string]any{"id": "7"}))
	require.NoError(t, err)
	assert.False(t, res.IsError)
	assert.Equal(t, []reminder.ID{"7"}, b.completed)

	b.err = errors.New("store down")
	res, err = s.handleCompleteReminder(context.Background(), call(map[string]any{"id": "7"}))
	require.NoError(t, err)
	assert.True(t, res.IsError)
}

func TestNotesTools(t *testing.T) {
	b := &fakeBackend{notes: []reminder.Note{{Content: "a"}, {Content: "b"}}}
	s := NewServer(b)

	res, err := s.handleListNotes(context.Background(), call(nil))
	require.NoError(t, err)
	assert.Equal(t, "[0] a\n[1] b", text(t, res))

	res, err = s.handleDeleteNote(context.Background(), call(map[string]any{"index": float64(1)}))
	require.NoError(t, err)
	assert.False(t, res.IsError)
	assert.Equal(t, []int{1}, b.deleted)

	res, err = s.handleDeleteNote(context.Background(), call(nil))
	require.NoError(t, err)
	assert.True(t, res.IsError)
}

// Package mcpserver exposes the reminder store as MCP tools, so assistants
// can read and change reminders through the same HTTP surface as the client.
package mcpserver

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/notexe/task-reminder/internal/alert"
	"github.com/notexe/task-reminder/internal/reminder"
)

const (
	serverName    = "task-reminder"
	serverVersion = "1.0.0"
)

// Backend is the store API the tools call. *gateway.Client satisfies it.
type Backend interface {
	ListReminders(ctx context.Context) ([]reminder.Reminder, error)
	ListUpcoming(ctx context.Context) ([]reminder.Reminder, error)
	CreateReminder(ctx context.Context, f reminder.Fields) error
	CompleteReminder(ctx context.Context, id reminder.ID) error
	DeleteReminder(ctx context.Context, id reminder.ID) error
	ListNotes(ctx context.Context) ([]reminder.Note, error)
	CreateNote(ctx context.Context, content string) error
	DeleteNote(ctx context.Context, index int) error
	ListHistory(ctx context.Context) ([]reminder.HistoryEntry, error)
}

// Server is the MCP server for reminder management.
type Server struct {
	mcpServer *server.MCPServer
	backend   Backend
	now       func() time.Time
}

// NewServer creates a reminder MCP server backed by b.
func NewServer(b Backend) *Server {
	s := &Server{
		backend: b,
		now:     time.Now,
	}

	s.mcpServer = server.NewMCPServer(
		serverName,
		serverVersion,
		server.WithToolCapabilities(false),
	)

	s.registerTools()
	return s
}

// MCPServer returns the underlying MCP server for serving.
func (s *Server) MCPServer() *server.MCPServer {
	return s.mcpServer
}

func (s *Server) registerTools() {
	s.mcpServer.AddTool(
		mcp.NewTool("add_reminder",
			mcp.WithDescription("Add a new reminder with a task, category, due date, optional time and priority"),
			mcp.WithString("task", mcp.Required(), mcp.Description("What to be reminded of")),
			mcp.WithString("category", mcp.Required(), mcp.Description("Category tag, e.g. work, personal, study, health, finance, other")),
			mcp.WithString("due", mcp.Required(), mcp.Description("Due date as YYYY-MM-DD")),
			mcp.WithString("due_time", mcp.Description("Due time as HH:MM, empty for all day")),
			mcp.WithString("priority", mcp.Description("Priority: low, medium, high (default: medium)")),
		),
		s.handleAddReminder,
	)

	s.mcpServer.AddTool(
		mcp.NewTool("list_reminders",
			mcp.WithDescription("List all reminders, optionally filtered by status (pending or completed)"),
			mcp.WithString("status", mcp.Description("Filter by status: pending, completed, or empty for all")),
		),
		s.handleListReminders,
	)

	s.mcpServer.AddTool(
		mcp.NewTool("get_upcoming_reminders",
			mcp.WithDescription("Get pending reminders due within the next three days"),
		),
		s.handleUpcoming,
	)

	s.mcpServer.AddTool(
		mcp.NewTool("get_due_reminders",
			mcp.WithDescription("Get all pending reminders that are due now or overdue"),
		),
		s.handleGetDueReminders,
	)

	s.mcpServer.AddTool(
		mcp.NewTool("complete_reminder",
			mcp.WithDescription("Mark a reminder as completed"),
			mcp.WithString("id", mcp.Required(), mcp.Description("Reminder ID as returned by list_reminders")),
		),
		s.handleCompleteReminder,
	)

	s.mcpServer.AddTool(
		mcp.NewTool("delete_reminder",
			mcp.WithDescription("Delete a reminder permanently"),
			mcp.WithString("id", mcp.Required(), mcp.Description("Reminder ID as returned by list_reminders")),
		),
		s.handleDeleteReminder,
	)

	s.mcpServer.AddTool(
		mcp.NewTool("get_stats",
			mcp.WithDescription("Count total, completed and upcoming reminders and notes"),
		),
		s.handleStats,
	)

	s.mcpServer.AddTool(
		mcp.NewTool("list_notes",
			mcp.WithDescription("List all notes with their index"),
		),
		s.handleListNotes,
	)

	s.mcpServer.AddTool(
		mcp.NewTool("add_note",
			mcp.WithDescription("Add a free-form note"),
			mcp.WithString("content", mcp.Required(), mcp.Description("Note text")),
		),
		s.handleAddNote,
	)

	s.mcpServer.AddTool(
		mcp.NewTool("delete_note",
			mcp.WithDescription("Delete a note by its index in list_notes"),
			mcp.WithNumber("index", mcp.Required(), mcp.Description("Zero-based note index")),
		),
		s.handleDeleteNote,
	)

	s.mcpServer.AddTool(
		mcp.NewTool("list_history",
			mcp.WithDescription("List reminder history: created, completed and deleted events"),
		),
		s.handleListHistory,
	)
}

func (s *Server) handleAddReminder(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	f := reminder.Fields{
		Task:     req.GetString("task", ""),
		Category: req.GetString("category", ""),
		Due:      req.GetString("due", ""),
		DueTime:  req.GetString("due_time", ""),
		Priority: req.GetString("priority", ""),
	}.Normalize()

	if err := f.Validate(); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	if err := s.backend.CreateReminder(ctx, f); err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to add reminder: %v", err)), nil
	}

	return mcp.NewToolResultText(fmt.Sprintf("Reminder added: %s (%s) due %s %s.",
		f.Task, f.Category, f.Due, reminder.Reminder{DueTime: f.DueTime}.TimeLabel())), nil
}

func (s *Server) handleListReminders(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	status := strings.ToLower(req.GetString("status", ""))
	if status != "" && status != "pending" && status != "completed" {
		return mcp.NewToolResultError("status must be pending, completed or empty"), nil
	}

	reminders, err := s.backend.ListReminders(ctx)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to list reminders: %v", err)), nil
	}

	active, completed := reminder.Partition(reminders)
	switch status {
	case "pending":
		reminders = active
	case "completed":
		reminders = completed
	}

	if len(reminders) == 0 {
		return mcp.NewToolResultText("No reminders found."), nil
	}
	return jsonResult(reminders)
}

func (s *Server) handleUpcoming(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	reminders, err := s.backend.ListUpcoming(ctx)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to get upcoming reminders: %v", err)), nil
	}

	if len(reminders) == 0 {
		return mcp.NewToolResultText("No upcoming reminders."), nil
	}
	return jsonResult(reminders)
}

func (s *Server) handleGetDueReminders(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	reminders, err := s.backend.ListReminders(ctx)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to get due reminders: %v", err)), nil
	}

	now := s.now()
	var due []reminder.Reminder
	for _, r := range reminders {
		if r.Completed {
			continue
		}
		if at, ok := r.DueInstant(now.Location()); ok && !at.After(now) {
			due = append(due, r)
		}
	}

	if len(due) == 0 {
		return mcp.NewToolResultText("No due reminders."), nil
	}
	return jsonResult(due)
}

func (s *Server) handleCompleteReminder(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id := strings.TrimSpace(req.GetString("id", ""))
	if id == "" {
		return mcp.NewToolResultError("id is required"), nil
	}

	if err := s.backend.CompleteReminder(ctx, reminder.ID(id)); err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to complete reminder: %v", err)), nil
	}

	return mcp.NewToolResultText(fmt.Sprintf("Reminder %s marked as completed.", id)), nil
}

func (s *Server) handleDeleteReminder(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id := strings.TrimSpace(req.GetString("id", ""))
	if id == "" {
		return mcp.NewToolResultError("id is required"), nil
	}

	if err := s.backend.DeleteReminder(ctx, reminder.ID(id)); err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to delete reminder: %v", err)), nil
	}

	return mcp.NewToolResultText(fmt.Sprintf("Reminder %s deleted.", id)), nil
}

func (s *Server) handleStats(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	reminders, err := s.backend.ListReminders(ctx)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to list reminders: %v", err)), nil
	}
	notes, err := s.backend.ListNotes(ctx)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to list notes: %v", err)), nil
	}
	return jsonResult(alert.ComputeStats(reminders, notes, s.now()))
}

func (s *Server) handleListNotes(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	notes, err := s.backend.ListNotes(ctx)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to list notes: %v", err)), nil
	}

	if len(notes) == 0 {
		return mcp.NewToolResultText("No notes."), nil
	}

	var sb strings.Builder
	for i, n := range notes {
		fmt.Fprintf(&sb, "[%d] %s\n", i, n.Content)
	}
	return mcp.NewToolResultText(strings.TrimRight(sb.String(), "\n")), nil
}

func (s *Server) handleAddNote(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	content := strings.TrimSpace(req.GetString("content", ""))
	if content == "" {
		return mcp.NewToolResultError("content is required"), nil
	}

	if err := s.backend.CreateNote(ctx, content); err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to add note: %v", err)), nil
	}
	return mcp.NewToolResultText("Note added."), nil
}

func (s *Server) handleDeleteNote(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	idx := req.GetFloat("index", -1)
	if idx < 0 {
		return mcp.NewToolResultError("index is required and must not be negative"), nil
	}

	if err := s.backend.DeleteNote(ctx, int(idx)); err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to delete note: %v", err)), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("Note %d deleted.", int(idx))), nil
}

func (s *Server) handleListHistory(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	history, err := s.backend.ListHistory(ctx)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to list history: %v", err)), nil
	}

	if len(history) == 0 {
		return mcp.NewToolResultText("No history."), nil
	}
	return jsonResult(history)
}

func jsonResult(v any) (*mcp.CallToolResult, error) {
	output, _ := json.MarshalIndent(v, "", "  ")
	return mcp.NewToolResultText(string(output)), nil
}

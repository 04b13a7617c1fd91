// Command mcp-reminder provides an MCP server for reminder management.
//
// The tools talk to a running reminder store over HTTP, the same way the
// terminal client does.
//
// Usage:
//
//	./mcp-reminder          # Start MCP server (stdio)
//	./mcp-reminder --help   # Show help
//
// Environment:
//
//	TASK_REMINDER_STORE__BASE_URL  Store URL (default: http://localhost:5000)
package main

import (
	"fmt"
	"os"

	"github.com/mark3labs/mcp-go/server"

	"github.com/notexe/task-reminder/internal/config"
	"github.com/notexe/task-reminder/internal/gateway"
	"github.com/notexe/task-reminder/internal/logging"
	"github.com/notexe/task-reminder/internal/mcpserver"
)

func main() {
	if len(os.Args) > 1 {
		switch os.Args[1] {
		case "--help", "-h":
			printHelp()
			return
		}
	}

	cfg, err := config.Load(config.GetDefaultConfigPath())
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	// stdout carries the MCP protocol; logs go to stderr only.
	logging.Init(cfg.Log.Level, false)

	gw := gateway.New(cfg.Store.BaseURL,
		gateway.WithTimeout(cfg.StoreTimeout()),
		gateway.WithLogger(logging.Component("gateway")),
	)

	s := mcpserver.NewServer(gw)

	if err := server.ServeStdio(s.MCPServer()); err != nil {
		fmt.Fprintf(os.Stderr, "Server error: %v\n", err)
		os.Exit(1)
	}
}

func printHelp() {
	fmt.Println(`MCP Reminder Server - Reminder management via MCP protocol

USAGE:
    mcp-reminder          Start MCP server (communicates via stdio)
    mcp-reminder --help   Show this help

ENVIRONMENT:
    TASK_REMINDER_STORE__BASE_URL  Reminder store URL
                                   Default: http://localhost:5000

TOOLS:
    add_reminder            Add a reminder (task, category, due, due_time, priority)
    list_reminders          List reminders (optional status filter)
    get_upcoming_reminders  Pending reminders due within three days
    get_due_reminders       Pending reminders that are due or overdue
    complete_reminder       Mark a reminder as completed
    delete_reminder         Delete a reminder permanently
    get_stats               Reminder and note counters
    list_notes              List notes with their index
    add_note                Add a note
    delete_note             Delete a note by index
    list_history            Created, completed and deleted events

CONFIGURATION:
    Add to your mcp.json:
    {
      "mcpServers": {
        "reminder": {
          "command": "/path/to/mcp-reminder",
          "args": []
        }
      }
    }`)
}

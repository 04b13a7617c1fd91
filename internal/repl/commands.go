package repl

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/notexe/task-reminder/internal/notify"
	"github.com/notexe/task-reminder/internal/reminder"
	"github.com/notexe/task-reminder/internal/ui"
)

// errHandled marks failures the sync loop already reported with a banner.
var errHandled = errors.New("handled")

func (r *REPL) handleCommand(ctx context.Context, command, args string) (bool, error) {
	switch command {
	case "/help", "/h":
		r.displayHelp()

	case "/list", "/ls":
		r.Presenter.RenderReminders(r.Cache.Snapshot(), r.Cache.EditMode())

	case "/add", "/a":
		f, err := parseFields(args)
		if err != nil {
			return false, err
		}
		return false, quiet(r.Actions.AddReminder(ctx, f))

	case "/done", "/complete":
		id, err := r.lookupReminder(args)
		if err != nil {
			return false, err
		}
		return false, quiet(r.Actions.CompleteReminder(ctx, id))

	case "/rm", "/delete":
		id, err := r.lookupReminder(args)
		if err != nil {
			return false, err
		}
		if !r.confirm(fmt.Sprintf("Delete reminder %s?", id)) {
			r.displayInfo("Cancelled.")
			return false, nil
		}
		return false, quiet(r.Actions.DeleteReminder(ctx, id))

	case "/upcoming", "/u":
		return false, r.handleUpcoming(ctx)

	case "/history":
		r.Presenter.RenderHistory(r.Cache.Snapshot())

	case "/stats":
		r.Presenter.RenderStats(r.Cache.Snapshot())

	case "/notes":
		r.Presenter.RenderNotes(r.Cache.Snapshot())

	case "/note", "/n":
		if args == "" {
			return false, fmt.Errorf("usage: /note <text>")
		}
		return false, quiet(r.Actions.AddNote(ctx, args))

	case "/rmnote":
		n, err := strconv.Atoi(args)
		if err != nil || n < 1 {
			return false, fmt.Errorf("usage: /rmnote <n> (as numbered by /notes)")
		}
		if !r.confirm(fmt.Sprintf("Delete note %d?", n)) {
			r.displayInfo("Cancelled.")
			return false, nil
		}
		return false, quiet(r.Actions.DeleteNote(ctx, n-1))

	case "/edit", "/e":
		on := r.Actions.ToggleEditMode()
		r.refreshPrompt()
		if on {
			r.displaySystem("Edit mode on: actions are shown next to each reminder.")
		} else {
			r.displaySystem("Edit mode off.")
		}

	case "/notify":
		return false, r.handleNotify(ctx, args)

	case "/theme":
		return false, r.handleTheme(args)

	case "/refresh", "/r":
		return false, quiet(r.Actions.Sync(ctx))

	case "/quit", "/exit", "/q":
		fmt.Fprintln(r.out, "\nGoodbye!")
		return true, nil

	default:
		return false, fmt.Errorf("unknown command: %s (type /help for available commands)", command)
	}
	return false, nil
}

// quiet drops errors the sync loop already showed as a banner.
func quiet(err error) error {
	if err != nil {
		return errHandled
	}
	return nil
}

func (r *REPL) handleUpcoming(ctx context.Context) error {
	if r.Upcoming == nil {
		return fmt.Errorf("upcoming reminders are not available")
	}
	list, err := r.Upcoming.ListUpcoming(ctx)
	if err != nil {
		return fmt.Errorf("failed to load upcoming reminders: %w", err)
	}
	r.Presenter.RenderUpcoming(list)
	return nil
}

func (r *REPL) handleNotify(ctx context.Context, args string) error {
	if strings.ToLower(args) != "on" {
		return fmt.Errorf("usage: /notify on")
	}
	if r.Permissions == nil {
		r.displayInfo("No notification backend configured.")
		return nil
	}
	switch r.Permissions.OptIn(ctx) {
	case notify.PermissionGranted:
	case notify.PermissionDenied:
		r.displayInfo("Notifications were denied; alerts stay in the terminal.")
	default:
		r.displayInfo("Notification permission was not decided.")
	}
	return nil
}

func (r *REPL) handleTheme(args string) error {
	theme := strings.ToLower(args)
	switch theme {
	case "":
		theme = ui.ThemeLight
		if r.Presenter.Theme() == ui.ThemeLight {
			theme = ui.ThemeDark
		}
	case ui.ThemeLight, ui.ThemeDark:
	default:
		return fmt.Errorf("usage: /theme [light|dark]")
	}

	r.Presenter.SetTheme(theme)
	if r.Themes != nil {
		if err := r.Themes.SetTheme(theme); err != nil {
			return fmt.Errorf("theme applied but not saved: %w", err)
		}
	}
	r.displaySystem("Theme: " + theme)
	return nil
}

// lookupReminder resolves args to an id present in the current snapshot.
func (r *REPL) lookupReminder(args string) (reminder.ID, error) {
	if args == "" {
		return "", fmt.Errorf("usage: <command> <id> (toggle /edit to see ids)")
	}
	id := reminder.ID(args)
	for _, rem := range r.Cache.Snapshot().Reminders {
		if rem.ID == id {
			return id, nil
		}
	}
	return "", fmt.Errorf("no reminder with id %s", args)
}

// parseFields reads "task|category|date[|time[|priority]]".
func parseFields(args string) (reminder.Fields, error) {
	parts := strings.Split(args, "|")
	if len(parts) < 3 || len(parts) > 5 {
		return reminder.Fields{}, fmt.Errorf("usage: /add task|category|YYYY-MM-DD[|HH:MM[|low|medium|high]]")
	}
	f := reminder.Fields{
		Task:     parts[0],
		Category: parts[1],
		Due:      parts[2],
	}
	if len(parts) > 3 {
		f.DueTime = parts[3]
	}
	if len(parts) > 4 {
		f.Priority = parts[4]
	}
	return f, nil
}

// Package repl is the interactive terminal front end: it reads commands,
// turns them into intents for the sync loop and renders the results.
package repl

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/chzyer/readline"

	"github.com/notexe/task-reminder/internal/cache"
	"github.com/notexe/task-reminder/internal/notify"
	"github.com/notexe/task-reminder/internal/reminder"
	"github.com/notexe/task-reminder/internal/ui"
)

// Actions are the intents the REPL submits. *scheduler.Scheduler
// satisfies it.
type Actions interface {
	Sync(ctx context.Context) error
	AddReminder(ctx context.Context, f reminder.Fields) error
	CompleteReminder(ctx context.Context, id reminder.ID) error
	DeleteReminder(ctx context.Context, id reminder.ID) error
	AddNote(ctx context.Context, content string) error
	DeleteNote(ctx context.Context, index int) error
	ToggleEditMode() bool
}

// UpcomingSource lists reminders due soon, as the store computes them.
type UpcomingSource interface {
	ListUpcoming(ctx context.Context) ([]reminder.Reminder, error)
}

// PermissionRequester asks the platform for notification permission.
type PermissionRequester interface {
	OptIn(ctx context.Context) notify.Permission
}

// ThemeStore persists the theme.
type ThemeStore interface {
	SetTheme(theme string) error
}

// Interactor is told whenever the user types something. *push.Link
// satisfies it.
type Interactor interface {
	Interact()
}

// Deps wires the REPL. Upcoming, Permissions, Themes and Link may be nil.
type Deps struct {
	Actions     Actions
	Cache       *cache.Cache
	Upcoming    UpcomingSource
	Permissions PermissionRequester
	Themes      ThemeStore
	Link        Interactor
	Presenter   *ui.Presenter
	Formatter   *ui.Formatter
	StoreURL    string
}

type REPL struct {
	Deps

	rl      *readline.Instance
	out     io.Writer
	confirm func(prompt string) bool
}

// New creates a REPL reading from rl. Output goes through rl.Stdout().
func New(deps Deps, rl *readline.Instance) *REPL {
	r := &REPL{Deps: deps, rl: rl, out: rl.Stdout()}
	r.confirm = r.readConfirm
	return r
}

func (r *REPL) Start(ctx context.Context) error {
	defer r.rl.Close()

	r.displayWelcome()
	r.refreshPrompt()

	for {
		input, err := r.readInput()
		if err != nil {
			if isEOF(err) {
				fmt.Fprintln(r.out, "\nGoodbye!")
				return nil
			}
			return fmt.Errorf("failed to read input: %w", err)
		}

		if input == "" {
			continue
		}

		if r.Link != nil {
			r.Link.Interact()
		}

		isCommand, command, args := parseCommand(input)
		if !isCommand {
			r.displayError(fmt.Errorf("unknown input %q (type /help for available commands)", input))
			continue
		}

		quit, err := r.handleCommand(ctx, command, args)
		if err != nil {
			r.displayError(err)
		}
		if quit {
			return nil
		}
	}
}

// Stop closes the line editor, unblocking Start.
func (r *REPL) Stop() {
	r.rl.Close()
}

// Focus is called when the push worker asks this window to come forward.
func (r *REPL) Focus(url string) {
	fmt.Fprintln(r.out, r.Formatter.FormatSystem("Opened from notification: "+url))
	r.Presenter.RenderReminders(r.Cache.Snapshot(), r.Cache.EditMode())
	r.rl.Refresh()
}

func (r *REPL) refreshPrompt() {
	if r.rl != nil {
		r.rl.SetPrompt(r.Formatter.FormatPrompt(r.Cache.EditMode()))
	}
}

func (r *REPL) readConfirm(prompt string) bool {
	defer r.refreshPrompt()

	r.rl.SetPrompt(prompt + " [y/N] ")
	line, err := r.rl.Readline()
	if err != nil {
		return false
	}
	answer := strings.ToLower(strings.TrimSpace(line))
	return answer == "y" || answer == "yes"
}

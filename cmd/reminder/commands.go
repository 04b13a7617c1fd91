package main

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/notexe/task-reminder/internal/logging"
	"github.com/notexe/task-reminder/internal/reminder"
	"github.com/notexe/task-reminder/internal/scheduler"
	"github.com/notexe/task-reminder/internal/state"
)

// oneShot loads config and a client writing to the command's output.
func oneShot(cmd *cobra.Command, flags *rootFlags) (*client, error) {
	cfg, err := loadConfig(flags)
	if err != nil {
		return nil, err
	}
	logging.Init(cfg.Log.Level, true)
	return newClient(cfg, cmd.OutOrStdout()), nil
}

// mutate runs fn against a headless scheduler whose banners print to the
// command's output.
func mutate(cmd *cobra.Command, flags *rootFlags, fn func(ctx context.Context, s *scheduler.Scheduler) error) error {
	c, err := oneShot(cmd, flags)
	if err != nil {
		return err
	}
	sched, _, banners := c.newScheduler(cmd.OutOrStdout(), nil, nil)
	defer banners.Close()
	return fn(cmd.Context(), sched)
}

func newListCmd(flags *rootFlags) *cobra.Command {
	var showActions bool

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List active reminders",
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := oneShot(cmd, flags)
			if err != nil {
				return err
			}
			if err := c.cache.RefreshReminders(cmd.Context()); err != nil {
				return err
			}
			c.presenter.RenderReminders(c.cache.Snapshot(), showActions)
			return nil
		},
	}
	cmd.Flags().BoolVar(&showActions, "actions", false, "Show the commands that act on each reminder")
	return cmd
}

func newAddCmd(flags *rootFlags) *cobra.Command {
	var dueTime, priority string

	cmd := &cobra.Command{
		Use:   "add <task> <category> <YYYY-MM-DD>",
		Short: "Add a reminder",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			f := reminder.Fields{
				Task:     args[0],
				Category: args[1],
				Due:      args[2],
				DueTime:  dueTime,
				Priority: priority,
			}
			return mutate(cmd, flags, func(ctx context.Context, s *scheduler.Scheduler) error {
				return s.AddReminder(ctx, f)
			})
		},
	}
	cmd.Flags().StringVar(&dueTime, "time", "", "Due time as HH:MM (empty for all day)")
	cmd.Flags().StringVar(&priority, "priority", reminder.PriorityMedium, "Priority: low, medium or high")
	return cmd
}

func newCompleteCmd(flags *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "complete <id>",
		Short: "Mark a reminder completed",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return mutate(cmd, flags, func(ctx context.Context, s *scheduler.Scheduler) error {
				return s.CompleteReminder(ctx, reminder.ID(args[0]))
			})
		},
	}
}

func newDeleteCmd(flags *rootFlags) *cobra.Command {
	var yes bool

	cmd := &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a reminder",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if !yes {
				return errors.New("refusing to delete without --yes")
			}
			return mutate(cmd, flags, func(ctx context.Context, s *scheduler.Scheduler) error {
				return s.DeleteReminder(ctx, reminder.ID(args[0]))
			})
		},
	}
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "Confirm the deletion")
	return cmd
}

func newUpcomingCmd(flags *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "upcoming",
		Short: "Reminders due in the next 3 days",
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := oneShot(cmd, flags)
			if err != nil {
				return err
			}
			list, err := c.gw.ListUpcoming(cmd.Context())
			if err != nil {
				return err
			}
			c.presenter.RenderUpcoming(list)
			return nil
		},
	}
}

func newStatsCmd(flags *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Show reminder and note counters",
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := oneShot(cmd, flags)
			if err != nil {
				return err
			}
			if err := errors.Join(
				c.cache.RefreshReminders(cmd.Context()),
				c.cache.RefreshNotes(cmd.Context()),
			); err != nil {
				return err
			}
			c.presenter.RenderStats(c.cache.Snapshot())
			return nil
		},
	}
}

func newHistoryCmd(flags *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "history",
		Short: "Completed reminders and store history",
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := oneShot(cmd, flags)
			if err != nil {
				return err
			}
			if err := errors.Join(
				c.cache.RefreshReminders(cmd.Context()),
				c.cache.RefreshHistory(cmd.Context()),
			); err != nil {
				return err
			}
			c.presenter.RenderHistory(c.cache.Snapshot())
			return nil
		},
	}
}

func newNotesCmd(flags *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "notes",
		Short: "Show notes",
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := oneShot(cmd, flags)
			if err != nil {
				return err
			}
			if err := c.cache.RefreshNotes(cmd.Context()); err != nil {
				return err
			}
			c.presenter.RenderNotes(c.cache.Snapshot())
			return nil
		},
	}
}

func newNoteCmd(flags *rootFlags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "note",
		Short: "Add or delete notes",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "add <text>",
		Short: "Add a note",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			content := strings.Join(args, " ")
			return mutate(cmd, flags, func(ctx context.Context, s *scheduler.Scheduler) error {
				return s.AddNote(ctx, content)
			})
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "delete <n>",
		Short: "Delete note number n, as numbered by \"reminder notes\"",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			n, err := strconv.Atoi(args[0])
			if err != nil || n < 1 {
				return fmt.Errorf("note number must be a positive integer, got %q", args[0])
			}
			return mutate(cmd, flags, func(ctx context.Context, s *scheduler.Scheduler) error {
				return s.DeleteNote(ctx, n-1)
			})
		},
	})

	return cmd
}

func newThemeCmd(flags *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "theme [light|dark]",
		Short: "Show, toggle or set the saved theme",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(flags)
			if err != nil {
				return err
			}
			st := state.Open(cfg.State.File)

			var theme string
			switch {
			case len(args) == 0:
				theme, err = st.ToggleTheme()
			case args[0] == state.ThemeLight || args[0] == state.ThemeDark:
				theme, err = args[0], st.SetTheme(args[0])
			default:
				return fmt.Errorf("unknown theme %q (use light or dark)", args[0])
			}
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Theme:", theme)
			return nil
		},
	}
}

package ui

import (
	"fmt"
	"io"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/notexe/task-reminder/internal/alert"
	"github.com/notexe/task-reminder/internal/cache"
	"github.com/notexe/task-reminder/internal/reminder"
)

// Themes understood by the presenter.
const (
	ThemeLight = "light"
	ThemeDark  = "dark"
)

// Presenter draws cache snapshots to a terminal.
type Presenter struct {
	out       io.Writer
	formatter *Formatter
	wordWrap  int
	now       func() time.Time

	mu        sync.Mutex
	theme     string
	lastFrame string
}

func NewPresenter(out io.Writer, formatter *Formatter, theme string, wordWrap int) *Presenter {
	if wordWrap <= 0 {
		wordWrap = 80
	}
	return &Presenter{
		out:       out,
		formatter: formatter,
		wordWrap:  wordWrap,
		now:       time.Now,
		theme:     normalizeTheme(theme),
	}
}

func normalizeTheme(theme string) string {
	if theme == ThemeDark {
		return ThemeDark
	}
	return ThemeLight
}

// SetTheme switches the markdown style used for notes and history.
func (p *Presenter) SetTheme(theme string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.theme = normalizeTheme(theme)
}

// Theme returns the current theme.
func (p *Presenter) Theme() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.theme
}

// Render prints the stats line and the active reminders. A frame identical
// to the previous one is not printed again.
func (p *Presenter) Render(snap cache.Snapshot, editMode bool) {
	frame := p.stats(alert.ComputeStats(snap.Reminders, snap.Notes, p.now())) + "\n" +
		p.reminderTable(snap.Active(), editMode)

	p.mu.Lock()
	defer p.mu.Unlock()
	if frame == p.lastFrame {
		return
	}
	p.lastFrame = frame
	fmt.Fprintln(p.out, frame)
}

// RenderReminders prints the active reminders unconditionally.
func (p *Presenter) RenderReminders(snap cache.Snapshot, editMode bool) {
	fmt.Fprintln(p.out, p.reminderTable(snap.Active(), editMode))
}

// RenderUpcoming prints the given reminders as a table.
func (p *Presenter) RenderUpcoming(list []reminder.Reminder) {
	if len(list) == 0 {
		fmt.Fprintln(p.out, p.formatter.FormatDim("Nothing due in the next 3 days."))
		return
	}
	fmt.Fprintln(p.out, p.reminderTable(list, false))
}

// RenderStats prints the counters of snap.
func (p *Presenter) RenderStats(snap cache.Snapshot) {
	fmt.Fprintln(p.out, p.stats(alert.ComputeStats(snap.Reminders, snap.Notes, p.now())))
}

// RenderNotes prints the notes numbered from 1.
func (p *Presenter) RenderNotes(snap cache.Snapshot) {
	fmt.Fprintln(p.out, p.markdown(NotesMarkdown(snap.Notes)))
}

// RenderHistory prints completed reminders followed by the other history
// entries.
func (p *Presenter) RenderHistory(snap cache.Snapshot) {
	fmt.Fprintln(p.out, p.markdown(HistoryMarkdown(snap.Completed(), snap.History)))
}

func (p *Presenter) stats(s alert.Stats) string {
	f := p.formatter
	return fmt.Sprintf("%s %d  %s %d  %s %d  %s %d",
		f.render(DimStyle, "Total"), s.Total,
		f.render(DimStyle, "Completed"), s.Completed,
		f.render(DimStyle, "Upcoming"), s.Upcoming,
		f.render(DimStyle, "Notes"), s.Notes,
	)
}

func (p *Presenter) reminderTable(list []reminder.Reminder, editMode bool) string {
	if len(list) == 0 {
		return p.formatter.FormatDim("No active reminders. Add one with /add.")
	}

	headers := []string{"ID", "Task", "Category", "Due", "Time", "Priority", "Status"}
	if editMode {
		headers = append(headers, "Actions")
	}

	rows := make([][]string, 0, len(list))
	for _, r := range list {
		row := []string{
			string(r.ID),
			r.Task,
			r.Category,
			r.Due,
			r.TimeLabel(),
			p.formatter.FormatPriority(r.Priority),
			"Pending",
		}
		if editMode {
			row = append(row, "/done "+string(r.ID)+"  /rm "+string(r.ID))
		}
		rows = append(rows, row)
	}

	t := table.New().
		Border(lipgloss.RoundedBorder()).
		Headers(headers...).
		Rows(rows...)

	if p.formatter.colored {
		t = t.BorderStyle(BorderStyle).
			StyleFunc(func(row, col int) lipgloss.Style {
				if row == table.HeaderRow {
					return HeaderStyle.Padding(0, 1)
				}
				return lipgloss.NewStyle().Padding(0, 1)
			})
	} else {
		t = t.StyleFunc(func(row, col int) lipgloss.Style {
			return lipgloss.NewStyle().Padding(0, 1)
		})
	}

	return t.String()
}

func (p *Presenter) markdown(md string) string {
	renderer, err := glamour.NewTermRenderer(
		glamour.WithStandardStyle(p.Theme()),
		glamour.WithWordWrap(p.wordWrap),
	)
	if err != nil {
		return md
	}

	rendered, err := renderer.Render(md)
	if err != nil {
		return md
	}

	return strings.TrimSpace(rendered)
}

// NotesMarkdown lists notes numbered from 1; /rmnote takes that number.
func NotesMarkdown(notes []reminder.Note) string {
	if len(notes) == 0 {
		return "_No notes yet. Add one with /note._"
	}
	var b strings.Builder
	b.WriteString("## Notes\n\n")
	for i, n := range notes {
		b.WriteString(strconv.Itoa(i+1) + ". " + oneLine(n.Content))
		if !n.CreatedAt.IsZero() {
			b.WriteString(" *(" + n.CreatedAt.Local().Format("2006-01-02 15:04") + ")*")
		}
		b.WriteString("\n")
	}
	return b.String()
}

// HistoryMarkdown lists completed reminders, then store history entries
// other than completions, which the first list already covers.
func HistoryMarkdown(completed []reminder.Reminder, history []reminder.HistoryEntry) string {
	var items []string
	for _, r := range completed {
		line := fmt.Sprintf("- **Completed** %s `%s` `%s` due %s %s",
			oneLine(r.Task), r.Category, r.Priority, r.Due, r.DueTime)
		items = append(items, strings.TrimRight(line, " "))
	}
	for _, e := range history {
		if e.Action == reminder.ActionCompleted {
			continue
		}
		line := fmt.Sprintf("- **%s** %s", capitalize(e.Action), oneLine(e.Reminder.Task))
		if !e.Timestamp.IsZero() {
			line += " *(" + e.Timestamp.Local().Format("2006-01-02 15:04") + ")*"
		}
		items = append(items, line)
	}
	if len(items) == 0 {
		return "_No history yet._"
	}
	return "## History\n\n" + strings.Join(items, "\n") + "\n"
}

func oneLine(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

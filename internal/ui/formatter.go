package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/notexe/task-reminder/internal/notify"
	"github.com/notexe/task-reminder/internal/reminder"
)

var (
	ErrorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("203")). // Coral red
			Bold(true)

	InfoStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("75")) // Sky blue

	SuccessStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("114")). // Green
			Bold(true)

	WarningStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("222")). // Yellow
			Bold(true)

	SystemStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("183")). // Soft purple
			Italic(true)

	HeaderStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("81")).
			Bold(true)

	DimStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240"))

	AccentStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("147")) // Light purple

	BorderStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("62")) // Soft blue border
)

// Banner backgrounds per severity.
var bannerColors = map[notify.Severity]lipgloss.Color{
	notify.SeverityInfo:    lipgloss.Color("#2196F3"),
	notify.SeveritySuccess: lipgloss.Color("#4CAF50"),
	notify.SeverityError:   lipgloss.Color("#f44336"),
}

type Formatter struct {
	colored bool
}

func NewFormatter(colored bool) *Formatter {
	return &Formatter{colored: colored}
}

func (f *Formatter) render(style lipgloss.Style, s string) string {
	if !f.colored {
		return s
	}
	return style.Render(s)
}

func (f *Formatter) FormatError(err error) string {
	return f.render(ErrorStyle, "Error: ") + err.Error()
}

func (f *Formatter) FormatInfo(info string) string {
	return f.render(InfoStyle, info)
}

func (f *Formatter) FormatSystem(msg string) string {
	return f.render(SystemStyle, msg)
}

func (f *Formatter) FormatDim(msg string) string {
	return f.render(DimStyle, msg)
}

// FormatBanner renders a banner as a padded colored block.
func (f *Formatter) FormatBanner(b notify.Banner) string {
	if !f.colored {
		return fmt.Sprintf("[%s] %s", b.Severity, b.Message)
	}
	color, ok := bannerColors[b.Severity]
	if !ok {
		color = bannerColors[notify.SeverityInfo]
	}
	return lipgloss.NewStyle().
		Background(color).
		Foreground(lipgloss.Color("#ffffff")).
		Bold(true).
		Padding(0, 2).
		MaxWidth(60).
		Render(b.Message)
}

// FormatPriority colors a priority tag.
func (f *Formatter) FormatPriority(p string) string {
	switch p {
	case reminder.PriorityHigh:
		return f.render(ErrorStyle, p)
	case reminder.PriorityMedium:
		return f.render(WarningStyle, p)
	case reminder.PriorityLow:
		return f.render(SuccessStyle, p)
	default:
		return p
	}
}

func (f *Formatter) FormatWelcome(storeURL string) string {
	title := "Task Reminder"
	storeLine := "Store: " + storeURL
	helpLine := "Type /help for commands"

	if !f.colored {
		return strings.Join([]string{"", title, storeLine, helpLine, ""}, "\n")
	}

	box := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("62")).
		Padding(0, 1).
		Width(41).
		Render(strings.Join([]string{
			HeaderStyle.Render(title),
			DimStyle.Render("Store: ") + SuccessStyle.UnsetBold().Render(storeURL),
			"",
			lipgloss.NewStyle().Foreground(lipgloss.Color("245")).Render(helpLine),
		}, "\n"))

	return "\n" + box + "\n"
}

type helpEntry struct {
	cmd  string
	desc string
}

var helpSections = []struct {
	title   string
	entries []helpEntry
}{
	{"Reminders", []helpEntry{
		{"/list", "Show active reminders"},
		{"/add task|category|YYYY-MM-DD[|HH:MM[|priority]]", "Add a reminder"},
		{"/done <id>", "Mark a reminder completed"},
		{"/rm <id>", "Delete a reminder"},
		{"/upcoming", "Reminders due in the next 3 days"},
		{"/history", "Completed reminders and store history"},
		{"/stats", "Counters"},
	}},
	{"Notes", []helpEntry{
		{"/notes", "Show notes"},
		{"/note <text>", "Add a note"},
		{"/rmnote <n>", "Delete note number n"},
	}},
	{"Session", []helpEntry{
		{"/edit", "Toggle edit mode"},
		{"/notify on", "Enable platform notifications"},
		{"/theme [light|dark]", "Show or switch the theme"},
		{"/refresh", "Reload everything from the store"},
		{"/help", "Show this help"},
		{"/quit", "Exit"},
	}},
}

func (f *Formatter) FormatHelp() string {
	lines := []string{"", f.render(HeaderStyle, "Commands"), ""}
	for _, section := range helpSections {
		lines = append(lines, f.render(AccentStyle.Bold(true), section.title))
		for _, e := range section.entries {
			lines = append(lines, "  "+f.render(SuccessStyle.UnsetBold(), e.cmd)+"  "+f.render(DimStyle, e.desc))
		}
		lines = append(lines, "")
	}
	lines = append(lines, f.render(DimStyle, "  Ctrl+C or Ctrl+D to exit"), "")
	return strings.Join(lines, "\n")
}

// FormatPrompt returns a styled input prompt
func (f *Formatter) FormatPrompt(editMode bool) string {
	label := "reminders"
	if editMode {
		label = "reminders (edit)"
	}
	if f.colored {
		arrowStyle := lipgloss.NewStyle().
			Foreground(lipgloss.Color("114")).
			Bold(true)
		return BorderStyle.Render(label) + arrowStyle.Render(" > ")
	}
	return label + " > "
}

// FormatBox wraps content in a styled box
func (f *Formatter) FormatBox(title, content string) string {
	if f.colored {
		borderStyle := lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("62")).
			Padding(0, 1)

		return HeaderStyle.Render(title) + "\n" + borderStyle.Render(content)
	}
	return title + "\n" + content
}

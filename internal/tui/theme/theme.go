package theme

import (
	"github.com/DonovanMods/modlist-installer/internal/domain"

	"github.com/charmbracelet/lipgloss"
)

// Theme names accepted in preferences
const (
	Auto  = "auto"
	Dark  = "dark"
	Light = "light"
)

// Theme is a palette of styles for the terminal
type Theme struct {
	Name string

	Title  lipgloss.Style
	Muted  lipgloss.Style
	Accent lipgloss.Style

	Plain lipgloss.Style
	Info  lipgloss.Style
	Error lipgloss.Style
}

// Detect reports the terminal's background as Dark or Light
func Detect() string {
	if lipgloss.HasDarkBackground() {
		return Dark
	}
	return Light
}

// New returns the named theme. Unknown names and Auto detect the terminal background.
func New(name string) Theme {
	if name != Dark && name != Light {
		name = Detect()
	}

	if name == Light {
		return Theme{
			Name:   Light,
			Title:  lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("25")),
			Muted:  lipgloss.NewStyle().Foreground(lipgloss.Color("244")),
			Accent: lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("162")),
			Plain:  lipgloss.NewStyle().Foreground(lipgloss.Color("235")),
			Info:   lipgloss.NewStyle().Foreground(lipgloss.Color("28")),
			Error:  lipgloss.NewStyle().Foreground(lipgloss.Color("160")),
		}
	}

	return Theme{
		Name:   Dark,
		Title:  lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("69")),
		Muted:  lipgloss.NewStyle().Foreground(lipgloss.Color("241")),
		Accent: lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("205")),
		Plain:  lipgloss.NewStyle().Foreground(lipgloss.Color("252")),
		Info:   lipgloss.NewStyle().Foreground(lipgloss.Color("42")),
		Error:  lipgloss.NewStyle().Foreground(lipgloss.Color("196")),
	}
}

// Severity returns the style for a log line of the given severity
func (t Theme) Severity(sev domain.Severity) lipgloss.Style {
	switch sev {
	case domain.SeverityInfo:
		return t.Info
	case domain.SeverityError:
		return t.Error
	default:
		return t.Plain
	}
}

// Render styles msg for its severity
func (t Theme) Render(msg string, sev domain.Severity) string {
	return t.Severity(sev).Render(msg)
}

// Status returns the style for an install outcome
func (t Theme) Status(status domain.InstallStatus) lipgloss.Style {
	switch status {
	case domain.StatusInstalled:
		return t.Info
	case domain.StatusFailed:
		return t.Error
	default:
		return t.Muted
	}
}

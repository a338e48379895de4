package views

import (
	"fmt"
	"strings"

	"github.com/DonovanMods/modlist-installer/internal/domain"
	"github.com/DonovanMods/modlist-installer/internal/tui/theme"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
)

// Lines kept out of the viewport (title, counters, help)
const progressChrome = 6

// Progress shows the live installer log
type Progress struct {
	spinner  spinner.Model
	viewport viewport.Model
	theme    theme.Theme

	lines    []string
	done     int
	total    int
	counts   map[domain.InstallStatus]int
	running  bool
	finished bool
	err      error
}

// NewProgress creates an idle progress view
func NewProgress(th theme.Theme) Progress {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = th.Accent

	return Progress{
		spinner:  s,
		viewport: viewport.New(80, 24-progressChrome),
		theme:    th,
		counts:   make(map[domain.InstallStatus]int),
	}
}

// Running reports whether an install is in progress
func (m Progress) Running() bool {
	return m.running
}

// Finished reports whether an install has completed
func (m Progress) Finished() bool {
	return m.finished
}

// Lines returns the log lines received so far, unstyled
func (m Progress) Lines() []string {
	return m.lines
}

// Count returns how many outcomes had the given status
func (m Progress) Count(status domain.InstallStatus) int {
	return m.counts[status]
}

// Start resets the view for a new run and starts the spinner
func (m Progress) Start() (Progress, tea.Cmd) {
	m.lines = nil
	m.done, m.total = 0, 0
	m.counts = make(map[domain.InstallStatus]int)
	m.running = true
	m.finished = false
	m.err = nil
	m.viewport.SetContent("")
	return m, m.spinner.Tick
}

// Init implements tea.Model
func (m Progress) Init() tea.Cmd {
	return nil
}

// Update implements tea.Model
func (m Progress) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case spinner.TickMsg:
		if !m.running {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case LogLineMsg:
		m.lines = append(m.lines, msg.Text)
		m.refresh()
		return m, nil

	case OutcomeMsg:
		m.done, m.total = msg.Done, msg.Total
		m.counts[msg.Outcome.Status]++
		return m, nil

	case FinishedMsg:
		m.running = false
		m.finished = true
		m.err = msg.Err
		return m, nil

	case tea.WindowSizeMsg:
		m.viewport.Width = msg.Width
		m.viewport.Height = max(msg.Height-progressChrome, 3)
		m.refresh()
		return m, nil

	case tea.KeyMsg:
		var cmd tea.Cmd
		m.viewport, cmd = m.viewport.Update(msg)
		return m, cmd
	}

	return m, nil
}

// refresh re-renders the log into the viewport and follows the tail.
// Lines are styled on render so the stored log stays plain.
func (m *Progress) refresh() {
	styled := make([]string, len(m.lines))
	for i, line := range m.lines {
		styled[i] = m.theme.Render(line, severityOf(line))
	}
	m.viewport.SetContent(strings.Join(styled, "\n"))
	m.viewport.GotoBottom()
}

// severityOf recovers the severity from the installer's line markers
func severityOf(line string) domain.Severity {
	trimmed := strings.TrimSpace(line)
	switch {
	case strings.HasPrefix(trimmed, "✗"):
		return domain.SeverityError
	case strings.HasPrefix(trimmed, "ℹ"):
		return domain.SeverityInfo
	default:
		return domain.SeverityPlain
	}
}

// View implements tea.Model
func (m Progress) View() string {
	th := m.theme
	var status string
	switch {
	case m.running:
		status = fmt.Sprintf("%s Installing... %d/%d", m.spinner.View(), m.done, m.total)
	case m.finished && m.err != nil:
		status = th.Error.Render(fmt.Sprintf("Finished with errors: %v", m.err))
	case m.finished:
		status = th.Info.Render("Finished")
	default:
		status = th.Muted.Render("Press i on the modlist tab to start installing")
	}

	counts := th.Muted.Render(fmt.Sprintf("installed %d  skipped %d  failed %d",
		m.counts[domain.StatusInstalled],
		m.counts[domain.StatusSkippedPresent]+m.counts[domain.StatusSkippedOverlap],
		m.counts[domain.StatusFailed]))

	return fmt.Sprintf("%s\n%s\n\n%s", status, counts, m.viewport.View())
}

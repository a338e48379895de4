package tui

import (
	"context"
	"fmt"

	"github.com/DonovanMods/modlist-installer/internal/core"
	"github.com/DonovanMods/modlist-installer/internal/domain"
	"github.com/DonovanMods/modlist-installer/internal/tui/theme"
	"github.com/DonovanMods/modlist-installer/internal/tui/views"

	tea "github.com/charmbracelet/bubbletea"
)

// ViewType represents different screens in the TUI
type ViewType int

const (
	ViewModlist ViewType = iota
	ViewProgress
)

// Runner installs the named mods, or every mod when names is empty.
// core.Service.Install satisfies it.
type Runner func(ctx context.Context, names []string, progress core.BatchProgress) ([]domain.InstallOutcome, error)

// Config holds what the TUI needs from the caller
type Config struct {
	Modlist    domain.Modlist
	Categories []string
	Runner     Runner
	Bus        *Bus // Must also be the service's logger
	Theme      theme.Theme
	KeyMode    string
}

// App is the main TUI application model
type App struct {
	ctx    context.Context
	cancel context.CancelFunc // Non-nil while an install runs
	run    Runner
	bus    *Bus
	keys   *KeyMap
	theme  theme.Theme

	currentView ViewType
	showHelp    bool
	width       int
	height      int

	modlist  views.Modlist
	progress views.Progress
}

// NewApp creates a new TUI application.
// Installs run under ctx; cancelling it aborts a running install.
func NewApp(ctx context.Context, cfg Config) App {
	bus := cfg.Bus
	if bus == nil {
		bus = NewBus()
	}
	return App{
		ctx:         ctx,
		run:         cfg.Runner,
		bus:         bus,
		keys:        NewKeyMap(cfg.KeyMode),
		theme:       cfg.Theme,
		currentView: ViewModlist,
		width:       80,
		height:      24,
		modlist:     views.NewModlist(cfg.Modlist, cfg.Categories, cfg.Theme),
		progress:    views.NewProgress(cfg.Theme),
	}
}

// CurrentView returns the current view type
func (a App) CurrentView() ViewType {
	return a.currentView
}

// Installing reports whether an install is running
func (a App) Installing() bool {
	return a.cancel != nil
}

// Modlist returns the modlist view
func (a App) Modlist() views.Modlist {
	return a.modlist
}

// Progress returns the progress view
func (a App) Progress() views.Progress {
	return a.progress
}

// Init implements tea.Model
func (a App) Init() tea.Cmd {
	return a.bus.listen()
}

// Update implements tea.Model
func (a App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return a.handleKeyPress(msg)

	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		m, _ := a.modlist.Update(msg)
		a.modlist = m.(views.Modlist)
		p, _ := a.progress.Update(msg)
		a.progress = p.(views.Progress)
		return a, nil

	case views.StartInstallMsg:
		return a.startInstall(msg.Names)

	case views.LogLineMsg:
		a.updateProgress(msg)
		return a, a.bus.listen()

	case views.OutcomeMsg:
		a.updateProgress(msg)
		m, _ := a.modlist.Update(msg)
		a.modlist = m.(views.Modlist)
		return a, a.bus.listen()

	case views.FinishedMsg:
		a.updateProgress(msg)
		if a.cancel != nil {
			a.cancel()
			a.cancel = nil
		}
		return a, a.bus.listen()
	}

	// Spinner ticks and anything else belong to the progress view
	p, cmd := a.progress.Update(msg)
	a.progress = p.(views.Progress)
	return a, cmd
}

func (a *App) updateProgress(msg tea.Msg) {
	p, _ := a.progress.Update(msg)
	a.progress = p.(views.Progress)
}

func (a App) handleKeyPress(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	// Global keybindings
	switch {
	case a.keys.IsQuit(msg):
		if a.cancel != nil {
			a.cancel()
			a.cancel = nil
		}
		a.bus.Close()
		return a, tea.Quit

	case a.keys.IsHelp(msg):
		a.showHelp = !a.showHelp
		return a, nil

	case a.keys.IsCancel(msg) && a.showHelp:
		a.showHelp = false
		return a, nil

	case a.keys.IsNextTab(msg):
		if a.currentView == ViewModlist {
			a.currentView = ViewProgress
		} else {
			a.currentView = ViewModlist
		}
		return a, nil
	}

	msg = a.keys.Normalize(msg)

	var cmd tea.Cmd
	switch a.currentView {
	case ViewModlist:
		var m tea.Model
		m, cmd = a.modlist.Update(msg)
		a.modlist = m.(views.Modlist)
	case ViewProgress:
		var p tea.Model
		p, cmd = a.progress.Update(msg)
		a.progress = p.(views.Progress)
	}
	return a, cmd
}

// startInstall launches the runner in a command goroutine.
// Outcomes and the final result come back through the bus.
func (a App) startInstall(names []string) (tea.Model, tea.Cmd) {
	if a.cancel != nil || a.run == nil {
		return a, nil
	}

	ctx, cancel := context.WithCancel(a.ctx)
	a.cancel = cancel
	a.currentView = ViewProgress

	var tick tea.Cmd
	a.progress, tick = a.progress.Start()

	run, bus := a.run, a.bus
	install := func() tea.Msg {
		outcomes, err := run(ctx, names, core.BatchProgress{
			OnOutcome: func(done, total int, outcome domain.InstallOutcome) {
				bus.Send(views.OutcomeMsg{Done: done, Total: total, Outcome: outcome})
			},
		})
		bus.Send(views.FinishedMsg{Outcomes: outcomes, Err: err})
		return nil
	}

	return a, tea.Batch(tick, install)
}

// View implements tea.Model
func (a App) View() string {
	th := a.theme

	// Header
	header := th.Title.MarginBottom(1).Render("modlist - Starsector Modlist Installer")

	// Tab bar
	tabs := []string{"Modlist", "Progress"}
	tabBar := ""
	for i, tab := range tabs {
		if ViewType(i) == a.currentView {
			tabBar += th.Accent.Bold(true).Render(tab) + "  "
		} else {
			tabBar += th.Muted.Render(tab) + "  "
		}
	}

	var content string
	switch {
	case a.showHelp:
		content = a.keys.FullHelp()
	case a.currentView == ViewProgress:
		content = a.progress.View()
	default:
		content = a.modlist.View()
	}

	footer := th.Muted.MarginTop(1).Render(fmt.Sprintf("%s  tab: switch  q: quit  ?: help", a.keys.NavigationHelp()))

	return fmt.Sprintf("%s\n%s\n\n%s\n\n%s", header, tabBar, content, footer)
}

// Run starts the TUI application and blocks until it exits
func Run(ctx context.Context, cfg Config) error {
	app := NewApp(ctx, cfg)
	p := tea.NewProgram(app, tea.WithAltScreen(), tea.WithContext(ctx))
	_, err := p.Run()
	app.bus.Close()
	return err
}

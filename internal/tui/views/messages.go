package views

import "github.com/DonovanMods/modlist-installer/internal/domain"

// StartInstallMsg asks the app to install the named mods, or all when empty
type StartInstallMsg struct {
	Names []string
}

// LogLineMsg carries one line from the installer log
type LogLineMsg struct {
	Text     string
	Severity domain.Severity
}

// OutcomeMsg reports a finished mod
type OutcomeMsg struct {
	Done    int
	Total   int
	Outcome domain.InstallOutcome
}

// FinishedMsg is sent when an install run ends
type FinishedMsg struct {
	Outcomes []domain.InstallOutcome
	Err      error
}

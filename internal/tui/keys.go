package tui

import (
	tea "github.com/charmbracelet/bubbletea"
)

// KeyMap defines keybindings for the TUI
type KeyMap struct {
	mode string
}

// NewKeyMap creates a new keymap for the given mode
func NewKeyMap(mode string) *KeyMap {
	if mode == "" {
		mode = "vim"
	}
	return &KeyMap{mode: mode}
}

// Mode returns the current keybinding mode
func (k *KeyMap) Mode() string {
	return k.mode
}

// IsUp returns true if the key is an "up" navigation key
func (k *KeyMap) IsUp(msg tea.KeyMsg) bool {
	if msg.Type == tea.KeyUp {
		return true
	}
	if k.mode == "vim" && msg.String() == "k" {
		return true
	}
	return false
}

// IsDown returns true if the key is a "down" navigation key
func (k *KeyMap) IsDown(msg tea.KeyMsg) bool {
	if msg.Type == tea.KeyDown {
		return true
	}
	if k.mode == "vim" && msg.String() == "j" {
		return true
	}
	return false
}

// IsHome returns true if the key should go to first item
func (k *KeyMap) IsHome(msg tea.KeyMsg) bool {
	if msg.Type == tea.KeyHome {
		return true
	}
	if k.mode == "vim" && msg.String() == "g" {
		return true
	}
	return false
}

// IsEnd returns true if the key should go to last item
func (k *KeyMap) IsEnd(msg tea.KeyMsg) bool {
	if msg.Type == tea.KeyEnd {
		return true
	}
	if k.mode == "vim" && msg.String() == "G" {
		return true
	}
	return false
}

// IsCancel returns true if the key is a cancel/back key
func (k *KeyMap) IsCancel(msg tea.KeyMsg) bool {
	return msg.Type == tea.KeyEsc
}

// IsQuit returns true if the key is a quit key
func (k *KeyMap) IsQuit(msg tea.KeyMsg) bool {
	return msg.String() == "q" || msg.Type == tea.KeyCtrlC
}

// IsHelp returns true if the key should show help
func (k *KeyMap) IsHelp(msg tea.KeyMsg) bool {
	return msg.String() == "?"
}

// IsNextTab returns true if the key switches to the other tab
func (k *KeyMap) IsNextTab(msg tea.KeyMsg) bool {
	return msg.Type == tea.KeyTab
}

// Normalize maps mode-specific navigation keys onto arrow keys.
// Other keys are returned unchanged.
func (k *KeyMap) Normalize(msg tea.KeyMsg) tea.KeyMsg {
	switch {
	case k.IsUp(msg):
		return tea.KeyMsg{Type: tea.KeyUp}
	case k.IsDown(msg):
		return tea.KeyMsg{Type: tea.KeyDown}
	case k.IsHome(msg):
		return tea.KeyMsg{Type: tea.KeyHome}
	case k.IsEnd(msg):
		return tea.KeyMsg{Type: tea.KeyEnd}
	}
	return msg
}

// NavigationHelp returns help text for navigation keys
func (k *KeyMap) NavigationHelp() string {
	if k.mode == "vim" {
		return "j/k: navigate  g/G: first/last"
	}
	return "↑/↓: navigate  Home/End: first/last"
}

// FullHelp returns complete help text
func (k *KeyMap) FullHelp() string {
	if k.mode == "vim" {
		return `Navigation:
  j/k     Move down/up
  g/G     Go to first/last item
  tab     Switch between modlist and progress

Actions:
  space   Mark mod for install
  i       Install marked mods (all when none marked)
  ?       Help
  q       Quit (cancels a running install)`
	}

	return `Navigation:
  ↑/↓     Move up/down
  Home    Go to first item
  End     Go to last item
  Tab     Switch between modlist and progress

Actions:
  Space   Mark mod for install
  i       Install marked mods (all when none marked)
  ?       Help
  q       Quit (cancels a running install)`
}

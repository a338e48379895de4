package tui_test

import (
	"testing"

	"github.com/DonovanMods/modlist-installer/internal/tui"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
)

func TestKeyMap_VimMode(t *testing.T) {
	km := tui.NewKeyMap("vim")

	assert.True(t, km.IsUp(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'k'}}))
	assert.True(t, km.IsDown(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'j'}}))
	assert.True(t, km.IsHome(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'g'}}))
	assert.True(t, km.IsEnd(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'G'}}))
	assert.True(t, km.IsCancel(tea.KeyMsg{Type: tea.KeyEsc}))
	assert.True(t, km.IsQuit(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'q'}}))
	assert.True(t, km.IsNextTab(tea.KeyMsg{Type: tea.KeyTab}))
}

func TestKeyMap_StandardMode(t *testing.T) {
	km := tui.NewKeyMap("standard")

	assert.True(t, km.IsUp(tea.KeyMsg{Type: tea.KeyUp}))
	assert.True(t, km.IsDown(tea.KeyMsg{Type: tea.KeyDown}))

	// But not vim keys for navigation
	assert.False(t, km.IsUp(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'k'}}))
	assert.False(t, km.IsDown(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'j'}}))
	assert.False(t, km.IsHome(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'g'}}))
}

func TestKeyMap_DefaultsToVim(t *testing.T) {
	assert.Equal(t, "vim", tui.NewKeyMap("").Mode())
}

func TestKeyMap_QuitKeys(t *testing.T) {
	km := tui.NewKeyMap("vim")

	assert.True(t, km.IsQuit(tea.KeyMsg{Type: tea.KeyCtrlC}))
	assert.False(t, km.IsQuit(tea.KeyMsg{Type: tea.KeyEsc}))
}

func TestKeyMap_Normalize(t *testing.T) {
	vim := tui.NewKeyMap("vim")
	std := tui.NewKeyMap("standard")
	j := tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'j'}}

	assert.Equal(t, tea.KeyDown, vim.Normalize(j).Type)
	assert.Equal(t, tea.KeyRunes, std.Normalize(j).Type)
	assert.Equal(t, tea.KeyUp, std.Normalize(tea.KeyMsg{Type: tea.KeyUp}).Type)
}

func TestKeyMap_Help(t *testing.T) {
	assert.Contains(t, tui.NewKeyMap("vim").NavigationHelp(), "j/k")
	assert.Contains(t, tui.NewKeyMap("standard").NavigationHelp(), "↑/↓")
	assert.Contains(t, tui.NewKeyMap("vim").FullHelp(), "g/G")
	assert.Contains(t, tui.NewKeyMap("standard").FullHelp(), "Home")
}

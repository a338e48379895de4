package main

import (
	"testing"

	"github.com/DonovanMods/modlist-installer/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFixURLCmd_Args(t *testing.T) {
	resetFlags(t)

	out, err := execute(t, fixURLCmd,
		"https://drive.google.com/file/d/abc123/view?usp=sharing",
		"https://github.com/user/repo/releases/download/v1/mod.zip",
	)
	require.NoError(t, err)

	assert.Equal(t,
		"https://drive.usercontent.google.com/download?id=abc123&export=download&confirm=t\n"+
			"https://github.com/user/repo/releases/download/v1/mod.zip\n",
		out)
}

func TestFixURLCmd_NoArgs(t *testing.T) {
	resetFlags(t)

	_, err := execute(t, fixURLCmd)
	assert.Error(t, err)
}

func TestFixURLCmd_Modlist(t *testing.T) {
	resetFlags(t)
	saveModlist(t,
		domain.ModDescriptor{Name: "Drive", DownloadURL: "https://drive.google.com/open?id=xyz"},
		domain.ModDescriptor{Name: "Plain", DownloadURL: "https://example.com/plain.zip"},
	)

	out, err := execute(t, fixURLCmd, "--modlist")
	require.NoError(t, err)
	assert.Contains(t, out, "Updated 1 link(s).")

	list := loadModlist(t)
	assert.Equal(t, "https://drive.usercontent.google.com/download?id=xyz&export=download&confirm=t", list.Mods[0].DownloadURL)
	assert.Equal(t, "https://example.com/plain.zip", list.Mods[1].DownloadURL)

	out, err = execute(t, fixURLCmd, "--modlist")
	require.NoError(t, err)
	assert.Contains(t, out, "No links needed fixing.")
}

package main

import (
	"path/filepath"
	"testing"

	"github.com/DonovanMods/modlist-installer/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInstallCmd_InstallsAndRecordsVersion(t *testing.T) {
	resetFlags(t)
	modsDir = newModsDir(t)

	srv := modServer(t, map[string][]byte{
		"/lazylib.zip": zipBytes(t, map[string]string{
			"LazyLib/mod_info.json": `{"id": "lw_lazylib", "version": "2.8b"}`,
			"LazyLib/jars/lib.jar":  "jar",
		}),
	})
	saveModlist(t, domain.ModDescriptor{Name: "LazyLib", DownloadURL: srv.URL + "/lazylib.zip", Category: "Required"})

	out, err := execute(t, installCmd)
	require.NoError(t, err)

	assert.Contains(t, out, "Validating 1 mod URLs...")
	assert.Contains(t, out, "✓ LazyLib installed successfully")
	assert.Contains(t, out, "Done: 1 installed, 0 skipped, 0 failed")
	assert.FileExists(t, filepath.Join(modsDir, "LazyLib", "jars", "lib.jar"))
	assert.Equal(t, "2.8b", loadModlist(t).Mods[0].Version)

	// A second run skips the existing folder
	out, err = execute(t, installCmd)
	require.NoError(t, err)
	assert.Contains(t, out, "Done: 0 installed, 1 skipped, 0 failed")
}

func TestInstallCmd_FailuresReturnError(t *testing.T) {
	resetFlags(t)
	modsDir = newModsDir(t)

	srv := modServer(t, map[string][]byte{
		"/ok.zip": zipBytes(t, map[string]string{"Good/readme.txt": "hi"}),
	})
	saveModlist(t,
		domain.ModDescriptor{Name: "Good", DownloadURL: srv.URL + "/ok.zip"},
		domain.ModDescriptor{Name: "Gone", DownloadURL: srv.URL + "/missing.zip"},
	)

	out, err := execute(t, installCmd)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "1 of 2 mods failed")
	assert.Contains(t, out, "✗ Gone:")
	assert.DirExists(t, filepath.Join(modsDir, "Good"))
}

func TestInstallCmd_ByName(t *testing.T) {
	resetFlags(t)
	modsDir = newModsDir(t)

	srv := modServer(t, map[string][]byte{
		"/a.zip": zipBytes(t, map[string]string{"A/a.txt": "a"}),
		"/b.zip": zipBytes(t, map[string]string{"B/b.txt": "b"}),
	})
	saveModlist(t,
		domain.ModDescriptor{Name: "A", DownloadURL: srv.URL + "/a.zip"},
		domain.ModDescriptor{Name: "B", DownloadURL: srv.URL + "/b.zip"},
	)

	_, err := execute(t, installCmd, "B")
	require.NoError(t, err)

	assert.NoDirExists(t, filepath.Join(modsDir, "A"))
	assert.DirExists(t, filepath.Join(modsDir, "B"))

	_, err = execute(t, installCmd, "Nope")
	assert.ErrorIs(t, err, domain.ErrInvalidConfig)
}

func TestInstallCmd_NoModsDir(t *testing.T) {
	resetFlags(t)
	saveModlist(t, domain.ModDescriptor{Name: "A", DownloadURL: "https://example.com/a.zip"})

	_, err := execute(t, installCmd)
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrInvalidConfig)
}

func TestInstallCmd_TUIRejectsNames(t *testing.T) {
	resetFlags(t)

	_, err := execute(t, installCmd, "--tui", "LazyLib")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "cannot be combined with --tui")
}

func TestInstallCmd_Structure(t *testing.T) {
	assert.Equal(t, "install [mod names...]", installCmd.Use)
	assert.NotEmpty(t, installCmd.Short)
	assert.NotEmpty(t, installCmd.Long)
	assert.NotNil(t, installCmd.Flags().Lookup("tui"))
}

package main

import (
	"bytes"
	"path/filepath"
	"testing"

	"github.com/DonovanMods/modlist-installer/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetServiceConfig_Defaults(t *testing.T) {
	resetFlags(t)
	home := t.TempDir()
	t.Setenv("HOME", home)
	configDir = ""
	dataDir = ""

	cfg, err := getServiceConfig()
	require.NoError(t, err)

	assert.Equal(t, filepath.Join(home, ".config", "modlist"), cfg.ConfigDir)
	assert.Equal(t, filepath.Join(home, ".local", "share", "modlist"), cfg.DataDir)
}

func TestGetServiceConfig_Overrides(t *testing.T) {
	resetFlags(t)
	modsDir = "/games/starsector/mods"
	parallelism = 8

	cfg, err := getServiceConfig()
	require.NoError(t, err)

	assert.Equal(t, configDir, cfg.ConfigDir)
	assert.Equal(t, dataDir, cfg.DataDir)
	assert.Equal(t, "/games/starsector/mods", cfg.ModsDir)
	assert.Equal(t, 8, cfg.Parallelism)
}

func TestInitService(t *testing.T) {
	resetFlags(t)

	svc, err := initService(nil)
	require.NoError(t, err)
	t.Cleanup(func() {
		require.NoError(t, svc.Close())
	})

	// Both dedicated hosts are registered
	assert.Len(t, svc.Registry().List(), 2)
}

func TestColorEnabled(t *testing.T) {
	resetFlags(t)

	noColor = true
	assert.False(t, colorEnabled())

	noColor = false
	t.Setenv("NO_COLOR", "1")
	assert.False(t, colorEnabled())

	t.Setenv("NO_COLOR", "")
	assert.True(t, colorEnabled())
}

func TestConsoleLogger_PlainWhenColorDisabled(t *testing.T) {
	resetFlags(t)
	buf := new(bytes.Buffer)
	logger := newConsoleLogger(buf)
	logger.setTheme(nil)

	logger.Log("  ✓ LazyLib installed successfully", domain.SeverityPlain)
	logger.Log("  ✗ Download error: boom", domain.SeverityError)

	assert.Equal(t, "  ✓ LazyLib installed successfully\n  ✗ Download error: boom\n", buf.String())
}

func TestRootCmd_Structure(t *testing.T) {
	assert.Equal(t, "modlist", rootCmd.Use)
	for _, flag := range []string{"config", "data", "mods-dir", "parallel", "verbose", "json", "no-color"} {
		assert.NotNil(t, rootCmd.PersistentFlags().Lookup(flag), flag)
	}

	names := make(map[string]bool)
	for _, c := range rootCmd.Commands() {
		names[c.Name()] = true
	}
	for _, want := range []string{"install", "validate", "scan", "list", "history", "fix-url"} {
		assert.True(t, names[want], want)
	}
}

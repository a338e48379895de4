package db_test

import (
	"path/filepath"
	"testing"

	"github.com/DonovanMods/modlist-installer/internal/domain"
	"github.com/DonovanMods/modlist-installer/internal/storage/db"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestDB(t *testing.T) *db.DB {
	t.Helper()
	database, err := db.New(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() {
		require.NoError(t, database.Close())
	})
	return database
}

func TestNew_CreatesDatabase(t *testing.T) {
	database := newTestDB(t)
	assert.NotNil(t, database)
}

func TestNew_RunsMigrations(t *testing.T) {
	database := newTestDB(t)

	var count int
	err := database.QueryRow("SELECT COUNT(*) FROM install_history").Scan(&count)
	assert.NoError(t, err)

	var version int
	err = database.QueryRow("SELECT MAX(version) FROM schema_migrations").Scan(&version)
	require.NoError(t, err)
	assert.Equal(t, 2, version)
}

func TestNew_ReopenSkipsAppliedMigrations(t *testing.T) {
	path := filepath.Join(t.TempDir(), "history.db")

	first, err := db.New(path)
	require.NoError(t, err)
	require.NoError(t, first.Close())

	second, err := db.New(path)
	require.NoError(t, err)
	defer second.Close()

	var rows int
	require.NoError(t, second.QueryRow("SELECT COUNT(*) FROM schema_migrations").Scan(&rows))
	assert.Equal(t, 2, rows)
}

func TestHistory_RecordAndRecent(t *testing.T) {
	database := newTestDB(t)

	installed := domain.InstallOutcome{
		Mod:     domain.ModDescriptor{Name: "LunaLib", DownloadURL: "https://example.com/luna.zip", Version: "2.0.4"},
		Status:  domain.StatusInstalled,
		ModID:   "lunalib",
		RootDir: "LunaLib",
	}
	failed := domain.Failed(domain.ModDescriptor{Name: "Broken", DownloadURL: "https://example.com/broken.zip"},
		"corrupted archive", domain.ErrCorruptArchive)

	require.NoError(t, database.RecordOutcome(installed))
	require.NoError(t, database.RecordOutcome(failed))

	entries, err := database.RecentOutcomes(10)
	require.NoError(t, err)
	require.Len(t, entries, 2)

	// Newest first
	assert.Equal(t, "Broken", entries[0].ModName)
	assert.Equal(t, "failed", entries[0].Status)
	assert.Equal(t, "corrupted archive", entries[0].Reason)
	assert.Empty(t, entries[0].Version)

	assert.Equal(t, "LunaLib", entries[1].ModName)
	assert.Equal(t, "installed", entries[1].Status)
	assert.Equal(t, "2.0.4", entries[1].Version)
	assert.Equal(t, "lunalib", entries[1].ModID)
	assert.Equal(t, "LunaLib", entries[1].RootDir)
	assert.False(t, entries[1].InstalledAt.IsZero())
}

func TestHistory_RecentLimit(t *testing.T) {
	database := newTestDB(t)

	for _, name := range []string{"a", "b", "c"} {
		require.NoError(t, database.RecordOutcome(domain.InstallOutcome{
			Mod:    domain.ModDescriptor{Name: name, DownloadURL: "https://example.com/" + name + ".zip"},
			Status: domain.StatusSkippedPresent,
		}))
	}

	entries, err := database.RecentOutcomes(2)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, "c", entries[0].ModName)

	all, err := database.RecentOutcomes(0)
	require.NoError(t, err)
	assert.Len(t, all, 3)
}

func TestHistory_LastInstalled(t *testing.T) {
	database := newTestDB(t)

	last, err := database.LastInstalled("MagicLib")
	require.NoError(t, err)
	assert.Nil(t, last)

	mod := domain.ModDescriptor{Name: "MagicLib", DownloadURL: "https://example.com/magic.zip"}
	mod.Version = "1.5.5"
	require.NoError(t, database.RecordOutcome(domain.InstallOutcome{Mod: mod, Status: domain.StatusInstalled}))
	mod.Version = "1.5.6"
	require.NoError(t, database.RecordOutcome(domain.InstallOutcome{Mod: mod, Status: domain.StatusInstalled}))
	require.NoError(t, database.RecordOutcome(domain.Failed(mod, "boom", domain.ErrNetwork)))

	last, err = database.LastInstalled("MagicLib")
	require.NoError(t, err)
	require.NotNil(t, last)
	assert.Equal(t, "1.5.6", last.Version)
	assert.Equal(t, "installed", last.Status)
}

func TestPrune_KeepsNewest(t *testing.T) {
	database := newTestDB(t)

	for _, name := range []string{"a", "b", "c", "d"} {
		require.NoError(t, database.RecordOutcome(domain.InstallOutcome{
			Mod:    domain.ModDescriptor{Name: name, DownloadURL: "https://example.com/" + name + ".zip"},
			Status: domain.StatusInstalled,
		}))
	}

	removed, err := database.Prune(2)
	require.NoError(t, err)
	assert.Equal(t, int64(2), removed)

	entries, err := database.RecentOutcomes(0)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, "d", entries[0].ModName)
	assert.Equal(t, "c", entries[1].ModName)

	removed, err = database.Prune(0)
	require.NoError(t, err)
	assert.Zero(t, removed)
}

func TestNew_CreatesParentDirectory(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "data", "modlist.db")

	database, err := db.New(path)
	require.NoError(t, err)
	require.NoError(t, database.Close())

	assert.FileExists(t, path)
}

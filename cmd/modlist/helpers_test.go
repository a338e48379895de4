package main

import (
	"archive/zip"
	"bytes"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/DonovanMods/modlist-installer/internal/domain"
	"github.com/DonovanMods/modlist-installer/internal/storage/config"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/require"
)

// resetFlags points the global flags at fresh temp directories and keeps
// staged downloads out of the shared temp dir
func resetFlags(t *testing.T) {
	t.Helper()
	configDir = t.TempDir()
	dataDir = t.TempDir()
	stageDir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(configDir, "config.yaml"), []byte("staging_dir: "+stageDir+"\n"), 0644))

	modsDir = ""
	parallelism = 0
	verbose = false
	jsonOutput = false
	noColor = true
	installTUI = false
	fixURLModlist = false
	historyLimit = 20
}

// execute runs sub under a throwaway root and returns everything it printed
func execute(t *testing.T, sub *cobra.Command, args ...string) (string, error) {
	t.Helper()
	cmd := &cobra.Command{Use: "test", SilenceUsage: true, SilenceErrors: true}
	cmd.AddCommand(sub)

	buf := new(bytes.Buffer)
	cmd.SetOut(buf)
	cmd.SetErr(buf)
	cmd.SetArgs(append([]string{sub.Name()}, args...))

	err := cmd.Execute()
	return buf.String(), err
}

func saveModlist(t *testing.T, mods ...domain.ModDescriptor) {
	t.Helper()
	list := domain.DefaultModlist()
	list.Mods = mods
	require.NoError(t, config.NewStore(dataDir).SaveModlist(list))
}

func loadModlist(t *testing.T) domain.Modlist {
	t.Helper()
	list, err := config.NewStore(dataDir).LoadModlist()
	require.NoError(t, err)
	return list
}

func zipBytes(t *testing.T, files map[string]string) []byte {
	t.Helper()
	buf := new(bytes.Buffer)
	zw := zip.NewWriter(buf)
	for name, content := range files {
		w, err := zw.Create(name)
		require.NoError(t, err)
		_, err = w.Write([]byte(content))
		require.NoError(t, err)
	}
	require.NoError(t, zw.Close())
	return buf.Bytes()
}

// modServer serves archives by path; unknown paths are 404
func modServer(t *testing.T, archives map[string][]byte) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		data, ok := archives[r.URL.Path]
		if !ok {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "application/zip")
		if r.Method == http.MethodHead {
			return
		}
		_, _ = w.Write(data)
	}))
	t.Cleanup(srv.Close)
	return srv
}

func newModsDir(t *testing.T) string {
	t.Helper()
	dir := filepath.Join(t.TempDir(), "mods")
	require.NoError(t, os.MkdirAll(dir, 0755))
	return dir
}

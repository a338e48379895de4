package core_test

import (
	"archive/zip"
	"bytes"
	"net/url"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"testing"

	"github.com/DonovanMods/modlist-installer/internal/domain"
	"github.com/DonovanMods/modlist-installer/internal/source"

	"github.com/stretchr/testify/require"
)

// fakeHost claims every URL on one host name, typically the httptest server
type fakeHost struct {
	id           string
	host         string
	probe        source.ProbeStrategy
	interstitial bool
	rewrite      func(string) string
}

func (h *fakeHost) ID() string                  { return h.id }
func (h *fakeHost) Name() string                { return h.id }
func (h *fakeHost) Match(u *url.URL) bool       { return u.Hostname() == h.host }
func (h *fakeHost) Probe() source.ProbeStrategy { return h.probe }
func (h *fakeHost) ServesInterstitial() bool    { return h.interstitial }
func (h *fakeHost) NormalizeURL(raw string) string {
	if h.rewrite != nil {
		return h.rewrite(raw)
	}
	return raw
}

func registryWith(hosts ...source.Host) *source.Registry {
	reg := source.NewRegistry()
	for _, h := range hosts {
		reg.Register(h)
	}
	return reg
}

func hostOf(t *testing.T, rawURL string) string {
	t.Helper()
	u, err := url.Parse(rawURL)
	require.NoError(t, err)
	return u.Hostname()
}

// zipBytes builds a zip archive in memory. Names ending in "/" become
// directory entries.
func zipBytes(t *testing.T, files map[string]string) []byte {
	t.Helper()
	var buf bytes.Buffer
	w := zip.NewWriter(&buf)

	names := make([]string, 0, len(files))
	for name := range files {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		fw, err := w.Create(name)
		require.NoError(t, err)
		if content := files[name]; content != "" {
			_, err = fw.Write([]byte(content))
			require.NoError(t, err)
		}
	}
	require.NoError(t, w.Close())
	return buf.Bytes()
}

// createTestZip writes a zip archive into dir and returns its path
func createTestZip(t *testing.T, dir string, files map[string]string) string {
	t.Helper()
	zipPath := filepath.Join(dir, "test.zip")
	require.NoError(t, os.WriteFile(zipPath, zipBytes(t, files), 0644))
	return zipPath
}

// listTree returns every path under dir, relative and slash separated
func listTree(t *testing.T, dir string) []string {
	t.Helper()
	var paths []string
	err := filepath.Walk(dir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if path == dir {
			return nil
		}
		rel, err := filepath.Rel(dir, path)
		if err != nil {
			return err
		}
		paths = append(paths, filepath.ToSlash(rel))
		return nil
	})
	require.NoError(t, err)
	sort.Strings(paths)
	return paths
}

type logLine struct {
	msg string
	sev domain.Severity
}

// recordingLogger collects log lines for assertions
type recordingLogger struct {
	mu    sync.Mutex
	lines []logLine
}

func (l *recordingLogger) Log(msg string, sev domain.Severity) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.lines = append(l.lines, logLine{msg: msg, sev: sev})
}

func (l *recordingLogger) messages() []string {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]string, 0, len(l.lines))
	for _, line := range l.lines {
		out = append(out, line.msg)
	}
	return out
}

// contains reports whether any line with severity sev contains substr
func (l *recordingLogger) contains(substr string, sev domain.Severity) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	for _, line := range l.lines {
		if line.sev == sev && strings.Contains(line.msg, substr) {
			return true
		}
	}
	return false
}

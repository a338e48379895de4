package staging

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"
)

// Prefix marks files created by the staging area so stale ones can be swept
const Prefix = "modlist_"

// StaleAfter is how old an untracked staged file must be before Sweep removes
// it. Younger files may belong to another process still downloading.
const StaleAfter = time.Hour

// Staging hands out unique temporary files for downloads in flight
type Staging struct {
	dir string

	mu       sync.Mutex
	inflight map[string]struct{}
}

// New creates a staging area rooted at dir.
// An empty dir uses the system temporary directory.
func New(dir string) *Staging {
	if dir == "" {
		dir = os.TempDir()
	}
	return &Staging{
		dir:      dir,
		inflight: make(map[string]struct{}),
	}
}

// Dir returns the staging directory
func (s *Staging) Dir() string {
	return s.dir
}

// Create opens a fresh, uniquely named file ending in suffix
func (s *Staging) Create(suffix string) (*os.File, error) {
	if err := os.MkdirAll(s.dir, 0755); err != nil {
		return nil, fmt.Errorf("creating staging dir: %w", err)
	}

	f, err := os.CreateTemp(s.dir, Prefix+"*"+suffix)
	if err != nil {
		return nil, fmt.Errorf("creating staged file: %w", err)
	}

	s.mu.Lock()
	s.inflight[f.Name()] = struct{}{}
	s.mu.Unlock()

	return f, nil
}

// Remove deletes a staged file. Missing files are not an error.
func (s *Staging) Remove(path string) error {
	s.mu.Lock()
	delete(s.inflight, path)
	s.mu.Unlock()

	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("removing staged file: %w", err)
	}
	return nil
}

// InFlight returns the staged files not yet removed, sorted
func (s *Staging) InFlight() []string {
	s.mu.Lock()
	defer s.mu.Unlock()

	paths := make([]string, 0, len(s.inflight))
	for p := range s.inflight {
		paths = append(paths, p)
	}
	sort.Strings(paths)
	return paths
}

// Cleanup removes every file still tracked as in flight, best effort
func (s *Staging) Cleanup() {
	for _, p := range s.InFlight() {
		_ = s.Remove(p)
	}
}

// Sweep removes stale staged files left behind by a previous run.
// Files tracked as in flight, and files modified within StaleAfter, are kept.
// Returns the number removed.
func (s *Staging) Sweep() (int, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		if os.IsNotExist(err) {
			return 0, nil
		}
		return 0, fmt.Errorf("reading staging dir: %w", err)
	}

	live := make(map[string]struct{})
	for _, p := range s.InFlight() {
		live[p] = struct{}{}
	}

	removed := 0
	for _, e := range entries {
		if e.IsDir() || !strings.HasPrefix(e.Name(), Prefix) {
			continue
		}
		path := filepath.Join(s.dir, e.Name())
		if _, ok := live[path]; ok {
			continue
		}
		info, err := e.Info()
		if err != nil || time.Since(info.ModTime()) < StaleAfter {
			continue
		}
		if err := os.Remove(path); err == nil {
			removed++
		}
	}

	return removed, nil
}

package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/DonovanMods/modlist-installer/internal/domain"
)

func TestParseModsDir(t *testing.T) {
	tests := []struct {
		name    string
		path    string
		setup   func(t *testing.T) string // returns path to use
		wantErr bool
		errMsg  string
	}{
		{
			name: "valid absolute path to existing directory",
			setup: func(t *testing.T) string {
				return t.TempDir()
			},
			wantErr: false,
		},
		{
			name:    "empty path",
			path:    "",
			wantErr: true,
			errMsg:  "invalid configuration: mods directory cannot be empty",
		},
		{
			name:    "relative path",
			path:    "Starsector/mods",
			wantErr: true,
			errMsg:  "invalid configuration: mods directory must be absolute",
		},
		{
			name:    "path with parent directory traversal",
			path:    "/opt/../opt/Starsector/mods",
			wantErr: true,
			errMsg:  "invalid configuration: mods directory contains invalid traversal",
		},
		{
			name: "path to non-existent directory",
			setup: func(t *testing.T) string {
				return filepath.Join(t.TempDir(), "mods")
			},
			wantErr: true,
			errMsg:  "invalid configuration: mods directory does not exist",
		},
		{
			name: "dots inside a folder name are not traversal",
			setup: func(t *testing.T) string {
				path := filepath.Join(t.TempDir(), "Starsector..0.98", "mods")
				if err := os.MkdirAll(path, 0755); err != nil {
					t.Fatalf("failed to create test dir: %v", err)
				}
				return path
			},
			wantErr: false,
		},
		{
			name: "path to file instead of directory",
			setup: func(t *testing.T) string {
				path := filepath.Join(t.TempDir(), "mods")
				if err := os.WriteFile(path, []byte("x"), 0644); err != nil {
					t.Fatalf("failed to create test file: %v", err)
				}
				return path
			},
			wantErr: true,
			errMsg:  "invalid configuration: mods directory is a file, not a directory",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := tt.path
			if tt.setup != nil {
				path = tt.setup(t)
			}

			got, err := ParseModsDir(path)

			if tt.wantErr {
				if err == nil {
					t.Errorf("ParseModsDir(%q) expected error, got nil", path)
					return
				}
				if tt.errMsg != "" && err.Error() != tt.errMsg {
					t.Errorf("ParseModsDir(%q) error = %q, want %q", path, err.Error(), tt.errMsg)
				}
				if !errors.Is(err, domain.ErrInvalidConfig) {
					t.Errorf("ParseModsDir(%q) error = %v, want ErrInvalidConfig", path, err)
				}
				return
			}

			if err != nil {
				t.Errorf("ParseModsDir(%q) unexpected error: %v", path, err)
				return
			}

			if got != filepath.Clean(path) {
				t.Errorf("ParseModsDir(%q) = %q, want %q", path, got, path)
			}
		})
	}
}

func TestParseModsDir_ExpandsHome(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)
	if err := os.MkdirAll(filepath.Join(home, "starsector", "mods"), 0755); err != nil {
		t.Fatalf("failed to create test dir: %v", err)
	}

	got, err := ParseModsDir("~/starsector/mods")
	if err != nil {
		t.Fatalf("ParseModsDir() unexpected error: %v", err)
	}
	if want := filepath.Join(home, "starsector", "mods"); got != want {
		t.Errorf("ParseModsDir() = %q, want %q", got, want)
	}
}

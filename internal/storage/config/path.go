// Package config provides configuration file parsing and validation.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/DonovanMods/modlist-installer/internal/domain"
)

// ParseModsDir checks that path names an existing Starsector mods directory
// and returns it cleaned. A leading "~/" is expanded to the home directory.
// Failures wrap domain.ErrInvalidConfig.
func ParseModsDir(path string) (string, error) {
	invalid := func(reason string) error {
		return fmt.Errorf("%w: mods directory %s", domain.ErrInvalidConfig, reason)
	}

	if strings.TrimSpace(path) == "" {
		return "", invalid("cannot be empty")
	}

	if rest, ok := strings.CutPrefix(path, "~/"); ok {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("expanding ~: %w", err)
		}
		path = filepath.Join(home, rest)
	}

	if !filepath.IsAbs(path) {
		return "", invalid("must be absolute")
	}

	if slices.Contains(strings.Split(filepath.ToSlash(path), "/"), "..") {
		return "", invalid("contains invalid traversal")
	}

	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return "", invalid("does not exist")
		}
		return "", fmt.Errorf("checking mods directory: %w", err)
	}

	if !info.IsDir() {
		return "", invalid("is a file, not a directory")
	}

	return filepath.Clean(path), nil
}

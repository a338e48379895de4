package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/DonovanMods/modlist-installer/internal/domain"
)

// File names inside the data directory
const (
	ModlistFile     = "modlist.json"
	CategoriesFile  = "categories.json"
	PreferencesFile = "preferences.json"
)

// DefaultCategories are written the first time categories are loaded
var DefaultCategories = []string{
	"Required", "Graphics", "Gameplay", "Content", "Quality of Life", "Utility", "Uncategorized",
}

// Preferences are per-user settings remembered between runs
type Preferences struct {
	LastModsDir string `json:"last_starsector_path,omitempty"`
	Theme       string `json:"theme,omitempty"`
}

// Store persists the modlist, categories and preferences as JSON files
type Store struct {
	dir string
}

// NewStore creates a store rooted at dataDir
func NewStore(dataDir string) *Store {
	return &Store{dir: dataDir}
}

// Path returns the full path of a store file
func (s *Store) Path(name string) string {
	return filepath.Join(s.dir, name)
}

// LoadModlist reads the modlist. A missing file is replaced by the default modlist.
// Every mod is validated; any invalid entry fails the load.
func (s *Store) LoadModlist() (domain.Modlist, error) {
	var list domain.Modlist
	found, err := s.readJSON(ModlistFile, &list)
	if err != nil {
		return domain.Modlist{}, fmt.Errorf("loading modlist: %w", err)
	}
	if !found {
		list = domain.DefaultModlist()
		if err := s.SaveModlist(list); err != nil {
			return domain.Modlist{}, err
		}
		return list, nil
	}

	var errs []error
	for _, m := range list.Mods {
		if err := m.Validate(); err != nil {
			errs = append(errs, err)
		}
	}
	if len(errs) > 0 {
		return domain.Modlist{}, fmt.Errorf("loading modlist: %w", errors.Join(errs...))
	}

	if list.Mods == nil {
		list.Mods = []domain.ModDescriptor{}
	}
	return list, nil
}

// SaveModlist writes the modlist atomically
func (s *Store) SaveModlist(list domain.Modlist) error {
	if err := s.writeJSON(ModlistFile, list); err != nil {
		return fmt.Errorf("saving modlist: %w", err)
	}
	return nil
}

// LoadCategories reads the category names, writing the defaults if none exist
func (s *Store) LoadCategories() ([]string, error) {
	var categories []string
	found, err := s.readJSON(CategoriesFile, &categories)
	if err == nil && found {
		return categories, nil
	}

	categories = append([]string(nil), DefaultCategories...)
	if err := s.SaveCategories(categories); err != nil {
		return nil, err
	}
	return categories, nil
}

// SaveCategories writes the category names atomically
func (s *Store) SaveCategories(categories []string) error {
	if err := s.writeJSON(CategoriesFile, categories); err != nil {
		return fmt.Errorf("saving categories: %w", err)
	}
	return nil
}

// LoadPreferences reads preferences; missing or unreadable files yield zero values
func (s *Store) LoadPreferences() Preferences {
	var prefs Preferences
	if _, err := s.readJSON(PreferencesFile, &prefs); err != nil {
		return Preferences{}
	}
	return prefs
}

// SavePreferences writes preferences atomically
func (s *Store) SavePreferences(prefs Preferences) error {
	if err := s.writeJSON(PreferencesFile, prefs); err != nil {
		return fmt.Errorf("saving preferences: %w", err)
	}
	return nil
}

func (s *Store) readJSON(name string, v any) (bool, error) {
	data, err := os.ReadFile(s.Path(name))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return false, nil
		}
		return false, fmt.Errorf("reading %s: %w", name, err)
	}
	if err := json.Unmarshal(data, v); err != nil {
		return true, fmt.Errorf("parsing %s: %w", name, err)
	}
	return true, nil
}

// writeJSON writes to a temp file in the same directory then renames it over
// the target, so a crash mid-write never leaves a truncated file.
func (s *Store) writeJSON(name string, v any) (err error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling %s: %w", name, err)
	}

	if err := os.MkdirAll(s.dir, 0755); err != nil {
		return fmt.Errorf("creating data dir: %w", err)
	}

	tmp, err := os.CreateTemp(s.dir, ".tmp_*_"+name)
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}
	defer func() {
		if err != nil {
			tmp.Close()
			os.Remove(tmp.Name())
		}
	}()

	if _, err = tmp.Write(append(data, '\n')); err != nil {
		return fmt.Errorf("writing %s: %w", name, err)
	}
	if err = tmp.Close(); err != nil {
		return fmt.Errorf("closing %s: %w", name, err)
	}
	if err = os.Rename(tmp.Name(), s.Path(name)); err != nil {
		return fmt.Errorf("replacing %s: %w", name, err)
	}
	return nil
}

package domain

import (
	"fmt"
	"net/url"
	"strings"
)

// ModDescriptor is a mod entry from the modlist
type ModDescriptor struct {
	Name        string `json:"name"`
	DownloadURL string `json:"download_url"`
	Version     string `json:"version,omitempty"` // Empty until recovered from mod_info.json
	Category    string `json:"category,omitempty"`
}

// Key returns the identity used to correlate outcomes with their mod
func (m ModDescriptor) Key() string {
	return m.Name + "|" + m.DownloadURL
}

// HasURL reports whether the descriptor carries a non-blank download URL
func (m ModDescriptor) HasURL() bool {
	return strings.TrimSpace(m.DownloadURL) != ""
}

// ParsedURL returns the descriptor's download URL if it is an absolute http(s) URL
func (m ModDescriptor) ParsedURL() (*url.URL, error) {
	raw := strings.TrimSpace(m.DownloadURL)
	if raw == "" {
		return nil, ErrNoDownloadURL
	}
	u, err := url.Parse(raw)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidURL, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("%w: unsupported scheme %q", ErrInvalidURL, u.Scheme)
	}
	if u.Host == "" {
		return nil, fmt.Errorf("%w: missing host", ErrInvalidURL)
	}
	return u, nil
}

// Validate checks the fields required at the configuration-load boundary.
// An empty URL is allowed here; it is reported later as a validation failure.
func (m ModDescriptor) Validate() error {
	if strings.TrimSpace(m.Name) == "" {
		return fmt.Errorf("%w: mod without a name", ErrInvalidConfig)
	}
	if m.HasURL() {
		if _, err := m.ParsedURL(); err != nil {
			return fmt.Errorf("mod %q: %w", m.Name, err)
		}
	}
	return nil
}

// Modlist is the persisted collection of mods to install
type Modlist struct {
	Name        string          `json:"modlist_name"`
	Version     string          `json:"version"`
	GameVersion string          `json:"starsector_version"`
	Description string          `json:"description"`
	Mods        []ModDescriptor `json:"mods"`
}

// DefaultModlist returns the modlist written when none exists yet
func DefaultModlist() Modlist {
	return Modlist{
		Name:        "ASTRA",
		Version:     "1.0",
		GameVersion: "0.98a-RC8",
		Description: "Starsector Modlist",
		Mods:        []ModDescriptor{},
	}
}

// SetVersion records a recovered version on the mod matching key.
// Returns false if no mod matches.
func (l *Modlist) SetVersion(key, version string) bool {
	for i := range l.Mods {
		if l.Mods[i].Key() == key {
			l.Mods[i].Version = version
			return true
		}
	}
	return false
}

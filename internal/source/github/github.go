package github

import (
	"net/url"
	"strings"

	"github.com/DonovanMods/modlist-installer/internal/domain"
	"github.com/DonovanMods/modlist-installer/internal/source"
)

// GitHub handles release assets hosted on github.com.
// Release downloads redirect to a signed objects URL; the redirect is
// resolved anonymously by the HTTP client.
type GitHub struct{}

// New creates a new GitHub host
func New() *GitHub {
	return &GitHub{}
}

// ID returns the host identifier
func (g *GitHub) ID() string {
	return domain.CategoryGitHub
}

// Name returns the display name
func (g *GitHub) Name() string {
	return "GitHub"
}

// Match reports whether u points at GitHub or its asset CDN
func (g *GitHub) Match(u *url.URL) bool {
	host := strings.ToLower(u.Hostname())
	return host == "github.com" ||
		host == "www.github.com" ||
		host == "codeload.github.com" ||
		strings.HasSuffix(host, ".githubusercontent.com")
}

// Probe returns the probing strategy
func (g *GitHub) Probe() source.ProbeStrategy {
	return source.ProbeHeadFirst
}

// ServesInterstitial is false: GitHub always streams the asset
func (g *GitHub) ServesInterstitial() bool {
	return false
}

// NormalizeURL returns raw unchanged
func (g *GitHub) NormalizeURL(raw string) string {
	return raw
}

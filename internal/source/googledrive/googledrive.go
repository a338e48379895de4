package googledrive

import (
	"net/url"
	"regexp"
	"strings"

	"github.com/DonovanMods/modlist-installer/internal/domain"
	"github.com/DonovanMods/modlist-installer/internal/source"
)

// directDownload is the endpoint that skips the large-file warning page
const directDownload = "https://drive.usercontent.google.com/download"

var fileIDPath = regexp.MustCompile(`/file/d/([A-Za-z0-9_-]+)`)

// GoogleDrive handles files shared from Google Drive
type GoogleDrive struct{}

// New creates a new Google Drive host
func New() *GoogleDrive {
	return &GoogleDrive{}
}

// ID returns the host identifier
func (g *GoogleDrive) ID() string {
	return domain.CategoryGoogleDrive
}

// Name returns the display name
func (g *GoogleDrive) Name() string {
	return "Google Drive"
}

// Match reports whether u is a Drive share or download link
func (g *GoogleDrive) Match(u *url.URL) bool {
	return isDriveHost(u.Hostname())
}

// Probe returns ProbeGetOnly: Drive answers HEAD with 405 or a bogus 200
func (g *GoogleDrive) Probe() source.ProbeStrategy {
	return source.ProbeGetOnly
}

// ServesInterstitial is true: large files get a virus-scan warning page
func (g *GoogleDrive) ServesInterstitial() bool {
	return true
}

// NormalizeURL rewrites share links to the direct download endpoint
func (g *GoogleDrive) NormalizeURL(raw string) string {
	return FixURL(raw)
}

// FixURL converts a Drive share link ("/file/d/<id>/view" or "?id=<id>")
// into a direct download link with the confirmation flag set.
// Other URLs, and Drive URLs without a file id, are returned unchanged.
func FixURL(raw string) string {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil || !isDriveHost(u.Hostname()) {
		return raw
	}

	id := ""
	if m := fileIDPath.FindStringSubmatch(u.Path); m != nil {
		id = m[1]
	} else {
		id = u.Query().Get("id")
	}
	if id == "" {
		return raw
	}

	return directDownload + "?id=" + url.QueryEscape(id) + "&export=download&confirm=t"
}

func isDriveHost(host string) bool {
	host = strings.ToLower(host)
	return host == "drive.google.com" ||
		host == "docs.google.com" ||
		host == "drive.usercontent.google.com"
}

package source

import "net/url"

// ProbeStrategy controls how the validator checks that a URL is reachable
type ProbeStrategy int

const (
	ProbeHeadFirst ProbeStrategy = iota // HEAD, fall back to GET on 403/405
	ProbeGetOnly                        // Host rejects HEAD, go straight to a ranged GET
)

// Host is a download host that needs dedicated handling
type Host interface {
	// Identity; ID doubles as the validation category
	ID() string
	Name() string

	// Match reports whether u is served by this host
	Match(u *url.URL) bool

	// Probing and downloading quirks
	Probe() ProbeStrategy
	ServesInterstitial() bool
	NormalizeURL(raw string) string
}

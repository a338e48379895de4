package source

import (
	"fmt"
	"net/url"
	"sort"
	"strings"
	"sync"

	"github.com/DonovanMods/modlist-installer/internal/domain"
)

// Registry manages hosts with dedicated handling
type Registry struct {
	mu    sync.RWMutex
	hosts map[string]Host
}

// NewRegistry creates a new host registry
func NewRegistry() *Registry {
	return &Registry{
		hosts: make(map[string]Host),
	}
}

// Register adds a host to the registry
func (r *Registry) Register(host Host) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.hosts[host.ID()] = host
}

// Get retrieves a host by ID
func (r *Registry) Get(id string) (Host, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	host, ok := r.hosts[id]
	if !ok {
		return nil, fmt.Errorf("host not found: %s", id)
	}
	return host, nil
}

// List returns all registered hosts sorted by ID
func (r *Registry) List() []Host {
	r.mu.RLock()
	defer r.mu.RUnlock()

	hosts := make([]Host, 0, len(r.hosts))
	for _, h := range r.hosts {
		hosts = append(hosts, h)
	}
	sort.Slice(hosts, func(i, j int) bool { return hosts[i].ID() < hosts[j].ID() })
	return hosts
}

// Lookup returns the registered host serving u, or nil for generic hosts
func (r *Registry) Lookup(u *url.URL) Host {
	if u == nil {
		return nil
	}
	for _, h := range r.List() {
		if h.Match(u) {
			return h
		}
	}
	return nil
}

// Classify returns the validation category for u and the grouping key.
// Registered hosts group under their ID; everything else groups by host name.
func (r *Registry) Classify(u *url.URL) (category, key string) {
	if h := r.Lookup(u); h != nil {
		return h.ID(), h.ID()
	}
	return domain.CategoryOther, strings.ToLower(u.Hostname())
}

// NormalizeURL applies the matching host's rewrite, if any
func (r *Registry) NormalizeURL(raw string) string {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil {
		return raw
	}
	if h := r.Lookup(u); h != nil {
		return h.NormalizeURL(raw)
	}
	return raw
}

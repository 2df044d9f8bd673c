package providers

import (
	"fmt"
	"sort"
	"sync"
)

// Registry holds every configured LLM vendor, keyed by Provider.Name().
// cmd/agentrun populates one with bridge-routed providers before handing a
// single selected Provider to agent.NewLoop — the registry itself is only
// consulted at startup and by
// tools (read_image/create_image) that need a second provider's vision
// model regardless of which provider the main chat loop uses.
type Registry struct {
	mu        sync.RWMutex
	providers map[string]Provider
}

// NewRegistry creates an empty provider registry.
func NewRegistry() *Registry {
	return &Registry{providers: make(map[string]Provider)}
}

// Register adds or replaces a provider under its own Name().
func (r *Registry) Register(p Provider) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.providers[p.Name()] = p
}

// Get returns the named provider, or an error if it isn't registered
// (no API key configured for it, most commonly).
func (r *Registry) Get(name string) (Provider, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	p, ok := r.providers[name]
	if !ok {
		return nil, fmt.Errorf("provider %q not registered", name)
	}
	return p, nil
}

// List returns every registered provider name, sorted for stable output
// (picking a fallback provider, listing available models).
func (r *Registry) List() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]string, 0, len(r.providers))
	for name := range r.providers {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

// Count returns the number of registered providers.
func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.providers)
}

package sandbox

import "fmt"

// backends is a static factory registry, populated by each backend's
// init() function. Like internal/channels/manager.go's per-platform
// factories, this is never loaded from arbitrary config paths — only the
// backends compiled into this binary are reachable by name.
var backends = map[string]Backend{}

// Register adds a backend under name. Called from backend init()
// functions; panics on duplicate registration since that indicates a
// build-time mistake, not a runtime condition.
func Register(name string, b Backend) {
	if _, exists := backends[name]; exists {
		panic(fmt.Sprintf("sandbox: backend %q already registered", name))
	}
	backends[name] = b
}

// Lookup resolves a backend by name.
func Lookup(name string) (Backend, error) {
	b, ok := backends[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrBackendNotFound, name)
	}
	return b, nil
}

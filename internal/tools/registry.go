package tools

import (
	"context"
	"sync"
	"time"

	"github.com/nextlevelbuilder/goclaw/internal/providers"
)

// Tool is anything the agent loop can call: a name/description/JSON-schema
// triple the LLM sees, plus an Execute method that reads request-scoped
// context (channel, chat ID, sandbox key, workspace — see context_keys.go)
// instead of mutable setter fields, so one Tool instance is safe to call
// concurrently across sessions.
type Tool interface {
	Name() string
	Description() string
	Parameters() map[string]interface{}
	Execute(ctx context.Context, args map[string]interface{}) *Result
}

// AsyncCallback is invoked when a tool that returned Result.Async completes
// its work out-of-band (e.g. a spawned subagent finishing after the turn
// that spawned it has already returned a response to the user).
type AsyncCallback func(ctx context.Context, result *Result)

// Registry holds every tool available to an agent loop, keyed by name.
type Registry struct {
	mu    sync.RWMutex
	tools map[string]Tool
	order []string // registration order, for stable ProviderDefs/List output

	rateLimiter *ToolRateLimiter
	scrub       bool
}

// NewRegistry creates an empty tool registry.
func NewRegistry() *Registry {
	return &Registry{tools: make(map[string]Tool)}
}

// Register adds or replaces a tool under its own Name().
func (r *Registry) Register(t Tool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	name := t.Name()
	if _, exists := r.tools[name]; !exists {
		r.order = append(r.order, name)
	}
	r.tools[name] = t
}

// Get returns the tool registered under name, if any.
func (r *Registry) Get(name string) (Tool, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	t, ok := r.tools[name]
	return t, ok
}

// List returns every registered tool name, in registration order.
func (r *Registry) List() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]string, len(r.order))
	copy(out, r.order)
	return out
}

// Count returns the number of registered tools.
func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.tools)
}

// ProviderDefs returns every registered tool's schema as provider tool
// definitions, in registration order, for an unfiltered (no-policy) agent.
func (r *Registry) ProviderDefs() []providers.ToolDefinition {
	r.mu.RLock()
	defer r.mu.RUnlock()
	defs := make([]providers.ToolDefinition, 0, len(r.order))
	for _, name := range r.order {
		defs = append(defs, ToProviderDef(r.tools[name]))
	}
	return defs
}

// SetRateLimiter installs a per-tool-call rate limiter; nil disables limiting.
func (r *Registry) SetRateLimiter(rl *ToolRateLimiter) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.rateLimiter = rl
}

// SetScrubbing toggles credential scrubbing of tool output (see scrub.go).
func (r *Registry) SetScrubbing(enabled bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.scrub = enabled
}

// ExecuteWithContext injects the per-call routing context (channel/chatID/
// peerKind/sandboxKey, optional async callback) that individual Tool
// implementations read back via context_keys.go's accessors, then runs the
// tool. Unknown tool names and rate-limit denials both return an IsError
// Result rather than panicking — the LLM sees a normal tool-error message.
func (r *Registry) ExecuteWithContext(ctx context.Context, name string, args map[string]interface{}, channel, chatID, peerKind, sandboxKey string, asyncCB AsyncCallback) *Result {
	r.mu.RLock()
	tool, ok := r.tools[name]
	limiter := r.rateLimiter
	scrub := r.scrub
	r.mu.RUnlock()

	if !ok {
		return ErrorResult("unknown tool: " + name)
	}

	if limiter != nil && !limiter.Allow(name) {
		return ErrorResult("tool rate limit exceeded: " + name)
	}

	ctx = WithToolChannel(ctx, channel)
	ctx = WithToolChatID(ctx, chatID)
	ctx = WithToolPeerKind(ctx, peerKind)
	ctx = WithToolSandboxKey(ctx, sandboxKey)
	if asyncCB != nil {
		ctx = WithToolAsyncCB(ctx, asyncCB)
	}

	result := tool.Execute(ctx, args)
	if scrub && result != nil {
		result.ForLLM = ScrubCredentials(result.ForLLM)
		if result.ForUser != "" {
			result.ForUser = ScrubCredentials(result.ForUser)
		}
	}
	return result
}

// ToProviderDef converts a Tool's schema into the wire shape every
// providers.Provider sends to its LLM.
func ToProviderDef(t Tool) providers.ToolDefinition {
	return providers.ToolDefinition{
		Type: "function",
		Function: providers.ToolFunctionSchema{
			Name:        t.Name(),
			Description: t.Description(),
			Parameters:  t.Parameters(),
		},
	}
}

// ToolRateLimiter bounds how many times each tool name can be called per
// hour, independent per tool so a noisy web_search doesn't starve exec's
// budget. Each tool gets a fixed one-hour window that starts at its first
// call and restarts at the first call after it ends; the number of tracked
// names is not capped and old entries are not pruned.
type ToolRateLimiter struct {
	mu        sync.Mutex
	perHour   int
	entries   map[string]*toolRateEntry
}

type toolRateEntry struct {
	windowStart time.Time
	count       int
}

// NewToolRateLimiter creates a limiter allowing perHour calls per tool name
// per one-hour window. perHour <= 0 disables limiting (Allow always true).
func NewToolRateLimiter(perHour int) *ToolRateLimiter {
	return &ToolRateLimiter{perHour: perHour, entries: make(map[string]*toolRateEntry)}
}

// Allow reports whether another call to the named tool is within budget,
// recording the call if so.
func (rl *ToolRateLimiter) Allow(name string) bool {
	if rl == nil || rl.perHour <= 0 {
		return true
	}
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := time.Now()
	e, ok := rl.entries[name]
	if !ok || now.Sub(e.windowStart) >= time.Hour {
		rl.entries[name] = &toolRateEntry{windowStart: now, count: 1}
		return true
	}
	if e.count >= rl.perHour {
		return false
	}
	e.count++
	return true
}

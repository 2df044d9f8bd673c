// Package promptbuilder assembles the per-turn system prompt inside the
// sandboxed agent process from a fixed set of modules, fit within a token
// budget derived from the context window and the current history size.
package promptbuilder

import "github.com/nextlevelbuilder/goclaw/internal/bootstrap"

// Context is the read-only input to a prompt build. It is built once per
// agent turn and never mutated mid-build.
type Context struct {
	AgentType string
	Workspace string
	Skills    []string // markdown summaries, already resolved by the caller
	Profile   string
	Sandbox   string // sandbox kind label, e.g. "gvisor", "none"

	TaintRatio     float64
	TaintThreshold float64

	ContextFiles []bootstrap.ContextFile

	ContextWindow int
	HistoryTokens int

	// Bootstrapping is true when the workspace has not completed first-run
	// setup (BOOTSTRAP.md present, SOUL.md absent) — most optional modules
	// are dropped in this mode.
	Bootstrapping bool

	ToolNames []string
	Channel   string
	Time      string // pre-formatted, so builds stay deterministic under test
}

// outputReserve is held back from the context window for the model's own
// output, mirroring internal/config.CompactionConfig's reserve-tokens idiom
// applied to generation instead of history.
const outputReserve = 4096

// Budget returns the number of tokens available for system-prompt modules
// this turn.
func (c Context) Budget() int {
	b := c.ContextWindow - c.HistoryTokens - outputReserve
	if b < 0 {
		return 0
	}
	return b
}

func contextFile(ctx Context, name string) (string, bool) {
	for _, f := range ctx.ContextFiles {
		if f.Path == name {
			return f.Content, true
		}
	}
	return "", false
}

package promptbuilder

import "strings"

// Module is one section of the assembled system prompt. Modules are
// registered once at startup and re-evaluated fresh every build — they must
// hold no per-turn state of their own.
type Module struct {
	Name     string
	Priority int  // ascending: lower renders first among optional modules
	Required bool // dropped only when bootstrap mode forces omission
	Optional bool // may be dropped whole if it doesn't fit the budget

	ShouldInclude func(ctx Context) bool
	Render        func(ctx Context) []string
	RenderMinimal func(ctx Context) []string // nil if the module has no minimal form
}

// estimateTokens applies the same ~1-token-per-4-chars estimate used
// throughout internal/ipc's handlers and internal/agent's history
// compaction.
func estimateTokens(lines []string) int {
	total := 0
	for _, l := range lines {
		total += len(l)
	}
	return (total + 3) / 4
}

func joinLines(lines []string) string {
	return strings.Join(lines, "\n")
}

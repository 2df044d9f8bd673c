// Package taint implements the platform's trust-tracking layer: every
// piece of content that enters a session — a user message, a web page, a
// memory recall, a delegated subagent's output — carries a trust label,
// and a session-wide budget gates whether that session may still take
// sensitive actions (sending money, running destructive shell commands,
// anything the tool policy marks as requiring a clean budget).
//
// Grounded on the teacher's per-session mutex-guarded state idiom
// (internal/sessions.Manager, internal/tools/delegate_state.go) — taint
// state gets the same sync.RWMutex-protected map-of-session shape.
package taint

import "time"

// Trust is a closed enum of where a piece of content came from.
type Trust string

const (
	// TrustUser is content the session's human principal typed directly.
	TrustUser Trust = "user"
	// TrustExternal is content from outside the conversation: a fetched
	// web page, a search result, an email, anything an attacker could
	// have authored.
	TrustExternal Trust = "external"
	// TrustSystem is content the host itself generated: a tool's own
	// status message, a scheduler's delivery notice.
	TrustSystem Trust = "system"
)

// tainted reports whether tokens of this Trust count toward the tainted
// side of the budget ratio. System content is never tainted; user content is
// never tainted (the principal is trusted by definition); external
// content always is.
func (t Trust) tainted() bool { return t == TrustExternal }

// Tag records where one span of content came from and when it entered
// the session, so a later audit can reconstruct provenance.
type Tag struct {
	Source    string // e.g. "web_fetch:https://example.com/...", "memory:mem-1234"
	Trust     Trust
	Timestamp time.Time
	Tokens    int
}

// Budget accumulates token counts by trust level for one session and
// exposes the tainted/total ratio the tool policy gates on.
type Budget struct {
	TotalTokens   int
	TaintedTokens int
	Threshold     float64 // ratio above which sensitive actions are denied
}

// NewBudget returns a zeroed budget with the given threshold.
func NewBudget(threshold float64) *Budget {
	if threshold <= 0 {
		threshold = 0.4
	}
	return &Budget{Threshold: threshold}
}

// Add folds tag into the running totals.
func (b *Budget) Add(tag Tag) {
	if tag.Tokens <= 0 {
		return
	}
	b.TotalTokens += tag.Tokens
	if tag.Trust.tainted() {
		b.TaintedTokens += tag.Tokens
	}
}

// Ratio returns the tainted/total token ratio, 0 if nothing has been
// added yet (an empty session is never over budget).
func (b Budget) Ratio() float64 {
	if b.TotalTokens == 0 {
		return 0
	}
	return float64(b.TaintedTokens) / float64(b.TotalTokens)
}

// Exhausted reports whether the session's taint ratio has crossed its
// threshold — callers use this to deny sensitive-action tool calls
// without needing to recompute the ratio themselves.
func (b *Budget) Exhausted() bool {
	return b.Ratio() > b.Threshold
}

// Remaining returns how many more tainted tokens the session can absorb
// before crossing Threshold, assuming TotalTokens does not grow further.
// Nothing outside this package's tests calls it.
func (b *Budget) Remaining() int {
	if b.TotalTokens == 0 {
		return 0
	}
	allowed := int(b.Threshold*float64(b.TotalTokens)) - b.TaintedTokens
	if allowed < 0 {
		return 0
	}
	return allowed
}

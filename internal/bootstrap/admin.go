package bootstrap

import (
	"os"
	"path/filepath"
	"strings"
)

// NeedsBootstrap reports whether workspaceDir is still in first-run
// bootstrap mode: BootstrapFile exists but the mutable SoulFile does
// not. Once an operator has filled in SOUL.md and removed BOOTSTRAP.md,
// this returns false permanently for that workspace.
func NeedsBootstrap(workspaceDir string) bool {
	_, bootstrapErr := os.Stat(filepath.Join(workspaceDir, BootstrapFile))
	if os.IsNotExist(bootstrapErr) {
		return false
	}
	_, soulErr := os.Stat(filepath.Join(workspaceDir, SoulFile))
	return os.IsNotExist(soulErr)
}

// IsAdmin reports whether senderID (a channel-qualified ID like
// "telegram:386246614", matching internal/config.SecurityConfig.AdminIDs'
// documented format) appears in adminIDs. The list is passed in rather
// than read from config directly here, so callers re-read the live
// config each call — admin membership changes must take effect on the
// next message, not require a restart.
func IsAdmin(senderID string, adminIDs []string) bool {
	for _, id := range adminIDs {
		if strings.EqualFold(strings.TrimSpace(id), senderID) {
			return true
		}
	}
	return false
}

// GateResult is what the router's bootstrap gate decides for one inbound
// message.
type GateResult struct {
	Allowed bool
	// Reason is a terse, user-facing message when Allowed is false —
	// never the detailed internal state, per spec.md's "opaque reason
	// code" policy-error convention.
	Reason string
}

// Gate evaluates the bootstrap gate for one inbound sender: while a
// workspace is in bootstrap mode, only operator-listed admins may
// interact; everyone else gets a canned "still being set up" reply.
func Gate(workspaceDir, senderID string, adminIDs []string) GateResult {
	if !NeedsBootstrap(workspaceDir) {
		return GateResult{Allowed: true}
	}
	if IsAdmin(senderID, adminIDs) {
		return GateResult{Allowed: true}
	}
	return GateResult{Allowed: false, Reason: "this agent is still being set up"}
}

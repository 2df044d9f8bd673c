package router

import "github.com/nextlevelbuilder/goclaw/internal/bootstrap"

// AdminIDsFunc returns the live operator-listed admin ID list for a
// workspace. It is a function, not a cached slice, because spec.md §4.6
// requires the admin list be "refreshed each call" — the caller closes
// over config.SecurityConfig so a config reload takes effect immediately.
type AdminIDsFunc func() []string

// CheckBootstrapGate applies spec.md's first-run admin-only gate: while
// workspaceDir has BOOTSTRAP.md but not SOUL.md, only senders in the live
// admin list may interact.
func CheckBootstrapGate(workspaceDir, senderID string, adminIDs AdminIDsFunc) bootstrap.GateResult {
	var ids []string
	if adminIDs != nil {
		ids = adminIDs()
	}
	return bootstrap.Gate(workspaceDir, senderID, ids)
}

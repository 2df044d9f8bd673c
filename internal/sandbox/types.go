// Package sandbox launches and supervises the untrusted agent process.
//
// Unlike the teacher's per-tool-call container bridge, the agent process
// itself runs inside the sandbox boundary for the lifetime of a session:
// the launcher starts one child process (subprocess, seatbelt, nsjail, or
// docker backed) wired to the host over stdin/stdout. internal/router
// writes one unframed JSON turn payload to stdin and reads the raw reply
// text from stdout; internal/ipc's framing is not used on this pipe.
// Local tools (filesystem, shell) execute directly inside the child —
// the OS-level sandbox is the enforcement layer, not an RPC bridge.
package sandbox

import "time"

// Mode controls which sessions get sandboxed.
type Mode string

const (
	ModeOff     Mode = "off"      // Manager.GetOrCreate launches nothing and returns ErrSandboxDisabled
	ModeNonMain Mode = "non-main" // the manager does not tell main sessions apart; it launches as for ModeAll
	ModeAll     Mode = "all"      // sandbox every session
)

// WorkspaceAccess controls how much of the on-disk workspace the sandboxed
// process can see.
type WorkspaceAccess string

const (
	AccessNone WorkspaceAccess = "none"
	AccessRO   WorkspaceAccess = "ro"
	AccessRW   WorkspaceAccess = "rw"
)

// Scope controls how long a launched sandbox instance is reused.
type Scope string

const (
	ScopeSession Scope = "session" // one sandbox per session, torn down when the session ends
	ScopeAgent   Scope = "agent"   // keyed by the caller's key exactly like ScopeSession; the manager has no agent ID
	ScopeShared  Scope = "shared"  // one sandbox shared across all sessions
)

// Config describes how a sandboxed agent process should be launched.
type Config struct {
	Backend         string // "subprocess", "seatbelt", "nsjail", "docker"
	Mode            Mode
	Image           string // container image, when Backend == "docker"
	WorkspaceAccess WorkspaceAccess
	Scope           Scope
	MemoryMB        int
	CPUs            float64
	TimeoutSec      int
	NetworkEnabled  bool
	ReadOnlyRoot    bool
	User            string
	TmpfsSizeMB     int
	MaxOutputBytes  int
	Env             map[string]string
}

// Timeout returns the configured exec timeout, or zero if unbounded.
func (c Config) Timeout() time.Duration {
	if c.TimeoutSec <= 0 {
		return 0
	}
	return time.Duration(c.TimeoutSec) * time.Second
}

// DefaultConfig returns the baseline sandbox configuration: off, RW
// workspace access, session-scoped, modest resource limits.
func DefaultConfig() Config {
	return Config{
		Backend:         "subprocess",
		Mode:            ModeOff,
		WorkspaceAccess: AccessRW,
		Scope:           ScopeSession,
		MemoryMB:        512,
		CPUs:            1.0,
		TimeoutSec:      300,
		NetworkEnabled:  false,
		ReadOnlyRoot:    true,
		MaxOutputBytes:  1 << 20,
	}
}

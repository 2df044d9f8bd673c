package ipc

import "github.com/nextlevelbuilder/goclaw/internal/taint"

// trustFromString maps the wire-level provenance label a handler payload
// carries (or synthesizes, for content the host itself fetched) onto the
// closed taint.Trust enum. Unrecognized or empty labels default to
// TrustExternal — the fail-closed choice, since treating unknown
// provenance as trusted would silently widen the attack surface the
// budget exists to bound.
func trustFromString(v string) taint.Trust {
	switch v {
	case "user":
		return taint.TrustUser
	case "system":
		return taint.TrustSystem
	case "external":
		return taint.TrustExternal
	default:
		return taint.TrustExternal
	}
}

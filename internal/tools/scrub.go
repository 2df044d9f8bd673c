package tools

import "regexp"

// credentialPatterns matches common API key/token shapes that might leak
// into tool output (e.g. an exec command echoing an env var, or web_fetch
// pulling a page that embeds a key). Mirrors the vendor key prefixes
// internal/secrets.Store tracks (Anthropic sk-ant-*, OpenAI sk-*) plus the
// generic Bearer/Basic auth header and key=value shapes every provider's
// HTTP client could plausibly surface in an error body.
var credentialPatterns = []*regexp.Regexp{
	regexp.MustCompile(`sk-ant-[A-Za-z0-9_-]{10,}`),
	regexp.MustCompile(`sk-[A-Za-z0-9]{20,}`),
	regexp.MustCompile(`(?i)bearer\s+[A-Za-z0-9._-]{10,}`),
	regexp.MustCompile(`(?i)(api[_-]?key|token|secret)\s*[:=]\s*['"]?[A-Za-z0-9._-]{10,}['"]?`),
}

// ScrubCredentials replaces any substring matching a known credential shape
// with a fixed placeholder, so a tool whose output happens to contain a
// real key never reaches the LLM or the user unredacted.
func ScrubCredentials(s string) string {
	for _, re := range credentialPatterns {
		s = re.ReplaceAllString(s, "[REDACTED]")
	}
	return s
}

package router

import (
	"crypto/rand"
	"encoding/hex"
	"strings"
)

// canaryByteLen is the random payload length before hex-encoding; 12 bytes
// gives a 24-character token that is effectively never typed or guessed by
// a model, so any appearance in outbound text is a genuine exfiltration
// signal rather than coincidence.
const canaryByteLen = 12

// MintCanary returns a short random string unique to one turn. It is kept
// only by the router — never sent to the model — so that ScanOutbound can
// detect whether the model ever repeats it, a signal of prompt exfiltration
// per spec.md §4.6.
func MintCanary() (string, error) {
	buf := make([]byte, canaryByteLen)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf), nil
}

// OutboundVerdict is the result of scanning assistant output for a canary
// leak or other outbound-sensitive pattern.
type OutboundVerdict struct {
	CanaryLeaked bool
	Redacted     string
}

// ScanOutbound checks assistant output for the session's canary. If found,
// the response is redacted and the caller must mark the session
// compromised — per spec.md §4.6, a canary leak always wins over returning
// partial output, since the model having repeated it means it was
// influenced by content it should never have echoed.
func ScanOutbound(output, canary string) OutboundVerdict {
	if canary == "" || !strings.Contains(output, canary) {
		return OutboundVerdict{}
	}
	return OutboundVerdict{
		CanaryLeaked: true,
		Redacted:     "[response withheld: a security check detected unexpected behavior]",
	}
}

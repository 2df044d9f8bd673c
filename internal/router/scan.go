package router

import "regexp"

// Verdict is the outcome of scanning inbound text for prompt-injection
// patterns, per spec.md §4.6 step 1.
type Verdict string

const (
	VerdictPass  Verdict = "PASS"
	VerdictFlag  Verdict = "FLAG"
	VerdictBlock Verdict = "BLOCK"
)

// blockPatterns match known prompt-injection attempts severe enough to
// reject the message before it ever reaches the model — direct attempts to
// override the system prompt or exfiltrate credentials.
var blockPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)ignore (all )?(previous|prior|above) instructions`),
	regexp.MustCompile(`(?i)disregard (your|all|the) (system prompt|instructions)`),
	regexp.MustCompile(`(?i)reveal (your|the) (system prompt|api key|credentials)`),
	regexp.MustCompile(`(?i)you are now (in )?(developer|dan|jailbreak) mode`),
}

// flagPatterns match softer signals worth recording in audit but not worth
// blocking outright — a user legitimately asking about its own instructions
// is common and not itself an attack.
var flagPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)what (are|is) your (system prompt|instructions)`),
	regexp.MustCompile(`(?i)pretend (to be|you are) (an?|the)`),
}

// ScanInbound classifies a user message (and any attached external
// content) for known prompt-injection patterns.
func ScanInbound(text string) Verdict {
	for _, p := range blockPatterns {
		if p.MatchString(text) {
			return VerdictBlock
		}
	}
	for _, p := range flagPatterns {
		if p.MatchString(text) {
			return VerdictFlag
		}
	}
	return VerdictPass
}

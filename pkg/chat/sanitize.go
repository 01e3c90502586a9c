package chat

import (
	"regexp"
	"strings"
)

// The model keeps leaking follow-up content into the reply field despite the
// format directives. Each leak pattern gets its own named rule so it can be
// unit-tested against adversarial outputs on its own.
type sanitizeRule struct {
	name        string
	pattern     *regexp.Regexp
	replacement string
}

var replySanitizeRules = []sanitizeRule{
	// "Follow-up questions:" headers, any casing, hyphen or en dash.
	{
		name:        "followup_header",
		pattern:     regexp.MustCompile(`(?i)follow[-–]up questions?:`),
		replacement: "",
	},
	// Lines that start with a bullet, a dash, or a "1." style enumerator.
	{
		name:        "list_line",
		pattern:     regexp.MustCompile(`(?m)^(?:•|-|\d+\.)\s?.*$`),
		replacement: "",
	},
	// Collapse the blank runs the removals above leave behind.
	{
		name:        "blank_lines",
		pattern:     regexp.MustCompile(`\n{2,}`),
		replacement: "\n",
	},
}

// SanitizeReply strips leaked follow-up formatting out of a reply string.
// Idempotent: sanitizing an already-clean reply is a no-op.
func SanitizeReply(reply string) string {
	for _, rule := range replySanitizeRules {
		reply = rule.pattern.ReplaceAllString(reply, rule.replacement)
	}
	return strings.TrimSpace(reply)
}

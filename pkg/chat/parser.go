package chat

import (
	"encoding/json"
	"fmt"
	"strings"
)

// MalformedOutputError means the model response failed the structured-output
// contract. The raw text rides along so callers can surface it for diagnosis.
type MalformedOutputError struct {
	Raw    string
	Reason string
}

func (e *MalformedOutputError) Error() string {
	return fmt.Sprintf("malformed model output: %s", e.Reason)
}

// ParseStructuredReply enforces the reply contract on raw model text: strict
// parse of the two-field shape, reply sanitization, exactly four follow-ups.
// It never returns a partially valid result.
func ParseStructuredReply(raw string) (StructuredReply, error) {
	text := stripCodeFences(strings.TrimSpace(raw))

	var decoded struct {
		Reply        *string  `json:"reply"`
		FollowupChat []string `json:"followup_chat"`
	}
	if err := json.Unmarshal([]byte(text), &decoded); err != nil {
		return StructuredReply{}, &MalformedOutputError{Raw: raw, Reason: fmt.Sprintf("not valid JSON: %v", err)}
	}
	if decoded.Reply == nil {
		return StructuredReply{}, &MalformedOutputError{Raw: raw, Reason: "missing reply field"}
	}
	if decoded.FollowupChat == nil {
		return StructuredReply{}, &MalformedOutputError{Raw: raw, Reason: "missing followup_chat field"}
	}
	if len(decoded.FollowupChat) != 4 {
		return StructuredReply{}, &MalformedOutputError{
			Raw:    raw,
			Reason: fmt.Sprintf("followup_chat must contain exactly 4 entries, got %d", len(decoded.FollowupChat)),
		}
	}

	reply := SanitizeReply(*decoded.Reply)
	if reply == "" {
		return StructuredReply{}, &MalformedOutputError{Raw: raw, Reason: "reply is empty after sanitization"}
	}

	// The 6-8 word first-person style of the follow-ups is prompt-enforced
	// only. Rejecting usable output over a soft style violation is worse than
	// letting a long question through.
	return StructuredReply{Reply: reply, FollowupChat: decoded.FollowupChat}, nil
}

// stripCodeFences unwraps a ```json ... ``` block if the model added one.
func stripCodeFences(text string) string {
	if !strings.HasPrefix(text, "```") {
		return text
	}
	text = strings.TrimPrefix(text, "```")
	if newline := strings.Index(text, "\n"); newline >= 0 {
		text = text[newline+1:]
	}
	text = strings.TrimSpace(text)
	text = strings.TrimSuffix(text, "```")
	return strings.TrimSpace(text)
}

package chat

import "time"

type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Message is one entry in a user's conversation history. Never mutated after
// append.
type Message struct {
	ID        string    `json:"id"`
	Role      Role      `json:"role"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"createdAt"`
}

// StructuredReply is the contract enforced on every chat-turn model response:
// one reply plus exactly four short follow-up prompts.
type StructuredReply struct {
	Reply        string   `json:"reply"`
	FollowupChat []string `json:"followup_chat"`
}

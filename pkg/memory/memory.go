// Package memory is the gateway to the long-term memory service. Persistence,
// ranking and retention all live on the other side of the Storage interface;
// this process only ever searches and appends.
package memory

import (
	"context"
	"strings"

	"github.com/samber/lo"
)

// Snippet is one ranked free-text fact returned by a semantic search.
type Snippet struct {
	Memory string  `json:"memory"`
	Score  float64 `json:"score"`
}

// Message is one side of an exchange being recorded into long-term memory.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Storage is the memory gateway consumed by the chat and nudge services.
type Storage interface {
	// Search returns at most limit snippets relevant to query, best first.
	Search(ctx context.Context, query string, userID string, limit int) ([]Snippet, error)
	// Add records an exchange under userID with the given metadata.
	Add(ctx context.Context, messages []Message, userID string, metadata map[string]string) error
}

// NoMemorySentinel is embedded into prompts when a user has no memories yet.
const NoMemorySentinel = "No memory yet — first chat."

// Summarize renders snippets as a bulleted block for prompt embedding. An
// empty result yields the sentinel so the prompt never contains a hole.
func Summarize(snippets []Snippet) string {
	if len(snippets) == 0 {
		return NoMemorySentinel
	}
	lines := lo.Map(snippets, func(s Snippet, _ int) string {
		return "- " + s.Memory
	})
	return strings.Join(lines, "\n")
}

package chat

import "context"

// Storage is the per-user, append-only conversation history. Messages come
// back in the exact order they were appended; an unknown user reads as an
// empty history, never an error.
type Storage interface {
	Append(ctx context.Context, userID string, message Message) error
	History(ctx context.Context, userID string) ([]Message, error)
}

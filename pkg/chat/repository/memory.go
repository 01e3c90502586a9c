// Package repository provides the conversation history stores: an ephemeral
// in-memory map for the default deployment and tests, and a SQLite store for
// deployments that want history to survive a restart.
package repository

import (
	"context"
	"sync"

	"github.com/liv-ai/liv-backend/pkg/chat"
)

// InMemory keeps per-user histories in a process-local map. Contents are lost
// on restart, which is the documented default for this system.
type InMemory struct {
	mu       sync.RWMutex
	messages map[string][]chat.Message
}

var _ chat.Storage = (*InMemory)(nil)

func NewInMemory() *InMemory {
	return &InMemory{
		messages: make(map[string][]chat.Message),
	}
}

func (r *InMemory) Append(ctx context.Context, userID string, message chat.Message) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.messages[userID] = append(r.messages[userID], message)
	return nil
}

func (r *InMemory) History(ctx context.Context, userID string) ([]chat.Message, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	stored := r.messages[userID]
	history := make([]chat.Message, len(stored))
	copy(history, stored)
	return history, nil
}

package memory

import "context"

// MockStorage is an in-process Storage for tests. It replays canned snippets
// and records every Add call.
type MockStorage struct {
	Snippets    []Snippet
	SearchErr   error
	AddErr      error
	SearchCalls []string
	AddCalls    []AddCall
}

type AddCall struct {
	Messages []Message
	UserID   string
	Metadata map[string]string
}

var _ Storage = (*MockStorage)(nil)

func (m *MockStorage) Search(ctx context.Context, query string, userID string, limit int) ([]Snippet, error) {
	m.SearchCalls = append(m.SearchCalls, query)
	if m.SearchErr != nil {
		return nil, m.SearchErr
	}
	if len(m.Snippets) > limit {
		return m.Snippets[:limit], nil
	}
	return m.Snippets, nil
}

func (m *MockStorage) Add(ctx context.Context, messages []Message, userID string, metadata map[string]string) error {
	if m.AddErr != nil {
		return m.AddErr
	}
	m.AddCalls = append(m.AddCalls, AddCall{Messages: messages, UserID: userID, Metadata: metadata})
	return nil
}

package chat

import (
	"context"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/charmbracelet/log"
	"github.com/openai/openai-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/liv-ai/liv-backend/pkg/ai"
	"github.com/liv-ai/liv-backend/pkg/memory"
	"github.com/liv-ai/liv-backend/pkg/profile"
)

type stubCompletion struct {
	response    string
	err         error
	calls       int
	gotMessages []openai.ChatCompletionMessageParamUnion
	gotModel    string
}

func (s *stubCompletion) Completions(ctx context.Context, messages []openai.ChatCompletionMessageParamUnion, model string) (openai.ChatCompletionMessage, error) {
	s.calls++
	s.gotMessages = messages
	s.gotModel = model
	if s.err != nil {
		return openai.ChatCompletionMessage{}, s.err
	}
	return openai.ChatCompletionMessage{Content: s.response}, nil
}

type fakeHistory struct {
	messages map[string][]Message
}

func newFakeHistory() *fakeHistory {
	return &fakeHistory{messages: make(map[string][]Message)}
}

func (f *fakeHistory) Append(ctx context.Context, userID string, message Message) error {
	f.messages[userID] = append(f.messages[userID], message)
	return nil
}

func (f *fakeHistory) History(ctx context.Context, userID string) ([]Message, error) {
	return f.messages[userID], nil
}

func newTestService(t *testing.T, completions ai.Completion, mem memory.Storage, history Storage) *Service {
	t.Helper()
	registry, err := profile.NewRegistry("")
	require.NoError(t, err)
	return NewService(Config{
		Logger:        log.New(os.Stdout),
		Completions:   completions,
		Memory:        mem,
		History:       history,
		Profiles:      registry,
		Model:         "gpt-4.1-nano",
		HistoryWindow: 20,
		MemoryLimit:   5,
		Timeout:       5 * time.Second,
	})
}

const validModelOutput = `{"reply":"You've got this — rest is productive too.\nFollow-up questions:\n- What's one small win today?","followup_chat":["a","b","c","d"]}`

func TestSendMessageEndToEnd(t *testing.T) {
	stub := &stubCompletion{response: validModelOutput}
	mem := &memory.MockStorage{}
	history := newFakeHistory()
	service := newTestService(t, stub, mem, history)

	reply, err := service.SendMessage(context.Background(), "sara", "I'm exhausted and stressed")
	require.NoError(t, err)

	// The leaked follow-up header and bullet line are stripped.
	assert.Equal(t, "You've got this — rest is productive too.", reply.Reply)
	assert.Equal(t, []string{"a", "b", "c", "d"}, reply.FollowupChat)

	// Memory was searched with the user utterance as the key.
	require.Equal(t, []string{"I'm exhausted and stressed"}, mem.SearchCalls)

	// System prompt carries the profile and the no-memory sentinel.
	require.NotEmpty(t, stub.gotMessages)
	systemPrompt := stub.gotMessages[0].OfSystem.Content.OfString.Value
	for _, want := range []string{"Sara", "32", "female", memory.NoMemorySentinel} {
		assert.Contains(t, systemPrompt, want)
	}
	assert.Equal(t, "gpt-4.1-nano", stub.gotModel)

	// The sanitized reply is what got persisted, in order, as a pair.
	turn := history.messages["sara"]
	require.Len(t, turn, 2)
	assert.Equal(t, RoleUser, turn[0].Role)
	assert.Equal(t, "I'm exhausted and stressed", turn[0].Content)
	assert.Equal(t, RoleAssistant, turn[1].Role)
	assert.Equal(t, "You've got this — rest is productive too.", turn[1].Content)

	require.Len(t, mem.AddCalls, 1)
	added := mem.AddCalls[0]
	assert.Equal(t, "sara", added.UserID)
	assert.Equal(t, "health_chat", added.Metadata["category"])
	require.Len(t, added.Messages, 2)
	assert.Equal(t, "You've got this — rest is productive too.", added.Messages[1].Content)
}

func TestSendMessageUnknownUserShortCircuits(t *testing.T) {
	stub := &stubCompletion{response: validModelOutput}
	mem := &memory.MockStorage{}
	service := newTestService(t, stub, mem, newFakeHistory())

	_, err := service.SendMessage(context.Background(), "unknown", "hello")
	var notFound *profile.NotFoundError
	require.ErrorAs(t, err, &notFound)

	// Neither collaborator was called.
	assert.Zero(t, stub.calls)
	assert.Empty(t, mem.SearchCalls)
	assert.Empty(t, mem.AddCalls)
}

func TestSendMessageMalformedOutputPersistsNothing(t *testing.T) {
	stub := &stubCompletion{response: "Sure! Sleep more, stress less."}
	mem := &memory.MockStorage{}
	history := newFakeHistory()
	service := newTestService(t, stub, mem, history)

	_, err := service.SendMessage(context.Background(), "sara", "hi")
	var malformed *MalformedOutputError
	require.ErrorAs(t, err, &malformed)
	assert.Equal(t, "Sure! Sleep more, stress less.", malformed.Raw)

	assert.Empty(t, history.messages["sara"])
	assert.Empty(t, mem.AddCalls)
}

func TestSendMessageModelFailurePersistsNothing(t *testing.T) {
	stub := &stubCompletion{err: &ai.InvocationError{Err: fmt.Errorf("connection refused")}}
	mem := &memory.MockStorage{}
	history := newFakeHistory()
	service := newTestService(t, stub, mem, history)

	_, err := service.SendMessage(context.Background(), "sara", "hi")
	var invocation *ai.InvocationError
	require.ErrorAs(t, err, &invocation)

	assert.Empty(t, history.messages["sara"])
	assert.Empty(t, mem.AddCalls)
}

func TestSendMessageMemorySummaryEmbedded(t *testing.T) {
	stub := &stubCompletion{response: validModelOutput}
	mem := &memory.MockStorage{Snippets: []memory.Snippet{
		{Memory: "skips breakfast most days", Score: 0.9},
		{Memory: "wants to run a 10k", Score: 0.8},
	}}
	service := newTestService(t, stub, mem, newFakeHistory())

	_, err := service.SendMessage(context.Background(), "sara", "how do I start?")
	require.NoError(t, err)

	systemPrompt := stub.gotMessages[0].OfSystem.Content.OfString.Value
	assert.Contains(t, systemPrompt, "- skips breakfast most days")
	assert.Contains(t, systemPrompt, "- wants to run a 10k")
	assert.NotContains(t, systemPrompt, memory.NoMemorySentinel)
}

func TestSendMessageReplaysWindowedHistory(t *testing.T) {
	stub := &stubCompletion{response: validModelOutput}
	history := newFakeHistory()
	for i := 0; i < 30; i++ {
		role := RoleUser
		if i%2 == 1 {
			role = RoleAssistant
		}
		_ = history.Append(context.Background(), "sara", Message{
			ID:      fmt.Sprintf("m%d", i),
			Role:    role,
			Content: fmt.Sprintf("message %d", i),
		})
	}
	service := newTestService(t, stub, &memory.MockStorage{}, history)

	_, err := service.SendMessage(context.Background(), "sara", "latest")
	require.NoError(t, err)

	// 1 system + last 20 history messages + the new turn.
	require.Len(t, stub.gotMessages, 22)

	// Oldest replayed message is number 10, so the window kept the tail.
	first := stub.gotMessages[1].OfUser.Content.OfString.Value
	assert.Equal(t, "message 10", first)
}

func TestWindow(t *testing.T) {
	messages := []Message{{ID: "a"}, {ID: "b"}, {ID: "c"}}
	assert.Len(t, window(messages, 0), 3)
	assert.Len(t, window(messages, 5), 3)
	tail := window(messages, 2)
	require.Len(t, tail, 2)
	assert.Equal(t, "b", tail[0].ID)
	assert.Equal(t, "c", tail[1].ID)
}

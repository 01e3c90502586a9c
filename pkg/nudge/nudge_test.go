package nudge

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/charmbracelet/log"
	"github.com/openai/openai-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/liv-ai/liv-backend/pkg/memory"
	"github.com/liv-ai/liv-backend/pkg/profile"
)

func TestSelectTopic(t *testing.T) {
	assert.Equal(t, "Sleep & recovery", SelectTopic(0))
	assert.Equal(t, "Mental fitness", SelectTopic(3))
	assert.Equal(t, "Toxin defense", SelectTopic(6))

	// Deterministic.
	assert.Equal(t, SelectTopic(3), SelectTopic(3))

	// Total over any input.
	assert.Equal(t, FallbackTopic, SelectTopic(-1))
	assert.Equal(t, FallbackTopic, SelectTopic(7))
	assert.Equal(t, FallbackTopic, SelectTopic(100))
}

type stubCompletion struct {
	response        string
	err             error
	calls           int
	gotMessages     []openai.ChatCompletionMessageParamUnion
	historyReplayed bool
}

func (s *stubCompletion) Completions(ctx context.Context, messages []openai.ChatCompletionMessageParamUnion, model string) (openai.ChatCompletionMessage, error) {
	s.calls++
	s.gotMessages = messages
	s.historyReplayed = len(messages) > 2
	if s.err != nil {
		return openai.ChatCompletionMessage{}, s.err
	}
	return openai.ChatCompletionMessage{Content: s.response}, nil
}

// sundayClock pins the weekday to Sunday (index 0).
func sundayClock() time.Time {
	return time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC)
}

func newTestService(t *testing.T, stub *stubCompletion, mem memory.Storage) *Service {
	t.Helper()
	registry, err := profile.NewRegistry("")
	require.NoError(t, err)
	return NewService(Config{
		Logger:      log.New(os.Stdout),
		Completions: stub,
		Memory:      mem,
		Profiles:    registry,
		Model:       "gpt-4.1-nano",
		MemoryLimit: 5,
		Timeout:     5 * time.Second,
		Now:         sundayClock,
	})
}

func TestGenerate(t *testing.T) {
	stub := &stubCompletion{response: "  Lights out by 10pm tonight. Dare you.  "}
	mem := &memory.MockStorage{}
	service := newTestService(t, stub, mem)

	nudge, err := service.Generate(context.Background(), "sara")
	require.NoError(t, err)

	// Sunday maps to index 0.
	assert.Equal(t, "Sleep & recovery", nudge.Topic)
	assert.Equal(t, "Lights out by 10pm tonight. Dare you.", nudge.Reply)

	// The topic string itself is the memory search key.
	require.Equal(t, []string{"Sleep & recovery"}, mem.SearchCalls)

	// No prior history is replayed: system prompt plus the trigger only.
	require.Len(t, stub.gotMessages, 2)
	assert.False(t, stub.historyReplayed)

	// The exchange lands in memory under the daily_nudge category.
	require.Len(t, mem.AddCalls, 1)
	added := mem.AddCalls[0]
	assert.Equal(t, "sara", added.UserID)
	assert.Equal(t, "daily_nudge", added.Metadata["category"])
	assert.Equal(t, "Sleep & recovery", added.Metadata["topic"])
	require.Len(t, added.Messages, 2)
	assert.Equal(t, "Generate today's nudge.", added.Messages[0].Content)
	assert.Equal(t, "Lights out by 10pm tonight. Dare you.", added.Messages[1].Content)
}

func TestGenerateUnknownUser(t *testing.T) {
	stub := &stubCompletion{response: "dare"}
	mem := &memory.MockStorage{}
	service := newTestService(t, stub, mem)

	_, err := service.Generate(context.Background(), "unknown")
	var notFound *profile.NotFoundError
	require.ErrorAs(t, err, &notFound)

	assert.Zero(t, stub.calls)
	assert.Empty(t, mem.SearchCalls)
}

func TestGenerateTopicInPrompt(t *testing.T) {
	stub := &stubCompletion{response: "dare"}
	service := newTestService(t, stub, &memory.MockStorage{})

	_, err := service.Generate(context.Background(), "alas")
	require.NoError(t, err)

	systemPrompt := stub.gotMessages[0].OfSystem.Content.OfString.Value
	assert.Contains(t, systemPrompt, "Sleep & recovery")
	assert.Contains(t, systemPrompt, "Alas")
	assert.Contains(t, systemPrompt, "under 50 words")
}

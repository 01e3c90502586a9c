// Package chat runs one turn of the coaching conversation: look up the
// profile, pull relevant long-term memory, build the system prompt, invoke
// the model, enforce the structured-reply contract, and close the loop by
// recording the exchange in both history and memory.
package chat

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"
	"github.com/nats-io/nats.go"
	"github.com/openai/openai-go"

	"github.com/liv-ai/liv-backend/pkg/ai"
	"github.com/liv-ai/liv-backend/pkg/memory"
	"github.com/liv-ai/liv-backend/pkg/profile"
	"github.com/liv-ai/liv-backend/pkg/prompts"
)

type Service struct {
	logger        *log.Logger
	completions   ai.Completion
	memory        memory.Storage
	history       Storage
	profiles      *profile.Registry
	nc            *nats.Conn
	model         string
	historyWindow int
	memoryLimit   int
	timeout       time.Duration
	userLocks     sync.Map
}

type Config struct {
	Logger        *log.Logger
	Completions   ai.Completion
	Memory        memory.Storage
	History       Storage
	Profiles      *profile.Registry
	Nats          *nats.Conn // optional, nil disables publishing
	Model         string
	HistoryWindow int
	MemoryLimit   int
	Timeout       time.Duration
}

func NewService(cfg Config) *Service {
	return &Service{
		logger:        cfg.Logger,
		completions:   cfg.Completions,
		memory:        cfg.Memory,
		history:       cfg.History,
		profiles:      cfg.Profiles,
		nc:            cfg.Nats,
		model:         cfg.Model,
		historyWindow: cfg.HistoryWindow,
		memoryLimit:   cfg.MemoryLimit,
		timeout:       cfg.Timeout,
	}
}

// SendMessage runs one chat turn for userID. Turns for the same user are
// serialized: concurrent requests would otherwise interleave their
// read-invoke-append sequences and scramble history order.
func (s *Service) SendMessage(ctx context.Context, userID string, input string) (*StructuredReply, error) {
	userProfile, err := s.profiles.Lookup(userID)
	if err != nil {
		return nil, err
	}

	lock := s.lockFor(userID)
	lock.Lock()
	defer lock.Unlock()

	snippets, err := s.memory.Search(ctx, input, userID, s.memoryLimit)
	if err != nil {
		return nil, err
	}

	systemPrompt, err := prompts.BuildCoachSystemPrompt(prompts.CoachSystemPrompt{
		Tone:          userProfile.Tone,
		Profile:       userProfile,
		MemorySummary: memory.Summarize(snippets),
	})
	if err != nil {
		return nil, err
	}

	turnMessage, err := prompts.BuildChatTurnMessage(prompts.ChatTurnMessage{Input: input})
	if err != nil {
		return nil, err
	}

	history, err := s.history.History(ctx, userID)
	if err != nil {
		return nil, err
	}

	messages := make([]openai.ChatCompletionMessageParamUnion, 0, len(history)+2)
	messages = append(messages, openai.SystemMessage(systemPrompt))
	for _, message := range window(history, s.historyWindow) {
		switch message.Role {
		case RoleAssistant:
			messages = append(messages, openai.AssistantMessage(message.Content))
		default:
			messages = append(messages, openai.UserMessage(message.Content))
		}
	}
	messages = append(messages, openai.UserMessage(turnMessage))

	completionCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	completion, err := s.completions.Completions(completionCtx, messages, s.model)
	if err != nil {
		return nil, err
	}

	reply, err := ParseStructuredReply(completion.Content)
	if err != nil {
		s.logger.Error("Model output failed the reply contract", "user_id", userID, "raw", completion.Content)
		return nil, err
	}

	// History and memory are only touched once a fully valid reply exists.
	now := time.Now()
	err = s.memory.Add(ctx,
		[]memory.Message{
			{Role: string(RoleUser), Content: input},
			{Role: string(RoleAssistant), Content: reply.Reply},
		},
		userID,
		map[string]string{
			"timestamp": now.Format(time.RFC3339),
			"category":  "health_chat",
		},
	)
	if err != nil {
		return nil, err
	}

	userMessage := Message{ID: uuid.New().String(), Role: RoleUser, Content: input, CreatedAt: now}
	if err := s.history.Append(ctx, userID, userMessage); err != nil {
		return nil, err
	}
	assistantMessage := Message{ID: uuid.New().String(), Role: RoleAssistant, Content: reply.Reply, CreatedAt: now}
	if err := s.history.Append(ctx, userID, assistantMessage); err != nil {
		return nil, err
	}

	s.publish(userID, assistantMessage)

	return &reply, nil
}

func (s *Service) lockFor(userID string) *sync.Mutex {
	lock, _ := s.userLocks.LoadOrStore(userID, &sync.Mutex{})
	return lock.(*sync.Mutex)
}

// publish pushes the assistant message to interested subscribers. Best
// effort: a broken event bus must not fail a turn that already committed.
func (s *Service) publish(userID string, message Message) {
	if s.nc == nil {
		return
	}
	payload, err := json.Marshal(message)
	if err != nil {
		s.logger.Error("Failed to marshal chat event", "error", err)
		return
	}
	if err := s.nc.Publish("chat."+userID, payload); err != nil {
		s.logger.Error("Failed to publish chat event", "user_id", userID, "error", err)
	}
}

// window returns the last n messages, or all of them when n <= 0. Unbounded
// replay grows model latency and cost with every turn.
func window(history []Message, n int) []Message {
	if n <= 0 || len(history) <= n {
		return history
	}
	return history[len(history)-n:]
}
